package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients have nothing to say, so reads stay small
	maxMessageSize = 4 * 1024

	// Events waiting for the hub loop before new ones are dropped
	broadcastBuffer = 256
)

// Client is one websocket connection following a single todo.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	ToDoID int64
}

// ReadPump keeps the read deadline fresh from pongs until the connection
// closes, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Only the hub writes to Send; inbound payloads carry nothing.
		log.Printf("Ignoring %d byte message from client of ToDo %d", len(message), c.ToDoID)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks the connected clients per todo and fans events out to them.
// It implements Notifier.
type Hub struct {
	clients    map[int64]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register adds a client to the hub. It blocks until the hub loop has
// taken it, so events published afterwards reach the client.
// A client registering after the hub stopped is closed straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for the subscribers of event.ToDoID. When the
// queue is full the event is dropped rather than stalling the request.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("Event queue full, dropping %s for ToDo %d", event.Type, event.ToDoID)
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			return
		case client := <-h.register:
			set, ok := h.clients[client.ToDoID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.ToDoID] = set
			}
			set[client] = true
			log.Printf("Client connected to ToDo %d", client.ToDoID)
		case client := <-h.unregister:
			h.remove(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.ToDoID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.ToDoID)
	}
	log.Printf("Client disconnected from ToDo %d", client.ToDoID)
}

func (h *Hub) deliver(event Event) {
	set := h.clients[event.ToDoID]
	if len(set) == 0 {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling event %s: %v", event.Type, err)
		return
	}

	for client := range set {
		select {
		case client.Send <- message:
		default:
			// Client's send buffer is full, assume disconnected
			log.Printf("Client send buffer full, removing client of ToDo %d", client.ToDoID)
			h.remove(client)
		}
	}
}
