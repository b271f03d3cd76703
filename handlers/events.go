package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/todo-collab/services"
)

const sendBuffer = 256

// EventHandler streams the live events of one todo over a websocket.
type EventHandler struct {
	todos    *services.ToDoService
	hub      *services.Hub
	upgrader websocket.Upgrader
}

// NewEventHandler accepts upgrades from any origin the CORS layer let
// through.
func NewEventHandler(todos *services.ToDoService, hub *services.Hub) *EventHandler {
	return &EventHandler{
		todos: todos,
		hub:   hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and subscribes it to the todo
// named in the path. An unknown todo is answered with 404 before upgrading.
func (h *EventHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	if _, err := h.todos.Read(r.Context(), todoID); err != nil {
		fail(w, err, "", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &services.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		ToDoID: todoID,
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
