package services

import "log"

// Event types published after successful mutations.
const (
	EventToDoUpdated         = "todo.updated"
	EventToDoDeleted         = "todo.deleted"
	EventCollaboratorAdded   = "collaborator.added"
	EventCollaboratorRemoved = "collaborator.removed"
	EventTaskCreated         = "task.created"
	EventTaskUpdated         = "task.updated"
	EventTaskDeleted         = "task.deleted"
)

// Event is a change to one todo, delivered to its live subscribers.
type Event struct {
	Type   string `json:"type"`
	ToDoID int64  `json:"todoId"`
	Data   any    `json:"data"`
}

// Notifier receives events. Publish must not block the caller.
type Notifier interface {
	Publish(event Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		log.Println("No event notifier configured, live updates disabled")
		return nopNotifier{}
	}
	return n
}
