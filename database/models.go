package database

import "time"

// Role names seeded by the initial migration.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// StateNew is the workflow state assigned to freshly created tasks.
const StateNew = "New"

type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	// Password is stored exactly as submitted.
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

type State struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Priority is the fixed importance scale of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities returns every priority in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is one of the fixed priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ToDo struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	Owner         User      `json:"owner"`
	Collaborators []User    `json:"collaborators"`
}

// HasCollaborator reports whether a user with the given id collaborates on t.
func (t *ToDo) HasCollaborator(userID int64) bool {
	for _, c := range t.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

type Task struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	State    State    `json:"state"`
	ToDoID   int64    `json:"todoId"`
}
