package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Users  *UserHandler
	ToDos  *ToDoHandler
	Tasks  *TaskHandler
	Events *EventHandler
}

// NewRouter registers every route on a fresh router. When staticDir is not
// empty, unmatched paths are served from it.
func NewRouter(h Handlers, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	// Users
	r.HandleFunc("/", h.Users.List).Methods(http.MethodGet)
	r.HandleFunc("/home", h.Users.List).Methods(http.MethodGet)
	r.HandleFunc("/users/all", h.Users.List).Methods(http.MethodGet)
	r.HandleFunc("/users/create", h.Users.CreateForm).Methods(http.MethodGet)
	r.HandleFunc("/users/create", h.Users.Create).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/read", h.Users.Read).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/update", h.Users.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/update", h.Users.Update).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/delete", h.Users.Delete).Methods(http.MethodGet)

	// ToDos
	r.HandleFunc("/todos/create/users/{owner_id}", h.ToDos.CreateForm).Methods(http.MethodGet)
	r.HandleFunc("/todos/create/users/{owner_id}", h.ToDos.Create).Methods(http.MethodPost)
	r.HandleFunc("/todos/all/users/{user_id}", h.ToDos.ListForUser).Methods(http.MethodGet)
	r.HandleFunc("/todos/{id}/tasks", h.ToDos.ReadWithContext).Methods(http.MethodGet)
	r.HandleFunc("/todos/{todo_id}/update/users/{owner_id}", h.ToDos.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/todos/{todo_id}/update/users/{owner_id}", h.ToDos.Update).Methods(http.MethodPost)
	r.HandleFunc("/todos/{todo_id}/delete/users/{owner_id}", h.ToDos.Delete).Methods(http.MethodGet)
	r.HandleFunc("/todos/{id}/add", h.ToDos.AddCollaborator).Methods(http.MethodGet)
	r.HandleFunc("/todos/{id}/remove", h.ToDos.RemoveCollaborator).Methods(http.MethodGet)

	// Tasks
	r.HandleFunc("/tasks/create/todos/{todo_id}", h.Tasks.CreateForm).Methods(http.MethodGet)
	r.HandleFunc("/tasks/create/todos/{todo_id}", h.Tasks.Create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/all/todos/{todo_id}", h.Tasks.ListForToDo).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{task_id}/update/todos/{todo_id}", h.Tasks.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{task_id}/update/todos/{todo_id}", h.Tasks.Update).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{task_id}/delete/todos/{todo_id}", h.Tasks.Delete).Methods(http.MethodGet)

	// WebSocket route for live updates
	r.HandleFunc("/ws/todos/{id}", h.Events.HandleWebSocket)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}
