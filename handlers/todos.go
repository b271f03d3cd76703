package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/CrowderSoup/todo-collab/database"
	"github.com/CrowderSoup/todo-collab/services"
)

// ToDoHandler serves the todo pages and collaborator actions.
type ToDoHandler struct {
	todos *services.ToDoService
}

func NewToDoHandler(todos *services.ToDoService) *ToDoHandler {
	return &ToDoHandler{todos: todos}
}

// todoInput reads a todo form. createdAt and ownerId are carried along
// as submitted; the rules never trust them.
func todoInput(r *http.Request) services.ToDoInput {
	in := services.ToDoInput{Title: r.FormValue("title")}
	if t, err := time.Parse(time.RFC3339, r.FormValue("createdAt")); err == nil {
		in.CreatedAt = t
	}
	if id, err := strconv.ParseInt(r.FormValue("ownerId"), 10, 64); err == nil {
		in.OwnerID = id
	}
	return in
}

func (h *ToDoHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ownerId": ownerID, "todo": services.ToDoInput{}})
}

func (h *ToDoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Creating ToDo for user %d", ownerID)
	in := todoInput(r)
	if _, err := h.todos.Create(r.Context(), ownerID, in); err != nil {
		fail(w, err, "todo", in)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/all/users/%d", ownerID))
}

// ReadWithContext answers a todo with its tasks and candidate collaborators.
func (h *ToDoHandler) ReadWithContext(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	log.Printf("Reading ToDo %d with tasks", id)
	view, err := h.todos.ReadWithContext(r.Context(), id)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ToDoHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	todo, err := h.todos.Read(r.Context(), todoID)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": todo, "ownerId": ownerID})
}

func (h *ToDoHandler) Update(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Updating ToDo %d", todoID)
	todo, err := h.todos.Update(r.Context(), todoID, todoInput(r))
	if err != nil {
		fail(w, err, "todo", todo)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/all/users/%d", ownerID))
}

func (h *ToDoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Deleting ToDo %d", todoID)
	if err := h.todos.Delete(r.Context(), todoID); err != nil {
		fail(w, err, "", nil)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/all/users/%d", ownerID))
}

func (h *ToDoHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	log.Printf("Listing ToDos of user %d", userID)
	list, err := h.todos.ListForUser(r.Context(), userID)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ToDoHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	h.changeCollaborator(w, r, h.todos.AddCollaborator)
}

func (h *ToDoHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	h.changeCollaborator(w, r, h.todos.RemoveCollaborator)
}

type collaboratorChange func(ctx context.Context, todoID, userID int64) (*database.ToDo, error)

func (h *ToDoHandler) changeCollaborator(w http.ResponseWriter, r *http.Request, change collaboratorChange) {
	todoID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	userID, err := parseID("user_id", r.URL.Query().Get("user_id"))
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Changing collaborator %d on ToDo %d", userID, todoID)
	if _, err := change(r.Context(), todoID, userID); err != nil {
		fail(w, err, "", nil)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/%d/tasks", todoID))
}
