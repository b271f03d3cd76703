package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/CrowderSoup/todo-collab/database"
	"github.com/CrowderSoup/todo-collab/services"
)

// TaskHandler serves the task pages of a todo.
type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func taskInput(r *http.Request) (services.TaskInput, error) {
	stateID, err := optionalID(r, "stateId")
	if err != nil {
		return services.TaskInput{}, err
	}
	return services.TaskInput{
		Name:     r.FormValue("name"),
		Priority: database.Priority(r.FormValue("priority")),
		StateID:  stateID,
	}, nil
}

func (h *TaskHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	form, err := h.tasks.CreateForm(r.Context(), todoID)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	in, err := taskInput(r)
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Creating task in ToDo %d", todoID)
	if _, err := h.tasks.Create(r.Context(), todoID, in); err != nil {
		fail(w, err, "task", in)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/%d/tasks", todoID))
}

func (h *TaskHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "task_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	if _, err := pathID(r, "todo_id"); err != nil {
		fail(w, err, "", nil)
		return
	}
	form, err := h.tasks.ReadForEdit(r.Context(), taskID)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "task_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	in, err := taskInput(r)
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Updating task %d", taskID)
	task, err := h.tasks.Update(r.Context(), taskID, todoID, in)
	if err != nil {
		fail(w, err, "task", task)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/%d/tasks", todoID))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "task_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Deleting task %d", taskID)
	if err := h.tasks.Delete(r.Context(), taskID); err != nil {
		fail(w, err, "", nil)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/%d/tasks", todoID))
}

func (h *TaskHandler) ListForToDo(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "todo_id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	tasks, err := h.tasks.ListForToDo(r.Context(), todoID)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
