package services

import (
	"context"
	"fmt"
	"log"

	"github.com/CrowderSoup/todo-collab/database"
)

// TaskService applies the task rules. A task stays under the todo it was
// created in; its state may move to any other state.
type TaskService struct {
	tasks        TaskStore
	todos        ToDoStore
	states       StateStore
	validate     *Validator
	events       Notifier
	defaultState database.State
}

// TaskForm carries what a task form needs: the task or its parent todo,
// plus the selectable states and priorities.
type TaskForm struct {
	Task       *database.Task      `json:"task,omitempty"`
	ToDo       *database.ToDo      `json:"todo,omitempty"`
	States     []database.State    `json:"states,omitempty"`
	Priorities []database.Priority `json:"priorities"`
}

// NewTaskService resolves the default "New" state once, at startup.
func NewTaskService(ctx context.Context, tasks TaskStore, todos ToDoStore, states StateStore, validate *Validator, events Notifier) (*TaskService, error) {
	state, err := states.ReadByName(ctx, database.StateNew)
	if err != nil {
		return nil, fmt.Errorf("resolving default state: %w", err)
	}

	return &TaskService{
		tasks:        tasks,
		todos:        todos,
		states:       states,
		validate:     validate,
		events:       notifierOrNop(events),
		defaultState: *state,
	}, nil
}

// CreateForm returns the parent todo and the priorities for a new task.
func (s *TaskService) CreateForm(ctx context.Context, todoID int64) (*TaskForm, error) {
	todo, err := s.todos.ReadByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	return &TaskForm{ToDo: todo, Priorities: database.Priorities()}, nil
}

// Create stores a task under todoID.
func (s *TaskService) Create(ctx context.Context, todoID int64, in TaskInput) (*database.Task, error) {
	todo, err := s.todos.ReadByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	state := s.defaultState
	if in.StateID != 0 {
		st, err := s.states.ReadByID(ctx, in.StateID)
		if err != nil {
			return nil, err
		}
		state = *st
	}

	task, err := s.tasks.Create(ctx, database.Task{
		Name:     in.Name,
		Priority: in.Priority,
		State:    state,
		ToDoID:   todo.ID,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Task %d (%q) was created in ToDo %d", task.ID, task.Name, todo.ID)
	s.events.Publish(Event{Type: EventTaskCreated, ToDoID: todo.ID, Data: task})
	return task, nil
}

// ReadForEdit returns a task with every state and priority.
func (s *TaskService) ReadForEdit(ctx context.Context, taskID int64) (*TaskForm, error) {
	task, err := s.tasks.ReadByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	states, err := s.states.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &TaskForm{Task: task, States: states, Priorities: database.Priorities()}, nil
}

// Update overwrites name, priority and, when in.StateID is set, the state of
// taskID. todoID must resolve but never re-parents the task.
//
// On a *ValidationError the returned task carries the submitted name and
// priority; nothing is written.
func (s *TaskService) Update(ctx context.Context, taskID, todoID int64, in TaskInput) (*database.Task, error) {
	task, err := s.tasks.ReadByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.todos.ReadByID(ctx, todoID); err != nil {
		return nil, err
	}

	task.Name = in.Name
	task.Priority = in.Priority

	if err := s.validate.check(in); err != nil {
		return task, err
	}

	if in.StateID != 0 {
		state, err := s.states.ReadByID(ctx, in.StateID)
		if err != nil {
			return nil, err
		}
		task.State = *state
	}

	updated, err := s.tasks.Update(ctx, *task)
	if err != nil {
		return nil, err
	}

	log.Printf("Task %d (%q) was updated", updated.ID, updated.Name)
	s.events.Publish(Event{Type: EventTaskUpdated, ToDoID: updated.ToDoID, Data: updated})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.tasks.ReadByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("Task with id %d was deleted", id)
	s.events.Publish(Event{Type: EventTaskDeleted, ToDoID: task.ToDoID, Data: task})
	return nil
}

// ListForToDo returns every task linked to todoID.
func (s *TaskService) ListForToDo(ctx context.Context, todoID int64) ([]database.Task, error) {
	return s.tasks.ListByToDo(ctx, todoID)
}
