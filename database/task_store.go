package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const taskSelect = `
	SELECT t.id, t.name, t.priority, t.todo_id, s.id AS state_id, s.name AS state_name
	FROM tasks t INNER JOIN states s ON s.id = t.state_id`

type taskRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Priority  string `db:"priority"`
	ToDoID    int64  `db:"todo_id"`
	StateID   int64  `db:"state_id"`
	StateName string `db:"state_name"`
}

func (r taskRow) task() Task {
	return Task{
		ID:       r.ID,
		Name:     r.Name,
		Priority: Priority(r.Priority),
		State:    State{ID: r.StateID, Name: r.StateName},
		ToDoID:   r.ToDoID,
	}
}

func tasksFromRows(rows []taskRow) []Task {
	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks
}

// TaskStore persists tasks.
type TaskStore struct {
	db *sqlx.DB
}

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts a task under task.ToDoID and returns it with its assigned id.
func (s *TaskStore) Create(ctx context.Context, task Task) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (name, priority, state_id, todo_id) VALUES (?, ?, ?, ?)",
		task.Name, string(task.Priority), task.State.ID, task.ToDoID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading task id: %w", err)
	}
	return s.ReadByID(ctx, id)
}

func (s *TaskStore) ReadByID(ctx context.Context, id int64) (*Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, taskSelect+" WHERE t.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	task := row.task()
	return &task, nil
}

// Update writes name, priority and state. The parent todo is never changed.
func (s *TaskStore) Update(ctx context.Context, task Task) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET name = ?, priority = ?, state_id = ? WHERE id = ?",
		task.Name, string(task.Priority), task.State.ID, task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, notFound("task", task.ID)
	}
	return s.ReadByID(ctx, task.ID)
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notFound("task", id)
	}
	return nil
}

func (s *TaskStore) ListAll(ctx context.Context) ([]Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, taskSelect+" ORDER BY t.id"); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasksFromRows(rows), nil
}

// ListByToDo retrieves the tasks of one todo ordered by id.
func (s *TaskStore) ListByToDo(ctx context.Context, todoID int64) ([]Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, taskSelect+" WHERE t.todo_id = ? ORDER BY t.id", todoID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for todo %d: %w", todoID, err)
	}
	return tasksFromRows(rows), nil
}
