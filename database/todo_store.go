package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// todoRow is a bare todos row; owner and collaborators are loaded separately.
type todoRow struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	CreatedAt string `db:"created_at"`
	OwnerID   int64  `db:"owner_id"`
}

// ToDoStore persists todos, their owner reference and collaborator set.
type ToDoStore struct {
	db *sqlx.DB
}

func NewToDoStore(db *sqlx.DB) *ToDoStore {
	return &ToDoStore{db: db}
}

// Create inserts a new todo with its collaborators and returns it with its
// assigned id.
func (s *ToDoStore) Create(ctx context.Context, todo ToDo) (*ToDo, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO todos (title, created_at, owner_id) VALUES (?, ?, ?)",
		todo.Title, formatTime(todo.CreatedAt), todo.Owner.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading todo id: %w", err)
	}

	if err := replaceCollaborators(ctx, tx, id, todo.Collaborators); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo %d: %w", id, err)
	}

	return s.ReadByID(ctx, id)
}

// ReadByID retrieves a todo with its owner and collaborators.
func (s *ToDoStore) ReadByID(ctx context.Context, id int64) (*ToDo, error) {
	var row todoRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, title, created_at, owner_id FROM todos WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}

	todo, err := s.hydrate(ctx, row)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update writes the title and replaces the collaborator set of an existing
// todo. The owner and creation time are never written.
func (s *ToDoStore) Update(ctx context.Context, todo ToDo) (*ToDo, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE todos SET title = ? WHERE id = ?", todo.Title, todo.ID)
	if err != nil {
		return nil, fmt.Errorf("updating todo %d: %w", todo.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, notFound("todo", todo.ID)
	}

	if err := replaceCollaborators(ctx, tx, todo.ID, todo.Collaborators); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo %d: %w", todo.ID, err)
	}

	return s.ReadByID(ctx, todo.ID)
}

// Delete removes a todo. Its tasks and collaborator rows cascade.
func (s *ToDoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notFound("todo", id)
	}
	return nil
}

// ListAll retrieves every todo ordered by id.
func (s *ToDoStore) ListAll(ctx context.Context) ([]ToDo, error) {
	var rows []todoRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, title, created_at, owner_id FROM todos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	return s.hydrateAll(ctx, rows)
}

// ListByUser retrieves the todos a user owns or collaborates on, ordered by id.
func (s *ToDoStore) ListByUser(ctx context.Context, userID int64) ([]ToDo, error) {
	var rows []todoRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.title, t.created_at, t.owner_id FROM todos t
		WHERE t.owner_id = ?
		   OR t.id IN (SELECT todo_id FROM todo_collaborators WHERE user_id = ?)
		ORDER BY t.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying todos for user %d: %w", userID, err)
	}
	return s.hydrateAll(ctx, rows)
}

func (s *ToDoStore) hydrateAll(ctx context.Context, rows []todoRow) ([]ToDo, error) {
	todos := make([]ToDo, 0, len(rows))
	for _, row := range rows {
		todo, err := s.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

// hydrate resolves the owner and collaborators of a todos row.
func (s *ToDoStore) hydrate(ctx context.Context, row todoRow) (ToDo, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return ToDo{}, fmt.Errorf("parsing created_at of todo %d: %w", row.ID, err)
	}

	var owner userRow
	err = s.db.GetContext(ctx, &owner, "SELECT"+userColumns+userFrom+" WHERE u.id = ?", row.OwnerID)
	if err != nil {
		return ToDo{}, fmt.Errorf("getting owner of todo %d: %w", row.ID, err)
	}

	var collaborators []userRow
	err = s.db.SelectContext(ctx, &collaborators, "SELECT"+userColumns+userFrom+`
		INNER JOIN todo_collaborators c ON c.user_id = u.id
		WHERE c.todo_id = ?
		ORDER BY u.id`, row.ID)
	if err != nil {
		return ToDo{}, fmt.Errorf("getting collaborators of todo %d: %w", row.ID, err)
	}

	return ToDo{
		ID:            row.ID,
		Title:         row.Title,
		CreatedAt:     createdAt,
		Owner:         owner.user(),
		Collaborators: usersFromRows(collaborators),
	}, nil
}

// replaceCollaborators swaps the collaborator rows of a todo for users.
// Repeated ids collapse into one row.
func replaceCollaborators(ctx context.Context, tx *sqlx.Tx, todoID int64, users []User) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM todo_collaborators WHERE todo_id = ?", todoID); err != nil {
		return fmt.Errorf("clearing collaborators of todo %d: %w", todoID, err)
	}

	for _, u := range users {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO todo_collaborators (todo_id, user_id) VALUES (?, ?)",
			todoID, u.ID); err != nil {
			return fmt.Errorf("adding collaborator %d to todo %d: %w", u.ID, todoID, err)
		}
	}

	return nil
}

// Timestamps are stored as RFC 3339 text so both sqlite drivers agree on them.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
