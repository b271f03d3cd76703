package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// StateStore persists the workflow states a task can be in.
type StateStore struct {
	db *sqlx.DB
}

func NewStateStore(db *sqlx.DB) *StateStore {
	return &StateStore{db: db}
}

// Create inserts a new state and returns it with its assigned id.
func (s *StateStore) Create(ctx context.Context, state State) (*State, error) {
	if strings.TrimSpace(state.Name) == "" {
		return nil, fmt.Errorf("state name must not be empty")
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO states (name) VALUES (?)", state.Name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating state %q: %w", state.Name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating state: %w", err)
	}
	state.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading state id: %w", err)
	}
	return &state, nil
}

func (s *StateStore) ReadByID(ctx context.Context, id int64) (*State, error) {
	var state State
	err := s.db.GetContext(ctx, &state, "SELECT id, name FROM states WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("state", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting state %d: %w", id, err)
	}
	return &state, nil
}

func (s *StateStore) ReadByName(ctx context.Context, name string) (*State, error) {
	var state State
	err := s.db.GetContext(ctx, &state, "SELECT id, name FROM states WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting state %q: %w", name, err)
	}
	return &state, nil
}

func (s *StateStore) Update(ctx context.Context, state State) (*State, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE states SET name = ? WHERE id = ?", state.Name, state.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("updating state %d: %w", state.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("updating state %d: %w", state.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, notFound("state", state.ID)
	}
	return &state, nil
}

// Delete removes a state. It fails while tasks still reference it.
func (s *StateStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM states WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting state %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notFound("state", id)
	}
	return nil
}

func (s *StateStore) ListAll(ctx context.Context) ([]State, error) {
	states := []State{}
	if err := s.db.SelectContext(ctx, &states, "SELECT id, name FROM states ORDER BY id"); err != nil {
		return nil, fmt.Errorf("querying states: %w", err)
	}
	return states, nil
}
