package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RoleStore persists Role reference data.
type RoleStore struct {
	db *sqlx.DB
}

func NewRoleStore(db *sqlx.DB) *RoleStore {
	return &RoleStore{db: db}
}

// Create inserts a new role and returns it with its assigned id.
func (s *RoleStore) Create(ctx context.Context, role Role) (*Role, error) {
	if strings.TrimSpace(role.Name) == "" {
		return nil, fmt.Errorf("role name must not be empty")
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", role.Name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating role %q: %w", role.Name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating role: %w", err)
	}
	role.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading role id: %w", err)
	}
	return &role, nil
}

// ReadByID retrieves a single role.
func (s *RoleStore) ReadByID(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := s.db.GetContext(ctx, &role, "SELECT id, name FROM roles WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("role", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting role %d: %w", id, err)
	}
	return &role, nil
}

// ReadByName retrieves a role by its unique name.
func (s *RoleStore) ReadByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := s.db.GetContext(ctx, &role, "SELECT id, name FROM roles WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting role %q: %w", name, err)
	}
	return &role, nil
}

// Update renames an existing role.
func (s *RoleStore) Update(ctx context.Context, role Role) (*Role, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE roles SET name = ? WHERE id = ?", role.Name, role.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("updating role %d: %w", role.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("updating role %d: %w", role.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, notFound("role", role.ID)
	}
	return &role, nil
}

// Delete removes a role. It fails while users still reference it.
func (s *RoleStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting role %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notFound("role", id)
	}
	return nil
}

// ListAll retrieves all roles ordered by id.
func (s *RoleStore) ListAll(ctx context.Context) ([]Role, error) {
	roles := []Role{}
	if err := s.db.SelectContext(ctx, &roles, "SELECT id, name FROM roles ORDER BY id"); err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	return roles, nil
}
