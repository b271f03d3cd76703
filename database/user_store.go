package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const userColumns = `
	u.id, u.first_name, u.last_name, u.email, u.password,
	r.id AS role_id, r.name AS role_name`

const userFrom = ` FROM users u INNER JOIN roles r ON r.id = u.role_id`

// userRow is a users row joined with its role.
type userRow struct {
	ID        int64  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Password  string `db:"password"`
	RoleID    int64  `db:"role_id"`
	RoleName  string `db:"role_name"`
}

func (r userRow) user() User {
	return User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Role:      Role{ID: r.RoleID, Name: r.RoleName},
	}
}

func usersFromRows(rows []userRow) []User {
	users := make([]User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users
}

// UserStore persists users together with their role reference.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user and returns it with its assigned id.
// A duplicate e-mail yields ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, user User) (*User, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password, role_id)
		VALUES (?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, user.Password, user.Role.ID,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating user %s: %w", user.Email, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return s.ReadByID(ctx, id)
}

// ReadByID retrieves a single user with its role.
func (s *UserStore) ReadByID(ctx context.Context, id int64) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT"+userColumns+userFrom+" WHERE u.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	user := row.user()
	return &user, nil
}

// Update overwrites every column of an existing user.
func (s *UserStore) Update(ctx context.Context, user User) (*User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = ?, last_name = ?, email = ?, password = ?, role_id = ?
		WHERE id = ?`,
		user.FirstName, user.LastName, user.Email, user.Password, user.Role.ID,
		user.ID,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("updating user %d: %w", user.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, notFound("user", user.ID)
	}
	return s.ReadByID(ctx, user.ID)
}

// Delete removes a user. Owned todos and collaborator memberships are
// removed by the ON DELETE CASCADE foreign keys.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notFound("user", id)
	}
	return nil
}

// ListAll retrieves all users ordered by id.
func (s *UserStore) ListAll(ctx context.Context) ([]User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT"+userColumns+userFrom+" ORDER BY u.id"); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return usersFromRows(rows), nil
}
