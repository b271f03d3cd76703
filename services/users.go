package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/CrowderSoup/todo-collab/database"
)

// UserService applies the user rules: sign-up always lands on the default
// role, and a user holding the USER role can never change role.
type UserService struct {
	users       UserStore
	roles       RoleStore
	validate    *Validator
	defaultRole database.Role
}

// UserForm is a user together with the roles it may be assigned.
type UserForm struct {
	User  *database.User  `json:"user"`
	Roles []database.Role `json:"roles"`
}

// NewUserService resolves the default USER role once, at startup.
func NewUserService(ctx context.Context, users UserStore, roles RoleStore, validate *Validator) (*UserService, error) {
	role, err := roles.ReadByName(ctx, database.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("resolving default role: %w", err)
	}

	return &UserService{
		users:       users,
		roles:       roles,
		validate:    validate,
		defaultRole: *role,
	}, nil
}

// Create signs a user up with the default role.
func (s *UserService) Create(ctx context.Context, in UserInput) (*database.User, error) {
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	user := database.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      s.defaultRole,
	}

	created, err := s.users.Create(ctx, user)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, emailTaken(in.Email)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("User %d (%s) was created", created.ID, created.Email)
	return created, nil
}

func (s *UserService) Read(ctx context.Context, id int64) (*database.User, error) {
	return s.users.ReadByID(ctx, id)
}

// ReadForEdit returns the user and every assignable role.
func (s *UserService) ReadForEdit(ctx context.Context, id int64) (*UserForm, error) {
	user, err := s.users.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &UserForm{User: user, Roles: roles}, nil
}

// Update overwrites the self-service fields of user id. A user whose stored
// role is USER keeps it whatever roleID says; any other user is moved to
// roleID, or keeps the current role when roleID is zero.
//
// On a *ValidationError the returned user carries the submitted fields and
// the stored role so the form can be shown again; nothing is written.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput, roleID int64) (*database.User, error) {
	old, err := s.users.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user := database.User{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      old.Role,
	}

	if err := s.validate.check(in); err != nil {
		return &user, err
	}

	if old.Role.Name != database.RoleUser && roleID != 0 {
		role, err := s.roles.ReadByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		user.Role = *role
	}

	updated, err := s.users.Update(ctx, user)
	if errors.Is(err, database.ErrDuplicate) {
		user.Role = old.Role
		return &user, emailTaken(in.Email)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("User %d (%s) was updated", updated.ID, updated.Email)
	return updated, nil
}

// Delete removes a user together with the todos they own.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("User with id %d was deleted", id)
	return nil
}

func (s *UserService) List(ctx context.Context) ([]database.User, error) {
	return s.users.ListAll(ctx)
}

func emailTaken(email string) error {
	return &ValidationError{Fields: []FieldError{{
		Field:   "email",
		Message: "is already in use",
		Value:   email,
	}}}
}
