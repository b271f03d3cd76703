package services

import (
	"context"

	"github.com/CrowderSoup/todo-collab/database"
)

// The rules only need these views of the stores; the sqlx stores in the
// database package satisfy them.

type UserStore interface {
	Create(ctx context.Context, user database.User) (*database.User, error)
	ReadByID(ctx context.Context, id int64) (*database.User, error)
	Update(ctx context.Context, user database.User) (*database.User, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]database.User, error)
}

type RoleStore interface {
	ReadByID(ctx context.Context, id int64) (*database.Role, error)
	ReadByName(ctx context.Context, name string) (*database.Role, error)
	ListAll(ctx context.Context) ([]database.Role, error)
}

type StateStore interface {
	ReadByID(ctx context.Context, id int64) (*database.State, error)
	ReadByName(ctx context.Context, name string) (*database.State, error)
	ListAll(ctx context.Context) ([]database.State, error)
}

type ToDoStore interface {
	Create(ctx context.Context, todo database.ToDo) (*database.ToDo, error)
	ReadByID(ctx context.Context, id int64) (*database.ToDo, error)
	Update(ctx context.Context, todo database.ToDo) (*database.ToDo, error)
	Delete(ctx context.Context, id int64) error
	// ListByUser returns the todos the user owns or collaborates on.
	ListByUser(ctx context.Context, userID int64) ([]database.ToDo, error)
}

type TaskStore interface {
	Create(ctx context.Context, task database.Task) (*database.Task, error)
	ReadByID(ctx context.Context, id int64) (*database.Task, error)
	Update(ctx context.Context, task database.Task) (*database.Task, error)
	Delete(ctx context.Context, id int64) error
	ListByToDo(ctx context.Context, todoID int64) ([]database.Task, error)
}
