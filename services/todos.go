package services

import (
	"context"
	"log"
	"time"

	"github.com/CrowderSoup/todo-collab/database"
)

// ToDoService applies the todo rules. Owner, creation time and the
// collaborator set are owned by the server: form input never changes them.
//
// Collaborator changes are read-modify-write of the whole set with no
// version check, so concurrent changes to one todo race and the last
// write wins.
type ToDoService struct {
	todos    ToDoStore
	tasks    TaskStore
	users    UserStore
	validate *Validator
	events   Notifier
	now      func() time.Time
}

// ToDoView is a todo with its tasks and the users that could be added to it.
type ToDoView struct {
	ToDo  *database.ToDo  `json:"todo"`
	Tasks []database.Task `json:"tasks"`
	Users []database.User `json:"users"`
}

// UserToDos is every todo visible to one user.
type UserToDos struct {
	User  *database.User  `json:"user"`
	ToDos []database.ToDo `json:"todos"`
}

func NewToDoService(todos ToDoStore, tasks TaskStore, users UserStore, validate *Validator, events Notifier) *ToDoService {
	return &ToDoService{
		todos:    todos,
		tasks:    tasks,
		users:    users,
		validate: validate,
		events:   notifierOrNop(events),
		now:      time.Now,
	}
}

// Create stores a new todo owned by ownerID, stamped with the server time.
func (s *ToDoService) Create(ctx context.Context, ownerID int64, in ToDoInput) (*database.ToDo, error) {
	owner, err := s.users.ReadByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	todo, err := s.todos.Create(ctx, database.ToDo{
		Title:         in.Title,
		CreatedAt:     s.now(),
		Owner:         *owner,
		Collaborators: []database.User{},
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ToDo %d (%q) was created by user %d", todo.ID, todo.Title, owner.ID)
	return todo, nil
}

func (s *ToDoService) Read(ctx context.Context, id int64) (*database.ToDo, error) {
	return s.todos.ReadByID(ctx, id)
}

// ReadWithContext loads a todo, its tasks and every user other than the owner.
func (s *ToDoService) ReadWithContext(ctx context.Context, id int64) (*ToDoView, error) {
	todo, err := s.todos.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByToDo(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]database.User, 0, len(all))
	for _, u := range all {
		if u.ID != todo.Owner.ID {
			users = append(users, u)
		}
	}

	return &ToDoView{ToDo: todo, Tasks: tasks, Users: users}, nil
}

// Update overwrites the title of todo id. The stored owner, creation time and
// collaborators are re-attached whatever the input carries.
//
// On a *ValidationError the returned todo holds the submitted title with the
// stored owner and collaborators; nothing is written.
func (s *ToDoService) Update(ctx context.Context, id int64, in ToDoInput) (*database.ToDo, error) {
	existing, err := s.todos.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	todo := database.ToDo{
		ID:            existing.ID,
		Title:         in.Title,
		CreatedAt:     existing.CreatedAt,
		Owner:         existing.Owner,
		Collaborators: existing.Collaborators,
	}

	if err := s.validate.check(in); err != nil {
		return &todo, err
	}

	updated, err := s.todos.Update(ctx, todo)
	if err != nil {
		return nil, err
	}

	log.Printf("ToDo %d (%q) was updated", updated.ID, updated.Title)
	s.events.Publish(Event{Type: EventToDoUpdated, ToDoID: updated.ID, Data: updated})
	return updated, nil
}

// Delete removes a todo and, through the store, its tasks.
func (s *ToDoService) Delete(ctx context.Context, id int64) error {
	if err := s.todos.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("ToDo with id %d was deleted", id)
	s.events.Publish(Event{Type: EventToDoDeleted, ToDoID: id})
	return nil
}

// ListForUser returns the todos userID owns or collaborates on.
func (s *ToDoService) ListForUser(ctx context.Context, userID int64) (*UserToDos, error) {
	user, err := s.users.ReadByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserToDos{User: user, ToDos: todos}, nil
}

// AddCollaborator adds userID to the collaborators of todoID. Adding a user
// that already collaborates, or the owner, leaves the todo unchanged.
func (s *ToDoService) AddCollaborator(ctx context.Context, todoID, userID int64) (*database.ToDo, error) {
	todo, err := s.todos.ReadByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.ReadByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ID == todo.Owner.ID || todo.HasCollaborator(user.ID) {
		return todo, nil
	}

	todo.Collaborators = append(todo.Collaborators, *user)
	updated, err := s.todos.Update(ctx, *todo)
	if err != nil {
		return nil, err
	}

	log.Printf("User %d added as collaborator to ToDo %d", user.ID, todoID)
	s.events.Publish(Event{Type: EventCollaboratorAdded, ToDoID: todoID, Data: user})
	return updated, nil
}

// RemoveCollaborator drops userID from the collaborators of todoID.
// Removing a user that does not collaborate is a no-op.
func (s *ToDoService) RemoveCollaborator(ctx context.Context, todoID, userID int64) (*database.ToDo, error) {
	todo, err := s.todos.ReadByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.ReadByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !todo.HasCollaborator(user.ID) {
		return todo, nil
	}

	kept := make([]database.User, 0, len(todo.Collaborators))
	for _, c := range todo.Collaborators {
		if c.ID != user.ID {
			kept = append(kept, c)
		}
	}
	todo.Collaborators = kept

	updated, err := s.todos.Update(ctx, *todo)
	if err != nil {
		return nil, err
	}

	log.Printf("User %d removed as collaborator from ToDo %d", user.ID, todoID)
	s.events.Publish(Event{Type: EventCollaboratorRemoved, ToDoID: todoID, Data: user})
	return updated, nil
}
