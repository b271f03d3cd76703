package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CrowderSoup/todo-collab/database"
)

// In-memory stores with write counters, used to check that rejected
// operations never reach a store.

type fakeUsers struct {
	byID    map[int64]database.User
	nextID  int64
	creates int
	updates int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]database.User{}, nextID: 1}
}

func (f *fakeUsers) add(u database.User) database.User {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u database.User) (*database.User, error) {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("creating user: %w", database.ErrDuplicate)
		}
	}
	f.creates++
	u = f.add(database.User{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Password: u.Password, Role: u.Role})
	return &u, nil
}

func (f *fakeUsers) ReadByID(_ context.Context, id int64) (*database.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, &database.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

func (f *fakeUsers) Update(_ context.Context, u database.User) (*database.User, error) {
	if _, ok := f.byID[u.ID]; !ok {
		return nil, &database.NotFoundError{Entity: "user", ID: u.ID}
	}
	for _, existing := range f.byID {
		if existing.ID != u.ID && existing.Email == u.Email {
			return nil, fmt.Errorf("updating user: %w", database.ErrDuplicate)
		}
	}
	f.updates++
	f.byID[u.ID] = u
	return &u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return &database.NotFoundError{Entity: "user", ID: id}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) ListAll(context.Context) ([]database.User, error) {
	users := make([]database.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

var (
	adminRole = database.Role{ID: 1, Name: database.RoleAdmin}
	userRole  = database.Role{ID: 2, Name: database.RoleUser}
)

type fakeRoles struct{}

func (fakeRoles) ReadByID(_ context.Context, id int64) (*database.Role, error) {
	for _, r := range []database.Role{adminRole, userRole} {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &database.NotFoundError{Entity: "role", ID: id}
}

func (fakeRoles) ReadByName(_ context.Context, name string) (*database.Role, error) {
	for _, r := range []database.Role{adminRole, userRole} {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, database.ErrNotFound)
}

func (fakeRoles) ListAll(context.Context) ([]database.Role, error) {
	return []database.Role{adminRole, userRole}, nil
}

var (
	stateNew  = database.State{ID: 1, Name: database.StateNew}
	stateDone = database.State{ID: 4, Name: "Done"}
)

type fakeStates struct{}

func (fakeStates) ReadByID(_ context.Context, id int64) (*database.State, error) {
	for _, s := range []database.State{stateNew, stateDone} {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, &database.NotFoundError{Entity: "state", ID: id}
}

func (fakeStates) ReadByName(_ context.Context, name string) (*database.State, error) {
	for _, s := range []database.State{stateNew, stateDone} {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("state %q: %w", name, database.ErrNotFound)
}

func (fakeStates) ListAll(context.Context) ([]database.State, error) {
	return []database.State{stateNew, stateDone}, nil
}

type fakeToDos struct {
	byID    map[int64]database.ToDo
	nextID  int64
	creates int
	updates int
}

func newFakeToDos() *fakeToDos {
	return &fakeToDos{byID: map[int64]database.ToDo{}, nextID: 1}
}

func cloneToDo(t database.ToDo) database.ToDo {
	t.Collaborators = append([]database.User{}, t.Collaborators...)
	return t
}

func (f *fakeToDos) Create(_ context.Context, t database.ToDo) (*database.ToDo, error) {
	f.creates++
	t.ID = f.nextID
	f.nextID++
	f.byID[t.ID] = cloneToDo(t)
	out := cloneToDo(t)
	return &out, nil
}

func (f *fakeToDos) ReadByID(_ context.Context, id int64) (*database.ToDo, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, &database.NotFoundError{Entity: "todo", ID: id}
	}
	out := cloneToDo(t)
	return &out, nil
}

// Update mirrors the sqlx store: title and collaborators only.
func (f *fakeToDos) Update(_ context.Context, t database.ToDo) (*database.ToDo, error) {
	stored, ok := f.byID[t.ID]
	if !ok {
		return nil, &database.NotFoundError{Entity: "todo", ID: t.ID}
	}
	f.updates++
	stored.Title = t.Title
	stored.Collaborators = append([]database.User{}, t.Collaborators...)
	f.byID[t.ID] = stored
	out := cloneToDo(stored)
	return &out, nil
}

func (f *fakeToDos) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return &database.NotFoundError{Entity: "todo", ID: id}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeToDos) ListByUser(_ context.Context, userID int64) ([]database.ToDo, error) {
	var out []database.ToDo
	for _, t := range f.byID {
		if t.Owner.ID == userID || t.HasCollaborator(userID) {
			out = append(out, cloneToDo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeTasks struct {
	byID    map[int64]database.Task
	nextID  int64
	creates int
	updates int
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{byID: map[int64]database.Task{}, nextID: 1}
}

func (f *fakeTasks) Create(_ context.Context, t database.Task) (*database.Task, error) {
	f.creates++
	t.ID = f.nextID
	f.nextID++
	f.byID[t.ID] = t
	return &t, nil
}

func (f *fakeTasks) ReadByID(_ context.Context, id int64) (*database.Task, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, &database.NotFoundError{Entity: "task", ID: id}
	}
	return &t, nil
}

func (f *fakeTasks) Update(_ context.Context, t database.Task) (*database.Task, error) {
	stored, ok := f.byID[t.ID]
	if !ok {
		return nil, &database.NotFoundError{Entity: "task", ID: t.ID}
	}
	f.updates++
	stored.Name, stored.Priority, stored.State = t.Name, t.Priority, t.State
	f.byID[t.ID] = stored
	return &stored, nil
}

func (f *fakeTasks) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return &database.NotFoundError{Entity: "task", ID: id}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTasks) ListByToDo(_ context.Context, todoID int64) ([]database.Task, error) {
	out := []database.Task{}
	for _, t := range f.byID {
		if t.ToDoID == todoID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// recorder is a Notifier that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
