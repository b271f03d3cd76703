package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/todo-collab/database"
	"github.com/CrowderSoup/todo-collab/database/databasetest"
	"github.com/CrowderSoup/todo-collab/handlers"
	"github.com/CrowderSoup/todo-collab/services"
)

type testServer struct {
	*httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := databasetest.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	users := database.NewUserStore(db)
	todos := database.NewToDoStore(db)
	tasks := database.NewTaskStore(db)

	hub := services.NewHub()
	go hub.Run(ctx)

	validate := services.NewValidator()
	userService, err := services.NewUserService(ctx, users, database.NewRoleStore(db), validate)
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	todoService := services.NewToDoService(todos, tasks, users, validate, hub)
	taskService, err := services.NewTaskService(ctx, tasks, todos, database.NewStateStore(db), validate, hub)
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}

	router := handlers.NewRouter(handlers.Handlers{
		Users:  handlers.NewUserHandler(userService),
		ToDos:  handlers.NewToDoHandler(todoService),
		Tasks:  handlers.NewTaskHandler(taskService),
		Events: handlers.NewEventHandler(todoService, hub),
	}, "")

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := s.client.PostForm(s.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("Location: got %q, want %q", got, location)
	}
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("%s %s: got status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, status)
	}
}

func userForm(email string) url.Values {
	return url.Values{
		"firstName": {"First"},
		"lastName":  {"Last"},
		"email":     {email},
		"password":  {"1234"},
	}
}

type validationBody struct {
	Errors []services.FieldError `json:"errors"`
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	expectRedirect(t, s.post(t, "/users/create", userForm("test@gmail.com")), "/todos/all/users/1")

	var body struct {
		User database.User `json:"user"`
	}
	resp := s.get(t, "/users/1/read")
	expectStatus(t, resp, http.StatusOK)
	decode(t, resp, &body)
	if body.User.Email != "test@gmail.com" || body.User.Role.Name != database.RoleUser {
		t.Errorf("user: got %+v", body.User)
	}
}

func TestCreateUserInvalidEmail(t *testing.T) {
	s := newTestServer(t)

	resp := s.post(t, "/users/create", userForm("invalid_email"))
	expectStatus(t, resp, http.StatusUnprocessableEntity)

	var body struct {
		validationBody
		User services.UserInput `json:"user"`
	}
	decode(t, resp, &body)
	if len(body.Errors) != 1 || body.Errors[0].Field != "email" {
		t.Errorf("errors: got %+v, want one on email", body.Errors)
	}
	if body.User.Email != "invalid_email" {
		t.Errorf("redisplayed email: got %q", body.User.Email)
	}

	var list struct {
		Users []database.User `json:"users"`
	}
	decode(t, s.get(t, "/users/all"), &list)
	if len(list.Users) != 0 {
		t.Errorf("users: got %d, want 0", len(list.Users))
	}
}

func TestUpdateUserKeepsUSERRole(t *testing.T) {
	s := newTestServer(t)
	s.post(t, "/users/create", userForm("u@example.com"))

	form := userForm("renamed@example.com")
	form.Set("roleId", "1")
	expectRedirect(t, s.post(t, "/users/1/update", form), "/users/1/read")

	var body struct {
		User database.User `json:"user"`
	}
	decode(t, s.get(t, "/users/1/read"), &body)
	if body.User.Email != "renamed@example.com" {
		t.Errorf("email: got %q", body.User.Email)
	}
	if body.User.Role.Name != database.RoleUser {
		t.Errorf("role: got %q, want %q", body.User.Role.Name, database.RoleUser)
	}
}

func TestBadAndMissingIDs(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/users/99/read", http.StatusNotFound},
		{"/users/99/update", http.StatusNotFound},
		{"/users/99/delete", http.StatusNotFound},
		{"/users/abc/read", http.StatusBadRequest},
		{"/todos/99/tasks", http.StatusNotFound},
		{"/todos/all/users/99", http.StatusNotFound},
		{"/todos/99/add?user_id=1", http.StatusNotFound},
		{"/todos/1/add", http.StatusBadRequest},
		{"/tasks/create/todos/99", http.StatusNotFound},
		{"/tasks/99/update/todos/1", http.StatusNotFound},
		{"/ws/todos/99", http.StatusNotFound},
	}
	for _, tt := range tests {
		expectStatus(t, s.get(t, tt.path), tt.status)
	}
}

func TestToDoAndTaskFlow(t *testing.T) {
	s := newTestServer(t)
	s.post(t, "/users/create", userForm("owner@example.com"))
	s.post(t, "/users/create", userForm("friend@example.com"))

	expectRedirect(t, s.post(t, "/todos/create/users/1", url.Values{"title": {"Test"}, "ownerId": {"2"}}), "/todos/all/users/1")
	expectRedirect(t, s.get(t, "/todos/1/add?user_id=2"), "/todos/1/tasks")
	expectRedirect(t, s.post(t, "/tasks/create/todos/1", url.Values{"name": {"Task"}, "priority": {"LOW"}}), "/todos/1/tasks")

	var view services.ToDoView
	resp := s.get(t, "/todos/1/tasks")
	expectStatus(t, resp, http.StatusOK)
	decode(t, resp, &view)
	if view.ToDo.Owner.ID != 1 {
		t.Errorf("owner: got %d, want 1", view.ToDo.Owner.ID)
	}
	if len(view.ToDo.Collaborators) != 1 || view.ToDo.Collaborators[0].ID != 2 {
		t.Errorf("collaborators: got %+v", view.ToDo.Collaborators)
	}
	if len(view.Users) != 1 || view.Users[0].ID != 2 {
		t.Errorf("candidate users: got %+v", view.Users)
	}

	var list struct {
		Tasks []database.Task `json:"tasks"`
	}
	decode(t, s.get(t, "/tasks/all/todos/1"), &list)
	if len(list.Tasks) != 1 || list.Tasks[0].Name != "Task" || list.Tasks[0].State.Name != database.StateNew {
		t.Errorf("tasks: got %+v", list.Tasks)
	}

	var visible services.UserToDos
	decode(t, s.get(t, "/todos/all/users/2"), &visible)
	if len(visible.ToDos) != 1 {
		t.Errorf("collaborator todos: got %d, want 1", len(visible.ToDos))
	}

	expectRedirect(t, s.post(t, "/tasks/1/update/todos/1", url.Values{"name": {"Done"}, "priority": {"HIGH"}, "stateId": {"4"}}), "/todos/1/tasks")
	expectRedirect(t, s.get(t, "/todos/1/remove?user_id=2"), "/todos/1/tasks")
	expectRedirect(t, s.get(t, "/tasks/1/delete/todos/1"), "/todos/1/tasks")
	expectRedirect(t, s.get(t, "/todos/1/delete/users/1"), "/todos/all/users/1")
	expectStatus(t, s.get(t, "/todos/1/tasks"), http.StatusNotFound)
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestServer(t)
	s.post(t, "/users/create", userForm("owner@example.com"))
	s.post(t, "/todos/create/users/1", url.Values{"title": {"Test"}})

	resp := s.post(t, "/tasks/create/todos/1", url.Values{"name": {"  "}, "priority": {"LOW"}})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	var body validationBody
	decode(t, resp, &body)
	if len(body.Errors) != 1 || body.Errors[0].Field != "name" {
		t.Errorf("errors: got %+v, want one on name", body.Errors)
	}

	expectStatus(t, s.post(t, "/tasks/create/todos/1", url.Values{"name": {"Task"}, "priority": {"LOW"}, "stateId": {"x"}}), http.StatusBadRequest)

	var list struct {
		Tasks []database.Task `json:"tasks"`
	}
	decode(t, s.get(t, "/tasks/all/todos/1"), &list)
	if len(list.Tasks) != 0 {
		t.Errorf("tasks: got %d, want 0", len(list.Tasks))
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	if got := s.get(t, "/home").Header.Get("X-Request-ID"); got == "" {
		t.Error("expected a generated X-Request-ID")
	}

	req, _ := http.NewRequest(http.MethodGet, s.URL+"/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID: got %q, want %q", got, "abc-123")
	}
}

func TestWebSocketReceivesToDoEvents(t *testing.T) {
	s := newTestServer(t)
	s.post(t, "/users/create", userForm("owner@example.com"))
	s.post(t, "/todos/create/users/1", url.Values{"title": {"Test"}})

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/todos/1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	defer conn.Close()

	events := make(chan services.Event, 16)
	go func() {
		for {
			var e services.Event
			if err := conn.ReadJSON(&e); err != nil {
				close(events)
				return
			}
			events <- e
		}
	}()

	// The subscription is registered just after the handshake completes,
	// so keep changing the todo until an event arrives.
	deadline := time.After(2 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				t.Fatal("connection closed before any event")
			}
			if e.Type != services.EventToDoUpdated || e.ToDoID != 1 {
				t.Errorf("event: got %+v", e)
			}
			return
		case <-ticker.C:
			s.post(t, "/todos/1/update/users/1", url.Values{"title": {"Renamed"}})
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}
