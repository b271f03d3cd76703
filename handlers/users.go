package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/CrowderSoup/todo-collab/services"
)

// UserHandler serves the user pages.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func userInput(r *http.Request) services.UserInput {
	return services.UserInput{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}
}

// List answers the home page and /users/all.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	log.Println("Listing all users")
	users, err := h.users.List(r.Context())
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": services.UserInput{}})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Println("Creating user")
	in := userInput(r)
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		fail(w, err, "user", in)
		return
	}
	seeOther(w, r, fmt.Sprintf("/todos/all/users/%d", user.ID))
}

func (h *UserHandler) Read(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	log.Printf("Reading user %d", id)
	user, err := h.users.Read(r.Context(), id)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	form, err := h.users.ReadForEdit(r.Context(), id)
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	roleID, err := optionalID(r, "roleId")
	if err != nil {
		fail(w, err, "", nil)
		return
	}

	log.Printf("Updating user %d", id)
	user, err := h.users.Update(r.Context(), id, userInput(r), roleID)
	if err != nil {
		fail(w, err, "user", user)
		return
	}
	seeOther(w, r, fmt.Sprintf("/users/%d/read", user.ID))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "", nil)
		return
	}
	log.Printf("Deleting user %d", id)
	if err := h.users.Delete(r.Context(), id); err != nil {
		fail(w, err, "", nil)
		return
	}
	seeOther(w, r, "/users/all")
}
