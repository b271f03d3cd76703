package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/todo-collab/database"
	"github.com/CrowderSoup/todo-collab/services"
)

var errBadID = errors.New("invalid id")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// fail maps err to a response. On a validation failure the submitted
// entity is sent back under key so the form can be shown again.
func fail(w http.ResponseWriter, err error, key string, redisplay any) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			log.Printf("Validation error in field '%s': %s - Rejected value: '%v'", f.Field, f.Message, f.Value)
		}
		body := map[string]any{"errors": verr.Fields}
		if key != "" && redisplay != nil {
			body[key] = redisplay
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errBadID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Error handling request: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// pathID reads a positive integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, mux.Vars(r)[name])
}

// optionalID reads an integer form value, zero when absent.
func optionalID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return 0, nil
	}
	return parseID(name, raw)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &idError{name: name, raw: raw}
	}
	return id, nil
}

type idError struct {
	name string
	raw  string
}

func (e *idError) Error() string {
	return "invalid " + e.name + ": '" + e.raw + "'"
}

func (e *idError) Is(target error) bool {
	return target == errBadID
}
