package services

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/CrowderSoup/todo-collab/database"
)

// UserInput is the self-service part of a user form.
type UserInput struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"notblank"`
}

// ToDoInput is a submitted todo form. CreatedAt, OwnerID and
// CollaboratorIDs are client supplied and never trusted by the rules.
type ToDoInput struct {
	Title           string    `json:"title" validate:"notblank"`
	CreatedAt       time.Time `json:"createdAt"`
	OwnerID         int64     `json:"ownerId"`
	CollaboratorIDs []int64   `json:"collaboratorIds"`
}

// TaskInput is a submitted task form. A zero StateID selects the default
// state on create and keeps the current state on update.
type TaskInput struct {
	Name     string            `json:"name" validate:"notblank"`
	Priority database.Priority `json:"priority" validate:"required,priority"`
	StateID  int64             `json:"stateId"`
}

var fieldMessages = map[string]string{
	"notblank": "must not be blank",
	"required": "is required",
	"email":    "must be a valid email address",
	"priority": "must be one of LOW, MEDIUM, HIGH",
}

// Validator checks input structs against their validate tags and reports
// failures by json field name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return database.Priority(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// Validate returns the field errors of input, or nil when it is valid.
func (v *Validator) Validate(input any) []FieldError {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields = append(fields, FieldError{Field: fe.Field(), Message: msg, Value: fe.Value()})
	}
	return fields
}

func (v *Validator) check(input any) error {
	if fields := v.Validate(input); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
