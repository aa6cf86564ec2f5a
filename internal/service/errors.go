package service

import (
	"errors"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/screen"
)

// ValidationError is a user input problem detected before calling the backend
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Message turns an error from this package into the line shown to the user
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Msg
	}
	var requiredErr *screen.RequiredError
	if errors.As(err, &requiredErr) {
		return "Please fill in all required fields."
	}
	return backend.Message(err, fallback)
}
