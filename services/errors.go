package services

import (
	"errors"
	"strings"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// ValidationError reports which required fields were missing or empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
