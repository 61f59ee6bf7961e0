package types

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout            = errors.New("request timed out")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrEmailTaken         = errors.New("email already registered")
	ErrConflict           = errors.New("conflicts with an existing record")
)

// APIError is a non-success answer from the remote service
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	}
	return nil
}
