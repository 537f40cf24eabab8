package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized marks a response telling the client its session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionLost is returned when the session could not be renewed.
	ErrSessionLost = errors.New("session lost")
	// ErrIncompleteAttempt is returned when a submission does not answer every question.
	ErrIncompleteAttempt = errors.New("incomplete attempt")
	// ErrNoQuiz indicates an operation needs a loaded quiz.
	ErrNoQuiz = errors.New("no quiz loaded")
	// ErrResultPending is returned when an attempt was accepted but its graded
	// result could not be loaded yet.
	ErrResultPending = errors.New("attempt submitted, result not available yet")
)

// ValidationError is a local rejection raised before any network call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx response with the server-provided message.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *RemoteError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// TransportError wraps a failure to exchange a request with the server at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message turns err into the text a store records, using fallback when the error has none.
func Message(err error, fallback string) string {
	var remote *RemoteError
	var invalid *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &remote):
		if remote.Message != "" {
			return remote.Message
		}
		return fallback
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.Is(err, ErrSessionLost):
		return "session expired, please log in again"
	default:
		return fallback
	}
}
