package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Validation failures.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrInvalidPrice       = fmt.Errorf("%w: price must not be negative", ErrValidation)
	ErrInvalidProduct     = fmt.Errorf("%w: product id is required", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: username and password are required", ErrValidation)
)

// Remote failures.
var (
	ErrRemote       = errors.New("remote request failed")
	ErrMissingToken = fmt.Errorf("%w: no authentication token received from server", ErrRemote)
)

var ErrNotLoggedIn = errors.New("not logged in")
var ErrStorage = errors.New("storage failure")

// RemoteError describes a failed call to the remote user API.
// It matches ErrRemote under errors.Is.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// NewRemoteError builds a RemoteError whose message is taken from the response
// body when it carries one, else from the transport error, else fallback.
func NewRemoteError(op string, status int, body []byte, cause error, fallback string) *RemoteError {
	return &RemoteError{
		Op:      op,
		Status:  status,
		Message: RemoteMessage(body, cause, fallback),
		Err:     cause,
	}
}

// RemoteMessage extracts the user-facing message of a failed remote call.
func RemoteMessage(body []byte, cause error, fallback string) string {
	if msg := bodyMessage(body); msg != "" {
		return msg
	}
	if cause != nil && cause.Error() != "" {
		return cause.Error()
	}
	return fallback
}

func bodyMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return strings.TrimSpace(s)
	}
	return text
}
