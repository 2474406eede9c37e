package bbmmodels

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrRemoteUnavailable = errors.New("remote device unavailable")
	ErrUnexpectedRemote  = errors.New("unexpected remote response")
)

// ValidationError reports a malformed or out-of-range input
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a lookup miss
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RemoteErrorKind classifies a failed call to a device
type RemoteErrorKind string

const (
	RemoteConnectionRefused  RemoteErrorKind = "connection-refused"
	RemoteHostNotFound       RemoteErrorKind = "host-not-found"
	RemoteTimeout            RemoteErrorKind = "timeout"
	RemoteUnexpectedResponse RemoteErrorKind = "unexpected-response"
	RemoteUnknown            RemoteErrorKind = "unknown"
)

// RemoteError wraps a failed call to the detector or sensor device
type RemoteError struct {
	Op         string
	Kind       RemoteErrorKind
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteUnavailable:
		return e.Unavailable()
	case ErrUnexpectedRemote:
		return e.Kind == RemoteUnexpectedResponse
	}
	return false
}

// Unavailable reports whether the device could not be reached at all
func (e *RemoteError) Unavailable() bool {
	switch e.Kind {
	case RemoteConnectionRefused, RemoteHostNotFound, RemoteTimeout:
		return true
	}
	return false
}

// UserMessage is the text shown to the parent in the app
func (e *RemoteError) UserMessage() string {
	switch e.Kind {
	case RemoteConnectionRefused:
		return "Cannot connect to the detector device. Please check the network."
	case RemoteHostNotFound:
		return "The detector device address could not be resolved."
	case RemoteTimeout:
		return "The detector device did not respond in time."
	case RemoteUnexpectedResponse:
		return "The detector device returned an unexpected response."
	default:
		return "The request to the detector device failed."
	}
}
