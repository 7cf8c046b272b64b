package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig signals an inconsistent flag or profile combination.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrAuthFailed signals rejected credentials or an expired session.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrNotFound signals a missing remote resource.
	ErrNotFound = errors.New("not found")
	// ErrRemote signals a failed or malformed response from the search service.
	ErrRemote = errors.New("remote service error")
)

// RemoteError wraps ErrRemote with the HTTP status and the service message.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrRemote.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrRemote.Error(), e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return ErrRemote }

// NewRemoteError creates a remote service error.
func NewRemoteError(statusCode int, message string) error {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// InvalidConfig formats a configuration error wrapping ErrInvalidConfig.
func InvalidConfig(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
}
