package contract

import "errors"

var (
	// ErrValidation rejects a malformed message before any agent runs.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream marks a completion-service failure.
	ErrUpstream = errors.New("completion service failed")
	// ErrSearchUnavailable marks an external-search failure.
	ErrSearchUnavailable = errors.New("external search unavailable")
	// ErrIndexUnavailable marks a semantic index that is unreachable or empty.
	ErrIndexUnavailable = errors.New("semantic index unavailable")
	// ErrNotFound marks a customer lookup miss. Handled locally by the
	// support agent, never escalated.
	ErrNotFound = errors.New("not found")
)
