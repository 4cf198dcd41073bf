package matching

import "errors"

// Sentinel error kinds for matching. Callers branch with errors.Is.
var (
	ErrNotFound       = errors.New("student not found")
	ErrInvalidRole    = errors.New("invalid role for matching")
	ErrInvalidRequest = errors.New("invalid match request")
)
