package timeconv

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrFormat = errors.New("invalid time format")
)
