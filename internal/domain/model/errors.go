package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidProfile = errors.New("invalid student profile")
	ErrDuplicateID    = errors.New("duplicate student id")
)
