package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("student not found")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrCorruptRow    = errors.New("corrupt student row")
)
