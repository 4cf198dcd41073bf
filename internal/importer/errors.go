package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrMissingColumn = errors.New("missing csv column")
	ErrRow           = errors.New("invalid csv row")
	ErrRejected      = errors.New("registration rejected")
	ErrDuplicate     = errors.New("duplicate student_id")
)
