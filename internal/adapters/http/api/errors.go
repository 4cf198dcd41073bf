package api

import (
	"context"
	"errors"
	"net/http"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/timeconv"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.kind != nil && e.err != nil:
		return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
	case e.kind != nil:
		return e.op + ": " + e.kind.Error()
	case e.err != nil:
		return e.op + ": " + e.err.Error()
	default:
		return e.op
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) error { return &opError{op: op, kind: kind} }

// WrapKind classifies err as kind for op.
func WrapKind(op string, kind, err error) error { return &opError{op: op, kind: kind, err: err} }

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// classify maps upstream errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, matching.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, matching.ErrInvalidRole):
		return http.StatusConflict, "invalid_role"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, timeconv.ErrFormat),
		errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, matching.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
