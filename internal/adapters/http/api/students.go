package api

import (
	"net/http"

	"github.com/okian/studybuddy/internal/domain/model"
)

// StudentsHandler handles registration and account requests.
type StudentsHandler struct {
	deps StudentDependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

type registerResponse struct {
	ID string `json:"id"`
}

// HandlePostStudent handles POST /students requests.
func (h *StudentsHandler) HandlePostStudent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_student"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var reg model.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.Register(r.Context(), reg)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{ID: id})
}

// HandleGetStudent handles GET /students/{id} requests.
func (h *StudentsHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_student"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	id := pathID(r, "/students/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	acct, err := h.deps.Account(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
