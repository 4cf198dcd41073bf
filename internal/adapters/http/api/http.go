// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StudentDependencies
	MatchDependencies
}

// StudentDependencies covers registration and account lookup.
type StudentDependencies interface {
	Register(ctx context.Context, reg model.Registration) (string, error)
	Account(ctx context.Context, id string) (types.Account, error)
}

// MatchDependencies covers the three match operations.
type MatchDependencies interface {
	DefaultMatch(ctx context.Context, learnerID string) (types.MatchList, error)
	CustomMatch(ctx context.Context, learnerID string, prefs matching.Preferences) (types.MatchList, error)
	AllCustomMatches(ctx context.Context, prefs matching.Preferences) (types.AllMatches, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	studentsHandler *StudentsHandler
	matchHandler    *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		studentsHandler: NewStudentsHandler(deps),
		matchHandler:    NewMatchHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/students", MetricsMiddleware(s.studentsHandler.HandlePostStudent, "students"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.studentsHandler.HandleGetStudent, "student"))
	mux.HandleFunc("/match/", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchHandler.HandleAllMatches, "matches"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func methodNotAllowed(w http.ResponseWriter, op string, allow ...string) {
	w.Header().Set("Allow", strings.Join(allow, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

// pathID returns the single path segment after prefix, or "" if there is not
// exactly one.
func pathID(r *http.Request, prefix string) string {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
