package api

import (
	"net/http"
	"strings"

	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/types"
)

// MatchHandler handles per-learner and pool-wide match requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// matchRequest mirrors the OpenAPI schema for POST /match/{id}. An empty mode
// means custom.
type matchRequest struct {
	Mode        string          `json:"mode"`
	Preferences map[string]bool `json:"preferences"`
}

type allMatchesRequest struct {
	Preferences map[string]bool `json:"preferences"`
}

// HandleMatch handles GET and POST /match/{id}.
//
// GET uses ?mode=default|custom; custom reads a comma list from ?prefs=.
// POST reads a matchRequest body.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	id := pathID(r, "/match/")

	var (
		mode  matching.Mode
		prefs matching.Preferences
		err   error
	)
	switch r.Method {
	case http.MethodGet:
		mode, err = matching.ParseMode(r.URL.Query().Get("mode"))
		if err == nil && mode == matching.ModeCustom {
			prefs = knownPreferences(matching.PreferencesFromList([]string{r.URL.Query().Get("prefs")}))
		}
	case http.MethodPost:
		var req matchRequest
		if err = decodeJSON(w, r, &req); err == nil {
			mode, prefs, err = req.parse()
		}
	default:
		methodNotAllowed(w, op, http.MethodGet, http.MethodPost)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var list types.MatchList
	if mode == matching.ModeCustom {
		list, err = h.deps.CustomMatch(r.Context(), id, prefs)
	} else {
		list, err = h.deps.DefaultMatch(r.Context(), id)
	}
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleAllMatches handles POST /matches.
func (h *MatchHandler) HandleAllMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.all_matches"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req allMatchesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	all, err := h.deps.AllCustomMatches(r.Context(), knownPreferences(req.Preferences))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (m matchRequest) parse() (matching.Mode, matching.Preferences, error) {
	mode := matching.ModeCustom
	if strings.TrimSpace(m.Mode) != "" {
		var err error
		if mode, err = matching.ParseMode(m.Mode); err != nil {
			return "", nil, err
		}
	}
	return mode, knownPreferences(m.Preferences), nil
}

// knownPreferences keeps the keys the engine recognizes. Unknown keys are
// dropped so older servers accept newer clients.
func knownPreferences(in map[string]bool) matching.Preferences {
	out := make(matching.Preferences, len(in))
	for _, k := range matching.Keys() {
		if v, ok := in[k]; ok {
			out[k] = v
		}
	}
	return out
}
