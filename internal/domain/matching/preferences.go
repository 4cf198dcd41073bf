package matching

import (
	"fmt"
	"strings"
)

// Preference keys recognized by custom matching.
const (
	KeySubjects    = "subjects"
	KeyDays        = "days"
	KeyTime        = "time"
	KeyStyle       = "style"
	KeyGPA         = "GPA"
	KeyPersonality = "personality"
)

var preferenceKeys = []string{KeySubjects, KeyDays, KeyTime, KeyStyle, KeyGPA, KeyPersonality}

// Preferences toggles custom-mode criteria. Unknown keys are ignored.
type Preferences map[string]bool

// Keys returns the recognized preference keys in canonical order.
func Keys() []string {
	out := make([]string, len(preferenceKeys))
	copy(out, preferenceKeys)
	return out
}

// AllPreferences returns every recognized criterion enabled.
func AllPreferences() Preferences {
	p := make(Preferences, len(preferenceKeys))
	for _, k := range preferenceKeys {
		p[k] = true
	}
	return p
}

// PreferencesFromList enables the listed keys, as submitted by a checkbox form.
func PreferencesFromList(keys []string) Preferences {
	p := make(Preferences, len(keys))
	for _, k := range keys {
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				p[part] = true
			}
		}
	}
	return p
}

// Enabled reports whether key is switched on.
func (p Preferences) Enabled(key string) bool { return p[key] }

// TimeEligible reports whether the time criterion can ever score: it needs
// days enabled as well.
func (p Preferences) TimeEligible() bool { return p[KeyTime] && p[KeyDays] }

// Active returns the enabled recognized keys in canonical order.
func (p Preferences) Active() []string {
	var out []string
	for _, k := range preferenceKeys {
		if p[k] {
			out = append(out, k)
		}
	}
	return out
}

// Mode selects the scoring policy.
type Mode string

// Modes.
const (
	ModeDefault Mode = "default"
	ModeCustom  Mode = "custom"
)

// ParseMode accepts "default" and "custom"; an empty string is default.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeCustom:
		return ModeCustom, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

// Request is one learner's match request.
type Request struct {
	LearnerID   string
	Mode        Mode
	Preferences Preferences
}

// Validate checks the request shape. Preferences are ignored in default mode.
func (r Request) Validate() error {
	if strings.TrimSpace(r.LearnerID) == "" {
		return fmt.Errorf("%w: missing learner id", ErrInvalidRequest)
	}
	switch r.Mode {
	case ModeDefault, ModeCustom:
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
}
