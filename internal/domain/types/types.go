// Package types contains the records returned to API callers.
package types

import (
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/timeconv"
)

// Account is a student's profile shown in their own timezone, with the UTC
// values used for matching alongside.
type Account struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	GPA             *float64 `json:"gpa,omitempty"`
	StudyStyle      string   `json:"study_style"`
	Personality     string   `json:"personality_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Timezone        string   `json:"timezone"`
	Subjects        []string `json:"subjects"`
	LocalDays       []string `json:"local_days"`
	LocalStart      string   `json:"local_start"`
	LocalEnd        string   `json:"local_end"`
	UTCDays         []string `json:"utc_days"`
	UTCStart        string   `json:"utc_start"`
	UTCEnd          string   `json:"utc_end"`
}

// AccountFromProfile renders a profile for display.
func AccountFromProfile(p model.StudentProfile) Account {
	a := Account{
		ID:              p.ID,
		Name:            p.Name,
		Role:            string(p.Role()),
		GPA:             p.GPA,
		StudyStyle:      p.StudyStyle,
		ExperienceLevel: p.ExperienceLevel,
		Timezone:        timeconv.FormatUTCOffset(p.UTCOffset),
		Subjects:        p.Subjects.Sorted(),
		LocalDays:       p.LocalDays.Tokens(),
		LocalStart:      p.LocalStart().String(),
		LocalEnd:        p.LocalEnd().String(),
		UTCDays:         p.Days.Tokens(),
		UTCStart:        p.Start.String(),
		UTCEnd:          p.End.String(),
	}
	if p.Personality != nil {
		a.Personality = *p.Personality
	}
	return a
}

// MatchList is the response for a single learner's match request.
type MatchList struct {
	LearnerID string            `json:"student_id"`
	Mode      string            `json:"mode"`
	Matches   []matching.Result `json:"matches"`
}

// AllMatches is the response for a pool-wide custom run.
type AllMatches struct {
	Preferences []string          `json:"preferences"`
	Matches     []matching.Result `json:"matches"`
}
