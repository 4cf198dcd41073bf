// Package model contains the student profile snapshot used by matching and the
// registration input it is normalized from.
package model

import (
	"fmt"
	"strings"

	"github.com/okian/studybuddy/internal/domain/timeconv"
)

// TutorGPAThreshold is the lowest GPA that makes a student a tutor.
const TutorGPAThreshold = 3.5

// Role classifies a student for matching.
type Role string

// Roles.
const (
	RoleLearner Role = "learner"
	RoleTutor   Role = "tutor"
)

// StudentProfile is a read-only snapshot of one student. Days, Start and End
// are UTC; LocalDays is kept for display and never used for matching.
type StudentProfile struct {
	ID              string
	Name            string
	Subjects        StringSet
	Days            DaySet
	LocalDays       DaySet
	Start           timeconv.Clock
	End             timeconv.Clock
	StudyStyle      string
	Personality     *string
	GPA             *float64
	ExperienceLevel string
	UTCOffset       int
}

// Role derives the role from GPA. A missing GPA is a learner.
func (p StudentProfile) Role() Role {
	if p.GPA != nil && *p.GPA >= TutorGPAThreshold {
		return RoleTutor
	}
	return RoleLearner
}

// IsLearner reports whether the profile may request matches.
func (p StudentProfile) IsLearner() bool { return p.Role() == RoleLearner }

// IsTutor reports whether the profile may be offered as a match.
func (p StudentProfile) IsTutor() bool { return p.Role() == RoleTutor }

// Validate checks the invariants every stored profile must hold.
func (p StudentProfile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if p.Subjects.Len() == 0 {
		return fmt.Errorf("%w: student %s has no subjects", ErrInvalidProfile, p.ID)
	}
	if p.UTCOffset < timeconv.MinOffset || p.UTCOffset > timeconv.MaxOffset {
		return fmt.Errorf("%w: student %s offset %d out of range", ErrInvalidProfile, p.ID, p.UTCOffset)
	}
	return nil
}

// LocalStart returns the window start in the student's own timezone.
func (p StudentProfile) LocalStart() timeconv.Clock { return timeconv.ToLocal(p.Start, p.UTCOffset) }

// LocalEnd returns the window end in the student's own timezone.
func (p StudentProfile) LocalEnd() timeconv.Clock { return timeconv.ToLocal(p.End, p.UTCOffset) }

// StringPtr returns a pointer to v, or nil when v is blank.
func StringPtr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
