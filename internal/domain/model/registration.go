package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/studybuddy/internal/domain/timeconv"
)

// Registration is what a student submits, expressed in their local timezone.
// Either StudyTimes names a bucket or LocalStart/LocalEnd give explicit times.
type Registration struct {
	Name            string   `json:"name"`
	GPA             *float64 `json:"gpa,omitempty"`
	StudyStyle      string   `json:"study_style"`
	Personality     string   `json:"personality_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Timezone        string   `json:"timezone"`
	StudyTimes      string   `json:"study_times,omitempty"`
	LocalStart      string   `json:"local_start,omitempty"`
	LocalEnd        string   `json:"local_end,omitempty"`
	Days            []string `json:"days"`
	Subjects        []string `json:"subjects"`
	OtherSubject    string   `json:"other_subject,omitempty"`
}

// Normalize converts the registration into a UTC profile with the given id.
// Timezone and time errors wrap timeconv.ErrFormat; nothing falls back to a
// default offset or window.
func (r Registration) Normalize(id string) (StudentProfile, error) {
	offset, err := timeconv.ParseUTCOffset(r.Timezone)
	if err != nil {
		return StudentProfile{}, err
	}
	localStart, localEnd, err := r.localWindow()
	if err != nil {
		return StudentProfile{}, err
	}

	localDays, err := ParseDaySet(r.Days...)
	if err != nil {
		return StudentProfile{}, err
	}
	utcDays := make(DaySet, len(localDays))
	for d := range localDays {
		utcDays[timeconv.UTCWeekday(d, localStart, offset)] = struct{}{}
	}

	// Casers carry state and must not be shared between goroutines.
	title := cases.Title(language.English)
	subjects := NewStringSet(r.Subjects...)
	if other := strings.TrimSpace(r.OtherSubject); other != "" {
		subjects[title.String(other)] = struct{}{}
	}

	p := StudentProfile{
		ID:              id,
		Name:            normalizeName(title, r.Name),
		Subjects:        subjects,
		Days:            utcDays,
		LocalDays:       localDays,
		Start:           timeconv.ToUTC(localStart, offset),
		End:             timeconv.ToUTC(localEnd, offset),
		StudyStyle:      strings.TrimSpace(r.StudyStyle),
		Personality:     StringPtr(r.Personality),
		GPA:             r.GPA,
		ExperienceLevel: strings.TrimSpace(r.ExperienceLevel),
		UTCOffset:       offset,
	}
	if err := p.Validate(); err != nil {
		return StudentProfile{}, err
	}
	return p, nil
}

func (r Registration) localWindow() (timeconv.Clock, timeconv.Clock, error) {
	if r.StudyTimes != "" {
		return timeconv.StudyTimeRange(r.StudyTimes)
	}
	if r.LocalStart == "" || r.LocalEnd == "" {
		return 0, 0, fmt.Errorf("%w: study_times or local_start/local_end required", timeconv.ErrFormat)
	}
	start, err := timeconv.ParseClock(r.LocalStart)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeconv.ParseClock(r.LocalEnd)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func normalizeName(title cases.Caser, name string) string {
	parts := strings.Fields(name)
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, " ")
}
