// Package matching ranks tutor candidates for learners under the default and
// custom scoring policies.
//
// The engine holds configuration only. Every operation takes the profile pool
// explicitly and never mutates it, so concurrent calls over one snapshot are
// safe.
package matching

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/overlap"
)

// Default engine configuration constants.
const (
	defaultLimit         = 3
	defaultDayThreshold  = 2
	defaultTimeThreshold = 60
)

// Result is one scored candidate for a learner.
type Result struct {
	LearnerID          string `json:"student_id"`
	CandidateID        string `json:"match_id"`
	SubjectOverlap     int    `json:"subject_overlap"`
	DayOverlap         int    `json:"day_overlap"`
	TimeOverlapMinutes *int   `json:"time_overlap_minutes"`
	StyleMatch         bool   `json:"style_match"`
	GoalMatch          bool   `json:"goal_match"`
	PersonalityMatch   bool   `json:"personality_match"`
	TotalScore         int    `json:"total_score"`
}

// Engine scores and ranks candidates.
type Engine struct {
	limit         int
	dayThreshold  int
	timeThreshold int
	gpaTolerance  float64
	tieBreak      TieBreak
	parallelism   int
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		limit:         defaultLimit,
		dayThreshold:  defaultDayThreshold,
		timeThreshold: defaultTimeThreshold,
		tieBreak:      TieBreakByID,
		parallelism:   runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Limit returns the per-learner result cap.
func (e *Engine) Limit() int { return e.limit }

// Match dispatches a validated request to Default or Custom.
func (e *Engine) Match(req Request, pool *model.Pool) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Mode == ModeCustom {
		return e.Custom(req.LearnerID, req.Preferences, pool)
	}
	return e.Default(req.LearnerID, pool)
}

// Default ranks every tutor for the learner with the fixed policy:
// shared subjects + shared days + style match + any time overlap.
// A requester that is not a learner gets an empty list, not an error.
func (e *Engine) Default(learnerID string, pool *model.Pool) ([]Result, error) {
	learner, ok := pool.Get(learnerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, learnerID)
	}
	if !learner.IsLearner() {
		return []Result{}, nil
	}

	results := make([]Result, 0)
	eachCandidate(pool, learner, func(c model.StudentProfile) {
		minutes := overlap.Minutes(learner, c)
		r := Result{
			LearnerID:          learner.ID,
			CandidateID:        c.ID,
			SubjectOverlap:     overlap.Subjects(learner, c),
			DayOverlap:         overlap.Days(learner, c),
			TimeOverlapMinutes: &minutes,
			StyleMatch:         learner.StudyStyle == c.StudyStyle,
		}
		r.TotalScore = r.SubjectOverlap + r.DayOverlap + boolScore(r.StyleMatch) + boolScore(minutes > 0)
		results = append(results, r)
	})

	return e.rank(results), nil
}

// Custom ranks tutors for the learner using only the enabled criteria.
// A requester that is not a learner is a caller error (ErrInvalidRole).
func (e *Engine) Custom(learnerID string, prefs Preferences, pool *model.Pool) ([]Result, error) {
	learner, ok := pool.Get(learnerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, learnerID)
	}
	if !learner.IsLearner() {
		return nil, fmt.Errorf("%w: %s is a %s; only learners receive matches", ErrInvalidRole, learnerID, learner.Role())
	}
	return e.custom(learner, prefs, pool), nil
}

// GenerateAll runs Custom for every learner in the pool and concatenates the
// results in pool order. A pool without learners yields an empty list.
func (e *Engine) GenerateAll(prefs Preferences, pool *model.Pool) ([]Result, error) {
	var learners []model.StudentProfile
	pool.Each(func(p model.StudentProfile) bool {
		if p.IsLearner() {
			learners = append(learners, p)
		}
		return true
	})

	perLearner := make([][]Result, len(learners))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, l := range learners {
		g.Go(func() error {
			perLearner[i] = e.custom(l, prefs, pool)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate all matches: %w", err)
	}

	out := make([]Result, 0, len(learners)*e.limit)
	for _, rs := range perLearner {
		out = append(out, rs...)
	}
	return out, nil
}

func (e *Engine) custom(learner model.StudentProfile, prefs Preferences, pool *model.Pool) []Result {
	results := make([]Result, 0)
	eachCandidate(pool, learner, func(c model.StudentProfile) {
		r := Result{LearnerID: learner.ID, CandidateID: c.ID}
		score := 0

		if prefs.Enabled(KeySubjects) {
			r.SubjectOverlap = overlap.Subjects(learner, c)
			score += r.SubjectOverlap
		}

		// Time is only evaluated once the day threshold is met.
		if prefs.Enabled(KeyDays) {
			r.DayOverlap = overlap.Days(learner, c)
			if r.DayOverlap >= e.dayThreshold {
				score++
				if prefs.Enabled(KeyTime) {
					minutes := overlap.Minutes(learner, c)
					r.TimeOverlapMinutes = &minutes
					if minutes >= e.timeThreshold {
						score++
					}
				}
			}
		}

		if prefs.Enabled(KeyStyle) {
			r.StyleMatch = learner.StudyStyle == c.StudyStyle
			score += boolScore(r.StyleMatch)
		}

		if prefs.Enabled(KeyGPA) {
			r.GoalMatch = e.gpaMatch(learner.GPA, c.GPA)
			score += boolScore(r.GoalMatch)
		}

		if prefs.Enabled(KeyPersonality) {
			r.PersonalityMatch = learner.Personality != nil && c.Personality != nil && *learner.Personality == *c.Personality
			score += boolScore(r.PersonalityMatch)
		}

		r.TotalScore = score
		results = append(results, r)
	})

	return e.rank(results)
}

// gpaMatch compares GPAs. With zero tolerance this is exact float equality.
func (e *Engine) gpaMatch(a, b *float64) bool {
	if a == nil || b == nil {
		return false
	}
	if e.gpaTolerance == 0 {
		return *a == *b
	}
	return math.Abs(*a-*b) <= e.gpaTolerance
}

// rank sorts by score descending, applies the tie break and truncates.
func (e *Engine) rank(results []Result) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		if e.tieBreak == TieBreakByID {
			return results[i].CandidateID < results[j].CandidateID
		}
		return false
	})
	if len(results) > e.limit {
		results = results[:e.limit]
	}
	return results
}

// eachCandidate visits the tutors in pool order, skipping the learner.
func eachCandidate(pool *model.Pool, learner model.StudentProfile, fn func(model.StudentProfile)) {
	pool.Each(func(c model.StudentProfile) bool {
		if c.ID != learner.ID && c.IsTutor() {
			fn(c)
		}
		return true
	})
}

func boolScore(b bool) int {
	if b {
		return 1
	}
	return 0
}
