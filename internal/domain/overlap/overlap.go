// Package overlap computes the pairwise affinity signals between two student
// profiles: shared subjects, shared UTC days and shared minutes of the daily
// UTC window.
package overlap

import (
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/timeconv"
)

const minutesPerDay = 24 * 60

// Subjects returns the number of subjects both profiles list.
func Subjects(a, b model.StudentProfile) int {
	return a.Subjects.IntersectCount(b.Subjects)
}

// Days returns the number of UTC weekdays both profiles are available on.
func Days(a, b model.StudentProfile) int {
	return a.Days.IntersectCount(b.Days)
}

// Minutes returns the shared minutes of the two profiles' UTC windows.
func Minutes(a, b model.StudentProfile) int {
	return TimeMinutes(a.Start, a.End, b.Start, b.End)
}

// TimeMinutes returns the shared minutes of two daily windows. It is symmetric
// and never negative.
func TimeMinutes(aStart, aEnd, bStart, bEnd timeconv.Clock) int {
	return NewWindow(aStart, aEnd).Overlap(NewWindow(bStart, bEnd))
}

// interval is a half-open minute range [lo, hi) within one day.
type interval struct{ lo, hi int }

// Window is a daily availability window on the 24h clock. A window whose end
// precedes its start runs past midnight and is held as two intervals.
type Window struct {
	parts []interval
	wraps bool
}

// NewWindow builds a window. start == end is an empty window.
func NewWindow(start, end timeconv.Clock) Window {
	s, e := start.Minutes(), end.Minutes()
	switch {
	case s < e:
		return Window{parts: []interval{{s, e}}}
	case s > e:
		if e == 0 {
			return Window{parts: []interval{{s, minutesPerDay}}}
		}
		return Window{parts: []interval{{s, minutesPerDay}, {0, e}}, wraps: true}
	default:
		return Window{}
	}
}

// Wraps reports whether the window crosses midnight.
func (w Window) Wraps() bool { return w.wraps }

// Duration returns the window length in minutes.
func (w Window) Duration() int {
	total := 0
	for _, p := range w.parts {
		total += p.hi - p.lo
	}
	return total
}

// Overlap returns the minutes shared with o.
func (w Window) Overlap(o Window) int {
	total := 0
	for _, p := range w.parts {
		for _, q := range o.parts {
			total += max(0, min(p.hi, q.hi)-max(p.lo, q.lo))
		}
	}
	return total
}
