package model

import (
	"sort"
	"strings"

	"github.com/okian/studybuddy/internal/domain/timeconv"
)

// StringSet is a set of trimmed, non-empty strings.
type StringSet map[string]struct{}

// NewStringSet builds a set, trimming items and dropping blanks.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		s[it] = struct{}{}
	}
	return s
}

// Len returns the number of members.
func (s StringSet) Len() int { return len(s) }

// Has reports membership.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// IntersectCount returns |s ∩ o|.
func (s StringSet) IntersectCount(o StringSet) int {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for k := range small {
		if _, ok := large[k]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DaySet is a set of weekdays.
type DaySet map[timeconv.Weekday]struct{}

// NewDaySet builds a set from weekdays.
func NewDaySet(days ...timeconv.Weekday) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// ParseDaySet parses weekday tokens such as "Mon" into a set.
func ParseDaySet(tokens ...string) (DaySet, error) {
	s := make(DaySet, len(tokens))
	for _, t := range tokens {
		d, err := timeconv.ParseWeekday(t)
		if err != nil {
			return nil, err
		}
		s[d] = struct{}{}
	}
	return s, nil
}

// Len returns the number of members.
func (s DaySet) Len() int { return len(s) }

// Has reports membership.
func (s DaySet) Has(d timeconv.Weekday) bool {
	_, ok := s[d]
	return ok
}

// IntersectCount returns |s ∩ o|.
func (s DaySet) IntersectCount(o DaySet) int {
	n := 0
	for d := range s {
		if _, ok := o[d]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the days in calendar order starting Monday.
func (s DaySet) Sorted() []timeconv.Weekday {
	out := make([]timeconv.Weekday, 0, len(s))
	for _, d := range timeconv.Weekdays() {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Tokens returns the sorted day tokens.
func (s DaySet) Tokens() []string {
	days := s.Sorted()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
