package model

import "fmt"

// Pool is an immutable snapshot of student profiles in insertion order.
// Callers must not mutate the sets inside returned profiles.
type Pool struct {
	profiles []StudentProfile
	index    map[string]int
}

// NewPool builds a pool. Duplicate ids are rejected.
func NewPool(profiles ...StudentProfile) (*Pool, error) {
	p := &Pool{
		profiles: make([]StudentProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
	}
	for _, sp := range profiles {
		if _, dup := p.index[sp.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, sp.ID)
		}
		p.index[sp.ID] = len(p.profiles)
		p.profiles = append(p.profiles, sp)
	}
	return p, nil
}

// Get returns the profile for id.
func (p *Pool) Get(id string) (StudentProfile, bool) {
	if p == nil {
		return StudentProfile{}, false
	}
	i, ok := p.index[id]
	if !ok {
		return StudentProfile{}, false
	}
	return p.profiles[i], true
}

// Len returns the number of profiles.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.profiles)
}

// Profiles returns the profiles in insertion order.
func (p *Pool) Profiles() []StudentProfile {
	if p == nil {
		return nil
	}
	out := make([]StudentProfile, len(p.profiles))
	copy(out, p.profiles)
	return out
}

// Each calls fn for every profile in insertion order until fn returns false.
func (p *Pool) Each(fn func(StudentProfile) bool) {
	if p == nil {
		return
	}
	for _, sp := range p.profiles {
		if !fn(sp) {
			return
		}
	}
}

// RoleCounts returns the number of learners and tutors.
func (p *Pool) RoleCounts() (learners, tutors int) {
	p.Each(func(sp StudentProfile) bool {
		if sp.IsTutor() {
			tutors++
		} else {
			learners++
		}
		return true
	})
	return learners, tutors
}
