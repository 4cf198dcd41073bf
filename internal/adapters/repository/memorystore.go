package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/pkg/metrics"
)

// MemoryStore keeps profiles in a map and remembers insertion order so that
// pool snapshots are deterministic.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]model.StudentProfile
	order    []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]model.StudentProfile)}
}

// LoadProfiles implements Store.
func (s *MemoryStore) LoadProfiles(_ context.Context) (*model.Pool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("load", msSince(start)) }()

	s.mu.RLock()
	profiles := make([]model.StudentProfile, 0, len(s.order))
	for _, id := range s.order {
		profiles = append(profiles, s.profiles[id])
	}
	s.mu.RUnlock()

	return model.NewPool(profiles...)
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.StudentProfile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Save implements Store. Replacing an existing id keeps its original position.
func (s *MemoryStore) Save(_ context.Context, profile model.StudentProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("save", msSince(start)) }()

	profile = cloneProfile(profile)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.ID]; !exists {
		s.order = append(s.order, profile.ID)
	}
	s.profiles[profile.ID] = profile
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
