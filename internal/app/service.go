// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/types"
	"github.com/okian/studybuddy/pkg/logger"
	"github.com/okian/studybuddy/pkg/metrics"
)

// Service implements the API dependencies for the matching system.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	engine *matching.Engine

	// Configuration
	matchLimit    int
	dayThreshold  int
	timeThreshold int
	gpaTolerance  float64
	matchWorkers  int
	newID         func() string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the profile store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMatchLimit caps the matches returned per learner.
func WithMatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.matchLimit = n
		}
	}
}

// WithDayThreshold sets the shared-day minimum for the custom days point.
func WithDayThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.dayThreshold = n
		}
	}
}

// WithTimeThreshold sets the overlap minimum in minutes for the custom time point.
func WithTimeThreshold(minutes int) Option {
	return func(s *Service) {
		if minutes >= 0 {
			s.timeThreshold = minutes
		}
	}
}

// WithGPATolerance relaxes GPA equality in custom matching.
func WithGPATolerance(t float64) Option {
	return func(s *Service) {
		if t >= 0 {
			s.gpaTolerance = t
		}
	}
}

// WithMatchWorkers bounds the fan-out of AllCustomMatches.
func WithMatchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.matchWorkers = n
		}
	}
}

// WithIDGenerator replaces the uuid generator used by Register.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:         repository.NewMemoryStore(),
		matchLimit:    3,
		dayThreshold:  2,
		timeThreshold: 60,
		matchWorkers:  runtime.NumCPU(),
		newID:         uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine = matching.NewEngine(
		matching.WithLimit(s.matchLimit),
		matching.WithDayThreshold(s.dayThreshold),
		matching.WithTimeThreshold(s.timeThreshold),
		matching.WithGPATolerance(s.gpaTolerance),
		matching.WithParallelism(s.matchWorkers),
	)

	return s
}

// Start publishes the initial pool gauges and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matching service...")

	pool, err := s.store.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	updatePoolMetrics(pool)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("profiles", pool.Len()),
		logger.Int("matchLimit", s.matchLimit),
		logger.Int("dayThreshold", s.dayThreshold),
		logger.Int("timeThreshold", s.timeThreshold),
		logger.Float64("gpaTolerance", s.gpaTolerance),
		logger.Int("matchWorkers", s.matchWorkers),
	)

	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

// Register normalizes a registration to UTC and stores it under a new id.
func (s *Service) Register(ctx context.Context, reg model.Registration) (string, error) {
	id := s.newID()
	profile, err := reg.Normalize(id)
	if err != nil {
		metrics.RecordRegistration(metrics.OutcomeError)
		return "", err
	}
	if err := s.store.Save(ctx, profile); err != nil {
		metrics.RecordRegistration(metrics.OutcomeError)
		s.log().Error(ctx, "failed to save registration", logger.String("id", id), logger.Error(err))
		return "", err
	}
	metrics.RecordRegistration(metrics.OutcomeOK)

	s.log().Info(ctx, "student registered",
		logger.String("id", id),
		logger.String("role", string(profile.Role())),
		logger.Int("utcOffset", profile.UTCOffset),
	)
	return id, nil
}

// Account returns the stored profile rendered in the student's timezone.
func (s *Service) Account(ctx context.Context, id string) (types.Account, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return types.Account{}, err
	}
	return types.AccountFromProfile(p), nil
}

// DefaultMatch ranks tutors for a learner with the fixed policy.
func (s *Service) DefaultMatch(ctx context.Context, learnerID string) (types.MatchList, error) {
	return s.match(ctx, matching.Request{LearnerID: learnerID, Mode: matching.ModeDefault})
}

// CustomMatch ranks tutors for a learner with the chosen criteria.
func (s *Service) CustomMatch(ctx context.Context, learnerID string, prefs matching.Preferences) (types.MatchList, error) {
	return s.match(ctx, matching.Request{LearnerID: learnerID, Mode: matching.ModeCustom, Preferences: prefs})
}

// AllCustomMatches runs custom matching for every learner in one snapshot.
func (s *Service) AllCustomMatches(ctx context.Context, prefs matching.Preferences) (types.AllMatches, error) {
	start := time.Now()
	mode := "all"

	pool, err := s.snapshot(ctx)
	if err != nil {
		metrics.RecordMatch(mode, metrics.OutcomeError, msSince(start))
		return types.AllMatches{}, err
	}

	results, err := s.engine.GenerateAll(prefs, pool)
	if err != nil {
		metrics.RecordMatch(mode, metrics.OutcomeError, msSince(start))
		return types.AllMatches{}, err
	}
	metrics.RecordMatch(mode, metrics.OutcomeOK, msSince(start))
	metrics.RecordMatchResults(len(results))

	active := prefs.Active()
	if active == nil {
		active = []string{}
	}
	s.log().Info(ctx, "generated all matches",
		logger.Strings("preferences", active),
		logger.Int("profiles", pool.Len()),
		logger.Int("results", len(results)),
	)
	return types.AllMatches{Preferences: active, Matches: results}, nil
}

func (s *Service) match(ctx context.Context, req matching.Request) (types.MatchList, error) {
	start := time.Now()
	mode := string(req.Mode)

	pool, err := s.snapshot(ctx)
	if err != nil {
		metrics.RecordMatch(mode, metrics.OutcomeError, msSince(start))
		return types.MatchList{}, err
	}

	results, err := s.engine.Match(req, pool)
	if err != nil {
		metrics.RecordMatch(mode, metrics.OutcomeError, msSince(start))
		if !errors.Is(err, matching.ErrNotFound) && !errors.Is(err, matching.ErrInvalidRole) {
			metrics.RecordErrorByComponent("matching", "engine")
		}
		s.log().Debug(ctx, "match rejected", logger.String("learner", req.LearnerID), logger.Error(err))
		return types.MatchList{}, err
	}
	metrics.RecordMatch(mode, metrics.OutcomeOK, msSince(start))
	metrics.RecordMatchResults(len(results))

	s.log().Debug(ctx, "match computed",
		logger.String("learner", req.LearnerID),
		logger.String("mode", mode),
		logger.Int("results", len(results)),
	)
	return types.MatchList{LearnerID: req.LearnerID, Mode: mode, Matches: results}, nil
}

func (s *Service) snapshot(ctx context.Context) (*model.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool, err := s.store.LoadProfiles(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "load")
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return pool, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"matchLimit":    s.matchLimit,
		"dayThreshold":  s.dayThreshold,
		"timeThreshold": s.timeThreshold,
		"gpaTolerance":  s.gpaTolerance,
		"matchWorkers":  s.matchWorkers,
	}

	if s.started {
		pool, err := s.store.LoadProfiles(ctx)
		if err != nil {
			stats["error"] = err.Error()
			return stats
		}
		learners, tutors := pool.RoleCounts()
		stats["totalStudents"] = pool.Len()
		stats["learners"] = learners
		stats["tutors"] = tutors

		updatePoolMetrics(pool)
	}

	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}

func updatePoolMetrics(pool *model.Pool) {
	learners, tutors := pool.RoleCounts()
	metrics.UpdatePool(pool.Len(), learners, tutors)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
