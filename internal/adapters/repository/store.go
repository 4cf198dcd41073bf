// Package repository persists student profiles and hands out pool snapshots
// for matching.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/studybuddy/internal/domain/model"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store provides read/write access to student profiles.
type Store interface {
	// LoadProfiles returns an immutable snapshot of every stored profile.
	LoadProfiles(ctx context.Context) (*model.Pool, error)

	// Get returns one profile. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.StudentProfile, error)

	// Save inserts or replaces a profile.
	Save(ctx context.Context, profile model.StudentProfile) error

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}

// Open returns the store for driver. dsn is ignored for the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// cloneProfile copies the set fields so stored profiles never alias caller maps.
func cloneProfile(p model.StudentProfile) model.StudentProfile {
	out := p
	out.Subjects = model.NewStringSet(p.Subjects.Sorted()...)
	out.Days = model.NewDaySet(p.Days.Sorted()...)
	out.LocalDays = model.NewDaySet(p.LocalDays.Sorted()...)
	if p.Personality != nil {
		v := *p.Personality
		out.Personality = &v
	}
	if p.GPA != nil {
		v := *p.GPA
		out.GPA = &v
	}
	return out
}
