package importer

import (
	"context"

	"github.com/okian/studybuddy/internal/domain/model"
)

// Saver is the part of a profile store the importer needs.
type Saver interface {
	Save(ctx context.Context, profile model.StudentProfile) error
}

// StoreSink normalizes records and saves them under their CSV student id.
type StoreSink struct {
	store Saver
}

// NewStoreSink returns a sink writing to store.
func NewStoreSink(store Saver) *StoreSink {
	return &StoreSink{store: store}
}

// Submit implements Sink.
func (s *StoreSink) Submit(ctx context.Context, rec Record) error {
	profile, err := rec.Registration.Normalize(rec.StudentID)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, profile)
}
