// Package importer bulk-loads student registrations from a CSV export, either
// straight into a profile store or through a running service's HTTP API.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/studybuddy/pkg/logger"
	"github.com/okian/studybuddy/pkg/metrics"
)

// maxReportedErrors caps the row errors kept in Stats.
const maxReportedErrors = 100

// Sink receives parsed records.
type Sink interface {
	Submit(ctx context.Context, rec Record) error
}

// Stats summarizes one import run.
type Stats struct {
	Rows     int
	Inserted int
	Failed   int
	Errors   []RowError
	Duration time.Duration
}

// Importer streams a CSV into a Sink with bounded concurrency.
type Importer struct {
	sink      Sink
	workers   int
	seenLimit int
	logger    logger.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets how many records are submitted concurrently.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithSeenLimit bounds how many student ids are remembered for duplicate
// detection. Zero or less remembers every id.
func WithSeenLimit(n int) Option {
	return func(im *Importer) {
		im.seenLimit = n
	}
}

// WithLogger sets the logger used for row failures.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// New returns an Importer writing to sink.
func New(sink Sink, opts ...Option) *Importer {
	im := &Importer{sink: sink, workers: 1}
	for _, opt := range opts {
		opt(im)
	}
	if im.logger == nil {
		im.logger = logger.Named("importer")
	}
	return im
}

// Run imports every row of r. Row failures are counted and logged; only header
// problems, read failures and cancellation abort the run.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Stats, error) {
	start := time.Now()
	reader, err := NewReader(r)
	if err != nil {
		return Stats{}, err
	}

	var (
		mu    sync.Mutex
		stats Stats
	)
	fail := func(rowErr RowError) {
		metrics.RecordImportRow(metrics.OutcomeError)
		im.logger.Warn(ctx, "import row failed",
			logger.Int("line", rowErr.Line),
			logger.String("studentID", rowErr.StudentID),
			logger.Error(rowErr.Err),
		)
		mu.Lock()
		stats.Failed++
		if len(stats.Errors) < maxReportedErrors {
			stats.Errors = append(stats.Errors, rowErr)
		}
		mu.Unlock()
	}

	seen := newSeenSet(im.seenLimit)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for {
		if err := gctx.Err(); err != nil {
			break
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		mu.Lock()
		stats.Rows++
		mu.Unlock()

		var rowErr RowError
		if errors.As(err, &rowErr) {
			fail(rowErr)
			continue
		}
		if err != nil {
			_ = g.Wait()
			return stats, fmt.Errorf("read csv: %w", err)
		}
		if seen.SeenAndRecord(rec.StudentID) {
			fail(RowError{Line: rec.Line, StudentID: rec.StudentID, Err: ErrDuplicate})
			continue
		}

		g.Go(func() error {
			if err := im.sink.Submit(gctx, rec); err != nil {
				fail(RowError{Line: rec.Line, StudentID: rec.StudentID, Err: err})
				return nil
			}
			metrics.RecordImportRow(metrics.OutcomeOK)
			mu.Lock()
			stats.Inserted++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
