package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/cardmigrate/internal/logging"
	"github.com/google/uuid"
)

// ErrRowNotObject marks an export element that is not a JSON object.
// Such rows are skipped rather than written as empty documents.
var ErrRowNotObject = errors.New("row is not a json object")

// Options configures a Service.
type Options struct {
	// Target names the destination in progress messages (e.g. "pokemon_manager.pokemon_cards").
	Target string

	// MaxFileSize is the largest export accepted, in bytes. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
}

// Service runs migrations against one store handle.
type Service struct {
	writer  *Writer
	target  string
	maxSize int64
}

// NewService creates a Service that writes through store.
func NewService(store Store, opts Options) *Service {
	maxSize := opts.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	target := opts.Target
	if target == "" {
		target = DefaultCollection
	}
	return &Service{
		writer:  NewWriter(store),
		target:  target,
		maxSize: maxSize,
	}
}

// Run loads the export at path and migrates every row.
//
// A load failure is returned before anything is written. Row failures never
// produce an error; they are counted in the summary. The only other error is
// ctx being cancelled, in which case the summary covers the rows handled so far.
func (s *Service) Run(ctx context.Context, path string) (RunSummary, error) {
	if _, ok := logging.RunIDFromContext(ctx); !ok {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	logger := logging.FromContext(ctx)

	records, err := LoadExport(path, s.maxSize)
	if err != nil {
		return RunSummary{}, err
	}
	logger.Info("export loaded", "path", path, "rows", len(records))

	return s.Migrate(ctx, records)
}

// Migrate runs the row loop over already loaded records.
func (s *Service) Migrate(ctx context.Context, records []LegacyRecord) (RunSummary, error) {
	if _, ok := logging.RunIDFromContext(ctx); !ok {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	logger := logging.FromContext(ctx)
	runID, _ := logging.RunIDFromContext(ctx)
	startTime := time.Now()

	if len(records) == 0 {
		logger.Info("No rows in export file; nothing to migrate.")
	} else {
		logger.Info(fmt.Sprintf("Migrating %d rows into %s ...", len(records), s.target))
	}

	reporter := NewReporter(logger)

	finish := func() RunSummary {
		summary := reporter.Summary()
		summary.RunID = runID
		summary.Target = s.target
		summary.Duration = time.Since(startTime)
		return summary
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			logger.Warn("migration interrupted", "next_index", i, "error", err)
			return finish(), fmt.Errorf("migration interrupted at row %d: %w", i, err)
		}

		if rec == nil {
			reporter.Record(Failed(i, fmt.Errorf("row %d: %w", i, ErrRowNotObject)))
			continue
		}

		doc := TransformRow(rec, i)
		id, err := s.writer.Write(ctx, i, doc)
		if err != nil {
			reporter.Record(Failed(i, err))
			continue
		}
		reporter.Record(Succeeded(i, doc, id))
	}

	summary := finish()
	logger.Info("migration finished",
		"total", summary.Total,
		"migrated", summary.Migrated,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, nil
}
