// Package ingest runs a complete ingestion: accumulate every input file,
// reconcile with the persisted keys, upload and record the run.
package ingest

import (
	"context"
	"time"

	"fjacquet/bank-ingest/internal/batch"
	"fjacquet/bank-ingest/internal/dedup"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/store"

	"github.com/google/uuid"
)

// HistoryRecorder stores the outcome of a run.
type HistoryRecorder interface {
	InsertIngestionHistory(ctx context.Context, history *store.IngestionHistory) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore enables the upload stage against records and records each run in history.
func WithStore(records dedup.KeyStore, history HistoryRecorder) Option {
	return func(p *Pipeline) {
		p.records = records
		p.history = history
	}
}

// WithBatchDuplicateDrop drops rows repeating a key earlier in the same batch.
func WithBatchDuplicateDrop(enabled bool) Option {
	return func(p *Pipeline) {
		p.dropBatchDuplicates = enabled
	}
}

// WithClock replaces the wall clock used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithRunID replaces the run identifier generator.
func WithRunID(next func() string) Option {
	return func(p *Pipeline) {
		p.newRunID = next
	}
}

// Pipeline wires the accumulator to the dedup coordinator.
type Pipeline struct {
	accumulator         *batch.Accumulator
	records             dedup.KeyStore
	history             HistoryRecorder
	logger              logging.Logger
	dropBatchDuplicates bool
	now                 func() time.Time
	newRunID            func() string
}

// NewPipeline creates a Pipeline. Without WithStore it runs dry.
func NewPipeline(accumulator *batch.Accumulator, logger logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		accumulator: accumulator,
		logger:      logger,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DryRun reports whether the pipeline skips the database.
func (p *Pipeline) DryRun() bool {
	return p.records == nil
}

// Run ingests paths. The returned summary is always usable, even with an error:
// an error means the run was cancelled before every file was processed.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*models.RunSummary, error) {
	summary := models.NewRunSummary(p.newRunID(), p.now())
	summary.DryRun = p.DryRun()
	log := p.logger.WithField(logging.FieldRunID, summary.RunID)

	log.Info("Starting ingestion",
		logging.Field{Key: logging.FieldCount, Value: len(paths)},
		logging.Field{Key: "dry_run", Value: summary.DryRun})

	out, err := p.accumulator.Run(ctx, paths)
	if out != nil {
		summary.Files = out.Files
	}
	if err != nil {
		summary.Err = err
		return p.finish(ctx, log, summary), err
	}

	if summary.DryRun {
		for mt, table := range out.Tables {
			summary.Type(mt).Produced = table.Len()
		}
		return p.finish(ctx, log, summary), nil
	}

	coordinator := dedup.NewCoordinator(p.records, log, dedup.WithBatchDuplicateDrop(p.dropBatchDuplicates))
	if err := coordinator.Run(ctx, out.Tables, summary); err != nil {
		summary.Err = err
		return p.finish(ctx, log, summary), err
	}
	return p.finish(ctx, log, summary), nil
}

func (p *Pipeline) finish(ctx context.Context, log logging.Logger, summary *models.RunSummary) *models.RunSummary {
	summary.FinishedAt = p.now()

	if !summary.DryRun && p.history != nil {
		// the run outcome is recorded even when ctx was cancelled
		if err := p.history.InsertIngestionHistory(context.WithoutCancel(ctx), store.NewIngestionHistory(summary)); err != nil {
			log.WithError(err).Warn("Failed to record ingestion history")
		}
	}

	loaded, skipped := summary.FileCounts()
	log.Info("Ingestion finished",
		logging.Field{Key: logging.FieldStatus, Value: string(summary.Status())},
		logging.Field{Key: "files_loaded", Value: loaded},
		logging.Field{Key: "files_skipped", Value: skipped},
		logging.Field{Key: logging.FieldDuration, Value: summary.FinishedAt.Sub(summary.StartedAt).Milliseconds()})
	return summary
}
