package store

import (
	"context"
	"fmt"
	"time"

	"fjacquet/bank-ingest/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// IngestionHistory is one row of the ingestion history table.
type IngestionHistory struct {
	RunID          string         `db:"run_id"`
	StartedAt      time.Time      `db:"started_at"`
	FinishedAt     time.Time      `db:"finished_at"`
	Status         string         `db:"status"`
	FilesLoaded    int            `db:"files_loaded"`
	FilesSkipped   int            `db:"files_skipped"`
	StmProduced    int            `db:"stm_produced"`
	StmUploaded    int            `db:"stm_uploaded"`
	SecProduced    int            `db:"sec_produced"`
	SecUploaded    int            `db:"sec_uploaded"`
	ProcessedFiles pq.StringArray `db:"processed_files"`
}

// NewIngestionHistory flattens a run summary into a history row.
func NewIngestionHistory(summary *models.RunSummary) *IngestionHistory {
	loaded, skipped := summary.FileCounts()
	stm := summary.Type(models.MappingTypeStatement)
	sec := summary.Type(models.MappingTypeSecurity)
	return &IngestionHistory{
		RunID:          summary.RunID,
		StartedAt:      summary.StartedAt.UTC(),
		FinishedAt:     summary.FinishedAt.UTC(),
		Status:         string(summary.Status()),
		FilesLoaded:    loaded,
		FilesSkipped:   skipped,
		StmProduced:    stm.Produced,
		StmUploaded:    stm.Uploaded,
		SecProduced:    sec.Produced,
		SecUploaded:    sec.Uploaded,
		ProcessedFiles: pq.StringArray(summary.FileNames()),
	}
}

// IngestionHistoryStore records ingestion runs.
type IngestionHistoryStore struct {
	db     *sqlx.DB
	schema string
}

// NewIngestionHistoryStore creates an IngestionHistoryStore for the tables of schema.
func NewIngestionHistoryStore(db *sqlx.DB, schema string) *IngestionHistoryStore {
	return &IngestionHistoryStore{db: db, schema: schema}
}

// InsertIngestionHistory records one run.
func (ih *IngestionHistoryStore) InsertIngestionHistory(ctx context.Context, history *IngestionHistory) error {
	query := `INSERT INTO ` + qualified(ih.schema, HistoryTable) + ` (
		run_id,
		started_at,
		finished_at,
		status,
		files_loaded,
		files_skipped,
		stm_produced,
		stm_uploaded,
		sec_produced,
		sec_uploaded,
		processed_files
	) VALUES (
		:run_id,
		:started_at,
		:finished_at,
		:status,
		:files_loaded,
		:files_skipped,
		:stm_produced,
		:stm_uploaded,
		:sec_produced,
		:sec_uploaded,
		:processed_files
	)`

	if _, err := ih.db.NamedExecContext(ctx, query, history); err != nil {
		return fmt.Errorf("failed to record ingestion run %s: %w", history.RunID, err)
	}
	return nil
}

// GetLatest returns the most recent runs, newest first.
func (ih *IngestionHistoryStore) GetLatest(ctx context.Context, limit int) ([]IngestionHistory, error) {
	query := `SELECT
		run_id,
		started_at,
		finished_at,
		status,
		files_loaded,
		files_skipped,
		stm_produced,
		stm_uploaded,
		sec_produced,
		sec_uploaded,
		processed_files
	FROM ` + qualified(ih.schema, HistoryTable) + `
	ORDER BY started_at DESC
	LIMIT $1`

	result := []IngestionHistory{}
	if err := ih.db.SelectContext(ctx, &result, query, limit); err != nil {
		return nil, fmt.Errorf("failed to read ingestion history: %w", err)
	}
	return result, nil
}
