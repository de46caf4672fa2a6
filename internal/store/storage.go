// Package store persists canonical records and ingestion history in PostgreSQL.
package store

import (
	"context"
	"os"
	"path/filepath"

	"fjacquet/bank-ingest/internal/tabular"

	"github.com/jmoiron/sqlx"
)

// Storage groups the repositories of the application database.
type Storage struct {
	Records interface {
		ExistingKeys(ctx context.Context, mappingType string) ([]string, error)
		Append(ctx context.Context, mappingType string, table *tabular.Table) (int, error)
	}

	IngestionHistory interface {
		InsertIngestionHistory(ctx context.Context, history *IngestionHistory) error
		GetLatest(ctx context.Context, limit int) ([]IngestionHistory, error)
	}

	Schema interface {
		Initialize(ctx context.Context) error
	}
}

// NewStorage creates the repositories backed by db and the table layout of cfg.
func NewStorage(db *sqlx.DB, cfg *DBConfig) *Storage {
	return &Storage{
		Records:          &RecordStore{db: db, cfg: cfg},
		IngestionHistory: &IngestionHistoryStore{db: db, schema: cfg.Schema},
		Schema:           &SchemaStore{db: db, cfg: cfg},
	}
}

// FindConfigFile looks for a configuration file in the standard locations:
// as given, under ./config, then under $HOME/.config/bank-ingest.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filepath.Base(filename)),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "bank-ingest", filepath.Base(filename)))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}
