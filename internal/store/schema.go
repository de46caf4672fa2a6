package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SchemaStore provisions the schema and tables described by the database configuration.
type SchemaStore struct {
	db  *sqlx.DB
	cfg *DBConfig
}

// NewSchemaStore creates a SchemaStore.
func NewSchemaStore(db *sqlx.DB, cfg *DBConfig) *SchemaStore {
	return &SchemaStore{db: db, cfg: cfg}
}

// Initialize creates the schema and recreates every data table in one
// transaction. Existing records are lost.
func (ss *SchemaStore) Initialize(ctx context.Context) error {
	stmts, err := SchemaStatements(ss.cfg)
	if err != nil {
		return err
	}

	tx, err := ss.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return tx.Commit()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
