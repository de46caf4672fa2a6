package store

import (
	"context"
	"fmt"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/tabular"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RecordStore reads and appends canonical records of every mapping type.
type RecordStore struct {
	db  *sqlx.DB
	cfg *DBConfig
}

// NewRecordStore creates a RecordStore.
func NewRecordStore(db *sqlx.DB, cfg *DBConfig) *RecordStore {
	return &RecordStore{db: db, cfg: cfg}
}

// ExistingKeys returns every surrogate key persisted for a mapping type.
func (rs *RecordStore) ExistingKeys(ctx context.Context, mappingType string) ([]string, error) {
	table, err := rs.cfg.Table(mappingType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s",
		pq.QuoteIdentifier(models.ColumnSurrogateKey), qualified(rs.cfg.Schema, table.TableName))

	keys := []string{}
	if err := rs.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("failed to fetch existing keys of %s: %w", mappingType, err)
	}
	return keys, nil
}

// Append bulk-inserts table into the mapping type's table with COPY, in one
// transaction. Empty text cells are written as NULL.
func (rs *RecordStore) Append(ctx context.Context, mappingType string, table *tabular.Table) (int, error) {
	cfgTable, err := rs.cfg.Table(mappingType)
	if err != nil {
		return 0, err
	}
	if table.Len() == 0 {
		return 0, nil
	}

	tx, err := rs.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(rs.cfg.Schema, cfgTable.TableName, table.Columns()...))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy into %s: %w", cfgTable.TableName, err)
	}

	for i, row := range table.Rows() {
		if _, err := stmt.ExecContext(ctx, copyValues(row)...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("failed to copy row %d into %s: %w", i+1, cfgTable.TableName, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("failed to flush copy into %s: %w", cfgTable.TableName, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy into %s: %w", cfgTable.TableName, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", cfgTable.TableName, err)
	}
	return table.Len(), nil
}

func copyValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[i] = v
	}
	return out
}
