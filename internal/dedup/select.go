// Package dedup reconciles accumulated canonical records with the keys already
// persisted and hands only the new rows to the persistence sink.
package dedup

import (
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/tabular"
)

// KeySet is a set of surrogate keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Contains reports whether key is in the set.
func (s KeySet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// SelectNew returns, in their original order, exactly the rows of table whose
// surrogate key is not in existing. Neither argument is modified.
func SelectNew(table *tabular.Table, existing KeySet) *tabular.Table {
	return table.Filter(func(i int) bool {
		return !existing.Contains(table.Text(i, models.ColumnSurrogateKey))
	})
}

// DropDuplicateKeys keeps the first row of every surrogate key and drops later
// repeats. It returns the filtered table and the number of rows dropped.
func DropDuplicateKeys(table *tabular.Table) (*tabular.Table, int) {
	seen := make(KeySet, table.Len())
	out := table.Filter(func(i int) bool {
		key := table.Text(i, models.ColumnSurrogateKey)
		if seen.Contains(key) {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return out, table.Len() - out.Len()
}
