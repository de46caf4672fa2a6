package dedup

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyedTable(keys ...string) *tabular.Table {
	records := make([][]string, len(keys))
	for i, k := range keys {
		records[i] = []string{k, fmt.Sprintf("row-%d", i)}
	}
	return tabular.FromRecords([]string{models.ColumnSurrogateKey, "payload"}, records)
}

func keysOf(t *tabular.Table) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.Text(i, models.ColumnSurrogateKey)
	}
	return out
}

func TestSelectNew(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		existing KeySet
		expected []string
	}{
		{
			name:     "keeps unknown keys in order",
			keys:     []string{"K1", "K3", "K2", "K4"},
			existing: NewKeySet("K1", "K2"),
			expected: []string{"K3", "K4"},
		},
		{
			name:     "everything already persisted",
			keys:     []string{"K1", "K2"},
			existing: NewKeySet("K1", "K2"),
			expected: []string{},
		},
		{
			name:     "empty existing set keeps all",
			keys:     []string{"K2", "K1"},
			existing: NewKeySet(),
			expected: []string{"K2", "K1"},
		},
		{
			name:     "empty table",
			keys:     nil,
			existing: NewKeySet("K1"),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := keyedTable(tt.keys...)
			got := SelectNew(table, tt.existing)
			assert.Equal(t, tt.expected, keysOf(got))
			assert.Equal(t, table.Columns(), got.Columns())
			assert.Equal(t, len(tt.keys), table.Len(), "input table must not change")
		})
	}
}

func TestSelectNew_KeepsWholeRows(t *testing.T) {
	got := SelectNew(keyedTable("K1", "K3", "K2", "K4"), NewKeySet("K1", "K2"))
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "row-1", got.Text(0, "payload"))
	assert.Equal(t, "row-3", got.Text(1, "payload"))
}

func TestDropDuplicateKeys(t *testing.T) {
	got, dropped := DropDuplicateKeys(keyedTable("A", "B", "A", "C", "B"))
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"A", "B", "C"}, keysOf(got))
	assert.Equal(t, "row-0", got.Text(0, "payload"))
}

func cryptoRandIntn(n int) int {
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Property: the result is exactly the input rows whose key is not persisted,
// and selecting again against the union of both sets yields nothing.
func TestProperty_SelectNewPartition(t *testing.T) {
	for i := 0; i < 100; i++ {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			n := cryptoRandIntn(20)
			keys := make([]string, n)
			for j := range keys {
				keys[j] = fmt.Sprintf("K%d", cryptoRandIntn(15))
			}
			existing := NewKeySet()
			for j := 0; j < cryptoRandIntn(15); j++ {
				existing[fmt.Sprintf("K%d", cryptoRandIntn(15))] = struct{}{}
			}

			var expected []string
			for _, k := range keys {
				if !existing.Contains(k) {
					expected = append(expected, k)
				}
			}
			if expected == nil {
				expected = []string{}
			}

			table := keyedTable(keys...)
			got := SelectNew(table, existing)
			assert.Equal(t, expected, keysOf(got))

			for _, k := range keysOf(got) {
				existing[k] = struct{}{}
			}
			assert.Equal(t, 0, SelectNew(table, existing).Len())
		})
	}
}
