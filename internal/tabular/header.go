package tabular

import (
	"bytes"
	"encoding/csv"
)

// headerOnly reports whether data holds a single CSV record and returns it.
// The dataframe loader rejects such input, but an export with no movements is
// still a valid file.
func headerOnly(data []byte, sep rune) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil || len(records) != 1 {
		return nil, false
	}
	return records[0], true
}
