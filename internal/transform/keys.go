package transform

import (
	"crypto/md5" // #nosec G501 -- content fingerprint, not a security boundary
	"encoding/hex"
	"strings"

	"fjacquet/bank-ingest/internal/tabular"
)

// keySeparator joins the key column values before hashing.
const keySeparator = "#"

// SurrogateKey returns the lowercase hex MD5 of values joined with '#'.
func SurrogateKey(values []string) string {
	sum := md5.Sum([]byte(strings.Join(values, keySeparator))) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// surrogateKeys computes the key of every row from the raw text of columns.
func surrogateKeys(tbl *tabular.Table, columns []string) []any {
	keys := make([]any, tbl.Len())
	values := make([]string, len(columns))
	for i := 0; i < tbl.Len(); i++ {
		for c, col := range columns {
			values[c] = tbl.Text(i, col)
		}
		keys[i] = SurrogateKey(values)
	}
	return keys
}
