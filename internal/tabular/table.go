// Package tabular holds the in-memory table that flows through the ingestion
// pipeline and the reader that loads bank exports into it.
package tabular

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is returned when a requested column does not exist.
var ErrColumnNotFound = errors.New("column not found")

// Table is an ordered set of named columns over ordered rows. A nil cell is null.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// FromRecords builds a table of strings from a header and its data rows.
// Short rows are padded with nulls.
func FromRecords(header []string, records [][]string) *Table {
	t := NewTable(header...)
	t.rows = make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(t.columns))
		for i := range row {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func (t *Table) addColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.columns = append(t.columns, name)
	t.index[name] = len(t.columns) - 1
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], nil)
	}
	return len(t.columns) - 1
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the names in cols that the table lacks, in order.
func (t *Table) MissingColumns(cols []string) []string {
	var missing []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Value returns the cell at row i of the named column.
func (t *Table) Value(i int, column string) (any, error) {
	c, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return t.rows[i][c], nil
}

// Text returns the cell at row i as the string it was read as. Nulls give "".
func (t *Table) Text(i int, column string) string {
	v, err := t.Value(i, column)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Row returns the cells of row i keyed by column name.
func (t *Table) Row(i int) map[string]any {
	m := make(map[string]any, len(t.columns))
	for c, name := range t.columns {
		m[name] = t.rows[i][c]
	}
	return m
}

// Rows returns the rows as cell slices aligned with Columns. The slices are shared.
func (t *Table) Rows() [][]any {
	return t.rows
}

// SetColumn adds or replaces a column. values must have one entry per row.
func (t *Table) SetColumn(name string, values []any) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %s has %d values for %d rows", name, len(values), len(t.rows))
	}
	c := t.addColumn(name)
	for r := range t.rows {
		t.rows[r][c] = values[r]
	}
	return nil
}

// Fill sets every cell of a column to the same value, adding the column if needed.
func (t *Table) Fill(name string, value any) {
	c := t.addColumn(name)
	for r := range t.rows {
		t.rows[r][c] = value
	}
}

// Select returns a new table holding only cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	positions := make([]int, len(cols))
	for i, c := range cols {
		p, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
		positions[i] = p
	}

	out := NewTable(cols...)
	out.rows = make([][]any, len(t.rows))
	for r, row := range t.rows {
		projected := make([]any, len(positions))
		for i, p := range positions {
			projected[i] = row[p]
		}
		out.rows[r] = projected
	}
	return out, nil
}

// Rename returns a new table whose columns are renamed by names (old -> new).
// Columns not in names keep their name. Two columns may not end up with the same name.
func (t *Table) Rename(names map[string]string) (*Table, error) {
	renamed := make([]string, len(t.columns))
	seen := make(map[string]struct{}, len(t.columns))
	for i, c := range t.columns {
		n := c
		if to, ok := names[c]; ok {
			n = to
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("rename produces duplicate column %s", n)
		}
		seen[n] = struct{}{}
		renamed[i] = n
	}

	out := NewTable(renamed...)
	out.rows = make([][]any, len(t.rows))
	for r, row := range t.rows {
		out.rows[r] = cloneRow(row)
	}
	return out, nil
}

// Filter returns a new table with the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns...)
	for r, row := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, cloneRow(row))
		}
	}
	return out
}

// Append adds the rows of other. Columns only other has are added to t
// (earlier rows get nulls); columns other lacks are null in its rows.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	positions := make([]int, len(other.columns))
	for i, c := range other.columns {
		positions[i] = t.addColumn(c)
	}
	for _, row := range other.rows {
		merged := make([]any, len(t.columns))
		for i, p := range positions {
			merged[p] = row[i]
		}
		t.rows = append(t.rows, merged)
	}
}

func cloneRow(row []any) []any {
	out := make([]any, len(row))
	copy(out, row)
	return out
}
