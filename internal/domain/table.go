package domain

import (
	"fmt"
	"strings"
)

// Table is a flat dataset: a header row and string cells.
// Rows shorter than the header are treated as having empty trailing cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name (case-sensitive, then case-insensitive).
func (t Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(name)) {
			return i, true
		}
	}
	return -1, false
}

// Cell returns the value at row r, column c, or "" when the row is short.
func (t Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) {
		return ""
	}
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// Column returns every value of a named column.
func (t Table) Column(name string) ([]string, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, MissingColumn(name)
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, idx)
	}
	return out, nil
}

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// MissingColumn is returned when a configured column is absent from a table.
func MissingColumn(name string) error {
	return &OpError{
		Op:   "table.column",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("column %q not found: %w", name, ErrInvalidConfig),
	}
}

// LineageStatus values written to the lineage_status column.
const (
	LineageResolved   = "resolved"
	LineageUnresolved = "unresolved"
)

// AugmentedTable is a domain table with lineage columns appended.
type AugmentedTable struct {
	Table
	// Resolved[i] reports whether row i received a lineage.
	Resolved []bool
}

func (a AugmentedTable) ResolvedCount() int {
	n := 0
	for _, ok := range a.Resolved {
		if ok {
			n++
		}
	}
	return n
}
