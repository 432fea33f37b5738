package usecase

import (
	"fmt"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

const (
	LineageColumnPrefix = "lineage_"
	LineageColumn       = "lineage"
	LineageStatusColumn = "lineage_status"
)

// BuildMapping left-joins lineage columns onto a table keyed by an identifier column.
type BuildMapping struct {
	depth      int
	rankedOnly bool
}

type MappingOption func(*BuildMapping)

// WithDepth sets how many lineage_N columns are produced.
func WithDepth(n int) MappingOption {
	return func(b *BuildMapping) {
		if n > 0 {
			b.depth = n
		}
	}
}

// WithRankedOnly drops pseudo-ranks ("cellular organisms", clades) before building columns.
func WithRankedOnly(v bool) MappingOption {
	return func(b *BuildMapping) { b.rankedOnly = v }
}

func NewBuildMapping(opts ...MappingOption) *BuildMapping {
	b := &BuildMapping{depth: 4}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Columns lists the columns Build appends, in order.
func (b *BuildMapping) Columns() []string {
	cols := make([]string, 0, b.depth+2)
	for i := 0; i < b.depth; i++ {
		cols = append(cols, fmt.Sprintf("%s%d", LineageColumnPrefix, i))
	}
	return append(cols, LineageColumn, LineageStatusColumn)
}

// Build returns a new table with one output row per input row. Rows whose key
// did not resolve get empty lineage cells and the unresolved status.
func (b *BuildMapping) Build(t domain.Table, keyColumn string, lineages map[domain.Identifier]domain.Lineage) (domain.AugmentedTable, error) {
	keyIdx, ok := t.ColumnIndex(keyColumn)
	if !ok {
		return domain.AugmentedTable{}, domain.MissingColumn(keyColumn)
	}

	added := b.Columns()
	replaced := make(map[string]bool, len(added))
	for _, c := range added {
		replaced[strings.ToLower(c)] = true
	}

	keep := make([]int, 0, len(t.Columns))
	out := domain.AugmentedTable{
		Table: domain.Table{
			Columns: make([]string, 0, len(t.Columns)+len(added)),
			Rows:    make([][]string, 0, len(t.Rows)),
		},
		Resolved: make([]bool, 0, len(t.Rows)),
	}
	for i, c := range t.Columns {
		if replaced[strings.ToLower(c)] || isLineageColumn(c) {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}
	out.Columns = append(out.Columns, added...)

	for r := range t.Rows {
		row := make([]string, 0, len(out.Columns))
		for _, i := range keep {
			row = append(row, t.Cell(r, i))
		}

		lineage, found := b.lookup(t.Cell(r, keyIdx), lineages)
		for d := 0; d < b.depth; d++ {
			row = append(row, lineage.At(d))
		}
		if found {
			row = append(row, lineage.String(), domain.LineageResolved)
		} else {
			row = append(row, "", domain.LineageUnresolved)
		}

		out.Rows = append(out.Rows, row)
		out.Resolved = append(out.Resolved, found)
	}

	return out, nil
}

func (b *BuildMapping) lookup(key string, lineages map[domain.Identifier]domain.Lineage) (domain.Lineage, bool) {
	id, err := domain.ParseIdentifier(key)
	if err != nil {
		return nil, false
	}
	lineage, ok := lineages[id]
	if !ok || len(lineage) == 0 {
		return nil, false
	}
	if b.rankedOnly {
		lineage = lineage.Ranked()
	}
	return lineage, true
}

// isLineageColumn matches lineage_N columns from a previous run, whatever its depth.
func isLineageColumn(name string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(name), LineageColumnPrefix)
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
