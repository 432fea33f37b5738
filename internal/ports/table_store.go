package ports

import "github.com/Nina181/kcat-flux-relationship/internal/domain"

// TableReader loads tabular datasets (csv, tsv, xlsx ...).
type TableReader interface {
	ReadTable(path string) (domain.Table, error)
}

// TableWriter writes tabular datasets.
type TableWriter interface {
	WriteTable(path string, t domain.Table) error
}
