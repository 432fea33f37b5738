package tablefile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// Format is a table file encoding chosen by extension.
type Format struct {
	Comma rune
	Gzip  bool
	Excel bool
}

// DetectFormat maps .csv, .tsv, .txt (tab separated), their .gz variants and .xlsx.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))

	var f Format
	if strings.HasSuffix(name, ".gz") {
		f.Gzip = true
		name = strings.TrimSuffix(name, ".gz")
	}

	switch filepath.Ext(name) {
	case ".csv":
		f.Comma = ','
	case ".tsv", ".tab", ".txt":
		f.Comma = '\t'
	case ".xlsx":
		if f.Gzip {
			return Format{}, unsupported(path)
		}
		f.Excel = true
	default:
		return Format{}, unsupported(path)
	}
	return f, nil
}

func unsupported(path string) error {
	return &domain.OpError{
		Op:   "tablefile.format",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("unsupported table format (want .csv, .tsv, .csv.gz, .tsv.gz or .xlsx): %w", domain.ErrInvalidConfig),
	}
}
