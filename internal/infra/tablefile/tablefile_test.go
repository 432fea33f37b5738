package tablefile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func sample() domain.Table {
	return domain.Table{
		Columns: []string{"BiGG ID", "ORGANISM", "log10_kcat"},
		Rows: [][]string{
			{"PGI", "Escherichia coli", "2.1"},
			{"PFK", "Bacillus, strain 168", "1.3"},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"t.csv", "t.tsv", "t.csv.gz", "t.tsv.gz", "t.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			s := NewStore()

			if err := s.WriteTable(path, sample()); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := s.ReadTable(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(got, sample()) {
				t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, sample())
			}
		})
	}
}

func TestStore_ReadPadsAndSkipsBlankRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	body := "\xEF\xBB\xBF,BiGG ID,flux\n\n0,PGI,1.5\n1,PFK\n,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewStore().ReadTable(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := domain.Table{
		Columns: []string{"column_1", "BiGG ID", "flux"},
		Rows:    [][]string{{"0", "PGI", "1.5"}, {"1", "PFK", ""}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()
	dir := t.TempDir()

	if _, err := s.ReadTable(filepath.Join(dir, "missing.csv")); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.ReadTable(filepath.Join(dir, "data.parquet")); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.ReadTable(empty); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid table, got %v", err)
	}
	if err := s.WriteTable(filepath.Join(dir, "x.xlsx.gz"), sample()); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := NewStore().WriteTable(filepath.Join(dir, "t.csv"), sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "t.csv" {
		t.Fatalf("unexpected files: %v", entries)
	}
}
