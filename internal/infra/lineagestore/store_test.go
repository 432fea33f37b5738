package lineagestore

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func ecoli() domain.Lineage {
	return domain.Lineage{
		{TaxID: "131567", Name: "cellular organisms", Rank: "no rank"},
		{TaxID: "2", Name: "Bacteria", Rank: "superkingdom"},
		{TaxID: "1224", Name: "Pseudomonadota", Rank: "phylum"},
		{TaxID: "561", Name: "Escherichia", Rank: "genus"},
	}
}

func yeast() domain.Lineage {
	return domain.Lineage{
		{TaxID: "131567", Name: "cellular organisms", Rank: "no rank"},
		{TaxID: "2759", Name: "Eukaryota", Rank: "superkingdom"},
		{TaxID: "4930", Name: "Saccharomyces", Rank: "genus"},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
}

func TestStore_PersistThenLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"lineages.json", "lineages.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache", name)

			s := NewStore(path, WithNow(fixedNow))
			s.Put("Escherichia", ecoli())
			s.Put("4932", yeast())
			if err := s.Persist(); err != nil {
				t.Fatalf("Persist error: %v", err)
			}

			reloaded := NewStore(path)
			if err := reloaded.Load(); err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Len() != 2 {
				t.Fatalf("expected 2 entries, got %d", reloaded.Len())
			}

			for id, want := range map[domain.Identifier]domain.Lineage{"Escherichia": ecoli(), "4932": yeast()} {
				got, ok := reloaded.Get(id)
				if !ok {
					t.Fatalf("expected %s after reload", id)
				}
				if !got.Equal(want) {
					t.Fatalf("lineage for %s changed: %v vs %v", id, got, want)
				}
			}

			entries := reloaded.Entries()
			if !entries[0].ResolvedAt.Equal(fixedNow()) {
				t.Fatalf("expected resolved_at preserved, got %s", entries[0].ResolvedAt)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Fatalf("expected tmp file removed, stat err=%v", err)
			}
		})
	}
}

func TestStore_LoadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty cache")
	}
}

func TestStore_LoadCorruptFileStartsEmpty(t *testing.T) {
	cases := map[string][]byte{
		"lineages.json":    []byte("{not json"),
		"lineages.json.gz": []byte("plain text, not gzip"),
		"versioned.json":   []byte(`{"version": 99, "entries": []}`),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, content, 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}

			s := NewStore(path)
			s.Put("stale", ecoli())

			err := s.Load()
			if err == nil {
				t.Fatalf("expected corruption error")
			}
			if !domain.IsKind(err, domain.KindCacheCorruption) {
				t.Fatalf("expected cache_corruption, got %v", err)
			}
			if s.Len() != 0 {
				t.Fatalf("expected empty cache after corrupt load, got %d", s.Len())
			}

			// The store stays usable.
			s.Put("Escherichia", ecoli())
			if err := s.Persist(); err != nil {
				t.Fatalf("Persist after corruption: %v", err)
			}
			again := NewStore(path)
			if err := again.Load(); err != nil {
				t.Fatalf("expected rewritten file to load, got %v", err)
			}
			if again.Len() != 1 {
				t.Fatalf("expected 1 entry, got %d", again.Len())
			}
		})
	}
}

func TestStore_PutIsIdempotentAndLogsAnomaly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	s := NewStore("", WithLogger(logger))
	s.Put("Escherichia", ecoli())
	s.Put("Escherichia", ecoli())

	if strings.Contains(buf.String(), "lineagestore.put.anomaly") {
		t.Fatalf("expected no anomaly for identical lineage")
	}

	s.Put("Escherichia", yeast())
	if !strings.Contains(buf.String(), "lineagestore.put.anomaly") {
		t.Fatalf("expected anomaly log, got %q", buf.String())
	}

	got, _ := s.Get("Escherichia")
	if !got.Equal(yeast()) {
		t.Fatalf("expected last write to win")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore("")
	in := ecoli()
	s.Put("Escherichia", in)
	in[0].Name = "mutated input"

	got, _ := s.Get("Escherichia")
	got[1].Name = "mutated output"

	again, _ := s.Get("Escherichia")
	if !again.Equal(ecoli()) {
		t.Fatalf("expected stored lineage to be isolated, got %v", again)
	}
}

func TestStore_PutIgnoresEmptyLineage(t *testing.T) {
	s := NewStore("")
	s.Put("Escherichia", nil)
	if s.Len() != 0 {
		t.Fatalf("expected empty lineage to be ignored")
	}
}

func TestStore_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineages.json")
	s := NewStore(path)
	s.Put("Escherichia", ecoli())
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if !s.Invalidate("Escherichia") {
		t.Fatalf("expected invalidate to report removal")
	}
	if s.Invalidate("Escherichia") {
		t.Fatalf("expected second invalidate to be a no-op")
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	again := NewStore(path)
	if err := again.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := again.Get("Escherichia"); ok {
		t.Fatalf("expected entry to stay invalidated after reload")
	}
}

func TestStore_PersistSkipsCleanCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineages.json")
	s := NewStore(path)
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for an untouched cache")
	}
}
