package lineagestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

const formatVersion = 1

// Store is a file-backed lineage cache. Entries live in memory; Load and
// Persist move them to and from a single JSON document (gzip when the path
// ends in .gz). An empty path gives a memory-only cache.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[domain.Identifier]domain.CacheEntry
	dirty   bool

	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    strings.TrimSpace(path),
		entries: map[domain.Identifier]domain.CacheEntry{},
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.LineageCache = (*Store)(nil)

func (s *Store) Path() string { return s.path }

func (s *Store) Get(id domain.Identifier) (domain.Lineage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.Lineage.Clone(), true
}

// Put is idempotent for an identical lineage. A different lineage for a known
// identifier overwrites the old one and is logged, since it should not happen.
func (s *Store) Put(id domain.Identifier, lineage domain.Lineage) {
	if id == "" || len(lineage) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[id]; ok {
		if prev.Lineage.Equal(lineage) {
			return
		}
		s.logger.Warn("lineagestore.put.anomaly",
			"id", string(id),
			"old", prev.Lineage.String(),
			"new", lineage.String(),
		)
	}

	s.entries[id] = domain.CacheEntry{
		ID:         id,
		Lineage:    lineage.Clone(),
		ResolvedAt: s.now().UTC(),
	}
	s.dirty = true
}

func (s *Store) Invalidate(id domain.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	s.dirty = true
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of every entry sorted by identifier.
func (s *Store) Entries() []domain.CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *Store) sortedLocked() []domain.CacheEntry {
	out := make([]domain.CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		c := e
		c.Lineage = e.Lineage.Clone()
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type document struct {
	Version int                 `json:"version"`
	Entries []domain.CacheEntry `json:"entries"`
}

// Load replaces the in-memory entries with the file contents. A missing file is an
// empty cache. An unreadable or corrupt file leaves the cache empty and returns a
// KindCacheCorruption error the caller is expected to report and carry on from.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = map[domain.Identifier]domain.CacheEntry{}
	s.dirty = false

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return s.corrupt("lineagestore.read", err)
	}

	if isGzipPath(s.path) {
		zr, err := pgzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return s.corrupt("lineagestore.gunzip", err)
		}
		raw, err := io.ReadAll(zr)
		_ = zr.Close()
		if err != nil {
			return s.corrupt("lineagestore.gunzip", err)
		}
		b = raw
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return s.corrupt("lineagestore.decode", err)
	}
	if doc.Version != formatVersion {
		return s.corrupt("lineagestore.decode", fmt.Errorf("unsupported cache version %d", doc.Version))
	}

	skipped := 0
	for _, e := range doc.Entries {
		id, err := domain.ParseIdentifier(string(e.ID))
		if err != nil || len(e.Lineage) == 0 {
			skipped++
			continue
		}
		e.ID = id
		s.entries[id] = e
	}
	if skipped > 0 {
		s.logger.Warn("lineagestore.load.skipped", "path", s.path, "count", skipped)
	}
	s.logger.Debug("lineagestore.loaded", "path", s.path, "entries", len(s.entries))
	return nil
}

func (s *Store) corrupt(op string, err error) error {
	s.entries = map[domain.Identifier]domain.CacheEntry{}
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindCacheCorruption,
		Path: s.path,
		Err:  fmt.Errorf("%w: %v", domain.ErrCacheCorruption, err),
	}
}

// Persist flushes the cache when it changed since the last Load/Persist.
func (s *Store) Persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.OpError{
			Op:   "lineagestore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	b, err := json.MarshalIndent(document{Version: formatVersion, Entries: s.sortedLocked()}, "", "  ")
	if err != nil {
		return &domain.OpError{
			Op:   "lineagestore.marshal",
			Kind: domain.KindExecution,
			Path: s.path,
			Err:  err,
		}
	}

	if isGzipPath(s.path) {
		var buf bytes.Buffer
		zw := pgzip.NewWriter(&buf)
		if _, err := zw.Write(b); err != nil {
			return &domain.OpError{Op: "lineagestore.gzip", Kind: domain.KindExecution, Path: s.path, Err: err}
		}
		if err := zw.Close(); err != nil {
			return &domain.OpError{Op: "lineagestore.gzip", Kind: domain.KindExecution, Path: s.path, Err: err}
		}
		b = buf.Bytes()
	}

	// Atomic-ish write: tmp then rename.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return &domain.OpError{
			Op:   "lineagestore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "lineagestore.rename",
			Kind: domain.KindExecution,
			Path: s.path,
			Err:  err,
		}
	}

	s.dirty = false
	s.logger.Debug("lineagestore.persisted", "path", s.path, "entries", len(s.entries))
	return nil
}

func isGzipPath(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".gz")
}
