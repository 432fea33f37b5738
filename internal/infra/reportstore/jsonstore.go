package reportstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

const (
	defaultReportsDir = "reports"
	indexFile         = "index.jsonl"
	maskValue         = "********"
)

// Query parameters whose values never reach disk.
var secretParam = regexp.MustCompile(`(?i)\b(api_key|apikey|token)=[^&\s"']+`)

type JSONStore struct {
	dir        string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a JSONL index: reports/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	if strings.TrimSpace(dir) == "" {
		dir = defaultReportsDir
	}
	s := &JSONStore{
		dir:        dir,
		writeIndex: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ReportStore = (*JSONStore)(nil)

// IndexEntry is one line of index.jsonl.
type IndexEntry struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Source    string    `json:"source,omitempty"`
	Total     int       `json:"total"`
	Resolved  int       `json:"resolved"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

// SaveReport writes <timestamp>_<source>.json and returns its id.
func (s *JSONStore) SaveReport(report domain.ResolutionReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	ts := report.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := maskReport(report)
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}

	slug := slugify(strings.TrimSuffix(filepath.Base(report.Source), filepath.Ext(report.Source)))
	if slug == "" {
		slug = "resolve"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "reportstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(IndexEntry{
			ID:        id,
			File:      filename,
			Source:    report.Source,
			Total:     len(report.Results),
			Resolved:  len(report.Resolved()),
			Failed:    len(report.Failed()),
			StartedAt: toSave.StartedAt,
		})
	}

	return id, nil
}

// LoadReport reads a report saved under id.
func (s *JSONStore) LoadReport(id string) (domain.ResolutionReport, error) {
	path := filepath.Join(s.dir, id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.ResolutionReport{}, &domain.OpError{Op: "reportstore.load", Kind: kind, Path: path, Err: err}
	}

	var rep domain.ResolutionReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return domain.ResolutionReport{}, &domain.OpError{Op: "reportstore.load", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	return rep, nil
}

// List returns index entries, oldest first. A missing index is empty.
func (s *JSONStore) List() ([]IndexEntry, error) {
	path := filepath.Join(s.dir, indexFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.OpError{Op: "reportstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer f.Close()

	var out []IndexEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return out, &domain.OpError{Op: "reportstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return out, nil
}

func (s *JSONStore) appendIndex(e IndexEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// maskReport returns a copy with secrets removed from failure messages (does NOT mutate the input).
func maskReport(r domain.ResolutionReport) domain.ResolutionReport {
	out := r
	out.Results = make(map[domain.Identifier]domain.ResolutionResult, len(r.Results))
	for id, res := range r.Results {
		c := res
		c.Lineage = res.Lineage.Clone()
		if res.Failure != nil {
			f := *res.Failure
			f.Message = maskSecrets(f.Message)
			c.Failure = &f
		}
		out.Results[id] = c
	}
	return out
}

func maskSecrets(s string) string {
	return secretParam.ReplaceAllStringFunc(s, func(m string) string {
		i := strings.IndexByte(m, '=')
		return m[:i+1] + maskValue
	})
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
