package usecase

import (
	"context"
	"strconv"
	"sync"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

type fakeClient struct {
	mu      sync.Mutex
	answers map[domain.Identifier]domain.Lineage
	errs    map[domain.Identifier]error
	calls   []domain.Identifier
	// onCall runs before each lookup returns.
	onCall func(id domain.Identifier)
}

func (f *fakeClient) Resolve(ctx context.Context, id domain.Identifier) (domain.Lineage, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(id)
	}
	if err, ok := f.errs[id]; ok {
		return nil, 1, err
	}
	if l, ok := f.answers[id]; ok {
		return l.Clone(), 1, nil
	}
	return nil, 1, &domain.OpError{Op: "fake.resolve", Kind: domain.KindNotFound, Path: string(id), Err: domain.ErrNotFound}
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeCache struct {
	entries   map[domain.Identifier]domain.Lineage
	loadErr   error
	loads     int
	persists  int
	persisted map[domain.Identifier]domain.Lineage
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[domain.Identifier]domain.Lineage{}}
}

func (c *fakeCache) Get(id domain.Identifier) (domain.Lineage, bool) {
	l, ok := c.entries[id]
	return l.Clone(), ok
}

func (c *fakeCache) Put(id domain.Identifier, l domain.Lineage) {
	c.entries[id] = l.Clone()
}

func (c *fakeCache) Invalidate(id domain.Identifier) bool {
	_, ok := c.entries[id]
	delete(c.entries, id)
	return ok
}

func (c *fakeCache) Load() error {
	c.loads++
	return c.loadErr
}

func (c *fakeCache) Persist() error {
	c.persists++
	c.persisted = make(map[domain.Identifier]domain.Lineage, len(c.entries))
	for k, v := range c.entries {
		c.persisted[k] = v.Clone()
	}
	return nil
}

type fakeReports struct {
	saved []domain.ResolutionReport
}

func (r *fakeReports) SaveReport(rep domain.ResolutionReport) (string, error) {
	r.saved = append(r.saved, rep)
	return "reports/" + rep.ID + ".json", nil
}

func lineageOf(names ...string) domain.Lineage {
	out := make(domain.Lineage, 0, len(names))
	for i, n := range names {
		out = append(out, domain.Taxon{TaxID: strconv.Itoa(i + 1), Name: n})
	}
	return out
}
