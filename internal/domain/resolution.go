package domain

import (
	"sort"
	"time"
)

// FailureKind is the typed reason a single identifier did not resolve.
type FailureKind string

const (
	FailureInvalid   FailureKind = "invalid_identifier"
	FailureNotFound  FailureKind = "not_found"
	FailureTransient FailureKind = "transient"
)

// ResolutionFailure describes why resolution failed for one identifier.
type ResolutionFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ResolutionResult is the per-identifier outcome of a batch.
type ResolutionResult struct {
	ID        Identifier         `json:"id"`
	Lineage   Lineage            `json:"lineage,omitempty"`
	Failure   *ResolutionFailure `json:"failure,omitempty"`
	Attempts  int                `json:"attempts"`
	FromCache bool               `json:"from_cache"`
}

func (r ResolutionResult) OK() bool {
	return r.Failure == nil && len(r.Lineage) > 0
}

// NewFailure maps an error onto a ResolutionFailure by its kind.
// Anything that is not clearly permanent is reported as transient.
func NewFailure(err error) *ResolutionFailure {
	if err == nil {
		return nil
	}
	kind := FailureTransient
	switch KindOf(err) {
	case KindInvalidIdentifier:
		kind = FailureInvalid
	case KindNotFound:
		kind = FailureNotFound
	}
	return &ResolutionFailure{Kind: kind, Message: err.Error()}
}

// ResolutionReport is produced fresh for every batch. Not persisted by the cache.
type ResolutionReport struct {
	ID        string                          `json:"id,omitempty"`
	Source    string                          `json:"source,omitempty"`
	StartedAt time.Time                       `json:"started_at"`
	EndedAt   time.Time                       `json:"ended_at"`
	Results   map[Identifier]ResolutionResult `json:"results"`
}

// Resolved returns the successful identifiers, sorted.
func (r ResolutionReport) Resolved() []Identifier {
	return r.filter(func(res ResolutionResult) bool { return res.OK() })
}

// Failed returns the failed identifiers, sorted.
func (r ResolutionReport) Failed() []Identifier {
	return r.filter(func(res ResolutionResult) bool { return !res.OK() })
}

// Lineages returns the resolved subset as a lookup table for joins.
func (r ResolutionReport) Lineages() map[Identifier]Lineage {
	out := make(map[Identifier]Lineage, len(r.Results))
	for id, res := range r.Results {
		if res.OK() {
			out[id] = res.Lineage
		}
	}
	return out
}

// CountByFailure returns how many identifiers failed for each kind.
func (r ResolutionReport) CountByFailure() map[FailureKind]int {
	out := map[FailureKind]int{}
	for _, res := range r.Results {
		if res.Failure != nil {
			out[res.Failure.Kind]++
		}
	}
	return out
}

// CacheHits counts results served without a network call.
func (r ResolutionReport) CacheHits() int {
	n := 0
	for _, res := range r.Results {
		if res.FromCache {
			n++
		}
	}
	return n
}

func (r ResolutionReport) filter(keep func(ResolutionResult) bool) []Identifier {
	out := make([]Identifier, 0, len(r.Results))
	for id, res := range r.Results {
		if keep(res) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
