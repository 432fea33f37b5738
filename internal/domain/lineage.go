package domain

import (
	"strings"
	"time"
)

// Taxon is one rank in a lineage.
type Taxon struct {
	TaxID string `json:"tax_id,omitempty"`
	Name  string `json:"name"`
	Rank  string `json:"rank,omitempty"`
}

// Lineage is ordered root first; the queried taxon is the last element.
type Lineage []Taxon

// Names returns the scientific names in lineage order.
func (l Lineage) Names() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		out = append(out, t.Name)
	}
	return out
}

// String joins names the way NCBI renders a Lineage field.
func (l Lineage) String() string {
	return strings.Join(l.Names(), "; ")
}

// At returns the name at depth i, or "" when the lineage is shorter.
func (l Lineage) At(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}
	return l[i].Name
}

// Leaf returns the queried taxon.
func (l Lineage) Leaf() (Taxon, bool) {
	if len(l) == 0 {
		return Taxon{}, false
	}
	return l[len(l)-1], true
}

func (l Lineage) Equal(other Lineage) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share backing storage.
func (l Lineage) Clone() Lineage {
	if l == nil {
		return nil
	}
	out := make(Lineage, len(l))
	copy(out, l)
	return out
}

// Ranked drops pseudo-ranks ("cellular organisms", "root", "no rank" clades)
// so that positional columns line up across organisms.
func (l Lineage) Ranked() Lineage {
	out := make(Lineage, 0, len(l))
	for _, t := range l {
		switch {
		case t.Name == "cellular organisms" || t.Name == "root":
			continue
		case t.Rank == "no rank" || t.Rank == "clade":
			continue
		}
		out = append(out, t)
	}
	return out
}

// CacheEntry pairs an identifier with its resolved lineage. Immutable once written.
type CacheEntry struct {
	ID         Identifier `json:"id"`
	Lineage    Lineage    `json:"lineage"`
	ResolvedAt time.Time  `json:"resolved_at"`
}
