package ports

import "github.com/Nina181/kcat-flux-relationship/internal/domain"

// LineageCache is the persistent identifier -> lineage store.
// Get never touches the network or the disk.
type LineageCache interface {
	Get(id domain.Identifier) (domain.Lineage, bool)
	Put(id domain.Identifier, lineage domain.Lineage)
	Invalidate(id domain.Identifier) bool

	Load() error
	Persist() error
}
