package ports

import (
	"context"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// DirectoryClient resolves one identifier against the external taxonomy service.
// attempts counts outbound tries, retries included.
type DirectoryClient interface {
	Resolve(ctx context.Context, id domain.Identifier) (lineage domain.Lineage, attempts int, err error)
}
