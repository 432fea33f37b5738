package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/Nina181/kcat-flux-relationship/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("kcatflux %s (commit=%s, date=%s)", Version, Commit, Date)
}
