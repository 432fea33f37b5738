package ports

import "github.com/Nina181/kcat-flux-relationship/internal/domain"

// ReportStore persists resolution reports so failed identifiers can be re-run later.
type ReportStore interface {
	SaveReport(report domain.ResolutionReport) (id string, err error)
}
