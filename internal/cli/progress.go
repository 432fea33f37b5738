package cli

import (
	"io"

	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

// newProgress returns a callback that drives a progress bar over directory
// lookups. The bar is created on the first lookup so cache-only runs print nothing.
func newProgress(w io.Writer) (usecase.ProgressFunc, func()) {
	var bar *pb.ProgressBar

	tick := func(done, total int, _ domain.Identifier) {
		if bar == nil {
			bar = pb.New(total)
			bar.Output = w
			bar.ShowSpeed = false
			bar.Prefix("lookups ")
			bar.Start()
		}
		bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return tick, finish
}
