package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
)

// printError writes a short message plus a hint for the error's kind.
func printError(w io.Writer, err error) {
	if w == nil || err == nil {
		return
	}
	errorColor.Fprint(w, "error: ")
	fmt.Fprintln(w, err.Error())
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

func printWarning(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	warningColor.Fprint(w, "warning: ")
	fmt.Fprintf(w, format+"\n", args...)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "set directory.contact_email in kcatflux.yaml or export KCATFLUX_CONTACT_EMAIL"
	case errors.Is(err, context.Canceled):
		return "interrupted; resolved lineages were kept in the cache"
	}

	switch domain.KindOf(err) {
	case domain.KindInvalidConfig:
		return "check kcatflux.yaml (run `kcatflux validate`)"
	case domain.KindTransient:
		return "the taxonomy service is unavailable or rate limited; retry later"
	case domain.KindCacheCorruption:
		return "remove the cache file or run `kcatflux cache stats`"
	}
	return ""
}
