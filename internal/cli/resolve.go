package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func resolveCmd() *cobra.Command {
	var (
		workspace string
		from      string
		column    string
		format    string
		noSave    bool
		strict    bool
	)

	c := &cobra.Command{
		Use:   "resolve [ID...]",
		Short: "Resolve organism names or TaxIDs to lineages",
		Example: `  kcatflux resolve "Escherichia coli" 562
  kcatflux resolve --from data/organisms.csv --column ORGANISM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			ids := append([]string(nil), args...)
			source := "args"
			if strings.TrimSpace(from) != "" {
				path, err := resolveDataPath(ws, from)
				if err != nil {
					return err
				}
				t, err := ws.tables.ReadTable(path)
				if err != nil {
					return err
				}
				col := column
				if col == "" {
					col = ws.cfg.Mapping.KeyColumn
				}
				values, err := t.Column(col)
				if err != nil {
					return err
				}
				ids = append(ids, values...)
				source = path
			}
			if len(ids) == 0 {
				return fmt.Errorf("no identifiers given (pass IDs or --from)")
			}

			report, id, err := resolveIdentifiers(cmd.Context(), ws, ids, resolveOptions{
				source:   source,
				save:     !noSave,
				progress: format != "json",
				stderr:   cmd.ErrOrStderr(),
			})
			if err != nil && report.Results == nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				if perr := printReportJSON(out, report); perr != nil {
					return perr
				}
			default:
				printReport(out, report, id)
			}
			if err != nil {
				return err
			}
			if strict && len(report.Failed()) > 0 {
				return fmt.Errorf("%d of %d identifiers did not resolve", len(report.Failed()), len(report.Results))
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&from, "from", "", "Read identifiers from a table (csv, tsv, xlsx)")
	c.Flags().StringVar(&column, "column", "", "Identifier column in --from (default: mapping.key_column)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not write a report under reports/")
	c.Flags().BoolVar(&strict, "strict", false, "Exit non-zero if any identifier fails")
	return c
}

func printReport(w io.Writer, r domain.ResolutionReport, savedID string) {
	th := defaultTheme()
	failures := r.CountByFailure()

	rows := [][2]string{
		{"Identifiers", fmt.Sprintf("%d", len(r.Results))},
		{"Resolved", th.OK.Render(fmt.Sprintf("%d", len(r.Resolved())))},
		{"Failed", failedCell(th, len(r.Failed()))},
		{"Cache hits", fmt.Sprintf("%d", r.CacheHits())},
		{"Duration", r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()},
	}
	if savedID != "" {
		rows = append(rows, [2]string{"Report", savedID})
	}
	fmt.Fprintln(w, th.kv("Resolution", rows))

	for _, id := range r.Failed() {
		res := r.Results[id]
		kind, msg := domain.FailureKind("unknown"), ""
		if res.Failure != nil {
			kind, msg = res.Failure.Kind, res.Failure.Message
		}
		fmt.Fprintf(w, "%s %s [%s] %s\n", th.Fail.Render("✗"), id, kind, th.Subtitle.Render(msg))
	}
	if n := failures[domain.FailureTransient]; n > 0 {
		fmt.Fprintf(w, "%d transient failure(s); rerun to retry them\n", n)
	}
}

func failedCell(th theme, n int) string {
	s := fmt.Sprintf("%d", n)
	if n == 0 {
		return s
	}
	return th.Fail.Render(s)
}

func printReportJSON(w io.Writer, r domain.ResolutionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
