package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/usecase/kcatflux"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase/regress"
)

func correlateCmd() *cobra.Command {
	var (
		workspace string
		in        string
		xCol      string
		yCol      string
		group     string
		format    string
	)

	c := &cobra.Command{
		Use:   "correlate",
		Short: "Fit log10 kcat against log10 flux on a mapped table",
		Example: `  kcatflux correlate --in data/kcat_flux.csv
  kcatflux correlate --in data/kcat_flux.csv --group mapping --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			path, err := resolveDataPath(ws, in)
			if err != nil {
				return err
			}
			t, err := ws.tables.ReadTable(path)
			if err != nil {
				return err
			}

			groups := []regress.Group{{Key: "all"}}
			if group == "" {
				x, y, err := regress.Columns(t, xCol, yCol)
				if err != nil {
					return err
				}
				groups[0].Result, groups[0].Err = regress.Linear(x, y)
			} else {
				groups, err = regress.ByGroup(t, xCol, yCol, group)
				if err != nil {
					return err
				}
			}

			if format == "json" {
				return printRegressionJSON(cmd.OutOrStdout(), groups)
			}
			printRegression(cmd.OutOrStdout(), xCol, yCol, groups)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&in, "in", "", "Mapped table produced by `kcatflux map`")
	c.Flags().StringVar(&xCol, "x", kcatflux.ColLog10Flux, "Predictor column")
	c.Flags().StringVar(&yCol, "y", kcatflux.ColLog10Kcat, "Response column")
	c.Flags().StringVar(&group, "group", "", "Fit one line per value of this column (e.g. mapping, from_fva)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	_ = c.MarkFlagRequired("in")
	return c
}

func printRegression(w io.Writer, xCol, yCol string, groups []regress.Group) {
	th := defaultTheme()
	fmt.Fprintln(w, th.Subtitle.Render(fmt.Sprintf("%s ~ %s", yCol, xCol)))
	for _, g := range groups {
		if g.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", th.Fail.Render("✗"), g.Key, g.Err)
			continue
		}
		r := g.Result
		fmt.Fprintln(w, th.kv(g.Key, [][2]string{
			{"n", fmt.Sprintf("%d", r.N)},
			{"slope", fmt.Sprintf("%.4f ± %.4f", r.Slope, r.StdErr)},
			{"intercept", fmt.Sprintf("%.4f", r.Intercept)},
			{"r", fmt.Sprintf("%.4f", r.R)},
			{"R²", fmt.Sprintf("%.4f", r.RSquare)},
			{"p", fmt.Sprintf("%.3g", r.P)},
		}))
	}
}

type regressionJSON struct {
	Group string          `json:"group"`
	Fit   *regress.Result `json:"fit,omitempty"`
	Error string          `json:"error,omitempty"`
}

func printRegressionJSON(w io.Writer, groups []regress.Group) error {
	out := make([]regressionJSON, 0, len(groups))
	for _, g := range groups {
		e := regressionJSON{Group: g.Key}
		if g.Err != nil {
			e.Error = g.Err.Error()
		} else {
			res := g.Result
			e.Fit = &res
		}
		out = append(out, e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
