package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/infra/logger"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase/kcatflux"
)

func mapCmd() *cobra.Command {
	var (
		workspace string
		kcatPath  string
		fluxPath  string
		out       string
		minAcc    float64
		offline   bool
	)

	c := &cobra.Command{
		Use:   "map",
		Short: "Pair kcat values with predicted fluxes using organism lineages",
		Example: `  kcatflux map --kcat data/kcats.csv --flux data/fluxes.csv --out data/kcat_flux.csv
  kcatflux map --kcat kcats.xlsx --flux fluxes.tsv.gz --out points.xlsx --offline`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			kp, err := resolveDataPath(ws, kcatPath)
			if err != nil {
				return err
			}
			fp, err := resolveDataPath(ws, fluxPath)
			if err != nil {
				return err
			}
			op, err := outputPath(ws, out)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-acc") {
				minAcc = ws.cfg.Kcat.MinBiGGAccuracy
			}

			kt, err := ws.tables.ReadTable(kp)
			if err != nil {
				return err
			}
			kcats, kstats, err := kcatflux.PrepareKcat(kt, minAcc)
			if err != nil {
				return err
			}

			ft, err := ws.tables.ReadTable(fp)
			if err != nil {
				return err
			}
			fluxes, fsum, err := kcatflux.PrepareFlux(ft)
			if err != nil {
				return err
			}

			lineages, err := lookupLineages(cmd.Context(), ws, organismsOf(kcats, fluxes), kp, offline, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			points, sum := kcatflux.NewMapper(
				kcatflux.WithRankedOnly(ws.cfg.Mapping.RankedOnly),
				kcatflux.WithLogger(logger.L()),
			).Map(kcats, fluxes, lineages)

			if err := ws.tables.WriteTable(op, kcatflux.PointsTable(points)); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printKcatStats(w, kstats)
			printFluxSummary(w, fsum)
			printMapSummary(w, op, sum)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&kcatPath, "kcat", "", "kcat table (BiGG ID, ORGANISM, log10_kcat, BiGG acc)")
	c.Flags().StringVar(&fluxPath, "flux", "", "Flux table (BiGG ID, ORGANISM, flux, from_fva)")
	c.Flags().StringVar(&out, "out", "", "Output table of mapped points")
	c.Flags().Float64Var(&minAcc, "min-acc", 0, "Minimum BiGG accuracy (default: kcat.min_bigg_accuracy)")
	c.Flags().BoolVar(&offline, "offline", false, "Use cached lineages only; never call the taxonomy service")
	_ = c.MarkFlagRequired("kcat")
	_ = c.MarkFlagRequired("flux")
	_ = c.MarkFlagRequired("out")
	return c
}

func organismsOf(kcats []kcatflux.Kcat, fluxes []kcatflux.Flux) []string {
	seen := map[string]bool{}
	for _, k := range kcats {
		seen[k.Organism] = true
	}
	for _, f := range fluxes {
		seen[f.Organism] = true
	}
	out := make([]string, 0, len(seen))
	for o := range seen {
		if o != "" {
			out = append(out, o)
		}
	}
	sort.Strings(out)
	return out
}

func printKcatStats(w io.Writer, s kcatflux.KcatStats) {
	fmt.Fprintln(w, defaultTheme().kv("kcat values", [][2]string{
		{"Rows", fmt.Sprintf("%d", s.Rows)},
		{"Low accuracy", fmt.Sprintf("%d", s.LowAccuracy)},
		{"Unparsable", fmt.Sprintf("%d", s.Unparsable)},
		{"Kept", fmt.Sprintf("%d", s.Kept)},
	}))
}

func printFluxSummary(w io.Writer, s kcatflux.FluxSummary) {
	fmt.Fprintln(w, defaultTheme().kv("Fluxes", [][2]string{
		{"Reactions", fmt.Sprintf("%d", s.Reactions)},
		{"pFBA zero", fmt.Sprintf("%d", s.PFBAZero)},
		{"FVA zero", fmt.Sprintf("%d", s.FVAZero)},
		{"Kept", fmt.Sprintf("%d", s.Kept)},
	}))
}

func printMapSummary(w io.Writer, path string, s kcatflux.Summary) {
	th := defaultTheme()
	rows := [][2]string{
		{"Output", path},
		{"kcat values", fmt.Sprintf("%d", s.KcatValues)},
		{"Data points", th.OK.Render(fmt.Sprintf("%d", s.DataPoints))},
		{"pFBA", fmt.Sprintf("%d", s.PFBA)},
		{"FVA", fmt.Sprintf("%d", s.FVA)},
		{"Unmapped", failedCell(th, s.Unmapped)},
	}

	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		rows = append(rows, [2]string{"  " + m, fmt.Sprintf("%d", s.ByMethod[kcatflux.Method(m)])})
	}
	fmt.Fprintln(w, th.kv("Mapping", rows))
}
