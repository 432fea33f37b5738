package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/logger"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

func augmentCmd() *cobra.Command {
	var (
		workspace string
		in        string
		out       string
		column    string
		depth     int
		offline   bool
	)

	c := &cobra.Command{
		Use:   "augment",
		Short: "Append lineage columns to a table keyed by organism or TaxID",
		Example: `  kcatflux augment --in data/organisms.csv --out data/organisms_lineage.csv
  kcatflux augment --in fluxes.xlsx --out fluxes_lineage.xlsx --column ORGANISM --depth 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			inPath, err := resolveDataPath(ws, in)
			if err != nil {
				return err
			}
			outPath, err := outputPath(ws, out)
			if err != nil {
				return err
			}
			if column == "" {
				column = ws.cfg.Mapping.KeyColumn
			}
			if depth <= 0 {
				depth = ws.cfg.Mapping.Depth
			}

			t, err := ws.tables.ReadTable(inPath)
			if err != nil {
				return err
			}
			keys, err := t.Column(column)
			if err != nil {
				return err
			}

			lineages, err := lookupLineages(cmd.Context(), ws, keys, inPath, offline, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			aug, err := usecase.NewBuildMapping(
				usecase.WithDepth(depth),
				usecase.WithRankedOnly(ws.cfg.Mapping.RankedOnly),
			).Build(t, column, lineages)
			if err != nil {
				return err
			}
			if err := ws.tables.WriteTable(outPath, aug.Table); err != nil {
				return err
			}

			logger.L().Info("augment.done", "in", inPath, "out", outPath, "rows", len(aug.Rows), "resolved", aug.ResolvedCount())
			printAugment(cmd.OutOrStdout(), outPath, aug)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&in, "in", "", "Input table (csv, tsv, xlsx; .gz allowed for text)")
	c.Flags().StringVar(&out, "out", "", "Output table; format follows the extension")
	c.Flags().StringVar(&column, "column", "", "Identifier column (default: mapping.key_column)")
	c.Flags().IntVar(&depth, "depth", 0, "Number of lineage_N columns (default: mapping.depth)")
	c.Flags().BoolVar(&offline, "offline", false, "Use cached lineages only; never call the taxonomy service")
	_ = c.MarkFlagRequired("in")
	_ = c.MarkFlagRequired("out")
	return c
}

// lookupLineages resolves keys through the cache and, unless offline, the
// taxonomy service. Identifiers that fail are simply absent from the result.
func lookupLineages(ctx context.Context, ws *workspaceCtx, keys []string, source string, offline bool, stderr io.Writer) (map[domain.Identifier]domain.Lineage, error) {
	if offline {
		return cachedLineages(ws, keys, stderr)
	}
	report, _, err := resolveIdentifiers(ctx, ws, keys, resolveOptions{
		source:   source,
		save:     true,
		progress: true,
		stderr:   stderr,
	})
	if err != nil {
		return nil, err
	}
	if n := len(report.Failed()); n > 0 {
		printWarning(stderr, "%d of %d identifiers did not resolve (see `kcatflux reports list`)", n, len(report.Results))
	}
	return report.Lineages(), nil
}

func cachedLineages(ws *workspaceCtx, keys []string, stderr io.Writer) (map[domain.Identifier]domain.Lineage, error) {
	if err := ws.cache.Load(); err != nil {
		if !domain.IsKind(err, domain.KindCacheCorruption) {
			return nil, err
		}
		printWarning(stderr, "lineage cache unreadable: %v", err)
	}
	out := make(map[domain.Identifier]domain.Lineage, len(keys))
	for _, raw := range keys {
		id, err := domain.ParseIdentifier(raw)
		if err != nil {
			continue
		}
		if l, ok := ws.cache.Get(id); ok {
			out[id] = l
		}
	}
	return out, nil
}

func printAugment(w io.Writer, path string, aug domain.AugmentedTable) {
	th := defaultTheme()
	unresolved := len(aug.Rows) - aug.ResolvedCount()
	fmt.Fprintln(w, th.kv("Augmented", [][2]string{
		{"Output", path},
		{"Rows", fmt.Sprintf("%d", len(aug.Rows))},
		{"With lineage", th.OK.Render(fmt.Sprintf("%d", aug.ResolvedCount()))},
		{"Without", failedCell(th, unresolved)},
		{"Columns", strings.Join(aug.Columns[len(aug.Columns)-countLineageColumns(aug.Columns):], ", ")},
	}))
}

func countLineageColumns(cols []string) int {
	n := 0
	for _, c := range cols {
		if c == usecase.LineageColumn || c == usecase.LineageStatusColumn || strings.HasPrefix(c, usecase.LineageColumnPrefix) {
			n++
		}
	}
	return n
}
