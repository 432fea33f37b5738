package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

func cacheCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and edit the lineage cache",
	}
	c.AddCommand(cacheListCmd(), cacheStatsCmd(), cacheInvalidateCmd())
	return c
}

func cacheListCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "list",
		Short: "List cached identifiers and their lineages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			if err := ws.cache.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range ws.cache.Entries() {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.ID, e.ResolvedAt.Format("2006-01-02"), e.Lineage.String())
			}
			return nil
		},
	}
	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}

func cacheStatsCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "stats",
		Short: "Show cache location, size and entry count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			size := "missing"
			if fi, err := os.Stat(ws.cache.Path()); err == nil {
				size = fmt.Sprintf("%d bytes", fi.Size())
			}

			status := "ok"
			if err := ws.cache.Load(); err != nil {
				if !domain.IsKind(err, domain.KindCacheCorruption) {
					return err
				}
				status = "corrupt: " + err.Error()
			}

			fmt.Fprintln(cmd.OutOrStdout(), defaultTheme().kv("Lineage cache", [][2]string{
				{"Path", ws.cache.Path()},
				{"Size", size},
				{"Entries", fmt.Sprintf("%d", ws.cache.Len())},
				{"Status", status},
			}))
			return nil
		},
	}
	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}

func cacheInvalidateCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "invalidate ID...",
		Short: "Drop cached lineages so the next run looks them up again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			var removed, missing []string
			err = usecase.WithCache(ws.cache, nil, func() error {
				for _, raw := range args {
					id, err := domain.ParseIdentifier(raw)
					if err != nil {
						return err
					}
					if ws.cache.Invalidate(id) {
						removed = append(removed, string(id))
					} else {
						missing = append(missing, string(id))
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed: %d\n", len(removed))
			if len(missing) > 0 {
				fmt.Fprintf(out, "Not cached: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}
	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}
