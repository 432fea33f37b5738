package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate kcatflux.yaml and environment overrides (no network)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			if err := usecase.NewValidateConfig().Execute(ws.cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace:    %s\n", ws.root)
			fmt.Fprintf(out, "Contact:      %s\n", ws.cfg.Directory.ContactEmail)
			fmt.Fprintf(out, "API key:      %s\n", yesNo(ws.cfg.Directory.APIKey != ""))
			fmt.Fprintf(out, "Min interval: %s\n", ws.cfg.Directory.MinInterval)
			fmt.Fprintf(out, "Cache:        %s\n", ws.cfg.Cache.Path)
			fmt.Fprintln(out, "OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
