package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/fsworkspace"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

func initCmd() *cobra.Command {
	var path string
	var force bool
	var email string
	var apiKey string

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a kcatflux workspace (kcatflux.yaml, data/, reports/)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			uc := usecase.NewInitWorkspace(fsworkspace.NewInitializer())
			spec := domain.WorkspaceSpec{Root: root, ContactEmail: email, APIKey: apiKey}
			if err := uc.Execute(spec, force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace initialized at %s\n", root)
			if email == "" {
				fmt.Fprintln(out, "Set directory.contact_email in kcatflux.yaml (or KCATFLUX_CONTACT_EMAIL) before resolving.")
			}
			return nil
		},
	}

	c.Flags().StringVar(&path, "path", ".", "Directory to initialize")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing template files")
	c.Flags().StringVar(&email, "email", "", "Contact email written to kcatflux.yaml")
	c.Flags().StringVar(&apiKey, "api-key", "", "NCBI API key written to kcatflux.yaml")
	return c
}
