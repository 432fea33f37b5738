package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/infra/logger"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/workspacefinder"
)

func Execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	_ = logger.Close()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "kcatflux",
		Short:         "kcatflux: organism lineages and kcat/flux mapping via NCBI Taxonomy",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Logs go to the workspace found from the working directory. Outside a
		// workspace the logger stays silent.
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			wd, err := os.Getwd()
			if err != nil {
				return
			}
			root, err := workspacefinder.NewFinder().FindRoot(wd)
			if err != nil {
				return
			}
			_, _ = logger.Setup(logger.Config{Root: root, Debug: debug})
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .kcatflux/logs/kcatflux.log")

	cmd.AddCommand(
		initCmd(),
		validateCmd(),
		resolveCmd(),
		augmentCmd(),
		mapCmd(),
		correlateCmd(),
		cacheCmd(),
		reportsCmd(),
		versionCmd(),
	)
	return cmd
}
