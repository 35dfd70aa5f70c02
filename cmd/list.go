package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/verus-tools/vstrip/internal/controller"
	"github.com/verus-tools/vstrip/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and annotation counts",
		Long: `List the Rust source files a strip run would process, with a count of
removable Verus annotations per file. Nothing is written.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			workflow, err := domain.NewWorkflow(cfg, fsAdapter, rustChecker, cmd.OutOrStdout(), nil)
			if err != nil {
				return err
			}

			ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout))

			estimates, warnings, err := workflow.Estimate(parsePaths(args)...)

			return ui.DisplayEstimates(estimates, warnings, err)
		},
	}

	addStripFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
