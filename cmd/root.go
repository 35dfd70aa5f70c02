// Package cmd provides the root command and CLI setup for vstrip.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/verus-tools/vstrip/internal/adapter"
	"github.com/verus-tools/vstrip/internal/config"
	"github.com/verus-tools/vstrip/internal/controller"
	"github.com/verus-tools/vstrip/internal/domain"
	m "github.com/verus-tools/vstrip/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var rustChecker adapter.RustChecker

func init() {
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	rustChecker = adapter.NewTreeSitterRustChecker()
}

var outputFlag string
var inPlaceFlag bool
var recursiveFlag bool
var checkFlag bool
var keepEmptyFlag bool
var specAsCommentsFlag bool
var parallelFlag int
var excludeFlags []string
var configFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vstrip [paths...]",
		Short: "Strip Verus annotations from Rust source",
		Long: `vstrip removes Verus verification annotations (spec/proof functions,
ghost and tracked data, contract clauses, proof statements and macros) from
Rust source files, producing plain executable Rust.

A single file strips to stdout by default; directories need --output,
--in-place, or --check. Processing is structural, never textual, so braces
inside strings, chars, and comments are handled correctly.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			return runStrip(cmd, cfg, parsePaths(args))
		},
	}

	addStripFlags(cmd)

	return cmd
}

func addStripFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file (single input) or directory (directory input)")
	cmd.Flags().BoolVarP(&inPlaceFlag, "in-place", "i", false, "rewrite files in place")
	cmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&checkFlag, "check", false, "strip and validate without writing anything")
	cmd.Flags().BoolVar(&keepEmptyFlag, "keep-empty", false, "write files even when stripping leaves them empty")
	cmd.Flags().BoolVar(&specAsCommentsFlag, "spec-as-comments", false, "render removed contracts as doc comments")
	cmd.Flags().IntVarP(&parallelFlag, "parallel", "p", 1, "number of parallel workers")
	cmd.Flags().StringArrayVarP(&excludeFlags, "exclude", "x", nil, "exclude files matching glob (can be repeated)")
	cmd.Flags().StringVar(&configFlag, "config", "", "path to a .vstrip.toml configuration file")
}

// runStrip drives one strip run and reports it through the selected UI.
func runStrip(cmd *cobra.Command, cfg domain.Config, paths []m.Path) error {
	ui := newUIFor(cmd, cfg)
	if err := ui.Start(); err != nil {
		return err
	}
	defer ui.Close()

	workflow, err := domain.NewWorkflow(cfg, fsAdapter, rustChecker, cmd.OutOrStdout(), ui.DisplayFileResult)
	if err != nil {
		return err
	}

	sources, err := workflow.Sources(paths...)
	if err != nil {
		return err
	}
	ui.DisplayRunInfo(len(sources), max(cfg.Parallel, 1), cfg.Check)

	result, err := workflow.Run(cmd.Context(), paths...)
	if err != nil {
		return err
	}

	ui.DisplaySummary(result)

	if result.Failed > 0 {
		return &exitError{failed: result.Failed}
	}

	return nil
}

// newUIFor keeps the TUI off runs whose stripped output shares stdout.
func newUIFor(cmd *cobra.Command, cfg domain.Config) controller.UI {
	stdoutSink := !cfg.Check && !cfg.InPlace && cfg.Output == ""

	return controller.NewUI(cmd, controller.IsTTY(os.Stdout) && !stdoutSink)
}

// buildConfig merges the configuration file with command-line flags; a flag
// the user set always wins.
func buildConfig(cmd *cobra.Command) (domain.Config, error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return domain.Config{}, err
	}

	cfg := domain.Config{
		Output:         m.Path(fileCfg.Output),
		InPlace:        fileCfg.InPlace,
		Recursive:      fileCfg.Recursive,
		KeepEmpty:      fileCfg.KeepEmpty,
		SpecAsComments: fileCfg.SpecAsComments,
		Parallel:       fileCfg.Parallel,
		Exclude:        fileCfg.Exclude,
		Check:          checkFlag,
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = m.Path(outputFlag)
	}
	if flags.Changed("in-place") {
		cfg.InPlace = inPlaceFlag
	}
	if flags.Changed("recursive") {
		cfg.Recursive = recursiveFlag
	}
	if flags.Changed("keep-empty") {
		cfg.KeepEmpty = keepEmptyFlag
	}
	if flags.Changed("spec-as-comments") {
		cfg.SpecAsComments = specAsCommentsFlag
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallelFlag
	}
	cfg.Exclude = append(cfg.Exclude, excludeFlags...)

	return cfg, nil
}

func loadFileConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.Load(configFlag)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return config.Discover(wd)
}

func parsePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{"."}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// exitError carries a non-zero exit without duplicating diagnostics the UI
// already printed.
type exitError struct {
	failed int
}

func (e *exitError) Error() string {
	return "strip failed"
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*exitError); !ok {
			rootCmd.PrintErrln("Error:", err)
		}

		os.Exit(1)
	}
}
