package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verus-tools/vstrip/internal/domain"
	m "github.com/verus-tools/vstrip/internal/model"
	"github.com/verus-tools/vstrip/internal/watch"
)

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()
var watchDebounceFlag time.Duration

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-strip sources as they change",
		Long: `Watch directory trees and re-strip each Rust source shortly after it
changes. Requires --in-place or --check, since stripped output interleaved
on stdout would be unusable.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			if !cfg.InPlace && !cfg.Check {
				return &domain.ConfigError{Reason: "watch needs --in-place or --check"}
			}

			return runWatch(cmd, cfg, parsePaths(args))
		},
	}

	addStripFlags(cmd)
	cmd.Flags().DurationVar(&watchDebounceFlag, "debounce", 0, "delay before a change batch is processed")

	return cmd
}

func runWatch(cmd *cobra.Command, cfg domain.Config, paths []m.Path) error {
	ui := newUIFor(cmd, cfg)
	if err := ui.Start(); err != nil {
		return err
	}
	defer ui.Close()

	workflow, err := domain.NewWorkflow(cfg, fsAdapter, rustChecker, cmd.OutOrStdout(), ui.DisplayFileResult)
	if err != nil {
		return err
	}

	debounce := watchDebounceFlag
	if debounce == 0 {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return err
		}
		debounce = fileCfg.Watch.Debounce
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onChange := func(changed []m.Path) {
		result, err := workflow.Run(ctx, changed...)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch run error: %v\n", err)
			return
		}

		ui.DisplaySummary(result)
	}

	onError := func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
	}

	watcher, err := watch.NewWatcher(debounce, cfg.Exclude, onChange, onError)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Watch(paths); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d path(s), press Ctrl-C to stop\n", len(paths))

	<-ctx.Done()

	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
