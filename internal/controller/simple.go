package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/verus-tools/vstrip/internal/model"
)

// SimpleUI implements UI with plain text on the command's error stream, so
// stripped source on stdout stays clean.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start() error {
	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {
}

// DisplayRunInfo announces the shape of the run.
func (s *SimpleUI) DisplayRunInfo(files int, parallel int, check bool) {
	verb := "Stripping"
	if check {
		verb = "Checking"
	}

	s.printf("%s %d file(s) with %d worker(s)\n", verb, files, parallel)
}

// DisplayFileResult reports one completed file.
func (s *SimpleUI) DisplayFileResult(outcome m.FileOutcome) {
	switch {
	case outcome.Failed():
		s.printf("FAIL %s: %v\n", outcome.Path, outcome.Err)
	case outcome.Empty:
		s.printf("skip %s (empty after strip)\n", outcome.Path)
	case outcome.Output != "":
		s.printf("ok   %s -> %s\n", outcome.Path, outcome.Output)
	default:
		s.printf("ok   %s\n", outcome.Path)
	}

	for _, w := range outcome.Warnings {
		s.printf("warn %s: %s\n", w.Path, w.Message)
	}
}

// DisplaySummary prints the aggregate outcome.
func (s *SimpleUI) DisplaySummary(result m.RunResult) {
	s.printf("\n%d file(s) processed, %d failed\n", result.Processed, result.Failed)
}

// DisplayEstimates prints per-file warnings followed by the annotation
// count table.
func (s *SimpleUI) DisplayEstimates(estimates []m.FileEstimate, warnings []m.Warning, err error) error {
	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	for _, w := range warnings {
		s.printf("warn %s: %s\n", w.Path, w.Message)
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Spec Fns", "Contracts", "Ghost Params", "Ghost Fields", "Proof Stmts", "Ghost Lets"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	var total int

	for _, e := range estimates {
		c := e.Counts
		table.Append([]string{
			string(e.Path),
			fmt.Sprintf("%d", c.SpecFunctions),
			fmt.Sprintf("%d", c.Contracts),
			fmt.Sprintf("%d", c.GhostParams),
			fmt.Sprintf("%d", c.GhostFields),
			fmt.Sprintf("%d", c.ProofStmts),
			fmt.Sprintf("%d", c.GhostBindings),
		})

		total += c.Total()
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(estimates)),
		"", "", "", "", "",
		fmt.Sprintf("%d", total),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}
