package controller

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/verus-tools/vstrip/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 2)

	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (t *TUI) Start() error {
	return nil
}

// Close finalizes the UI.
func (t *TUI) Close() {
}

// DisplayRunInfo announces the shape of the run.
func (t *TUI) DisplayRunInfo(files int, parallel int, check bool) {
	verb := "Stripping"
	if check {
		verb = "Checking"
	}

	fmt.Fprintf(t.output, "%s\n", headerStyle.Render("vstrip"))
	fmt.Fprintf(t.output, "%s %d file(s) with %d worker(s)\n", verb, files, parallel)
}

// DisplayFileResult reports one completed file.
func (t *TUI) DisplayFileResult(outcome m.FileOutcome) {
	switch {
	case outcome.Failed():
		fmt.Fprintf(t.output, "%s %s: %v\n", failStyle.Render("✗"), outcome.Path, outcome.Err)
	case outcome.Empty:
		fmt.Fprintf(t.output, "%s %s %s\n", dimStyle.Render("-"), outcome.Path, dimStyle.Render("(empty after strip)"))
	case outcome.Output != "":
		fmt.Fprintf(t.output, "%s %s -> %s\n", okStyle.Render("✓"), outcome.Path, outcome.Output)
	default:
		fmt.Fprintf(t.output, "%s %s\n", okStyle.Render("✓"), outcome.Path)
	}

	for _, w := range outcome.Warnings {
		fmt.Fprintf(t.output, "  %s %s\n", dimStyle.Render("warn:"), w.Message)
	}
}

// DisplaySummary prints the aggregate outcome.
func (t *TUI) DisplaySummary(result m.RunResult) {
	line := fmt.Sprintf("%d file(s) processed, %d failed", result.Processed, result.Failed)
	if result.Failed > 0 {
		line = failStyle.Render(line)
	} else {
		line = okStyle.Render(line)
	}

	fmt.Fprintf(t.output, "\n%s\n", line)
}

// DisplayEstimates shows per-file annotation counts, scrollable when the
// list exceeds the terminal height.
func (t *TUI) DisplayEstimates(estimates []m.FileEstimate, warnings []m.Warning, err error) error {
	if err != nil {
		fmt.Fprintf(t.output, "estimation error: %v\n", err)
		return err
	}

	for _, w := range warnings {
		fmt.Fprintf(t.output, "%s %s: %s\n", dimStyle.Render("warn:"), w.Path, w.Message)
	}

	content := renderEstimates(estimates)
	width, height := t.terminalSize()

	lines := strings.Count(content, "\n") + 1
	if height == 0 || lines < height {
		_, err := fmt.Fprint(t.output, content)
		return err
	}

	model := newEstimateModel(content, width, height)

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (t *TUI) terminalSize() (int, int) {
	if f, ok := t.output.(*os.File); ok {
		if width, height, err := term.GetSize(int(f.Fd())); err == nil {
			return width, height
		}
	}

	return 0, 0
}

func renderEstimates(estimates []m.FileEstimate) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("vstrip - annotation estimate"))
	b.WriteString("\n\n")

	if len(estimates) == 0 {
		b.WriteString("  No source files found\n")
		return b.String()
	}

	total := 0

	for _, e := range estimates {
		count := e.Counts.Total()
		if count == 0 {
			fmt.Fprintf(&b, "  %s: %s\n", e.Path, dimStyle.Render("0 annotations"))
		} else {
			fmt.Fprintf(&b, "  %s: %d annotations\n", e.Path, count)
		}

		total += count
	}

	fmt.Fprintf(&b, "\n  Total: %d annotations across %d file(s)\n", total, len(estimates))

	return b.String()
}

// estimateModel scrolls pre-rendered estimate output in a viewport.
type estimateModel struct {
	viewport viewport.Model
	quitting bool
}

func newEstimateModel(content string, width, height int) estimateModel {
	vp := viewport.New(width, height-1)
	vp.SetContent(content)

	return estimateModel{viewport: vp}
}

func (em estimateModel) Init() tea.Cmd {
	return nil
}

func (em estimateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		em.viewport.Width = msg.Width
		em.viewport.Height = msg.Height - 1

		return em, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			em.quitting = true
			return em, tea.Quit
		}
	}

	var cmd tea.Cmd
	em.viewport, cmd = em.viewport.Update(msg)

	return em, cmd
}

func (em estimateModel) View() string {
	return em.viewport.View() + "\n" + dimStyle.Render("  ↑/↓: scroll | q: quit")
}
