package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/verus-tools/vstrip/internal/adapter"
	m "github.com/verus-tools/vstrip/internal/model"
	"github.com/verus-tools/vstrip/internal/verus"
)

const outputFilePerm = 0o644

// Config carries the options a strip run honors.
type Config struct {
	// Output is an explicit destination: a file for single-file input, a
	// directory for directory input. Mutually exclusive with InPlace.
	Output         m.Path
	InPlace        bool
	Recursive      bool
	Check          bool
	KeepEmpty      bool
	SpecAsComments bool
	// Parallel caps concurrent file processing. Zero or negative means one.
	Parallel int
	// Exclude holds glob patterns matched against paths and base names.
	Exclude []string
}

// Validate rejects option combinations before any file is touched.
func (c Config) Validate() error {
	if c.Output != "" && c.InPlace {
		return &ConfigError{Reason: "output and in-place are mutually exclusive"}
	}

	if c.Check && (c.Output != "" || c.InPlace) {
		return &ConfigError{Reason: "check mode writes nothing, drop output/in-place"}
	}

	return nil
}

// Workflow defines the strip operations the command layer drives.
type Workflow interface {
	// Sources collects the files a run over roots would process.
	Sources(roots ...m.Path) ([]m.Path, error)

	// Run strips every file under roots and aggregates per-file results.
	// File-level failures are recorded and do not stop the run.
	Run(ctx context.Context, roots ...m.Path) (m.RunResult, error)

	// Estimate counts removable annotations per file without writing.
	// Files it cannot read or parse come back as warnings.
	Estimate(roots ...m.Path) ([]m.FileEstimate, []m.Warning, error)
}

type workflow struct {
	cfg       Config
	fsAdapter adapter.SourceFSAdapter
	checker   adapter.RustChecker
	stripper  *Stripper
	stdout    io.Writer
	progress  func(m.FileOutcome)

	mu sync.Mutex
}

// NewWorkflow validates cfg and wires a Workflow. stdout receives stripped
// text when no other sink is configured; progress, when non-nil, is invoked
// once per completed file.
func NewWorkflow(
	cfg Config,
	fsAdapter adapter.SourceFSAdapter,
	checker adapter.RustChecker,
	stdout io.Writer,
	progress func(m.FileOutcome),
) (Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &workflow{
		cfg:       cfg,
		fsAdapter: fsAdapter,
		checker:   checker,
		stripper:  NewStripper(StripOptions{SpecAsComments: cfg.SpecAsComments}),
		stdout:    stdout,
		progress:  progress,
	}, nil
}

// Sources walks the roots and returns each Rust source once, in walk order.
func (w *workflow) Sources(roots ...m.Path) ([]m.Path, error) {
	seen := make(map[m.Path]bool)

	var all []m.Path

	for _, root := range roots {
		paths, err := w.fsAdapter.Collect(root, w.cfg.Recursive, w.cfg.Exclude)
		if err != nil {
			return nil, err
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				all = append(all, p)
			}
		}
	}

	return all, nil
}

// Run processes all files under roots. The returned outcomes keep input
// order regardless of scheduling.
func (w *workflow) Run(ctx context.Context, roots ...m.Path) (m.RunResult, error) {
	paths, dirMode, err := w.plan(roots)
	if err != nil {
		return m.RunResult{}, err
	}

	outcomes := make([]m.FileOutcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(w.cfg.Parallel, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcomes[i] = w.processFile(path, dirMode, roots)
			if w.progress != nil {
				w.mu.Lock()
				w.progress(outcomes[i])
				w.mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return m.RunResult{}, err
	}

	result := m.RunResult{Outcomes: outcomes, Processed: len(outcomes)}
	for _, o := range outcomes {
		if o.Failed() {
			result.Failed++
		}
	}

	return result, nil
}

// Estimate counts annotations per file. Unreadable or unparsable files are
// left out of the estimates and reported as warnings.
func (w *workflow) Estimate(roots ...m.Path) ([]m.FileEstimate, []m.Warning, error) {
	paths, err := w.Sources(roots...)
	if err != nil {
		return nil, nil, err
	}

	estimates := make([]m.FileEstimate, 0, len(paths))

	var warnings []m.Warning

	for _, path := range paths {
		src, err := w.fsAdapter.ReadFile(path)
		if err != nil {
			warnings = append(warnings, m.Warning{Path: path, Message: err.Error()})
			continue
		}

		counts, err := EstimateAnnotations(string(src))
		if err != nil {
			warnings = append(warnings, m.Warning{Path: path, Message: err.Error()})
			continue
		}

		estimates = append(estimates, m.FileEstimate{Path: path, Counts: counts})
	}

	return estimates, warnings, nil
}

// plan collects the inputs and decides whether the run is in directory mode,
// which changes output-path mapping and forbids the stdout sink.
func (w *workflow) plan(roots []m.Path) ([]m.Path, bool, error) {
	dirMode := len(roots) > 1

	for _, root := range roots {
		info, err := w.fsAdapter.FileInfo(root)
		if err != nil {
			return nil, false, fmt.Errorf("root path error: %w", err)
		}
		if info.IsDir() {
			if !w.cfg.Recursive {
				return nil, false, &ConfigError{
					Reason: fmt.Sprintf("%s is a directory, pass --recursive to process it", root),
				}
			}
			dirMode = true
		}
	}

	paths, err := w.Sources(roots...)
	if err != nil {
		return nil, false, err
	}

	if dirMode && !w.cfg.Check && !w.cfg.InPlace && w.cfg.Output == "" {
		return nil, false, &ConfigError{
			Reason: "directory input needs --output, --in-place, or --check",
		}
	}

	return paths, dirMode, nil
}

func (w *workflow) processFile(path m.Path, dirMode bool, roots []m.Path) m.FileOutcome {
	outcome := m.FileOutcome{Path: path}

	src, err := w.fsAdapter.ReadFile(path)
	if err != nil {
		outcome.Err = fmt.Errorf("read %s: %w", path, err)
		return outcome
	}

	stripped, warnings, err := w.stripper.Strip(string(src))
	if err != nil {
		if errors.Is(err, verus.ErrUnmatchedDelimiter) {
			outcome.Err = &StructuralError{Path: path, Err: err}
		} else {
			outcome.Err = &ParseError{Path: path, Err: err}
		}

		return outcome
	}

	for _, msg := range warnings {
		outcome.Warnings = append(outcome.Warnings, m.Warning{Path: path, Message: msg})
	}

	if w.cfg.Check {
		if err := w.checker.Validate([]byte(stripped)); err != nil {
			outcome.Err = &CheckError{Path: path, Detail: err.Error()}
		}

		return outcome
	}

	if strings.TrimSpace(stripped) == "" && !w.cfg.KeepEmpty {
		outcome.Empty = true
		outcome.Warnings = append(outcome.Warnings, m.Warning{
			Path:    path,
			Message: "stripped output is empty, nothing written",
		})

		return outcome
	}

	dest, err := w.outputFor(path, dirMode, roots)
	if err != nil {
		outcome.Err = &WriteError{Path: path, Err: err}
		return outcome
	}

	if dest == "" {
		w.mu.Lock()
		_, err = io.WriteString(w.stdout, stripped)
		w.mu.Unlock()
	} else {
		err = w.fsAdapter.WriteFile(dest, []byte(stripped), outputFilePerm)
	}

	if err != nil {
		outcome.Err = &WriteError{Path: path, Err: err}
		return outcome
	}

	outcome.Output = dest

	return outcome
}

// outputFor maps a source path to its destination. Empty means stdout.
func (w *workflow) outputFor(path m.Path, dirMode bool, roots []m.Path) (m.Path, error) {
	switch {
	case w.cfg.InPlace:
		return path, nil
	case w.cfg.Output == "":
		return "", nil
	case !dirMode:
		return w.cfg.Output, nil
	}

	// Directory mode with an output directory: mirror the layout of the
	// root that produced this file.
	for _, root := range roots {
		rel, err := w.fsAdapter.RelPath(root, path)
		if err != nil || strings.HasPrefix(string(rel), "..") {
			continue
		}
		if rel == "." {
			rel = m.Path(filepath.Base(string(path)))
		}

		return w.fsAdapter.JoinPath(string(w.cfg.Output), string(rel)), nil
	}

	return w.fsAdapter.JoinPath(string(w.cfg.Output), filepath.Base(string(path))), nil
}
