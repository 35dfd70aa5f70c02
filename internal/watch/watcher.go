// Package watch re-strips Rust sources as they change on disk.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	m "github.com/verus-tools/vstrip/internal/model"
)

// Watcher observes directory trees and reports changed Rust sources in
// debounced batches.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	exclude   []glob.Glob
	onChange  func([]m.Path)
	onError   func(error)

	callbackMu sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
}

// NewWatcher builds a Watcher. onChange receives each debounced batch;
// onError, when non-nil, receives watch-stream errors.
func NewWatcher(debounce time.Duration, exclude []string, onChange func([]m.Path), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		pending:   make(map[string]struct{}),
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		w.exclude = append(w.exclude, g)
	}

	return w, nil
}

// Watch registers the roots and starts delivering change batches.
func (w *Watcher) Watch(roots []m.Path) error {
	for _, root := range roots {
		if err := w.watchRecursive(string(root)); err != nil {
			return err
		}
	}

	go w.run()

	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.fsWatcher.Add(filepath.Dir(root))
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.excluded(path) {
				return filepath.SkipDir
			}

			return w.fsWatcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.excluded(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil && w.onError != nil {
							w.onError(err)
						}
					}

					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]m.Path, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, m.Path(path))
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	// Map iteration order is random; keep batch reporting deterministic.
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) relevant(path string) bool {
	if filepath.Ext(path) != m.RustFileExt {
		return false
	}

	return !w.excluded(path)
}

func (w *Watcher) excluded(path string) bool {
	base := filepath.Base(path)

	for _, g := range w.exclude {
		if g.Match(path) || g.Match(base) {
			return true
		}
	}

	return false
}

// Close stops event delivery. Pending debounced changes are discarded.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()

	return w.fsWatcher.Close()
}
