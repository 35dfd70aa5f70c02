package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/verus-tools/vstrip/internal/model"
)

func collectBatches(t *testing.T, debounce time.Duration, exclude []string, roots []m.Path) (<-chan []m.Path, *Watcher) {
	t.Helper()

	batches := make(chan []m.Path, 16)
	w, err := NewWatcher(debounce, exclude, func(paths []m.Path) {
		batches <- paths
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Watch(roots))

	return batches, w
}

func waitForBatch(t *testing.T, batches <-chan []m.Path) []m.Path {
	t.Helper()

	select {
	case paths := <-batches:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change batch")
		return nil
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}\n"), 0o644))

	batches, _ := collectBatches(t, 50*time.Millisecond, nil, []m.Path{m.Path(dir)})

	require.NoError(t, os.WriteFile(path, []byte("fn main() { }\n"), 0o644))

	paths := waitForBatch(t, batches)
	require.NotEmpty(t, paths)
	assert.Equal(t, "lib.rs", filepath.Base(string(paths[0])))
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	batches, _ := collectBatches(t, 200*time.Millisecond, nil, []m.Path{m.Path(dir)})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("fn main() {}\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	paths := waitForBatch(t, batches)
	assert.Len(t, paths, 1)

	select {
	case extra := <-batches:
		t.Fatalf("burst produced a second batch: %v", extra)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherBatchIsSortedByPath(t *testing.T) {
	dir := t.TempDir()
	names := []string{"c.rs", "a.rs", "b.rs"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fn main() {}\n"), 0o644))
	}

	batches, _ := collectBatches(t, 200*time.Millisecond, nil, []m.Path{m.Path(dir)})

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fn main() { }\n"), 0o644))
	}

	paths := waitForBatch(t, batches)
	require.Len(t, paths, 3)

	want := []string{"a.rs", "b.rs", "c.rs"}
	for i, p := range paths {
		assert.Equal(t, want[i], filepath.Base(string(p)))
	}
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	batches, _ := collectBatches(t, 50*time.Millisecond, []string{"skip_*.rs"}, []m.Path{m.Path(dir)})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip_me.rs"), []byte("x"), 0o644))

	select {
	case paths := <-batches:
		t.Fatalf("irrelevant files produced a batch: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	batches, _ := collectBatches(t, 50*time.Millisecond, nil, []m.Path{m.Path(path)})

	require.NoError(t, os.WriteFile(path, []byte("fn main() {}\n"), 0o644))

	paths := waitForBatch(t, batches)
	assert.Equal(t, "lib.rs", filepath.Base(string(paths[0])))
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	batches, _ := collectBatches(t, 50*time.Millisecond, nil, []m.Path{m.Path(dir)})

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	// The new directory needs a moment to be registered.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.rs"), []byte("fn main() {}\n"), 0o644))

	paths := waitForBatch(t, batches)
	assert.Equal(t, "b.rs", filepath.Base(string(paths[0])))
}

func TestWatcherBadExcludePattern(t *testing.T) {
	_, err := NewWatcher(time.Millisecond, []string{"[unclosed"}, func([]m.Path) {}, nil)
	require.Error(t, err)
}
