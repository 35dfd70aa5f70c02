package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
in_place = true
recursive = true
keep_empty = true
spec_as_comments = true
parallel = 4
exclude = ["target", "generated_*.rs"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.InPlace)
	assert.True(t, cfg.Recursive)
	assert.True(t, cfg.KeepEmpty)
	assert.True(t, cfg.SpecAsComments)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, []string{"target", "generated_*.rs"}, cfg.Exclude)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.InPlace)
	assert.Empty(t, cfg.Exclude)
}

func TestLoadInvalidToml(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "in_place = [broken\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Run("finds the file in a parent directory", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, "recursive = true\n")

		nested := filepath.Join(root, "src", "deep")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		cfg, err := Discover(nested)
		require.NoError(t, err)
		assert.True(t, cfg.Recursive)
	})

	t.Run("absence yields defaults", func(t *testing.T) {
		cfg, err := Discover(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 1, cfg.Parallel)
		assert.False(t, cfg.Recursive)
	})

	t.Run("nearest file wins", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, "parallel = 2\n")

		nested := filepath.Join(root, "sub")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		writeConfig(t, nested, "parallel = 8\n")

		cfg, err := Discover(nested)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Parallel)
	})
}
