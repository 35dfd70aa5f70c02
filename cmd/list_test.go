package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd(t *testing.T) {
	dir := t.TempDir()
	writeAnnotated(t, dir, "a.rs")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.rs"), []byte("fn main() { }\n"), 0o644))

	resetFlags()
	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"list", dir})

	require.NoError(t, cmd.Execute())

	got := strings.ToLower(errOut.String())
	assert.Contains(t, got, "a.rs")
	assert.Contains(t, got, "plain.rs")
	assert.Contains(t, got, "total files 2")
}

func TestListCmdWarnsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	writeAnnotated(t, dir, "a.rs")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.rs"), []byte("verus! { fn f() {\n"), 0o644))

	resetFlags()
	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"list", dir})

	require.NoError(t, cmd.Execute())

	got := strings.ToLower(errOut.String())
	assert.Contains(t, got, "warn")
	assert.Contains(t, got, "bad.rs")
	assert.Contains(t, got, "total files 1")
}

func TestListCmdExclude(t *testing.T) {
	dir := t.TempDir()
	writeAnnotated(t, dir, "a.rs")
	writeAnnotated(t, dir, "skip_me.rs")

	resetFlags()
	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"list", "-x", "skip_*.rs", dir})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, errOut.String(), "a.rs")
	assert.NotContains(t, errOut.String(), "skip_me.rs")
}
