package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

func copyFixture(t *testing.T, dir, name string) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "snapshot", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "go-qs-lsp version")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, dir, "project.qsnap.yaml")
	copyFixture(t, dir, "lib.qsnap.yaml")

	var out bytes.Buffer
	checkCmd.SetOut(&out)
	t.Cleanup(func() { checkCmd.SetOut(nil) })

	require.NoError(t, runCheck(checkCmd, []string{dir}))

	assert.Contains(t, out.String(), "file:///proj/src/Main.qs:6:17: warning: mutable variable is never read")
	assert.Contains(t, out.String(), "1 problems, 2 snapshots parsed, 0 failed")
}

func TestCheckCommandBrokenSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.qsnap.yaml"), []byte("files: [\n"), 0o644))

	var out bytes.Buffer
	checkCmd.SetOut(&out)
	t.Cleanup(func() { checkCmd.SetOut(nil) })

	err := runCheck(checkCmd, []string{dir})
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "broken.qsnap.yaml")
}

func TestReport(t *testing.T) {
	f := compilation.NewFile("file:///a.qs", "x\n", nil)
	f.Diagnostics = []compilation.Diagnostic{
		{Range: syntax.NewRange(1, 0, 1, 1), Severity: compilation.SeverityWarning, Message: "second"},
		{Range: syntax.NewRange(0, 0, 0, 1), Severity: compilation.SeverityError, Message: "first"},
	}

	res := &workspace.LoadResult{Compilation: compilation.New([]*compilation.File{f}, nil, nil)}

	var out bytes.Buffer
	assert.True(t, report(&out, res, 0), "errors fail the check")
	assert.Equal(t,
		"file:///a.qs:1:1: error: first\nfile:///a.qs:2:1: warning: second\n1 files, 2 problems, 0 snapshots parsed, 0 failed\n",
		out.String())

	out.Reset()
	report(&out, res, 1)
	assert.Contains(t, out.String(), "1 problems")
}
