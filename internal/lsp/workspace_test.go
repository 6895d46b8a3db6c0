package lsp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// setupWorkspace installs an empty server whose workspace holds the
// snapshot fixtures. File watching is off.
func setupWorkspace(t *testing.T) (*server.Server, string, *recorder) {
	t.Helper()

	dir := copyFixtures(t)
	rec := &recorder{}

	srv := server.New()
	srv.SetNotify(rec.notify)
	srv.SetWorkspaceFolders([]string{dir})
	srv.UpdateConfig(func(cfg *server.Config) { cfg.Watch = false })

	SetServer(srv)
	t.Cleanup(func() {
		srv.SetShuttingDown()
		SetServer(nil)
	})

	return srv, dir, rec
}

func TestDidChangeWatchedFilesReloads(t *testing.T) {
	srv, dir, rec := setupWorkspace(t)

	before := srv.Generation()

	require.NoError(t, DidChangeWatchedFiles(&glsp.Context{}, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{{
			URI:  workspace.PathToURI(filepath.Join(dir, "project.qsnap.yaml")),
			Type: protocol.FileChangeTypeChanged,
		}},
	}))

	assert.Greater(t, srv.Generation(), before)

	_, ok := srv.Compilation().File(fixtureMainURI)
	assert.True(t, ok)
	assert.Len(t, rec.diagnostics()[fixtureMainURI], 1)

	got, err := WorkspaceSymbol(&glsp.Context{}, &protocol.WorkspaceSymbolParams{Query: "twice"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Twice", got[0].Name)
}

func TestDidChangeWatchedFilesEmpty(t *testing.T) {
	srv, _, _ := setupWorkspace(t)

	before := srv.Generation()

	require.NoError(t, DidChangeWatchedFiles(&glsp.Context{}, &protocol.DidChangeWatchedFilesParams{}))
	assert.Equal(t, before, srv.Generation())
}

func TestDidChangeConfiguration(t *testing.T) {
	srv, _, rec := setupWorkspace(t)

	require.NoError(t, reloadWorkspace(srv))
	require.Len(t, rec.diagnostics()[fixtureMainURI], 1)

	generation := srv.Generation()

	t.Run("settings without glob changes", func(t *testing.T) {
		require.NoError(t, DidChangeConfiguration(&glsp.Context{}, &protocol.DidChangeConfigurationParams{
			Settings: map[string]any{
				server.SettingsSection: map[string]any{"maxProblems": float64(7), "markdown": false},
			},
		}))

		cfg := srv.Config()
		assert.Equal(t, 7, cfg.MaxProblems)
		assert.False(t, cfg.Markdown)
		assert.Equal(t, generation, srv.Generation(), "no reload")
	})

	t.Run("excluding every snapshot", func(t *testing.T) {
		require.NoError(t, DidChangeConfiguration(&glsp.Context{}, &protocol.DidChangeConfigurationParams{
			Settings: map[string]any{
				"snapshots": map[string]any{"exclude": []any{"**/*.qsnap.yaml"}},
			},
		}))

		assert.Greater(t, srv.Generation(), generation)
		assert.Empty(t, srv.Compilation().Files())

		diags := rec.diagnostics()
		require.Contains(t, diags, fixtureMainURI)
		assert.Empty(t, diags[fixtureMainURI], "diagnostics of unloaded files are cleared")
	})
}

func TestDidChangeWorkspaceFolders(t *testing.T) {
	srv, dir, _ := setupWorkspace(t)
	srv.SetWorkspaceFolders(nil)

	require.NoError(t, DidChangeWorkspaceFolders(&glsp.Context{}, &protocol.DidChangeWorkspaceFoldersParams{
		Event: protocol.WorkspaceFoldersChangeEvent{
			Added: []protocol.WorkspaceFolder{{URI: workspace.PathToURI(dir), Name: "proj"}},
		},
	}))

	assert.Equal(t, []string{dir}, srv.GetWorkspaceFolders())
	_, ok := srv.Compilation().File(fixtureMainURI)
	assert.True(t, ok)

	require.NoError(t, DidChangeWorkspaceFolders(&glsp.Context{}, &protocol.DidChangeWorkspaceFoldersParams{
		Event: protocol.WorkspaceFoldersChangeEvent{
			Removed: []protocol.WorkspaceFolder{{URI: workspace.PathToURI(dir), Name: "proj"}},
		},
	}))

	assert.Empty(t, srv.GetWorkspaceFolders())
	assert.Empty(t, srv.Compilation().Files())
}

func TestOnFilesChangedReadsConfig(t *testing.T) {
	srv, dir, _ := setupWorkspace(t)

	writeConfig(t, dir, "watch = false\nmaxCompletionItems = 12\n")

	onFilesChanged(srv, []string{filepath.Join(dir, server.ConfigFileName)})

	assert.Equal(t, 12, srv.Config().MaxCompletionItems)

	_, ok := srv.Compilation().File(fixtureMainURI)
	assert.True(t, ok)
}

func TestOnFilesChangedAfterShutdown(t *testing.T) {
	srv, dir, _ := setupWorkspace(t)
	srv.SetShuttingDown()

	generation := srv.Generation()
	onFilesChanged(srv, []string{filepath.Join(dir, "project.qsnap.yaml")})

	assert.Equal(t, generation, srv.Generation())
}
