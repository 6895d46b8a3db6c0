package lsp

import (
	"slices"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// DidChangeConfiguration handles workspace/didChangeConfiguration. Changed
// snapshot globs trigger a reload.
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidChangeConfiguration")
		return nil
	}

	var globsChanged bool

	srv.UpdateConfig(func(cfg *server.Config) {
		globsChanged = server.ApplySettings(cfg, params.Settings)
	})

	cfg := srv.Config()
	protocol.SetTraceValue(protocol.TraceValue(cfg.Trace))

	logger.Debugf("configuration changed (snapshot globs changed: %t)", globsChanged)

	if !globsChanged {
		// maxProblems may have changed
		publishCompilationDiagnostics(srv)
		return nil
	}

	if err := reloadWorkspace(srv); err != nil {
		logger.Errorf("%v", err)
	}

	if cfg.Watch && !srv.SupportsWatchedFiles() {
		startWatcher(srv)
	}

	return nil
}

// DidChangeWatchedFiles handles workspace/didChangeWatchedFiles sent by
// clients that watch snapshot files on the server's behalf.
func DidChangeWatchedFiles(context *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidChangeWatchedFiles")
		return nil
	}

	bindNotify(srv, context)

	paths := make([]string, 0, len(params.Changes))
	for _, change := range params.Changes {
		paths = append(paths, workspace.URIToPath(change.URI))
	}

	if len(paths) == 0 {
		return nil
	}

	logger.Debugf("%d watched files changed", len(paths))

	onFilesChanged(srv, paths)

	return nil
}

// DidChangeWorkspaceFolders handles workspace/didChangeWorkspaceFolders.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidChangeWorkspaceFolders")
		return nil
	}

	folders := srv.GetWorkspaceFolders()

	for _, removed := range params.Event.Removed {
		path := workspace.URIToPath(removed.URI)
		folders = slices.DeleteFunc(folders, func(f string) bool { return f == path })
	}

	for _, added := range params.Event.Added {
		path := workspace.URIToPath(added.URI)
		if !slices.Contains(folders, path) {
			folders = append(folders, path)
		}
	}

	srv.SetWorkspaceFolders(folders)
	loadConfigFiles(srv)

	logger.Infof("workspace folders changed: %d folders", len(folders))

	if err := reloadWorkspace(srv); err != nil {
		logger.Errorf("%v", err)
	}

	if srv.Config().Watch && !srv.SupportsWatchedFiles() {
		startWatcher(srv)
	}

	return nil
}
