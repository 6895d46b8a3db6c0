package lsp

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// snapshotMatchers returns one matcher per workspace folder.
func snapshotMatchers(srv *server.Server) []*workspace.Matcher {
	cfg := srv.Config()
	folders := srv.GetWorkspaceFolders()

	matchers := make([]*workspace.Matcher, 0, len(folders))
	for _, dir := range folders {
		matchers = append(matchers, workspace.NewMatcher(dir, cfg.Snapshots.Include, cfg.Snapshots.Exclude))
	}

	return matchers
}

// reloadWorkspace loads every snapshot of the workspace, replaces the
// compilation and republishes diagnostics.
func reloadWorkspace(srv *server.Server) error {
	matchers := snapshotMatchers(srv)
	if len(matchers) == 0 {
		srv.SetCompilation(nil)
		publishCompilationDiagnostics(srv)

		return nil
	}

	start := time.Now()

	res, err := srv.Loader().LoadRoots(context.Background(), matchers, srv.Config().Parallelism)
	if err != nil {
		return fmt.Errorf("reload workspace: %w", err)
	}

	srv.SetCompilation(res.Compilation)

	logger.Infof("reloaded %d files in %s (%d parsed, %d reused, %d failed)",
		len(res.Compilation.Files()), time.Since(start).Round(time.Millisecond),
		res.Parsed, res.Reused, len(res.Failed))

	publishCompilationDiagnostics(srv)

	return nil
}

// onFilesChanged reacts to changed snapshot or configuration files.
func onFilesChanged(srv *server.Server, paths []string) {
	if srv.IsShuttingDown() {
		return
	}

	restart := false

	if slices.ContainsFunc(paths, isConfigFile) {
		before := srv.Config().Snapshots
		loadConfigFiles(srv)
		after := srv.Config().Snapshots

		restart = !slices.Equal(before.Include, after.Include) || !slices.Equal(before.Exclude, after.Exclude)
	}

	if err := reloadWorkspace(srv); err != nil {
		logger.Errorf("%v", err)
	}

	// onFilesChanged runs on the watcher goroutine, which a restart waits for
	if restart && !srv.SupportsWatchedFiles() {
		go startWatcher(srv)
	}
}

func isConfigFile(path string) bool {
	return filepath.Base(path) == server.ConfigFileName
}

// startWatcher watches the workspace folders for snapshot changes, replacing
// any running watcher.
func startWatcher(srv *server.Server) {
	matchers := snapshotMatchers(srv)
	if len(matchers) == 0 {
		return
	}

	debounce := time.Duration(srv.Config().DebounceMs) * time.Millisecond

	w, err := workspace.NewWatcher(matchers, debounce, func(paths []string) {
		onFilesChanged(srv, paths)
	})
	if err != nil {
		logger.Errorf("create watcher: %v", err)
		return
	}

	if err := w.Start(context.Background()); err != nil {
		logger.Errorf("start watcher: %v", err)
		return
	}

	srv.SetStopFunc(w.Stop)
}

// registerFileWatchers asks the client to report snapshot and configuration
// file changes through workspace/didChangeWatchedFiles.
func registerFileWatchers(call glsp.CallFunc, include []string) {
	kind := protocol.UInteger(protocol.WatchKindCreate | protocol.WatchKindChange | protocol.WatchKindDelete)

	watchers := make([]protocol.FileSystemWatcher, 0, len(include)+1)
	for _, pattern := range include {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: pattern, Kind: &kind})
	}

	watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: "**/" + server.ConfigFileName, Kind: &kind})

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:              "qs-snapshot-watcher",
			Method:          "workspace/didChangeWatchedFiles",
			RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{Watchers: watchers},
		}},
	}

	var result any
	call(protocol.ServerClientRegisterCapability, params, &result)

	logger.Debugf("registered %d file watchers with the client", len(watchers))
}
