package lsp

import (
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// ServerName and ServerVersion are reported to the client.
const ServerName = "go-qs-lsp"

var ServerVersion = "0.1.0"

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance any

	// exit ends the process; replaced in tests
	exit = os.Exit
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv any) {
	serverInstance = srv
}

// Initialize handles the LSP initialize request.
// It records the workspace folders and client capabilities, reads the
// per-folder configuration and loads the snapshots.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in Initialize")
		return initializeResult(false), nil
	}

	folders := workspaceFolders(params)
	srv.SetWorkspaceFolders(folders)
	srv.SetClientCapabilities(&params.Capabilities)

	if params.Trace != nil {
		protocol.SetTraceValue(*params.Trace)
	}

	loadConfigFiles(srv)

	if params.InitializationOptions != nil {
		srv.UpdateConfig(func(cfg *server.Config) {
			server.ApplySettings(cfg, params.InitializationOptions)
		})
	}

	logger.Infof("initializing with %d workspace folders", len(folders))

	if err := reloadWorkspace(srv); err != nil {
		logger.Errorf("initial snapshot load: %v", err)
	}

	return initializeResult(srv.SupportsPrepareRename()), nil
}

func initializeResult(prepareRename bool) protocol.InitializeResult {
	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true
	falseVal := false

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &falseVal,
		},

		HoverProvider:             &[]bool{true}[0],
		DefinitionProvider:        &[]bool{true}[0],
		ReferencesProvider:        &[]bool{true}[0],
		DocumentHighlightProvider: &[]bool{true}[0],
		DocumentSymbolProvider:    &[]bool{true}[0],
		WorkspaceSymbolProvider:   &[]bool{true}[0],

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", " ", "("},
			ResolveProvider:   &trueVal,
		},

		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters:   []string{"(", ","},
			RetriggerCharacters: []string{")"},
		},

		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
		},
	}

	// RenameOptions are only allowed when the client announced prepareSupport
	if prepareRename {
		capabilities.RenameProvider = &protocol.RenameOptions{PrepareProvider: &trueVal}
	} else {
		capabilities.RenameProvider = &trueVal
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &ServerVersion,
		},
	}
}

// workspaceFolders returns the folder paths of the workspace, falling back on
// the deprecated root URI and root path.
func workspaceFolders(params *protocol.InitializeParams) []string {
	var folders []string

	for _, f := range params.WorkspaceFolders {
		folders = append(folders, workspace.URIToPath(f.URI))
	}

	if len(folders) == 0 && params.RootURI != nil && *params.RootURI != "" {
		folders = append(folders, workspace.URIToPath(*params.RootURI))
	}

	if len(folders) == 0 && params.RootPath != nil && *params.RootPath != "" {
		folders = append(folders, *params.RootPath)
	}

	return folders
}

// loadConfigFiles applies the .qsls.toml of every workspace folder.
func loadConfigFiles(srv *server.Server) {
	for _, dir := range srv.GetWorkspaceFolders() {
		var err error

		srv.UpdateConfig(func(cfg *server.Config) {
			err = server.LoadConfigFile(dir, cfg)
		})

		if err != nil {
			logger.Errorf("configuration: %v", err)
		}
	}
}

// Initialized handles the initialized notification from the client.
// It publishes the snapshot diagnostics and starts watching snapshot files.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in Initialized")
		return nil
	}

	if context != nil && context.Notify != nil {
		srv.SetNotify(context.Notify)
	}

	publishCompilationDiagnostics(srv)

	if !srv.Config().Watch {
		return nil
	}

	if srv.SupportsWatchedFiles() && context != nil && context.Call != nil {
		// the client answers registerCapability only after this notification returns
		go registerFileWatchers(context.Call, srv.Config().Snapshots.Include)
		return nil
	}

	startWatcher(srv)

	return nil
}

// Shutdown handles the shutdown request.
func Shutdown(context *glsp.Context) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		return nil
	}

	srv.SetShuttingDown()
	protocol.SetTraceValue(protocol.TraceValueOff)

	logger.Info("shutting down")

	return nil
}

// Exit handles the exit notification. The exit code is 0 only after a
// shutdown request.
func Exit(context *glsp.Context) error {
	code := 1

	if srv, ok := serverInstance.(*server.Server); ok && srv != nil && srv.IsShuttingDown() {
		code = 0
	}

	exit(code)

	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	if srv, ok := serverInstance.(*server.Server); ok && srv != nil {
		srv.UpdateConfig(func(cfg *server.Config) {
			cfg.Trace = string(params.Value)
		})
	}

	return nil
}
