// Package server provides the core LSP server state and management.
package server

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

var logger = commonlog.GetLogger("qs-lsp.server")

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// compilation is the most recently loaded snapshot; swapped whole on reload
	compilation atomic.Pointer[compilation.Compilation]

	// generation counts compilation swaps
	generation atomic.Uint64

	// workspaceIndex lists the declarations of the current compilation
	workspaceIndex atomic.Pointer[workspace.SymbolIndex]

	// loader keeps snapshot fingerprints between reloads
	loader *workspace.Loader

	// published holds the URIs that currently carry diagnostics on the client
	published map[string]struct{}

	// notify sends notifications to the client outside a request
	notify glsp.NotifyFunc

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []string

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	// completionCache remembers the last completion answer per document
	completionCache *CompletionCache

	// config holds server configuration
	config *Config

	// stop cancels background work such as the snapshot watcher
	stop func()

	// mutex protects server state
	mu sync.RWMutex

	// shutting down flag
	shuttingDown bool
}

// New creates a new LSP server instance with an empty compilation.
func New() *Server {
	s := &Server{
		documents:       NewDocumentStore(),
		completionCache: NewCompletionCache(),
		config:          DefaultConfig(),
		loader:          workspace.NewLoader(),
		published:       make(map[string]struct{}),
	}

	empty := compilation.New(nil, nil, nil)
	s.compilation.Store(empty)
	s.workspaceIndex.Store(workspace.NewSymbolIndex(empty))

	return s
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down and stops background work.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	s.shuttingDown = true
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// SetStopFunc registers the function that stops background work on shutdown.
// A previously registered function is called first.
func (s *Server) SetStopFunc(stop func()) {
	s.mu.Lock()
	prev := s.stop
	s.stop = stop
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Compilation returns the current snapshot. It is never nil.
func (s *Server) Compilation() *compilation.Compilation {
	return s.compilation.Load()
}

// Generation returns the number of compilation swaps so far.
func (s *Server) Generation() uint64 {
	return s.generation.Load()
}

// SetCompilation replaces the current snapshot and drops cached answers
// computed from the previous one.
func (s *Server) SetCompilation(comp *compilation.Compilation) {
	if comp == nil {
		comp = compilation.New(nil, nil, nil)
	}

	s.workspaceIndex.Store(workspace.NewSymbolIndex(comp))
	s.compilation.Store(comp)
	gen := s.generation.Add(1)
	s.completionCache.Clear()

	logger.Debugf("compilation swapped (generation %d, %d files)", gen, len(comp.Files()))
}

// WorkspaceIndex returns the declarations of the current compilation.
func (s *Server) WorkspaceIndex() *workspace.SymbolIndex {
	return s.workspaceIndex.Load()
}

// Loader returns the snapshot loader.
func (s *Server) Loader() *workspace.Loader {
	return s.loader
}

// SwapPublished records the URIs that now carry diagnostics and returns
// those that carried diagnostics before but no longer do.
func (s *Server) SwapPublished(uris []string) []string {
	next := make(map[string]struct{}, len(uris))
	for _, uri := range uris {
		next[uri] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string

	for uri := range s.published {
		if _, ok := next[uri]; !ok {
			stale = append(stale, uri)
		}
	}

	s.published = next

	sort.Strings(stale)

	return stale
}

// SetNotify records how to reach the client from background work.
func (s *Server) SetNotify(notify glsp.NotifyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

// Notify sends a notification to the client, if one is connected.
func (s *Server) Notify(method string, params any) {
	s.mu.RLock()
	notify := s.notify
	s.mu.RUnlock()

	if notify != nil {
		notify(method, params)
	}
}

// CompilationFor returns the current snapshot with the open document's live
// text laid over the file's lines. Files that are not open are served from
// the snapshot as is.
func (s *Server) CompilationFor(uri string) *compilation.Compilation {
	comp := s.Compilation()

	doc, ok := s.documents.Get(uri)
	if !ok {
		return comp
	}

	return comp.WithDocument(uri, doc.Text)
}

// Config returns a copy of the server configuration.
func (s *Server) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// UpdateConfig updates the server configuration atomically.
// The update function is called with the current config under a write lock.
func (s *Server) UpdateConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.config)
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// GetWorkspaceFolders returns a copy of the workspace folders.
func (s *Server) GetWorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.workspaceFolders)
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SupportsMarkdown reports whether rich documentation should be sent: the
// configuration allows it and the client accepts markdown hovers.
func (s *Server) SupportsMarkdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.config.Markdown {
		return false
	}

	caps := s.clientCapabilities
	if caps == nil || caps.TextDocument == nil || caps.TextDocument.Hover == nil {
		return true
	}

	formats := caps.TextDocument.Hover.ContentFormat
	if len(formats) == 0 {
		return true
	}

	for _, f := range formats {
		if f == protocol.MarkupKindMarkdown {
			return true
		}
	}

	return false
}

// SupportsWatchedFiles reports whether the client can watch files on the
// server's behalf.
func (s *Server) SupportsWatchedFiles() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps := s.clientCapabilities
	if caps == nil || caps.Workspace == nil || caps.Workspace.DidChangeWatchedFiles == nil {
		return false
	}

	dyn := caps.Workspace.DidChangeWatchedFiles.DynamicRegistration

	return dyn != nil && *dyn
}

// SupportsPrepareRename reports whether the client sends prepareRename requests.
func (s *Server) SupportsPrepareRename() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps := s.clientCapabilities
	if caps == nil || caps.TextDocument == nil || caps.TextDocument.Rename == nil {
		return false
	}

	prep := caps.TextDocument.Rename.PrepareSupport

	return prep != nil && *prep
}

// CompletionCache returns the completion cache.
func (s *Server) CompletionCache() *CompletionCache {
	return s.completionCache
}
