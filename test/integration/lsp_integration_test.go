//go:build integration

// Package integration drives the protocol handlers through a whole editing
// session against the snapshot fixtures.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/lsp"
	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

const (
	mainURI = "file:///proj/src/Main.qs"
	utilURI = "file:///proj/src/Util.qs"
)

type session struct {
	srv *server.Server
	ctx *glsp.Context

	mu          sync.Mutex
	diagnostics map[string][]protocol.Diagnostic
}

// startSession initializes a server on a workspace holding the fixtures.
func startSession(t *testing.T) *session {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"project.qsnap.yaml", "lib.qsnap.yaml"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "internal", "snapshot", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, server.ConfigFileName), []byte("watch = false\n"), 0o644))

	s := &session{srv: server.New(), diagnostics: make(map[string][]protocol.Diagnostic)}
	s.ctx = &glsp.Context{Notify: s.notify}

	lsp.SetServer(s.srv)
	t.Cleanup(func() { lsp.SetServer(nil) })

	result, err := lsp.Initialize(s.ctx, &protocol.InitializeParams{
		WorkspaceFolders: []protocol.WorkspaceFolder{{URI: workspace.PathToURI(dir), Name: "proj"}},
	})
	require.NoError(t, err)
	require.IsType(t, protocol.InitializeResult{}, result)

	require.NoError(t, lsp.Initialized(s.ctx, &protocol.InitializedParams{}))

	t.Cleanup(func() { _ = lsp.Shutdown(s.ctx) })

	return s
}

func (s *session) notify(method string, params any) {
	if p, ok := params.(protocol.PublishDiagnosticsParams); ok {
		s.mu.Lock()
		s.diagnostics[p.URI] = p.Diagnostics
		s.mu.Unlock()
	}
}

func (s *session) open(t *testing.T, uri string) {
	t.Helper()

	file, ok := s.srv.Compilation().File(uri)
	require.True(t, ok)

	require.NoError(t, lsp.DidOpen(s.ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "qsharp", Version: 1, Text: strings.Join(file.Lines, "\n")},
	}))
}

func at(uri string, line, character uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: character},
	}
}

func span(line, start, end uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: end},
	}
}

func TestSnapshotDiagnostics(t *testing.T) {
	s := startSession(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	require.Len(t, s.diagnostics[mainURI], 1)
	assert.Equal(t, span(5, 16, 19), s.diagnostics[mainURI][0].Range)
	assert.NotContains(t, s.diagnostics, utilURI)
}

func TestNavigation(t *testing.T) {
	s := startSession(t)
	s.open(t, mainURI)

	t.Run("hover local", func(t *testing.T) {
		h, err := lsp.Hover(s.ctx, &protocol.HoverParams{TextDocumentPositionParams: at(mainURI, 7, 17)})
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Contains(t, h.Contents.(protocol.MarkupContent).Value, "mutable acc : Int")
	})

	t.Run("definition across files", func(t *testing.T) {
		def, err := lsp.Definition(s.ctx, &protocol.DefinitionParams{TextDocumentPositionParams: at(mainURI, 4, 19)})
		require.NoError(t, err)
		assert.Equal(t, protocol.Location{URI: utilURI, Range: span(2, 13, 18)}, def)
	})

	t.Run("references", func(t *testing.T) {
		refs, err := lsp.References(s.ctx, &protocol.ReferenceParams{
			TextDocumentPositionParams: at(mainURI, 7, 17),
			Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []protocol.Location{
			{URI: mainURI, Range: span(5, 16, 19)},
			{URI: mainURI, Range: span(7, 16, 19)},
		}, refs)
	})

	t.Run("rename", func(t *testing.T) {
		edit, err := lsp.Rename(s.ctx, &protocol.RenameParams{
			TextDocumentPositionParams: at(mainURI, 5, 17),
			NewName:                    "total",
		})
		require.NoError(t, err)
		require.NotNil(t, edit)
		require.Len(t, edit.DocumentChanges, 1)

		change := edit.DocumentChanges[0].(protocol.TextDocumentEdit)
		assert.Equal(t, mainURI, change.TextDocument.URI)
		assert.Len(t, change.Edits, 2)
	})

	t.Run("signature help", func(t *testing.T) {
		help, err := lsp.SignatureHelp(s.ctx, &protocol.SignatureHelpParams{TextDocumentPositionParams: at(mainURI, 4, 24)})
		require.NoError(t, err)
		require.NotNil(t, help)
		assert.Contains(t, help.Signatures[0].Label, "Twice(k : Int)")
		assert.Equal(t, protocol.UInteger(0), *help.ActiveParameter)
	})

	t.Run("workspace symbol", func(t *testing.T) {
		found, err := lsp.WorkspaceSymbol(s.ctx, &protocol.WorkspaceSymbolParams{Query: "Pair"})
		require.NoError(t, err)
		require.NotEmpty(t, found)
		assert.Equal(t, "Pair", found[0].Name)
		assert.Equal(t, utilURI, found[0].Location.URI)
	})
}

func TestCompletionAfterEdit(t *testing.T) {
	s := startSession(t)
	s.open(t, mainURI)

	file, ok := s.srv.Compilation().File(mainURI)
	require.True(t, ok)

	lines := append([]string(nil), file.Lines...)
	lines[7] = "            set "

	require.NoError(t, lsp.DidChange(s.ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: mainURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: strings.Join(lines, "\n")}},
	}))

	result, err := lsp.Completion(s.ctx, &protocol.CompletionParams{TextDocumentPositionParams: at(mainURI, 7, 16)})
	require.NoError(t, err)

	list := result.(*protocol.CompletionList)

	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}

	assert.Contains(t, labels, "acc")
	assert.NotContains(t, labels, "x", "set offers mutable variables only")
}
