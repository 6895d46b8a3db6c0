package lsp

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

// recorder collects the notifications sent to the client.
type recorder struct {
	mu   sync.Mutex
	sent []notification
}

type notification struct {
	method string
	params any
}

func (r *recorder) notify(method string, params any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification{method: method, params: params})
}

// diagnostics returns the last diagnostics published per URI.
func (r *recorder) diagnostics() map[string][]protocol.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]protocol.Diagnostic)

	for _, n := range r.sent {
		if p, ok := n.params.(protocol.PublishDiagnosticsParams); ok {
			out[p.URI] = p.Diagnostics
		}
	}

	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// setupDemo installs a server serving the demo compilation.
func setupDemo(t *testing.T) (*server.Server, *testutil.Demo, *recorder) {
	t.Helper()

	d := testutil.NewDemo()
	rec := &recorder{}

	srv := server.New()
	srv.SetCompilation(d.Compilation)
	srv.SetNotify(rec.notify)

	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })

	return srv, d, rec
}

func positionParams(uri string, pos syntax.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     document.ToProtocol(pos),
	}
}

func openSource(t *testing.T, s *testutil.Source, version int) {
	t.Helper()

	require.NoError(t, DidOpen(&glsp.Context{}, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        s.URI,
			LanguageID: "qsharp",
			Version:    protocol.Integer(version),
			Text:       s.Text(),
		},
	}))
}

// replaceLine sends a full-text change replacing one line of s.
func replaceLine(t *testing.T, s *testutil.Source, version, line int, text string) {
	t.Helper()

	lines := append([]string(nil), s.Lines...)
	lines[line] = text

	require.NoError(t, DidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: s.URI},
			Version:                protocol.Integer(version),
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: strings.Join(lines, "\n")}},
	}))
}

// copyFixtures copies the snapshot test data into a new workspace folder.
func copyFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	for _, name := range []string{"project.qsnap.yaml", "lib.qsnap.yaml"} {
		data, err := os.ReadFile(filepath.Join("..", "snapshot", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, server.ConfigFileName), []byte(content), 0o644))
}
