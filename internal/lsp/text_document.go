package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// bindNotify lets background reloads reach the client even when the
// initialized notification was never seen.
func bindNotify(srv *server.Server, context *glsp.Context) {
	if context != nil && context.Notify != nil {
		srv.SetNotify(context.Notify)
	}
}

// DidOpen handles the textDocument/didOpen notification.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidOpen")
		return nil
	}

	bindNotify(srv, context)

	uri := params.TextDocument.URI

	srv.Documents().Set(uri, &server.Document{
		URI:        uri,
		Text:       params.TextDocument.Text,
		Version:    int(params.TextDocument.Version),
		LanguageID: params.TextDocument.LanguageID,
	})
	srv.CompletionCache().InvalidateDocument(uri)

	logger.Debugf("opened %s (version %d)", uri, params.TextDocument.Version)

	publishFileDiagnostics(srv, uri)

	return nil
}

// DidChange handles the textDocument/didChange notification. The new text
// overlays the snapshot; diagnostics stay those of the last compiler run.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidChange")
		return nil
	}

	uri := params.TextDocument.URI

	if _, err := srv.Documents().Apply(uri, int(params.TextDocument.Version), params.ContentChanges); err != nil {
		logger.Errorf("change %s: %v", uri, err)
		return nil
	}

	srv.CompletionCache().InvalidateDocument(uri)

	logger.Debugf("changed %s (version %d, %d changes)", uri, params.TextDocument.Version, len(params.ContentChanges))

	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DidClose")
		return nil
	}

	uri := params.TextDocument.URI

	srv.Documents().Delete(uri)
	srv.CompletionCache().InvalidateDocument(uri)

	logger.Debugf("closed %s", uri)

	return nil
}
