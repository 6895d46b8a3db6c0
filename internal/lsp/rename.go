package lsp

import (
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// ErrServerUnavailable is returned by requests that cannot answer with an
// empty result when no server is set.
var ErrServerUnavailable = errors.New("server instance not available")

// Rename handles the textDocument/rename request.
func Rename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		return nil, fmt.Errorf("rename: %w", ErrServerUnavailable)
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	logger.Debugf("rename at %s:%s to %q", uri, pos, params.NewName)

	if !analysis.IsValidName(params.NewName) {
		logger.Debugf("rename rejected: %q is not a valid name", params.NewName)
		return nil, nil
	}

	edits, err := analysis.Rename(srv.CompilationFor(uri), uri, pos, params.NewName)
	if err != nil {
		logQueryError("rename", uri, err)
		return nil, nil
	}

	if len(edits) == 0 {
		logger.Debugf("nothing to rename at %s:%s", uri, pos)
		return nil, nil
	}

	return buildWorkspaceEdit(srv, edits), nil
}

// buildWorkspaceEdit converts file edits into document changes. Open
// documents carry their version so the client can reject stale edits.
func buildWorkspaceEdit(srv *server.Server, edits []analysis.FileEdits) *protocol.WorkspaceEdit {
	changes := make([]any, 0, len(edits))
	total := 0

	for _, fe := range edits {
		textEdits := make([]any, 0, len(fe.Edits))
		for _, e := range fe.Edits {
			textEdits = append(textEdits, protocol.TextEdit{
				Range:   document.RangeToProtocol(e.Range),
				NewText: e.NewText,
			})
		}

		id := protocol.OptionalVersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: fe.URI},
		}

		if doc, ok := srv.Documents().Get(fe.URI); ok {
			version := protocol.Integer(doc.Version)
			id.Version = &version
		}

		changes = append(changes, protocol.TextDocumentEdit{TextDocument: id, Edits: textEdits})
		total += len(fe.Edits)
	}

	logger.Debugf("rename edits %d locations in %d files", total, len(edits))

	return &protocol.WorkspaceEdit{DocumentChanges: changes}
}

// PrepareRename handles the textDocument/prepareRename request.
func PrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		return nil, fmt.Errorf("prepareRename: %w", ErrServerUnavailable)
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	r, placeholder, ok := analysis.PrepareRename(srv.CompilationFor(uri), uri, pos)
	if !ok {
		logger.Debugf("nothing renameable at %s:%s", uri, pos)
		return nil, nil
	}

	return protocol.RangeWithPlaceholder{
		Range:       document.RangeToProtocol(r),
		Placeholder: placeholder,
	}, nil
}
