package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// References handles the textDocument/references request.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in References")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	logger.Debugf("references at %s:%s (includeDeclaration=%t)", uri, pos, params.Context.IncludeDeclaration)

	refs, err := analysis.ReferencesAt(srv.CompilationFor(uri), uri, pos)
	if err != nil {
		logQueryError("references", uri, err)
		return nil, nil
	}

	if refs == nil {
		logger.Debugf("no symbol at %s:%s", uri, pos)
		return nil, nil
	}

	locations := toProtocolLocations(refs.All(params.Context.IncludeDeclaration))

	logger.Debugf("found %d references", len(locations))

	return locations, nil
}

// DocumentHighlight handles the textDocument/documentHighlight request.
// The declaration is highlighted as a write, every use as a read.
func DocumentHighlight(context *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DocumentHighlight")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	highlights, err := analysis.HighlightsAt(srv.CompilationFor(uri), uri, pos)
	if err != nil {
		logQueryError("documentHighlight", uri, err)
		return nil, nil
	}

	if len(highlights) == 0 {
		return nil, nil
	}

	out := make([]protocol.DocumentHighlight, 0, len(highlights))

	for _, h := range highlights {
		kind := protocol.DocumentHighlightKindRead
		if h.Write {
			kind = protocol.DocumentHighlightKindWrite
		}

		out = append(out, protocol.DocumentHighlight{
			Range: document.RangeToProtocol(h.Range),
			Kind:  &kind,
		})
	}

	return out, nil
}
