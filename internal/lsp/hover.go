package lsp

import (
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// Hover handles the textDocument/hover request.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in Hover")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	logger.Debugf("hover at %s:%s", uri, pos)

	markdown := srv.SupportsMarkdown()

	h, err := analysis.HoverAt(srv.CompilationFor(uri), uri, pos, markdown)
	if err != nil {
		logQueryError("hover", uri, err)
		return nil, nil
	}

	if h == nil {
		logger.Debugf("no hover information at %s:%s", uri, pos)
		return nil, nil
	}

	kind := protocol.MarkupKindPlainText
	if markdown {
		kind = protocol.MarkupKindMarkdown
	}

	r := document.RangeToProtocol(h.Range)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: kind, Value: h.Contents},
		Range:    &r,
	}, nil
}

// logQueryError logs a failed query. Ambiguous occurrences point at an
// inconsistent snapshot rather than a user error.
func logQueryError(request, uri string, err error) {
	if errors.Is(err, analysis.ErrAmbiguousOccurrence) {
		logger.Errorf("%s in %s: inconsistent snapshot: %v", request, uri, err)
		return
	}

	logger.Errorf("%s in %s: %v", request, uri, err)
}
