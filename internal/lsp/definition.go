package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// Definition handles the textDocument/definition request.
// Returns the declaration site of the symbol at the cursor, or nil when the
// symbol is unknown or declared outside the compilation.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in Definition")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	logger.Debugf("definition at %s:%s", uri, pos)

	loc, err := analysis.DefinitionAt(srv.CompilationFor(uri), uri, pos)
	if err != nil {
		logQueryError("definition", uri, err)
		return nil, nil
	}

	if loc == nil {
		logger.Debugf("no definition at %s:%s", uri, pos)
		return nil, nil
	}

	return toProtocolLocation(*loc), nil
}

func toProtocolLocation(loc analysis.Location) protocol.Location {
	return protocol.Location{URI: loc.URI, Range: document.RangeToProtocol(loc.Range)}
}

func toProtocolLocations(locs []analysis.Location) []protocol.Location {
	if len(locs) == 0 {
		return nil
	}

	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toProtocolLocation(loc))
	}

	return out
}
