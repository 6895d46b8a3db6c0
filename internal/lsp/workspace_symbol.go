package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// WorkspaceSymbol handles the workspace/symbol request.
// An empty query lists every declaration up to the result limit.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in WorkspaceSymbol")
		return nil, nil
	}

	found := srv.WorkspaceIndex().Search(params.Query, workspace.MaxSymbolResults)

	logger.Debugf("workspace symbol %q: %d results", params.Query, len(found))

	out := make([]protocol.SymbolInformation, 0, len(found))

	for _, s := range found {
		info := protocol.SymbolInformation{
			Name:     s.Name,
			Kind:     symbolKind(s.Kind),
			Location: protocol.Location{URI: s.URI, Range: document.RangeToProtocol(s.Range)},
		}

		if s.Container != "" {
			container := s.Container
			info.ContainerName = &container
		}

		out = append(out, info)
	}

	return out, nil
}
