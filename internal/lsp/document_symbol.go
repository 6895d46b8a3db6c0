package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// DocumentSymbol handles the textDocument/documentSymbol request with a flat
// list of declarations and their containers.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in DocumentSymbol")
		return nil, nil
	}

	uri := params.TextDocument.URI

	symbols := analysis.DocumentSymbols(srv.Compilation(), uri)
	if len(symbols) == 0 {
		return nil, nil
	}

	out := make([]protocol.SymbolInformation, 0, len(symbols))

	for _, s := range symbols {
		info := protocol.SymbolInformation{
			Name:     s.Name,
			Kind:     symbolKind(s.Kind),
			Location: protocol.Location{URI: uri, Range: document.RangeToProtocol(s.Range)},
		}

		if s.Container != "" {
			container := s.Container
			info.ContainerName = &container
		}

		out = append(out, info)
	}

	logger.Debugf("%d document symbols in %s", len(out), uri)

	return out, nil
}

func symbolKind(kind analysis.SymbolKind) protocol.SymbolKind {
	switch kind {
	case analysis.NamespaceSymbol:
		return protocol.SymbolKindNamespace
	case analysis.OperationSymbol:
		return protocol.SymbolKindMethod
	case analysis.TypeSymbol:
		return protocol.SymbolKindStruct
	case analysis.FieldSymbol:
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindFunction
	}
}
