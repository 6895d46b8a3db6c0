package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// SignatureHelp handles the textDocument/signatureHelp request.
func SignatureHelp(context *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in SignatureHelp")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	help := analysis.SignatureHelpAt(srv.CompilationFor(uri), uri, pos)
	if help == nil {
		logger.Debugf("no call around %s:%s", uri, pos)
		return nil, nil
	}

	markdown := srv.SupportsMarkdown()

	sig := protocol.SignatureInformation{
		Label:      help.Label,
		Parameters: make([]protocol.ParameterInformation, 0, len(help.Parameters)),
	}

	if help.Documentation != "" {
		sig.Documentation = markupContent(help.Documentation, markdown)
	}

	for _, p := range help.Parameters {
		info := protocol.ParameterInformation{Label: p.Label}
		if p.Documentation != "" {
			info.Documentation = markupContent(p.Documentation, markdown)
		}

		sig.Parameters = append(sig.Parameters, info)
	}

	activeSignature := protocol.UInteger(0)
	activeParameter := protocol.UInteger(help.ActiveParameter)

	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sig},
		ActiveSignature: &activeSignature,
		ActiveParameter: &activeParameter,
	}, nil
}
