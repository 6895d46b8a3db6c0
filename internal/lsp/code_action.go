package lsp

import (
	"slices"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// CodeAction handles the textDocument/codeAction request. Quick fixes are
// computed at the start of the requested range and of every diagnostic the
// client sends along.
func CodeAction(context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in CodeAction")
		return nil, nil
	}

	if only := params.Context.Only; len(only) > 0 && !slices.Contains(only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	uri := params.TextDocument.URI
	comp := srv.CompilationFor(uri)

	positions := []syntax.Position{document.FromProtocol(params.Range.Start)}
	for _, d := range params.Context.Diagnostics {
		if p := document.FromProtocol(d.Range.Start); !slices.Contains(positions, p) {
			positions = append(positions, p)
		}
	}

	var (
		out  []protocol.CodeAction
		seen = make(map[string]bool)
	)

	for _, pos := range positions {
		for _, action := range analysis.CodeActionsAt(comp, uri, pos) {
			if seen[action.Title] {
				continue
			}

			seen[action.Title] = true
			out = append(out, toProtocolCodeAction(action, diagnosticsAt(params.Context.Diagnostics, pos)))
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	logger.Debugf("%d code actions for %s", len(out), uri)

	return out, nil
}

func toProtocolCodeAction(action analysis.CodeAction, diagnostics []protocol.Diagnostic) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit, len(action.Edits))
	for _, fe := range action.Edits {
		for _, e := range fe.Edits {
			changes[fe.URI] = append(changes[fe.URI], protocol.TextEdit{
				Range:   document.RangeToProtocol(e.Range),
				NewText: e.NewText,
			})
		}
	}

	ca := protocol.CodeAction{
		Title:       action.Title,
		Kind:        &kind,
		Diagnostics: diagnostics,
		Edit:        &protocol.WorkspaceEdit{Changes: changes},
	}

	if action.Preferred {
		preferred := true
		ca.IsPreferred = &preferred
	}

	return ca
}

// diagnosticsAt returns the diagnostics starting at pos.
func diagnosticsAt(diagnostics []protocol.Diagnostic, pos syntax.Position) []protocol.Diagnostic {
	var out []protocol.Diagnostic

	for _, d := range diagnostics {
		if document.FromProtocol(d.Range.Start) == pos {
			out = append(out, d)
		}
	}

	return out
}
