package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

// Completion handles the textDocument/completion request.
// Answers are cached per document version, compilation and position, so a
// client re-asking while it filters gets the same list back.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in Completion")
		return nil, nil
	}

	uri := params.TextDocument.URI
	pos := document.FromProtocol(params.Position)

	version := -1
	if doc, ok := srv.Documents().Get(uri); ok {
		version = doc.Version
	}

	generation := srv.Generation()
	cache := srv.CompletionCache()

	candidates, hit := cache.Get(uri, version, generation, pos)
	if !hit {
		candidates = analysis.CompletionsAt(srv.CompilationFor(uri), uri, pos)
		cache.Set(uri, version, generation, pos, candidates)
	}

	logger.Debugf("completion at %s:%s: %d candidates (cached=%t)", uri, pos, len(candidates), hit)

	cfg := srv.Config()
	items, incomplete := buildCompletionItems(candidates, cfg.MaxCompletionItems, srv.SupportsMarkdown())

	return &protocol.CompletionList{IsIncomplete: incomplete, Items: items}, nil
}

// buildCompletionItems converts candidates in their ranked order. Lists
// longer than limit are cut and reported incomplete.
func buildCompletionItems(candidates []analysis.CompletionCandidate, limit int, markdown bool) ([]protocol.CompletionItem, bool) {
	incomplete := false
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
		incomplete = true
	}

	items := make([]protocol.CompletionItem, 0, len(candidates))

	for i, c := range candidates {
		kind := completionItemKind(c.Kind)
		sortText := fmt.Sprintf("%05d", i)

		item := protocol.CompletionItem{
			Label:    c.Label,
			Kind:     &kind,
			SortText: &sortText,
		}

		if c.Detail != "" {
			detail := c.Detail
			item.Detail = &detail
		}

		if c.Documentation != "" {
			item.Documentation = markupContent(c.Documentation, markdown)
		}

		if c.Data != nil {
			item.Data = c.Data
		}

		items = append(items, item)
	}

	return items, incomplete
}

func completionItemKind(kind analysis.CandidateKind) protocol.CompletionItemKind {
	switch kind {
	case analysis.VariableCandidate:
		return protocol.CompletionItemKindVariable
	case analysis.FunctionCandidate:
		return protocol.CompletionItemKindFunction
	case analysis.OperationCandidate:
		return protocol.CompletionItemKindMethod
	case analysis.TypeCandidate:
		return protocol.CompletionItemKindStruct
	case analysis.NamespaceCandidate:
		return protocol.CompletionItemKindModule
	case analysis.FieldCandidate:
		return protocol.CompletionItemKindField
	default:
		return protocol.CompletionItemKindKeyword
	}
}

func candidateKind(kind *protocol.CompletionItemKind) (analysis.CandidateKind, bool) {
	if kind == nil {
		return 0, false
	}

	switch *kind {
	case protocol.CompletionItemKindFunction:
		return analysis.FunctionCandidate, true
	case protocol.CompletionItemKindMethod:
		return analysis.OperationCandidate, true
	case protocol.CompletionItemKindStruct:
		return analysis.TypeCandidate, true
	default:
		return 0, false
	}
}

// CompletionResolve handles the completionItem/resolve request by attaching
// the signature and documentation of the declaration behind the item.
func CompletionResolve(context *glsp.Context, params *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		logger.Warning("server instance not available in CompletionResolve")
		return params, nil
	}

	kind, ok := candidateKind(params.Kind)
	if !ok || params.Data == nil {
		return params, nil
	}

	data, err := decodeCandidateData(params.Data)
	if err != nil {
		logger.Debugf("completion item %q carries unreadable data: %v", params.Label, err)
		return params, nil
	}

	markdown := srv.SupportsMarkdown()

	resolved := analysis.ResolveCompletionDetails(srv.Compilation(), analysis.CompletionCandidate{
		Label: params.Label,
		Kind:  kind,
		Data:  data,
	}, markdown)

	item := *params

	if resolved.Detail != "" {
		detail := resolved.Detail
		item.Detail = &detail
	}

	if resolved.Documentation != "" {
		item.Documentation = markupContent(resolved.Documentation, markdown)
	}

	return &item, nil
}

// decodeCandidateData reads item data back from its JSON form; in-process
// callers may still hand over the original value.
func decodeCandidateData(raw any) (*analysis.CandidateData, error) {
	if data, ok := raw.(*analysis.CandidateData); ok {
		return data, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var data analysis.CandidateData
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func markupContent(value string, markdown bool) protocol.MarkupContent {
	kind := protocol.MarkupKindPlainText
	if markdown {
		kind = protocol.MarkupKindMarkdown
	}

	return protocol.MarkupContent{Kind: kind, Value: value}
}
