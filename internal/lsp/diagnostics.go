package lsp

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

const diagnosticSource = "qsharp"

// PublishDiagnostics sends diagnostics for uri to the client. An empty list
// clears the client's diagnostics for the file.
func PublishDiagnostics(srv *server.Server, uri string, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	srv.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})

	logger.Debugf("published %d diagnostics for %s", len(diagnostics), uri)
}

// convertDiagnostics converts compiler diagnostics, sorted by position and
// capped at maxProblems when it is positive.
func convertDiagnostics(diags []compilation.Diagnostic, maxProblems int) []protocol.Diagnostic {
	sorted := make([]compilation.Diagnostic, len(diags))
	copy(sorted, diags)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Range.Start, sorted[j].Range.Start
		if a != b {
			return a.Before(b)
		}

		return sorted[i].Severity < sorted[j].Severity
	})

	if maxProblems > 0 && len(sorted) > maxProblems {
		sorted = sorted[:maxProblems]
	}

	source := diagnosticSource
	out := make([]protocol.Diagnostic, 0, len(sorted))

	for _, d := range sorted {
		severity := protocol.DiagnosticSeverity(d.Severity)

		pd := protocol.Diagnostic{
			Range:    document.RangeToProtocol(d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		}

		if d.Code != "" {
			pd.Code = &protocol.IntegerOrString{Value: d.Code}
		}

		out = append(out, pd)
	}

	return out
}

// publishFileDiagnostics publishes the compiler diagnostics of one file.
func publishFileDiagnostics(srv *server.Server, uri string) {
	file, ok := srv.Compilation().File(uri)
	if !ok {
		return
	}

	PublishDiagnostics(srv, uri, convertDiagnostics(file.Diagnostics, srv.Config().MaxProblems))
}

// publishCompilationDiagnostics publishes the diagnostics of every file in
// the compilation and clears files that no longer have any.
func publishCompilationDiagnostics(srv *server.Server) {
	maxProblems := srv.Config().MaxProblems

	var uris []string

	for _, file := range srv.Compilation().Files() {
		if len(file.Diagnostics) == 0 {
			continue
		}

		PublishDiagnostics(srv, file.URI, convertDiagnostics(file.Diagnostics, maxProblems))
		uris = append(uris, file.URI)
	}

	for _, uri := range srv.SwapPublished(uris) {
		PublishDiagnostics(srv, uri, nil)
	}
}
