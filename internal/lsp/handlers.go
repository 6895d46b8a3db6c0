// Package lsp implements LSP protocol handlers.
package lsp

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var logger = commonlog.GetLogger("qs-lsp.lsp")

// NewHandler returns the handler table for every supported request and
// notification.
func NewHandler() protocol.Handler {
	return protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		Exit:        Exit,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidClose:  DidClose,

		TextDocumentHover:             Hover,
		TextDocumentDefinition:        Definition,
		TextDocumentReferences:        References,
		TextDocumentDocumentHighlight: DocumentHighlight,
		TextDocumentPrepareRename:     PrepareRename,
		TextDocumentRename:            Rename,
		TextDocumentCompletion:        Completion,
		CompletionItemResolve:         CompletionResolve,
		TextDocumentSignatureHelp:     SignatureHelp,
		TextDocumentDocumentSymbol:    DocumentSymbol,
		TextDocumentCodeAction:        CodeAction,

		WorkspaceSymbol:                    WorkspaceSymbol,
		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:     DidChangeWatchedFiles,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
	}
}
