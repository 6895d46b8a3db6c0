package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

func TestSignatureHelp(t *testing.T) {
	_, d, _ := setupDemo(t)

	help, err := SignatureHelp(&glsp.Context{}, &protocol.SignatureHelpParams{
		TextDocumentPositionParams: positionParams(testutil.MainURI, d.Main.After(27, "M.Square(x), ")),
	})
	require.NoError(t, err)
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 1)

	sig := help.Signatures[0]
	assert.Equal(t, "Demo.Math.Combine(a : Int, b : Int)", sig.Label)
	require.Len(t, sig.Parameters, 2)
	assert.Equal(t, "b : Int", sig.Parameters[1].Label)

	assert.Equal(t, protocol.UInteger(0), *help.ActiveSignature)
	assert.Equal(t, protocol.UInteger(1), *help.ActiveParameter)

	help, err = SignatureHelp(&glsp.Context{}, &protocol.SignatureHelpParams{
		TextDocumentPositionParams: positionParams(testutil.MainURI, d.Main.Pos(7, "angle")),
	})
	require.NoError(t, err)
	assert.Nil(t, help)
}

func TestDocumentSymbol(t *testing.T) {
	_, d, _ := setupDemo(t)

	result, err := DocumentSymbol(&glsp.Context{}, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testutil.MathURI},
	})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.SymbolInformation)
	require.True(t, ok)
	require.Len(t, symbols, 7)

	assert.Equal(t, "Demo.Math", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindNamespace, symbols[0].Kind)
	assert.Nil(t, symbols[0].ContainerName)

	assert.Equal(t, protocol.SymbolKindFunction, symbols[1].Kind)
	assert.Equal(t, protocol.SymbolKindStruct, symbols[3].Kind)

	re := symbols[4]
	assert.Equal(t, "Re", re.Name)
	assert.Equal(t, protocol.SymbolKindField, re.Kind)
	assert.Equal(t, "Demo.Math.Complex", *re.ContainerName)
	assert.Equal(t, protocol.Location{URI: testutil.MathURI, Range: document.RangeToProtocol(d.Math.Find(14, "Re"))}, re.Location)

	result, err = DocumentSymbol(&glsp.Context{}, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testutil.MainURI},
	})
	require.NoError(t, err)

	symbols = result.([]protocol.SymbolInformation)
	require.Len(t, symbols, 4)
	assert.Equal(t, protocol.SymbolKindMethod, symbols[1].Kind, "operations")

	result, err = DocumentSymbol(&glsp.Context{}, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///none.qs"},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestWorkspaceSymbol(t *testing.T) {
	_, d, _ := setupDemo(t)

	got, err := WorkspaceSymbol(&glsp.Context{}, &protocol.WorkspaceSymbolParams{Query: "Square"})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, "Square", got[0].Name)
	assert.Equal(t, protocol.SymbolKindFunction, got[0].Kind)
	assert.Equal(t, "Demo.Math", *got[0].ContainerName)
	assert.Equal(t, protocol.Location{URI: testutil.MathURI, Range: document.RangeToProtocol(d.Math.Find(6, "Square"))}, got[0].Location)

	got, err = WorkspaceSymbol(&glsp.Context{}, &protocol.WorkspaceSymbolParams{Query: "H"})
	require.NoError(t, err)

	for _, s := range got {
		assert.NotEqual(t, "H", s.Name, "library callables have no location")
	}
}
