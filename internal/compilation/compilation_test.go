package compilation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

func TestIndentationAt(t *testing.T) {
	demo := testutil.NewDemo()
	file, ok := demo.Compilation.File(testutil.MainURI)
	require.True(t, ok)

	tests := []struct {
		name     string
		pos      syntax.Position
		expected int
	}{
		{"file start", syntax.Position{}, 0},
		{"namespace body", demo.Main.Start(1), 1},
		{"callable body", demo.Main.Start(7), 2},
		{"before if brace", demo.Main.Pos(10, "{"), 3},
		{"after if brace", demo.Main.After(10, "{"), 4},
		{"elif body", demo.Main.Start(14), 4},
		{"after loop", demo.Main.Start(19), 2},
		{"between callables", syntax.Position{Line: 24}, 1},
		{"after namespace", demo.Main.End(48), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, file.IndentationAt(tt.pos))
		})
	}
}

func TestIndentationIgnoresStringsAndComments(t *testing.T) {
	file := compilation.NewFile("file:///x.qs", "namespace X { // {\n    let s = \"{ \\\" {\";\n", nil)

	assert.Equal(t, 1, file.IndentationAt(syntax.Position{Line: 1, Column: 4}))
	assert.Equal(t, 1, file.IndentationAt(syntax.Position{Line: 2, Column: 0}))
}

func TestNamespaceAndCallableAt(t *testing.T) {
	demo := testutil.NewDemo()
	comp := demo.Compilation

	tests := []struct {
		name      string
		uri       string
		pos       syntax.Position
		namespace string
		callable  string
	}{
		{"open directive", testutil.MainURI, demo.Main.Start(1), "Demo", ""},
		{"inside if", testutil.MainURI, demo.Main.Start(12), "Demo", "Prepare"},
		{"empty line after statement", testutil.MainURI, syntax.Position{Line: 18, Column: 0}, "Demo", "Prepare"},
		{"between callables", testutil.MainURI, syntax.Position{Line: 24}, "Demo", ""},
		{"header", testutil.MainURI, demo.Main.Pos(25, "Helper"), "Demo", "Helper"},
		{"fixup", testutil.MainURI, demo.Main.Start(39), "Demo", "Retry"},
		{"other file", testutil.MathURI, demo.Math.Start(17), "Demo.Math", "_Scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, ok := comp.NamespaceAt(tt.uri, tt.pos)
			require.True(t, ok)
			assert.Equal(t, tt.namespace, ns)

			callable, spec, ok := comp.CallableAt(tt.uri, tt.pos)
			if tt.callable == "" {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.callable, callable.Name.Name)
			require.NotNil(t, spec)
			assert.Equal(t, ast.Body, spec.Kind)
		})
	}

	_, ok := comp.NamespaceAt("file:///missing.qs", syntax.Position{})
	assert.False(t, ok)
}

func TestWithDocument(t *testing.T) {
	demo := testutil.NewDemo()
	comp := demo.Compilation

	updated := comp.WithDocument(testutil.MainURI, "namespace Demo {\n    open Mic\n}")

	original, _ := comp.File(testutil.MainURI)
	live, ok := updated.File(testutil.MainURI)
	require.True(t, ok)

	assert.Equal(t, "    open Mic", live.Line(1))
	assert.Equal(t, "    open Microsoft.Quantum.Intrinsic;", original.Line(1))
	assert.Same(t, original.Tree, live.Tree)
	assert.Equal(t, "    open Mic", live.TextBefore(syntax.Position{Line: 1, Column: 12}))

	added := comp.WithDocument("file:///demo/New.qs", "namespace New {}")
	file, ok := added.File("file:///demo/New.qs")
	require.True(t, ok)
	assert.Equal(t, 0, file.Tree.Len())
	assert.Len(t, added.Files(), 3)
	assert.Len(t, comp.Files(), 2)
}

func TestFileContains(t *testing.T) {
	file := compilation.NewFile("file:///x.qs", "ab\ncd", nil)

	assert.True(t, file.Contains(syntax.Position{Line: 1, Column: 2}))
	assert.False(t, file.Contains(syntax.Position{Line: 1, Column: 3}))
	assert.False(t, file.Contains(syntax.Position{Line: 2, Column: 0}))
	assert.False(t, file.Contains(syntax.Position{Line: -1, Column: 0}))
}
