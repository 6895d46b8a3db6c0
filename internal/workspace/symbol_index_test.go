package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

func loadIndex(t *testing.T) *SymbolIndex {
	t.Helper()

	root := t.TempDir()
	a := writeProject(t, root, "Demo", "Twice")
	b := writeProject(t, filepath.Join(root, "lib"), "Demo.Lib", "Halve")

	res, err := NewLoader().Load(context.Background(), []string{a, b}, 2)
	require.NoError(t, err)

	return NewSymbolIndex(res.Compilation)
}

func names(results []SymbolLocation) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Container+"."+r.Name)
	}

	return out
}

func TestSymbolIndexContents(t *testing.T) {
	idx := loadIndex(t)
	require.Equal(t, 4, idx.Len())

	results := idx.Search("Twice", 0)
	require.NotEmpty(t, results)

	twice := results[0]
	assert.Equal(t, "Twice", twice.Name)
	assert.Equal(t, "Demo", twice.Container)
	assert.Equal(t, analysis.FunctionSymbol, twice.Kind)
	assert.Equal(t, syntax.NewRange(1, 13, 1, 18), twice.Range)
	assert.Contains(t, twice.Detail, "Twice")
}

func TestSymbolIndexSearch(t *testing.T) {
	idx := loadIndex(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query lists everything by name", "", []string{"Demo.Lib.Halve", "Demo.Pair", "Demo.Lib.Pair", "Demo.Twice"}},
		{"exact match first", "pair", []string{"Demo.Pair", "Demo.Lib.Pair"}},
		{"prefix", "tw", []string{"Demo.Twice"}},
		{"substring", "alv", []string{"Demo.Lib.Halve"}},
		{"typo", "Twcie", []string{"Demo.Twice"}},
		{"no match", "zzzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Search(tt.query, 0)

			if tt.want == nil {
				assert.Empty(t, got)
				return
			}

			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSymbolIndexLimit(t *testing.T) {
	idx := loadIndex(t)

	assert.Len(t, idx.Search("", 2), 2)
	assert.Len(t, idx.Search("", 1000), 4)
}

func TestSymbolIndexSkipsLibraryDeclarations(t *testing.T) {
	lib := &ast.Namespace{
		Name: "Microsoft.Quantum.Intrinsic",
		Callables: []*ast.Callable{{
			Name:    syntax.QualifiedName{Namespace: "Microsoft.Quantum.Intrinsic", Name: "H"},
			Kind:    ast.Operation,
			Library: true,
		}},
	}

	idx := NewSymbolIndex(compilation.New(nil, []*ast.Namespace{lib}, nil))
	assert.Equal(t, 0, idx.Len())

	assert.Equal(t, 0, NewSymbolIndex(nil).Len())
}
