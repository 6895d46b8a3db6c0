package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

const extraURI = "file:///demo/Extra.qs"

// withExtra adds a file using two names that do not resolve: a misspelled
// callable and a callable from a namespace it does not open.
func withExtra(d *testutil.Demo) (*compilation.Compilation, *testutil.Source) {
	s := testutil.NewSource(extraURI,
		"namespace Demo.Extra {",
		"    open Demo.Math;",
		"",
		"    function Twice(n : Int) : Int {",
		"        let s = Sqare(n);",
		"        let t = ApplyToEach;",
		"        return s;",
		"    }",
		"}",
	)

	intType := syntax.Primitive(syntax.TypeInt)

	s.Frag(0, &fragment.NamespaceDeclaration{Name: s.Anchor(0).NamespaceSym(0, "Demo.Extra")})
	s.Frag(1, &fragment.OpenDirective{Namespace: s.Anchor(1).NamespaceSym(1, "Demo.Math")})

	h := s.Anchor(3)
	s.Frag(3, &fragment.CallableDeclaration{
		Kind:       ast.Function,
		Name:       h.Sym(3, "Twice"),
		Parameters: testutil.Params(h.Param(3, "n", "Int")),
		ReturnType: h.TypeIn(3, ": Int {", "Int"),
	})

	n := h.DeclIn(3, "n :", "n", intType, false)

	a4 := s.Anchor(4)
	sDecl := a4.DeclIn(4, "s =", "s", nil, false)
	call := a4.Call(4, "Sqare(n)", nil,
		a4.Expr(4, "Sqare", nil, &ast.Identifier{Symbol: a4.Sym(4, "Sqare")}),
		a4.Tuple(4, "(n)", a4.LocalIn(4, "(n)", "n", intType)))
	lhs4 := syntax.Leaf(a4.SymIn(4, "s =", "s"))
	s.Frag(4, &fragment.VariableBinding{Lhs: lhs4, Rhs: call})

	a5 := s.Anchor(5)
	tDecl := a5.DeclIn(5, "t =", "t", nil, false)
	ref := a5.Expr(5, "ApplyToEach", nil, &ast.Identifier{Symbol: a5.Sym(5, "ApplyToEach")})
	lhs5 := syntax.Leaf(a5.SymIn(5, "t =", "t"))
	s.Frag(5, &fragment.VariableBinding{Lhs: lhs5, Rhs: ref})

	a6 := s.Anchor(6)
	ret := a6.LocalIn(6, "s;", "s", nil)
	s.Frag(6, &fragment.ReturnStatement{Expr: ret})

	loc := &ast.Location{Offset: s.Start(3), Range: s.Find(3, "Twice").RelativeTo(s.Start(3))}
	twice := &ast.Callable{
		Name:      syntax.QualifiedName{Namespace: "Demo.Extra", Name: "Twice"},
		Kind:      ast.Function,
		Source:    extraURI,
		Signature: ast.Signature{Parameters: testutil.Tuple(testutil.Leaf(n)), ReturnType: intType},
		Location:  loc,
		Specializations: []*ast.Specialization{{
			Kind:     ast.Body,
			Source:   extraURI,
			Location: loc,
			Body: testutil.Scope([]*ast.LocalVariableDeclaration{n},
				s.Stmt(4, &ast.VariableDeclaration{Lhs: lhs4, Rhs: call}, sDecl),
				s.Stmt(5, &ast.VariableDeclaration{Lhs: lhs5, Rhs: ref}, tDecl),
				s.Stmt(6, &ast.ReturnStatement{Expr: ret})),
		}},
	}

	files := append(d.Compilation.Files(), s.File())

	namespaces := append([]*ast.Namespace(nil), d.Compilation.Namespaces...)
	namespaces = append(namespaces, &ast.Namespace{Name: "Demo.Extra", Callables: []*ast.Callable{twice}})

	comp := compilation.New(files, namespaces, []compilation.Directive{
		{Namespace: "Demo.Extra", Source: extraURI, Open: symbols.Open{Namespace: "Demo.Math"}},
	})

	return comp, s
}

func TestCodeActionsAt(t *testing.T) {
	comp, s := withExtra(testutil.NewDemo())

	t.Run("misspelled callable", func(t *testing.T) {
		actions := CodeActionsAt(comp, extraURI, s.Pos(4, "Sqare"))
		require.Len(t, actions, 1)

		assert.Equal(t, "Replace with Square", actions[0].Title)
		assert.False(t, actions[0].Preferred)
		assert.Equal(t, []FileEdits{{URI: extraURI, Edits: []TextEdit{{Range: s.Find(4, "Sqare"), NewText: "Square"}}}}, actions[0].Edits)
	})

	t.Run("callable in unopened namespace", func(t *testing.T) {
		actions := CodeActionsAt(comp, extraURI, s.Pos(5, "ApplyToEach"))
		require.NotEmpty(t, actions)

		insert := syntax.Position{Line: 2}
		assert.Equal(t, CodeAction{
			Title:     "open Microsoft.Quantum.Canon;",
			Preferred: true,
			Edits: []FileEdits{{URI: extraURI, Edits: []TextEdit{{
				Range:   syntax.Range{Start: insert, End: insert},
				NewText: "    open Microsoft.Quantum.Canon;\n",
			}}}},
		}, actions[0])
	})

	t.Run("resolved names", func(t *testing.T) {
		assert.Nil(t, CodeActionsAt(comp, extraURI, s.Pos(4, "n)")))
		assert.Nil(t, CodeActionsAt(comp, testutil.MainURI, testutil.NewDemo().Main.Pos(20, "H")))
	})

	t.Run("no occurrence", func(t *testing.T) {
		assert.Nil(t, CodeActionsAt(comp, extraURI, syntax.Position{Line: 2}))
	})
}

func TestOpenInsertionWithoutOpens(t *testing.T) {
	d := testutil.NewDemo()

	file, ok := d.Compilation.File(testutil.MathURI)
	require.True(t, ok)

	idx, ok := file.FragmentAt(d.Math.Pos(7, "return"), true)
	require.True(t, ok)

	pos, indent, ok := openInsertion(file, idx)
	require.True(t, ok)
	assert.Equal(t, syntax.Position{Line: 1}, pos)
	assert.Equal(t, "    ", indent)
}

func TestSimilarNames(t *testing.T) {
	d := testutil.NewDemo()

	file, ok := d.Compilation.File(testutil.MainURI)
	require.True(t, ok)

	got := similarNames(d.Compilation, file, "Demo", d.Main.Pos(22, "Rx"), "Prepar")
	require.NotEmpty(t, got)
	assert.Equal(t, "Prepare", got[0])
	assert.LessOrEqual(t, len(got), maxSuggestions)
}
