package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

func rng(sl, sc, el, ec int) *syntax.Range {
	r := syntax.NewRange(sl, sc, el, ec)
	return &r
}

func ident(name string, r *syntax.Range) *Expression {
	return &Expression{Kind: &Identifier{Symbol: syntax.Symbol{Name: name}, Local: true}, Range: r}
}

func TestExpressionWalkVisitsInSourceOrder(t *testing.T) {
	call := &Expression{
		Kind: &Call{
			Callee: ident("f", rng(0, 0, 0, 1)),
			Argument: &Expression{
				Kind:  &ValueTuple{Items: []*Expression{ident("a", rng(0, 2, 0, 3)), ident("b", rng(0, 5, 0, 6))}},
				Range: rng(0, 1, 0, 7),
			},
		},
		Range: rng(0, 0, 0, 7),
	}

	var names []string
	call.Walk(func(e *Expression) bool {
		if id, ok := e.Kind.(*Identifier); ok {
			names = append(names, id.Symbol.Name)
		}

		return true
	})

	assert.Equal(t, []string{"f", "a", "b"}, names)
}

func TestExpressionWalkCanPrune(t *testing.T) {
	lambda := &Expression{Kind: &Lambda{Body: ident("x", rng(0, 5, 0, 6))}}

	visited := 0
	lambda.Walk(func(e *Expression) bool {
		visited++
		return false
	})

	assert.Equal(t, 1, visited)
}

func TestStatementExpressionsAnchorConditionsAtBlocks(t *testing.T) {
	stmt := &Statement{
		Location: &Location{Offset: syntax.Position{Line: 3, Column: 4}},
		Kind: &Conditional{
			Cases: []ConditionalBlock{
				{
					Condition: ident("c", rng(0, 3, 0, 4)),
					Block:     Block{Body: &Scope{}, Location: &Location{Offset: syntax.Position{Line: 3, Column: 4}}},
				},
				{
					Condition: ident("d", rng(0, 7, 0, 8)),
					Block:     Block{Body: &Scope{}, Location: &Location{Offset: syntax.Position{Line: 5, Column: 6}}},
				},
			},
			Default: &Block{Body: &Scope{}, Location: &Location{Offset: syntax.Position{Line: 7, Column: 6}}},
		},
	}

	exprs := stmt.Expressions()
	require.Len(t, exprs, 2)

	second, ok := exprs[1].AbsoluteRange()
	require.True(t, ok)
	assert.Equal(t, syntax.NewRange(5, 13, 5, 14), second)
	assert.Len(t, stmt.ChildScopes(), 3)
}

func TestUnlocatedStatementOwnsNoExpressions(t *testing.T) {
	stmt := &Statement{Kind: &ExpressionStatement{Expr: ident("x", rng(0, 0, 0, 1))}}
	assert.Empty(t, stmt.Expressions())
}

func TestScopeWalkDescendsIntoNestedScopes(t *testing.T) {
	inner := &Statement{Kind: &ReturnStatement{}}
	loop := &Statement{Kind: &ForLoop{Body: &Scope{Statements: []*Statement{inner}}}}
	last := &Statement{Kind: &FailStatement{}}
	scope := &Scope{Statements: []*Statement{loop, last}}

	var seen []*Statement
	scope.Walk(func(s *Statement) { seen = append(seen, s) })

	assert.Equal(t, []*Statement{loop, inner, last}, seen)
}

func TestLocationExtent(t *testing.T) {
	loc := &Location{Offset: syntax.Position{Line: 2, Column: 4}}
	_, ok := loc.Extent()
	assert.False(t, ok)

	loc.Range = syntax.NewRange(0, 0, 3, 5)
	extent, ok := loc.Extent()
	require.True(t, ok)
	assert.Equal(t, syntax.NewRange(2, 4, 5, 5), extent)
}

func TestParamTupleFlatten(t *testing.T) {
	a := &LocalVariableDeclaration{Name: "a"}
	b := &LocalVariableDeclaration{Name: "b"}
	c := &LocalVariableDeclaration{Name: "c"}
	params := ParamTuple{Items: []ParamTuple{{Decl: a}, {Items: []ParamTuple{{Decl: b}, {Decl: c}}}}}

	assert.Equal(t, []*LocalVariableDeclaration{a, b, c}, params.Flatten())
}
