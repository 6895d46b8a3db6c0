package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

func strictDecode(t *testing.T, src string, out any) {
	t.Helper()

	dec := yaml.NewDecoder(strings.NewReader(src))
	dec.KnownFields(true)
	require.NoError(t, dec.Decode(out))
}

func decodeExpr(t *testing.T, src string) *ast.Expression {
	t.Helper()

	var ed exprDoc
	strictDecode(t, src, &ed)

	e, err := convertExpr(&ed)
	require.NoError(t, err)

	return e
}

func decodeStmt(t *testing.T, src string) *ast.Statement {
	t.Helper()

	var sd stmtDoc
	strictDecode(t, src, &sd)

	s, err := convertStmt(&sd)
	require.NoError(t, err)

	return s
}

func TestExpressionKinds(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, e *ast.Expression)
	}{
		{
			name: "identifier with type arguments",
			src:  "{kind: identifier, symbol: {name: Id}, global: A.Id, typeArgs: [Int, 'Qubit[]']}",
			check: func(t *testing.T, e *ast.Expression) {
				id := e.Kind.(*ast.Identifier)
				require.Len(t, id.TypeArgs, 2)
				assert.Equal(t, "Qubit[]", id.TypeArgs[1].String())
				assert.Equal(t, "A.Id", id.Global.String())
				assert.False(t, id.Local)
			},
		},
		{
			name: "sized array",
			src:  "{kind: sizedArray, type: 'Int[]', value: {kind: literal, literal: Int, text: '0'}, size: {kind: literal, literal: Int, text: '3'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.SizedArray)
				assert.Equal(t, "3", k.Size.Kind.(*ast.Literal).Value)
				assert.Equal(t, syntax.TypeArray, e.Type.Kind)
			},
		},
		{
			name: "new array keeps element type range",
			src:  "{kind: newArray, elementType: Qubit, elementTypeAt: [0, 4], length: {kind: literal, literal: Int, text: '2'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.NewArray)
				require.NotNil(t, k.ElementType.Range)
				assert.Equal(t, syntax.NewRange(0, 4, 0, 9), *k.ElementType.Range)
			},
		},
		{
			name: "range with step",
			src:  "{kind: range, start: {kind: missing}, step: {kind: literal, literal: Int, text: '2'}, end: {kind: invalid}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.RangeLiteral)
				assert.IsType(t, &ast.MissingExpr{}, k.Start.Kind)
				assert.IsType(t, &ast.InvalidExpr{}, k.End.Kind)
				assert.Len(t, e.Children(), 3)
			},
		},
		{
			name: "item access",
			src:  "{kind: itemAccess, array: {kind: array, items: [{kind: literal, literal: Int, text: '1'}]}, index: {kind: literal, literal: Int, text: '0'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.ItemAccess)
				assert.Len(t, k.Array.Kind.(*ast.ArrayLiteral).Items, 1)
			},
		},
		{
			name: "named item and unwrap",
			src:  "{kind: namedItem, expr: {kind: unwrap, expr: {kind: identifier, symbol: {name: c}, local: true}}, item: {name: Re, range: [0, 4, 0, 6]}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.NamedItemAccess)
				assert.Equal(t, "Re", k.Item.Name)
				assert.IsType(t, &ast.Unwrap{}, k.Expr.Kind)
			},
		},
		{
			name: "unary and conditional",
			src:  "{kind: conditional, condition: {kind: unary, op: not, operand: {kind: literal, literal: Bool, text: 'true'}}, then: {kind: literal, literal: Pauli, text: PauliX}, else: {kind: literal, literal: Result, text: One}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.ConditionalExpr)
				assert.Equal(t, "not", k.Condition.Kind.(*ast.UnaryOp).Op)
				assert.Equal(t, ast.PauliLiteral, k.Then.Kind.(*ast.Literal).Kind)
				assert.Equal(t, ast.ResultLiteral, k.Else.Kind.(*ast.Literal).Kind)
			},
		},
		{
			name: "copy and update",
			src:  "{kind: copyAndUpdate, expr: {kind: identifier, symbol: {name: xs}, local: true}, accessor: {kind: literal, literal: Int, text: '0'}, value: {kind: literal, literal: Double, text: '1.0'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.CopyAndUpdate)
				assert.Equal(t, ast.DoubleLiteral, k.Value.Kind.(*ast.Literal).Kind)
			},
		},
		{
			name: "functor applications",
			src:  "{kind: call, callee: {kind: controlled, inner: {kind: adjoint, inner: {kind: identifier, symbol: {name: Op}}}}, argument: {kind: tuple}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.Call)
				ctl := k.Callee.Kind.(*ast.ControlledApplication)
				assert.IsType(t, &ast.AdjointApplication{}, ctl.Inner.Kind)
				assert.Empty(t, k.Argument.Kind.(*ast.ValueTuple).Items)
			},
		},
		{
			name: "operation lambda",
			src:  "{kind: lambda, lambda: operation, params: {items: [{name: a, range: [0, 1, 0, 2]}, {name: b, range: [0, 4, 0, 5]}]}, body: {kind: literal, literal: Unit, text: '()'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.Lambda)
				assert.Equal(t, ast.OperationLambda, k.Kind)

				params := k.Params.Flatten()
				require.Len(t, params, 2)
				assert.Equal(t, "b", params[1].Name)
			},
		},
		{
			name: "register allocation",
			src:  "{kind: allocation, type: 'Qubit[]', size: {kind: literal, literal: Int, text: '4'}}",
			check: func(t *testing.T, e *ast.Expression) {
				k := e.Kind.(*ast.Allocation)
				require.NotNil(t, k.Size)
				assert.Len(t, e.Children(), 1)
			},
		},
		{
			name: "binary keeps range",
			src:  "{kind: binary, op: '+', range: [0, 2, 0, 7], left: {kind: literal, literal: BigInt, text: 1L}, right: {kind: literal, literal: String, text: x}}",
			check: func(t *testing.T, e *ast.Expression) {
				require.NotNil(t, e.Range)
				assert.Equal(t, syntax.NewRange(0, 2, 0, 7), *e.Range)
				assert.Equal(t, ast.BigIntLiteral, e.Kind.(*ast.BinaryOp).Left.Kind.(*ast.Literal).Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeExpr(t, tt.src))
		})
	}
}

func TestExpressionKindErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"literal kind", "{kind: literal, literal: Complex, text: '1'}"},
		{"lambda kind", "{kind: lambda, lambda: method, params: {name: x}}"},
		{"nested kind", "{kind: tuple, items: [{kind: spread}]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ed exprDoc
			strictDecode(t, tt.src, &ed)

			_, err := convertExpr(&ed)
			assert.ErrorIs(t, err, ErrUnknownKind)
		})
	}
}

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, s *ast.Statement)
	}{
		{
			name: "conditional with default",
			src: `kind: if
location: {offset: [1, 4], range: [0, 0, 4, 5]}
cases:
  - condition: {kind: literal, literal: Bool, text: 'true'}
    block:
      location: {offset: [1, 4], range: [0, 0, 2, 5]}
      body: {statements: [{kind: fail, expr: {kind: literal, literal: String, text: no}}]}
default:
  location: {offset: [2, 6], range: [0, 0, 2, 5]}
  body: {}
`,
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.Conditional)
				require.Len(t, k.Cases, 1)
				require.NotNil(t, k.Default)
				assert.Equal(t, syntax.Position{Line: 2, Column: 6}, k.Default.Location.Offset)
				assert.Len(t, s.ChildScopes(), 2)
			},
		},
		{
			name: "while loop",
			src:  "{kind: while, condition: {kind: literal, literal: Bool, text: 'false'}, body: {statements: []}}",
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.WhileLoop)
				assert.NotNil(t, k.Body)
			},
		},
		{
			name: "repeat with fixup",
			src: `kind: repeat
location: {offset: [3, 8]}
repeat: {location: {offset: [3, 8]}, body: {known: [{name: r, type: Result, position: [4, 12], range: [0, 4, 0, 5]}]}}
until: {kind: identifier, symbol: {name: done}, local: true}
fixup: {location: {offset: [6, 23]}, body: {}}
`,
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.RepeatUntil)
				require.NotNil(t, k.Fixup)
				require.Len(t, k.Repeat.Body.KnownSymbols, 1)
				assert.Equal(t, syntax.TypeResult, k.Repeat.Body.KnownSymbols[0].Type.Kind)
				assert.True(t, s.Location.Range.IsZero())
			},
		},
		{
			name: "borrow",
			src:  "{kind: allocation, allocate: borrow, bind: {name: q}, init: {kind: allocation}, body: {}}",
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.AllocationScope)
				assert.Equal(t, ast.Borrow, k.Kind)
				assert.Equal(t, "q", k.Binding.Symbol.Name)
			},
		},
		{
			name: "conjugation",
			src:  "{kind: conjugation, outer: {body: {}}, inner: {body: {}}}",
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.Conjugation)
				assert.NotNil(t, k.Outer.Body)
				assert.NotNil(t, k.Inner.Body)
			},
		},
		{
			name: "tuple binding",
			src:  "{kind: let, bind: {items: [{name: a}, {items: [{name: b}, {name: _}]}]}, rhs: {kind: tuple}}",
			check: func(t *testing.T, s *ast.Statement) {
				k := s.Kind.(*ast.VariableDeclaration)
				syms := k.Lhs.Flatten()
				require.Len(t, syms, 2, "discards are skipped")
				assert.Equal(t, "b", syms[1].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeStmt(t, tt.src))
		})
	}
}

func TestStatementKindErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		unknown bool
	}{
		{"allocation kind", "{kind: allocation, allocate: steal, bind: {name: q}}", true},
		{"conjugation without apply", "{kind: conjugation, outer: {body: {}}}", false},
		{"repeat without body", "{kind: repeat, until: {kind: missing}}", false},
		{"let without binding", "{kind: let, rhs: {kind: missing}}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sd stmtDoc
			strictDecode(t, tt.src, &sd)

			_, err := convertStmt(&sd)
			require.Error(t, err)

			if tt.unknown {
				assert.ErrorIs(t, err, ErrUnknownKind)
			}
		})
	}
}
