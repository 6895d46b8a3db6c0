package snapshot

import (
	"fmt"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

var literalKinds = map[string]ast.LiteralKind{
	"Int":    ast.IntLiteral,
	"BigInt": ast.BigIntLiteral,
	"Double": ast.DoubleLiteral,
	"Bool":   ast.BoolLiteral,
	"String": ast.StringLiteral,
	"Result": ast.ResultLiteral,
	"Pauli":  ast.PauliLiteral,
	"Unit":   ast.UnitLiteral,
}

// exprs converts several optional expressions at once, stopping at the
// first error.
type exprs struct {
	err error
}

func (c *exprs) one(ed *exprDoc) *ast.Expression {
	if c.err != nil || ed == nil {
		return nil
	}

	e, err := convertExpr(ed)
	if err != nil {
		c.err = err
	}

	return e
}

func (c *exprs) many(eds []*exprDoc) []*ast.Expression {
	out := make([]*ast.Expression, 0, len(eds))
	for _, ed := range eds {
		if e := c.one(ed); e != nil {
			out = append(out, e)
		}
	}

	return out
}

func convertExpr(ed *exprDoc) (*ast.Expression, error) {
	if ed == nil {
		return nil, nil
	}

	typ, err := parseType(ed.Type)
	if err != nil {
		return nil, fmt.Errorf("%s expression: %w", ed.Kind, err)
	}

	r, err := ed.Range.optional()
	if err != nil {
		return nil, fmt.Errorf("%s expression: %w", ed.Kind, err)
	}

	kind, err := convertExprKind(ed)
	if err != nil {
		return nil, err
	}

	return &ast.Expression{Kind: kind, Type: typ, Range: r}, nil
}

func convertExprKind(ed *exprDoc) (ast.ExpressionKind, error) {
	var c exprs

	var kind ast.ExpressionKind

	switch ed.Kind {
	case "identifier":
		id, err := convertIdentifier(ed)
		if err != nil {
			return nil, err
		}

		kind = id
	case "literal":
		lk, ok := literalKinds[ed.Literal]
		if !ok {
			return nil, fmt.Errorf("%w: literal %q", ErrUnknownKind, ed.Literal)
		}

		kind = &ast.Literal{Kind: lk, Value: ed.Text}
	case "tuple":
		kind = &ast.ValueTuple{Items: c.many(ed.Items)}
	case "array":
		kind = &ast.ArrayLiteral{Items: c.many(ed.Items)}
	case "sizedArray":
		kind = &ast.SizedArray{Value: c.one(ed.Value), Size: c.one(ed.Size)}
	case "newArray":
		elem, err := parseTypeAt(ed.ElementType, ed.ElementTypeAt)
		if err != nil {
			return nil, fmt.Errorf("new array element type: %w", err)
		}

		kind = &ast.NewArray{ElementType: elem, Length: c.one(ed.Length)}
	case "range":
		kind = &ast.RangeLiteral{Start: c.one(ed.Start), Step: c.one(ed.Step), End: c.one(ed.End)}
	case "itemAccess":
		kind = &ast.ItemAccess{Array: c.one(ed.Array), Index: c.one(ed.Index)}
	case "namedItem":
		item, err := convertSymbol(ed.Item)
		if err != nil {
			return nil, fmt.Errorf("named item: %w", err)
		}

		kind = &ast.NamedItemAccess{Expr: c.one(ed.Expr), Item: item}
	case "unwrap":
		kind = &ast.Unwrap{Expr: c.one(ed.Expr)}
	case "unary":
		kind = &ast.UnaryOp{Op: ed.Op, Operand: c.one(ed.Operand)}
	case "binary":
		kind = &ast.BinaryOp{Op: ed.Op, Left: c.one(ed.Left), Right: c.one(ed.Right)}
	case "conditional":
		kind = &ast.ConditionalExpr{Condition: c.one(ed.Condition), Then: c.one(ed.Then), Else: c.one(ed.Else)}
	case "copyAndUpdate":
		kind = &ast.CopyAndUpdate{Expr: c.one(ed.Expr), Accessor: c.one(ed.Accessor), Value: c.one(ed.Value)}
	case "call":
		kind = &ast.Call{Callee: c.one(ed.Callee), Argument: c.one(ed.Argument)}
	case "adjoint":
		kind = &ast.AdjointApplication{Inner: c.one(ed.Inner)}
	case "controlled":
		kind = &ast.ControlledApplication{Inner: c.one(ed.Inner)}
	case "lambda":
		lambda, err := convertLambda(ed)
		if err != nil {
			return nil, err
		}

		kind = lambda
	case "allocation":
		kind = &ast.Allocation{Size: c.one(ed.Size), Items: c.many(ed.Items)}
	case "missing":
		kind = &ast.MissingExpr{}
	case "invalid":
		kind = &ast.InvalidExpr{}
	default:
		return nil, fmt.Errorf("%w: expression %q", ErrUnknownKind, ed.Kind)
	}

	if c.err != nil {
		return nil, c.err
	}

	return kind, nil
}

func convertIdentifier(ed *exprDoc) (*ast.Identifier, error) {
	sym, err := convertSymbol(ed.Symbol)
	if err != nil {
		return nil, fmt.Errorf("identifier: %w", err)
	}

	id := &ast.Identifier{Symbol: sym, Local: ed.Local}

	if ed.Global != "" {
		qn := syntax.ParseQualifiedName(ed.Global)
		id.Global = &qn
	}

	for _, s := range ed.TypeArgs {
		t, err := syntax.ParseType(s)
		if err != nil {
			return nil, fmt.Errorf("identifier %s type argument: %w", sym, err)
		}

		id.TypeArgs = append(id.TypeArgs, t)
	}

	return id, nil
}

func convertLambda(ed *exprDoc) (*ast.Lambda, error) {
	var kind ast.LambdaKind

	switch ed.Lambda {
	case "", "function":
		kind = ast.FunctionLambda
	case "operation":
		kind = ast.OperationLambda
	default:
		return nil, fmt.Errorf("%w: lambda %q", ErrUnknownKind, ed.Lambda)
	}

	params, err := convertTuple(ed.Params)
	if err != nil {
		return nil, fmt.Errorf("lambda parameters: %w", err)
	}

	body, err := convertExpr(ed.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Lambda{Kind: kind, Params: params, Body: body}, nil
}
