// Package ast defines the typed tree produced by the compiler: expressions,
// statements, scopes and the callables and types that own them. Every node
// is an immutable snapshot; the query engine never mutates it.
package ast

import "github.com/CWBudde/go-qs-lsp/internal/syntax"

// Expression is a typed expression node. Range is relative to the enclosing
// statement or block header and may be nil for synthesized nodes.
type Expression struct {
	Kind  ExpressionKind
	Type  *syntax.Type
	Range *syntax.Range
}

// ExpressionKind is the sum type of expression variants.
type ExpressionKind interface {
	isExpressionKind()
}

// LiteralKind discriminates literal values.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	BigIntLiteral
	DoubleLiteral
	BoolLiteral
	StringLiteral
	ResultLiteral
	PauliLiteral
	UnitLiteral
)

// Identifier refers to a local variable, a global callable, or a type
// constructor. Global is set once the compiler has resolved a global
// reference; Local marks a resolved local variable.
type Identifier struct {
	Symbol   syntax.Symbol
	TypeArgs []*syntax.Type
	Global   *syntax.QualifiedName
	Local    bool
}

// Literal is a constant value.
type Literal struct {
	Kind  LiteralKind
	Value string
}

// ValueTuple is a parenthesized tuple of expressions. Call arguments are
// always a ValueTuple covering the parentheses.
type ValueTuple struct {
	Items []*Expression
}

// ArrayLiteral is "[a, b, c]".
type ArrayLiteral struct {
	Items []*Expression
}

// SizedArray is "[value, size = n]".
type SizedArray struct {
	Value *Expression
	Size  *Expression
}

// NewArray is "new T[n]". ElementType keeps the source range of T.
type NewArray struct {
	ElementType *syntax.Type
	Length      *Expression
}

// RangeLiteral is "start..step..end"; Step may be nil.
type RangeLiteral struct {
	Start *Expression
	Step  *Expression
	End   *Expression
}

// ItemAccess is "array[index]".
type ItemAccess struct {
	Array *Expression
	Index *Expression
}

// NamedItemAccess is "expr::Item".
type NamedItemAccess struct {
	Expr *Expression
	Item syntax.Symbol
}

// Unwrap is "expr!".
type Unwrap struct {
	Expr *Expression
}

// UnaryOp is a prefix operator application.
type UnaryOp struct {
	Op      string
	Operand *Expression
}

// BinaryOp is an infix operator application.
type BinaryOp struct {
	Op    string
	Left  *Expression
	Right *Expression
}

// ConditionalExpr is "cond ? a | b".
type ConditionalExpr struct {
	Condition *Expression
	Then      *Expression
	Else      *Expression
}

// CopyAndUpdate is "expr w/ accessor <- value".
type CopyAndUpdate struct {
	Expr     *Expression
	Accessor *Expression
	Value    *Expression
}

// Call applies Callee to Argument.
type Call struct {
	Callee   *Expression
	Argument *Expression
}

// AdjointApplication is "Adjoint expr".
type AdjointApplication struct {
	Inner *Expression
}

// ControlledApplication is "Controlled expr".
type ControlledApplication struct {
	Inner *Expression
}

// LambdaKind tells function lambdas (->) from operation lambdas (=>).
type LambdaKind int

const (
	FunctionLambda LambdaKind = iota
	OperationLambda
)

// Lambda is "params -> body" or "params => body".
type Lambda struct {
	Kind   LambdaKind
	Params syntax.SymbolTuple
	Body   *Expression
}

// Allocation is the "Qubit()" or "Qubit[n]" initializer of a use or
// borrow statement. Size is nil for a single qubit.
type Allocation struct {
	Size  *Expression
	Items []*Expression
}

// MissingExpr is the "_" placeholder of a partial application or an argument
// slot not typed yet.
type MissingExpr struct{}

// InvalidExpr stands in for text that failed to parse.
type InvalidExpr struct{}

func (*Identifier) isExpressionKind()            {}
func (*Literal) isExpressionKind()               {}
func (*ValueTuple) isExpressionKind()            {}
func (*ArrayLiteral) isExpressionKind()          {}
func (*SizedArray) isExpressionKind()            {}
func (*NewArray) isExpressionKind()              {}
func (*RangeLiteral) isExpressionKind()          {}
func (*ItemAccess) isExpressionKind()            {}
func (*NamedItemAccess) isExpressionKind()       {}
func (*Unwrap) isExpressionKind()                {}
func (*UnaryOp) isExpressionKind()               {}
func (*BinaryOp) isExpressionKind()              {}
func (*ConditionalExpr) isExpressionKind()       {}
func (*CopyAndUpdate) isExpressionKind()         {}
func (*Call) isExpressionKind()                  {}
func (*AdjointApplication) isExpressionKind()    {}
func (*ControlledApplication) isExpressionKind() {}
func (*Lambda) isExpressionKind()                {}
func (*Allocation) isExpressionKind()            {}
func (*MissingExpr) isExpressionKind()           {}
func (*InvalidExpr) isExpressionKind()           {}

// Children returns the direct sub-expressions of e in source order.
func (e *Expression) Children() []*Expression {
	if e == nil {
		return nil
	}

	switch k := e.Kind.(type) {
	case *ValueTuple:
		return k.Items
	case *ArrayLiteral:
		return k.Items
	case *SizedArray:
		return nonNil(k.Value, k.Size)
	case *NewArray:
		return nonNil(k.Length)
	case *RangeLiteral:
		return nonNil(k.Start, k.Step, k.End)
	case *ItemAccess:
		return nonNil(k.Array, k.Index)
	case *NamedItemAccess:
		return nonNil(k.Expr)
	case *Unwrap:
		return nonNil(k.Expr)
	case *UnaryOp:
		return nonNil(k.Operand)
	case *BinaryOp:
		return nonNil(k.Left, k.Right)
	case *ConditionalExpr:
		return nonNil(k.Condition, k.Then, k.Else)
	case *CopyAndUpdate:
		return nonNil(k.Expr, k.Accessor, k.Value)
	case *Call:
		return nonNil(k.Callee, k.Argument)
	case *AdjointApplication:
		return nonNil(k.Inner)
	case *ControlledApplication:
		return nonNil(k.Inner)
	case *Lambda:
		return nonNil(k.Body)
	case *Allocation:
		if k.Size != nil {
			return nonNil(k.Size)
		}

		return k.Items
	}

	return nil
}

func nonNil(exprs ...*Expression) []*Expression {
	out := exprs[:0:0]
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}

	return out
}

// Walk visits e and its descendants depth-first in source order. Returning
// false from fn skips the children of the visited node.
func (e *Expression) Walk(fn func(*Expression) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, child := range e.Children() {
		child.Walk(fn)
	}
}
