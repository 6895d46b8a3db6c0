// Package fragment models the compiler's partition of a source file into
// fragments (one statement or declaration header each) and the
// indentation-based tree that links them.
package fragment

import (
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Kind is the sum type of fragment variants. All ranges inside a kind are
// relative to the fragment's start.
type Kind interface {
	isKind()
}

// Parameter is one parameter in a callable declaration header. Type carries
// the source range of the written type.
type Parameter struct {
	Name  syntax.Symbol
	Type  *syntax.Type
	Items []Parameter
}

// Flatten returns the leaf parameters in source order.
func (p Parameter) Flatten() []Parameter {
	if len(p.Items) == 0 {
		if p.Name.Name == "" {
			return nil
		}

		return []Parameter{p}
	}

	var out []Parameter
	for _, item := range p.Items {
		out = append(out, item.Flatten()...)
	}

	return out
}

// NamespaceDeclaration opens "namespace Name {".
type NamespaceDeclaration struct {
	Name syntax.Symbol
}

// OpenDirective is "open Namespace;" or "open Namespace as Alias;".
type OpenDirective struct {
	Namespace syntax.Symbol
	Alias     *syntax.Symbol
}

// CallableDeclaration opens a function or operation.
type CallableDeclaration struct {
	Kind           ast.CallableKind
	Name           syntax.Symbol
	TypeParameters []syntax.Symbol
	Parameters     Parameter
	ReturnType     *syntax.Type
}

// TypeDefinition is "newtype Name = (...)".
type TypeDefinition struct {
	Name  syntax.Symbol
	Items Parameter
}

// SpecializationDeclaration opens "body", "adjoint", "controlled" or
// "controlled adjoint".
type SpecializationDeclaration struct {
	Kind ast.SpecializationKind
}

// ExpressionStatement is an expression evaluated for its effect.
type ExpressionStatement struct {
	Expr *ast.Expression
}

// ReturnStatement is "return expr;".
type ReturnStatement struct {
	Expr *ast.Expression
}

// FailStatement is "fail expr;".
type FailStatement struct {
	Expr *ast.Expression
}

// VariableBinding is "let" or "mutable".
type VariableBinding struct {
	Lhs     syntax.SymbolTuple
	Rhs     *ast.Expression
	Mutable bool
}

// ValueUpdate is "set lhs = rhs;".
type ValueUpdate struct {
	Lhs *ast.Expression
	Rhs *ast.Expression
}

// IfClause is "if cond {".
type IfClause struct {
	Condition *ast.Expression
}

// ElifClause is "elif cond {".
type ElifClause struct {
	Condition *ast.Expression
}

// ElseClause is "else {".
type ElseClause struct{}

// ForLoopIntro is "for x in xs {".
type ForLoopIntro struct {
	Variable syntax.SymbolTuple
	Iterable *ast.Expression
}

// WhileLoopIntro is "while cond {".
type WhileLoopIntro struct {
	Condition *ast.Expression
}

// RepeatIntro is "repeat {".
type RepeatIntro struct{}

// UntilSuccess is "until cond" optionally followed by "fixup {".
type UntilSuccess struct {
	Condition *ast.Expression
	HasFixup  bool
}

// AllocationIntro is "use q = Qubit() {" or "borrow ...".
type AllocationIntro struct {
	Kind    ast.AllocationKind
	Binding syntax.SymbolTuple
	Init    *ast.Expression
}

// WithinBlockIntro is "within {".
type WithinBlockIntro struct{}

// ApplyBlockIntro is "apply {".
type ApplyBlockIntro struct{}

// InvalidFragment is text the parser could not make sense of.
type InvalidFragment struct{}

func (*NamespaceDeclaration) isKind()      {}
func (*OpenDirective) isKind()             {}
func (*CallableDeclaration) isKind()       {}
func (*TypeDefinition) isKind()            {}
func (*SpecializationDeclaration) isKind() {}
func (*ExpressionStatement) isKind()       {}
func (*ReturnStatement) isKind()           {}
func (*FailStatement) isKind()             {}
func (*VariableBinding) isKind()           {}
func (*ValueUpdate) isKind()               {}
func (*IfClause) isKind()                  {}
func (*ElifClause) isKind()                {}
func (*ElseClause) isKind()                {}
func (*ForLoopIntro) isKind()              {}
func (*WhileLoopIntro) isKind()            {}
func (*RepeatIntro) isKind()               {}
func (*UntilSuccess) isKind()              {}
func (*AllocationIntro) isKind()           {}
func (*WithinBlockIntro) isKind()          {}
func (*ApplyBlockIntro) isKind()           {}
func (*InvalidFragment) isKind()           {}

// Expressions returns the expressions a fragment kind owns.
func Expressions(kind Kind) []*ast.Expression {
	var out []*ast.Expression

	add := func(exprs ...*ast.Expression) {
		for _, e := range exprs {
			if e != nil {
				out = append(out, e)
			}
		}
	}

	switch k := kind.(type) {
	case *ExpressionStatement:
		add(k.Expr)
	case *ReturnStatement:
		add(k.Expr)
	case *FailStatement:
		add(k.Expr)
	case *VariableBinding:
		add(k.Rhs)
	case *ValueUpdate:
		add(k.Lhs, k.Rhs)
	case *IfClause:
		add(k.Condition)
	case *ElifClause:
		add(k.Condition)
	case *ForLoopIntro:
		add(k.Iterable)
	case *WhileLoopIntro:
		add(k.Condition)
	case *UntilSuccess:
		add(k.Condition)
	case *AllocationIntro:
		add(k.Init)
	}

	return out
}

// OpensScope reports whether fragments of this kind are followed by an
// indented block.
func OpensScope(kind Kind) bool {
	switch k := kind.(type) {
	case *NamespaceDeclaration, *CallableDeclaration, *SpecializationDeclaration,
		*IfClause, *ElifClause, *ElseClause, *ForLoopIntro, *WhileLoopIntro,
		*RepeatIntro, *AllocationIntro, *WithinBlockIntro, *ApplyBlockIntro:
		return true
	case *UntilSuccess:
		return k.HasFixup
	}

	return false
}
