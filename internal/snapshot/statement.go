package snapshot

import (
	"fmt"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
)

var allocationKinds = map[string]ast.AllocationKind{
	"":       ast.Use,
	"use":    ast.Use,
	"borrow": ast.Borrow,
}

func convertScope(sd *scopeDoc) (*ast.Scope, error) {
	if sd == nil {
		return nil, nil
	}

	known, err := convertDecls(sd.Known)
	if err != nil {
		return nil, err
	}

	scope := &ast.Scope{KnownSymbols: known}

	for i := range sd.Statements {
		stmt, err := convertStmt(&sd.Statements[i])
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}

		scope.Statements = append(scope.Statements, stmt)
	}

	return scope, nil
}

func convertBlock(bd *blockDoc) (*ast.Block, error) {
	if bd == nil {
		return nil, nil
	}

	loc, err := convertLocation(bd.Location)
	if err != nil {
		return nil, err
	}

	body, err := convertScope(bd.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Block{Body: body, Location: loc}, nil
}

// mustBlock converts a block that the statement kind requires.
func mustBlock(bd *blockDoc, what string) (ast.Block, error) {
	if bd == nil {
		return ast.Block{}, fmt.Errorf("missing %s block", what)
	}

	b, err := convertBlock(bd)
	if err != nil {
		return ast.Block{}, fmt.Errorf("%s block: %w", what, err)
	}

	return *b, nil
}

func convertStmt(sd *stmtDoc) (*ast.Statement, error) {
	loc, err := convertLocation(sd.Location)
	if err != nil {
		return nil, err
	}

	decls, err := convertDecls(sd.Declarations)
	if err != nil {
		return nil, err
	}

	kind, err := convertStmtKind(sd)
	if err != nil {
		return nil, err
	}

	return &ast.Statement{Kind: kind, Location: loc, SymbolDeclarations: decls}, nil
}

func convertStmtKind(sd *stmtDoc) (ast.StatementKind, error) {
	var c exprs

	switch sd.Kind {
	case "expression":
		k := &ast.ExpressionStatement{Expr: c.one(sd.Expr)}
		return k, c.err
	case "return":
		k := &ast.ReturnStatement{Expr: c.one(sd.Expr)}
		return k, c.err
	case "fail":
		k := &ast.FailStatement{Expr: c.one(sd.Expr)}
		return k, c.err
	case "let":
		lhs, err := convertTuple(sd.Bind)
		if err != nil {
			return nil, err
		}

		k := &ast.VariableDeclaration{Lhs: lhs, Rhs: c.one(sd.Rhs), Mutable: sd.Mutable}

		return k, c.err
	case "set":
		k := &ast.ValueUpdate{Lhs: c.one(sd.Lhs), Rhs: c.one(sd.Rhs)}
		return k, c.err
	case "if":
		return convertConditional(sd)
	case "for":
		v, err := convertTuple(sd.Bind)
		if err != nil {
			return nil, err
		}

		body, err := convertScope(sd.Body)
		if err != nil {
			return nil, err
		}

		k := &ast.ForLoop{Variable: v, Iterable: c.one(sd.Iterable), Body: body}

		return k, c.err
	case "while":
		body, err := convertScope(sd.Body)
		if err != nil {
			return nil, err
		}

		k := &ast.WhileLoop{Condition: c.one(sd.Condition), Body: body}

		return k, c.err
	case "repeat":
		return convertRepeat(sd)
	case "allocation":
		return convertAllocation(sd)
	case "conjugation":
		outer, err := mustBlock(sd.Outer, "within")
		if err != nil {
			return nil, err
		}

		inner, err := mustBlock(sd.Inner, "apply")
		if err != nil {
			return nil, err
		}

		return &ast.Conjugation{Outer: outer, Inner: inner}, nil
	}

	return nil, fmt.Errorf("%w: statement %q", ErrUnknownKind, sd.Kind)
}

func convertConditional(sd *stmtDoc) (*ast.Conditional, error) {
	k := &ast.Conditional{}

	for i := range sd.Cases {
		cd := &sd.Cases[i]

		cond, err := convertExpr(cd.Condition)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}

		b, err := convertBlock(&cd.Block)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}

		k.Cases = append(k.Cases, ast.ConditionalBlock{Condition: cond, Block: *b})
	}

	def, err := convertBlock(sd.Default)
	if err != nil {
		return nil, fmt.Errorf("else block: %w", err)
	}

	k.Default = def

	return k, nil
}

func convertRepeat(sd *stmtDoc) (*ast.RepeatUntil, error) {
	repeat, err := mustBlock(sd.Repeat, "repeat")
	if err != nil {
		return nil, err
	}

	until, err := convertExpr(sd.Until)
	if err != nil {
		return nil, err
	}

	fixup, err := convertBlock(sd.Fixup)
	if err != nil {
		return nil, fmt.Errorf("fixup block: %w", err)
	}

	return &ast.RepeatUntil{Repeat: repeat, Until: until, Fixup: fixup}, nil
}

func convertAllocation(sd *stmtDoc) (*ast.AllocationScope, error) {
	ak, ok := allocationKinds[sd.Allocate]
	if !ok {
		return nil, fmt.Errorf("%w: allocation %q", ErrUnknownKind, sd.Allocate)
	}

	binding, err := convertTuple(sd.Bind)
	if err != nil {
		return nil, err
	}

	initExpr, err := convertExpr(sd.Init)
	if err != nil {
		return nil, err
	}

	body, err := convertScope(sd.Body)
	if err != nil {
		return nil, err
	}

	return &ast.AllocationScope{Kind: ak, Binding: binding, Init: initExpr, Body: body}, nil
}
