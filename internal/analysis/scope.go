// Package analysis answers position-based questions about a compiled
// snapshot: visible locals, the symbol under the cursor, references,
// completions and signature help. Every function is a pure read of its
// inputs and is safe to call concurrently on the same snapshot.
package analysis

import (
	"github.com/tliron/commonlog"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

var logger = commonlog.GetLogger("qs-lsp.analysis")

// LocalsInScope returns the local declarations visible at pos inside scope,
// outer scopes first and in declaration order within a scope. With inclusive
// set, a position inside an expression also sees the parameters of the
// lambdas enclosing it, and declarations starting exactly at pos are kept.
func LocalsInScope(scope *ast.Scope, pos syntax.Position, inclusive bool) []*ast.LocalVariableDeclaration {
	var acc []*ast.LocalVariableDeclaration

	collectLocals(scope, pos, inclusive, &acc)

	return visibleAt(dedupeLocals(acc), pos, inclusive)
}

func collectLocals(scope *ast.Scope, pos syntax.Position, inclusive bool, acc *[]*ast.LocalVariableDeclaration) {
	if scope == nil {
		return
	}

	*acc = append(*acc, scope.KnownSymbols...)

	before := statementsBefore(scope.Statements, pos)
	if len(before) == 0 {
		return
	}

	for _, stmt := range before[:len(before)-1] {
		*acc = append(*acc, stmt.SymbolDeclarations...)
	}

	last := before[len(before)-1]

	ext, hasExtent := last.Location.Extent()
	open := !hasExtent || ext.Contains(pos)

	// A branch or until condition lies inside the statement but outside its
	// bodies; its lambda parameters come on top of the scope it opens.
	var (
		params []*ast.LocalVariableDeclaration
		inExpr bool
	)

	if inclusive {
		params, inExpr = lambdaParamsAt(last, pos)
	}

	if open {
		if child, ok := childScopeAt(last, pos); ok {
			collectLocals(child, pos, inclusive, acc)
			*acc = append(*acc, params...)

			return
		}
	}

	if inExpr {
		*acc = append(*acc, params...)
		return
	}

	if open {
		if body, ok := loopBody(last); ok {
			*acc = append(*acc, body.KnownSymbols...)
			return
		}
	}

	*acc = append(*acc, last.SymbolDeclarations...)
}

// statementsBefore returns the located statements starting before pos.
// Unlocated statements always count as following pos.
func statementsBefore(stmts []*ast.Statement, pos syntax.Position) []*ast.Statement {
	var out []*ast.Statement

	for _, stmt := range stmts {
		if offset, ok := stmt.Offset(); ok && offset.Before(pos) {
			out = append(out, stmt)
		}
	}

	return out
}

// childScopeAt returns the nested scope of stmt that has started before pos.
func childScopeAt(stmt *ast.Statement, pos syntax.Position) (*ast.Scope, bool) {
	switch k := stmt.Kind.(type) {
	case *ast.Conditional:
		block, ok := currentBranch(k, pos)
		if !ok {
			return nil, false
		}

		return block.Body, block.Body != nil
	case *ast.ForLoop:
		return startedScope(k.Body, pos)
	case *ast.WhileLoop:
		return startedScope(k.Body, pos)
	case *ast.AllocationScope:
		return startedScope(k.Body, pos)
	case *ast.RepeatUntil:
		if !blockStarted(k.Repeat, pos) || k.Repeat.Body == nil {
			return nil, false
		}

		return retryScope(k), true
	case *ast.Conjugation:
		if blockStarted(k.Inner, pos) && k.Inner.Body != nil {
			return k.Inner.Body, true
		}

		if blockStarted(k.Outer, pos) && k.Outer.Body != nil {
			return k.Outer.Body, true
		}
	}

	return nil, false
}

// currentBranch picks the conditional block whose header is the nearest one
// preceding pos. A default block counts like any other block, so a
// misplaced else is chosen only when it is the closest header.
func currentBranch(c *ast.Conditional, pos syntax.Position) (*ast.Block, bool) {
	var (
		best  *ast.Block
		start syntax.Position
	)

	consider := func(b *ast.Block) {
		if b == nil || b.Location == nil || !b.Location.Offset.Before(pos) {
			return
		}

		if best == nil || !b.Location.Offset.Before(start) {
			best, start = b, b.Location.Offset
		}
	}

	for i := range c.Cases {
		consider(&c.Cases[i].Block)
	}

	consider(c.Default)

	return best, best != nil
}

func blockStarted(b ast.Block, pos syntax.Position) bool {
	return b.Location != nil && b.Location.Offset.Before(pos)
}

// startedScope returns body when its first located statement starts before
// pos.
func startedScope(body *ast.Scope, pos syntax.Position) (*ast.Scope, bool) {
	if body == nil {
		return nil, false
	}

	for _, stmt := range body.Statements {
		if offset, ok := stmt.Offset(); ok {
			return body, offset.Before(pos)
		}
	}

	return nil, false
}

// retryScope joins the repeat and fixup bodies of a retry loop into one
// scope, so fixup code sees the repeat body's bindings and vice versa.
func retryScope(k *ast.RepeatUntil) *ast.Scope {
	joined := &ast.Scope{KnownSymbols: k.Repeat.Body.KnownSymbols}
	joined.Statements = append(joined.Statements, k.Repeat.Body.Statements...)

	if k.Fixup != nil && k.Fixup.Body != nil {
		joined.Statements = append(joined.Statements, k.Fixup.Body.Statements...)
	}

	return joined
}

func loopBody(stmt *ast.Statement) (*ast.Scope, bool) {
	switch k := stmt.Kind.(type) {
	case *ast.ForLoop:
		return k.Body, k.Body != nil
	case *ast.WhileLoop:
		return k.Body, k.Body != nil
	case *ast.AllocationScope:
		return k.Body, k.Body != nil
	}

	return nil, false
}

// lambdaParamsAt returns the parameters of every lambda in stmt's own
// expressions whose range contains pos. The second result reports whether
// pos lies inside one of the expressions at all.
func lambdaParamsAt(stmt *ast.Statement, pos syntax.Position) ([]*ast.LocalVariableDeclaration, bool) {
	inside := false

	var out []*ast.LocalVariableDeclaration

	for _, anchored := range stmt.Expressions() {
		r, ok := anchored.AbsoluteRange()
		if !ok || !r.ContainsInclusive(pos) {
			continue
		}

		inside = true
		base := anchored.Base

		anchored.Expr.Walk(func(e *ast.Expression) bool {
			lambda, ok := e.Kind.(*ast.Lambda)
			if !ok || e.Range == nil {
				return true
			}

			if !e.Range.Offset(base).ContainsInclusive(pos) {
				return false
			}

			out = append(out, lambdaParams(lambda, e.Type, base)...)

			return true
		})
	}

	return out, inside
}

func lambdaParams(lambda *ast.Lambda, typ *syntax.Type, base syntax.Position) []*ast.LocalVariableDeclaration {
	var input *syntax.Type
	if typ != nil && (typ.Kind == syntax.TypeFunction || typ.Kind == syntax.TypeOperation) && len(typ.Items) == 2 {
		input = typ.Items[0]
	}

	var out []*ast.LocalVariableDeclaration

	bindTuple(lambda.Params, input, func(sym syntax.Symbol, t *syntax.Type) {
		if sym.Range == nil || sym.IsDiscarded() {
			return
		}

		at := base
		out = append(out, &ast.LocalVariableDeclaration{
			Name:                      sym.Name,
			Type:                      t,
			HasLocalQuantumDependency: true,
			Position:                  &at,
			Range:                     *sym.Range,
		})
	})

	return out
}

// bindTuple pairs the leaves of a symbol tuple with the matching items of
// typ. Leaves without a matching type item get a nil type.
func bindTuple(tuple syntax.SymbolTuple, typ *syntax.Type, fn func(syntax.Symbol, *syntax.Type)) {
	if tuple.Symbol != nil {
		fn(*tuple.Symbol, typ)
		return
	}

	var items []*syntax.Type
	if typ != nil && typ.Kind == syntax.TypeTuple && len(typ.Items) == len(tuple.Items) {
		items = typ.Items
	}

	for i, item := range tuple.Items {
		var t *syntax.Type
		if items != nil {
			t = items[i]
		}

		bindTuple(item, t, fn)
	}
}

func dedupeLocals(decls []*ast.LocalVariableDeclaration) []*ast.LocalVariableDeclaration {
	type key struct {
		name  string
		start syntax.Position
		has   bool
	}

	seen := make(map[key]bool, len(decls))
	out := make([]*ast.LocalVariableDeclaration, 0, len(decls))

	for _, d := range decls {
		if d == nil {
			continue
		}

		start, has := d.Start()

		k := key{name: d.Name, start: start, has: has}
		if seen[k] {
			continue
		}

		seen[k] = true
		out = append(out, d)
	}

	return out
}

// visibleAt drops declarations that start after pos (or at pos, unless
// inclusive).
func visibleAt(decls []*ast.LocalVariableDeclaration, pos syntax.Position, inclusive bool) []*ast.LocalVariableDeclaration {
	out := decls[:0]

	for _, d := range decls {
		start, ok := d.Start()
		if ok && (start.After(pos) || (!inclusive && start == pos)) {
			continue
		}

		out = append(out, d)
	}

	return out
}

// findLocal returns the innermost visible declaration of name.
func findLocal(decls []*ast.LocalVariableDeclaration, name string) (*ast.LocalVariableDeclaration, bool) {
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Name == name {
			return decls[i], true
		}
	}

	return nil, false
}
