// Package testutil builds compilations for tests. Ranges are located by
// searching the source lines for the text they cover, so fixtures stay
// readable and survive edits to the sample code.
package testutil

import (
	"fmt"
	"strings"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Source is a sample file under construction.
type Source struct {
	URI   string
	Lines []string
	frags []*fragment.Fragment
}

// NewSource creates a source from its lines.
func NewSource(uri string, lines ...string) *Source {
	return &Source{URI: uri, Lines: lines}
}

// Text returns the file's text.
func (s *Source) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Find returns the absolute range of the first occurrence of needle on line.
func (s *Source) Find(line int, needle string) syntax.Range {
	return s.FindIn(line, needle, needle)
}

// FindIn returns the absolute range of needle inside the first occurrence of
// context on line.
func (s *Source) FindIn(line int, context, needle string) syntax.Range {
	text := s.Lines[line]

	at := strings.Index(text, context)
	if at < 0 {
		panic(fmt.Sprintf("%s:%d: %q not found in %q", s.URI, line, context, text))
	}

	inner := strings.Index(context, needle)
	if inner < 0 {
		panic(fmt.Sprintf("%q not found in %q", needle, context))
	}

	col := at + inner

	return syntax.NewRange(line, col, line, col+len(needle))
}

// Pos returns the start of needle on line.
func (s *Source) Pos(line int, needle string) syntax.Position {
	return s.Find(line, needle).Start
}

// After returns the position just after needle on line.
func (s *Source) After(line int, needle string) syntax.Position {
	return s.Find(line, needle).End
}

// Start returns the position of the first non-blank character of line.
func (s *Source) Start(line int) syntax.Position {
	text := s.Lines[line]
	return syntax.Position{Line: line, Column: len(text) - len(strings.TrimLeft(text, " \t"))}
}

// End returns the position after the last non-blank character of line.
func (s *Source) End(line int) syntax.Position {
	return syntax.Position{Line: line, Column: len(strings.TrimRight(s.Lines[line], " \t"))}
}

// Anchor returns an anchor at the start of line.
func (s *Source) Anchor(line int) Anchor {
	return Anchor{src: s, Base: s.Start(line)}
}

// AnchorAt returns an anchor at needle on line.
func (s *Source) AnchorAt(line int, needle string) Anchor {
	return Anchor{src: s, Base: s.Pos(line, needle)}
}

// Loc returns a location starting at needle (or the line start when needle
// is empty) and extending to the end of endLine.
func (s *Source) Loc(line int, needle string, endLine int) *ast.Location {
	start := s.Start(line)
	if needle != "" {
		start = s.Pos(line, needle)
	}

	return &ast.Location{
		Offset: start,
		Range:  syntax.Range{Start: start, End: s.End(endLine)}.RelativeTo(start),
	}
}

// Stmt builds a statement on a single line.
func (s *Source) Stmt(line int, kind ast.StatementKind, decls ...*ast.LocalVariableDeclaration) *ast.Statement {
	return s.BlockStmt(line, line, kind, decls...)
}

// BlockStmt builds a statement spanning line to endLine.
func (s *Source) BlockStmt(line, endLine int, kind ast.StatementKind, decls ...*ast.LocalVariableDeclaration) *ast.Statement {
	return &ast.Statement{Kind: kind, Location: s.Loc(line, "", endLine), SymbolDeclarations: decls}
}

// Frag adds a fragment covering line from its first non-blank character.
func (s *Source) Frag(line int, kind fragment.Kind) {
	s.addFrag(s.Start(line), kind)
}

// FragAt adds a fragment starting at needle on line.
func (s *Source) FragAt(line int, needle string, kind fragment.Kind) {
	s.addFrag(s.Pos(line, needle), kind)
}

func (s *Source) addFrag(start syntax.Position, kind fragment.Kind) {
	end := s.End(start.Line)
	s.frags = append(s.frags, &fragment.Fragment{
		Kind:  kind,
		Range: syntax.Range{Start: start, End: end},
		Text:  s.Lines[start.Line][start.Column:end.Column],
	})
}

// File builds the compilation file. Fragment indentation is the brace depth
// at each fragment's start.
func (s *Source) File() *compilation.File {
	probe := &compilation.File{Lines: s.Lines}
	for _, f := range s.frags {
		f.Indentation = probe.IndentationAt(f.Range.Start)
	}

	return compilation.NewFile(s.URI, s.Text(), s.frags)
}

// Anchor builds nodes whose ranges are relative to Base.
type Anchor struct {
	src  *Source
	Base syntax.Position
}

// Range returns the range of needle on line relative to the anchor.
func (a Anchor) Range(line int, needle string) *syntax.Range {
	return a.RangeIn(line, needle, needle)
}

// RangeIn returns the range of needle inside context relative to the anchor.
func (a Anchor) RangeIn(line int, context, needle string) *syntax.Range {
	r := a.src.FindIn(line, context, needle).RelativeTo(a.Base)
	return &r
}

// Sym builds a symbol from the text at needle; a dotted needle is split into
// namespace and name.
func (a Anchor) Sym(line int, needle string) syntax.Symbol {
	return a.SymIn(line, needle, needle)
}

// SymIn is Sym for needle inside context.
func (a Anchor) SymIn(line int, context, needle string) syntax.Symbol {
	qn := syntax.ParseQualifiedName(needle)
	return syntax.Symbol{Namespace: qn.Namespace, Name: qn.Name, Range: a.RangeIn(line, context, needle)}
}

// NamespaceSym builds the symbol of a namespace name, which is never split.
func (a Anchor) NamespaceSym(line int, needle string) syntax.Symbol {
	return syntax.Symbol{Name: needle, Range: a.Range(line, needle)}
}

// Type parses the type written at needle.
func (a Anchor) Type(line int, needle string) *syntax.Type {
	return a.TypeIn(line, needle, needle)
}

// TypeIn parses the type written at needle inside context.
func (a Anchor) TypeIn(line int, context, needle string) *syntax.Type {
	t, err := syntax.ParseTypeAt(needle, a.RangeIn(line, context, needle).Start)
	if err != nil {
		panic(err)
	}

	return t
}

// Decl declares a local at needle.
func (a Anchor) Decl(line int, needle string, typ *syntax.Type, mutable bool) *ast.LocalVariableDeclaration {
	return a.DeclIn(line, needle, needle, typ, mutable)
}

// DeclIn declares a local at needle inside context.
func (a Anchor) DeclIn(line int, context, needle string, typ *syntax.Type, mutable bool) *ast.LocalVariableDeclaration {
	base := a.Base

	return &ast.LocalVariableDeclaration{
		Name:      needle,
		Type:      typ,
		IsMutable: mutable,
		Position:  &base,
		Range:     *a.RangeIn(line, context, needle),
	}
}

// Expr builds an expression covering needle.
func (a Anchor) Expr(line int, needle string, typ *syntax.Type, kind ast.ExpressionKind) *ast.Expression {
	return a.ExprIn(line, needle, needle, typ, kind)
}

// ExprIn builds an expression covering needle inside context.
func (a Anchor) ExprIn(line int, context, needle string, typ *syntax.Type, kind ast.ExpressionKind) *ast.Expression {
	return &ast.Expression{Kind: kind, Type: typ, Range: a.RangeIn(line, context, needle)}
}

// Local references a local variable.
func (a Anchor) Local(line int, name string, typ *syntax.Type) *ast.Expression {
	return a.LocalIn(line, name, name, typ)
}

// LocalIn references a local variable written inside context.
func (a Anchor) LocalIn(line int, context, name string, typ *syntax.Type) *ast.Expression {
	return a.ExprIn(line, context, name, typ, &ast.Identifier{
		Symbol: syntax.Symbol{Name: name, Range: a.RangeIn(line, context, name)},
		Local:  true,
	})
}

// Global references a resolved global written as needle.
func (a Anchor) Global(line int, needle, resolved string, typ *syntax.Type) *ast.Expression {
	return a.GlobalIn(line, needle, needle, resolved, typ)
}

// GlobalIn is Global for needle inside context.
func (a Anchor) GlobalIn(line int, context, needle, resolved string, typ *syntax.Type) *ast.Expression {
	qn := syntax.ParseQualifiedName(resolved)

	return a.ExprIn(line, context, needle, typ, &ast.Identifier{
		Symbol: a.SymIn(line, context, needle),
		Global: &qn,
	})
}

// Lit builds a literal.
func (a Anchor) Lit(line int, needle string, kind ast.LiteralKind, typ *syntax.Type) *ast.Expression {
	return a.LitIn(line, needle, needle, kind, typ)
}

// LitIn builds a literal written inside context.
func (a Anchor) LitIn(line int, context, needle string, kind ast.LiteralKind, typ *syntax.Type) *ast.Expression {
	return a.ExprIn(line, context, needle, typ, &ast.Literal{Kind: kind, Value: needle})
}

// Tuple builds a value tuple covering needle.
func (a Anchor) Tuple(line int, needle string, items ...*ast.Expression) *ast.Expression {
	return a.TupleIn(line, needle, needle, items...)
}

// TupleIn builds a value tuple covering needle inside context.
func (a Anchor) TupleIn(line int, context, needle string, items ...*ast.Expression) *ast.Expression {
	types := make([]*syntax.Type, 0, len(items))
	for _, item := range items {
		types = append(types, item.Type)
	}

	return a.ExprIn(line, context, needle, syntax.TupleOf(types...), &ast.ValueTuple{Items: items})
}

// Call builds a call covering needle.
func (a Anchor) Call(line int, needle string, typ *syntax.Type, callee, arg *ast.Expression) *ast.Expression {
	return a.Expr(line, needle, typ, &ast.Call{Callee: callee, Argument: arg})
}

// Binary builds an operator application covering needle.
func (a Anchor) Binary(line int, needle, op string, typ *syntax.Type, left, right *ast.Expression) *ast.Expression {
	return a.Expr(line, needle, typ, &ast.BinaryOp{Op: op, Left: left, Right: right})
}

// Param declares a parameter of the fragment anchored at a.
func (a Anchor) Param(line int, name, typ string) fragment.Parameter {
	return a.ParamIn(line, name+" : "+typ, name, typ)
}

// ParamIn is Param with an explicit search context.
func (a Anchor) ParamIn(line int, context, name, typ string) fragment.Parameter {
	return fragment.Parameter{
		Name: syntax.Symbol{Name: name, Range: a.RangeIn(line, context, name)},
		Type: a.TypeIn(line, context, typ),
	}
}

// Params groups parameters into a tuple.
func Params(items ...fragment.Parameter) fragment.Parameter {
	return fragment.Parameter{Items: items}
}

// Leaf wraps a declaration as a parameter tuple leaf.
func Leaf(d *ast.LocalVariableDeclaration) ast.ParamTuple {
	return ast.ParamTuple{Decl: d}
}

// Tuple groups parameter declarations.
func Tuple(items ...ast.ParamTuple) ast.ParamTuple {
	return ast.ParamTuple{Items: items}
}

// Scope builds a scope.
func Scope(known []*ast.LocalVariableDeclaration, stmts ...*ast.Statement) *ast.Scope {
	return &ast.Scope{Statements: stmts, KnownSymbols: known}
}

// Known concatenates declaration lists into a new slice.
func Known(lists ...[]*ast.LocalVariableDeclaration) []*ast.LocalVariableDeclaration {
	var out []*ast.LocalVariableDeclaration
	for _, l := range lists {
		out = append(out, l...)
	}

	return out
}
