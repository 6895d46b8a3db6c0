package ast

import "github.com/CWBudde/go-qs-lsp/internal/syntax"

// Location anchors a statement or block in its file. Offset is absolute;
// Range is relative to Offset and spans the whole construct when known.
type Location struct {
	Offset syntax.Position
	Range  syntax.Range
}

// Extent returns the absolute span of the construct, or false when the
// compiler did not record one.
func (l *Location) Extent() (syntax.Range, bool) {
	if l == nil || l.Range.IsZero() {
		return syntax.Range{}, false
	}

	return l.Range.Offset(l.Offset), true
}

// LocalVariableDeclaration is a local binding. Position is the absolute
// offset of the declaring statement (or of the callable declaration for
// parameters) and Range is relative to it.
type LocalVariableDeclaration struct {
	Name                      string
	Type                      *syntax.Type
	IsMutable                 bool
	HasLocalQuantumDependency bool
	Position                  *syntax.Position
	Range                     syntax.Range
}

// Start returns the absolute start of the declared name.
func (d *LocalVariableDeclaration) Start() (syntax.Position, bool) {
	if d.Position == nil {
		return syntax.Position{}, false
	}

	return d.Position.Add(d.Range.Start), true
}

// AbsoluteRange returns the absolute range of the declared name.
func (d *LocalVariableDeclaration) AbsoluteRange() (syntax.Range, bool) {
	if d.Position == nil {
		return syntax.Range{}, false
	}

	return d.Range.Offset(*d.Position), true
}

// Scope is an ordered statement sequence plus the locals visible on entry.
type Scope struct {
	Statements   []*Statement
	KnownSymbols []*LocalVariableDeclaration
}

// Statement is one entry of a Scope. A nil Location marks a synthesized
// statement, which is treated as following any queried position.
type Statement struct {
	Kind               StatementKind
	Location           *Location
	SymbolDeclarations []*LocalVariableDeclaration
}

// StatementKind is the sum type of statement variants.
type StatementKind interface {
	isStatementKind()
}

// ExpressionStatement evaluates an expression for its effect.
type ExpressionStatement struct {
	Expr *Expression
}

// ReturnStatement is "return expr".
type ReturnStatement struct {
	Expr *Expression
}

// FailStatement is "fail expr".
type FailStatement struct {
	Expr *Expression
}

// VariableDeclaration is "let lhs = rhs" or "mutable lhs = rhs".
type VariableDeclaration struct {
	Lhs     syntax.SymbolTuple
	Rhs     *Expression
	Mutable bool
}

// ValueUpdate is "set lhs = rhs" and its compound forms.
type ValueUpdate struct {
	Lhs *Expression
	Rhs *Expression
}

// Block is a nested scope with its own header location.
type Block struct {
	Body     *Scope
	Location *Location
}

// ConditionalBlock is one "if"/"elif" case. The condition is relative to the
// block's location.
type ConditionalBlock struct {
	Condition *Expression
	Block     Block
}

// Conditional is an if/elif/else chain.
type Conditional struct {
	Cases   []ConditionalBlock
	Default *Block
}

// ForLoop iterates Iterable binding Variable in Body.
type ForLoop struct {
	Variable syntax.SymbolTuple
	Iterable *Expression
	Body     *Scope
}

// WhileLoop repeats Body while Condition holds.
type WhileLoop struct {
	Condition *Expression
	Body      *Scope
}

// RepeatUntil is "repeat {} until cond fixup {}". Until is relative to the
// statement location; Fixup may be nil.
type RepeatUntil struct {
	Repeat Block
	Until  *Expression
	Fixup  *Block
}

// AllocationKind tells fresh allocations from borrowed qubits.
type AllocationKind int

const (
	Use AllocationKind = iota
	Borrow
)

func (k AllocationKind) String() string {
	if k == Borrow {
		return "borrow"
	}

	return "use"
}

// AllocationScope is "use q = Qubit() { ... }" or its borrow form.
type AllocationScope struct {
	Kind    AllocationKind
	Binding syntax.SymbolTuple
	Init    *Expression
	Body    *Scope
}

// Conjugation is "within { outer } apply { inner }".
type Conjugation struct {
	Outer Block
	Inner Block
}

func (*ExpressionStatement) isStatementKind() {}
func (*ReturnStatement) isStatementKind()     {}
func (*FailStatement) isStatementKind()       {}
func (*VariableDeclaration) isStatementKind() {}
func (*ValueUpdate) isStatementKind()         {}
func (*Conditional) isStatementKind()         {}
func (*ForLoop) isStatementKind()             {}
func (*WhileLoop) isStatementKind()           {}
func (*RepeatUntil) isStatementKind()         {}
func (*AllocationScope) isStatementKind()     {}
func (*Conjugation) isStatementKind()         {}

// Offset returns the statement's absolute offset, if located.
func (s *Statement) Offset() (syntax.Position, bool) {
	if s == nil || s.Location == nil {
		return syntax.Position{}, false
	}

	return s.Location.Offset, true
}

// AnchoredExpression is an expression together with the absolute position its
// range is relative to.
type AnchoredExpression struct {
	Base syntax.Position
	Expr *Expression
}

// AbsoluteRange returns the absolute range of the expression, if known.
func (a AnchoredExpression) AbsoluteRange() (syntax.Range, bool) {
	if a.Expr == nil || a.Expr.Range == nil {
		return syntax.Range{}, false
	}

	return a.Expr.Range.Offset(a.Base), true
}

// Expressions returns the expressions owned directly by the statement,
// excluding those of nested scopes. Conditions of conditional blocks are
// anchored at their block's location.
func (s *Statement) Expressions() []AnchoredExpression {
	base, ok := s.Offset()
	if !ok {
		return nil
	}

	anchor := func(b syntax.Position, exprs ...*Expression) []AnchoredExpression {
		var out []AnchoredExpression
		for _, e := range exprs {
			if e != nil {
				out = append(out, AnchoredExpression{Base: b, Expr: e})
			}
		}

		return out
	}

	switch k := s.Kind.(type) {
	case *ExpressionStatement:
		return anchor(base, k.Expr)
	case *ReturnStatement:
		return anchor(base, k.Expr)
	case *FailStatement:
		return anchor(base, k.Expr)
	case *VariableDeclaration:
		return anchor(base, k.Rhs)
	case *ValueUpdate:
		return anchor(base, k.Lhs, k.Rhs)
	case *Conditional:
		var out []AnchoredExpression
		for _, c := range k.Cases {
			if c.Block.Location != nil {
				out = append(out, anchor(c.Block.Location.Offset, c.Condition)...)
			}
		}

		return out
	case *ForLoop:
		return anchor(base, k.Iterable)
	case *WhileLoop:
		return anchor(base, k.Condition)
	case *RepeatUntil:
		return anchor(base, k.Until)
	case *AllocationScope:
		return anchor(base, k.Init)
	}

	return nil
}

// ChildScopes returns the scopes nested directly in the statement in source
// order.
func (s *Statement) ChildScopes() []*Scope {
	var out []*Scope

	add := func(scopes ...*Scope) {
		for _, sc := range scopes {
			if sc != nil {
				out = append(out, sc)
			}
		}
	}

	switch k := s.Kind.(type) {
	case *Conditional:
		for _, c := range k.Cases {
			add(c.Block.Body)
		}

		if k.Default != nil {
			add(k.Default.Body)
		}
	case *ForLoop:
		add(k.Body)
	case *WhileLoop:
		add(k.Body)
	case *RepeatUntil:
		add(k.Repeat.Body)

		if k.Fixup != nil {
			add(k.Fixup.Body)
		}
	case *AllocationScope:
		add(k.Body)
	case *Conjugation:
		add(k.Outer.Body, k.Inner.Body)
	}

	return out
}

// Bindings returns the symbol tuples the statement binds. Their ranges are
// relative to the statement's offset.
func (s *Statement) Bindings() []syntax.SymbolTuple {
	switch k := s.Kind.(type) {
	case *VariableDeclaration:
		return []syntax.SymbolTuple{k.Lhs}
	case *ForLoop:
		return []syntax.SymbolTuple{k.Variable}
	case *AllocationScope:
		return []syntax.SymbolTuple{k.Binding}
	}

	return nil
}

// Walk visits every statement of the scope and of its nested scopes in
// source order.
func (sc *Scope) Walk(fn func(*Statement)) {
	if sc == nil {
		return
	}

	for _, stmt := range sc.Statements {
		fn(stmt)

		for _, child := range stmt.ChildScopes() {
			child.Walk(fn)
		}
	}
}
