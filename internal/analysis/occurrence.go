package analysis

import (
	"errors"
	"fmt"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// ErrAmbiguousOccurrence reports two occurrences of the same kind
// overlapping one position in a fragment, which only a malformed tree can
// produce.
var ErrAmbiguousOccurrence = errors.New("ambiguous symbol occurrence")

// SymbolOccurrence is a position-addressable mention of a symbol. Span is
// absolute.
type SymbolOccurrence interface {
	Span() syntax.Range
	isOccurrence()
}

// Declaration is a symbol introduced by the fragment.
type Declaration struct {
	Symbol syntax.Symbol
	Range  syntax.Range
}

// UsedVariable is an identifier referring to a local or a global.
type UsedVariable struct {
	Expr       *ast.Expression
	Identifier *ast.Identifier
	Range      syntax.Range
}

// UsedType is a type written in source.
type UsedType struct {
	Type  *syntax.Type
	Range syntax.Range
}

// UsedLiteral is a literal value.
type UsedLiteral struct {
	Expr    *ast.Expression
	Literal *ast.Literal
	Range   syntax.Range
}

func (o *Declaration) Span() syntax.Range  { return o.Range }
func (o *UsedVariable) Span() syntax.Range { return o.Range }
func (o *UsedType) Span() syntax.Range     { return o.Range }
func (o *UsedLiteral) Span() syntax.Range  { return o.Range }

func (*Declaration) isOccurrence()  {}
func (*UsedVariable) isOccurrence() {}
func (*UsedType) isOccurrence()     {}
func (*UsedLiteral) isOccurrence()  {}

// Occurrences groups a fragment's occurrences by kind.
type Occurrences struct {
	Declarations []*Declaration
	Variables    []*UsedVariable
	Types        []*UsedType
	Literals     []*UsedLiteral
}

// FragmentOccurrences collects every occurrence in frag with absolute
// ranges.
func FragmentOccurrences(frag *fragment.Fragment) Occurrences {
	var occ Occurrences

	if frag == nil || frag.Kind == nil {
		return occ
	}

	base := frag.Range.Start

	declare := func(sym syntax.Symbol) {
		if sym.Range != nil && sym.Name != "" && !sym.IsDiscarded() {
			occ.Declarations = append(occ.Declarations, &Declaration{Symbol: sym, Range: sym.Range.Offset(base)})
		}
	}

	declareTuple := func(t syntax.SymbolTuple) {
		for _, sym := range t.Flatten() {
			declare(sym)
		}
	}

	// Only leaf types are occurrences; an array, tuple or callable type
	// covers its items and would overlap them.
	useType := func(t *syntax.Type) {
		t.Walk(func(n *syntax.Type) {
			if n.Range != nil && len(n.Items) == 0 {
				occ.Types = append(occ.Types, &UsedType{Type: n, Range: n.Range.Offset(base)})
			}
		})
	}

	useParams := func(p fragment.Parameter) {
		for _, leaf := range p.Flatten() {
			declare(leaf.Name)
			useType(leaf.Type)
		}
	}

	switch k := frag.Kind.(type) {
	case *fragment.NamespaceDeclaration:
		declare(k.Name)
	case *fragment.CallableDeclaration:
		declare(k.Name)

		for _, tp := range k.TypeParameters {
			declare(tp)
		}

		useParams(k.Parameters)
		useType(k.ReturnType)
	case *fragment.TypeDefinition:
		declare(k.Name)
		useParams(k.Items)
	case *fragment.VariableBinding:
		declareTuple(k.Lhs)
	case *fragment.ForLoopIntro:
		declareTuple(k.Variable)
	case *fragment.AllocationIntro:
		declareTuple(k.Binding)
	}

	for _, expr := range fragment.Expressions(frag.Kind) {
		expr.Walk(func(e *ast.Expression) bool {
			switch k := e.Kind.(type) {
			case *ast.Identifier:
				r := e.Range
				if k.Symbol.Range != nil {
					r = k.Symbol.Range
				}

				if r != nil {
					occ.Variables = append(occ.Variables, &UsedVariable{Expr: e, Identifier: k, Range: r.Offset(base)})
				}

				for _, arg := range k.TypeArgs {
					useType(arg)
				}
			case *ast.Literal:
				if e.Range != nil {
					occ.Literals = append(occ.Literals, &UsedLiteral{Expr: e, Literal: k, Range: e.Range.Offset(base)})
				}
			case *ast.Lambda:
				declareTuple(k.Params)
			case *ast.NewArray:
				useType(k.ElementType)
			}

			return true
		})
	}

	return occ
}

// OccurrenceAt returns the occurrence in frag whose range contains pos.
// Declarations take precedence over used variables, then used types, then
// literals. It returns nil when nothing matches.
func OccurrenceAt(frag *fragment.Fragment, pos syntax.Position, includeEnd bool) (SymbolOccurrence, error) {
	if frag == nil || frag.Kind == nil {
		return nil, nil
	}

	if _, invalid := frag.Kind.(*fragment.InvalidFragment); invalid {
		return nil, nil
	}

	occ := FragmentOccurrences(frag)

	decl, err := single(occ.Declarations, pos, includeEnd, "declaration")
	if err != nil || decl != nil {
		return orNil(decl), err
	}

	variable, err := single(occ.Variables, pos, includeEnd, "variable")
	if err != nil || variable != nil {
		return orNil(variable), err
	}

	typ, err := single(occ.Types, pos, includeEnd, "type")
	if err != nil || typ != nil {
		return orNil(typ), err
	}

	lit, err := single(occ.Literals, pos, includeEnd, "literal")
	if err != nil || lit != nil {
		return orNil(lit), err
	}

	return nil, nil
}

func single[T SymbolOccurrence](candidates []T, pos syntax.Position, includeEnd bool, what string) (T, error) {
	var (
		found T
		count int
	)

	for _, c := range candidates {
		if c.Span().ContainsWith(pos, includeEnd) {
			if count == 0 {
				found = c
			}

			count++
		}
	}

	if count > 1 {
		var zero T
		return zero, fmt.Errorf("%w: %d %s occurrences at %s", ErrAmbiguousOccurrence, count, what, pos)
	}

	return found, nil
}

// orNil converts a typed nil pointer into a nil interface.
func orNil[T interface {
	comparable
	SymbolOccurrence
}](o T) SymbolOccurrence {
	var zero T
	if o == zero {
		return nil
	}

	return o
}
