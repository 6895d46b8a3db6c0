package syntax

import "strings"

// QualifiedName identifies a global callable or type.
type QualifiedName struct {
	Namespace string
	Name      string
}

// ParseQualifiedName splits "A.B.C" into namespace "A.B" and name "C".
func ParseQualifiedName(s string) QualifiedName {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return QualifiedName{Name: s}
	}

	return QualifiedName{Namespace: s[:i], Name: s[i+1:]}
}

func (q QualifiedName) String() string {
	if q.Namespace == "" {
		return q.Name
	}

	return q.Namespace + "." + q.Name
}

// IsZero reports whether q is unset.
func (q QualifiedName) IsZero() bool {
	return q.Namespace == "" && q.Name == ""
}

// Symbol is a name as written in source, optionally namespace-qualified.
// Its range is relative to the owning fragment or statement.
type Symbol struct {
	Namespace string
	Name      string
	Range     *Range
}

// IsQualified reports whether the symbol was written with a namespace
// qualifier.
func (s Symbol) IsQualified() bool {
	return s.Namespace != ""
}

// IsDiscarded reports whether the symbol is the discard pattern "_".
func (s Symbol) IsDiscarded() bool {
	return s.Name == "_"
}

func (s Symbol) String() string {
	if s.Namespace == "" {
		return s.Name
	}

	return s.Namespace + "." + s.Name
}

// SymbolTuple is a possibly nested tuple of declared symbols, as found on the
// left-hand side of a binding or in a lambda parameter list. A leaf has a
// non-nil Symbol and no Items.
type SymbolTuple struct {
	Symbol *Symbol
	Items  []SymbolTuple
}

// Leaf wraps a single symbol.
func Leaf(sym Symbol) SymbolTuple {
	return SymbolTuple{Symbol: &sym}
}

// Tuple builds a tuple of symbol tuples.
func Tuple(items ...SymbolTuple) SymbolTuple {
	return SymbolTuple{Items: items}
}

// Flatten returns the leaf symbols in source order, skipping discards.
func (t SymbolTuple) Flatten() []Symbol {
	var out []Symbol
	t.flatten(&out)

	return out
}

func (t SymbolTuple) flatten(out *[]Symbol) {
	if t.Symbol != nil {
		if !t.Symbol.IsDiscarded() && t.Symbol.Name != "" {
			*out = append(*out, *t.Symbol)
		}

		return
	}

	for _, item := range t.Items {
		item.flatten(out)
	}
}
