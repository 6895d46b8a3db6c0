package syntax

import "strings"

// TypeKind discriminates resolved types.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeMissing
	TypeUnit
	TypeInt
	TypeBigInt
	TypeDouble
	TypeBool
	TypeString
	TypeQubit
	TypeResult
	TypePauli
	TypeRange
	TypeArray
	TypeTuple
	TypeUserDefined
	TypeParameter
	TypeOperation
	TypeFunction
)

var primitiveNames = map[TypeKind]string{
	TypeUnit:   "Unit",
	TypeInt:    "Int",
	TypeBigInt: "BigInt",
	TypeDouble: "Double",
	TypeBool:   "Bool",
	TypeString: "String",
	TypeQubit:  "Qubit",
	TypeResult: "Result",
	TypePauli:  "Pauli",
	TypeRange:  "Range",
}

// PrimitiveTypeNames lists the built-in type keywords in display order.
var PrimitiveTypeNames = []string{
	"BigInt", "Bool", "Double", "Int", "Pauli", "Qubit", "Range", "Result", "String", "Unit",
}

// Functor is an operation characteristic that can be applied at a call site.
type Functor int

const (
	Adjoint Functor = iota
	Controlled
)

func (f Functor) String() string {
	if f == Controlled {
		return "Controlled"
	}

	return "Adjoint"
}

// Type is a resolved type. Items holds the element type of an array, the
// items of a tuple, or the input and output of a callable type. Range is only
// set on types written in source, relative to their fragment.
type Type struct {
	Kind     TypeKind
	Items    []*Type
	Name     QualifiedName
	Param    string
	Functors []Functor
	Range    *Range
}

// Primitive returns a built-in type of the given kind.
func Primitive(kind TypeKind) *Type {
	return &Type{Kind: kind}
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: TypeArray, Items: []*Type{elem}}
}

// TupleOf returns a tuple type.
func TupleOf(items ...*Type) *Type {
	return &Type{Kind: TypeTuple, Items: items}
}

// UserDefined returns a reference to a user-defined type.
func UserDefined(name QualifiedName) *Type {
	return &Type{Kind: TypeUserDefined, Name: name}
}

// OperationOf returns an operation type with the given characteristics.
func OperationOf(in, out *Type, functors ...Functor) *Type {
	return &Type{Kind: TypeOperation, Items: []*Type{in, out}, Functors: functors}
}

// FunctionOf returns a function type.
func FunctionOf(in, out *Type) *Type {
	return &Type{Kind: TypeFunction, Items: []*Type{in, out}}
}

// Supports reports whether an operation type carries the functor.
func (t *Type) Supports(f Functor) bool {
	if t == nil {
		return false
	}

	for _, g := range t.Functors {
		if g == f {
			return true
		}
	}

	return false
}

// Walk calls fn for t and every nested type, outermost first.
func (t *Type) Walk(fn func(*Type)) {
	if t == nil {
		return
	}

	fn(t)

	for _, item := range t.Items {
		item.Walk(fn)
	}
}

// String prints the type the way it is written in source. User-defined types
// print unqualified.
func (t *Type) String() string {
	var sb strings.Builder
	t.print(&sb)

	return sb.String()
}

func (t *Type) print(sb *strings.Builder) {
	if t == nil {
		sb.WriteString("?")
		return
	}

	if name, ok := primitiveNames[t.Kind]; ok {
		sb.WriteString(name)
		return
	}

	switch t.Kind {
	case TypeArray:
		t.Items[0].print(sb)
		sb.WriteString("[]")
	case TypeTuple:
		sb.WriteByte('(')

		for i, item := range t.Items {
			if i > 0 {
				sb.WriteString(", ")
			}

			item.print(sb)
		}

		sb.WriteByte(')')
	case TypeUserDefined:
		sb.WriteString(t.Name.Name)
	case TypeParameter:
		sb.WriteByte('\'')
		sb.WriteString(t.Param)
	case TypeOperation, TypeFunction:
		arrow := " -> "
		if t.Kind == TypeOperation {
			arrow = " => "
		}

		sb.WriteByte('(')
		t.Items[0].print(sb)
		sb.WriteString(arrow)
		t.Items[1].print(sb)

		if chars := t.characteristics(); chars != "" {
			sb.WriteString(" is ")
			sb.WriteString(chars)
		}

		sb.WriteByte(')')
	case TypeMissing:
		sb.WriteString("_")
	default:
		sb.WriteString("?")
	}
}

func (t *Type) characteristics() string {
	adj, ctl := t.Supports(Adjoint), t.Supports(Controlled)

	switch {
	case adj && ctl:
		return "Adj + Ctl"
	case adj:
		return "Adj"
	case ctl:
		return "Ctl"
	}

	return ""
}
