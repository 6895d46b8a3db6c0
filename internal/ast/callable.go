package ast

import "github.com/CWBudde/go-qs-lsp/internal/syntax"

// CallableKind tells functions from operations.
type CallableKind int

const (
	Function CallableKind = iota
	Operation
)

func (k CallableKind) String() string {
	if k == Operation {
		return "operation"
	}

	return "function"
}

// Access controls visibility outside the declaring compilation.
type Access int

const (
	Public Access = iota
	Internal
)

// SpecializationKind names one implementation variant of a callable.
type SpecializationKind int

const (
	Body SpecializationKind = iota
	AdjointSpecialization
	ControlledSpecialization
	ControlledAdjointSpecialization
)

func (k SpecializationKind) String() string {
	switch k {
	case AdjointSpecialization:
		return "adjoint"
	case ControlledSpecialization:
		return "controlled"
	case ControlledAdjointSpecialization:
		return "controlled adjoint"
	}

	return "body"
}

// ParamTuple is a possibly nested tuple of parameter declarations. A leaf
// carries Decl and no Items.
type ParamTuple struct {
	Decl  *LocalVariableDeclaration
	Items []ParamTuple
}

// Flatten returns the leaf declarations in source order.
func (p ParamTuple) Flatten() []*LocalVariableDeclaration {
	if p.Decl != nil {
		return []*LocalVariableDeclaration{p.Decl}
	}

	var out []*LocalVariableDeclaration
	for _, item := range p.Items {
		out = append(out, item.Flatten()...)
	}

	return out
}

// IsLeaf reports whether the tuple is a single declaration.
func (p ParamTuple) IsLeaf() bool {
	return p.Decl != nil
}

// Signature is the declared shape of a callable.
type Signature struct {
	TypeParameters []string
	Parameters     ParamTuple
	ReturnType     *syntax.Type
	Functors       []syntax.Functor
}

// Supports reports whether the callable declares the functor.
func (s Signature) Supports(f syntax.Functor) bool {
	for _, g := range s.Functors {
		if g == f {
			return true
		}
	}

	return false
}

// Specialization is one implementation of a callable. Body is nil for
// intrinsic or generated specializations.
type Specialization struct {
	Kind     SpecializationKind
	Source   string
	Location *Location
	Body     *Scope
}

// Callable is a global function or operation. Location.Offset is the start of
// the declaration header and Location.Range is the range of the name.
type Callable struct {
	Name            syntax.QualifiedName
	Kind            CallableKind
	Source          string
	Location        *Location
	Signature       Signature
	Specializations []*Specialization
	Access          Access
	Library         bool
	Documentation   []string
}

// NameRange returns the absolute range of the callable's name.
func (c *Callable) NameRange() (syntax.Range, bool) {
	if c == nil || c.Location == nil {
		return syntax.Range{}, false
	}

	return c.Location.Range.Offset(c.Location.Offset), true
}

// TypeItem is a possibly nested, possibly named item of a user-defined type.
type TypeItem struct {
	Name  string
	Type  *syntax.Type
	Range *syntax.Range
	Items []TypeItem
}

// Named returns the named leaf items in declaration order.
func (t TypeItem) Named() []TypeItem {
	if len(t.Items) == 0 {
		if t.Name != "" {
			return []TypeItem{t}
		}

		return nil
	}

	var out []TypeItem
	for _, item := range t.Items {
		out = append(out, item.Named()...)
	}

	return out
}

// TypeDecl is a user-defined type. Location follows the Callable convention.
type TypeDecl struct {
	Name          syntax.QualifiedName
	Source        string
	Location      *Location
	Underlying    *syntax.Type
	Items         TypeItem
	Access        Access
	Library       bool
	Documentation []string
}

// NameRange returns the absolute range of the type's name.
func (t *TypeDecl) NameRange() (syntax.Range, bool) {
	if t == nil || t.Location == nil {
		return syntax.Range{}, false
	}

	return t.Location.Range.Offset(t.Location.Offset), true
}

// Namespace groups the callables and types declared under one name.
type Namespace struct {
	Name      string
	Callables []*Callable
	Types     []*TypeDecl
}
