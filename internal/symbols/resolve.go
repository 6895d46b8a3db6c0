package symbols

import (
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Resolution is the declaration a written name refers to. Exactly one of
// Callable and Type is set.
type Resolution struct {
	Name     syntax.QualifiedName
	Callable *ast.Callable
	Type     *ast.TypeDecl
}

// Documentation returns the doc comment lines of the resolved declaration.
func (r Resolution) Documentation() []string {
	if r.Callable != nil {
		return r.Callable.Documentation
	}

	if r.Type != nil {
		return r.Type.Documentation
	}

	return nil
}

// Source returns the file declaring the resolved declaration.
func (r Resolution) Source() string {
	if r.Callable != nil {
		return r.Callable.Source
	}

	if r.Type != nil {
		return r.Type.Source
	}

	return ""
}

// Resolve resolves a written symbol, qualified or not, as seen from
// namespace in source. Callables take precedence over type constructors.
func (t *Table) Resolve(sym syntax.Symbol, namespace, source string) (Resolution, error) {
	if sym.IsQualified() {
		target, ok := t.ResolveNamespace(sym.Namespace, namespace, source)
		if !ok {
			return Resolution{}, ErrNotFound
		}

		res, ok := t.lookup(target, sym.Name, namespace)
		if !ok {
			return Resolution{}, ErrNotFound
		}

		return res, nil
	}

	var found []Resolution

	for _, opened := range t.OpenedNamespaces(namespace, source) {
		if res, ok := t.lookup(opened, sym.Name, namespace); ok {
			found = append(found, res)
		}
	}

	switch len(found) {
	case 0:
		return Resolution{}, ErrNotFound
	case 1:
		return found[0], nil
	}

	// A declaration in the current namespace shadows opened ones.
	if found[0].Name.Namespace == namespace {
		return found[0], nil
	}

	return Resolution{}, ErrAmbiguous
}

// ResolveType resolves a written type name. Only types are considered.
func (t *Table) ResolveType(sym syntax.Symbol, namespace, source string) (Resolution, error) {
	res, err := t.Resolve(sym, namespace, source)
	if err == nil && res.Type != nil {
		return res, nil
	}

	if sym.IsQualified() {
		return Resolution{}, ErrNotFound
	}

	var found []Resolution

	for _, opened := range t.OpenedNamespaces(namespace, source) {
		ns, ok := t.namespaces[opened]
		if !ok {
			continue
		}

		if ty, ok := ns.Type(sym.Name); ok && t.usable(ty.Access, ty.Library, sym.Name, opened, namespace) {
			found = append(found, Resolution{Name: ty.Name, Type: ty})
		}
	}

	if len(found) == 1 {
		return found[0], nil
	}

	if len(found) > 1 {
		return Resolution{}, ErrAmbiguous
	}

	return Resolution{}, ErrNotFound
}

func (t *Table) usable(access ast.Access, library bool, name, declaring, current string) bool {
	return IsAccessible(access, library) && IsVisible(name, declaring, current)
}

func (t *Table) lookup(namespace, name, current string) (Resolution, bool) {
	ns, ok := t.namespaces[namespace]
	if !ok {
		return Resolution{}, false
	}

	if c, ok := ns.Callable(name); ok && t.usable(c.Access, c.Library, name, namespace, current) {
		return Resolution{Name: c.Name, Callable: c}, true
	}

	if ty, ok := ns.Type(name); ok && t.usable(ty.Access, ty.Library, name, namespace, current) {
		return Resolution{Name: ty.Name, Type: ty}, true
	}

	return Resolution{}, false
}

// AccessibleCallables returns the callables usable unqualified from
// namespace in source.
func (t *Table) AccessibleCallables(namespace, source string) []*ast.Callable {
	var out []*ast.Callable

	for _, opened := range t.OpenedNamespaces(namespace, source) {
		ns, ok := t.namespaces[opened]
		if !ok {
			continue
		}

		for _, c := range ns.Callables() {
			if t.usable(c.Access, c.Library, c.Name.Name, opened, namespace) {
				out = append(out, c)
			}
		}
	}

	return out
}

// AccessibleTypes returns the types usable unqualified from namespace in
// source.
func (t *Table) AccessibleTypes(namespace, source string) []*ast.TypeDecl {
	var out []*ast.TypeDecl

	for _, opened := range t.OpenedNamespaces(namespace, source) {
		ns, ok := t.namespaces[opened]
		if !ok {
			continue
		}

		for _, ty := range ns.Types() {
			if t.usable(ty.Access, ty.Library, ty.Name.Name, opened, namespace) {
				out = append(out, ty)
			}
		}
	}

	return out
}

// CallablesIn returns the callables of target usable from namespace through
// a qualified name.
func (t *Table) CallablesIn(target, namespace string) []*ast.Callable {
	ns, ok := t.namespaces[target]
	if !ok {
		return nil
	}

	var out []*ast.Callable
	for _, c := range ns.Callables() {
		if t.usable(c.Access, c.Library, c.Name.Name, target, namespace) {
			out = append(out, c)
		}
	}

	return out
}

// TypesIn returns the types of target usable from namespace through a
// qualified name.
func (t *Table) TypesIn(target, namespace string) []*ast.TypeDecl {
	ns, ok := t.namespaces[target]
	if !ok {
		return nil
	}

	var out []*ast.TypeDecl
	for _, ty := range ns.Types() {
		if t.usable(ty.Access, ty.Library, ty.Name.Name, target, namespace) {
			out = append(out, ty)
		}
	}

	return out
}

// AllAccessibleTypes returns every type usable from namespace, opened or
// not.
func (t *Table) AllAccessibleTypes(namespace string) []*ast.TypeDecl {
	var out []*ast.TypeDecl
	for _, name := range t.NamespaceNames() {
		out = append(out, t.TypesIn(name, namespace)...)
	}

	return out
}
