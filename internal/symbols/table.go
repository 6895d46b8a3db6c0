// Package symbols is the compilation-wide symbol table: which callables and
// types each namespace declares, which namespaces each file opens, and how
// written names resolve to qualified names.
package symbols

import (
	"errors"
	"sort"
	"strings"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// ErrNotFound is returned when a name does not resolve.
var ErrNotFound = errors.New("symbol not found")

// ErrAmbiguous is returned when an unqualified name resolves through more
// than one opened namespace.
var ErrAmbiguous = errors.New("ambiguous symbol")

// PrivatePrefix marks names only visible inside their declaring namespace.
const PrivatePrefix = "_"

// Open is an open directive; Alias is empty for a plain open.
type Open struct {
	Namespace string
	Alias     string
}

// Namespace holds the declarations of one namespace and the open directives
// recorded for it per source file.
type Namespace struct {
	Name      string
	callables map[string]*ast.Callable
	types     map[string]*ast.TypeDecl
	opens     map[string][]Open
}

// Callable looks up a callable declared in the namespace.
func (ns *Namespace) Callable(name string) (*ast.Callable, bool) {
	c, ok := ns.callables[name]
	return c, ok
}

// Type looks up a type declared in the namespace.
func (ns *Namespace) Type(name string) (*ast.TypeDecl, bool) {
	t, ok := ns.types[name]
	return t, ok
}

// Callables returns the namespace's callables sorted by name.
func (ns *Namespace) Callables() []*ast.Callable {
	out := make([]*ast.Callable, 0, len(ns.callables))
	for _, c := range ns.callables {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name.Name < out[j].Name.Name })

	return out
}

// Types returns the namespace's types sorted by name.
func (ns *Namespace) Types() []*ast.TypeDecl {
	out := make([]*ast.TypeDecl, 0, len(ns.types))
	for _, t := range ns.types {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name.Name < out[j].Name.Name })

	return out
}

// Table is built once per compilation and read concurrently afterwards.
type Table struct {
	namespaces map[string]*Namespace
}

// NewTable builds a table from typed namespaces. Namespaces with the same
// name are merged.
func NewTable(namespaces ...*ast.Namespace) *Table {
	t := &Table{namespaces: make(map[string]*Namespace)}
	for _, ns := range namespaces {
		t.AddNamespace(ns)
	}

	return t
}

func (t *Table) namespace(name string) *Namespace {
	ns, ok := t.namespaces[name]
	if !ok {
		ns = &Namespace{
			Name:      name,
			callables: make(map[string]*ast.Callable),
			types:     make(map[string]*ast.TypeDecl),
			opens:     make(map[string][]Open),
		}
		t.namespaces[name] = ns
	}

	return ns
}

// AddNamespace merges the declarations of ns into the table.
func (t *Table) AddNamespace(ns *ast.Namespace) {
	if ns == nil {
		return
	}

	entry := t.namespace(ns.Name)
	for _, c := range ns.Callables {
		entry.callables[c.Name.Name] = c
	}

	for _, ty := range ns.Types {
		entry.types[ty.Name.Name] = ty
	}
}

// AddOpen records an open directive of namespace in source.
func (t *Table) AddOpen(namespace, source string, open Open) {
	entry := t.namespace(namespace)
	entry.opens[source] = append(entry.opens[source], open)
}

// Namespace returns the entry for name.
func (t *Table) Namespace(name string) (*Namespace, bool) {
	ns, ok := t.namespaces[name]
	return ns, ok
}

// NamespaceNames returns all namespace names, sorted.
func (t *Table) NamespaceNames() []string {
	out := make([]string, 0, len(t.namespaces))
	for name := range t.namespaces {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Opens returns the directives of namespace in source. Plain opens of
// unknown namespaces are kept; resolution simply finds nothing in them.
func (t *Table) Opens(namespace, source string) []Open {
	ns, ok := t.namespaces[namespace]
	if !ok {
		return nil
	}

	return ns.opens[source]
}

// Aliases returns the aliases declared in namespace in source.
func (t *Table) Aliases(namespace, source string) []Open {
	var out []Open
	for _, o := range t.Opens(namespace, source) {
		if o.Alias != "" {
			out = append(out, o)
		}
	}

	return out
}

// OpenedNamespaces returns the namespaces whose names are visible
// unqualified in namespace: itself plus every plain open.
func (t *Table) OpenedNamespaces(namespace, source string) []string {
	out := []string{namespace}
	seen := map[string]bool{namespace: true}

	for _, o := range t.Opens(namespace, source) {
		if o.Alias == "" && !seen[o.Namespace] {
			seen[o.Namespace] = true
			out = append(out, o.Namespace)
		}
	}

	return out
}

// ResolveNamespace maps a written qualifier to a namespace name, resolving
// aliases first.
func (t *Table) ResolveNamespace(qualifier, namespace, source string) (string, bool) {
	for _, o := range t.Aliases(namespace, source) {
		if o.Alias == qualifier {
			return o.Namespace, true
		}
	}

	if _, ok := t.namespaces[qualifier]; ok {
		return qualifier, true
	}

	return "", false
}

// IsAccessible reports whether a declaration with the given access is
// usable from this compilation.
func IsAccessible(access ast.Access, library bool) bool {
	return access == ast.Public || !library
}

// IsVisible reports whether a name declared in declaring is usable from
// current. Names with the private prefix require the same namespace.
func IsVisible(name, declaring, current string) bool {
	return !strings.HasPrefix(name, PrivatePrefix) || declaring == current
}

// AllCallables returns every callable in the table, sorted by qualified name.
func (t *Table) AllCallables() []*ast.Callable {
	var out []*ast.Callable
	for _, name := range t.NamespaceNames() {
		out = append(out, t.namespaces[name].Callables()...)
	}

	return out
}

// AllTypes returns every type in the table, sorted by qualified name.
func (t *Table) AllTypes() []*ast.TypeDecl {
	var out []*ast.TypeDecl
	for _, name := range t.NamespaceNames() {
		out = append(out, t.namespaces[name].Types()...)
	}

	return out
}

// LookupCallable returns the callable with the qualified name.
func (t *Table) LookupCallable(name syntax.QualifiedName) (*ast.Callable, bool) {
	ns, ok := t.namespaces[name.Namespace]
	if !ok {
		return nil, false
	}

	return ns.Callable(name.Name)
}

// LookupType returns the type with the qualified name.
func (t *Table) LookupType(name syntax.QualifiedName) (*ast.TypeDecl, bool) {
	ns, ok := t.namespaces[name.Namespace]
	if !ok {
		return nil, false
	}

	return ns.Type(name.Name)
}
