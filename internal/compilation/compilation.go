// Package compilation holds a compiled snapshot of a multi-file program:
// its files, typed namespaces and global symbol table. A Compilation is
// immutable; edits produce a new value.
package compilation

import (
	"sort"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Directive is an open directive declared in one file of a namespace.
type Directive struct {
	Namespace string
	Source    string
	Open      symbols.Open
}

// Compilation is a read-only compiled snapshot.
type Compilation struct {
	files      map[string]*File
	Namespaces []*ast.Namespace
	Symbols    *symbols.Table
}

// New builds a compilation and its symbol table.
func New(files []*File, namespaces []*ast.Namespace, opens []Directive) *Compilation {
	c := &Compilation{
		files:      make(map[string]*File, len(files)),
		Namespaces: namespaces,
		Symbols:    symbols.NewTable(namespaces...),
	}

	for _, f := range files {
		c.files[f.URI] = f
	}

	for _, d := range opens {
		c.Symbols.AddOpen(d.Namespace, d.Source, d.Open)
	}

	return c
}

// File returns the file with the given URI.
func (c *Compilation) File(uri string) (*File, bool) {
	if c == nil {
		return nil, false
	}

	f, ok := c.files[uri]

	return f, ok
}

// Files returns all files sorted by URI.
func (c *Compilation) Files() []*File {
	if c == nil {
		return nil
	}

	out := make([]*File, 0, len(c.files))
	for _, f := range c.files {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })

	return out
}

// WithDocument returns a compilation in which the file's lines reflect the
// editor's current text. Files unknown to the compiler are added without
// fragments.
func (c *Compilation) WithDocument(uri, text string) *Compilation {
	clone := &Compilation{
		files:      make(map[string]*File, len(c.files)+1),
		Namespaces: c.Namespaces,
		Symbols:    c.Symbols,
	}

	for k, v := range c.files {
		clone.files[k] = v
	}

	if f, ok := c.files[uri]; ok {
		clone.files[uri] = f.WithText(text)
	} else {
		clone.files[uri] = NewFile(uri, text, nil)
	}

	return clone
}

// NamespaceAt returns the name of the namespace declaration enclosing pos.
func (c *Compilation) NamespaceAt(uri string, pos syntax.Position) (string, bool) {
	f, ok := c.File(uri)
	if !ok {
		return "", false
	}

	i, ok := f.EnclosingIndex(pos)
	if !ok {
		return "", false
	}

	return NamespaceOf(f.Tree, i)
}

// NamespaceOf returns the namespace declared by the nearest enclosing
// namespace fragment of i.
func NamespaceOf(tree *fragment.Tree, i int) (string, bool) {
	j, ok := tree.EnclosingOf(i, func(k fragment.Kind) bool {
		_, ok := k.(*fragment.NamespaceDeclaration)
		return ok
	})
	if !ok {
		return "", false
	}

	return tree.At(j).Kind.(*fragment.NamespaceDeclaration).Name.String(), true
}

// CallableAt returns the callable declared in uri whose declaration encloses
// pos, and the specialization implementing the code at pos.
func (c *Compilation) CallableAt(uri string, pos syntax.Position) (*ast.Callable, *ast.Specialization, bool) {
	f, ok := c.File(uri)
	if !ok {
		return nil, nil, false
	}

	i, ok := f.EnclosingIndex(pos)
	if !ok {
		return nil, nil, false
	}

	return c.CallableOf(f, i)
}

// CallableOf resolves the callable and specialization enclosing fragment i
// of f.
func (c *Compilation) CallableOf(f *File, i int) (*ast.Callable, *ast.Specialization, bool) {
	decl, ok := f.Tree.EnclosingOf(i, func(k fragment.Kind) bool {
		_, ok := k.(*fragment.CallableDeclaration)
		return ok
	})
	if !ok {
		return nil, nil, false
	}

	nsName, ok := NamespaceOf(f.Tree, decl)
	if !ok {
		return nil, nil, false
	}

	ns, ok := c.Symbols.Namespace(nsName)
	if !ok {
		return nil, nil, false
	}

	header := f.Tree.At(decl).Range.Start

	var callable *ast.Callable

	for _, candidate := range ns.Callables() {
		if candidate.Source == f.URI && candidate.Location != nil && candidate.Location.Offset == header {
			callable = candidate
			break
		}
	}

	if callable == nil {
		return nil, nil, false
	}

	if j, ok := f.Tree.EnclosingOf(i, func(k fragment.Kind) bool {
		_, ok := k.(*fragment.SpecializationDeclaration)
		return ok
	}); ok {
		start := f.Tree.At(j).Range.Start
		for _, spec := range callable.Specializations {
			if spec.Source == f.URI && spec.Location != nil && spec.Location.Offset == start {
				return callable, spec, true
			}
		}
	}

	for _, spec := range callable.Specializations {
		if spec.Kind == ast.Body && spec.Source == f.URI && spec.Body != nil {
			return callable, spec, true
		}
	}

	return callable, nil, true
}
