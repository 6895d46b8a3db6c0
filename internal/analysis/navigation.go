package analysis

import (
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Hover is the description of the symbol under the cursor.
type Hover struct {
	Contents string
	Range    syntax.Range
}

// HoverAt describes the occurrence at pos: locals by name, type and
// mutability, globals by signature and documentation, literals and types by
// their printed type.
func HoverAt(comp *compilation.Compilation, uri string, pos syntax.Position, markdown bool) (*Hover, error) {
	target, err := TargetAt(comp, uri, pos)
	if err != nil {
		return nil, err
	}

	if target == nil {
		return literalHover(comp, uri, pos, markdown)
	}

	span := target.Occurrence.Span()

	if target.Local != nil {
		return &Hover{Contents: format(localSignature(target.Callable, target.Local), nil, markdown), Range: span}, nil
	}

	if c, ok := comp.Symbols.LookupCallable(target.Global); ok {
		return &Hover{Contents: format(CallableSignature(c), c.Documentation, markdown), Range: span}, nil
	}

	if t, ok := comp.Symbols.LookupType(target.Global); ok {
		return &Hover{Contents: format(TypeSignature(t), t.Documentation, markdown), Range: span}, nil
	}

	return nil, nil
}

func literalHover(comp *compilation.Compilation, uri string, pos syntax.Position, markdown bool) (*Hover, error) {
	file, ok := comp.File(uri)
	if !ok || !file.Contains(pos) {
		return nil, nil
	}

	idx, ok := file.FragmentAt(pos, true)
	if !ok {
		return nil, nil
	}

	occ, err := OccurrenceAt(file.Tree.At(idx), pos, true)
	if err != nil {
		return nil, err
	}

	switch o := occ.(type) {
	case *UsedLiteral:
		return &Hover{Contents: format(o.Expr.Type.String(), nil, markdown), Range: o.Range}, nil
	case *UsedType:
		return &Hover{Contents: format(o.Type.String(), nil, markdown), Range: o.Range}, nil
	}

	return nil, nil
}

func localSignature(callable *ast.Callable, decl *ast.LocalVariableDeclaration) string {
	keyword := "let "

	switch {
	case callable != nil && callable.Location != nil && decl.Position != nil && *decl.Position == callable.Location.Offset:
		keyword = "parameter "
	case decl.IsMutable:
		keyword = "mutable "
	}

	return keyword + declString(decl)
}

func format(signature string, docs []string, markdown bool) string {
	if markdown {
		return Markdown(signature, docs)
	}

	return join(signature, symbols.ParseDocumentation(docs).Summary)
}

// DefinitionAt returns the declaration site of the occurrence at pos. Library
// declarations have no site.
func DefinitionAt(comp *compilation.Compilation, uri string, pos syntax.Position) (*Location, error) {
	target, err := TargetAt(comp, uri, pos)
	if err != nil || target == nil {
		return nil, err
	}

	if target.Local != nil {
		r, ok := target.Local.AbsoluteRange()
		if !ok {
			return nil, nil
		}

		return &Location{URI: uri, Range: r}, nil
	}

	if c, ok := comp.Symbols.LookupCallable(target.Global); ok && c.Source != "" {
		if r, ok := c.NameRange(); ok {
			return &Location{URI: c.Source, Range: r}, nil
		}
	}

	if t, ok := comp.Symbols.LookupType(target.Global); ok && t.Source != "" {
		if r, ok := t.NameRange(); ok {
			return &Location{URI: t.Source, Range: r}, nil
		}
	}

	return nil, nil
}

// Highlight is one occurrence of a symbol in the current file.
type Highlight struct {
	Range syntax.Range
	Write bool
}

// HighlightsAt returns the occurrences in uri of the symbol at pos. The
// declaration is marked as a write.
func HighlightsAt(comp *compilation.Compilation, uri string, pos syntax.Position) ([]Highlight, error) {
	refs, err := ReferencesAt(comp, uri, pos, uri)
	if err != nil || refs == nil {
		return nil, err
	}

	var out []Highlight

	if refs.Declaration != nil && refs.Declaration.URI == uri {
		out = append(out, Highlight{Range: refs.Declaration.Range, Write: true})
	}

	for _, loc := range refs.Locations {
		if loc.URI == uri {
			out = append(out, Highlight{Range: loc.Range})
		}
	}

	return out, nil
}

// PrepareRename returns the range of a renameable occurrence at pos and its
// current text. Literals, namespaces and library declarations are not
// renameable.
func PrepareRename(comp *compilation.Compilation, uri string, pos syntax.Position) (syntax.Range, string, bool) {
	target, err := TargetAt(comp, uri, pos)
	if err != nil || target == nil {
		return syntax.Range{}, "", false
	}

	name := target.Global.Name

	if target.Local != nil {
		name = target.Local.Name
	} else {
		c, isCallable := comp.Symbols.LookupCallable(target.Global)
		t, isType := comp.Symbols.LookupType(target.Global)

		if isCallable && (c.Library || c.Source == "") || isType && (t.Library || t.Source == "") {
			return syntax.Range{}, "", false
		}
	}

	span := target.Occurrence.Span()
	if used, ok := target.Occurrence.(*UsedVariable); ok {
		span = nameSpan(span, used.Identifier.Symbol)
	}

	return span, name, true
}
