package analysis

import (
	"errors"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

const (
	suggestionThreshold = 0.8
	maxSuggestions      = 3
)

// CodeAction is a titled set of edits.
type CodeAction struct {
	Title     string
	Edits     []FileEdits
	Preferred bool
}

// CodeActionsAt suggests fixes for an unresolved name starting at pos:
// opening a namespace that declares it, or replacing it with a similarly
// spelled accessible name.
func CodeActionsAt(comp *compilation.Compilation, uri string, pos syntax.Position) []CodeAction {
	file, ok := comp.File(uri)
	if !ok || !file.Contains(pos) {
		return nil
	}

	idx, ok := file.FragmentAt(pos, true)
	if !ok {
		return nil
	}

	ns, ok := compilation.NamespaceOf(file.Tree, idx)
	if !ok {
		return nil
	}

	name, span, ok := unresolvedName(comp, file, idx, ns, pos)
	if !ok {
		return nil
	}

	var actions []CodeAction

	if insertAt, indent, ok := openInsertion(file, idx); ok {
		for _, target := range declaringNamespaces(comp.Symbols, name, ns) {
			actions = append(actions, CodeAction{
				Title:     "open " + target + ";",
				Preferred: len(actions) == 0,
				Edits: []FileEdits{{URI: uri, Edits: []TextEdit{{
					Range:   syntax.Range{Start: insertAt, End: insertAt},
					NewText: indent + "open " + target + ";\n",
				}}}},
			})
		}
	}

	for _, candidate := range similarNames(comp, file, ns, pos, name) {
		actions = append(actions, CodeAction{
			Title: "Replace with " + candidate,
			Edits: []FileEdits{{URI: uri, Edits: []TextEdit{{Range: span, NewText: candidate}}}},
		})
	}

	return actions
}

// unresolvedName returns the unqualified identifier or type name at pos when
// the symbol table cannot resolve it.
func unresolvedName(comp *compilation.Compilation, file *compilation.File, idx int, ns string, pos syntax.Position) (string, syntax.Range, bool) {
	occ, err := OccurrenceAt(file.Tree.At(idx), pos, true)
	if err != nil || occ == nil {
		return "", syntax.Range{}, false
	}

	var sym syntax.Symbol

	switch o := occ.(type) {
	case *UsedVariable:
		if o.Identifier.Global != nil || o.Identifier.Local {
			return "", syntax.Range{}, false
		}

		sym = o.Identifier.Symbol
	case *UsedType:
		if o.Type.Kind != syntax.TypeUserDefined {
			return "", syntax.Range{}, false
		}

		sym = syntax.Symbol{Namespace: o.Type.Name.Namespace, Name: o.Type.Name.Name}
	default:
		return "", syntax.Range{}, false
	}

	if sym.IsQualified() {
		return "", syntax.Range{}, false
	}

	if _, err := comp.Symbols.Resolve(sym, ns, file.URI); !errors.Is(err, symbols.ErrNotFound) {
		return "", syntax.Range{}, false
	}

	return sym.Name, occ.Span(), true
}

// declaringNamespaces lists the namespaces other than current that declare
// an accessible callable or type called name.
func declaringNamespaces(table *symbols.Table, name, current string) []string {
	var out []string

	for _, nsName := range table.NamespaceNames() {
		if nsName == current {
			continue
		}

		ns, _ := table.Namespace(nsName)

		if c, ok := ns.Callable(name); ok && symbols.IsAccessible(c.Access, c.Library) && symbols.IsVisible(name, nsName, current) {
			out = append(out, nsName)
			continue
		}

		if t, ok := ns.Type(name); ok && symbols.IsAccessible(t.Access, t.Library) && symbols.IsVisible(name, nsName, current) {
			out = append(out, nsName)
		}
	}

	return out
}

// openInsertion returns where a new open directive goes: after the last open
// directive of the enclosing namespace, or right after its header.
func openInsertion(file *compilation.File, idx int) (syntax.Position, string, bool) {
	nsIdx, ok := file.Tree.EnclosingOf(idx, func(k fragment.Kind) bool {
		_, ok := k.(*fragment.NamespaceDeclaration)
		return ok
	})
	if !ok {
		return syntax.Position{}, "", false
	}

	after := file.Tree.At(nsIdx).Range.Start.Line
	indent := "    "

	for _, child := range file.Tree.Children(nsIdx) {
		frag := file.Tree.At(child)
		if _, ok := frag.Kind.(*fragment.OpenDirective); ok {
			after = frag.Range.End.Line
			line := file.Line(frag.Range.Start.Line)
			indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		}
	}

	return syntax.Position{Line: after + 1}, indent, true
}

// similarNames returns the accessible names closest to name by Jaro-Winkler
// similarity.
func similarNames(comp *compilation.Compilation, file *compilation.File, ns string, pos syntax.Position, name string) []string {
	var pool []string

	for _, c := range comp.Symbols.AccessibleCallables(ns, file.URI) {
		pool = append(pool, c.Name.Name)
	}

	for _, t := range comp.Symbols.AccessibleTypes(ns, file.URI) {
		pool = append(pool, t.Name.Name)
	}

	if _, spec, ok := comp.CallableAt(file.URI, pos); ok && spec != nil && spec.Body != nil {
		for _, d := range LocalsInScope(spec.Body, pos, false) {
			pool = append(pool, d.Name)
		}
	}

	type scored struct {
		name  string
		score float32
	}

	var ranked []scored

	seen := make(map[string]bool)

	for _, candidate := range pool {
		if candidate == name || seen[candidate] {
			continue
		}

		seen[candidate] = true

		score, err := edlib.StringsSimilarity(name, candidate, edlib.JaroWinkler)
		if err != nil || score < suggestionThreshold {
			continue
		}

		ranked = append(ranked, scored{candidate, score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	var out []string
	for i := 0; i < len(ranked) && i < maxSuggestions; i++ {
		out = append(out, ranked[i].name)
	}

	return out
}
