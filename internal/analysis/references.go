package analysis

import (
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Location is a range in a file.
type Location struct {
	URI   string
	Range syntax.Range
}

// References is the result of a reference search. Declaration is nil when
// the declaration site is not part of the compilation, such as for library
// callables. Locations never contain the declaration itself.
type References struct {
	Declaration *Location
	Locations   []Location
	// Local is set when the symbol is a local variable.
	Local bool
}

// All returns the locations, preceded by the declaration when withDecl is
// set.
func (r *References) All(withDecl bool) []Location {
	if r == nil {
		return nil
	}

	out := make([]Location, 0, len(r.Locations)+1)
	if withDecl && r.Declaration != nil {
		out = append(out, *r.Declaration)
	}

	out = append(out, r.Locations...)

	return dedupeLocations(out)
}

// Target is what an occurrence refers to: a local declaration or a global
// qualified name.
type Target struct {
	Occurrence SymbolOccurrence
	Namespace  string
	Callable   *ast.Callable
	Spec       *ast.Specialization
	Local      *ast.LocalVariableDeclaration
	Global     syntax.QualifiedName
}

// TargetAt resolves the occurrence at pos. It returns nil when there is no
// occurrence, the occurrence is a literal or a namespace declaration, or the
// symbol cannot be resolved.
func TargetAt(comp *compilation.Compilation, uri string, pos syntax.Position) (*Target, error) {
	file, ok := comp.File(uri)
	if !ok || !file.Contains(pos) {
		return nil, nil
	}

	idx, ok := file.FragmentAt(pos, true)
	if !ok {
		return nil, nil
	}

	frag := file.Tree.At(idx)

	occ, err := OccurrenceAt(frag, pos, true)
	if err != nil || occ == nil {
		return nil, err
	}

	ns, ok := compilation.NamespaceOf(file.Tree, idx)
	if !ok {
		return nil, nil
	}

	if _, known := comp.Symbols.Namespace(ns); !known {
		logger.Debugf("namespace %s has no resolved symbols", ns)
		return nil, nil
	}

	target := &Target{Occurrence: occ, Namespace: ns}

	var sym syntax.Symbol

	switch o := occ.(type) {
	case *UsedLiteral:
		return nil, nil
	case *Declaration:
		switch frag.Kind.(type) {
		case *fragment.NamespaceDeclaration, *fragment.OpenDirective:
			return nil, nil
		case *fragment.CallableDeclaration, *fragment.TypeDefinition:
			if o.Symbol.Range != nil && o.Symbol.Range.Offset(frag.Range.Start) == headerNameRange(frag) {
				target.Global = syntax.QualifiedName{Namespace: ns, Name: o.Symbol.Name}
				return target, nil
			}
		}

		sym = o.Symbol
	case *UsedVariable:
		sym = o.Identifier.Symbol
		if o.Identifier.Global != nil {
			target.Global = *o.Identifier.Global
			return target, nil
		}
	case *UsedType:
		if o.Type.Kind != syntax.TypeUserDefined {
			return nil, nil
		}

		res, err := comp.Symbols.ResolveType(syntax.Symbol{Namespace: o.Type.Name.Namespace, Name: o.Type.Name.Name}, ns, uri)
		if err != nil {
			logger.Debugf("unresolved type %s: %v", o.Type.Name, err)
			return nil, nil
		}

		target.Global = res.Name

		return target, nil
	}

	if !sym.IsQualified() {
		if callable, spec, ok := comp.CallableOf(file, idx); ok && spec != nil && spec.Body != nil {
			target.Callable, target.Spec = callable, spec
			if decl, ok := findLocal(LocalsInScope(spec.Body, pos, true), sym.Name); ok {
				target.Local = decl
				return target, nil
			}
		}
	}

	res, err := comp.Symbols.Resolve(sym, ns, uri)
	if err != nil {
		logger.Debugf("unresolved symbol %s: %v", sym, err)
		return nil, nil
	}

	target.Global = res.Name

	return target, nil
}

func headerNameRange(frag *fragment.Fragment) syntax.Range {
	var name syntax.Symbol

	switch k := frag.Kind.(type) {
	case *fragment.CallableDeclaration:
		name = k.Name
	case *fragment.TypeDefinition:
		name = k.Name
	}

	if name.Range == nil {
		return syntax.Range{}
	}

	return name.Range.Offset(frag.Range.Start)
}

// ReferencesAt finds the declaration and every use of the symbol at pos.
// Global searches cover only the files in limitTo when it is non-empty.
func ReferencesAt(comp *compilation.Compilation, uri string, pos syntax.Position, limitTo ...string) (*References, error) {
	target, err := TargetAt(comp, uri, pos)
	if err != nil || target == nil {
		return nil, err
	}

	if target.Local != nil {
		return localReferences(uri, target.Callable, target.Local), nil
	}

	return globalReferences(comp, target.Global, limitTo), nil
}

func localReferences(uri string, callable *ast.Callable, decl *ast.LocalVariableDeclaration) *References {
	refs := &References{Local: true}

	declRange, ok := decl.AbsoluteRange()
	if ok {
		refs.Declaration = &Location{URI: uri, Range: declRange}
	}

	var found []syntax.Range

	if callable.Location != nil && decl.Position != nil && *decl.Position == callable.Location.Offset {
		// Parameters are shared by every specialization in the file.
		for _, spec := range callable.Specializations {
			if spec.Source == uri && spec.Body != nil {
				for _, stmt := range spec.Body.Statements {
					found = append(found, localUses(stmt, decl.Name)...)
				}
			}
		}
	} else {
		for _, spec := range callable.Specializations {
			if spec.Source != uri || spec.Body == nil {
				continue
			}

			stmts, ok := declaringStatements(spec.Body, decl)
			if !ok {
				continue
			}

			for _, stmt := range stmts {
				found = append(found, localUses(stmt, decl.Name)...)
			}

			break
		}
	}

	for _, r := range found {
		if ok && r == declRange {
			continue
		}

		refs.Locations = append(refs.Locations, Location{URI: uri, Range: r})
	}

	refs.Locations = dedupeLocations(refs.Locations)

	return refs
}

// declaringStatements returns the statements a local is visible in: the
// declaring statement and its following siblings when the statement lists
// the local among its declarations, or the declaring statement alone for
// loop variables, allocation bindings and lambda parameters.
func declaringStatements(scope *ast.Scope, decl *ast.LocalVariableDeclaration) ([]*ast.Statement, bool) {
	if scope == nil || decl.Position == nil {
		return nil, false
	}

	for i, stmt := range scope.Statements {
		if offset, ok := stmt.Offset(); ok && offset == *decl.Position {
			for _, d := range stmt.SymbolDeclarations {
				if d.Name == decl.Name && d.Range == decl.Range {
					return scope.Statements[i:], true
				}
			}

			return scope.Statements[i : i+1], true
		}

		if retry, ok := stmt.Kind.(*ast.RepeatUntil); ok && retry.Repeat.Body != nil {
			// The until condition sees the bindings of the retry body.
			if stmts, ok := declaringStatements(retryScope(retry), decl); ok {
				until := &ast.Statement{Kind: &ast.ExpressionStatement{Expr: retry.Until}, Location: stmt.Location}
				return append(stmts[:len(stmts):len(stmts)], until), true
			}

			continue
		}

		for _, child := range stmt.ChildScopes() {
			if stmts, ok := declaringStatements(child, decl); ok {
				return stmts, true
			}
		}
	}

	return nil, false
}

// localUses returns the absolute ranges of local identifiers and bindings
// named name in stmt, including nested scopes.
func localUses(stmt *ast.Statement, name string) []syntax.Range {
	var out []syntax.Range

	if offset, ok := stmt.Offset(); ok {
		for _, tuple := range stmt.Bindings() {
			for _, sym := range tuple.Flatten() {
				if sym.Name == name && sym.Range != nil {
					out = append(out, sym.Range.Offset(offset))
				}
			}
		}
	}

	for _, anchored := range stmt.Expressions() {
		base := anchored.Base
		anchored.Expr.Walk(func(e *ast.Expression) bool {
			switch k := e.Kind.(type) {
			case *ast.Identifier:
				if k.Local && !k.Symbol.IsQualified() && k.Symbol.Name == name {
					if r := identifierRange(e, k); r != nil {
						out = append(out, r.Offset(base))
					}
				}
			case *ast.Lambda:
				for _, sym := range k.Params.Flatten() {
					if sym.Name == name && sym.Range != nil {
						out = append(out, sym.Range.Offset(base))
					}
				}
			}

			return true
		})
	}

	for _, child := range stmt.ChildScopes() {
		for _, s := range child.Statements {
			out = append(out, localUses(s, name)...)
		}
	}

	return out
}

// identifierRange returns the range of the identifier's name.
func identifierRange(e *ast.Expression, id *ast.Identifier) *syntax.Range {
	r := id.Symbol.Range
	if r == nil {
		r = e.Range
	}

	if r == nil {
		return nil
	}

	narrowed := nameSpan(*r, id.Symbol)

	return &narrowed
}

// nameSpan narrows the range of a qualified name written on one line to its
// last segment, so a rename keeps the qualifier.
func nameSpan(r syntax.Range, sym syntax.Symbol) syntax.Range {
	if !sym.IsQualified() || r.Start.Line != r.End.Line {
		return r
	}

	width := document.ColumnCount(sym.Name)
	if r.End.Column-width < r.Start.Column {
		return r
	}

	return syntax.Range{Start: syntax.Position{Line: r.End.Line, Column: r.End.Column - width}, End: r.End}
}

func allowedFiles(limitTo []string) func(string) bool {
	if len(limitTo) == 0 {
		return func(string) bool { return true }
	}

	set := make(map[string]bool, len(limitTo))
	for _, uri := range limitTo {
		set[uri] = true
	}

	return func(uri string) bool { return set[uri] }
}

// globalReferences searches callable bodies and declaration headers for
// uses of name. Files are searched in parallel.
func globalReferences(comp *compilation.Compilation, name syntax.QualifiedName, limitTo []string) *References {
	allowed := allowedFiles(limitTo)
	refs := &References{}

	if callable, ok := comp.Symbols.LookupCallable(name); ok {
		if r, ok := callable.NameRange(); ok && callable.Source != "" {
			refs.Declaration = &Location{URI: callable.Source, Range: r}
		}
	} else if typ, ok := comp.Symbols.LookupType(name); ok {
		if r, ok := typ.NameRange(); ok && typ.Source != "" {
			refs.Declaration = &Location{URI: typ.Source, Range: r}
		}
	}

	bySource := make(map[string][]*ast.Specialization)

	for _, ns := range comp.Namespaces {
		for _, callable := range ns.Callables {
			for _, spec := range callable.Specializations {
				if spec.Body != nil && spec.Source != "" && allowed(spec.Source) {
					bySource[spec.Source] = append(bySource[spec.Source], spec)
				}
			}
		}
	}

	var (
		mu    sync.Mutex
		found []Location
	)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for source, specs := range bySource {
		g.Go(func() error {
			var local []Location

			for _, spec := range specs {
				spec.Body.Walk(func(stmt *ast.Statement) {
					for _, r := range globalUses(stmt, name) {
						local = append(local, Location{URI: source, Range: r})
					}
				})
			}

			mu.Lock()
			found = append(found, local...)
			mu.Unlock()

			return nil
		})
	}

	for _, file := range comp.Files() {
		if !allowed(file.URI) {
			continue
		}

		g.Go(func() error {
			local := headerTypeUses(comp, file, name)

			mu.Lock()
			found = append(found, local...)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	for _, loc := range found {
		if refs.Declaration != nil && loc == *refs.Declaration {
			continue
		}

		refs.Locations = append(refs.Locations, loc)
	}

	refs.Locations = dedupeLocations(refs.Locations)

	logger.Debugf("found %d references to %s", len(refs.Locations), name)

	return refs
}

func globalUses(stmt *ast.Statement, name syntax.QualifiedName) []syntax.Range {
	var out []syntax.Range

	for _, anchored := range stmt.Expressions() {
		base := anchored.Base
		anchored.Expr.Walk(func(e *ast.Expression) bool {
			if id, ok := e.Kind.(*ast.Identifier); ok && id.Global != nil && *id.Global == name {
				if r := identifierRange(e, id); r != nil {
					out = append(out, r.Offset(base))
				}
			}

			return true
		})
	}

	return out
}

// headerTypeUses finds user-defined type references written in declaration
// headers and array constructors of file that resolve to name.
func headerTypeUses(comp *compilation.Compilation, file *compilation.File, name syntax.QualifiedName) []Location {
	var out []Location

	for i := 0; i < file.Tree.Len(); i++ {
		frag := file.Tree.At(i)

		occ := FragmentOccurrences(frag)
		if len(occ.Types) == 0 {
			continue
		}

		ns, ok := compilation.NamespaceOf(file.Tree, i)
		if !ok {
			continue
		}

		for _, used := range occ.Types {
			if used.Type.Kind != syntax.TypeUserDefined {
				continue
			}

			res, err := comp.Symbols.ResolveType(syntax.Symbol{Namespace: used.Type.Name.Namespace, Name: used.Type.Name.Name}, ns, file.URI)
			if err == nil && res.Name == name {
				out = append(out, Location{URI: file.URI, Range: used.Range})
			}
		}
	}

	return out
}

func dedupeLocations(locs []Location) []Location {
	if len(locs) == 0 {
		return locs
	}

	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].URI != locs[j].URI {
			return locs[i].URI < locs[j].URI
		}

		return locs[i].Range.Compare(locs[j].Range) < 0
	})

	out := locs[:1]
	for _, loc := range locs[1:] {
		if loc != out[len(out)-1] {
			out = append(out, loc)
		}
	}

	return out
}
