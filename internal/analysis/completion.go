package analysis

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// CandidateKind classifies a completion candidate.
type CandidateKind int

const (
	KeywordCandidate CandidateKind = iota
	VariableCandidate
	FunctionCandidate
	OperationCandidate
	TypeCandidate
	NamespaceCandidate
	FieldCandidate
)

// CandidateData identifies the declaration behind a candidate so that its
// documentation can be resolved later.
type CandidateData struct {
	Namespace string `json:"namespace"`
	Source    string `json:"source"`
}

// CompletionCandidate is one completion suggestion.
type CompletionCandidate struct {
	Label         string
	Kind          CandidateKind
	Detail        string
	Documentation string
	Data          *CandidateData
}

// CompletionsAt returns the completion candidates at pos. Positions outside
// the file, inside comments or inside string literals yield nothing.
func CompletionsAt(comp *compilation.Compilation, uri string, pos syntax.Position) []CompletionCandidate {
	file, ok := comp.File(uri)
	if !ok || !file.Contains(pos) {
		return nil
	}

	if inString, inComment := lineState(file.TextBefore(pos)); inString || inComment {
		return nil
	}

	ctx := CompletionContextAt(file, pos)
	e := &expander{comp: comp, file: file, pos: pos}
	e.namespace, _ = comp.NamespaceAt(uri, pos)
	e.functionsOnly = ctx.Scope == Function || ctx.Scope == FunctionTopLevel

	kinds, err := ExpectedKinds(ctx)
	if err != nil {
		logger.Debugf("completion grammar at %s: %v", pos, err)

		return e.fallback(ctx.Text)
	}

	for _, k := range kinds {
		e.expand(k)
	}

	return e.result()
}

// CompletionContextAt classifies the scope at pos and collects the text of
// the statement being typed.
func CompletionContextAt(file *compilation.File, pos syntax.Position) CompletionContext {
	text, start := statementText(file, pos)
	ctx := CompletionContext{Text: text}

	depth := file.IndentationAt(pos)
	tree := file.Tree

	i, ok := lastStartingBefore(tree, start)
	if !ok {
		return ctx
	}

	for tree.At(i).Indentation > depth {
		p, ok := tree.Parent(i)
		if !ok {
			return ctx
		}

		i = p
	}

	ctx.Prev = tree.At(i).Kind

	parent, hasParent := tree.Parent(i)
	if tree.At(i).Indentation < depth && fragment.OpensScope(ctx.Prev) {
		ctx.PrevIsParent = true
		parent, hasParent = i, true
	}

	ctx.Scope = scopeOf(tree, parent, hasParent)

	return ctx
}

func lastStartingBefore(tree *fragment.Tree, pos syntax.Position) (int, bool) {
	i, ok := tree.IndexBefore(pos)
	if !ok {
		return 0, false
	}

	if tree.At(i).Range.Start == pos {
		if i == 0 {
			return 0, false
		}

		return i - 1, true
	}

	return i, true
}

func scopeOf(tree *fragment.Tree, parent int, ok bool) CompletionScope {
	if !ok {
		return TopLevel
	}

	isCallable := func(k fragment.Kind) bool {
		_, ok := k.(*fragment.CallableDeclaration)
		return ok
	}

	switch k := tree.At(parent).Kind.(type) {
	case *fragment.NamespaceDeclaration:
		return NamespaceTopLevel
	case *fragment.CallableDeclaration:
		if k.Kind == ast.Operation {
			return OperationTopLevel
		}

		return FunctionTopLevel
	}

	if c, ok := tree.EnclosingOf(parent, isCallable); ok {
		if tree.At(c).Kind.(*fragment.CallableDeclaration).Kind == ast.Operation {
			return Operation
		}

		return Function
	}

	return NamespaceTopLevel
}

// statementText returns the live text from the last statement delimiter
// before pos up to pos, and the position where that statement's text starts.
func statementText(file *compilation.File, pos syntax.Position) (string, syntax.Position) {
	var parts []string

	line, cut := 0, 0

	for l := pos.Line; l >= 0; l-- {
		text := file.Line(l)
		if l == pos.Line {
			text = document.Prefix(text, pos.Column)
		}

		text = stripLineComment(text)

		if i := lastDelimiter(text); i >= 0 {
			parts = append(parts, text[i+1:])
			line, cut = l, i+1

			break
		}

		parts = append(parts, text)
	}

	slices.Reverse(parts)
	joined := strings.Join(parts, "\n")

	for _, r := range joined {
		if !unicode.IsSpace(r) {
			break
		}

		if r == '\n' {
			line, cut = line+1, 0
		} else {
			cut++
		}
	}

	start := syntax.Position{Line: line, Column: document.ByteToColumn(file.Line(line), cut)}
	if start.After(pos) {
		start = pos
	}

	return joined, start
}

// lineState reports whether the end of a line prefix lies inside a string
// literal or a line comment.
func lineState(prefix string) (inString, inComment bool) {
	for i := 0; i < len(prefix); i++ {
		switch c := prefix[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case !inString && c == '/' && i+1 < len(prefix) && prefix[i+1] == '/':
			return false, true
		}
	}

	return inString, false
}

func stripLineComment(line string) string {
	inString := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case !inString && c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}

	return line
}

func lastDelimiter(line string) int {
	last := -1
	inString := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case !inString && (c == ';' || c == '{' || c == '}'):
			last = i
		}
	}

	return last
}

type candidateKey struct {
	label string
	kind  CandidateKind
}

type expander struct {
	comp          *compilation.Compilation
	file          *compilation.File
	pos           syntax.Position
	namespace     string
	functionsOnly bool

	seen map[candidateKey]bool
	out  []CompletionCandidate
}

func (e *expander) add(c CompletionCandidate) {
	if e.seen == nil {
		e.seen = make(map[candidateKey]bool)
	}

	key := candidateKey{c.Label, c.Kind}
	if c.Label == "" || e.seen[key] {
		return
	}

	e.seen[key] = true
	e.out = append(e.out, c)
}

func (e *expander) result() []CompletionCandidate {
	sort.SliceStable(e.out, func(i, j int) bool {
		if e.out[i].Kind != e.out[j].Kind {
			return candidateRank(e.out[i].Kind) < candidateRank(e.out[j].Kind)
		}

		return e.out[i].Label < e.out[j].Label
	})

	return e.out
}

func candidateRank(k CandidateKind) int {
	switch k {
	case VariableCandidate, FieldCandidate:
		return 0
	case FunctionCandidate, OperationCandidate, TypeCandidate:
		return 1
	case NamespaceCandidate:
		return 2
	}

	return 3
}

func (e *expander) expand(kind CompletionKind) {
	switch k := kind.(type) {
	case Keyword:
		e.add(CompletionCandidate{Label: string(k), Kind: KeywordCandidate})
	case Member:
		e.expandMember(k.Namespace, k.Kind)
	case Expected:
		switch k {
		case ExpectVariable:
			e.addLocals(false)
		case ExpectMutableVariable:
			e.addLocals(true)
		case ExpectCallable:
			e.addCallables(e.comp.Symbols.AccessibleCallables(e.namespace, e.file.URI))
			e.addNamespaceRoots()
		case ExpectUserDefinedType:
			e.addTypes(e.comp.Symbols.AccessibleTypes(e.namespace, e.file.URI))
			e.addNamespaceRoots()
		case ExpectNamespace:
			for _, name := range e.comp.Symbols.NamespaceNames() {
				e.add(CompletionCandidate{Label: name, Kind: NamespaceCandidate})
			}

			e.addAliases()
		case ExpectNamedItem:
			for _, t := range e.comp.Symbols.AllAccessibleTypes(e.namespace) {
				for _, item := range t.Items.Named() {
					e.add(CompletionCandidate{
						Label:  item.Name,
						Kind:   FieldCandidate,
						Detail: item.Name + " : " + item.Type.String(),
					})
				}
			}
		}
	}
}

func (e *expander) addLocals(mutableOnly bool) {
	_, spec, ok := e.comp.CallableAt(e.file.URI, e.pos)
	if !ok || spec == nil || spec.Body == nil {
		return
	}

	for _, d := range LocalsInScope(spec.Body, e.pos, false) {
		if mutableOnly && !d.IsMutable {
			continue
		}

		e.add(CompletionCandidate{Label: d.Name, Kind: VariableCandidate, Detail: d.Type.String()})
	}
}

func (e *expander) addCallables(callables []*ast.Callable) {
	for _, c := range callables {
		if e.functionsOnly && c.Kind == ast.Operation {
			continue
		}

		kind := FunctionCandidate
		if c.Kind == ast.Operation {
			kind = OperationCandidate
		}

		e.add(CompletionCandidate{
			Label: c.Name.Name,
			Kind:  kind,
			Data:  &CandidateData{Namespace: c.Name.Namespace, Source: c.Source},
		})
	}
}

func (e *expander) addTypes(types []*ast.TypeDecl) {
	for _, t := range types {
		e.add(CompletionCandidate{
			Label: t.Name.Name,
			Kind:  TypeCandidate,
			Data:  &CandidateData{Namespace: t.Name.Namespace, Source: t.Source},
		})
	}
}

// addNamespaceRoots offers the first segment of every namespace name, from
// which qualified names are typed one segment at a time.
func (e *expander) addNamespaceRoots() {
	for _, name := range e.comp.Symbols.NamespaceNames() {
		root, _, _ := strings.Cut(name, ".")
		e.add(CompletionCandidate{Label: root, Kind: NamespaceCandidate})
	}

	e.addAliases()
}

func (e *expander) addAliases() {
	for _, open := range e.comp.Symbols.Aliases(e.namespace, e.file.URI) {
		e.add(CompletionCandidate{Label: open.Alias, Kind: NamespaceCandidate, Detail: open.Namespace})
	}
}

// expandMember offers what follows "qualifier." for the inner kind.
func (e *expander) expandMember(qualifier string, inner CompletionKind) {
	target := qualifier
	if resolved, ok := e.comp.Symbols.ResolveNamespace(qualifier, e.namespace, e.file.URI); ok {
		target = resolved
	}

	switch inner {
	case ExpectCallable:
		e.addCallables(e.comp.Symbols.CallablesIn(target, e.namespace))
	case ExpectUserDefinedType:
		e.addTypes(e.comp.Symbols.TypesIn(target, e.namespace))
	}

	for _, name := range e.comp.Symbols.NamespaceNames() {
		rest, ok := strings.CutPrefix(name, target+".")
		if !ok {
			continue
		}

		segment, _, _ := strings.Cut(rest, ".")
		e.add(CompletionCandidate{Label: segment, Kind: NamespaceCandidate})
	}
}

var (
	qualifierSuffix = regexp.MustCompile(`(?:^|[^\w.])([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\.\w*$`)
	bareDotSuffix   = regexp.MustCompile(`\.\w*$`)
)

// fallback is the context-free candidate set used when the grammar cannot
// parse the statement text.
func (e *expander) fallback(text string) []CompletionCandidate {
	if m := qualifierSuffix.FindStringSubmatch(text); m != nil {
		e.expandMember(m[1], ExpectCallable)
		e.expandMember(m[1], ExpectUserDefinedType)

		return e.result()
	}

	if bareDotSuffix.MatchString(text) {
		return []CompletionCandidate{}
	}

	for _, k := range ReservedKeywords() {
		e.add(CompletionCandidate{Label: k, Kind: KeywordCandidate})
	}

	e.addLocals(false)
	e.addCallables(e.comp.Symbols.AccessibleCallables(e.namespace, e.file.URI))
	e.addTypes(e.comp.Symbols.AccessibleTypes(e.namespace, e.file.URI))
	e.addNamespaceRoots()

	return e.result()
}

// ResolveCompletionDetails attaches the signature and documentation of the
// declaration behind c. Candidates without a resolvable declaration are
// returned unchanged.
func ResolveCompletionDetails(comp *compilation.Compilation, c CompletionCandidate, markdown bool) CompletionCandidate {
	if comp == nil || c.Data == nil {
		return c
	}

	name := syntax.QualifiedName{Namespace: c.Data.Namespace, Name: c.Label}

	var (
		signature string
		docs      []string
	)

	switch c.Kind {
	case FunctionCandidate, OperationCandidate:
		callable, ok := comp.Symbols.LookupCallable(name)
		if !ok || callable.Source != c.Data.Source {
			return c
		}

		signature, docs = CallableSignature(callable), callable.Documentation
	case TypeCandidate:
		t, ok := comp.Symbols.LookupType(name)
		if !ok || t.Source != c.Data.Source {
			return c
		}

		signature, docs = TypeSignature(t), t.Documentation
	default:
		return c
	}

	doc := symbols.ParseDocumentation(docs)

	c.Detail = signature
	c.Documentation = doc.Summary

	if markdown && doc.Description != "" {
		c.Documentation = join(c.Documentation, doc.Description)
	}

	return c
}

func join(a, b string) string {
	if a == "" {
		return b
	}

	return a + "\n\n" + b
}
