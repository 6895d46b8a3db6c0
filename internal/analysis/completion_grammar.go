package analysis

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// CompletionScope classifies where a completion was requested.
type CompletionScope int

const (
	TopLevel CompletionScope = iota
	NamespaceTopLevel
	Function
	FunctionTopLevel
	Operation
	OperationTopLevel
)

func (s CompletionScope) String() string {
	switch s {
	case NamespaceTopLevel:
		return "namespace top level"
	case Function:
		return "function"
	case FunctionTopLevel:
		return "function top level"
	case Operation:
		return "operation"
	case OperationTopLevel:
		return "operation top level"
	}

	return "top level"
}

func (s CompletionScope) inCallable() bool {
	return s >= Function
}

func (s CompletionScope) inOperation() bool {
	return s == Operation || s == OperationTopLevel
}

// CompletionKind is a syntactically valid kind of next token.
type CompletionKind interface {
	isCompletionKind()
}

// Keyword is a reserved word.
type Keyword string

// Member is a kind reached through a namespace qualifier such as "M.".
type Member struct {
	Namespace string
	Kind      CompletionKind
}

// Expected names the symbol kinds a completion may draw from.
type Expected int

const (
	ExpectUserDefinedType Expected = iota
	ExpectNamedItem
	ExpectNamespace
	ExpectVariable
	ExpectMutableVariable
	ExpectCallable
)

func (Keyword) isCompletionKind()  {}
func (Member) isCompletionKind()   {}
func (Expected) isCompletionKind() {}

// ErrNoParse reports text the completion grammar cannot make sense of.
var ErrNoParse = errors.New("completion text does not parse")

var (
	namespaceKeywords   = []string{"open", "function", "operation", "newtype", "internal"}
	statementKeywords   = []string{"let", "mutable", "set", "if", "for", "while", "return", "fail"}
	operationKeywords   = []string{"use", "borrow", "repeat", "within"}
	specializationWords = []string{"body", "adjoint", "controlled"}
	generatorKeywords   = []string{"auto", "self", "invert", "distribute", "intrinsic"}
	valueKeywords       = []string{"true", "false", "Zero", "One", "PauliI", "PauliX", "PauliY", "PauliZ", "new", "not"}
	functorKeywords     = []string{"Adjoint", "Controlled"}
	operatorKeywords    = []string{"and", "or"}

	operationOnly = map[string]bool{
		"use": true, "borrow": true, "repeat": true, "until": true, "fixup": true,
		"within": true, "apply": true, "body": true, "adjoint": true, "controlled": true,
		"Adjoint": true, "Controlled": true,
	}
)

// ReservedKeywords returns every keyword offered by the context-free
// fallback.
func ReservedKeywords() []string {
	var out []string
	for _, group := range [][]string{
		{"namespace"}, namespaceKeywords, statementKeywords, operationKeywords,
		{"elif", "else", "in", "until", "fixup", "apply", "as", "is", "Adj", "Ctl"},
		specializationWords, generatorKeywords, valueKeywords, functorKeywords, operatorKeywords,
		syntax.PrimitiveTypeNames,
	} {
		out = append(out, group...)
	}

	return out
}

// CompletionContext is the input of the completion grammar.
type CompletionContext struct {
	Scope CompletionScope
	// Prev is the kind of the fragment preceding the cursor's statement;
	// PrevIsParent marks the opener of the block the cursor is in.
	Prev         fragment.Kind
	PrevIsParent bool
	// Text is the current statement's text up to the cursor.
	Text string
}

// ExpectedKinds runs the completion grammar on ctx.
func ExpectedKinds(ctx CompletionContext) ([]CompletionKind, error) {
	tokens, partial, err := tokenize(ctx.Text)
	if err != nil {
		return nil, err
	}

	qualifier := ""
	if partial != "" {
		if i := strings.LastIndexByte(partial, '.'); i >= 0 {
			qualifier = partial[:i]
		}
	}

	kinds, err := statementKinds(ctx, tokens)
	if err != nil || qualifier == "" {
		return kinds, err
	}

	var members []CompletionKind

	for _, k := range kinds {
		switch k {
		case ExpectCallable, ExpectUserDefinedType, ExpectNamespace:
			members = append(members, Member{Namespace: qualifier, Kind: k})
		}
	}

	return members, nil
}

func keywords(words ...[]string) []CompletionKind {
	var out []CompletionKind
	for _, group := range words {
		for _, w := range group {
			out = append(out, Keyword(w))
		}
	}

	return out
}

func statementKinds(ctx CompletionContext, t []token) ([]CompletionKind, error) {
	scope := ctx.Scope

	if len(t) == 0 {
		return startKinds(ctx), nil
	}

	first := t[0]
	if first.kind != tokIdent {
		if scope.inCallable() {
			return exprKinds(t, scope.inOperation())
		}

		return nil, fmt.Errorf("%w: unexpected %q", ErrNoParse, first.text)
	}

	switch scope {
	case TopLevel:
		if first.text == "namespace" {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: expected namespace", ErrNoParse)
	case NamespaceTopLevel:
		return declarationKinds(t)
	}

	if !scope.inOperation() && operationOnly[first.text] {
		return nil, fmt.Errorf("%w: %q is not allowed in a function", ErrNoParse, first.text)
	}

	rest := t[1:]

	switch first.text {
	case "let", "mutable":
		if i := indexOf(rest, "="); i >= 0 {
			return exprKinds(rest[i+1:], scope.inOperation())
		}

		return nil, nil
	case "set":
		return setKinds(rest, scope.inOperation())
	case "if", "elif", "while", "return", "fail":
		return exprKinds(rest, scope.inOperation())
	case "until":
		kinds, err := exprKinds(rest, true)
		if err == nil && len(rest) > 0 && endsWithOperand(rest) {
			kinds = append(kinds, Keyword("fixup"))
		}

		return kinds, err
	case "for":
		return forKinds(rest, scope.inOperation())
	case "use", "borrow":
		return allocationKinds(rest)
	case "else", "repeat", "within", "apply", "fixup":
		if len(rest) == 0 {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: unexpected text after %s", ErrNoParse, first.text)
	case "body", "adjoint", "controlled":
		if scope != OperationTopLevel {
			break
		}

		return specializationKinds(t)
	}

	return exprKinds(t, scope.inOperation())
}

func startKinds(ctx CompletionContext) []CompletionKind {
	switch ctx.Scope {
	case TopLevel:
		return keywords([]string{"namespace"})
	case NamespaceTopLevel:
		return keywords(namespaceKeywords)
	}

	kinds := keywords(statementKeywords)
	if ctx.Scope.inOperation() {
		kinds = append(kinds, keywords(operationKeywords, functorKeywords)...)
	}

	if ctx.Scope == OperationTopLevel {
		kinds = append(kinds, keywords(specializationWords)...)
	}

	if !ctx.PrevIsParent {
		switch k := ctx.Prev.(type) {
		case *fragment.IfClause, *fragment.ElifClause:
			kinds = append(kinds, Keyword("elif"), Keyword("else"))
		case *fragment.RepeatIntro:
			kinds = append(kinds, Keyword("until"))
		case *fragment.WithinBlockIntro:
			kinds = append(kinds, Keyword("apply"))
		case *fragment.UntilSuccess:
			if !k.HasFixup {
				kinds = append(kinds, Keyword("fixup"))
			}
		}
	}

	return append(kinds, ExpectVariable, ExpectCallable)
}

func declarationKinds(t []token) ([]CompletionKind, error) {
	first, rest := t[0].text, t[1:]

	switch first {
	case "open":
		switch {
		case len(rest) == 0:
			return []CompletionKind{ExpectNamespace}, nil
		case len(rest) == 1 && rest[0].kind == tokIdent:
			return keywords([]string{"as"}), nil
		case len(rest) == 2 && rest[1].text == "as":
			return nil, nil
		}

		return nil, fmt.Errorf("%w: malformed open directive", ErrNoParse)
	case "internal":
		if len(rest) == 0 {
			return keywords([]string{"function", "operation", "newtype"}), nil
		}

		return declarationKinds(rest)
	case "function", "operation":
		return headerKinds(rest, false)
	case "newtype":
		return headerKinds(rest, true)
	}

	return nil, fmt.Errorf("%w: unexpected %q at namespace level", ErrNoParse, first)
}

// headerKinds walks a callable or type declaration header, tracking whether
// each parenthesized level holds names or types.
func headerKinds(t []token, typeDecl bool) ([]CompletionKind, error) {
	if err := checkBrackets(t); err != nil {
		return nil, err
	}

	if len(t) == 0 {
		return nil, nil
	}

	var (
		stack      []bool
		expectType bool
		afterIs    bool
	)

	for _, tok := range t {
		switch tok.text {
		case ":", "->", "=>":
			expectType = true
		case "=":
			expectType = typeDecl
		case "(":
			stack = append(stack, expectType)
		case ",":
			if len(stack) > 0 {
				expectType = stack[len(stack)-1]
			}
		case ")":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

			expectType = false
		case "is":
			afterIs = true
		}
	}

	last := t[len(t)-1].text

	switch {
	case afterIs && (last == "is" || last == "+"):
		return keywords([]string{"Adj", "Ctl"}), nil
	case expectType && (last == ":" || last == "->" || last == "=>" || last == "(" || last == "," || last == "="):
		return typeKinds(), nil
	}

	return nil, nil
}

func specializationKinds(t []token) ([]CompletionKind, error) {
	switch {
	case len(t) == 1 && t[0].text == "controlled":
		return keywords([]string{"adjoint"}, generatorKeywords), nil
	case len(t) == 1:
		return keywords(generatorKeywords), nil
	case len(t) == 2 && t[0].text == "controlled" && t[1].text == "adjoint":
		return keywords(generatorKeywords), nil
	}

	return nil, nil
}

func typeKinds() []CompletionKind {
	return append(keywords(syntax.PrimitiveTypeNames), ExpectUserDefinedType)
}

func setKinds(rest []token, inOperation bool) ([]CompletionKind, error) {
	if len(rest) == 0 {
		return []CompletionKind{ExpectMutableVariable}, nil
	}

	for i, tok := range rest {
		if tok.kind == tokOp && (tok.text == "=" || strings.HasSuffix(tok.text, "=") && tok.text != "==" && tok.text != "!=" && tok.text != "<=" && tok.text != ">=") {
			return exprKinds(rest[i+1:], inOperation)
		}
	}

	return nil, nil
}

func forKinds(rest []token, inOperation bool) ([]CompletionKind, error) {
	if i := indexOf(rest, "in"); i >= 0 {
		return exprKinds(rest[i+1:], inOperation)
	}

	if len(rest) > 0 && endsWithOperand(rest) {
		return keywords([]string{"in"}), nil
	}

	return nil, nil
}

func allocationKinds(rest []token) ([]CompletionKind, error) {
	i := indexOf(rest, "=")
	if i < 0 {
		return nil, nil
	}

	init := rest[i+1:]
	if err := checkBrackets(init); err != nil {
		return nil, err
	}

	if len(init) == 0 {
		return keywords([]string{"Qubit"}), nil
	}

	// Inside "Qubit[...]" the size is an ordinary expression.
	for j := len(init) - 1; j > 0; j-- {
		if init[j].text == "[" && init[j-1].text == "Qubit" {
			if closed := indexOf(init[j:], "]"); closed < 0 {
				return exprKinds(init[j+1:], true)
			}

			break
		}
	}

	switch last := init[len(init)-1]; {
	case last.text == ",":
		return keywords([]string{"Qubit"}), nil
	case last.text == "(" && (len(init) == 1 || init[len(init)-2].text != "Qubit"):
		return keywords([]string{"Qubit"}), nil
	}

	return nil, nil
}

// exprKinds returns what may follow the expression tokens t.
func exprKinds(t []token, inOperation bool) ([]CompletionKind, error) {
	if err := checkBrackets(t); err != nil {
		return nil, err
	}

	if len(t) == 0 {
		return valueKinds(inOperation), nil
	}

	last := t[len(t)-1]

	switch {
	case last.text == "::":
		return []CompletionKind{ExpectNamedItem}, nil
	case last.text == "new":
		return typeKinds(), nil
	case last.text == ".":
		return nil, fmt.Errorf("%w: dot without a qualifier", ErrNoParse)
	case last.kind == tokIdent && (last.text == "Adjoint" || last.text == "Controlled"):
		if !inOperation {
			return nil, fmt.Errorf("%w: functor application in a function", ErrNoParse)
		}

		return append(keywords(functorKeywords), ExpectVariable, ExpectCallable), nil
	case endsWithOperand(t):
		return keywords(operatorKeywords), nil
	}

	return valueKinds(inOperation), nil
}

func valueKinds(inOperation bool) []CompletionKind {
	kinds := []CompletionKind{ExpectVariable, ExpectCallable, ExpectUserDefinedType}
	kinds = append(kinds, keywords(valueKeywords)...)

	if inOperation {
		kinds = append(kinds, keywords(functorKeywords)...)
	}

	return kinds
}

func endsWithOperand(t []token) bool {
	last := t[len(t)-1]

	switch last.kind {
	case tokNumber, tokString:
		return true
	case tokIdent:
		switch last.text {
		case "and", "or", "not", "new", "in", "is":
			return false
		}

		return true
	case tokPunct:
		return last.text == ")" || last.text == "]"
	}

	return false
}

func checkBrackets(t []token) error {
	depth := map[string]int{}
	pairs := map[string]string{")": "(", "]": "[", "}": "{"}

	for _, tok := range t {
		if tok.kind != tokPunct {
			continue
		}

		switch tok.text {
		case "(", "[", "{":
			depth[tok.text]++
		case ")", "]", "}":
			open := pairs[tok.text]
			if depth[open] == 0 {
				return fmt.Errorf("%w: unbalanced %q", ErrNoParse, tok.text)
			}

			depth[open]--
		}
	}

	return nil
}

func indexOf(t []token, text string) int {
	for i, tok := range t {
		if tok.text == text {
			return i
		}
	}

	return -1
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokPunct
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

var operators = []string{
	"<<<", ">>>", "&&&", "|||", "^^^", "...",
	"..", "::", "->", "=>", "==", "!=", "<=", ">=", "<-", "+=", "-=", "*=", "/=", "%=", "^=",
	"=", "+", "-", "*", "/", "%", "^", "<", ">", "!", "?", "|", "@", ":", ".", "'", "$", "~",
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize splits text into tokens. An identifier touching the end of text
// is the word being typed; it is returned as partial instead of a token.
func tokenize(text string) ([]token, string, error) {
	src := []rune(text)

	var out []token

	for i := 0; i < len(src); {
		r := src[i]

		switch {
		case unicode.IsSpace(r):
			i++
		case r == 'w' && i+1 < len(src) && src[i+1] == '/' && (i == 0 || !isIdentPart(src[i-1])):
			op := "w/"
			if i+2 < len(src) && src[i+2] == '=' {
				op = "w/="
			}

			out = append(out, token{kind: tokOp, text: op})
			i += len(op)
		case isIdentStart(r):
			start := i
			for i < len(src) && (isIdentPart(src[i]) || src[i] == '.' && (i+1 == len(src) || isIdentStart(src[i+1]))) {
				i++
			}

			word := string(src[start:i])
			if i == len(src) {
				return out, word, nil
			}

			out = append(out, token{kind: tokIdent, text: word})
		case unicode.IsDigit(r):
			start := i
			for i < len(src) && (unicode.IsDigit(src[i]) || src[i] == '_') {
				i++
			}

			if i+1 < len(src) && src[i] == '.' && unicode.IsDigit(src[i+1]) {
				i++
				for i < len(src) && unicode.IsDigit(src[i]) {
					i++
				}
			}

			for i < len(src) && (src[i] == 'L' || src[i] == 'e' || src[i] == 'E') {
				i++
			}

			out = append(out, token{kind: tokNumber, text: string(src[start:i])})
		case r == '"':
			end, ok := stringEnd(src, i+1)
			if !ok {
				return nil, "", fmt.Errorf("%w: unterminated string", ErrNoParse)
			}

			out = append(out, token{kind: tokString, text: string(src[i:end])})
			i = end
		case strings.ContainsRune("()[]{},;", r):
			out = append(out, token{kind: tokPunct, text: string(r)})
			i++
		default:
			op := matchOperator(src[i:])
			if op == "" {
				return nil, "", fmt.Errorf("%w: unexpected %q", ErrNoParse, r)
			}

			if op == "$" && i+1 < len(src) && src[i+1] == '"' {
				i++
				continue
			}

			out = append(out, token{kind: tokOp, text: op})
			i += len([]rune(op))
		}
	}

	return out, "", nil
}

func stringEnd(src []rune, i int) (int, bool) {
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, true
		default:
			i++
		}
	}

	return 0, false
}

func matchOperator(src []rune) string {
	for _, op := range operators {
		if strings.HasPrefix(string(src[:min(len(src), len(op))]), op) {
			return op
		}
	}

	return ""
}
