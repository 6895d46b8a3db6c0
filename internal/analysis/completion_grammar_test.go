package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

func TestExpectedKinds(t *testing.T) {
	typeKindList := typeKinds()

	tests := []struct {
		name     string
		ctx      CompletionContext
		contains []CompletionKind
		excludes []CompletionKind
		exactly  []CompletionKind
	}{
		{
			name:    "top level",
			ctx:     CompletionContext{Scope: TopLevel},
			exactly: []CompletionKind{Keyword("namespace")},
		},
		{
			name:    "namespace name",
			ctx:     CompletionContext{Scope: TopLevel, Text: "namespace "},
			exactly: nil,
		},
		{
			name:    "open",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "open "},
			exactly: []CompletionKind{ExpectNamespace},
		},
		{
			name:    "open alias",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "open Demo.Math "},
			exactly: []CompletionKind{Keyword("as")},
		},
		{
			name:    "internal",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "internal "},
			exactly: []CompletionKind{Keyword("function"), Keyword("operation"), Keyword("newtype")},
		},
		{
			name:    "parameter type",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "operation Foo(q : "},
			exactly: typeKindList,
		},
		{
			name:    "parameter name",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "operation Foo(q : Qubit, "},
			exactly: nil,
		},
		{
			name:    "nested tuple type",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "function Foo(f : (Int, "},
			exactly: typeKindList,
		},
		{
			name:    "return type",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "function Foo(x : Int) : "},
			exactly: typeKindList,
		},
		{
			name:    "characteristics",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "operation Foo(q : Qubit) : Unit is Adj + "},
			exactly: []CompletionKind{Keyword("Adj"), Keyword("Ctl")},
		},
		{
			name:    "newtype underlying type",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "newtype Pair = "},
			exactly: typeKindList,
		},
		{
			name:     "statement start in operation",
			ctx:      CompletionContext{Scope: Operation},
			contains: []CompletionKind{Keyword("let"), Keyword("use"), Keyword("within"), Keyword("Adjoint"), ExpectVariable, ExpectCallable},
			excludes: []CompletionKind{Keyword("body"), Keyword("elif")},
		},
		{
			name:     "statement start at operation top level",
			ctx:      CompletionContext{Scope: OperationTopLevel},
			contains: []CompletionKind{Keyword("body"), Keyword("adjoint"), Keyword("controlled")},
		},
		{
			name:     "statement start in function",
			ctx:      CompletionContext{Scope: Function},
			contains: []CompletionKind{Keyword("let"), Keyword("return")},
			excludes: []CompletionKind{Keyword("use"), Keyword("repeat"), Keyword("Controlled")},
		},
		{
			name:     "after if block",
			ctx:      CompletionContext{Scope: Operation, Prev: &fragment.IfClause{}},
			contains: []CompletionKind{Keyword("elif"), Keyword("else")},
		},
		{
			name:     "inside if block",
			ctx:      CompletionContext{Scope: Operation, Prev: &fragment.IfClause{}, PrevIsParent: true},
			excludes: []CompletionKind{Keyword("elif"), Keyword("else")},
		},
		{
			name:     "after repeat block",
			ctx:      CompletionContext{Scope: Operation, Prev: &fragment.RepeatIntro{}},
			contains: []CompletionKind{Keyword("until")},
		},
		{
			name:     "after within block",
			ctx:      CompletionContext{Scope: Operation, Prev: &fragment.WithinBlockIntro{}},
			contains: []CompletionKind{Keyword("apply")},
		},
		{
			name:     "after until without fixup",
			ctx:      CompletionContext{Scope: Operation, Prev: &fragment.UntilSuccess{}},
			contains: []CompletionKind{Keyword("fixup")},
		},
		{
			name:     "let right-hand side",
			ctx:      CompletionContext{Scope: Function, Text: "let x = "},
			contains: []CompletionKind{ExpectVariable, ExpectCallable, ExpectUserDefinedType, Keyword("true")},
			excludes: []CompletionKind{Keyword("Adjoint")},
		},
		{
			name:    "let name",
			ctx:     CompletionContext{Scope: Function, Text: "let "},
			exactly: nil,
		},
		{
			name:    "set target",
			ctx:     CompletionContext{Scope: Operation, Text: "set "},
			exactly: []CompletionKind{ExpectMutableVariable},
		},
		{
			name:     "compound assignment",
			ctx:      CompletionContext{Scope: Operation, Text: "set total += "},
			contains: []CompletionKind{ExpectVariable},
		},
		{
			name:     "copy and update",
			ctx:      CompletionContext{Scope: Operation, Text: "set arr w/= "},
			contains: []CompletionKind{ExpectVariable},
		},
		{
			name:    "after operand",
			ctx:     CompletionContext{Scope: Operation, Text: "if x "},
			exactly: []CompletionKind{Keyword("and"), Keyword("or")},
		},
		{
			name:    "named item",
			ctx:     CompletionContext{Scope: Function, Text: "return c::"},
			exactly: []CompletionKind{ExpectNamedItem},
		},
		{
			name:    "array type",
			ctx:     CompletionContext{Scope: Function, Text: "let a = new "},
			exactly: typeKindList,
		},
		{
			name:     "functor application",
			ctx:      CompletionContext{Scope: Operation, Text: "Adjoint "},
			contains: []CompletionKind{Keyword("Controlled"), ExpectCallable},
		},
		{
			name:    "for in",
			ctx:     CompletionContext{Scope: Function, Text: "for i "},
			exactly: []CompletionKind{Keyword("in")},
		},
		{
			name:     "for iterable",
			ctx:      CompletionContext{Scope: Function, Text: "for i in "},
			contains: []CompletionKind{ExpectVariable},
		},
		{
			name:     "until with fixup",
			ctx:      CompletionContext{Scope: Operation, Text: "until r == One "},
			contains: []CompletionKind{Keyword("and"), Keyword("fixup")},
		},
		{
			name:    "allocation",
			ctx:     CompletionContext{Scope: Operation, Text: "use q = "},
			exactly: []CompletionKind{Keyword("Qubit")},
		},
		{
			name:    "allocation tuple",
			ctx:     CompletionContext{Scope: Operation, Text: "use (a, b) = (Qubit(), "},
			exactly: []CompletionKind{Keyword("Qubit")},
		},
		{
			name:     "register size",
			ctx:      CompletionContext{Scope: Operation, Text: "use qs = Qubit["},
			contains: []CompletionKind{ExpectVariable},
		},
		{
			name:    "specialization generator",
			ctx:     CompletionContext{Scope: OperationTopLevel, Text: "adjoint "},
			exactly: keywords(generatorKeywords),
		},
		{
			name:     "controlled adjoint",
			ctx:      CompletionContext{Scope: OperationTopLevel, Text: "controlled "},
			contains: []CompletionKind{Keyword("adjoint"), Keyword("auto")},
		},
		{
			name:    "qualified callable",
			ctx:     CompletionContext{Scope: Operation, Text: "let x = M.Sq"},
			exactly: []CompletionKind{Member{Namespace: "M", Kind: ExpectCallable}, Member{Namespace: "M", Kind: ExpectUserDefinedType}},
		},
		{
			name:    "qualified type",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "function F(c : Demo.Math."},
			exactly: []CompletionKind{Member{Namespace: "Demo.Math", Kind: ExpectUserDefinedType}},
		},
		{
			name:    "qualified namespace",
			ctx:     CompletionContext{Scope: NamespaceTopLevel, Text: "open Microsoft."},
			exactly: []CompletionKind{Member{Namespace: "Microsoft", Kind: ExpectNamespace}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds, err := ExpectedKinds(tt.ctx)
			require.NoError(t, err)

			if tt.contains == nil && tt.excludes == nil {
				assert.ElementsMatch(t, tt.exactly, kinds)
			}

			for _, k := range tt.contains {
				assert.Contains(t, kinds, k)
			}

			for _, k := range tt.excludes {
				assert.NotContains(t, kinds, k)
			}
		})
	}
}

func TestExpectedKindsErrors(t *testing.T) {
	tests := []struct {
		name string
		ctx  CompletionContext
	}{
		{"unbalanced bracket", CompletionContext{Scope: Operation, Text: "x) + "}},
		{"bare dot", CompletionContext{Scope: Operation, Text: "let d = 1."}},
		{"unterminated string", CompletionContext{Scope: Operation, Text: `Message("abc`}},
		{"operation keyword in function", CompletionContext{Scope: Function, Text: "use q = "}},
		{"functor in function", CompletionContext{Scope: Function, Text: "let g = Adjoint "}},
		{"statement at top level", CompletionContext{Scope: TopLevel, Text: "let x = "}},
		{"statement at namespace level", CompletionContext{Scope: NamespaceTopLevel, Text: "let x = "}},
		{"text after else", CompletionContext{Scope: Operation, Text: "else x "}},
		{"malformed open", CompletionContext{Scope: NamespaceTopLevel, Text: "open A B C "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpectedKinds(tt.ctx)
			assert.ErrorIs(t, err, ErrNoParse)
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		tokens  []string
		partial string
	}{
		{"partial word", "let ang", []string{"let"}, "ang"},
		{"dotted partial", "M.Sq", nil, "M.Sq"},
		{"trailing dot", "Microsoft.", nil, "Microsoft."},
		{"numbers", "1.5 + 2 ", []string{"1.5", "+", "2"}, ""},
		{"longest operator", "a <<< b ", []string{"a", "<<<", "b"}, ""},
		{"range", "0..n ", []string{"0", "..", "n"}, ""},
		{"copy and update", "arr w/ 0 <- x ", []string{"arr", "w/", "0", "<-", "x"}, ""},
		{"identifier starting with w", "w/= x ", []string{"w/=", "x"}, ""},
		{"word ending in w", "new/2 ", []string{"new", "/", "2"}, ""},
		{"string", `"a;b" + `, []string{`"a;b"`, "+"}, ""},
		{"interpolated string", `$"x{y}" `, []string{`"x{y}"`}, ""},
		{"punctuation", "f(a, [b]) ", []string{"f", "(", "a", ",", "[", "b", "]", ")"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, partial, err := tokenize(tt.text)
			require.NoError(t, err)

			var texts []string
			for _, tok := range tokens {
				texts = append(texts, tok.text)
			}

			assert.Equal(t, tt.tokens, texts)
			assert.Equal(t, tt.partial, partial)
		})
	}
}

func TestReservedKeywordsIncludePrimitiveTypes(t *testing.T) {
	words := ReservedKeywords()

	for _, name := range syntax.PrimitiveTypeNames {
		assert.Contains(t, words, name)
	}

	assert.Contains(t, words, "namespace")
	assert.Contains(t, words, "fixup")
}
