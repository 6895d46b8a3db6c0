package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

// edited returns the demo with one line of Main.qs replaced, and the
// position at the end of the new line.
func edited(d *testutil.Demo, line int, text string) (*compilation.Compilation, syntax.Position) {
	lines := append([]string(nil), d.Main.Lines...)
	lines[line] = text

	comp := d.Compilation.WithDocument(testutil.MainURI, strings.Join(lines, "\n"))

	return comp, syntax.Position{Line: line, Column: len(text)}
}

func labels(candidates []CompletionCandidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Label)
	}

	return out
}

func TestCompletionsAt(t *testing.T) {
	tests := []struct {
		name     string
		line     int
		text     string
		exactly  []string
		contains []string
		excludes []string
	}{
		{
			name:    "open directive offers namespaces and aliases",
			line:    3,
			text:    "    open ",
			exactly: []string{"Demo", "Demo.Math", "M", "Microsoft.Quantum.Canon", "Microsoft.Quantum.Intrinsic"},
		},
		{
			name:    "namespace top level",
			line:    24,
			text:    "    ",
			exactly: []string{"function", "internal", "newtype", "open", "operation"},
		},
		{
			name:     "operation top level",
			line:     22,
			text:     "        ",
			contains: []string{"let", "use", "body", "Controlled", "q", "angle", "total", "H", "Helper", "Microsoft", "M"},
			excludes: []string{"aux", "i", "Secret", "namespace", "elif"},
		},
		{
			name:     "function body offers functions only",
			line:     28,
			text:     "        let w = ",
			contains: []string{"Helper", "x", "f", "z", "true", "Zero"},
			excludes: []string{"Prepare", "H", "Adjoint", "y"},
		},
		{
			name:    "set offers mutable locals",
			line:    22,
			text:    "        set ",
			exactly: []string{"total"},
		},
		{
			name:    "alias member",
			line:    22,
			text:    "        M.",
			exactly: []string{"Combine", "Square"},
		},
		{
			name:    "namespace segment",
			line:    22,
			text:    "        Microsoft.",
			exactly: []string{"Quantum"},
		},
		{
			name:    "dot after a number",
			line:    22,
			text:    "        let d = 1.",
			exactly: []string{},
		},
		{
			name:     "fallback keeps the qualifier",
			line:     22,
			text:     "        x) + M.Sq",
			contains: []string{"Square", "Combine"},
			excludes: []string{"let", "angle"},
		},
		{
			name:     "fallback offers everything",
			line:     22,
			text:     "        ) ",
			contains: []string{"namespace", "let", "angle", "H", "Int"},
		},
		{
			name:     "after a closed if block",
			line:     13,
			text:     "            } el",
			contains: []string{"elif", "else", "i"},
		},
		{
			name:    "top level",
			line:    0,
			text:    "nam",
			exactly: []string{"namespace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.NewDemo()
			comp, pos := edited(d, tt.line, tt.text)

			got := CompletionsAt(comp, testutil.MainURI, pos)
			names := labels(got)

			if tt.exactly != nil {
				require.NotNil(t, got)
				assert.ElementsMatch(t, tt.exactly, names)
			}

			for _, want := range tt.contains {
				assert.Contains(t, names, want)
			}

			for _, unwanted := range tt.excludes {
				assert.NotContains(t, names, unwanted)
			}
		})
	}
}

func TestCompletionsAtNothing(t *testing.T) {
	d := testutil.NewDemo()

	t.Run("comment", func(t *testing.T) {
		comp, pos := edited(d, 22, "        // let ")
		assert.Nil(t, CompletionsAt(comp, testutil.MainURI, pos))
	})

	t.Run("string", func(t *testing.T) {
		comp, pos := edited(d, 22, `        Message("abc `)
		assert.Nil(t, CompletionsAt(comp, testutil.MainURI, pos))
	})

	t.Run("outside the file", func(t *testing.T) {
		assert.Nil(t, CompletionsAt(d.Compilation, testutil.MainURI, syntax.Position{Line: 500}))
		assert.Nil(t, CompletionsAt(d.Compilation, "file:///nope.qs", syntax.Position{}))
	})
}

func TestCompletionsAreRanked(t *testing.T) {
	d := testutil.NewDemo()
	comp, pos := edited(d, 22, "        ")

	got := CompletionsAt(comp, testutil.MainURI, pos)
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, candidateRank(got[i-1].Kind), candidateRank(got[i].Kind), "%s before %s", got[i-1].Label, got[i].Label)
	}

	assert.Equal(t, VariableCandidate, got[0].Kind)
	assert.Equal(t, KeywordCandidate, got[len(got)-1].Kind)
}

func TestCompletionCandidateKinds(t *testing.T) {
	d := testutil.NewDemo()
	comp, pos := edited(d, 22, "        ")

	byLabel := make(map[string]CompletionCandidate)
	for _, c := range CompletionsAt(comp, testutil.MainURI, pos) {
		byLabel[c.Label] = c
	}

	assert.Equal(t, VariableCandidate, byLabel["angle"].Kind)
	assert.Equal(t, "Double", byLabel["angle"].Detail)
	assert.Equal(t, OperationCandidate, byLabel["Prepare"].Kind)
	assert.Equal(t, FunctionCandidate, byLabel["Helper"].Kind)
	assert.Equal(t, NamespaceCandidate, byLabel["M"].Kind)
	assert.Equal(t, "Demo.Math", byLabel["M"].Detail)
	assert.Equal(t, &CandidateData{Namespace: "Microsoft.Quantum.Intrinsic"}, byLabel["H"].Data)
	assert.Equal(t, &CandidateData{Namespace: "Demo", Source: testutil.MainURI}, byLabel["Retry"].Data)
}

func TestCompletionContextAt(t *testing.T) {
	d := testutil.NewDemo()

	tests := []struct {
		name         string
		line         int
		text         string
		scope        CompletionScope
		prevIsParent bool
		statement    string
	}{
		{"top level", 0, "nam", TopLevel, false, "nam"},
		{"namespace", 24, "    ", NamespaceTopLevel, false, "\n    "},
		{"operation", 22, "        ", OperationTopLevel, false, "\n        "},
		{"first statement of a function", 26, "        le", FunctionTopLevel, true, "\n        le"},
		{"nested block", 11, "                let k = ", Operation, true, "\n                let k = "},
		{"statement on one line", 7, "        let angle = th", OperationTopLevel, true, "\n        let angle = th"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, pos := edited(d, tt.line, tt.text)
			file, ok := comp.File(testutil.MainURI)
			require.True(t, ok)

			ctx := CompletionContextAt(file, pos)
			assert.Equal(t, tt.scope, ctx.Scope, ctx.Scope.String())
			assert.Equal(t, tt.prevIsParent, ctx.PrevIsParent)
			assert.Equal(t, tt.statement, ctx.Text)
		})
	}
}

func TestResolveCompletionDetails(t *testing.T) {
	d := testutil.NewDemo()

	square := CompletionCandidate{
		Label: "Square",
		Kind:  FunctionCandidate,
		Data:  &CandidateData{Namespace: "Demo.Math", Source: testutil.MathURI},
	}

	t.Run("callable", func(t *testing.T) {
		got := ResolveCompletionDetails(d.Compilation, square, false)
		assert.Equal(t, "function Demo.Math.Square(x : Int) : Int", got.Detail)
		assert.Equal(t, "Squares a number.", got.Documentation)
	})

	t.Run("type", func(t *testing.T) {
		complexType := CompletionCandidate{
			Label: "Complex",
			Kind:  TypeCandidate,
			Data:  &CandidateData{Namespace: "Demo.Math", Source: testutil.MathURI},
		}

		got := ResolveCompletionDetails(d.Compilation, complexType, true)
		assert.Equal(t, "newtype Demo.Math.Complex = (Re : Double, Im : Double)", got.Detail)
		assert.Equal(t, "A complex number.", got.Documentation)
	})

	t.Run("source mismatch", func(t *testing.T) {
		stale := square
		stale.Data = &CandidateData{Namespace: "Demo.Math", Source: testutil.MainURI}

		assert.Equal(t, stale, ResolveCompletionDetails(d.Compilation, stale, false))
	})

	t.Run("keyword", func(t *testing.T) {
		kw := CompletionCandidate{Label: "let", Kind: KeywordCandidate}
		assert.Equal(t, kw, ResolveCompletionDetails(d.Compilation, kw, true))
	})
}
