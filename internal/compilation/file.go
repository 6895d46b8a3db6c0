package compilation

import (
	"github.com/CWBudde/go-qs-lsp/internal/document"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Severity mirrors the protocol's diagnostic severities.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is a compiler message attached to a file.
type Diagnostic struct {
	Range    syntax.Range
	Severity Severity
	Code     string
	Message  string
}

// File is one source file of a compilation: its fragment tree as of the last
// compiler run and its current line text.
type File struct {
	URI         string
	Tree        *fragment.Tree
	Lines       []string
	Diagnostics []Diagnostic
}

// NewFile builds a file from its text and fragments.
func NewFile(uri, text string, fragments []*fragment.Fragment) *File {
	return &File{
		URI:   uri,
		Tree:  fragment.NewTree(fragments),
		Lines: document.SplitLines(text),
	}
}

// WithText returns a copy of f whose lines are replaced by text. The fragment
// tree and diagnostics are kept.
func (f *File) WithText(text string) *File {
	clone := *f
	clone.Lines = document.SplitLines(text)

	return &clone
}

// Contains reports whether pos lies within the file's text.
func (f *File) Contains(pos syntax.Position) bool {
	if pos.Line < 0 || pos.Column < 0 || pos.Line >= len(f.Lines) {
		return false
	}

	return pos.Column <= document.ColumnCount(f.Lines[pos.Line])
}

// Line returns the text of line i, or "" when out of range.
func (f *File) Line(i int) string {
	if i < 0 || i >= len(f.Lines) {
		return ""
	}

	return f.Lines[i]
}

// TextBefore returns the text of pos's line up to pos.
func (f *File) TextBefore(pos syntax.Position) string {
	return document.Prefix(f.Line(pos.Line), pos.Column)
}

// IndentationAt returns the brace depth at pos, ignoring braces inside
// string literals and line comments.
func (f *File) IndentationAt(pos syntax.Position) int {
	depth := 0

	for i := 0; i <= pos.Line && i < len(f.Lines); i++ {
		line := f.Lines[i]
		if i == pos.Line {
			line = document.Prefix(line, pos.Column)
		}

		depth += braceBalance(line)
	}

	if depth < 0 {
		return 0
	}

	return depth
}

func braceBalance(line string) int {
	balance := 0
	inString := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return balance
		case c == '{':
			balance++
		case c == '}':
			balance--
		}
	}

	return balance
}

// FragmentAt returns the index of the fragment containing pos.
func (f *File) FragmentAt(pos syntax.Position, includeEnd bool) (int, bool) {
	return f.Tree.IndexAt(pos, includeEnd)
}

// EnclosingIndex returns the fragment containing pos or, failing that, the
// nearest fragment before pos whose block is still open at pos: the last
// preceding fragment or one of its ancestors with an indentation below the
// brace depth at pos.
func (f *File) EnclosingIndex(pos syntax.Position) (int, bool) {
	if i, ok := f.Tree.IndexAt(pos, true); ok {
		return i, true
	}

	i, ok := f.Tree.IndexBefore(pos)
	if !ok {
		return 0, false
	}

	depth := f.IndentationAt(pos)

	for j := i; ; {
		if f.Tree.At(j).Indentation < depth {
			return j, true
		}

		p, ok := f.Tree.Parent(j)
		if !ok {
			return 0, false
		}

		j = p
	}
}
