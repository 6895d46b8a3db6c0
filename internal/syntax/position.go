// Package syntax holds the source-level value types shared by every other
// package: positions, ranges, qualified names, declared symbols and
// resolved types.
package syntax

import "fmt"

// Position is a zero-based line and column (in UTF-16 code units) within a
// source file.
type Position struct {
	Line   int
	Column int
}

// Compare returns -1, 0 or 1 depending on whether p sorts before, equal to or
// after q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Line < q.Line:
		return -1
	case p.Line > q.Line:
		return 1
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	}

	return 0
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	return p.Compare(q) < 0
}

// After reports whether p sorts strictly after q.
func (p Position) After(q Position) bool {
	return p.Compare(q) > 0
}

// Add interprets rel as relative to p and returns the absolute position.
// A relative position on line zero shifts the column; otherwise the line
// moves and the relative column is kept.
func (p Position) Add(rel Position) Position {
	if rel.Line == 0 {
		return Position{Line: p.Line, Column: p.Column + rel.Column}
	}

	return Position{Line: p.Line + rel.Line, Column: rel.Column}
}

// Sub returns p relative to base. It is the inverse of Add.
func (p Position) Sub(base Position) Position {
	if p.Line == base.Line {
		return Position{Line: 0, Column: p.Column - base.Column}
	}

	return Position{Line: p.Line - base.Line, Column: p.Column}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open span of source text.
type Range struct {
	Start Position
	End   Position
}

// NewRange builds a range from line/column pairs.
func NewRange(startLine, startColumn, endLine, endColumn int) Range {
	return Range{
		Start: Position{Line: startLine, Column: startColumn},
		End:   Position{Line: endLine, Column: endColumn},
	}
}

// Contains reports whether pos lies in [Start, End).
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && pos.Before(r.End)
}

// ContainsInclusive reports whether pos lies in [Start, End]. It is used
// where a cursor right after the last character still belongs to the range.
func (r Range) ContainsInclusive(pos Position) bool {
	return !pos.Before(r.Start) && !pos.After(r.End)
}

// ContainsWith dispatches to Contains or ContainsInclusive.
func (r Range) ContainsWith(pos Position, includeEnd bool) bool {
	if includeEnd {
		return r.ContainsInclusive(pos)
	}

	return r.Contains(pos)
}

// Overlaps reports whether the two ranges share at least one position.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Offset converts a range relative to base into an absolute range.
func (r Range) Offset(base Position) Range {
	return Range{Start: base.Add(r.Start), End: base.Add(r.End)}
}

// RelativeTo converts an absolute range into one relative to base.
func (r Range) RelativeTo(base Position) Range {
	return Range{Start: r.Start.Sub(base), End: r.End.Sub(base)}
}

// IsZero reports whether the range is the zero value.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Compare orders ranges by start, then by end.
func (r Range) Compare(o Range) int {
	if c := r.Start.Compare(o.Start); c != 0 {
		return c
	}

	return r.End.Compare(o.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s-%s]", r.Start, r.End)
}
