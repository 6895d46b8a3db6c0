// Package document applies editor changes to document text and converts
// between protocol positions (UTF-16 code units) and byte offsets.
package document

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// ApplyContentChange applies one change event to text. A change without a
// range replaces the whole document.
func ApplyContentChange(text string, change protocol.TextDocumentContentChangeEvent) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}

	start, err := Offset(text, FromProtocol(change.Range.Start))
	if err != nil {
		return "", fmt.Errorf("invalid start position: %w", err)
	}

	end, err := Offset(text, FromProtocol(change.Range.End))
	if err != nil {
		return "", fmt.Errorf("invalid end position: %w", err)
	}

	if start > end {
		return "", fmt.Errorf("start offset %d after end offset %d", start, end)
	}

	var sb strings.Builder

	sb.Grow(len(text) - (end - start) + len(change.Text))
	sb.WriteString(text[:start])
	sb.WriteString(change.Text)
	sb.WriteString(text[end:])

	return sb.String(), nil
}

// ApplyChanges applies the content changes of a didChange notification in
// order. Changes of an unexpected shape are skipped; the first failing
// change aborts and leaves the previous text in place.
func ApplyChanges(text string, changes []any) (string, error) {
	for i, raw := range changes {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			updated, err := ApplyContentChange(text, change)
			if err != nil {
				return text, fmt.Errorf("change %d: %w", i, err)
			}

			text = updated
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		}
	}

	return text, nil
}

// Offset converts a position to a byte offset in text.
func Offset(text string, pos syntax.Position) (int, error) {
	if pos.Line < 0 {
		return 0, fmt.Errorf("line %d out of range", pos.Line)
	}

	offset := 0

	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return 0, fmt.Errorf("line %d out of range (0-%d)", pos.Line, line)
		}

		offset += nl + 1
	}

	lineText := text[offset:]
	if nl := strings.IndexByte(lineText, '\n'); nl >= 0 {
		lineText = lineText[:nl]
	}

	col, err := ColumnToByte(lineText, pos.Column)
	if err != nil {
		return 0, err
	}

	return offset + col, nil
}

// PositionAt converts a byte offset in text to a position.
func PositionAt(text string, offset int) (syntax.Position, error) {
	if offset < 0 || offset > len(text) {
		return syntax.Position{}, fmt.Errorf("offset %d out of range (0-%d)", offset, len(text))
	}

	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	return syntax.Position{Line: line, Column: ByteToColumn(text[lineStart:offset], offset-lineStart)}, nil
}

// FromProtocol converts a protocol position.
func FromProtocol(p protocol.Position) syntax.Position {
	return syntax.Position{Line: int(p.Line), Column: int(p.Character)}
}

// ToProtocol converts a position for the wire.
func ToProtocol(p syntax.Position) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(max(0, p.Line)), Character: protocol.UInteger(max(0, p.Column))}
}

// RangeToProtocol converts a range for the wire.
func RangeToProtocol(r syntax.Range) protocol.Range {
	return protocol.Range{Start: ToProtocol(r.Start), End: ToProtocol(r.End)}
}

// RangeFromProtocol converts a protocol range.
func RangeFromProtocol(r protocol.Range) syntax.Range {
	return syntax.Range{Start: FromProtocol(r.Start), End: FromProtocol(r.End)}
}
