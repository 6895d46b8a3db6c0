package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SplitLines splits text on "\n", dropping a trailing "\r" from each line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// ColumnToByte converts a UTF-16 column to a byte offset within line. A
// column at the end of the line is allowed.
func ColumnToByte(line string, column int) (int, error) {
	if column < 0 {
		return 0, fmt.Errorf("column %d out of range", column)
	}

	units := 0

	for i, r := range line {
		if units >= column {
			return i, nil
		}

		units += utf16Len(r)
	}

	if units >= column {
		return len(line), nil
	}

	return 0, fmt.Errorf("column %d exceeds line length %d", column, units)
}

// ByteToColumn converts a byte offset within line to a UTF-16 column.
// Offsets past the end clamp to the line length.
func ByteToColumn(line string, offset int) int {
	if offset > len(line) {
		offset = len(line)
	}

	units := 0
	for _, r := range line[:offset] {
		units += utf16Len(r)
	}

	return units
}

// ColumnCount returns the length of line in UTF-16 code units.
func ColumnCount(line string) int {
	return ByteToColumn(line, len(line))
}

// Prefix returns the part of line before the UTF-16 column, clamped to the
// line.
func Prefix(line string, column int) string {
	b, err := ColumnToByte(line, column)
	if err != nil {
		return line
	}

	return line[:b]
}

func utf16Len(r rune) int {
	if r == utf8.RuneError || r <= 0xFFFF {
		return 1
	}

	return 2
}
