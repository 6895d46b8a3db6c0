package analysis

import (
	"slices"
	"sort"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   syntax.Range
	NewText string
}

// FileEdits holds every edit for one file. A rename produces exactly one
// FileEdits per touched file.
type FileEdits struct {
	URI   string
	Edits []TextEdit
}

// Rename returns the edits renaming the symbol at pos to newName, grouped by
// file and sorted by URI. It returns nil when nothing renameable is at pos.
func Rename(comp *compilation.Compilation, uri string, pos syntax.Position, newName string) ([]FileEdits, error) {
	refs, err := ReferencesAt(comp, uri, pos)
	if err != nil || refs == nil {
		return nil, err
	}

	locations := refs.All(true)
	if len(locations) == 0 {
		return nil, nil
	}

	byURI := make(map[string][]TextEdit)
	for _, loc := range locations {
		byURI[loc.URI] = append(byURI[loc.URI], TextEdit{Range: loc.Range, NewText: newName})
	}

	out := make([]FileEdits, 0, len(byURI))
	for u, edits := range byURI {
		out = append(out, FileEdits{URI: u, Edits: edits})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })

	return out, nil
}

// IsValidName reports whether name can replace an identifier: it must be an
// identifier and not a keyword or primitive type name.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		if i == 0 && !isIdentStart(r) || !isIdentPart(r) {
			return false
		}
	}

	return !slices.Contains(ReservedKeywords(), name)
}
