package workspace

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// MaxSymbolResults caps a workspace symbol answer.
const MaxSymbolResults = 100

// minSimilarity is the Jaro-Winkler score below which a name that neither
// starts with nor contains the query is dropped.
const minSimilarity = 0.7

// SymbolLocation is a declaration found by a workspace symbol query.
type SymbolLocation struct {
	Name      string
	Kind      analysis.SymbolKind
	Container string
	URI       string
	Range     syntax.Range
	Detail    string
	Score     float64
}

// SymbolIndex lists the declarations of a compilation that have a source
// location. Library declarations are left out.
type SymbolIndex struct {
	symbols []SymbolLocation
}

// NewSymbolIndex indexes the callables and types of comp.
func NewSymbolIndex(comp *compilation.Compilation) *SymbolIndex {
	idx := &SymbolIndex{}
	if comp == nil {
		return idx
	}

	for _, c := range comp.Symbols.AllCallables() {
		r, ok := c.NameRange()
		if !ok || c.Source == "" {
			continue
		}

		kind := analysis.FunctionSymbol
		if c.Kind == ast.Operation {
			kind = analysis.OperationSymbol
		}

		idx.symbols = append(idx.symbols, SymbolLocation{
			Name:      c.Name.Name,
			Kind:      kind,
			Container: c.Name.Namespace,
			URI:       c.Source,
			Range:     r,
			Detail:    analysis.CallableSignature(c),
		})
	}

	for _, t := range comp.Symbols.AllTypes() {
		r, ok := t.NameRange()
		if !ok || t.Source == "" {
			continue
		}

		idx.symbols = append(idx.symbols, SymbolLocation{
			Name:      t.Name.Name,
			Kind:      analysis.TypeSymbol,
			Container: t.Name.Namespace,
			URI:       t.Source,
			Range:     r,
			Detail:    analysis.TypeSignature(t),
		})
	}

	return idx
}

// Len returns the number of indexed declarations.
func (si *SymbolIndex) Len() int {
	return len(si.symbols)
}

// Search ranks the indexed declarations against query by Jaro-Winkler
// similarity of the unqualified name, case-insensitively. Names starting
// with the query rank above names containing it, which rank above names that
// are merely similar. An empty query matches everything in name order.
func (si *SymbolIndex) Search(query string, maxResults int) []SymbolLocation {
	if maxResults <= 0 || maxResults > MaxSymbolResults {
		maxResults = MaxSymbolResults
	}

	q := strings.ToLower(query)

	var results []SymbolLocation

	for _, sym := range si.symbols {
		score, ok := rank(q, strings.ToLower(sym.Name))
		if !ok {
			continue
		}

		sym.Score = score
		results = append(results, sym)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}

		return results[i].Container < results[j].Container
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}

func rank(query, name string) (float64, bool) {
	if query == "" {
		return 0, true
	}

	sim := similarity(query, name)

	switch {
	case name == query:
		return 3, true
	case strings.HasPrefix(name, query):
		return 2 + sim, true
	case strings.Contains(name, query):
		return 1 + sim, true
	case sim >= minSimilarity:
		return sim, true
	}

	return 0, false
}

func similarity(a, b string) float64 {
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}

	return float64(score)
}
