package server

import (
	"sync"

	"github.com/CWBudde/go-qs-lsp/internal/analysis"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// CompletionCache remembers the last completion answer per document. Clients
// re-request completions at the same position while filtering an incomplete
// list; an entry is valid only for the document version and compilation
// generation it was computed from.
type CompletionCache struct {
	entries map[string]completionEntry
	mu      sync.RWMutex
}

type completionEntry struct {
	version    int
	generation uint64
	pos        syntax.Position
	items      []analysis.CompletionCandidate
}

// NewCompletionCache creates a new completion cache.
func NewCompletionCache() *CompletionCache {
	return &CompletionCache{
		entries: make(map[string]completionEntry),
	}
}

// Get returns the cached candidates for uri at pos.
func (c *CompletionCache) Get(uri string, version int, generation uint64, pos syntax.Position) ([]analysis.CompletionCandidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[uri]
	if !ok || e.version != version || e.generation != generation || e.pos != pos {
		return nil, false
	}

	return e.items, true
}

// Set records the candidates computed for uri at pos.
func (c *CompletionCache) Set(uri string, version int, generation uint64, pos syntax.Position, items []analysis.CompletionCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[uri] = completionEntry{version: version, generation: generation, pos: pos, items: items}
}

// InvalidateDocument invalidates the cache for a specific document.
func (c *CompletionCache) InvalidateDocument(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, uri)
}

// Clear clears all cached completion items.
func (c *CompletionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]completionEntry)
}
