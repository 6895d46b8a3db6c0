package server

import (
	"sync"

	"github.com/CWBudde/go-qs-lsp/internal/document"
)

// Document represents an open document in the workspace.
type Document struct {
	URI        string
	Text       string
	Version    int
	LanguageID string
}

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores or updates a document.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Apply applies content changes to an open document and stores the result
// as a new Document value, so readers holding the old one are unaffected.
func (ds *DocumentStore) Apply(uri string, version int, changes []any) (*Document, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.documents[uri]
	if !ok {
		return nil, ErrDocumentNotOpen
	}

	text, err := document.ApplyChanges(doc.Text, changes)
	if err != nil {
		return nil, err
	}

	updated := &Document{URI: doc.URI, Text: text, Version: version, LanguageID: doc.LanguageID}
	ds.documents[uri] = updated

	return updated, nil
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	return uris
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents = make(map[string]*Document)
}
