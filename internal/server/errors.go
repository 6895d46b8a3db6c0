package server

import "errors"

// ErrDocumentNotOpen is returned when a change arrives for a document the
// client never opened.
var ErrDocumentNotOpen = errors.New("document not open")
