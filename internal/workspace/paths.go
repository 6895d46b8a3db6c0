// Package workspace discovers, loads and watches the compiler snapshots of a
// workspace and answers workspace-wide symbol queries.
package workspace

import (
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLogger("qs-lsp.workspace")

// URIToPath converts a file URI to a file system path. Other strings are
// returned unchanged.
func URIToPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		path := after
		// file:///C:/path on Windows
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}

		return filepath.FromSlash(path)
	}

	return uri
}

// PathToURI converts a file system path to a file URI.
func PathToURI(path string) string {
	path = filepath.ToSlash(path)

	if len(path) > 1 && path[1] == ':' {
		return "file:///" + path
	}

	return "file://" + path
}
