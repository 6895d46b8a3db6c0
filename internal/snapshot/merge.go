package snapshot

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
)

// Fingerprint identifies the content of a snapshot file.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Merge combines snapshots into one compilation. Namespaces with the same
// name are merged; a file listed twice keeps its last occurrence.
func Merge(snaps ...*Snapshot) *compilation.Compilation {
	files := make(map[string]*compilation.File)
	byName := make(map[string]*ast.Namespace)

	var (
		order []string
		opens []compilation.Directive
	)

	for _, s := range snaps {
		if s == nil {
			continue
		}

		for _, f := range s.Files {
			if _, dup := files[f.URI]; dup {
				logger.Warningf("file %s appears in more than one snapshot", f.URI)
			}

			files[f.URI] = f
		}

		for _, ns := range s.Namespaces {
			merged, ok := byName[ns.Name]
			if !ok {
				merged = &ast.Namespace{Name: ns.Name}
				byName[ns.Name] = merged
				order = append(order, ns.Name)
			}

			merged.Callables = append(merged.Callables, ns.Callables...)
			merged.Types = append(merged.Types, ns.Types...)
		}

		opens = append(opens, s.Opens...)
	}

	sort.Strings(order)

	namespaces := make([]*ast.Namespace, 0, len(order))
	for _, name := range order {
		namespaces = append(namespaces, byName[name])
	}

	fileList := make([]*compilation.File, 0, len(files))
	for _, f := range files {
		fileList = append(fileList, f)
	}

	return compilation.New(fileList, namespaces, opens)
}
