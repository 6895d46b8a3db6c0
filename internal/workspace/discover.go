package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
)

// Discover returns the snapshot files below the matcher's root, sorted.
// Unreadable directories are skipped.
func Discover(ctx context.Context, m *Matcher) ([]string, error) {
	var found []string

	err := filepath.WalkDir(m.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			logger.Debugf("skipping %s: %v", path, err)

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if m.SkipDir(path) {
				return filepath.SkipDir
			}

			return nil
		}

		if m.Match(path) {
			found = append(found, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)

	return found, nil
}
