package workspace

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/snapshot"
)

// Loader reads snapshot files into a compilation. It remembers the
// fingerprint of every file it parsed so unchanged files are not decoded
// again on reload.
type Loader struct {
	mu    sync.Mutex
	cache map[string]cachedSnapshot
}

type cachedSnapshot struct {
	fingerprint uint64
	snap        *snapshot.Snapshot
}

// LoadResult describes one load.
type LoadResult struct {
	Compilation *compilation.Compilation
	Parsed      int
	Reused      int
	Failed      map[string]error
}

// NewLoader creates a loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]cachedSnapshot)}
}

// Load reads paths with at most parallelism files in flight and merges them
// in path order. A file that fails to load is reported in Failed and left
// out; only cancellation fails the whole load.
func (l *Loader) Load(ctx context.Context, paths []string, parallelism int) (*LoadResult, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	snaps := make([]*snapshot.Snapshot, len(paths))
	reused := make([]bool, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			snaps[i], reused[i], errs[i] = l.loadFile(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &LoadResult{Failed: make(map[string]error)}

	for i, path := range paths {
		switch {
		case errs[i] != nil:
			res.Failed[path] = errs[i]
			logger.Errorf("loading snapshot %s: %v", path, errs[i])
		case reused[i]:
			res.Reused++
		default:
			res.Parsed++
		}
	}

	l.retain(paths)

	res.Compilation = snapshot.Merge(snaps...)

	logger.Infof("loaded %d snapshots (%d parsed, %d unchanged, %d failed)",
		len(paths), res.Parsed, res.Reused, len(res.Failed))

	return res, nil
}

func (l *Loader) loadFile(path string) (*snapshot.Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	fp := snapshot.Fingerprint(data)

	l.mu.Lock()
	cached, ok := l.cache[path]
	l.mu.Unlock()

	if ok && cached.fingerprint == fp {
		return cached.snap, true, nil
	}

	snap, err := snapshot.Parse(data, ReadSource)
	if err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	l.cache[path] = cachedSnapshot{fingerprint: fp, snap: snap}
	l.mu.Unlock()

	return snap, false, nil
}

// retain drops cache entries for files that are no longer loaded.
func (l *Loader) retain(paths []string) {
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[p] = true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for p := range l.cache {
		if !keep[p] {
			delete(l.cache, p)
		}
	}
}

// ReadSource reads the text of a source file named by a snapshot.
func ReadSource(uri string) (string, error) {
	data, err := os.ReadFile(URIToPath(uri))
	if err != nil {
		return "", fmt.Errorf("source %s: %w", uri, err)
	}

	return string(data), nil
}

// LoadRoots discovers and loads the snapshots below every root.
func (l *Loader) LoadRoots(ctx context.Context, matchers []*Matcher, parallelism int) (*LoadResult, error) {
	var paths []string

	for _, m := range matchers {
		found, err := Discover(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("discover snapshots in %s: %w", m.Root, err)
		}

		paths = append(paths, found...)
	}

	// nested workspace folders find the same file twice
	slices.Sort(paths)
	paths = slices.Compact(paths)

	return l.Load(ctx, paths, parallelism)
}
