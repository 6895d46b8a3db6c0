package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigFileName is watched next to the snapshots; a change reloads too.
const ConfigFileName = ".qsls.toml"

// Watcher reports changed snapshot files after events have settled for the
// debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	matchers []*Matcher
	debounce time.Duration
	onChange func(paths []string)

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a watcher for the roots of matchers. onChange is called
// from the watcher goroutine with the sorted changed paths.
func NewWatcher(matchers []*Matcher, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		matchers: matchers,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start adds watches below every root and begins processing events. The
// watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, m := range w.matchers {
		if err := w.addTree(m, m.Root); err != nil {
			_ = w.watcher.Close()
			return err
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run(ctx)

	logger.Infof("watching %d workspace roots for snapshot changes", len(w.matchers))

	return nil
}

// Stop ends event processing and waits for the watcher goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		_ = w.watcher.Close()
		return
	}

	w.cancel()
	w.wg.Wait()
}

func (w *Watcher) addTree(m *Matcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if m.SkipDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			logger.Warningf("cannot watch %s: %v", path, err)
		}

		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	defer w.watcher.Close()

	// armed by the first relevant event
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logger.Warningf("file watcher: %v", err)

		case <-timer.C:
			w.flush()
		}
	}
}

// handle records a relevant event and reports whether one was recorded.
func (w *Watcher) handle(event fsnotify.Event) bool {
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if m := w.matcherFor(path); m != nil {
				if err := w.addTree(m, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					logger.Warningf("cannot watch %s: %v", path, err)
				}
			}

			return false
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if !w.relevant(path) {
		return false
	}

	logger.Debugf("file watcher: %s %s", event.Op, path)

	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()

	return true
}

func (w *Watcher) relevant(path string) bool {
	if filepath.Base(path) == ConfigFileName {
		return true
	}

	for _, m := range w.matchers {
		if m.Match(path) {
			return true
		}
	}

	return false
}

func (w *Watcher) matcherFor(path string) *Matcher {
	for _, m := range w.matchers {
		if _, ok := m.relative(path); ok && !m.SkipDir(path) {
			return m
		}
	}

	return nil
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	sort.Strings(paths)
	w.onChange(paths)
}
