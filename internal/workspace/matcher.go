package workspace

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher selects snapshot files below a root by include and exclude globs.
// Patterns are matched against slash-separated paths relative to the root.
type Matcher struct {
	Root    string
	Include []string
	Exclude []string
}

// NewMatcher returns a matcher for root. Invalid patterns are dropped with a
// warning.
func NewMatcher(root string, include, exclude []string) *Matcher {
	return &Matcher{Root: root, Include: validPatterns(include), Exclude: validPatterns(exclude)}
}

func validPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))

	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			logger.Warningf("ignoring invalid glob %q", p)
			continue
		}

		out = append(out, p)
	}

	return out
}

// relative returns path relative to the root in slash form, or false when
// path lies outside the root.
func (m *Matcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(m.Root, path)
	if err != nil {
		return "", false
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	return rel, true
}

// Match reports whether the file at path is a snapshot of this workspace.
func (m *Matcher) Match(path string) bool {
	rel, ok := m.relative(path)
	if !ok {
		return false
	}

	if matchAny(m.Exclude, rel) {
		return false
	}

	return matchAny(m.Include, rel)
}

// SkipDir reports whether the directory at path and everything below it is
// excluded.
func (m *Matcher) SkipDir(path string) bool {
	rel, ok := m.relative(path)
	if !ok {
		return true
	}

	if rel == "." {
		return false
	}

	for _, p := range m.Exclude {
		dirPattern, ok := strings.CutSuffix(p, "/**")
		if !ok {
			continue
		}

		if matched, _ := doublestar.Match(dirPattern, rel); matched {
			return true
		}
	}

	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.Match(p, rel); err == nil && matched {
			return true
		}
	}

	return false
}
