package fragment

import (
	"sort"

	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// Fragment is the smallest parsed unit of a file. Indentation is the brace
// depth at the fragment's start.
type Fragment struct {
	Kind        Kind
	Range       syntax.Range
	Text        string
	Indentation int
}

const none = -1

type node struct {
	fragment   *Fragment
	parent     int
	prev       int
	next       int
	firstChild int
}

// Tree is an arena of fragments in source order, linked by index to their
// structural parent and siblings.
type Tree struct {
	nodes []node
}

// NewTree sorts the fragments by start position and links them. A fragment's
// parent is the nearest preceding fragment one indentation level shallower.
func NewTree(fragments []*Fragment) *Tree {
	sorted := make([]*Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f != nil {
			sorted = append(sorted, f)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Before(sorted[j].Range.Start)
	})

	t := &Tree{nodes: make([]node, len(sorted))}

	// open[d] is the most recent fragment at indentation d; lastChild[p] the
	// most recent child of p (or of the root, at index len(nodes)).
	open := []int{}
	lastChild := make(map[int]int)

	for i, f := range sorted {
		t.nodes[i] = node{fragment: f, parent: none, prev: none, next: none, firstChild: none}

		depth := f.Indentation
		if depth < 0 {
			depth = 0
		}

		if depth > len(open) {
			depth = len(open)
		}

		open = append(open[:depth], i)

		parent := none
		if depth > 0 {
			parent = open[depth-1]
		}

		t.nodes[i].parent = parent

		key := parent
		if key == none {
			key = len(sorted)
		}

		if prev, ok := lastChild[key]; ok {
			t.nodes[i].prev = prev
			t.nodes[prev].next = i
		} else if parent != none {
			t.nodes[parent].firstChild = i
		}

		lastChild[key] = i
	}

	return t
}

// Len returns the number of fragments.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}

	return len(t.nodes)
}

// At returns the fragment at index i.
func (t *Tree) At(i int) *Fragment {
	return t.nodes[i].fragment
}

// Parent returns the index of i's structural parent.
func (t *Tree) Parent(i int) (int, bool) {
	p := t.nodes[i].parent
	return p, p != none
}

// PrevSibling returns the index of the preceding fragment with the same
// parent.
func (t *Tree) PrevSibling(i int) (int, bool) {
	p := t.nodes[i].prev
	return p, p != none
}

// NextSibling returns the index of the following fragment with the same
// parent.
func (t *Tree) NextSibling(i int) (int, bool) {
	n := t.nodes[i].next
	return n, n != none
}

// Children returns the indices of i's direct children in source order.
func (t *Tree) Children(i int) []int {
	var out []int
	for c := t.nodes[i].firstChild; c != none; c = t.nodes[c].next {
		out = append(out, c)
	}

	return out
}

// Ancestors returns the indices of i's parents, nearest first.
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for p := t.nodes[i].parent; p != none; p = t.nodes[p].parent {
		out = append(out, p)
	}

	return out
}

// IndexAt returns the fragment whose range contains pos.
func (t *Tree) IndexAt(pos syntax.Position, includeEnd bool) (int, bool) {
	if t == nil {
		return none, false
	}

	// Fragments do not overlap, so the candidate is the last one starting at
	// or before pos.
	i, ok := t.IndexBefore(pos)
	if !ok {
		return none, false
	}

	if t.nodes[i].fragment.Range.ContainsWith(pos, includeEnd) {
		return i, true
	}

	return none, false
}

// IndexBefore returns the last fragment starting at or before pos.
func (t *Tree) IndexBefore(pos syntax.Position) (int, bool) {
	if t == nil {
		return none, false
	}

	i := sort.Search(len(t.nodes), func(i int) bool {
		return t.nodes[i].fragment.Range.Start.After(pos)
	})

	if i == 0 {
		return none, false
	}

	return i - 1, true
}

// EnclosingOf returns the nearest ancestor of i (or i itself) satisfying
// match.
func (t *Tree) EnclosingOf(i int, match func(Kind) bool) (int, bool) {
	for j := i; j != none; j = t.nodes[j].parent {
		if match(t.nodes[j].fragment.Kind) {
			return j, true
		}
	}

	return none, false
}
