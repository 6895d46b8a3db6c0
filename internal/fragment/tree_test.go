package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// sampleTree mirrors
//
//	namespace N {               0
//	    function F() : Unit {   1
//	        let x = 1;          2
//	        if x == 1 {         3
//	            return ();      4
//	        }
//	        else {              6
//	        }
//	    }
//	    function G() : Unit {   9
//	    }
//	}
func sampleTree() *Tree {
	frag := func(line, indent int, kind Kind) *Fragment {
		return &Fragment{Kind: kind, Indentation: indent, Range: syntax.NewRange(line, indent*4, line, 40)}
	}

	return NewTree([]*Fragment{
		frag(9, 1, &CallableDeclaration{Name: syntax.Symbol{Name: "G"}}),
		frag(0, 0, &NamespaceDeclaration{Name: syntax.Symbol{Name: "N"}}),
		frag(1, 1, &CallableDeclaration{Name: syntax.Symbol{Name: "F"}}),
		frag(2, 2, &VariableBinding{}),
		frag(3, 2, &IfClause{}),
		frag(4, 3, &ReturnStatement{}),
		frag(6, 2, &ElseClause{}),
	})
}

func TestNewTreeSortsByStart(t *testing.T) {
	tree := sampleTree()
	require.Equal(t, 7, tree.Len())

	assert.IsType(t, &NamespaceDeclaration{}, tree.At(0).Kind)
	assert.IsType(t, &ReturnStatement{}, tree.At(4).Kind)
	assert.IsType(t, &CallableDeclaration{}, tree.At(6).Kind)
}

func TestNewTreeLinksParentsAndSiblings(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name   string
		index  int
		parent int
		hasPar bool
	}{
		{"namespace is a root", 0, 0, false},
		{"callable under namespace", 1, 0, true},
		{"return under if clause", 4, 3, true},
		{"else under callable", 5, 1, true},
		{"second callable under namespace", 6, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, ok := tree.Parent(tt.index)
			assert.Equal(t, tt.hasPar, ok)

			if tt.hasPar {
				assert.Equal(t, tt.parent, parent)
			}
		})
	}

	assert.Equal(t, []int{2, 3, 5}, tree.Children(1))
	assert.Equal(t, []int{1, 6}, tree.Children(0))

	prev, ok := tree.PrevSibling(5)
	require.True(t, ok)
	assert.Equal(t, 3, prev)

	next, ok := tree.NextSibling(2)
	require.True(t, ok)
	assert.Equal(t, 3, next)

	_, ok = tree.PrevSibling(2)
	assert.False(t, ok)

	assert.Equal(t, []int{3, 1, 0}, tree.Ancestors(4))
}

func TestTreeLookupByPosition(t *testing.T) {
	tree := sampleTree()

	i, ok := tree.IndexAt(syntax.Position{Line: 4, Column: 20}, false)
	require.True(t, ok)
	assert.Equal(t, 4, i)

	_, ok = tree.IndexAt(syntax.Position{Line: 4, Column: 40}, false)
	assert.False(t, ok)

	i, ok = tree.IndexAt(syntax.Position{Line: 4, Column: 40}, true)
	require.True(t, ok)
	assert.Equal(t, 4, i)

	_, ok = tree.IndexAt(syntax.Position{Line: 5, Column: 0}, true)
	assert.False(t, ok)

	i, ok = tree.IndexBefore(syntax.Position{Line: 5, Column: 0})
	require.True(t, ok)
	assert.Equal(t, 4, i)

	callable, ok := tree.EnclosingOf(4, func(k Kind) bool {
		_, is := k.(*CallableDeclaration)
		return is
	})
	require.True(t, ok)
	assert.Equal(t, 1, callable)
}

func TestOpensScope(t *testing.T) {
	assert.True(t, OpensScope(&IfClause{}))
	assert.True(t, OpensScope(&UntilSuccess{HasFixup: true}))
	assert.False(t, OpensScope(&UntilSuccess{}))
	assert.False(t, OpensScope(&VariableBinding{}))
}

func TestParameterFlatten(t *testing.T) {
	params := Parameter{Items: []Parameter{
		{Name: syntax.Symbol{Name: "a"}},
		{Items: []Parameter{{Name: syntax.Symbol{Name: "b"}}, {Name: syntax.Symbol{Name: "c"}}}},
	}}

	var names []string
	for _, p := range params.Flatten() {
		names = append(names, p.Name.Name)
	}

	assert.Equal(t, []string{"a", "b", "c"}, names)
}
