package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindPair Kind = iota + 1
	kindLeaf
)

var testNames = Names{
	Kinds:  map[Kind]string{kindPair: "Pair", kindLeaf: "Leaf"},
	Tokens: map[TokenKind]string{tokWord: "WORD", tokEq: "="},
}

// buildPair parses "a = b" by hand into Pair(Leaf(a) = Leaf(b)).
func buildPair(t *testing.T) *Tree {
	t.Helper()
	tokens, diags := MustLexer(testRules).Tokenize("a = b")
	require.Empty(t, diags)

	tree := NewTree("a = b", tokens, testNames)
	pair := tree.NewNode(kindPair)
	left := tree.NewNode(kindLeaf)
	tree.AppendToken(left, 0)
	right := tree.NewNode(kindLeaf)
	tree.AppendToken(right, 4)

	tree.AppendNode(pair, left)
	tree.AppendToken(pair, 2)
	tree.AppendNode(pair, right)
	tree.AppendNode(pair, NoNode)
	tree.Root = pair
	return tree
}

func TestTreeSpans(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)

	root := tree.Node(tree.Root)
	assert.Equal(t, 0, root.First)
	assert.Equal(t, 4, root.Last)
	assert.Len(t, root.Children, 3)
	assert.Equal(t, "a = b", tree.Text(tree.Root))
	assert.Equal(t, "a = b", tree.Source)
	assert.Equal(t, Span{Start: 4, End: 5}, tree.Span(NodeID(2)))
	assert.Equal(t, tree.Root, tree.Parent(NodeID(1)))
	assert.Equal(t, 2, tree.ChildIndex(NodeID(2)))
	assert.Equal(t, -1, tree.ChildIndex(tree.Root))
}

func TestTreeQueries(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)

	assert.Equal(t, []NodeID{1, 2}, tree.ChildNodes(tree.Root))
	assert.Equal(t, NodeID(1), tree.FirstChildOfKind(tree.Root, kindLeaf))
	assert.Equal(t, NoNode, tree.FirstChildOfKind(tree.Root, kindPair))
	assert.Equal(t, 2, tree.FirstTokenOfKind(tree.Root, tokEq))
	assert.Equal(t, -1, tree.FirstTokenOfKind(tree.Root, tokWord))
	assert.Equal(t, []NodeID{1, 2}, tree.Find(kindLeaf))
	assert.Equal(t, "Pair", tree.KindName(kindPair))
	assert.Equal(t, "Kind(9)", tree.KindName(9))
	assert.Equal(t, "EOF", tree.TokenName(TokenEOF))
	assert.Equal(t, "WORD", tree.TokenName(tokWord))
	assert.Equal(t, `Leaf "b"`, tree.Describe(NodeID(2)))
}

func TestVisibleNavigation(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)

	assert.Equal(t, 2, tree.NextVisible(0))
	assert.Equal(t, 2, tree.PrevVisible(4))
	assert.Equal(t, -1, tree.PrevVisible(0))
	assert.Equal(t, len(tree.Tokens)-1, tree.NextVisible(4))
}

func TestPathResolve(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)

	assert.Empty(t, tree.Path(tree.Root))
	path := tree.Path(NodeID(2))
	assert.Equal(t, []int{1}, path)

	id, err := tree.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, NodeID(2), id)

	_, err = tree.Resolve([]int{5})
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)
	assert.False(t, tree.HasErrors())

	tree.AddError("syntax", 4, 4, "unexpected %s", "b")
	require.True(t, tree.HasErrors())
	assert.Equal(t, []string{"1:5: unexpected b"}, tree.ErrorStrings())
	assert.Equal(t, SeverityError, tree.Errors[0].Severity)
}

func TestDump(t *testing.T) {
	t.Parallel()
	tree := buildPair(t)
	want := `Pair "a = b"
  Leaf "a"
    WORD "a"
  = "="
  Leaf "b"
    WORD "b"
`
	assert.Equal(t, want, tree.Dump())
}
