package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/fcsql"
	"github.com/gnolang/qedit/lexcql"
)

func TestIsOnSpan(t *testing.T) {
	t.Parallel()
	span := cst.Span{Start: 4, End: 10}
	tests := []struct {
		name  string
		caret Caret
		want  bool
	}{
		{"inside", At(6), true},
		{"touches start", At(4), true},
		{"touches end", At(10), true},
		{"before", At(3), false},
		{"after", At(11), false},
		{"selection covers", Selection(2, 12), true},
		{"selection equals", Selection(4, 10), true},
		{"selection inside", Selection(5, 7), true},
		{"reversed selection inside", Selection(7, 5), true},
		{"selection overlaps start", Selection(2, 6), false},
		{"selection outside", Selection(11, 14), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsOnSpan(span, tt.caret))
		})
	}
	assert.False(t, IsOnSpan(cst.Span{Start: 3, End: 3}, At(3)))
}

func TestNodesAtInnermostFirst(t *testing.T) {
	t.Parallel()
	//        0123456789012345678
	query := `[ text = "a" ] "b"`
	tree := fcsql.Parse(query)
	require.NotNil(t, tree)
	require.False(t, tree.HasErrors())

	nodes := NodesAt(tree, At(3))
	require.NotEmpty(t, nodes)
	assert.Equal(t, fcsql.KindAttribute, tree.Kind(nodes[0]))
	assert.Equal(t, fcsql.KindQuery, tree.Kind(nodes[len(nodes)-1]))

	in := Innermost(tree, At(16))
	require.NotEqual(t, cst.NoNode, in)
	assert.Equal(t, fcsql.KindRegexp, tree.Kind(in))
	assert.Equal(t, `"b"`, tree.Text(in))
}

func TestSelectionOverNodes(t *testing.T) {
	t.Parallel()
	query := `lemma = cat AND dog`
	tree := lexcql.Parse(query)
	require.NotNil(t, tree)
	require.False(t, tree.HasErrors())

	sel := Selection(0, 11)
	nodes := NodesAt(tree, sel)
	var texts []string
	for _, id := range nodes {
		assert.True(t, IsOnNode(tree, id, sel))
		texts = append(texts, tree.Text(id))
	}
	assert.Contains(t, texts, "lemma = cat")
	assert.Contains(t, texts, "lemma")
	assert.NotContains(t, texts, "dog")
	assert.Equal(t, lexcql.KindRelation, tree.Kind(Innermost(tree, sel)))
	assert.False(t, IsOnNode(tree, cst.NodeID(999), At(0)))
	assert.Nil(t, NodesAt(nil, At(0)))
}
