package fcsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/qedit/cst"
)

// nodeOf returns the first node of kind whose text is exactly text.
func nodeOf(t *testing.T, tree *cst.Tree, kind cst.Kind, text string) cst.NodeID {
	t.Helper()
	for _, id := range tree.Find(kind) {
		if tree.Text(id) == text {
			return id
		}
	}
	require.FailNowf(t, "node not found", "%s %q in\n%s", tree.KindName(kind), text, tree.Dump())
	return cst.NoNode
}

type editCase struct {
	name  string
	input string
	op    func(t *testing.T, e *Editor) error
	want  string
}

// runEdits applies each case to a fresh parse and checks that the result
// parses without errors.
func runEdits(t *testing.T, tests []editCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := Parse(tt.input)
			require.NotNil(t, tree)
			require.Empty(t, tree.ErrorStrings())

			e := NewEditor(tree, nil)
			require.NoError(t, tt.op(t, e))
			got := e.Render()
			assert.Equal(t, tt.want, got)

			again := Parse(got)
			require.NotNil(t, again)
			assert.Empty(t, again.ErrorStrings(), got)
		})
	}
}

func TestRemoveExpression(t *testing.T) {
	t.Parallel()
	remove := func(text string) func(t *testing.T, e *Editor) error {
		return func(t *testing.T, e *Editor) error {
			return e.RemoveExpression(nodeOf(t, e.Tree, KindBasic, text))
		}
	}
	runEdits(t, []editCase{
		{
			name:  "last operand of a conjunction",
			input: `[ text = "a" & text = "b" ]`,
			op:    remove(`text = "b"`),
			want:  `[ text = "a" ]`,
		},
		{
			name:  "grouped alternatives drop the survivor's parentheses",
			input: `[ ( text = "a" ) | ( text = "c" ) ]`,
			op:    remove(`text = "a"`),
			want:  `[ text = "c" ]`,
		},
		{
			name:  "survivor keeps parentheses outside brackets",
			input: `[ ( b = "2" ) & ( c = "3" ) | d = "4" ]`,
			op:    remove(`b = "2"`),
			want:  `[ ( c = "3" ) | d = "4" ]`,
		},
		{
			name:  "nested group collapse",
			input: `[ a = "1" & ( ( b = "2" ) | ( c = "3" ) ) ]`,
			op:    remove(`b = "2"`),
			want:  `[ a = "1" & ( c = "3" ) ]`,
		},
		{
			name:  "first of four operands",
			input: `[ a = "1" & b = "2" & c = "3" & d = "4" ]`,
			op:    remove(`a = "1"`),
			want:  `[ b = "2" & c = "3" & d = "4" ]`,
		},
		{
			name:  "interior of four operands",
			input: `[ a = "1" & b = "2" & c = "3" & d = "4" ]`,
			op:    remove(`c = "3"`),
			want:  `[ a = "1" & b = "2" & d = "4" ]`,
		},
		{
			name:  "last of four operands",
			input: `[ a = "1" | b = "2" | c = "3" | d = "4" ]`,
			op:    remove(`d = "4"`),
			want:  `[ a = "1" | b = "2" | c = "3" ]`,
		},
		{
			name:  "negation goes with its operand",
			input: `[ a = "1" & !b = "2" ]`,
			op:    remove(`b = "2"`),
			want:  `[ a = "1" ]`,
		},
		{
			name:  "whole segment content",
			input: `[ text = "a" ]`,
			op:    remove(`text = "a"`),
			want:  `[ ]`,
		},
		{
			name:  "whitespace elsewhere is preserved",
			input: "[word=\"x\"]\t[ a = \"1\"  &  b = \"2\" ]  within s",
			op:    remove(`a = "1"`),
			want:  "[word=\"x\"]\t[ b = \"2\" ]  within s",
		},
	})
}

func TestSegments(t *testing.T) {
	t.Parallel()
	simple := func(text string) func(t *testing.T, e *Editor) cst.NodeID {
		return func(t *testing.T, e *Editor) cst.NodeID { return nodeOf(t, e.Tree, KindSimple, text) }
	}
	runEdits(t, []editCase{
		{
			name:  "add term segment first",
			input: `[ pos = "VERB" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.AddSegmentFirst(SegmentTerm) },
			want:  `[ text = "" ] [ pos = "VERB" ]`,
		},
		{
			name:  "add empty segment before within",
			input: `"walk" within s`,
			op: func(t *testing.T, e *Editor) error {
				return e.AddSegmentAfter(simple(`"walk"`)(t, e), SegmentAny)
			},
			want: `"walk" [] within s`,
		},
		{
			name:  "add string after group",
			input: `( [] )`,
			op: func(t *testing.T, e *Editor) error {
				return e.AddSegmentAfter(nodeOf(t, e.Tree, KindGroup, `( [] )`), SegmentString)
			},
			want: `( [] ) ""`,
		},
		{
			name:  "remove middle of sequence",
			input: `[word = "a"] [word = "b"] [word = "c"]`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveSegment(simple(`[word = "b"]`)(t, e)) },
			want:  `[word = "a"] [word = "c"]`,
		},
		{
			name:  "remove first with quantifier",
			input: `[word = "a"]{2} [word = "b"]`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveSegment(simple(`[word = "a"]{2}`)(t, e)) },
			want:  `[word = "b"]`,
		},
		{
			name:  "remove alternative",
			input: `[word = "a"] | [word = "b"]`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveSegment(simple(`[word = "b"]`)(t, e)) },
			want:  `[word = "a"]`,
		},
		{
			name:  "emptied group goes too",
			input: `[word = "a"] ( [word = "b"] )`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveSegment(simple(`[word = "b"]`)(t, e)) },
			want:  `[word = "a"]`,
		},
	})
}

func TestWithin(t *testing.T) {
	t.Parallel()
	runEdits(t, []editCase{
		{
			name:  "add",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetWithin("s") },
			want:  `[] within s`,
		},
		{
			name:  "replace",
			input: `[] within s`,
			op:    func(t *testing.T, e *Editor) error { return e.SetWithin("paragraph") },
			want:  `[] within paragraph`,
		},
		{
			name:  "remove",
			input: `[]  within s`,
			op:    func(t *testing.T, e *Editor) error { return e.SetWithin("") },
			want:  `[]`,
		},
		{
			name:  "remove absent",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetWithin("") },
			want:  `[]`,
		},
	})
}

func TestBasicExpressionEdits(t *testing.T) {
	t.Parallel()
	basic := func(t *testing.T, e *Editor) cst.NodeID { return e.Tree.Find(KindBasic)[0] }
	runEdits(t, []editCase{
		{
			name:  "layer",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeLayer(basic(t, e), "lemma") },
			want:  `[ lemma = "a" ]`,
		},
		{
			name:  "qualified layer",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeLayer(basic(t, e), "cnx:lemma") },
			want:  `[ cnx:lemma = "a" ]`,
		},
		{
			name:  "operator",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeOperator(basic(t, e), "!=") },
			want:  `[ text != "a" ]`,
		},
		{
			name:  "value is escaped",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeValue(basic(t, e), "a,b.") },
			want:  `[ text = "a\x2Cb\." ]`,
		},
		{
			name:  "value keeps single quotes",
			input: `[ text = 'x' ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeValue(basic(t, e), "it's") },
			want:  `[ text = 'it\'s' ]`,
		},
		{
			name:  "implicit value",
			input: `"walk" []`,
			op: func(t *testing.T, e *Editor) error {
				return e.SetImplicitValue(nodeOf(t, e.Tree, KindSimple, `"walk"`), "run")
			},
			want: `"run" []`,
		},
		{
			name:  "add flags",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetFlags(basic(t, e), "i") },
			want:  `[ text = "a"/i ]`,
		},
		{
			name:  "replace flags",
			input: `[ text = "a"/i ]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetFlags(basic(t, e), "cd") },
			want:  `[ text = "a"/cd ]`,
		},
		{
			name:  "remove flags",
			input: `[ text = "a"/i ]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetFlags(basic(t, e), "") },
			want:  `[ text = "a" ]`,
		},
	})
}

func TestValue(t *testing.T) {
	t.Parallel()
	tree := Parse(`[ text = "a\x2Cb\." ]`)
	require.NotNil(t, tree)
	v, err := Value(tree, tree.Find(KindBasic)[0])
	require.NoError(t, err)
	assert.Equal(t, "a,b.", v)
}

func TestWrapAndUnwrap(t *testing.T) {
	t.Parallel()
	runEdits(t, []editCase{
		{
			name:  "group an expression",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.Wrap(nodeOf(t, e.Tree, KindBasic, `text = "a"`), WrapGroup)
			},
			want: `[ ( text = "a" ) ]`,
		},
		{
			name:  "negate an expression",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.Wrap(nodeOf(t, e.Tree, KindBasic, `text = "a"`), WrapNegation)
			},
			want: `[ !text = "a" ]`,
		},
		{
			name:  "negate a list",
			input: `[ a = "1" & b = "2" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.Wrap(e.Tree.Find(KindAnd)[0], WrapNegation)
			},
			want: `[ !( a = "1" & b = "2" ) ]`,
		},
		{
			name:  "group an item",
			input: `[ text = "a" ] []`,
			op: func(t *testing.T, e *Editor) error {
				return e.Wrap(nodeOf(t, e.Tree, KindSimple, `[ text = "a" ]`), WrapGroup)
			},
			want: `( [ text = "a" ] ) []`,
		},
		{
			name:  "unwrap expression group",
			input: `[ ( text = "a" ) ]`,
			op:    func(t *testing.T, e *Editor) error { return e.Unwrap(e.Tree.Find(KindExprGroup)[0]) },
			want:  `[ text = "a" ]`,
		},
		{
			name:  "unwrap negation",
			input: `[ !text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.Unwrap(e.Tree.Find(KindNot)[0]) },
			want:  `[ text = "a" ]`,
		},
		{
			name:  "unwrap item group",
			input: `( [] [] )`,
			op:    func(t *testing.T, e *Editor) error { return e.Unwrap(e.Tree.Find(KindGroup)[0]) },
			want:  `[] []`,
		},
	})
}

func TestChangeToList(t *testing.T) {
	t.Parallel()
	runEdits(t, []editCase{
		{
			name:  "conjunction after",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(e.Tree.Find(KindBasic)[0], ListAnd, After, `lemma = "b"`)
			},
			want: `[ text = "a" & lemma = "b" ]`,
		},
		{
			name:  "template alternative before",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(e.Tree.Find(KindBasic)[0], ListOr, Before, "")
			},
			want: `[ text = "" | text = "a" ]`,
		},
		{
			name:  "list operand is parenthesized",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(e.Tree.Find(KindBasic)[0], ListAnd, After, `x = "1" | y = "2"`)
			},
			want: `[ text = "a" & ( x = "1" | y = "2" ) ]`,
		},
		{
			name:  "alternatives joined by conjunction",
			input: `[ a = "1" | b = "2" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(e.Tree.Find(KindOr)[0], ListAnd, After, `c = "3"`)
			},
			want: `[ ( a = "1" | b = "2" ) & c = "3" ]`,
		},
		{
			name:  "alternative inside conjunction",
			input: `[ a = "1" & b = "2" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(nodeOf(t, e.Tree, KindBasic, `b = "2"`), ListOr, After, `c = "3"`)
			},
			want: `[ a = "1" & ( b = "2" | c = "3" ) ]`,
		},
		{
			name:  "under negation",
			input: `[ !a = "1" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(nodeOf(t, e.Tree, KindBasic, `a = "1"`), ListAnd, After, `b = "2"`)
			},
			want: `[ !( a = "1" & b = "2" ) ]`,
		},
		{
			name:  "extend a list",
			input: `[ a = "1" & b = "2" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(nodeOf(t, e.Tree, KindBasic, `b = "2"`), ListAnd, After, `c = "3"`)
			},
			want: `[ a = "1" & b = "2" & c = "3" ]`,
		},
	})
}

func TestQuantifierEdits(t *testing.T) {
	t.Parallel()
	item := func(t *testing.T, e *Editor) cst.NodeID { return e.Tree.Find(KindSimple)[0] }
	runEdits(t, []editCase{
		{
			name:  "add",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.AddQuantifier(item(t, e), Quantifier{Shape: OneOrMore}) },
			want:  `[]+`,
		},
		{
			name:  "add bounded",
			input: `( [] )`,
			op: func(t *testing.T, e *Editor) error {
				return e.AddQuantifier(e.Tree.Find(KindGroup)[0], Bounded(Range, 2, 4))
			},
			want: `( [] ){2,4}`,
		},
		{
			name:  "remove with leading space",
			input: `[] {2} []`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveQuantifier(item(t, e)) },
			want:  `[] []`,
		},
		{
			name:  "remove by quantifier node",
			input: `[]{2,3}`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveQuantifier(e.Tree.Find(KindQuantifier)[0]) },
			want:  `[]`,
		},
		{
			name:  "lower bound only",
			input: `[]{1,}`,
			op: func(t *testing.T, e *Editor) error {
				return e.SetQuantifier(item(t, e), Quantifier{Shape: AtLeast, Min: intp(3)})
			},
			want: `[]{3,}`,
		},
		{
			name:  "upper bound only",
			input: `[]{1, 3}`,
			op: func(t *testing.T, e *Editor) error {
				return e.SetQuantifier(item(t, e), Quantifier{Shape: Range, Max: intp(5)})
			},
			want: `[]{1, 5}`,
		},
		{
			name:  "shape change",
			input: `[]*`,
			op:    func(t *testing.T, e *Editor) error { return e.SetQuantifier(item(t, e), Bounded(Range, 2, 4)) },
			want:  `[]{2,4}`,
		},
		{
			name:  "set adds when missing",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetQuantifier(item(t, e), Quantifier{Shape: ZeroOrOne}) },
			want:  `[]?`,
		},
	})
}

func TestFailedEditLeavesTextUnchanged(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		op    func(t *testing.T, e *Editor) error
	}{
		{
			name:  "only segment",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveSegment(e.Tree.Find(KindSimple)[0]) },
		},
		{
			name:  "wrong node kind",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeOperator(e.Tree.Find(KindSegment)[0], "=") },
		},
		{
			name:  "invalid layer",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeLayer(e.Tree.Find(KindBasic)[0], "within") },
		},
		{
			name:  "invalid operator",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.ChangeOperator(e.Tree.Find(KindBasic)[0], "<") },
		},
		{
			name:  "invalid flags",
			input: `[ text = "a" ]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetFlags(e.Tree.Find(KindBasic)[0], "x") },
		},
		{
			name:  "unknown scope",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.SetWithin("chapter") },
		},
		{
			name:  "negate an item",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.Wrap(e.Tree.Find(KindSimple)[0], WrapNegation) },
		},
		{
			name:  "unwrap changes precedence",
			input: `[ a = "1" & ( b = "2" | c = "3" ) ]`,
			op:    func(t *testing.T, e *Editor) error { return e.Unwrap(e.Tree.Find(KindExprGroup)[0]) },
		},
		{
			name:  "unwrap quantified group",
			input: `( [] )*`,
			op:    func(t *testing.T, e *Editor) error { return e.Unwrap(e.Tree.Find(KindGroup)[0]) },
		},
		{
			name:  "invalid operand",
			input: `[ text = "a" ]`,
			op: func(t *testing.T, e *Editor) error {
				return e.ChangeToList(e.Tree.Find(KindBasic)[0], ListAnd, After, "= =")
			},
		},
		{
			name:  "second quantifier",
			input: `[]*`,
			op: func(t *testing.T, e *Editor) error {
				return e.AddQuantifier(e.Tree.Find(KindSimple)[0], Quantifier{Shape: OneOrMore})
			},
		},
		{
			name:  "bounds out of order",
			input: `[]{2,3}`,
			op: func(t *testing.T, e *Editor) error {
				return e.SetQuantifier(e.Tree.Find(KindSimple)[0], Quantifier{Shape: Range, Min: intp(5)})
			},
		},
		{
			name:  "missing node",
			input: `[]`,
			op:    func(t *testing.T, e *Editor) error { return e.RemoveExpression(cst.NodeID(99)) },
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := Parse(tt.input)
			require.NotNil(t, tree)
			e := NewEditor(tree, nil)
			err := tt.op(t, e)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Equal(t, tt.input, e.Render())
			assert.False(t, e.Changed())
		})
	}
}

func TestEditorRefusesBrokenTrees(t *testing.T) {
	t.Parallel()
	e := NewEditor(Parse(`[ text = ]`), nil)
	assert.ErrorIs(t, e.SetWithin("s"), ErrPrecondition)
	assert.Equal(t, `[ text = ]`, e.Render())

	empty := NewEditor(nil, nil)
	assert.ErrorIs(t, empty.AddSegmentFirst(SegmentAny), ErrPrecondition)
	assert.Equal(t, "", empty.Render())
}
