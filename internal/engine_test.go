package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/fcsql"
	"github.com/gnolang/qedit/internal/config"
	"github.com/gnolang/qedit/internal/edit"
	"github.com/gnolang/qedit/lexcql"
)

func findNode(t *testing.T, tree *cst.Tree, kind cst.Kind, text string) cst.NodeID {
	t.Helper()
	for _, id := range tree.Find(kind) {
		if text == "" || tree.Text(id) == text {
			return id
		}
	}
	require.FailNowf(t, "node not found", "%s %q in\n%s", tree.KindName(kind), text, tree.Dump())
	return cst.NoNode
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"fcsql", LangFCS, false},
		{"FCS", LangFCS, false},
		{"lexcql", LangCQL, false},
		{"cql", LangCQL, false},
		{"sql", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLanguage(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageFor(t *testing.T) {
	t.Parallel()

	lang, ok := LanguageFor("queries/a.fcsql")
	assert.True(t, ok)
	assert.Equal(t, LangFCS, lang)

	lang, ok = LanguageFor("B.CQL")
	assert.True(t, ok)
	assert.Equal(t, LangCQL, lang)

	_, ok = LanguageFor("notes.txt")
	assert.False(t, ok)
}

func TestNewEngineRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()
	_, err := NewEngine("sparql", config.EditorConfig{}, nil)
	assert.Error(t, err)
}

func TestEngineOps(t *testing.T) {
	t.Parallel()

	fcs, err := NewEngine(LangFCS, config.EditorConfig{}, nil)
	require.NoError(t, err)
	assert.Contains(t, fcs.Ops(), "remove")
	assert.Contains(t, fcs.Ops(), "set-quantifier")
	assert.False(t, fcs.HasOp("toggle-modifier"))
	assert.IsIncreasing(t, fcs.Ops())

	cql, err := NewEngine(LangCQL, config.EditorConfig{}, nil)
	require.NoError(t, err)
	assert.True(t, cql.HasOp("toggle-modifier"))
	assert.False(t, cql.HasOp("wrap"))
}

type applyCase struct {
	name  string
	input string
	op    string
	kind  cst.Kind
	text  string
	args  Args
	want  string
}

func runApply(t *testing.T, lang Language, cfg config.EditorConfig, tests []applyCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			eng, err := NewEngine(lang, cfg, nil)
			require.NoError(t, err)

			tree := eng.Parse(tt.input)
			require.NotNil(t, tree)
			id := cst.NoNode
			if tt.kind != 0 {
				id = findNode(t, tree, tt.kind, tt.text)
			}

			res, err := eng.Apply(tree, tt.op, id, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
			assert.True(t, res.Changed)
			require.NotNil(t, res.Tree)
			assert.Empty(t, res.Tree.ErrorStrings())
		})
	}
}

func TestApplyFCS(t *testing.T) {
	t.Parallel()
	runApply(t, LangFCS, config.EditorConfig{DefaultLayer: "lemma"}, []applyCase{
		{
			name:  "remove expression",
			input: `[ text = "a" & text = "b" ]`,
			op:    "remove",
			kind:  fcsql.KindBasic,
			text:  `text = "b"`,
			want:  `[ text = "a" ]`,
		},
		{
			name:  "add segment first uses default layer",
			input: `[ a = "b" ]`,
			op:    "add-segment",
			kind:  fcsql.KindQuery,
			args:  Args{"kind": "term"},
			want:  `[ lemma = "" ] [ a = "b" ]`,
		},
		{
			name:  "add segment after",
			input: `[ a = "b" ]`,
			op:    "add-segment",
			kind:  fcsql.KindSimple,
			want:  `[ a = "b" ] []`,
		},
		{
			name:  "set within",
			input: `[]`,
			op:    "set-within",
			args:  Args{"scope": "s"},
			want:  `[] within s`,
		},
		{
			name:  "set quantifier bound",
			input: `[]{1,}`,
			op:    "set-quantifier",
			kind:  fcsql.KindSimple,
			args:  Args{"shape": "at-least", "min": "3"},
			want:  `[]{3,}`,
		},
		{
			name:  "add quantifier",
			input: `[]`,
			op:    "add-quantifier",
			kind:  fcsql.KindSimple,
			args:  Args{"shape": "one-or-more"},
			want:  `[]+`,
		},
	})
}

func TestApplyCQL(t *testing.T) {
	t.Parallel()
	runApply(t, LangCQL, config.EditorConfig{DefaultIndex: "word", DefaultConnector: "OR"}, []applyCase{
		{
			name:  "toggle valued modifier",
			input: `lemma = "cat"`,
			op:    "toggle-modifier",
			kind:  lexcql.KindRelationModified,
			args:  Args{"name": "lang"},
			want:  `lemma =/lang="" "cat"`,
		},
		{
			name:  "add clause with configured defaults",
			input: `lemma = cat`,
			op:    "add-clause",
			kind:  lexcql.KindSearchClause,
			want:  `lemma = cat OR word = ""`,
		},
		{
			name:  "toggle connector",
			input: `a AND b`,
			op:    "toggle-connector",
			kind:  lexcql.KindConnector,
			want:  `a OR b`,
		},
	})
}

func TestApplyUnknownOp(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(LangFCS, config.EditorConfig{}, nil)
	require.NoError(t, err)

	_, err = eng.Apply(eng.Parse("[]"), "toggle-modifier", cst.NoNode, nil)
	assert.Error(t, err)
}

func TestApplyRefusedKeepsText(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	eng, err := NewEngine(LangFCS, config.EditorConfig{}, zap.New(core))
	require.NoError(t, err)

	tree := eng.Parse(`[ a = "b" ]`)
	res, err := eng.Apply(tree, "wrap", findNode(t, tree, fcsql.KindBasic, ""), Args{"kind": "sideways"})
	require.Error(t, err)
	assert.ErrorIs(t, err, edit.ErrPrecondition)
	assert.Equal(t, `[ a = "b" ]`, res.Text)
	assert.False(t, res.Changed)
	assert.Same(t, tree, res.Tree)
	assert.Equal(t, 1, logs.FilterMessage("edit operation skipped").Len())
}

func TestApplyBadQuantifierArgs(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(LangFCS, config.EditorConfig{}, nil)
	require.NoError(t, err)

	tree := eng.Parse(`[]`)
	id := findNode(t, tree, fcsql.KindSimple, "")
	_, err = eng.Apply(tree, "add-quantifier", id, Args{"shape": "exactly", "min": "two"})
	assert.ErrorIs(t, err, edit.ErrPrecondition)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	got, err := ParsePath(" 0.1.2 ")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, "0.1.2", FormatPath(got))

	empty, err := ParsePath("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"a", "0..1", "-1"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()

	tree := Parse(LangFCS, `[ a = "1" & b = "2" ]`)
	require.NotNil(t, tree)
	b := findNode(t, tree, fcsql.KindBasic, `b = "2"`)

	id, err := Locate(tree, FormatPath(tree.Path(b)))
	require.NoError(t, err)
	assert.Equal(t, b, id)

	root, err := Locate(tree, "")
	require.NoError(t, err)
	assert.Equal(t, tree.Root, root)

	_, err = Locate(tree, "9")
	assert.Error(t, err)

	_, err = Locate(nil, "0")
	assert.Error(t, err)
}
