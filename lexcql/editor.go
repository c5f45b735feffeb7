package lexcql

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/qedit/codec"
	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/internal/edit"
)

var ErrPrecondition = edit.ErrPrecondition

type Side = edit.Side

const (
	Before = edit.Before
	After  = edit.After
)

// Editor schedules structural edits on one parsed lexical query. A failed
// operation is logged and leaves the text unchanged.
type Editor struct {
	*edit.Session

	// DefaultIndex is the index of inserted clause templates.
	DefaultIndex string
	// DefaultConnector joins new clauses when none is given.
	DefaultConnector string
}

func NewEditor(tree *cst.Tree, logger *zap.Logger) *Editor {
	return &Editor{
		Session:          edit.NewSession(tree, logger),
		DefaultIndex:     "lemma",
		DefaultConnector: "AND",
	}
}

func (e *Editor) node(id cst.NodeID) *cst.Node { return e.Tree.Node(id) }

func (e *Editor) kind(id cst.NodeID) cst.Kind {
	if id == cst.NoNode {
		return 0
	}
	return e.Tree.Kind(id)
}

func (e *Editor) clauseTemplate() string {
	return e.DefaultIndex + ` = ""`
}

func (e *Editor) connector(name string) (string, error) {
	if name == "" {
		name = e.DefaultConnector
	}
	if !isConnectorName(name) {
		return "", edit.Failf("unknown connector %q", name)
	}
	return name, nil
}

// subqueryOf accepts a subquery or the search clause inside one.
func (e *Editor) subqueryOf(id cst.NodeID) (cst.NodeID, error) {
	if e.kind(id) == KindSearchClause {
		id = e.Tree.Parent(id)
	}
	if err := e.Expect(id, KindSubquery); err != nil {
		return cst.NoNode, err
	}
	return id, nil
}

// clauseOf accepts a search clause, the subquery holding one, or any node
// inside the clause.
func (e *Editor) clauseOf(id cst.NodeID) (cst.NodeID, error) {
	if e.kind(id) == KindSubquery {
		if sc := e.Tree.FirstChildOfKind(id, KindSearchClause); sc != cst.NoNode {
			return sc, nil
		}
	}
	for cur := id; cur != cst.NoNode; cur = e.Tree.Parent(cur) {
		switch e.kind(cur) {
		case KindSearchClause:
			return cur, nil
		case KindSubquery, KindBooleanQuery, KindQuery:
			return cst.NoNode, edit.Failf("node %d is not inside a search clause", id)
		}
	}
	return cst.NoNode, edit.Failf("node %d is not inside a search clause", id)
}

// relationOf returns the relation with its modifiers of the clause holding
// id.
func (e *Editor) relationOf(id cst.NodeID) (cst.NodeID, error) {
	if e.kind(id) == KindRelationModified {
		return id, nil
	}
	sc, err := e.clauseOf(id)
	if err != nil {
		return cst.NoNode, err
	}
	rm := e.Tree.FirstChildOfKind(sc, KindRelationModified)
	if rm == cst.NoNode {
		return cst.NoNode, edit.Failf("clause %d has no index and relation", sc)
	}
	return rm, nil
}

// parseOperand checks that text is a complete query and reports whether it
// is a single subquery.
func parseOperand(text string) (bool, error) {
	t := Parse(text)
	if t == nil || t.HasErrors() {
		return false, edit.Failf("invalid clause %q", text)
	}
	return len(Subqueries(t, BooleanQueryOf(t))) == 1, nil
}

// AddClause joins a search clause to the subquery anchor with connector.
// An empty clause inserts a template on the default index; a clause made of
// several subqueries is parenthesized.
func (e *Editor) AddClause(anchor cst.NodeID, side Side, connector, clause string) error {
	return e.Run("add-clause", anchor, func() error {
		sq, err := e.subqueryOf(anchor)
		if err != nil {
			return err
		}
		conn, err := e.connector(connector)
		if err != nil {
			return err
		}
		if clause == "" {
			clause = e.clauseTemplate()
		}
		single, err := parseOperand(clause)
		if err != nil {
			return err
		}
		if !single {
			clause = "( " + clause + " )"
		}
		return e.insertOperand(sq, side, conn, clause)
	})
}

// AddSubquery joins a parenthesized query to the subquery anchor.
func (e *Editor) AddSubquery(anchor cst.NodeID, side Side, connector, inner string) error {
	return e.Run("add-subquery", anchor, func() error {
		sq, err := e.subqueryOf(anchor)
		if err != nil {
			return err
		}
		conn, err := e.connector(connector)
		if err != nil {
			return err
		}
		if inner == "" {
			inner = e.clauseTemplate()
		}
		if _, err := parseOperand(inner); err != nil {
			return err
		}
		return e.insertOperand(sq, side, conn, "( "+inner+" )")
	})
}

func (e *Editor) insertOperand(sq cst.NodeID, side Side, conn, operand string) error {
	n := e.node(sq)
	if side == Before {
		return e.Buf.InsertBefore(n.First, operand+" "+conn+" ")
	}
	return e.Buf.InsertAfter(n.Last, " "+conn+" "+operand)
}

// RemoveSubquery deletes operand index of the boolean query bq with one
// adjacent connector. When bq is parenthesized and index is its only
// operand, the parenthesized subquery is removed from its own list instead.
// The only clause of the whole query cannot be removed.
func (e *Editor) RemoveSubquery(bq cst.NodeID, index int) error {
	return e.Run("remove-subquery", bq, func() error {
		if err := e.Expect(bq, KindBooleanQuery); err != nil {
			return err
		}
		if n := len(Subqueries(e.Tree, bq)); index < 0 || index >= n {
			return edit.Failf("operand %d out of range, query has %d", index, n)
		}
		return e.removeSubquery(bq, index)
	})
}

// RemoveNode removes the subquery id, or the subquery that holds the
// search clause id.
func (e *Editor) RemoveNode(id cst.NodeID) error {
	return e.Run("remove-subquery", id, func() error {
		sq, err := e.subqueryOf(id)
		if err != nil {
			return err
		}
		bq := e.Tree.Parent(sq)
		return e.removeSubquery(bq, slices.Index(Subqueries(e.Tree, bq), sq))
	})
}

func (e *Editor) removeSubquery(bq cst.NodeID, k int) error {
	ops := Subqueries(e.Tree, bq)
	if k < 0 {
		return edit.Failf("subquery is not an operand of %d", bq)
	}
	if len(ops) == 1 {
		parent := e.Tree.Parent(bq)
		if e.kind(parent) != KindSubquery {
			return edit.Failf("cannot remove the only clause of the query")
		}
		e.Debug("removing the enclosing parenthesized subquery", "remove-subquery", parent)
		outer := e.Tree.Parent(parent)
		return e.removeSubquery(outer, slices.Index(Subqueries(e.Tree, outer), parent))
	}
	if k == 0 {
		return e.Buf.Delete(e.node(ops[0]).First, e.node(ops[1]).First-1)
	}
	return e.Buf.Delete(e.node(ops[k-1]).Last+1, e.node(ops[k]).Last)
}

func isSimpleString(s string) bool {
	tokens, diags := Tokenize(s)
	return len(diags) == 0 && len(tokens) == 2 && tokens[0].Kind == TokenSimple
}

// SetIndex sets the index of a clause, adding "index =" in front of a bare
// search term.
func (e *Editor) SetIndex(id cst.NodeID, index string) error {
	return e.Run("set-index", id, func() error {
		sc, err := e.clauseOf(id)
		if err != nil {
			return err
		}
		if !isSimpleString(index) {
			return edit.Failf("invalid index %q", index)
		}
		if idx := e.Tree.FirstChildOfKind(sc, KindIndex); idx != cst.NoNode {
			return e.ReplaceNode(idx, index)
		}
		term := e.Tree.FirstChildOfKind(sc, KindSearchTerm)
		if term == cst.NoNode {
			return edit.Failf("clause %d has no search term", sc)
		}
		return e.Buf.InsertBefore(e.node(term).First, index+" = ")
	})
}

// SetRelation sets the relation of an indexed clause. Switching to "is"
// drops the modifiers.
func (e *Editor) SetRelation(id cst.NodeID, relation string) error {
	return e.Run("set-relation", id, func() error {
		rm, err := e.relationOf(id)
		if err != nil {
			return err
		}
		if !isRelation(relation) {
			return edit.Failf("unknown relation %q, want one of %v", relation, Relations)
		}
		rel := e.Tree.FirstChildOfKind(rm, KindRelation)
		first := e.node(rel).First
		last := e.node(rel).Last
		if ml := e.Tree.FirstChildOfKind(rm, KindModifierList); ml != cst.NoNode && strings.EqualFold(relation, "is") {
			last = e.node(ml).Last
		}
		text := relation
		if isNamedRelation(relation) {
			if !e.Tree.Tokens[first-1].Hidden() {
				text = " " + text
			}
			if !e.Tree.Tokens[last+1].Hidden() {
				text += " "
			}
		}
		return e.Buf.Replace(first, last, text)
	})
}

// ToggleModifier removes the modifier name if present, otherwise adds it
// after removing the modifiers it excludes.
func (e *Editor) ToggleModifier(id cst.NodeID, name string) error {
	return e.Run("toggle-modifier", id, func() error {
		rm, err := e.relationOf(id)
		if err != nil {
			return err
		}
		if !isSimpleString(name) {
			return edit.Failf("invalid modifier name %q", name)
		}
		rel := e.Tree.FirstChildOfKind(rm, KindRelation)
		if strings.EqualFold(e.Tree.Text(rel), "is") {
			return edit.Failf("the is relation takes no modifiers")
		}

		mods := Modifiers(e.Tree, rm)
		current := make([]string, len(mods))
		for i, m := range mods {
			current[i] = ModifierName(e.Tree, m)
		}
		desired := toggled(current, name)

		for i, m := range mods {
			if containsFold(desired, current[i]) {
				continue
			}
			n := e.node(m)
			if err := e.Buf.Delete(e.Tree.PrevVisible(n.First)+1, n.Last); err != nil {
				return err
			}
		}
		end := e.node(rm).Last
		for _, d := range desired {
			if containsFold(current, d) {
				continue
			}
			if err := e.Buf.InsertAfter(end, modifierTemplate(d)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetModifierValue sets the value of a modifier, adding "=value" when it
// has none.
func (e *Editor) SetModifierValue(id cst.NodeID, value string) error {
	return e.Run("set-modifier-value", id, func() error {
		if err := e.Expect(id, KindModifier); err != nil {
			return err
		}
		if st := e.Tree.FirstChildOfKind(id, KindSearchTerm); st != cst.NoNode {
			return e.ReplaceNode(st, codec.Quote(value))
		}
		name := e.Tree.FirstTokenOfKind(id, TokenSimple)
		if name < 0 {
			return edit.Failf("modifier %d has no name", id)
		}
		return e.Buf.InsertAfter(name, "="+codec.Quote(value))
	})
}

// SetConnector replaces a boolean connector.
func (e *Editor) SetConnector(id cst.NodeID, connector string) error {
	return e.Run("set-connector", id, func() error {
		if err := e.Expect(id, KindConnector); err != nil {
			return err
		}
		if !isConnectorName(connector) {
			return edit.Failf("unknown connector %q", connector)
		}
		return e.ReplaceNode(id, connector)
	})
}

// ToggleConnector switches AND and OR; NOT becomes AND. The letter case of
// the connector is kept.
func (e *Editor) ToggleConnector(id cst.NodeID) error {
	return e.Run("toggle-connector", id, func() error {
		if err := e.Expect(id, KindConnector); err != nil {
			return err
		}
		cur := e.Tree.Text(id)
		next := "AND"
		if strings.EqualFold(cur, "AND") {
			next = "OR"
		}
		if cur == strings.ToLower(cur) {
			next = strings.ToLower(next)
		}
		return e.ReplaceNode(id, next)
	})
}

// SetTerm sets the search term of a clause. A simple term stays unquoted
// when the value allows it.
func (e *Editor) SetTerm(id cst.NodeID, value string) error {
	return e.Run("set-term", id, func() error {
		st := id
		if e.kind(id) != KindSearchTerm {
			sc, err := e.clauseOf(id)
			if err != nil {
				return err
			}
			st = e.Tree.FirstChildOfKind(sc, KindSearchTerm)
		}
		if err := e.Expect(st, KindSearchTerm); err != nil {
			return err
		}
		tok := e.node(st).First
		if e.Tree.Tokens[tok].Kind == TokenSimple && isSimpleString(value) && !isConnectorName(value) {
			return e.Buf.Replace(tok, tok, value)
		}
		return e.Buf.Replace(tok, tok, codec.Quote(value))
	})
}

// Term returns the decoded value of a search term.
func Term(t *cst.Tree, id cst.NodeID) (string, error) {
	if !t.Valid(id) || t.Kind(id) != KindSearchTerm {
		return "", edit.Failf("node %d is not a search term", id)
	}
	tok := t.Tokens[t.Node(id).First]
	if tok.Kind == TokenQuoted {
		return codec.Unquote(tok.Text)
	}
	return tok.Text, nil
}
