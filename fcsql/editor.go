package fcsql

import (
	"slices"
	"strconv"

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

// SegmentKind selects the template inserted by the AddSegment operations.
type SegmentKind int

const (
	SegmentAny    SegmentKind = iota // []
	SegmentTerm                      // [ layer = "" ]
	SegmentString                    // ""
)

// WrapKind selects the delimiters added by Wrap.
type WrapKind int

const (
	WrapGroup    WrapKind = iota // ( ... )
	WrapNegation                 // ! ...
)

// ListKind is the operator of a boolean operand list.
type ListKind int

const (
	ListOr ListKind = iota
	ListAnd
)

func (k ListKind) operator() string {
	if k == ListAnd {
		return "&"
	}
	return "|"
}

// Editor schedules structural edits on one parsed query. Each operation
// either schedules all of its edits or none: on failure the error is logged,
// the buffer is cleared and Render returns the input unchanged.
type Editor struct {
	*edit.Session

	// DefaultLayer names the layer used by inserted templates.
	DefaultLayer string
}

// NewEditor starts an edit cycle on tree, which should come from Parse.
func NewEditor(tree *cst.Tree, logger *zap.Logger) *Editor {
	return &Editor{Session: edit.NewSession(tree, logger), DefaultLayer: "text"}
}

func (e *Editor) node(id cst.NodeID) *cst.Node { return e.Tree.Node(id) }

func (e *Editor) kind(id cst.NodeID) cst.Kind {
	if id == cst.NoNode {
		return 0
	}
	return e.Tree.Kind(id)
}

func (e *Editor) segmentTemplate(kind SegmentKind) string {
	switch kind {
	case SegmentTerm:
		return "[ " + e.DefaultLayer + ` = "" ]`
	case SegmentString:
		return `""`
	default:
		return "[]"
	}
}

// AddSegmentFirst inserts a new segment in front of the query.
func (e *Editor) AddSegmentFirst(kind SegmentKind) error {
	return e.Run("add-segment", cst.NoNode, func() error {
		main := MainQuery(e.Tree)
		if main == cst.NoNode {
			return edit.Failf("query has no main part")
		}
		return e.Buf.InsertBefore(e.node(main).First, e.segmentTemplate(kind)+" ")
	})
}

// AddSegmentAfter inserts a new segment right behind the item id.
func (e *Editor) AddSegmentAfter(id cst.NodeID, kind SegmentKind) error {
	return e.Run("add-segment", id, func() error {
		if err := e.Expect(id, KindSimple, KindGroup); err != nil {
			return err
		}
		return e.Buf.InsertAfter(e.node(id).Last, " "+e.segmentTemplate(kind))
	})
}

// RemoveSegment deletes the item id together with its quantifier and the
// separator that tied it to its neighbours. A group left empty is removed
// as well. The last remaining item of a query cannot be removed.
func (e *Editor) RemoveSegment(id cst.NodeID) error {
	return e.Run("remove-segment", id, func() error {
		if err := e.Expect(id, KindSimple, KindGroup); err != nil {
			return err
		}
		return e.removeItem(id)
	})
}

func (e *Editor) removeItem(id cst.NodeID) error {
	p := e.Tree.Parent(id)
	switch e.kind(p) {
	case KindSequence, KindDisjunction:
		return e.deleteOperand(p, id)
	case KindGroup:
		return e.removeItem(p)
	case KindQuery:
		return edit.Failf("cannot remove the only item of the query")
	default:
		return edit.Failf("item %d has unexpected parent %s", id, e.Tree.KindName(e.kind(p)))
	}
}

// deleteOperand removes child id of list together with one adjacent
// separator: the following one for the first child, else the preceding one.
func (e *Editor) deleteOperand(list, id cst.NodeID) error {
	ops := e.Tree.ChildNodes(list)
	k := slices.Index(ops, id)
	switch {
	case k < 0:
		return edit.Failf("node %d is not an operand of %d", id, list)
	case len(ops) < 2:
		return edit.Failf("list %d has a single operand", list)
	case k == 0:
		return e.Buf.Delete(e.node(id).First, e.node(ops[1]).First-1)
	default:
		return e.Buf.Delete(e.node(ops[k-1]).Last+1, e.node(id).Last)
	}
}

// SetWithin sets the scope of the within clause. An empty scope removes the
// clause.
func (e *Editor) SetWithin(scope string) error {
	return e.Run("set-within", cst.NoNode, func() error {
		main, w := MainQuery(e.Tree), Within(e.Tree)
		if main == cst.NoNode {
			return edit.Failf("query has no main part")
		}
		if scope == "" {
			if w == cst.NoNode {
				return nil
			}
			return e.Buf.Delete(e.node(main).Last+1, e.node(w).Last)
		}
		if !isScope(scope) {
			return edit.Failf("unknown scope %q", scope)
		}
		if w == cst.NoNode {
			return e.Buf.InsertAfter(e.node(main).Last, " within "+scope)
		}
		tok := e.Tree.FirstTokenOfKind(w, TokenIdentifier)
		if tok < 0 {
			return edit.Failf("within clause has no scope")
		}
		return e.Buf.Replace(tok, tok, scope)
	})
}

// ChangeLayer sets the attribute of the basic expression id. layer is an
// identifier, optionally qualified as "qualifier:identifier".
func (e *Editor) ChangeLayer(id cst.NodeID, layer string) error {
	return e.Run("change-layer", id, func() error {
		if err := e.Expect(id, KindBasic); err != nil {
			return err
		}
		if !isAttribute(layer) {
			return edit.Failf("invalid layer %q", layer)
		}
		attr := e.Tree.FirstChildOfKind(id, KindAttribute)
		if attr == cst.NoNode {
			return edit.Failf("expression %d has no attribute", id)
		}
		return e.ReplaceNode(attr, layer)
	})
}

func isAttribute(s string) bool {
	tokens, diags := Tokenize(s)
	if len(diags) > 0 {
		return false
	}
	var kinds []cst.TokenKind
	for _, tok := range tokens {
		if tok.Kind != cst.TokenEOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	switch len(kinds) {
	case 1:
		return kinds[0] == TokenIdentifier
	case 3:
		return kinds[0] == TokenIdentifier && kinds[1] == TokenColon && kinds[2] == TokenIdentifier
	}
	return false
}

// ChangeOperator sets the comparison of the basic expression id to "=" or
// "!=".
func (e *Editor) ChangeOperator(id cst.NodeID, op string) error {
	return e.Run("change-operator", id, func() error {
		if err := e.Expect(id, KindBasic); err != nil {
			return err
		}
		if op != "=" && op != "!=" {
			return edit.Failf("invalid operator %q", op)
		}
		tok := e.Tree.FirstTokenOfKind(id, TokenEq)
		if tok < 0 {
			tok = e.Tree.FirstTokenOfKind(id, TokenNe)
		}
		if tok < 0 {
			return edit.Failf("expression %d has no operator", id)
		}
		return e.Buf.Replace(tok, tok, op)
	})
}

// ChangeValue sets the literal matched by a basic expression or a bare
// string. The value is escaped and keeps the quote style of the pattern.
func (e *Editor) ChangeValue(id cst.NodeID, value string) error {
	return e.Run("change-value", id, func() error {
		tok, err := e.patternToken(id)
		if err != nil {
			return err
		}
		quote := e.Tree.Tokens[tok].Text[0]
		return e.Buf.Replace(tok, tok, codec.QuoteRegex(value, quote))
	})
}

// SetImplicitValue sets the literal of a bare string item.
func (e *Editor) SetImplicitValue(id cst.NodeID, value string) error {
	if e.Tree != nil && e.Tree.Valid(id) && e.kind(id) == KindSimple {
		if imp := e.Tree.FirstChildOfKind(id, KindImplicit); imp != cst.NoNode {
			id = imp
		}
	}
	return e.Run("set-implicit-value", id, func() error {
		if err := e.Expect(id, KindImplicit); err != nil {
			return err
		}
		tok, err := e.patternToken(id)
		if err != nil {
			return err
		}
		quote := e.Tree.Tokens[tok].Text[0]
		return e.Buf.Replace(tok, tok, codec.QuoteRegex(value, quote))
	})
}

// Value returns the decoded literal of a basic expression or a bare string.
func Value(t *cst.Tree, id cst.NodeID) (string, error) {
	e := &Editor{Session: &edit.Session{Tree: t}}
	tok, err := e.patternToken(id)
	if err != nil {
		return "", err
	}
	v, _, err := codec.UnquoteRegex(t.Tokens[tok].Text)
	return v, err
}

func (e *Editor) regexpOf(id cst.NodeID) (cst.NodeID, error) {
	if err := e.Expect(id, KindBasic, KindImplicit, KindRegexp); err != nil {
		return cst.NoNode, err
	}
	if e.kind(id) == KindRegexp {
		return id, nil
	}
	r := e.Tree.FirstChildOfKind(id, KindRegexp)
	if r == cst.NoNode {
		return cst.NoNode, edit.Failf("node %d has no pattern", id)
	}
	return r, nil
}

func (e *Editor) patternToken(id cst.NodeID) (int, error) {
	r, err := e.regexpOf(id)
	if err != nil {
		return -1, err
	}
	tok := e.Tree.FirstTokenOfKind(r, TokenRegexp)
	if tok < 0 {
		return -1, edit.Failf("pattern %d has no literal", r)
	}
	return tok, nil
}

// SetFlags sets the regexp flags of a pattern. Empty flags remove them.
func (e *Editor) SetFlags(id cst.NodeID, flags string) error {
	return e.Run("set-flags", id, func() error {
		r, err := e.regexpOf(id)
		if err != nil {
			return err
		}
		tok := e.Tree.FirstTokenOfKind(r, TokenRegexp)
		f := e.Tree.FirstChildOfKind(r, KindFlags)
		if flags == "" {
			if f == cst.NoNode {
				return nil
			}
			return e.Buf.Delete(tok+1, e.node(f).Last)
		}
		if !isFlags(flags) {
			return edit.Failf("invalid flags %q, letters must be among %s", flags, flagLetters)
		}
		if f == cst.NoNode {
			return e.Buf.InsertAfter(tok, "/"+flags)
		}
		letters := e.Tree.FirstTokenOfKind(f, TokenIdentifier)
		if letters < 0 {
			return edit.Failf("flags %d have no letters", f)
		}
		return e.Buf.Replace(letters, letters, flags)
	})
}

// Wrap surrounds id with parentheses or negates it. Items of the query can
// only be grouped; a negated list is parenthesized.
func (e *Editor) Wrap(id cst.NodeID, kind WrapKind) error {
	return e.Run("wrap", id, func() error {
		k := e.kind(id)
		if !IsExpression(k) && !IsItem(k) && k != KindSequence && k != KindDisjunction {
			return edit.Failf("%s cannot be wrapped", e.Tree.KindName(k))
		}
		open, closing := "( ", " )"
		if kind == WrapNegation {
			if !IsExpression(k) {
				return edit.Failf("%s cannot be negated", e.Tree.KindName(k))
			}
			open, closing = "!", ""
			if IsList(k) {
				open, closing = "!( ", " )"
			}
		}
		n := e.node(id)
		if err := e.Buf.InsertBefore(n.First, open); err != nil {
			return err
		}
		if closing == "" {
			return nil
		}
		return e.Buf.InsertAfter(n.Last, closing)
	})
}

// Unwrap removes the parentheses of a group or the negation of an
// expression. It refuses when the result would parse differently.
func (e *Editor) Unwrap(id cst.NodeID) error {
	return e.Run("unwrap", id, func() error {
		if err := e.Expect(id, KindExprGroup, KindNot, KindGroup); err != nil {
			return err
		}
		kids := e.Tree.ChildNodes(id)
		if len(kids) == 0 {
			return edit.Failf("node %d is empty", id)
		}
		inner, parent := kids[0], e.Tree.Parent(id)
		n, in := e.node(id), e.node(inner)

		switch e.kind(id) {
		case KindNot:
			return e.Buf.Delete(n.First, in.First-1)
		case KindExprGroup:
			if e.kind(inner) == KindOr && e.kind(parent) == KindAnd {
				return edit.Failf("alternatives inside a conjunction need their parentheses")
			}
			if IsList(e.kind(inner)) && e.kind(parent) == KindNot {
				return edit.Failf("a negated list needs its parentheses")
			}
		case KindGroup:
			if len(kids) > 1 {
				return edit.Failf("group %d has a quantifier", id)
			}
			if e.kind(inner) == KindDisjunction && e.kind(parent) == KindSequence {
				return edit.Failf("alternatives inside a sequence need their parentheses")
			}
		}
		if err := e.Buf.Delete(n.First, in.First-1); err != nil {
			return err
		}
		return e.Buf.Delete(in.Last+1, n.Last)
	})
}

// ChangeToList joins operand to the expression id with the operator of
// kind, on the given side. An empty operand inserts a template expression on
// the default layer. Non-scalar operands are parenthesized, and so is the
// new list when its position would otherwise change its meaning.
func (e *Editor) ChangeToList(id cst.NodeID, kind ListKind, side Side, operand string) error {
	return e.Run("change-to-list", id, func() error {
		k := e.kind(id)
		if !IsExpression(k) {
			return edit.Failf("%s is not an expression", e.Tree.KindName(k))
		}
		if operand == "" {
			operand = e.DefaultLayer + ` = ""`
		}
		scalar, err := scalarExpression(operand)
		if err != nil {
			return err
		}
		if !scalar {
			operand = "( " + operand + " )"
		}

		var nodeOpen, nodeClose string
		if kind == ListAnd && k == KindOr {
			nodeOpen, nodeClose = "( ", " )"
		}
		var outerOpen, outerClose string
		parent := e.kind(e.Tree.Parent(id))
		if parent == KindNot || (kind == ListOr && parent == KindAnd) {
			outerOpen, outerClose = "( ", " )"
		}

		sep := " " + kind.operator() + " "
		var prefix, suffix string
		if side == Before {
			prefix = outerOpen + operand + sep + nodeOpen
			suffix = nodeClose + outerClose
		} else {
			prefix = outerOpen + nodeOpen
			suffix = nodeClose + sep + operand + outerClose
		}
		n := e.node(id)
		if prefix != "" {
			if err := e.Buf.InsertBefore(n.First, prefix); err != nil {
				return err
			}
		}
		if suffix != "" {
			return e.Buf.InsertAfter(n.Last, suffix)
		}
		return nil
	})
}

// scalarExpression reports whether text parses as a single operand, that is
// an expression that is not itself an operand list.
func scalarExpression(text string) (bool, error) {
	t := Parse("[" + text + "]")
	if t == nil || t.HasErrors() {
		return false, edit.Failf("invalid expression %q", text)
	}
	segs := t.Find(KindSegment)
	if len(segs) != 1 {
		return false, edit.Failf("invalid expression %q", text)
	}
	kids := t.ChildNodes(segs[0])
	if len(kids) != 1 {
		return false, edit.Failf("empty expression %q", text)
	}
	return !IsList(t.Kind(kids[0])), nil
}

// RemoveExpression deletes the expression id. A wrapper left empty goes
// with it, and an operand list never keeps a single operand with redundant
// parentheses: when a two-operand list inside brackets loses one operand,
// the parentheses of the survivor are dropped too.
func (e *Editor) RemoveExpression(id cst.NodeID) error {
	return e.Run("remove-expression", id, func() error {
		if !IsExpression(e.kind(id)) {
			return edit.Failf("%s is not an expression", e.Tree.KindName(e.kind(id)))
		}
		return e.removeExpression(id)
	})
}

func (e *Editor) removeExpression(id cst.NodeID) error {
	p := e.Tree.Parent(id)
	switch e.kind(p) {
	case KindNot, KindExprGroup:
		return e.removeExpression(p)
	case KindOr, KindAnd:
		ops := e.Tree.ChildNodes(p)
		if len(ops) < 2 {
			return e.removeExpression(p)
		}
		if err := e.deleteOperand(p, id); err != nil {
			return err
		}
		if len(ops) == 2 {
			survivor := ops[0]
			if survivor == id {
				survivor = ops[1]
			}
			container := e.kind(e.Tree.Parent(p))
			if e.kind(survivor) == KindExprGroup && (container == KindExprGroup || container == KindSegment) {
				return e.stripParens(survivor)
			}
		}
		return nil
	case KindSegment:
		e.Debug("expression is the whole segment content", "remove-expression", id)
		n := e.node(id)
		last := n.Last
		if n.First > 0 && e.Tree.Tokens[n.First-1].Hidden() && e.Tree.Tokens[last+1].Hidden() {
			last = e.TrailingHidden(last)
		}
		return e.Buf.Delete(n.First, last)
	default:
		return edit.Failf("expression %d has unexpected parent %s", id, e.Tree.KindName(e.kind(p)))
	}
}

func (e *Editor) stripParens(group cst.NodeID) error {
	kids := e.Tree.ChildNodes(group)
	if len(kids) != 1 {
		return edit.Failf("group %d is empty", group)
	}
	g, in := e.node(group), e.node(kids[0])
	if err := e.Buf.Delete(g.First, in.First-1); err != nil {
		return err
	}
	return e.Buf.Delete(in.Last+1, g.Last)
}

// quantifierOf returns the quantifier node of an item, or id itself when it
// is a quantifier.
func (e *Editor) quantifierOf(id cst.NodeID) cst.NodeID {
	if e.kind(id) == KindQuantifier {
		return id
	}
	return e.Tree.FirstChildOfKind(id, KindQuantifier)
}

// AddQuantifier appends q to the item id, which must not have one yet.
func (e *Editor) AddQuantifier(id cst.NodeID, q Quantifier) error {
	return e.Run("add-quantifier", id, func() error {
		if err := e.Expect(id, KindSimple, KindGroup); err != nil {
			return err
		}
		if e.quantifierOf(id) != cst.NoNode {
			return edit.Failf("item %d already has a quantifier", id)
		}
		if err := q.Validate(); err != nil {
			return edit.Failf("%v", err)
		}
		return e.Buf.InsertAfter(e.node(id).Last, q.Encode())
	})
}

// RemoveQuantifier deletes the quantifier of an item, given either the item
// or the quantifier itself.
func (e *Editor) RemoveQuantifier(id cst.NodeID) error {
	return e.Run("remove-quantifier", id, func() error {
		if err := e.Expect(id, KindSimple, KindGroup, KindQuantifier); err != nil {
			return err
		}
		q := e.quantifierOf(id)
		if q == cst.NoNode {
			return edit.Failf("item %d has no quantifier", id)
		}
		n := e.node(q)
		return e.Buf.Delete(e.Tree.PrevVisible(n.First)+1, n.Last)
	})
}

// SetQuantifier changes the quantifier of an item. When the shape does not
// change only the given bounds are rewritten; a nil bound keeps its current
// value. Otherwise the whole quantifier is replaced, or added if missing.
func (e *Editor) SetQuantifier(id cst.NodeID, q Quantifier) error {
	return e.Run("set-quantifier", id, func() error {
		if err := e.Expect(id, KindSimple, KindGroup, KindQuantifier); err != nil {
			return err
		}
		qn := e.quantifierOf(id)
		if qn == cst.NoNode {
			if err := q.Validate(); err != nil {
				return edit.Failf("%v", err)
			}
			return e.Buf.InsertAfter(e.node(id).Last, q.Encode())
		}
		cur, err := DecodeQuantifier(e.Tree, qn)
		if err != nil || cur.Shape != q.Shape {
			if err := q.Validate(); err != nil {
				return edit.Failf("%v", err)
			}
			return e.ReplaceNode(qn, q.Encode())
		}

		merged := cur
		if q.Min != nil {
			merged.Min = q.Min
		}
		if q.Max != nil {
			merged.Max = q.Max
		}
		if err := merged.Validate(); err != nil {
			return edit.Failf("%v", err)
		}
		lo, hi := boundTokens(e.Tree, qn)
		if q.Min != nil && lo >= 0 {
			if err := e.Buf.Replace(lo, lo, strconv.Itoa(*q.Min)); err != nil {
				return err
			}
		}
		if q.Max != nil && hi >= 0 {
			if err := e.Buf.Replace(hi, hi, strconv.Itoa(*q.Max)); err != nil {
				return err
			}
		}
		return nil
	})
}
