package fcsql

import (
	"slices"
	"strings"

	"github.com/gnolang/qedit/cst"
)

// Node kinds of the multi-layer query language.
const (
	KindQuery       cst.Kind = iota + 1 // main [within]
	KindDisjunction                     // alternatives separated by |
	KindSequence                        // two or more items
	KindGroup                           // ( disjunction ) [quantifier]
	KindSimple                          // (implicit | segment) [quantifier]
	KindImplicit                        // bare regexp, matched on the default layer
	KindSegment                         // [ expression? ]
	KindOr                              // expression | expression ...
	KindAnd                             // expression & expression ...
	KindNot                             // ! expression
	KindExprGroup                       // ( expression )
	KindBasic                           // attribute operator regexp
	KindAttribute                       // [qualifier :] identifier
	KindRegexp                          // pattern [flags]
	KindFlags                           // / letters
	KindQuantifier
	KindWithin // within scope
)

var kindNames = map[cst.Kind]string{
	KindQuery:       "Query",
	KindDisjunction: "Disjunction",
	KindSequence:    "Sequence",
	KindGroup:       "Group",
	KindSimple:      "Simple",
	KindImplicit:    "Implicit",
	KindSegment:     "Segment",
	KindOr:          "Or",
	KindAnd:         "And",
	KindNot:         "Not",
	KindExprGroup:   "ExprGroup",
	KindBasic:       "Basic",
	KindAttribute:   "Attribute",
	KindRegexp:      "Regexp",
	KindFlags:       "Flags",
	KindQuantifier:  "Quantifier",
	KindWithin:      "Within",
}

var names = cst.Names{Kinds: kindNames, Tokens: tokenNames}

// Scopes accepted after the within keyword.
var Scopes = []string{"sentence", "s", "utterance", "u", "paragraph", "p", "turn", "t", "text", "session"}

// flagLetters are the regexp flags: case and diacritic insensitivity (i, I),
// case and diacritic sensitivity (c, C), literal (l), ignore diacritics (d).
const flagLetters = "iIcCld"

func isScope(s string) bool { return slices.Contains(Scopes, s) }

func isFlags(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(flagLetters, s[i]) < 0 {
			return false
		}
	}
	return true
}

// IsExpression reports whether kind is one of the expression kinds that may
// appear inside a segment.
func IsExpression(kind cst.Kind) bool {
	switch kind {
	case KindBasic, KindExprGroup, KindNot, KindOr, KindAnd:
		return true
	}
	return false
}

// IsList reports whether kind is a boolean operand list.
func IsList(kind cst.Kind) bool {
	return kind == KindOr || kind == KindAnd
}

// IsItem reports whether kind can stand as an element of a sequence.
func IsItem(kind cst.Kind) bool {
	return kind == KindSimple || kind == KindGroup
}

// MainQuery returns the node holding everything before the within clause.
func MainQuery(t *cst.Tree) cst.NodeID {
	if t == nil || t.Root == cst.NoNode {
		return cst.NoNode
	}
	kids := t.ChildNodes(t.Root)
	if len(kids) == 0 || kids[0] == cst.NoNode || t.Kind(kids[0]) == KindWithin {
		return cst.NoNode
	}
	return kids[0]
}

// Within returns the within clause of the query, if any.
func Within(t *cst.Tree) cst.NodeID {
	if t == nil || t.Root == cst.NoNode {
		return cst.NoNode
	}
	return t.FirstChildOfKind(t.Root, KindWithin)
}
