package lexcql

import (
	"strings"

	"github.com/gnolang/qedit/cst"
)

// Node kinds of the lexical query language.
const (
	KindQuery            cst.Kind = iota + 1
	KindBooleanQuery              // subquery (connector subquery)*
	KindSubquery                  // ( booleanQuery ) | searchClause
	KindSearchClause              // [index relationModified] searchTerm
	KindIndex
	KindRelationModified          // relation [modifierList]
	KindRelation
	KindModifierList              // modifier+
	KindModifier                  // / name [symbol value]
	KindSearchTerm
	KindConnector                 // AND | OR | NOT
)

var kindNames = map[cst.Kind]string{
	KindQuery:            "Query",
	KindBooleanQuery:     "BooleanQuery",
	KindSubquery:         "Subquery",
	KindSearchClause:     "SearchClause",
	KindIndex:            "Index",
	KindRelationModified: "RelationModified",
	KindRelation:         "Relation",
	KindModifierList:     "ModifierList",
	KindModifier:         "Modifier",
	KindSearchTerm:       "SearchTerm",
	KindConnector:        "Connector",
}

var names = cst.Names{Kinds: kindNames, Tokens: tokenNames}

// namedRelations are the relations written as words. They lex as simple
// strings and are recognized by position.
var namedRelations = []string{"is", "scr", "exact"}

// Relations lists every relation accepted by SetRelation.
var Relations = []string{"=", "==", ">", "<", ">=", "<=", "<>", "is", "scr", "exact"}

func isNamedRelation(s string) bool {
	for _, r := range namedRelations {
		if strings.EqualFold(s, r) {
			return true
		}
	}
	return false
}

func isRelation(s string) bool {
	for _, r := range Relations {
		if strings.EqualFold(s, r) {
			return true
		}
	}
	return false
}

// Connectors are the boolean operators, in ToggleConnector order.
var Connectors = []string{"AND", "OR", "NOT"}

func isConnectorName(s string) bool {
	for _, c := range Connectors {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}

// BooleanQueryOf returns the top-level boolean query.
func BooleanQueryOf(t *cst.Tree) cst.NodeID {
	if t == nil || t.Root == cst.NoNode {
		return cst.NoNode
	}
	return t.FirstChildOfKind(t.Root, KindBooleanQuery)
}

// Subqueries returns the operands of a boolean query in order.
func Subqueries(t *cst.Tree, bq cst.NodeID) []cst.NodeID {
	var out []cst.NodeID
	for _, id := range t.ChildNodes(bq) {
		if t.Kind(id) == KindSubquery {
			out = append(out, id)
		}
	}
	return out
}

// Modifiers returns the modifiers of a relation in order.
func Modifiers(t *cst.Tree, rm cst.NodeID) []cst.NodeID {
	ml := t.FirstChildOfKind(rm, KindModifierList)
	if ml == cst.NoNode {
		return nil
	}
	return t.ChildNodes(ml)
}

// ModifierName returns the name of a modifier node.
func ModifierName(t *cst.Tree, mod cst.NodeID) string {
	if tok := t.FirstTokenOfKind(mod, TokenSimple); tok >= 0 {
		return t.Tokens[tok].Text
	}
	return ""
}
