package cst

import (
	"fmt"
	"strings"
)

// NodeID references a node in a Tree's arena.
type NodeID int32

// NoNode is the parent of the root and the Node field of token children.
const NoNode NodeID = -1

// Kind tags a node with the grammar rule that produced it. Every language
// declares its own closed set of kinds starting at 1.
type Kind uint8

// Child is either a token (Node == NoNode) or a sub-node.
type Child struct {
	Node  NodeID
	Token int
}

func (c Child) IsToken() bool { return c.Node == NoNode }

// Node is one rule application. First and Last are inclusive token indices
// of the covering span and are -1 while the node has no children.
type Node struct {
	Kind     Kind
	Parent   NodeID
	Children []Child
	First    int
	Last     int
}

// Span is a half-open byte range of query text.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Names translates kinds and token kinds into printable names.
type Names struct {
	Kinds  map[Kind]string
	Tokens map[TokenKind]string
}

// Tree is a concrete syntax tree stored as an arena of nodes referenced by
// index. Trees are built once per parse and are read-only afterwards.
type Tree struct {
	Source string
	Tokens []Token
	Nodes  []Node
	Root   NodeID
	Errors []Diagnostic

	names Names
}

// NewTree returns an empty tree over tokens. Parsers fill it with NewNode
// and the Append helpers.
func NewTree(text string, tokens []Token, names Names) *Tree {
	return &Tree{
		Source: text,
		Tokens: tokens,
		Nodes:  make([]Node, 0, len(tokens)/2+1),
		Root:   NoNode,
		names:  names,
	}
}

// NewNode allocates a childless node of the given kind.
func (t *Tree) NewNode(kind Kind) NodeID {
	t.Nodes = append(t.Nodes, Node{Kind: kind, Parent: NoNode, First: -1, Last: -1})
	return NodeID(len(t.Nodes) - 1)
}

// AppendToken adds token i as the last child of id.
func (t *Tree) AppendToken(id NodeID, i int) {
	n := &t.Nodes[id]
	n.Children = append(n.Children, Child{Node: NoNode, Token: i})
	t.extend(id, i, i)
}

// AppendNode adds child as the last child of id and sets its parent.
func (t *Tree) AppendNode(id, child NodeID) {
	if child == NoNode {
		return
	}
	t.Nodes[child].Parent = id
	n := &t.Nodes[id]
	n.Children = append(n.Children, Child{Node: child, Token: -1})
	c := t.Nodes[child]
	if c.First >= 0 {
		t.extend(id, c.First, c.Last)
	}
}

func (t *Tree) extend(id NodeID, first, last int) {
	n := &t.Nodes[id]
	if n.First < 0 || first < n.First {
		n.First = first
	}
	if last > n.Last {
		n.Last = last
	}
}

// AddError records a diagnostic covering tokens [first, last].
func (t *Tree) AddError(code string, first, last int, format string, args ...any) {
	start, end := t.Tokens[first], t.Tokens[last]
	t.Errors = append(t.Errors, Diagnostic{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Start:    start.Pos(),
		End:      end.EndPos(),
		Severity: SeverityError,
	})
}

// HasErrors reports whether lexing or parsing produced any diagnostic.
func (t *Tree) HasErrors() bool { return len(t.Errors) > 0 }

// ErrorStrings returns the diagnostics as "line:col: message" strings.
func (t *Tree) ErrorStrings() []string {
	out := make([]string, 0, len(t.Errors))
	for _, d := range t.Errors {
		out = append(out, d.String())
	}
	return out
}

// Valid reports whether id references a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.Nodes)
}

func (t *Tree) Node(id NodeID) *Node { return &t.Nodes[id] }

func (t *Tree) Kind(id NodeID) Kind { return t.Nodes[id].Kind }

func (t *Tree) Parent(id NodeID) NodeID { return t.Nodes[id].Parent }

// KindName returns the printable name of a node kind.
func (t *Tree) KindName(k Kind) string {
	if name, ok := t.names.Kinds[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// TokenName returns the printable name of a token kind.
func (t *Tree) TokenName(k TokenKind) string {
	switch k {
	case TokenInvalid:
		return "INVALID"
	case TokenEOF:
		return "EOF"
	case TokenWhitespace:
		return "WS"
	}
	if name, ok := t.names.Tokens[k]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", k)
}

// ChildNodes returns the sub-node children of id in order.
func (t *Tree) ChildNodes(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.Nodes[id].Children {
		if !c.IsToken() {
			out = append(out, c.Node)
		}
	}
	return out
}

// ChildIndex returns the position of child among the children of its parent
// or -1 if child is the root.
func (t *Tree) ChildIndex(child NodeID) int {
	p := t.Nodes[child].Parent
	if p == NoNode {
		return -1
	}
	for i, c := range t.Nodes[p].Children {
		if c.Node == child {
			return i
		}
	}
	return -1
}

// FirstChildOfKind returns the first direct sub-node of the given kind.
func (t *Tree) FirstChildOfKind(id NodeID, kind Kind) NodeID {
	for _, c := range t.Nodes[id].Children {
		if !c.IsToken() && t.Nodes[c.Node].Kind == kind {
			return c.Node
		}
	}
	return NoNode
}

// FirstTokenOfKind returns the index of the first direct token child of the
// given kind, or -1.
func (t *Tree) FirstTokenOfKind(id NodeID, kind TokenKind) int {
	for _, c := range t.Nodes[id].Children {
		if c.IsToken() && t.Tokens[c.Token].Kind == kind {
			return c.Token
		}
	}
	return -1
}

// Span returns the byte range covered by id.
func (t *Tree) Span(id NodeID) Span {
	n := t.Nodes[id]
	if n.First < 0 {
		return Span{}
	}
	return Span{Start: t.Tokens[n.First].Start, End: t.Tokens[n.Last].End}
}

// Text returns the source text covered by id, hidden tokens included.
func (t *Tree) Text(id NodeID) string {
	s := t.Span(id)
	return t.Source[s.Start:s.End]
}

// PrevVisible returns the index of the nearest non-hidden token before i,
// or -1.
func (t *Tree) PrevVisible(i int) int {
	for j := i - 1; j >= 0; j-- {
		if !t.Tokens[j].Hidden() {
			return j
		}
	}
	return -1
}

// NextVisible returns the index of the nearest non-hidden token after i.
// The EOF token is visible, so the result is valid for any i below EOF.
func (t *Tree) NextVisible(i int) int {
	for j := i + 1; j < len(t.Tokens); j++ {
		if !t.Tokens[j].Hidden() {
			return j
		}
	}
	return len(t.Tokens) - 1
}

// Walk visits id and its descendants depth-first in source order. Returning
// false from fn skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NoNode || !fn(id) {
		return
	}
	for _, c := range t.Nodes[id].Children {
		if !c.IsToken() {
			t.Walk(c.Node, fn)
		}
	}
}

// Find returns every node of the given kind in source order.
func (t *Tree) Find(kind Kind) []NodeID {
	var out []NodeID
	t.Walk(t.Root, func(id NodeID) bool {
		if t.Nodes[id].Kind == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Path returns the sub-node indices leading from the root to id.
func (t *Tree) Path(id NodeID) []int {
	var rev []int
	for cur := id; t.Nodes[cur].Parent != NoNode; cur = t.Nodes[cur].Parent {
		p := t.Nodes[cur].Parent
		for i, c := range t.ChildNodes(p) {
			if c == cur {
				rev = append(rev, i)
				break
			}
		}
	}
	out := make([]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Resolve follows a path produced by Path, so a node can be addressed again
// after a re-parse.
func (t *Tree) Resolve(path []int) (NodeID, error) {
	if t.Root == NoNode {
		return NoNode, fmt.Errorf("empty tree")
	}
	cur := t.Root
	for depth, i := range path {
		kids := t.ChildNodes(cur)
		if i < 0 || i >= len(kids) {
			return NoNode, fmt.Errorf("path index %d out of range at depth %d (%s has %d sub-nodes)",
				i, depth, t.KindName(t.Nodes[cur].Kind), len(kids))
		}
		cur = kids[i]
	}
	return cur, nil
}

// Describe renders id as its kind and text, for logs and CLI output.
func (t *Tree) Describe(id NodeID) string {
	if !t.Valid(id) {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s %q", t.KindName(t.Nodes[id].Kind), t.Text(id))
}

// Dump renders the tree with one node per line, indented by depth.
func (t *Tree) Dump() string {
	var sb strings.Builder
	if t.Root != NoNode {
		t.dump(&sb, t.Root, 0)
	}
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id NodeID, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s %q\n", indent, t.KindName(t.Nodes[id].Kind), t.Text(id))
	for _, c := range t.Nodes[id].Children {
		if c.IsToken() {
			tok := t.Tokens[c.Token]
			fmt.Fprintf(sb, "%s  %s %q\n", indent, t.TokenName(tok.Kind), tok.Text)
			continue
		}
		t.dump(sb, c.Node, depth+1)
	}
}
