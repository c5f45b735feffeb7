// Package cursor maps a caret or a selection in query text to the syntax
// nodes it falls on.
package cursor

import (
	"slices"

	"github.com/gnolang/qedit/cst"
)

// Caret is a byte range of query text. A zero-width caret has Start == End.
type Caret struct {
	Start int
	End   int
}

// At returns a zero-width caret at offset.
func At(offset int) Caret { return Caret{Start: offset, End: offset} }

// Selection returns the caret spanning start and end in either order.
func Selection(start, end int) Caret {
	if end < start {
		start, end = end, start
	}
	return Caret{Start: start, End: end}
}

func (c Caret) Empty() bool { return c.Start == c.End }

// IsOnSpan reports whether c designates s. A zero-width caret matches when
// it lies inside s or touches either boundary. A selection matches when it
// covers s entirely or lies within it. Empty spans never match.
func IsOnSpan(s cst.Span, c Caret) bool {
	if s.Len() <= 0 {
		return false
	}
	if c.Empty() {
		return s.Start <= c.Start && c.Start <= s.End
	}
	covers := c.Start <= s.Start && s.End <= c.End
	within := s.Start <= c.Start && c.End <= s.End
	return covers || within
}

// IsOnNode reports whether c designates node id of t.
func IsOnNode(t *cst.Tree, id cst.NodeID, c Caret) bool {
	if t == nil || !t.Valid(id) {
		return false
	}
	return IsOnSpan(t.Span(id), c)
}

// NodesAt returns every node c designates, innermost first.
func NodesAt(t *cst.Tree, c Caret) []cst.NodeID {
	if t == nil || t.Root == cst.NoNode {
		return nil
	}
	var out []cst.NodeID
	t.Walk(t.Root, func(id cst.NodeID) bool {
		if IsOnNode(t, id, c) {
			out = append(out, id)
		}
		return true
	})
	depth := func(id cst.NodeID) int {
		d := 0
		for p := t.Parent(id); p != cst.NoNode; p = t.Parent(p) {
			d++
		}
		return d
	}
	slices.SortStableFunc(out, func(a, b cst.NodeID) int { return depth(b) - depth(a) })
	return out
}

// Innermost returns the deepest node designated by c, or cst.NoNode.
func Innermost(t *cst.Tree, c Caret) cst.NodeID {
	nodes := NodesAt(t, c)
	if len(nodes) == 0 {
		return cst.NoNode
	}
	return nodes[0]
}
