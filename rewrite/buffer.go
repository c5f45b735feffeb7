// Package rewrite records pending text edits against the positions of an
// immutable token sequence and renders them into new text.
//
// A Buffer lives for exactly one edit cycle: create it over the tokens of the
// latest parse, schedule edits, call Render, drop it. Tokens that no edit
// touches, whitespace included, are emitted byte for byte.
package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/qedit/cst"
)

var (
	ErrOutOfRange = errors.New("token index out of range")
	ErrOverlap    = errors.New("edit overlaps a pending edit")
)

type Op int

const (
	OpInsertBefore Op = iota
	OpInsertAfter
	OpReplace
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsertBefore:
		return "insert-before"
	case OpInsertAfter:
		return "insert-after"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Edit is one scheduled entry. Start and End are inclusive token indices;
// inserts have Start == End.
type Edit struct {
	Op    Op
	Start int
	End   int
	Text  string
}

func (e Edit) String() string {
	if e.Start == e.End {
		return fmt.Sprintf("%s #%d %q", e.Op, e.Start, e.Text)
	}
	return fmt.Sprintf("%s #%d..#%d %q", e.Op, e.Start, e.End, e.Text)
}

// Buffer holds pending edits keyed by token index.
type Buffer struct {
	tokens []cst.Token
	before map[int][]string
	after  map[int][]string
	ranges []Edit // replace and delete, sorted by Start, pairwise disjoint
	edits  []Edit // scheduling order
}

// New returns an empty buffer over tokens.
func New(tokens []cst.Token) *Buffer {
	return &Buffer{
		tokens: tokens,
		before: make(map[int][]string),
		after:  make(map[int][]string),
	}
}

// InsertBefore schedules text in front of token i. Inserts at the same
// boundary render in scheduling order.
func (b *Buffer) InsertBefore(i int, text string) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	if r, ok := b.rangeCovering(i); ok && r.Start < i {
		return fmt.Errorf("%w: insert before #%d falls inside %s", ErrOverlap, i, r)
	}
	b.before[i] = append(b.before[i], text)
	b.edits = append(b.edits, Edit{Op: OpInsertBefore, Start: i, End: i, Text: text})
	return nil
}

// InsertAfter schedules text behind token i.
func (b *Buffer) InsertAfter(i int, text string) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	if r, ok := b.rangeCovering(i); ok && i < r.End {
		return fmt.Errorf("%w: insert after #%d falls inside %s", ErrOverlap, i, r)
	}
	b.after[i] = append(b.after[i], text)
	b.edits = append(b.edits, Edit{Op: OpInsertAfter, Start: i, End: i, Text: text})
	return nil
}

// Replace substitutes text for tokens start..end inclusive.
func (b *Buffer) Replace(start, end int, text string) error {
	return b.addRange(Edit{Op: OpReplace, Start: start, End: end, Text: text})
}

// Delete removes tokens start..end inclusive.
func (b *Buffer) Delete(start, end int) error {
	return b.addRange(Edit{Op: OpDelete, Start: start, End: end})
}

func (b *Buffer) addRange(e Edit) error {
	if err := b.checkIndex(e.Start); err != nil {
		return err
	}
	if err := b.checkIndex(e.End); err != nil {
		return err
	}
	if e.Start > e.End {
		return fmt.Errorf("%w: %s has start after end", ErrOutOfRange, e)
	}
	at := sort.Search(len(b.ranges), func(k int) bool { return b.ranges[k].Start > e.Start })
	if at > 0 && b.ranges[at-1].End >= e.Start {
		return fmt.Errorf("%w: %s and %s", ErrOverlap, e, b.ranges[at-1])
	}
	if at < len(b.ranges) && b.ranges[at].Start <= e.End {
		return fmt.Errorf("%w: %s and %s", ErrOverlap, e, b.ranges[at])
	}
	for i := e.Start + 1; i <= e.End; i++ {
		if len(b.before[i]) > 0 {
			return fmt.Errorf("%w: %s swallows an insert before #%d", ErrOverlap, e, i)
		}
	}
	for i := e.Start; i < e.End; i++ {
		if len(b.after[i]) > 0 {
			return fmt.Errorf("%w: %s swallows an insert after #%d", ErrOverlap, e, i)
		}
	}
	b.ranges = append(b.ranges, Edit{})
	copy(b.ranges[at+1:], b.ranges[at:])
	b.ranges[at] = e
	b.edits = append(b.edits, e)
	return nil
}

func (b *Buffer) checkIndex(i int) error {
	if i < 0 || i >= len(b.tokens) {
		return fmt.Errorf("%w: #%d (have %d tokens)", ErrOutOfRange, i, len(b.tokens))
	}
	return nil
}

func (b *Buffer) rangeCovering(i int) (Edit, bool) {
	at := sort.Search(len(b.ranges), func(k int) bool { return b.ranges[k].Start > i })
	if at > 0 && b.ranges[at-1].End >= i {
		return b.ranges[at-1], true
	}
	return Edit{}, false
}

// Edits returns the scheduled edits in scheduling order.
func (b *Buffer) Edits() []Edit {
	out := make([]Edit, len(b.edits))
	copy(out, b.edits)
	return out
}

// Len returns the number of scheduled edits.
func (b *Buffer) Len() int { return len(b.edits) }

// Reset drops every pending edit.
func (b *Buffer) Reset() {
	b.before = make(map[int][]string)
	b.after = make(map[int][]string)
	b.ranges = nil
	b.edits = nil
}

// Render returns the original text with all pending edits applied.
func (b *Buffer) Render() string {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(b.tokens); {
		for _, s := range b.before[i] {
			sb.WriteString(s)
		}
		if next < len(b.ranges) && b.ranges[next].Start == i {
			r := b.ranges[next]
			next++
			if r.Op == OpReplace {
				sb.WriteString(r.Text)
			}
			for _, s := range b.after[r.End] {
				sb.WriteString(s)
			}
			i = r.End + 1
			continue
		}
		sb.WriteString(b.tokens[i].Text)
		for _, s := range b.after[i] {
			sb.WriteString(s)
		}
		i++
	}
	return sb.String()
}
