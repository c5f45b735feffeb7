// Package edit holds the edit cycle shared by both query languages: one
// parsed tree, one rewrite buffer, and the bookkeeping that turns a failed
// operation into a logged no-op.
package edit

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/rewrite"
)

// ErrPrecondition reports an operation invoked on a node whose shape does not
// allow it.
var ErrPrecondition = errors.New("precondition violated")

// Failf returns an ErrPrecondition with a formatted reason.
func Failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Session is one edit cycle over a parsed tree. It is not safe for
// concurrent use.
type Session struct {
	Tree   *cst.Tree
	Buf    *rewrite.Buffer
	Logger *zap.Logger

	err error
}

// NewSession starts a cycle over tree. A nil logger discards output.
func NewSession(tree *cst.Tree, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	var tokens []cst.Token
	if tree != nil {
		tokens = tree.Tokens
	}
	return &Session{Tree: tree, Buf: rewrite.New(tokens), Logger: logger}
}

// Run executes fn as the operation op on node id. Any error from fn, a
// precondition or a buffer conflict, is logged and discards every edit of
// the session so Render returns the unchanged text.
func (s *Session) Run(op string, id cst.NodeID, fn func() error) error {
	err := s.check(id)
	if err == nil {
		err = fn()
	}
	if err != nil {
		s.fail(op, id, err)
	}
	return err
}

func (s *Session) check(id cst.NodeID) error {
	switch {
	case s.err != nil:
		return fmt.Errorf("session already failed: %w", s.err)
	case s.Tree == nil || s.Tree.Root == cst.NoNode:
		return Failf("no parsed query")
	case s.Tree.HasErrors():
		return Failf("query has %d syntax errors", len(s.Tree.Errors))
	case id != cst.NoNode && !s.Tree.Valid(id):
		return Failf("node %d does not exist", id)
	}
	return nil
}

func (s *Session) fail(op string, id cst.NodeID, err error) {
	kind := ""
	if s.Tree != nil && s.Tree.Valid(id) {
		kind = s.Tree.KindName(s.Tree.Kind(id))
	}
	s.Logger.Warn("edit operation skipped",
		zap.String("op", op),
		zap.Int32("node", int32(id)),
		zap.String("kind", kind),
		zap.String("reason", err.Error()),
	)
	s.Buf.Reset()
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first failure of the session.
func (s *Session) Err() error { return s.err }

// Render returns the query text with the scheduled edits applied.
func (s *Session) Render() string {
	if s.Tree == nil {
		return ""
	}
	return s.Buf.Render()
}

// Changed reports whether at least one edit is pending.
func (s *Session) Changed() bool { return s.Buf.Len() > 0 }

// Expect fails unless id has one of kinds.
func (s *Session) Expect(id cst.NodeID, kinds ...cst.Kind) error {
	if id == cst.NoNode || !s.Tree.Valid(id) {
		return Failf("missing node")
	}
	k := s.Tree.Kind(id)
	for _, want := range kinds {
		if k == want {
			return nil
		}
	}
	names := make([]string, len(kinds))
	for i, want := range kinds {
		names[i] = s.Tree.KindName(want)
	}
	return Failf("node %d is %s, want one of %v", id, s.Tree.KindName(k), names)
}

// DeleteNode removes the token span of id.
func (s *Session) DeleteNode(id cst.NodeID) error {
	n := s.Tree.Node(id)
	if n.First < 0 {
		return Failf("node %d is empty", id)
	}
	return s.Buf.Delete(n.First, n.Last)
}

// ReplaceNode substitutes text for the token span of id.
func (s *Session) ReplaceNode(id cst.NodeID, text string) error {
	n := s.Tree.Node(id)
	if n.First < 0 {
		return Failf("node %d is empty", id)
	}
	return s.Buf.Replace(n.First, n.Last, text)
}

// Debug logs a point where an operation stops walking upward and leaves the
// rest to the caller.
func (s *Session) Debug(msg, op string, id cst.NodeID) {
	s.Logger.Debug(msg, zap.String("op", op), zap.Int32("node", int32(id)),
		zap.String("kind", s.Tree.KindName(s.Tree.Kind(id))))
}

// TrailingHidden grows last forwards over the hidden tokens after it.
func (s *Session) TrailingHidden(last int) int {
	for last+1 < len(s.Tree.Tokens) && s.Tree.Tokens[last+1].Hidden() {
		last++
	}
	return last
}

// LeadingHidden grows first backwards over the hidden tokens before it.
func (s *Session) LeadingHidden(first int) int {
	for first-1 >= 0 && s.Tree.Tokens[first-1].Hidden() {
		first--
	}
	return first
}

// Side selects where new content goes relative to an anchor node.
type Side int

const (
	Before Side = iota
	After
)

func (s Side) String() string {
	if s == Before {
		return "before"
	}
	return "after"
}

// ParseSide accepts "before" and "after".
func ParseSide(s string) (Side, error) {
	switch s {
	case "before":
		return Before, nil
	case "after", "":
		return After, nil
	}
	return After, fmt.Errorf("unknown side %q", s)
}
