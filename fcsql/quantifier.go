package fcsql

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gnolang/qedit/cst"
)

var ErrUnknownQuantifier = errors.New("unknown quantifier shape")

// Shape is the repetition form of a quantifier.
type Shape int

const (
	ZeroOrMore Shape = iota // *
	OneOrMore               // +
	ZeroOrOne               // ?
	Exactly                 // {N}
	Range                   // {N,M}
	AtLeast                 // {N,}
	AtMost                  // {,M}
)

var shapeNames = [...]string{
	ZeroOrMore: "zero-or-more",
	OneOrMore:  "one-or-more",
	ZeroOrOne:  "zero-or-one",
	Exactly:    "exactly",
	Range:      "range",
	AtLeast:    "at-least",
	AtMost:     "at-most",
}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape is the inverse of Shape.String.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuantifier, name)
}

// templates are the canonical texts inserted when a shape is chosen without
// bounds.
var templates = [...]string{
	ZeroOrMore: "*",
	OneOrMore:  "+",
	ZeroOrOne:  "?",
	Exactly:    "{1}",
	Range:      "{0,1}",
	AtLeast:    "{0,}",
	AtMost:     "{,1}",
}

// Template returns the canonical text of s.
func Template(s Shape) string {
	if s >= 0 && int(s) < len(templates) {
		return templates[s]
	}
	return templates[ZeroOrMore]
}

// Quantifier is a decoded repetition marker. A nil Min means no explicit
// minimum, a nil Max means unbounded. Exactly stores its count in Min.
type Quantifier struct {
	Shape Shape
	Min   *int
	Max   *int
}

func intp(v int) *int { return &v }

// Bounded returns a quantifier of the given shape with both bounds set.
// Bounds the shape does not carry are dropped.
func Bounded(s Shape, min, max int) Quantifier {
	q := Quantifier{Shape: s}
	switch s {
	case Exactly, AtLeast:
		q.Min = intp(min)
	case AtMost:
		q.Max = intp(max)
	case Range:
		q.Min, q.Max = intp(min), intp(max)
	}
	return q
}

// Encode renders q. Missing bounds fall back to the template defaults.
func (q Quantifier) Encode() string {
	lo := func(def int) string {
		if q.Min != nil {
			return strconv.Itoa(*q.Min)
		}
		return strconv.Itoa(def)
	}
	hi := func(def int) string {
		if q.Max != nil {
			return strconv.Itoa(*q.Max)
		}
		return strconv.Itoa(def)
	}
	switch q.Shape {
	case Exactly:
		return "{" + lo(1) + "}"
	case Range:
		return "{" + lo(0) + "," + hi(1) + "}"
	case AtLeast:
		return "{" + lo(0) + ",}"
	case AtMost:
		return "{," + hi(1) + "}"
	default:
		return Template(q.Shape)
	}
}

func (q Quantifier) String() string { return q.Encode() }

// Validate reports bounds that make the quantifier meaningless. Encoding
// does not require it.
func (q Quantifier) Validate() error {
	switch {
	case q.Min != nil && *q.Min < 0:
		return fmt.Errorf("lower bound %d is negative", *q.Min)
	case q.Max != nil && *q.Max < 1:
		return fmt.Errorf("upper bound %d is below 1", *q.Max)
	case q.Min != nil && q.Max != nil && *q.Min > *q.Max:
		return fmt.Errorf("lower bound %d exceeds upper bound %d", *q.Min, *q.Max)
	}
	return nil
}

// DecodeQuantifier classifies a quantifier node by its tokens. A shape that
// matches none of the known forms decodes as ZeroOrMore together with
// ErrUnknownQuantifier.
func DecodeQuantifier(t *cst.Tree, id cst.NodeID) (Quantifier, error) {
	if !t.Valid(id) || t.Kind(id) != KindQuantifier {
		return Quantifier{Shape: ZeroOrMore}, fmt.Errorf("%w: not a quantifier node", ErrUnknownQuantifier)
	}
	var toks []cst.Token
	for _, c := range t.Node(id).Children {
		if c.IsToken() {
			toks = append(toks, t.Tokens[c.Token])
		}
	}
	return decodeTokens(toks)
}

func decodeTokens(toks []cst.Token) (Quantifier, error) {
	unknown := func() (Quantifier, error) {
		return Quantifier{Shape: ZeroOrMore}, fmt.Errorf("%w: %s", ErrUnknownQuantifier, joinText(toks))
	}
	if len(toks) == 1 {
		switch toks[0].Kind {
		case TokenStar:
			return Quantifier{Shape: ZeroOrMore}, nil
		case TokenPlus:
			return Quantifier{Shape: OneOrMore}, nil
		case TokenQuestion:
			return Quantifier{Shape: ZeroOrOne}, nil
		}
		return unknown()
	}
	n := len(toks)
	if n < 3 || toks[0].Kind != TokenLBrace || toks[n-1].Kind != TokenRBrace {
		return unknown()
	}
	inner := toks[1 : n-1]
	comma := -1
	for i, tok := range inner {
		if tok.Kind == TokenComma {
			comma = i
		}
	}
	num := func(tok cst.Token) (*int, bool) {
		if tok.Kind != TokenInteger {
			return nil, false
		}
		v, err := strconv.Atoi(tok.Text)
		if err != nil {
			return nil, false
		}
		return &v, true
	}

	switch {
	case comma < 0 && len(inner) == 1:
		if v, ok := num(inner[0]); ok {
			return Quantifier{Shape: Exactly, Min: v}, nil
		}
	case comma == 1 && len(inner) == 2:
		if v, ok := num(inner[0]); ok {
			return Quantifier{Shape: AtLeast, Min: v}, nil
		}
	case comma == 0 && len(inner) == 2:
		if v, ok := num(inner[1]); ok {
			return Quantifier{Shape: AtMost, Max: v}, nil
		}
	case comma == 1 && len(inner) == 3:
		lo, ok1 := num(inner[0])
		hi, ok2 := num(inner[2])
		if ok1 && ok2 {
			return Quantifier{Shape: Range, Min: lo, Max: hi}, nil
		}
	}
	return unknown()
}

func joinText(toks []cst.Token) string {
	s := ""
	for _, tok := range toks {
		s += tok.Text
	}
	return fmt.Sprintf("%q", s)
}

// boundTokens returns the token indices of the lower and upper bound digits
// of a brace quantifier, -1 where absent.
func boundTokens(t *cst.Tree, id cst.NodeID) (lo, hi int) {
	lo, hi = -1, -1
	seenComma := false
	for _, c := range t.Node(id).Children {
		if !c.IsToken() {
			continue
		}
		switch t.Tokens[c.Token].Kind {
		case TokenComma:
			seenComma = true
		case TokenInteger:
			if seenComma {
				hi = c.Token
			} else {
				lo = c.Token
			}
		}
	}
	return lo, hi
}
