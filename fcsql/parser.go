package fcsql

import (
	"strings"

	"github.com/gnolang/qedit/cst"
)

// Parse lexes and parses text. Empty or whitespace-only input yields nil.
// Syntax errors never abort the parse: they are collected on the returned
// tree, which is then best-effort.
func Parse(text string) *cst.Tree {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens, diags := Tokenize(text)
	tree := cst.NewTree(text, tokens, names)
	tree.Errors = append(tree.Errors, diags...)

	p := newParser(tree)
	tree.Root = p.parseQuery()
	return tree
}

// parser is a recursive-descent parser over the visible tokens of a tree.
type parser struct {
	tree *cst.Tree
	pos  int // index of the current visible token
}

func newParser(tree *cst.Tree) *parser {
	p := &parser{tree: tree}
	if tree.Tokens[0].Hidden() {
		p.pos = tree.NextVisible(0)
	}
	return p
}

func (p *parser) cur() cst.Token { return p.tree.Tokens[p.pos] }

func (p *parser) at(kinds ...cst.TokenKind) bool {
	k := p.cur().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// advance consumes the current token and returns its index. EOF is never
// consumed.
func (p *parser) advance() int {
	i := p.pos
	if p.cur().Kind != cst.TokenEOF {
		p.pos = p.tree.NextVisible(p.pos)
	}
	return i
}

// expect appends the current token to id if it has the wanted kind.
func (p *parser) expect(id cst.NodeID, kind cst.TokenKind) bool {
	if p.at(kind) {
		p.tree.AppendToken(id, p.advance())
		return true
	}
	p.errorf("expected %s, found %s", p.tree.TokenName(kind), p.describe())
	return false
}

func (p *parser) errorf(format string, args ...any) {
	p.tree.AddError("syntax", p.pos, p.pos, format, args...)
}

func (p *parser) describe() string {
	tok := p.cur()
	if tok.Kind == cst.TokenEOF {
		return "end of query"
	}
	return "'" + tok.Text + "'"
}

func (p *parser) parseQuery() cst.NodeID {
	q := p.tree.NewNode(KindQuery)
	p.tree.AppendNode(q, p.parseDisjunction())

	if p.at(TokenWithin) {
		w := p.tree.NewNode(KindWithin)
		p.tree.AppendToken(w, p.advance())
		if p.at(TokenIdentifier) && isScope(p.cur().Text) {
			p.tree.AppendToken(w, p.advance())
		} else {
			p.errorf("expected a within scope (%s), found %s", strings.Join(Scopes, ", "), p.describe())
		}
		p.tree.AppendNode(q, w)
	}

	if !p.at(cst.TokenEOF) {
		p.errorf("unexpected %s after query", p.describe())
	}
	return q
}

func (p *parser) startsItem() bool {
	return p.at(TokenLBracket, TokenLParen, TokenRegexp)
}

func (p *parser) startsQuantifier() bool {
	return p.at(TokenStar, TokenPlus, TokenQuestion, TokenLBrace)
}

// parseDisjunction returns the sequence itself when there is one alternative.
func (p *parser) parseDisjunction() cst.NodeID {
	first := p.parseSequence()
	if first == cst.NoNode || !p.at(TokenOr) {
		return first
	}
	d := p.tree.NewNode(KindDisjunction)
	p.tree.AppendNode(d, first)
	for p.at(TokenOr) {
		p.tree.AppendToken(d, p.advance())
		next := p.parseSequence()
		if next == cst.NoNode {
			break
		}
		p.tree.AppendNode(d, next)
	}
	return d
}

// parseSequence returns the item itself when there is only one.
func (p *parser) parseSequence() cst.NodeID {
	if !p.startsItem() {
		p.errorf("expected a segment, a group or a string, found %s", p.describe())
		return cst.NoNode
	}
	first := p.parseItem()
	if !p.startsItem() {
		return first
	}
	seq := p.tree.NewNode(KindSequence)
	p.tree.AppendNode(seq, first)
	for p.startsItem() {
		p.tree.AppendNode(seq, p.parseItem())
	}
	return seq
}

func (p *parser) parseItem() cst.NodeID {
	if p.at(TokenLParen) {
		return p.parseGroup()
	}
	return p.parseSimple()
}

func (p *parser) parseGroup() cst.NodeID {
	g := p.tree.NewNode(KindGroup)
	p.tree.AppendToken(g, p.advance())
	p.tree.AppendNode(g, p.parseDisjunction())
	p.expect(g, TokenRParen)
	if p.startsQuantifier() {
		p.tree.AppendNode(g, p.parseQuantifier())
	}
	return g
}

func (p *parser) parseSimple() cst.NodeID {
	s := p.tree.NewNode(KindSimple)
	if p.at(TokenLBracket) {
		p.tree.AppendNode(s, p.parseSegment())
	} else {
		imp := p.tree.NewNode(KindImplicit)
		p.tree.AppendNode(imp, p.parseRegexp())
		p.tree.AppendNode(s, imp)
	}
	if p.startsQuantifier() {
		p.tree.AppendNode(s, p.parseQuantifier())
	}
	return s
}

func (p *parser) parseSegment() cst.NodeID {
	seg := p.tree.NewNode(KindSegment)
	p.tree.AppendToken(seg, p.advance())
	if !p.at(TokenRBracket) {
		p.tree.AppendNode(seg, p.parseOr())
	}
	p.expect(seg, TokenRBracket)
	return seg
}

func (p *parser) parseRegexp() cst.NodeID {
	r := p.tree.NewNode(KindRegexp)
	if !p.expect(r, TokenRegexp) {
		return r
	}
	if p.at(TokenSlash) {
		f := p.tree.NewNode(KindFlags)
		p.tree.AppendToken(f, p.advance())
		if p.at(TokenIdentifier) && isFlags(p.cur().Text) {
			p.tree.AppendToken(f, p.advance())
		} else {
			p.errorf("expected regexp flags (%s), found %s", flagLetters, p.describe())
		}
		p.tree.AppendNode(r, f)
	}
	return r
}

func (p *parser) parseOr() cst.NodeID {
	return p.parseList(KindOr, TokenOr, p.parseAnd)
}

func (p *parser) parseAnd() cst.NodeID {
	return p.parseList(KindAnd, TokenAnd, p.parseUnary)
}

// parseList builds an operand list alternating operands and operator tokens.
// A single operand is returned as is.
func (p *parser) parseList(kind cst.Kind, op cst.TokenKind, operand func() cst.NodeID) cst.NodeID {
	first := operand()
	if first == cst.NoNode || !p.at(op) {
		return first
	}
	list := p.tree.NewNode(kind)
	p.tree.AppendNode(list, first)
	for p.at(op) {
		p.tree.AppendToken(list, p.advance())
		next := operand()
		if next == cst.NoNode {
			break
		}
		p.tree.AppendNode(list, next)
	}
	return list
}

func (p *parser) parseUnary() cst.NodeID {
	switch {
	case p.at(TokenNot):
		n := p.tree.NewNode(KindNot)
		p.tree.AppendToken(n, p.advance())
		p.tree.AppendNode(n, p.parseUnary())
		return n
	case p.at(TokenLParen):
		g := p.tree.NewNode(KindExprGroup)
		p.tree.AppendToken(g, p.advance())
		p.tree.AppendNode(g, p.parseOr())
		p.expect(g, TokenRParen)
		return g
	case p.at(TokenIdentifier):
		return p.parseBasic()
	default:
		p.errorf("expected an expression, found %s", p.describe())
		if !p.at(TokenRBracket, TokenRParen, cst.TokenEOF) {
			p.advance()
		}
		return cst.NoNode
	}
}

func (p *parser) parseBasic() cst.NodeID {
	b := p.tree.NewNode(KindBasic)
	attr := p.tree.NewNode(KindAttribute)
	p.tree.AppendToken(attr, p.advance())
	if p.at(TokenColon) {
		p.tree.AppendToken(attr, p.advance())
		p.expect(attr, TokenIdentifier)
	}
	p.tree.AppendNode(b, attr)

	if p.at(TokenEq, TokenNe) {
		p.tree.AppendToken(b, p.advance())
	} else {
		p.errorf("expected '=' or '!=', found %s", p.describe())
		return b
	}
	p.tree.AppendNode(b, p.parseRegexp())
	return b
}

// parseQuantifier accepts *, +, ?, {N}, {N,}, {,M} and {N,M}.
func (p *parser) parseQuantifier() cst.NodeID {
	q := p.tree.NewNode(KindQuantifier)
	if !p.at(TokenLBrace) {
		p.tree.AppendToken(q, p.advance())
		return q
	}
	p.tree.AppendToken(q, p.advance())
	switch {
	case p.at(TokenInteger):
		p.tree.AppendToken(q, p.advance())
		if p.at(TokenComma) {
			p.tree.AppendToken(q, p.advance())
			if p.at(TokenInteger) {
				p.tree.AppendToken(q, p.advance())
			}
		}
	case p.at(TokenComma):
		p.tree.AppendToken(q, p.advance())
		p.expect(q, TokenInteger)
	default:
		p.errorf("expected a repetition bound, found %s", p.describe())
	}
	p.expect(q, TokenRBrace)
	return q
}
