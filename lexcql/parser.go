package lexcql

import (
	"strings"

	"github.com/gnolang/qedit/cst"
)

// Parse lexes and parses text. Empty or whitespace-only input yields nil.
// Syntax errors are collected on the returned tree.
func Parse(text string) *cst.Tree {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens, diags := Tokenize(text)
	tree := cst.NewTree(text, tokens, names)
	tree.Errors = append(tree.Errors, diags...)

	p := &parser{tree: tree}
	if tree.Tokens[0].Hidden() {
		p.pos = tree.NextVisible(0)
	}
	tree.Root = p.parseQuery()
	return tree
}

type parser struct {
	tree *cst.Tree
	pos  int
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

// peek returns the n-th visible token after the current one.
func (p *parser) peek(n int) cst.Token {
	i := p.pos
	for ; n > 0; n-- {
		i = p.tree.NextVisible(i)
	}
	return p.tree.Tokens[i]
}

func (p *parser) advance() int {
	i := p.pos
	if p.cur().Kind != cst.TokenEOF {
		p.pos = p.tree.NextVisible(p.pos)
	}
	return i
}

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
	if p.at(cst.TokenEOF) {
		return "end of query"
	}
	return "'" + p.cur().Text + "'"
}

func (p *parser) parseQuery() cst.NodeID {
	q := p.tree.NewNode(KindQuery)
	p.tree.AppendNode(q, p.parseBooleanQuery())
	if !p.at(cst.TokenEOF) {
		p.errorf("unexpected %s after query", p.describe())
	}
	return q
}

func (p *parser) parseBooleanQuery() cst.NodeID {
	bq := p.tree.NewNode(KindBooleanQuery)
	p.tree.AppendNode(bq, p.parseSubquery())
	for p.at(TokenAnd, TokenOr, TokenNot) {
		c := p.tree.NewNode(KindConnector)
		p.tree.AppendToken(c, p.advance())
		p.tree.AppendNode(bq, c)
		p.tree.AppendNode(bq, p.parseSubquery())
	}
	return bq
}

func (p *parser) parseSubquery() cst.NodeID {
	sq := p.tree.NewNode(KindSubquery)
	if p.at(TokenLParen) {
		p.tree.AppendToken(sq, p.advance())
		p.tree.AppendNode(sq, p.parseBooleanQuery())
		p.expect(sq, TokenRParen)
		return sq
	}
	if !p.at(TokenSimple, TokenQuoted) {
		p.errorf("expected a search term or '(', found %s", p.describe())
		if !p.at(TokenRParen, cst.TokenEOF) && !isConnector(p.cur().Kind) {
			p.advance()
		}
		return sq
	}
	p.tree.AppendNode(sq, p.parseSearchClause())
	return sq
}

// indexed reports whether the clause at the current token starts with an
// index and a relation rather than with its search term.
func (p *parser) indexed() bool {
	if !p.at(TokenSimple) {
		return false
	}
	next := p.peek(1)
	if isRelationSymbol(next.Kind) {
		return true
	}
	if next.Kind == TokenSimple && isNamedRelation(next.Text) {
		switch p.peek(2).Kind {
		case TokenSimple, TokenQuoted, TokenSlash:
			return true
		}
	}
	return false
}

func (p *parser) parseSearchClause() cst.NodeID {
	sc := p.tree.NewNode(KindSearchClause)
	if p.indexed() {
		idx := p.tree.NewNode(KindIndex)
		p.tree.AppendToken(idx, p.advance())
		p.tree.AppendNode(sc, idx)
		p.tree.AppendNode(sc, p.parseRelationModified())
	}
	p.tree.AppendNode(sc, p.parseSearchTerm())
	return sc
}

func (p *parser) parseRelationModified() cst.NodeID {
	rm := p.tree.NewNode(KindRelationModified)
	rel := p.tree.NewNode(KindRelation)
	p.tree.AppendToken(rel, p.advance())
	p.tree.AppendNode(rm, rel)
	if p.at(TokenSlash) {
		ml := p.tree.NewNode(KindModifierList)
		for p.at(TokenSlash) {
			p.tree.AppendNode(ml, p.parseModifier())
		}
		p.tree.AppendNode(rm, ml)
	}
	return rm
}

func (p *parser) parseModifier() cst.NodeID {
	m := p.tree.NewNode(KindModifier)
	p.tree.AppendToken(m, p.advance())
	if !p.expect(m, TokenSimple) {
		return m
	}
	if isRelationSymbol(p.cur().Kind) {
		p.tree.AppendToken(m, p.advance())
		p.tree.AppendNode(m, p.parseSearchTerm())
	}
	return m
}

func (p *parser) parseSearchTerm() cst.NodeID {
	if !p.at(TokenSimple, TokenQuoted) {
		p.errorf("expected a search term, found %s", p.describe())
		return cst.NoNode
	}
	st := p.tree.NewNode(KindSearchTerm)
	p.tree.AppendToken(st, p.advance())
	return st
}
