package cst

import "fmt"

// Position is a location in query text. Offset is a byte offset, Line and
// Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TokenKind identifies a terminal symbol. Values below TokenFirstLanguage are
// shared by every grammar; each language numbers its own terminals from
// TokenFirstLanguage upwards.
type TokenKind int

const (
	TokenInvalid    TokenKind = iota // input the lexer could not match
	TokenEOF                         // end of input, always the last token
	TokenWhitespace                  // hidden channel, kept for re-rendering
	TokenFirstLanguage
)

// Token is an immutable lexeme. Index is its ordinal in the token sequence
// and never changes after lexing.
type Token struct {
	Index  int
	Kind   TokenKind
	Text   string
	Start  int // byte offset of the first byte
	End    int // byte offset just after the last byte
	Line   int
	Column int
}

// Hidden reports whether the token lives on the hidden channel.
func (t Token) Hidden() bool {
	return t.Kind == TokenWhitespace
}

// Pos returns the start position of the token.
func (t Token) Pos() Position {
	return Position{Offset: t.Start, Line: t.Line, Column: t.Column}
}

// EndPos returns the position just after the token. Tokens never span lines
// except whitespace, for which the column is approximate.
func (t Token) EndPos() Position {
	return Position{Offset: t.End, Line: t.Line, Column: t.Column + len(t.Text)}
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d #%d %q", t.Line, t.Column, t.Index, t.Text)
}
