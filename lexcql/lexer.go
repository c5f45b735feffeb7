package lexcql

import "github.com/gnolang/qedit/cst"

// Terminals of the lexical query language.
const (
	TokenLParen cst.TokenKind = cst.TokenFirstLanguage + iota // (
	TokenRParen                                               // )
	TokenEq                                                   // =
	TokenGt                                                   // >
	TokenLt                                                   // <
	TokenGe                                                   // >=
	TokenLe                                                   // <=
	TokenNe                                                   // <>
	TokenEqEq                                                 // ==
	TokenSlash                                                // /
	TokenDot                                                  // .
	TokenAnd
	TokenOr
	TokenNot
	TokenQuoted
	TokenSimple
)

var tokenNames = map[cst.TokenKind]string{
	TokenLParen: "(",
	TokenRParen: ")",
	TokenEq:     "=",
	TokenGt:     ">",
	TokenLt:     "<",
	TokenGe:     ">=",
	TokenLe:     "<=",
	TokenNe:     "<>",
	TokenEqEq:   "==",
	TokenSlash:  "/",
	TokenDot:    ".",
	TokenAnd:    "AND",
	TokenOr:     "OR",
	TokenNot:    "NOT",
	TokenQuoted: "QUOTED",
	TokenSimple: "SIMPLE",
}

// Keywords are case-insensitive and win over simple strings of the same
// length; "andrew" is still a simple string.
var tokenRules = []cst.Rule{
	{Kind: cst.TokenWhitespace, Pattern: `( |\t|\n|\r)+`},
	{Kind: TokenLParen, Pattern: `\(`},
	{Kind: TokenRParen, Pattern: `\)`},
	{Kind: TokenEqEq, Pattern: `==`},
	{Kind: TokenGe, Pattern: `>=`},
	{Kind: TokenLe, Pattern: `<=`},
	{Kind: TokenNe, Pattern: `<>`},
	{Kind: TokenEq, Pattern: `=`},
	{Kind: TokenGt, Pattern: `>`},
	{Kind: TokenLt, Pattern: `<`},
	{Kind: TokenSlash, Pattern: `/`},
	{Kind: TokenDot, Pattern: `\.`},
	{Kind: TokenAnd, Pattern: `[Aa][Nn][Dd]`},
	{Kind: TokenOr, Pattern: `[Oo][Rr]`},
	{Kind: TokenNot, Pattern: `[Nn][Oo][Tt]`},
	{Kind: TokenQuoted, Pattern: `"([^"\\]|\\.)*"`},
	{Kind: TokenSimple, Pattern: `[^ \t\n\r()=<>"/]+`},
}

var lexer = cst.MustLexer(tokenRules)

// Tokenize splits text into tokens, whitespace included, ending with EOF.
func Tokenize(text string) ([]cst.Token, []cst.Diagnostic) {
	return lexer.Tokenize(text)
}

func isRelationSymbol(k cst.TokenKind) bool {
	switch k {
	case TokenEq, TokenEqEq, TokenGt, TokenLt, TokenGe, TokenLe, TokenNe:
		return true
	}
	return false
}

func isConnector(k cst.TokenKind) bool {
	return k == TokenAnd || k == TokenOr || k == TokenNot
}
