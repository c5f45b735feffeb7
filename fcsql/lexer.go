package fcsql

import "github.com/gnolang/qedit/cst"

// Terminals of the multi-layer query language.
const (
	TokenLParen cst.TokenKind = cst.TokenFirstLanguage + iota // (
	TokenRParen                                               // )
	TokenLBracket                                             // [
	TokenRBracket                                             // ]
	TokenOr                                                   // |
	TokenAnd                                                  // &
	TokenNot                                                  // !
	TokenSlash                                                // /
	TokenLBrace                                               // {
	TokenRBrace                                               // }
	TokenPlus                                                 // +
	TokenStar                                                 // *
	TokenQuestion                                             // ?
	TokenComma                                                // ,
	TokenEq                                                   // =
	TokenNe                                                   // !=
	TokenColon                                                // :
	TokenWithin                                               // within
	TokenInteger
	TokenIdentifier
	TokenRegexp // "..." or '...'
)

var tokenNames = map[cst.TokenKind]string{
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenOr:         "|",
	TokenAnd:        "&",
	TokenNot:        "!",
	TokenSlash:      "/",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenPlus:       "+",
	TokenStar:       "*",
	TokenQuestion:   "?",
	TokenComma:      ",",
	TokenEq:         "=",
	TokenNe:         "!=",
	TokenColon:      ":",
	TokenWithin:     "within",
	TokenInteger:    "INTEGER",
	TokenIdentifier: "IDENTIFIER",
	TokenRegexp:     "REGEXP",
}

// Order matters: on equal length the earlier rule wins, so the keyword is
// listed before identifiers.
var tokenRules = []cst.Rule{
	{Kind: cst.TokenWhitespace, Pattern: `( |\t|\n|\r)+`},
	{Kind: TokenNe, Pattern: `!=`},
	{Kind: TokenLParen, Pattern: `\(`},
	{Kind: TokenRParen, Pattern: `\)`},
	{Kind: TokenLBracket, Pattern: `\[`},
	{Kind: TokenRBracket, Pattern: `\]`},
	{Kind: TokenOr, Pattern: `\|`},
	{Kind: TokenAnd, Pattern: `&`},
	{Kind: TokenNot, Pattern: `!`},
	{Kind: TokenSlash, Pattern: `/`},
	{Kind: TokenLBrace, Pattern: `\{`},
	{Kind: TokenRBrace, Pattern: `\}`},
	{Kind: TokenPlus, Pattern: `\+`},
	{Kind: TokenStar, Pattern: `\*`},
	{Kind: TokenQuestion, Pattern: `\?`},
	{Kind: TokenComma, Pattern: `,`},
	{Kind: TokenEq, Pattern: `=`},
	{Kind: TokenColon, Pattern: `:`},
	{Kind: TokenWithin, Pattern: `within`},
	{Kind: TokenInteger, Pattern: `[0-9]+`},
	{Kind: TokenIdentifier, Pattern: `[a-zA-Z]([a-zA-Z0-9_]|-)*`},
	{Kind: TokenRegexp, Pattern: `"([^\\"]|(\\.))*"`},
	{Kind: TokenRegexp, Pattern: `'([^\\']|(\\.))*'`},
}

var lexer = cst.MustLexer(tokenRules)

// Tokenize splits text into tokens, whitespace included, ending with EOF.
func Tokenize(text string) ([]cst.Token, []cst.Diagnostic) {
	return lexer.Tokenize(text)
}
