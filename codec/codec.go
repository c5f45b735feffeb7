// Package codec converts between the literal value a user types and its
// escaped form inside a regular-expression token or a quoted-string token.
//
// Both encodings satisfy Decode(Encode(v)) == v for every v. Encoding is not
// canonical: several escaped forms can decode to the same value.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnterminated = errors.New("value is not enclosed in matching quotes")

const (
	// regexMeta are regular-expression metacharacters, escaped with a backslash.
	regexMeta = `^$\.*+?()[]{}|/`
	// regexPunct would be misread by the query lexer; escaped as \xHH.
	regexPunct = ",-=<>#&!%:;@~"
	quotes     = `"'`
)

// EncodeRegex escapes v for use between the quotes of a regex-pattern token.
func EncodeRegex(v string) string {
	var sb strings.Builder
	sb.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case strings.IndexByte(regexMeta, c) >= 0, strings.IndexByte(quotes, c) >= 0:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case strings.IndexByte(regexPunct, c) >= 0:
			fmt.Fprintf(&sb, `\x%02X`, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// DecodeRegex reverses EncodeRegex. \xHH sequences are always turned into
// their character; a backslash before a metacharacter, a quote or one of the
// escaped punctuation characters is dropped. Other escapes such as \d are
// regex syntax and are kept verbatim.
func DecodeRegex(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		if next == 'x' && i+3 < len(s) && isHex(s[i+2]) && isHex(s[i+3]) {
			sb.WriteRune(rune(unhex(s[i+2])<<4 | unhex(s[i+3])))
			i += 3
			continue
		}
		if strings.IndexByte(regexMeta, next) >= 0 ||
			strings.IndexByte(quotes, next) >= 0 ||
			strings.IndexByte(regexPunct, next) >= 0 {
			sb.WriteByte(next)
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// QuoteRegex encodes v and wraps it in quote, which must be '"' or '\''.
func QuoteRegex(v string, quote byte) string {
	return string(quote) + EncodeRegex(v) + string(quote)
}

// UnquoteRegex strips the delimiters of a regex-pattern token and decodes
// its body. It also returns the quote character that was used.
func UnquoteRegex(tok string) (string, byte, error) {
	body, quote, err := strip(tok)
	if err != nil {
		return "", 0, err
	}
	return DecodeRegex(body), quote, nil
}

// EncodeQuoted escapes v for a quoted string delimited by quote: the quote
// character and the backslash get a backslash prefix.
func EncodeQuoted(v string, quote byte) string {
	var sb strings.Builder
	sb.Grow(len(v) + 2)
	for i := 0; i < len(v); i++ {
		if v[i] == quote || v[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}

// DecodeQuoted strips one layer of escaping: \<quote> becomes the quote and
// a doubled backslash collapses into one. Other escapes are left alone.
func DecodeQuoted(s string, quote byte) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == quote || s[i+1] == '\\') {
			sb.WriteByte(s[i+1])
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Quote returns v as a double-quoted string literal.
func Quote(v string) string {
	return `"` + EncodeQuoted(v, '"') + `"`
}

// Unquote strips the delimiters of a quoted-string token and decodes it.
func Unquote(tok string) (string, error) {
	body, quote, err := strip(tok)
	if err != nil {
		return "", err
	}
	return DecodeQuoted(body, quote), nil
}

func strip(tok string) (string, byte, error) {
	if len(tok) < 2 {
		return "", 0, fmt.Errorf("%w: %q", ErrUnterminated, tok)
	}
	quote := tok[0]
	if strings.IndexByte(quotes, quote) < 0 || tok[len(tok)-1] != quote {
		return "", 0, fmt.Errorf("%w: %q", ErrUnterminated, tok)
	}
	return tok[1 : len(tok)-1], quote, nil
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) rune {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0')
	case 'a' <= c && c <= 'f':
		return rune(c - 'a' + 10)
	default:
		return rune(c - 'A' + 10)
	}
}
