package cst

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Rule maps a lexmachine pattern to a token kind. When two rules match the
// same longest lexeme the earlier one wins, so keywords go before names.
type Rule struct {
	Kind    TokenKind
	Pattern string
}

// Lexer is a compiled DFA over a rule table. It is safe for concurrent use
// once compiled.
type Lexer struct {
	machine *lexmachine.Lexer
}

type lexeme struct {
	kind  TokenKind
	start int
	text  string
}

// NewLexer compiles rules. Whitespace must be one of the rules; it is
// returned as ordinary tokens so the original text can be reproduced.
func NewLexer(rules []Rule) (l *Lexer, err error) {
	// lexmachine panics on some malformed patterns instead of failing Compile.
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, fmt.Errorf("compile lexer: %v", r)
		}
	}()

	lm := lexmachine.NewLexer()
	for _, rule := range rules {
		kind := rule.Kind
		lm.Add([]byte(rule.Pattern), func(s *lexmachine.Scanner, m *machines.Match) (any, error) {
			return lexeme{kind: kind, start: m.TC, text: string(m.Bytes)}, nil
		})
	}
	if err := lm.Compile(); err != nil {
		return nil, fmt.Errorf("compile lexer: %w", err)
	}
	return &Lexer{machine: lm}, nil
}

// MustLexer is NewLexer for package-level rule tables.
func MustLexer(rules []Rule) *Lexer {
	l, err := NewLexer(rules)
	if err != nil {
		panic(err)
	}
	return l
}

// Tokenize splits text into tokens terminated by an EOF token. Bytes no rule
// accepts become TokenInvalid tokens and a diagnostic; lexing continues
// after them.
func (l *Lexer) Tokenize(text string) ([]Token, []Diagnostic) {
	var (
		tokens []Token
		diags  []Diagnostic
		lines  = newLineIndex(text)
	)
	add := func(kind TokenKind, start, end int) {
		line, col := lines.position(start)
		tokens = append(tokens, Token{
			Index:  len(tokens),
			Kind:   kind,
			Text:   text[start:end],
			Start:  start,
			End:    end,
			Line:   line,
			Column: col,
		})
	}

	scanner, err := l.machine.Scanner([]byte(text))
	if err != nil {
		diags = append(diags, Diagnostic{Code: "lex", Message: err.Error(), Severity: SeverityError})
		add(TokenInvalid, 0, len(text))
		add(TokenEOF, len(text), len(text))
		return tokens, diags
	}

	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			end := ui.FailTC
			if end <= ui.StartTC {
				end = ui.StartTC + 1
			}
			if end > len(text) {
				end = len(text)
			}
			add(TokenInvalid, ui.StartTC, end)
			t := tokens[len(tokens)-1]
			diags = append(diags, Diagnostic{
				Code:     "lex",
				Message:  fmt.Sprintf("unexpected input %q", t.Text),
				Start:    t.Pos(),
				End:      t.EndPos(),
				Severity: SeverityError,
			})
			scanner.TC = end
			continue
		} else if err != nil {
			diags = append(diags, Diagnostic{Code: "lex", Message: err.Error(), Severity: SeverityError})
			break
		}
		lx := tok.(lexeme)
		add(lx.kind, lx.start, lx.start+len(lx.text))
	}
	add(TokenEOF, len(text), len(text))
	return tokens, diags
}

// lineIndex converts byte offsets into 1-based line and column numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(text string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (li lineIndex) position(offset int) (int, int) {
	line := 0
	for line+1 < len(li.starts) && li.starts[line+1] <= offset {
		line++
	}
	return line + 1, offset - li.starts[line] + 1
}
