// Package lexer turns Quanta source text into a flat token stream, per
// spec.md §4.1. It never aborts on bad input: a lexical error is recorded
// in the diagnostic bag and scanning resynchronizes at the next whitespace
// or newline.
package lexer

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/token"
)

const maxUint64Digits = "18446744073709551615" // lexical overflow ceiling, spec.md §4.1

// Lexer holds the scan cursor over one source buffer.
type Lexer struct {
	src  []byte
	pos  int
	line int
	bag  *diag.Bag
}

// New creates a Lexer over src, reporting into bag.
func New(src []byte, bag *diag.Bag) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, bag: bag}
}

// Lex runs the full scan, returning tokens ending with exactly one EOF
// marker (spec.md's invariant).
func Lex(src []byte, bag *diag.Bag) []token.Token {
	l := New(src, bag)
	var toks []token.Token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '@':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case c == '\'' && l.peekAt(1) == '\'' && l.peekAt(2) == '\'':
			l.skipBlockComment("'''")
		case c == '"' && l.peekAt(1) == '"' && l.peekAt(2) == '"':
			l.skipBlockComment(`"""`)
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment(delim string) {
	startLine := l.line
	l.pos += 3
	for {
		if l.atEnd() {
			l.bag.Add(diag.Lexer, startLine, "unterminated block comment")
			return
		}
		if l.peek() == delim[0] && l.peekAt(1) == delim[1] && l.peekAt(2) == delim[2] {
			l.pos += 3
			return
		}
		l.advance()
	}
}

// next scans and returns the single next token, or token.EOF at end of
// input. On lexical error it emits a diagnostic and recurses to produce the
// following valid token (per spec.md: "emits a diagnostic and resynchronizes
// at the next whitespace or newline").
func (l *Lexer) next() token.Token {
	l.skipWhitespaceAndComments()
	if l.atEnd() {
		return token.Token{Kind: token.EOF, Line: l.line}
	}

	startLine := l.line
	c := l.peek()

	switch {
	case c == '"':
		return l.scanString()
	case c == '\'':
		return l.scanChar()
	case isDigit(c):
		return l.scanNumber()
	case isIdentStart(c):
		return l.scanIdentOrKeyword()
	default:
		return l.scanOperator(startLine)
	}
}

func (l *Lexer) scanString() token.Token {
	startLine := l.line
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			l.bag.Add(diag.Lexer, startLine, "unterminated string literal")
			return token.Token{Kind: token.Str, Lexeme: sb.String(), Line: startLine}
		}
		if l.peek() == '"' {
			l.advance()
			return token.Token{Kind: token.Str, Lexeme: sb.String(), Line: startLine}
		}
		sb.WriteByte(l.advance())
	}
}

func (l *Lexer) scanChar() token.Token {
	startLine := l.line
	l.advance() // opening quote
	if l.atEnd() {
		l.bag.Add(diag.Lexer, startLine, "unterminated character literal")
		return l.next()
	}
	ch := l.advance()
	if l.atEnd() || l.peek() != '\'' {
		l.bag.Add(diag.Lexer, startLine, "unterminated character literal")
		// Do not consume the following character: the spec requires we
		// stop here rather than eat what might be the start of the next
		// token.
		return token.Token{Kind: token.Char, Lexeme: string(ch), Line: startLine}
	}
	l.advance() // closing quote
	return token.Token{Kind: token.Char, Lexeme: string(ch), Line: startLine}
}

func (l *Lexer) scanNumber() token.Token {
	startLine := l.line
	start := l.pos
	isFloat := false
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	if !l.atEnd() && (isIdentStart(l.peek())) {
		// "identifier starting with digit": consume the whole bad run and
		// emit no token for it.
		for !l.atEnd() && isIdentPart(l.peek()) {
			l.advance()
		}
		l.bag.Add(diag.Lexer, startLine, "identifier starting with digit: %q", string(l.src[start:l.pos]))
		return l.next()
	}

	lexeme := string(l.src[start:l.pos])
	if isFloat {
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil || !isFiniteFloat(v) {
			l.bag.Add(diag.Lexer, startLine, "float literal out of range: %s", lexeme)
			return l.next()
		}
		return token.Token{Kind: token.Float, Lexeme: lexeme, Line: startLine}
	}
	if exceedsUint64Max(lexeme) {
		l.bag.Add(diag.Lexer, startLine, "integer literal overflow: %s", lexeme)
		return l.next()
	}
	return token.Token{Kind: token.Int, Lexeme: lexeme, Line: startLine}
}

func isFiniteFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// exceedsUint64Max compares a digit-only lexeme against the lexical ceiling
// 18446744073709551615 using length, then lexicographic, comparison (both
// operands are pure ASCII digit runs so this is exact).
func exceedsUint64Max(lexeme string) bool {
	if len(lexeme) < len(maxUint64Digits) {
		return false
	}
	if len(lexeme) > len(maxUint64Digits) {
		return true
	}
	return lexeme > maxUint64Digits
}

func (l *Lexer) scanIdentOrKeyword() token.Token {
	startLine := l.line
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])

	if kind, width, ok := scanSuffixedType(lexeme); ok {
		_ = width
		return token.Token{Kind: kind, Lexeme: lexeme, Line: startLine}
	}
	if kind, ok := token.Lookup(lexeme); ok {
		return token.Token{Kind: kind, Lexeme: lexeme, Line: startLine}
	}
	return token.Token{Kind: token.Ident, Lexeme: lexeme, Line: startLine}
}

// scanSuffixedType recognizes intN / floatN type-keyword spellings, e.g.
// int8, int32, float64, preserving the original lexeme for the parser to
// parse the width out of (spec.md §4.1: "Type-name identifiers int, intN,
// float, floatN... emitted as type-keyword tokens with the original lexeme
// preserved").
func scanSuffixedType(lexeme string) (token.Kind, int, bool) {
	for _, prefix := range []struct {
		name string
		kind token.Kind
	}{
		{"int", token.KwInt},
		{"float", token.KwFloat},
	} {
		if strings.HasPrefix(lexeme, prefix.name) && len(lexeme) > len(prefix.name) {
			suffix := lexeme[len(prefix.name):]
			if n, err := strconv.Atoi(suffix); err == nil {
				return prefix.kind, n, true
			}
		}
	}
	return 0, 0, false
}

func (l *Lexer) scanOperator(startLine int) token.Token {
	c := l.advance()
	two := func(next byte, twoKind, oneKind token.Kind) token.Token {
		if !l.atEnd() && l.peek() == next {
			l.advance()
			return token.Token{Kind: twoKind, Lexeme: string(c) + string(next), Line: startLine}
		}
		return token.Token{Kind: oneKind, Lexeme: string(c), Line: startLine}
	}

	switch c {
	case '+':
		return two('+', token.PlusPlus, token.Plus)
	case '-':
		return two('-', token.MinusMinus, token.Minus)
	case '*':
		return token.Token{Kind: token.Star, Lexeme: "*", Line: startLine}
	case '/':
		return token.Token{Kind: token.Slash, Lexeme: "/", Line: startLine}
	case '%':
		return token.Token{Kind: token.Percent, Lexeme: "%", Line: startLine}
	case '=':
		return two('=', token.EqEq, token.Assign)
	case '!':
		if !l.atEnd() && l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.NotEq, Lexeme: "!=", Line: startLine}
		}
		l.bag.Add(diag.Lexer, startLine, "unknown character: %q", "!")
		return l.next()
	case '>':
		return two('=', token.GtEq, token.Gt)
	case '<':
		return two('=', token.LtEq, token.Lt)
	case '(':
		return token.Token{Kind: token.LParen, Lexeme: "(", Line: startLine}
	case ')':
		return token.Token{Kind: token.RParen, Lexeme: ")", Line: startLine}
	case '{':
		return token.Token{Kind: token.LBrace, Lexeme: "{", Line: startLine}
	case '}':
		return token.Token{Kind: token.RBrace, Lexeme: "}", Line: startLine}
	case '[':
		return token.Token{Kind: token.LBracket, Lexeme: "[", Line: startLine}
	case ']':
		return token.Token{Kind: token.RBracket, Lexeme: "]", Line: startLine}
	case ',':
		return token.Token{Kind: token.Comma, Lexeme: ",", Line: startLine}
	case ';':
		return token.Token{Kind: token.Semicolon, Lexeme: ";", Line: startLine}
	case ':':
		return token.Token{Kind: token.Colon, Lexeme: ":", Line: startLine}
	case '.':
		return token.Token{Kind: token.Dot, Lexeme: ".", Line: startLine}
	default:
		l.bag.Add(diag.Lexer, startLine, "unknown character: %q", string(c))
		return l.next()
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) && utf8.RuneLen(rune(c)) == 1
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
