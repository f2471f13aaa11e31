package cfront

import (
	"fmt"
	"strings"
)

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  string
	pos  int // index of the next byte to consume
	line int // current 1-based source line
	// atLineStart is true while only whitespace has been seen on the current line.
	atLineStart bool
	// Directives counts the preprocessor lines that were dropped.
	Directives int
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, atLineStart: true}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.atLineStart = true
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// skipDirective discards a preprocessor line, honouring backslash-newline
// continuations. The '#' is at l.peek().
func (l *Lexer) skipDirective() {
	for l.pos < len(l.src) {
		c := l.peek()
		if c == '\\' && l.peek2() == '\n' {
			l.advance()
			l.advance()
			continue
		}
		if c == '\n' {
			return
		}
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line. The opening "//" must
// already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment() error {
	startLine := l.line
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return fmt.Errorf("unterminated block comment (opened on line %d)", startLine)
}

// skipTrivia skips whitespace, comments and preprocessor lines.
func (l *Lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == '\n':
			l.advance()
		case isSpace(c):
			l.pos++
		case c == '\\' && l.peek2() == '\n':
			l.pos++
			l.advance()
		case c == '#' && l.atLineStart:
			l.Directives++
			l.skipDirective()
		case c == '/' && l.peek2() == '/':
			l.pos += 2
			l.skipLineComment()
		case c == '/' && l.peek2() == '*':
			l.pos += 2
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.pos++
	}
	return Token{Type: IDENT, Lexeme: l.src[start:l.pos], Line: l.line, Off: start, End: l.pos}
}

// scanNumber collects an integer or floating literal including its suffixes.
// Validation of the spelling is left to whoever interprets the value.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.peek()
		if isIdentPart(c) || c == '.' {
			l.pos++
			continue
		}
		// exponent sign: 1e-5, 0x1p+3
		if (c == '+' || c == '-') && l.pos > start {
			prev := l.src[l.pos-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				l.pos++
				continue
			}
		}
		break
	}
	return Token{Type: NUMBER, Lexeme: l.src[start:l.pos], Line: l.line, Off: start, End: l.pos}
}

// scanQuoted collects a string or character literal, escapes included, as it
// appears in the source.
func (l *Lexer) scanQuoted(quote byte) (Token, error) {
	start := l.pos
	line := l.line
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		c := l.peek()
		switch c {
		case '\\':
			l.pos++
			if l.peek() == '\n' {
				l.advance()
				continue
			}
			l.pos++
			continue
		case '\n':
			return Token{}, fmt.Errorf("unterminated literal on line %d", line)
		case quote:
			l.pos++
			tt := STRING
			if quote == '\'' {
				tt = CHAR
			}
			return Token{Type: tt, Lexeme: l.src[start:l.pos], Line: line, Off: start, End: l.pos}, nil
		}
		l.pos++
	}
	return Token{}, fmt.Errorf("unterminated literal on line %d", line)
}

// nextToken skips trivia and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: l.line, Off: l.pos, End: l.pos}, nil
	}
	l.atLineStart = false

	c := l.peek()
	switch {
	case isIdentStart(c):
		// wide and unicode literal prefixes: L"..", u8"..", U'x'
		tok := l.scanIdent()
		if q := l.peek(); (q == '"' || q == '\'') && isLiteralPrefix(tok.Lexeme) {
			lit, err := l.scanQuoted(q)
			if err != nil {
				return Token{}, err
			}
			lit.Off = tok.Off
			lit.Lexeme = l.src[tok.Off:lit.End]
			return lit, nil
		}
		return tok, nil
	case isDigit(c) || (c == '.' && isDigit(l.peek2())):
		return l.scanNumber(), nil
	case c == '"' || c == '\'':
		return l.scanQuoted(c)
	}

	for _, p := range punctuators {
		if strings.HasPrefix(l.src[l.pos:], p) {
			start := l.pos
			l.pos += len(p)
			return Token{Type: PUNCT, Lexeme: p, Line: l.line, Off: start, End: l.pos}, nil
		}
	}
	return Token{}, fmt.Errorf("unexpected character %q on line %d", c, l.line)
}

func isLiteralPrefix(s string) bool {
	return s == "L" || s == "u" || s == "U" || s == "u8"
}

// Lex tokenises src and returns all tokens including the final EOF token,
// together with the number of preprocessor lines that were dropped.
func Lex(src string) ([]Token, int, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, l.Directives, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, l.Directives, nil
		}
	}
}
