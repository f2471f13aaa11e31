package cfront

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota
	IDENT
	NUMBER
	STRING
	CHAR
	PUNCT
)

var tokenNames = [...]string{
	EOF:    "EOF",
	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	CHAR:   "CHAR",
	PUNCT:  "PUNCT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit. Off and End are byte offsets into the
// source, so the parser can recover raw text spans.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Off    int
	End    int
}

func (t Token) String() string {
	return fmt.Sprintf("%-6s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

func (t Token) Is(lexeme string) bool {
	return (t.Type == PUNCT || t.Type == IDENT) && t.Lexeme == lexeme
}

var storageClasses = map[string]bool{
	"typedef":   true,
	"extern":    true,
	"static":    true,
	"auto":      true,
	"register":  true,
	"inline":    true,
	"_Noreturn": true,
}

var qualifiers = map[string]bool{
	"const":    true,
	"volatile": true,
	"restrict": true,
}

var builtinTypes = map[string]bool{
	"void":     true,
	"char":     true,
	"short":    true,
	"int":      true,
	"long":     true,
	"float":    true,
	"double":   true,
	"signed":   true,
	"unsigned": true,
	"_Bool":    true,
	"_Complex": true,
}

// keywords that can never be a typedef name or declarator name.
var keywords = map[string]bool{
	"struct": true, "union": true, "enum": true,
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"return": true, "switch": true, "case": true, "default": true,
	"break": true, "continue": true, "goto": true, "sizeof": true,
}

func isKeyword(s string) bool {
	return keywords[s] || storageClasses[s] || qualifiers[s] || builtinTypes[s]
}

// punctuators, longest first.
var punctuators = []string{
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=", "##",
	"{", "}", "(", ")", "[", "]", ";", ",", ":", "?", ".", "=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "<", ">", "#",
}
