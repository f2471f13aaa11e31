package cfront

import (
	"fmt"
	"strings"
)

// Parser consumes the token slice produced by Lex and builds a File.
//
// Only the top level is parsed structurally; function bodies, initializers,
// array dimensions and enumerator lists are kept as source text.
//
//	file        = external* EOF
//	external    = ";" | specs ";" | specs declarator body | specs initDecl ("," initDecl)* ";"
//	specs       = (storage | qualifier | builtin | structSpec | enumSpec | typedefName)+
//	structSpec  = ("struct" | "union") IDENT? ("{" fieldDecl* "}")?
//	enumSpec    = "enum" IDENT? ("{" raw "}")?
//	fieldDecl   = specs (fieldDecltor ("," fieldDecltor)*)? ";"
//	declarator  = ("*" qualifier*)* (IDENT | "(" declarator ")")? ("[" raw "]" | params)*
//	params      = "(" (param ("," param)* ("," "...")?)? ")"
//	initDecl    = declarator ("=" raw)?
type Parser struct {
	tokens      []Token
	pos         int
	src         string
	sourceLines []string
}

func NewParser(tokens []Token, src string) *Parser {
	return &Parser{tokens: tokens, src: src, sourceLines: strings.Split(src, "\n")}
}

// Parse lexes and parses src.
func Parse(filename string, src string) (*File, error) {
	tokens, directives, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens, src)

	f := &File{Name: filename, Directives: directives}
	for p.peek().Type != EOF {
		nodes, err := p.parseExternal()
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, nodes...)
	}
	return f, nil
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF, Off: len(p.src), End: len(p.src)}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it is the punctuator lexeme.
func (p *Parser) expect(lexeme string) (Token, error) {
	tok := p.peek()
	if tok.Type != PUNCT || tok.Lexeme != lexeme {
		return tok, p.fmtError(tok, "expected %q, got %s (%q)", lexeme, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

func isOpener(t Token) bool {
	return t.Type == PUNCT && (t.Lexeme == "(" || t.Lexeme == "[" || t.Lexeme == "{")
}

func isCloser(t Token) bool {
	return t.Type == PUNCT && (t.Lexeme == ")" || t.Lexeme == "]" || t.Lexeme == "}")
}

// rawBalanced consumes a bracketed group starting at the current opener and
// returns its source text, brackets included.
func (p *Parser) rawBalanced() (string, error) {
	open := p.peek()
	if !isOpener(open) {
		return "", p.fmtError(open, "expected bracket, got %q", open.Lexeme)
	}
	depth := 0
	for {
		tok := p.advance()
		switch {
		case tok.Type == EOF:
			return "", p.fmtError(open, "unbalanced %q", open.Lexeme)
		case isOpener(tok):
			depth++
		case isCloser(tok):
			depth--
			if depth == 0 {
				return p.src[open.Off:tok.End], nil
			}
		}
	}
}

// rawUntil consumes tokens up to, not including, the first of stops found
// outside brackets, and returns their source text.
func (p *Parser) rawUntil(stops ...string) (string, error) {
	start := p.peek()
	end := start.Off
	depth := 0
	for {
		tok := p.peek()
		if tok.Type == EOF {
			return "", p.fmtError(start, "unexpected end of input")
		}
		if depth == 0 && tok.Type == PUNCT {
			for _, s := range stops {
				if tok.Lexeme == s {
					return strings.TrimSpace(p.src[start.Off:end]), nil
				}
			}
		}
		switch {
		case isOpener(tok):
			depth++
		case isCloser(tok):
			if depth == 0 {
				return "", p.fmtError(tok, "unexpected %q", tok.Lexeme)
			}
			depth--
		}
		end = p.advance().End
	}
}

type specs struct {
	storage []string
	typedef bool
	base    Type
}

// parseSpecs parses declaration specifiers. An identifier is taken as a
// typedef name only while no other type specifier has been seen.
func (p *Parser) parseSpecs(allowStorage bool) (*specs, error) {
	start := p.peek()
	s := &specs{}
	var names, quals []string
	var tagged Type

loop:
	for {
		tok := p.peek()
		if tok.Type != IDENT {
			break
		}
		lx := tok.Lexeme
		switch {
		case storageClasses[lx]:
			if !allowStorage {
				return nil, p.fmtError(tok, "unexpected storage class %q", lx)
			}
			p.advance()
			if lx == "typedef" {
				s.typedef = true
			} else {
				s.storage = append(s.storage, lx)
			}
		case qualifiers[lx]:
			p.advance()
			quals = append(quals, lx)
		case builtinTypes[lx]:
			if tagged != nil {
				return nil, p.fmtError(tok, "two or more data types in declaration specifiers")
			}
			p.advance()
			names = append(names, lx)
		case lx == "struct" || lx == "union" || lx == "enum":
			if tagged != nil || len(names) > 0 {
				return nil, p.fmtError(tok, "two or more data types in declaration specifiers")
			}
			var err error
			if lx == "enum" {
				tagged, err = p.parseEnum()
			} else {
				tagged, err = p.parseStruct()
			}
			if err != nil {
				return nil, err
			}
		case !isKeyword(lx) && tagged == nil && len(names) == 0:
			p.advance()
			names = append(names, lx)
		default:
			break loop
		}
	}

	switch t := tagged.(type) {
	case *StructType:
		t.Quals = quals
		s.base = t
	case *EnumType:
		t.Quals = quals
		s.base = t
	default:
		if len(names) == 0 {
			return nil, p.fmtError(start, "expected type, got %q", start.Lexeme)
		}
		s.base = &NamedType{Names: names, Quals: quals}
	}
	return s, nil
}

func (p *Parser) parseStruct() (*StructType, error) {
	kw := p.advance()
	st := &StructType{Kind: kw.Lexeme, Pos: kw.Line}
	if tok := p.peek(); tok.Type == IDENT && !isKeyword(tok.Lexeme) {
		st.Tag = p.advance().Lexeme
	}

	if !p.peek().Is("{") {
		if st.Tag == "" {
			return nil, p.fmtError(kw, "%s without tag or body", kw.Lexeme)
		}
		return st, nil
	}

	p.advance()
	st.Defined = true
	st.Fields = []*Field{}
	for !p.peek().Is("}") {
		if p.peek().Type == EOF {
			return nil, p.fmtError(kw, "unterminated %s %s", kw.Lexeme, st.Tag)
		}
		fields, err := p.parseFieldDecl()
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, fields...)
	}
	p.advance()
	return st, nil
}

func (p *Parser) parseFieldDecl() ([]*Field, error) {
	if p.peek().Is(";") {
		p.advance()
		return nil, nil
	}

	sp, err := p.parseSpecs(false)
	if err != nil {
		return nil, err
	}
	if p.peek().Is(";") {
		p.advance()
		return []*Field{{Type: sp.base}}, nil
	}

	var fields []*Field
	base := sp.base
	for {
		f := &Field{Type: base}
		if !p.peek().Is(":") {
			name, build, err := p.parseDeclarator(false)
			if err != nil {
				return nil, err
			}
			f.Name = name
			f.Type = build(base)
		}
		if p.peek().Is(":") {
			p.advance()
			bits, err := p.rawUntil(",", ";")
			if err != nil {
				return nil, err
			}
			f.Bits = bits
		}
		fields = append(fields, f)
		base = refOf(base)

		if p.peek().Is(",") {
			p.advance()
			continue
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return fields, nil
	}
}

func (p *Parser) parseEnum() (*EnumType, error) {
	kw := p.advance()
	et := &EnumType{}
	if tok := p.peek(); tok.Type == IDENT && !isKeyword(tok.Lexeme) {
		et.Tag = p.advance().Lexeme
	}
	if p.peek().Is("{") {
		body, err := p.rawBalanced()
		if err != nil {
			return nil, err
		}
		et.Body = body
	} else if et.Tag == "" {
		return nil, p.fmtError(kw, "enum without tag or body")
	}
	return et, nil
}

// refOf returns the type later declarators of the same declaration share:
// a tagged definition is printed once and referenced afterwards.
func refOf(t Type) Type {
	switch t := t.(type) {
	case *StructType:
		if t.Defined && t.Tag != "" {
			return &StructType{Kind: t.Kind, Tag: t.Tag, Quals: t.Quals, Pos: t.Pos}
		}
	case *EnumType:
		if t.Body != "" && t.Tag != "" {
			return &EnumType{Tag: t.Tag, Quals: t.Quals}
		}
	}
	return t
}

type declBuilder func(base Type) Type

// parseDeclarator parses a (possibly abstract) declarator and returns the
// declared name with a function that wraps the specifier type accordingly.
func (p *Parser) parseDeclarator(abstract bool) (string, declBuilder, error) {
	var pointers [][]string
	for p.peek().Is("*") {
		p.advance()
		var quals []string
		for tok := p.peek(); tok.Type == IDENT && qualifiers[tok.Lexeme]; tok = p.peek() {
			quals = append(quals, p.advance().Lexeme)
		}
		pointers = append(pointers, quals)
	}

	name := ""
	inner := func(t Type) Type { return t }
	tok := p.peek()
	switch {
	case tok.Type == IDENT && !isKeyword(tok.Lexeme):
		name = p.advance().Lexeme
	case tok.Is("(") && p.startsNestedDeclarator(abstract):
		p.advance()
		n, b, err := p.parseDeclarator(abstract)
		if err != nil {
			return "", nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return "", nil, err
		}
		name, inner = n, b
	default:
		if !abstract {
			return "", nil, p.fmtError(tok, "expected identifier, got %q", tok.Lexeme)
		}
	}

	var suffixes []declBuilder
	for {
		if p.peek().Is("[") {
			p.advance()
			dim, err := p.rawUntil("]")
			if err != nil {
				return "", nil, err
			}
			p.advance()
			suffixes = append(suffixes, func(t Type) Type { return &ArrayType{Elem: t, Dim: dim} })
			continue
		}
		if p.peek().Is("(") {
			params, variadic, err := p.parseParams()
			if err != nil {
				return "", nil, err
			}
			suffixes = append(suffixes, func(t Type) Type {
				return &FuncType{Params: params, Variadic: variadic, Result: t}
			})
			continue
		}
		break
	}

	build := func(base Type) Type {
		t := base
		for _, quals := range pointers {
			t = &PointerType{Elem: t, Quals: quals}
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			t = suffixes[i](t)
		}
		return inner(t)
	}
	return name, build, nil
}

// startsNestedDeclarator decides whether the '(' at the current position
// groups a declarator, as in (*fp)(int), rather than opening a parameter list.
func (p *Parser) startsNestedDeclarator(abstract bool) bool {
	next := p.peekAt(1)
	if next.Is("*") {
		return true
	}
	return !abstract && next.Type == IDENT && !isKeyword(next.Lexeme)
}

func (p *Parser) parseParams() ([]*Param, bool, error) {
	if _, err := p.expect("("); err != nil {
		return nil, false, err
	}
	params := []*Param{}
	variadic := false
	if p.peek().Is(")") {
		p.advance()
		return params, false, nil
	}

	for {
		if p.peek().Is("...") {
			p.advance()
			variadic = true
			break
		}
		sp, err := p.parseSpecs(true)
		if err != nil {
			return nil, false, err
		}
		name, build, err := p.parseDeclarator(true)
		if err != nil {
			return nil, false, err
		}
		params = append(params, &Param{Name: name, Type: build(sp.base)})
		if !p.peek().Is(",") {
			break
		}
		p.advance()
	}

	if _, err := p.expect(")"); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

func (p *Parser) parseExternal() ([]Node, error) {
	if p.peek().Is(";") {
		p.advance()
		return nil, nil
	}

	start := p.peek()
	sp, err := p.parseSpecs(true)
	if err != nil {
		return nil, err
	}

	if p.peek().Is(";") {
		p.advance()
		if sp.typedef {
			return nil, p.fmtError(start, "typedef declares no name")
		}
		switch sp.base.(type) {
		case *StructType, *EnumType:
			return []Node{&Declaration{Storage: sp.storage, Type: sp.base, Pos: start.Line}}, nil
		}
		return nil, p.fmtError(start, "declaration declares nothing")
	}

	var nodes []Node
	base := sp.base
	for {
		declTok := p.peek()
		name, build, err := p.parseDeclarator(false)
		if err != nil {
			return nil, err
		}
		t := build(base)

		if _, ok := t.(*FuncType); ok && len(nodes) == 0 && !sp.typedef && p.peek().Is("{") {
			open := p.pos
			body, err := p.rawBalanced()
			if err != nil {
				return nil, err
			}
			locals, err := p.bodyStructs(p.tokens[open+1 : p.pos-1])
			if err != nil {
				return nil, err
			}
			decl := &Declaration{Name: name, Storage: sp.storage, Type: t, Pos: declTok.Line}
			return []Node{&FuncDef{Decl: decl, Body: body, Locals: locals}}, nil
		}

		if sp.typedef {
			nodes = append(nodes, &Typedef{Name: name, Type: t, Pos: declTok.Line})
		} else {
			decl := &Declaration{Name: name, Storage: sp.storage, Type: t, Pos: declTok.Line}
			if p.peek().Is("=") {
				eq := p.advance()
				init, err := p.rawUntil(",", ";")
				if err != nil {
					return nil, err
				}
				if init == "" {
					return nil, p.fmtError(eq, "missing initializer for %s", name)
				}
				decl.Init = init
			}
			nodes = append(nodes, decl)
		}
		base = refOf(base)

		if p.peek().Is(",") {
			p.advance()
			continue
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return nodes, nil
	}
}

// bodyStructs parses the struct and union definitions among the tokens of a
// function body. The body itself stays raw text.
func (p *Parser) bodyStructs(body []Token) ([]*StructType, error) {
	sub := &Parser{tokens: body, src: p.src, sourceLines: p.sourceLines}
	var locals []*StructType
	for sub.peek().Type != EOF {
		if !sub.atStructBody() {
			sub.advance()
			continue
		}
		st, err := sub.parseStruct()
		if err != nil {
			return nil, err
		}
		locals = append(locals, st)
	}
	return locals, nil
}

// atStructBody reports whether the next tokens open a struct or union
// definition: "struct {" or "struct TAG {".
func (p *Parser) atStructBody() bool {
	kw := p.peek()
	if kw.Type != IDENT || (kw.Lexeme != "struct" && kw.Lexeme != "union") {
		return false
	}
	next := p.peekAt(1)
	if next.Type == IDENT && !isKeyword(next.Lexeme) {
		next = p.peekAt(2)
	}
	return next.Type == PUNCT && next.Lexeme == "{"
}
