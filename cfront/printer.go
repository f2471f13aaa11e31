package cfront

import (
	"io"
	"strings"
)

const indentUnit = "  "

type printer struct {
	indent int
}

// Fprint writes f back out as C source, one top-level declaration per line.
func Fprint(w io.Writer, f *File) error {
	var p printer
	var b strings.Builder
	for _, n := range f.Decls {
		b.WriteString(p.node(n))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TypeString renders t as an abstract declarator, e.g. "const char *[]".
func TypeString(t Type) string {
	var p printer
	return p.decl(t, "")
}

func (p *printer) node(n Node) string {
	switch n := n.(type) {
	case *Declaration:
		return p.declaration(n) + ";\n"
	case *Typedef:
		return "typedef " + p.decl(n.Type, n.Name) + ";\n"
	case *FuncDef:
		return p.declaration(n.Decl) + "\n" + n.Body + "\n\n"
	}
	return ""
}

func (p *printer) declaration(d *Declaration) string {
	var b strings.Builder
	for _, s := range d.Storage {
		b.WriteString(s)
		b.WriteByte(' ')
	}
	b.WriteString(p.decl(d.Type, d.Name))
	if d.Init != "" {
		b.WriteString(" = ")
		b.WriteString(d.Init)
	}
	return b.String()
}

// decl renders t around the already rendered inner declarator, working from
// the outermost type constructor inwards.
func (p *printer) decl(t Type, inner string) string {
	switch t := t.(type) {
	case *PointerType:
		s := "*" + strings.Join(t.Quals, " ")
		if len(t.Quals) > 0 && inner != "" {
			s += " "
		}
		s += inner
		switch t.Elem.(type) {
		case *ArrayType, *FuncType:
			s = "(" + s + ")"
		}
		return p.decl(t.Elem, s)
	case *ArrayType:
		return p.decl(t.Elem, inner+"["+t.Dim+"]")
	case *FuncType:
		return p.decl(t.Result, inner+"("+p.params(t)+")")
	}

	spec := p.spec(t)
	if inner == "" {
		return spec
	}
	return spec + " " + inner
}

func (p *printer) params(ft *FuncType) string {
	parts := make([]string, 0, len(ft.Params)+1)
	for _, prm := range ft.Params {
		parts = append(parts, p.decl(prm.Type, prm.Name))
	}
	if ft.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func (p *printer) spec(t Type) string {
	var words []string
	switch t := t.(type) {
	case *NamedType:
		words = append(words, t.Quals...)
		words = append(words, t.Names...)
	case *StructType:
		words = append(words, t.Quals...)
		words = append(words, t.Kind)
		if t.Tag != "" {
			words = append(words, t.Tag)
		}
		s := strings.Join(words, " ")
		if t.Defined {
			s += p.fields(t.Fields)
		}
		return s
	case *EnumType:
		words = append(words, t.Quals...)
		words = append(words, "enum")
		if t.Tag != "" {
			words = append(words, t.Tag)
		}
		if t.Body != "" {
			words = append(words, t.Body)
		}
	}
	return strings.Join(words, " ")
}

func (p *printer) fields(fields []*Field) string {
	var b strings.Builder
	b.WriteString(" {\n")
	p.indent++
	for _, f := range fields {
		b.WriteString(strings.Repeat(indentUnit, p.indent))
		b.WriteString(p.decl(f.Type, f.Name))
		if f.Bits != "" {
			b.WriteString(" : ")
			b.WriteString(f.Bits)
		}
		b.WriteString(";\n")
	}
	p.indent--
	b.WriteString(strings.Repeat(indentUnit, p.indent))
	b.WriteString("}")
	return b.String()
}
