package cfront

import (
	"fmt"
	"io"
	"strings"
)

type dumper struct {
	b     strings.Builder
	depth int
}

func (d *dumper) line(format string, args ...any) {
	d.b.WriteString(strings.Repeat(indentUnit, d.depth))
	fmt.Fprintf(&d.b, format, args...)
	d.b.WriteByte('\n')
}

// Dump writes an indented outline of f, one node per line.
func Dump(w io.Writer, f *File) error {
	d := &dumper{}
	d.line("File: %s (directives dropped: %d)", f.Name, f.Directives)
	d.depth++
	for _, n := range f.Decls {
		d.node(n)
	}
	_, err := io.WriteString(w, d.b.String())
	return err
}

func (d *dumper) node(n Node) {
	switch n := n.(type) {
	case *Declaration:
		d.line("Decl: %s storage=%v line=%d", n.Name, n.Storage, n.Pos)
		d.nested(func() {
			d.typ(n.Type)
			if n.Init != "" {
				d.line("Init: %s", n.Init)
			}
		})
	case *Typedef:
		d.line("Typedef: %s line=%d", n.Name, n.Pos)
		d.nested(func() { d.typ(n.Type) })
	case *FuncDef:
		d.line("FuncDef: %s storage=%v line=%d", n.Decl.Name, n.Decl.Storage, n.Decl.Pos)
		d.nested(func() {
			d.typ(n.Decl.Type)
			d.line("Body: %d bytes", len(n.Body))
			for _, st := range n.Locals {
				d.typ(st)
			}
		})
	}
}

func (d *dumper) nested(fn func()) {
	d.depth++
	fn()
	d.depth--
}

func (d *dumper) typ(t Type) {
	switch t := t.(type) {
	case *NamedType:
		d.line("NamedType: %s quals=%v", strings.Join(t.Names, " "), t.Quals)
	case *StructType:
		kind := "Struct"
		if t.Kind == "union" {
			kind = "Union"
		}
		d.line("%s: %s defined=%t quals=%v", kind, t.Tag, t.Defined, t.Quals)
		d.nested(func() {
			for _, f := range t.Fields {
				if f.Bits != "" {
					d.line("Field: %s bits=%s", f.Name, f.Bits)
				} else {
					d.line("Field: %s", f.Name)
				}
				d.nested(func() { d.typ(f.Type) })
			}
		})
	case *EnumType:
		d.line("Enum: %s %s", t.Tag, t.Body)
	case *PointerType:
		d.line("PointerType: quals=%v", t.Quals)
		d.nested(func() { d.typ(t.Elem) })
	case *ArrayType:
		d.line("ArrayType: dim=%s", t.Dim)
		d.nested(func() { d.typ(t.Elem) })
	case *FuncType:
		d.line("FuncType: variadic=%t", t.Variadic)
		d.nested(func() {
			for _, p := range t.Params {
				d.line("Param: %s", p.Name)
				d.nested(func() { d.typ(p.Type) })
			}
			d.line("Result:")
			d.nested(func() { d.typ(t.Result) })
		})
	}
}
