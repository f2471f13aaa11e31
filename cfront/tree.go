package cfront

import (
	"fmt"
	"io"
	"strings"

	"github.com/intangere/macc/core"
)

// Tree adapts a parsed File to core.Tree.
type Tree struct {
	File *File
	// typedefs maps typedef names to the struct tag they stand for.
	typedefs map[string]string
}

func NewTree(f *File) *Tree {
	t := &Tree{File: f, typedefs: map[string]string{}}
	aliases := map[string]string{}
	for _, n := range f.Decls {
		td, ok := n.(*Typedef)
		if !ok {
			continue
		}
		switch base := peel(td.Type).(type) {
		case *StructType:
			if base.Kind == "struct" && base.Tag != "" {
				t.typedefs[td.Name] = base.Tag
			}
		case *NamedType:
			if len(base.Names) == 1 && !builtinTypes[base.Names[0]] {
				aliases[td.Name] = base.Names[0]
			}
		}
	}
	// typedef chains: typedef struct P P_t; typedef P_t Q;
	for name, target := range aliases {
		seen := map[string]bool{name: true}
		for !seen[target] {
			if tag, ok := t.typedefs[target]; ok {
				t.typedefs[name] = tag
				break
			}
			seen[target] = true
			next, ok := aliases[target]
			if !ok {
				break
			}
			target = next
		}
	}
	return t
}

func peel(t Type) Type {
	for {
		pt, ok := t.(*PointerType)
		if !ok {
			return t
		}
		t = pt.Elem
	}
}

func (t *Tree) RecordDefs() []core.RecordDef {
	var defs []core.RecordDef
	seen := map[*StructType]bool{}

	var visit func(Type)
	visit = func(ty Type) {
		switch ty := ty.(type) {
		case *StructType:
			if !ty.Defined || seen[ty] {
				return
			}
			seen[ty] = true
			if ty.Kind == "struct" {
				defs = append(defs, t.recordDef(ty))
			}
			for _, f := range ty.Fields {
				visit(f.Type)
			}
		case *PointerType:
			visit(ty.Elem)
		case *ArrayType:
			visit(ty.Elem)
		case *FuncType:
			for _, p := range ty.Params {
				visit(p.Type)
			}
			visit(ty.Result)
		}
	}

	for _, n := range t.File.Decls {
		switch n := n.(type) {
		case *Declaration:
			visit(n.Type)
		case *FuncDef:
			visit(n.Decl.Type)
			for _, st := range n.Locals {
				visit(st)
			}
		case *Typedef:
			visit(n.Type)
		}
	}
	return defs
}

func (t *Tree) recordDef(st *StructType) core.RecordDef {
	def := core.RecordDef{
		Name:   st.Tag,
		Pos:    fmt.Sprintf("%s:%d", t.File.Name, st.Pos),
		Fields: make([]core.FieldDef, 0, len(st.Fields)),
	}
	for _, f := range st.Fields {
		def.Fields = append(def.Fields, fieldDef(f))
	}
	return def
}

func fieldDef(f *Field) core.FieldDef {
	fd := core.FieldDef{Name: f.Name, Shape: core.ShapeOther, Desc: TypeString(f.Type)}
	if f.Bits != "" {
		fd.Desc += " : " + f.Bits
		return fd
	}
	switch ft := f.Type.(type) {
	case *NamedType:
		fd.Shape = core.ShapePlain
		fd.BaseType = strings.Join(ft.Names, " ")
	case *ArrayType:
		if nt, ok := ft.Elem.(*NamedType); ok {
			fd.Shape = core.ShapeArray
			fd.BaseType = strings.Join(nt.Names, " ")
			fd.Dim = ft.Dim
		}
	}
	return fd
}

// Decls lists named declarations and function definitions. Typedefs are
// not macro sites.
func (t *Tree) Decls() []core.Decl {
	var decls []core.Decl
	for _, n := range t.File.Decls {
		switch n := n.(type) {
		case *Declaration:
			if n.Name != "" {
				decls = append(decls, &decl{tree: t, d: n})
			}
		case *FuncDef:
			decls = append(decls, &decl{tree: t, d: n.Decl})
		}
	}
	return decls
}

func (t *Tree) StripAliases() int {
	kept := t.File.Decls[:0]
	removed := 0
	for _, n := range t.File.Decls {
		if _, ok := n.(*Typedef); ok {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	t.File.Decls = kept
	return removed
}

func (t *Tree) Print(w io.Writer) error {
	return Fprint(w, t.File)
}

func (t *Tree) Dump(w io.Writer) error {
	return Dump(w, t.File)
}

// recordName returns the struct tag a parameter type refers to, or "" when
// it refers to none.
func (t *Tree) recordName(ty Type) string {
	switch base := peel(ty).(type) {
	case *StructType:
		return base.Tag
	case *NamedType:
		if len(base.Names) != 1 || builtinTypes[base.Names[0]] {
			return ""
		}
		if tag, ok := t.typedefs[base.Names[0]]; ok {
			return tag
		}
		return base.Names[0]
	}
	return ""
}

type decl struct {
	tree *Tree
	d    *Declaration
}

func (d *decl) Name() string {
	return d.d.Name
}

func (d *decl) Params() ([]core.ParamInfo, error) {
	ft, ok := d.d.Type.(*FuncType)
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %s", core.ErrNotFunction, d.d.Name, TypeString(d.d.Type))
	}
	if IsVoidParams(ft.Params) {
		return []core.ParamInfo{}, nil
	}
	params := make([]core.ParamInfo, 0, len(ft.Params))
	for _, p := range ft.Params {
		params = append(params, core.ParamInfo{Name: p.Name, TypeName: d.tree.recordName(p.Type)})
	}
	return params, nil
}

func (d *decl) Replace(sig *core.Signature) error {
	ft := &FuncType{Params: make([]*Param, 0, len(sig.Params)), Result: typeOf(sig.Result)}
	for _, p := range sig.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter %d of %s has no name", len(ft.Params), d.d.Name)
		}
		ft.Params = append(ft.Params, &Param{Name: p.Name, Type: typeOf(p.Type)})
	}
	if len(ft.Params) == 0 {
		ft.Params = []*Param{{Type: &NamedType{Names: []string{"void"}}}}
	}
	d.d.Type = ft
	return nil
}

// typeOf materializes a TypeRef. Records are referenced by struct tag; a
// scalar name may itself spell a tagged type, e.g. "struct sqlite3_stmt".
func typeOf(r core.TypeRef) Type {
	var quals []string
	if r.Const {
		quals = []string{"const"}
	}

	var t Type
	words := strings.Fields(r.Name)
	switch {
	case r.IsRecord():
		t = &StructType{Kind: "struct", Tag: r.Record, Quals: quals}
	case len(words) == 2 && (words[0] == "struct" || words[0] == "union"):
		t = &StructType{Kind: words[0], Tag: words[1], Quals: quals}
	case len(words) == 2 && words[0] == "enum":
		t = &EnumType{Tag: words[1], Quals: quals}
	case len(words) == 0:
		t = &NamedType{Names: []string{"void"}, Quals: quals}
	default:
		t = &NamedType{Names: words, Quals: quals}
	}

	for i := 0; i < r.Pointers; i++ {
		t = &PointerType{Elem: t}
	}
	return t
}
