package gofront

import (
	"fmt"
	"go/token"
	"go/types"
	"io"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/dave/dst/dstutil"

	"github.com/intangere/macc/core"
	"github.com/intangere/macc/helpers"
)

// Tree adapts a decorated Go file to core.Tree.
type Tree struct {
	File *dst.File
	dec  *decorator.Decorator
}

func (t *Tree) pos(n dst.Node) string {
	if t.dec == nil {
		return ""
	}
	an, ok := t.dec.Ast.Nodes[n]
	if !ok {
		return ""
	}
	return t.dec.Fset.Position(an.Pos()).String()
}

// RecordDefs lists struct type definitions anywhere in the file, including
// those declared inside function bodies. Alias specs are skipped.
func (t *Tree) RecordDefs() []core.RecordDef {
	var defs []core.RecordDef
	dst.Inspect(t.File, func(n dst.Node) bool {
		spec, ok := n.(*dst.TypeSpec)
		if !ok || spec.Assign {
			return true
		}
		st, ok := spec.Type.(*dst.StructType)
		if !ok {
			return true
		}

		def := core.RecordDef{Name: spec.Name.Name, Pos: t.pos(spec)}
		for _, field := range st.Fields.List {
			if len(field.Names) == 0 {
				def.Fields = append(def.Fields, fieldDef("", field.Type))
				continue
			}
			for _, name := range field.Names {
				def.Fields = append(def.Fields, fieldDef(name.Name, field.Type))
			}
		}
		defs = append(defs, def)
		return true
	})
	return defs
}

func fieldDef(name string, typ dst.Expr) core.FieldDef {
	fd := core.FieldDef{Name: name, Shape: core.ShapeOther, Desc: exprString(typ)}
	switch x := typ.(type) {
	case *dst.Ident, *dst.SelectorExpr:
		fd.Shape = core.ShapePlain
		fd.BaseType = exprString(x)
	case *dst.ArrayType:
		lit, ok := x.Len.(*dst.BasicLit)
		if !ok || lit.Kind != token.INT {
			break
		}
		switch x.Elt.(type) {
		case *dst.Ident, *dst.SelectorExpr:
			fd.Shape = core.ShapeArray
			fd.BaseType = exprString(x.Elt)
			fd.Dim = lit.Value
		}
	}
	return fd
}

// exprString renders the type expressions that show up in struct fields and
// parameter lists.
func exprString(e dst.Expr) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *dst.Ident:
		if x.Path != "" {
			return x.Path + "." + x.Name
		}
		return x.Name
	case *dst.SelectorExpr:
		return exprString(x.X) + "." + x.Sel.Name
	case *dst.StarExpr:
		return "*" + exprString(x.X)
	case *dst.ArrayType:
		return "[" + exprString(x.Len) + "]" + exprString(x.Elt)
	case *dst.Ellipsis:
		return "..." + exprString(x.Elt)
	case *dst.BasicLit:
		return x.Value
	case *dst.MapType:
		return "map[" + exprString(x.Key) + "]" + exprString(x.Value)
	case *dst.ChanType:
		return "chan " + exprString(x.Value)
	case *dst.IndexExpr:
		return exprString(x.X) + "[" + exprString(x.Index) + "]"
	case *dst.FuncType:
		return "func(...)"
	case *dst.StructType:
		return "struct{...}"
	case *dst.InterfaceType:
		return "interface{...}"
	}
	return fmt.Sprintf("%T", e)
}

// Decls lists the top-level functions. Methods are never macro sites.
func (t *Tree) Decls() []core.Decl {
	var decls []core.Decl
	for _, d := range t.File.Decls {
		fn, ok := d.(*dst.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		decls = append(decls, &decl{fn: fn})
	}
	return decls
}

// StripAliases removes top-level "type A = B" specs and any type
// declaration left without specs.
func (t *Tree) StripAliases() int {
	removed := 0
	dstutil.Apply(t.File, func(c *dstutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *dst.File:
			return true
		case *dst.GenDecl:
			return n.Tok == token.TYPE
		case *dst.TypeSpec:
			if n.Assign {
				c.Delete()
				removed++
			}
		}
		return false
	}, func(c *dstutil.Cursor) bool {
		if gd, ok := c.Node().(*dst.GenDecl); ok && gd.Tok == token.TYPE && len(gd.Specs) == 0 {
			c.Delete()
		}
		return true
	})
	return removed
}

func (t *Tree) Print(w io.Writer) error {
	return decorator.NewRestorer().Fprint(w, t.File)
}

func (t *Tree) Dump(w io.Writer) error {
	return dst.Fprint(w, t.File, dst.NotNilFilter)
}

type decl struct {
	fn *dst.FuncDecl
}

func (d *decl) Name() string {
	return d.fn.Name.Name
}

func (d *decl) Params() ([]core.ParamInfo, error) {
	if d.fn.Type == nil || d.fn.Type.Params == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFunction, d.Name())
	}
	params := []core.ParamInfo{}
	for _, field := range d.fn.Type.Params.List {
		typeName := recordName(field.Type)
		if len(field.Names) == 0 {
			params = append(params, core.ParamInfo{TypeName: typeName})
			continue
		}
		for _, name := range field.Names {
			params = append(params, core.ParamInfo{Name: name.Name, TypeName: typeName})
		}
	}
	return params, nil
}

// recordName returns the local type a parameter refers to, pointers peeled.
// Predeclared and package-qualified types name no local record.
func recordName(e dst.Expr) string {
	for {
		star, ok := e.(*dst.StarExpr)
		if !ok {
			break
		}
		e = star.X
	}
	id, ok := e.(*dst.Ident)
	if !ok || id.Path != "" {
		return ""
	}
	if _, builtin := types.Universe.Lookup(id.Name).(*types.TypeName); builtin {
		return ""
	}
	return id.Name
}

func (d *decl) Replace(sig *core.Signature) error {
	params := []*dst.Field{}
	for _, p := range sig.Params {
		typ, err := typeExpr(p.Type)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params = append(params, helpers.Field(p.Name, typ))
	}

	var results []*dst.Field
	if !sig.Result.IsVoid() {
		typ, err := typeExpr(sig.Result)
		if err != nil {
			return fmt.Errorf("result: %w", err)
		}
		results = append(results, helpers.UnnamedField(typ))
	}

	ft := helpers.FuncType(params, results)
	if d.fn.Type != nil {
		ft.Decs = d.fn.Type.Decs
	}
	d.fn.Type = ft
	return nil
}

// typeExpr materializes a TypeRef. Scalar names are parsed as Go type
// expressions, so "[]byte" or "sql.Rows" work as well as "int". Go has no
// const types; the qualifier is dropped.
func typeExpr(r core.TypeRef) (dst.Expr, error) {
	if r.IsRecord() {
		return helpers.Star(helpers.Ident(r.Record), r.Pointers), nil
	}
	typ, err := helpers.TypeExpr(r.Name)
	if err != nil {
		return nil, err
	}
	return helpers.Star(typ, r.Pointers), nil
}
