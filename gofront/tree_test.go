package gofront_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intangere/macc/core"
	"github.com/intangere/macc/gofront"
)

func parseTree(t *testing.T, src string) core.Tree {
	t.Helper()
	tree, err := gofront.Frontend{}.Parse("unit.go", []byte(src))
	require.NoError(t, err)
	return tree
}

func printTree(t *testing.T, tree core.Tree) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, tree.Print(&out))
	return out.String()
}

func TestRecordDefs(t *testing.T) {
	tree := parseTree(t, `package report

type Buf struct {
	data [16]byte
	len  int
}

type Row struct {
	x, y    int
	rows    sql.Rows
	next    *Row
	matrix  [2][2]int
	sized   [N]byte
	Buf
}

type Alias = Buf

func local() {
	type inner struct{ v int }
}
`)

	defs := tree.RecordDefs()
	require.Len(t, defs, 3)

	assert.Equal(t, "Buf", defs[0].Name)
	assert.Equal(t, "unit.go:3:6", defs[0].Pos)
	assert.Equal(t, []core.FieldDef{
		{Name: "data", Shape: core.ShapeArray, BaseType: "byte", Dim: "16", Desc: "[16]byte"},
		{Name: "len", Shape: core.ShapePlain, BaseType: "int", Desc: "int"},
	}, defs[0].Fields)

	assert.Equal(t, []core.FieldDef{
		{Name: "x", Shape: core.ShapePlain, BaseType: "int", Desc: "int"},
		{Name: "y", Shape: core.ShapePlain, BaseType: "int", Desc: "int"},
		{Name: "rows", Shape: core.ShapePlain, BaseType: "sql.Rows", Desc: "sql.Rows"},
		{Name: "next", Shape: core.ShapeOther, Desc: "*Row"},
		{Name: "matrix", Shape: core.ShapeOther, Desc: "[2][2]int"},
		{Name: "sized", Shape: core.ShapeOther, Desc: "[N]byte"},
		{Name: "", Shape: core.ShapePlain, BaseType: "Buf", Desc: "Buf"},
	}, defs[1].Fields)

	assert.Equal(t, "inner", defs[2].Name)
}

func TestParams(t *testing.T) {
	tree := parseTree(t, `package p

func getField(idx int, p Point) int
func byPtr(idx int, p *Point)
func builtin(idx int, s string)
func qualified(idx int, r *sql.Rows)
func (p Point) method(idx int, q Point)
`)

	decls := tree.Decls()
	require.Len(t, decls, 4)

	want := [][]core.ParamInfo{
		{{Name: "idx"}, {Name: "p", TypeName: "Point"}},
		{{Name: "idx"}, {Name: "p", TypeName: "Point"}},
		{{Name: "idx"}, {Name: "s"}},
		{{Name: "idx"}, {Name: "r"}},
	}
	for i, d := range decls {
		params, err := d.Params()
		require.NoError(t, err)
		assert.Equal(t, want[i], params, d.Name())
	}
}

func TestReplace(t *testing.T) {
	tree := parseTree(t, `package p

// getData returns the buffer contents.
func getData(idx int, b Buf) int
`)

	decls := tree.Decls()
	require.Len(t, decls, 1)
	require.NoError(t, decls[0].Replace(&core.Signature{
		Result: core.Named("byte").Ptr(),
		Params: []core.Param{
			{Name: "idx", Type: core.Named("int")},
			{Name: "b", Type: core.RecordType("Buf").Ptr()},
			{Name: "rows", Type: core.Named("sql.Rows").Ptr()},
		},
	}))

	assert.Equal(t, `package p

// getData returns the buffer contents.
func getData(idx int, b *Buf, rows *sql.Rows) *byte
`, printTree(t, tree))
}

func TestReplaceVoidAndBadType(t *testing.T) {
	tree := parseTree(t, "package p\n\nfunc set(v int, b Buf) int\n")
	d := tree.Decls()[0]

	require.NoError(t, d.Replace(&core.Signature{
		Result: core.Void,
		Params: []core.Param{{Name: "v", Type: core.Named("int")}, {Name: "b", Type: core.RecordType("Buf").Ptr()}},
	}))
	assert.Equal(t, "package p\n\nfunc set(v int, b *Buf)\n", printTree(t, tree))

	err := d.Replace(&core.Signature{Result: core.Named("unsigned int")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `type "unsigned int"`)
}

func TestStripAliases(t *testing.T) {
	tree := parseTree(t, `package p

type A = int

type (
	B = string
	C struct{ v int }
)

func f() {
	type D = int
	_ = D(0)
}
`)

	assert.Equal(t, 2, tree.StripAliases())
	out := printTree(t, tree)
	assert.NotContains(t, out, "type A")
	assert.NotContains(t, out, "B = string")
	assert.Contains(t, out, "C struct{ v int }")
	assert.Contains(t, out, "type D = int")
	assert.Equal(t, 0, tree.StripAliases())
}

func TestDump(t *testing.T) {
	tree := parseTree(t, "package p\n\nfunc f(a int, b Buf) int\n")

	var out bytes.Buffer
	require.NoError(t, tree.Dump(&out))
	assert.Contains(t, out.String(), "*dst.FuncDecl")
	assert.Contains(t, out.String(), `Name: "f"`)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"comment only", "// just a comment\n"},
		{"no package clause", "func f() {}\n"},
		{"truncated", "func f("},
		{"unclosed params", "package x\nfunc f("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := gofront.Frontend{}.Parse("bad.go", []byte(tt.src))
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.Contains(t, err.Error(), "bad.go")
		})
	}
}
