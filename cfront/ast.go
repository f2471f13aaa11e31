package cfront

// File is a parsed translation unit: the top-level declarations in source
// order. Function bodies and initializers are kept as source text.
type File struct {
	Name  string
	Decls []Node
	// Directives counts dropped preprocessor lines.
	Directives int
}

// Node is a top-level declaration: *Declaration, *FuncDef or *Typedef.
type Node interface {
	node()
	Line() int
}

// Type is a C type as written in a declaration.
//
//	const char *colnames[]
//	ArrayType{Elem: PointerType{Elem: NamedType{Names: [char], Quals: [const]}}}
type Type interface {
	typeNode()
}

// NamedType is a builtin or typedef'd type: int, unsigned long, sqlite3.
type NamedType struct {
	Names []string
	Quals []string
}

// StructType is a struct or union, either a definition (Defined) or a
// reference by tag.
type StructType struct {
	Kind    string // "struct" or "union"
	Tag     string
	Fields  []*Field
	Defined bool
	Quals   []string
	Pos     int // source line
}

// EnumType keeps its enumerator list as source text.
type EnumType struct {
	Tag   string
	Body  string // "{...}" or empty for a reference
	Quals []string
}

type PointerType struct {
	Elem  Type
	Quals []string
}

// ArrayType is Elem[Dim]; Dim is the dimension's source text, empty for [].
type ArrayType struct {
	Elem Type
	Dim  string
}

type FuncType struct {
	Params   []*Param
	Variadic bool
	Result   Type
}

func (*NamedType) typeNode()   {}
func (*StructType) typeNode()  {}
func (*EnumType) typeNode()    {}
func (*PointerType) typeNode() {}
func (*ArrayType) typeNode()   {}
func (*FuncType) typeNode()    {}

// Field is a struct member. Bits holds the width of a bitfield.
type Field struct {
	Name string
	Type Type
	Bits string
}

// Param is a formal parameter; Name is empty for abstract declarators.
type Param struct {
	Name string
	Type Type
}

// Declaration declares a variable, a function prototype, or (with no Name)
// only a struct, union or enum type.
type Declaration struct {
	Name    string
	Storage []string
	Type    Type
	Init    string
	Pos     int
}

// FuncDef is a function definition; Body is the source text from '{' to '}'.
// Locals holds the struct and union definitions found inside Body, in order.
type FuncDef struct {
	Decl   *Declaration
	Body   string
	Locals []*StructType
}

// Typedef introduces Name as an alias of Type.
type Typedef struct {
	Name string
	Type Type
	Pos  int
}

func (*Declaration) node() {}
func (*FuncDef) node()     {}
func (*Typedef) node()     {}

func (d *Declaration) Line() int { return d.Pos }
func (f *FuncDef) Line() int     { return f.Decl.Pos }
func (t *Typedef) Line() int     { return t.Pos }

// IsVoidParams reports whether params is the (void) parameter list.
func IsVoidParams(params []*Param) bool {
	if len(params) != 1 || params[0].Name != "" {
		return false
	}
	nt, ok := params[0].Type.(*NamedType)
	return ok && len(nt.Names) == 1 && nt.Names[0] == "void"
}
