package core

import (
	"strings"
)

// TypeRef is a dialect-neutral reference to a type. It names either a scalar
// type in the dialect's own spelling (Name) or a record (Record).
type TypeRef struct {
	Name     string
	Record   string
	Pointers int
	Const    bool
}

var Void = TypeRef{Name: "void"}

func Named(name string) TypeRef {
	return TypeRef{Name: name}
}

func RecordType(name string) TypeRef {
	return TypeRef{Record: name}
}

// FieldType is the type a field's value is passed around as: arrays decay to a
// pointer to their element type.
func FieldType(f FieldMeta) TypeRef {
	t := Named(f.BaseType)
	if f.Array {
		t.Pointers++
	}
	return t
}

func (t TypeRef) Ptr() TypeRef {
	t.Pointers++
	return t
}

func (t TypeRef) AsConst() TypeRef {
	t.Const = true
	return t
}

func (t TypeRef) IsRecord() bool {
	return t.Record != ""
}

func (t TypeRef) IsVoid() bool {
	return !t.IsRecord() && t.Pointers == 0 && (t.Name == "void" || t.Name == "")
}

func (t TypeRef) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	if t.IsRecord() {
		b.WriteString("record ")
		b.WriteString(t.Record)
	} else {
		b.WriteString(t.Name)
	}
	b.WriteString(strings.Repeat("*", t.Pointers))
	return b.String()
}

type Param struct {
	Name string
	Type TypeRef
}

// Signature is the replacement type a generator synthesizes for a macro site.
type Signature struct {
	Result TypeRef
	Params []Param
}

func (s *Signature) String() string {
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, p.Type.String()+" "+p.Name)
	}
	return "func(" + strings.Join(params, ", ") + ") " + s.Result.String()
}
