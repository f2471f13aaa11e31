package core

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FieldMeta describes one declared field of a record type.
type FieldMeta struct {
	Name     string
	BaseType string
	// Array marks a fixed-size array field; Length is then its element count.
	Array  bool
	Length int
}

func Scalar(name, baseType string) FieldMeta {
	return FieldMeta{Name: name, BaseType: baseType}
}

func ArrayOf(name, baseType string, length int) FieldMeta {
	return FieldMeta{Name: name, BaseType: baseType, Array: true, Length: length}
}

// RecordMeta is a snapshot of a record definition. Fields keep declaration order.
type RecordMeta struct {
	Name   string
	Fields []FieldMeta
}

func (r RecordMeta) Field(name string) (FieldMeta, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// Records maps record names to their metadata for a single translation unit.
type Records map[string]RecordMeta

// Add stores rec, replacing any earlier record with the same name.
// It reports whether an earlier definition was replaced.
func (rs Records) Add(rec RecordMeta) bool {
	_, replaced := rs[rec.Name]
	rs[rec.Name] = rec
	return replaced
}

func (rs Records) Names() []string {
	names := maps.Keys(rs)
	slices.Sort(names)
	return names
}
