package core

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Shape classifies a record field's declared type.
type Shape int

const (
	ShapePlain Shape = iota // plain T
	ShapeArray              // T name[Dim]
	ShapeOther              // pointers, nested records, bitfields, ...
)

func (s Shape) String() string {
	switch s {
	case ShapePlain:
		return "plain"
	case ShapeArray:
		return "array"
	default:
		return "other"
	}
}

// FieldDef is a field as a frontend sees it, before the extractor applies its
// shape rules.
type FieldDef struct {
	Name     string
	Shape    Shape
	BaseType string
	// Dim is the source text of the array dimension for ShapeArray.
	Dim string
	// Desc is a human readable rendering of the field's type, used in errors.
	Desc string
}

// RecordDef is a record definition (a record with a field list) found in a tree.
type RecordDef struct {
	Name   string
	Pos    string
	Fields []FieldDef
}

// FieldPolicy decides what happens to fields of unsupported shape.
type FieldPolicy int

const (
	FailFast FieldPolicy = iota
	SkipField
)

// ExtractRecords builds the record metadata of one unit from the record
// definitions of its tree. Later definitions replace earlier ones with the
// same name.
func ExtractRecords(defs []RecordDef, policy FieldPolicy, logger *slog.Logger) (Records, error) {
	if logger == nil {
		logger = slog.Default()
	}

	records := Records{}
	for _, def := range defs {
		if def.Name == "" {
			continue
		}

		rec := RecordMeta{Name: def.Name, Fields: make([]FieldMeta, 0, len(def.Fields))}
		for _, fd := range def.Fields {
			field, err := fieldMeta(fd)
			if err != nil {
				if policy == SkipField {
					logger.Warn("skipping field", "record", def.Name, "field", fd.Name, "error", err)
					continue
				}
				return nil, &Error{Decl: def.Name, Kind: ErrUnsupportedFieldShape, Err: err}
			}
			rec.Fields = append(rec.Fields, field)
		}

		if records.Add(rec) {
			logger.Debug("record redefined, keeping last definition", "record", def.Name, "pos", def.Pos)
		}
	}
	return records, nil
}

func fieldMeta(fd FieldDef) (FieldMeta, error) {
	if fd.Name == "" {
		return FieldMeta{}, fmt.Errorf("anonymous member of type %s", fd.Desc)
	}

	switch fd.Shape {
	case ShapePlain:
		return Scalar(fd.Name, fd.BaseType), nil
	case ShapeArray:
		n, err := ParseLength(fd.Dim)
		if err != nil {
			return FieldMeta{}, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		return ArrayOf(fd.Name, fd.BaseType, n), nil
	default:
		return FieldMeta{}, fmt.Errorf("field %s has type %s", fd.Name, fd.Desc)
	}
}

// ParseLength reads an array dimension that must be an integer literal.
// C integer suffixes (u, l, ll in any case) and Go digit separators are accepted.
func ParseLength(dim string) (int, error) {
	lit := strings.TrimSpace(dim)
	if lit == "" {
		return 0, fmt.Errorf("array has no length")
	}
	lit = strings.TrimRight(lit, "uUlL")
	n, err := strconv.ParseInt(lit, 0, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("array length %q is not a non-negative integer literal", dim)
	}
	return int(n), nil
}
