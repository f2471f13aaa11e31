package macros

import (
	"fmt"

	"github.com/intangere/macc/core"
)

func init() {
	register(Kind{
		Name: "getter",
		Doc:  "returns the value of one field; arrays decay to a pointer to their element",
		Options: []Option{
			{Name: "field", Doc: "field to read", Required: true},
			{Name: "lead", Doc: "type of every parameter except the record", Default: "int"},
			{Name: "by", Doc: "how the record is passed", Default: "value", Values: []string{"value", "pointer"}},
		},
		build: func(opts map[string]string) core.Generator {
			return &getter{field: opts["field"], lead: opts["lead"], byPointer: opts["by"] == "pointer"}
		},
	})
	register(Kind{
		Name: "setter",
		Doc:  "stores the first parameter into one field of the record",
		Options: []Option{
			{Name: "field", Doc: "field to write", Required: true},
			{Name: "lead", Doc: "type of parameters after the record", Default: "int"},
		},
		build: func(opts map[string]string) core.Generator {
			return &setter{field: opts["field"], lead: opts["lead"]}
		},
	})
	register(Kind{
		Name: "copier",
		Doc:  "fills the record from a source handle, e.g. a prepared statement",
		Options: []Option{
			{Name: "source", Doc: "type the first parameter points to", Required: true},
			{Name: "lead", Doc: "type of parameters after the record", Default: "int"},
		},
		build: func(opts map[string]string) core.Generator {
			return &copier{source: opts["source"], lead: opts["lead"]}
		},
	})
	register(Kind{
		Name: "counter",
		Doc:  "returns a number computed from the record's layout",
		Options: []Option{
			{Name: "result", Doc: "result type", Default: "int"},
			{Name: "lead", Doc: "type of every parameter except the record", Default: "int"},
		},
		build: func(opts map[string]string) core.Generator {
			return &counter{result: opts["result"], lead: opts["lead"]}
		},
	})
}

// signature assigns types positionally: the record parameter (index 1) gets
// rec, index 0 gets first when set, and the rest get lead.
func signature(result core.TypeRef, params []string, first *core.TypeRef, rec, lead core.TypeRef) *core.Signature {
	sig := &core.Signature{Result: result, Params: make([]core.Param, 0, len(params))}
	for i, name := range params {
		t := lead
		switch {
		case i == 0 && first != nil:
			t = *first
		case i == 1:
			t = rec
		}
		sig.Params = append(sig.Params, core.Param{Name: name, Type: t})
	}
	return sig
}

func lookupField(rec core.RecordMeta, name string) (core.FieldMeta, error) {
	f, ok := rec.Field(name)
	if !ok {
		return core.FieldMeta{}, fmt.Errorf("record %s has no field %s", rec.Name, name)
	}
	return f, nil
}

type getter struct {
	field     string
	lead      string
	byPointer bool
}

func (g *getter) Generate(rec core.RecordMeta, params ...string) (*core.Signature, error) {
	f, err := lookupField(rec, g.field)
	if err != nil {
		return nil, err
	}
	target := core.RecordType(rec.Name)
	if g.byPointer {
		target = target.Ptr()
	}
	return signature(core.FieldType(f), params, nil, target, core.Named(g.lead)), nil
}

type setter struct {
	field string
	lead  string
}

func (s *setter) Generate(rec core.RecordMeta, params ...string) (*core.Signature, error) {
	f, err := lookupField(rec, s.field)
	if err != nil {
		return nil, err
	}
	value := core.Named(f.BaseType)
	if f.Array {
		value = value.Ptr().AsConst()
	}
	return signature(core.Void, params, &value, core.RecordType(rec.Name).Ptr(), core.Named(s.lead)), nil
}

type copier struct {
	source string
	lead   string
}

func (c *copier) Generate(rec core.RecordMeta, params ...string) (*core.Signature, error) {
	src := core.Named(c.source).Ptr()
	return signature(core.Void, params, &src, core.RecordType(rec.Name).Ptr(), core.Named(c.lead)), nil
}

type counter struct {
	result string
	lead   string
}

func (c *counter) Generate(rec core.RecordMeta, params ...string) (*core.Signature, error) {
	return signature(core.Named(c.result), params, nil, core.RecordType(rec.Name), core.Named(c.lead)), nil
}
