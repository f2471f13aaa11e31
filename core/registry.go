package core

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Generator synthesizes the replacement signature of a macro site from the
// record named by the site's second parameter and the site's own parameter
// names, in declaration order.
type Generator interface {
	Generate(rec RecordMeta, params ...string) (*Signature, error)
}

type GeneratorFunc func(rec RecordMeta, params ...string) (*Signature, error)

func (f GeneratorFunc) Generate(rec RecordMeta, params ...string) (*Signature, error) {
	return f(rec, params...)
}

// Registry maps macro names to generators. It is immutable once built.
type Registry struct {
	macros map[string]Generator
}

func NewRegistry(macros map[string]Generator) (*Registry, error) {
	r := &Registry{macros: make(map[string]Generator, len(macros))}
	for name, gen := range macros {
		if name == "" {
			return nil, fmt.Errorf("macro with empty name")
		}
		if gen == nil {
			return nil, fmt.Errorf("macro %s has no generator", name)
		}
		r.macros[name] = gen
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (Generator, bool) {
	if r == nil {
		return nil, false
	}
	gen, ok := r.macros[name]
	return gen, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := maps.Keys(r.macros)
	slices.Sort(names)
	return names
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.macros)
}
