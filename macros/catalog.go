// Package macros holds the built-in generator kinds a macro name can be bound
// to. A kind plus its options yields a core.Generator.
package macros

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/intangere/macc/core"
)

var (
	ErrUnknownKind = errors.New("unknown generator kind")
	ErrBadOption   = errors.New("bad generator option")
)

type Option struct {
	Name     string   `yaml:"name"`
	Doc      string   `yaml:"doc"`
	Default  string   `yaml:"default,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Values   []string `yaml:"values,omitempty"`
}

type Kind struct {
	Name    string   `yaml:"kind"`
	Doc     string   `yaml:"doc"`
	Options []Option `yaml:"options"`

	build func(opts map[string]string) core.Generator
}

var catalog = map[string]Kind{}

func register(k Kind) {
	catalog[k.Name] = k
}

func kindNames() []string {
	names := maps.Keys(catalog)
	slices.Sort(names)
	return names
}

// Kinds lists the catalog sorted by name.
func Kinds() []Kind {
	names := kindNames()
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		kinds = append(kinds, catalog[name])
	}
	return kinds
}

// Lookup returns the catalog entry for kind.
func Lookup(kind string) (Kind, bool) {
	k, ok := catalog[kind]
	return k, ok
}

// New builds a generator of the given kind. Options the kind does not know,
// missing required options and values outside an option's allowed set are
// errors.
func New(kind string, opts map[string]string) (core.Generator, error) {
	k, ok := Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownKind, kind, strings.Join(kindNames(), ", "))
	}
	resolved, err := k.resolve(opts)
	if err != nil {
		return nil, err
	}
	return k.build(resolved), nil
}

func (k Kind) option(name string) (Option, bool) {
	for _, o := range k.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

func (k Kind) resolve(opts map[string]string) (map[string]string, error) {
	keys := maps.Keys(opts)
	slices.Sort(keys)
	for _, key := range keys {
		o, ok := k.option(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no option %q", ErrBadOption, k.Name, key)
		}
		if len(o.Values) > 0 && !slices.Contains(o.Values, opts[key]) {
			return nil, fmt.Errorf("%w: %s option %s must be one of %s, got %q",
				ErrBadOption, k.Name, key, strings.Join(o.Values, "|"), opts[key])
		}
	}

	resolved := make(map[string]string, len(k.Options))
	for _, o := range k.Options {
		v, ok := opts[o.Name]
		switch {
		case ok && strings.TrimSpace(v) != "":
			resolved[o.Name] = strings.TrimSpace(v)
		case o.Required:
			return nil, fmt.Errorf("%w: %s requires option %s", ErrBadOption, k.Name, o.Name)
		default:
			resolved[o.Name] = o.Default
		}
	}
	return resolved, nil
}
