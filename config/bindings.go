// Package config turns macro binding files and inline bindings into a
// core.Registry. A binding names a macro and the generator kind (with
// options) it stands for.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/ini.v1"
	yaml "gopkg.in/yaml.v3"

	"github.com/intangere/macc/core"
	"github.com/intangere/macc/helpers"
	"github.com/intangere/macc/macros"
)

// kindKey is the key holding a binding's generator kind in binding files.
const kindKey = "kind"

type Binding struct {
	Name    string
	Kind    string
	Options map[string]string
	// Source is where the binding came from, for error messages.
	Source string
}

// LoadBindings reads a binding file. The format follows the extension:
// .ini, .yaml/.yml or .toml. Every section (table, mapping) is one macro:
//
//	[copy_row]
//	kind   = copier
//	source = struct sqlite3_stmt
func LoadBindings(path string) ([]Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini":
		raw, err = decodeINI(data)
	case ".yaml", ".yml":
		raw, err = decodeYAML(data)
	case ".toml":
		raw, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%s: unsupported binding file format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	names := maps.Keys(raw)
	slices.Sort(names)
	bindings := make([]Binding, 0, len(names))
	for _, name := range names {
		b, err := newBinding(name, raw[name], path)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func newBinding(name string, values map[string]string, source string) (Binding, error) {
	kind := strings.TrimSpace(values[kindKey])
	if kind == "" {
		return Binding{}, fmt.Errorf("%s: macro %s has no %s", source, name, kindKey)
	}
	opts := make(map[string]string, len(values))
	for k, v := range values {
		if k != kindKey {
			opts[k] = v
		}
	}
	return Binding{Name: name, Kind: kind, Options: opts, Source: source}, nil
}

func decodeINI(data []byte) (map[string]map[string]string, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, err
	}
	raw := map[string]map[string]string{}
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			if len(section.Keys()) > 0 {
				return nil, fmt.Errorf("keys outside a [macro] section")
			}
			continue
		}
		raw[section.Name()] = section.KeysHash()
	}
	return raw, nil
}

func decodeYAML(data []byte) (map[string]map[string]string, error) {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw := map[string]map[string]string{}
	for name, values := range doc {
		raw[name] = stringify(values)
	}
	return raw, nil
}

func decodeTOML(data []byte) (map[string]map[string]string, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	raw := map[string]map[string]string{}
	for name, v := range tree.ToMap() {
		values, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is not a table", name)
		}
		raw[name] = stringify(values)
	}
	return raw, nil
}

func stringify(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// ParseInline parses "name=[:kind, :key=value, ...]".
func ParseInline(spec string) (Binding, error) {
	name, annotation, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Binding{}, fmt.Errorf("inline binding %q: want name=[:kind, :key=value]", spec)
	}
	a, err := helpers.ParseAnnotation(annotation)
	if err != nil {
		return Binding{}, fmt.Errorf("inline binding %s: %w", name, err)
	}
	kind := a.Tag()
	if kind == "" {
		return Binding{}, fmt.Errorf("inline binding %s: no generator kind", name)
	}
	return Binding{Name: name, Kind: kind, Options: a.Values(), Source: "--macro"}, nil
}

// BuildRegistry resolves bindings against the generator catalog. A later
// binding for the same name replaces an earlier one.
func BuildRegistry(bindings []Binding) (*core.Registry, error) {
	merged := map[string]Binding{}
	for _, b := range bindings {
		merged[b.Name] = b
	}

	names := maps.Keys(merged)
	slices.Sort(names)
	generators := make(map[string]core.Generator, len(merged))
	for _, name := range names {
		b := merged[name]
		gen, err := macros.New(b.Kind, b.Options)
		if err != nil {
			return nil, fmt.Errorf("%s: macro %s: %w", b.Source, name, err)
		}
		generators[name] = gen
	}
	return core.NewRegistry(generators)
}
