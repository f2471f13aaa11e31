package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNotFunction is returned by Decl.Params when the declaration's type is not
// a function type.
var ErrNotFunction = errors.New("declaration is not a function")

// Tree is a parsed translation unit. It is owned by the frontend that built it.
type Tree interface {
	// RecordDefs lists every record definition in source order.
	RecordDefs() []RecordDef
	// Decls lists the top-level declarations in source order.
	Decls() []Decl
	// StripAliases removes all top-level alias declarations and returns how
	// many were removed.
	StripAliases() int
	Print(w io.Writer) error
	Dump(w io.Writer) error
}

// Decl is a top-level declaration with a replaceable type slot.
type Decl interface {
	Name() string
	Params() ([]ParamInfo, error)
	// Replace swaps the declaration's type for sig. Name, storage class and
	// position are left alone.
	Replace(sig *Signature) error
}

// ParamInfo is a formal parameter of a function declaration. TypeName is the
// record name the parameter's declared type refers to (pointers and
// qualifiers peeled), or the empty string when it names no type.
type ParamInfo struct {
	Name     string
	TypeName string
}

type Dispatcher struct {
	Registry *Registry
	Logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{Registry: registry, Logger: logger}
}

// Apply rewrites every macro site of tree in source order and returns how
// many sites were rewritten. records is only read.
func (d *Dispatcher) Apply(tree Tree, records Records) (int, error) {
	applied := 0
	for _, decl := range tree.Decls() {
		gen, ok := d.Registry.Lookup(decl.Name())
		if !ok {
			continue
		}
		if err := d.apply(decl, gen, records); err != nil {
			return applied, err
		}
		applied++
		d.Logger.Info("matched macro to function declaration", "decl", decl.Name())
	}
	return applied, nil
}

func (d *Dispatcher) apply(decl Decl, gen Generator, records Records) error {
	name := decl.Name()

	params, err := decl.Params()
	if err != nil {
		return &Error{Decl: name, Kind: ErrMalformedMacroSite, Err: err}
	}
	if len(params) < 2 {
		return &Error{Decl: name, Kind: ErrMalformedMacroSite,
			Err: fmt.Errorf("want at least 2 parameters, have %d", len(params))}
	}

	target := params[1]
	if target.TypeName == "" {
		return &Error{Decl: name, Kind: ErrMalformedMacroSite,
			Err: fmt.Errorf("parameter %q does not name a record type", target.Name)}
	}
	rec, ok := records[target.TypeName]
	if !ok {
		return &Error{Decl: name, Kind: ErrUnknownRecordType, Err: fmt.Errorf("%s", target.TypeName)}
	}

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}

	d.Logger.Debug("invoking generator", "decl", name, "record", rec.Name, "params", names)
	sig, err := gen.Generate(rec, names...)
	if err != nil {
		return &Error{Decl: name, Kind: ErrGenerator, Err: err}
	}
	if sig == nil {
		return &Error{Decl: name, Kind: ErrGenerator, Err: fmt.Errorf("generator returned no signature")}
	}

	if err := decl.Replace(sig); err != nil {
		return &Error{Decl: name, Kind: ErrGenerator, Err: err}
	}
	return nil
}
