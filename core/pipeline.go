package core

import (
	"bytes"
	"errors"
	"log/slog"
)

// Frontend turns source text of one dialect into a Tree.
type Frontend interface {
	Name() string
	Parse(filename string, src []byte) (Tree, error)
}

// Unit is one translation unit.
type Unit struct {
	Name     string
	Src      []byte
	Frontend Frontend
}

// Result is the outcome of a successfully translated unit.
type Result struct {
	Unit    string
	Output  []byte
	Dump    []byte
	Records Records
	Sites   int
	Aliases int
}

// Pipeline runs parse, field extraction, macro dispatch, alias stripping and
// printing over translation units.
type Pipeline struct {
	Registry *Registry
	Policy   FieldPolicy
	Logger   *slog.Logger
	// Dump also renders the final tree of every unit into Result.Dump.
	Dump bool
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Translate processes a single unit. Nothing is returned for a failed unit.
func (p *Pipeline) Translate(u Unit) (*Result, error) {
	logger := p.logger().With("unit", u.Name)
	logger.Debug("parsing", "frontend", u.Frontend.Name(), "bytes", len(u.Src))

	tree, err := u.Frontend.Parse(u.Name, u.Src)
	if err != nil {
		return nil, withUnit(u.Name, ErrParse, err)
	}

	records, err := ExtractRecords(tree.RecordDefs(), p.Policy, logger)
	if err != nil {
		return nil, withUnit(u.Name, ErrUnsupportedFieldShape, err)
	}
	logger.Debug("extracted records", "records", records.Names())

	sites, err := NewDispatcher(p.Registry, logger).Apply(tree, records)
	if err != nil {
		return nil, withUnit(u.Name, ErrGenerator, err)
	}

	aliases := tree.StripAliases()
	logger.Debug("stripped aliases", "count", aliases)

	var out bytes.Buffer
	if err := tree.Print(&out); err != nil {
		return nil, withUnit(u.Name, ErrPrint, err)
	}

	res := &Result{
		Unit:    u.Name,
		Output:  out.Bytes(),
		Records: records,
		Sites:   sites,
		Aliases: aliases,
	}

	if p.Dump {
		var dump bytes.Buffer
		if err := tree.Dump(&dump); err != nil {
			return nil, withUnit(u.Name, ErrPrint, err)
		}
		res.Dump = dump.Bytes()
	}
	return res, nil
}

// TranslateAll processes units in order. Without keepGoing it stops at the
// first failed unit; with it every unit is attempted and the failures are
// joined. Results of successful units are returned either way.
func (p *Pipeline) TranslateAll(units []Unit, keepGoing bool) ([]*Result, error) {
	results := []*Result{}
	var errs []error
	for _, u := range units {
		res, err := p.Translate(u)
		if err != nil {
			p.logger().Error("translation failed", "unit", u.Name, "error", err)
			if !keepGoing {
				return results, err
			}
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
