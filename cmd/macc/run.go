package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/intangere/macc/cfront"
	"github.com/intangere/macc/config"
	"github.com/intangere/macc/core"
	"github.com/intangere/macc/gofront"
)

const stdinName = "<stdin>"

// RunCmd translates each source file and writes the results to stdout or
// --out-dir.
type RunCmd struct {
	Files                 []string `arg:"" optional:"" help:"Source files; '-' or none reads standard input"`
	AST                   string   `short:"a" name:"ast" help:"Write the final tree of every unit to this file" type:"path"`
	Macros                []string `short:"m" help:"Macro binding file (.ini, .yaml, .toml); may be repeated, later files win" type:"path" env:"MACC_MACROS"`
	Macro                 []string `help:"Inline binding: name=[:kind, :key=value]" sep:"none"`
	Dialect               string   `help:"Source dialect; auto picks go for .go files and c otherwise" enum:"auto,c,go" default:"auto" env:"MACC_DIALECT"`
	OutDir                string   `help:"Write one file per unit into this directory instead of stdout" type:"path"`
	SkipUnsupportedFields bool     `help:"Drop record fields of unsupported shape instead of failing" env:"MACC_SKIP_UNSUPPORTED_FIELDS"`
	KeepGoing             bool     `help:"Translate the remaining units after a failure"`
}

// Run is called by Kong when the run command is executed.
func (r *RunCmd) Run(logger *slog.Logger, streams *Streams) error {
	registry, err := r.registry(logger)
	if err != nil {
		return err
	}

	units, err := r.units(streams.In)
	if err != nil {
		return err
	}

	policy := core.FailFast
	if r.SkipUnsupportedFields {
		policy = core.SkipField
	}
	pipeline := &core.Pipeline{
		Registry: registry,
		Policy:   policy,
		Logger:   logger,
		Dump:     r.AST != "",
	}

	results, runErr := pipeline.TranslateAll(units, r.KeepGoing)
	if err := r.write(results, streams.Out); err != nil {
		return err
	}
	for _, res := range results {
		logger.Debug("translated", "unit", res.Unit, "sites", res.Sites, "aliases", res.Aliases)
	}
	return runErr
}

func (r *RunCmd) registry(logger *slog.Logger) (*core.Registry, error) {
	var bindings []config.Binding
	for _, path := range r.Macros {
		bs, err := config.LoadBindings(path)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, bs...)
	}
	for _, spec := range r.Macro {
		b, err := config.ParseInline(spec)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	registry, err := config.BuildRegistry(bindings)
	if err != nil {
		return nil, err
	}
	if registry.Len() == 0 {
		logger.Warn("no macros bound, sources are only reprinted")
	} else {
		logger.Debug("macros bound", "names", registry.Names())
	}
	return registry, nil
}

func (r *RunCmd) frontend(name string) core.Frontend {
	switch r.Dialect {
	case "go":
		return gofront.Frontend{}
	case "c":
		return cfront.Frontend{}
	}
	if strings.EqualFold(filepath.Ext(name), ".go") {
		return gofront.Frontend{}
	}
	return cfront.Frontend{}
}

func (r *RunCmd) units(stdin io.Reader) ([]core.Unit, error) {
	files := r.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	units := make([]core.Unit, 0, len(files))
	readStdin := false
	for _, file := range files {
		name := file
		var src []byte
		var err error
		if file == "-" {
			if readStdin {
				return nil, fmt.Errorf("standard input given more than once")
			}
			readStdin = true
			name = stdinName
			src, err = io.ReadAll(stdin)
		} else {
			src, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, err
		}
		units = append(units, core.Unit{Name: name, Src: src, Frontend: r.frontend(name)})
	}
	return units, nil
}

func (r *RunCmd) outName(res *core.Result) string {
	if res.Unit != stdinName {
		return filepath.Base(res.Unit)
	}
	if r.Dialect == "go" {
		return "stdin.go"
	}
	return "stdin.c"
}

func (r *RunCmd) write(results []*core.Result, stdout io.Writer) error {
	if r.AST != "" {
		var dump bytes.Buffer
		for _, res := range results {
			fmt.Fprintf(&dump, "# %s\n", res.Unit)
			dump.Write(res.Dump)
		}
		if err := os.WriteFile(r.AST, dump.Bytes(), 0o644); err != nil {
			return err
		}
	}

	if r.OutDir == "" {
		for _, res := range results {
			if _, err := stdout.Write(res.Output); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return err
	}
	seen := map[string]string{}
	for _, res := range results {
		name := r.outName(res)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, res.Unit, name)
		}
		seen[name] = res.Unit
		if err := os.WriteFile(filepath.Join(r.OutDir, name), res.Output, 0o644); err != nil {
			return err
		}
	}
	return nil
}
