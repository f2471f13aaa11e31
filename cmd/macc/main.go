// Command macc applies macros to C or Go source: function declarations named
// after a bound macro get their type replaced by a signature generated from
// the record type of their second parameter.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/intangere/macc/internal/configpaths"
	"github.com/intangere/macc/internal/log"
)

type CLI struct {
	Config string `help:"Configuration file (json, yaml or toml)." type:"path" env:"MACC_CONFIG"`
	Log    struct {
		Level string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"MACC_LOG_LEVEL"`
		File  string `help:"Also write logs to this file" type:"path" env:"MACC_LOG_FILE"`
	} `embed:"" prefix:"log."`

	Run   RunCmd   `cmd:"" default:"withargs" help:"Apply macros to source files (default command)"`
	Kinds KindsCmd `cmd:"" help:"List the generator kinds macros can be bound to"`
}

// Streams carries the process's standard streams to commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

func main() {
	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("macc"),
		kong.Description("Apply record-driven macros to C and Go source"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, os.Stderr)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.Bind(&Streams{In: os.Stdin, Out: os.Stdout})

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
