package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	yaml "gopkg.in/yaml.v3"

	"github.com/intangere/macc/macros"
)

type KindsCmd struct {
	Format string `help:"Output format" enum:"text,yaml" default:"text"`
}

// Run is called by Kong when the kinds command is executed.
func (k *KindsCmd) Run(streams *Streams) error {
	kinds := macros.Kinds()
	if k.Format == "yaml" {
		enc := yaml.NewEncoder(streams.Out)
		enc.SetIndent(2)
		if err := enc.Encode(kinds); err != nil {
			return err
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(streams.Out, 0, 4, 2, ' ', 0)
	for _, kind := range kinds {
		fmt.Fprintf(w, "%s\t%s\n", kind.Name, kind.Doc)
		for _, o := range kind.Options {
			var notes []string
			if o.Required {
				notes = append(notes, "required")
			}
			if o.Default != "" {
				notes = append(notes, "default "+o.Default)
			}
			if len(o.Values) > 0 {
				notes = append(notes, "one of "+strings.Join(o.Values, "|"))
			}
			fmt.Fprintf(w, "  :%s\t%s (%s)\n", o.Name, o.Doc, strings.Join(notes, ", "))
		}
	}
	return w.Flush()
}
