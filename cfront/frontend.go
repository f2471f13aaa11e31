// Package cfront parses, rewrites and prints the subset of C that macro sites
// live in: declarations, typedefs, struct/union/enum definitions and function
// definitions. Preprocessor lines are dropped; function bodies and
// initializers pass through as written.
package cfront

import (
	"github.com/intangere/macc/core"
)

type Frontend struct{}

func (Frontend) Name() string {
	return "c"
}

func (Frontend) Parse(filename string, src []byte) (core.Tree, error) {
	f, err := Parse(filename, string(src))
	if err != nil {
		return nil, err
	}
	return NewTree(f), nil
}
