// Package gofront applies macros to Go source. Files are decorated with
// github.com/dave/dst so comments and layout survive the rewrite.
package gofront

import (
	"go/parser"
	"go/token"

	"github.com/dave/dst/decorator"

	"github.com/intangere/macc/core"
)

type Frontend struct{}

func (Frontend) Name() string {
	return "go"
}

func (Frontend) Parse(filename string, src []byte) (core.Tree, error) {
	dec := decorator.NewDecorator(token.NewFileSet())
	// go/parser hands back a partial file alongside the error; it must not
	// reach the decorator.
	af, err := parser.ParseFile(dec.Fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	f, err := dec.DecorateFile(af)
	if err != nil {
		return nil, err
	}
	return &Tree{File: f, dec: dec}, nil
}
