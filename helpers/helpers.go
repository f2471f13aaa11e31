package helpers

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

func FuncType(params []*dst.Field, returns []*dst.Field) *dst.FuncType {
	ft := &dst.FuncType{
		Func: true,
		Params: &dst.FieldList{
			List: params,
		},
	}
	if len(returns) > 0 {
		ft.Results = &dst.FieldList{
			List: returns,
		}
	}
	return ft
}

func Field(name string, _type dst.Expr) *dst.Field {
	if name == "" {
		return UnnamedField(_type)
	}
	return &dst.Field{
		Names: []*dst.Ident{
			Ident(name),
		},
		Type: _type,
	}
}

func UnnamedField(_type dst.Expr) *dst.Field {
	return &dst.Field{
		Type: _type,
	}
}

func Ident(name string) *dst.Ident {
	return &dst.Ident{
		Name: name,
	}
}

// Star wraps expr in n pointer indirections.
func Star(expr dst.Expr, n int) dst.Expr {
	for i := 0; i < n; i++ {
		expr = &dst.StarExpr{X: expr}
	}
	return expr
}

// TypeExpr parses a Go type expression such as "int", "[]byte" or
// "*sql.Rows" into a detached dst expression.
func TypeExpr(_type string) (dst.Expr, error) {
	_type = strings.TrimSpace(_type)
	expr, err := parser.ParseExpr(_type)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", _type, err)
	}
	node, err := decorator.NewDecorator(token.NewFileSet()).DecorateNode(expr)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", _type, err)
	}
	e, ok := node.(dst.Expr)
	if !ok {
		return nil, fmt.Errorf("type %q is not an expression", _type)
	}
	return e, nil
}
