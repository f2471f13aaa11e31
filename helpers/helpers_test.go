package helpers_test

import (
	"testing"

	"github.com/dave/dst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intangere/macc/helpers"
)

func TestTypeExpr(t *testing.T) {
	expr, err := helpers.TypeExpr(" *sql.Rows ")
	require.NoError(t, err)
	star, ok := expr.(*dst.StarExpr)
	require.True(t, ok)
	sel, ok := star.X.(*dst.SelectorExpr)
	require.True(t, ok)
	assert.Equal(t, "Rows", sel.Sel.Name)

	_, err = helpers.TypeExpr("unsigned int")
	assert.Error(t, err)
}

func TestFuncType(t *testing.T) {
	ft := helpers.FuncType(
		[]*dst.Field{helpers.Field("idx", helpers.Ident("int")), helpers.Field("rows", helpers.Ident("Rows"))},
		nil,
	)
	assert.True(t, ft.Func)
	assert.Nil(t, ft.Results)
	require.Len(t, ft.Params.List, 2)
	assert.Equal(t, "idx", ft.Params.List[0].Names[0].Name)

	ft = helpers.FuncType(nil, []*dst.Field{helpers.UnnamedField(helpers.Star(helpers.Ident("Buf"), 2))})
	require.NotNil(t, ft.Results)
	outer, ok := ft.Results.List[0].Type.(*dst.StarExpr)
	require.True(t, ok)
	_, ok = outer.X.(*dst.StarExpr)
	assert.True(t, ok)
	assert.Empty(t, helpers.Field("", helpers.Ident("int")).Names)
}
