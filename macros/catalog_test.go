package macros_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intangere/macc/core"
	"github.com/intangere/macc/macros"
)

var sysrow = core.RecordMeta{
	Name: "sysrow_t",
	Fields: []core.FieldMeta{
		core.ArrayOf("type", "char", 16),
		core.ArrayOf("name", "char", 32),
		core.Scalar("rootpage", "int"),
	},
}

func TestKinds(t *testing.T) {
	var names []string
	for _, k := range macros.Kinds() {
		names = append(names, k.Name)
		assert.NotEmpty(t, k.Doc)
	}
	assert.Equal(t, []string{"copier", "counter", "getter", "setter"}, names)

	_, ok := macros.Lookup("getter")
	assert.True(t, ok)
	_, ok = macros.Lookup("printer")
	assert.False(t, ok)
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		opts     map[string]string
		params   []string
		expected *core.Signature
	}{
		{
			name:   "getter of a scalar",
			kind:   "getter",
			opts:   map[string]string{"field": "rootpage"},
			params: []string{"idx", "row"},
			expected: &core.Signature{
				Result: core.Named("int"),
				Params: []core.Param{
					{Name: "idx", Type: core.Named("int")},
					{Name: "row", Type: core.RecordType("sysrow_t")},
				},
			},
		},
		{
			name:   "getter of an array by pointer",
			kind:   "getter",
			opts:   map[string]string{"field": "name", "by": "pointer", "lead": "size_t"},
			params: []string{"idx", "row", "extra"},
			expected: &core.Signature{
				Result: core.Named("char").Ptr(),
				Params: []core.Param{
					{Name: "idx", Type: core.Named("size_t")},
					{Name: "row", Type: core.RecordType("sysrow_t").Ptr()},
					{Name: "extra", Type: core.Named("size_t")},
				},
			},
		},
		{
			name:   "setter of an array",
			kind:   "setter",
			opts:   map[string]string{"field": "type"},
			params: []string{"value", "row"},
			expected: &core.Signature{
				Result: core.Void,
				Params: []core.Param{
					{Name: "value", Type: core.Named("char").Ptr().AsConst()},
					{Name: "row", Type: core.RecordType("sysrow_t").Ptr()},
				},
			},
		},
		{
			name:   "copier",
			kind:   "copier",
			opts:   map[string]string{"source": "struct sqlite3_stmt"},
			params: []string{"stmt", "row"},
			expected: &core.Signature{
				Result: core.Void,
				Params: []core.Param{
					{Name: "stmt", Type: core.Named("struct sqlite3_stmt").Ptr()},
					{Name: "row", Type: core.RecordType("sysrow_t").Ptr()},
				},
			},
		},
		{
			name:   "counter",
			kind:   "counter",
			params: []string{"unused", "tgt"},
			expected: &core.Signature{
				Result: core.Named("int"),
				Params: []core.Param{
					{Name: "unused", Type: core.Named("int")},
					{Name: "tgt", Type: core.RecordType("sysrow_t")},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := macros.New(tt.kind, tt.opts)
			require.NoError(t, err)

			sig, err := gen.Generate(sysrow, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sig)
		})
	}
}

func TestGeneratorMissingField(t *testing.T) {
	for _, kind := range []string{"getter", "setter"} {
		gen, err := macros.New(kind, map[string]string{"field": "nope"})
		require.NoError(t, err)

		_, err = gen.Generate(sysrow, "a", "b")
		require.Error(t, err)
		assert.Equal(t, "record sysrow_t has no field nope", err.Error())
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		kind string
		opts map[string]string
		err  error
		msg  string
	}{
		{"unknown kind", "printer", nil, macros.ErrUnknownKind, "known: copier, counter, getter, setter"},
		{"unknown option", "counter", map[string]string{"field": "x"}, macros.ErrBadOption, `counter has no option "field"`},
		{"missing required", "getter", map[string]string{}, macros.ErrBadOption, "getter requires option field"},
		{"blank required", "copier", map[string]string{"source": "  "}, macros.ErrBadOption, "copier requires option source"},
		{"value outside set", "getter", map[string]string{"field": "x", "by": "ref"}, macros.ErrBadOption, "must be one of value|pointer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := macros.New(tt.kind, tt.opts)
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
