package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intangere/macc/core"
)

const bufSource = `struct Buf { char data[16]; int len; };
int get_data(int idx, struct Buf b);
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := &RunCmd{Dialect: "auto", Macro: []string{"get_data=[:getter, :field=data]"}}

	err := cmd.Run(discardLogger(), &Streams{In: strings.NewReader(bufSource), Out: &out})
	require.NoError(t, err)
	assert.Equal(t, "struct Buf {\n  char data[16];\n  int len;\n};\nchar *get_data(int idx, struct Buf b);\n", out.String())
}

func TestRunFilesOutDirAndAST(t *testing.T) {
	dir := t.TempDir()
	cFile := writeFile(t, dir, "buf.c", bufSource)
	goFile := writeFile(t, dir, "buf.go", "package buf\n\ntype Buf struct {\n\tdata [16]byte\n\tlen  int\n}\n\ntype Alias = Buf\n\nfunc getLen(idx int, b Buf) int\n")
	bindings := writeFile(t, dir, "macros.ini", "[get_data]\nkind = getter\nfield = data\n\n[getLen]\nkind = setter\nfield = len\n")

	outDir := filepath.Join(dir, "out")
	astFile := filepath.Join(dir, "tree.txt")
	cmd := &RunCmd{
		Files:   []string{cFile, goFile},
		Macros:  []string{bindings},
		Dialect: "auto",
		OutDir:  outDir,
		AST:     astFile,
	}

	var stdout bytes.Buffer
	require.NoError(t, cmd.Run(discardLogger(), &Streams{In: strings.NewReader(""), Out: &stdout}))
	assert.Empty(t, stdout.String())

	cOut, err := os.ReadFile(filepath.Join(outDir, "buf.c"))
	require.NoError(t, err)
	assert.Contains(t, string(cOut), "char *get_data(int idx, struct Buf b);")

	goOut, err := os.ReadFile(filepath.Join(outDir, "buf.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goOut), "func getLen(idx int, b *Buf)\n")
	assert.NotContains(t, string(goOut), "Alias")

	tree, err := os.ReadFile(astFile)
	require.NoError(t, err)
	assert.Contains(t, string(tree), "# "+cFile+"\nFile: "+cFile)
	assert.Contains(t, string(tree), "# "+goFile+"\n")
}

func TestRunKeepGoing(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.c", "int get_data(int idx, struct Missing m);\n")
	good := writeFile(t, dir, "good.c", bufSource)

	for _, keepGoing := range []bool{false, true} {
		var out bytes.Buffer
		cmd := &RunCmd{
			Files:     []string{bad, good},
			Dialect:   "c",
			Macro:     []string{"get_data=[:counter]"},
			KeepGoing: keepGoing,
		}
		err := cmd.Run(discardLogger(), &Streams{Out: &out})
		require.ErrorIs(t, err, core.ErrUnknownRecordType)
		assert.Contains(t, err.Error(), bad)

		if keepGoing {
			assert.Contains(t, out.String(), "int get_data(int idx, struct Buf b);")
		} else {
			assert.Empty(t, out.String())
		}
	}
}

func TestRunGoParseFailure(t *testing.T) {
	cmd := &RunCmd{Dialect: "go"}
	err := cmd.Run(discardLogger(), &Streams{In: strings.NewReader(""), Out: io.Discard})
	require.ErrorIs(t, err, core.ErrParse)
	assert.Contains(t, err.Error(), "<stdin>")

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.go", "func getLen(idx int, b Buf) int\n")
	good := writeFile(t, dir, "good.c", bufSource)

	var out bytes.Buffer
	cmd = &RunCmd{
		Files:     []string{bad, good},
		Dialect:   "auto",
		Macro:     []string{"get_data=[:counter]"},
		KeepGoing: true,
	}
	err = cmd.Run(discardLogger(), &Streams{Out: &out})
	require.ErrorIs(t, err, core.ErrParse)
	assert.Contains(t, err.Error(), bad)
	assert.Contains(t, out.String(), "int get_data(int idx, struct Buf b);")
}

func TestRunBindingErrors(t *testing.T) {
	cmd := &RunCmd{Dialect: "auto", Macro: []string{"x=[:printer]"}}
	err := cmd.Run(discardLogger(), &Streams{In: strings.NewReader(""), Out: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator kind")

	cmd = &RunCmd{Dialect: "auto", Files: []string{"-", "-"}}
	err = cmd.Run(discardLogger(), &Streams{In: strings.NewReader(""), Out: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "standard input given more than once")
}

func TestOutDirCollision(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "x.c", "int a;\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	b := writeFile(t, filepath.Join(dir, "sub"), "x.c", "int b;\n")

	cmd := &RunCmd{Files: []string{a, b}, Dialect: "c", OutDir: filepath.Join(dir, "out")}
	err := cmd.Run(discardLogger(), &Streams{Out: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would both be written to x.c")
}

func TestExampleSQLReport(t *testing.T) {
	example := filepath.Join("..", "..", "examples", "sql-report")
	outDir := t.TempDir()
	cmd := &RunCmd{
		Files:   []string{filepath.Join(example, "report.c"), filepath.Join(example, "report.go")},
		Macros:  []string{filepath.Join(example, "macros.ini"), filepath.Join(example, "macros.yaml")},
		Dialect: "auto",
		OutDir:  outDir,
	}
	require.NoError(t, cmd.Run(discardLogger(), &Streams{Out: io.Discard}))

	cOut, err := os.ReadFile(filepath.Join(outDir, "report.c"))
	require.NoError(t, err)
	for _, want := range []string{
		"int element_count(int n, struct sysrow_t tgt);\n",
		"void copy_row(struct sqlite3_stmt *stmt, struct sysrow_t *row, int ordinal);\n",
		"char *row_name(int idx, struct sysrow_t *row);\n",
		"void print_row(const struct sysrow_t *row)\n{",
		"int main(int argc, char *argv[])\n{",
	} {
		assert.Contains(t, string(cOut), want)
	}
	assert.NotContains(t, string(cOut), "typedef")
	assert.NotContains(t, string(cOut), "#include")

	goOut, err := os.ReadFile(filepath.Join(outDir, "report.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goOut), "func rowName(idx int, row *SysRow) *byte\n")
	assert.Contains(t, string(goOut), "func rootPage(idx int, row SysRow) int64\n")
	assert.NotContains(t, string(goOut), "type Row")
}

func TestKinds(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&KindsCmd{Format: "text"}).Run(&Streams{Out: &out}))
	assert.Contains(t, out.String(), "getter")
	assert.Contains(t, out.String(), ":field")
	assert.Contains(t, out.String(), "one of value|pointer")

	out.Reset()
	require.NoError(t, (&KindsCmd{Format: "yaml"}).Run(&Streams{Out: &out}))
	assert.Contains(t, out.String(), "- kind: copier")
	assert.Contains(t, out.String(), "required: true")
}

func TestCLIFlags(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("macc"))
	require.NoError(t, err)

	_, err = parser.Parse([]string{
		"run",
		"-m", "macros.ini",
		"--macro", "count=[:counter, :lead=long]",
		"--skip-unsupported-fields",
		"--log.level", "debug",
		"a.c", "b.go",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.c", "b.go"}, cli.Run.Files)
	assert.Equal(t, []string{"count=[:counter, :lead=long]"}, cli.Run.Macro)
	require.Len(t, cli.Run.Macros, 1)
	assert.Equal(t, "macros.ini", filepath.Base(cli.Run.Macros[0]))
	assert.True(t, cli.Run.SkipUnsupportedFields)
	assert.Equal(t, "auto", cli.Run.Dialect)
	assert.Equal(t, "debug", cli.Log.Level)

	cli = CLI{}
	parser, err = kong.New(&cli, kong.Name("macc"))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"x.c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.c"}, cli.Run.Files)
	assert.Equal(t, "info", cli.Log.Level)
}
