package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
	return full
}

func TestExpandSplicesImportedStatements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.cmdr", `greeting = "hi";`)
	mainPath := writeFile(t, dir, "main.cmdr", `import "greet.cmdr"; println greeting;`)

	src, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	prog, err := parser.ParseSource(source.FileName(mainPath), src)
	require.NoError(t, err)

	require.NoError(t, Expand(prog, dir, mainPath))
	require.Len(t, prog.Stmts, 2)
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "greeting", decl.Name)
}

func TestFilesystemImporterLoadsRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.cmdr", `util = 1;`)

	fi := FilesystemImporter{BaseDir: dir}
	prog, err := fi.Load("util.cmdr")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)
}

func TestExpandDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cmdr", `import "b.cmdr";`)
	bPath := writeFile(t, dir, "b.cmdr", `import "a.cmdr";`)

	src, err := os.ReadFile(bPath)
	require.NoError(t, err)
	prog, err := parser.ParseSource(source.FileName(bPath), src)
	require.NoError(t, err)

	err = Expand(prog, dir, bPath)
	assert.Error(t, err)
}
