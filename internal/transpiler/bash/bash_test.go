package bash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
)

func transpile(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(source.FileName("test.cmdr"), []byte(src))
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	out, err := Transpile(prog)
	require.NoError(t, err)
	return out
}

func TestTranspileVarDecl(t *testing.T) {
	out := transpile(t, `x = 5;`)
	assert.Contains(t, out, "x=5")
}

func TestTranspilePrintlnJoinsArgsWithSpace(t *testing.T) {
	out := transpile(t, `println "hi", "there";`)
	assert.Contains(t, out, `echo "hi" "there"`)
}

func TestTranspileIfEmitsBashConditional(t *testing.T) {
	out := transpile(t, `if (1 < 2) { println "yes"; }`)
	assert.True(t, strings.Contains(out, "if (( 1 < 2 )); then"))
	assert.Contains(t, out, "fi")
}

func TestTranspileWhileLoop(t *testing.T) {
	out := transpile(t, `i = 0; while (i < 3) { i += 1; }`)
	assert.Contains(t, out, "while")
	assert.Contains(t, out, "done")
}

func TestTranspileForLoop(t *testing.T) {
	out := transpile(t, `for (i = 0 to 10) { println i; }`)
	assert.Contains(t, out, "for ((")
	assert.Contains(t, out, "done")
}
