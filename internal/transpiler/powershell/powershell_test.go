package powershell

import (
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
	assert.Contains(t, out, "$x = 5")
}

func TestTranspileIfUsesNativeComparison(t *testing.T) {
	out := transpile(t, `if (1 < 2) { println "yes"; }`)
	assert.Contains(t, out, "if ((1 -lt 2)) {")
}

func TestTranspilePrintlnUsesWriteHost(t *testing.T) {
	out := transpile(t, `println "hi";`)
	assert.Contains(t, out, "Write-Host")
}

func TestTranspileWhileLoop(t *testing.T) {
	out := transpile(t, `i = 0; while (i < 3) { i += 1; }`)
	assert.Contains(t, out, "while (")
	assert.Contains(t, out, "$i += 1")
}

func TestTranspileArithmeticIsNative(t *testing.T) {
	out := transpile(t, `x = 1 + 2;`)
	assert.Contains(t, out, "(1 + 2)")
	assert.NotContains(t, out, "bc")
}
