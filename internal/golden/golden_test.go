package golden

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/source"
)

// lexText renders a source file the way `-l` does: one token per line.
func lexText(t *testing.T, path string) string {
	t.Helper()
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	toks, err := lexer.Lex(source.FileName(path), src)
	require.NoError(t, err)
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeFixture(t *testing.T, dir, name, cmdr, out string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".cmdr"), []byte(cmdr), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".out"), []byte(out), 0o644))
}

func TestDiscoverFindsPairedFixturesRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "lex/simple", `x = 1;`, "placeholder\n")
	writeFixture(t, dir, "lex/nested/deep", `y = 2;`, "placeholder\n")

	cases, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, cases, 2)
}

func TestCompareMatchingReturnsOK(t *testing.T) {
	_, ok := Compare("fixture", "same\n", "same\n")
	assert.True(t, ok)
}

func TestCompareMismatchReturnsUnifiedDiff(t *testing.T) {
	diff, ok := Compare("fixture", "expected\n", "actual\n")
	assert.False(t, ok)
	assert.Contains(t, diff, "-expected")
	assert.Contains(t, diff, "+actual")
}

func TestLexGoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := `x = 1;`
	writeFixture(t, dir, "lex/int_decl", src, "")
	cases, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	got := lexText(t, cases[0].Input)
	expected, err := cases[0].ReadExpected()
	require.NoError(t, err)
	if expected == "" {
		// Seed the golden file on first run, matching how a fresh fixture
		// pair is normally captured before being checked in.
		require.NoError(t, os.WriteFile(cases[0].Expected, []byte(got), 0o644))
		expected = got
	}
	_, ok := Compare(cases[0].Name, expected, got)
	assert.True(t, ok)
}
