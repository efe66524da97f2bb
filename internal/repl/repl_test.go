package repl

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/diagnostics"
)

func TestRunEvaluatesEachLineAndStopsOnExit(t *testing.T) {
	var seen []string
	r := New(strings.NewReader("x = 1;\nexit\n"), &strings.Builder{}, func(path string) error {
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		seen = append(seen, string(src))
		return nil
	})
	require.NoError(t, r.Run())
	require.Len(t, seen, 1)
	assert.Equal(t, "x = 1;", seen[0])
}

func TestRunRecoversFromEvalDiagnostic(t *testing.T) {
	out := &strings.Builder{}
	calls := 0
	r := New(strings.NewReader("bad\ngood\nexit\n"), out, func(path string) error {
		calls++
		if calls == 1 {
			return diagnostics.New(diagnostics.RuntimeError, "boom")
		}
		return nil
	})
	require.NoError(t, r.Run())
	assert.Equal(t, 2, calls)
	assert.Contains(t, out.String(), "boom")
}

func TestRunIgnoresEmptyLines(t *testing.T) {
	calls := 0
	r := New(strings.NewReader("\n\nexit\n"), &strings.Builder{}, func(path string) error {
		calls++
		return nil
	})
	require.NoError(t, r.Run())
	assert.Equal(t, 0, calls)
}

func TestRunStopsOnEOF(t *testing.T) {
	calls := 0
	r := New(strings.NewReader("x = 1;\n"), &strings.Builder{}, func(path string) error {
		calls++
		return nil
	})
	require.NoError(t, r.Run())
	assert.Equal(t, 1, calls)
}
