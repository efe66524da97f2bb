package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/builtin"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/typecheck"
)

// runSrc type-checks and interprets src, returning everything written to
// stdout. Type-checking first mirrors cmd/commander's own pipeline and
// catches a test source typo as a TypeError instead of a confusing runtime
// failure.
func runSrc(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.ParseSource(source.FileName("test"), []byte(src))
	require.NoError(t, err)
	require.NoError(t, typecheck.NewChecker(typecheck.NewVariableTable()).Check(prog))

	var out strings.Builder
	in := New()
	in.Stdout = &out
	in.Builtins = builtin.New()
	err = in.Run(prog)
	return out.String(), err
}

func TestRunPrintlnJoinsArgsWithSpace(t *testing.T) {
	out, err := runSrc(t, `println 1, "a", true;`)
	require.NoError(t, err)
	assert.Equal(t, "1 a true\n", out)
}

func TestRunArithmeticPromotesIntToFloat(t *testing.T) {
	out, err := runSrc(t, `println 1 + 2.5;`)
	require.NoError(t, err)
	assert.Equal(t, "3.5\n", out)
}

func TestRunWhileLoop(t *testing.T) {
	src := `
i = 0;
while (i < 3) {
  println i;
  i = i + 1;
}
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestRunForLoopWithStep(t *testing.T) {
	// "to" is inclusive of the end bound.
	src := `for (i = 0 to 6 step 2) { println i; }`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "0\n2\n4\n6\n", out)
}

func TestRunBreakExitsLoop(t *testing.T) {
	src := `
i = 0;
while (true) {
  if (i == 2) { break; }
  println i;
  i = i + 1;
}
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n", out)
}

func TestRunContinueSkipsRestOfBody(t *testing.T) {
	src := `
for (i = 0 to 4) {
  if (i == 1) { continue; }
  println i;
}
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "0\n2\n3\n4\n", out)
}

func TestRunFunctionCallAndReturn(t *testing.T) {
	src := `
square = (n: int) -> int { return n * n; };
println square(4);
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "16\n", out)
}

func TestRunClosureCapturesEnclosingScope(t *testing.T) {
	src := `
base = 10;
addBase = (n: int) -> int { return n + base; };
println addBase(5);
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
}

func TestRunOverloadedFunctionDispatchesByArgType(t *testing.T) {
	src := `
describe = (n: int) -> string { return "int"; };
describe = (n: string) -> string { return "string"; };
println describe(1);
println describe("x");
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "int\nstring\n", out)
}

func TestRunArrayIndexAndMutationThroughSameBinding(t *testing.T) {
	src := `
xs = [1, 2, 3];
xs[1] = 99;
println xs[1];
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "99\n", out)
}

func TestRunTernaryExpression(t *testing.T) {
	out, err := runSrc(t, `println true ? "yes" : "no";`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestRunIncDecReturnsPreviousValue(t *testing.T) {
	src := `
x = 5;
y = x++;
println x;
println y;
`
	out, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, "6\n5\n", out)
}

func TestRunAssertFailureIsRuntimeError(t *testing.T) {
	_, err := runSrc(t, `assert(false, "boom");`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunAssertSuccessContinues(t *testing.T) {
	out, err := runSrc(t, `assert(true); println "ok";`)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestRunBuiltinSqrtDispatchesThroughLookup(t *testing.T) {
	out, err := runSrc(t, `println sqrt(9);`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestRunUndefinedVariableIsRuntimeError(t *testing.T) {
	// Bypasses type-checking on purpose (the checker would already catch
	// this) to exercise the interpreter's own undefined-name guard.
	prog, err := parser.ParseSource(source.FileName("test"), []byte(`println missing;`))
	require.NoError(t, err)
	in := New()
	in.Builtins = builtin.New()
	err = in.Run(prog)
	assert.Error(t, err)
}
