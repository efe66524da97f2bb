package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/types"
)

func checkString(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.ParseSource(source.FileName("test"), []byte(src))
	require.NoError(t, err)
	return NewChecker(NewVariableTable()).Check(prog)
}

func TestCheckVarDeclInfersTypeFromValue(t *testing.T) {
	require.NoError(t, checkString(t, `x = 5;`))
}

func TestCheckVarDeclRejectsMismatchedAnnotation(t *testing.T) {
	err := checkString(t, `x: string = 5;`)
	assert.Error(t, err)
}

func TestCheckIntAssignableToFloat(t *testing.T) {
	require.NoError(t, checkString(t, `x: float = 5;`))
}

func TestCheckIfConditionMustBeBool(t *testing.T) {
	err := checkString(t, `if (1) { x = 1; }`)
	assert.Error(t, err)
}

func TestCheckBreakOutsideLoopIsError(t *testing.T) {
	err := checkString(t, `break;`)
	assert.Error(t, err)
}

func TestCheckBreakInsideLoopIsFine(t *testing.T) {
	require.NoError(t, checkString(t, `while (true) { break; }`))
}

func TestCheckUndeclaredNameIsError(t *testing.T) {
	err := checkString(t, `y = x;`)
	assert.Error(t, err)
}

func TestCheckArrayElementsMustShareType(t *testing.T) {
	err := checkString(t, `x = [1, "a"];`)
	assert.Error(t, err)
}

func TestCheckFunctionOverloadsAccumulate(t *testing.T) {
	src := `
f = (n: int) -> int { return n; };
f = (n: string) -> string { return n; };
x = f(1);
y = f("a");
`
	require.NoError(t, checkString(t, src))
}

func TestCheckCallNoMatchingOverloadIsError(t *testing.T) {
	src := `
f = (n: int) -> int { return n; };
x = f("a");
`
	err := checkString(t, src)
	assert.Error(t, err)
}

func TestCheckAssignToConstIsError(t *testing.T) {
	src := `
const x: int = 1;
x = 2;
`
	err := checkString(t, src)
	assert.Error(t, err)
}

func TestCheckTypeAliasResolvesToString(t *testing.T) {
	src := `
alias Name = string;
n: Name = "hi";
`
	require.NoError(t, checkString(t, src))
}

func TestCheckBuiltinSqrtAcceptsIntOrFloat(t *testing.T) {
	require.NoError(t, checkString(t, `x = sqrt(4);`))
	require.NoError(t, checkString(t, `x = sqrt(4.0);`))
}

func TestCheckBuiltinToStringIsOverloadedAcrossScalarTypes(t *testing.T) {
	src := `
a = toString(1);
b = toString(1.5);
c = toString(true);
d = toString("s");
`
	require.NoError(t, checkString(t, src))
}

func TestAnnotateAppendsResolvedTypesToExpressions(t *testing.T) {
	prog, err := parser.ParseSource(source.FileName("test"), []byte(`x = 1 + 2;`))
	require.NoError(t, err)
	checker := NewChecker(NewVariableTable())
	require.NoError(t, checker.Check(prog))

	out := Annotate(prog, checker.Types)
	assert.Contains(t, out, ": int")
}

func TestVariableTableLookupWalksOuterScopes(t *testing.T) {
	vt := NewVariableTable()
	vt.Declare("g", &VarInfo{Kind: KindVariable, Type: types.IntType})
	vt.Push()
	defer vt.Pop()
	info, ok := vt.Lookup("g")
	require.True(t, ok)
	assert.Equal(t, types.IntType, info.Type)
}
