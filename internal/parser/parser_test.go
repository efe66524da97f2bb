package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/source"
)

func parseString(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseSource(source.FileName("test"), []byte(src))
	require.NoError(t, err)
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseString(t, `x = 5;`)
	require.Len(t, prog.Stmts, 1)
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	lit, ok := decl.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 5, lit.Value)
}

func TestParseTypedConstDecl(t *testing.T) {
	prog := parseString(t, `const pi: float = 3.5;`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	assert.True(t, decl.Const)
	assert.Equal(t, "float", decl.Type.Name)
}

func TestParseIfElseDanglingElse(t *testing.T) {
	prog := parseString(t, `if (a) if (b) x = 1; else x = 2;`)
	outer := prog.Stmts[0].(*ast.IfStmt)
	require.Nil(t, outer.Else)
	inner := outer.Then.(*ast.IfStmt)
	require.NotNil(t, inner.Else)
}

func TestParseWhileLoop(t *testing.T) {
	prog := parseString(t, `while (i < 10) { i = i + 1; }`)
	ws := prog.Stmts[0].(*ast.WhileStmt)
	be := ws.Cond.(*ast.BinaryExpr)
	assert.Equal(t, "<", be.OpLit)
}

func TestParseForWithStep(t *testing.T) {
	prog := parseString(t, `for (i = 0 to 10 step 2) { print i; }`)
	fs := prog.Stmts[0].(*ast.ForStmt)
	require.NotNil(t, fs.Step)
	step := fs.Step.(*ast.IntLit)
	assert.EqualValues(t, 2, step.Value)
}

func TestParseForWithoutStep(t *testing.T) {
	prog := parseString(t, `for (i = 0 to 10) { print i; }`)
	fs := prog.Stmts[0].(*ast.ForStmt)
	assert.Nil(t, fs.Step)
}

func TestParseLambdaAsFunctionDecl(t *testing.T) {
	prog := parseString(t, `greet = (n: string) -> string { return n; };`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	lam := decl.Value.(*ast.LambdaExpr)
	assert.Equal(t, "n", lam.Params[0].Name)
	assert.Equal(t, "string", lam.ReturnType.Name)
}

func TestParseCallExpr(t *testing.T) {
	prog := parseString(t, `greet("world");`)
	stmt := prog.Stmts[0].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.CallExpr)
	callee := call.Callee.(*ast.VariableExpr)
	assert.Equal(t, "greet", callee.Name)
	require.Len(t, call.Args, 1)
}

func TestParseTernaryAndAssignmentPrecedence(t *testing.T) {
	prog := parseString(t, `x = a ? 1 : 2;`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	_, ok := decl.Value.(*ast.TernaryExpr)
	assert.True(t, ok)
}

func TestParsePowerRightAssociative(t *testing.T) {
	prog := parseString(t, `x = 2 ** 3 ** 2;`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	top := decl.Value.(*ast.BinaryExpr)
	assert.Equal(t, "2", top.Left.String())
	right := top.Right.(*ast.BinaryExpr)
	assert.Equal(t, "3", right.Left.String())
}

func TestParseArrayIndexAssignment(t *testing.T) {
	prog := parseString(t, `xs[0] = 9;`)
	decl := prog.Stmts[0].(*ast.ExprStmt)
	assign := decl.Expr.(*ast.AssignExpr)
	_, ok := assign.Target.(*ast.IndexExpr)
	assert.True(t, ok)
}

func TestParseAssignToLiteralIsParseError(t *testing.T) {
	_, err := ParseSource(source.FileName("test"), []byte(`5 = 1;`))
	require.Error(t, err)
}

func TestParseSimpleCommandPipeline(t *testing.T) {
	prog := parseString(t, "ls -la | grep foo;\n")
	cs := prog.Stmts[0].(*ast.CmdStmt)
	require.Len(t, cs.Pipeline.Stages, 2)
	first := cs.Pipeline.Stages[0]
	name := first.Name.(*ast.StringLit)
	assert.Equal(t, "ls", name.Parts[0].Literal)
}

func TestParseBackgroundCommand(t *testing.T) {
	prog := parseString(t, "sleep 5 &;\n")
	cs := prog.Stmts[0].(*ast.CmdStmt)
	assert.True(t, cs.Background)
}

func TestParseCommandSubstitution(t *testing.T) {
	prog := parseString(t, "x = `whoami`;\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	_, ok := decl.Value.(*ast.CmdExpr)
	assert.True(t, ok)
}

func TestParseAssertWithMessage(t *testing.T) {
	prog := parseString(t, `assert(x > 0, "must be positive");`)
	as := prog.Stmts[0].(*ast.AssertStmt)
	require.NotNil(t, as.Message)
}

func TestParseImport(t *testing.T) {
	prog := parseString(t, `import "lib.cmdr";`)
	im := prog.Stmts[0].(*ast.ImportStmt)
	assert.Equal(t, "lib.cmdr", im.Path)
}

func TestParseStringInterpolation(t *testing.T) {
	prog := parseString(t, `x = $"hello {name}";`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	sl := decl.Value.(*ast.StringLit)
	require.True(t, sl.Format)
	var sawExpr bool
	for _, p := range sl.Parts {
		if p.Expr != nil {
			sawExpr = true
			v, ok := p.Expr.(*ast.VariableExpr)
			require.True(t, ok)
			assert.Equal(t, "name", v.Name)
		}
	}
	assert.True(t, sawExpr)
}

func TestParseArrayLitAndTupleLit(t *testing.T) {
	prog := parseString(t, `xs = [1, 2, 3];`)
	decl := prog.Stmts[0].(*ast.VarDecl)
	arr := decl.Value.(*ast.ArrayLit)
	assert.Len(t, arr.Elements, 3)

	prog2 := parseString(t, `t = (1, 2);`)
	decl2 := prog2.Stmts[0].(*ast.VarDecl)
	tup := decl2.Value.(*ast.TupleLit)
	assert.Len(t, tup.Elements, 2)
}
