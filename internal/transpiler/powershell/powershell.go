// Package powershell transpiles a type-checked Commander program into
// PowerShell source, the Go counterpart of original_source's
// PowerShellTranspiler (source/powershell_transpiler/transpiler.cpp).
// It shares internal/transpiler/bash's line-buffer/indent-counter shape
// (both trace back to the same original design) but, per spec.md §6,
// arithmetic is native PowerShell (`+`, `-`, `*`, `/`) rather than piped
// through `bc -l`, since PowerShell's pipeline already does double-
// precision math without an external helper.
package powershell

import (
	"fmt"
	"strings"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
)

const indentSize = 4

type Transpiler struct {
	lines   []string
	indent  int
	timeout int // original's _timeoutCount: a fresh job name per `timeout` block
}

func New() *Transpiler { return &Transpiler{} }

func Transpile(prog *ast.Program) (string, error) {
	t := New()
	for _, s := range prog.Stmts {
		if err := t.stmt(s); err != nil {
			return "", err
		}
	}
	return strings.Join(t.lines, "\n") + "\n", nil
}

func (t *Transpiler) emit(line string) {
	t.lines = append(t.lines, strings.Repeat(" ", t.indent*indentSize)+line)
}

func (t *Transpiler) indentIn()  { t.indent++ }
func (t *Transpiler) indentOut() { t.indent-- }

func transpileErr(n ast.Node, format string, args ...any) error {
	return diagnostics.At(diagnostics.RuntimeError, n.Position(), "powershell transpiler: "+format, args...)
}

func (t *Transpiler) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		return t.varDecl(s)
	case *ast.TypeDecl:
		return nil
	case *ast.Block:
		for _, st := range s.Stmts {
			if err := t.stmt(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		e, err := t.expr(s.Expr)
		if err != nil {
			return err
		}
		t.emit(e)
		return nil
	case *ast.IfStmt:
		return t.ifStmt(s)
	case *ast.WhileStmt:
		cond, err := t.expr(s.Cond)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("while (%s) {", cond))
		t.indentIn()
		if err := t.stmt(s.Body); err != nil {
			return err
		}
		t.indentOut()
		t.emit("}")
		return nil
	case *ast.DoWhileStmt:
		t.emit("do {")
		t.indentIn()
		if err := t.stmt(s.Body); err != nil {
			return err
		}
		t.indentOut()
		cond, err := t.expr(s.Cond)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("} while (%s)", cond))
		return nil
	case *ast.ForStmt:
		return t.forStmt(s)
	case *ast.BreakStmt:
		t.emit("break")
		return nil
	case *ast.ContinueStmt:
		t.emit("continue")
		return nil
	case *ast.ReturnStmt:
		if s.Value == nil {
			t.emit("return")
			return nil
		}
		v, err := t.expr(s.Value)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("return %s", v))
		return nil
	case *ast.PrintStmt:
		return t.printStmt(s)
	case *ast.ScanStmt:
		target, err := t.lvalue(s.Target)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("%s = Read-Host", target))
		return nil
	case *ast.ReadStmt:
		target, err := t.lvalue(s.Target)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("%s = Read-Host", target))
		return nil
	case *ast.WriteStmt:
		v, err := t.expr(s.Value)
		if err != nil {
			return err
		}
		target, err := t.expr(s.Target)
		if err != nil {
			return err
		}
		t.emit(fmt.Sprintf("Add-Content -Path %s -Value %s", target, v))
		return nil
	case *ast.ImportStmt:
		return nil
	case *ast.AssertStmt:
		cond, err := t.expr(s.Cond)
		if err != nil {
			return err
		}
		msg := `"assertion failed"`
		if s.Message != nil {
			m, err := t.expr(s.Message)
			if err != nil {
				return err
			}
			msg = m
		}
		t.emit(fmt.Sprintf("if (-not (%s)) { Write-Error %s; exit 1 }", cond, msg))
		return nil
	case *ast.TimeoutStmt:
		return t.timeoutStmt(s)
	case *ast.CmdStmt:
		line, err := t.pipeline(s.Pipeline)
		if err != nil {
			return err
		}
		if s.Background {
			t.emit(fmt.Sprintf("Start-Job -ScriptBlock { %s } | Out-Null", line))
			return nil
		}
		t.emit(line)
		return nil
	default:
		return transpileErr(s, "unhandled statement %T", s)
	}
}

func (t *Transpiler) varDecl(s *ast.VarDecl) error {
	if s.Value == nil {
		t.emit(fmt.Sprintf("$%s = $null", s.Name))
		return nil
	}
	v, err := t.expr(s.Value)
	if err != nil {
		return err
	}
	t.emit(fmt.Sprintf("$%s = %s", s.Name, v))
	return nil
}

func (t *Transpiler) ifStmt(s *ast.IfStmt) error {
	cond, err := t.expr(s.Cond)
	if err != nil {
		return err
	}
	t.emit(fmt.Sprintf("if (%s) {", cond))
	t.indentIn()
	if err := t.stmt(s.Then); err != nil {
		return err
	}
	t.indentOut()
	if s.Else != nil {
		t.emit("} else {")
		t.indentIn()
		if err := t.stmt(s.Else); err != nil {
			return err
		}
		t.indentOut()
	}
	t.emit("}")
	return nil
}

func (t *Transpiler) forStmt(s *ast.ForStmt) error {
	start, err := t.expr(s.Start)
	if err != nil {
		return err
	}
	end, err := t.expr(s.End)
	if err != nil {
		return err
	}
	step := "1"
	if s.Step != nil {
		step, err = t.expr(s.Step)
		if err != nil {
			return err
		}
	}
	t.emit(fmt.Sprintf("for ($%s = %s; $%s -le %s; $%s += %s) {", s.Name, start, s.Name, end, s.Name, step))
	t.indentIn()
	if err := t.stmt(s.Body); err != nil {
		return err
	}
	t.indentOut()
	t.emit("}")
	return nil
}

func (t *Transpiler) timeoutStmt(s *ast.TimeoutStmt) error {
	millis, err := t.expr(s.Millis)
	if err != nil {
		return err
	}
	t.timeout++
	job := fmt.Sprintf("commanderTimeout%d", t.timeout)
	t.emit(fmt.Sprintf("$%s = Start-Job -ScriptBlock {", job))
	t.indentIn()
	if err := t.stmt(s.Body); err != nil {
		return err
	}
	t.indentOut()
	t.emit("}")
	t.emit(fmt.Sprintf("Wait-Job -Job $%s -Timeout ([math]::Ceiling(%s / 1000)) | Out-Null", job, millis))
	t.emit(fmt.Sprintf("Stop-Job -Job $%s", job))
	return nil
}

func (t *Transpiler) printStmt(s *ast.PrintStmt) error {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		v, err := t.expr(a)
		if err != nil {
			return err
		}
		parts[i] = v
	}
	joined := strings.Join(parts, " ")
	if s.Newline {
		t.emit(fmt.Sprintf("Write-Host %s", joined))
		return nil
	}
	t.emit(fmt.Sprintf("Write-Host -NoNewline %s", joined))
	return nil
}

func (t *Transpiler) lvalue(e ast.LValue) (string, error) {
	switch e := e.(type) {
	case *ast.VariableExpr:
		return "$" + e.Name, nil
	case *ast.IndexExpr:
		base, err := t.lvalue(e.Base.(ast.LValue))
		if err != nil {
			return "", err
		}
		idx, err := t.expr(e.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil
	}
	return "", transpileErr(e, "unsupported assignment target %T", e)
}

func (t *Transpiler) pipeline(p *ast.CmdPipeline) (string, error) {
	stages := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		name, err := t.expr(stage.Name)
		if err != nil {
			return "", err
		}
		args := make([]string, len(stage.Args))
		for j, a := range stage.Args {
			v, err := t.expr(a.Value)
			if err != nil {
				return "", err
			}
			args[j] = v
		}
		parts := append([]string{trimQuotes(name)}, args...)
		stages[i] = strings.Join(parts, " ")
	}
	return strings.Join(stages, " | "), nil
}

func trimQuotes(s string) string { return strings.Trim(s, "\"") }

func (t *Transpiler) expr(e ast.Expr) (string, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", e.Value), nil
	case *ast.FloatLit:
		return fmt.Sprintf("%g", e.Value), nil
	case *ast.BoolLit:
		if e.Value {
			return "$true", nil
		}
		return "$false", nil
	case *ast.StringLit:
		return t.stringLit(e)
	case *ast.ArrayLit:
		elems := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			v, err := t.expr(el)
			if err != nil {
				return "", err
			}
			elems[i] = v
		}
		return "@(" + strings.Join(elems, ", ") + ")", nil
	case *ast.TupleLit:
		elems := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			v, err := t.expr(el)
			if err != nil {
				return "", err
			}
			elems[i] = v
		}
		return "@(" + strings.Join(elems, ", ") + ")", nil
	case *ast.VariableExpr:
		return "$" + e.Name, nil
	case *ast.IndexExpr:
		base, err := t.expr(e.Base)
		if err != nil {
			return "", err
		}
		idx, err := t.expr(e.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil
	case *ast.AssignExpr:
		return t.assignExpr(e)
	case *ast.IncDecExpr:
		target, err := t.lvalue(e.Target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s", target, e.Op), nil
	case *ast.BinaryExpr:
		return t.binary(e)
	case *ast.UnaryExpr:
		right, err := t.expr(e.Right)
		if err != nil {
			return "", err
		}
		if e.OpLit == "!" {
			return fmt.Sprintf("-not (%s)", right), nil
		}
		return fmt.Sprintf("-(%s)", right), nil
	case *ast.TernaryExpr:
		cond, err := t.expr(e.Cond)
		if err != nil {
			return "", err
		}
		then, err := t.expr(e.Then)
		if err != nil {
			return "", err
		}
		els, err := t.expr(e.Else)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$(if (%s) { %s } else { %s })", cond, then, els), nil
	case *ast.CallExpr:
		return t.callExpr(e)
	case *ast.LambdaExpr:
		return "", transpileErr(e, "lambda expressions cannot be transpiled inline; declare them as top-level functions")
	case *ast.CmdExpr:
		line, err := t.pipeline(e.Pipeline)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$(%s)", line), nil
	}
	return "", transpileErr(e, "unhandled expression %T", e)
}

func (t *Transpiler) stringLit(e *ast.StringLit) (string, error) {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, p := range e.Parts {
		if p.Expr == nil {
			sb.WriteString(strings.ReplaceAll(p.Literal, "$", "`$"))
			continue
		}
		if vexpr, ok := p.Expr.(*ast.VariableExpr); ok {
			sb.WriteString("$" + vexpr.Name)
			continue
		}
		v, err := t.expr(p.Expr)
		if err != nil {
			return "", err
		}
		sb.WriteString("$(" + v + ")")
	}
	sb.WriteByte('"')
	return sb.String(), nil
}

func (t *Transpiler) assignExpr(e *ast.AssignExpr) (string, error) {
	target, err := t.lvalue(e.Target)
	if err != nil {
		return "", err
	}
	val, err := t.expr(e.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", target, e.Op, val), nil
}

func (t *Transpiler) callExpr(e *ast.CallExpr) (string, error) {
	name, ok := e.Callee.(*ast.VariableExpr)
	if !ok {
		return "", transpileErr(e, "indirect calls cannot be transpiled to PowerShell")
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		v, err := t.expr(a)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	return fmt.Sprintf("%s %s", name.Name, strings.Join(args, " ")), nil
}

// binary renders e with PowerShell's native operators throughout
// (spec.md §6): comparisons use PowerShell's `-eq`/`-lt` family instead of
// Bash's `[[ ]]`/`(( ))` split, and arithmetic never needs an external
// bc-style helper since PowerShell's own `+`/`-`/`*`/`/` already do
// double-precision math.
func (t *Transpiler) binary(e *ast.BinaryExpr) (string, error) {
	left, err := t.expr(e.Left)
	if err != nil {
		return "", err
	}
	right, err := t.expr(e.Right)
	if err != nil {
		return "", err
	}
	if op, ok := comparisonOps[e.OpLit]; ok {
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	}
	if e.OpLit == "&&" {
		return fmt.Sprintf("(%s -and %s)", left, right), nil
	}
	if e.OpLit == "||" {
		return fmt.Sprintf("(%s -or %s)", left, right), nil
	}
	if e.OpLit == "**" {
		return fmt.Sprintf("[math]::Pow(%s, %s)", left, right), nil
	}
	return fmt.Sprintf("(%s %s %s)", left, e.OpLit, right), nil
}

var comparisonOps = map[string]string{
	"==": "-eq", "!=": "-ne",
	"<": "-lt", "<=": "-le", ">": "-gt", ">=": "-ge",
}
