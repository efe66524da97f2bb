package typecheck

import (
	"strconv"
	"strings"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/types"
)

// Annotate renders prog the way "-t" does: the same parenthesized prefix
// form ast.Node.String() already produces for "-p", but with every
// expression node followed by " : <Type>" using the types a prior
// Checker.Check run recorded in its Types map (spec.md §6: "-t additionally
// appends ' : <Type>' to expression nodes"). Statements carry no type of
// their own and render exactly as ast.Node.String() would.
func Annotate(prog *ast.Program, checked map[ast.Expr]*types.Type) string {
	a := &annotator{types: checked}
	var sb strings.Builder
	for i, s := range prog.Stmts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(a.stmt(s))
	}
	return sb.String()
}

type annotator struct {
	types map[ast.Expr]*types.Type
}

func paren(op string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + op + ")"
	}
	return "(" + op + " " + strings.Join(parts, " ") + ")"
}

func (a *annotator) typed(e ast.Expr, rendered string) string {
	if t, ok := a.types[e]; ok && t != nil {
		return rendered + " : " + t.String()
	}
	return rendered
}

func (a *annotator) stmt(s ast.Stmt) string {
	switch s := s.(type) {
	case *ast.VarDecl:
		kw := "var"
		if s.Const {
			kw = "const"
		}
		parts := []string{s.Name}
		if s.Type != nil {
			parts = append(parts, ":", s.Type.String())
		}
		if s.Value != nil {
			parts = append(parts, "=", a.expr(s.Value))
		}
		return paren(kw, parts...)
	case *ast.TypeDecl:
		kw := "type"
		if s.Alias {
			kw = "alias"
		}
		return paren(kw, s.Name, "=", s.Type.String())
	case *ast.Block:
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, st := range s.Stmts {
			sb.WriteString("  " + strings.ReplaceAll(a.stmt(st), "\n", "\n  ") + "\n")
		}
		sb.WriteByte('}')
		return sb.String()
	case *ast.ExprStmt:
		return a.expr(s.Expr)
	case *ast.IfStmt:
		if s.Else != nil {
			return paren("if", a.expr(s.Cond), a.stmt(s.Then), a.stmt(s.Else))
		}
		return paren("if", a.expr(s.Cond), a.stmt(s.Then))
	case *ast.WhileStmt:
		return paren("while", a.expr(s.Cond), a.stmt(s.Body))
	case *ast.DoWhileStmt:
		return paren("do-while", a.stmt(s.Body), a.expr(s.Cond))
	case *ast.ForStmt:
		parts := []string{s.Name, "=", a.expr(s.Start), "to", a.expr(s.End)}
		if s.Step != nil {
			parts = append(parts, "step", a.expr(s.Step))
		}
		parts = append(parts, a.stmt(s.Body))
		return paren("for", parts...)
	case *ast.BreakStmt:
		return "(break)"
	case *ast.ContinueStmt:
		return "(continue)"
	case *ast.ReturnStmt:
		if s.Value == nil {
			return "(return)"
		}
		return paren("return", a.expr(s.Value))
	case *ast.PrintStmt:
		kw := "print"
		if s.Newline {
			kw = "println"
		}
		parts := make([]string, len(s.Args))
		for i, arg := range s.Args {
			parts[i] = a.expr(arg)
		}
		return paren(kw, parts...)
	case *ast.ScanStmt:
		return paren("scan", a.expr(s.Target))
	case *ast.ReadStmt:
		return paren("read", a.expr(s.Target))
	case *ast.WriteStmt:
		return paren("write", a.expr(s.Value), "->", a.expr(s.Target))
	case *ast.ImportStmt:
		return paren("import", strconv.Quote(s.Path))
	case *ast.AssertStmt:
		if s.Message != nil {
			return paren("assert", a.expr(s.Cond), a.expr(s.Message))
		}
		return paren("assert", a.expr(s.Cond))
	case *ast.TimeoutStmt:
		return paren("timeout", a.expr(s.Millis), a.stmt(s.Body))
	case *ast.CmdStmt:
		op := "cmd"
		if s.Background {
			op = "cmd&"
		}
		return paren(op, a.pipeline(s.Pipeline))
	default:
		return s.String()
	}
}

func (a *annotator) pipeline(p *ast.CmdPipeline) string {
	parts := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		argParts := make([]string, len(stage.Args))
		for j, arg := range stage.Args {
			argParts[j] = a.expr(arg.Value)
		}
		parts[i] = paren("exec", append([]string{a.expr(stage.Name)}, argParts...)...)
	}
	return paren("pipeline", parts...)
}

func (a *annotator) expr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit:
		return a.typed(e, e.String())
	case *ast.StringLit:
		var sb strings.Builder
		sb.WriteByte('"')
		for _, p := range e.Parts {
			if p.Expr != nil {
				sb.WriteString("${" + a.expr(p.Expr) + "}")
			} else {
				sb.WriteString(p.Literal)
			}
		}
		sb.WriteByte('"')
		return a.typed(e, sb.String())
	case *ast.ArrayLit:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = a.expr(el)
		}
		return a.typed(e, "["+strings.Join(parts, ", ")+"]")
	case *ast.TupleLit:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = a.expr(el)
		}
		return a.typed(e, "("+strings.Join(parts, ", ")+")")
	case *ast.VariableExpr:
		return a.typed(e, e.Name)
	case *ast.IndexExpr:
		return a.typed(e, paren("index", a.expr(e.Base), a.expr(e.Index)))
	case *ast.AssignExpr:
		return a.typed(e, paren(e.Op, a.expr(e.Target), a.expr(e.Value)))
	case *ast.IncDecExpr:
		return a.typed(e, paren(e.Op, a.expr(e.Target)))
	case *ast.BinaryExpr:
		return a.typed(e, paren(e.OpLit, a.expr(e.Left), a.expr(e.Right)))
	case *ast.UnaryExpr:
		return a.typed(e, paren(e.OpLit, a.expr(e.Right)))
	case *ast.TernaryExpr:
		return a.typed(e, paren("?:", a.expr(e.Cond), a.expr(e.Then), a.expr(e.Else)))
	case *ast.CallExpr:
		parts := make([]string, len(e.Args))
		for i, arg := range e.Args {
			parts[i] = a.expr(arg)
		}
		return a.typed(e, paren("call", append([]string{a.expr(e.Callee)}, parts...)...))
	case *ast.LambdaExpr:
		parts := make([]string, len(e.Params))
		for i, p := range e.Params {
			parts[i] = p.Name + ":" + p.Type.String()
		}
		return a.typed(e, paren("lambda", "("+strings.Join(parts, ", ")+")", a.stmt(e.Body)))
	case *ast.CmdExpr:
		return a.typed(e, paren("cmdsub", a.pipeline(e.Pipeline)))
	default:
		return e.String()
	}
}
