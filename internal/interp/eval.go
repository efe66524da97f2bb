package interp

import (
	"strings"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/types"
	"github.com/commander-lang/commander/internal/value"
)

// eval evaluates e in scope, mirroring the teacher's per-node Evaluate
// dispatch (codecrafters/cmd/evaluate.go) with an explicit error return.
func (in *Interpreter) eval(e ast.Expr, scope *Scope) (value.Value, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return value.Int64(e.Value), nil
	case *ast.FloatLit:
		return value.Float64(e.Value), nil
	case *ast.BoolLit:
		return value.Bool_(e.Value), nil
	case *ast.StringLit:
		return in.evalStringLit(e, scope)
	case *ast.ArrayLit:
		return in.evalArrayLit(e, scope)
	case *ast.TupleLit:
		return in.evalTupleLit(e, scope)
	case *ast.VariableExpr:
		if v, ok := scope.Get(e.Name); ok {
			return v, nil
		}
		if in.Builtins != nil {
			if fn, ok := in.Builtins.Lookup(e.Name); ok {
				return value.Fn(fn, nil), nil
			}
		}
		return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Pos, "undefined variable %q", e.Name)
	case *ast.IndexExpr:
		return in.evalIndex(e, scope)
	case *ast.AssignExpr:
		return in.evalAssign(e, scope)
	case *ast.IncDecExpr:
		return in.evalIncDec(e, scope)
	case *ast.BinaryExpr:
		return in.evalBinary(e, scope)
	case *ast.UnaryExpr:
		return in.evalUnary(e, scope)
	case *ast.TernaryExpr:
		cond, err := in.eval(e.Cond, scope)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Truthy() {
			return in.eval(e.Then, scope)
		}
		return in.eval(e.Else, scope)
	case *ast.CallExpr:
		return in.evalCall(e, scope)
	case *ast.LambdaExpr:
		return value.Fn(&closure{params: e.Params, body: e.Body, scope: scope, interp: in}, nil), nil
	case *ast.CmdExpr:
		out, err := in.runPipeline(e.Pipeline, false, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(strings.TrimRight(out, "\n")), nil
	}
	return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Position(), "unsupported expression %T", e)
}

func (in *Interpreter) evalStringLit(e *ast.StringLit, scope *Scope) (value.Value, error) {
	var sb strings.Builder
	for _, p := range e.Parts {
		if p.Expr == nil {
			sb.WriteString(p.Literal)
			continue
		}
		v, err := in.eval(p.Expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		sb.WriteString(v.String())
	}
	return value.Str(sb.String()), nil
}

func (in *Interpreter) evalArrayLit(e *ast.ArrayLit, scope *Scope) (value.Value, error) {
	elems := make([]value.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := in.eval(el, scope)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	var elem *types.Type
	if len(elems) > 0 {
		elem = elems[0].Typ
	}
	return value.Arr_(elem, elems), nil
}

func (in *Interpreter) evalTupleLit(e *ast.TupleLit, scope *Scope) (value.Value, error) {
	elems := make([]value.Value, len(e.Elements))
	elemTypes := make([]*types.Type, len(e.Elements))
	for i, el := range e.Elements {
		v, err := in.eval(el, scope)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
		elemTypes[i] = v.Typ
	}
	return value.Tup_(elems, types.TupleOf(elemTypes)), nil
}

func (in *Interpreter) evalIndex(e *ast.IndexExpr, scope *Scope) (value.Value, error) {
	base, err := in.eval(e.Base, scope)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := in.eval(e.Index, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch base.Kind {
	case value.Array:
		if idx.I < 0 || int(idx.I) >= len(base.Arr) {
			return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Pos, "index %d out of range", idx.I)
		}
		return base.Arr[idx.I], nil
	case value.Tuple:
		if idx.I < 0 || int(idx.I) >= len(base.Tup) {
			return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Pos, "index %d out of range", idx.I)
		}
		return base.Tup[idx.I], nil
	}
	return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Pos, "cannot index %s", base.Type())
}

func (in *Interpreter) evalAssign(e *ast.AssignExpr, scope *Scope) (value.Value, error) {
	rhs, err := in.eval(e.Value, scope)
	if err != nil {
		return value.Value{}, err
	}
	if e.Op != "=" {
		cur, err := in.eval(e.Target, scope)
		if err != nil {
			return value.Value{}, err
		}
		rhs, err = value.Arith(e.Pos, strings.TrimSuffix(e.Op, "="), cur, rhs)
		if err != nil {
			return value.Value{}, err
		}
	}
	if err := in.assignLValue(e.Target, rhs, scope); err != nil {
		return value.Value{}, err
	}
	return rhs, nil
}

// evalIncDec implements postfix ++/--, returning the value the target held
// before the update (matching the operator's use as an expression elsewhere
// in an assignment or argument position).
func (in *Interpreter) evalIncDec(e *ast.IncDecExpr, scope *Scope) (value.Value, error) {
	old, err := in.eval(e.Target, scope)
	if err != nil {
		return value.Value{}, err
	}
	op := "+"
	if e.Op == "--" {
		op = "-"
	}
	updated, err := value.Arith(e.Pos, op, old, value.Int64(1))
	if err != nil {
		return value.Value{}, err
	}
	if err := in.assignLValue(e.Target, updated, scope); err != nil {
		return value.Value{}, err
	}
	return old, nil
}

func (in *Interpreter) evalBinary(e *ast.BinaryExpr, scope *Scope) (value.Value, error) {
	left, err := in.eval(e.Left, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch e.OpLit {
	case "&&":
		if !left.Truthy() {
			return value.Bool_(false), nil
		}
		right, err := in.eval(e.Right, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool_(right.Truthy()), nil
	case "||":
		if left.Truthy() {
			return value.Bool_(true), nil
		}
		right, err := in.eval(e.Right, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool_(right.Truthy()), nil
	}
	right, err := in.eval(e.Right, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch e.OpLit {
	case "==":
		return value.Bool_(value.Equal(left, right)), nil
	case "!=":
		return value.Bool_(!value.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return value.Compare(e.Pos, e.OpLit, left, right)
	default:
		return value.Arith(e.Pos, e.OpLit, left, right)
	}
}

func (in *Interpreter) evalUnary(e *ast.UnaryExpr, scope *Scope) (value.Value, error) {
	v, err := in.eval(e.Right, scope)
	if err != nil {
		return value.Value{}, err
	}
	if e.OpLit == "!" {
		return value.Not(e.Pos, v)
	}
	return value.Negate(e.Pos, v)
}

func (in *Interpreter) evalCall(e *ast.CallExpr, scope *Scope) (value.Value, error) {
	callee, err := in.eval(e.Callee, scope)
	if err != nil {
		return value.Value{}, err
	}
	if callee.Kind != value.Lambda {
		return value.Value{}, diagnostics.At(diagnostics.RuntimeError, e.Pos, "%s is not callable", callee.Type())
	}
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := in.eval(a, scope)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	return callee.Fn.Call(args)
}
