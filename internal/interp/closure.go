package interp

import (
	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/value"
)

// closure is a value.Callable built from a LambdaExpr: its parameter list,
// body, the scope it closed over, and the Interpreter it must re-enter to
// execute statements (spec.md's tree-walking evaluation, not a bytecode
// VM). Mirrors the teacher's LoxFunction, generalized with an explicit
// error return instead of runtimeError/os.Exit.
type closure struct {
	params []ast.Param
	body   *ast.Block
	scope  *Scope
	interp *Interpreter
}

func (c *closure) Arity() int { return len(c.params) }

func (c *closure) Call(args []value.Value) (value.Value, error) {
	callScope := NewScope(c.scope)
	for i, p := range c.params {
		callScope.Define(p.Name, args[i])
	}
	flow, err := c.interp.execBlock(c.body, callScope)
	if err != nil {
		return value.Value{}, err
	}
	if flow.kind == flowReturn {
		return flow.value, nil
	}
	return value.Value{}, nil
}

// overloadSet is the runtime counterpart of internal/typecheck's
// overload-accumulating VariableTable.Declare: multiple lambda
// declarations sharing one name are dispatched here by parameter types
// (each declared parameter type's text against the argument value's static
// type text), falling back to the first candidate of matching arity (the
// type checker has already rejected calls with no matching arity/
// type signature, so a mismatch here means a checker bug, not bad input,
// but is still reported as a RuntimeError rather than panicking).
type overloadSet struct {
	candidates []*closure
}

func (o *overloadSet) Arity() int { return -1 }

func (o *overloadSet) Call(args []value.Value) (value.Value, error) {
	for _, exact := range []bool{true, false} {
		for _, c := range o.candidates {
			if c.Arity() != len(args) {
				continue
			}
			match := true
			for i, p := range c.params {
				match = match && (!exact || p.Type == nil || args[i].Typ == nil || p.Type.String() == args[i].Typ.String())
			}
			if match {
				return c.Call(args)
			}
		}
	}
	return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "no overload accepts %d arguments", len(args))
}
