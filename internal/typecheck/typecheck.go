// Package typecheck implements Commander's static type checker: lexically
// scoped VariableTable/VarInfo tables (spec.md §3) and the rule set of
// spec.md §4.4, including the alias/type-declaration and function-overload
// extensions restored from original_source/ (SPEC_FULL.md §6).
package typecheck

import (
	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/types"
)

// VarInfoKind distinguishes the four VarInfo variants spec.md's data model
// names: a plain variable binding, a (possibly overloaded) function, a
// user-declared type, or a user-declared alias.
type VarInfoKind int

const (
	KindVariable VarInfoKind = iota
	KindFunction
	KindType
	KindAlias
)

// Signature is one overload of a FunctionInfo.
type Signature struct {
	Params []*types.Type
	Return *types.Type
}

// VarInfo is one VariableTable entry.
type VarInfo struct {
	Kind      VarInfoKind
	Type      *types.Type  // KindVariable, KindType, KindAlias
	Const     bool         // KindVariable
	Overloads []Signature  // KindFunction
}

// scope is one lexical level of the VariableTable.
type scope struct {
	names map[string]*VarInfo
}

// VariableTable is the scope-stack symbol table the checker threads through
// a program: a slice of scopes, innermost last, mirroring spec.md §4.4's
// scope rules (lookup walks outward, declaration only ever mutates the
// innermost scope).
type VariableTable struct {
	scopes []*scope
}

// NewVariableTable creates a table seeded with one global scope, already
// populated with internal/builtin's function signatures via RegisterBuiltins
// (kept in this package, not internal/builtin, to avoid an import cycle).
func NewVariableTable() *VariableTable {
	vt := &VariableTable{scopes: []*scope{{names: map[string]*VarInfo{}}}}
	RegisterBuiltins(vt)
	return vt
}

func (vt *VariableTable) Push() { vt.scopes = append(vt.scopes, &scope{names: map[string]*VarInfo{}}) }
func (vt *VariableTable) Pop()  { vt.scopes = vt.scopes[:len(vt.scopes)-1] }

func (vt *VariableTable) top() *scope { return vt.scopes[len(vt.scopes)-1] }

// Declare adds info under name to the innermost scope, overwriting any
// prior KindVariable/KindType/KindAlias entry for that exact name. Declaring
// a function under a name that already holds a KindFunction entry appends
// an overload instead (SPEC_FULL.md §6 item 2) — same-scope only, exactly
// mirroring how a fresh `var` shadows an outer one but only within this
// scope.
func (vt *VariableTable) Declare(name string, info *VarInfo) {
	s := vt.top()
	if info.Kind == KindFunction {
		if existing, ok := s.names[name]; ok && existing.Kind == KindFunction {
			existing.Overloads = append(existing.Overloads, info.Overloads...)
			return
		}
	}
	s.names[name] = info
}

// Lookup walks outward from the innermost scope.
func (vt *VariableTable) Lookup(name string) (*VarInfo, bool) {
	for i := len(vt.scopes) - 1; i >= 0; i-- {
		if info, ok := vt.scopes[i].names[name]; ok {
			return info, true
		}
	}
	return nil, false
}

// Resolve follows a Named type to its underlying Type/Alias declaration.
func (vt *VariableTable) Resolve(t *types.Type) *types.Type {
	for t != nil && t.Kind == types.Named {
		info, ok := vt.Lookup(t.Name)
		if !ok || (info.Kind != KindType && info.Kind != KindAlias) {
			return t
		}
		t = info.Type
	}
	return t
}

// Checker walks a Program, validating every operation spec.md §4.4 names.
type Checker struct {
	vars      *VariableTable
	loopDepth int
	funcRet   []*types.Type // stack of enclosing function return types

	// Types records every expression's resolved type as it is checked, keyed
	// by node identity. internal/typecheck.Annotate reads it back to render
	// the "-t" annotated S-expression (spec.md §6: "-t additionally appends
	// ' : <Type>' to expression nodes").
	Types map[ast.Expr]*types.Type
}

func NewChecker(vars *VariableTable) *Checker {
	return &Checker{vars: vars, Types: map[ast.Expr]*types.Type{}}
}

// Check type-checks an entire program, returning the first violation found.
func (c *Checker) Check(p *ast.Program) error {
	for _, s := range p.Stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func typeErr(n ast.Node, format string, args ...any) error {
	return diagnostics.At(diagnostics.TypeError, n.Position(), format, args...)
}

func (c *Checker) resolveTypeExpr(t *ast.TypeExpr) *types.Type {
	switch {
	case t.Array != nil:
		return types.ArrayOf(c.resolveTypeExpr(t.Array))
	case t.Tuple != nil:
		elems := make([]*types.Type, len(t.Tuple))
		for i, e := range t.Tuple {
			elems[i] = c.resolveTypeExpr(e)
		}
		return types.TupleOf(elems)
	case t.Lambda != nil:
		params := make([]*types.Type, len(t.Lambda.Params))
		for i, p := range t.Lambda.Params {
			params[i] = c.resolveTypeExpr(p)
		}
		return types.LambdaOf(params, c.resolveTypeExpr(t.Lambda.Return))
	}
	switch t.Name {
	case "int":
		return types.IntType
	case "float":
		return types.FloatType
	case "bool":
		return types.BoolType
	case "string":
		return types.StringType
	default:
		return c.vars.Resolve(types.NamedType(t.Name))
	}
}

func (c *Checker) checkStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		return c.checkVarDecl(s)
	case *ast.TypeDecl:
		kind := KindType
		if s.Alias {
			kind = KindAlias
		}
		c.vars.Declare(s.Name, &VarInfo{Kind: kind, Type: c.resolveTypeExpr(s.Type)})
		return nil
	case *ast.Block:
		c.vars.Push()
		defer c.vars.Pop()
		for _, st := range s.Stmts {
			if err := c.checkStmt(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		_, err := c.checkExpr(s.Expr)
		return err
	case *ast.IfStmt:
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond.Kind != types.Bool {
			return typeErr(s.Cond, "if condition must be bool, got %s", cond)
		}
		if err := c.checkStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return c.checkStmt(s.Else)
		}
		return nil
	case *ast.WhileStmt:
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond.Kind != types.Bool {
			return typeErr(s.Cond, "while condition must be bool, got %s", cond)
		}
		c.loopDepth++
		defer func() { c.loopDepth-- }()
		return c.checkStmt(s.Body)
	case *ast.DoWhileStmt:
		c.loopDepth++
		if err := c.checkStmt(s.Body); err != nil {
			c.loopDepth--
			return err
		}
		c.loopDepth--
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond.Kind != types.Bool {
			return typeErr(s.Cond, "do-while condition must be bool, got %s", cond)
		}
		return nil
	case *ast.ForStmt:
		start, err := c.checkExpr(s.Start)
		if err != nil {
			return err
		}
		end, err := c.checkExpr(s.End)
		if err != nil {
			return err
		}
		if start.Kind != types.Int || end.Kind != types.Int {
			return typeErr(s, "for bounds must be int")
		}
		if s.Step != nil {
			step, err := c.checkExpr(s.Step)
			if err != nil {
				return err
			}
			if step.Kind != types.Int {
				return typeErr(s, "for step must be int")
			}
		}
		c.vars.Push()
		defer c.vars.Pop()
		c.vars.Declare(s.Name, &VarInfo{Kind: KindVariable, Type: types.IntType})
		c.loopDepth++
		defer func() { c.loopDepth-- }()
		return c.checkStmt(s.Body)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			return typeErr(s, "break outside of a loop")
		}
		return nil
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			return typeErr(s, "continue outside of a loop")
		}
		return nil
	case *ast.ReturnStmt:
		if len(c.funcRet) == 0 {
			return typeErr(s, "return outside of a function")
		}
		want := c.funcRet[len(c.funcRet)-1]
		if s.Value == nil {
			if want != nil {
				return typeErr(s, "missing return value of type %s", want)
			}
			return nil
		}
		got, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		if want == nil {
			return typeErr(s, "function returns nothing but a value was given")
		}
		if !types.AssignableTo(got, want) {
			return typeErr(s, "cannot return %s as %s", got, want)
		}
		return nil
	case *ast.PrintStmt:
		for _, a := range s.Args {
			if _, err := c.checkExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.ScanStmt:
		_, err := c.checkExpr(s.Target)
		return err
	case *ast.ReadStmt:
		_, err := c.checkExpr(s.Target)
		return err
	case *ast.WriteStmt:
		if _, err := c.checkExpr(s.Value); err != nil {
			return err
		}
		_, err := c.checkExpr(s.Target)
		return err
	case *ast.ImportStmt:
		return nil // resolved/expanded by internal/importer before checking
	case *ast.AssertStmt:
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond.Kind != types.Bool {
			return typeErr(s.Cond, "assert condition must be bool, got %s", cond)
		}
		if s.Message != nil {
			if _, err := c.checkExpr(s.Message); err != nil {
				return err
			}
		}
		return nil
	case *ast.TimeoutStmt:
		millis, err := c.checkExpr(s.Millis)
		if err != nil {
			return err
		}
		if millis.Kind != types.Int {
			return typeErr(s, "timeout duration must be int")
		}
		return c.checkStmt(s.Body)
	case *ast.CmdStmt:
		return c.checkPipeline(s.Pipeline)
	default:
		return typeErr(s, "unhandled statement %T", s)
	}
}

// checkVarDecl type-checks `name [: Type] = value;`. A bare lambda value
// (`greet = (n: string) -> string { ... };`) declares a function rather than
// a variable, so its name can carry multiple overloads (SPEC_FULL.md §6 item
// 2) the way repeated `greet = (...)` declarations in the same scope do —
// there is no dedicated function-declaration syntax. An untyped, non-const
// `name = value;` whose name already resolves to a variable reassigns that
// variable, which is rejected when it is const.
func (c *Checker) checkVarDecl(s *ast.VarDecl) error {
	if lam, ok := s.Value.(*ast.LambdaExpr); ok && s.Type == nil {
		got, err := c.checkExpr(lam)
		if err != nil {
			return err
		}
		c.vars.Declare(s.Name, &VarInfo{Kind: KindFunction, Overloads: []Signature{{Params: got.Params, Return: got.Return}}})
		return nil
	}
	if s.Type == nil && !s.Const && s.Value != nil {
		if info, ok := c.vars.Lookup(s.Name); ok && info.Kind == KindVariable {
			if info.Const {
				return typeErr(s, "cannot assign to const %q", s.Name)
			}
			got, err := c.checkExpr(s.Value)
			if err != nil {
				return err
			}
			if !types.AssignableTo(got, info.Type) {
				return typeErr(s, "cannot assign %s to %s %s", got, info.Type, s.Name)
			}
			return nil
		}
	}
	var declared *types.Type
	if s.Type != nil {
		declared = c.resolveTypeExpr(s.Type)
	}
	if s.Value != nil {
		got, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		if declared == nil {
			declared = got
		} else if !types.AssignableTo(got, declared) {
			return typeErr(s, "cannot assign %s to %s %s", got, declared, s.Name)
		}
	}
	c.vars.Declare(s.Name, &VarInfo{Kind: KindVariable, Type: declared, Const: s.Const})
	return nil
}

func (c *Checker) checkPipeline(p *ast.CmdPipeline) error {
	for _, stage := range p.Stages {
		if _, err := c.checkExpr(stage.Name); err != nil {
			return err
		}
		for _, a := range stage.Args {
			if _, err := c.checkExpr(a.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkExpr type-checks e and records its resolved type in c.Types before
// returning, so a later "-t" render can look any expression node's type back
// up without re-running inference.
func (c *Checker) checkExpr(e ast.Expr) (*types.Type, error) {
	t, err := c.checkExprKind(e)
	if err == nil {
		c.Types[e] = t
	}
	return t, err
}

func (c *Checker) checkExprKind(e ast.Expr) (*types.Type, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return types.IntType, nil
	case *ast.FloatLit:
		return types.FloatType, nil
	case *ast.BoolLit:
		return types.BoolType, nil
	case *ast.StringLit:
		for _, p := range e.Parts {
			if p.Expr != nil {
				if _, err := c.checkExpr(p.Expr); err != nil {
					return nil, err
				}
			}
		}
		return types.StringType, nil
	case *ast.ArrayLit:
		var elem *types.Type
		for _, el := range e.Elements {
			t, err := c.checkExpr(el)
			if err != nil {
				return nil, err
			}
			if elem == nil {
				elem = t
			} else if !types.Equal(elem, t) {
				return nil, typeErr(e, "array elements must share one type, got %s and %s", elem, t)
			}
		}
		if elem == nil {
			elem = types.IntType
		}
		return types.ArrayOf(elem), nil
	case *ast.TupleLit:
		elems := make([]*types.Type, len(e.Elements))
		for i, el := range e.Elements {
			t, err := c.checkExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.TupleOf(elems), nil
	case *ast.VariableExpr:
		info, ok := c.vars.Lookup(e.Name)
		if !ok {
			return nil, typeErr(e, "undeclared name %q", e.Name)
		}
		switch info.Kind {
		case KindVariable:
			return info.Type, nil
		case KindFunction:
			if len(info.Overloads) != 1 {
				return nil, typeErr(e, "%q is an overloaded function and must be called", e.Name)
			}
			return types.LambdaOf(info.Overloads[0].Params, info.Overloads[0].Return), nil
		default:
			return nil, typeErr(e, "%q does not name a value", e.Name)
		}
	case *ast.IndexExpr:
		base, err := c.checkExpr(e.Base)
		if err != nil {
			return nil, err
		}
		idx, err := c.checkExpr(e.Index)
		if err != nil {
			return nil, err
		}
		if idx.Kind != types.Int {
			return nil, typeErr(e.Index, "index must be int, got %s", idx)
		}
		if base.Kind != types.Array {
			return nil, typeErr(e.Base, "cannot index into %s", base)
		}
		return base.Elem, nil
	case *ast.AssignExpr:
		target, err := c.checkExpr(e.Target)
		if err != nil {
			return nil, err
		}
		if v, ok := e.Target.(*ast.VariableExpr); ok {
			if info, ok := c.vars.Lookup(v.Name); ok && info.Const {
				return nil, typeErr(e, "cannot assign to const %q", v.Name)
			}
		}
		val, err := c.checkExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if e.Op != "=" && !types.Numeric(target) {
			return nil, typeErr(e, "%s requires a numeric target, got %s", e.Op, target)
		}
		if !types.AssignableTo(val, target) {
			return nil, typeErr(e, "cannot assign %s to %s", val, target)
		}
		return target, nil
	case *ast.IncDecExpr:
		target, err := c.checkExpr(e.Target)
		if err != nil {
			return nil, err
		}
		if !types.Numeric(target) {
			return nil, typeErr(e, "%s requires a numeric target, got %s", e.Op, target)
		}
		return target, nil
	case *ast.BinaryExpr:
		return c.checkBinary(e)
	case *ast.UnaryExpr:
		right, err := c.checkExpr(e.Right)
		if err != nil {
			return nil, err
		}
		if e.OpLit == "!" {
			if right.Kind != types.Bool {
				return nil, typeErr(e, "'!' requires bool, got %s", right)
			}
			return types.BoolType, nil
		}
		if !types.Numeric(right) {
			return nil, typeErr(e, "unary '-' requires a number, got %s", right)
		}
		return right, nil
	case *ast.TernaryExpr:
		cond, err := c.checkExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		if cond.Kind != types.Bool {
			return nil, typeErr(e.Cond, "ternary condition must be bool, got %s", cond)
		}
		then, err := c.checkExpr(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.checkExpr(e.Else)
		if err != nil {
			return nil, err
		}
		result := types.Promote(then, els)
		if result == nil {
			return nil, typeErr(e, "ternary branches must share one type, got %s and %s", then, els)
		}
		return result, nil
	case *ast.CallExpr:
		return c.checkCall(e)
	case *ast.LambdaExpr:
		params := make([]*types.Type, len(e.Params))
		for i, p := range e.Params {
			params[i] = c.resolveTypeExpr(p.Type)
		}
		var ret *types.Type
		if e.ReturnType != nil {
			ret = c.resolveTypeExpr(e.ReturnType)
		}
		c.vars.Push()
		defer c.vars.Pop()
		for i, p := range e.Params {
			c.vars.Declare(p.Name, &VarInfo{Kind: KindVariable, Type: params[i]})
		}
		c.funcRet = append(c.funcRet, ret)
		defer func() { c.funcRet = c.funcRet[:len(c.funcRet)-1] }()
		for _, st := range e.Body.Stmts {
			if err := c.checkStmt(st); err != nil {
				return nil, err
			}
		}
		return types.LambdaOf(params, ret), nil
	case *ast.CmdExpr:
		if err := c.checkPipeline(e.Pipeline); err != nil {
			return nil, err
		}
		return types.StringType, nil
	default:
		return nil, typeErr(e, "unhandled expression %T", e)
	}
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) (*types.Type, error) {
	left, err := c.checkExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.checkExpr(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.OpLit {
	case "&&", "||":
		if left.Kind != types.Bool || right.Kind != types.Bool {
			return nil, typeErr(e, "%q requires bool operands, got %s and %s", e.OpLit, left, right)
		}
		return types.BoolType, nil
	case "==", "!=":
		if types.Promote(left, right) == nil && !types.Equal(left, right) {
			return nil, typeErr(e, "cannot compare %s and %s", left, right)
		}
		return types.BoolType, nil
	case "<", "<=", ">", ">=":
		if left.Kind == types.String && right.Kind == types.String {
			return types.BoolType, nil
		}
		if !types.Numeric(left) || !types.Numeric(right) {
			return nil, typeErr(e, "%q requires two numbers or two strings, got %s and %s", e.OpLit, left, right)
		}
		return types.BoolType, nil
	case "+":
		if left.Kind == types.String && right.Kind == types.String {
			return types.StringType, nil
		}
		if left.Kind == types.Array && right.Kind == types.Array {
			if !types.Equal(left.Elem, right.Elem) {
				return nil, typeErr(e, "cannot concatenate [%s] and [%s]", left.Elem, right.Elem)
			}
			return left, nil
		}
		fallthrough
	case "-", "*", "/", "%", "**":
		result := types.Promote(left, right)
		if result == nil {
			return nil, typeErr(e, "%q is not defined for %s and %s", e.OpLit, left, right)
		}
		return result, nil
	}
	return nil, typeErr(e, "unknown operator %q", e.OpLit)
}

func (c *Checker) checkCall(e *ast.CallExpr) (*types.Type, error) {
	name, ok := e.Callee.(*ast.VariableExpr)
	if !ok {
		callee, err := c.checkExpr(e.Callee)
		if err != nil {
			return nil, err
		}
		if callee.Kind != types.Lambda {
			return nil, typeErr(e, "cannot call %s", callee)
		}
		return c.checkArgs(e, callee.Params, callee.Return)
	}
	info, ok := c.vars.Lookup(name.Name)
	if !ok {
		return nil, typeErr(e, "undeclared function %q", name.Name)
	}
	if info.Kind == KindVariable {
		if info.Type != nil && info.Type.Kind == types.Lambda {
			return c.checkArgs(e, info.Type.Params, info.Type.Return)
		}
		return nil, typeErr(e, "%q is not callable", name.Name)
	}
	if info.Kind != KindFunction {
		return nil, typeErr(e, "%q is not callable", name.Name)
	}
	argTypes := make([]*types.Type, len(e.Args))
	for i, a := range e.Args {
		t, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}
	for _, sig := range info.Overloads {
		if overloadMatches(sig, argTypes) {
			return sig.Return, nil
		}
	}
	return nil, typeErr(e, "no overload of %q matches argument types %s", name.Name, typeListString(argTypes))
}

func (c *Checker) checkArgs(e *ast.CallExpr, params []*types.Type, ret *types.Type) (*types.Type, error) {
	if len(params) != len(e.Args) {
		return nil, typeErr(e, "expected %d arguments, got %d", len(params), len(e.Args))
	}
	for i, a := range e.Args {
		t, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}
		if !types.AssignableTo(t, params[i]) {
			return nil, typeErr(a, "argument %d: cannot use %s as %s", i+1, t, params[i])
		}
	}
	return ret, nil
}

func overloadMatches(sig Signature, args []*types.Type) bool {
	if len(sig.Params) != len(args) {
		return false
	}
	for i, p := range sig.Params {
		if !types.AssignableTo(args[i], p) {
			return false
		}
	}
	return true
}

func typeListString(ts []*types.Type) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}
