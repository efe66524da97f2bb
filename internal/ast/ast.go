// Package ast defines Commander's abstract syntax tree: the node families
// produced by internal/parser and consumed by internal/typecheck and
// internal/interp. Every node owns its children outright (no sharing), and
// every node has a deterministic String() that renders the same
// parenthesized, prefix form the "-p" CLI mode prints (spec.md §6).
package ast

import (
	"strconv"
	"strings"

	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/token"
)

// Node is the root interface every AST node implements.
type Node interface {
	Position() source.Position
	String() string
}

// Stmt is anything that can appear in a statement list.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is anything that evaluates to a CType at runtime.
type Expr interface {
	Node
	exprNode()
}

// LValue is an expression usable on the left of an assignment: a bare
// variable or an indexed access into one.
type LValue interface {
	Expr
	lvalueNode()
}

func paren(op string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + op + ")"
	}
	return "(" + op + " " + strings.Join(parts, " ") + ")"
}

// ---------------------------------------------------------------- Program

// Program is the root node: an ordered list of top-level statements,
// typically led by zero or more ImportStmt nodes.
type Program struct {
	Pos   source.Position
	Stmts []Stmt
}

func (p *Program) Position() source.Position { return p.Pos }
func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Stmts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ------------------------------------------------------------------ Types

// TypeExpr is the AST form of a type annotation: a base keyword
// (int/float/bool/string), an alias name, an array ("[T]"), or a tuple
// ("(T, T, ...)"), mirroring spec.md's Type data model before it is
// resolved by internal/types.
type TypeExpr struct {
	Pos     source.Position
	Name    string // "int" | "float" | "bool" | "string" | an alias identifier
	Array   *TypeExpr
	Tuple   []*TypeExpr
	Lambda  *LambdaType
}

// LambdaType is a function type: (T, T) -> T.
type LambdaType struct {
	Params []*TypeExpr
	Return *TypeExpr
}

func (t *TypeExpr) Position() source.Position { return t.Pos }
func (t *TypeExpr) String() string {
	switch {
	case t.Array != nil:
		return "[" + t.Array.String() + "]"
	case t.Tuple != nil:
		parts := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case t.Lambda != nil:
		parts := make([]string, len(t.Lambda.Params))
		for i, p := range t.Lambda.Params {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + t.Lambda.Return.String()
	default:
		return t.Name
	}
}

// --------------------------------------------------------------- Bindings

// Param is one formal parameter of a function/lambda declaration.
type Param struct {
	Name string
	Type *TypeExpr
}

// ------------------------------------------------------------- Statements

// VarDecl declares a variable, optionally const and optionally typed.
// Either Type or Value (or both) must be present.
type VarDecl struct {
	Pos   source.Position
	Name  string
	Const bool
	Type  *TypeExpr // nil when inferred from Value
	Value Expr      // nil when only a type annotation is given
}

func (d *VarDecl) Position() source.Position { return d.Pos }
func (d *VarDecl) stmtNode()                 {}
func (d *VarDecl) String() string {
	kw := "var"
	if d.Const {
		kw = "const"
	}
	parts := []string{d.Name}
	if d.Type != nil {
		parts = append(parts, ":", d.Type.String())
	}
	if d.Value != nil {
		parts = append(parts, "=", d.Value.String())
	}
	return paren(kw, parts...)
}

// TypeDecl implements the `type`/`alias` declarations restored from
// original_source/ (SPEC_FULL.md §6 item 1): `type Name = TypeExpr` or
// `alias Name = TypeExpr` (aliases are always backed by string at runtime).
type TypeDecl struct {
	Pos   source.Position
	Alias bool
	Name  string
	Type  *TypeExpr
}

func (d *TypeDecl) Position() source.Position { return d.Pos }
func (d *TypeDecl) stmtNode()                 {}
func (d *TypeDecl) String() string {
	kw := "type"
	if d.Alias {
		kw = "alias"
	}
	return paren(kw, d.Name, "=", d.Type.String())
}

// Block is a lexically scoped statement list.
type Block struct {
	Pos   source.Position
	Stmts []Stmt
}

func (b *Block) Position() source.Position { return b.Pos }
func (b *Block) stmtNode()                 {}
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString("  " + strings.ReplaceAll(s.String(), "\n", "\n  ") + "\n")
	}
	sb.WriteByte('}')
	return sb.String()
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Pos  source.Position
	Expr Expr
}

func (s *ExprStmt) Position() source.Position { return s.Pos }
func (s *ExprStmt) stmtNode()                 {}
func (s *ExprStmt) String() string             { return s.Expr.String() }

// IfStmt is `if (cond) then [else else_]`.
type IfStmt struct {
	Pos    source.Position
	Cond   Expr
	Then   Stmt
	Else   Stmt // nil if absent
}

func (s *IfStmt) Position() source.Position { return s.Pos }
func (s *IfStmt) stmtNode()                 {}
func (s *IfStmt) String() string {
	if s.Else != nil {
		return paren("if", s.Cond.String(), s.Then.String(), s.Else.String())
	}
	return paren("if", s.Cond.String(), s.Then.String())
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Pos  source.Position
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) Position() source.Position { return s.Pos }
func (s *WhileStmt) stmtNode()                 {}
func (s *WhileStmt) String() string            { return paren("while", s.Cond.String(), s.Body.String()) }

// DoWhileStmt is `do body while (cond)`.
type DoWhileStmt struct {
	Pos  source.Position
	Body Stmt
	Cond Expr
}

func (s *DoWhileStmt) Position() source.Position { return s.Pos }
func (s *DoWhileStmt) stmtNode()                 {}
func (s *DoWhileStmt) String() string {
	return paren("do-while", s.Body.String(), s.Cond.String())
}

// ForStmt is `for (name = start to end [step stepExpr]) body`, the bounded
// counting loop spec.md's `to` keyword drives.
type ForStmt struct {
	Pos   source.Position
	Name  string
	Start Expr
	End   Expr
	Step  Expr // nil when implicitly 1
	Body  Stmt
}

func (s *ForStmt) Position() source.Position { return s.Pos }
func (s *ForStmt) stmtNode()                 {}
func (s *ForStmt) String() string {
	parts := []string{s.Name, "=", s.Start.String(), "to", s.End.String()}
	if s.Step != nil {
		parts = append(parts, "step", s.Step.String())
	}
	parts = append(parts, s.Body.String())
	return paren("for", parts...)
}

// BreakStmt and ContinueStmt carry no payload beyond their position.
type BreakStmt struct{ Pos source.Position }

func (s *BreakStmt) Position() source.Position { return s.Pos }
func (s *BreakStmt) stmtNode()                 {}
func (s *BreakStmt) String() string            { return "(break)" }

type ContinueStmt struct{ Pos source.Position }

func (s *ContinueStmt) Position() source.Position { return s.Pos }
func (s *ContinueStmt) stmtNode()                 {}
func (s *ContinueStmt) String() string            { return "(continue)" }

// ReturnStmt optionally carries a value expression.
type ReturnStmt struct {
	Pos   source.Position
	Value Expr // nil for a bare `return;`
}

func (s *ReturnStmt) Position() source.Position { return s.Pos }
func (s *ReturnStmt) stmtNode()                 {}
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return paren("return", s.Value.String())
}

// PrintStmt renders one or more expressions; Newline selects print vs
// println.
type PrintStmt struct {
	Pos     source.Position
	Args    []Expr
	Newline bool
}

func (s *PrintStmt) Position() source.Position { return s.Pos }
func (s *PrintStmt) stmtNode()                 {}
func (s *PrintStmt) String() string {
	kw := "print"
	if s.Newline {
		kw = "println"
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return paren(kw, parts...)
}

// ScanStmt reads one line of stdin into an lvalue; ReadStmt reads a single
// token. Both are spec.md's interactive-input statements.
type ScanStmt struct {
	Pos    source.Position
	Target LValue
}

func (s *ScanStmt) Position() source.Position { return s.Pos }
func (s *ScanStmt) stmtNode()                 {}
func (s *ScanStmt) String() string            { return paren("scan", s.Target.String()) }

type ReadStmt struct {
	Pos    source.Position
	Target LValue
}

func (s *ReadStmt) Position() source.Position { return s.Pos }
func (s *ReadStmt) stmtNode()                 {}
func (s *ReadStmt) String() string            { return paren("read", s.Target.String()) }

// WriteStmt appends an expression's text to the file whose path the target
// expression names (spec.md's `write expr -> target`).
type WriteStmt struct {
	Pos    source.Position
	Value  Expr
	Target Expr
}

func (s *WriteStmt) Position() source.Position { return s.Pos }
func (s *WriteStmt) stmtNode()                 {}
func (s *WriteStmt) String() string {
	return paren("write", s.Value.String(), "->", s.Target.String())
}

// ImportStmt loads and splices another Commander source file by path.
type ImportStmt struct {
	Pos  source.Position
	Path string
}

func (s *ImportStmt) Position() source.Position { return s.Pos }
func (s *ImportStmt) stmtNode()                 {}
func (s *ImportStmt) String() string            { return paren("import", strconv.Quote(s.Path)) }

// AssertStmt fails the program with a RuntimeError when Cond is false.
type AssertStmt struct {
	Pos     source.Position
	Cond    Expr
	Message Expr // nil when no message was given
}

func (s *AssertStmt) Position() source.Position { return s.Pos }
func (s *AssertStmt) stmtNode()                 {}
func (s *AssertStmt) String() string {
	if s.Message != nil {
		return paren("assert", s.Cond.String(), s.Message.String())
	}
	return paren("assert", s.Cond.String())
}

// TimeoutStmt bounds Body's execution time; spec.md §4.6 requires this to
// cooperatively check elapsed time at loop back-edges and call boundaries
// rather than preempting the goroutine.
type TimeoutStmt struct {
	Pos     source.Position
	Millis  Expr
	Body    Stmt
}

func (s *TimeoutStmt) Position() source.Position { return s.Pos }
func (s *TimeoutStmt) stmtNode()                 {}
func (s *TimeoutStmt) String() string {
	return paren("timeout", s.Millis.String(), s.Body.String())
}

// CmdStmt runs a command pipeline as a statement; Background schedules it
// without waiting (spec.md §4.7's `&` operator).
type CmdStmt struct {
	Pos        source.Position
	Pipeline   *CmdPipeline
	Background bool
}

func (s *CmdStmt) Position() source.Position { return s.Pos }
func (s *CmdStmt) stmtNode()                 {}
func (s *CmdStmt) String() string {
	if s.Background {
		return paren("cmd&", s.Pipeline.String())
	}
	return paren("cmd", s.Pipeline.String())
}

// ------------------------------------------------------------ Expressions

// IntLit, FloatLit, BoolLit are scalar literals.
type IntLit struct {
	Pos   source.Position
	Value int64
}

func (e *IntLit) Position() source.Position { return e.Pos }
func (e *IntLit) exprNode()                 {}
func (e *IntLit) String() string            { return strconv.FormatInt(e.Value, 10) }

type FloatLit struct {
	Pos   source.Position
	Value float64
}

func (e *FloatLit) Position() source.Position { return e.Pos }
func (e *FloatLit) exprNode()                 {}
func (e *FloatLit) String() string            { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

type BoolLit struct {
	Pos   source.Position
	Value bool
}

func (e *BoolLit) Position() source.Position { return e.Pos }
func (e *BoolLit) exprNode()                 {}
func (e *BoolLit) String() string            { return strconv.FormatBool(e.Value) }

// StringLit carries the same literal/interpolated-parts structure the
// lexer built (token.StringInfo), reparsed into expression parts: a
// PartLiteral becomes a literal run, a PartTokens run is parsed into one
// Expr by the parser before the AST is built.
type StringLit struct {
	Pos    source.Position
	Format bool
	Parts  []StringPart
}

// StringPart is either a literal run or a spliced expression.
type StringPart struct {
	Literal string
	Expr    Expr // nil when this part is a literal run
}

func (e *StringLit) Position() source.Position { return e.Pos }
func (e *StringLit) exprNode()                 {}
func (e *StringLit) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, p := range e.Parts {
		if p.Expr != nil {
			sb.WriteString("${" + p.Expr.String() + "}")
		} else {
			sb.WriteString(p.Literal)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ArrayLit and TupleLit are literal aggregates.
type ArrayLit struct {
	Pos      source.Position
	Elements []Expr
}

func (e *ArrayLit) Position() source.Position { return e.Pos }
func (e *ArrayLit) exprNode()                 {}
func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type TupleLit struct {
	Pos      source.Position
	Elements []Expr
}

func (e *TupleLit) Position() source.Position { return e.Pos }
func (e *TupleLit) exprNode()                 {}
func (e *TupleLit) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// VariableExpr references a bound name. It is an LValue.
type VariableExpr struct {
	Pos  source.Position
	Name string
}

func (e *VariableExpr) Position() source.Position { return e.Pos }
func (e *VariableExpr) exprNode()                 {}
func (e *VariableExpr) lvalueNode()               {}
func (e *VariableExpr) String() string            { return e.Name }

// IndexExpr is `base[index]`, also an LValue.
type IndexExpr struct {
	Pos   source.Position
	Base  Expr
	Index Expr
}

func (e *IndexExpr) Position() source.Position { return e.Pos }
func (e *IndexExpr) exprNode()                 {}
func (e *IndexExpr) lvalueNode()               {}
func (e *IndexExpr) String() string {
	return paren("index", e.Base.String(), e.Index.String())
}

// AssignExpr is `lvalue op= rhs`; Op is "=" for a plain assignment or one
// of "+="/"-="/"*="/"/="/"%="/"**=".
type AssignExpr struct {
	Pos    source.Position
	Target LValue
	Op     string
	Value  Expr
}

func (e *AssignExpr) Position() source.Position { return e.Pos }
func (e *AssignExpr) exprNode()                 {}
func (e *AssignExpr) String() string {
	return paren(e.Op, e.Target.String(), e.Value.String())
}

// IncDecExpr is `lvalue++`/`lvalue--`.
type IncDecExpr struct {
	Pos    source.Position
	Target LValue
	Op     string // "++" or "--"
}

func (e *IncDecExpr) Position() source.Position { return e.Pos }
func (e *IncDecExpr) exprNode()                 {}
func (e *IncDecExpr) String() string            { return paren(e.Op, e.Target.String()) }

// BinaryExpr covers arithmetic, comparison, and logical binary operators.
type BinaryExpr struct {
	Pos   source.Position
	Op    token.Kind
	OpLit string
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) Position() source.Position { return e.Pos }
func (e *BinaryExpr) exprNode()                 {}
func (e *BinaryExpr) String() string {
	return paren(e.OpLit, e.Left.String(), e.Right.String())
}

// UnaryExpr covers unary minus and logical not.
type UnaryExpr struct {
	Pos   source.Position
	Op    token.Kind
	OpLit string
	Right Expr
}

func (e *UnaryExpr) Position() source.Position { return e.Pos }
func (e *UnaryExpr) exprNode()                 {}
func (e *UnaryExpr) String() string            { return paren(e.OpLit, e.Right.String()) }

// TernaryExpr is `cond ? then : else_`.
type TernaryExpr struct {
	Pos  source.Position
	Cond Expr
	Then Expr
	Else Expr
}

func (e *TernaryExpr) Position() source.Position { return e.Pos }
func (e *TernaryExpr) exprNode()                 {}
func (e *TernaryExpr) String() string {
	return paren("?:", e.Cond.String(), e.Then.String(), e.Else.String())
}

// CallExpr invokes a named function (resolved/overload-picked by
// internal/typecheck) or a lambda value.
type CallExpr struct {
	Pos    source.Position
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) Position() source.Position { return e.Pos }
func (e *CallExpr) exprNode()                 {}
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return paren("call", append([]string{e.Callee.String()}, parts...)...)
}

// LambdaExpr is an anonymous function value.
type LambdaExpr struct {
	Pos        source.Position
	Params     []Param
	ReturnType *TypeExpr
	Body       *Block
}

func (e *LambdaExpr) Position() source.Position { return e.Pos }
func (e *LambdaExpr) exprNode()                 {}
func (e *LambdaExpr) String() string {
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		parts[i] = p.Name + ":" + p.Type.String()
	}
	return paren("lambda", "("+strings.Join(parts, ", ")+")", e.Body.String())
}

// CmdExpr is a backtick command-substitution expression, capturing the
// pipeline's stdout as a string (spec.md §4.7).
type CmdExpr struct {
	Pos      source.Position
	Pipeline *CmdPipeline
}

func (e *CmdExpr) Position() source.Position { return e.Pos }
func (e *CmdExpr) exprNode()                 {}
func (e *CmdExpr) String() string            { return paren("cmdsub", e.Pipeline.String()) }

// -------------------------------------------------------------- Commands

// CmdArg is one bareword/interpolated-string argument of a command.
type CmdArg struct {
	Pos   source.Position
	Value Expr // *StringLit (possibly interpolated) or a spliced $var
}

// CmdCall is a single process invocation within a pipeline.
type CmdCall struct {
	Pos  source.Position
	Name Expr
	Args []CmdArg
}

func (c *CmdCall) Position() source.Position { return c.Pos }
func (c *CmdCall) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.Value.String()
	}
	return paren("exec", append([]string{c.Name.String()}, parts...)...)
}

// CmdPipeline chains one or more CmdCall stages connected by `|`.
type CmdPipeline struct {
	Pos    source.Position
	Stages []*CmdCall
}

func (p *CmdPipeline) Position() source.Position { return p.Pos }
func (p *CmdPipeline) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return paren("pipeline", parts...)
}
