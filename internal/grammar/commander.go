package grammar

import (
	"strconv"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/token"
)

// parseInt/parseFloat convert an already-lexer-validated numeric lexeme;
// the lexer only ever produces well-formed digit runs, so a parse failure
// here would mean a lexer bug, not bad input.
func parseInt(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

func parseFloat(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}

// ParseExprTokens is installed once by internal/parser at construction
// time: it re-enters the table-driven parse for one balanced
// `${ ... }`/`{ ... }` sub-token run captured by the lexer's string
// interpolation scanning, producing the single Expr it represents. This
// package cannot import internal/parser directly (parser already imports
// grammar to build its tables), so the dependency is inverted: parser
// installs the hook, and the StringLit-building Reduce closures below call
// it whenever a token.StringInfo part carries a nested token run.
var ParseExprTokens func(toks []token.Token) (ast.Expr, error)

// Commander is the full Commander grammar: statements, the full
// expression-precedence chain (assignment, ternary, logic-or/and,
// equality, relational, additive, multiplicative, power, unary, postfix,
// primary), and the command-pipeline sublanguage, built directly against
// the internal/ast node set.
//
// Priority follows declaration order below (lower index wins a
// reduce/reduce conflict); shift always wins a shift/reduce conflict
// (internal/lrgen.resolveConflict), which is what gives
// `if (a) if (b) s1; else s2;` the usual nearest-if binding and makes the
// dangling-else case unambiguous without a dedicated rule.
var Commander = &Grammar{Start: "Program", Productions: commanderProductions()}

func asExpr(si StackItem) ast.Expr         { return si.Value.(ast.Expr) }
func asStmt(si StackItem) ast.Stmt         { return si.Value.(ast.Stmt) }
func asStmts(si StackItem) []ast.Stmt      { return si.Value.([]ast.Stmt) }
func asExprs(si StackItem) []ast.Expr      { return si.Value.([]ast.Expr) }
func asType(si StackItem) *ast.TypeExpr    { return si.Value.(*ast.TypeExpr) }
func asTypes(si StackItem) []*ast.TypeExpr { return si.Value.([]*ast.TypeExpr) }
func asParam(si StackItem) ast.Param       { return si.Value.(ast.Param) }
func asParams(si StackItem) []ast.Param    { return si.Value.([]ast.Param) }
func asCmdArg(si StackItem) ast.CmdArg     { return si.Value.(ast.CmdArg) }
func asCmdArgs(si StackItem) []ast.CmdArg  { return si.Value.([]ast.CmdArg) }
func asCmdCall(si StackItem) *ast.CmdCall  { return si.Value.(*ast.CmdCall) }
func asPipeline(si StackItem) *ast.CmdPipeline {
	return si.Value.(*ast.CmdPipeline)
}

// asLValue requires e to be one of the AST's LValue variants (VariableExpr,
// IndexExpr); everything else is a structural parse error rather than a
// type error, since "assign to a literal" is a shape violation, not a type
// mismatch (the split is kept deliberately narrow: the
// grammar stays unambiguous by reducing assignment/inc-dec targets through
// the ordinary Expr chain and checking the LValue constraint here instead
// of threading a parallel LValue production through the grammar).
func asLValue(e ast.Expr) (ast.LValue, error) {
	if lv, ok := e.(ast.LValue); ok {
		return lv, nil
	}
	return nil, diagnostics.At(diagnostics.ParseError, e.Position(), "expression is not assignable")
}

// buildStringLit turns one STRINGVAL/STRINGLITERAL token into an
// *ast.StringLit, recursively parsing each interpolated sub-token run via
// ParseExprTokens.
func buildStringLit(tok token.Token) (*ast.StringLit, error) {
	if tok.Kind != token.STRINGVAL {
		return &ast.StringLit{Pos: tok.Position, Parts: []ast.StringPart{{Literal: tok.Lexeme}}}, nil
	}
	parts := make([]ast.StringPart, 0, len(tok.Str.Parts))
	for _, part := range tok.Str.Parts {
		if part.Kind == token.PartLiteral {
			parts = append(parts, ast.StringPart{Literal: part.Literal})
			continue
		}
		expr, err := ParseExprTokens(part.Tokens)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.StringPart{Expr: expr})
	}
	return &ast.StringLit{Pos: tok.Position, Format: tok.Str.Format, Parts: parts}, nil
}

// literalText wraps a bareword token's raw text as a single-part StringLit,
// for command names/arguments that aren't a `$name` substitution.
func literalText(tok token.Token) *ast.StringLit {
	return &ast.StringLit{Pos: tok.Position, Parts: []ast.StringPart{{Literal: tok.Lexeme}}}
}

func commanderProductions() []Production {
	var prods []Production
	add := func(lhs string, rhs []Symbol, reduce Reduce) {
		prods = append(prods, Production{LHS: lhs, RHS: rhs, Priority: len(prods), Reduce: reduce})
	}

	// ------------------------------------------------------------ Program

	add("Program", []Symbol{N("StmtList")}, func(rhs []StackItem) (any, error) {
		stmts := asStmts(rhs[0])
		var pos = ast.Program{Stmts: stmts}
		if len(stmts) > 0 {
			pos.Pos = stmts[0].Position()
		}
		return &pos, nil
	})

	add("StmtList", []Symbol{}, func(rhs []StackItem) (any, error) {
		return []ast.Stmt{}, nil
	})
	add("StmtList", []Symbol{N("StmtList"), N("Stmt")}, func(rhs []StackItem) (any, error) {
		return append(asStmts(rhs[0]), asStmt(rhs[1])), nil
	})

	// -------------------------------------------------------------- Block

	add("Block", []Symbol{T(token.LBRACE), N("StmtList"), T(token.RBRACE)}, func(rhs []StackItem) (any, error) {
		return &ast.Block{Pos: rhs[0].Tok.Position, Stmts: asStmts(rhs[1])}, nil
	})
	add("Stmt", []Symbol{N("Block")}, func(rhs []StackItem) (any, error) { return asStmt(rhs[0]), nil })

	// --------------------------------------------------------------- Type

	add("Type", []Symbol{T(token.INT)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Name: "int"}, nil
	})
	add("Type", []Symbol{T(token.FLOAT)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Name: "float"}, nil
	})
	add("Type", []Symbol{T(token.BOOL)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Name: "bool"}, nil
	})
	add("Type", []Symbol{T(token.STRING_KW)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Name: "string"}, nil
	})
	add("Type", []Symbol{T(token.VARIABLE)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme}, nil
	})
	add("Type", []Symbol{T(token.LBRACKET), N("Type"), T(token.RBRACKET)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Array: asType(rhs[1])}, nil
	})
	add("Type", []Symbol{T(token.LPAREN), N("TypeList"), T(token.RPAREN)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Tuple: asTypes(rhs[1])}, nil
	})
	add("Type", []Symbol{T(token.LPAREN), N("TypeListOpt"), T(token.RPAREN), T(token.ARROW), N("Type")}, func(rhs []StackItem) (any, error) {
		return &ast.TypeExpr{Pos: rhs[0].Tok.Position, Lambda: &ast.LambdaType{Params: asTypes(rhs[1]), Return: asType(rhs[4])}}, nil
	})

	add("TypeList", []Symbol{N("Type"), T(token.COMMA), N("Type")}, func(rhs []StackItem) (any, error) {
		return []*ast.TypeExpr{asType(rhs[0]), asType(rhs[2])}, nil
	})
	add("TypeList", []Symbol{N("TypeList"), T(token.COMMA), N("Type")}, func(rhs []StackItem) (any, error) {
		return append(asTypes(rhs[0]), asType(rhs[2])), nil
	})
	add("TypeListOpt", []Symbol{}, func(rhs []StackItem) (any, error) { return []*ast.TypeExpr{}, nil })
	add("TypeListOpt", []Symbol{N("Type")}, func(rhs []StackItem) (any, error) {
		return []*ast.TypeExpr{asType(rhs[0])}, nil
	})
	add("TypeListOpt", []Symbol{N("TypeList")}, func(rhs []StackItem) (any, error) { return asTypes(rhs[0]), nil })

	// ------------------------------------------------------------- Params

	add("Param", []Symbol{T(token.VARIABLE), T(token.COLON), N("Type")}, func(rhs []StackItem) (any, error) {
		return ast.Param{Name: rhs[0].Tok.Lexeme, Type: asType(rhs[2])}, nil
	})
	add("ParamList", []Symbol{N("Param")}, func(rhs []StackItem) (any, error) {
		return []ast.Param{asParam(rhs[0])}, nil
	})
	add("ParamList", []Symbol{N("ParamList"), T(token.COMMA), N("Param")}, func(rhs []StackItem) (any, error) {
		return append(asParams(rhs[0]), asParam(rhs[2])), nil
	})
	add("ParamListOpt", []Symbol{}, func(rhs []StackItem) (any, error) { return []ast.Param{}, nil })
	add("ParamListOpt", []Symbol{N("ParamList")}, func(rhs []StackItem) (any, error) { return asParams(rhs[0]), nil })

	// ----------------------------------------------------------- VarDecl
	//
	// There is no dedicated function-declaration syntax: `name = (params)
	// -> Type { body }` declares a function exactly the way any other
	// lambda-valued VarDecl does (internal/typecheck.checkVarDecl special-
	// cases a LambdaExpr value to register it as an overloadable
	// KindFunction instead of a KindVariable).

	add("Stmt", []Symbol{T(token.VARIABLE), T(token.COLON), N("Type"), T(token.EQUAL), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.VarDecl{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme, Type: asType(rhs[2]), Value: asExpr(rhs[4])}, nil
	})
	add("Stmt", []Symbol{T(token.VARIABLE), T(token.COLON), N("Type"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.VarDecl{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme, Type: asType(rhs[2])}, nil
	})
	add("Stmt", []Symbol{T(token.VARIABLE), T(token.EQUAL), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.VarDecl{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme, Value: asExpr(rhs[2])}, nil
	})
	add("Stmt", []Symbol{T(token.CONST), T(token.VARIABLE), T(token.COLON), N("Type"), T(token.EQUAL), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.VarDecl{Pos: rhs[0].Tok.Position, Name: rhs[1].Tok.Lexeme, Const: true, Type: asType(rhs[3]), Value: asExpr(rhs[5])}, nil
	})
	add("Stmt", []Symbol{T(token.CONST), T(token.VARIABLE), T(token.EQUAL), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.VarDecl{Pos: rhs[0].Tok.Position, Name: rhs[1].Tok.Lexeme, Const: true, Value: asExpr(rhs[3])}, nil
	})

	// --------------------------------------------------------- TypeDecl

	add("Stmt", []Symbol{T(token.TYPE), T(token.VARIABLE), T(token.EQUAL), N("Type"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeDecl{Pos: rhs[0].Tok.Position, Name: rhs[1].Tok.Lexeme, Type: asType(rhs[3])}, nil
	})
	add("Stmt", []Symbol{T(token.ALIAS), T(token.VARIABLE), T(token.EQUAL), N("Type"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.TypeDecl{Pos: rhs[0].Tok.Position, Alias: true, Name: rhs[1].Tok.Lexeme, Type: asType(rhs[3])}, nil
	})

	// -------------------------------------------------------------- Expr

	add("Stmt", []Symbol{N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		e := asExpr(rhs[0])
		return &ast.ExprStmt{Pos: e.Position(), Expr: e}, nil
	})

	// ---------------------------------------------------------------- If

	add("Stmt", []Symbol{T(token.IF), T(token.LPAREN), N("Expr"), T(token.RPAREN), N("Stmt")}, func(rhs []StackItem) (any, error) {
		return &ast.IfStmt{Pos: rhs[0].Tok.Position, Cond: asExpr(rhs[2]), Then: asStmt(rhs[4])}, nil
	})
	add("Stmt", []Symbol{T(token.IF), T(token.LPAREN), N("Expr"), T(token.RPAREN), N("Stmt"), T(token.ELSE), N("Stmt")}, func(rhs []StackItem) (any, error) {
		return &ast.IfStmt{Pos: rhs[0].Tok.Position, Cond: asExpr(rhs[2]), Then: asStmt(rhs[4]), Else: asStmt(rhs[6])}, nil
	})

	// ------------------------------------------------------------- Loops

	add("Stmt", []Symbol{T(token.WHILE), T(token.LPAREN), N("Expr"), T(token.RPAREN), N("Stmt")}, func(rhs []StackItem) (any, error) {
		return &ast.WhileStmt{Pos: rhs[0].Tok.Position, Cond: asExpr(rhs[2]), Body: asStmt(rhs[4])}, nil
	})
	add("Stmt", []Symbol{T(token.DO), N("Stmt"), T(token.WHILE), T(token.LPAREN), N("Expr"), T(token.RPAREN), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.DoWhileStmt{Pos: rhs[0].Tok.Position, Body: asStmt(rhs[1]), Cond: asExpr(rhs[4])}, nil
	})
	add("Stmt", []Symbol{
		T(token.FOR), T(token.LPAREN), T(token.VARIABLE), T(token.EQUAL), N("Expr"), T(token.TO), N("Expr"), T(token.RPAREN), N("Stmt"),
	}, func(rhs []StackItem) (any, error) {
		return &ast.ForStmt{Pos: rhs[0].Tok.Position, Name: rhs[2].Tok.Lexeme, Start: asExpr(rhs[4]), End: asExpr(rhs[6]), Body: asStmt(rhs[8])}, nil
	})
	add("Stmt", []Symbol{
		T(token.FOR), T(token.LPAREN), T(token.VARIABLE), T(token.EQUAL), N("Expr"), T(token.TO), N("Expr"),
		N("StepClause"), T(token.RPAREN), N("Stmt"),
	}, func(rhs []StackItem) (any, error) {
		step, _ := rhs[7].Value.(ast.Expr)
		return &ast.ForStmt{Pos: rhs[0].Tok.Position, Name: rhs[2].Tok.Lexeme, Start: asExpr(rhs[4]), End: asExpr(rhs[6]), Step: step, Body: asStmt(rhs[9])}, nil
	})
	add("StepClause", []Symbol{T(token.VARIABLE), N("Expr")}, func(rhs []StackItem) (any, error) {
		// The bareword "step" is not a reserved keyword; it is recognized
		// here positionally (between a `to`-bound and the closing paren of
		// a `for`), exactly how spec.md's `to`/`step` loop header reads.
		return asExpr(rhs[1]), nil
	})

	add("Stmt", []Symbol{T(token.BREAK), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.BreakStmt{Pos: rhs[0].Tok.Position}, nil
	})
	add("Stmt", []Symbol{T(token.CONTINUE), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.ContinueStmt{Pos: rhs[0].Tok.Position}, nil
	})

	// ---------------------------------------------------------------- Return

	add("Stmt", []Symbol{T(token.RETURN), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.ReturnStmt{Pos: rhs[0].Tok.Position}, nil
	})
	add("Stmt", []Symbol{T(token.RETURN), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.ReturnStmt{Pos: rhs[0].Tok.Position, Value: asExpr(rhs[1])}, nil
	})

	// ----------------------------------------------------------------- Print

	add("Stmt", []Symbol{T(token.PRINT), N("ExprListOpt"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.PrintStmt{Pos: rhs[0].Tok.Position, Args: asExprs(rhs[1])}, nil
	})
	add("Stmt", []Symbol{T(token.PRINTLN), N("ExprListOpt"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.PrintStmt{Pos: rhs[0].Tok.Position, Args: asExprs(rhs[1]), Newline: true}, nil
	})

	// ------------------------------------------------------------- Scan/Read

	add("Stmt", []Symbol{T(token.SCAN), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		lv, err := asLValue(asExpr(rhs[1]))
		if err != nil {
			return nil, err
		}
		return &ast.ScanStmt{Pos: rhs[0].Tok.Position, Target: lv}, nil
	})
	add("Stmt", []Symbol{T(token.READ), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		lv, err := asLValue(asExpr(rhs[1]))
		if err != nil {
			return nil, err
		}
		return &ast.ReadStmt{Pos: rhs[0].Tok.Position, Target: lv}, nil
	})
	add("Stmt", []Symbol{T(token.WRITE), N("Expr"), T(token.ARROW), N("Expr"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.WriteStmt{Pos: rhs[0].Tok.Position, Value: asExpr(rhs[1]), Target: asExpr(rhs[3])}, nil
	})

	// ------------------------------------------------------------------ Import

	add("Stmt", []Symbol{T(token.IMPORT), T(token.STRINGLITERAL), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.ImportStmt{Pos: rhs[0].Tok.Position, Path: rhs[1].Tok.Lexeme}, nil
	})

	// ----------------------------------------------------------------- Assert

	add("Stmt", []Symbol{T(token.ASSERT), T(token.LPAREN), N("Expr"), T(token.RPAREN), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.AssertStmt{Pos: rhs[0].Tok.Position, Cond: asExpr(rhs[2])}, nil
	})
	add("Stmt", []Symbol{T(token.ASSERT), T(token.LPAREN), N("Expr"), T(token.COMMA), N("Expr"), T(token.RPAREN), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		return &ast.AssertStmt{Pos: rhs[0].Tok.Position, Cond: asExpr(rhs[2]), Message: asExpr(rhs[4])}, nil
	})

	// ---------------------------------------------------------------- Timeout

	add("Stmt", []Symbol{T(token.TIMEOUT), T(token.LPAREN), N("Expr"), T(token.RPAREN), N("Stmt")}, func(rhs []StackItem) (any, error) {
		return &ast.TimeoutStmt{Pos: rhs[0].Tok.Position, Millis: asExpr(rhs[2]), Body: asStmt(rhs[4])}, nil
	})

	// ------------------------------------------------------------------ Cmd

	add("Stmt", []Symbol{N("Pipeline"), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		pl := asPipeline(rhs[0])
		return &ast.CmdStmt{Pos: pl.Position(), Pipeline: pl}, nil
	})
	add("Stmt", []Symbol{N("Pipeline"), T(token.AMPERSAND), T(token.SEMICOLON)}, func(rhs []StackItem) (any, error) {
		pl := asPipeline(rhs[0])
		return &ast.CmdStmt{Pos: pl.Position(), Pipeline: pl, Background: true}, nil
	})

	add("Pipeline", []Symbol{N("CmdCall")}, func(rhs []StackItem) (any, error) {
		call := asCmdCall(rhs[0])
		return &ast.CmdPipeline{Pos: call.Position(), Stages: []*ast.CmdCall{call}}, nil
	})
	add("Pipeline", []Symbol{N("Pipeline"), T(token.PIPE), N("CmdCall")}, func(rhs []StackItem) (any, error) {
		pl := asPipeline(rhs[0])
		pl.Stages = append(pl.Stages, asCmdCall(rhs[2]))
		return pl, nil
	})

	add("CmdCall", []Symbol{N("CmdName"), N("CmdArgListOpt")}, func(rhs []StackItem) (any, error) {
		name := asExpr(rhs[0])
		return &ast.CmdCall{Pos: name.Position(), Name: name, Args: asCmdArgs(rhs[1])}, nil
	})

	add("CmdName", []Symbol{T(token.VARIABLE)}, func(rhs []StackItem) (any, error) {
		return literalText(rhs[0].Tok), nil
	})
	// A pipeline's first stage is lexed before the lexer enters command
	// mode, so its bareword name arrives as an ordinary VARIABLE token
	// (above); every later stage's name is already inside command mode and
	// arrives as CMDSTRINGVAL instead (internal/lexer.lexBareword) — both
	// are always literal program-name text, never a variable reference.
	add("CmdName", []Symbol{T(token.CMDSTRINGVAL)}, func(rhs []StackItem) (any, error) {
		return literalText(rhs[0].Tok), nil
	})
	add("CmdName", []Symbol{T(token.STRINGLITERAL)}, func(rhs []StackItem) (any, error) {
		return buildStringLit(rhs[0].Tok)
	})
	add("CmdName", []Symbol{T(token.STRINGVAL)}, func(rhs []StackItem) (any, error) {
		return buildStringLit(rhs[0].Tok)
	})

	add("CmdArgListOpt", []Symbol{}, func(rhs []StackItem) (any, error) { return []ast.CmdArg{}, nil })
	add("CmdArgListOpt", []Symbol{N("CmdArgListOpt"), N("CmdArg")}, func(rhs []StackItem) (any, error) {
		return append(asCmdArgs(rhs[0]), asCmdArg(rhs[1])), nil
	})

	add("CmdArg", []Symbol{T(token.CMDSTRINGVAL)}, func(rhs []StackItem) (any, error) {
		return ast.CmdArg{Pos: rhs[0].Tok.Position, Value: literalText(rhs[0].Tok)}, nil
	})
	add("CmdArg", []Symbol{T(token.VARIABLE)}, func(rhs []StackItem) (any, error) {
		return ast.CmdArg{Pos: rhs[0].Tok.Position, Value: &ast.VariableExpr{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme}}, nil
	})
	add("CmdArg", []Symbol{T(token.STRINGLITERAL)}, func(rhs []StackItem) (any, error) {
		lit, err := buildStringLit(rhs[0].Tok)
		if err != nil {
			return nil, err
		}
		return ast.CmdArg{Pos: rhs[0].Tok.Position, Value: lit}, nil
	})
	add("CmdArg", []Symbol{T(token.STRINGVAL)}, func(rhs []StackItem) (any, error) {
		lit, err := buildStringLit(rhs[0].Tok)
		if err != nil {
			return nil, err
		}
		return ast.CmdArg{Pos: rhs[0].Tok.Position, Value: lit}, nil
	})

	// ---------------------------------------------------------- Expr chain

	add("Expr", []Symbol{N("Assignment")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	assignOps := []struct {
		kind token.Kind
		op   string
	}{
		{token.EQUAL, "="}, {token.PLUS_ASSIGN, "+="}, {token.MINUS_ASSIGN, "-="},
		{token.STAR_ASSIGN, "*="}, {token.SLASH_ASSIGN, "/="}, {token.PERCENT_ASSIGN, "%="},
		{token.POW_ASSIGN, "**="},
	}
	for _, ao := range assignOps {
		op := ao.op
		add("Assignment", []Symbol{N("Ternary"), T(ao.kind), N("Assignment")}, func(rhs []StackItem) (any, error) {
			target, err := asLValue(asExpr(rhs[0]))
			if err != nil {
				return nil, err
			}
			return &ast.AssignExpr{Pos: target.Position(), Target: target, Op: op, Value: asExpr(rhs[2])}, nil
		})
	}
	add("Assignment", []Symbol{N("Ternary")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	add("Ternary", []Symbol{N("LogicOr"), T(token.QUESTION), N("Expr"), T(token.COLON), N("Ternary")}, func(rhs []StackItem) (any, error) {
		cond := asExpr(rhs[0])
		return &ast.TernaryExpr{Pos: cond.Position(), Cond: cond, Then: asExpr(rhs[2]), Else: asExpr(rhs[4])}, nil
	})
	add("Ternary", []Symbol{N("LogicOr")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	binaryLevel := func(lhs, sub string, ops []struct {
		kind token.Kind
		op   string
	}) {
		add(lhs, []Symbol{N(sub)}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })
		for _, o := range ops {
			op, kind := o.op, o.kind
			add(lhs, []Symbol{N(lhs), T(kind), N(sub)}, func(rhs []StackItem) (any, error) {
				left := asExpr(rhs[0])
				return &ast.BinaryExpr{Pos: left.Position(), Op: kind, OpLit: op, Left: left, Right: asExpr(rhs[2])}, nil
			})
		}
	}

	binaryLevel("LogicOr", "LogicAnd", []struct {
		kind token.Kind
		op   string
	}{{token.OR_OR, "||"}})
	binaryLevel("LogicAnd", "Equality", []struct {
		kind token.Kind
		op   string
	}{{token.AND_AND, "&&"}})
	binaryLevel("Equality", "Relational", []struct {
		kind token.Kind
		op   string
	}{{token.EQUAL_EQUAL, "=="}, {token.BANG_EQUAL, "!="}})
	binaryLevel("Relational", "Additive", []struct {
		kind token.Kind
		op   string
	}{{token.LESS, "<"}, {token.LESS_EQUAL, "<="}, {token.GREATER, ">"}, {token.GREATER_EQUAL, ">="}})
	binaryLevel("Additive", "Multiplicative", []struct {
		kind token.Kind
		op   string
	}{{token.PLUS, "+"}, {token.MINUS, "-"}})
	binaryLevel("Multiplicative", "Power", []struct {
		kind token.Kind
		op   string
	}{{token.STAR, "*"}, {token.SLASH, "/"}, {token.PERCENT, "%"}})

	// Power is right-associative: the RHS recurses into Power itself
	// rather than Unary, so `2 ** 3 ** 2` parses as `2 ** (3 ** 2)`.
	add("Power", []Symbol{N("Unary"), T(token.POW), N("Power")}, func(rhs []StackItem) (any, error) {
		left := asExpr(rhs[0])
		return &ast.BinaryExpr{Pos: left.Position(), Op: token.POW, OpLit: "**", Left: left, Right: asExpr(rhs[2])}, nil
	})
	add("Power", []Symbol{N("Unary")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	add("Unary", []Symbol{T(token.MINUS), N("Unary")}, func(rhs []StackItem) (any, error) {
		return &ast.UnaryExpr{Pos: rhs[0].Tok.Position, Op: token.MINUS, OpLit: "-", Right: asExpr(rhs[1])}, nil
	})
	add("Unary", []Symbol{T(token.BANG), N("Unary")}, func(rhs []StackItem) (any, error) {
		return &ast.UnaryExpr{Pos: rhs[0].Tok.Position, Op: token.BANG, OpLit: "!", Right: asExpr(rhs[1])}, nil
	})
	add("Unary", []Symbol{N("Postfix")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	add("Postfix", []Symbol{N("Postfix"), T(token.LBRACKET), N("Expr"), T(token.RBRACKET)}, func(rhs []StackItem) (any, error) {
		base := asExpr(rhs[0])
		return &ast.IndexExpr{Pos: base.Position(), Base: base, Index: asExpr(rhs[2])}, nil
	})
	add("Postfix", []Symbol{N("Postfix"), T(token.LPAREN), N("ExprListOpt"), T(token.RPAREN)}, func(rhs []StackItem) (any, error) {
		callee := asExpr(rhs[0])
		return &ast.CallExpr{Pos: callee.Position(), Callee: callee, Args: asExprs(rhs[2])}, nil
	})
	add("Postfix", []Symbol{N("Postfix"), T(token.PLUS_PLUS)}, func(rhs []StackItem) (any, error) {
		target, err := asLValue(asExpr(rhs[0]))
		if err != nil {
			return nil, err
		}
		return &ast.IncDecExpr{Pos: target.Position(), Target: target, Op: "++"}, nil
	})
	add("Postfix", []Symbol{N("Postfix"), T(token.MINUS_MINUS)}, func(rhs []StackItem) (any, error) {
		target, err := asLValue(asExpr(rhs[0]))
		if err != nil {
			return nil, err
		}
		return &ast.IncDecExpr{Pos: target.Position(), Target: target, Op: "--"}, nil
	})
	add("Postfix", []Symbol{N("Primary")}, func(rhs []StackItem) (any, error) { return asExpr(rhs[0]), nil })

	// -------------------------------------------------------------- Primary

	add("Primary", []Symbol{T(token.INTVAL)}, func(rhs []StackItem) (any, error) {
		return &ast.IntLit{Pos: rhs[0].Tok.Position, Value: parseInt(rhs[0].Tok.Lexeme)}, nil
	})
	add("Primary", []Symbol{T(token.FLOATVAL)}, func(rhs []StackItem) (any, error) {
		return &ast.FloatLit{Pos: rhs[0].Tok.Position, Value: parseFloat(rhs[0].Tok.Lexeme)}, nil
	})
	add("Primary", []Symbol{T(token.TRUE)}, func(rhs []StackItem) (any, error) {
		return &ast.BoolLit{Pos: rhs[0].Tok.Position, Value: true}, nil
	})
	add("Primary", []Symbol{T(token.FALSE)}, func(rhs []StackItem) (any, error) {
		return &ast.BoolLit{Pos: rhs[0].Tok.Position, Value: false}, nil
	})
	add("Primary", []Symbol{T(token.STRINGLITERAL)}, func(rhs []StackItem) (any, error) {
		return buildStringLit(rhs[0].Tok)
	})
	add("Primary", []Symbol{T(token.STRINGVAL)}, func(rhs []StackItem) (any, error) {
		return buildStringLit(rhs[0].Tok)
	})
	add("Primary", []Symbol{T(token.VARIABLE)}, func(rhs []StackItem) (any, error) {
		return &ast.VariableExpr{Pos: rhs[0].Tok.Position, Name: rhs[0].Tok.Lexeme}, nil
	})
	add("Primary", []Symbol{T(token.LPAREN), N("Expr"), T(token.RPAREN)}, func(rhs []StackItem) (any, error) {
		return asExpr(rhs[1]), nil
	})
	add("Primary", []Symbol{T(token.LPAREN), N("Expr"), T(token.COMMA), N("ExprList"), T(token.RPAREN)}, func(rhs []StackItem) (any, error) {
		elems := append([]ast.Expr{asExpr(rhs[1])}, asExprs(rhs[3])...)
		return &ast.TupleLit{Pos: rhs[0].Tok.Position, Elements: elems}, nil
	})
	add("Primary", []Symbol{T(token.LBRACKET), N("ExprListOpt"), T(token.RBRACKET)}, func(rhs []StackItem) (any, error) {
		return &ast.ArrayLit{Pos: rhs[0].Tok.Position, Elements: asExprs(rhs[1])}, nil
	})
	add("Primary", []Symbol{T(token.LPAREN), N("ParamListOpt"), T(token.RPAREN), T(token.ARROW), N("Type"), N("Block")}, func(rhs []StackItem) (any, error) {
		body := rhs[5].Value.(*ast.Block)
		return &ast.LambdaExpr{Pos: rhs[0].Tok.Position, Params: asParams(rhs[1]), ReturnType: asType(rhs[4]), Body: body}, nil
	})
	add("Primary", []Symbol{T(token.BACKTICK), N("Pipeline"), T(token.BACKTICK)}, func(rhs []StackItem) (any, error) {
		return &ast.CmdExpr{Pos: rhs[0].Tok.Position, Pipeline: asPipeline(rhs[1])}, nil
	})

	add("ExprList", []Symbol{N("Expr")}, func(rhs []StackItem) (any, error) {
		return []ast.Expr{asExpr(rhs[0])}, nil
	})
	add("ExprList", []Symbol{N("ExprList"), T(token.COMMA), N("Expr")}, func(rhs []StackItem) (any, error) {
		return append(asExprs(rhs[0]), asExpr(rhs[2])), nil
	})
	add("ExprListOpt", []Symbol{}, func(rhs []StackItem) (any, error) { return []ast.Expr{}, nil })
	add("ExprListOpt", []Symbol{N("ExprList")}, func(rhs []StackItem) (any, error) { return asExprs(rhs[0]), nil })

	return prods
}
