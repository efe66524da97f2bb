// Package parser drives the table-driven LR(1) parse: it builds the
// Commander ACTION/GOTO tables once (via internal/lrgen.Generate, never
// from a hand-authored generated-source file), then runs a classic
// shift/reduce loop over a token.Token stream, invoking each production's
// Reduce closure to assemble the internal/ast tree.
package parser

import (
	"fmt"
	"sync"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/grammar"
	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/lrgen"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/token"
)

// exprGrammar reuses Commander's full production list rooted at Expr
// instead of Program, giving string interpolation a self-contained table
// to recursively parse one `${...}` token run without re-entering the
// top-level Program table (which would accept only whole programs).
var exprGrammar = &grammar.Grammar{Start: "Expr", Productions: grammar.Commander.Productions}

var (
	programTables     *lrgen.Tables
	programTablesOnce sync.Once
	programTablesErr  error

	exprTables     *lrgen.Tables
	exprTablesOnce sync.Once
	exprTablesErr  error
)

func getProgramTables() (*lrgen.Tables, error) {
	programTablesOnce.Do(func() {
		programTables, programTablesErr = lrgen.Generate(grammar.Commander)
	})
	return programTables, programTablesErr
}

func getExprTables() (*lrgen.Tables, error) {
	exprTablesOnce.Do(func() {
		exprTables, exprTablesErr = lrgen.Generate(exprGrammar)
	})
	return exprTables, exprTablesErr
}

func init() {
	// internal/grammar cannot import internal/parser (parser already
	// imports grammar to build its tables), so the StringLit Reduce
	// closures that need to recursively parse an interpolation's nested
	// token run call back in through this hook instead.
	grammar.ParseExprTokens = ParseExprTokens
}

// Parse runs the full Commander source grammar over toks (normally the
// output of lexer.Lex, already END_OF_FILE-terminated) and returns the
// parsed program.
func Parse(toks []token.Token) (*ast.Program, error) {
	tables, err := getProgramTables()
	if err != nil {
		return nil, err
	}
	val, err := run(tables, toks)
	if err != nil {
		return nil, err
	}
	prog, ok := val.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("parser: Program reduce produced %T", val)
	}
	return prog, nil
}

// ParseSource lexes and parses file in one step.
func ParseSource(file source.FileName, src []byte) (*ast.Program, error) {
	toks, err := lexer.Lex(file, src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// ParseExprTokens parses one balanced token run (no trailing END_OF_FILE
// required) as a single expression; installed as grammar.ParseExprTokens.
func ParseExprTokens(toks []token.Token) (ast.Expr, error) {
	tables, err := getExprTables()
	if err != nil {
		return nil, err
	}
	val, err := run(tables, toks)
	if err != nil {
		return nil, err
	}
	expr, ok := val.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("parser: Expr reduce produced %T", val)
	}
	return expr, nil
}

type frame struct {
	state int
	item  grammar.StackItem
}

// run drives the table-driven shift/reduce loop: shift
// on ActionShift, pop len(RHS) frames and invoke Reduce on ActionReduce
// (pushing the result under a GOTO transition), and return the accepted
// start nonterminal's built value on ActionAccept.
func run(tables *lrgen.Tables, toks []token.Token) (any, error) {
	stack := []frame{{state: 0}}
	pos := 0

	currentKind := func() token.Kind {
		if pos >= len(toks) || toks[pos].Kind == token.END_OF_FILE {
			return lrgen.EndMarker
		}
		return toks[pos].Kind
	}
	currentPos := func() source.Position {
		if pos < len(toks) {
			return toks[pos].Position
		}
		if len(toks) > 0 {
			return toks[len(toks)-1].Position
		}
		return source.Position{}
	}

	for {
		state := stack[len(stack)-1].state
		kind := currentKind()
		act, ok := tables.Action[state][kind]
		if !ok {
			return nil, diagnostics.At(diagnostics.ParseError, currentPos(), "unexpected token %s", kind)
		}

		switch act.Kind {
		case lrgen.ActionShift:
			tok := toks[pos]
			stack = append(stack, frame{state: act.N, item: grammar.StackItem{Sym: grammar.T(kind), Tok: tok}})
			pos++

		case lrgen.ActionReduce:
			prod := tables.Grammar.Productions[act.N]
			n := len(prod.RHS)
			rhs := make([]grammar.StackItem, n)
			for i := 0; i < n; i++ {
				rhs[i] = stack[len(stack)-n+i].item
			}
			stack = stack[:len(stack)-n]

			val, err := prod.Reduce(rhs)
			if err != nil {
				return nil, err
			}

			top := stack[len(stack)-1].state
			gotoState, ok := tables.Goto[top][prod.LHS]
			if !ok {
				return nil, fmt.Errorf("parser: no GOTO for state %d, nonterminal %s", top, prod.LHS)
			}
			stack = append(stack, frame{state: gotoState, item: grammar.StackItem{Sym: grammar.N(prod.LHS), Value: val}})

		case lrgen.ActionAccept:
			return stack[len(stack)-1].item.Value, nil

		default:
			return nil, fmt.Errorf("parser: unknown action kind %d", act.Kind)
		}
	}
}
