// Package grammar declares the Commander language grammar as an ordered
// list of productions consumed by internal/lrgen to build the canonical
// LR(1) parse tables, and by internal/parser's reduction step to build the
// AST (spec.md §4.2–§4.3).
package grammar

import (
	"fmt"

	"github.com/commander-lang/commander/internal/token"
)

// Symbol is either a terminal (a token.Kind) or a nonterminal (a name into
// Grammar.Productions' LHS set).
type Symbol struct {
	Terminal bool
	Tok      token.Kind
	NT       string
}

func T(k token.Kind) Symbol  { return Symbol{Terminal: true, Tok: k} }
func N(name string) Symbol   { return Symbol{Terminal: false, NT: name} }

func (s Symbol) String() string {
	if s.Terminal {
		return s.Tok.String()
	}
	return s.NT
}

func (s Symbol) Equal(o Symbol) bool {
	if s.Terminal != o.Terminal {
		return false
	}
	if s.Terminal {
		return s.Tok == o.Tok
	}
	return s.NT == o.NT
}

// StackItem is one parsed value the parser's shift/reduce stack carries:
// either a terminal's token.Token or a nonterminal's built AST value
// (typed as `any`, since different nonterminals build different Go types —
// ast.Expr, ast.Stmt, []ast.Stmt, and so on).
type StackItem struct {
	Sym   Symbol
	Tok   token.Token
	Value any
}

// Reduce builds the value for a production's LHS nonterminal out of the
// len(RHS) StackItems popped off the parse stack, in left-to-right order.
type Reduce func(rhs []StackItem) (any, error)

// Production is one grammar rule: LHS -> RHS, with a Priority used to
// resolve reduce/reduce conflicts (lower Priority wins). Shift/reduce
// conflicts always keep the shift; Priority plays no part in them.
type Production struct {
	LHS      string
	RHS      []Symbol
	Priority int
	Reduce   Reduce
}

// Grammar is the full rule set plus its start symbol.
type Grammar struct {
	Start       string
	Productions []Production
}

func (g *Grammar) String() string {
	out := ""
	for i, p := range g.Productions {
		rhs := ""
		for _, s := range p.RHS {
			rhs += " " + s.String()
		}
		out += fmt.Sprintf("%d: %s ->%s\n", i, p.LHS, rhs)
	}
	return out
}
