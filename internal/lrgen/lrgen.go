// Package lrgen implements the offline parser-table generator spec.md §4.2
// describes: canonical LR(1) item sets, FIRST-set closure, the ACTION/GOTO
// tables, and conflict resolution (shift always beats reduce; production
// priority decides only reduce/reduce conflicts). It exposes both a direct Generate entry point — the runtime parser
// calls this once per process rather than depending on a hand-authored,
// unverifiable generated-source file — and an Emit that renders the same
// tables as Go source text, realizing the "writes a target-language source
// file" offline-tool contract for cmd/lrgen.
package lrgen

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/commander-lang/commander/internal/grammar"
	"github.com/commander-lang/commander/internal/token"
)

// endMarker is the synthetic lookahead terminal ($) used to detect accept.
const endMarker = token.Kind(-1)

// item is one LR(1) item: a production index, a dot position within its
// RHS, and one lookahead terminal.
type item struct {
	prod int
	dot  int
	la   token.Kind
}

// itemSet is a canonical, sorted, deduplicated set of items — used both as
// the working set during closure and as the map key for the canonical
// collection (via its string key).
type itemSet struct {
	items []item
	key   string
}

func newItemSet(items []item) *itemSet {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.prod != b.prod {
			return a.prod < b.prod
		}
		if a.dot != b.dot {
			return a.dot < b.dot
		}
		return a.la < b.la
	})
	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "%d.%d.%d|", it.prod, it.dot, it.la)
	}
	return &itemSet{items: items, key: sb.String()}
}

// Action is one ACTION table cell.
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

type Action struct {
	Kind ActionKind
	N    int // target state (Shift) or production index (Reduce)
}

// Tables is the generator's output: dense ACTION[state][terminal] and
// GOTO[state][nonterminal] maps, ready for internal/parser to drive.
type Tables struct {
	Grammar     *grammar.Grammar
	NumStates   int
	Action      map[int]map[token.Kind]Action
	Goto        map[int]map[string]int
	StartProd   int // the augmented start production's index
}

// firstSets maps every symbol (terminal and nonterminal) to its FIRST set
// of terminals; terminals are trivially FIRST({t}) = {t}.
type firstSets struct {
	g      *grammar.Grammar
	byNT   map[string][]int // productions indexed by LHS
	memo   map[string]map[token.Kind]bool
	nullable map[string]bool
}

func computeFirst(g *grammar.Grammar) *firstSets {
	fs := &firstSets{g: g, byNT: map[string][]int{}, memo: map[string]map[token.Kind]bool{}, nullable: map[string]bool{}}
	for i, p := range g.Productions {
		fs.byNT[p.LHS] = append(fs.byNT[p.LHS], i)
		if len(p.RHS) == 0 {
			fs.nullable[p.LHS] = true
		}
	}
	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if fs.nullable[p.LHS] {
				continue
			}
			allNullable := true
			for _, s := range p.RHS {
				if s.Terminal || !fs.nullable[s.NT] {
					allNullable = false
					break
				}
			}
			if allNullable && len(p.RHS) > 0 {
				fs.nullable[p.LHS] = true
				changed = true
			}
		}
	}
	for nt := range fs.byNT {
		fs.memo[nt] = map[token.Kind]bool{}
	}
	changed = true
	for changed {
		changed = false
		for _, p := range g.Productions {
			set := fs.memo[p.LHS]
			for _, s := range p.RHS {
				var sub map[token.Kind]bool
				if s.Terminal {
					sub = map[token.Kind]bool{s.Tok: true}
				} else {
					sub = fs.memo[s.NT]
				}
				for k := range sub {
					if !set[k] {
						set[k] = true
						changed = true
					}
				}
				nullable := !s.Terminal && fs.nullable[s.NT]
				if !nullable {
					break
				}
			}
		}
	}
	return fs
}

// firstOfSeq computes FIRST(seq la) — the FIRST set of a symbol sequence
// followed by a single lookahead terminal used when the sequence is fully
// nullable, per the standard LR(1) closure construction.
func (fs *firstSets) firstOfSeq(seq []grammar.Symbol, la token.Kind) []token.Kind {
	var out []token.Kind
	seen := map[token.Kind]bool{}
	add := func(k token.Kind) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, s := range seq {
		if s.Terminal {
			add(s.Tok)
			return out
		}
		for k := range fs.memo[s.NT] {
			add(k)
		}
		if !fs.nullable[s.NT] {
			return out
		}
	}
	add(la)
	return out
}

// closure computes the closure of a kernel item set.
func closure(g *grammar.Grammar, fs *firstSets, items []item) []item {
	set := map[item]bool{}
	var queue []item
	for _, it := range items {
		if !set[it] {
			set[it] = true
			queue = append(queue, it)
		}
	}
	for i := 0; i < len(queue); i++ {
		it := queue[i]
		p := g.Productions[it.prod]
		if it.dot >= len(p.RHS) {
			continue
		}
		s := p.RHS[it.dot]
		if s.Terminal {
			continue
		}
		rest := p.RHS[it.dot+1:]
		las := fs.firstOfSeq(rest, it.la)
		for prodIdx, prod := range g.Productions {
			if prod.LHS != s.NT {
				continue
			}
			for _, la := range las {
				ni := item{prod: prodIdx, dot: 0, la: la}
				if !set[ni] {
					set[ni] = true
					queue = append(queue, ni)
				}
			}
		}
	}
	out := make([]item, 0, len(queue))
	out = append(out, queue...)
	return out
}

// gotoSet computes goto(I, X).
func gotoSet(g *grammar.Grammar, fs *firstSets, items []item, x grammar.Symbol) []item {
	var kernel []item
	for _, it := range items {
		p := g.Productions[it.prod]
		if it.dot < len(p.RHS) && p.RHS[it.dot].Equal(x) {
			kernel = append(kernel, item{prod: it.prod, dot: it.dot + 1, la: it.la})
		}
	}
	if len(kernel) == 0 {
		return nil
	}
	return closure(g, fs, kernel)
}

// symbolsOf collects every grammar symbol (terminal and nonterminal) that
// appears anywhere on a production's RHS, used to enumerate goto targets.
func symbolsOf(g *grammar.Grammar) []grammar.Symbol {
	seen := map[string]grammar.Symbol{}
	for _, p := range g.Productions {
		for _, s := range p.RHS {
			key := s.String()
			if s.Terminal {
				key = "T:" + key
			} else {
				key = "N:" + key
			}
			seen[key] = s
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]grammar.Symbol, 0, len(seen))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}

// Generate builds the canonical LR(1) ACTION/GOTO tables for g, using a
// worker pool to compute each state's outgoing gotoSet transitions
// concurrently (spec.md §5's concurrency allowance for closure
// computation).
func Generate(g *grammar.Grammar) (*Tables, error) {
	augLHS := "$Start"
	aug := grammar.Grammar{
		Start: augLHS,
		Productions: append([]grammar.Production{
			{LHS: augLHS, RHS: []grammar.Symbol{grammar.N(g.Start)}, Priority: -1},
		}, g.Productions...),
	}
	startProdIdx := 0

	fs := computeFirst(&aug)
	symbols := symbolsOf(&aug)

	start := closure(&aug, fs, []item{{prod: startProdIdx, dot: 0, la: endMarker}})
	startSet := newItemSet(start)

	states := []*itemSet{startSet}
	index := map[string]int{startSet.key: 0}

	type job struct {
		stateIdx int
		sym      grammar.Symbol
	}

	var mu sync.Mutex
	for i := 0; i < len(states); i++ {
		cur := states[i]
		var wg sync.WaitGroup
		type result struct {
			sym grammar.Symbol
			set []item
		}
		results := make([]result, len(symbols))
		sem := make(chan struct{}, 8)
		for si, sym := range symbols {
			wg.Add(1)
			sem <- struct{}{}
			go func(si int, sym grammar.Symbol) {
				defer wg.Done()
				defer func() { <-sem }()
				results[si] = result{sym: sym, set: gotoSet(&aug, fs, cur.items, sym)}
			}(si, sym)
		}
		wg.Wait()

		mu.Lock()
		for _, r := range results {
			if len(r.set) == 0 {
				continue
			}
			ns := newItemSet(r.set)
			if _, ok := index[ns.key]; !ok {
				index[ns.key] = len(states)
				states = append(states, ns)
			}
		}
		mu.Unlock()
	}

	action := map[int]map[token.Kind]Action{}
	gotoTbl := map[int]map[string]int{}
	for i, st := range states {
		action[i] = map[token.Kind]Action{}
		gotoTbl[i] = map[string]int{}
		for _, sym := range symbols {
			target := gotoSet(&aug, fs, st.items, sym)
			if len(target) == 0 {
				continue
			}
			ns := newItemSet(target)
			ti := index[ns.key]
			if sym.Terminal {
				if err := setAction(&aug, action[i], sym.Tok, Action{Kind: ActionShift, N: ti}); err != nil {
					return nil, err
				}
			} else {
				gotoTbl[i][sym.NT] = ti
			}
		}
		for _, it := range st.items {
			p := aug.Productions[it.prod]
			if it.dot != len(p.RHS) {
				continue
			}
			if it.prod == startProdIdx {
				if err := setAction(&aug, action[i], endMarker, Action{Kind: ActionAccept}); err != nil {
					return nil, err
				}
				continue
			}
			if err := setAction(&aug, action[i], it.la, Action{Kind: ActionReduce, N: it.prod - 1}); err != nil {
				return nil, err
			}
		}
	}

	return &Tables{Grammar: g, NumStates: len(states), Action: action, Goto: gotoTbl, StartProd: startProdIdx}, nil
}

// setAction installs a table cell. A shift/reduce conflict always keeps the
// shift; production priority is not consulted for it. A reduce/reduce
// conflict keeps the production with the lower priority (the earlier one
// on a tie).
func setAction(aug *grammar.Grammar, row map[token.Kind]Action, k token.Kind, next Action) error {
	existing, ok := row[k]
	if !ok {
		row[k] = next
		return nil
	}
	if existing.Kind == next.Kind && existing.N == next.N {
		return nil
	}
	winner, err := resolveConflict(aug, existing, next)
	if err != nil {
		return err
	}
	row[k] = winner
	return nil
}

func resolveConflict(aug *grammar.Grammar, a, b Action) (Action, error) {
	// Shift always wins a shift/reduce conflict, whatever the priorities.
	if a.Kind == ActionShift && b.Kind == ActionReduce {
		return a, nil
	}
	if b.Kind == ActionShift && a.Kind == ActionReduce {
		return b, nil
	}
	if a.Kind == ActionReduce && b.Kind == ActionReduce {
		pa := aug.Productions[a.N+1].Priority
		pb := aug.Productions[b.N+1].Priority
		if pa <= pb {
			return a, nil
		}
		return b, nil
	}
	// Two shifts to the same state collapse (already filtered above); two
	// shifts to different states, or an accept/shift clash, is a genuine
	// grammar ambiguity.
	return Action{}, fmt.Errorf("unresolvable parser table conflict: %v vs %v", a, b)
}

// Emit renders Tables as Go source text — the literal "writes a target-
// language source file" artifact spec.md §4.2 describes for the offline
// generator tool (cmd/lrgen). The runtime parser does not read this file;
// it calls Generate directly (see package doc).
func Emit(t *Tables, pkg string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by cmd/lrgen. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	fmt.Fprintf(&sb, "// NumStates is the generated table's state count.\nconst NumStates = %d\n\n", t.NumStates)
	sb.WriteString("// ActionEntry is one ACTION table cell, stored per state keyed by token\n// kind, as a (kind, target) pair: kind 1=shift 2=reduce 3=accept.\n")
	sb.WriteString("type ActionEntry struct{ Kind, Target int }\n\n")
	sb.WriteString("var ActionTable = map[int]map[int]ActionEntry{\n")
	for state := 0; state < t.NumStates; state++ {
		fmt.Fprintf(&sb, "\t%d: {\n", state)
		row := t.Action[state]
		keys := make([]int, 0, len(row))
		for k := range row {
			keys = append(keys, int(k))
		}
		sort.Ints(keys)
		for _, k := range keys {
			a := row[token.Kind(k)]
			fmt.Fprintf(&sb, "\t\t%d: {Kind: %d, Target: %d},\n", k, int(a.Kind), a.N)
		}
		sb.WriteString("\t},\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString("var GotoTable = map[int]map[string]int{\n")
	for state := 0; state < t.NumStates; state++ {
		fmt.Fprintf(&sb, "\t%d: {\n", state)
		row := t.Goto[state]
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "\t\t%q: %d,\n", k, row[k])
		}
		sb.WriteString("\t},\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// EndMarker is the exported form of the synthetic end-of-input lookahead,
// used by internal/parser to probe Tables.Action at end of stream.
const EndMarker = endMarker
