// Command lrgen is the offline LR(1) table generator spec.md §4.2
// describes: it closes the Commander grammar's item sets once and writes
// the resulting ACTION/GOTO tables as a generated Go source file, the way
// a build step would regenerate a static asset instead of paying the
// closure cost at every process start. internal/parser does not read this
// file — it calls internal/lrgen.Generate directly on first use (via
// sync.Once) — so this
// tool exists for inspection and regression-diffing the table shape
// across grammar changes, not as a required build dependency.
package main

import (
	"fmt"
	"os"

	"github.com/commander-lang/commander/internal/grammar"
	"github.com/commander-lang/commander/internal/lrgen"
)

func main() {
	out := "lrtables_gen.go"
	pkg := "lrtables"
	root := "Program"
	switch len(os.Args) {
	case 1:
	case 2:
		out = os.Args[1]
	case 3:
		out = os.Args[1]
		pkg = os.Args[2]
	case 4:
		out = os.Args[1]
		pkg = os.Args[2]
		root = os.Args[3]
	default:
		fmt.Fprintln(os.Stderr, "usage: lrgen [out.go] [package] [Program|Expr]")
		os.Exit(1)
	}

	g := grammar.Commander
	if root == "Expr" {
		g = &grammar.Grammar{Start: "Expr", Productions: grammar.Commander.Productions}
	}

	tables, err := lrgen.Generate(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lrgen: %v\n", err)
		os.Exit(1)
	}

	src := lrgen.Emit(tables, pkg)
	if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "lrgen: writing %q: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d states to %s\n", tables.NumStates, out)
}
