// Command commander-compare is internal/golden's CLI front end, adapting
// test/main.go's discover/collect/test dispatch (which shelled out to a
// reference clox binary and diffed captured stdout/stderr/exit code
// against JSON snapshots) into a single-binary golden-fixture runner: no
// reference interpreter to shell out to, because the "reference" output
// for a *.cmdr case is simply what -l/-p/-t already print, captured once
// into the paired *.out file and diffed on every later run.
//
// A case's mode is its nearest ancestor directory name relative to the
// fixture root (cases/lex/*.cmdr lexes, cases/parse/*.cmdr parses,
// cases/typecheck/*.cmdr type-checks and annotates) the way test/main.go
// used TestCase.Suite to group cases/print/*.lox, cases/class/*.lox, and
// so on.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/commander-lang/commander/internal/golden"
	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/typecheck"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: commander-compare <command> <fixtures-dir>")
		fmt.Println("Commands:")
		fmt.Println("  list <dir>    - discover golden fixtures under <dir>")
		fmt.Println("  run <dir>     - render every fixture and diff against its .out file")
		fmt.Println("  update <dir>  - render every fixture and overwrite its .out file")
		os.Exit(1)
	}

	command, dir := os.Args[1], os.Args[2]
	cases, err := golden.Discover(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discovering fixtures under %q: %v\n", dir, err)
		os.Exit(1)
	}

	switch command {
	case "list":
		runList(dir, cases)
	case "run":
		if !runCompare(dir, cases) {
			os.Exit(1)
		}
	case "update":
		runUpdate(dir, cases)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runList(dir string, cases []golden.Case) {
	byMode := map[string]int{}
	for _, c := range cases {
		byMode[modeFor(dir, c.Input)]++
	}
	fmt.Printf("Discovered %d fixture(s):\n", len(cases))
	for mode, n := range byMode {
		fmt.Printf("  %s: %d\n", mode, n)
	}
}

func runCompare(dir string, cases []golden.Case) bool {
	passed, failed := 0, 0
	for _, c := range cases {
		got, err := render(modeFor(dir, c.Input), c.Input)
		if err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", c.Name, err)
			continue
		}
		expected, err := c.ReadExpected()
		if err != nil {
			failed++
			fmt.Printf("FAIL %s: reading golden file: %v\n", c.Name, err)
			continue
		}
		if diff, ok := golden.Compare(c.Name, expected, got); !ok {
			failed++
			fmt.Printf("FAIL %s\n%s\n", c.Name, diff)
			continue
		}
		passed++
	}
	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	return failed == 0
}

func runUpdate(dir string, cases []golden.Case) {
	for _, c := range cases {
		got, err := render(modeFor(dir, c.Input), c.Input)
		if err != nil {
			fmt.Printf("SKIP %s: %v\n", c.Name, err)
			continue
		}
		if err := os.WriteFile(c.Expected, []byte(got), 0o644); err != nil {
			fmt.Printf("SKIP %s: writing golden file: %v\n", c.Name, err)
			continue
		}
		fmt.Printf("wrote %s\n", c.Expected)
	}
}

// modeFor returns the fixture's mode: the path segment directly under
// dir, e.g. dir/lex/nested/case.cmdr -> "lex".
func modeFor(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return ""
}

// render runs path through the pipeline stage mode names and returns the
// text the matching CLI flag would print: one token per line for "lex",
// the program's S-expression for "parse", and the type-annotated
// S-expression for "typecheck"/"check".
func render(mode, path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	file := source.FileName(path)

	switch mode {
	case "lex":
		toks, err := lexer.Lex(file, src)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, tok := range toks {
			sb.WriteString(tok.String())
			sb.WriteByte('\n')
		}
		return sb.String(), nil

	case "parse":
		prog, err := parser.ParseSource(file, src)
		if err != nil {
			return "", err
		}
		return prog.String() + "\n", nil

	case "typecheck", "check":
		prog, err := parser.ParseSource(file, src)
		if err != nil {
			return "", err
		}
		checker := typecheck.NewChecker(typecheck.NewVariableTable())
		if err := checker.Check(prog); err != nil {
			return "", err
		}
		return typecheck.Annotate(prog, checker.Types) + "\n", nil

	default:
		return "", fmt.Errorf("fixture %q has no recognized mode directory (want lex/, parse/, or typecheck/)", path)
	}
}
