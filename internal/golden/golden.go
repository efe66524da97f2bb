// Package golden implements the *.cmdr/*.out regression harness spec.md
// §6 requires for `-l`/`-p`/`-t` textual output ("the textual format is
// stable for regression testing"). It replaces the teacher's
// test/collect.go (hand-rolled os.ReadDir recursion) with
// bmatcuk/doublestar/v4's recursive glob, and its test/compare.go
// printDiff (a manual side-by-side line dump) with
// pmezard/go-difflib's unified diff, matching SPEC_FULL.md §2's
// ambient-stack wiring.
package golden

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Case is one discovered input/expected-output fixture pair: cases/foo.cmdr
// paired with cases/foo.out.
type Case struct {
	Name     string
	Input    string
	Expected string
}

// Discover walks root for every *.cmdr file with a sibling *.out,
// mirroring the teacher's collectSuites walk but recursively (doublestar's
// `**` descends into suite subdirectories the teacher modeled as nested
// TestSuites) in one pass instead of a separate per-directory call.
func Discover(root string) ([]Case, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.cmdr")
	if err != nil {
		return nil, err
	}
	cases := make([]Case, 0, len(matches))
	for _, m := range matches {
		outRel := strings.TrimSuffix(m, ".cmdr") + ".out"
		if _, err := os.Stat(filepath.Join(root, outRel)); err != nil {
			continue
		}
		cases = append(cases, Case{
			Name:     strings.TrimSuffix(m, ".cmdr"),
			Input:    filepath.Join(root, m),
			Expected: filepath.Join(root, outRel),
		})
	}
	return cases, nil
}

// Compare reports whether got matches the contents of expected, returning
// a unified diff (go-difflib) when it does not — the library the pack
// already reaches for (termfx-morfx), replacing the teacher's hand-rolled
// side-by-side printDiff.
func Compare(name, expected, got string) (diffText string, ok bool) {
	if expected == got {
		return "", true
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(got),
		FromFile: name + ".out",
		ToFile:   name + " (actual)",
		Context:  2,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text, false
}

// ReadExpected reads c's golden file as a string.
func (c Case) ReadExpected() (string, error) {
	b, err := os.ReadFile(c.Expected)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadInput reads c's source file.
func (c Case) ReadInput() ([]byte, error) {
	return os.ReadFile(c.Input)
}
