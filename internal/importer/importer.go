// Package importer expands `import "<path>";` statements before
// type-checking, exactly as spec.md §6 describes: "resolves <path>
// relative to the importer, lexes and parses it, and substitutes the
// resulting statement list in place. Cycles are detected by a parse-time
// path set; a cycle aborts parsing with a diagnostic." This is the
// pipeline-level home for that rule; internal/interp.Interpreter also
// guards against re-entering an importing path at runtime (its Importer
// collaborator may be driven directly by a REPL without ever going
// through this package), so a cycle is still caught even when a caller
// skips Expand.
package importer

import (
	"os"
	"path/filepath"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/source"
)

// Expand walks prog's top-level statements, replacing each ImportStmt with
// the statement list of the file it names (resolved relative to dir, the
// directory containing prog itself), recursively. path is prog's own path,
// used only to seed the cycle-detection set.
func Expand(prog *ast.Program, dir string, path string) error {
	seen := map[string]bool{filepath.Clean(path): true}
	out, err := expandStmts(prog.Stmts, dir, seen)
	if err != nil {
		return err
	}
	prog.Stmts = out
	return nil
}

// FilesystemImporter implements internal/interp.Importer by resolving an
// import path relative to BaseDir and parsing it fresh on every Load — the
// runtime-level counterpart to Expand, used where a caller (internal/repl,
// in particular) drives internal/interp directly against a one-line
// program that was never run through Expand first.
type FilesystemImporter struct {
	BaseDir string
}

func (fi FilesystemImporter) Load(path string) (*ast.Program, error) {
	full := filepath.Join(fi.BaseDir, path)
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, diagnostics.New(diagnostics.RuntimeError, "import %q: %v", path, err)
	}
	return parser.ParseSource(source.FileName(full), src)
}

func expandStmts(stmts []ast.Stmt, dir string, seen map[string]bool) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		imp, ok := s.(*ast.ImportStmt)
		if !ok {
			out = append(out, s)
			continue
		}
		full := filepath.Clean(filepath.Join(dir, imp.Path))
		if seen[full] {
			return nil, diagnostics.At(diagnostics.ParseError, imp.Pos, "import cycle detected at %q", imp.Path)
		}
		src, err := os.ReadFile(full)
		if err != nil {
			return nil, diagnostics.At(diagnostics.ParseError, imp.Pos, "cannot import %q: %v", imp.Path, err)
		}
		imported, err := parser.ParseSource(source.FileName(full), src)
		if err != nil {
			return nil, err
		}
		seen[full] = true
		spliced, err := expandStmts(imported.Stmts, filepath.Dir(full), seen)
		delete(seen, full)
		if err != nil {
			return nil, err
		}
		seen[full] = true
		out = append(out, spliced...)
	}
	return out, nil
}
