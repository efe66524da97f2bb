// Command commander is the toolchain's single entry point: one cobra root
// command whose flags select which pipeline stage to stop at, generalizing
// codecrafters/cmd/main.go's positional "tokenize|parse|evaluate|run"
// dispatch into the flag surface spec.md §6 specifies (`-f -l -p -t -b -o`),
// with no-flags-given dropping into internal/repl instead of printing usage.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/commander-lang/commander/internal/ast"
	"github.com/commander-lang/commander/internal/builtin"
	"github.com/commander-lang/commander/internal/config"
	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/importer"
	"github.com/commander-lang/commander/internal/interp"
	"github.com/commander-lang/commander/internal/jobrunner"
	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/parser"
	"github.com/commander-lang/commander/internal/repl"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/transpiler/bash"
	"github.com/commander-lang/commander/internal/transpiler/powershell"
	"github.com/commander-lang/commander/internal/typecheck"
)

var (
	flagFile      string
	flagLex       bool
	flagParse     bool
	flagTypecheck bool
	flagTranspile string // "" (unset) | "bash" | "powershell"
	flagOut       string
	flagNoColor   bool
)

func main() {
	root := &cobra.Command{
		Use:   "commander",
		Short: "Commander language lexer, parser, type checker, interpreter, and transpilers",
		RunE:  run,
	}
	root.Flags().StringVarP(&flagFile, "file", "f", "", "interpret the file at <path>")
	root.Flags().BoolVarP(&flagLex, "lex", "l", false, "lex only: print one token per line, then exit")
	root.Flags().BoolVarP(&flagParse, "parse", "p", false, "lex+parse: print the program's S-expression, then exit")
	root.Flags().BoolVarP(&flagTypecheck, "typecheck", "t", false, "lex+parse+type-check: print the annotated S-expression, then exit")
	root.Flags().StringVarP(&flagTranspile, "transpile", "b", "", "lex+parse+type-check+transpile to \"bash\" (default) or \"powershell\"")
	root.Flags().Lookup("transpile").NoOptDefVal = "bash"
	root.Flags().StringVarP(&flagOut, "out", "o", "", "output path for -b (default bash-out.sh/powershell-out.ps1)")
	root.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored diagnostics")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load(".")
	noColor := flagNoColor || cfg.NoColor

	if flagFile == "" {
		return runREPL(noColor)
	}

	dir := filepath.Dir(flagFile)
	src, err := os.ReadFile(flagFile)
	if err != nil {
		diagnostics.Print(os.Stderr, diagnostics.New(diagnostics.RuntimeError, "reading %q: %v", flagFile, err), noColor)
		os.Exit(1)
	}
	file := source.FileName(flagFile)

	if flagLex {
		toks, err := lexer.Lex(file, src)
		if err != nil {
			diagnostics.Print(os.Stderr, err, noColor)
			os.Exit(1)
		}
		for _, tok := range toks {
			fmt.Println(tok.String())
		}
		return nil
	}

	prog, err := parser.ParseSource(file, src)
	if err != nil {
		diagnostics.Print(os.Stderr, err, noColor)
		os.Exit(1)
	}
	if err := importer.Expand(prog, dir, flagFile); err != nil {
		diagnostics.Print(os.Stderr, err, noColor)
		os.Exit(1)
	}

	if flagParse {
		fmt.Println(prog.String())
		return nil
	}

	checker := typecheck.NewChecker(typecheck.NewVariableTable())
	if err := checker.Check(prog); err != nil {
		diagnostics.Print(os.Stderr, err, noColor)
		os.Exit(1)
	}

	if flagTypecheck {
		fmt.Println(typecheck.Annotate(prog, checker.Types))
		return nil
	}

	if flagTranspile != "" {
		return transpileAndWrite(prog, flagTranspile, noColor)
	}

	jobs := jobrunner.New()
	jobs.DefaultTimeout = cfg.Timeout
	in := interp.New()
	in.Builtins = builtin.New()
	in.Jobs = jobs
	in.Importer = importer.FilesystemImporter{BaseDir: dir}

	if err := in.Run(prog); err != nil {
		diagnostics.Print(os.Stderr, err, noColor)
		os.Exit(1)
	}
	return nil
}

func transpileAndWrite(prog *ast.Program, target string, noColor bool) error {
	var out string
	var err error
	outPath := flagOut
	switch target {
	case "bash":
		out, err = bash.Transpile(prog)
		if outPath == "" {
			outPath = "bash-out.sh"
		}
	case "powershell":
		out, err = powershell.Transpile(prog)
		if outPath == "" {
			outPath = "powershell-out.ps1"
		}
	default:
		err = diagnostics.New(diagnostics.RuntimeError, "unknown transpile target %q (want bash or powershell)", target)
	}
	if err != nil {
		diagnostics.Print(os.Stderr, err, noColor)
		os.Exit(1)
	}
	if werr := os.WriteFile(outPath, []byte(out), 0o755); werr != nil {
		diagnostics.Print(os.Stderr, diagnostics.New(diagnostics.RuntimeError, "writing %q: %v", outPath, werr), noColor)
		os.Exit(1)
	}
	return nil
}

func runREPL(noColor bool) error {
	wd, _ := os.Getwd()
	cfg := config.Load(wd)
	checker := typecheck.NewChecker(typecheck.NewVariableTable())
	jobs := jobrunner.New()
	jobs.DefaultTimeout = cfg.Timeout
	in := interp.New()
	in.Builtins = builtin.New()
	in.Jobs = jobs
	in.Importer = importer.FilesystemImporter{BaseDir: wd}

	r := repl.New(os.Stdin, os.Stdout, func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			return diagnostics.New(diagnostics.RuntimeError, "reading %q: %v", path, err)
		}
		prog, err := parser.ParseSource(source.FileName(path), src)
		if err != nil {
			return err
		}
		if err := checker.Check(prog); err != nil {
			return err
		}
		return in.Run(prog)
	})
	r.NoColor = noColor
	return r.Run()
}
