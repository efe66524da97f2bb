// Package repl implements Commander's interactive line-at-a-time
// front end, grounded on original_source's REPL/interpreter.cpp pair:
// each line read from the console is written to its own temporary file and
// run through the exact same lex/parse/type-check/interpret pipeline a
// script file goes through (source/interpreter/commander.cpp's
// `runProgram` closure), with a shared Checker/Interpreter so that a
// variable declared on one line is visible on the next. A diagnostic
// raised by one line is printed and the loop continues — the same
// recovery behavior as the original's per-line try/catch around
// _interpretFunc — rather than ending the session (SPEC_FULL.md §6 item
// 3).
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/commander-lang/commander/internal/diagnostics"
)

// Eval runs one line of Commander source (already spliced into a
// temporary file by REPL.Run) through the full pipeline; returning an
// error here reports a diagnostic but does not stop the REPL.
type Eval func(path string) error

// REPL is a line-oriented front end over an Eval callback that already
// closes over whatever Checker/Interpreter state should persist across
// lines.
type REPL struct {
	In      *bufio.Reader
	Out     io.Writer
	Eval    Eval
	NoColor bool

	history []string
}

// New builds a REPL reading from in and writing prompts/diagnostics to
// out.
func New(in io.Reader, out io.Writer, eval Eval) *REPL {
	return &REPL{In: bufio.NewReader(in), Out: out, Eval: eval}
}

const prompt = ">> "

// Run reads lines until "quit", "exit", or EOF. "clear" prints a
// terminal-clear escape instead of being evaluated. Every other
// non-empty line is spliced into a temporary file and passed to Eval;
// a returned diagnostic is printed to Out and the loop continues.
func (r *REPL) Run() error {
	fmt.Fprintln(r.Out, "Commander Language Version 1.0")
	fmt.Fprintln(r.Out, "Basic REPL for Commander scripting language")

	for {
		fmt.Fprint(r.Out, prompt)
		line, err := r.In.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = trimLineEnding(line)

		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		r.history = append(r.history, line)
		if line == "clear" {
			fmt.Fprint(r.Out, "\033[H\033[2J")
			continue
		}
		if err := r.evalLine(line); err != nil {
			diagnostics.Print(r.Out, err, r.NoColor)
		}
	}
}

// History returns every line the user has entered this session, in order.
func (r *REPL) History() []string {
	return append([]string(nil), r.history...)
}

func (r *REPL) evalLine(line string) error {
	tmp, err := os.CreateTemp("", "commander-repl-*.cmdr")
	if err != nil {
		return diagnostics.New(diagnostics.RuntimeError, "repl: creating temp file: %v", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(line); err != nil {
		tmp.Close()
		return diagnostics.New(diagnostics.RuntimeError, "repl: writing temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return diagnostics.New(diagnostics.RuntimeError, "repl: closing temp file: %v", err)
	}

	return r.Eval(path)
}

func trimLineEnding(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
