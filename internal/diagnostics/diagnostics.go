// Package diagnostics implements the single error taxonomy shared by every
// stage of the toolchain (spec.md §7): LexError, ParseError, TypeError,
// RuntimeError, and JobError, each optionally carrying a source.Position.
//
// Errors are never caught inside the core; they propagate to the top-level
// driver in cmd/commander, which prints them with Print and exits 1.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/commander-lang/commander/internal/source"
)

// Kind identifies which stage raised a Diagnostic.
type Kind string

const (
	LexError     Kind = "LexError"
	ParseError   Kind = "ParseError"
	TypeError    Kind = "TypeError"
	RuntimeError Kind = "RuntimeError"
	JobError     Kind = "JobError"
)

// Diagnostic is the one error type every core component returns.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Position source.Position
	HasPos   bool
}

func (d *Diagnostic) Error() string {
	if d.HasPos {
		return fmt.Sprintf("%s at %s: %s", d.Kind, d.Position, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// New builds a Diagnostic without a position.
func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds a Diagnostic anchored to a source position.
func At(kind Kind, pos source.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Position: pos, HasPos: true}
}

// As extracts a *Diagnostic from an error chain, mirroring errors.As.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// colorEnabled gates ANSI color by both the NO_COLOR-style override and
// whether stderr is actually a terminal, so piped output stays plain.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes one line of diagnostic text to w, colored red when the
// destination is an interactive terminal and noColor is false.
func Print(w io.Writer, err error, noColor bool) {
	msg := err.Error()
	if colorEnabled(w, noColor) {
		fmt.Fprintln(w, color.New(color.FgRed).Sprint(msg))
		return
	}
	fmt.Fprintln(w, msg)
}
