// Package source reads program text from disk and hands out immutable
// file-position handles used throughout the toolchain for diagnostics.
package source

import (
	"fmt"
	"os"
)

// FileName identifies the origin of a program's source text. The REPL uses
// a synthetic name (e.g. "<stdin>") since it has no backing file.
type FileName string

// Position is a single point in a source file. Line/Column are 1-based;
// Index is the 0-based byte offset. Positions are immutable once created
// and are copied by value into tokens and AST nodes.
type Position struct {
	File   FileName
	Line   int
	Column int
	Index  int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Zero reports whether this is the unset/default position.
func (p Position) Zero() bool {
	return p == Position{}
}

// Read loads the file at path into memory and returns its contents along
// with the FileName handle that diagnostics should carry.
func Read(path string) (FileName, []byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return FileName(path), nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FileName(path), contents, nil
}
