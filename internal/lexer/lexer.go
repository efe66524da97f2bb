// Package lexer implements Commander's hand-written tokenizer: whitespace
// and comment skipping, keyword/literal/number scanning, command-mode
// bareword lexing, and string interpolation with re-entrant sub-lexing
// inside `${…}`/`{…}` (spec.md §4.1). It never recovers from an error —
// the first failure is returned as a *diagnostics.Diagnostic of kind
// LexError, carrying the offending source.Position.
package lexer

import (
	"strings"

	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/token"
)

// Lexer scans one source file into a token.Token stream.
type Lexer struct {
	file string
	src  []byte
	idx  int // index of the next unread byte
	line int
	col  int

	inCommand        bool
	firstOfStatement bool
}

// New creates a Lexer over src, tagged with file for diagnostics.
func New(file source.FileName, src []byte) *Lexer {
	return &Lexer{
		file:             string(file),
		src:              src,
		line:             1,
		col:              1,
		firstOfStatement: true,
	}
}

// Lex scans the entire source and returns the resulting token stream,
// always terminated by an END_OF_FILE token.
func Lex(file source.FileName, src []byte) ([]token.Token, error) {
	return New(file, src).Lex()
}

// backtickState tracks one scanning context's open/close bookkeeping for
// recursive command-mode backtick pairs. Each scanning context (the
// top-level Lex loop, and each nested `${…}`/`{…}` interpolation scan) owns
// its own backtickState, so arbitrarily nested backticks-inside-${}-inside-
// backticks are resolved correctly by Go's own call stack rather than a
// shared global counter.
type backtickState struct {
	open  bool
	saved bool
}

// toggle opens or closes a command-mode span on a BACKTICK token, restoring
// whatever inCommand was before the matching open.
func (l *Lexer) toggleBacktick(st *backtickState) {
	if st.open {
		l.inCommand = st.saved
		st.open = false
		return
	}
	st.saved = l.inCommand
	l.inCommand = true
	st.open = true
}

func (l *Lexer) Lex() ([]token.Token, error) {
	var toks []token.Token
	var bt backtickState
	for {
		if err := l.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if l.atEnd() {
			toks = append(toks, token.Token{Kind: token.END_OF_FILE, Position: l.pos()})
			return toks, nil
		}

		tok, err := l.scanOne()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			continue
		}
		if tok.Kind == token.BACKTICK {
			l.toggleBacktick(&bt)
		}
		toks = append(toks, *tok)
	}
}

func (l *Lexer) pos() source.Position {
	return source.Position{File: source.FileName(l.file), Line: l.line, Column: l.col, Index: l.idx}
}

func (l *Lexer) atEnd() bool { return l.idx >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.idx]
}

func (l *Lexer) peekAt(off int) byte {
	if l.idx+off >= len(l.src) {
		return 0
	}
	return l.src[l.idx+off]
}

// advance consumes and returns the current byte, tracking line/column.
func (l *Lexer) advance() byte {
	c := l.src[l.idx]
	l.idx++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.atEnd() {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peekByte() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peekByte() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return diagnostics.At(diagnostics.LexError, start, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// scanOne scans exactly one token. A nil, nil result means the call
// consumed input without producing a token (not currently used, but kept
// so interpolation scanning can skip purely structural bytes uniformly).
func (l *Lexer) scanOne() (*token.Token, error) {
	startFirst := l.firstOfStatement
	start := l.pos()
	c := l.peekByte()

	if l.inCommand {
		tok, err := l.lexCommandToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.SEMICOLON {
			l.inCommand = false
			l.firstOfStatement = true
		} else {
			l.firstOfStatement = false
		}
		return tok, nil
	}

	// Command delimiters are recognized in every mode (parens/semicolons
	// double as ordinary punctuation outside of command statements).
	if tok, ok := l.tryLiteralTable(token.CommandLiterals); ok {
		l.firstOfStatement = tok.Kind == token.SEMICOLON
		return &tok, nil
	}

	if tok, ok := l.tryLiteralTable(token.Literals); ok {
		l.firstOfStatement = false
		if tok.Kind == token.LBRACE || tok.Kind == token.RBRACE {
			l.firstOfStatement = true
		}
		return &tok, nil
	}

	if isDigit(c) {
		tok, err := l.lexNumber()
		l.firstOfStatement = false
		return tok, err
	}

	if c == '"' || c == '\'' || (c == '$' && (l.peekAt(1) == '"' || l.peekAt(1) == '\'')) {
		tok, err := l.lexString()
		if err != nil {
			return nil, err
		}
		if startFirst && (tok.Kind == token.STRINGVAL || tok.Kind == token.STRINGLITERAL) && !l.looksLikeAssignContinuation() {
			l.inCommand = true
		}
		l.firstOfStatement = false
		return tok, nil
	}

	if isIdentStart(c) {
		name := l.lexIdentName()
		if kw, ok := token.Keywords[name]; ok {
			l.firstOfStatement = false
			return &token.Token{Kind: kw, Lexeme: name, Position: start}, nil
		}
		tok := &token.Token{Kind: token.VARIABLE, Lexeme: name, Position: start}
		if startFirst && !l.looksLikeAssignContinuation() {
			l.inCommand = true
		}
		l.firstOfStatement = false
		return tok, nil
	}

	if c < 32 || c > 126 {
		return nil, diagnostics.At(diagnostics.LexError, start, "illegal character %q", c)
	}
	return nil, diagnostics.At(diagnostics.LexError, start, "unrecognized token %q", c)
}

// assignContinuationLiterals are the operators whose presence right after a
// statement-initial bareword means "this is a typed declaration or
// assignment/increment expression", not a command invocation.
var assignContinuationLiterals = []string{":", "**=", "+=", "-=", "*=", "/=", "%=", "++", "--", "="}

// looksLikeAssignContinuation peeks (past whitespace/comments) at the token
// following a statement-initial bareword, without otherwise touching
// inCommand/firstOfStatement state. A bareword followed by one of these
// operators declares or assigns a variable (`x: int = 1;`, `x = 1;`,
// `x += 1;`, `x++;`), as does a bareword immediately followed by `[`
// (`xs[0] = 9;`); anything else (another bareword, a flag, end of
// statement) means the bareword itself is a command name.
func (l *Lexer) looksLikeAssignContinuation() bool {
	if l.peekAt(0) == '[' {
		return true
	}
	if err := l.skipWhitespaceAndComments(); err != nil {
		return false
	}
	for _, lit := range assignContinuationLiterals {
		if l.matchAt(lit) {
			return true
		}
	}
	return false
}

// lexCommandToken scans one token while inCommand is true: command
// delimiters, strings, `$var`, or a bareword.
func (l *Lexer) lexCommandToken() (*token.Token, error) {
	start := l.pos()
	c := l.peekByte()

	if tok, ok := l.tryLiteralTable(token.CommandLiterals); ok {
		return &tok, nil
	}

	if c == '"' || c == '\'' || (c == '$' && (l.peekAt(1) == '"' || l.peekAt(1) == '\'')) {
		return l.lexString()
	}

	if c == '$' && isIdentStart(l.peekAt(1)) {
		l.advance() // consume '$'
		name := l.lexIdentName()
		return &token.Token{Kind: token.VARIABLE, Lexeme: name, Position: start}, nil
	}

	return l.lexBareword()
}

// bareword runs until whitespace or a command-delimiter/quote/backtick.
func (l *Lexer) lexBareword() (*token.Token, error) {
	start := l.pos()
	var sb strings.Builder
	for !l.atEnd() && !isCommandBoundary(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	if sb.Len() == 0 {
		return nil, diagnostics.At(diagnostics.LexError, start, "unrecognized token %q", l.peekByte())
	}
	return &token.Token{Kind: token.CMDSTRINGVAL, Lexeme: sb.String(), Position: start}, nil
}

func isCommandBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '`', '(', ')', '|', '&', ';', '"', '\'':
		return true
	}
	return c == 0
}

func (l *Lexer) tryLiteralTable(table []struct {
	Lexeme string
	Kind   token.Kind
}) (token.Token, bool) {
	start := l.pos()
	// Longest-first: the tables are declared longest-first already.
	for _, lit := range table {
		if l.matchAt(lit.Lexeme) {
			for range lit.Lexeme {
				l.advance()
			}
			return token.Token{Kind: lit.Kind, Lexeme: lit.Lexeme, Position: start}, true
		}
	}
	return token.Token{}, false
}

func (l *Lexer) matchAt(lit string) bool {
	if l.idx+len(lit) > len(l.src) {
		return false
	}
	return string(l.src[l.idx:l.idx+len(lit)]) == lit
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

func (l *Lexer) lexIdentName() string {
	start := l.idx
	for !l.atEnd() && isIdentChar(l.peekByte()) {
		l.advance()
	}
	return string(l.src[start:l.idx])
}

// lexNumber tries float before int, per spec.md §4.1: a float requires a
// literal '.' with at least one trailing digit; otherwise it's an int.
func (l *Lexer) lexNumber() (*token.Token, error) {
	start := l.pos()
	startIdx := l.idx
	for !l.atEnd() && isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peekByte()) {
			l.advance()
		}
		return &token.Token{Kind: token.FLOATVAL, Lexeme: string(l.src[startIdx:l.idx]), Position: start}, nil
	}
	return &token.Token{Kind: token.INTVAL, Lexeme: string(l.src[startIdx:l.idx]), Position: start}, nil
}

// lexString scans a quoted string literal, handling the two interpolation
// regimes from spec.md §4.1: a plain "…"/'…' string splices `$name` and
// `${ expr }`; a format string ($"…" or $'…') instead splices bare
// `{ expr }`, using `\{`/`\}` for literal braces. Escapes (\\ \" \' \n \t
// \r \$ and a trailing backslash-newline continuation) are shared by both.
//
// The nested `{ … }`/`${ … }` scan re-enters the main token loop through
// scanInterpolation rather than recursing through this function directly,
// tracking the brace nesting depth explicitly so array/object literals
// inside the interpolated expression don't prematurely close it.
func (l *Lexer) lexString() (*token.Token, error) {
	start := l.pos()
	format := false
	if l.peekByte() == '$' {
		format = true
		l.advance()
	}
	quote := l.advance()

	var parts []token.StringPart
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, token.StringPart{Kind: token.PartLiteral, Literal: literal.String()})
			literal.Reset()
		}
	}

	for {
		if l.atEnd() {
			return nil, diagnostics.At(diagnostics.LexError, start, "unterminated string literal")
		}
		c := l.peekByte()

		if c == quote {
			l.advance()
			break
		}

		if c == '\\' {
			l.advance()
			if l.atEnd() {
				return nil, diagnostics.At(diagnostics.LexError, start, "unterminated string literal")
			}
			escStart := l.pos()
			e := l.advance()
			switch e {
			case '\\':
				literal.WriteByte('\\')
			case '$':
				literal.WriteByte('$')
			case 'n':
				literal.WriteByte('\n')
			case 't':
				literal.WriteByte('\t')
			case 'r':
				literal.WriteByte('\r')
			case '"':
				if quote != '"' {
					return nil, diagnostics.At(diagnostics.LexError, escStart, "invalid escape sequence \\\"")
				}
				literal.WriteByte('"')
			case '\'':
				if quote != '\'' {
					return nil, diagnostics.At(diagnostics.LexError, escStart, "invalid escape sequence \\'")
				}
				literal.WriteByte('\'')
			case '{':
				if !format {
					return nil, diagnostics.At(diagnostics.LexError, escStart, "invalid escape sequence \\{")
				}
				literal.WriteByte('{')
			case '}':
				if !format {
					return nil, diagnostics.At(diagnostics.LexError, escStart, "invalid escape sequence \\}")
				}
				literal.WriteByte('}')
			case '\r':
				if l.peekByte() == '\n' {
					l.advance()
				}
				// line continuation: nothing written
			case '\n':
				// line continuation: nothing written
			default:
				return nil, diagnostics.At(diagnostics.LexError, escStart, "invalid escape sequence \\%c", e)
			}
			continue
		}

		if !format && c == '$' && l.peekAt(1) == '{' {
			flush()
			l.advance()
			l.advance()
			toks, err := l.scanInterpolation()
			if err != nil {
				return nil, err
			}
			parts = append(parts, token.StringPart{Kind: token.PartTokens, Tokens: toks})
			continue
		}

		if !format && c == '$' && isIdentStart(l.peekAt(1)) {
			flush()
			varStart := l.pos()
			l.advance()
			name := l.lexIdentName()
			parts = append(parts, token.StringPart{
				Kind:   token.PartTokens,
				Tokens: []token.Token{{Kind: token.VARIABLE, Lexeme: name, Position: varStart}},
			})
			continue
		}

		if format && c == '{' {
			flush()
			l.advance()
			toks, err := l.scanInterpolation()
			if err != nil {
				return nil, err
			}
			parts = append(parts, token.StringPart{Kind: token.PartTokens, Tokens: toks})
			continue
		}

		literal.WriteByte(l.advance())
	}
	flush()

	if !format && len(parts) <= 1 && (len(parts) == 0 || parts[0].Kind == token.PartLiteral) {
		lexeme := ""
		if len(parts) == 1 {
			lexeme = parts[0].Literal
		}
		return &token.Token{Kind: token.STRINGLITERAL, Lexeme: lexeme, Position: start}, nil
	}

	return &token.Token{
		Kind:     token.STRINGVAL,
		Position: start,
		Str:      &token.StringInfo{Format: format, Parts: parts},
	}, nil
}

// scanInterpolation re-enters the main token loop for the body of a
// `${ … }`/`{ … }` splice, stopping at the '}' that balances the one the
// caller already consumed. inCommand is suspended for the duration (an
// interpolated expression is never itself in command mode unless it opens
// its own backtick span), and restored on return.
func (l *Lexer) scanInterpolation() ([]token.Token, error) {
	savedCommand := l.inCommand
	savedFirst := l.firstOfStatement
	l.inCommand = false
	l.firstOfStatement = false
	defer func() {
		l.inCommand = savedCommand
		l.firstOfStatement = savedFirst
	}()

	depth := 1
	var toks []token.Token
	var bt backtickState
	for {
		if err := l.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if l.atEnd() {
			return nil, diagnostics.At(diagnostics.LexError, l.pos(), "unterminated string interpolation")
		}

		tok, err := l.scanOne()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			continue
		}

		switch tok.Kind {
		case token.RBRACE:
			depth--
			if depth == 0 {
				return toks, nil
			}
		case token.LBRACE:
			depth++
		case token.BACKTICK:
			l.toggleBacktick(&bt)
		}
		toks = append(toks, *tok)
	}
}
