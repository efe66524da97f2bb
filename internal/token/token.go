// Package token defines the lexical vocabulary of the Commander language:
// token kinds, the Token and StringToken carriers, and their textual form
// for the "-l" lex-only CLI mode.
package token

import (
	"fmt"
	"strings"

	"github.com/commander-lang/commander/internal/source"
)

// Kind enumerates every distinct token the lexer produces.
type Kind int

const (
	ILLEGAL Kind = iota
	END_OF_FILE

	// Keywords
	ALIAS
	ASSERT
	BOOL
	BREAK
	CONST
	CONTINUE
	DO
	ELSE
	FALSE
	FLOAT
	FOR
	IF
	IMPORT
	INT
	PRINT
	PRINTLN
	READ
	RETURN
	SCAN
	STRING_KW
	TIMEOUT
	TO
	TRUE
	TYPE
	WHILE
	WRITE

	// Punctuation / operators
	POW_ASSIGN // **=
	POW        // **
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	EQUAL_EQUAL
	BANG_EQUAL
	LESS_EQUAL
	GREATER_EQUAL
	AND_AND
	OR_OR
	PLUS_PLUS
	MINUS_MINUS
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	LESS
	GREATER
	BANG
	COLON
	COMMA
	EQUAL
	LBRACE
	LBRACKET
	RBRACE
	RBRACKET
	DOT
	QUESTION
	ARROW

	// Command delimiters
	BACKTICK
	LPAREN
	RPAREN
	PIPE
	AMPERSAND
	SEMICOLON

	// Literals
	INTVAL
	FLOATVAL
	STRINGVAL
	STRINGLITERAL
	CMDSTRINGVAL
	VARIABLE
)

var names = map[Kind]string{
	ILLEGAL:        "ILLEGAL",
	END_OF_FILE:    "END_OF_FILE",
	ALIAS:          "alias",
	ASSERT:         "assert",
	BOOL:           "bool",
	BREAK:          "break",
	CONST:          "const",
	CONTINUE:       "continue",
	DO:             "do",
	ELSE:           "else",
	FALSE:          "false",
	FLOAT:          "float",
	FOR:            "for",
	IF:             "if",
	IMPORT:         "import",
	INT:            "int",
	PRINT:          "print",
	PRINTLN:        "println",
	READ:           "read",
	RETURN:         "return",
	SCAN:           "scan",
	STRING_KW:      "string",
	TIMEOUT:        "timeout",
	TO:             "to",
	TRUE:           "true",
	TYPE:           "type",
	WHILE:          "while",
	WRITE:          "write",
	POW_ASSIGN:     "**=",
	POW:            "**",
	PLUS_ASSIGN:    "+=",
	MINUS_ASSIGN:   "-=",
	STAR_ASSIGN:    "*=",
	SLASH_ASSIGN:   "/=",
	PERCENT_ASSIGN: "%=",
	EQUAL_EQUAL:    "==",
	BANG_EQUAL:     "!=",
	LESS_EQUAL:     "<=",
	GREATER_EQUAL:  ">=",
	AND_AND:        "&&",
	OR_OR:          "||",
	PLUS_PLUS:      "++",
	MINUS_MINUS:    "--",
	PLUS:           "+",
	MINUS:          "-",
	STAR:           "*",
	SLASH:          "/",
	PERCENT:        "%",
	LESS:           "<",
	GREATER:        ">",
	BANG:           "!",
	COLON:          ":",
	COMMA:          ",",
	EQUAL:          "=",
	LBRACE:         "{",
	LBRACKET:       "[",
	RBRACE:         "}",
	RBRACKET:       "]",
	DOT:            ".",
	QUESTION:       "?",
	ARROW:          "->",
	BACKTICK:       "`",
	LPAREN:         "(",
	RPAREN:         ")",
	PIPE:           "|",
	AMPERSAND:      "&",
	SEMICOLON:      ";",
	INTVAL:         "INTVAL",
	FLOATVAL:       "FLOATVAL",
	STRINGVAL:      "STRINGVAL",
	STRINGLITERAL:  "STRINGLITERAL",
	CMDSTRINGVAL:   "CMDSTRINGVAL",
	VARIABLE:       "VARIABLE",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps lexemes to their keyword Kind; used by the lexer's
// identifier scanner for the boundary-checked keyword match.
var Keywords = map[string]Kind{
	"alias": ALIAS, "assert": ASSERT, "bool": BOOL, "break": BREAK, "const": CONST,
	"continue": CONTINUE, "do": DO, "else": ELSE, "false": FALSE,
	"float": FLOAT, "for": FOR, "if": IF, "import": IMPORT, "int": INT,
	"print": PRINT, "println": PRINTLN, "read": READ, "return": RETURN,
	"scan": SCAN, "string": STRING_KW, "timeout": TIMEOUT, "to": TO, "true": TRUE, "type": TYPE,
	"while": WHILE, "write": WRITE,
}

// Literals lists fixed-lexeme tokens (operators/punctuation/command
// delimiters) longest-first, as the lexer's literal-match table.
var Literals = []struct {
	Lexeme string
	Kind   Kind
}{
	{"**=", POW_ASSIGN}, {"**", POW},
	{"+=", PLUS_ASSIGN}, {"-=", MINUS_ASSIGN}, {"*=", STAR_ASSIGN},
	{"/=", SLASH_ASSIGN}, {"%=", PERCENT_ASSIGN},
	{"==", EQUAL_EQUAL}, {"!=", BANG_EQUAL},
	{"<=", LESS_EQUAL}, {">=", GREATER_EQUAL},
	{"&&", AND_AND}, {"||", OR_OR},
	{"++", PLUS_PLUS}, {"--", MINUS_MINUS},
	{"->", ARROW},
	{"+", PLUS}, {"-", MINUS}, {"*", STAR}, {"/", SLASH}, {"%", PERCENT},
	{"<", LESS}, {">", GREATER}, {"!", BANG}, {":", COLON}, {",", COMMA},
	{"=", EQUAL}, {"{", LBRACE}, {"[", LBRACKET}, {"}", RBRACE},
	{"]", RBRACKET}, {".", DOT}, {"?", QUESTION},
}

// CommandLiterals are the delimiters the lexer recognizes in every mode,
// including command mode.
var CommandLiterals = []struct {
	Lexeme string
	Kind   Kind
}{
	{"`", BACKTICK}, {"(", LPAREN}, {")", RPAREN},
	{"|", PIPE}, {"&", AMPERSAND}, {";", SEMICOLON},
}

// PartKind distinguishes the two kinds of StringInfo sub-token.
type PartKind int

const (
	PartLiteral PartKind = iota
	PartTokens
)

// StringPart is one element of an interpolated string's ordered sub-token
// sequence: either a raw literal fragment or a nested run of tokens
// produced by re-entering the main scan loop inside `${...}`/`{...}`.
type StringPart struct {
	Kind    PartKind
	Literal string  // valid when Kind == PartLiteral
	Tokens  []Token // valid when Kind == PartTokens (a balanced sub-expression)
}

// StringInfo is the payload a STRINGVAL token carries: the ordered
// literal/expression structure produced by string interpolation (spec.md
// §4.1). Token keeps this as an optional pointer rather than Commander
// modeling a wholly separate "StringToken" struct, so the token stream
// remains a single homogeneous []Token — a tagged variant realized as one
// optional field instead of a second carrier type, since nothing else
// about a string token's shape differs from a plain Token.
type StringInfo struct {
	Format bool // true for `$"…"`/`$'…'` format strings
	Parts  []StringPart
}

// Token is a single lexical unit. Str is non-nil when Kind == STRINGVAL.
type Token struct {
	Kind     Kind
	Lexeme   string
	Position source.Position
	Str      *StringInfo
}

func (t Token) String() string {
	if t.Str == nil {
		return fmt.Sprintf("%s '%s'", t.Kind, t.Lexeme)
	}
	var sb strings.Builder
	sb.WriteString("STRINGVAL")
	for _, p := range t.Str.Parts {
		sb.WriteByte('\n')
		if p.Kind == PartLiteral {
			sb.WriteString("  [" + p.Literal + "]")
		} else {
			sb.WriteString("  [")
			for i, pt := range p.Tokens {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(pt.String())
			}
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
