package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/lexer"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.Lex(source.FileName("<test>"), []byte(src))
	require.NoError(t, err)
	return toks
}

func TestLexKeywordsAndPunctuation(t *testing.T) {
	toks := lex(t, "if (x <= 3) { y += 1; }")
	require.Equal(t, []token.Kind{
		token.IF, token.LPAREN, token.VARIABLE, token.LESS_EQUAL, token.INTVAL, token.RPAREN,
		token.LBRACE, token.VARIABLE, token.PLUS_ASSIGN, token.INTVAL, token.SEMICOLON, token.RBRACE,
		token.END_OF_FILE,
	}, kinds(t, toks))
}

func TestLexNumbers(t *testing.T) {
	toks := lex(t, "3 3.5 10")
	require.Equal(t, token.INTVAL, toks[0].Kind)
	require.Equal(t, "3", toks[0].Lexeme)
	require.Equal(t, token.FLOATVAL, toks[1].Kind)
	require.Equal(t, "3.5", toks[1].Lexeme)
	require.Equal(t, token.INTVAL, toks[2].Kind)
}

func TestLexOperatorLongestMatch(t *testing.T) {
	toks := lex(t, "a **= b ** c")
	require.Equal(t, []token.Kind{
		token.VARIABLE, token.POW_ASSIGN, token.VARIABLE, token.POW, token.VARIABLE, token.END_OF_FILE,
	}, kinds(t, toks))
}

func TestLexPlainStringNoInterpolation(t *testing.T) {
	toks := lex(t, `x = "hello world";`)
	require.Equal(t, token.STRINGLITERAL, toks[2].Kind)
	require.Equal(t, "hello world", toks[2].Lexeme)
}

func TestLexStringEscapes(t *testing.T) {
	toks := lex(t, `"a\nb\tc\\d\"e"`)
	require.Equal(t, token.STRINGLITERAL, toks[0].Kind)
	require.Equal(t, "a\nb\tc\\d\"e", toks[0].Lexeme)
}

func TestLexStringBadEscape(t *testing.T) {
	_, err := lexer.Lex(source.FileName("<test>"), []byte(`"bad\qescape"`))
	require.Error(t, err)
}

func TestLexDollarInterpolation(t *testing.T) {
	toks := lex(t, `"hello ${ 1 + 2 } and $name"`)
	require.Equal(t, token.STRINGVAL, toks[0].Kind)
	info := toks[0].Str
	require.NotNil(t, info)
	require.False(t, info.Format)
	require.Len(t, info.Parts, 4)

	require.Equal(t, token.PartLiteral, info.Parts[0].Kind)
	require.Equal(t, "hello ", info.Parts[0].Literal)

	require.Equal(t, token.PartTokens, info.Parts[1].Kind)
	require.Equal(t, []token.Kind{token.INTVAL, token.PLUS, token.INTVAL}, kindsOf(info.Parts[1].Tokens))

	require.Equal(t, token.PartLiteral, info.Parts[2].Kind)
	require.Equal(t, " and ", info.Parts[2].Literal)

	require.Equal(t, token.PartTokens, info.Parts[3].Kind)
	require.Len(t, info.Parts[3].Tokens, 1)
	require.Equal(t, token.VARIABLE, info.Parts[3].Tokens[0].Kind)
	require.Equal(t, "name", info.Parts[3].Tokens[0].Lexeme)
}

func TestLexFormatStringBraceInterpolation(t *testing.T) {
	toks := lex(t, `$"total: {count}"`)
	info := toks[0].Str
	require.NotNil(t, info)
	require.True(t, info.Format)
	require.Len(t, info.Parts, 2)
	require.Equal(t, "total: ", info.Parts[0].Literal)
	require.Equal(t, token.VARIABLE, info.Parts[1].Tokens[0].Kind)
}

func TestLexFormatStringLiteralBraceEscape(t *testing.T) {
	toks := lex(t, `$"a \{ b \} c"`)
	info := toks[0].Str
	require.NotNil(t, info)
	require.Len(t, info.Parts, 1)
	require.Equal(t, "a { b } c", info.Parts[0].Literal)
}

func TestLexInterpolationNestedBraces(t *testing.T) {
	toks := lex(t, `"${ {1, 2}[0] }"`)
	info := toks[0].Str
	require.NotNil(t, info)
	require.Len(t, info.Parts, 1)
	inner := kindsOf(info.Parts[0].Tokens)
	require.Equal(t, []token.Kind{
		token.LBRACE, token.INTVAL, token.COMMA, token.INTVAL, token.RBRACE,
		token.LBRACKET, token.INTVAL, token.RBRACKET,
	}, inner)
}

func TestLexCommandModeBareword(t *testing.T) {
	// The first word of a command statement is already consumed by the
	// ordinary identifier path before command mode turns on, so it comes
	// out as VARIABLE; everything after it is lexed as a bareword.
	toks := lex(t, "ls -la;")
	require.Equal(t, []token.Kind{
		token.VARIABLE, token.CMDSTRINGVAL, token.SEMICOLON, token.END_OF_FILE,
	}, kinds(t, toks))
	require.Equal(t, "ls", toks[0].Lexeme)
	require.Equal(t, "-la", toks[1].Lexeme)
}

func TestLexBacktickCommandExpression(t *testing.T) {
	toks := lex(t, "x = `ls -la`;")
	require.Equal(t, []token.Kind{
		token.VARIABLE, token.EQUAL, token.BACKTICK,
		token.CMDSTRINGVAL, token.CMDSTRINGVAL,
		token.BACKTICK, token.SEMICOLON, token.END_OF_FILE,
	}, kinds(t, toks))
}

func TestLexBacktickInsideInterpolation(t *testing.T) {
	toks := lex(t, "x = \"result: ${ `pwd` }\";")
	require.Equal(t, token.VARIABLE, toks[0].Kind)
	require.Equal(t, token.EQUAL, toks[1].Kind)
	require.Equal(t, token.STRINGVAL, toks[2].Kind)
	info := toks[2].Str
	require.Len(t, info.Parts, 2)
	inner := kindsOf(info.Parts[1].Tokens)
	require.Equal(t, []token.Kind{token.BACKTICK, token.CMDSTRINGVAL, token.BACKTICK}, inner)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := lexer.Lex(source.FileName("<test>"), []byte(`"abc`))
	require.Error(t, err)
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err := lexer.Lex(source.FileName("<test>"), []byte("/* abc"))
	require.Error(t, err)
}

func TestLexLineCommentSkipped(t *testing.T) {
	toks := lex(t, "x = 1 // trailing comment\n;")
	require.Equal(t, []token.Kind{
		token.VARIABLE, token.EQUAL, token.INTVAL, token.SEMICOLON, token.END_OF_FILE,
	}, kinds(t, toks))
}

func kindsOf(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}
