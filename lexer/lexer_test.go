package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func types(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeSimpleQuery(t *testing.T) {
	toks := Tokenize(`objects/java.lang.String[shallow > 100] | top(10, shallow)`)
	got := types(toks)
	assert.Equal(t, []Type{
		IDENT, SLASH, IDENT, LBRACKET, IDENT, GT, NUMBER, RBRACKET,
		PIPE, IDENT, LPAREN, NUMBER, COMMA, IDENT, RPAREN, EOF,
	}, got)
}

func TestTokenOffsetsAreExact(t *testing.T) {
	toks := Tokenize(`a > 1`)
	assert.Equal(t, "a", toks[0].Literal)
	assert.Equal(t, 0, toks[0].Start)
	assert.Equal(t, 1, toks[0].End)
	assert.Equal(t, ">", toks[1].Literal)
	assert.Equal(t, 2, toks[1].Start)
	assert.Equal(t, 3, toks[1].End)
}

func TestNumberSizeSuffixes(t *testing.T) {
	cases := []string{"1K", "1KB", "1M", "1MB", "1G", "1GB", "1k", "1.5M"}
	for _, c := range cases {
		toks := Tokenize(c)
		assert.Equal(t, NUMBER, toks[0].Type, c)
		assert.Equal(t, c, toks[0].Literal, c)
	}
}

func TestIdentifierAllowsDotsAndDollar(t *testing.T) {
	toks := Tokenize(`java.lang.String $var`)
	assert.Equal(t, IDENT, toks[0].Type)
	assert.Equal(t, "java.lang.String", toks[0].Literal)
	assert.Equal(t, IDENT, toks[1].Type)
	assert.Equal(t, "$var", toks[1].Literal)
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := Tokenize(`"a\nb" 'c\'d'`)
	assert.Equal(t, STRING, toks[0].Type)
	unq, err := Unquote(toks[0].Literal)
	assert.NoError(t, err)
	assert.Equal(t, "a\nb", unq)

	assert.Equal(t, STRING, toks[1].Type)
	unq2, err := Unquote(toks[1].Literal)
	assert.NoError(t, err)
	assert.Equal(t, "c'd", unq2)
}

func TestOperatorsAndFlag(t *testing.T) {
	toks := Tokenize(`== != >= <= ~ && || ! --format`)
	assert.Equal(t, []Type{EQ, NEQ, GTE, LTE, TILDE, AND, OR, NOT, FLAG, EOF}, types(toks))
}

func TestArithmeticTokens(t *testing.T) {
	toks := Tokenize(`a + b - 1 * c`)
	assert.Equal(t, []Type{IDENT, PLUS, IDENT, MINUS, NUMBER, STAR, IDENT, EOF}, types(toks))
}

func TestTemplateToken(t *testing.T) {
	toks := Tokenize("`a (${b} bytes)`")
	assert.Equal(t, TEMPLATE, toks[0].Type)
	assert.Equal(t, "`a (${b} bytes)`", toks[0].Literal)
}

func TestTemplateTokenWithNestedBraces(t *testing.T) {
	toks := Tokenize("`${f(1, 2)}`")
	assert.Equal(t, TEMPLATE, toks[0].Type)
}

func TestUnknownCharIsIllegal(t *testing.T) {
	toks := Tokenize(`@`)
	assert.Equal(t, ILLEGAL, toks[0].Type)
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	toks := Tokenize(`"abc`)
	assert.Equal(t, ILLEGAL, toks[0].Type)
}
