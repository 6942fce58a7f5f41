package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConsumeToken represents a test case for ConsumeTokens: a source
// input and the tokens it must lex to, the same shape as the teacher's
// table-driven lexer tests.
type TestConsumeToken struct {
	Input          string
	ExpectedTokens []Token
}

func TestLexer_ConsumeTokens(t *testing.T) {
	tests := []TestConsumeToken{
		{
			Input: `1 + 2 * 3`,
			ExpectedTokens: []Token{
				NewToken(INT_LIT, "1"),
				NewToken(OPERATOR, "+"),
				NewToken(INT_LIT, "2"),
				NewToken(OPERATOR, "*"),
				NewToken(INT_LIT, "3"),
			},
		},
		{
			Input: `x -> x + 1.5`,
			ExpectedTokens: []Token{
				NewToken(NAME, "x"),
				NewToken(OPERATOR, "->"),
				NewToken(NAME, "x"),
				NewToken(OPERATOR, "+"),
				NewToken(FLOAT_LIT, "1.5"),
			},
		},
		{
			Input: `{ a = 1, b = "hi" }`,
			ExpectedTokens: []Token{
				NewToken(LEFT_BRACE, "{"),
				NewToken(NAME, "a"),
				NewToken(OPERATOR, "="),
				NewToken(INT_LIT, "1"),
				NewToken(OPERATOR, ","),
				NewToken(NAME, "b"),
				NewToken(OPERATOR, "="),
				NewToken(STRING_LIT, "hi"),
				NewToken(RIGHT_BRACE, "}"),
			},
		},
		{
			Input: `#true`,
			ExpectedTokens: []Token{
				NewToken(HASH, "#"),
				NewToken(NAME, "true"),
			},
		},
		{
			Input: `[1, ...xs]`,
			ExpectedTokens: []Token{
				NewToken(LEFT_BRACKET, "["),
				NewToken(INT_LIT, "1"),
				NewToken(OPERATOR, ","),
				NewToken(OPERATOR, "..."),
				NewToken(NAME, "xs"),
				NewToken(RIGHT_BRACKET, "]"),
			},
		},
		{
			Input: `x |> f <| y`,
			ExpectedTokens: []Token{
				NewToken(NAME, "x"),
				NewToken(OPERATOR, "|>"),
				NewToken(NAME, "f"),
				NewToken(OPERATOR, "<|"),
				NewToken(NAME, "y"),
			},
		},
		{
			Input: `-- a comment
1`,
			ExpectedTokens: []Token{
				NewToken(INT_LIT, "1"),
			},
		},
		{
			Input: `~~deadbeef ~~32'ORSXG5A=`,
			ExpectedTokens: []Token{
				NewToken(BYTES_LIT, "deadbeef"),
				NewToken(BYTES_LIT, "ORSXG5A="),
			},
		},
		{
			Input: `rec@b`,
			ExpectedTokens: []Token{
				NewToken(NAME, "rec"),
				NewToken(OPERATOR, "@"),
				NewToken(NAME, "b"),
			},
		},
	}

	for _, test := range tests {
		lex := NewLexer(test.Input)
		got := lex.ConsumeTokens()
		// drop trailing EOF for length comparison against expected tokens
		if len(got) > 0 && got[len(got)-1].Type == EOF_TYPE {
			got = got[:len(got)-1]
		}
		assert.Equal(t, len(test.ExpectedTokens), len(got), "input: %s", test.Input)
		for i, tok := range test.ExpectedTokens {
			if i >= len(got) {
				break
			}
			assert.Equal(t, tok.Type, got[i].Type, "input: %s token %d", test.Input, i)
			assert.Equal(t, tok.Literal, got[i].Literal, "input: %s token %d", test.Input, i)
		}
	}
}

func TestLexer_BytesLiteralDefaultBase(t *testing.T) {
	lex := NewLexer(`~~deadbeef`)
	tok, err := lex.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, BYTES_LIT, tok.Type)
	assert.Equal(t, 64, tok.Base)
	assert.Equal(t, "deadbeef", tok.Literal)
}

func TestLexer_BytesLiteralExplicitBase(t *testing.T) {
	lex := NewLexer(`~~16'deadbeef`)
	tok, err := lex.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, BYTES_LIT, tok.Type)
	assert.Equal(t, 16, tok.Base)
	assert.Equal(t, "deadbeef", tok.Literal)
}

func TestLexer_UnterminatedStringIsError(t *testing.T) {
	lex := NewLexer(`"unterminated`)
	_, err := lex.NextToken()
	assert.Error(t, err)
}

func TestLexer_TwoDecimalPointsIsError(t *testing.T) {
	lex := NewLexer(`1.2.3`)
	_, err := lex.NextToken()
	assert.Error(t, err)
}

func TestLexer_LoneTildeIsError(t *testing.T) {
	lex := NewLexer(`~x`)
	_, err := lex.NextToken()
	assert.Error(t, err)
}
