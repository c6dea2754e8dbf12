package jsonparse

import (
	"testing"

	"github.com/bmizerany/assert"
)

func lexAll(input string) []Token {
	lex := NewLexer(input)
	var toks []Token
	for {
		tok := lex.Next()
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return toks
		}
	}
}

func TestLexerPunctuation(t *testing.T) {
	toks := lexAll(" { } [ ] : , ")
	want := []TokenType{TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket, TokenColon, TokenComma, TokenEOF}
	assert.Equal(t, len(want), len(toks))
	for i, tt := range want {
		assert.Equalf(t, tt, toks[i].Type, "token %d", i)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		value interface{}
	}{
		{"0", TokenInt, int64(0)},
		{"42", TokenInt, int64(42)},
		{"-42", TokenInt, int64(-42)},
		{"+42", TokenInt, int64(42)},
		{"017", TokenInt, int64(15)},
		{"-017", TokenInt, int64(-15)},
		{"0x1F", TokenInt, int64(31)},
		{"0XfF", TokenInt, int64(255)},
		{"-0x10", TokenInt, int64(-16)},
		{"+0x10", TokenInt, int64(16)},
		{"9223372036854775807", TokenInt, int64(9223372036854775807)},
		{"-9223372036854775808", TokenInt, int64(-9223372036854775808)},
		{"1.5", TokenFloat, 1.5},
		{"-1.5", TokenFloat, -1.5},
		{".5", TokenFloat, 0.5},
		{"-.25", TokenFloat, -0.25},
		{"1.", TokenFloat, 1.0},
		{"0.5", TokenFloat, 0.5},
		{"1e3", TokenFloat, 1000.0},
		{"1E+3", TokenFloat, 1000.0},
		{"2.5e-1", TokenFloat, 0.25},
		{"08.5", TokenFloat, 8.5},
	}
	for _, test := range tests {
		tok := NewLexer(test.input).Next()
		assert.Equalf(t, test.typ, tok.Type, "type of %s: %s", test.input, tok.Err)
		assert.Equalf(t, test.value, tok.Value, "value of %s", test.input)
		assert.Equalf(t, test.input, tok.Text, "text of %s", test.input)
	}
}

func TestLexerBadNumbers(t *testing.T) {
	for _, input := range []string{
		"-", "+", ".", ".e5", "0x", "-0xg", "1e", "1e+", "09", "0189",
		"9223372036854775808", "-9223372036854775809", "0x10000000000000000", "1e400",
	} {
		tok := NewLexer(input).Next()
		assert.Equalf(t, TokenError, tok.Type, "%s should not lex: %v", input, tok)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`"plain"`, "plain"},
		{`'single'`, "single"},
		{`'has "double" inside'`, `has "double" inside`},
		{`"has 'single' inside"`, `has 'single' inside`},
		{`"\" \\ \/ \b \f \n \r \t"`, "\" \\ / \b \f \n \r \t"},
		{`"\101\102"`, "AB"},
		{`"\0"`, "\x00"},
		{`"\1012"`, "A2"},
		{`"\x41\x7a"`, "Az"},
		{`"é中"`, "é中"},
		{`"😀"`, "😀"},
		{`"\q"`, "q"},
		{`"raw é"`, "raw é"},
		{`""`, ""},
	}
	for _, test := range tests {
		tok := NewLexer(test.input).Next()
		assert.Equalf(t, TokenString, tok.Type, "%s: %s", test.input, tok.Err)
		assert.Equalf(t, test.value, tok.Value, "%s", test.input)
	}

	for _, input := range []string{`"open`, `'open"`, `"bad \x4g"`, `"bad \u12"`, `"ends \`} {
		tok := NewLexer(input).Next()
		assert.Equalf(t, TokenError, tok.Type, "%s should not lex", input)
	}
}

func TestLexerSymbols(t *testing.T) {
	toks := lexAll("true false null op $ref _x9 héllo")
	assert.Equal(t, TokenTrue, toks[0].Type)
	assert.Equal(t, true, toks[0].Value)
	assert.Equal(t, TokenFalse, toks[1].Type)
	assert.Equal(t, TokenNull, toks[2].Type)
	assert.Equal(t, nil, toks[2].Value)
	for i, name := range []string{"op", "$ref", "_x9", "héllo"} {
		assert.Equal(t, TokenSymbol, toks[3+i].Type)
		assert.Equal(t, name, toks[3+i].Value)
	}
	assert.Equal(t, TokenEOF, toks[7].Type)
}

func TestLexerComments(t *testing.T) {
	toks := lexAll("// line\r\n 1 /* block * / still */ 2 // trailing\r3\n/* open")
	assert.Equal(t, 4, len(toks))
	assert.Equal(t, int64(1), toks[0].Value)
	assert.Equal(t, int64(2), toks[1].Value)
	assert.Equal(t, int64(3), toks[2].Value)
	assert.Equal(t, TokenEOF, toks[3].Type)

	toks = lexAll("/ 1")
	assert.Equal(t, TokenError, toks[0].Type)
	assert.Equal(t, 0, toks[0].Pos)
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "{", TokenLBrace.String())
	assert.Equal(t, "SYMBOL", TokenSymbol.String())
	assert.Equal(t, "TokenType(99)", TokenType(99).String())
}
