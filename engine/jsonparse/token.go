package jsonparse

import "fmt"

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNull   // null
	TokenTrue   // true
	TokenFalse  // false
	TokenInt    // 123, -0x1f, 017
	TokenFloat  // 1.5, .5e3
	TokenString // "text" or 'text'
	TokenSymbol // bare_key$1

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenColon    // :
	TokenComma    // ,
)

var tokenNames = [...]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenNull:     "NULL",
	TokenTrue:     "TRUE",
	TokenFalse:    "FALSE",
	TokenInt:      "INT",
	TokenFloat:    "FLOAT",
	TokenString:   "STRING",
	TokenSymbol:   "SYMBOL",
	TokenLBrace:   "{",
	TokenRBrace:   "}",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenColon:    ":",
	TokenComma:    ",",
}

// String returns the token type name.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is a lexical token.
type Token struct {
	Type  TokenType
	Value interface{} // decoded literal value: string, int64, float64, bool or nil
	Pos   int         // byte offset of the first character
	Text  string      // source text of the token
	Err   string      // reason, for TokenError
}

// isValue reports whether the token is a scalar value by itself
func (t Token) isValue() bool {
	switch t.Type {
	case TokenNull, TokenTrue, TokenFalse, TokenInt, TokenFloat, TokenString:
		return true
	}
	return false
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Text)
	}
	return t.Type.String()
}
