// Package jsonparse reads wire text into jsonval values.
//
// The accepted grammar is a superset of JSON: strings may be single quoted and
// use octal, \x and \u escapes, object keys may be bare symbols, integers may be
// written in octal or hex with an optional sign, trailing commas are tolerated,
// and comments may appear anywhere whitespace may.
package jsonparse

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

// ErrSyntax is the cause of all SyntaxErrors
var ErrSyntax = errors.New("json syntax error")

// SyntaxError reports malformed wire text
type SyntaxError struct {
	Msg  string
	Pos  int    // byte offset where the offending token starts
	Near string // the offending text
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s near position %d: %q", e.Msg, e.Pos, e.Near)
}

// Unwrap returns ErrSyntax
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parser reads a sequence of values from one text
type Parser struct {
	input string
	lex   *Lexer
	depth int
}

// NewParser creates a parser positioned at the start of text
func NewParser(text string) *Parser {
	return NewParserAt(text, 0)
}

// NewParserAt creates a parser positioned at cursor, clamped to the bounds of text
func NewParserAt(text string, cursor int) *Parser {
	lex := NewLexer(text)
	if cursor < 0 {
		cursor = 0
	} else if cursor > len(text) {
		cursor = len(text)
	}
	lex.pos = cursor
	return &Parser{input: text, lex: lex}
}

// Pos returns the byte offset just after the last value read
func (p *Parser) Pos() int {
	return p.lex.Pos()
}

// Next reads the next value. It returns io.EOF when only whitespace and comments
// remain, and a *SyntaxError for malformed text.
func (p *Parser) Next() (interface{}, error) {
	p.depth = 0
	tok := p.lex.Next()
	if tok.Type == TokenEOF {
		return nil, io.EOF
	}
	return p.parseValue(tok)
}

// NextObject reads the next value, which must be an object
func (p *Parser) NextObject() (*jsonval.Object, error) {
	p.depth = 0
	tok := p.lex.Next()
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenLBrace:
		return p.parseObject(tok)
	}
	return nil, p.syntaxError(tok, "expected '{'")
}

// ParseNextValue parses the value starting at cursor. It returns the value and the
// cursor just past it, io.EOF at end of input, or a *SyntaxError.
func ParseNextValue(text string, cursor int) (interface{}, int, error) {
	p := NewParserAt(text, cursor)
	v, err := p.Next()
	return v, p.Pos(), err
}

// Parse parses the first value of text
func Parse(text string) (interface{}, error) {
	return NewParser(text).Next()
}

// ParseObject parses the first value of text, which must be an object
func ParseObject(text string) (*jsonval.Object, error) {
	return NewParser(text).NextObject()
}

// ParseAll parses every value of text
func ParseAll(text string) ([]interface{}, error) {
	var values []interface{}
	p := NewParser(text)
	for {
		v, err := p.Next()
		if err == io.EOF {
			return values, nil
		} else if err != nil {
			return values, err
		}
		values = append(values, v)
	}
}

func (p *Parser) syntaxError(tok Token, msg string) error {
	near := tok.Text
	if tok.Type == TokenEOF {
		near = "<end of input>"
	} else if tok.Type == TokenError {
		msg = tok.Err
	}
	if len(near) > consts.SYNTAX_ERROR_CONTEXT_LEN {
		near = near[:consts.SYNTAX_ERROR_CONTEXT_LEN] + "..."
	}
	return &SyntaxError{Msg: msg, Pos: tok.Pos, Near: near}
}

func (p *Parser) parseValue(tok Token) (interface{}, error) {
	if tok.isValue() {
		return tok.Value, nil
	}
	switch tok.Type {
	case TokenLBrace:
		return p.parseObject(tok)
	case TokenLBracket:
		return p.parseArray(tok)
	}
	return nil, p.syntaxError(tok, "expected value")
}

func (p *Parser) enter(tok Token) error {
	p.depth++
	if p.depth > consts.MAX_PARSE_DEPTH {
		return p.syntaxError(tok, "nesting too deep")
	}
	return nil
}

// parseObject parses the rest of an object after its opening brace
func (p *Parser) parseObject(open Token) (*jsonval.Object, error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	obj := jsonval.NewObject()
	tok := p.lex.Next()
	for tok.Type != TokenRBrace {
		if tok.Type != TokenSymbol && tok.Type != TokenString {
			return nil, p.syntaxError(tok, "expected symbol or string")
		}
		name := tok.Value.(string)
		if colon := p.lex.Next(); colon.Type != TokenColon {
			return nil, p.syntaxError(colon, "expected ':'")
		}
		value, err := p.parseValue(p.lex.Next())
		if err != nil {
			return nil, err
		}
		obj.Set(name, value)

		tok = p.lex.Next()
		if tok.Type == TokenComma {
			tok = p.lex.Next()
		} else if tok.Type != TokenRBrace {
			return nil, p.syntaxError(tok, "expected '}'")
		}
	}
	p.depth--
	return obj, nil
}

// parseArray parses the rest of an array after its opening bracket
func (p *Parser) parseArray(open Token) (jsonval.Array, error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	arr := jsonval.Array{}
	tok := p.lex.Next()
	for tok.Type != TokenRBracket {
		value, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)

		tok = p.lex.Next()
		if tok.Type == TokenComma {
			tok = p.lex.Next()
		} else if tok.Type != TokenRBracket {
			return nil, p.syntaxError(tok, "expected ']'")
		}
	}
	p.depth--
	return arr, nil
}

// EncodeToObject encodes an Encodable and parses the text back into an Object
func EncodeToObject(e jsonval.Encodable, ctl jsonval.EncodeControl) (*jsonval.Object, error) {
	lit := e.Encode(ctl)
	if lit == nil {
		return nil, nil
	}
	obj, err := ParseObject(lit.SendableString())
	if err != nil {
		return nil, errors.Wrapf(err, "re-parse encoded %T", e)
	}
	return obj, nil
}
