package jsonparse

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/xiaonanln/goelko/engine/jsonval"
)

// Lexer splits wire text into tokens. Whitespace, // line comments and /* */ block
// comments between tokens are skipped.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Pos returns the byte offset of the next unread character
func (l *Lexer) Pos() int {
	return l.pos
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.input) {
		return l.input[l.pos]
	}
	return 0
}

func (l *Lexer) skipInsignificant() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '/' && l.pos+1 < len(l.input) {
			switch l.input[l.pos+1] {
			case '*':
				end := strings.Index(l.input[l.pos+2:], "*/")
				if end < 0 {
					l.pos = len(l.input) // an unterminated comment runs to the end of input
				} else {
					l.pos += 2 + end + 2
				}
				continue
			case '/':
				l.pos += 2
				for l.pos < len(l.input) {
					c := l.input[l.pos]
					l.pos++
					if c == '\n' {
						break
					} else if c == '\r' {
						if l.peek() == '\n' {
							l.pos++
						}
						break
					}
				}
				continue
			}
			return
		}
		if c < utf8.RuneSelf {
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != '\f' && c != '\v' {
				return
			}
			l.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// Next scans the next token
func (l *Lexer) Next() Token {
	l.skipInsignificant()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	c := l.input[l.pos]
	switch c {
	case '{':
		return l.punct(TokenLBrace)
	case '}':
		return l.punct(TokenRBrace)
	case '[':
		return l.punct(TokenLBracket)
	case ']':
		return l.punct(TokenRBracket)
	case ':':
		return l.punct(TokenColon)
	case ',':
		return l.punct(TokenComma)
	case '"', '\'':
		return l.scanString(c)
	case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return l.scanNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	if jsonval.IsSymbolRune(r, true) {
		return l.scanSymbol()
	}
	return l.errorf(start, "unexpected character")
}

func (l *Lexer) punct(t TokenType) Token {
	tok := Token{Type: t, Pos: l.pos, Text: l.input[l.pos : l.pos+1]}
	l.pos++
	return tok
}

func (l *Lexer) errorf(start int, reason string) Token {
	end := l.pos + 1
	if end > len(l.input) {
		end = len(l.input)
	}
	if end <= start {
		end = start
		if start < len(l.input) {
			end = start + 1
		}
	}
	l.pos = end
	return Token{Type: TokenError, Pos: start, Text: l.input[start:end], Err: reason}
}

func (l *Lexer) scanSymbol() Token {
	start := l.pos
	first := true
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !jsonval.IsSymbolRune(r, first) {
			break
		}
		first = false
		l.pos += size
	}
	text := l.input[start:l.pos]
	switch text {
	case "true":
		return Token{Type: TokenTrue, Value: true, Pos: start, Text: text}
	case "false":
		return Token{Type: TokenFalse, Value: false, Pos: start, Text: text}
	case "null":
		return Token{Type: TokenNull, Pos: start, Text: text}
	}
	return Token{Type: TokenSymbol, Value: text, Pos: start, Text: text}
}

func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++
	segStart := l.pos
	var sb *strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			s := l.input[segStart:l.pos]
			if sb != nil {
				sb.WriteString(s)
				s = sb.String()
			}
			l.pos++
			return Token{Type: TokenString, Value: s, Pos: start, Text: l.input[start:l.pos]}
		}
		if c == '\\' {
			if sb == nil {
				sb = &strings.Builder{}
			}
			sb.WriteString(l.input[segStart:l.pos])
			l.pos++
			if reason := l.scanEscape(sb); reason != "" {
				return l.errorf(start, reason)
			}
			segStart = l.pos
			continue
		}
		l.pos++
	}
	return Token{Type: TokenError, Pos: start, Text: l.input[start:], Err: "unterminated string"}
}

// scanEscape decodes the escape sequence following a backslash
func (l *Lexer) scanEscape(sb *strings.Builder) string {
	if l.pos >= len(l.input) {
		return "unterminated string"
	}
	c := l.input[l.pos]
	switch {
	case c >= '0' && c <= '7':
		value := rune(0)
		for n := 0; n < 3 && l.pos < len(l.input); n++ {
			d := l.input[l.pos]
			if d < '0' || d > '7' {
				break
			}
			value = value*8 + rune(d-'0')
			l.pos++
		}
		sb.WriteRune(value)
		return ""
	case c == 'u' || c == 'x':
		n := 4
		if c == 'x' {
			n = 2
		}
		l.pos++
		r, ok := l.readHex(n)
		if !ok {
			return "malformed hex escape"
		}
		if c == 'u' && utf16.IsSurrogate(r) && strings.HasPrefix(l.input[l.pos:], `\u`) {
			save := l.pos
			l.pos += 2
			if r2, ok := l.readHex(4); ok && utf16.DecodeRune(r, r2) != unicode.ReplacementChar {
				r = utf16.DecodeRune(r, r2)
			} else {
				l.pos = save
			}
		}
		sb.WriteRune(r)
		return ""
	}

	l.pos++
	switch c {
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	default:
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(l.input[l.pos-1:])
			sb.WriteRune(r)
			l.pos += size - 1
		} else {
			sb.WriteByte(c)
		}
	}
	return ""
}

func (l *Lexer) readHex(n int) (rune, bool) {
	value := rune(0)
	for i := 0; i < n; i++ {
		d, ok := hexValue(l.peek())
		if !ok {
			return 0, false
		}
		value = value*16 + rune(d)
		l.pos++
	}
	return value, true
}

func hexValue(c byte) (uint64, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint64(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint64(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// scanNumber scans decimal, octal (leading 0) and hex (leading 0x) integers, and
// floats. A sign is accepted in front of every form.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	neg := false
	if c := l.peek(); c == '-' || c == '+' {
		neg = c == '-'
		l.pos++
	}

	radix := uint64(10)
	sawDigit := false
	switch l.peek() {
	case '0':
		l.pos++
		sawDigit = true
		if c := l.peek(); c == 'x' || c == 'X' {
			l.pos++
			return l.finishHex(start, neg)
		}
		radix = 8
	case '.':
		return l.finishFloatTail(start, true)
	}

	var value uint64
	overflow, badOctal := false, false
	for isDigit(l.peek()) {
		d := uint64(l.peek() - '0')
		if d >= radix {
			badOctal = true
		}
		if value > (math.MaxUint64-d)/radix {
			overflow = true
		} else {
			value = value*radix + d
		}
		sawDigit = true
		l.pos++
	}
	if !sawDigit {
		return l.errorf(start, "malformed number")
	}

	switch l.peek() {
	case '.':
		return l.finishFloatTail(start, false)
	case 'e', 'E':
		return l.finishFloatExponent(start)
	}
	if badOctal {
		return l.errorf(start, "malformed octal number")
	}
	return l.intToken(start, value, neg, overflow)
}

func (l *Lexer) finishHex(start int, neg bool) Token {
	if _, ok := hexValue(l.peek()); !ok {
		return l.errorf(start, "malformed hex number")
	}
	var value uint64
	overflow := false
	for {
		d, ok := hexValue(l.peek())
		if !ok {
			break
		}
		if value > (math.MaxUint64-d)/16 {
			overflow = true
		} else {
			value = value*16 + d
		}
		l.pos++
	}
	return l.intToken(start, value, neg, overflow)
}

func (l *Lexer) intToken(start int, magnitude uint64, neg bool, overflow bool) Token {
	if overflow || (neg && magnitude > 1<<63) || (!neg && magnitude > math.MaxInt64) {
		return l.errorf(start, "integer out of range")
	}
	n := int64(magnitude)
	if neg {
		n = -n
	}
	return Token{Type: TokenInt, Value: n, Pos: start, Text: l.input[start:l.pos]}
}

func (l *Lexer) finishFloatTail(start int, needDigits bool) Token {
	l.pos++ // '.'
	haveDigits := false
	for isDigit(l.peek()) {
		l.pos++
		haveDigits = true
	}
	if needDigits && !haveDigits {
		return l.errorf(start, "malformed number")
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		return l.finishFloatExponent(start)
	}
	return l.floatToken(start)
}

func (l *Lexer) finishFloatExponent(start int) Token {
	l.pos++ // 'e'
	if c := l.peek(); c == '+' || c == '-' {
		l.pos++
	}
	if !isDigit(l.peek()) {
		return l.errorf(start, "malformed exponent")
	}
	for isDigit(l.peek()) {
		l.pos++
	}
	return l.floatToken(start)
}

func (l *Lexer) floatToken(start int) Token {
	text := l.input[start:l.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return l.errorf(start, "malformed float")
	}
	return Token{Type: TokenFloat, Value: f, Pos: start, Text: text}
}
