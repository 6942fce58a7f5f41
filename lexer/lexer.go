// Lexer turns Scrapscript source text into tokens. Structurally
// grounded on the teacher's Lexer (a struct with Advance/Peek/NextToken
// driving a big character-class switch, tracking Line/Column as it
// goes); the token vocabulary and exact per-character rules are
// grounded on original_source/scrapscript.py's Lexer class (spec.md
// §4.1: `--` comments, no-escape strings, one-dot-or-error numbers,
// `~~[base']payload` bytes literals, longest-match operators against
// the precedence table).
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scrapscript/scrapscript-go/errs"
	"github.com/scrapscript/scrapscript-go/prec"
)

// Lexer holds the source text and a cursor: Position (rune index),
// Line/Column (1-indexed), and Byte (0-indexed byte offset), the same
// bookkeeping shape as the teacher's Src/Position/Line/Column fields.
type Lexer struct {
	Src    []rune
	Position int
	Line   int
	Column int
	Byte   int
}

// NewLexer constructs a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{Src: []rune(src), Position: 0, Line: 1, Column: 1, Byte: 0}
}

func (lex *Lexer) hasInput() bool { return lex.Position < len(lex.Src) }

// Peek returns the rune at the current position without consuming it.
func (lex *Lexer) Peek() (rune, error) {
	if !lex.hasInput() {
		return 0, errs.LexError(lex.here(), "unexpected end of input while reading token")
	}
	return lex.Src[lex.Position], nil
}

func (lex *Lexer) here() errs.Pos {
	return errs.Pos{Line: lex.Line, Column: lex.Column, Offset: lex.Byte}
}

// Advance consumes and returns the current rune, bumping Line/Column
// on newline (resetting Column to 1) and Byte by the rune's UTF-8
// width, mirroring read_char exactly.
func (lex *Lexer) Advance() (rune, error) {
	c, err := lex.Peek()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		lex.Line++
		lex.Column = 1
	} else {
		lex.Column++
	}
	lex.Position++
	lex.Byte += utf8.RuneLen(c)
	return c, nil
}

func isIdentChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '$' || c == '\'' || c == '_'
}

// NextToken reads and returns the next token, skipping whitespace and
// `--` line comments, mirroring read_token's loop.
func (lex *Lexer) NextToken() (Token, error) {
	var start errs.Pos
	var c rune
	var err error
	for {
		if !lex.hasInput() {
			end := lex.here()
			return Token{Type: EOF_TYPE, Start: end, End: end}, nil
		}
		start = lex.here()
		c, err = lex.Advance()
		if err != nil {
			return Token{}, err
		}
		if !unicode.IsSpace(c) {
			break
		}
	}

	switch {
	case c == '"':
		return lex.readStringLiteral(start)
	case c == '-':
		if lex.hasInput() {
			if p, _ := lex.Peek(); p == '-' {
				lex.skipSingleLineComment()
				return lex.NextToken()
			}
		}
		return lex.readOperator(start, c)
	case c == '#':
		return Token{Type: HASH, Literal: "#", Start: start, End: lex.here()}, nil
	case c == '~':
		if lex.hasInput() {
			if p, _ := lex.Peek(); p == '~' {
				lex.Advance()
				return lex.readBytesLiteral(start)
			}
		}
		return Token{}, errs.LexError(start, "unexpected token %q", c)
	case unicode.IsDigit(c):
		return lex.readNumber(start, c)
	case strings.ContainsRune("()[]{}", c):
		return lex.readBracket(start, c), nil
	case prec.OperChars[c]:
		return lex.readOperator(start, c)
	case isIdentChar(c):
		return lex.readIdentifier(start, c)
	default:
		return Token{}, errs.LexError(start, "invalid token %q", c)
	}
}

func (lex *Lexer) readBracket(start errs.Pos, c rune) Token {
	var t TokenType
	switch c {
	case '(':
		t = LEFT_PAREN
	case ')':
		t = RIGHT_PAREN
	case '{':
		t = LEFT_BRACE
	case '}':
		t = RIGHT_BRACE
	case '[':
		t = LEFT_BRACKET
	case ']':
		t = RIGHT_BRACKET
	}
	return Token{Type: t, Literal: string(c), Start: start, End: lex.here()}
}

func (lex *Lexer) readStringLiteral(start errs.Pos) (Token, error) {
	var buf strings.Builder
	for {
		if !lex.hasInput() {
			return Token{}, errs.LexError(start, "unexpected end of input while reading string")
		}
		c, err := lex.Advance()
		if err != nil {
			return Token{}, err
		}
		if c == '"' {
			break
		}
		buf.WriteRune(c)
	}
	return Token{Type: STRING_LIT, Literal: buf.String(), Start: start, End: lex.here()}, nil
}

// skipSingleLineComment consumes a `--` comment up to (and including)
// the next newline, or end of input.
func (lex *Lexer) skipSingleLineComment() {
	for lex.hasInput() {
		c, err := lex.Advance()
		if err != nil || c == '\n' {
			return
		}
	}
}

// readNumber mirrors read_number: one '.' is allowed (yields a float),
// a second '.' is a lex error.
func (lex *Lexer) readNumber(start errs.Pos, first rune) (Token, error) {
	var buf strings.Builder
	buf.WriteRune(first)
	hasDecimal := false
	for lex.hasInput() {
		c, _ := lex.Peek()
		if c == '.' {
			if hasDecimal {
				return Token{}, errs.LexError(lex.here(), "unexpected token '.'")
			}
			hasDecimal = true
		} else if !unicode.IsDigit(c) {
			break
		}
		lex.Advance()
		buf.WriteRune(c)
	}
	typ := INT_LIT
	if hasDecimal {
		typ = FLOAT_LIT
	}
	return Token{Type: typ, Literal: buf.String(), Start: start, End: lex.here()}, nil
}

func startsOperator(buf string) bool {
	for op := range prec.Table {
		if strings.HasPrefix(op, buf) {
			return true
		}
	}
	return false
}

// readOperator performs the longest-match scan against prec.Table,
// exactly as _starts_operator/read_op do in the reference lexer.
func (lex *Lexer) readOperator(start errs.Pos, first rune) (Token, error) {
	buf := string(first)
	for lex.hasInput() {
		c, _ := lex.Peek()
		if !startsOperator(buf + string(c)) {
			break
		}
		lex.Advance()
		buf += string(c)
	}
	if _, ok := prec.Table[buf]; ok {
		return Token{Type: OPERATOR, Literal: buf, Start: start, End: lex.here()}, nil
	}
	return Token{}, errs.ParseError(start, "unexpected token %q", buf)
}

func (lex *Lexer) readIdentifier(start errs.Pos, first rune) (Token, error) {
	buf := string(first)
	for lex.hasInput() {
		c, _ := lex.Peek()
		if !isIdentChar(c) {
			break
		}
		lex.Advance()
		buf += string(c)
	}
	return Token{Type: NAME, Literal: buf, Start: start, End: lex.here()}, nil
}

// readBytesLiteral mirrors read_bytes: read to the next whitespace,
// split on the last "'" for an optional base prefix (default 64).
func (lex *Lexer) readBytesLiteral(start errs.Pos) (Token, error) {
	var buf strings.Builder
	for lex.hasInput() {
		c, _ := lex.Peek()
		if unicode.IsSpace(c) {
			break
		}
		ch, err := lex.Advance()
		if err != nil {
			return Token{}, err
		}
		buf.WriteRune(ch)
	}
	raw := buf.String()
	base := 64
	payload := raw
	if idx := strings.LastIndex(raw, "'"); idx >= 0 {
		baseStr := raw[:idx]
		payload = raw[idx+1:]
		n := 0
		for _, d := range baseStr {
			if d < '0' || d > '9' {
				return Token{}, errs.LexError(start, "invalid bytes base %q", baseStr)
			}
			n = n*10 + int(d-'0')
		}
		base = n
	}
	return Token{Type: BYTES_LIT, Literal: payload, Base: base, Start: start, End: lex.here()}, nil
}

// ConsumeTokens runs the lexer to completion, returning every token up
// to and including EOF. Grounded on the teacher's own ConsumeTokens and
// the reference implementation's `tokenize` function.
func (lex *Lexer) ConsumeTokens() []Token {
	var out []Token
	for {
		tok, err := lex.NextToken()
		if err != nil {
			out = append(out, Token{Type: EOF_TYPE})
			return out
		}
		out = append(out, tok)
		if tok.Type == EOF_TYPE {
			break
		}
	}
	return out
}

// ConsumeTokensChecked is ConsumeTokens but stops and surfaces the
// first lex error instead of truncating to EOF, for driving the parser
// (which needs to report a precise LexError rather than a premature
// unexpected-end-of-input ParseError).
func (lex *Lexer) ConsumeTokensChecked() ([]Token, error) {
	var out []Token
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == EOF_TYPE {
			break
		}
	}
	return out, nil
}
