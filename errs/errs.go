// Package errs defines the typed error kinds raised by the Scrapscript
// toolchain. Every kind carries a source extent when one is available
// and renders as "[line:col] message", mirroring the position-tagged
// error format the evaluator has always used.
package errs

import "fmt"

// Pos is a source location: 1-based line/column, 0-based byte offset.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	if p.Line == 0 && p.Column == 0 {
		return ""
	}
	return fmt.Sprintf("[%d:%d] ", p.Line, p.Column)
}

func kindError(kind, msg string, pos Pos) error {
	return &scrapError{kind: kind, msg: msg, pos: pos}
}

type scrapError struct {
	kind string
	msg  string
	pos  Pos
}

func (e *scrapError) Error() string {
	return fmt.Sprintf("%s%s: %s", e.pos, e.kind, e.msg)
}

// Kind reports the error taxonomy name (e.g. "NameError").
func (e *scrapError) Kind() string { return e.kind }

// LexError: unexpected character, unterminated string/bytes, EOF mid-token.
func LexError(pos Pos, format string, a ...any) error {
	return kindError("LexError", fmt.Sprintf(format, a...), pos)
}

// ParseError: unexpected token, malformed construct, unexpected EOF.
func ParseError(pos Pos, format string, a ...any) error {
	return kindError("ParseError", fmt.Sprintf(format, a...), pos)
}

// NameError: unbound variable at evaluation time.
func NameError(pos Pos, format string, a ...any) error {
	return kindError("NameError", fmt.Sprintf(format, a...), pos)
}

// TypeError: argument of the wrong kind at a primitive.
func TypeError(pos Pos, format string, a ...any) error {
	return kindError("TypeError", fmt.Sprintf(format, a...), pos)
}

// ValueError: e.g. list index out of bounds.
func ValueError(pos Pos, format string, a ...any) error {
	return kindError("ValueError", fmt.Sprintf(format, a...), pos)
}

// AssertionError: an `?` condition was not #true.
func AssertionError(pos Pos, format string, a ...any) error {
	return kindError("AssertionError", fmt.Sprintf(format, a...), pos)
}

// MatchError: no case matched, or a Float pattern was attempted.
func MatchError(pos Pos, format string, a ...any) error {
	return kindError("MatchError", fmt.Sprintf(format, a...), pos)
}

// InferenceError: unification failure, occurs-check failure, unbound
// variable during inference.
func InferenceError(pos Pos, format string, a ...any) error {
	return kindError("InferenceError", fmt.Sprintf(format, a...), pos)
}

// RuntimeError: structural misuse, e.g. a Spread outside pattern position.
func RuntimeError(pos Pos, format string, a ...any) error {
	return kindError("RuntimeError", fmt.Sprintf(format, a...), pos)
}
