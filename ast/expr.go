// Package ast defines the Scrapscript expression tree (spec.md §3).
// Every node is immutable once constructed and doubles as the runtime
// value domain: Int/String/List/Record/Closure nodes produced by the
// parser are reused, unchanged, as the values the evaluator returns.
//
// This mirrors the teacher's parser/node.go convention of one Go
// struct per grammar production, but deliberately departs from its
// NodeVisitor double-dispatch: spec.md requires Closure/NativeFunction/
// EnvObject (evaluator-only variants) to live in the very same closed
// type as the parser's output, which the teacher's separate
// objects.GoMixObject value hierarchy does not support. The dispatch
// convention actually used throughout the teacher's evaluator
// (eval/eval_expressions.go's type-switch `Eval`) is kept instead; see
// DESIGN.md.
package ast

import (
	"math/big"

	"github.com/scrapscript/scrapscript-go/errs"
)

// Expr is the closed set of expression-tree / value nodes.
type Expr interface {
	exprNode()
}

// Int is an arbitrary-precision integer literal or value.
type Int struct {
	Value *big.Int
	Pos   errs.Pos
}

// Float is a 64-bit float literal or value.
type Float struct {
	Value float64
	Pos   errs.Pos
}

// String is a text literal or value.
type String struct {
	Value string
	Pos   errs.Pos
}

// Bytes is a raw byte-string literal or value.
type Bytes struct {
	Value []byte
	Pos   errs.Pos
}

// Hole is the nullary `()` value.
type Hole struct {
	Pos errs.Pos
}

// Var is a name reference (expression position) or binder (pattern
// position, where it always matches and binds).
type Var struct {
	Name string
	Pos  errs.Pos
}

// Spread is the `...` / `...name` pattern/literal-tail element. Named
// is false for the bare `...` form.
type Spread struct {
	Name  string
	Named bool
	Pos   errs.Pos
}

// Variant is a tagged value, e.g. `#true ()` or `#cons (1, rest)`.
type Variant struct {
	Tag   string
	Value Expr
	Pos   errs.Pos
}

// Binop is a binary operator application.
type Binop struct {
	Op    BinopKind
	Left  Expr
	Right Expr
	Pos   errs.Pos
}

// List is an ordered sequence; a trailing Spread, if present, is
// always the final element (spec.md invariant).
type List struct {
	Items []Expr
	Pos   errs.Pos
}

// RecordField is one `name = value` entry of a Record, in source order.
type RecordField struct {
	Name  string
	Value Expr
}

// Record is an ordered name->value mapping (insertion order preserved
// for pretty-printing; semantically unordered). A trailing Spread, if
// present, is always the final entry.
type Record struct {
	Fields []RecordField
	Pos    errs.Pos
}

// Assign is `name = value`; Name is always a Var (spec.md invariant).
type Assign struct {
	Name  *Var
	Value Expr
	Pos   errs.Pos
}

// Function is `pattern -> body`. Arg is a pattern: an ordinary lambda
// binds a single Var, but the same production also underlies each
// MatchFunction alternative, where Arg may be any pattern (Variant,
// List, Record, literal, Spread, ...).
type Function struct {
	Arg  Expr
	Body Expr
	Pos  errs.Pos
}

// MatchCase is one `| pattern -> body` alternative of a MatchFunction.
type MatchCase struct {
	Pattern Expr
	Body    Expr
}

// MatchFunction is an ordered sequence of pattern/body alternatives,
// tried in order at Apply time.
type MatchFunction struct {
	Cases []MatchCase
	Pos   errs.Pos
}

// Apply is function application `f x`.
type Apply struct {
	Func Expr
	Arg  Expr
	Pos  errs.Pos
}

// Where is `body . binding` — binding is evaluated first, then body in
// the extended environment. Binding is always an Assign.
type Where struct {
	Body    Expr
	Binding *Assign
	Pos     errs.Pos
}

// Assert is `value ? condition` — condition must evaluate to #true or
// evaluation raises AssertionError; otherwise value is evaluated and
// returned.
type Assert struct {
	Value Expr
	Cond  Expr
	Pos   errs.Pos
}

// Access is `object @ accessor` (Var accessor for Records, arbitrary
// Int-valued expression for Lists).
type Access struct {
	Object   Expr
	Accessor Expr
	Pos      errs.Pos
}

// Closure is a Function or MatchFunction paired with its captured,
// minimized environment. Evaluator-only; never produced by the parser.
type Closure struct {
	Env  *Env
	Func Expr // *Function or *MatchFunction
}

// Runtime is the callback surface a NativeFunction may use to invoke
// back into Scrapscript closures, grounded on the teacher's
// std.Runtime interface (go-mix's std/builtins.go).
type Runtime interface {
	Apply(fn Expr, arg Expr) (Expr, error)
}

// NativeFunction is a host-implemented builtin (spec.md §6: `$$fetch`,
// `$$jsondecode`, `$$serialize`, `$$deserialize`, `$$listlength`).
// Evaluator-only; never produced by the parser.
type NativeFunction struct {
	Name string
	Call func(rt Runtime, arg Expr) (Expr, error)
}

// EnvObject wraps the environment produced by evaluating an Assign.
// Evaluator-only; never produced by the parser.
type EnvObject struct {
	Env *Env
}

func (*Int) exprNode()            {}
func (*Float) exprNode()          {}
func (*String) exprNode()         {}
func (*Bytes) exprNode()          {}
func (*Hole) exprNode()           {}
func (*Var) exprNode()            {}
func (*Spread) exprNode()         {}
func (*Variant) exprNode()        {}
func (*Binop) exprNode()          {}
func (*List) exprNode()           {}
func (*Record) exprNode()         {}
func (*Assign) exprNode()         {}
func (*Function) exprNode()       {}
func (*MatchFunction) exprNode()  {}
func (*Apply) exprNode()          {}
func (*Where) exprNode()          {}
func (*Assert) exprNode()         {}
func (*Access) exprNode()         {}
func (*Closure) exprNode()        {}
func (*NativeFunction) exprNode() {}
func (*EnvObject) exprNode()      {}

// IntFromInt64 is a convenience constructor for small Int values.
func IntFromInt64(n int64) *Int { return &Int{Value: big.NewInt(n)} }

// True / False are the canonical boolean variant constructors (spec.md
// §3: "Booleans are encoded as variants #true () and #false ()").
func True() *Variant  { return &Variant{Tag: "true", Value: &Hole{}} }
func False() *Variant { return &Variant{Tag: "false", Value: &Hole{}} }

// IsBool reports whether e is #true ()/#false () and returns its value.
func IsBool(e Expr) (value bool, ok bool) {
	v, isVariant := e.(*Variant)
	if !isVariant {
		return false, false
	}
	if _, isHole := v.Value.(*Hole); !isHole {
		return false, false
	}
	switch v.Tag {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// MakeBool returns the canonical #true ()/#false () variant for b.
func MakeBool(b bool) *Variant {
	if b {
		return True()
	}
	return False()
}
