// Package print pretty-prints an ast.Expr back into re-parseable
// Scrapscript source (spec.md §4.8), with correct operator-precedence
// parenthesization and a cycle guard for self-referential Closures.
// Grounded structurally on the teacher's PrintingVisitor
// (print_visitor.go's bytes.Buffer-accumulation shape, generalized from
// an indentation-driven debug dump into a single recursive `write`
// function), and exactly on original_source/scrapscript.py's `pretty`/
// `handle_recursion` for precedence thresholds and per-variant format.
package print

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/prec"
)

// printer accumulates output and tracks the objects currently being
// printed by pointer identity, so a self-referential value (a
// letrec-bound Closure, or a hand-built cyclic List) renders as "..."
// instead of recursing forever — original_source's `handle_recursion`.
type printer struct {
	buf     bytes.Buffer
	visited []ast.Expr
}

// Print renders obj as Scrapscript source at the top precedence level.
func Print(obj ast.Expr) string {
	p := &printer{}
	p.write(obj, 0)
	return p.buf.String()
}

func (p *printer) isVisiting(obj ast.Expr) bool {
	for _, v := range p.visited {
		if v == obj {
			return true
		}
	}
	return false
}

// write renders obj, parenthesizing it if the surrounding context's
// requested binding strength (reqPrec) is at or above obj's own
// left-binding strength — exactly original_source's
// `if prec >= op_prec.pl: return f"({result})"`.
func (p *printer) write(obj ast.Expr, reqPrec float64) {
	switch obj.(type) {
	case *ast.List, *ast.Closure:
		if p.isVisiting(obj) {
			p.buf.WriteString("...")
			return
		}
		p.visited = append(p.visited, obj)
		defer func() { p.visited = p.visited[:len(p.visited)-1] }()
	}

	switch o := obj.(type) {
	case *ast.Int:
		p.buf.WriteString(o.Value.String())
	case *ast.Float:
		s := strconv.FormatFloat(o.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		p.buf.WriteString(s)
	case *ast.String:
		p.buf.WriteByte('"')
		p.buf.WriteString(o.Value)
		p.buf.WriteByte('"')
	case *ast.Bytes:
		p.buf.WriteString("~~")
		p.buf.WriteString(base64.RawStdEncoding.EncodeToString(o.Value))
	case *ast.Var:
		p.buf.WriteString(o.Name)
	case *ast.Hole:
		p.buf.WriteString("()")
	case *ast.Spread:
		p.buf.WriteString("...")
		p.buf.WriteString(o.Name)
	case *ast.List:
		p.buf.WriteByte('[')
		for i, item := range o.Items {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.write(item, 0)
		}
		p.buf.WriteByte(']')
	case *ast.Record:
		p.buf.WriteByte('{')
		for i, f := range o.Fields {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(f.Name)
			p.buf.WriteString(" = ")
			p.write(f.Value, 0)
		}
		p.buf.WriteByte('}')
	case *ast.Closure:
		p.buf.WriteString("Closure(")
		keys := o.Env.Keys()
		p.buf.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				p.buf.WriteString(" ")
			}
			fmt.Fprintf(&p.buf, "%q", k)
		}
		p.buf.WriteByte(']')
		p.buf.WriteString(", ")
		p.write(o.Func, 0)
		p.buf.WriteByte(')')
	case *ast.EnvObject:
		fmt.Fprintf(&p.buf, "EnvObject(%v)", o.Env.Keys())
	case *ast.NativeFunction:
		fmt.Fprintf(&p.buf, "NativeFunction(name=%s)", o.Name)
	case *ast.Variant:
		opPrec := prec.Table["#"]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.buf.WriteByte('#')
			p.buf.WriteString(o.Tag)
			p.buf.WriteByte(' ')
			p.write(o.Value, prec.Table[""].Right+1)
		})
	case *ast.Assign:
		opPrec := prec.Table["="]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Name, opPrec.Left)
			p.buf.WriteString(" = ")
			p.write(o.Value, opPrec.Right)
		})
	case *ast.Binop:
		opStr := o.Op.String()
		opPrec := prec.Table[opStr]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Left, opPrec.Left)
			p.buf.WriteByte(' ')
			p.buf.WriteString(opStr)
			p.buf.WriteByte(' ')
			p.write(o.Right, opPrec.Right)
		})
	case *ast.Function:
		opPrec := prec.Table["->"]
		p.withParens(opPrec.Left, reqPrec, func() {
			v, ok := o.Arg.(*ast.Var)
			if ok {
				p.buf.WriteString(v.Name)
			} else {
				p.write(o.Arg, 0)
			}
			p.buf.WriteString(" -> ")
			p.write(o.Body, opPrec.Right)
		})
	case *ast.MatchFunction:
		opPrec := prec.Table["|"]
		p.withParens(opPrec.Left, reqPrec, func() {
			for i, c := range o.Cases {
				if i > 0 {
					p.buf.WriteByte('\n')
				}
				p.buf.WriteString("| ")
				p.write(c.Pattern, opPrec.Left)
				p.buf.WriteString(" -> ")
				p.write(c.Body, opPrec.Right)
			}
		})
	case *ast.Where:
		opPrec := prec.Table["."]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Body, opPrec.Left)
			p.buf.WriteString(" . ")
			p.write(o.Binding, opPrec.Right)
		})
	case *ast.Assert:
		opPrec := prec.Table["?"]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Value, opPrec.Left)
			p.buf.WriteString(" ? ")
			p.write(o.Cond, opPrec.Right)
		})
	case *ast.Apply:
		opPrec := prec.Table[""]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Func, opPrec.Left)
			p.buf.WriteByte(' ')
			p.write(o.Arg, opPrec.Right)
		})
	case *ast.Access:
		opPrec := prec.Table["@"]
		p.withParens(opPrec.Left, reqPrec, func() {
			p.write(o.Object, opPrec.Left)
			p.buf.WriteString(" @ ")
			p.write(o.Accessor, opPrec.Right)
		})
	default:
		fmt.Fprintf(&p.buf, "<unprintable %T>", obj)
	}
}

// withParens renders body, wrapping it in parentheses when reqPrec is
// at or above leftPrec — original_source's `prec >= op_prec.pl` guard.
func (p *printer) withParens(leftPrec, reqPrec float64, body func()) {
	wrap := reqPrec >= leftPrec
	if wrap {
		p.buf.WriteByte('(')
	}
	body()
	if wrap {
		p.buf.WriteByte(')')
	}
}
