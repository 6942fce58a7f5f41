// FreeIn computes the set of names free in an expression (spec.md
// §4.4), grounded exactly on original_source/scrapscript.py's free_in
// function: Closure does NOT subtract its environment's keys (spec.md
// §9's documented quirk, preserved for serializer round-trip fidelity).
package eval

import "github.com/scrapscript/scrapscript-go/ast"

// FreeIn returns the set of names free in e.
func FreeIn(e ast.Expr) map[string]bool {
	out := make(map[string]bool)
	freeInto(e, out)
	return out
}

func freeInto(e ast.Expr, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Int, *ast.Float, *ast.String, *ast.Bytes, *ast.Hole, *ast.NativeFunction:
		// no free variables
	case *ast.Variant:
		freeInto(n.Value, out)
	case *ast.Var:
		out[n.Name] = true
	case *ast.Spread:
		if n.Named {
			out[n.Name] = true
		}
	case *ast.Binop:
		freeInto(n.Left, out)
		freeInto(n.Right, out)
	case *ast.List:
		for _, item := range n.Items {
			freeInto(item, out)
		}
	case *ast.Record:
		for _, f := range n.Fields {
			freeInto(f.Value, out)
		}
	case *ast.Function:
		body := FreeIn(n.Body)
		delete(body, argName(n.Arg))
		for k := range body {
			out[k] = true
		}
	case *ast.MatchFunction:
		for _, c := range n.Cases {
			freeInCase(c, out)
		}
	case *ast.Apply:
		freeInto(n.Func, out)
		freeInto(n.Arg, out)
	case *ast.Access:
		freeInto(n.Object, out)
		freeInto(n.Accessor, out)
	case *ast.Where:
		body := FreeIn(n.Body)
		delete(body, n.Binding.Name.Name)
		for k := range body {
			out[k] = true
		}
		freeInto(n.Binding, out)
	case *ast.Assign:
		freeInto(n.Value, out)
	case *ast.Closure:
		freeInto(n.Func, out)
	case *ast.EnvObject:
		// not reachable in practice; EnvObjects are transient
	}
}

func freeInCase(c ast.MatchCase, out map[string]bool) {
	body := FreeIn(c.Body)
	for k := range FreeInPattern(c.Pattern) {
		delete(body, k)
	}
	for k := range body {
		out[k] = true
	}
}

// FreeInPattern returns the set of names a pattern binds (Var and
// named Spread act as binders in pattern position).
func FreeInPattern(pat ast.Expr) map[string]bool {
	out := make(map[string]bool)
	switch p := pat.(type) {
	case *ast.Var:
		out[p.Name] = true
	case *ast.Spread:
		if p.Named {
			out[p.Name] = true
		}
	case *ast.Variant:
		for k := range FreeInPattern(p.Value) {
			out[k] = true
		}
	case *ast.List:
		for _, item := range p.Items {
			for k := range FreeInPattern(item) {
				out[k] = true
			}
		}
	case *ast.Record:
		for _, f := range p.Fields {
			for k := range FreeInPattern(f.Value) {
				out[k] = true
			}
		}
	}
	return out
}

func argName(arg ast.Expr) string {
	if v, ok := arg.(*ast.Var); ok {
		return v.Name
	}
	return ""
}

// ImproveClosure shrinks c's captured environment to exactly the names
// free in its underlying Function/MatchFunction (the closure
// minimization step, spec.md §4.4), returning a new Closure value.
func ImproveClosure(c *ast.Closure) *ast.Closure {
	free := FreeIn(c.Func)
	return &ast.Closure{Env: c.Env.Filter(free), Func: c.Func}
}
