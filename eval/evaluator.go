// Package eval is the tree-walking Scrapscript evaluator (spec.md
// §4.5): single-threaded, strict, call-by-value, environment-threading.
// Structurally grounded on the teacher's Evaluator (go-mix's
// eval/evaluator.go: a struct dispatching Eval(node) via a big
// type-switch, reporting position-tagged errors); the per-variant
// evaluation rules themselves are grounded exactly on
// original_source/scrapscript.py's eval_exp.
package eval

import (
	"math"
	"math/big"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/errs"
)

// Evaluator holds no state of its own (Scrapscript's core has none to
// hold, per spec.md §5); it exists as a value so it can implement
// ast.Runtime and be threaded into NativeFunction callbacks exactly as
// the teacher's Evaluator was threaded into std.Runtime consumers.
type Evaluator struct{}

// New constructs an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Apply implements ast.Runtime: evaluate applying an already-evaluated
// function value to an already-evaluated argument, letting native
// builtins call back into Scrapscript closures.
func (ev *Evaluator) Apply(fn ast.Expr, arg ast.Expr) (ast.Expr, error) {
	return ev.applyValue(fn, arg)
}

// Eval evaluates exp in env, returning the resulting value or a typed
// error (errs package).
func (ev *Evaluator) Eval(env *ast.Env, exp ast.Expr) (ast.Expr, error) {
	switch n := exp.(type) {
	case *ast.Int, *ast.Float, *ast.String, *ast.Bytes, *ast.Hole, *ast.Closure, *ast.NativeFunction:
		return exp, nil
	case *ast.Variant:
		v, err := ev.Eval(env, n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Variant{Tag: n.Tag, Value: v, Pos: n.Pos}, nil
	case *ast.Var:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, errs.NameError(n.Pos, "name %q is not defined", n.Name)
		}
		return v, nil
	case *ast.Binop:
		return ev.evalBinop(env, n)
	case *ast.List:
		items := make([]ast.Expr, len(n.Items))
		for i, item := range n.Items {
			v, err := ev.Eval(env, item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return &ast.List{Items: items, Pos: n.Pos}, nil
	case *ast.Record:
		fields := make([]ast.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			v, err := ev.Eval(env, f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordField{Name: f.Name, Value: v}
		}
		return &ast.Record{Fields: fields, Pos: n.Pos}, nil
	case *ast.Assign:
		return ev.evalAssign(env, n)
	case *ast.Where:
		return ev.evalWhere(env, n)
	case *ast.Assert:
		cond, err := ev.Eval(env, n.Cond)
		if err != nil {
			return nil, err
		}
		if b, ok := ast.IsBool(cond); !ok || !b {
			return nil, errs.AssertionError(n.Pos, "assertion failed")
		}
		return ev.Eval(env, n.Value)
	case *ast.Function:
		return ImproveClosure(&ast.Closure{Env: env, Func: n}), nil
	case *ast.MatchFunction:
		return ImproveClosure(&ast.Closure{Env: env, Func: n}), nil
	case *ast.Apply:
		return ev.evalApply(env, n)
	case *ast.Access:
		return ev.evalAccess(env, n)
	case *ast.Spread:
		return nil, errs.RuntimeError(n.Pos, "cannot evaluate a spread outside of pattern position")
	default:
		return nil, errs.RuntimeError(errs.Pos{}, "eval not implemented for %T", exp)
	}
}

func (ev *Evaluator) evalAssign(env *ast.Env, n *ast.Assign) (ast.Expr, error) {
	value, err := ev.Eval(env, n.Value)
	if err != nil {
		return nil, err
	}
	if closure, ok := value.(*ast.Closure); ok {
		// Letrec trick (spec.md §4.5, §9): install the closure into its
		// own captured environment so it can call itself by name, then
		// re-minimize (it may not actually be recursive).
		closure.Env.SetSelf(n.Name.Name, closure)
		value = ImproveClosure(closure)
	}
	return &ast.EnvObject{Env: ast.Empty().Extend(n.Name.Name, value)}, nil
}

func (ev *Evaluator) evalWhere(env *ast.Env, n *ast.Where) (ast.Expr, error) {
	bound, err := ev.Eval(env, n.Binding)
	if err != nil {
		return nil, err
	}
	envObj, ok := bound.(*ast.EnvObject)
	if !ok {
		return nil, errs.RuntimeError(n.Pos, "where-binding did not evaluate to an environment")
	}
	return ev.Eval(env.Merge(envObj.Env), n.Body)
}

func (ev *Evaluator) evalApply(env *ast.Env, n *ast.Apply) (ast.Expr, error) {
	if v, ok := n.Func.(*ast.Var); ok && v.Name == "$$quote" {
		return n.Arg, nil
	}
	callee, err := ev.Eval(env, n.Func)
	if err != nil {
		return nil, err
	}
	arg, err := ev.Eval(env, n.Arg)
	if err != nil {
		return nil, err
	}
	return ev.applyValue(callee, arg)
}

func (ev *Evaluator) applyValue(callee ast.Expr, arg ast.Expr) (ast.Expr, error) {
	if native, ok := callee.(*ast.NativeFunction); ok {
		return native.Call(ev, arg)
	}
	closure, ok := callee.(*ast.Closure)
	if !ok {
		return nil, errs.TypeError(errs.Pos{}, "attempted to apply a non-closure of type %T", callee)
	}
	switch fn := closure.Func.(type) {
	case *ast.Function:
		argName, ok := fn.Arg.(*ast.Var)
		if !ok {
			return nil, errs.RuntimeError(fn.Pos, "expected variable in function definition")
		}
		return ev.Eval(closure.Env.Extend(argName.Name, arg), fn.Body)
	case *ast.MatchFunction:
		return ev.evalMatchApply(closure.Env, fn, arg)
	default:
		return nil, errs.TypeError(errs.Pos{}, "attempted to apply a non-function of type %T", closure.Func)
	}
}

func (ev *Evaluator) evalAccess(env *ast.Env, n *ast.Access) (ast.Expr, error) {
	obj, err := ev.Eval(env, n.Object)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *ast.Record:
		v, ok := n.Accessor.(*ast.Var)
		if !ok {
			return nil, errs.TypeError(n.Pos, "cannot access record field using %T, expected a field name", n.Accessor)
		}
		for _, f := range o.Fields {
			if f.Name == v.Name {
				return f.Value, nil
			}
		}
		return nil, errs.NameError(n.Pos, "no assignment to %s found in record", v.Name)
	case *ast.List:
		at, err := ev.Eval(env, n.Accessor)
		if err != nil {
			return nil, err
		}
		idx, ok := at.(*ast.Int)
		if !ok {
			return nil, errs.TypeError(n.Pos, "cannot index into list using type %T, expected integer", at)
		}
		if !idx.Value.IsInt64() {
			return nil, errs.ValueError(n.Pos, "index %s out of bounds for list", idx.Value.String())
		}
		i := idx.Value.Int64()
		if i < 0 || i >= int64(len(o.Items)) {
			return nil, errs.ValueError(n.Pos, "index %d out of bounds for list", i)
		}
		return o.Items[i], nil
	default:
		return nil, errs.TypeError(n.Pos, "attempted to access from type %T", obj)
	}
}

// asFloat widens an Int/Float value to a float64, for mixed-type
// arithmetic (spec.md §4.5 numeric tower: "+ - * %" return Int if both
// operands are Int, else Float).
func asFloat(v ast.Expr) (float64, bool) {
	switch n := v.(type) {
	case *ast.Int:
		f := new(big.Float).SetInt(n.Value)
		out, _ := f.Float64()
		return out, true
	case *ast.Float:
		return n.Value, true
	default:
		return 0, false
	}
}

func bothInt(a, b ast.Expr) (*big.Int, *big.Int, bool) {
	ai, aok := a.(*ast.Int)
	bi, bok := b.(*ast.Int)
	if aok && bok {
		return ai.Value, bi.Value, true
	}
	return nil, nil, false
}

// floorDivInt performs Python-style floor division on big.Ints (the
// quotient is rounded toward negative infinity, unlike Go's
// truncate-toward-zero big.Int.Quo).
func floorDivInt(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

// floorModInt is Python-style %: the result takes the sign of the
// divisor.
func floorModInt(a, b *big.Int) *big.Int {
	r := new(big.Int).Mod(a, new(big.Int).Abs(b))
	if b.Sign() < 0 && r.Sign() != 0 {
		r.Add(r, b)
	}
	return r
}

// floorModFloat mirrors original_source's `%` (Python's floored float
// modulo), not Go's truncated math.Mod: the result takes the sign of
// b, matching floorModInt's integer behavior above.
func floorModFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func (ev *Evaluator) evalNumeric(env *ast.Env, left, right ast.Expr) (ast.Expr, ast.Expr, error) {
	l, err := ev.Eval(env, left)
	if err != nil {
		return nil, nil, err
	}
	r, err := ev.Eval(env, right)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := asFloat(l); !ok {
		return nil, nil, errs.TypeError(errs.Pos{}, "expected Int or Float, got %T", l)
	}
	if _, ok := asFloat(r); !ok {
		return nil, nil, errs.TypeError(errs.Pos{}, "expected Int or Float, got %T", r)
	}
	return l, r, nil
}

func (ev *Evaluator) evalBinop(env *ast.Env, n *ast.Binop) (ast.Expr, error) {
	pos := n.Pos
	switch n.Op {
	case ast.ADD, ast.SUB, ast.MUL, ast.MOD:
		l, r, err := ev.evalNumeric(env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if li, ri, ok := bothInt(l, r); ok {
			var out *big.Int
			switch n.Op {
			case ast.ADD:
				out = new(big.Int).Add(li, ri)
			case ast.SUB:
				out = new(big.Int).Sub(li, ri)
			case ast.MUL:
				out = new(big.Int).Mul(li, ri)
			case ast.MOD:
				if ri.Sign() == 0 {
					return nil, errs.ValueError(pos, "modulo by zero")
				}
				out = floorModInt(li, ri)
			}
			return &ast.Int{Value: out}, nil
		}
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		var out float64
		switch n.Op {
		case ast.ADD:
			out = lf + rf
		case ast.SUB:
			out = lf - rf
		case ast.MUL:
			out = lf * rf
		case ast.MOD:
			out = floorModFloat(lf, rf)
		}
		return &ast.Float{Value: out}, nil
	case ast.DIV:
		l, r, err := ev.evalNumeric(env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		if rf == 0 {
			return nil, errs.ValueError(pos, "division by zero")
		}
		return &ast.Float{Value: lf / rf}, nil
	case ast.FLOOR_DIV:
		l, r, err := ev.evalNumeric(env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if li, ri, ok := bothInt(l, r); ok {
			if ri.Sign() == 0 {
				return nil, errs.ValueError(pos, "division by zero")
			}
			return &ast.Int{Value: floorDivInt(li, ri)}, nil
		}
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		return &ast.Float{Value: math.Floor(lf / rf)}, nil
	case ast.EXP:
		l, r, err := ev.evalNumeric(env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if li, ri, ok := bothInt(l, r); ok && ri.Sign() >= 0 {
			return &ast.Int{Value: new(big.Int).Exp(li, ri, nil)}, nil
		}
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		return &ast.Float{Value: math.Pow(lf, rf)}, nil
	case ast.LESS, ast.GREATER, ast.LESS_EQUAL, ast.GREATER_EQUAL:
		l, r, err := ev.evalNumeric(env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		var cmp int
		if li, ri, ok := bothInt(l, r); ok {
			cmp = li.Cmp(ri)
		} else {
			lf, _ := asFloat(l)
			rf, _ := asFloat(r)
			switch {
			case lf < rf:
				cmp = -1
			case lf > rf:
				cmp = 1
			default:
				cmp = 0
			}
		}
		var b bool
		switch n.Op {
		case ast.LESS:
			b = cmp < 0
		case ast.GREATER:
			b = cmp > 0
		case ast.LESS_EQUAL:
			b = cmp <= 0
		case ast.GREATER_EQUAL:
			b = cmp >= 0
		}
		return ast.MakeBool(b), nil
	case ast.EQUAL, ast.NOT_EQUAL:
		l, err := ev.Eval(env, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(env, n.Right)
		if err != nil {
			return nil, err
		}
		eq := structurallyEqual(l, r)
		if n.Op == ast.NOT_EQUAL {
			eq = !eq
		}
		return ast.MakeBool(eq), nil
	case ast.BOOL_AND, ast.BOOL_OR:
		l, err := ev.Eval(env, n.Left)
		if err != nil {
			return nil, err
		}
		lb, ok := ast.IsBool(l)
		if !ok {
			return nil, errs.TypeError(pos, "expected #true or #false, got %T", l)
		}
		if n.Op == ast.BOOL_AND && !lb {
			return ast.False(), nil
		}
		if n.Op == ast.BOOL_OR && lb {
			return ast.True(), nil
		}
		r, err := ev.Eval(env, n.Right)
		if err != nil {
			return nil, err
		}
		rb, ok := ast.IsBool(r)
		if !ok {
			return nil, errs.TypeError(pos, "expected #true or #false, got %T", r)
		}
		return ast.MakeBool(rb), nil
	case ast.STRING_CONCAT:
		l, err := ev.Eval(env, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(env, n.Right)
		if err != nil {
			return nil, err
		}
		ls, ok := l.(*ast.String)
		if !ok {
			return nil, errs.TypeError(pos, "expected String, got %T", l)
		}
		rs, ok := r.(*ast.String)
		if !ok {
			return nil, errs.TypeError(pos, "expected String, got %T", r)
		}
		return &ast.String{Value: ls.Value + rs.Value}, nil
	case ast.LIST_CONS:
		l, err := ev.Eval(env, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(env, n.Right)
		if err != nil {
			return nil, err
		}
		rl, ok := r.(*ast.List)
		if !ok {
			return nil, errs.TypeError(pos, "expected List, got %T", r)
		}
		items := append([]ast.Expr{l}, rl.Items...)
		return &ast.List{Items: items}, nil
	case ast.LIST_APPEND:
		l, err := ev.Eval(env, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(env, n.Right)
		if err != nil {
			return nil, err
		}
		ll, ok := l.(*ast.List)
		if !ok {
			return nil, errs.TypeError(pos, "expected List, got %T", l)
		}
		items := append(append([]ast.Expr(nil), ll.Items...), r)
		return &ast.List{Items: items}, nil
	case ast.RIGHT_EVAL:
		if _, err := ev.Eval(env, n.Left); err != nil {
			return nil, err
		}
		return ev.Eval(env, n.Right)
	default:
		return nil, errs.RuntimeError(pos, "no handler for operator %s", n.Op)
	}
}

// structurallyEqual implements `==`/`/=` by deep structural comparison,
// mirroring Python's dataclass `__eq__` over the Object hierarchy.
func structurallyEqual(a, b ast.Expr) bool {
	switch x := a.(type) {
	case *ast.Int:
		y, ok := b.(*ast.Int)
		return ok && x.Value.Cmp(y.Value) == 0
	case *ast.Float:
		y, ok := b.(*ast.Float)
		return ok && x.Value == y.Value
	case *ast.String:
		y, ok := b.(*ast.String)
		return ok && x.Value == y.Value
	case *ast.Bytes:
		y, ok := b.(*ast.Bytes)
		return ok && string(x.Value) == string(y.Value)
	case *ast.Hole:
		_, ok := b.(*ast.Hole)
		return ok
	case *ast.Variant:
		y, ok := b.(*ast.Variant)
		return ok && x.Tag == y.Tag && structurallyEqual(x.Value, y.Value)
	case *ast.List:
		y, ok := b.(*ast.List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !structurallyEqual(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *ast.Record:
		y, ok := b.(*ast.Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		yFields := make(map[string]ast.Expr, len(y.Fields))
		for _, f := range y.Fields {
			yFields[f.Name] = f.Value
		}
		for _, f := range x.Fields {
			yv, ok := yFields[f.Name]
			if !ok || !structurallyEqual(f.Value, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
