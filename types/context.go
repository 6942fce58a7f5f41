package types

import "fmt"

// Context maps a name to its type scheme, threaded through inference
// (spec.md §4.6). Grounded on the reference's `Context = Mapping[str,
// Forall]`; kept as a plain map copied on extend, mirroring the same
// "ctx extended with one more binding" idiom infer_type uses
// throughout.
type Context map[string]Forall

// Extend returns a new Context equal to c plus name -> scheme.
func (c Context) Extend(name string, scheme Forall) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[name] = scheme
	return out
}

// freshVarCounter is the process-global monotone counter backing
// FreshTyVar, mirroring spec.md §5's "fresh-variable counter... must be
// resettable (tests require it)".
var freshVarCounter int

// FreshTyVar returns a new, never-before-seen type variable with the
// given name prefix.
func FreshTyVar(prefix string) *TyVar {
	name := fmt.Sprintf("%s%d", prefix, freshVarCounter)
	freshVarCounter++
	return NewTyVar(name)
}

// ResetFreshVarCounter zeroes the global fresh-variable counter, for
// tests that need deterministic type-variable names (spec.md §5).
func ResetFreshVarCounter() { freshVarCounter = 0 }

// ApplySubst substitutes ty's free type variables per subst (keyed by
// variable name), used to instantiate a Forall scheme.
func ApplySubst(ty MonoType, subst map[string]MonoType) MonoType {
	ty = ty.Find()
	switch t := ty.(type) {
	case *TyVar:
		if repl, ok := subst[t.Name]; ok {
			return repl
		}
		return t
	case *TyCon:
		args := make([]MonoType, len(t.Args))
		for i, a := range t.Args {
			args[i] = ApplySubst(a, subst)
		}
		return &TyCon{Name: t.Name, Args: args}
	case TyEmptyRow:
		return t
	case *TyRow:
		fields := make(map[string]MonoType, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = ApplySubst(v, subst)
		}
		return &TyRow{Fields: fields, Rest: ApplySubst(t.Rest, subst)}
	default:
		return ty
	}
}

// Instantiate replaces scheme's quantified variables with fresh ones.
func Instantiate(scheme Forall) MonoType {
	subst := make(map[string]MonoType, len(scheme.TyVars))
	for _, tv := range scheme.TyVars {
		subst[tv.Name] = FreshTyVar("t")
	}
	return ApplySubst(scheme.Ty, subst)
}

// Ftv returns the free type variable names occurring in ty.
func Ftv(ty MonoType) map[string]bool {
	out := make(map[string]bool)
	ftvInto(ty, out)
	return out
}

func ftvInto(ty MonoType, out map[string]bool) {
	ty = ty.Find()
	switch t := ty.(type) {
	case *TyVar:
		out[t.Name] = true
	case *TyCon:
		for _, a := range t.Args {
			ftvInto(a, out)
		}
	case TyEmptyRow:
	case *TyRow:
		for _, v := range t.Fields {
			ftvInto(v, out)
		}
		ftvInto(t.Rest, out)
	}
}

func ftvScheme(s Forall) map[string]bool {
	free := Ftv(s.Ty)
	for _, tv := range s.TyVars {
		delete(free, tv.Name)
	}
	return free
}

func ftvCtx(ctx Context) map[string]bool {
	out := make(map[string]bool)
	for _, scheme := range ctx {
		for k := range ftvScheme(scheme) {
			out[k] = true
		}
	}
	return out
}

// Generalize quantifies ty over every free type variable not free in
// ctx (spec.md §4.6 "gen(τ, ctx) = ∀ (ftv(τ) − ftv(ctx)). τ"), the
// let-generalization step.
func Generalize(ty MonoType, ctx Context) Forall {
	tyFree := Ftv(ty)
	ctxFree := ftvCtx(ctx)
	names := make([]string, 0, len(tyFree))
	for name := range tyFree {
		if !ctxFree[name] {
			names = append(names, name)
		}
	}
	sortStrings(names)
	tvs := make([]*TyVar, len(names))
	for i, n := range names {
		tvs[i] = NewTyVar(n)
	}
	return Forall{TyVars: tvs, Ty: ty}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Minimize renames ty's free type variables to a..z, for readable
// display of an inferred top-level type (spec.md §4.6's `minimize`).
func Minimize(ty MonoType) MonoType {
	letters := "abcdefghijklmnopqrstuvwxyz"
	free := Ftv(ty)
	names := make([]string, 0, len(free))
	for n := range free {
		names = append(names, n)
	}
	sortStrings(names)
	subst := make(map[string]MonoType, len(names))
	for i, n := range names {
		if i >= len(letters) {
			break
		}
		subst[n] = NewTyVar(string(letters[i]))
	}
	return ApplySubst(ty, subst)
}

// DefaultOperatorContext returns the Var-keyed schemes Binop inference
// looks up for each operator (spec.md §4.6: "Binop: look up operator's
// scheme in an operator context, then infer as nested Apply"). The
// reference implementation's own tests only ever populate "+"; every
// other entry here is extrapolated by analogy from the evaluator's
// numeric-tower/string/list semantics (spec.md §4.5), documented as a
// supplement in DESIGN.md.
func DefaultOperatorContext() Context {
	ctx := Context{}
	intBinop := Forall{Ty: FuncType(IntType, IntType, IntType)}
	ctx["+"] = intBinop
	ctx["-"] = intBinop
	ctx["*"] = intBinop
	ctx["%"] = intBinop
	ctx["//"] = intBinop
	ctx["^"] = intBinop
	ctx["/"] = Forall{Ty: FuncType(FloatType, FloatType, FloatType)}
	ctx["++"] = Forall{Ty: FuncType(StringType, StringType, StringType)}
	a := NewTyVar("a")
	listA := ListType(a)
	ctx[">+"] = Forall{TyVars: []*TyVar{a}, Ty: FuncType(a, listA, listA)}
	b := NewTyVar("a")
	listB := ListType(b)
	ctx["+<"] = Forall{TyVars: []*TyVar{b}, Ty: FuncType(listB, b, listB)}
	c := NewTyVar("a")
	d := NewTyVar("b")
	ctx["!"] = Forall{TyVars: []*TyVar{c, d}, Ty: FuncType(c, d, d)}
	return ctx
}
