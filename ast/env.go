package ast

// Env is a persistent, copy-on-extend environment mapping names to
// values (spec.md §3: "Environments are persistent — evaluation never
// mutates a caller's environment; it constructs a new one by
// copy-on-extend"). Structurally grounded on the teacher's
// scope.Scope (go-mix's scope/scope.go), inverted from a mutable
// parent-chained scope with a current-scope-only Bind into a flat,
// immutable map that Extend/Merge always copy rather than write
// through.
//
// The sole exception is SetSelf, the letrec trick (spec.md §4.5):
// installing a closure's own name into its own captured environment
// requires genuine mutation of that one Env value, since the closure
// already holds a pointer to it.
type Env struct {
	vars map[string]Expr
}

// Empty returns a new, empty environment.
func Empty() *Env {
	return &Env{vars: make(map[string]Expr)}
}

// NewEnv builds an environment from an existing map (taking ownership
// of a copy of it, never the caller's map itself).
func NewEnv(vars map[string]Expr) *Env {
	nv := make(map[string]Expr, len(vars))
	for k, v := range vars {
		nv[k] = v
	}
	return &Env{vars: nv}
}

// Get looks up name, returning ok=false if unbound.
func (e *Env) Get(name string) (Expr, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.vars[name]
	return v, ok
}

// Extend returns a new environment equal to e plus name -> value,
// never mutating e.
func (e *Env) Extend(name string, value Expr) *Env {
	nv := make(map[string]Expr, len(e.vars)+1)
	for k, v := range e.vars {
		nv[k] = v
	}
	nv[name] = value
	return &Env{vars: nv}
}

// Merge returns a new environment with other's bindings overlaid on
// e's (other wins on key collision), never mutating either receiver.
func (e *Env) Merge(other *Env) *Env {
	nv := make(map[string]Expr, len(e.vars)+len(other.vars))
	for k, v := range e.vars {
		nv[k] = v
	}
	for k, v := range other.vars {
		nv[k] = v
	}
	return &Env{vars: nv}
}

// Filter returns a new environment containing only the entries of e
// whose key is in keep — the closure-minimization step (spec.md §4.4).
func (e *Env) Filter(keep map[string]bool) *Env {
	nv := make(map[string]Expr, len(keep))
	for k, v := range e.vars {
		if keep[k] {
			nv[k] = v
		}
	}
	return &Env{vars: nv}
}

// Keys returns every bound name, in no particular order.
func (e *Env) Keys() []string {
	out := make([]string, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	return out
}

// Len reports the number of bindings.
func (e *Env) Len() int { return len(e.vars) }

// SetSelf installs name -> value directly into e's backing map,
// mutating e in place. This is the sole sanctioned mutation: the
// letrec trick that lets a Closure's environment refer to the closure
// itself (spec.md §4.5, §9 "Self-reference").
func (e *Env) SetSelf(name string, value Expr) {
	e.vars[name] = value
}
