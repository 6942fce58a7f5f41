// Package types is the row-polymorphic Hindley-Milner type inferencer
// (spec.md §4.6): union-find TyVars, TyCon/TyRow/TyEmptyRow monotypes,
// Forall schemes, unification, and Algorithm-W-style inference over
// ast.Expr. Grounded entirely on original_source/scrapscript.py's type
// section (TyVar.find/make_equal_to, unify_type, infer_type,
// generalize) — the teacher has no type system of its own to draw a
// structural shape from (DESIGN.md), so this package follows the
// reference implementation directly, in the idiom established by the
// rest of this codebase (pointer-receiver nodes, typed errs errors).
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scrapscript/scrapscript-go/errs"
)

// MonoType is a concrete (non-quantified) type.
type MonoType interface {
	Find() MonoType
	String() string
}

// TyVar is a type variable with an optional forwarding pointer; Find
// chases the chain to its root (spec.md §3 "union-find forest").
type TyVar struct {
	Name      string
	forwarded MonoType
}

// NewTyVar constructs an unbound type variable named name.
func NewTyVar(name string) *TyVar { return &TyVar{Name: name} }

func (v *TyVar) Find() MonoType {
	var result MonoType = v
	for {
		tv, ok := result.(*TyVar)
		if !ok || tv.forwarded == nil {
			return result
		}
		result = tv.forwarded
	}
}

func (v *TyVar) String() string { return "'" + v.Name }

// IsUnbound reports whether v has no forwarding pointer yet.
func (v *TyVar) IsUnbound() bool { return v.forwarded == nil }

// MakeEqualTo forwards v (which must currently resolve to itself) to
// other; the forwarding pointer, once set, is never cleared (spec.md
// §3 invariant: "monotone forest").
func (v *TyVar) MakeEqualTo(other MonoType) error {
	chainEnd := v.Find()
	tv, ok := chainEnd.(*TyVar)
	if !ok {
		return errs.InferenceError(errs.Pos{}, "%s is already resolved to %s", v, chainEnd)
	}
	tv.forwarded = other
	return nil
}

// TyCon is a named type constructor with an ordered argument list
// (ground types: int/string/float/bytes/hole; arrow: ->; list: list).
type TyCon struct {
	Name string
	Args []MonoType
}

func (c *TyCon) Find() MonoType { return c }

func (c *TyCon) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	if len(c.Args) == 1 {
		return fmt.Sprintf("(%s %s)", c.Args[0], c.Name)
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, c.Name) + ")"
}

// TyEmptyRow is the closed row terminator.
type TyEmptyRow struct{}

func (TyEmptyRow) Find() MonoType  { return TyEmptyRow{} }
func (TyEmptyRow) String() string { return "{}" }

// TyRow is a record type: a field-name -> type mapping plus a tail
// that is either a TyVar (open row) or TyEmptyRow (closed row).
type TyRow struct {
	Fields map[string]MonoType
	Rest   MonoType // *TyVar or TyEmptyRow
}

// NewClosedRow builds a TyRow closed with TyEmptyRow.
func NewClosedRow(fields map[string]MonoType) *TyRow {
	return &TyRow{Fields: fields, Rest: TyEmptyRow{}}
}

func (r *TyRow) Find() MonoType { return r }

func (r *TyRow) String() string {
	flat, rest := RowFlatten(r)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, flat[k]))
	}
	if tv, ok := rest.(*TyVar); ok {
		parts = append(parts, "..."+tv.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RowFlatten walks rest chains, accumulating fields until it reaches
// an unbound TyVar or TyEmptyRow tail (spec.md §4.6).
func RowFlatten(rec MonoType) (map[string]MonoType, MonoType) {
	if tv, ok := rec.(*TyVar); ok {
		found := tv.Find()
		if inner, stillVar := found.(*TyVar); stillVar {
			return map[string]MonoType{}, inner
		}
		rec = found
	}
	switch n := rec.(type) {
	case *TyRow:
		flat, rest := RowFlatten(n.Rest)
		out := make(map[string]MonoType, len(flat)+len(n.Fields))
		for k, v := range flat {
			out[k] = v
		}
		for k, v := range n.Fields {
			out[k] = v
		}
		return out, rest
	case TyEmptyRow:
		return map[string]MonoType{}, TyEmptyRow{}
	default:
		return map[string]MonoType{}, rec
	}
}

// Forall is a type scheme: quantified type variables plus a monotype.
type Forall struct {
	TyVars []*TyVar
	Ty     MonoType
}

func (f Forall) String() string {
	names := make([]string, len(f.TyVars))
	for i, v := range f.TyVars {
		names[i] = v.String()
	}
	return fmt.Sprintf("(forall %s. %s)", strings.Join(names, ", "), f.Ty)
}

// Ground types (spec.md §3).
var (
	IntType    = &TyCon{Name: "int"}
	StringType = &TyCon{Name: "string"}
	FloatType  = &TyCon{Name: "float"}
	BytesType  = &TyCon{Name: "bytes"}
	HoleType   = &TyCon{Name: "hole"}
)

// FuncType builds a curried arrow type from args ending in a result
// type, requiring at least two types total (matching the reference's
// func_type).
func FuncType(args ...MonoType) MonoType {
	if len(args) < 2 {
		panic("FuncType requires at least two types")
	}
	if len(args) == 2 {
		return &TyCon{Name: "->", Args: []MonoType{args[0], args[1]}}
	}
	return &TyCon{Name: "->", Args: []MonoType{args[0], FuncType(args[1:]...)}}
}

// ListType builds `list arg`.
func ListType(arg MonoType) MonoType {
	return &TyCon{Name: "list", Args: []MonoType{arg}}
}
