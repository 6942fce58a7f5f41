package types

import (
	"sort"

	"github.com/scrapscript/scrapscript-go/errs"
)

// OccursIn reports whether tv occurs free within ty (the occurs
// check), preventing infinite types like `'a = list 'a`.
func OccursIn(tv *TyVar, ty MonoType) bool {
	switch t := ty.Find().(type) {
	case *TyVar:
		return tv == t
	case *TyCon:
		for _, a := range t.Args {
			if OccursIn(tv, a) {
				return true
			}
		}
		return false
	case TyEmptyRow:
		return false
	case *TyRow:
		for _, v := range t.Fields {
			if OccursIn(tv, v) {
				return true
			}
		}
		return OccursIn(tv, t.Rest)
	default:
		return false
	}
}

// Unify unifies ty1 and ty2 in place via the union-find forest,
// implementing spec.md §4.6's row-polymorphic unification rules
// (flatten rows, unify the field intersection pointwise, reconcile
// missing fields on either or both sides by forcing tails).
func Unify(ty1, ty2 MonoType) error {
	ty1 = ty1.Find()
	ty2 = ty2.Find()
	if ty1 == ty2 {
		return nil
	}
	if tv1, ok := ty1.(*TyVar); ok {
		if OccursIn(tv1, ty2) {
			return errs.InferenceError(errs.Pos{}, "occurs check failed for %s and %s", ty1, ty2)
		}
		return tv1.MakeEqualTo(ty2)
	}
	if tv2, ok := ty2.(*TyVar); ok {
		return Unify(tv2, ty1)
	}
	if c1, ok := ty1.(*TyCon); ok {
		c2, ok := ty2.(*TyCon)
		if !ok || c1.Name != c2.Name || len(c1.Args) != len(c2.Args) {
			return errs.InferenceError(errs.Pos{}, "unification failed for %s and %s", ty1, ty2)
		}
		for i := range c1.Args {
			if err := Unify(c1.Args[i], c2.Args[i]); err != nil {
				return err
			}
		}
		return nil
	}
	_, empty1 := ty1.(TyEmptyRow)
	_, empty2 := ty2.(TyEmptyRow)
	if empty1 && empty2 {
		return nil
	}
	row1, isRow1 := ty1.(*TyRow)
	row2, isRow2 := ty2.(*TyRow)
	if isRow1 && isRow2 {
		return unifyRows(row1, row2)
	}
	if isRow1 && empty2 {
		return errs.InferenceError(errs.Pos{}, "unifying row %s with empty row", ty1)
	}
	if empty1 && isRow2 {
		return errs.InferenceError(errs.Pos{}, "unifying empty row with row %s", ty2)
	}
	return errs.InferenceError(errs.Pos{}, "cannot unify %s and %s", ty1, ty2)
}

func unifyRows(ty1, ty2 *TyRow) error {
	fields1, rest1 := RowFlatten(ty1)
	fields2, rest2 := RowFlatten(ty2)
	missing1 := map[string]MonoType{}
	missing2 := map[string]MonoType{}
	allNames := map[string]bool{}
	for k := range fields1 {
		allNames[k] = true
	}
	for k := range fields2 {
		allNames[k] = true
	}
	names := make([]string, 0, len(allNames))
	for k := range allNames {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, key := range names {
		v1, ok1 := fields1[key]
		v2, ok2 := fields2[key]
		switch {
		case ok1 && ok2:
			if err := Unify(v1, v2); err != nil {
				return err
			}
		case !ok1:
			missing1[key] = v2
		case !ok2:
			missing2[key] = v1
		}
	}
	switch {
	case len(missing1) == 0 && len(missing2) == 0:
		return Unify(rest1, rest2)
	case len(missing1) == 0:
		return Unify(rest2, &TyRow{Fields: missing2, Rest: rest1})
	case len(missing2) == 0:
		return Unify(rest1, &TyRow{Fields: missing1, Rest: rest2})
	default:
		rest := FreshTyVar("t")
		if err := Unify(rest1, &TyRow{Fields: missing1, Rest: rest}); err != nil {
			return err
		}
		return Unify(rest2, &TyRow{Fields: missing2, Rest: rest})
	}
}
