// Package match implements Scrapscript's structural pattern matcher
// (spec.md §4.3): given a value and a pattern, it either produces the
// bindings the pattern introduces or reports no match. Grounded
// exactly on original_source/scrapscript.py's `match` function; the
// general "closed-tag dispatch over pattern shape" idiom mirrors the
// teacher's parser/switch_node.go tagged-variant switch, generalized
// here to runtime values instead of parse-time grammar productions.
package match

import (
	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/errs"
)

// Match reports whether obj matches pattern. A nil, nil result means
// no match (not an error). A non-nil error means the pattern itself is
// invalid to match against: a Float pattern (per spec.md §4.3's
// "Float patterns always raise MatchError") or a pattern of a kind the
// matcher does not handle.
func Match(obj, pattern ast.Expr) (*ast.Env, error) {
	switch pat := pattern.(type) {
	case *ast.Hole:
		if _, ok := obj.(*ast.Hole); ok {
			return ast.Empty(), nil
		}
		return nil, nil
	case *ast.Int:
		if o, ok := obj.(*ast.Int); ok && o.Value.Cmp(pat.Value) == 0 {
			return ast.Empty(), nil
		}
		return nil, nil
	case *ast.Float:
		return nil, errs.MatchError(pat.Pos, "pattern matching is not supported for Floats")
	case *ast.String:
		if o, ok := obj.(*ast.String); ok && o.Value == pat.Value {
			return ast.Empty(), nil
		}
		return nil, nil
	case *ast.Var:
		return ast.Empty().Extend(pat.Name, obj), nil
	case *ast.Variant:
		o, ok := obj.(*ast.Variant)
		if !ok || o.Tag != pat.Tag {
			return nil, nil
		}
		return Match(o.Value, pat.Value)
	case *ast.Record:
		return matchRecord(obj, pat)
	case *ast.List:
		return matchList(obj, pat)
	default:
		return nil, errs.MatchError(errs.Pos{}, "pattern matching is not supported for %T", pattern)
	}
}

func matchRecord(obj ast.Expr, pat *ast.Record) (*ast.Env, error) {
	o, ok := obj.(*ast.Record)
	if !ok {
		return nil, nil
	}
	objFields := make(map[string]ast.Expr, len(o.Fields))
	for _, f := range o.Fields {
		objFields[f.Name] = f.Value
	}
	result := ast.Empty()
	useSpread := false
	seen := make(map[string]bool, len(pat.Fields))
	for _, pf := range pat.Fields {
		if spread, isSpread := pf.Value.(*ast.Spread); isSpread {
			useSpread = true
			if spread.Named {
				rest := make([]ast.RecordField, 0, len(o.Fields))
				for _, f := range o.Fields {
					if !seen[f.Name] {
						rest = append(rest, f)
					}
				}
				result = result.Extend(spread.Name, &ast.Record{Fields: rest})
			}
			break
		}
		seen[pf.Name] = true
		objItem, present := objFields[pf.Name]
		if !present {
			return nil, nil
		}
		part, err := Match(objItem, pf.Value)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, nil
		}
		result = result.Merge(part)
	}
	if !useSpread && len(pat.Fields) != len(o.Fields) {
		return nil, nil
	}
	return result, nil
}

func matchList(obj ast.Expr, pat *ast.List) (*ast.Env, error) {
	o, ok := obj.(*ast.List)
	if !ok {
		return nil, nil
	}
	result := ast.Empty()
	useSpread := false
	for i, patItem := range pat.Items {
		if spread, isSpread := patItem.(*ast.Spread); isSpread {
			useSpread = true
			if spread.Named {
				result = result.Extend(spread.Name, &ast.List{Items: append([]ast.Expr(nil), o.Items[i:]...)})
			}
			break
		}
		if i >= len(o.Items) {
			return nil, nil
		}
		part, err := Match(o.Items[i], patItem)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, nil
		}
		result = result.Merge(part)
	}
	if !useSpread && len(pat.Items) != len(o.Items) {
		return nil, nil
	}
	return result, nil
}
