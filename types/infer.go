package types

import (
	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/errs"
)

// Annotations records the inferred type of each sub-expression visited
// during inference, mirroring the reference's `set_type`/`type_of`
// node-attribute mechanism (kept here as an explicit side table rather
// than mutating ast.Expr nodes, since ast.Expr is a closed value
// interface shared with the evaluator and serializer). Passing nil to
// Infer/InferPattern skips annotation.
type Annotations map[ast.Expr]MonoType

func (a Annotations) set(e ast.Expr, ty MonoType) MonoType {
	if a != nil {
		a[e] = ty
	}
	return ty
}

// inferCommon assigns ground types to self-typed literal nodes.
func inferCommon(expr ast.Expr, ann Annotations) (MonoType, bool) {
	switch expr.(type) {
	case *ast.Int:
		return ann.set(expr, IntType), true
	case *ast.Float:
		return ann.set(expr, FloatType), true
	case *ast.Bytes:
		return ann.set(expr, BytesType), true
	case *ast.Hole:
		return ann.set(expr, HoleType), true
	case *ast.String:
		return ann.set(expr, StringType), true
	default:
		return nil, false
	}
}

// InferPattern infers a pattern's type while binding its pattern
// variables into ctx (spec.md §4.6 "Pattern typing"). Open Question 1
// (spec.md §9/§13): a named Record spread binds to an open row of the
// unseen fields, consistent with the matcher's own behavior.
func InferPattern(pattern ast.Expr, ctx Context, ann Annotations) (MonoType, error) {
	if ty, ok := inferCommon(pattern, ann); ok {
		return ty, nil
	}
	switch p := pattern.(type) {
	case *ast.Var:
		result := FreshTyVar("t")
		ctx[p.Name] = Forall{Ty: result}
		return ann.set(p, result), nil
	case *ast.List:
		itemTy := FreshTyVar("t")
		resultTy := ListType(itemTy)
		for _, item := range p.Items {
			if spread, ok := item.(*ast.Spread); ok {
				if spread.Named {
					ctx[spread.Name] = Forall{Ty: resultTy}
				}
				break
			}
			thisTy, err := InferPattern(item, ctx, ann)
			if err != nil {
				return nil, err
			}
			if err := Unify(itemTy, thisTy); err != nil {
				return nil, err
			}
		}
		return ann.set(p, resultTy), nil
	case *ast.Record:
		fields := map[string]MonoType{}
		var rest MonoType = TyEmptyRow{}
		for _, f := range p.Fields {
			if spread, ok := f.Value.(*ast.Spread); ok {
				rv := FreshTyVar("t")
				rest = rv
				if spread.Named {
					ctx[spread.Name] = Forall{Ty: &TyRow{Fields: map[string]MonoType{}, Rest: rv}}
				}
				break
			}
			ty, err := InferPattern(f.Value, ctx, ann)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ty
		}
		return ann.set(p, &TyRow{Fields: fields, Rest: rest}), nil
	case *ast.Variant:
		// Variants are not modeled by the type system (no construction
		// rule exists in infer_type either; see DESIGN.md).
		return nil, errs.InferenceError(errs.Pos{}, "%T isn't allowed in a pattern", pattern)
	default:
		return nil, errs.InferenceError(errs.Pos{}, "%T isn't allowed in a pattern", pattern)
	}
}

// inferMatchCase infers one `| pattern -> body` alternative's type as
// `patternTy -> bodyTy`, binding the pattern's variables only for the
// duration of this case (spec.md §4.6). MatchCase is not itself an
// ast.Expr (it has no runtime-value reading), so it is typed directly
// rather than through Infer's dispatch.
func inferMatchCase(c ast.MatchCase, ctx Context, ann Annotations) (MonoType, error) {
	patternCtx := Context{}
	patternTy, err := InferPattern(c.Pattern, patternCtx, ann)
	if err != nil {
		return nil, err
	}
	bodyCtx := make(Context, len(ctx)+len(patternCtx))
	for k, v := range ctx {
		bodyCtx[k] = v
	}
	for k, v := range patternCtx {
		bodyCtx[k] = v
	}
	bodyTy, err := Infer(c.Body, bodyCtx, ann)
	if err != nil {
		return nil, err
	}
	return FuncType(patternTy, bodyTy), nil
}

// binopName maps a BinopKind to the textual operator name looked up in
// the operator Context, mirroring `Var(BinopKind.to_str(expr.op))`.
func binopName(k ast.BinopKind) string { return k.String() }

// Infer is Algorithm-W-style inference over expr (spec.md §4.6).
// Decisions from spec.md §9/§13: Access on a `list 'a`-typed object
// unifies the accessor against int and yields 'a (Open Question 2);
// `$$quote` carries no scheme, so any reference to it, applied or bare,
// fails here as an unbound-variable InferenceError (Open Question 3).
func Infer(expr ast.Expr, ctx Context, ann Annotations) (MonoType, error) {
	if ty, ok := inferCommon(expr, ann); ok {
		return ty, nil
	}
	switch e := expr.(type) {
	case *ast.Var:
		scheme, ok := ctx[e.Name]
		if !ok {
			return nil, errs.InferenceError(e.Pos, "unbound variable %s", e.Name)
		}
		return ann.set(e, Instantiate(scheme)), nil
	case *ast.Function:
		argVar := FreshTyVar("t")
		v, ok := e.Arg.(*ast.Var)
		if !ok {
			return nil, errs.InferenceError(e.Pos, "function argument must be a variable for typing, got %T", e.Arg)
		}
		bodyCtx := ctx.Extend(v.Name, Forall{Ty: argVar})
		bodyTy, err := Infer(e.Body, bodyCtx, ann)
		if err != nil {
			return nil, err
		}
		return ann.set(e, FuncType(argVar, bodyTy)), nil
	case *ast.Binop:
		op := &ast.Var{Name: binopName(e.Op)}
		ty, err := Infer(&ast.Apply{Func: &ast.Apply{Func: op, Arg: e.Left}, Arg: e.Right}, ctx, ann)
		if err != nil {
			return nil, err
		}
		return ann.set(e, ty), nil
	case *ast.Where:
		name := e.Binding.Name.Name
		var valueTy MonoType
		var err error
		switch e.Binding.Value.(type) {
		case *ast.Function, *ast.MatchFunction:
			funcTy := FreshTyVar("t")
			valueTy, err = Infer(e.Binding.Value, ctx.Extend(name, Forall{Ty: funcTy}), ann)
		default:
			valueTy, err = Infer(e.Binding.Value, ctx, ann)
		}
		if err != nil {
			return nil, err
		}
		valueScheme := Generalize(valueTy, ctx)
		bodyTy, err := Infer(e.Body, ctx.Extend(name, valueScheme), ann)
		if err != nil {
			return nil, err
		}
		return ann.set(e, bodyTy), nil
	case *ast.List:
		itemTy := FreshTyVar("t")
		for _, item := range e.Items {
			if _, isSpread := item.(*ast.Spread); isSpread {
				return nil, errs.InferenceError(e.Pos, "spread can only occur in list match")
			}
			thisTy, err := Infer(item, ctx, ann)
			if err != nil {
				return nil, err
			}
			if err := Unify(itemTy, thisTy); err != nil {
				return nil, err
			}
		}
		return ann.set(e, ListType(itemTy)), nil
	case *ast.Apply:
		funcTy, err := Infer(e.Func, ctx, ann)
		if err != nil {
			return nil, err
		}
		argTy, err := Infer(e.Arg, ctx, ann)
		if err != nil {
			return nil, err
		}
		result := FreshTyVar("t")
		if err := Unify(funcTy, FuncType(argTy, result)); err != nil {
			return nil, err
		}
		return ann.set(e, result), nil
	case *ast.MatchFunction:
		result := FreshTyVar("t")
		for _, c := range e.Cases {
			caseTy, err := inferMatchCase(c, ctx, ann)
			if err != nil {
				return nil, err
			}
			if err := Unify(result, caseTy); err != nil {
				return nil, err
			}
		}
		return ann.set(e, result), nil
	case *ast.Record:
		fields := map[string]MonoType{}
		for _, f := range e.Fields {
			if _, isSpread := f.Value.(*ast.Spread); isSpread {
				return nil, errs.InferenceError(e.Pos, "spread can only occur in record match")
			}
			ty, err := Infer(f.Value, ctx, ann)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ty
		}
		return ann.set(e, &TyRow{Fields: fields, Rest: TyEmptyRow{}}), nil
	case *ast.Access:
		objTy, err := Infer(e.Object, ctx, ann)
		if err != nil {
			return nil, err
		}
		// Open Question 2 (spec.md §13): list access via an arbitrary
		// int-valued expression is typed as `int -> list 'a -> 'a` when
		// the object's type is already known to be a list; otherwise
		// fall through to the reference's record "has field" rule,
		// which requires the accessor to be a Var.
		if con, ok := objTy.Find().(*TyCon); ok && con.Name == "list" {
			elemTy := con.Args[0]
			accessorTy, err := Infer(e.Accessor, ctx, ann)
			if err != nil {
				return nil, err
			}
			if err := Unify(accessorTy, IntType); err != nil {
				return nil, err
			}
			return ann.set(e, elemTy), nil
		}
		v, ok := e.Accessor.(*ast.Var)
		if !ok {
			return nil, errs.InferenceError(e.Pos, "record field access requires a field name, got %T", e.Accessor)
		}
		valueTy := FreshTyVar("t")
		if err := Unify(objTy, &TyRow{Fields: map[string]MonoType{v.Name: valueTy}, Rest: FreshTyVar("t")}); err != nil {
			return nil, err
		}
		return ann.set(e, valueTy), nil
	default:
		return nil, errs.InferenceError(errs.Pos{}, "unexpected expression type %T", expr)
	}
}
