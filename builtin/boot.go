package builtin

import (
	"fmt"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/eval"
	"github.com/scrapscript/scrapscript-go/parser"
)

// Boot parses and evaluates Prelude once against Stdlib, returning the
// default environment new top-level programs run against (spec.md §6:
// "The prelude is parsed and evaluated once against a set of built-in
// closures/natives to form the default environment", grounded on
// original_source's boot_env).
//
// The prelude text is one long chain of `name = value . name = value
// . ... . name = value` Where-bindings (spec.md: "Where — body .
// binding"). spec.md's own Assign rule returns a single-key
// EnvObject({name -> v}), not one merged with the ambient environment
// (a deliberate simplification from original_source's {**env, name:
// v}), so the evaluator's top-level return value for this chain would
// only surface the innermost binding ("id"). Boot walks the Where
// spine itself, accumulating each binding's single-key EnvObject into
// one environment as it descends — every sub-expression is still
// evaluated by the real Evaluator; only the final-env bookkeeping
// happens here.
func Boot() (*ast.Env, error) {
	expr, err := parser.Parse(Prelude)
	if err != nil {
		return nil, fmt.Errorf("builtin: parsing prelude: %w", err)
	}
	ev := eval.New()
	return bindChain(ev, Stdlib(), expr)
}

func bindChain(ev *eval.Evaluator, env *ast.Env, expr ast.Expr) (*ast.Env, error) {
	if w, ok := expr.(*ast.Where); ok {
		bound, err := ev.Eval(env, w.Binding)
		if err != nil {
			return nil, err
		}
		envObj, ok := bound.(*ast.EnvObject)
		if !ok {
			return nil, fmt.Errorf("builtin: where-binding did not evaluate to an environment")
		}
		return bindChain(ev, env.Merge(envObj.Env), w.Body)
	}
	result, err := ev.Eval(env, expr)
	if err != nil {
		return nil, err
	}
	envObj, ok := result.(*ast.EnvObject)
	if !ok {
		return nil, fmt.Errorf("builtin: expected prelude to evaluate to an environment, got %T", result)
	}
	return env.Merge(envObj.Env), nil
}
