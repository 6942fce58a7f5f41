package eval

import (
	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/errs"
	"github.com/scrapscript/scrapscript-go/match"
)

// evalMatchApply tries each MatchFunction case in order against arg,
// evaluating the first one whose pattern matches (spec.md §4.5).
func (ev *Evaluator) evalMatchApply(env *ast.Env, fn *ast.MatchFunction, arg ast.Expr) (ast.Expr, error) {
	for _, c := range fn.Cases {
		bindings, err := match.Match(arg, c.Pattern)
		if err != nil {
			return nil, err
		}
		if bindings == nil {
			continue
		}
		return ev.Eval(env.Merge(bindings), c.Body)
	}
	return nil, errs.MatchError(fn.Pos, "no matching cases")
}
