package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/parser"
)

func evalSource(t *testing.T, src string) ast.Expr {
	t.Helper()
	tree, err := parser.Parse(src)
	require.NoError(t, err)
	v, err := New().Eval(ast.Empty(), tree)
	require.NoError(t, err)
	return v
}

func TestEvaluator_IntArithmetic(t *testing.T) {
	tests := []struct {
		Input    string
		Expected int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"7 // 2", 3},
		{"-7 // 2", -4},
		{"7 % 3", 1},
		{"-7 % 3", 2},
		{"2 ^ 10", 1024},
	}
	for _, tt := range tests {
		v := evalSource(t, tt.Input)
		i, ok := v.(*ast.Int)
		require.Truef(t, ok, "input %q: expected Int, got %T", tt.Input, v)
		assert.Equalf(t, big.NewInt(tt.Expected), i.Value, "input %q", tt.Input)
	}
}

func TestEvaluator_DivisionAlwaysFloat(t *testing.T) {
	v := evalSource(t, "1 / 2")
	f, ok := v.(*ast.Float)
	require.True(t, ok)
	assert.Equal(t, 0.5, f.Value)
}

func TestEvaluator_MixedArithmeticPromotesToFloat(t *testing.T) {
	v := evalSource(t, "1 + 2.5")
	f, ok := v.(*ast.Float)
	require.True(t, ok)
	assert.Equal(t, 3.5, f.Value)
}

func TestEvaluator_StringConcat(t *testing.T) {
	v := evalSource(t, `"a" ++ "b"`)
	s, ok := v.(*ast.String)
	require.True(t, ok)
	assert.Equal(t, "ab", s.Value)
}

func TestEvaluator_ListConsAndAppend(t *testing.T) {
	v := evalSource(t, "1 >+ [2, 3]")
	l, ok := v.(*ast.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)
	assert.Equal(t, big.NewInt(1), l.Items[0].(*ast.Int).Value)

	v = evalSource(t, "[1, 2] +< 3")
	l, ok = v.(*ast.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)
	assert.Equal(t, big.NewInt(3), l.Items[2].(*ast.Int).Value)
}

func TestEvaluator_BoolShortCircuit(t *testing.T) {
	v := evalSource(t, "#false () && (1 2 3)")
	b, ok := ast.IsBool(v)
	require.True(t, ok)
	assert.False(t, b)

	v = evalSource(t, "#true () || (1 2 3)")
	b, ok = ast.IsBool(v)
	require.True(t, ok)
	assert.True(t, b)
}

func TestEvaluator_RightEval(t *testing.T) {
	v := evalSource(t, "1 ! 2")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(2), i.Value)
}

func TestEvaluator_RecordAccess(t *testing.T) {
	v := evalSource(t, `rec@b . rec = { a = 1, b = "x" }`)
	s, ok := v.(*ast.String)
	require.True(t, ok)
	assert.Equal(t, "x", s.Value)
}

func TestEvaluator_ListAccess(t *testing.T) {
	v := evalSource(t, "[10, 20, 30] @ 1")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(20), i.Value)
}

func TestEvaluator_ListAccessOutOfBounds(t *testing.T) {
	tree, err := parser.Parse("[1] @ 5")
	require.NoError(t, err)
	_, err = New().Eval(ast.Empty(), tree)
	require.Error(t, err)
}

func TestEvaluator_Recursion(t *testing.T) {
	v := evalSource(t, "fact 5 . fact = | 0 -> 1 | n -> n * fact (n-1)")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(120), i.Value)
}

func TestEvaluator_MatchFunctionListSpread(t *testing.T) {
	v := evalSource(t, "(| [x, ...xs] -> xs) [1, 2, 3]")
	l, ok := v.(*ast.List)
	require.True(t, ok)
	require.Len(t, l.Items, 2)
	assert.Equal(t, big.NewInt(2), l.Items[0].(*ast.Int).Value)
	assert.Equal(t, big.NewInt(3), l.Items[1].(*ast.Int).Value)
}

func TestEvaluator_MatchFunctionExhaustionRaisesMatchError(t *testing.T) {
	tree, err := parser.Parse("(| 1 -> 2) 99")
	require.NoError(t, err)
	_, err = New().Eval(ast.Empty(), tree)
	require.Error(t, err)
}

func TestEvaluator_AssertionFailure(t *testing.T) {
	tree, err := parser.Parse("1 ? #false ()")
	require.NoError(t, err)
	_, err = New().Eval(ast.Empty(), tree)
	require.Error(t, err)
}

func TestEvaluator_AssertionSuccess(t *testing.T) {
	v := evalSource(t, "1 ? #true ()")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), i.Value)
}

func TestEvaluator_UnboundNameRaisesNameError(t *testing.T) {
	tree, err := parser.Parse("nope")
	require.NoError(t, err)
	_, err = New().Eval(ast.Empty(), tree)
	require.Error(t, err)
}

func TestEvaluator_ClosureMinimization(t *testing.T) {
	tree, err := parser.Parse("f . f = x -> x + unused . unused = 1")
	require.NoError(t, err)
	env := ast.Empty().Extend("noise", ast.IntFromInt64(999))
	v, err := New().Eval(env, tree)
	require.NoError(t, err)
	closure, ok := v.(*ast.Closure)
	require.True(t, ok)
	_, hasNoise := closure.Env.Get("noise")
	assert.False(t, hasNoise, "minimized closure must not retain unrelated bindings")
}

func TestEvaluator_QuoteReturnsUnevaluated(t *testing.T) {
	v := evalSource(t, "$$quote (1 + 2)")
	b, ok := v.(*ast.Binop)
	require.True(t, ok)
	assert.Equal(t, ast.ADD, b.Op)
}

func TestEvaluator_RecordSpreadMatch(t *testing.T) {
	v := evalSource(t, `filter_x {x=1, y=2} . filter_x = | { x=x, ...xs } -> xs`)
	rec, ok := v.(*ast.Record)
	require.True(t, ok)
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "y", rec.Fields[0].Name)
}

func TestEvaluator_EqualityIsStructural(t *testing.T) {
	v := evalSource(t, "[1, 2] == [1, 2]")
	b, ok := ast.IsBool(v)
	require.True(t, ok)
	assert.True(t, b)
}
