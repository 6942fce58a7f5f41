package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/eval"
	"github.com/scrapscript/scrapscript-go/parser"
)

func run(t *testing.T, env *ast.Env, src string) ast.Expr {
	t.Helper()
	tree, err := parser.Parse(src)
	require.NoError(t, err)
	v, err := eval.New().Eval(env, tree)
	require.NoError(t, err)
	return v
}

func TestBoot_SeedsPreludeNames(t *testing.T) {
	env, err := Boot()
	require.NoError(t, err)
	for _, name := range []string{"id", "quicksort", "filter", "concat", "map", "range", "foldr", "take", "all", "any"} {
		_, ok := env.Get(name)
		assert.Truef(t, ok, "expected prelude to bind %q", name)
	}
}

func TestBoot_Quicksort(t *testing.T) {
	env, err := Boot()
	require.NoError(t, err)
	v := run(t, env, "quicksort [2, 6, 3, 7, 1, 8]")
	l, ok := v.(*ast.List)
	require.True(t, ok)
	want := []int64{1, 2, 3, 6, 7, 8}
	require.Len(t, l.Items, len(want))
	for i, w := range want {
		assert.Equal(t, big.NewInt(w), l.Items[i].(*ast.Int).Value)
	}
}

func TestBoot_MapFilterFoldrRangeTakeAllAny(t *testing.T) {
	env, err := Boot()
	require.NoError(t, err)

	v := run(t, env, "map (x -> x * 2) [1, 2, 3]")
	l := v.(*ast.List)
	assert.Equal(t, big.NewInt(2), l.Items[0].(*ast.Int).Value)
	assert.Equal(t, big.NewInt(6), l.Items[2].(*ast.Int).Value)

	v = run(t, env, "filter (x -> x > 2) [1, 2, 3, 4]")
	l = v.(*ast.List)
	require.Len(t, l.Items, 2)

	v = run(t, env, "foldr (x -> a -> x + a) 0 [1, 2, 3]")
	i := v.(*ast.Int)
	assert.Equal(t, big.NewInt(6), i.Value)

	v = run(t, env, "range 4")
	l = v.(*ast.List)
	require.Len(t, l.Items, 4)
	assert.Equal(t, big.NewInt(0), l.Items[0].(*ast.Int).Value)
	assert.Equal(t, big.NewInt(3), l.Items[3].(*ast.Int).Value)

	v = run(t, env, "take 2 [1, 2, 3]")
	l = v.(*ast.List)
	require.Len(t, l.Items, 2)

	v = run(t, env, "all (x -> x > 0) [1, 2, 3]")
	b, ok := ast.IsBool(v)
	require.True(t, ok)
	assert.True(t, b)

	v = run(t, env, "any (x -> x > 2) [1, 2]")
	b, ok = ast.IsBool(v)
	require.True(t, ok)
	assert.False(t, b)
}

func TestStdlib_Add(t *testing.T) {
	v := run(t, Stdlib(), "$$add 3 4")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(7), i.Value)
}

func TestStdlib_ListLength(t *testing.T) {
	v := run(t, Stdlib(), "$$listlength [1, 2, 3]")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(3), i.Value)

	v = run(t, Stdlib(), "$$listlength []")
	i, ok = v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(0), i.Value)
}

func TestStdlib_ListLengthTypeError(t *testing.T) {
	tree, err := parser.Parse("$$listlength 1")
	require.NoError(t, err)
	_, err = eval.New().Eval(Stdlib(), tree)
	require.Error(t, err)
}

func TestStdlib_SerializeDeserializeRoundTrip(t *testing.T) {
	v := run(t, Stdlib(), "$$deserialize ($$serialize (1 + 2))")
	i, ok := v.(*ast.Int)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(3), i.Value)
}

func TestStdlib_QuoteThenSerialize(t *testing.T) {
	v := run(t, Stdlib(), "$$deserialize (1 + 2 |> $$quote |> $$serialize)")
	b, ok := v.(*ast.Binop)
	require.True(t, ok)
	assert.Equal(t, ast.ADD, b.Op)
	assert.Equal(t, big.NewInt(1), b.Left.(*ast.Int).Value)
	assert.Equal(t, big.NewInt(2), b.Right.(*ast.Int).Value)
}

func TestStdlib_JsonDecode(t *testing.T) {
	v := run(t, Stdlib(), `$$jsondecode "[1, 2, 3]"`)
	l, ok := v.(*ast.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)
	assert.Equal(t, 1.0, l.Items[0].(*ast.Float).Value)
}

func TestStdlib_JsonDecodeTypeError(t *testing.T) {
	tree, err := parser.Parse("$$jsondecode 1")
	require.NoError(t, err)
	_, err = eval.New().Eval(Stdlib(), tree)
	require.Error(t, err)
}
