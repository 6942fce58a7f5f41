package serial_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/parser"
	"github.com/scrapscript/scrapscript-go/serial"
)

func roundTrip(t *testing.T, obj ast.Expr) ast.Expr {
	t.Helper()
	encoded := serial.Serialize(obj)
	decoded, err := serial.Deserialize(encoded)
	require.NoError(t, err)
	return decoded
}

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func assertRoundTrips(t *testing.T, src string) {
	t.Helper()
	tree, err := parser.Parse(src)
	require.NoError(t, err)
	decoded := roundTrip(t, tree)
	diff := cmp.Diff(tree, decoded, bigIntComparer, cmpopts.IgnoreFields(ast.Int{}, "Pos"),
		cmpopts.IgnoreFields(ast.Float{}, "Pos"), cmpopts.IgnoreFields(ast.String{}, "Pos"),
		cmpopts.IgnoreFields(ast.Bytes{}, "Pos"), cmpopts.IgnoreFields(ast.Hole{}, "Pos"),
		cmpopts.IgnoreFields(ast.Var{}, "Pos"), cmpopts.IgnoreFields(ast.Spread{}, "Pos"),
		cmpopts.IgnoreFields(ast.Variant{}, "Pos"), cmpopts.IgnoreFields(ast.Binop{}, "Pos"),
		cmpopts.IgnoreFields(ast.List{}, "Pos"), cmpopts.IgnoreFields(ast.Record{}, "Pos"),
		cmpopts.IgnoreFields(ast.Assign{}, "Pos"), cmpopts.IgnoreFields(ast.Function{}, "Pos"),
		cmpopts.IgnoreFields(ast.MatchFunction{}, "Pos"), cmpopts.IgnoreFields(ast.Apply{}, "Pos"),
		cmpopts.IgnoreFields(ast.Where{}, "Pos"), cmpopts.IgnoreFields(ast.Access{}, "Pos"))
	assert.Empty(t, diff)
}

func TestRoundTrip_SmallInt(t *testing.T) {
	assertRoundTrips(t, "42")
}

func TestRoundTrip_NegativeInt(t *testing.T) {
	assertRoundTrips(t, "-7")
}

func TestRoundTrip_BigInt(t *testing.T) {
	assertRoundTrips(t, "123456789012345678901234567890")
}

func TestRoundTrip_Float(t *testing.T) {
	assertRoundTrips(t, "3.5")
}

func TestRoundTrip_String(t *testing.T) {
	assertRoundTrips(t, "\"hello world\"")
}

func TestRoundTrip_Hole(t *testing.T) {
	assertRoundTrips(t, "()")
}

func TestRoundTrip_List(t *testing.T) {
	assertRoundTrips(t, "[1, 2, 3]")
}

func TestRoundTrip_Record(t *testing.T) {
	assertRoundTrips(t, "{x = 1, y = 2}")
}

func TestRoundTrip_Variant(t *testing.T) {
	assertRoundTrips(t, "#cons 1")
}

func TestRoundTrip_Function(t *testing.T) {
	assertRoundTrips(t, "x -> x + 1")
}

func TestRoundTrip_MatchFunction(t *testing.T) {
	assertRoundTrips(t, "| 1 -> 2 | x -> x")
}

func TestRoundTrip_Where(t *testing.T) {
	assertRoundTrips(t, "x + 1 . x = 2")
}

func TestRoundTrip_Binop(t *testing.T) {
	assertRoundTrips(t, "1 + 2 * 3")
}

func TestRoundTrip_Access(t *testing.T) {
	assertRoundTrips(t, "{x = 1} @ x")
}

func TestRoundTrip_NestedListSharesNoSpuriousRefs(t *testing.T) {
	tree, err := parser.Parse("[[1, 2], [3, 4]]")
	require.NoError(t, err)
	decoded := roundTrip(t, tree)
	outer, ok := decoded.(*ast.List)
	require.True(t, ok)
	require.Len(t, outer.Items, 2)
	first, ok := outer.Items[0].(*ast.List)
	require.True(t, ok)
	second, ok := outer.Items[1].(*ast.List)
	require.True(t, ok)
	assert.NotSame(t, first, second)
}

func TestRoundTrip_SelfReferentialClosurePreservesIdentity(t *testing.T) {
	inner := &ast.Function{Arg: &ast.Var{Name: "n"}, Body: &ast.Var{Name: "n"}}
	closure := &ast.Closure{Env: ast.Empty(), Func: inner}
	closure.Env.SetSelf("self", closure)

	decoded := roundTrip(t, closure)
	decodedClosure, ok := decoded.(*ast.Closure)
	require.True(t, ok)
	self, ok := decodedClosure.Env.Get("self")
	require.True(t, ok)
	assert.Same(t, decodedClosure, self)
}

func TestRoundTrip_RefBackpointerSharesIdentity(t *testing.T) {
	shared := &ast.List{Items: []ast.Expr{ast.IntFromInt64(1)}}
	tree := &ast.List{Items: []ast.Expr{shared, shared}}

	decoded := roundTrip(t, tree)
	outer, ok := decoded.(*ast.List)
	require.True(t, ok)
	require.Len(t, outer.Items, 2)
	assert.Same(t, outer.Items[0], outer.Items[1])
}
