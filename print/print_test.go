package print

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrapscript/scrapscript-go/ast"
)

func TestPrint_Int(t *testing.T) {
	assert.Equal(t, "1", Print(ast.IntFromInt64(1)))
}

func TestPrint_Float(t *testing.T) {
	assert.Equal(t, "3.14", Print(&ast.Float{Value: 3.14}))
}

func TestPrint_String(t *testing.T) {
	assert.Equal(t, `"hello"`, Print(&ast.String{Value: "hello"}))
}

func TestPrint_Bytes(t *testing.T) {
	assert.Equal(t, "~~YWJj", Print(&ast.Bytes{Value: []byte("abc")}))
}

func TestPrint_Var(t *testing.T) {
	assert.Equal(t, "ref", Print(&ast.Var{Name: "ref"}))
}

func TestPrint_Hole(t *testing.T) {
	assert.Equal(t, "()", Print(&ast.Hole{}))
}

func TestPrint_Spread(t *testing.T) {
	assert.Equal(t, "...", Print(&ast.Spread{}))
	assert.Equal(t, "...rest", Print(&ast.Spread{Name: "rest", Named: true}))
}

func TestPrint_Binop(t *testing.T) {
	assert.Equal(t, "1 + 2", Print(&ast.Binop{Op: ast.ADD, Left: ast.IntFromInt64(1), Right: ast.IntFromInt64(2)}))
}

func TestPrint_BinopPrecedence(t *testing.T) {
	add := &ast.Binop{Op: ast.ADD, Left: ast.IntFromInt64(1), Right: &ast.Binop{Op: ast.MUL, Left: ast.IntFromInt64(2), Right: ast.IntFromInt64(3)}}
	assert.Equal(t, "1 + 2 * 3", Print(add))

	mul := &ast.Binop{Op: ast.MUL, Left: &ast.Binop{Op: ast.ADD, Left: ast.IntFromInt64(1), Right: ast.IntFromInt64(2)}, Right: ast.IntFromInt64(3)}
	assert.Equal(t, "(1 + 2) * 3", Print(mul))
}

func TestPrint_IntList(t *testing.T) {
	list := &ast.List{Items: []ast.Expr{ast.IntFromInt64(1), ast.IntFromInt64(2), ast.IntFromInt64(3)}}
	assert.Equal(t, "[1, 2, 3]", Print(list))
}

func TestPrint_RecursiveListRendersEllipsis(t *testing.T) {
	list := &ast.List{}
	list.Items = append(list.Items, list)
	assert.Equal(t, "[...]", Print(list))
}

func TestPrint_Assign(t *testing.T) {
	assign := &ast.Assign{Name: &ast.Var{Name: "x"}, Value: ast.IntFromInt64(3)}
	assert.Equal(t, "x = 3", Print(assign))
}

func TestPrint_Function(t *testing.T) {
	fn := &ast.Function{Arg: &ast.Var{Name: "x"}, Body: &ast.Binop{Op: ast.ADD, Left: ast.IntFromInt64(1), Right: &ast.Var{Name: "x"}}}
	assert.Equal(t, "x -> 1 + x", Print(fn))
}

func TestPrint_NestedFunction(t *testing.T) {
	fn := &ast.Function{
		Arg: &ast.Var{Name: "x"},
		Body: &ast.Function{
			Arg:  &ast.Var{Name: "y"},
			Body: &ast.Binop{Op: ast.ADD, Left: &ast.Var{Name: "x"}, Right: &ast.Var{Name: "y"}},
		},
	}
	assert.Equal(t, "x -> y -> x + y", Print(fn))
}

func TestPrint_Apply(t *testing.T) {
	apply := &ast.Apply{Func: &ast.Var{Name: "x"}, Arg: &ast.Var{Name: "y"}}
	assert.Equal(t, "x y", Print(apply))
}

func TestPrint_Where(t *testing.T) {
	where := &ast.Where{
		Body:    &ast.Binop{Op: ast.ADD, Left: &ast.Var{Name: "a"}, Right: &ast.Var{Name: "b"}},
		Binding: &ast.Assign{Name: &ast.Var{Name: "a"}, Value: ast.IntFromInt64(1)},
	}
	assert.Equal(t, "a + b . a = 1", Print(where))
}

func TestPrint_Assert(t *testing.T) {
	assertNode := &ast.Assert{Value: ast.IntFromInt64(123), Cond: &ast.Variant{Tag: "true", Value: &ast.String{Value: "foo"}}}
	assert.Equal(t, `123 ? #true "foo"`, Print(assertNode))
}

func TestPrint_MatchFunction(t *testing.T) {
	mf := &ast.MatchFunction{Cases: []ast.MatchCase{{Pattern: &ast.Var{Name: "y"}, Body: &ast.Var{Name: "x"}}}}
	assert.Equal(t, "| y -> x", Print(mf))
}

func TestPrint_MatchFunctionPrecedence(t *testing.T) {
	mf := &ast.MatchFunction{Cases: []ast.MatchCase{
		{Pattern: &ast.Var{Name: "a"}, Body: &ast.MatchFunction{Cases: []ast.MatchCase{{Pattern: &ast.Var{Name: "b"}, Body: &ast.Var{Name: "c"}}}}},
		{Pattern: &ast.Var{Name: "x"}, Body: &ast.MatchFunction{Cases: []ast.MatchCase{{Pattern: &ast.Var{Name: "y"}, Body: &ast.Var{Name: "z"}}}}},
	}}
	assert.Equal(t, "| a -> (| b -> c)\n| x -> (| y -> z)", Print(mf))
}

func TestPrint_NativeFunction(t *testing.T) {
	nf := &ast.NativeFunction{Name: "times2"}
	assert.Equal(t, "NativeFunction(name=times2)", Print(nf))
}

func TestPrint_Closure(t *testing.T) {
	env := ast.Empty().Extend("a", ast.IntFromInt64(123))
	closure := &ast.Closure{Env: env, Func: &ast.Function{Arg: &ast.Var{Name: "x"}, Body: &ast.Var{Name: "x"}}}
	assert.Equal(t, `Closure(["a"], x -> x)`, Print(closure))
}

func TestPrint_Record(t *testing.T) {
	record := &ast.Record{Fields: []ast.RecordField{{Name: "a", Value: ast.IntFromInt64(1)}, {Name: "b", Value: ast.IntFromInt64(2)}}}
	assert.Equal(t, "{a = 1, b = 2}", Print(record))
}

func TestPrint_Access(t *testing.T) {
	access := &ast.Access{Object: &ast.Record{Fields: []ast.RecordField{{Name: "a", Value: ast.IntFromInt64(4)}}}, Accessor: &ast.Var{Name: "a"}}
	assert.Equal(t, "{a = 4} @ a", Print(access))
}

func TestPrint_Variant(t *testing.T) {
	assert.Equal(t, "#x 123", Print(&ast.Variant{Tag: "x", Value: ast.IntFromInt64(123)}))

	fn := &ast.Variant{Tag: "x", Value: &ast.Function{Arg: &ast.Var{Name: "a"}, Body: &ast.Var{Name: "b"}}}
	assert.Equal(t, "#x (a -> b)", Print(fn))
}
