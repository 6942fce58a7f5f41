package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapscript/scrapscript-go/parser"
)

func inferSource(t *testing.T, src string) MonoType {
	t.Helper()
	ResetFreshVarCounter()
	tree, err := parser.Parse(src)
	require.NoError(t, err)
	ty, err := Infer(tree, DefaultOperatorContext(), nil)
	require.NoError(t, err)
	return Minimize(ty)
}

func TestInfer_IdentityFunction(t *testing.T) {
	ty := inferSource(t, "x -> x")
	assert.Equal(t, "('a->'a)", ty.String())
}

func TestInfer_ListMatchFunctionTail(t *testing.T) {
	ty := inferSource(t, "| [x, ...xs] -> xs")
	assert.Equal(t, "(('a list)->('a list))", ty.String())
}

func TestInfer_DivisionThenAddFailsToUnifyWithInt(t *testing.T) {
	ResetFreshVarCounter()
	tree, err := parser.Parse("1 / 2 + 3")
	require.NoError(t, err)
	_, err = Infer(tree, DefaultOperatorContext(), nil)
	assert.Error(t, err)
}

func TestInfer_RecordSpreadNarrowsToRemainingFields(t *testing.T) {
	ty := inferSource(t, "filter_x {x=1, y=2} . filter_x = | {x=x, ...xs} -> xs")
	row, ok := ty.(*TyRow)
	require.True(t, ok, "expected a record type, got %T (%s)", ty, ty)
	flat, rest := RowFlatten(row)
	assert.Contains(t, flat, "y")
	assert.NotContains(t, flat, "x")
	_, restIsEmpty := rest.(TyEmptyRow)
	assert.True(t, restIsEmpty, "expected the remaining row to be closed, got %s", rest)
}

func TestUnify_ReflexiveSucceeds(t *testing.T) {
	ResetFreshVarCounter()
	tv := FreshTyVar("t")
	assert.NoError(t, Unify(tv, tv))
	assert.NoError(t, Unify(IntType, IntType))
}

func TestUnify_OccursCheckRejectsInfiniteType(t *testing.T) {
	ResetFreshVarCounter()
	tv := FreshTyVar("t")
	err := Unify(tv, ListType(tv))
	assert.Error(t, err)
}

func TestUnify_MismatchedConstructorsFail(t *testing.T) {
	assert.Error(t, Unify(IntType, StringType))
}

func TestGeneralize_QuantifiesOnlyFreeVarsNotInContext(t *testing.T) {
	ResetFreshVarCounter()
	a := FreshTyVar("t")
	b := FreshTyVar("t")
	ctx := Context{"bound": Forall{Ty: a}}
	scheme := Generalize(FuncType(a, b), ctx)
	require.Len(t, scheme.TyVars, 1)
	assert.Equal(t, b.Name, scheme.TyVars[0].Name)
}

func TestMinimize_RenamesFreeVarsAlphabetically(t *testing.T) {
	ResetFreshVarCounter()
	x := FreshTyVar("t")
	y := FreshTyVar("t")
	ty := Minimize(FuncType(x, y, x))
	assert.Equal(t, "('a->('b->'a))", ty.String())
}

func TestRowFlatten_StopsAtOpenTail(t *testing.T) {
	rest := FreshTyVar("r")
	row := &TyRow{Fields: map[string]MonoType{"x": IntType}, Rest: rest}
	flat, tail := RowFlatten(row)
	assert.Equal(t, IntType, flat["x"])
	assert.Same(t, rest, tail)
}
