package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"implish/loader"
	"implish/value"
)

func loadTop(t *testing.T, src string) *value.Top {
	t.Helper()
	l := loader.New(value.NewSymTable())
	require.NoError(t, l.Send(src))
	require.True(t, l.Ready())
	v, err := l.Read()
	require.NoError(t, err)
	return v.(*value.Top)
}

func TestStrandFormation_Ints(t *testing.T) {
	top := loadTop(t, "1 2 3\n")
	out := Parse(top, Options{}).(*value.Top)
	require.Len(t, out.Items, 2) // Ints + trailing Sep
	ints, ok := out.Items[0].(*value.Ints)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, ints.Vs)
}

func TestStrandFormation_PromotesToNums(t *testing.T) {
	top := loadTop(t, "1 2.5 3\n")
	out := Parse(top, Options{}).(*value.Top)
	nums, ok := out.Items[0].(*value.Nums)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2.5, 3}, nums.Vs)
}

func TestStrandFormation_SingleScalarStaysScalar(t *testing.T) {
	top := loadTop(t, "42\n")
	out := Parse(top, Options{}).(*value.Top)
	assert.IsType(t, &value.Int{}, out.Items[0])
}

func TestStrandFormation_NeverCrossesSep(t *testing.T) {
	top := loadTop(t, "1 2; 3 4\n")
	out := Parse(top, Options{}).(*value.Top)
	// Ints(1,2), Sep, Ints(3,4), Sep
	require.Len(t, out.Items, 4)
	assert.Equal(t, []int64{1, 2}, out.Items[0].(*value.Ints).Vs)
	assert.IsType(t, &value.Sep{}, out.Items[1])
	assert.Equal(t, []int64{3, 4}, out.Items[2].(*value.Ints).Vs)
}

func TestStrandFormation_BQTSymbols(t *testing.T) {
	top := loadTop(t, "`a `b `c\n")
	out := Parse(top, Options{}).(*value.Top)
	syms, ok := out.Items[0].(*value.Syms)
	require.True(t, ok)
	require.Len(t, syms.Vs, 3)
	assert.Equal(t, "a", syms.Vs[0].Name())
	assert.Equal(t, "c", syms.Vs[2].Name())
}

func TestStrandFormation_RecursesIntoNestedLst(t *testing.T) {
	top := loadTop(t, "[1 2 3]\n")
	out := Parse(top, Options{}).(*value.Top)
	lst := out.Items[0].(*value.Lst)
	require.Len(t, lst.Items, 1)
	assert.IsType(t, &value.Ints{}, lst.Items[0])
}

func TestStrandFormation_Idempotent(t *testing.T) {
	top := loadTop(t, "1 2 3 `a `b\n")
	once := Parse(top, Options{})
	twice := Parse(once, Options{})
	if diff := cmp.Diff(once, twice, cmp.AllowUnexported(value.Handle{})); diff != "" {
		t.Fatalf("strand formation not idempotent:\n%s", diff)
	}
}

func TestMExpression_DisabledByDefault(t *testing.T) {
	top := loadTop(t, "2 plus 3\n")
	out := Parse(top, Options{}).(*value.Top)
	// unchanged: Int, Sym, Int, Sep
	require.Len(t, out.Items, 4)
	assert.IsType(t, &value.Int{}, out.Items[0])
	assert.IsType(t, &value.Sym{}, out.Items[1])
}

func TestMExpression_InfixLowering(t *testing.T) {
	top := loadTop(t, "2 plus 3\n")
	out := Parse(top, Options{MExpression: true}).(*value.Top)
	lst, ok := out.Items[0].(*value.Lst)
	require.True(t, ok, "expected a or b projection list, got %T", out.Items[0])
	assert.Equal(t, "plus[", lst.Open)
	require.Len(t, lst.Items, 3)
	assert.Equal(t, int64(2), lst.Items[0].(*value.Int).V)
	assert.Equal(t, int64(3), lst.Items[2].(*value.Int).V)
}

func TestMExpression_SkippedWhenCommaPresent(t *testing.T) {
	top := loadTop(t, "2 plus 3, wait\n")
	out := Parse(top, Options{MExpression: true}).(*value.Top)
	assert.IsType(t, &value.Int{}, out.Items[0])
}
