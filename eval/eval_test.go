package eval

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"implish/loader"
	"implish/value"
)

type captureOut struct{ lines []string }

func (c *captureOut) WriteLine(_ context.Context, text string) error {
	c.lines = append(c.lines, text)
	return nil
}

func newEvalTest(t *testing.T) (*Evaluator, *captureOut) {
	t.Helper()
	ev := New(value.NewSymTable())
	out := &captureOut{}
	ev.Out = out
	return ev, out
}

func run(t *testing.T, ev *Evaluator, src string) value.Value {
	t.Helper()
	l := loader.New(ev.Sym)
	require.NoError(t, l.Send(src))
	l.Finalize()
	top, err := l.Read()
	require.NoError(t, err)
	res, err := ev.Eval(context.Background(), top)
	require.NoError(t, err)
	return res
}

func runErr(t *testing.T, ev *Evaluator, src string) error {
	t.Helper()
	l := loader.New(ev.Sym)
	require.NoError(t, l.Send(src))
	l.Finalize()
	top, err := l.Read()
	require.NoError(t, err)
	_, err = ev.Eval(context.Background(), top)
	return err
}

// End-to-end scenarios, literal from spec.md §8.

func TestScenario_EchoString(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `echo "hello"`+"\n")
	assert.Equal(t, []string{"hello"}, out.lines)
}

func TestScenario_EchoArithmetic(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "echo 2 + 2\n")
	assert.Equal(t, []string{"4"}, out.lines)
}

func TestScenario_NoPrecedenceLeftAssociative(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "echo 1 + 2 * 3 + 5\n")
	assert.Equal(t, []string{"14"}, out.lines)
}

func TestScenario_CommentDiscarded(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `echo .: note :. "hi"`+"\n")
	assert.Equal(t, []string{"hi"}, out.lines)
}

func TestScenario_ShowQuotesString(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `echo show "quoted"`+"\n")
	assert.Equal(t, []string{`"quoted"`}, out.lines)
}

func TestScenario_ProjectionApplication(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "echo[+[2;3]]\n")
	assert.Equal(t, []string{"5"}, out.lines)
}

func TestScenario_StrandAssignment(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "x: 1 2 3\necho x\n")
	assert.Equal(t, []string{"1 2 3"}, out.lines)
}

func TestScenario_RangeBroadcast(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "echo 1 + ! 4\n")
	assert.Equal(t, []string{"1 2 3 4"}, out.lines)
}

func TestScenario_ChainedAssignment(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "a: b: 7\necho a + b\n")
	assert.Equal(t, []string{"14"}, out.lines)
}

func TestScenario_XMLSerialization(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `echo xmls [1 2; "three"; four]`+"\n")
	require.Len(t, out.lines, 1)
	xmlOut := out.lines[0]
	assert.Contains(t, xmlOut, `<imp:lst open="[" close="]">`)
	assert.Contains(t, xmlOut, `<imp:int v="1"/>`)
	assert.Contains(t, xmlOut, `<imp:int v="2"/>`)
	assert.Contains(t, xmlOut, `<imp:sep v=";"/>`)
	assert.Contains(t, xmlOut, `<imp:str v="three"/>`)
	assert.Contains(t, xmlOut, `<imp:sym v="four"/>`)
}

// Quantified invariants.

func TestInvariant_JSFArityPlusCaptured(t *testing.T) {
	ev, _ := newEvalTest(t)
	run(t, ev, "add: {x + y}\nf: add[7]\n")
	f, ok := ev.Words["f"].(*value.Jsf)
	require.True(t, ok)
	assert.Equal(t, 2, f.Arity+len(f.CapturedArgs))
}

func TestInvariant_IfnRestoresXYZ(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "x: 100\nf: {x + 1}\ny: f[5]\necho x\n")
	assert.Equal(t, []string{"100"}, out.lines)
	y, ok := ev.Words["y"].(*value.Int)
	require.True(t, ok)
	assert.Equal(t, int64(6), y.V)
}

func TestInvariant_FoldMatchesScanLastElement(t *testing.T) {
	ev, _ := newEvalTest(t)
	v := &value.Ints{Vs: []int64{1, 2, 3, 4}}
	folded, err := ev.fold(context.Background(), "+", v)
	require.NoError(t, err)
	scanned, err := ev.scan(context.Background(), "+", v)
	require.NoError(t, err)
	scannedVec := scanned.(*value.Ints)
	assert.Equal(t, folded.(*value.Int).V, scannedVec.Vs[len(scannedVec.Vs)-1])
}

func TestInvariant_LenMatchesRevLen(t *testing.T) {
	ev, _ := newEvalTest(t)
	v := run(t, ev, `x: 1 2 3 4 5` + "\n" + `len x` + "\n")
	_ = v
	forward := lengthOf(ev.Words["x"])
	backward := lengthOf(reverseValue(ev.Words["x"]))
	assert.Equal(t, forward, backward)
}

// Boundaries.

func TestBoundary_BangZero(t *testing.T) {
	ev, _ := newEvalTest(t)
	res := run(t, ev, "! 0\n")
	nums, ok := res.(*value.Nums)
	require.True(t, ok)
	assert.Empty(t, nums.Vs)
}

func TestBoundary_EmptyFoldIdentities(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "echo +/ ()\n")
	run(t, ev, "echo */ ()\n")
	run(t, ev, "echo min/ ()\n")
	require.Len(t, out.lines, 3)
	assert.Equal(t, "0", out.lines[0])
	assert.Equal(t, "1", out.lines[1])
	assert.Equal(t, strconv.FormatFloat(math.Inf(1), 'g', -1, 64), out.lines[2])
}

func TestBoundary_SetWithNoRHS(t *testing.T) {
	ev, _ := newEvalTest(t)
	err := runErr(t, ev, "x:\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid expression after set-word")
}

// Control flow specials.

func TestIte_PicksThenBranch(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `ite[1; (echo "yes"); (echo "no")]`+"\n")
	assert.Equal(t, []string{"yes"}, out.lines)
}

func TestIte_PicksElseBranch(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, `ite[0; (echo "yes"); (echo "no")]`+"\n")
	assert.Equal(t, []string{"no"}, out.lines)
}

func TestWhile_LoopsUntilFalse(t *testing.T) {
	ev, out := newEvalTest(t)
	run(t, ev, "n: 3\nwhile[(n); (echo n, n: n - 1)]\n")
	assert.Equal(t, []string{"3", "2", "1"}, out.lines)
}
