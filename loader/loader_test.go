// ==============================================================================================
// FILE: loader/loader_test.go
// PURPOSE: Validates that the loader correctly tokenizes and tree-builds
//          source text, honors the incremental send/read protocol, and
//          reports the failure modes from spec.md §4.2.4.
// ==============================================================================================

package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"implish/value"
)

func readOne(t *testing.T, src string) value.Value {
	t.Helper()
	l := New(value.NewSymTable())
	require.NoError(t, l.Send(src))
	require.True(t, l.Ready(), "loader should be ready after a balanced, newline-terminated send")
	v, err := l.Read()
	require.NoError(t, err)
	return v
}

func TestReady_BalancedInput(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send("x: 1 2 3\n"))
	assert.True(t, l.Ready())
}

func TestReady_UnbalancedOpener(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send("[1 2 3\n"))
	assert.False(t, l.Ready(), "an unclosed '[' must not be ready")
}

func TestLoader_ScalarStrand(t *testing.T) {
	top := readOne(t, "1 2 3\n").(*value.Top)
	require.Len(t, top.Items, 4) // 1 2 3 + trailing sep
	assert.IsType(t, &value.Int{}, top.Items[0])
	assert.Equal(t, int64(1), top.Items[0].(*value.Int).V)
}

func TestLoader_BracketGroup(t *testing.T) {
	top := readOne(t, "[1; 2]\n").(*value.Top)
	lst, ok := top.Items[0].(*value.Lst)
	require.True(t, ok)
	assert.Equal(t, "[", lst.Open)
	assert.Equal(t, "]", lst.Close)
	require.Len(t, lst.Items, 3)
	assert.Equal(t, int64(1), lst.Items[0].(*value.Int).V)
	assert.IsType(t, &value.Sep{}, lst.Items[1])
	assert.Equal(t, int64(2), lst.Items[2].(*value.Int).V)
}

func TestLoader_ProjectionOpenerKeepsNamePrefix(t *testing.T) {
	top := readOne(t, "echo[1]\n").(*value.Top)
	lst := top.Items[0].(*value.Lst)
	assert.Equal(t, "echo[", lst.Open)
}

func TestLoader_CommentDiscarded(t *testing.T) {
	top := readOne(t, `.: a note :. "hi"` + "\n").(*value.Top)
	require.Len(t, top.Items, 2) // STR + trailing sep
	assert.Equal(t, "hi", top.Items[0].(*value.Str).V)
}

func TestLoader_SymbolVariants(t *testing.T) {
	tests := []struct {
		src     string
		variant value.SymT
		name    string
	}{
		{"foo:", value.SymSET, "foo"},
		{":foo", value.SymGET, "foo"},
		{"'foo", value.SymLIT, "foo"},
		{"`foo", value.SymBQT, "foo"},
		{"%path", value.SymFILE, "path"},
		{"/refine", value.SymREFN, "refine"},
		{"#issue", value.SymISH, "issue"},
		{"foo!", value.SymTYP, "foo"},
		{"@note", value.SymANN, "note"},
		{".msg", value.SymMSG, "msg"},
		{".msg:", value.SymKW, "msg"},
		{"!msg", value.SymMSG2, "msg"},
		{"!msg:", value.SymKW2, "msg"},
		{"?err", value.SymERR, "err"},
		{",unq", value.SymUNQ, "unq"},
		{"a/b/c", value.SymPATH, "a/b/c"},
		{"plain", value.SymRAW, "plain"},
	}
	for _, tt := range tests {
		top := readOne(t, tt.src+"\n").(*value.Top)
		sym := top.Items[0].(*value.Sym)
		assert.Equal(t, tt.variant, sym.Variant, "for %q", tt.src)
		assert.Equal(t, tt.name, sym.Name(), "for %q", tt.src)
	}
}

func TestLoader_BareSigilCharsAreRawWords(t *testing.T) {
	tests := []struct {
		src  string
		name string
	}{
		{"!", "!"},
		{"%", "%"},
		{"?", "?"},
		{"/", "/"},
	}
	for _, tt := range tests {
		top := readOne(t, tt.src+"\n").(*value.Top)
		sym := top.Items[0].(*value.Sym)
		assert.Equal(t, value.SymRAW, sym.Variant, "for %q", tt.src)
		assert.Equal(t, tt.name, sym.Name(), "for %q", tt.src)
	}
}

func TestLoader_URLIsNotSplitOnColon(t *testing.T) {
	top := readOne(t, "https://example.com/a\n").(*value.Top)
	sym := top.Items[0].(*value.Sym)
	assert.Equal(t, value.SymURL, sym.Variant)
	assert.Equal(t, "https://example.com/a", sym.Name())
}

func TestLoader_CommaIsSeparatorAlone(t *testing.T) {
	top := readOne(t, "x, double\n").(*value.Top)
	require.Len(t, top.Items, 4) // x , double \n
	assert.IsType(t, &value.Sep{}, top.Items[1])
	assert.Equal(t, byte(','), top.Items[1].(*value.Sep).Ch)
}

func TestLoader_UnmatchedCloser(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send("]\n"))
	require.True(t, l.Ready())
	v, err := l.Read()
	require.Error(t, err)
	assert.IsType(t, &value.Err{}, v)
}

func TestLoader_MismatchedCloser(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send("[1)\n"))
	v, err := l.Read()
	// the ')' does not close '[' so the group never closes: not ready
	require.Error(t, err)
	assert.IsType(t, &value.Err{}, v)
}

func TestLoader_IncrementalSend(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send("[1; "))
	assert.False(t, l.Ready())
	require.NoError(t, l.Send("2]\n"))
	assert.True(t, l.Ready())
	v, err := l.Read()
	require.NoError(t, err)
	top := v.(*value.Top)
	lst := top.Items[0].(*value.Lst)
	require.Len(t, lst.Items, 3)
}

func TestLoader_FinalizeResolvesUnterminatedString(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Send(`"unterminated`))
	assert.False(t, l.Ready())
	l.Finalize()
	assert.True(t, l.Ready())
	_, err := l.Read()
	require.Error(t, err)
}

func TestLoader_StringEscapes(t *testing.T) {
	top := readOne(t, `"a\nb\t\"c\""`+"\n").(*value.Top)
	assert.Equal(t, "a\nb\t\"c\"", top.Items[0].(*value.Str).V)
}
