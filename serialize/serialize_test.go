package serialize

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"implish/loader"
	"implish/parser"
	"implish/value"
)

func parseSrc(t *testing.T, src string) value.Value {
	t.Helper()
	l := loader.New(value.NewSymTable())
	require.NoError(t, l.Send(src))
	require.True(t, l.Ready())
	top, err := l.Read()
	require.NoError(t, err)
	return parser.Parse(top, parser.Options{})
}

func TestShow_Scalars(t *testing.T) {
	assert.Equal(t, "42", Show(&value.Int{V: 42}))
	assert.Equal(t, "3.5", Show(&value.Num{V: 3.5}))
	assert.Equal(t, `"hi"`, Show(&value.Str{V: "hi"}))
	assert.Equal(t, "nil", Show(&value.Nil{}))
	assert.Equal(t, "?bad", Show(&value.Err{Message: "bad"}))
}

func TestShow_SymbolRestoresSigil(t *testing.T) {
	tbl := value.NewSymTable()
	assert.Equal(t, "foo:", Show(&value.Sym{Handle: tbl.Intern("foo"), Variant: value.SymSET}))
	assert.Equal(t, "%path", Show(&value.Sym{Handle: tbl.Intern("path"), Variant: value.SymFILE}))
	assert.Equal(t, "`foo", Show(&value.Sym{Handle: tbl.Intern("foo"), Variant: value.SymBQT}))
	assert.Equal(t, "foo!", Show(&value.Sym{Handle: tbl.Intern("foo"), Variant: value.SymTYP}))
}

func TestShow_VectorsSpaceJoined(t *testing.T) {
	assert.Equal(t, "1 2 3", Show(&value.Ints{Vs: []int64{1, 2, 3}}))
}

func TestShow_LstRoundTripsSource(t *testing.T) {
	top := parseSrc(t, "[1 2; \"three\"]\n")
	out := Show(top)
	assert.Contains(t, out, "[1 2")
	assert.Contains(t, out, `"three"]`)
}

func TestXML_MatchesSnapshot(t *testing.T) {
	top := parseSrc(t, `[1 2; "three"; four]` + "\n")
	lst := top.(*value.Top).Items[0]
	snaps.MatchSnapshot(t, XML(lst))
}

func TestXML_ScalarTags(t *testing.T) {
	assert.Equal(t, `<imp:int v="1"/>`, XML(&value.Int{V: 1}))
	assert.Equal(t, `<imp:str v="three"/>`, XML(&value.Str{V: "three"}))
	assert.Equal(t, `<imp:sep v=";"/>`, XML(&value.Sep{Ch: ';'}))
}
