package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindTags(t *testing.T) {
	tests := []struct {
		v    Value
		kind Kind
	}{
		{&Top{}, KindTOP},
		{&Lst{}, KindLST},
		{&Sep{Ch: ';'}, KindSEP},
		{&Int{V: 10}, KindINT},
		{&Num{V: 3.14}, KindNUM},
		{&Str{V: "hi"}, KindSTR},
		{&Mls{V: "hi"}, KindMLS},
		{&Nil{}, KindNIL},
		{&Err{Message: "bad"}, KindERR},
		{&End{}, KindEND},
		{&Ints{Vs: []int64{1, 2}}, KindINTs},
		{&Nums{Vs: []float64{1, 2}}, KindNUMs},
		{&Syms{}, KindSYMs},
		{&Jsf{Arity: 2}, KindJSF},
		{&Ifn{Arity: 1}, KindIFN},
		{&Dct{M: map[string]Value{}}, KindDCT},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.v.Kind())
	}
}

func TestSymPartOfSpeech(t *testing.T) {
	tbl := NewSymTable()
	tests := []struct {
		variant SymT
		part    Part
	}{
		{SymSET, PartS},
		{SymGET, PartG},
		{SymLIT, PartQ},
		{SymBQT, PartQ},
		{SymMSG, PartM},
		{SymKW, PartM},
		{SymMSG2, PartM},
		{SymKW2, PartM},
		{SymRAW, PartN},
	}
	for _, tt := range tests {
		s := &Sym{Handle: tbl.Intern("x"), Variant: tt.variant}
		assert.Equal(t, tt.part, s.Part())
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(&Nil{}))
	assert.False(t, Truthy(&Int{V: 0}))
	assert.False(t, Truthy(&Num{V: 0}))
	assert.True(t, Truthy(&Int{V: 1}))
	assert.True(t, Truthy(&Str{V: ""}))
	assert.True(t, Truthy(&Num{V: 0.1}))
}

func TestSymTableInterning(t *testing.T) {
	tbl := NewSymTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	c := tbl.Intern("bar")

	assert.Same(t, a, b, "interning the same name twice must return the same handle")
	assert.NotSame(t, a, c)
	assert.Equal(t, "foo", a.Name())
}

func TestSigilTable(t *testing.T) {
	lead, trail := Sigil(SymSET)
	assert.Equal(t, "", lead)
	assert.Equal(t, ":", trail)

	lead, trail = Sigil(SymGET)
	assert.Equal(t, ":", lead)
	assert.Equal(t, "", trail)

	lead, trail = Sigil(SymTYP)
	assert.Equal(t, "", lead)
	assert.Equal(t, "!", trail)
}
