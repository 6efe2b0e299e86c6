// Package value implements implish's tagged-union value model: the
// uniform token-tree node type produced by the loader, refined by the
// parser, and walked by the evaluator. It mirrors the role the teacher's
// object package plays for Eloquence (a Type()+Inspect() interface with
// one concrete struct per variant) but the variant set and payloads come
// from spec.md §3 rather than from a conventional scripting-language
// object model.
package value

// Kind tags the variant of a Value, per spec.md §3.1.
type Kind string

const (
	KindTOP  Kind = "TOP"
	KindLST  Kind = "LST"
	KindSEP  Kind = "SEP"
	KindINT  Kind = "INT"
	KindNUM  Kind = "NUM"
	KindSTR  Kind = "STR"
	KindMLS  Kind = "MLS"
	KindSYM  Kind = "SYM"
	KindINTs Kind = "INTs"
	KindNUMs Kind = "NUMs"
	KindSYMs Kind = "SYMs"
	KindNIL  Kind = "NIL"
	KindERR  Kind = "ERR"
	KindEND  Kind = "END"
	KindJSF  Kind = "JSF"
	KindIFN  Kind = "IFN"
	KindDCT  Kind = "DCT"
)

// Part is the runtime part-of-speech (ImpP) assigned to a scanned item,
// per spec.md §3.3.
type Part string

const (
	PartV Part = "V" // verb/function
	PartN Part = "N" // noun/data
	PartS Part = "S" // setter
	PartG Part = "G" // getter
	PartQ Part = "Q" // quote
	PartM Part = "M" // message
	PartA Part = "A" // adverb (reserved)
	PartP Part = "P" // preposition (reserved)
	PartC Part = "C" // conjunction (reserved)
	PartE Part = "E" // end
)

// Value is the interface every node in a loaded/evaluated tree implements.
type Value interface {
	Kind() Kind
	// Part returns the part of speech implied purely by this value's
	// static kind/variant, per spec.md §4.4.2's "other values get wc from
	// their kind" rule. RAW symbols are the one case where the real part
	// of speech depends on a dictionary lookup the evaluator performs
	// separately; Part() on a RAW Sym still reports PartN as a neutral
	// default the evaluator overrides once it resolves the name.
	Part() Part
}
