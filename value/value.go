package value

import "context"

// ----------------------------------------------------------------------
// Top-level / delimited groups
// ----------------------------------------------------------------------

// Top is the root node produced by a completed Loader.Read — a bare
// sequence of Values with no surrounding delimiters.
type Top struct {
	Items []Value
}

func (*Top) Kind() Kind { return KindTOP }
func (*Top) Part() Part { return PartN }

// Lst is a delimited group: [...], (...), {...}, name[...], `[...],
// :[...], '[...]. Open/Close retain the literal delimiter text, e.g.
// "foo[" / "]", so a projection's name prefix survives for the evaluator
// to dispatch on (spec.md §4.4.7).
type Lst struct {
	Items       []Value
	Open, Close string
}

func (*Lst) Kind() Kind { return KindLST }
func (*Lst) Part() Part { return PartN }

// ----------------------------------------------------------------------
// Separators
// ----------------------------------------------------------------------

// Sep is a ';', '\n', or ',' separator token. ',' is semantically
// significant per spec.md §4.4.7 (comma-verb sequencing); it does not
// split the argument groups of a projection, which only ';' and '\n' do.
type Sep struct {
	Ch byte // ';', '\n', or ','
}

func (*Sep) Kind() Kind { return KindSEP }
func (*Sep) Part() Part { return PartE }

// End is the virtual end-of-input sentinel nextItem returns once a
// sequence is exhausted.
type End struct{}

func (*End) Kind() Kind { return KindEND }
func (*End) Part() Part { return PartE }

// ----------------------------------------------------------------------
// Scalars
// ----------------------------------------------------------------------

type Int struct{ V int64 }

func (*Int) Kind() Kind { return KindINT }
func (*Int) Part() Part { return PartN }

type Num struct{ V float64 }

func (*Num) Kind() Kind { return KindNUM }
func (*Num) Part() Part { return PartN }

type Str struct{ V string }

func (*Str) Kind() Kind { return KindSTR }
func (*Str) Part() Part { return PartN }

// Mls is a multi-line (triple-backtick) string.
type Mls struct{ V string }

func (*Mls) Kind() Kind { return KindMLS }
func (*Mls) Part() Part { return PartN }

type Nil struct{}

func (*Nil) Kind() Kind { return KindNIL }
func (*Nil) Part() Part { return PartN }

// Err is a parse/load failure value (distinct from a Go error: this is a
// first-class Value the loader can return at the top level).
type Err struct{ Message string }

func (*Err) Kind() Kind { return KindERR }
func (*Err) Part() Part { return PartN }

// ----------------------------------------------------------------------
// Strand vectors
// ----------------------------------------------------------------------

// Ints is a homogeneous strand of integers, e.g. "1 2 3".
type Ints struct{ Vs []int64 }

func (*Ints) Kind() Kind { return KindINTs }
func (*Ints) Part() Part { return PartN }

// Nums is a homogeneous strand of floats, produced whenever any element
// of a numeric strand is a NUM (integer/float promotion, spec.md §4.4.6).
type Nums struct{ Vs []float64 }

func (*Nums) Kind() Kind { return KindNUMs }
func (*Nums) Part() Part { return PartN }

// Syms is a homogeneous strand of quoted (BQT) symbols.
type Syms struct{ Vs []*Sym }

func (*Syms) Kind() Kind { return KindSYMs }
func (*Syms) Part() Part { return PartN }

// ----------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------

// Fn is the signature every primitive word implements. It takes a
// context (threaded from the evaluator so I/O built-ins can honor host
// deadlines/cancellation, per spec.md §5) and the already-evaluated
// argument list, and returns a result or an error.
type Fn func(ctx context.Context, args []Value) (Value, error)

// Jsf is a primitive or a partial application of one, per spec.md §3.1.
// A partial Jsf shares CapturedArgs by structural copy — they are already
// evaluated, immutable Values (or owned clones), so no aliasing protocol
// is needed beyond a plain slice copy.
type Jsf struct {
	Call         Fn
	Arity        int // -1 marks variadic
	SourceName   string
	CapturedArgs []Value
	SourceFn     *Jsf // the un-partial-applied origin, for show()/introspection
}

func (*Jsf) Kind() Kind { return KindJSF }
func (*Jsf) Part() Part { return PartV }

// Ifn is a user-defined function literal "{...}" with arity inferred
// from the highest-ranked free reference to x/y/z, per spec.md §3.4/§4.4.5.
type Ifn struct {
	Body  []Value
	Arity int
}

func (*Ifn) Kind() Kind { return KindIFN }
func (*Ifn) Part() Part { return PartV }

// ----------------------------------------------------------------------
// Dictionaries
// ----------------------------------------------------------------------

// Dct is a dictionary literal ":[k v; k v; ...]", keyed by the source
// string of a BQT symbol key (spec.md §4.4.7).
type Dct struct {
	M map[string]Value
}

func (*Dct) Kind() Kind { return KindDCT }
func (*Dct) Part() Part { return PartN }

// ----------------------------------------------------------------------
// Shared helpers
// ----------------------------------------------------------------------

// Truthy implements spec.md §4.4.9's truthiness rule: NIL and numeric
// zero are false, everything else is true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case *Nil:
		return false
	case *Int:
		return x.V != 0
	case *Num:
		return x.V != 0
	case nil:
		return false
	default:
		return true
	}
}
