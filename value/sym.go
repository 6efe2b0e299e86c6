package value

// SymT is a symbol's syntactic variant, per spec.md §3.2.
type SymT string

const (
	SymRAW  SymT = "RAW"  // foo
	SymSET  SymT = "SET"  // foo:
	SymGET  SymT = "GET"  // :foo
	SymLIT  SymT = "LIT"  // 'foo
	SymBQT  SymT = "BQT"  // `foo
	SymFILE SymT = "FILE" // %path
	SymURL  SymT = "URL"  // http://... | https://...
	SymPATH SymT = "PATH" // a/b/c
	SymREFN SymT = "REFN" // /foo
	SymISH  SymT = "ISH"  // #foo
	SymTYP  SymT = "TYP"  // foo!
	SymANN  SymT = "ANN"  // @foo
	SymMSG  SymT = "MSG"  // .foo
	SymKW   SymT = "KW"   // .foo:
	SymMSG2 SymT = "MSG2" // !foo
	SymKW2  SymT = "KW2"  // !foo:
	SymERR  SymT = "ERR"  // ?foo
	SymUNQ  SymT = "UNQ"  // ,foo
)

// Sym is a SYM value: an interned name plus the syntactic role it played
// at load time.
type Sym struct {
	Handle  *Handle
	Variant SymT
}

func (s *Sym) Kind() Kind { return KindSYM }

// Part implements the static part-of-speech table from spec.md §4.4.2:
// "Other symbol variants set wc without lookup: SET→S, GET→G, LIT/BQT→Q,
// MSG/KW/MSG2/KW2→M." RAW is late-bound (resolved by the evaluator via a
// dictionary lookup) so it reports PartN here as a neutral placeholder —
// callers that need the real dispatch part must go through the
// evaluator's nextItem, not Part().
func (s *Sym) Part() Part {
	switch s.Variant {
	case SymSET:
		return PartS
	case SymGET:
		return PartG
	case SymLIT, SymBQT:
		return PartQ
	case SymMSG, SymKW, SymMSG2, SymKW2:
		return PartM
	default:
		return PartN
	}
}

// Name is shorthand for s.Handle.Name().
func (s *Sym) Name() string { return s.Handle.Name() }

// sigils maps each SymT to its [leading, trailing] decoration used both
// by the loader (to know what to strip) and by the serializer (to know
// what to restore), per spec.md §4.2.1 and §6.2.
var sigils = map[SymT][2]string{
	SymRAW:  {"", ""},
	SymSET:  {"", ":"},
	SymGET:  {":", ""},
	SymLIT:  {"'", ""},
	SymBQT:  {"`", ""},
	SymFILE: {"%", ""},
	SymURL:  {"", ""}, // URLs keep their full text; no sigil is stripped
	SymPATH: {"", ""}, // paths keep their full text; no sigil is stripped
	SymREFN: {"/", ""},
	SymISH:  {"#", ""},
	SymTYP:  {"", "!"},
	SymANN:  {"@", ""},
	SymMSG:  {".", ""},
	SymKW:   {".", ":"},
	SymMSG2: {"!", ""},
	SymKW2:  {"!", ":"},
	SymERR:  {"?", ""},
	SymUNQ:  {",", ""},
}

// Sigil returns the [leading, trailing] decoration for variant t.
func Sigil(t SymT) (lead, trail string) {
	s := sigils[t]
	return s[0], s[1]
}
