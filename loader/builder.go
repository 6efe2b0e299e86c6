package loader

import (
	"strconv"
	"strings"

	"implish/errs"
	"implish/value"
)

// group is a pending delimited group on the builder's stack. The root
// group (stack[0]) has an empty Open/ExpectedClose and becomes the TOP
// node on Read.
type group struct {
	items         []value.Value
	open          string
	expectedClose string
}

// Loader implements spec.md §4.2's lexer + tree builder behind the
// incremental send/read protocol of §4.2.3: feed it text in chunks with
// Send, check Ready, and snapshot a completed parse with Read.
type Loader struct {
	sc     *scanner
	symtab *value.SymTable
	stack  []*group
	errs   []*errs.Error
}

// New creates a Loader. symtab may be nil to use value.Default.
func New(symtab *value.SymTable) *Loader {
	if symtab == nil {
		symtab = value.Default
	}
	l := &Loader{sc: newScanner(), symtab: symtab}
	l.resetRoot()
	return l
}

func (l *Loader) resetRoot() {
	l.stack = []*group{{}}
	l.errs = nil
}

// Send appends text to the input buffer and eagerly consumes tokens.
func (l *Loader) Send(text string) error {
	l.sc.buf = append(l.sc.buf, []rune(text)...)
	l.consume(false)
	return nil
}

// Ready reports whether the buffer is fully consumed and no group is
// still open — the precondition for Read to succeed (spec.md §4.2.3).
func (l *Loader) Ready() bool {
	return len(l.stack) == 1 && l.sc.atEnd()
}

// Finalize tells the loader no more input is coming for the current
// top-level read: it forces completion of any still-ambiguous trailing
// word/number/string token (spec.md §4.2.4's "EOF inside a string is a
// load error" open question is resolved here — unterminated strings
// become a LoadError only once Finalize is called, never on a plain
// Send, so a REPL that always sends whole lines never needs it while a
// script runner calls it once at end of file).
func (l *Loader) Finalize() {
	l.consume(true)
}

// Read snapshots the current root as a TOP value if Ready, otherwise
// returns an ERR value and a non-nil error, per spec.md §4.2.3.
func (l *Loader) Read() (value.Value, error) {
	if !l.Ready() {
		e := errs.New(errs.KindLoad, "incomplete input: unclosed group or pending token")
		return &value.Err{Message: e.Error()}, e
	}
	if len(l.errs) > 0 {
		e := l.errs[0]
		l.resetRoot()
		return &value.Err{Message: e.Error()}, e
	}
	top := &value.Top{Items: l.stack[0].items}
	l.resetRoot()
	return top, nil
}

func (l *Loader) reportErr(e *errs.Error) {
	l.errs = append(l.errs, e)
}

func (l *Loader) push(v value.Value) {
	top := l.stack[len(l.stack)-1]
	top.items = append(top.items, v)
}

func (l *Loader) consume(final bool) {
	for {
		tok, ok := l.sc.Next(final)
		if !ok {
			return
		}
		switch tok.kind {
		case tokEOF:
			return
		case tokSep:
			l.push(&value.Sep{Ch: tok.text[0]})
		case tokInt:
			n, _ := strconv.ParseInt(tok.text, 10, 64)
			l.push(&value.Int{V: n})
		case tokNum:
			f, _ := strconv.ParseFloat(tok.text, 64)
			l.push(&value.Num{V: f})
		case tokStr:
			l.push(&value.Str{V: tok.text})
		case tokUnterminatedStr:
			l.reportErr(errs.At(errs.KindLoad, errs.Position{Line: tok.line, Column: tok.col}, "",
				"unterminated string literal"))
		case tokOpener:
			l.openGroup(tok.text)
		case tokCloser:
			l.closeGroup(tok.text, tok.line, tok.col)
		case tokSym:
			l.consumeSym(tok)
		case tokIllegal:
			l.reportErr(errs.At(errs.KindLoad, errs.Position{Line: tok.line, Column: tok.col}, "",
				"unrecognized input: %q", tok.text))
		}
	}
}

func (l *Loader) consumeSym(tok rawTok) {
	if tok.text == "," {
		l.push(&value.Sep{Ch: ','})
		return
	}
	variant, src := classifySym(tok.text)
	l.push(&value.Sym{Handle: l.symtab.Intern(src), Variant: variant})
}

func (l *Loader) openGroup(openerText string) {
	var expected string
	switch {
	case openerText == ".:":
		expected = ":."
	case strings.HasSuffix(openerText, "["):
		expected = "]"
	case strings.HasSuffix(openerText, "("):
		expected = ")"
	case strings.HasSuffix(openerText, "{"):
		expected = "}"
	}
	l.stack = append(l.stack, &group{open: openerText, expectedClose: expected})
}

func (l *Loader) closeGroup(closerText string, line, col int) {
	if len(l.stack) <= 1 {
		l.reportErr(errs.At(errs.KindLoad, errs.Position{Line: line, Column: col}, "",
			"unexpected %q", closerText))
		return
	}
	top := l.stack[len(l.stack)-1]
	if top.expectedClose != closerText {
		l.reportErr(errs.At(errs.KindLoad, errs.Position{Line: line, Column: col}, "",
			"mismatched closer: expected %q, got %q", top.expectedClose, closerText))
		return
	}
	l.stack = l.stack[:len(l.stack)-1]
	if top.open == ".:" {
		return // comment group: discard contents entirely
	}
	l.push(&value.Lst{Items: top.items, Open: top.open, Close: closerText})
}
