// Package eval implements implish's stack-based evaluator (spec.md
// §4.4): late-bound symbol resolution, infix chaining without
// precedence, partial application, fold/scan synthesis, function
// literals, quasiquotation, and the built-in word dictionary. It is
// grounded on the teacher's tree-walking Eval(node, env) dispatch
// (evaluator.Eval's big type switch, and object.Environment's
// name-to-value map) generalized from a recursive-descent AST walk to a
// cursor-driven walk over a loader/parser-produced value.Value sequence,
// since implish has no separate AST: the parser's output is itself the
// evaluable form.
package eval

import (
	"context"
	"strings"

	"implish/errs"
	"implish/parser"
	"implish/value"
)

// Evaluator holds the single mutable word dictionary and the I/O
// capabilities built-ins dispatch through. Per spec.md §5, a dictionary
// is never shared between concurrently running evaluators — callers
// that need isolation construct a separate Evaluator.
type Evaluator struct {
	Words map[string]value.Value
	Sym   *value.SymTable
	In    InputProvider
	Out   OutputProvider
	Files FileCapability

	// MExpression enables the parser's optional M-expression lowering
	// pass, both in Eval and for strings given to `load`/`eval`. Off by
	// default, per
	// spec.md §4.3.
	MExpression bool
}

// New constructs an Evaluator with the built-in word table pre-loaded.
// symtab may be nil to use value.Default.
func New(symtab *value.SymTable) *Evaluator {
	if symtab == nil {
		symtab = value.Default
	}
	ev := &Evaluator{
		Words: make(map[string]value.Value),
		Sym:   symtab,
	}
	registerBuiltins(ev)
	registerIntrospection(ev)
	return ev
}

// seq is the evaluator's cursor over a single flat sequence of items —
// the "here"/"pos" state of spec.md §4.4.1. Entering a nested group is
// modeled by the Go call stack (a fresh seq per recursive evalList
// call) rather than an explicit frame stack, since this evaluator has
// no coroutine-style suspension to resume into later.
type seq struct {
	items []value.Value
	pos   int
}

// Eval parses and evaluates a single TOP or LST value and returns its
// result, applying strand formation first.
func (ev *Evaluator) Eval(ctx context.Context, v value.Value) (value.Value, error) {
	normalized := parser.Parse(v, parser.Options{MExpression: ev.MExpression})
	items, err := itemsOf(normalized)
	if err != nil {
		return nil, err
	}
	last, _, err := ev.evalList(ctx, items)
	return last, err
}

func itemsOf(v value.Value) ([]value.Value, error) {
	switch x := v.(type) {
	case *value.Top:
		return x.Items, nil
	case *value.Lst:
		return x.Items, nil
	default:
		return []value.Value{x}, nil
	}
}

// nextItem reads the next item from s, resolving a RAW symbol's late
// binding (fold/scan synthesis, then dictionary lookup) per spec.md
// §4.4.2. It returns the resolved value and its runtime part of speech.
func (ev *Evaluator) nextItem(s *seq) (value.Value, value.Part, error) {
	if s.pos >= len(s.items) {
		return &value.End{}, value.PartE, nil
	}
	item := s.items[s.pos]
	s.pos++

	sym, isSym := item.(*value.Sym)
	if !isSym || sym.Variant != value.SymRAW {
		return item, item.Part(), nil
	}

	resolved, err := ev.resolveRaw(sym.Name())
	if err != nil {
		return nil, "", err
	}
	return resolved, resolved.Part(), nil
}

// peek is nextItem with the cursor restored afterward.
func (ev *Evaluator) peek(s *seq) (value.Value, value.Part, error) {
	save := s.pos
	v, wc, err := ev.nextItem(s)
	s.pos = save
	return v, wc, err
}

// resolveRaw implements the RAW late-binding rule of spec.md §4.4.2: a
// trailing "/" or "\" on an otherwise-bound 2-arity function name
// synthesizes an uncached fold/scan JSF before falling back to a plain
// dictionary lookup.
func (ev *Evaluator) resolveRaw(name string) (value.Value, error) {
	if strings.HasSuffix(name, "/") {
		base := strings.TrimSuffix(name, "/")
		if fn, ok := ev.Words[base]; ok && arityOf(fn) == 2 {
			return ev.makeFoldJSF(base), nil
		}
	}
	if strings.HasSuffix(name, `\`) {
		base := strings.TrimSuffix(name, `\`)
		if fn, ok := ev.Words[base]; ok && arityOf(fn) == 2 {
			return ev.makeScanJSF(base), nil
		}
	}
	v, ok := ev.Words[name]
	if !ok {
		return nil, errs.New(errs.KindLookup, "undefined word: %s", name)
	}
	return v, nil
}

// evalList is the main loop of spec.md §4.4.3. It returns the literal
// last emitted value and, separately, the last *non-NIL* emitted value
// (the latter is what a {…} function body's application observes).
func (ev *Evaluator) evalList(ctx context.Context, items []value.Value) (last, lastNonNil value.Value, err error) {
	s := &seq{items: items}
	last = &value.Nil{}
	lastNonNil = &value.Nil{}
	haveLast := false

	emit := func(v value.Value) {
		last = v
		haveLast = true
		if _, isNil := v.(*value.Nil); !isNil {
			lastNonNil = v
		}
	}

	for {
		item, wc, err := ev.nextItem(s)
		if err != nil {
			return nil, nil, err
		}
		if _, isEnd := item.(*value.End); isEnd {
			break
		}

		if sep, ok := item.(*value.Sep); ok {
			if sep.Ch == ',' && haveLast {
				handled, res, err := ev.tryCommaVerbSequencing(ctx, s, last)
				if err != nil {
					return nil, nil, err
				}
				if handled {
					emit(res)
					continue
				}
			}
			continue
		}

		switch wc {
		case value.PartV:
			res, err := ev.applyVerbForm(ctx, item, s, true)
			if err != nil {
				return nil, nil, err
			}
			emit(res)
		case value.PartN:
			res, err := ev.evalNoun(ctx, item)
			if err != nil {
				return nil, nil, err
			}
			if isCallable(res) {
				res, err = ev.applyCallableChained(ctx, res, s)
				if err != nil {
					return nil, nil, err
				}
			}
			res, err = ev.modifyNoun(ctx, res, s)
			if err != nil {
				return nil, nil, err
			}
			emit(res)
		case value.PartQ:
			emit(item)
		case value.PartG:
			sym := item.(*value.Sym)
			v, ok := ev.Words[sym.Name()]
			if !ok {
				return nil, nil, errs.New(errs.KindLookup, "undefined word: %s", sym.Name())
			}
			emit(v)
		case value.PartS:
			res, err := ev.doAssign(ctx, item.(*value.Sym), s)
			if err != nil {
				return nil, nil, err
			}
			emit(res)
		case value.PartM:
			emit(item) // reserved
		default:
			emit(item)
		}
	}

	return last, lastNonNil, nil
}

// tryCommaVerbSequencing implements the comma-verb sequencing rule of
// spec.md §4.4.7: if the item after a ',' separator is itself a verb,
// the previously emitted value is popped and fed to it as the left (and
// collected right, if arity 2) operand.
func (ev *Evaluator) tryCommaVerbSequencing(ctx context.Context, s *seq, prior value.Value) (bool, value.Value, error) {
	peeked, wc, err := ev.peek(s)
	if err != nil {
		return false, nil, err
	}
	if wc != value.PartV {
		return false, nil, nil
	}
	ev.nextItem(s) // consume the verb
	composed, err := ev.modifyVerb(ctx, peeked, s)
	if err != nil {
		return false, nil, err
	}
	rest, complete, err := ev.collectArgs(ctx, composed, s, arityOf(composed)-1)
	if err != nil {
		return false, nil, err
	}
	args := append([]value.Value{prior}, rest...)
	var res value.Value
	if !complete {
		res = ev.partialApply(composed, args)
	} else {
		res, err = ev.applyFn(ctx, composed, args)
		if err != nil {
			return false, nil, err
		}
	}
	res, err = ev.modifyNoun(ctx, res, s)
	if err != nil {
		return false, nil, err
	}
	return true, res, nil
}

// applyVerbForm handles a V-part item read from the main loop: compose
// with any following verbs, collect up to its arity worth of nouns
// (partial-applying on shortfall), apply, then chain infix.
//
// fold has the same meaning as in resolveForPosition: true folds the
// rest of the infix chain here (top-level and assignment RHS use),
// false leaves that to the caller's own modifyNoun loop (nextNoun's
// use, when the collected right operand is itself a verb token).
func (ev *Evaluator) applyVerbForm(ctx context.Context, verb value.Value, s *seq, fold bool) (value.Value, error) {
	composed, err := ev.modifyVerb(ctx, verb, s)
	if err != nil {
		return nil, err
	}
	args, complete, err := ev.collectArgs(ctx, composed, s, arityOf(composed))
	if err != nil {
		return nil, err
	}
	var res value.Value
	if !complete {
		res = ev.partialApply(composed, args)
	} else {
		res, err = ev.applyFn(ctx, composed, args)
		if err != nil {
			return nil, err
		}
	}
	if fold {
		return ev.modifyNoun(ctx, res, s)
	}
	return res, nil
}

// applyCallableChained applies a callable noun result collected mid
// N-branch (spec.md §4.4.3's "if the result is itself a V, attempt to
// apply it").
func (ev *Evaluator) applyCallableChained(ctx context.Context, fn value.Value, s *seq) (value.Value, error) {
	args, complete, err := ev.collectArgs(ctx, fn, s, arityOf(fn))
	if err != nil {
		return nil, err
	}
	if !complete {
		return ev.partialApply(fn, args), nil
	}
	return ev.applyFn(ctx, fn, args)
}

// collectArgs gathers up to want argument nouns for a verb application.
// Each evaluated argument also folds its own infix chain through
// modifyNoun, so `echo 2 + 2` hands echo the value 4.
// Special forms (ite, while) take their arguments unevaluated — raw
// LST/scalar thunks the built-in itself evaluates on demand — so they
// are collected via nextRawNoun instead of nextNoun (spec.md §4.4.9's
// "special forms that require unevaluated LST/TOP arguments").
func (ev *Evaluator) collectArgs(ctx context.Context, composed value.Value, s *seq, want int) ([]value.Value, bool, error) {
	raw := isSpecialFormName(sourceNameOf(composed))
	var args []value.Value
	for len(args) < want {
		var v value.Value
		var ok bool
		var err error
		if raw {
			v, ok, err = ev.nextRawNoun(s)
		} else {
			v, ok, err = ev.nextNoun(ctx, s)
			if err == nil && ok {
				v, err = ev.modifyNoun(ctx, v, s)
			}
		}
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		args = append(args, v)
	}
	return args, len(args) == want, nil
}

// nextRawNoun collects one argument without evaluating it: the raw item
// a special form receives as an unevaluated thunk.
func (ev *Evaluator) nextRawNoun(s *seq) (value.Value, bool, error) {
	_, wc, err := ev.peek(s)
	if err != nil {
		return nil, false, err
	}
	if wc == value.PartE {
		return nil, false, nil
	}
	item, _, err := ev.nextItem(s)
	return item, err == nil, err
}

func sourceNameOf(v value.Value) string {
	if jsf, ok := v.(*value.Jsf); ok {
		return jsf.SourceName
	}
	return ""
}

func isSpecialFormName(name string) bool {
	return name == "ite" || name == "while"
}

// nextNoun collects one argument noun for verb application, stopping
// without consuming on end-of-input or a peeked SEP (spec.md §4.4.3).
func (ev *Evaluator) nextNoun(ctx context.Context, s *seq) (value.Value, bool, error) {
	peeked, wc, err := ev.peek(s)
	if err != nil {
		return nil, false, err
	}
	if wc == value.PartE {
		return nil, false, nil
	}
	if _, isSep := peeked.(*value.Sep); isSep {
		return nil, false, nil
	}
	item, wc, err := ev.nextItem(s)
	if err != nil {
		return nil, false, err
	}
	v, err := ev.resolveForPosition(ctx, item, wc, s, false)
	return v, true, err
}

// resolveForPosition turns an already-read (item, wc) pair into a
// concrete value, used for both verb arguments and assignment RHS
// evaluation. It mirrors evalList's per-item dispatch exactly so that a
// noun read in either position picks up the same callable-chaining
// treatment (spec.md §4.4.3) a top-level noun would.
//
// fold controls whether a PartN result also folds the rest of the
// infix chain via modifyNoun. nextNoun passes false: it returns a
// single operand and its caller does the folding (modifyNoun's own
// loop for an infix right operand, collectArgs for a verb argument);
// folding here would consume the remainder of the chain
// right-associatively instead of leaving each operator to apply
// left-to-right as modifyNoun's loop iterates. doAssign passes true: a SET's right-hand side is a full
// expression and must fold exactly as a top-level noun would.
func (ev *Evaluator) resolveForPosition(ctx context.Context, item value.Value, wc value.Part, s *seq, fold bool) (value.Value, error) {
	switch wc {
	case value.PartN:
		res, err := ev.evalNoun(ctx, item)
		if err != nil {
			return nil, err
		}
		if isCallable(res) {
			res, err = ev.applyCallableChained(ctx, res, s)
			if err != nil {
				return nil, err
			}
		}
		if fold {
			return ev.modifyNoun(ctx, res, s)
		}
		return res, nil
	case value.PartV:
		return ev.applyVerbForm(ctx, item, s, fold)
	case value.PartQ:
		return item, nil
	case value.PartG:
		sym := item.(*value.Sym)
		v, ok := ev.Words[sym.Name()]
		if !ok {
			return nil, errs.New(errs.KindLookup, "undefined word: %s", sym.Name())
		}
		return v, nil
	case value.PartS:
		return ev.doAssign(ctx, item.(*value.Sym), s)
	default:
		return item, nil
	}
}

// modifyNoun implements spec.md §4.4.3's post-noun infix/dictionary
// chaining, repeating while the peeked item still matches one of its
// two forms.
func (ev *Evaluator) modifyNoun(ctx context.Context, x value.Value, s *seq) (value.Value, error) {
	for {
		peeked, wc, err := ev.peek(s)
		if err != nil {
			return nil, err
		}

		if dct, ok := x.(*value.Dct); ok {
			if sym, ok2 := peeked.(*value.Sym); ok2 && sym.Variant == value.SymBQT {
				ev.nextItem(s)
				if v, found := dct.M[sym.Name()]; found {
					x = v
				} else {
					x = &value.Nil{}
				}
				continue
			}
			if syms, ok2 := peeked.(*value.Syms); ok2 {
				ev.nextItem(s)
				vals := make([]value.Value, len(syms.Vs))
				for i, sy := range syms.Vs {
					if v, found := dct.M[sy.Name()]; found {
						vals[i] = v
					} else {
						vals[i] = &value.Nil{}
					}
				}
				x = &value.Lst{Items: vals, Open: "[", Close: "]"}
				continue
			}
		}

		if wc == value.PartV && arityOf(peeked) == 2 {
			ev.nextItem(s)
			right, ok, err := ev.nextNoun(ctx, s)
			if err != nil {
				return nil, err
			}
			if !ok {
				return ev.partialApply(peeked, []value.Value{x}), nil
			}
			res, err := ev.applyFn(ctx, peeked, []value.Value{x, right})
			if err != nil {
				return nil, err
			}
			x = res
			continue
		}

		break
	}
	return x, nil
}

// modifyVerb implements composition (spec.md §4.4.8): while the next
// item is itself a verb and the current callable is arity-1, fold it
// in as x ↦ outer(inner(x)).
func (ev *Evaluator) modifyVerb(ctx context.Context, v value.Value, s *seq) (value.Value, error) {
	cur := v
	for arityOf(cur) == 1 {
		peeked, wc, err := ev.peek(s)
		if err != nil {
			return nil, err
		}
		if wc != value.PartV {
			break
		}
		ev.nextItem(s)
		cur = ev.compose(cur, peeked)
	}
	return cur, nil
}

// doAssign implements spec.md §4.4.4. name: is right-associative over a
// chain of further SET symbols. It shares resolveForPosition with verb
// argument collection so a noun or verb application on a SET's
// right-hand side gets the same callable- and infix-chaining treatment
// a top-level expression would.
func (ev *Evaluator) doAssign(ctx context.Context, setSym *value.Sym, s *seq) (value.Value, error) {
	item, wc, err := ev.nextItem(s)
	if err != nil {
		return nil, err
	}
	if wc == value.PartE {
		return nil, errs.New(errs.KindUser, "invalid expression after set-word")
	}
	result, err := ev.resolveForPosition(ctx, item, wc, s, true)
	if err != nil {
		return nil, err
	}
	ev.Words[setSym.Name()] = result
	return result, nil
}

func isCallable(v value.Value) bool {
	switch v.(type) {
	case *value.Jsf, *value.Ifn:
		return true
	}
	return false
}

func arityOf(v value.Value) int {
	switch x := v.(type) {
	case *value.Jsf:
		return x.Arity
	case *value.Ifn:
		return x.Arity
	}
	return 0
}
