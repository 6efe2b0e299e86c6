// Package parser implements implish's normalizer (spec.md §4.3): strand
// formation over a loader-produced token tree, and an optional,
// disabled-by-default M-expression lowering pass. Unlike the teacher's
// Pratt expression parser (which builds a distinct AST from a flat token
// stream), this parser refines a value.Top/value.Lst tree in place —
// there is no separate AST; the refined tree is itself the evaluable
// form the evaluator walks.
package parser

import "implish/value"

// Options controls the optional, spec-reserved M-expression lowering
// pass. It is disabled by default, matching spec.md §4.3 item 2.
type Options struct {
	MExpression bool
}

// Parse applies strand formation (and, if enabled, M-expression
// lowering) to a TOP or LST value, returning a value of the same kind
// with refined contents. Any other value is returned unchanged: the
// parser only ever touches TOP and LST nodes (spec.md §4.3).
func Parse(v value.Value, opts Options) value.Value {
	switch x := v.(type) {
	case *value.Top:
		items := formStrands(x.Items, opts)
		return &value.Top{Items: items}
	case *value.Lst:
		items := formStrands(x.Items, opts)
		return &value.Lst{Items: items, Open: x.Open, Close: x.Close}
	default:
		return v
	}
}

// formStrands runs strand formation over a flat item sequence, then
// recurses into any nested LST so the whole tree is normalized, and
// finally (if requested) lowers eligible M-expressions.
func formStrands(items []value.Value, opts Options) []value.Value {
	out := make([]value.Value, 0, len(items))

	i := 0
	for i < len(items) {
		item := items[i]

		if lst, ok := item.(*value.Lst); ok {
			out = append(out, Parse(lst, opts))
			i++
			continue
		}

		if isNumeric(item) {
			run, n := collectNumericRun(items[i:])
			out = append(out, run)
			i += n
			continue
		}

		if isBQT(item) {
			run, n := collectSymRun(items[i:])
			out = append(out, run)
			i += n
			continue
		}

		out = append(out, item)
		i++
	}

	if opts.MExpression {
		out = lowerMExpressions(out)
	}
	return out
}

func isNumeric(v value.Value) bool {
	switch v.(type) {
	case *value.Int, *value.Num:
		return true
	}
	return false
}

func isBQT(v value.Value) bool {
	s, ok := v.(*value.Sym)
	return ok && s.Variant == value.SymBQT
}

// collectNumericRun gathers a maximal run of adjacent INT/NUM values
// (never crossing a SEP) into a single INTs or NUMs strand. A run of
// length 1 is returned as the original scalar — strands always hold at
// least 2 elements (spec.md §3.4).
func collectNumericRun(items []value.Value) (value.Value, int) {
	n := 0
	anyFloat := false
	for n < len(items) && isNumeric(items[n]) {
		if _, ok := items[n].(*value.Num); ok {
			anyFloat = true
		}
		n++
	}
	if n == 1 {
		return items[0], 1
	}
	if anyFloat {
		vs := make([]float64, n)
		for j := 0; j < n; j++ {
			vs[j] = asFloat(items[j])
		}
		return &value.Nums{Vs: vs}, n
	}
	vs := make([]int64, n)
	for j := 0; j < n; j++ {
		vs[j] = items[j].(*value.Int).V
	}
	return &value.Ints{Vs: vs}, n
}

func asFloat(v value.Value) float64 {
	switch x := v.(type) {
	case *value.Num:
		return x.V
	case *value.Int:
		return float64(x.V)
	}
	return 0
}

// collectSymRun gathers a maximal run of adjacent BQT symbols into a
// single SYMs strand.
func collectSymRun(items []value.Value) (value.Value, int) {
	n := 0
	for n < len(items) && isBQT(items[n]) {
		n++
	}
	if n == 1 {
		return items[0], 1
	}
	syms := make([]*value.Sym, n)
	for j := 0; j < n; j++ {
		syms[j] = items[j].(*value.Sym)
	}
	return &value.Syms{Vs: syms}, n
}

// lowerMExpressions implements spec.md §4.3 item 2: on a sequence free
// of comma separators, a candidate verb between two operands is
// rewritten to a projection list, and a candidate verb after one
// operand becomes a 1-argument projection list. Reserved and off by
// default; callers opt in via Options.MExpression. "Verb-ness" here is
// syntactic, not semantic (no dictionary lookup happens at parse
// time): every bare RAW symbol is a candidate verb, whatever its arity,
// since only RAW symbols are late-bound to callable values at
// evaluation time (spec.md §4.4.2). Any non-SEP item, a RAW symbol
// included, counts as an operand.
func lowerMExpressions(items []value.Value) []value.Value {
	for _, it := range items {
		if sep, ok := it.(*value.Sep); ok && sep.Ch == ',' {
			return items // comma present: skip the transform entirely
		}
	}

	out := make([]value.Value, 0, len(items))
	i := 0
	for i < len(items) {
		// a OP b  ->  OP[ a; b ]
		if i+2 < len(items) && isOperandlike(items[i]) && isRawVerbCandidate(items[i+1]) && isOperandlike(items[i+2]) {
			op := items[i+1].(*value.Sym)
			out = append(out, &value.Lst{
				Items: []value.Value{items[i], &value.Sep{Ch: ';'}, items[i+2]},
				Open:  op.Name() + "[",
				Close: "]",
			})
			i += 3
			continue
		}
		// a F  ->  F[ a ]  (postfix 1-arity verb)
		if i+1 < len(items) && isOperandlike(items[i]) && isRawVerbCandidate(items[i+1]) {
			op := items[i+1].(*value.Sym)
			out = append(out, &value.Lst{
				Items: []value.Value{items[i]},
				Open:  op.Name() + "[",
				Close: "]",
			})
			i += 2
			continue
		}
		out = append(out, items[i])
		i++
	}
	return out
}

func isOperandlike(v value.Value) bool {
	switch v.(type) {
	case *value.Sep:
		return false
	}
	return true
}

func isRawVerbCandidate(v value.Value) bool {
	s, ok := v.(*value.Sym)
	return ok && s.Variant == value.SymRAW
}
