package eval

import (
	"context"
	"strings"

	"implish/errs"
	"implish/value"
)

// evalNoun implements spec.md §4.4.7's special syntactic forms: a noun
// that is an LST dispatches on its opener text; every other noun
// (scalars, strands, JSF, IFN, DCT, already-resolved getters, …) is
// already a value and is returned as-is.
func (ev *Evaluator) evalNoun(ctx context.Context, v value.Value) (value.Value, error) {
	lst, ok := v.(*value.Lst)
	if !ok {
		return v, nil
	}

	switch {
	case lst.Open == "(":
		if len(lst.Items) == 0 {
			// An empty parenthesized sequence is an empty INTs vector, not
			// NIL, so `+/ ()` and friends see a fold-able empty numeric
			// strand (spec.md §9 Boundaries: "`+/ ()` (empty INTs) yields 0").
			return &value.Ints{}, nil
		}
		last, _, err := ev.evalList(ctx, lst.Items)
		return last, err

	case lst.Open == "[":
		return ev.evalBracketList(ctx, lst)

	case lst.Open == "{":
		return &value.Ifn{Body: lst.Items, Arity: inferArity(lst.Items)}, nil

	case lst.Open == "'[":
		return &value.Lst{Items: lst.Items, Open: strings.TrimPrefix(lst.Open, "'"), Close: lst.Close}, nil

	case lst.Open == "`[":
		return ev.evalQuasiquote(ctx, lst)

	case lst.Open == ":[":
		return ev.evalDictLiteral(ctx, lst)

	default:
		// name[ ... ] projection
		return ev.evalProjection(ctx, lst)
	}
}

// evalBracketList evaluates each SEP-delimited group and returns an LST
// of the evaluated groups (spec.md §4.4.7's "Square brackets […] with
// no name prefix").
func (ev *Evaluator) evalBracketList(ctx context.Context, lst *value.Lst) (value.Value, error) {
	groups := splitOnSemicolon(lst.Items)
	results := make([]value.Value, 0, len(groups))
	for _, g := range groups {
		last, _, err := ev.evalList(ctx, g)
		if err != nil {
			return nil, err
		}
		results = append(results, last)
	}
	return &value.Lst{Items: results, Open: lst.Open, Close: lst.Close}, nil
}

// evalProjection implements "name[a; b; …]": split on SEP into argument
// groups, then apply or index. A special form (ite, while) receives each
// group wrapped, unevaluated, as a Top thunk it evaluates on demand
// (spec.md §4.4.9); every other callable gets each group's evaluated
// last value, same as the prefix verb-application path.
func (ev *Evaluator) evalProjection(ctx context.Context, lst *value.Lst) (value.Value, error) {
	name := strings.TrimSuffix(lst.Open, "[")
	target, err := ev.resolveRaw(name)
	if err != nil {
		return nil, err
	}
	groups := splitOnSemicolon(lst.Items)

	if dct, ok := target.(*value.Dct); ok {
		if len(groups) != 1 {
			return nil, errs.New(errs.KindArity, "dictionary index takes exactly one key")
		}
		last, _, err := ev.evalList(ctx, groups[0])
		if err != nil {
			return nil, err
		}
		return ev.dictIndex(dct, last), nil
	}

	base := ev.asJsf(target)
	if base == nil {
		return nil, errs.New(errs.KindType, "%s is not callable or indexable", name)
	}

	args := make([]value.Value, 0, len(groups))
	if isSpecialFormName(base.SourceName) {
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			args = append(args, &value.Top{Items: g})
		}
	} else {
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			last, _, err := ev.evalList(ctx, g)
			if err != nil {
				return nil, err
			}
			args = append(args, last)
		}
	}

	if base.Arity >= 0 && len(args) > base.Arity {
		return nil, errs.New(errs.KindArity, "too many arguments to %s: expected %d, got %d", name, base.Arity, len(args))
	}
	if base.Arity >= 0 && len(args) < base.Arity {
		return ev.partialApply(base, args), nil
	}
	return ev.applyFn(ctx, base, args)
}

func (ev *Evaluator) dictIndex(dct *value.Dct, key value.Value) value.Value {
	switch k := key.(type) {
	case *value.Sym:
		if v, ok := dct.M[k.Name()]; ok {
			return v
		}
		return &value.Nil{}
	case *value.Syms:
		out := make([]value.Value, len(k.Vs))
		for i, s := range k.Vs {
			if v, ok := dct.M[s.Name()]; ok {
				out[i] = v
			} else {
				out[i] = &value.Nil{}
			}
		}
		return &value.Lst{Items: out, Open: "[", Close: "]"}
	default:
		return &value.Nil{}
	}
}

// evalDictLiteral implements ":[ k1 v1; k2 v2; … ]": each segment must
// begin with a BQT symbol key (spec.md §4.4.7).
func (ev *Evaluator) evalDictLiteral(ctx context.Context, lst *value.Lst) (value.Value, error) {
	groups := splitOnSemicolon(lst.Items)
	m := make(map[string]value.Value, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		key, ok := g[0].(*value.Sym)
		if !ok || key.Variant != value.SymBQT {
			return nil, errs.New(errs.KindType, "dictionary key must be a quoted symbol")
		}
		last, _, err := ev.evalList(ctx, g[1:])
		if err != nil {
			return nil, err
		}
		m[key.Name()] = last
	}
	return &value.Dct{M: m}, nil
}

// evalQuasiquote implements `` `[…] ``: UNQ nodes are evaluated and
// spliced; the leading backtick is stripped from the opener. Strand
// re-formation inside a quasiquoted list is preserved deliberately (see
// DESIGN.md's Open Question resolution) since the parser strand-forms
// every nested LST uniformly, with no special case for this opener.
func (ev *Evaluator) evalQuasiquote(ctx context.Context, lst *value.Lst) (value.Value, error) {
	items := make([]value.Value, len(lst.Items))
	for i, it := range lst.Items {
		r, err := ev.walkQuasi(ctx, it)
		if err != nil {
			return nil, err
		}
		items[i] = r
	}
	return &value.Lst{Items: items, Open: strings.TrimPrefix(lst.Open, "`"), Close: lst.Close}, nil
}

func (ev *Evaluator) walkQuasi(ctx context.Context, v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case *value.Sym:
		if x.Variant != value.SymUNQ {
			return x, nil
		}
		val, err := ev.resolveRaw(x.Name())
		if err != nil {
			return nil, err
		}
		if sym, ok := val.(*value.Sym); ok && (sym.Variant == value.SymLIT || sym.Variant == value.SymBQT) {
			return &value.Sym{Handle: sym.Handle, Variant: value.SymBQT}, nil
		}
		return val, nil
	case *value.Lst:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			r, err := ev.walkQuasi(ctx, it)
			if err != nil {
				return nil, err
			}
			items[i] = r
		}
		return &value.Lst{Items: items, Open: x.Open, Close: x.Close}, nil
	default:
		return v, nil
	}
}

// splitOnSemicolon splits items into argument groups at ';' and '\n'
// SEPs, matching the argument-grouping rule used by projections,
// bracket lists, and dictionary literals. A ',' SEP is deliberately
// left in place inside its group: spec.md §9 "Comma semantics" keeps
// comma and semicolon distinct inside projection brackets, so a comma
// falls through to evalList's own comma-verb-sequencing when the group
// is evaluated, instead of being treated as another group divider.
func splitOnSemicolon(items []value.Value) [][]value.Value {
	var groups [][]value.Value
	cur := []value.Value{}
	for _, it := range items {
		if sep, ok := it.(*value.Sep); ok && sep.Ch != ',' {
			groups = append(groups, cur)
			cur = []value.Value{}
			continue
		}
		cur = append(cur, it)
	}
	groups = append(groups, cur)
	return groups
}
