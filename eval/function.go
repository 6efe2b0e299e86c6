package eval

import (
	"context"
	"strings"

	"implish/errs"
	"implish/value"
)

// asJsf normalizes any callable value (Jsf or Ifn) into a Jsf so
// partial application and invocation share one code path, per spec.md
// §4.4.5's "partial application... return a JSF that captures them."
func (ev *Evaluator) asJsf(v value.Value) *value.Jsf {
	switch x := v.(type) {
	case *value.Jsf:
		return x
	case *value.Ifn:
		ifn := x
		return &value.Jsf{
			Arity: ifn.Arity,
			Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
				return ev.applyIfn(ctx, ifn, args)
			},
		}
	}
	return nil
}

// applyFn fully applies a callable to args (already including any
// previously captured arguments' complement — args here are the NEW
// arguments only; captured ones are prepended automatically).
func (ev *Evaluator) applyFn(ctx context.Context, callable value.Value, args []value.Value) (value.Value, error) {
	base := ev.asJsf(callable)
	if base == nil {
		return nil, errs.New(errs.KindType, "value is not callable")
	}
	all := append(append([]value.Value{}, base.CapturedArgs...), args...)
	if base.Arity >= 0 && len(all) != base.Arity {
		return nil, errs.New(errs.KindArity, "arity mismatch: expected %d args, got %d", base.Arity, len(all))
	}
	return base.Call(ctx, all)
}

// partialApply captures newArgs against callable and returns a Jsf with
// the remaining arity, preserving the invariant that captured count
// plus remaining arity equals the original arity (spec.md §3.4/§8).
func (ev *Evaluator) partialApply(callable value.Value, newArgs []value.Value) *value.Jsf {
	base := ev.asJsf(callable)
	captured := append(append([]value.Value{}, base.CapturedArgs...), newArgs...)
	remaining := base.Arity
	if base.Arity >= 0 {
		remaining = base.Arity - len(newArgs)
	}
	source := base.SourceFn
	if source == nil {
		source = base
	}
	return &value.Jsf{
		Call:         base.Call,
		Arity:        remaining,
		SourceName:   base.SourceName,
		CapturedArgs: captured,
		SourceFn:     source,
	}
}

// compose implements spec.md §4.4.8: the returned Jsf's arity matches
// inner's, and calling it threads inner's result through outer.
func (ev *Evaluator) compose(outer, inner value.Value) *value.Jsf {
	outerBase := ev.asJsf(outer)
	innerBase := ev.asJsf(inner)
	return &value.Jsf{
		Arity: innerBase.Arity,
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			r, err := ev.applyFn(ctx, innerBase, args)
			if err != nil {
				return nil, err
			}
			return ev.applyFn(ctx, outerBase, []value.Value{r})
		},
		SourceName: outerBase.SourceName + "." + innerBase.SourceName,
	}
}

// applyIfn implements spec.md §4.4.5's function-literal application:
// save/bind/evaluate/restore over the dynamic x/y/z bindings.
func (ev *Evaluator) applyIfn(ctx context.Context, ifn *value.Ifn, args []value.Value) (value.Value, error) {
	names := [3]string{"x", "y", "z"}
	var savedVal [3]value.Value
	var savedOK [3]bool
	for i, n := range names {
		savedVal[i], savedOK[i] = ev.Words[n]
	}
	for i := 0; i < len(args) && i < 3; i++ {
		ev.Words[names[i]] = args[i]
	}

	_, lastNonNil, err := ev.evalList(ctx, ifn.Body)

	for i, n := range names {
		if savedOK[i] {
			ev.Words[n] = savedVal[i]
		} else {
			delete(ev.Words, n)
		}
	}
	if err != nil {
		return nil, err
	}
	return lastNonNil, nil
}

// inferArity implements spec.md §4.4.5: the arity of a {…} function
// literal is the highest-ranked free reference to x<y<z, not descending
// into a nested function literal.
func inferArity(items []value.Value) int {
	max := 0
	var walk func([]value.Value)
	walk = func(items []value.Value) {
		for _, it := range items {
			switch v := it.(type) {
			case *value.Sym:
				if v.Variant != value.SymRAW && v.Variant != value.SymGET {
					continue
				}
				switch v.Name() {
				case "x":
					if max < 1 {
						max = 1
					}
				case "y":
					if max < 2 {
						max = 2
					}
				case "z":
					if max < 3 {
						max = 3
					}
				}
			case *value.Lst:
				if strings.HasSuffix(v.Open, "{") {
					continue // don't descend into a nested function literal
				}
				walk(v.Items)
			case *value.Top:
				walk(v.Items)
			}
		}
	}
	walk(items)
	return max
}
