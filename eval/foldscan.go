package eval

import (
	"context"
	"math"

	"implish/errs"
	"implish/value"
)

// identityFor implements the fixed fold-identity registry of spec.md
// §4.4.6/§9, keyed by the primitive's spelling.
func identityFor(name string) (value.Value, bool) {
	switch name {
	case "+":
		return &value.Int{V: 0}, true
	case "*":
		return &value.Int{V: 1}, true
	case "min":
		return &value.Num{V: math.Inf(1)}, true
	case "max":
		return &value.Num{V: math.Inf(-1)}, true
	}
	return nil, false
}

// makeFoldJSF synthesizes the uncached `op/` JSF for a bound 2-arity
// primitive named opName (spec.md §4.4.2/§4.4.6).
func (ev *Evaluator) makeFoldJSF(opName string) *value.Jsf {
	return &value.Jsf{
		Arity:      1,
		SourceName: opName + "/",
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return ev.fold(ctx, opName, args[0])
		},
	}
}

// makeScanJSF synthesizes the uncached `op\` JSF.
func (ev *Evaluator) makeScanJSF(opName string) *value.Jsf {
	return &value.Jsf{
		Arity:      1,
		SourceName: opName + `\`,
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return ev.scan(ctx, opName, args[0])
		},
	}
}

// asElements splits a numeric strand into its scalar elements; a plain
// scalar reports ok=false (fold/scan returns it unchanged, per spec.md
// §4.4.6: "if x is scalar, return x").
func asElements(x value.Value) ([]value.Value, bool) {
	switch v := x.(type) {
	case *value.Ints:
		out := make([]value.Value, len(v.Vs))
		for i, n := range v.Vs {
			out[i] = &value.Int{V: n}
		}
		return out, true
	case *value.Nums:
		out := make([]value.Value, len(v.Vs))
		for i, n := range v.Vs {
			out[i] = &value.Num{V: n}
		}
		return out, true
	}
	return nil, false
}

// packVector re-assembles a slice of scalar results into an INTs vector
// if every element is still an INT, else a NUMs vector (the "any NUM in
// the chain upgrades to NUM" promotion rule of spec.md §4.4.6).
func packVector(vals []value.Value) value.Value {
	ints := make([]int64, len(vals))
	floats := make([]float64, len(vals))
	allInt := true
	for i, v := range vals {
		switch t := v.(type) {
		case *value.Int:
			ints[i] = t.V
			floats[i] = float64(t.V)
		case *value.Num:
			allInt = false
			floats[i] = t.V
		}
	}
	if allInt {
		return &value.Ints{Vs: ints}
	}
	return &value.Nums{Vs: floats}
}

func (ev *Evaluator) fold(ctx context.Context, opName string, x value.Value) (value.Value, error) {
	elems, isVec := asElements(x)
	if !isVec {
		return x, nil
	}
	if len(elems) == 0 {
		id, ok := identityFor(opName)
		if !ok {
			return nil, errs.New(errs.KindType, "empty fold of %q has no identity", opName)
		}
		return id, nil
	}
	opFn, ok := ev.Words[opName]
	if !ok {
		return nil, errs.New(errs.KindLookup, "undefined word: %s", opName)
	}
	acc := elems[0]
	for _, e := range elems[1:] {
		r, err := ev.applyFn(ctx, opFn, []value.Value{acc, e})
		if err != nil {
			return nil, err
		}
		acc = r
	}
	return acc, nil
}

func (ev *Evaluator) scan(ctx context.Context, opName string, x value.Value) (value.Value, error) {
	elems, isVec := asElements(x)
	if !isVec {
		return x, nil
	}
	if len(elems) == 0 {
		id, ok := identityFor(opName)
		if !ok {
			return nil, errs.New(errs.KindType, "empty scan of %q has no identity", opName)
		}
		return id, nil
	}
	opFn, ok := ev.Words[opName]
	if !ok {
		return nil, errs.New(errs.KindLookup, "undefined word: %s", opName)
	}
	acc := elems[0]
	results := []value.Value{acc}
	for _, e := range elems[1:] {
		r, err := ev.applyFn(ctx, opFn, []value.Value{acc, e})
		if err != nil {
			return nil, err
		}
		acc = r
		results = append(results, acc)
	}
	return packVector(results), nil
}
