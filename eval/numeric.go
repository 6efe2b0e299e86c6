package eval

import (
	"implish/errs"
	"implish/value"
)

// numSeq is a flattened view of a scalar or strand argument to a
// built-in numeric word, used to implement elementwise broadcasting.
type numSeq struct {
	floats []float64
	isInt  bool // true if every element originated as an INT
	scalar bool // true if the original value was a bare scalar, not a strand
}

func toNumSeq(v value.Value) (numSeq, error) {
	switch x := v.(type) {
	case *value.Int:
		return numSeq{floats: []float64{float64(x.V)}, isInt: true, scalar: true}, nil
	case *value.Num:
		return numSeq{floats: []float64{x.V}, isInt: false, scalar: true}, nil
	case *value.Ints:
		fs := make([]float64, len(x.Vs))
		for i, n := range x.Vs {
			fs[i] = float64(n)
		}
		return numSeq{floats: fs, isInt: true}, nil
	case *value.Nums:
		return numSeq{floats: append([]float64{}, x.Vs...), isInt: false}, nil
	}
	return numSeq{}, errs.New(errs.KindType, "expected a numeric value, got %T", v)
}

func fromNumSeq(vals []float64, isInt, scalar bool) value.Value {
	if scalar {
		if isInt {
			return &value.Int{V: int64(vals[0])}
		}
		return &value.Num{V: vals[0]}
	}
	if isInt {
		ints := make([]int64, len(vals))
		for i, f := range vals {
			ints[i] = int64(f)
		}
		return &value.Ints{Vs: ints}
	}
	return &value.Nums{Vs: vals}
}

// elementwise applies a binary numeric op across a and b, broadcasting
// a scalar against a vector. Result stays INT only if both operands and
// the op itself (iop) are used; as soon as either side is a NUM the
// result promotes to NUM, per spec.md §4.4.9.
func elementwise(a, b value.Value, iop func(int64, int64) int64, fop func(float64, float64) float64) (value.Value, error) {
	sa, err := toNumSeq(a)
	if err != nil {
		return nil, err
	}
	sb, err := toNumSeq(b)
	if err != nil {
		return nil, err
	}

	n := len(sa.floats)
	if len(sb.floats) > n {
		n = len(sb.floats)
	}
	if len(sa.floats) != n && len(sa.floats) != 1 {
		return nil, errs.New(errs.KindArity, "mismatched vector lengths: %d vs %d", len(sa.floats), len(sb.floats))
	}
	if len(sb.floats) != n && len(sb.floats) != 1 {
		return nil, errs.New(errs.KindArity, "mismatched vector lengths: %d vs %d", len(sa.floats), len(sb.floats))
	}

	isInt := sa.isInt && sb.isInt
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		av := sa.floats[i%len(sa.floats)]
		bv := sb.floats[i%len(sb.floats)]
		if isInt {
			out[i] = float64(iop(int64(av), int64(bv)))
		} else {
			out[i] = fop(av, bv)
		}
	}
	scalar := sa.scalar && sb.scalar
	return fromNumSeq(out, isInt, scalar), nil
}

// relational applies a binary comparison elementwise, always yielding
// 1/0 INT results regardless of operand kind (spec.md §4.4.9).
func relational(a, b value.Value, cmp func(float64, float64) bool) (value.Value, error) {
	sa, err := toNumSeq(a)
	if err != nil {
		return nil, err
	}
	sb, err := toNumSeq(b)
	if err != nil {
		return nil, err
	}
	n := len(sa.floats)
	if len(sb.floats) > n {
		n = len(sb.floats)
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		av := sa.floats[i%len(sa.floats)]
		bv := sb.floats[i%len(sb.floats)]
		if cmp(av, bv) {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	if sa.scalar && sb.scalar {
		return &value.Int{V: out[0]}, nil
	}
	return &value.Ints{Vs: out}, nil
}
