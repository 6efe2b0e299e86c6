package eval

import (
	"context"
	"math"
	"runtime"

	"implish/errs"
	"implish/loader"
	"implish/parser"
	"implish/serialize"
	"implish/value"
)

// registerBuiltins populates ev.Words with the primitive word table of
// spec.md §4.4.9, grounded on the teacher's evaluator.builtins map of
// *object.Builtin values (object/builtins.go), generalized from Go
// closures over object.Object to closures over value.Value.
func registerBuiltins(ev *Evaluator) {
	ev.Words["nil"] = prim("nil", 0, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Nil{}, nil
	})
	ev.Words["ok"] = prim("ok", 0, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Nil{}, nil
	})

	ev.Words["+"] = bin2("+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	ev.Words["-"] = bin2("-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	ev.Words["*"] = bin2("*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	ev.Words["%"] = bin2("%",
		func(a, b int64) int64 {
			if b == 0 {
				return 0
			}
			return a / b
		},
		func(a, b float64) float64 {
			if int64(b) == 0 {
				return 0
			}
			return float64(int64(a) / int64(b))
		})
	ev.Words["^"] = bin2("^", ipow, math.Pow)
	ev.Words["min"] = bin2("min",
		func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		}, math.Min)
	ev.Words["max"] = bin2("max",
		func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		}, math.Max)

	ev.Words["<"] = rel2("<", func(a, b float64) bool { return a < b })
	ev.Words[">"] = rel2(">", func(a, b float64) bool { return a > b })
	ev.Words["<="] = rel2("<=", func(a, b float64) bool { return a <= b })
	ev.Words[">="] = rel2(">=", func(a, b float64) bool { return a >= b })
	ev.Words["="] = rel2("=", func(a, b float64) bool { return a == b })
	ev.Words["~="] = rel2("~=", func(a, b float64) bool { return a != b })

	ev.Words["!"] = prim("!", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		i, ok := args[0].(*value.Int)
		if !ok {
			return nil, errs.New(errs.KindType, "! expects an INT operand")
		}
		if i.V < 0 {
			return nil, errs.New(errs.KindType, "! requires a non-negative operand, got %d", i.V)
		}
		vs := make([]float64, i.V)
		for n := range vs {
			vs[n] = float64(n)
		}
		return &value.Nums{Vs: vs}, nil
	})

	ev.Words["tk"] = prim("tk", 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return takeCycle(args[0], args[1])
	})
	ev.Words["rev"] = prim("rev", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return reverseValue(args[0]), nil
	})
	ev.Words["len"] = prim("len", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Int{V: int64(lengthOf(args[0]))}, nil
	})

	ev.Words["rd"] = prim("rd", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.Files == nil {
			return nil, errs.New(errs.KindIO, "no file capability configured")
		}
		path, err := pathArg(args[0])
		if err != nil {
			return nil, err
		}
		text, err := ev.Files.Read(ctx, path)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "reading %s", path)
		}
		return &value.Str{V: text}, nil
	})
	ev.Words["wr"] = prim("wr", 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.Files == nil {
			return nil, errs.New(errs.KindIO, "no file capability configured")
		}
		path, err := pathArg(args[0])
		if err != nil {
			return nil, err
		}
		content, err := textArg(args[1])
		if err != nil {
			return nil, err
		}
		if err := ev.Files.Write(ctx, path, content); err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "writing %s", path)
		}
		return &value.Nil{}, nil
	})
	ev.Words["e?"] = prim("e?", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.Files == nil {
			return nil, errs.New(errs.KindIO, "no file capability configured")
		}
		path, err := pathArg(args[0])
		if err != nil {
			return nil, err
		}
		exists, err := ev.Files.Exists(ctx, path)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "checking %s", path)
		}
		if exists {
			return &value.Int{V: 1}, nil
		}
		return &value.Int{V: 0}, nil
	})
	ev.Words["rm"] = prim("rm", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.Files == nil {
			return nil, errs.New(errs.KindIO, "no file capability configured")
		}
		path, err := pathArg(args[0])
		if err != nil {
			return nil, err
		}
		if err := ev.Files.Delete(ctx, path); err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "deleting %s", path)
		}
		return &value.Nil{}, nil
	})

	ev.Words["rln"] = prim("rln", 0, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.In == nil {
			return nil, errs.New(errs.KindIO, "no input capability configured")
		}
		line, err := ev.In.ReadLine(ctx)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "reading line")
		}
		return &value.Str{V: line}, nil
	})

	ev.Words["load"] = prim("load", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		text, err := ev.loadArgText(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return ev.parseSource(text)
	})
	ev.Words["eval"] = prim("eval", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		text, err := ev.loadArgText(ctx, args[0])
		if err != nil {
			return nil, err
		}
		parsed, err := ev.parseSource(text)
		if err != nil {
			return nil, err
		}
		items, err := itemsOf(parsed)
		if err != nil {
			return nil, err
		}
		last, _, err := ev.evalList(ctx, items)
		return last, err
	})

	ev.Words["echo"] = prim("echo", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		if ev.Out == nil {
			return nil, errs.New(errs.KindIO, "no output capability configured")
		}
		if err := ev.Out.WriteLine(ctx, formatEcho(args[0])); err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "writing output")
		}
		return &value.Nil{}, nil
	})
	ev.Words["show"] = prim("show", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Str{V: serialize.Show(args[0])}, nil
	})
	ev.Words["xmls"] = prim("xmls", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Str{V: serialize.XML(args[0])}, nil
	})

	ev.Words["get"] = prim("get", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		name, err := nameArg(args[0])
		if err != nil {
			return nil, err
		}
		if v, ok := ev.Words[name]; ok {
			return v, nil
		}
		return &value.Nil{}, nil
	})
	ev.Words["set"] = prim("set", 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		name, err := nameArg(args[0])
		if err != nil {
			return nil, err
		}
		ev.Words[name] = args[1]
		return args[1], nil
	})
	ev.Words["put"] = prim("put", 3, func(ctx context.Context, args []value.Value) (value.Value, error) {
		dct, ok := args[0].(*value.Dct)
		if !ok {
			return nil, errs.New(errs.KindType, "put expects a DCT as its first argument")
		}
		name, err := nameArg(args[1])
		if err != nil {
			return nil, err
		}
		m := make(map[string]value.Value, len(dct.M)+1)
		for k, v := range dct.M {
			m[k] = v
		}
		m[name] = args[2]
		return &value.Dct{M: m}, nil
	})
	ev.Words["at"] = prim("at", 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		dct, ok := args[0].(*value.Dct)
		if !ok {
			return nil, errs.New(errs.KindType, "at expects a DCT as its first argument")
		}
		return ev.dictIndex(dct, args[1]), nil
	})
	ev.Words["keys"] = prim("keys", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		dct, ok := args[0].(*value.Dct)
		if !ok {
			return nil, errs.New(errs.KindType, "keys expects a DCT")
		}
		names := sortedKeys(dct.M)
		syms := make([]*value.Sym, len(names))
		for i, n := range names {
			syms[i] = &value.Sym{Handle: ev.Sym.Intern(n), Variant: value.SymBQT}
		}
		return &value.Syms{Vs: syms}, nil
	})
	ev.Words["vals"] = prim("vals", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		dct, ok := args[0].(*value.Dct)
		if !ok {
			return nil, errs.New(errs.KindType, "vals expects a DCT")
		}
		names := sortedKeys(dct.M)
		vals := make([]value.Value, len(names))
		for i, n := range names {
			vals[i] = dct.M[n]
		}
		return &value.Lst{Items: vals, Open: "[", Close: "]"}, nil
	})

	ev.Words["ite"] = &value.Jsf{
		Arity:      3,
		SourceName: "ite",
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			cond, err := ev.evalThunk(ctx, args[0])
			if err != nil {
				return nil, err
			}
			if value.Truthy(cond) {
				return ev.evalThunk(ctx, args[1])
			}
			return ev.evalThunk(ctx, args[2])
		},
	}
	ev.Words["while"] = &value.Jsf{
		Arity:      2,
		SourceName: "while",
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			var last value.Value = &value.Nil{}
			for {
				cond, err := ev.evalThunk(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if !value.Truthy(cond) {
					return last, nil
				}
				last, err = ev.evalThunk(ctx, args[1])
				if err != nil {
					return nil, err
				}
			}
		},
	}
}

func prim(name string, arity int, fn value.Fn) *value.Jsf {
	return &value.Jsf{Call: fn, Arity: arity, SourceName: name}
}

func bin2(name string, iop func(int64, int64) int64, fop func(float64, float64) float64) *value.Jsf {
	return prim(name, 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return elementwise(args[0], args[1], iop, fop)
	})
}

func rel2(name string, cmp func(float64, float64) bool) *value.Jsf {
	return prim(name, 2, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return relational(args[0], args[1], cmp)
	})
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// evalThunk evaluates a raw, unevaluated LST/TOP argument collected for a
// special form (ite, while), per spec.md §4.4.9.
func (ev *Evaluator) evalThunk(ctx context.Context, v value.Value) (value.Value, error) {
	items, err := itemsOf(v)
	if err != nil {
		return nil, err
	}
	last, _, err := ev.evalList(ctx, items)
	return last, err
}

func (ev *Evaluator) parseSource(text string) (value.Value, error) {
	ld := loader.New(ev.Sym)
	if err := ld.Send(text); err != nil {
		return nil, err
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return nil, err
	}
	return parser.Parse(top, parser.Options{MExpression: ev.MExpression}), nil
}

// loadArgText resolves a `load`/`eval` argument into raw source text: a
// string is used as-is, a FILE/URL symbol is read through the file
// capability.
func (ev *Evaluator) loadArgText(ctx context.Context, v value.Value) (string, error) {
	switch x := v.(type) {
	case *value.Str:
		return x.V, nil
	case *value.Mls:
		return x.V, nil
	case *value.Sym:
		if x.Variant == value.SymFILE || x.Variant == value.SymURL {
			if ev.Files == nil {
				return "", errs.New(errs.KindIO, "no file capability configured")
			}
			path := NativePath(runtime.GOOS, x.Name())
			text, err := ev.Files.Read(ctx, path)
			if err != nil {
				return "", errs.Wrap(errs.KindIO, err, "reading %s", path)
			}
			return text, nil
		}
	}
	return "", errs.New(errs.KindType, "load/eval expects a string or FILE/URL symbol")
}

func formatEcho(v value.Value) string {
	switch x := v.(type) {
	case *value.Str:
		return x.V
	case *value.Mls:
		return x.V
	default:
		return serialize.Show(v)
	}
}

func pathArg(v value.Value) (string, error) {
	switch x := v.(type) {
	case *value.Sym:
		return NativePath(runtime.GOOS, x.Name()), nil
	case *value.Str:
		return NativePath(runtime.GOOS, x.V), nil
	case *value.Mls:
		return NativePath(runtime.GOOS, x.V), nil
	}
	return "", errs.New(errs.KindType, "expected a path (FILE/URL symbol or string)")
}

func textArg(v value.Value) (string, error) {
	switch x := v.(type) {
	case *value.Str:
		return x.V, nil
	case *value.Mls:
		return x.V, nil
	}
	return "", errs.New(errs.KindType, "expected a string")
}

func nameArg(v value.Value) (string, error) {
	if sym, ok := v.(*value.Sym); ok {
		return sym.Name(), nil
	}
	return "", errs.New(errs.KindType, "expected a symbol naming a word")
}

func sortedKeys(m map[string]value.Value) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

func lengthOf(v value.Value) int {
	switch x := v.(type) {
	case *value.Str:
		return len([]rune(x.V))
	case *value.Mls:
		return len([]rune(x.V))
	case *value.Ints:
		return len(x.Vs)
	case *value.Nums:
		return len(x.Vs)
	case *value.Syms:
		return len(x.Vs)
	case *value.Lst:
		return len(x.Items)
	default:
		return 1
	}
}

func reverseValue(v value.Value) value.Value {
	switch x := v.(type) {
	case *value.Str:
		rs := []rune(x.V)
		reverseRunes(rs)
		return &value.Str{V: string(rs)}
	case *value.Mls:
		rs := []rune(x.V)
		reverseRunes(rs)
		return &value.Mls{V: string(rs)}
	case *value.Ints:
		out := append([]int64{}, x.Vs...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return &value.Ints{Vs: out}
	case *value.Nums:
		out := append([]float64{}, x.Vs...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return &value.Nums{Vs: out}
	case *value.Syms:
		out := append([]*value.Sym{}, x.Vs...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return &value.Syms{Vs: out}
	case *value.Lst:
		out := append([]value.Value{}, x.Items...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return &value.Lst{Items: out, Open: x.Open, Close: x.Close}
	default:
		return v
	}
}

func reverseRunes(rs []rune) {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
}

// takeCycle implements `tk`: take n elements from x, cycling through its
// elements when n exceeds its length (spec.md §4.4.9).
func takeCycle(nv, x value.Value) (value.Value, error) {
	n, ok := nv.(*value.Int)
	if !ok {
		return nil, errs.New(errs.KindType, "tk expects an INT count as its first argument")
	}
	if n.V < 0 {
		return nil, errs.New(errs.KindType, "tk requires a non-negative count, got %d", n.V)
	}
	count := int(n.V)

	switch y := x.(type) {
	case *value.Str:
		rs := []rune(y.V)
		if count > 0 && len(rs) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]rune, count)
		for i := range out {
			out[i] = rs[i%len(rs)]
		}
		return &value.Str{V: string(out)}, nil
	case *value.Mls:
		rs := []rune(y.V)
		if count > 0 && len(rs) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]rune, count)
		for i := range out {
			out[i] = rs[i%len(rs)]
		}
		return &value.Mls{V: string(out)}, nil
	case *value.Ints:
		if count > 0 && len(y.Vs) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]int64, count)
		for i := range out {
			out[i] = y.Vs[i%len(y.Vs)]
		}
		return &value.Ints{Vs: out}, nil
	case *value.Nums:
		if count > 0 && len(y.Vs) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]float64, count)
		for i := range out {
			out[i] = y.Vs[i%len(y.Vs)]
		}
		return &value.Nums{Vs: out}, nil
	case *value.Syms:
		if count > 0 && len(y.Vs) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]*value.Sym, count)
		for i := range out {
			out[i] = y.Vs[i%len(y.Vs)]
		}
		return &value.Syms{Vs: out}, nil
	case *value.Lst:
		if count > 0 && len(y.Items) == 0 {
			return nil, errs.New(errs.KindType, "tk on empty sequence")
		}
		out := make([]value.Value, count)
		for i := range out {
			out[i] = y.Items[i%len(y.Items)]
		}
		return &value.Lst{Items: out, Open: y.Open, Close: y.Close}, nil
	default:
		out := make([]value.Value, count)
		for i := range out {
			out[i] = y
		}
		return &value.Lst{Items: out, Open: "[", Close: "]"}, nil
	}
}
