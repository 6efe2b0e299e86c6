package eval

import (
	"context"

	"implish/value"
)

// registerIntrospection adds the reflection/listing built-ins: `words`
// (live dictionary keys), `part` and `type?` (runtime part-of-speech and
// kind tags), grounded on the teacher's object.ObjectType/Type() dual —
// generalized to implish's separate Kind()/Part() tags on value.Value.
func registerIntrospection(ev *Evaluator) {
	ev.Words["words"] = prim("words", 0, func(ctx context.Context, args []value.Value) (value.Value, error) {
		names := sortedKeys(ev.Words)
		syms := make([]*value.Sym, len(names))
		for i, n := range names {
			syms[i] = &value.Sym{Handle: ev.Sym.Intern(n), Variant: value.SymBQT}
		}
		return &value.Syms{Vs: syms}, nil
	})
	ev.Words["part"] = prim("part", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Str{V: string(args[0].Part())}, nil
	})
	ev.Words["type?"] = prim("type?", 1, func(ctx context.Context, args []value.Value) (value.Value, error) {
		return &value.Str{V: string(args[0].Kind())}, nil
	})
}
