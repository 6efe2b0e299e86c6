//go:build js && wasm

// Package wasmhost exposes implish to a browser host via syscall/js,
// grounded directly on the teacher's wasm/wasm_main.go: a single
// js.Func (renamed runImplish), an output buffer standing in for
// echo/show since there is no real stdout in a browser tab, and an
// {result, error} / {logs, result} return shape. Generalized from the
// teacher's object.Builtins-patching approach (which mutates a global
// builtin table) to implish's capability-injection design: this package
// just constructs an Evaluator with a buffer-backed OutputProvider, no
// patching needed.
package wasmhost

import (
	"context"
	"strings"
	"syscall/js"

	"implish/eval"
	"implish/loader"
	"implish/serialize"
	"implish/value"
)

type bufferOutput struct{ buf strings.Builder }

func (b *bufferOutput) WriteLine(ctx context.Context, text string) error {
	b.buf.WriteString(text)
	b.buf.WriteString("\n")
	return nil
}

// noInput returns an empty line immediately: a browser tab has no stdin, per the
// teacher's "ask" override returning a fixed placeholder instead of
// blocking.
type noInput struct{}

func (noInput) ReadLine(ctx context.Context) (string, error) {
	return "", nil
}

func Register() {
	js.Global().Set("runImplish", js.FuncOf(runImplish))
}

func runImplish(this js.Value, args []js.Value) interface{} {
	code := args[0].String()

	out := &bufferOutput{}
	ev := eval.New(value.NewSymTable())
	ev.Out = out
	ev.In = noInput{}

	ld := loader.New(ev.Sym)
	if err := ld.Send(code); err != nil {
		return errorResult(err.Error())
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return errorResult(err.Error())
	}

	result, err := ev.Eval(context.Background(), top)
	if err != nil {
		return map[string]interface{}{
			"logs":  out.buf.String(),
			"error": err.Error(),
		}
	}

	resultStr := ""
	if _, isNil := result.(*value.Nil); !isNil {
		resultStr = serialize.Show(result)
	}
	return map[string]interface{}{
		"logs":   out.buf.String(),
		"result": resultStr,
	}
}

func errorResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}
