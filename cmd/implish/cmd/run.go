package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"implish/eval"
	"implish/hostio"
	"implish/loader"
	"implish/serialize"
	"implish/value"
)

var runEvalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an implish script file or inline expression",
	Long: `Execute an implish program from a file or an inline expression.

Examples:
  implish run script.imp
  implish run -e 'echo 2 + 2'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from a file")
}

func runScript(cmd *cobra.Command, args []string) error {
	source, filename, err := readScriptSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	ev := newHostEvaluator()
	if verbose {
		Log.WithField("file", filename).Debug("run: evaluating source")
	}

	ld := loader.New(ev.Sym)
	if err := ld.Send(source); err != nil {
		return err
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return err
	}

	result, err := ev.Eval(context.Background(), top)
	if err != nil {
		return err
	}
	if _, isNil := result.(*value.Nil); !isNil {
		fmt.Println(serialize.Show(result))
	}
	return nil
}

// readScriptSource resolves a run/lex/fmt subcommand's input: the -e
// flag's inline text, the single positional file argument, or stdin
// when neither is given (mirroring the teacher pack's dwscript fmt
// stdin fallback).
func readScriptSource(evalExpr string, args []string) (source, filename string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(b), args[0], nil
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("either provide a file path, -e, or pipe source on stdin: %w", err)
		}
		return string(b), "<stdin>", nil
	}
}

// newHostEvaluator constructs an Evaluator wired with the OS-backed
// capabilities every CLI subcommand shares.
func newHostEvaluator() *eval.Evaluator {
	ev := eval.New(value.NewSymTable())
	ev.Out = hostio.NewWriter(os.Stdout)
	ev.In = hostio.NewLineReader(os.Stdin)
	ev.Files = hostio.OSFiles{}
	return ev
}
