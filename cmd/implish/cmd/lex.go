package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"implish/loader"
	"implish/serialize"
	"implish/value"
)

var lexEvalExpr string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize and tree-build a file, printing the resulting value tree",
	Long: `implish has no separate tokenize-then-parse pass: the loader is a
single incremental lexer/tree-builder (spec.md §4.2). "lex" runs just
that stage — before strand formation — and prints the resulting TOP
value's XML tree, the way "dwscript lex" prints a raw token stream.

Examples:
  implish lex script.imp
  implish lex -e '1 2 3'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from a file")
}

func runLex(cmd *cobra.Command, args []string) error {
	source, filename, err := readScriptSource(lexEvalExpr, args)
	if err != nil {
		return err
	}
	if verbose {
		Log.WithField("file", filename).Debug("lex: tokenizing")
	}

	ld := loader.New(value.NewSymTable())
	if err := ld.Send(source); err != nil {
		return err
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return err
	}
	fmt.Println(serialize.XML(top))
	return nil
}
