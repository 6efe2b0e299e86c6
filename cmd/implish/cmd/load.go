package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"implish/loader"
	"implish/serialize"
	"implish/value"
)

var loadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Load a file through the language's own FILE-capability path",
	Long: `Load reads a file via the evaluator's own FileCapability and evaluates
it, exercising the same code path the in-language "load" built-in
uses, rather than reading the file with the CLI's own I/O (that's what
"run" does).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ev := newHostEvaluator()
		content, err := ev.Files.Read(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}

		ld := loader.New(ev.Sym)
		if err := ld.Send(content); err != nil {
			return err
		}
		ld.Finalize()
		top, err := ld.Read()
		if err != nil {
			return err
		}

		result, err := ev.Eval(ctx, top)
		if err != nil {
			return err
		}
		if _, isNil := result.(*value.Nil); !isNil {
			fmt.Println(serialize.Show(result))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
