package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"implish/loader"
	"implish/parser"
	"implish/serialize"
	"implish/value"
)

var (
	fmtWrite bool
	fmtList  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Re-serialize a file after strand formation",
	Long: `fmt loads a file, runs strand formation (no evaluation), and prints
the result back out via "show" — exercising the round-trip property of
spec.md §8 as a CLI-visible feature, grounded on the teacher pack's
"dwscript fmt" subcommand.

By default fmt writes to stdout. -w overwrites the file in place; -l
lists only files whose formatted form differs from their source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result back to the source file")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list the file if formatting would change it")
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtWrite && fmtList {
		return fmt.Errorf("cannot use -w and -l together")
	}

	source, filename, err := readScriptSource("", args)
	if err != nil {
		return err
	}

	formatted, err := formatSource(source)
	if err != nil {
		return err
	}

	changed := formatted != source
	switch {
	case fmtList:
		if changed {
			fmt.Println(filename)
		}
	case fmtWrite:
		if changed && filename != "<stdin>" {
			if err := os.WriteFile(filename, []byte(formatted), 0o644); err != nil {
				return fmt.Errorf("error writing file: %w", err)
			}
		}
	default:
		fmt.Print(formatted)
	}
	return nil
}

func formatSource(source string) (string, error) {
	ld := loader.New(value.NewSymTable())
	if err := ld.Send(source); err != nil {
		return "", err
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return "", err
	}
	normalized := parser.Parse(top, parser.Options{})
	return serialize.Show(normalized) + "\n", nil
}
