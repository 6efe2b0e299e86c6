package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"implish/replhost"
)

var noHistory bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive implish session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev := newHostEvaluator()
		r := replhost.New(ev, Log)
		if noHistory {
			r.HistoryPath = ""
		}
		return r.Run(context.Background(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&noHistory, "no-history", false, "don't persist session history")
}
