package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"implish/worker"
)

var watchPath string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run implish as a line-oriented JSON worker over stdin/stdout",
	Long: `Worker mode reads one {"op": ...} JSON request per stdin line and
writes one JSON response per stdout line, for embedding implish in
another process (spec.md §6.4). With --watch <path>, a file watcher
also reloads and emits an unsolicited response whenever the file
changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ev := newHostEvaluator()
		srv := worker.New(ev, Log)

		ctx := context.Background()
		if watchPath != "" {
			go func() {
				if err := srv.Watch(ctx, watchPath, os.Stdout); err != nil {
					Log.WithError(err).Warn("worker: watch stopped")
				}
			}()
		}
		return srv.Run(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringVar(&watchPath, "watch", "", "watch this file path and auto-reload on change")
}
