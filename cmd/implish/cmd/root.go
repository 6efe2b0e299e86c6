// Package cmd implements implish's cobra CLI, grounded on the teacher
// pack's DWScript cmd/dwscript/cmd (root.go's version-template wiring,
// per-subcommand file layout, persistent --verbose flag).
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by -ldflags at build time).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose bool
	Log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "implish",
	Short: "implish is a tiny token-tree homoiconic scripting language",
	Long: `implish evaluates flat token trees left to right with no operator
precedence: every verb is either fully applied, partially applied, or
chained infix against its neighbor, and every {...} literal is itself
just more token-tree data.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			Log.SetLevel(logrus.DebugLevel)
		} else {
			Log.SetLevel(logrus.WarnLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
}
