// Command implish is the CLI entry point wiring the loader, evaluator,
// replhost, and worker packages together, grounded on the teacher
// pack's cmd/dwscript main.go + cobra root command split.
package main

import (
	"os"

	"implish/cmd/implish/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
