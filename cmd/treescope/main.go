// treescope synchronizes a syntax tree view with its source document.
// Single binary: interactive two-pane view, plus plumbing commands for
// outlines and offset lookups.
package main

import (
	"os"

	"github.com/corey/treescope/cmd/treescope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
