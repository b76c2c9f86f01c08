package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "List available grammars",
	Long:  "Lists built-in grammars and any grammar shared libraries found in the search paths.",
	RunE:  runGrammars,
}

func runGrammars(cmd *cobra.Command, args []string) error {
	p := newParser()
	defer p.Close()

	builtin := p.SupportedLanguages()
	sort.Strings(builtin)
	fmt.Printf("built-in: %s\n", strings.Join(builtin, ", "))

	installed := p.Loader().InstalledGrammars()
	sort.Strings(installed)
	if len(installed) > 0 {
		fmt.Printf("dynamic:  %s\n", strings.Join(installed, ", "))
	}
	for _, dir := range p.Loader().SearchPaths() {
		fmt.Printf("search:   %s\n", dir)
	}
	return nil
}
