package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/treescope/internal/adapters/bbolt"
	"github.com/corey/treescope/internal/adapters/treesitter"
	"github.com/corey/treescope/internal/ports"
)

var rootCmd = &cobra.Command{
	Use:   "treescope",
	Short: "treescope — syntax tree / source synchronization",
	Long:  "Bidirectional synchronization between a document's syntax tree and its source text.",
}

var (
	flagGrammarDirs []string
	flagCache       string
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&flagGrammarDirs, "grammar-dir", nil, "extra directory to search for grammar shared libraries (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "path to a bbolt parse cache (off when empty)")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(grammarsCmd)
}

// newParser builds the tree-sitter provider per the persistent flags:
// built-in grammars plus dynamic loading from --grammar-dir and the defaults.
func newParser() *treesitter.Provider {
	p := treesitter.NewProvider()
	paths := append(append([]string{}, flagGrammarDirs...), treesitter.DefaultGrammarPaths()...)
	p.SetGrammarPaths(paths)
	return p
}

// withCache wraps the parser in a bbolt parse cache when --cache is set.
// The returned close func tears the whole provider stack down, including
// the parser's dynamic-grammar library handles.
func withCache(parser *treesitter.Provider) (ports.ParseProvider, func(), error) {
	if flagCache == "" {
		return parser, parser.Close, nil
	}
	cache, err := bbolt.NewCache(flagCache, parser)
	if err != nil {
		parser.Close()
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, func() {
		cache.Close()
		parser.Close()
	}, nil
}

// mustAbsDocument validates the document argument exists.
func mustAbsDocument(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("document %s: %w", path, err)
	}
	return nil
}
