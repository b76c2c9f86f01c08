package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/treescope/internal/domain/syntax"
)

var locateCmd = &cobra.Command{
	Use:   "locate <file> <offset>",
	Short: "Find the syntax node at a byte offset",
	Long: "Parses the document and prints the chain of nodes enclosing the given byte offset, " +
		"outermost first, ending with the innermost match.",
	Args: cobra.ExactArgs(2),
	RunE: runLocate,
}

func runLocate(cmd *cobra.Command, args []string) error {
	if err := mustAbsDocument(args[0]); err != nil {
		return err
	}

	offset, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("offset %q: %w", args[1], err)
	}

	provider, closeProvider, err := withCache(newParser())
	if err != nil {
		return err
	}
	defer closeProvider()

	root, err := provider.ParseResult(args[0])
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("no parser for %s", args[0])
	}

	path := syntax.Path(root, offset)
	if len(path) == 0 {
		return fmt.Errorf("offset %d is outside the document", offset)
	}

	fmt.Print(formatPath(path))
	return nil
}

func formatPath(path []*syntax.Node) string {
	var b strings.Builder
	for i, n := range path {
		b.WriteString(strings.Repeat("  ", i))
		fmt.Fprintf(&b, "%s %s\n", n.Kind, n.Span)
	}
	return b.String()
}
