package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/treescope/internal/domain/outline"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the document's display tree",
	Long:  "Parses the document and prints its display tree, one item per line, indented by depth.",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

var flagDepth int

func init() {
	outlineCmd.Flags().IntVar(&flagDepth, "depth", 0, "limit printed depth (0 = unlimited)")
}

func runOutline(cmd *cobra.Command, args []string) error {
	if err := mustAbsDocument(args[0]); err != nil {
		return err
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

	tree := outline.Build(root)
	fmt.Print(formatOutline(tree, flagDepth))
	return nil
}

// formatOutline renders the display tree as indented text. maxDepth 0 means
// unlimited.
func formatOutline(tree *outline.Tree, maxDepth int) string {
	var b strings.Builder
	var walk func(item *outline.Item, depth int)
	walk = func(item *outline.Item, depth int) {
		if maxDepth > 0 && depth >= maxDepth {
			return
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(item.Label)
		b.WriteString("\n")
		for _, child := range item.Children {
			walk(child, depth+1)
		}
	}
	walk(tree.Root(), 0)
	return b.String()
}
