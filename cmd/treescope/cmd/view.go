package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/treescope/internal/adapters/fsnotify"
	"github.com/corey/treescope/internal/adapters/host"
	"github.com/corey/treescope/internal/adapters/tui"
	"github.com/corey/treescope/internal/app"
	"github.com/corey/treescope/internal/ports"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Open the interactive tree/source view",
	Long: "Two-pane terminal view of a document: the syntax tree on the left, the source on " +
		"the right, kept in sync in both directions. External edits to the file re-parse live.",
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	if err := mustAbsDocument(args[0]); err != nil {
		return err
	}

	parser := newParser()
	contentType := parser.ContentType(args[0])
	if contentType == "" {
		return fmt.Errorf("no parser for %s", args[0])
	}

	provider, closeProvider, err := withCache(parser)
	if err != nil {
		return err
	}
	defer closeProvider()

	surface, err := fsnotify.Open(args[0])
	if err != nil {
		return err
	}
	defer surface.Close()

	// Full lifecycle wiring: the registry fires the window notifications,
	// the tracker filters them and drives the controller.
	controller := app.NewController(provider, nil)
	registry := host.NewRegistry()
	handle := ports.DocumentHandle(surface.Path())
	registry.Register(handle, surface, contentType)

	tracker := app.NewTracker(registry, controller, parser.SupportsContentType)
	tracker.Start()
	defer tracker.Stop()

	return tui.Run(cmd.Context(), controller, registry, handle, surface)
}
