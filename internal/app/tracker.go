package app

import "github.com/corey/treescope/internal/ports"

// Tracker translates the host registry's document window shown/hidden
// notifications, filtered to recognized content types, into controller
// attach/detach calls. Thin glue: all synchronization logic stays in the
// controller.
type Tracker struct {
	registry   ports.DocumentRegistry
	controller *Controller
	recognized func(contentType string) bool

	shownSub  ports.Subscription
	hiddenSub ports.Subscription
}

// NewTracker creates a tracker. recognized decides which declared content
// types the engine handles; notifications for other documents are ignored.
func NewTracker(registry ports.DocumentRegistry, controller *Controller, recognized func(contentType string) bool) *Tracker {
	return &Tracker{
		registry:   registry,
		controller: controller,
		recognized: recognized,
	}
}

// Start subscribes to the registry's notifications.
func (t *Tracker) Start() {
	t.shownSub = t.registry.OnDocumentShown(t.handleShown)
	t.hiddenSub = t.registry.OnDocumentHidden(t.handleHidden)
}

// Stop unsubscribes. Safe to call multiple times.
func (t *Tracker) Stop() {
	if t.shownSub != nil {
		t.shownSub.Cancel()
		t.shownSub = nil
	}
	if t.hiddenSub != nil {
		t.hiddenSub.Cancel()
		t.hiddenSub = nil
	}
}

// handleShown attaches the controller to a recognized document. A shown
// notification for the already-attached surface is ignored, except that an
// empty display tree triggers a fresh refresh — this recovers from a parse
// result that was unavailable on the first attempt.
func (t *Tracker) handleShown(h ports.DocumentHandle) {
	surface, contentType, err := t.registry.Resolve(h)
	if err != nil || !t.recognized(contentType) {
		return
	}
	if t.controller.Attached() == surface {
		if !t.controller.HasOutline() {
			t.controller.Refresh()
		}
		return
	}
	t.controller.DocumentShown(surface)
}

// handleHidden forwards hide notifications; the controller ignores surfaces
// it is not bound to.
func (t *Tracker) handleHidden(h ports.DocumentHandle) {
	surface, _, err := t.registry.Resolve(h)
	if err != nil {
		return
	}
	t.controller.DocumentHidden(surface)
}
