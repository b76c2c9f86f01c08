// Package app owns the synchronization engine: the controller that keeps
// one document's display tree and editor selection consistent in both
// directions, and the tracker that attaches it to whichever recognized
// document the host is showing.
package app

import (
	"sync"
	"sync/atomic"

	"github.com/corey/treescope/internal/domain/outline"
	"github.com/corey/treescope/internal/domain/syntax"
	"github.com/corey/treescope/internal/ports"
)

// GuardProbe observes every reentrancy-guard transition. Tests inject one
// to assert on the transient flag values mid-operation; production passes
// nil. Under correct operation the two flags are never both true.
type GuardProbe func(treeToSource, sourceToTree bool)

// Controller reacts to text-change and selection-change events from the
// editor surface and to item activations from the display tree, rebuilding
// and reselecting as needed. It tracks at most one document at a time;
// attaching a new surface first tears down the old binding.
//
// Two independent guards suppress feedback loops: treeToSource is raised
// while an item activation drives the editor selection, sourceToTree while
// a caret move drives the display selection. They are separate flags
// because the two navigations are triggered by different event sources and
// are not mutually exclusive in time.
type Controller struct {
	provider ports.ParseProvider
	probe    GuardProbe

	treeToSource atomic.Bool
	sourceToTree atomic.Bool

	mu         sync.Mutex
	binding    *binding
	tree       *outline.Tree
	generation uint64

	listener func(*outline.Tree)
}

// binding is the live association with one open document's editor surface.
// At most one binding is alive at any time.
type binding struct {
	surface ports.EditorSurface
	textSub ports.Subscription
	selSub  ports.Subscription
}

// NewController creates a detached controller. probe may be nil.
func NewController(provider ports.ParseProvider, probe GuardProbe) *Controller {
	return &Controller{provider: provider, probe: probe}
}

// SetOutlineListener registers the callback invoked after every display
// tree change (rebuild, clear, or selection move). The callback receives
// the current tree, nil when there is no data. It must not call back into
// the controller synchronously from a selection notification — the
// sourceToTree guard is raised across the call exactly so that an echoing
// item activation is ignored rather than looping.
func (c *Controller) SetOutlineListener(fn func(*outline.Tree)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

// Attached returns the currently bound editor surface, nil when detached.
func (c *Controller) Attached() ports.EditorSurface {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.binding == nil {
		return nil
	}
	return c.binding.surface
}

// Outline returns the current display tree, nil when there is no data.
func (c *Controller) Outline() *outline.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// HasOutline reports whether a display tree is currently built.
func (c *Controller) HasOutline() bool {
	return c.Outline() != nil
}

// Guards returns the current values of the two reentrancy flags.
func (c *Controller) Guards() (treeToSource, sourceToTree bool) {
	return c.treeToSource.Load(), c.sourceToTree.Load()
}

// DocumentShown binds the controller to a surface: subscribe to its
// text-change and selection-change events, fetch the parse result, build
// the display tree, and select the node at the current caret. A shown
// notification for the already-attached surface is ignored; any other
// existing binding is torn down first.
func (c *Controller) DocumentShown(surface ports.EditorSurface) {
	c.mu.Lock()
	if c.binding != nil {
		if c.binding.surface == surface {
			c.mu.Unlock()
			return
		}
		c.detachLocked()
	}
	b := &binding{surface: surface}
	b.textSub = surface.OnTextChanged(c.handleTextChanged)
	b.selSub = surface.OnSelectionChanged(c.handleSelectionChanged)
	c.binding = b
	c.mu.Unlock()

	c.Refresh()
}

// DocumentHidden tears down the binding for the given surface. A hide
// notification for a non-matching surface is ignored.
func (c *Controller) DocumentHidden(surface ports.EditorSurface) {
	c.mu.Lock()
	if c.binding == nil || c.binding.surface != surface {
		c.mu.Unlock()
		return
	}
	c.detachLocked()
	c.mu.Unlock()

	c.notifyOutline(nil)
}

// detachLocked unsubscribes both events and discards the binding and
// display tree. Bumping the generation discards any in-flight fetch.
func (c *Controller) detachLocked() {
	c.binding.textSub.Cancel()
	c.binding.selSub.Cancel()
	c.binding = nil
	c.tree = nil
	c.generation++
}

// Refresh discards the display tree, fetches a fresh parse result, rebuilds,
// and reselects at the current caret. A nil result (no data yet) leaves the
// tree empty; a later refresh may succeed. The fetch runs outside the lock
// and its completion is discarded when a newer refresh or a detach has
// superseded it, so a slow early fetch never overwrites a later rebuild.
func (c *Controller) Refresh() {
	c.mu.Lock()
	b := c.binding
	if b == nil {
		c.mu.Unlock()
		return
	}
	c.tree = nil
	c.generation++
	gen := c.generation
	path := b.surface.Path()
	c.mu.Unlock()

	root, err := c.provider.ParseResult(path)

	c.mu.Lock()
	if c.binding != b || gen != c.generation {
		c.mu.Unlock()
		return // stale: superseded by a newer refresh or a detach
	}
	if err != nil || root == nil {
		c.tree = nil
		c.mu.Unlock()
		c.notifyOutline(nil)
		return
	}
	tree := outline.Build(root)
	c.tree = tree
	caret := b.surface.CaretOffset()
	c.mu.Unlock()

	c.notifyOutline(tree)
	c.locateAndSelect(caret)
}

// ActivateItem handles a display-tree item activation: select the backing
// node's span in the editor and scroll it into view. Ignored while a
// source-to-tree navigation is in flight (that selection was forced by the
// engine, not clicked by the user). The treeToSource guard stays raised
// across the editor call so the echoed selection-change is suppressed.
func (c *Controller) ActivateItem(id outline.ItemID) {
	if c.sourceToTree.Load() {
		return
	}
	c.mu.Lock()
	if c.binding == nil || c.tree == nil {
		c.mu.Unlock()
		return
	}
	node := c.tree.Node(id)
	if node == nil {
		c.mu.Unlock()
		return
	}
	surface := c.binding.surface
	c.mu.Unlock()

	c.setGuard(&c.treeToSource, true)
	surface.SelectSpan(node.Span)
	c.setGuard(&c.treeToSource, false)
}

// handleTextChanged performs the full rebuild: the old display tree is
// discarded, never patched.
func (c *Controller) handleTextChanged() {
	c.Refresh()
}

// handleSelectionChanged reacts to a caret move. Ignored while the caret
// move was caused by our own tree-to-source navigation.
func (c *Controller) handleSelectionChanged(caret int) {
	if c.treeToSource.Load() {
		return
	}
	c.locateAndSelect(caret)
}

// locateAndSelect finds the most specific node covering the caret and
// selects its display item, expanding every ancestor so it is visible.
// No match (caret out of range, empty tree) leaves the prior selection
// untouched. The sourceToTree guard stays raised across the tree mutation
// and the outline notification.
func (c *Controller) locateAndSelect(caret int) {
	c.mu.Lock()
	tree := c.tree
	if tree == nil {
		c.mu.Unlock()
		return
	}
	node := syntax.Locate(tree.RootNode(), caret)
	if node == nil {
		c.mu.Unlock()
		return
	}
	id, ok := tree.ItemFor(node)
	if !ok {
		c.mu.Unlock()
		return
	}
	c.setGuard(&c.sourceToTree, true)
	tree.Select(id)
	c.mu.Unlock()

	c.notifyOutline(tree)
	c.setGuard(&c.sourceToTree, false)
}

// setGuard flips one reentrancy flag and reports both to the probe.
func (c *Controller) setGuard(flag *atomic.Bool, v bool) {
	flag.Store(v)
	if c.probe != nil {
		c.probe(c.treeToSource.Load(), c.sourceToTree.Load())
	}
}

// notifyOutline invokes the outline listener without holding the lock.
func (c *Controller) notifyOutline(tree *outline.Tree) {
	c.mu.Lock()
	fn := c.listener
	c.mu.Unlock()
	if fn != nil {
		fn(tree)
	}
}
