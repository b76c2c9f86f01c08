// Package outline builds and owns the display tree: the selectable,
// expandable visual mirror of a syntax tree. Items carry no behavior —
// selection events carry an item's ID and callers look the backing node up
// through the tree's dispatch tables, so no per-item closures are needed.
package outline

import (
	"fmt"

	"github.com/corey/treescope/internal/domain/syntax"
)

// ItemID identifies one display item within its tree. IDs are assigned in
// depth-first source order starting at 0 (the root) and are only meaningful
// for the tree that produced them.
type ItemID int

// Item is one row of the display tree. Wholly owned by the tree; discarded
// and rebuilt on every refresh, never patched incrementally.
type Item struct {
	ID       ItemID
	Label    string
	Span     syntax.Span
	Children []*Item
	Expanded bool
	Selected bool
}

// Tree is the display tree for one document plus the lookup tables built
// alongside it: item by ID, backing syntax node by ID, and parent by ID.
type Tree struct {
	root     *Item
	rootNode *syntax.Node
	items    map[ItemID]*Item
	nodes    map[ItemID]*syntax.Node
	itemFor  map[*syntax.Node]ItemID
	parents  map[ItemID]ItemID
	selected ItemID // -1 when nothing is selected
}

// Build mirrors the syntax tree into a display tree. The root item starts
// expanded, every descendant collapsed; labels combine the node kind and
// span. Each node is visited exactly once. Returns nil for a nil root.
func Build(root *syntax.Node) *Tree {
	if root == nil {
		return nil
	}
	t := &Tree{
		rootNode: root,
		items:    make(map[ItemID]*Item),
		nodes:    make(map[ItemID]*syntax.Node),
		itemFor:  make(map[*syntax.Node]ItemID),
		parents:  make(map[ItemID]ItemID),
		selected: -1,
	}
	next := ItemID(0)
	var mirror func(n *syntax.Node) *Item
	mirror = func(n *syntax.Node) *Item {
		item := &Item{
			ID:    next,
			Label: fmt.Sprintf("%s %s", n.Kind, n.Span),
			Span:  n.Span,
		}
		next++
		t.items[item.ID] = item
		t.nodes[item.ID] = n
		t.itemFor[n] = item.ID
		for _, c := range n.Children {
			child := mirror(c)
			t.parents[child.ID] = item.ID
			item.Children = append(item.Children, child)
		}
		return item
	}
	t.root = mirror(root)
	t.root.Expanded = true
	return t
}

// Root returns the root display item.
func (t *Tree) Root() *Item {
	return t.root
}

// RootNode returns the syntax node the tree was built from.
func (t *Tree) RootNode() *syntax.Node {
	return t.rootNode
}

// Len returns the number of items in the tree.
func (t *Tree) Len() int {
	return len(t.items)
}

// Item returns the display item for an ID, or nil for unknown IDs.
func (t *Tree) Item(id ItemID) *Item {
	return t.items[id]
}

// Node returns the syntax node backing an item, or nil for unknown IDs.
func (t *Tree) Node(id ItemID) *syntax.Node {
	return t.nodes[id]
}

// ItemFor returns the item mirroring the given syntax node.
func (t *Tree) ItemFor(n *syntax.Node) (ItemID, bool) {
	id, ok := t.itemFor[n]
	return id, ok
}

// Parent returns the parent of an item. ok is false for the root and for
// unknown IDs.
func (t *Tree) Parent(id ItemID) (ItemID, bool) {
	p, ok := t.parents[id]
	return p, ok
}

// Select marks the item selected, clears any prior selection, and forces
// every ancestor expanded so the item is visible. Unknown IDs are ignored.
func (t *Tree) Select(id ItemID) {
	item, ok := t.items[id]
	if !ok {
		return
	}
	if prev, ok := t.items[t.selected]; ok {
		prev.Selected = false
	}
	item.Selected = true
	t.selected = id
	t.Reveal(id)
}

// Reveal expands every ancestor of the item, parent-first, walking the
// parent table up to the root.
func (t *Tree) Reveal(id ItemID) {
	var chain []ItemID
	for cur := id; ; {
		p, ok := t.parents[cur]
		if !ok {
			break
		}
		chain = append([]ItemID{p}, chain...)
		cur = p
	}
	for _, a := range chain {
		t.items[a].Expanded = true
	}
}

// Selected returns the currently selected item's ID. ok is false when
// nothing is selected.
func (t *Tree) Selected() (ItemID, bool) {
	if t.selected < 0 {
		return 0, false
	}
	return t.selected, true
}
