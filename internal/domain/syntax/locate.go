package syntax

// Locate returns the most specific node covering the caret offset, or nil
// when the offset lies outside the root span or the tree is empty.
//
// Children are searched first, in source order, and the first descendant
// match wins; only when no child matches is the node itself tested against
// the inclusive range [Start, End]. Inclusive endpoints make a caret at a
// shared boundary between adjacent siblings ambiguous; child-first,
// source-order-first search resolves it deterministically to the innermost
// match inside the earlier sibling's subtree.
func Locate(root *Node, offset int) *Node {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if match := Locate(child, offset); match != nil {
			return match
		}
	}
	if root.Span.Contains(offset) {
		return root
	}
	return nil
}

// Path returns the chain of nodes from root down to the most specific node
// covering the offset, root first. Returns nil when nothing matches.
func Path(root *Node, offset int) []*Node {
	target := Locate(root, offset)
	if target == nil {
		return nil
	}
	var chain []*Node
	var descend func(n *Node) bool
	descend = func(n *Node) bool {
		if n == target {
			chain = append(chain, n)
			return true
		}
		for _, c := range n.Children {
			if descend(c) {
				chain = append([]*Node{n}, chain...)
				return true
			}
		}
		return false
	}
	descend(root)
	return chain
}
