package syntax

// Node is one node of a parsed document's syntax tree: a kind label, the
// absolute span it covers, and its children in source order. Nodes are
// immutable once built and owned by the parse result they came from; the
// engine only reads them. Child spans are contained in the parent span and
// siblings are non-overlapping in source order — this mirrors the parse
// tree's own invariant and is assumed, not re-validated, downstream.
type Node struct {
	Kind     string  `json:"kind"`
	Span     Span    `json:"span"`
	Children []*Node `json:"children,omitempty"`
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Walk calls fn for every node in the tree in depth-first source order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
