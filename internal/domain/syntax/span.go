// Package syntax holds the position-indexed view of a parsed document:
// spans, immutable syntax nodes, and offset-based node lookup. It is pure
// data and traversal — parsing itself lives in internal/adapters/treesitter.
package syntax

import "fmt"

// Span identifies a contiguous range of source text by absolute byte offset.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int {
	return s.Start + s.Length
}

// Contains reports whether the caret offset falls inside the span.
// Both endpoints are inclusive, so a caret exactly at a node boundary
// matches that node. Zero-width spans match only their exact offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End()
}

// String renders the span as a half-open interval, e.g. "[2..14)".
func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}
