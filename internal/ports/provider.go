// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries between the synchronization engine and its host:
// the parse provider, the editor surface, and the document registry. Domain
// logic depends only on these interfaces, never on concrete implementations.
package ports

import "github.com/corey/treescope/internal/domain/syntax"

// ParseProvider supplies the syntax tree for a document. The concrete
// implementation (tree-sitter) lives in internal/adapters/treesitter; the
// bbolt adapter wraps any ParseProvider with a parse cache.
type ParseProvider interface {
	// ParseResult returns the root of the document's current syntax tree.
	// Returns nil, nil when no result is available yet (unrecognized
	// document, parse pending) — not an error. May be slow; callers must
	// not rebuild from a completion that a newer request has superseded.
	ParseResult(path string) (*syntax.Node, error)
}
