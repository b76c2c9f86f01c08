package ports

import "github.com/corey/treescope/internal/domain/syntax"

// Subscription is a cancelable event registration. Cancel is idempotent;
// after it returns the callback will not fire again.
type Subscription interface {
	Cancel()
}

// EditorSurface is one open document's text editor: it exposes the caret,
// selection control, and change notifications. Callbacks may be invoked
// from any goroutine.
type EditorSurface interface {
	// Path identifies the document backing this surface.
	Path() string

	// CaretOffset returns the current caret position as an absolute offset.
	CaretOffset() int

	// SelectSpan sets the selected range and scrolls it into view. The
	// surface fires its own selection-changed event for this call, exactly
	// as if the user had moved the caret — callers that triggered the
	// selection must suppress the echo themselves.
	SelectSpan(span syntax.Span)

	// OnTextChanged registers a callback for content changes.
	OnTextChanged(fn func()) Subscription

	// OnSelectionChanged registers a callback for caret/selection moves.
	// The callback receives the new caret offset.
	OnSelectionChanged(fn func(caret int)) Subscription
}
