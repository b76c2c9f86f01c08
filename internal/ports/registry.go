package ports

// DocumentHandle is the host's opaque key for an open document window.
type DocumentHandle string

// DocumentRegistry is the host's open-document registry. It reports window
// shown/hidden notifications keyed by document handle and resolves a handle
// back to an editor surface plus its declared content type.
type DocumentRegistry interface {
	// OnDocumentShown registers a callback for window-shown notifications.
	OnDocumentShown(fn func(handle DocumentHandle)) Subscription

	// OnDocumentHidden registers a callback for window-hidden notifications.
	OnDocumentHidden(fn func(handle DocumentHandle)) Subscription

	// Resolve maps a handle to its editor surface and content type.
	// Returns an error for handles the registry does not know.
	Resolve(handle DocumentHandle) (EditorSurface, string, error)
}
