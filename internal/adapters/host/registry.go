// Package host implements ports.DocumentRegistry for an in-process editor
// host. Surfaces register under a document handle with a declared content
// type; Show and Hide drive the window notifications that the lifecycle
// tracker consumes.
package host

import (
	"fmt"
	"sync"

	"github.com/corey/treescope/internal/ports"
)

// Registry is an in-process document registry.
type Registry struct {
	mu       sync.Mutex
	surfaces map[ports.DocumentHandle]ports.EditorSurface
	types    map[ports.DocumentHandle]string
	shown    map[int]func(ports.DocumentHandle)
	hidden   map[int]func(ports.DocumentHandle)
	nextSub  int
}

type subscription struct {
	cancel func()
}

func (s *subscription) Cancel() { s.cancel() }

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		surfaces: make(map[ports.DocumentHandle]ports.EditorSurface),
		types:    make(map[ports.DocumentHandle]string),
		shown:    make(map[int]func(ports.DocumentHandle)),
		hidden:   make(map[int]func(ports.DocumentHandle)),
	}
}

// Register adds a surface under handle with its declared content type.
// Re-registering a handle replaces the previous surface.
func (r *Registry) Register(handle ports.DocumentHandle, surface ports.EditorSurface, contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[handle] = surface
	r.types[handle] = contentType
}

// Unregister removes a handle. Unknown handles are ignored.
func (r *Registry) Unregister(handle ports.DocumentHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, handle)
	delete(r.types, handle)
}

// Show notifies subscribers that the document's window became visible.
func (r *Registry) Show(handle ports.DocumentHandle) {
	for _, fn := range r.snapshot(r.shown) {
		fn(handle)
	}
}

// Hide notifies subscribers that the document's window was hidden.
func (r *Registry) Hide(handle ports.DocumentHandle) {
	for _, fn := range r.snapshot(r.hidden) {
		fn(handle)
	}
}

// Resolve returns the surface and content type registered under handle.
func (r *Registry) Resolve(handle ports.DocumentHandle) (ports.EditorSurface, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	surface, ok := r.surfaces[handle]
	if !ok {
		return nil, "", fmt.Errorf("unknown document %q", handle)
	}
	return surface, r.types[handle], nil
}

// OnDocumentShown subscribes to window-shown notifications.
func (r *Registry) OnDocumentShown(fn func(ports.DocumentHandle)) ports.Subscription {
	return r.subscribe(r.shown, fn)
}

// OnDocumentHidden subscribes to window-hidden notifications.
func (r *Registry) OnDocumentHidden(fn func(ports.DocumentHandle)) ports.Subscription {
	return r.subscribe(r.hidden, fn)
}

func (r *Registry) subscribe(m map[int]func(ports.DocumentHandle), fn func(ports.DocumentHandle)) ports.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	m[id] = fn
	return &subscription{cancel: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(m, id)
	}}
}

func (r *Registry) snapshot(m map[int]func(ports.DocumentHandle)) []func(ports.DocumentHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fns := make([]func(ports.DocumentHandle), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}
