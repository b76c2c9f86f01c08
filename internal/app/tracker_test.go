package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/treescope/internal/ports"
)

// fakeRegistry is an in-memory document registry driven by the test.
type fakeRegistry struct {
	mu       sync.Mutex
	surfaces map[ports.DocumentHandle]ports.EditorSurface
	types    map[ports.DocumentHandle]string
	shown    map[int]func(ports.DocumentHandle)
	hidden   map[int]func(ports.DocumentHandle)
	next     int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		surfaces: make(map[ports.DocumentHandle]ports.EditorSurface),
		types:    make(map[ports.DocumentHandle]string),
		shown:    make(map[int]func(ports.DocumentHandle)),
		hidden:   make(map[int]func(ports.DocumentHandle)),
	}
}

func (r *fakeRegistry) add(h ports.DocumentHandle, s ports.EditorSurface, contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[h] = s
	r.types[h] = contentType
}

func (r *fakeRegistry) show(h ports.DocumentHandle) {
	for _, fn := range r.snapshot(r.shown) {
		fn(h)
	}
}

func (r *fakeRegistry) hide(h ports.DocumentHandle) {
	for _, fn := range r.snapshot(r.hidden) {
		fn(h)
	}
}

func (r *fakeRegistry) snapshot(m map[int]func(ports.DocumentHandle)) []func(ports.DocumentHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fns := make([]func(ports.DocumentHandle), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}

func (r *fakeRegistry) OnDocumentShown(fn func(ports.DocumentHandle)) ports.Subscription {
	return r.subscribe(r.shown, fn)
}

func (r *fakeRegistry) OnDocumentHidden(fn func(ports.DocumentHandle)) ports.Subscription {
	return r.subscribe(r.hidden, fn)
}

func (r *fakeRegistry) subscribe(m map[int]func(ports.DocumentHandle), fn func(ports.DocumentHandle)) ports.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	m[id] = fn
	return &fakeSub{cancel: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(m, id)
	}}
}

func (r *fakeRegistry) Resolve(h ports.DocumentHandle) (ports.EditorSurface, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[h]
	if !ok {
		return nil, "", fmt.Errorf("unknown document %q", h)
	}
	return s, r.types[h], nil
}

func recognizeRazor(contentType string) bool {
	return contentType == "razor"
}

func TestTracker_AttachesRecognizedDocument(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	surface := newFakeSurface("doc.cshtml")
	registry.add("doc.cshtml", surface, "razor")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("doc.cshtml")

	assert.Same(t, surface, c.Attached().(*fakeSurface))
	assert.True(t, c.HasOutline())
}

func TestTracker_IgnoresWrongContentType(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	registry.add("notes.txt", newFakeSurface("notes.txt"), "plaintext")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("notes.txt")

	assert.Nil(t, c.Attached())
	assert.Equal(t, 0, provider.callCount())
}

func TestTracker_IgnoresUnknownHandle(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("ghost.cshtml")
	registry.hide("ghost.cshtml")

	assert.Nil(t, c.Attached())
}

func TestTracker_DuplicateShownIgnoredWhenTreeBuilt(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	surface := newFakeSurface("doc.cshtml")
	registry.add("doc.cshtml", surface, "razor")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("doc.cshtml")
	calls := provider.callCount()

	registry.show("doc.cshtml")
	assert.Equal(t, calls, provider.callCount(), "no refetch while the tree is built")
}

func TestTracker_DuplicateShownRecoversEmptyTree(t *testing.T) {
	provider := &fakeProvider{} // no data on first attach
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	surface := newFakeSurface("doc.cshtml")
	registry.add("doc.cshtml", surface, "razor")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("doc.cshtml")
	require.False(t, c.HasOutline())

	// The parse result becomes available; a repeat shown notification for
	// the same surface retries instead of being dropped.
	provider.setRoot(docTree())
	registry.show("doc.cshtml")

	assert.True(t, c.HasOutline())
}

func TestTracker_HiddenDetaches(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	surface := newFakeSurface("doc.cshtml")
	registry.add("doc.cshtml", surface, "razor")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	defer tracker.Stop()

	registry.show("doc.cshtml")
	registry.hide("doc.cshtml")

	assert.Nil(t, c.Attached())
	assert.Equal(t, 0, surface.subCount())
}

func TestTracker_StopUnsubscribes(t *testing.T) {
	provider := &fakeProvider{root: docTree()}
	c := NewController(provider, nil)
	registry := newFakeRegistry()
	surface := newFakeSurface("doc.cshtml")
	registry.add("doc.cshtml", surface, "razor")

	tracker := NewTracker(registry, c, recognizeRazor)
	tracker.Start()
	tracker.Stop()
	tracker.Stop() // idempotent

	registry.show("doc.cshtml")
	assert.Nil(t, c.Attached())
}
