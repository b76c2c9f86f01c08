// Package fsnotify implements ports.EditorSurface for a document backed by a
// file on disk, using github.com/fsnotify/fsnotify. External writes to the
// file surface as text-changed events, debounced because editors often
// trigger multiple writes per save. Caret moves and span selections are
// driven programmatically (by the TUI or by tests) and fan out to
// selection-changed subscribers synchronously.
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/treescope/internal/domain/syntax"
	"github.com/corey/treescope/internal/ports"
)

const debounceInterval = 50 * time.Millisecond

// Surface is a disk-backed editor surface for a single document.
type Surface struct {
	path string
	fw   *fsnotify.Watcher
	done chan struct{}

	mu        sync.Mutex
	text      []byte
	caret     int
	selection syntax.Span
	hasSel    bool
	textFns   map[int]func()
	selFns    map[int]func(caret int)
	nextSub   int
	stopped   bool
}

type subscription struct {
	cancel func()
}

func (s *subscription) Cancel() { s.cancel() }

// Open creates a surface for the document at path and starts watching the
// file for external modifications.
func Open(path string) (*Surface, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: editors that save via rename would
	// otherwise drop the watch.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	s := &Surface{
		path:    abs,
		fw:      fw,
		done:    make(chan struct{}),
		text:    text,
		textFns: make(map[int]func()),
		selFns:  make(map[int]func(caret int)),
	}
	go s.watch()
	return s, nil
}

// Path returns the absolute path of the backing file.
func (s *Surface) Path() string { return s.path }

// Text returns the current document text.
func (s *Surface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.text)
}

// Len returns the document length in bytes.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.text)
}

// CaretOffset returns the current caret position as a byte offset.
func (s *Surface) CaretOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caret
}

// MoveCaret places the caret at offset, clamped to the document, and fires
// selection-changed. The span selection, if any, collapses.
func (s *Surface) MoveCaret(offset int) {
	s.mu.Lock()
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	s.caret = offset
	s.hasSel = false
	fns := s.selSnapshot()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(offset)
	}
}

// SelectSpan selects the given byte range, places the caret at its start,
// and fires selection-changed — programmatic selection is indistinguishable
// from a user selection to subscribers.
func (s *Surface) SelectSpan(span syntax.Span) {
	s.mu.Lock()
	s.selection = span
	s.hasSel = true
	s.caret = span.Start
	fns := s.selSnapshot()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(span.Start)
	}
}

// Selection returns the active span selection, if any.
func (s *Surface) Selection() (syntax.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection, s.hasSel
}

// OnTextChanged subscribes to document text changes.
func (s *Surface) OnTextChanged(fn func()) ports.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.textFns[id] = fn
	return &subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.textFns, id)
	}}
}

// OnSelectionChanged subscribes to caret and selection changes.
func (s *Surface) OnSelectionChanged(fn func(caret int)) ports.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.selFns[id] = fn
	return &subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.selFns, id)
	}}
}

// Close stops watching the backing file. Safe to call multiple times.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	return s.fw.Close()
}

// selSnapshot copies the selection subscribers. Caller holds s.mu.
func (s *Surface) selSnapshot() []func(caret int) {
	fns := make([]func(caret int), 0, len(s.selFns))
	for _, fn := range s.selFns {
		fns = append(fns, fn)
	}
	return fns
}

// watch consumes fsnotify events for the backing file, debouncing rapid
// write bursts, and reloads the text on each settled change.
func (s *Surface) watch() {
	var last time.Time
	for {
		select {
		case event, ok := <-s.fw.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			now := time.Now()
			if now.Sub(last) < debounceInterval {
				continue
			}
			last = now
			s.reload()

		case _, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			// Errors are swallowed — fsnotify recovers automatically

		case <-s.done:
			return
		}
	}
}

// reload re-reads the backing file and fires text-changed. The caret clamps
// to the new length.
func (s *Surface) reload() {
	text, err := os.ReadFile(s.path)
	if err != nil {
		return // transient mid-save state, next event retries
	}

	s.mu.Lock()
	s.text = text
	if s.caret > len(text) {
		s.caret = len(text)
	}
	s.hasSel = false
	fns := make([]func(), 0, len(s.textFns))
	for _, fn := range s.textFns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
