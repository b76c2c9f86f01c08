package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/treescope/internal/domain/syntax"
)

// countingProvider returns a fixed tree and counts how often it is asked.
type countingProvider struct {
	mu    sync.Mutex
	root  *syntax.Node
	err   error
	calls int
}

func (p *countingProvider) ParseResult(path string) (*syntax.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.root, p.err
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func sampleTree() *syntax.Node {
	return &syntax.Node{
		Kind: "source_file",
		Span: syntax.Span{Start: 0, Length: 16},
		Children: []*syntax.Node{
			{Kind: "comment", Span: syntax.Span{Start: 0, Length: 7}},
		},
	}
}

func newTestCache(t *testing.T, inner *countingProvider) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := NewCache(filepath.Join(dir, "cache.db"), inner)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	doc := filepath.Join(dir, "doc.go")
	require.NoError(t, os.WriteFile(doc, []byte("package x\n"), 0o644))
	return c, doc
}

func TestCache_SecondReadServedFromCache(t *testing.T) {
	inner := &countingProvider{root: sampleTree()}
	c, doc := newTestCache(t, inner)

	first, err := c.ParseResult(doc)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, inner.callCount())

	second, err := c.ParseResult(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.callCount(), "unchanged file must not re-parse")
	assert.Equal(t, first, second)
	assert.Equal(t, "comment", second.Children[0].Kind)
}

func TestCache_StaleEntryReparses(t *testing.T) {
	inner := &countingProvider{root: sampleTree()}
	c, doc := newTestCache(t, inner)

	_, err := c.ParseResult(doc)
	require.NoError(t, err)

	// Grow the file and push mtime forward so the entry is stale.
	require.NoError(t, os.WriteFile(doc, []byte("package x\n\nvar y int\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(doc, future, future))

	_, err = c.ParseResult(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestCache_InvalidateForcesReparse(t *testing.T) {
	inner := &countingProvider{root: sampleTree()}
	c, doc := newTestCache(t, inner)

	_, err := c.ParseResult(doc)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(doc))

	_, err = c.ParseResult(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestCache_NoDataPassesThroughUncached(t *testing.T) {
	inner := &countingProvider{} // nil, nil: no parse result
	c, doc := newTestCache(t, inner)

	root, err := c.ParseResult(doc)
	assert.NoError(t, err)
	assert.Nil(t, root)

	root, err = c.ParseResult(doc)
	assert.NoError(t, err)
	assert.Nil(t, root)
	assert.Equal(t, 2, inner.callCount(), "nil results are never cached")
}

func TestCache_InnerErrorNotCached(t *testing.T) {
	inner := &countingProvider{err: fmt.Errorf("parser unavailable")}
	c, doc := newTestCache(t, inner)

	_, err := c.ParseResult(doc)
	assert.Error(t, err)

	_, err = c.ParseResult(doc)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestCache_MissingFileDelegates(t *testing.T) {
	inner := &countingProvider{root: sampleTree()}
	c, _ := newTestCache(t, inner)

	root, err := c.ParseResult(filepath.Join(t.TempDir(), "gone.go"))
	require.NoError(t, err)
	assert.NotNil(t, root)
	assert.Equal(t, 1, inner.callCount())
}

func TestCache_SurvivesReopen(t *testing.T) {
	inner := &countingProvider{root: sampleTree()}
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cache.db")
	doc := filepath.Join(dir, "doc.go")
	require.NoError(t, os.WriteFile(doc, []byte("package x\n"), 0o644))

	c, err := NewCache(dbPath, inner)
	require.NoError(t, err)
	_, err = c.ParseResult(doc)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c2, err := NewCache(dbPath, inner)
	require.NoError(t, err)
	defer c2.Close()

	root, err := c2.ParseResult(doc)
	require.NoError(t, err)
	assert.NotNil(t, root)
	assert.Equal(t, 1, inner.callCount(), "entry persists across reopen")
}
