// Package bbolt implements a persistent parse cache using bbolt (embedded
// B+ tree). The cache wraps any ports.ParseProvider: a hit serves the stored
// syntax tree without re-parsing, a miss or a stale entry falls through to
// the inner provider and stores the fresh result. Entries are keyed by
// document path and validated against the file's mtime and size. Writes are
// transactional — a crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/treescope/internal/domain/syntax"
	"github.com/corey/treescope/internal/ports"
)

var bucketTrees = []byte("trees")

// entry is the JSON-serialized cache record for one document.
type entry struct {
	ModTime int64        `json:"mtime"` // unix nanos
	Size    int64        `json:"size"`
	Root    *syntax.Node `json:"root"`
}

// Cache decorates a ParseProvider with a bbolt-backed result cache.
type Cache struct {
	db    *bolt.DB
	inner ports.ParseProvider
}

// NewCache opens (or creates) a bbolt database at path and wraps inner.
func NewCache(path string, inner ports.ParseProvider) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTrees)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &Cache{db: db, inner: inner}, nil
}

// Close closes the underlying bbolt database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ParseResult returns the cached syntax tree for path when the file on disk
// is unchanged since the entry was stored, otherwise delegates to the inner
// provider and caches the result. The inner provider's nil, nil contract
// passes through uncached.
func (c *Cache) ParseResult(path string) (*syntax.Node, error) {
	fi, err := os.Stat(path)
	if err != nil {
		// Let the inner provider produce the error; nothing to validate
		// a cache entry against.
		return c.inner.ParseResult(path)
	}

	if root := c.lookup(path, fi.ModTime().UnixNano(), fi.Size()); root != nil {
		return root, nil
	}

	root, err := c.inner.ParseResult(path)
	if err != nil || root == nil {
		return root, err
	}

	if err := c.store(path, fi.ModTime().UnixNano(), fi.Size(), root); err != nil {
		return nil, fmt.Errorf("cache %s: %w", path, err)
	}
	return root, nil
}

// Invalidate drops the cached entry for path. Idempotent.
func (c *Cache) Invalidate(path string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTrees).Delete([]byte(path))
	})
}

// lookup returns the cached tree for path if the entry matches the file's
// current mtime and size, nil otherwise.
func (c *Cache) lookup(path string, mtime, size int64) *syntax.Node {
	var data []byte
	c.db.View(func(tx *bolt.Tx) error {
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := tx.Bucket(bucketTrees).Get([]byte(path)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil // corrupt entry behaves as a miss
	}
	if e.ModTime != mtime || e.Size != size {
		return nil
	}
	return e.Root
}

func (c *Cache) store(path string, mtime, size int64, root *syntax.Node) error {
	data, err := json.Marshal(entry{ModTime: mtime, Size: size, Root: root})
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTrees).Put([]byte(path), data)
	})
}
