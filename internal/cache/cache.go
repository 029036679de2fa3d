// Package cache keeps compiled pages keyed by their source and settings.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// Key describes everything a compiled page depends on.
type Key struct {
	Source    string
	Format    string
	Raw       bool
	Strict    bool
	Smileys   []markup.Smiley
	InterWiki map[string]string
	Shortcuts map[string]string
	BaseURL   string
	Domain    string
	// Pages lists the existing pages when existence decides link classes.
	Pages   []string
	Version string
}

// Hash returns the cache key for k.
func (k Key) Hash() (string, error) {
	h, err := hashstructure.Hash(k, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing cache key: %w", err)
	}
	return strconv.FormatUint(h, 16), nil
}

// Cache stores compiled pages in memory and, when a directory is set, on
// disk. It is safe for concurrent use.
type Cache struct {
	dir string

	mu      sync.RWMutex
	entries map[string]markup.Compiled
}

// New returns a cache writing to dir. An empty dir keeps entries in memory
// only.
func New(dir string) *Cache {
	return &Cache{dir: dir, entries: map[string]markup.Compiled{}}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".wmc")
}

// Get returns the compiled page for key.
func (c *Cache) Get(key string) (markup.Compiled, bool, error) {
	c.mu.RLock()
	compiled, ok := c.entries[key]
	c.mu.RUnlock()
	if ok || c.dir == "" {
		return compiled, ok, nil
	}

	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	compiled = markup.Compiled(data)
	if _, err := compiled.Format(); err != nil {
		// Corrupt entries are treated as misses and overwritten later.
		return nil, false, nil
	}

	c.mu.Lock()
	c.entries[key] = compiled
	c.mu.Unlock()
	return compiled, true, nil
}

// Put stores compiled under key.
func (c *Cache) Put(key string, compiled markup.Compiled) error {
	c.mu.Lock()
	c.entries[key] = compiled
	c.mu.Unlock()
	if c.dir == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(compiled); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry, including those on disk.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = map[string]markup.Compiled{}
	c.mu.Unlock()
	if c.dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.wmc"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}
