package modindex

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

// Entry is one cached module list
type Entry struct {
	Key       string    `msgpack:"key"`
	Modules   []string  `msgpack:"modules"`
	Timestamp time.Time `msgpack:"ts"`
	Version   string    `msgpack:"version"`
}

// Fresh reports whether the entry is younger than ttl. A zero ttl never expires.
func (e *Entry) Fresh(ttl time.Duration, now time.Time) bool {
	return ttl <= 0 || now.Sub(e.Timestamp) < ttl
}

// Cache persists module lists in a msgpack file
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewCache opens the cache stored at path, creating its directory.
// An empty path gives an in-memory cache.
func NewCache(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]*Entry),
	}
	if path == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, derrors.NewCacheError(path, "failed to create cache directory", err)
	}
	if err := c.load(); err != nil && !os.IsNotExist(err) {
		return nil, derrors.NewCacheError(path, "failed to read cache", err)
	}
	return c, nil
}

// Path returns the cache file, empty for an in-memory cache
func (c *Cache) Path() string {
	return c.path
}

// Len returns the number of entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get retrieves an entry
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	return entry, found
}

// Set stores an entry and persists the cache
func (c *Cache) Set(entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Key] = entry
	return c.persist()
}

// Delete removes an entry
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return c.persist()
}

// Clear removes every entry
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	return c.persist()
}

// IsValid checks that key is cached for version and younger than ttl
func (c *Cache) IsValid(key, version string, ttl time.Duration) bool {
	entry, found := c.Get(key)
	if !found {
		return false
	}
	return entry.Version == version && entry.Fresh(ttl, time.Now())
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var entries map[string]*Entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return err
	}
	if entries != nil {
		c.entries = entries
	}
	return nil
}

// persist must be called with mu held
func (c *Cache) persist() error {
	if c.path == "" {
		return nil
	}
	data, err := msgpack.Marshal(c.entries)
	if err != nil {
		return derrors.NewCacheError(c.path, "failed to encode cache", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return derrors.NewCacheError(c.path, "failed to write cache", err)
	}
	return nil
}
