// Package modindex lists importable modules. Root module names are scanned
// from search paths, indexed in a prefix trie and cached on disk so that
// the first completion after a restart does not rescan everything.
package modindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/NikitaCOEUR/compleat/internal/logger"
	"github.com/NikitaCOEUR/compleat/pkg/version"
)

// Defaults used when Options leaves a field zero
const (
	DefaultScanTimeout = 20 * time.Second
	DefaultTTL         = 24 * time.Hour
)

// ErrScanTimeout is reported when a scan gave up before visiting every path
var ErrScanTimeout = errors.New("module scan timed out")

// Options configures an Index
type Options struct {
	// Paths are the module search paths, in order
	Paths []string
	// Builtins are module names compiled into the interpreter
	Builtins []string
	// Cache persists root module lists; nil disables persistence
	Cache *Cache
	// TTL bounds the age of a cached list. Negative disables expiry.
	TTL time.Duration
	// ScanTimeout bounds a full scan of Paths
	ScanTimeout time.Duration
	Logger      *logger.Logger
}

// Index answers prefix queries over root module names
type Index struct {
	opts Options
	key  string
	log  *logger.Logger

	mu     sync.Mutex
	trie   *patricia.Trie
	loaded bool
}

// New creates an index. Nothing is scanned until the first query.
func New(opts Options) *Index {
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = DefaultScanTimeout
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Index{
		opts: opts,
		key:  cacheKey(opts.Paths, opts.Builtins),
		log:  log,
		trie: patricia.NewTrie(),
	}
}

// Paths returns the search paths
func (ix *Index) Paths() []string {
	return append([]string(nil), ix.opts.Paths...)
}

// TTL returns the maximum age of a cached list
func (ix *Index) TTL() time.Duration {
	return ix.opts.TTL
}

// CacheEntry returns the persisted list for these search paths, if any
func (ix *Index) CacheEntry() (*Entry, bool) {
	if ix.opts.Cache == nil {
		return nil, false
	}
	return ix.opts.Cache.Get(ix.key)
}

// Complete returns the root modules starting with prefix, sorted. An empty
// prefix lists every root module.
func (ix *Index) Complete(ctx context.Context, prefix string) ([]string, error) {
	if err := ix.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	var names []string
	collect := func(p patricia.Prefix, _ patricia.Item) error {
		names = append(names, string(p))
		return nil
	}
	if prefix == "" {
		_ = ix.trie.Visit(collect)
	} else {
		_ = ix.trie.VisitSubtree(patricia.Prefix(prefix), collect)
	}
	sort.Strings(names)
	return names, nil
}

// Submodules lists the modules inside the package mod. It returns nil when
// mod is not a package on the search paths.
func (ix *Index) Submodules(ctx context.Context, mod string) []string {
	dir, ok := PackageDir(ix.opts.Paths, mod)
	if !ok {
		return nil
	}
	return ModuleList(ctx, dir)
}

// Rehash forgets the cached list; the next query rescans
func (ix *Index) Rehash() error {
	ix.mu.Lock()
	ix.trie = patricia.NewTrie()
	ix.loaded = false
	ix.mu.Unlock()

	if ix.opts.Cache == nil {
		return nil
	}
	return ix.opts.Cache.Delete(ix.key)
}

func (ix *Index) ensureLoaded(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loaded {
		return nil
	}

	cache := ix.opts.Cache
	if cache != nil && cache.IsValid(ix.key, version.Version, ix.opts.TTL) {
		entry, _ := cache.Get(ix.key)
		ix.fill(entry.Modules)
		ix.log.Debug().Int("modules", len(entry.Modules)).Msg("Loaded root modules from cache")
		return nil
	}

	modules, err := ix.scan(ctx)
	if errors.Is(err, ErrScanTimeout) {
		if cache != nil {
			if stale, ok := cache.Get(ix.key); ok {
				ix.log.Warn().Int("modules", len(stale.Modules)).Msg("Module scan gave up, using stale cache")
				ix.fill(stale.Modules)
				return nil
			}
		}
		ix.log.Warn().Int("modules", len(modules)).Msg("Module scan gave up, list is partial")
		ix.fill(modules)
		return nil
	}
	if err != nil {
		return err
	}

	ix.fill(modules)
	if cache != nil {
		entry := &Entry{Key: ix.key, Modules: modules, Timestamp: time.Now(), Version: version.Version}
		if err := cache.Set(entry); err != nil {
			ix.log.Warn().Err(err).Msg("Failed to persist module cache")
		}
	}
	return nil
}

// scan walks every search path. On timeout it returns what it found along
// with ErrScanTimeout.
func (ix *Index) scan(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ix.opts.ScanTimeout)
	defer cancel()

	start := time.Now()
	seen := make(map[string]struct{})
	for _, name := range ix.opts.Builtins {
		seen[name] = struct{}{}
	}
	for _, path := range ix.opts.Paths {
		if ctx.Err() != nil {
			break
		}
		for _, name := range ModuleList(ctx, path) {
			seen[name] = struct{}{}
		}
	}
	delete(seen, "__init__")

	modules := make([]string, 0, len(seen))
	for name := range seen {
		modules = append(modules, name)
	}
	sort.Strings(modules)

	ix.log.Debug().
		Int("paths", len(ix.opts.Paths)).
		Int("modules", len(modules)).
		Dur("took_ms", time.Since(start)).
		Msg("Scanned root modules")

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return modules, ErrScanTimeout
		}
		return nil, err
	}
	return modules, nil
}

// fill must be called with mu held
func (ix *Index) fill(modules []string) {
	ix.trie = patricia.NewTrie()
	for _, name := range modules {
		ix.trie.Insert(patricia.Prefix(name), struct{}{})
	}
	ix.loaded = true
}

func cacheKey(paths, builtins []string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(paths, "\x00")))
	h.Write([]byte{0xff})
	h.Write([]byte(strings.Join(builtins, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
