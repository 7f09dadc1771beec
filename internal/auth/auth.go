// Package auth records which directories may run the matcher scripts their
// config names. Trust is bound to the content of the scripts: editing one
// revokes it until the directory is allowed again.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DirAuth stores the trust state of a directory
type DirAuth struct {
	Allowed     bool      `json:"allowed"`
	AllowedAt   time.Time `json:"allowed_at,omitempty"`
	ScriptsHash string    `json:"scripts_hash,omitempty"`
}

// Auth manages trusted directories
type Auth struct {
	path       string
	mu         sync.RWMutex
	authorized map[string]*DirAuth
}

// New creates a new auth manager
func New(path string) (*Auth, error) {
	a := &Auth{
		path:       path,
		authorized: make(map[string]*DirAuth),
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Load existing authorized paths if file exists
	if err := a.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return a, nil
}

// HashScripts computes a deterministic hash of the given scripts' paths and
// contents
func HashScripts(paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00", p)
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the DirAuth structure for a given directory path
func (a *Auth) Get(path string) *DirAuth {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authorized[normalizePath(path)]
}

// Allow trusts the scripts hashed as scriptsHash for a directory
func (a *Auth) Allow(path, scriptsHash string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.authorized[normalizePath(path)] = &DirAuth{
		Allowed:     true,
		AllowedAt:   time.Now(),
		ScriptsHash: scriptsHash,
	}
	return a.persist()
}

// IsAllowed checks if a directory was ever allowed
func (a *Auth) IsAllowed(path string) bool {
	auth := a.Get(path)
	return auth != nil && auth.Allowed
}

// Trusted checks that a directory is allowed for exactly these scripts
func (a *Auth) Trusted(path, scriptsHash string) bool {
	auth := a.Get(path)
	return auth != nil && auth.Allowed && auth.ScriptsHash == scriptsHash
}

// Revoke removes a directory from the authorized list
func (a *Auth) Revoke(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.authorized, normalizePath(path))
	return a.persist()
}

// List returns all authorized directories, sorted
func (a *Auth) List() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	paths := make([]string, 0, len(a.authorized))
	for path := range a.authorized {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Clear removes all authorized directories
func (a *Auth) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.authorized = make(map[string]*DirAuth)
	return a.persist()
}

// load reads authorized directories from disk
func (a *Auth) load() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return err
	}

	var auths map[string]*DirAuth
	if err := json.Unmarshal(data, &auths); err != nil {
		return err
	}

	a.authorized = make(map[string]*DirAuth)
	for path, auth := range auths {
		a.authorized[normalizePath(path)] = auth
	}

	return nil
}

// persist writes authorized directories to disk
func (a *Auth) persist() error {
	data, err := json.MarshalIndent(a.authorized, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.path, data, 0600)
}

// normalizePath removes trailing slashes and cleans the path
func normalizePath(path string) string {
	cleaned := filepath.Clean(path)
	if cleaned == "/" {
		return cleaned
	}
	return strings.TrimSuffix(cleaned, "/")
}
