package status

import (
	"time"
)

// Data contains all the information to display in status
type Data struct {
	// Header
	CurrentDir string
	Version    string

	// Configuration
	GlobalConfig *ConfigFile
	LocalConfigs []ConfigFile

	// Splitting
	Greedy     bool
	Delimiters string
	Output     string

	// Matchers in dispatch order
	Matchers []MatcherInfo
	Disabled []string
	// Scripts left out until their directory is allowed
	Blocked []string

	Namespace *NamespaceInfo
	Modules   *ModulesInfo
}

// ConfigFile describes one file of the hierarchy
type ConfigFile struct {
	Path   string
	Exists bool
	Loaded bool
}

// MatcherInfo describes a registered matcher
type MatcherInfo struct {
	Name      string
	Exclusive bool
	Script    bool
}

// NamespaceInfo summarizes the namespace snapshot
type NamespaceInfo struct {
	Path     string
	Locals   int
	Builtins int
}

// ModulesInfo summarizes the module index and its cache
type ModulesInfo struct {
	Paths        []string
	CachePath    string
	CacheSize    int64
	CacheEntries int
	TTL          time.Duration

	// Set when these search paths have a cached list
	Cached       bool
	CacheFresh   bool
	CacheUpdated time.Time
	CacheModules int
}
