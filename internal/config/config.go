// Package config handles loading and parsing of compleat configuration files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

//go:embed defaults.yml
var defaultsYAML []byte

// SupportedConfigNames contains supported configuration file names (in order of preference)
var SupportedConfigNames = []string{
	".compleat.yml",
	".compleat.yaml",
	".compleat.toml",
	".compleat.json",
}

const (
	// GlobalConfigName is the name of the global config file
	GlobalConfigName = "config.yml"
)

// Matcher names accepted by disabled and exclusive
var KnownMatchers = []string{
	"global", "attribute", "kwargs", "file", "cd", "shell_line", "alias", "magics", "module",
}

// AttributeConfig tunes attribute completion
type AttributeConfig struct {
	OmitNames  int  `koanf:"omit_names" json:"omit_names" yaml:"omit_names" toml:"omit_names" jsonschema:"enum=0,enum=1,enum=2,description=Hide __dunder__ (1) or all _private (2) attributes right after a dot"`
	LimitToAll bool `koanf:"limit_to_all" json:"limit_to_all" yaml:"limit_to_all" toml:"limit_to_all" jsonschema:"description=Only offer the public names a module declares"`
}

// MagicsConfig lists magic names without their % prefix
type MagicsConfig struct {
	Line []string `koanf:"line" json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty" jsonschema:"description=Line magics (completed as %name)"`
	Cell []string `koanf:"cell" json:"cell,omitempty" yaml:"cell,omitempty" toml:"cell,omitempty" jsonschema:"description=Cell magics (completed as %%name)"`
}

// ModulesConfig drives the module index used by import completion
type ModulesConfig struct {
	Paths       []string `koanf:"paths" json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths,omitempty" jsonschema:"description=Module search paths scanned for importable names"`
	Builtins    []string `koanf:"builtins" json:"builtins,omitempty" yaml:"builtins,omitempty" toml:"builtins,omitempty" jsonschema:"description=Module names compiled into the interpreter"`
	CacheFile   string   `koanf:"cache_file" json:"cache_file,omitempty" yaml:"cache_file,omitempty" toml:"cache_file,omitempty" jsonschema:"description=Where the root module list is cached (default: user cache dir)"`
	CacheTTL    string   `koanf:"cache_ttl" json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty" toml:"cache_ttl,omitempty" jsonschema:"description=Maximum age of the cached module list (Go duration)"`
	ScanTimeout string   `koanf:"scan_timeout" json:"scan_timeout,omitempty" yaml:"scan_timeout,omitempty" toml:"scan_timeout,omitempty" jsonschema:"description=A module scan gives up after this long (Go duration)"`
}

// TTL parses CacheTTL. An empty value gives 0.
func (m ModulesConfig) TTL() (time.Duration, error) {
	return parseDuration(m.CacheTTL)
}

// Timeout parses ScanTimeout. An empty value gives 0.
func (m ModulesConfig) Timeout() (time.Duration, error) {
	return parseDuration(m.ScanTimeout)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Config represents a compleat configuration
type Config struct {
	Greedy     bool            `koanf:"greedy" json:"greedy" yaml:"greedy" toml:"greedy" jsonschema:"description=Use the greedy delimiter profile (only whitespace and equals signs split words)"`
	Delimiters string          `koanf:"delimiters" json:"delimiters,omitempty" yaml:"delimiters,omitempty" toml:"delimiters,omitempty" jsonschema:"description=Custom delimiter characters replacing the active profile"`
	LogLevel   string          `koanf:"log_level" json:"log_level" yaml:"log_level" toml:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFormat  string          `koanf:"log_format" json:"log_format" yaml:"log_format" toml:"log_format" jsonschema:"enum=text,enum=json"`
	Output     string          `koanf:"output" json:"output" yaml:"output" toml:"output" jsonschema:"enum=text,enum=json,enum=yaml,enum=template,description=Output format of the complete command"`
	Template   string          `koanf:"template" json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty" jsonschema:"description=Go template used by the template output (sprig functions available)"`
	Dir        string          `koanf:"dir" json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty" jsonschema:"description=Directory file completion is relative to (default: working directory)"`
	Namespace  string          `koanf:"namespace" json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty" jsonschema:"description=Namespace snapshot file in YAML or TOML or JSON"`
	Keywords   []string        `koanf:"keywords" json:"keywords,omitempty" yaml:"keywords,omitempty" toml:"keywords,omitempty" jsonschema:"description=Language keywords (default: Python keywords)"`
	Aliases    []string        `koanf:"aliases" json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty" jsonschema:"description=System aliases"`
	Attributes AttributeConfig `koanf:"attributes" json:"attributes" yaml:"attributes" toml:"attributes"`
	Magics     MagicsConfig    `koanf:"magics" json:"magics" yaml:"magics" toml:"magics"`
	Modules    ModulesConfig   `koanf:"modules" json:"modules" yaml:"modules" toml:"modules"`
	Scripts    []string        `koanf:"scripts" json:"scripts,omitempty" yaml:"scripts,omitempty" toml:"scripts,omitempty" jsonschema:"description=Lua matcher scripts"`
	Disabled   []string        `koanf:"disabled" json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty" jsonschema:"description=Builtin matchers to leave out"`
	Exclusive  map[string]bool `koanf:"exclusive" json:"exclusive,omitempty" yaml:"exclusive,omitempty" toml:"exclusive,omitempty" jsonschema:"description=Override the exclusive flag of builtin matchers"`
	// IgnoreGlobal makes a local config skip the global one
	IgnoreGlobal bool `koanf:"ignore_global" json:"ignore_global,omitempty" yaml:"ignore_global,omitempty" toml:"ignore_global,omitempty" jsonschema:"description=If true ignore the global config,default=false"`
}

// IsDisabled reports whether the matcher called name is disabled
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Loader loads configuration files on top of the embedded defaults
type Loader struct{}

// New creates a new config loader
func New() *Loader {
	return &Loader{}
}

// Default returns the embedded default configuration
func Default() *Config {
	cfg, err := New().Load()
	if err != nil {
		// defaults.yml is part of the binary
		panic(err)
	}
	return cfg
}

// Load reads the defaults, then each path in order; later files override
// earlier ones key by key.
func (l *Loader) Load(paths ...string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, derrors.NewConfigurationError("<defaults>", "failed to load defaults", err)
	}

	for _, path := range paths {
		parser, err := parserFor(path)
		if err != nil {
			return nil, derrors.NewConfigurationError(path, "unsupported config format", err)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, derrors.NewConfigurationError(path, "failed to load config", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, derrors.NewConfigurationError(strings.Join(paths, ", "), "failed to unmarshal config", err)
	}
	return cfg, nil
}

// LoadFile reads a single file without the defaults
func (l *Loader) LoadFile(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "unsupported config format", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to load config", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to unmarshal config", err)
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// GetGlobalConfigPath returns the path to the global config file
func GetGlobalConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		// Fallback to ~/.config
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, "compleat", GlobalConfigName), nil
}

// FindConfigFiles searches for config files from current dir up to root
// Returns paths in order from root to leaf (for proper merging)
func FindConfigFiles(startDir string) []string {
	var configs []string
	currentDir := startDir

	for {
		for _, name := range SupportedConfigNames {
			path := filepath.Join(currentDir, name)
			if _, err := os.Stat(path); err == nil {
				configs = append(configs, path)
				break // Only one config per directory
			}
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	// Reverse to get root-to-leaf order
	for i, j := 0, len(configs)-1; i < j; i, j = i+1, j-1 {
		configs[i], configs[j] = configs[j], configs[i]
	}
	return configs
}

// LoadHierarchy loads the defaults, the global config and every local config
// from the root down to dir. An explicit path replaces the local search.
// It returns the files that contributed, in load order.
func (l *Loader) LoadHierarchy(dir, explicit string) (*Config, []string, error) {
	var local []string
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, nil, derrors.NewConfigurationError(explicit, "config file not found", err)
		}
		local = []string{explicit}
	} else {
		local = FindConfigFiles(dir)
	}

	// a local ignore_global drops the global file
	ignoreGlobal := false
	for _, path := range local {
		cfg, err := l.LoadFile(path)
		if err != nil {
			return nil, local, err
		}
		if cfg.IgnoreGlobal {
			ignoreGlobal = true
		}
	}

	var files []string
	if !ignoreGlobal {
		if globalPath, err := GetGlobalConfigPath(); err == nil {
			if _, err := os.Stat(globalPath); err == nil {
				files = append(files, globalPath)
			}
		}
	}
	files = append(files, local...)

	cfg, err := l.Load(files...)
	if err != nil {
		return nil, files, err
	}
	return cfg, files, nil
}
