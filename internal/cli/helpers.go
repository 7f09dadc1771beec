package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/auth"
	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/config"
	"github.com/NikitaCOEUR/compleat/internal/derrors"
	"github.com/NikitaCOEUR/compleat/internal/logger"
	"github.com/NikitaCOEUR/compleat/internal/matchers"
	"github.com/NikitaCOEUR/compleat/internal/modindex"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
	"github.com/NikitaCOEUR/compleat/internal/splitter"
)

// EngineParams locates the configuration a command runs with
type EngineParams struct {
	// Dir is where local configs are searched and files are completed
	Dir string
	// ConfigPath replaces the local config search when set
	ConfigPath string
	// LogLevel overrides the configured level when set
	LogLevel string
	// Greedy forces the greedy profile on
	Greedy bool
	// CachePath is the module cache used when the config names none
	CachePath string
	// AuthPath holds trusted directories. When set, scripts named by a local
	// config only load once their directory is allowed.
	AuthPath string
	// LogOutput receives log lines (stderr when nil)
	LogOutput io.Writer
}

// components holds initialized compleat components
type components struct {
	config     *config.Config
	files      []string
	globalPath string
	dir        string

	log     *logger.Logger
	ns      *namespace.Namespace
	cache   *modindex.Cache
	index   *modindex.Index
	manager *completion.Manager
	scripts []*matchers.ScriptMatcher
	// blocked lists scripts left out because they are not trusted
	blocked []string
}

// exclusivitySetter is implemented by every builtin matcher
type exclusivitySetter interface {
	completion.Matcher
	SetExclusive(bool)
}

// initializeComponents loads the configuration and assembles the engine
func initializeComponents(params EngineParams) (*components, error) {
	dir := params.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	cfg, files, err := config.New().LoadHierarchy(dir, params.ConfigPath)
	if err != nil {
		return nil, err
	}
	globalPath, _ := config.GetGlobalConfigPath()

	level := cfg.LogLevel
	if params.LogLevel != "" {
		level = params.LogLevel
	}
	log := logger.NewWithFormat(level, cfg.LogFormat, params.LogOutput)
	log.Debug().Strs("files", files).Msg("Configuration loaded")

	c := &components{
		config:     cfg,
		files:      files,
		globalPath: globalPath,
		dir:        dir,
		log:        log,
	}
	if cfg.Dir != "" {
		c.dir = cfg.Dir
	}

	if err := c.loadNamespace(); err != nil {
		return nil, err
	}
	if err := c.openIndex(params.CachePath); err != nil {
		return nil, err
	}
	if err := c.buildManager(params); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *components) loadNamespace() error {
	if c.config.Namespace == "" {
		c.ns = namespace.Empty()
		return nil
	}
	ns, err := namespace.Load(c.config.Namespace)
	if err != nil {
		return err
	}
	c.log.Debug().
		Str("path", c.config.Namespace).
		Int("names", ns.Len()).
		Msg("Namespace loaded")
	c.ns = ns
	return nil
}

func (c *components) openIndex(defaultCachePath string) error {
	modules := c.config.Modules

	ttl, err := modules.TTL()
	if err != nil {
		return fmt.Errorf("invalid modules.cache_ttl: %w", err)
	}
	timeout, err := modules.Timeout()
	if err != nil {
		return fmt.Errorf("invalid modules.scan_timeout: %w", err)
	}

	cachePath := modules.CacheFile
	if cachePath == "" {
		cachePath = defaultCachePath
	}
	cache, err := modindex.NewCache(cachePath)
	if err != nil {
		// import completion still works without persistence
		c.log.Warn().Err(err).Str("path", cachePath).Msg("Module cache unavailable")
		cache, _ = modindex.NewCache("")
	}
	c.cache = cache

	c.index = modindex.New(modindex.Options{
		Paths:       modules.Paths,
		Builtins:    modules.Builtins,
		Cache:       cache,
		TTL:         ttl,
		ScanTimeout: timeout,
		Logger:      c.log.With("component", "modindex"),
	})
	return nil
}

func (c *components) buildManager(params EngineParams) error {
	cfg := c.config

	opts := []completion.Option{
		completion.WithLogger(c.log),
		completion.WithGreedy(cfg.Greedy || params.Greedy),
	}
	m := completion.NewManager(opts...)
	// --greedy beats configured delimiters, which beat greedy: true
	if cfg.Delimiters != "" && !params.Greedy {
		if cfg.Greedy {
			c.log.Warn().
				Str("delimiters", cfg.Delimiters).
				Msg("Custom delimiters replace the greedy profile")
		}
		m.SetDelimiters(splitter.NewDelimiterSet(cfg.Delimiters))
	}

	attribute, err := matchers.NewAttributeMatcher(c.ns, cfg.Attributes.OmitNames, cfg.Attributes.LimitToAll)
	if err != nil {
		return err
	}

	builtins := []exclusivitySetter{
		matchers.NewModuleMatcher(c.index, c.ns),
		matchers.NewCDMatcher(c.dir),
		matchers.NewShellLineMatcher(c.dir, cfg.Aliases, c.ns),
		matchers.NewMagicsMatcher(cfg.Magics.Line, cfg.Magics.Cell),
		matchers.NewAliasMatcher(cfg.Aliases),
		attribute,
		matchers.NewKeywordArgMatcher(c.ns),
		matchers.NewFileMatcher(c.dir),
		matchers.NewGlobalMatcher(c.ns, cfg.Keywords),
	}
	for _, matcher := range builtins {
		name := completion.NameOf(matcher)
		if cfg.IsDisabled(name) {
			c.log.Debug().Str("matcher", name).Msg("Matcher disabled")
			continue
		}
		if err := m.Register(matcher); err != nil {
			return err
		}
		if exclusive, ok := cfg.Exclusive[name]; ok && exclusive != matcher.Exclusive() {
			matcher.SetExclusive(exclusive)
			if err := m.NotifyExclusivityChanged(matcher); err != nil {
				return err
			}
		}
	}

	trusted, err := c.scriptsTrusted(params)
	if err != nil {
		return err
	}
	if !trusted {
		c.blocked = append([]string(nil), cfg.Scripts...)
		c.log.Warn().
			Strs("scripts", cfg.Scripts).
			Msg("Matcher scripts are not trusted, run 'compleat allow' to enable them")
	} else if err := c.loadScripts(m); err != nil {
		return err
	}

	c.manager = m
	return nil
}

func (c *components) loadScripts(m *completion.Manager) error {
	for _, path := range c.config.Scripts {
		script, err := matchers.LoadScript(path)
		if err != nil {
			return err
		}
		c.scripts = append(c.scripts, script)
		if err := m.Register(script); err != nil {
			return err
		}
	}
	return nil
}

// scriptsTrusted reports whether the configured scripts may run
func (c *components) scriptsTrusted(params EngineParams) (bool, error) {
	if len(c.config.Scripts) == 0 || params.AuthPath == "" {
		return true, nil
	}
	dir, ok := trustDir(c.files, c.globalPath, params.ConfigPath)
	if !ok {
		return true, nil
	}

	hash, err := auth.HashScripts(c.config.Scripts)
	if err != nil {
		return false, derrors.NewScriptError(strings.Join(c.config.Scripts, ", "), "failed to read scripts", err)
	}
	a, err := auth.New(params.AuthPath)
	if err != nil {
		return false, derrors.NewAuthorizationError(dir, "failed to initialize auth", err)
	}
	return a.Trusted(dir, hash), nil
}

// trustDir returns the directory whose trust gates the scripts: the one of
// the deepest local config. Scripts from the global config or from an
// explicit config are always trusted.
func trustDir(files []string, globalPath, explicit string) (string, bool) {
	if explicit != "" {
		return "", false
	}
	for i := len(files) - 1; i >= 0; i-- {
		if files[i] != globalPath {
			return filepath.Dir(files[i]), true
		}
	}
	return "", false
}

// Close releases the script interpreters
func (c *components) Close() {
	for _, s := range c.scripts {
		s.Close()
	}
	c.scripts = nil
}

// DefaultAuthPath returns the trust store under the XDG data directory
func DefaultAuthPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "compleat", "authorized.json")
}

// DefaultCachePath returns the module cache under the XDG cache directory
func DefaultCachePath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, _ := os.UserHomeDir()
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "compleat", "modules.msgpack")
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
