package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/config"
	"github.com/NikitaCOEUR/compleat/internal/matchers"
	"github.com/NikitaCOEUR/compleat/internal/modindex"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
	"github.com/NikitaCOEUR/compleat/pkg/version"
)

func TestCollect_Empty(t *testing.T) {
	data := Collect(Input{Dir: "/work"})

	assert.Equal(t, "/work", data.CurrentDir)
	assert.Equal(t, version.Version, data.Version)
	assert.Nil(t, data.GlobalConfig)
	assert.Empty(t, data.LocalConfigs)
	assert.Empty(t, data.Matchers)
	assert.Nil(t, data.Namespace)
	assert.Nil(t, data.Modules)
}

func TestCollect_ConfigFiles(t *testing.T) {
	tmpDir := t.TempDir()
	globalPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(globalPath, []byte("greedy: true\n"), 0644))
	localPath := filepath.Join(tmpDir, "project", ".compleat.yml")

	cfg := config.Default()
	cfg.Disabled = []string{"magics"}

	data := Collect(Input{
		Dir:        tmpDir,
		Config:     cfg,
		Files:      []string{localPath},
		GlobalPath: globalPath,
		Blocked:    []string{"/project/colors.lua"},
	})

	require.NotNil(t, data.GlobalConfig)
	assert.True(t, data.GlobalConfig.Exists)
	assert.False(t, data.GlobalConfig.Loaded)
	assert.Equal(t, []ConfigFile{{Path: localPath, Exists: true, Loaded: true}}, data.LocalConfigs)
	assert.Equal(t, []string{"magics"}, data.Disabled)
	assert.Equal(t, []string{"/project/colors.lua"}, data.Blocked)
	assert.Equal(t, "text", data.Output)
}

func TestCollect_MatchersAndNamespace(t *testing.T) {
	script, err := matchers.NewScript("words", "function match(req) return nil end")
	require.NoError(t, err)
	defer script.Close()

	m := completion.NewManager()
	require.NoError(t, m.Register(matchers.NewCDMatcher("")))
	require.NoError(t, m.Register(script))

	ns := namespace.New(
		[]namespace.Object{{Name: "x", Kind: namespace.KindInt}},
		[]namespace.Object{{Name: "len", Kind: namespace.KindBuiltin}, {Name: "print", Kind: namespace.KindBuiltin}},
	)

	data := Collect(Input{Registrations: m.Matchers(), Namespace: ns})

	assert.Equal(t, []MatcherInfo{
		{Name: "cd", Exclusive: true},
		{Name: "words", Script: true},
	}, data.Matchers)
	require.NotNil(t, data.Namespace)
	assert.Equal(t, 1, data.Namespace.Locals)
	assert.Equal(t, 2, data.Namespace.Builtins)
}

func TestCollect_Modules(t *testing.T) {
	tmpDir := t.TempDir()
	site := filepath.Join(tmpDir, "site")
	require.NoError(t, os.MkdirAll(site, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "yaml.py"), nil, 0644))

	cachePath := filepath.Join(tmpDir, "cache", "modules.msgpack")
	cache, err := modindex.NewCache(cachePath)
	require.NoError(t, err)
	ix := modindex.New(modindex.Options{Paths: []string{site}, Cache: cache})

	data := Collect(Input{Index: ix, Cache: cache})
	require.NotNil(t, data.Modules)
	assert.Equal(t, []string{site}, data.Modules.Paths)
	assert.Equal(t, cachePath, data.Modules.CachePath)
	assert.False(t, data.Modules.Cached)

	_, err = ix.Complete(context.Background(), "")
	require.NoError(t, err)

	data = Collect(Input{Index: ix, Cache: cache})
	assert.True(t, data.Modules.Cached)
	assert.True(t, data.Modules.CacheFresh)
	assert.Equal(t, 1, data.Modules.CacheModules)
	assert.Equal(t, 1, data.Modules.CacheEntries)
	assert.Positive(t, data.Modules.CacheSize)
}
