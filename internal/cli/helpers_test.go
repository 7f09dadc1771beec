package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionYAML = `
locals:
  - name: os
    kind: module
    attributes:
      - name: path
        kind: module
      - name: getcwd
        kind: function
  - name: greet
    kind: function
    params:
      - name: who
      - name: loud
        default: false
builtins:
  - name: print
    kind: builtin
  - name: len
    kind: builtin
`

type workspace struct {
	dir       string
	cachePath string
	site      string
}

// newWorkspace isolates a test from the user's global config and caches
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))

	w := &workspace{
		dir:       filepath.Join(root, "project"),
		cachePath: filepath.Join(root, "cache", "modules.msgpack"),
		site:      filepath.Join(root, "site"),
	}
	w.write(t, filepath.Join(w.site, "numpy", "__init__.py"), "")
	w.write(t, filepath.Join(w.site, "numpy", "linalg.py"), "")
	w.write(t, filepath.Join(w.site, "nutshell.py"), "")
	w.write(t, filepath.Join(w.dir, "session.yml"), sessionYAML)
	return w
}

func (w *workspace) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (w *workspace) config(t *testing.T, content string) {
	t.Helper()
	w.write(t, filepath.Join(w.dir, ".compleat.yml"), `namespace: `+filepath.Join(w.dir, "session.yml")+`
modules:
  paths: [`+w.site+`]
`+content)
}

func (w *workspace) params() EngineParams {
	return EngineParams{
		Dir:       w.dir,
		CachePath: w.cachePath,
		LogOutput: io.Discard,
	}
}

func TestInitializeComponents(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	c, err := initializeComponents(w.params())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, w.dir, c.dir)
	assert.Len(t, c.files, 1)
	assert.Equal(t, 4, c.ns.Len())
	assert.Equal(t, w.cachePath, c.cache.Path())
	assert.Equal(t, []string{w.site}, c.index.Paths())

	var names []string
	for _, reg := range c.manager.Matchers() {
		names = append(names, reg.Name)
	}
	assert.Equal(t, []string{
		"module", "cd", "shell_line",
		"magics", "alias", "attribute", "kwargs", "file", "global",
	}, names)
}

func TestInitializeComponents_DisabledAndExclusive(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, `disabled: [magics, alias]
exclusive:
  file: true
  cd: false
`)

	c, err := initializeComponents(w.params())
	require.NoError(t, err)
	defer c.Close()

	got := map[string]bool{}
	var order []string
	for _, reg := range c.manager.Matchers() {
		got[reg.Name] = reg.Exclusive
		order = append(order, reg.Name)
	}
	assert.NotContains(t, got, "magics")
	assert.NotContains(t, got, "alias")
	assert.True(t, got["file"])
	assert.False(t, got["cd"])

	// exclusive matchers run first
	assert.Equal(t, []string{"module", "shell_line", "file"}, order[:3])
}

func TestInitializeComponents_Greedy(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	params := w.params()
	params.Greedy = true
	c, err := initializeComponents(params)
	require.NoError(t, err)
	defer c.Close()
	assert.True(t, c.manager.Greedy())
}

func TestInitializeComponents_Delimiters(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "greedy: true\ndelimiters: \" ,\"\n")

	c, err := initializeComponents(w.params())
	require.NoError(t, err)
	assert.False(t, c.manager.Greedy(), "configured delimiters replace greedy: true")
	set, err := c.manager.Complete(context.Background(), "pri")
	require.NoError(t, err)
	assert.Equal(t, []string{"print"}, set["builtins"])
	c.Close()

	params := w.params()
	params.Greedy = true
	c, err = initializeComponents(params)
	require.NoError(t, err)
	defer c.Close()
	assert.True(t, c.manager.Greedy(), "the greedy flag wins over configured delimiters")
}

func TestInitializeComponents_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing namespace", "namespace: /nonexistent/session.yml\n"},
		{"bad omit policy", "attributes:\n  omit_names: 7\n"},
		{"bad ttl", "modules:\n  cache_ttl: soon\n"},
		{"missing script", "scripts: [/nonexistent/words.lua]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t)
			w.write(t, filepath.Join(w.dir, ".compleat.yml"), tt.content)

			_, err := initializeComponents(w.params())
			assert.Error(t, err)
		})
	}
}

func TestInitializeComponents_UnwritableCache(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	blocker := filepath.Join(t.TempDir(), "file")
	w.write(t, blocker, "")

	params := w.params()
	params.CachePath = filepath.Join(blocker, "modules.msgpack")
	c, err := initializeComponents(params)
	require.NoError(t, err)
	defer c.Close()
	assert.Empty(t, c.cache.Path())
}

func TestDefaultCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, "/tmp/xdg-cache/compleat/modules.msgpack", DefaultCachePath())
}
