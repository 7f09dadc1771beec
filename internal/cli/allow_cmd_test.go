package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

const colorsScript = `
function match(req)
  return {colors = {"c_red"}}
end
`

func scriptWorkspace(t *testing.T) (*workspace, string, AllowParams) {
	t.Helper()
	w := newWorkspace(t)
	script := filepath.Join(w.dir, "colors.lua")
	w.write(t, script, colorsScript)
	w.config(t, "scripts: ["+script+"]\n")

	params := w.params()
	params.AuthPath = filepath.Join(t.TempDir(), "authorized.json")
	return w, script, AllowParams{EngineParams: params, Out: &bytes.Buffer{}}
}

func registeredNames(c *components) []string {
	var names []string
	for _, r := range c.manager.Matchers() {
		names = append(names, r.Name)
	}
	return names
}

func TestScriptGating(t *testing.T) {
	w, script, params := scriptWorkspace(t)

	c, err := initializeComponents(params.EngineParams)
	require.NoError(t, err)
	assert.Equal(t, []string{script}, c.blocked)
	assert.Empty(t, c.scripts)
	assert.NotContains(t, registeredNames(c), "colors")
	c.Close()

	require.NoError(t, Allow(params))
	assert.Contains(t, params.Out.(*bytes.Buffer).String(), "Authorized: "+w.dir)

	c, err = initializeComponents(params.EngineParams)
	require.NoError(t, err)
	assert.Empty(t, c.blocked)
	assert.Len(t, c.scripts, 1)
	assert.Contains(t, registeredNames(c), completion.NameOf(c.scripts[0]))
	c.Close()

	// editing a script withdraws the trust
	w.write(t, script, colorsScript+"-- changed\n")
	c, err = initializeComponents(params.EngineParams)
	require.NoError(t, err)
	assert.Equal(t, []string{script}, c.blocked)
	c.Close()
}

func TestScriptGating_ExplicitConfigIsTrusted(t *testing.T) {
	w, _, params := scriptWorkspace(t)
	params.ConfigPath = filepath.Join(w.dir, ".compleat.yml")

	c, err := initializeComponents(params.EngineParams)
	require.NoError(t, err)
	defer c.Close()
	assert.Empty(t, c.blocked)
	assert.Len(t, c.scripts, 1)
}

func TestAllow_AlreadyAuthorized(t *testing.T) {
	w, _, params := scriptWorkspace(t)
	require.NoError(t, Allow(params))

	out := &bytes.Buffer{}
	params.Out = out
	require.NoError(t, Allow(params))
	assert.Equal(t, "Already authorized: "+w.dir+"\n", out.String())
}

func TestAllow_FromSubdirectory(t *testing.T) {
	w, _, params := scriptWorkspace(t)
	sub := filepath.Join(w.dir, "pkg", "inner")
	w.write(t, filepath.Join(sub, "mod.py"), "")
	params.Dir = sub

	require.NoError(t, Allow(params))
	assert.Contains(t, params.Out.(*bytes.Buffer).String(), "Authorized: "+w.dir)
}

func TestAllow_NoLocalConfig(t *testing.T) {
	w := newWorkspace(t)
	params := AllowParams{EngineParams: w.params(), Out: &bytes.Buffer{}}
	params.AuthPath = filepath.Join(t.TempDir(), "authorized.json")

	err := Allow(params)
	require.Error(t, err)
	var authErr *derrors.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestRevoke(t *testing.T) {
	w, script, params := scriptWorkspace(t)
	require.NoError(t, Allow(params))

	out := &bytes.Buffer{}
	params.Out = out
	require.NoError(t, Revoke(params))
	assert.Equal(t, "Revoked: "+w.dir+"\n", out.String())

	c, err := initializeComponents(params.EngineParams)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, []string{script}, c.blocked)
}

func TestList(t *testing.T) {
	w, _, params := scriptWorkspace(t)

	out := &bytes.Buffer{}
	require.NoError(t, List(params.AuthPath, out))
	assert.Equal(t, "No authorized projects\n", out.String())

	require.NoError(t, Allow(params))
	out.Reset()
	require.NoError(t, List(params.AuthPath, out))
	assert.Equal(t, "Authorized projects:\n  "+w.dir+"\n", out.String())
}
