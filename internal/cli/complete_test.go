package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
	"github.com/NikitaCOEUR/compleat/internal/modindex"
	"github.com/NikitaCOEUR/compleat/internal/render"
)

func completeJSON(t *testing.T, w *workspace, text string, cursor int) render.Data {
	t.Helper()
	var out bytes.Buffer
	err := Complete(context.Background(), CompleteParams{
		EngineParams: w.params(),
		Text:         text,
		Cursor:       cursor,
		Output:       render.FormatJSON,
		Out:          &out,
	})
	require.NoError(t, err)

	var data render.Data
	require.NoError(t, json.Unmarshal(out.Bytes(), &data))
	return data
}

func TestComplete_Globals(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	data := completeJSON(t, w, "pri", -1)
	assert.Equal(t, "pri", data.Text)
	assert.Equal(t, []string{"print"}, data.Groups["builtins"])
}

func TestComplete_Attributes(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	data := completeJSON(t, w, "os.", -1)
	assert.Equal(t, []string{"os.getcwd", "os.path"}, data.Groups["attributes"])
}

func TestComplete_ImportIsExclusive(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	data := completeJSON(t, w, "import nu", -1)
	assert.Equal(t, []string{"import"}, data.Kinds)
	assert.Equal(t, []string{"numpy", "nutshell"}, data.Candidates)

	// the scan was persisted
	cache, err := modindex.NewCache(w.cachePath)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestComplete_Cursor(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	data := completeJSON(t, w, "len(greet(", 3)
	assert.Equal(t, []string{"len"}, data.Groups["builtins"])
	assert.Empty(t, data.Groups["kwargs"])

	err := Complete(context.Background(), CompleteParams{
		EngineParams: w.params(),
		Text:         "abc",
		Cursor:       10,
		Out:          &bytes.Buffer{},
	})
	var contractErr *derrors.ContractError
	assert.ErrorAs(t, err, &contractErr)
}

func TestComplete_KeywordArguments(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	data := completeJSON(t, w, "greet(lo", -1)
	assert.Equal(t, []string{"loud="}, data.Groups["kwargs"])
}

func TestComplete_Script(t *testing.T) {
	w := newWorkspace(t)
	script := filepath.Join(w.dir, "colors.lua")
	w.write(t, script, `
exclusive = true
function match(req)
  if string.sub(req.word, 1, 2) ~= "c_" then
    return nil
  end
  return {colors = {"c_red", "c_green"}}
end
`)
	w.config(t, "scripts: ["+script+"]\n")

	data := completeJSON(t, w, "paint(c_", -1)
	assert.Equal(t, []string{"colors"}, data.Kinds)
	assert.Equal(t, []string{"c_green", "c_red"}, data.Candidates)

	// other words fall through to the builtin matchers
	data = completeJSON(t, w, "pri", -1)
	assert.Equal(t, []string{"print"}, data.Groups["builtins"])
}

func TestComplete_ConfiguredOutput(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, `output: template
template: '{{ .Candidates | join " " }}'
`)

	var out bytes.Buffer
	err := Complete(context.Background(), CompleteParams{
		EngineParams: w.params(),
		Text:         "os.",
		Cursor:       -1,
		Out:          &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "os.getcwd os.path", out.String())

	// a flag overrides the configured format
	out.Reset()
	err = Complete(context.Background(), CompleteParams{
		EngineParams: w.params(),
		Text:         "os.",
		Cursor:       -1,
		Output:       render.FormatText,
		Out:          &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "os.getcwd\nos.path\n", out.String())
}

func TestComplete_Greedy(t *testing.T) {
	w := newWorkspace(t)
	w.config(t, "")

	params := w.params()
	params.Greedy = true
	var out bytes.Buffer
	err := Complete(context.Background(), CompleteParams{
		EngineParams: params,
		Text:         "print(le",
		Cursor:       -1,
		Output:       render.FormatJSON,
		Out:          &out,
	})
	require.NoError(t, err)

	var data render.Data
	require.NoError(t, json.Unmarshal(out.Bytes(), &data))
	// the whole "print(le" is one word, no builtin starts with it
	assert.Empty(t, data.Groups["builtins"])
}

func TestReadBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"os.pa\n", "os.pa"},
		{"os.pa\r\n", "os.pa"},
		{"def f():\n    ret\n", "def f():\n    ret"},
		{"x \n\n", "x \n"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := ReadBlock(strings.NewReader(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
