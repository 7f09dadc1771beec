package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/compleat/internal/completion"
)

func sample() Data {
	return NewData("os.pa", "req-1", completion.CompletionSet{
		"attributes": {"os.path", "os.pardir"},
		"keywords":   {"pass"},
	})
}

func TestNewData(t *testing.T) {
	data := sample()
	assert.Equal(t, []string{"attributes", "keywords"}, data.Kinds)
	assert.Equal(t, []string{"os.pardir", "os.path", "pass"}, data.Candidates)

	empty := NewData("", "", nil)
	assert.Equal(t, []string{}, empty.Kinds)
	assert.Equal(t, []string{}, empty.Candidates)
	assert.NotNil(t, empty.Groups)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{}))
	assert.Equal(t, "os.pardir\nos.path\npass\n", buf.String())
}

func TestWrite_TextGrouped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{Format: FormatText, Group: true}))
	out := buf.String()
	assert.Contains(t, out, "attributes")
	assert.Contains(t, out, "(2)")
	assert.Contains(t, out, "os.path")

	buf.Reset()
	require.NoError(t, Write(&buf, NewData("", "", nil), Options{Group: true}))
	assert.Contains(t, buf.String(), "No completions")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{Format: FormatJSON}))

	var got Data
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{Format: FormatYAML}))

	var got Data
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"pass"}, got.Groups["keywords"])
	assert.Equal(t, "os.pa", got.Text)
}

func TestWrite_Template(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Format:   FormatTemplate,
		Template: `{{ .Candidates | join "," | upper }}`,
	}
	require.NoError(t, Write(&buf, sample(), opts))
	assert.Equal(t, "OS.PARDIR,OS.PATH,PASS", buf.String())
}

func TestWrite_TemplateErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sample(), Options{Format: FormatTemplate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty output template")

	err = Write(&buf, sample(), Options{Format: FormatTemplate, Template: "{{ .Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output template")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sample(), Options{Format: "csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
