package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(result *ValidationResult) []string {
	var out []string
	for _, e := range result.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestValidate_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	script := filepath.Join(tmpDir, "words.lua")
	writeFile(t, script, "function match(req) return {} end\n")

	configPath := filepath.Join(tmpDir, ".compleat.yml")
	writeFile(t, configPath, `
greedy: true
output: template
template: "{{ range .Candidates }}{{ . }}{{ end }}"
scripts: [`+script+`]
disabled: [magics]
exclusive:
  file: true
`)

	result, err := Validate(configPath)
	require.NoError(t, err)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestValidate_FileNotFound(t *testing.T) {
	_, err := Validate("/nonexistent/.compleat.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestValidate_InvalidSyntax(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".compleat.yml")
	writeFile(t, configPath, "aliases: [ls\n")

	result, err := Validate(configPath)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"syntax"}, fields(result))
}

func TestValidate_SchemaErrorsStopEarly(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".compleat.yml")
	writeFile(t, configPath, "greedy: maybe\nscripts: [/missing.lua]\n")

	result, err := Validate(configPath)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotContains(t, fields(result), "scripts/0")
}

func TestValidate_TemplateRequired(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".compleat.yml")
	writeFile(t, configPath, "output: template\n")

	result, err := Validate(configPath)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"template"}, fields(result))
}

func TestValidate_MissingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".compleat.yml")
	writeFile(t, configPath, `
namespace: `+filepath.Join(tmpDir, "session.yml")+`
scripts: [`+filepath.Join(tmpDir, "a.lua")+`]
`)

	result, err := Validate(configPath)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []string{"namespace", "scripts/0"}, fields(result))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"output", func(c *Config) { c.Output = "csv" }, "output"},
		{"omit names", func(c *Config) { c.Attributes.OmitNames = 3 }, "attributes/omit_names"},
		{"cache ttl", func(c *Config) { c.Modules.CacheTTL = "soon" }, "modules/cache_ttl"},
		{"negative ttl", func(c *Config) { c.Modules.CacheTTL = "-1h" }, "modules/cache_ttl"},
		{"scan timeout", func(c *Config) { c.Modules.ScanTimeout = "1 minute" }, "modules/scan_timeout"},
		{"disabled", func(c *Config) { c.Disabled = []string{"nope"} }, "disabled"},
		{"exclusive", func(c *Config) { c.Exclusive = map[string]bool{"nope": true} }, "exclusive/nope"},
		{"greedy with delimiters", func(c *Config) { c.Greedy = true; c.Delimiters = " ," }, "delimiters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := Check(cfg)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestCheck_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.Output = "csv"
	cfg.Namespace = filepath.Join(os.TempDir(), "compleat-does-not-exist.yml")

	errs := Check(cfg)
	assert.Len(t, errs, 3)
}
