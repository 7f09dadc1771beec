package config

import (
	"fmt"
	"os"

	"github.com/NikitaCOEUR/compleat/internal/splitter"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool              `json:"valid" yaml:"valid"`
	Errors []ValidationError `json:"errors" yaml:"errors"`
}

func (r *ValidationResult) addError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
	outputs    = []string{"text", "json", "yaml", "template"}
)

// Validate validates a config file: its schema first, then the values the
// schema cannot check.
func Validate(path string) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}

	result, err := ValidateWithSchema(path, content)
	if err != nil || !result.Valid {
		return result, err
	}

	cfg, err := New().Load(path)
	if err != nil {
		result.addError("syntax", fmt.Sprintf("Failed to parse config: %v", err))
		return result, nil
	}
	for _, e := range Check(cfg) {
		result.addError(e.Field, e.Message)
	}
	return result, nil
}

// Check returns the semantic errors of a loaded config
func Check(cfg *Config) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !contains(logLevels, cfg.LogLevel) {
		add("log_level", "Unknown log level %q", cfg.LogLevel)
	}
	if !contains(logFormats, cfg.LogFormat) {
		add("log_format", "Unknown log format %q", cfg.LogFormat)
	}
	if !contains(outputs, cfg.Output) {
		add("output", "Unknown output format %q", cfg.Output)
	}
	if cfg.Output == "template" && cfg.Template == "" {
		add("template", "The template output needs a template")
	}
	if cfg.Attributes.OmitNames < 0 || cfg.Attributes.OmitNames > 2 {
		add("attributes/omit_names", "Must be 0, 1 or 2, got %d", cfg.Attributes.OmitNames)
	}
	if cfg.Delimiters != "" && splitter.NewDelimiterSet(cfg.Delimiters).Len() == 0 {
		add("delimiters", "Delimiter set is empty")
	}
	if cfg.Greedy && cfg.Delimiters != "" {
		add("delimiters", "Custom delimiters replace the greedy profile, set greedy or delimiters but not both")
	}

	if ttl, err := cfg.Modules.TTL(); err != nil {
		add("modules/cache_ttl", "Invalid duration: %v", err)
	} else if ttl < 0 {
		add("modules/cache_ttl", "Duration must not be negative")
	}
	if timeout, err := cfg.Modules.Timeout(); err != nil {
		add("modules/scan_timeout", "Invalid duration: %v", err)
	} else if timeout < 0 {
		add("modules/scan_timeout", "Duration must not be negative")
	}

	if cfg.Namespace != "" {
		if _, err := os.Stat(cfg.Namespace); err != nil {
			add("namespace", "Namespace file not found: %s", cfg.Namespace)
		}
	}
	for i, script := range cfg.Scripts {
		if _, err := os.Stat(script); err != nil {
			add(fmt.Sprintf("scripts/%d", i), "Script not found: %s", script)
		}
	}

	for _, name := range cfg.Disabled {
		if !contains(KnownMatchers, name) {
			add("disabled", "Unknown matcher %q", name)
		}
	}
	for name := range cfg.Exclusive {
		if !contains(KnownMatchers, name) {
			add("exclusive/"+name, "Unknown matcher %q", name)
		}
	}
	return errs
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
