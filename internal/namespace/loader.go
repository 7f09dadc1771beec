package namespace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

// Snapshot is the on-disk layout of a namespace file
type Snapshot struct {
	Locals   []Object `koanf:"locals" json:"locals" yaml:"locals"`
	Builtins []Object `koanf:"builtins" json:"builtins" yaml:"builtins"`
}

// Namespace builds a namespace from the snapshot
func (s Snapshot) Namespace() *Namespace {
	return New(s.Locals, s.Builtins)
}

// Load reads a namespace snapshot from a YAML, TOML or JSON file
func Load(path string) (*Namespace, error) {
	parser, err := parserFor(filepath.Ext(path))
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "unsupported namespace format", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to load namespace", err)
	}
	return unmarshal(k, path)
}

// Parse reads a namespace snapshot from data in the given format
// ("yaml", "toml" or "json").
func Parse(data []byte, format string) (*Namespace, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, derrors.NewConfigurationError("<inline>", "unsupported namespace format", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, derrors.NewConfigurationError("<inline>", "failed to parse namespace", err)
	}
	return unmarshal(k, "<inline>")
}

func unmarshal(k *koanf.Koanf, source string) (*Namespace, error) {
	var snap Snapshot
	if err := k.Unmarshal("", &snap); err != nil {
		return nil, derrors.NewConfigurationError(source, "failed to unmarshal namespace", err)
	}
	for _, o := range append(append([]Object(nil), snap.Locals...), snap.Builtins...) {
		if o.Name == "" {
			return nil, derrors.NewConfigurationError(source, "namespace object without a name", nil)
		}
	}
	return snap.Namespace(), nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yml", "yaml":
		return yaml.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	case "json":
		return json.Parser(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
