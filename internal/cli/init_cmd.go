package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/config"
	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

// InitParams contains parameters for the Init command
type InitParams struct {
	// Global writes the global config instead of a local one
	Global bool
	// Format is yml, toml or json
	Format string
	Force  bool
	// Dir receives the local config (working directory when empty)
	Dir string
	Out io.Writer
}

// Init writes a sample config holding the defaults
func Init(params InitParams) error {
	format := strings.TrimPrefix(strings.ToLower(params.Format), ".")
	if format == "" || format == "yaml" {
		format = "yml"
	}

	var configPath string
	if params.Global {
		globalPath, err := config.GetGlobalConfigPath()
		if err != nil {
			return derrors.NewConfigurationError("", "failed to get global config path", err)
		}
		if format != "yml" {
			return derrors.NewConfigurationError(globalPath, "the global config is YAML", nil)
		}
		configPath = globalPath
	} else {
		dir := params.Dir
		if dir == "" {
			currentDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			dir = currentDir
		}
		configPath = filepath.Join(dir, ".compleat."+format)
	}

	if _, err := os.Stat(configPath); err == nil && !params.Force {
		return derrors.NewAlreadyExistsError(configPath, fmt.Sprintf("config file already exists: %s", configPath))
	}

	if err := config.WriteSample(configPath, true); err != nil {
		return derrors.NewConfigurationError(configPath, "failed to create config file", err)
	}

	out := output(params.Out)
	_, _ = fmt.Fprintf(out, "Created sample config: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the config file to suit your needs")
	_, _ = fmt.Fprintln(out, "  2. Run 'compleat validate' to check it")
	_, _ = fmt.Fprintln(out, "  3. Run 'compleat status' to see the matchers it enables")
	return nil
}
