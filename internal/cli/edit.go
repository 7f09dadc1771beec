package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/NikitaCOEUR/compleat/internal/config"
)

// Edit opens the config file in the user's editor, creating it from the
// defaults when missing.
func Edit(global bool) error {
	configPath, err := editPath(global)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteSample(configPath, false); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created new config: %s\n", configPath)
	} else {
		fmt.Printf("Opening config: %s\n", configPath)
	}

	editor, err := findEditor()
	if err != nil {
		return err
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func editPath(global bool) (string, error) {
	if global {
		globalPath, err := config.GetGlobalConfigPath()
		if err != nil {
			return "", fmt.Errorf("failed to get global config path: %w", err)
		}
		return globalPath, nil
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	for _, name := range config.SupportedConfigNames {
		path := filepath.Join(currentDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(currentDir, config.SupportedConfigNames[0]), nil
}

// findEditor picks $EDITOR, then $VISUAL, then a common editor on PATH
func findEditor() (string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, nil
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor, nil
	}
	for _, e := range []string{"nano", "vim", "vi"} {
		if _, err := exec.LookPath(e); err == nil {
			return e, nil
		}
	}
	return "", fmt.Errorf("no editor found. Set $EDITOR or $VISUAL environment variable")
}
