package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/compleat/internal/config"
)

// Schema displays or exports the JSON Schema for compleat configuration files
func Schema(outputPath string, out io.Writer) error {
	schemaJSON := config.GetSchemaJSON()
	out = output(out)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(schemaJSON+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		_, err := fmt.Fprintf(out, "JSON Schema written to: %s\n", outputPath)
		return err
	}

	_, err := fmt.Fprintln(out, schemaJSON)
	return err
}
