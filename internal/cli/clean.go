package cli

import (
	"fmt"
	"io"
)

// CleanParams holds parameters for the Clean function
type CleanParams struct {
	EngineParams
	// All clears every cached module list instead of the current one
	All bool
	Out io.Writer
}

// Clean removes module cache entries
func Clean(params CleanParams) error {
	c, err := initializeComponents(params.EngineParams)
	if err != nil {
		return err
	}
	defer c.Close()

	if params.All {
		if err := c.cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		c.log.Info().Str("path", c.cache.Path()).Msg("All cache entries cleared")
		_, err = fmt.Fprintln(output(params.Out), "✓ All cache entries cleared")
		return err
	}

	if err := c.index.Rehash(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	c.log.Info().Strs("paths", c.index.Paths()).Msg("Module cache cleared")
	_, err = fmt.Fprintln(output(params.Out), "✓ Module cache cleared for the configured search paths")
	return err
}
