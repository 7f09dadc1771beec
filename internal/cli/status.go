package cli

import (
	"fmt"
	"io"

	"github.com/NikitaCOEUR/compleat/internal/status"
)

// StatusParams contains parameters for the Status command
type StatusParams struct {
	EngineParams
	Out io.Writer
}

// Status displays the current compleat configuration status
func Status(params StatusParams) error {
	c, err := initializeComponents(params.EngineParams)
	if err != nil {
		return err
	}
	defer c.Close()

	data := status.Collect(status.Input{
		Dir:           c.dir,
		Config:        c.config,
		Files:         c.files,
		GlobalPath:    c.globalPath,
		Registrations: c.manager.Matchers(),
		Blocked:       c.blocked,
		Namespace:     c.ns,
		Index:         c.index,
		Cache:         c.cache,
	})

	_, err = fmt.Fprintln(output(params.Out), status.Render(data))
	return err
}
