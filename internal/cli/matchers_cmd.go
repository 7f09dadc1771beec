package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/NikitaCOEUR/compleat/internal/status"
)

// MatchersParams contains parameters for the Matchers command
type MatchersParams struct {
	EngineParams
	JSON bool
	Out  io.Writer
}

// Matchers lists the registered matchers in dispatch order
func Matchers(params MatchersParams) error {
	c, err := initializeComponents(params.EngineParams)
	if err != nil {
		return err
	}
	defer c.Close()

	data := status.Collect(status.Input{Registrations: c.manager.Matchers()})
	out := output(params.Out)

	if params.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data.Matchers)
	}

	for _, m := range data.Matchers {
		flags := ""
		if m.Exclusive {
			flags += " exclusive"
		}
		if m.Script {
			flags += " script"
		}
		if _, err := fmt.Fprintf(out, "%s%s\n", m.Name, flags); err != nil {
			return err
		}
	}
	return nil
}
