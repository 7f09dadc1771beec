package cli

import (
	"context"
	"io"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/render"
	"github.com/NikitaCOEUR/compleat/internal/trace"
)

// CompleteParams contains parameters for the Complete command
type CompleteParams struct {
	EngineParams
	// Text is the block being completed
	Text string
	// Cursor is a rune offset into Text; negative means the end
	Cursor int
	// Output overrides the configured output format when set
	Output string
	// Template overrides the configured output template when set
	Template string
	// Group writes text output one section per kind
	Group bool
	Out   io.Writer
}

// Complete computes the completions for a block of text and writes them
func Complete(ctx context.Context, params CompleteParams) error {
	c, err := initializeComponents(params.EngineParams)
	if err != nil {
		return err
	}
	defer c.Close()

	var set completion.CompletionSet
	trace.WithRegion(ctx, "complete", func() {
		if params.Cursor >= 0 {
			set, err = c.manager.CompleteAt(ctx, params.Text, params.Cursor)
		} else {
			set, err = c.manager.Complete(ctx, params.Text)
		}
	})
	if err != nil {
		return err
	}

	opts := render.Options{
		Format:   c.config.Output,
		Template: c.config.Template,
		Group:    params.Group,
	}
	if params.Output != "" {
		opts.Format = params.Output
	}
	if params.Template != "" {
		opts.Template = params.Template
	}

	c.log.Debug().
		Int("candidates", set.Len()).
		Strs("kinds", set.Kinds()).
		Str("format", opts.Format).
		Msg("Completion done")

	return render.Write(output(params.Out), render.NewData(params.Text, "", set), opts)
}

// ReadBlock reads a block from r, dropping one trailing newline
func ReadBlock(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}
