// Package render writes completion sets for frontends and humans.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/compleat/internal/completion"
)

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTemplate = "template"
)

// Formats lists every supported output format
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatTemplate}

var (
	kindStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	candidateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Options selects how a completion set is written
type Options struct {
	Format string
	// Template is the Go template used by FormatTemplate
	Template string
	// Group writes text output one section per kind
	Group bool
}

// Data is what templates and structured formats see
type Data struct {
	Text       string              `json:"text" yaml:"text"`
	Request    string              `json:"request,omitempty" yaml:"request,omitempty"`
	Kinds      []string            `json:"kinds" yaml:"kinds"`
	Candidates []string            `json:"candidates" yaml:"candidates"`
	Groups     map[string][]string `json:"groups" yaml:"groups"`
}

// NewData flattens set for output
func NewData(text, requestID string, set completion.CompletionSet) Data {
	kinds := set.Kinds()
	if kinds == nil {
		kinds = []string{}
	}
	candidates := set.Flatten()
	if candidates == nil {
		candidates = []string{}
	}
	groups := map[string][]string(set)
	if groups == nil {
		groups = map[string][]string{}
	}
	return Data{
		Text:       text,
		Request:    requestID,
		Kinds:      kinds,
		Candidates: candidates,
		Groups:     groups,
	}
}

// Write renders data to w
func Write(w io.Writer, data Data, opts Options) error {
	switch opts.Format {
	case "", FormatText:
		if opts.Group {
			_, err := io.WriteString(w, Grouped(data))
			return err
		}
		for _, c := range data.Candidates {
			if _, err := fmt.Fprintln(w, c); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatTemplate:
		tmpl, err := Parse(opts.Template)
		if err != nil {
			return err
		}
		return tmpl.Execute(w, data)
	}
	return fmt.Errorf("unknown output format %q", opts.Format)
}

// Parse compiles an output template with the sprig function map
func Parse(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty output template")
	}
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid output template: %w", err)
	}
	return tmpl, nil
}

// Grouped renders one styled section per kind
func Grouped(data Data) string {
	if len(data.Kinds) == 0 {
		return subtleStyle.Render("No completions") + "\n"
	}

	var b strings.Builder
	for _, kind := range data.Kinds {
		values := data.Groups[kind]
		b.WriteString(kindStyle.Render(kind) + " " + subtleStyle.Render(fmt.Sprintf("(%d)", len(values))) + "\n")
		for _, v := range values {
			b.WriteString("   " + candidateStyle.Render(v) + "\n")
		}
	}
	return b.String()
}
