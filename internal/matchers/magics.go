package matchers

import (
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
)

// MagicPrefix starts a line magic; doubled, it starts a cell magic
const MagicPrefix = "%"

// MagicsMatcher proposes %line and %%cell magics.
//
// With %% only cell magics are offered; with a single % or no prefix at all
// both kinds are.
type MagicsMatcher struct {
	completion.Exclusivity
	Line []string
	Cell []string
}

// NewMagicsMatcher creates a matcher over magic names, given without prefix
func NewMagicsMatcher(line, cell []string) *MagicsMatcher {
	return &MagicsMatcher{Line: line, Cell: cell}
}

// Name identifies the matcher in logs
func (m *MagicsMatcher) Name() string { return "magics" }

// Match filters the magics on the word without its prefix
func (m *MagicsMatcher) Match(req *completion.Request) (completion.Result, error) {
	text := req.CurrentWord()
	bare := strings.TrimLeft(text, MagicPrefix)
	cellOnly := strings.HasPrefix(text, MagicPrefix+MagicPrefix)

	result := completion.NewResult()
	for _, name := range withPrefix(m.Cell, bare) {
		result.Add(KindMagics, MagicPrefix+MagicPrefix+name)
	}
	if !cellOnly {
		for _, name := range withPrefix(m.Line, bare) {
			result.Add(KindMagics, MagicPrefix+name)
		}
	}
	return result, nil
}
