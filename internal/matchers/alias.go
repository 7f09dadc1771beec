package matchers

import (
	"sort"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
)

// AliasMatcher proposes system aliases as the first word of a line
type AliasMatcher struct {
	completion.Exclusivity
	aliases []string
}

// NewAliasMatcher creates a matcher over alias names
func NewAliasMatcher(aliases []string) *AliasMatcher {
	sorted := append([]string(nil), aliases...)
	sort.Strings(sorted)
	return &AliasMatcher{aliases: sorted}
}

// Name identifies the matcher in logs
func (m *AliasMatcher) Name() string { return "alias" }

// Aliases returns the known alias names, sorted
func (m *AliasMatcher) Aliases() []string {
	return append([]string(nil), m.aliases...)
}

// Match answers for the first item of a line, or anywhere after sudo
func (m *AliasMatcher) Match(req *completion.Request) (completion.Result, error) {
	line := req.CurrentLine()
	if strings.Contains(line, " ") && !strings.HasPrefix(line, "sudo") {
		return nil, nil
	}

	text := expandUser(req.CurrentWord())
	return completion.NewResult().Add(KindAliases, withPrefix(m.aliases, text)...), nil
}
