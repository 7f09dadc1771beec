package matchers

import (
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
)

// DefaultKeywords are the language keywords offered by GlobalMatcher
var DefaultKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

// GlobalMatcher proposes keywords, user names and builtins
type GlobalMatcher struct {
	completion.Exclusivity
	Keywords []string
	NS       *namespace.Namespace
}

// NewGlobalMatcher creates a matcher over ns. Nil keywords select
// DefaultKeywords.
func NewGlobalMatcher(ns *namespace.Namespace, keywords []string) *GlobalMatcher {
	if keywords == nil {
		keywords = DefaultKeywords
	}
	return &GlobalMatcher{Keywords: keywords, NS: ns}
}

// Name identifies the matcher in logs
func (m *GlobalMatcher) Name() string { return "global" }

// Match proposes every global name starting with the current word. A word
// that is part of a dotted expression belongs to AttributeMatcher.
func (m *GlobalMatcher) Match(req *completion.Request) (completion.Result, error) {
	text := req.CurrentWord()
	if strings.Contains(text, ".") || strings.HasSuffix(strings.TrimSuffix(req.Text(), text), ".") {
		return nil, nil
	}

	result := completion.NewResult()
	result.Add(KindKeywords, withPrefix(m.Keywords, text)...)
	if m.NS != nil {
		result.Add(KindLocals, withPrefix(m.NS.Locals(), text)...)
		for _, name := range withPrefix(m.NS.Builtins(), text) {
			if name != "__builtins__" {
				result.Add(KindBuiltins, name)
			}
		}
	}
	return result, nil
}
