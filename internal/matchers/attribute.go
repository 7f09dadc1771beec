package matchers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
)

// OmitNames policies for attributes listed right after a dot
const (
	OmitNone       = 0
	OmitDunder     = 1
	OmitUnderscore = 2
)

var dottedExpr = regexp.MustCompile(`^([A-Za-z_]\w*(?:\.\w+)*)\.(\w*)$`)

// AttributeMatcher completes "expr.attr" where expr is a dotted name
// resolvable in the namespace.
type AttributeMatcher struct {
	completion.Exclusivity
	NS *namespace.Namespace
	// OmitNames hides __dunder__ names (1) or every _private name (2) when
	// nothing has been typed after the dot.
	OmitNames int
	// LimitToAll restricts module attributes to their declared public names
	LimitToAll bool
}

// NewAttributeMatcher creates a matcher over ns
func NewAttributeMatcher(ns *namespace.Namespace, omitNames int, limitToAll bool) (*AttributeMatcher, error) {
	if omitNames < OmitNone || omitNames > OmitUnderscore {
		return nil, fmt.Errorf("omit names policy must be 0, 1 or 2, got %d", omitNames)
	}
	return &AttributeMatcher{NS: ns, OmitNames: omitNames, LimitToAll: limitToAll}, nil
}

// Name identifies the matcher in logs
func (m *AttributeMatcher) Name() string { return "attribute" }

// Match resolves the expression before the last dot and lists its attributes
func (m *AttributeMatcher) Match(req *completion.Request) (completion.Result, error) {
	if m.NS == nil {
		return nil, nil
	}
	word := pathWord(req)
	parts := dottedExpr.FindStringSubmatch(word)
	if parts == nil {
		return nil, nil
	}
	expr, attr := parts[1], parts[2]

	obj, ok := m.NS.Lookup(expr)
	if !ok {
		return nil, nil
	}

	names := obj.AttributeNames()
	if m.LimitToAll && obj.All != nil {
		names = obj.All
	}

	rb := newRebase(word, req.CurrentWord())
	result := completion.NewResult()
	for _, name := range withPrefix(names, attr) {
		if attr == "" && m.omitted(name) {
			continue
		}
		if candidate, ok := rb.apply(expr + "." + name); ok {
			result.Add(KindAttributes, candidate)
		}
	}
	return result, nil
}

func (m *AttributeMatcher) omitted(name string) bool {
	switch m.OmitNames {
	case OmitDunder:
		return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
	case OmitUnderscore:
		return strings.HasPrefix(name, "_")
	}
	return false
}
