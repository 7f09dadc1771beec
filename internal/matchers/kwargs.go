package matchers

import (
	"regexp"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
	"github.com/NikitaCOEUR/compleat/internal/tokens"
)

var (
	// "min(iterable[, key=func])" -> "iterable[, key=func]"
	docstringSignature = regexp.MustCompile(`^[\w|\s.]+\(([^)]*)\).*`)
	// " key=func]" -> "key"
	docstringKeyword = regexp.MustCompile(`[\s|\[]*(\w+)(?:\s*=\s*.*)`)
)

// KeywordArgMatcher proposes "name=" for the parameters with a default value
// of the innermost call still open before the cursor.
type KeywordArgMatcher struct {
	completion.Exclusivity
	NS *namespace.Namespace
}

// NewKeywordArgMatcher creates a matcher over ns
func NewKeywordArgMatcher(ns *namespace.Namespace) *KeywordArgMatcher {
	return &KeywordArgMatcher{NS: ns}
}

// Name identifies the matcher in logs
func (m *KeywordArgMatcher) Name() string { return "kwargs" }

// Match finds the open call and lists the keyword arguments it accepts
func (m *KeywordArgMatcher) Match(req *completion.Request) (completion.Result, error) {
	text := req.CurrentWord()
	// no tokenization unless a call can be open
	if m.NS == nil || strings.Contains(text, ".") || !strings.Contains(req.CurrentLine(), "(") {
		return nil, nil
	}

	site, err := tokens.LastOpenCall(req.Tokens())
	if err != nil || len(site.Identifiers) == 0 {
		return nil, nil
	}
	obj, ok := m.NS.Lookup(site.Name())
	if !ok {
		return nil, nil
	}

	result := completion.NewResult()
	for _, arg := range DefaultArguments(obj) {
		if strings.HasPrefix(arg, text) {
			result.Add(KindKwargs, arg+"=")
		}
	}
	return result, nil
}

// DefaultArguments returns the names of the parameters of a callable that
// accept a default value, from its declared parameters and from the
// signature line of its documentation.
func DefaultArguments(obj namespace.Object) []string {
	args := make(completion.Candidates)
	if obj.Kind == namespace.KindBuiltin {
		return nil
	}

	call := obj
	switch {
	case obj.Kind == namespace.KindFunction || obj.Kind == namespace.KindMethod:
	case obj.Kind == namespace.KindClass:
		// a class documents its constructor on itself
		args.Add(ArgumentsFromDocstring(obj.Doc)...)
		if init, ok := obj.Attribute("__init__"); ok {
			call = *init
		} else if nw, ok := obj.Attribute("__new__"); ok {
			call = *nw
		}
	default:
		if c, ok := obj.Attribute("__call__"); ok {
			call = *c
		}
	}

	args.Add(ArgumentsFromDocstring(call.Doc)...)
	for _, p := range call.Params {
		if p.HasDefault() {
			args.Add(p.Name)
		}
	}
	return args.Sorted()
}

// ArgumentsFromDocstring parses the first line of doc as a call signature,
// such as "min(iterable[, key=func])", and returns its keyword names.
func ArgumentsFromDocstring(doc string) []string {
	doc = strings.TrimLeft(doc, " \t\r\n")
	if doc == "" {
		return nil
	}
	line, _, _ := strings.Cut(doc, "\n")

	sig := docstringSignature.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if sig == nil {
		return nil
	}
	var args []string
	for _, part := range strings.Split(sig[1], ",") {
		if m := docstringKeyword.FindStringSubmatch(part); m != nil {
			args = append(args, m[1])
		}
	}
	return args
}
