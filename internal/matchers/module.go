package matchers

import (
	"context"
	"strings"
	"unicode"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
)

// ModuleIndex lists importable modules
type ModuleIndex interface {
	// Complete returns the root modules starting with prefix
	Complete(ctx context.Context, prefix string) ([]string, error)
	Submodules(ctx context.Context, mod string) []string
}

// ModuleMatcher completes import statements:
//
//	import xml.d       -> xml.dom
//	from xml.dom im    -> import
//	from xml.dom import mi -> minidom
type ModuleMatcher struct {
	completion.Exclusivity
	Index ModuleIndex
	// NS supplies the names a module defines, when it is loaded
	NS *namespace.Namespace
}

// NewModuleMatcher creates an exclusive matcher
func NewModuleMatcher(index ModuleIndex, ns *namespace.Namespace) *ModuleMatcher {
	m := &ModuleMatcher{Index: index, NS: ns}
	m.SetExclusive(true)
	return m
}

// Name identifies the matcher in logs
func (m *ModuleMatcher) Name() string { return "module" }

// Match answers for lines starting with import or from
func (m *ModuleMatcher) Match(req *completion.Request) (completion.Result, error) {
	words := shellWords(req.CurrentLine())
	all, err := m.allMatches(req.Context(), words)
	if err != nil || all == nil {
		return nil, err
	}

	text := words[len(words)-1]
	rb := newRebase(text, req.CurrentWord())
	result := completion.NewResult()
	for _, name := range withPrefix(all, text) {
		if candidate, ok := rb.apply(name); ok {
			result.Add(KindImport, candidate)
		}
	}
	return result, nil
}

// allMatches returns every name that fits the statement, before filtering
// on the word being typed. Nil means the line is not an import.
func (m *ModuleMatcher) allMatches(ctx context.Context, words []string) ([]string, error) {
	n := len(words)
	if n < 2 || (words[0] != "from" && words[0] != "import") {
		return nil, nil
	}
	text := words[n-1]

	if n == 3 && words[0] == "from" && strings.HasPrefix("import", text) {
		return []string{"import "}, nil
	}

	modules := strings.Split(words[1], ".")
	if n < 3 {
		if len(modules) < 2 {
			return m.Index.Complete(ctx, text)
		}
		parent := strings.Join(modules[:len(modules)-1], ".")
		var out []string
		for _, sub := range m.importable(ctx, parent, true) {
			out = append(out, parent+"."+sub)
		}
		return out, nil
	}

	if words[0] == "from" {
		return m.importable(ctx, words[1], false), nil
	}
	return nil, nil
}

// importable lists what can be imported from mod: its submodules and, when
// the namespace knows the module, the names it defines.
func (m *ModuleMatcher) importable(ctx context.Context, mod string, onlyModules bool) []string {
	names := make(completion.Candidates)
	names.Add(m.Index.Submodules(ctx, mod)...)

	if m.NS != nil {
		if obj, ok := m.NS.Lookup(mod); ok && obj.Kind == namespace.KindModule {
			for _, attr := range obj.Attributes {
				if onlyModules && attr.Kind != namespace.KindModule {
					continue
				}
				if !onlyModules && strings.HasPrefix(attr.Name, "__") && strings.HasSuffix(attr.Name, "__") {
					continue
				}
				names.Add(attr.Name)
			}
			if !onlyModules {
				names.Add(obj.All...)
			}
		}
	}
	delete(names, "__init__")
	return names.Sorted()
}

// shellWords splits line on whitespace, keeping a trailing empty word when
// the line ends with a space.
func shellWords(line string) []string {
	words := strings.Fields(line)
	if line == "" || unicode.IsSpace(rune(line[len(line)-1])) {
		words = append(words, "")
	}
	return words
}
