// Package matchers holds the completion providers shipped with compleat:
// names from the session namespace, attributes, files, shell lines, aliases,
// magics, imports, keyword arguments and user scripts.
package matchers

import (
	"os"
	"os/user"
	"strings"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/splitter"
)

// Result kinds
const (
	KindKeywords    = "keywords"
	KindLocals      = "locals"
	KindBuiltins    = "builtins"
	KindAttributes  = "attributes"
	KindFiles       = "files"
	KindDirectories = "directories"
	KindAliases     = "aliases"
	KindMagics      = "magics"
	KindImport      = "import"
	KindKwargs      = "kwargs"
)

// pathWord splits the current line like the request does but keeps dots, so
// a file name or a dotted expression stays in one piece.
func pathWord(req *completion.Request) string {
	fragments := splitter.Split(req.CurrentLine(), req.Delimiters().Without("."))
	if len(fragments) == 0 {
		return ""
	}
	return fragments[len(fragments)-1]
}

// rebase maps candidates computed for a long word (a path, a dotted name)
// onto the request's current word, which is a suffix of the long word. The
// frontend replaces only the current word, so the head both share is cut.
type rebase struct {
	head string
}

func newRebase(word, current string) rebase {
	if !strings.HasSuffix(word, current) {
		return rebase{}
	}
	return rebase{head: word[:len(word)-len(current)]}
}

func (r rebase) apply(candidate string) (string, bool) {
	if !strings.HasPrefix(candidate, r.head) {
		return "", false
	}
	return candidate[len(r.head):], true
}

// withPrefix returns the names starting with prefix
func withPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// expandUser replaces a leading ~ or ~user with that user's home directory.
// Paths it cannot resolve are returned unchanged.
func expandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	name, rest, hasSlash := strings.Cut(path[1:], "/")

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if !hasSlash {
		return home
	}
	return strings.TrimSuffix(home, "/") + "/" + rest
}
