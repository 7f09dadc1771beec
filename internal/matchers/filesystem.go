package matchers

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/google/shlex"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
)

// Protectables are escaped with a backslash in proposed file names
var Protectables = protectables()

func protectables() string {
	if runtime.GOOS == "windows" {
		return " "
	}
	return " ()[]{}?=\\|;:'#*\"^&"
}

// ProtectFilename escapes the characters a shell would interpret
func ProtectFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(Protectables, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OpenQuote returns the quote character left open in s, or 0. Double quotes
// win over single quotes when both are unbalanced.
func OpenQuote(s string) rune {
	if strings.Count(s, `"`)%2 == 1 {
		return '"'
	}
	if strings.Count(s, "'")%2 == 1 {
		return '\''
	}
	return 0
}

// FileMatcher proposes file and directory names. Relative names are resolved
// against Dir, or the working directory when Dir is empty.
type FileMatcher struct {
	completion.Exclusivity
	Dir string
}

// NewFileMatcher creates a matcher rooted at dir
func NewFileMatcher(dir string) *FileMatcher {
	return &FileMatcher{Dir: dir}
}

// Name identifies the matcher in logs
func (m *FileMatcher) Name() string { return "file" }

// Match globs the filesystem for the word under the cursor
func (m *FileMatcher) Match(req *completion.Request) (completion.Result, error) {
	return m.match(req)
}

func (m *FileMatcher) match(req *completion.Request) (completion.Result, error) {
	line := req.CurrentLine()
	word := pathWord(req)
	rb := newRebase(word, req.CurrentWord())

	text, prefix := word, ""
	if strings.HasPrefix(text, "!") {
		text, prefix = text[1:], "!"
	}

	quote := OpenQuote(line)
	lsplit, ok := lastArgument(line, word, quote)
	if !ok {
		return nil, nil
	}

	// a shell argument with characters to protect is matched as a whole
	protected := quote == 0 && lsplit != ProtectFilename(lsplit)
	typed := text
	if protected {
		text = lsplit
	}
	text = strings.ReplaceAll(text, `\`, "")

	entries := m.glob(expandUser(text))
	if len(entries) == 0 {
		return nil, nil
	}

	result := completion.NewResult()
	for _, e := range entries {
		name := e.name
		switch {
		case protected:
			name = typed + ProtectFilename(strings.TrimPrefix(name, lsplit))
		case quote != 0:
		default:
			name = ProtectFilename(name)
		}
		name = prefix + restoreHome(text, name)

		kind := KindFiles
		if e.dir {
			kind = KindDirectories
			name += "/"
		}
		if candidate, ok := rb.apply(name); ok {
			result.Add(kind, candidate)
		}
	}
	if result.Empty() {
		return nil, nil
	}
	return result, nil
}

// lastArgument returns the last shell argument of line. It reports false
// when the line cannot be parsed and no quote explains why.
func lastArgument(line, word string, quote rune) (string, bool) {
	if strings.ContainsAny(line, "([") {
		return word, true
	}
	if line == "" || unicode.IsSpace(rune(line[len(line)-1])) {
		return "", true
	}
	args, err := shlex.Split(line)
	if err != nil {
		if quote == 0 {
			return "", false
		}
		parts := strings.Split(line, string(quote))
		return parts[len(parts)-1], true
	}
	if len(args) == 0 {
		return "", true
	}
	return args[len(args)-1], true
}

type entry struct {
	name string
	dir  bool
}

// glob lists the entries starting with text, relative to m.Dir
func (m *FileMatcher) glob(text string) []entry {
	pattern := escapeGlob(text) + "*"
	root := m.Dir
	if !filepath.IsAbs(text) && root != "" {
		pattern = filepath.Join(root, pattern)
	}

	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}

	hidden := strings.HasPrefix(filepath.Base(text+"x"), ".")
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		if !hidden && strings.HasPrefix(filepath.Base(p), ".") {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		name := p
		if !filepath.IsAbs(text) && root != "" {
			if rel, err := filepath.Rel(root, p); err == nil {
				name = rel
			}
		}
		name = filepath.ToSlash(name)
		// keep the ./ the user typed
		if strings.HasPrefix(text, "./") && !strings.HasPrefix(name, "./") {
			name = "./" + name
		}
		entries = append(entries, entry{name: name, dir: info.IsDir()})
	}
	return entries
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// restoreHome puts back the ~ the user typed in front of an expanded name
func restoreHome(typed, name string) string {
	if !strings.HasPrefix(typed, "~") {
		return name
	}
	home := expandUser(strings.SplitN(typed, "/", 2)[0])
	if home == typed || !strings.HasPrefix(name, home) {
		return name
	}
	head := strings.SplitN(typed, "/", 2)[0]
	return head + strings.TrimPrefix(name, home)
}

// CDMatcher proposes directories after a cd command, and nothing else
type CDMatcher struct {
	completion.Exclusivity
	files *FileMatcher
}

// NewCDMatcher creates an exclusive matcher rooted at dir
func NewCDMatcher(dir string) *CDMatcher {
	m := &CDMatcher{files: NewFileMatcher(dir)}
	m.SetExclusive(true)
	return m
}

// Name identifies the matcher in logs
func (m *CDMatcher) Name() string { return "cd" }

// Match only answers when the line starts with cd and an argument is begun
func (m *CDMatcher) Match(req *completion.Request) (completion.Result, error) {
	words := req.LineFragments()
	if len(words) < 2 || words[0] != "cd" {
		return nil, nil
	}

	found, err := m.files.match(req)
	if err != nil || found == nil {
		return nil, err
	}
	dirs, ok := found[KindDirectories]
	if !ok {
		return nil, nil
	}
	return completion.Result{KindDirectories: dirs}, nil
}

// ShellLineMatcher completes lines run by the shell: lines starting with !
// or with an alias. It proposes files and the {name} interpolation of user
// values that can be substituted in a command.
type ShellLineMatcher struct {
	completion.Exclusivity
	files   *FileMatcher
	aliases map[string]struct{}
	NS      *namespace.Namespace
}

// NewShellLineMatcher creates an exclusive matcher
func NewShellLineMatcher(dir string, aliases []string, ns *namespace.Namespace) *ShellLineMatcher {
	m := &ShellLineMatcher{
		files:   NewFileMatcher(dir),
		aliases: make(map[string]struct{}, len(aliases)),
		NS:      ns,
	}
	for _, a := range aliases {
		m.aliases[a] = struct{}{}
	}
	m.SetExclusive(true)
	return m
}

// Name identifies the matcher in logs
func (m *ShellLineMatcher) Name() string { return "shell_line" }

// Match proposes files and interpolations for shell lines
func (m *ShellLineMatcher) Match(req *completion.Request) (completion.Result, error) {
	line := req.CurrentLine()
	words := req.LineFragments()
	first := ""
	if len(words) > 0 {
		first = words[0]
	}
	if _, alias := m.aliases[first]; !alias && !strings.HasPrefix(line, "!") {
		return nil, nil
	}

	found := false
	result, err := m.files.match(req)
	if err != nil {
		return nil, err
	}
	if result != nil {
		found = true
	} else {
		result = completion.NewResult()
	}

	if m.NS != nil {
		text := req.CurrentWord()
		brace := "{"
		toks := req.Tokens()
		if (text == "" && len(toks) > 0 && toks[len(toks)-1] == "{") ||
			(len(toks) > 1 && toks[len(toks)-2] == "{") {
			brace = ""
		}
		for _, name := range withPrefix(m.NS.Locals(), text) {
			if strings.HasPrefix(name, "_") {
				continue
			}
			if obj, ok := m.NS.Get(name); ok && obj.IsScalar() {
				result.Add(KindLocals, brace+name+"}")
				found = true
			}
		}
	}

	if !found {
		return nil, nil
	}
	return result, nil
}
