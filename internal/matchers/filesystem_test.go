package matchers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T) string {
	return tree(t, "src/", "src/main.go", "setup.py", "notes.txt", "my file.txt", ".hidden")
}

func TestFileMatcher(t *testing.T) {
	root := project(t)
	m := NewFileMatcher(root)

	tests := []struct {
		name   string
		text   string
		greedy bool
		files  []string
		dirs   []string
	}{
		{name: "prefix", text: "ls s", files: []string{"setup.py"}, dirs: []string{"src/"}},
		{name: "empty argument lists everything visible", text: "ls ", files: []string{`my\ file.txt`, "notes.txt", "setup.py"}, dirs: []string{"src/"}},
		{name: "after a dot only the extension is proposed", text: "cat setup.", files: []string{"py"}},
		{name: "nested", text: "vi src/m", files: []string{"src/main.go"}},
		{name: "dot slash is kept", text: "ls ./se", files: []string{"/setup.py"}},
		{name: "escaped space", text: `ls my\ f`, files: []string{"file.txt"}},
		{name: "open quote is not protected", text: `print("no`, files: []string{"notes.txt"}},
		{name: "hidden files on request", text: "ls .h", files: []string{"hidden"}},
		{name: "bang prefix in greedy mode", text: "!s", greedy: true, files: []string{"!setup.py"}, dirs: []string{"!src/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, tt.text)
			if tt.greedy {
				req = greedyRequest(t, tt.text)
			}
			r, err := m.Match(req)
			require.NoError(t, err)
			require.NotNil(t, r)
			assert.Equal(t, tt.files, sorted(r, KindFiles))
			assert.Equal(t, tt.dirs, sorted(r, KindDirectories))
		})
	}
}

func TestFileMatcher_AbsolutePath(t *testing.T) {
	root := project(t)
	m := NewFileMatcher(t.TempDir())

	r, err := m.Match(greedyRequest(t, "cat "+filepath.ToSlash(root)+"/se"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.ToSlash(root) + "/setup.py"}, sorted(r, KindFiles))
}

func TestFileMatcher_NoMatch(t *testing.T) {
	m := NewFileMatcher(project(t))

	r, err := m.Match(request(t, "ls zzz"))
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = m.Match(request(t, `ls "a" \`))
	require.NoError(t, err)
	assert.Nil(t, r, "a line shlex cannot parse without an open quote gives no opinion")
}

func TestProtectFilename(t *testing.T) {
	assert.Equal(t, `my\ file\(1\).txt`, ProtectFilename("my file(1).txt"))
	assert.Equal(t, "plain.txt", ProtectFilename("plain.txt"))
}

func TestOpenQuote(t *testing.T) {
	assert.Equal(t, '"', OpenQuote(`open("x`))
	assert.Equal(t, '\'', OpenQuote(`open('x`))
	assert.Equal(t, '"', OpenQuote(`'a' "b`))
	assert.Equal(t, rune(0), OpenQuote(`"closed"`))
}

func TestCDMatcher(t *testing.T) {
	m := NewCDMatcher(project(t))
	assert.True(t, m.Exclusive())

	r, err := m.Match(request(t, "cd s"))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/"}, sorted(r, KindDirectories))
	assert.Nil(t, sorted(r, KindFiles))

	for _, text := range []string{"cd", "ls s", "cd zzz", "cd set"} {
		r, err := m.Match(request(t, text))
		require.NoError(t, err)
		assert.Nil(t, r, text)
	}
}

func TestShellLineMatcher(t *testing.T) {
	m := NewShellLineMatcher(project(t), []string{"ll"}, sessionNamespace(t))
	assert.True(t, m.Exclusive())

	t.Run("bang line", func(t *testing.T) {
		r, err := m.Match(request(t, "!ls s"))
		require.NoError(t, err)
		assert.Equal(t, []string{"setup.py"}, sorted(r, KindFiles))
		assert.Equal(t, []string{"src/"}, sorted(r, KindDirectories))
	})

	t.Run("alias line", func(t *testing.T) {
		r, err := m.Match(request(t, "ll n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"notes.txt"}, sorted(r, KindFiles))
	})

	t.Run("interpolation inside braces", func(t *testing.T) {
		r, err := m.Match(request(t, "!echo {co"))
		require.NoError(t, err)
		assert.Equal(t, []string{"color}", "count}"}, sorted(r, KindLocals))
	})

	t.Run("interpolation without braces", func(t *testing.T) {
		r, err := m.Match(request(t, "!echo co"))
		require.NoError(t, err)
		assert.Equal(t, []string{"{color}", "{count}"}, sorted(r, KindLocals))
	})

	t.Run("private names are skipped", func(t *testing.T) {
		r, err := m.Match(request(t, "!echo {_"))
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("other lines", func(t *testing.T) {
		r, err := m.Match(request(t, "x = co"))
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}
