package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastOpenCall_NestedCall(t *testing.T) {
	toks := Tokenize("foo(1+bar(x), pa")

	site, err := LastOpenCall(toks)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo"}, site.Identifiers)
	assert.Equal(t, []string{"(", "1", "+", "bar", "(", "x", ")", ",", "pa"}, site.Tail)
}

func TestLastOpenCall(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		ids     []string
		tailLen int
	}{
		{"simple", "foo(", []string{"foo"}, 1},
		{"dotted", "os.path.join(a, ", []string{"os", "path", "join"}, 3},
		{"innermost open wins", "foo(bar(", []string{"bar"}, 1},
		{"closed inner call", "foo(bar(1), ", []string{"foo"}, 6},
		{"operator stops identifier", "x + foo(", []string{"foo"}, 1},
		{"bare parenthesis", "(1, ", nil, 3},
		{"dot without name", "a.(", nil, 1},
		{"leading dot", ".foo(", []string{"foo"}, 1},
		{"subscript result", "d[0](", nil, 1},
		{"method on call result", "f().g(", []string{"g"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, err := LastOpenCall(Tokenize(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.ids, site.Identifiers)
			assert.Len(t, site.Tail, tt.tailLen)
			assert.Equal(t, "(", site.Tail[0])
		})
	}
}

func TestLastOpenCall_NoEnclosingCall(t *testing.T) {
	for _, src := range []string{"", "foo", "foo()", "foo(bar(1))", "a) (b)"} {
		_, err := LastOpenCall(Tokenize(src))
		assert.ErrorIs(t, err, ErrNoEnclosingCall, src)
	}
}

func TestLastOpenCall_TailIsCopy(t *testing.T) {
	toks := Tokenize("foo(a")
	site, err := LastOpenCall(toks)
	require.NoError(t, err)

	site.Tail[0] = "["
	assert.Equal(t, "(", toks[1])
}

func TestCallSite_Name(t *testing.T) {
	assert.Equal(t, "np.linalg.norm", CallSite{Identifiers: []string{"np", "linalg", "norm"}}.Name())
	assert.Equal(t, "", CallSite{}.Name())
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("foo_1"))
	assert.True(t, IsIdentifier("10"))
	assert.True(t, IsIdentifier("naïve"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("."))
	assert.False(t, IsIdentifier(`"s"`))
}
