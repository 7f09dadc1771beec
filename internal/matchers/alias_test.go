package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasMatcher(t *testing.T) {
	m := NewAliasMatcher([]string{"ls", "ll", "cat"})
	assert.Equal(t, []string{"cat", "ll", "ls"}, m.Aliases())

	tests := []struct {
		text string
		want []string
	}{
		{text: "l", want: []string{"ll", "ls"}},
		{text: "", want: []string{"cat", "ll", "ls"}},
		{text: "sudo l", want: []string{"ll", "ls"}},
		{text: "x", want: nil},
	}
	for _, tt := range tests {
		r, err := m.Match(request(t, tt.text))
		require.NoError(t, err)
		require.NotNil(t, r, tt.text)
		assert.Equal(t, tt.want, sorted(r, KindAliases), tt.text)
	}

	r, err := m.Match(request(t, "ls -l"))
	require.NoError(t, err)
	assert.Nil(t, r, "only the first word of a line is an alias")
}
