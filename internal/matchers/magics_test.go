package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicsMatcher(t *testing.T) {
	m := NewMagicsMatcher([]string{"time", "timeit", "cd"}, []string{"time", "bash"})

	tests := []struct {
		text string
		want []string
	}{
		{text: "%ti", want: []string{"%%time", "%time", "%timeit"}},
		{text: "%%ti", want: []string{"%%time"}},
		{text: "ti", want: []string{"%%time", "%time", "%timeit"}},
		{text: "%", want: []string{"%%bash", "%%time", "%cd", "%time", "%timeit"}},
		{text: "%zz", want: nil},
	}
	for _, tt := range tests {
		r, err := m.Match(request(t, tt.text))
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, tt.want, sorted(r, KindMagics), tt.text)
	}
}
