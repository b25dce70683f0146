package cfgpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSourceRoundTripsCanonicalForms(t *testing.T) {
	cases := []string{
		"foo",
		"foo.bar",
		"foo[2]",
		"foo[2:4]",
		"foo[2:4:2]",
		"foo[:]",
		"foo[::2]",
		"foo[2:]",
		"foo[:4]",
	}
	for _, s := range cases {
		n, err := ParsePath(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, ToSource(n), s)
	}
}
