package cfgpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathSimpleWord(t *testing.T) {
	n, err := ParsePath("foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", ToSource(n))
}

func TestParsePathDottedChain(t *testing.T) {
	n, err := ParsePath("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", ToSource(n))
}

func TestParsePathIndexAndSlice(t *testing.T) {
	cases := []string{"a[2]", "a[2].b", "a[1:4:2]", "a[::2]", "a[:]", "a[::-1]"}
	for _, s := range cases {
		n, err := ParsePath(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, ToSource(n), s)
	}
}

func TestParsePathRejectsNonWordLeader(t *testing.T) {
	_, err := ParsePath("1.b")
	require.Error(t, err)
	var invalid *InvalidPathError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Invalid path: 1.b", err.Error())
}

func TestParsePathRejectsTrailingInput(t *testing.T) {
	_, err := ParsePath("a.b extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid path: a.b extra")
}

func TestParsePathRejectsEmptyString(t *testing.T) {
	_, err := ParsePath("")
	require.Error(t, err)
}

func TestParsePathWrapsUnderlyingCause(t *testing.T) {
	_, err := ParsePath("a[1")
	require.Error(t, err)
	var invalid *InvalidPathError
	require.ErrorAs(t, err, &invalid)
	assert.NotNil(t, invalid.Cause)
	assert.NotNil(t, invalid.Unwrap())
}

func TestIterateYieldsRootFirst(t *testing.T) {
	n, err := ParsePath("root.child[0]")
	require.NoError(t, err)
	var ops []byte
	err = Iterate(n, func(s Step) error {
		if s.IsRoot {
			assert.Equal(t, "root", s.RootTok.Text)
			return nil
		}
		ops = append(ops, s.Op)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{'.', '['}, ops)
}
