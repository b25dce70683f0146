package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingValueKeysPreservesInsertionOrder(t *testing.T) {
	c, err := Load("z: 1\na: 2\nm: 3")
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m"}, c.root.Keys())
}

func TestMappingValueBaseGetReturnsUnevaluatedNode(t *testing.T) {
	c, err := Load("a: 1 + 1")
	require.NoError(t, err)

	n, ok := c.root.BaseGet("a")
	require.True(t, ok)
	assert.NotNil(t, n)

	_, ok = c.root.BaseGet("missing")
	assert.False(t, ok)
}

func TestMappingValueGetMissingKeyFails(t *testing.T) {
	c, err := Load("a: 1")
	require.NoError(t, err)

	_, err = c.root.Get("missing")
	require.Error(t, err)
}

func TestDuplicateKeysRejectedByDefault(t *testing.T) {
	_, err := Load("a: 1\na: 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate key")
}

func TestDuplicateKeysAllowedWhenDisabled(t *testing.T) {
	c, err := Load("a: 1\na: 2", WithNoDuplicates(false))
	require.NoError(t, err)

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v, "last occurrence wins")

	assert.Equal(t, []string{"a"}, c.root.Keys())
}

func TestListValueLenAndGet(t *testing.T) {
	c, err := Load("a: [10, 20, 30]")
	require.NoError(t, err)

	lv, err := c.root.Get("a")
	require.NoError(t, err)
	l, ok := lv.(*ListValue)
	require.True(t, ok)
	assert.Equal(t, 3, l.Len())

	v, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
}

func TestAsPlainValueUnwrapsNestedStructures(t *testing.T) {
	c, err := Load("a: { b: [1, {c: 2}] }")
	require.NoError(t, err)

	m, err := c.AsDict()
	require.NoError(t, err)

	inner, ok := m["a"].(map[string]any)
	require.True(t, ok)
	list, ok := inner["b"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	nested, ok := list[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), nested["c"])
}
