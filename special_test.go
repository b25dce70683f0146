package cfg

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStringISODateTime(t *testing.T) {
	c := New()
	v, err := c.ConvertString("2024-03-05")
	require.NoError(t, err)
	dt, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, dt.Year())
	assert.Equal(t, time.Month(3), dt.Month())
	assert.Equal(t, 5, dt.Day())
}

func TestConvertStringISODateTimeWithOffset(t *testing.T) {
	c := New()
	v, err := c.ConvertString("2024-03-05T10:30:00+02:00")
	require.NoError(t, err)
	dt := v.(time.Time)
	assert.Equal(t, 10, dt.Hour())
	_, off := dt.Zone()
	assert.Equal(t, 2*3600, off)
}

func TestConvertStringEnvVarPresent(t *testing.T) {
	t.Setenv("CFG_TEST_VAR", "hello")
	c := New()
	v, err := c.ConvertString("$CFG_TEST_VAR")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestConvertStringEnvVarWithDefault(t *testing.T) {
	os.Unsetenv("CFG_TEST_MISSING")
	c := New()
	v, err := c.ConvertString("$CFG_TEST_MISSING|fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func TestConvertStringEnvVarWithEmptyDefault(t *testing.T) {
	os.Unsetenv("CFG_TEST_MISSING2")
	c := New()
	v, err := c.ConvertString("$CFG_TEST_MISSING2|")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestConvertStringEnvVarMissingNoDefaultStrict(t *testing.T) {
	os.Unsetenv("CFG_TEST_MISSING3")
	c := New(WithStrictConversions(true))
	_, err := c.ConvertString("$CFG_TEST_MISSING3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to convert string")
}

func TestConvertStringEnvVarMissingNoDefaultNonStrict(t *testing.T) {
	os.Unsetenv("CFG_TEST_MISSING4")
	c := New(WithStrictConversions(false))
	v, err := c.ConvertString("$CFG_TEST_MISSING4")
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestConvertStringUnmatchedStrictFails(t *testing.T) {
	c := New(WithStrictConversions(true))
	_, err := c.ConvertString("not a special value at all!!")
	require.Error(t, err)
}

func TestConvertStringUnmatchedNonStrictReturnsVerbatim(t *testing.T) {
	c := New(WithStrictConversions(false))
	v, err := c.ConvertString("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", v)
}

type testHost struct{}

func (testHost) Resolve(name string) (any, bool) {
	if name == "sys.hostname" {
		return "box1", true
	}
	return nil, false
}

func TestConvertStringDottedHostPath(t *testing.T) {
	c := New(WithHost(testHost{}))
	v, err := c.ConvertString("sys.hostname")
	require.NoError(t, err)
	assert.Equal(t, "box1", v)
}

func TestConvertStringDottedHostPathMissingReturnsTextUnchanged(t *testing.T) {
	c := New(WithHost(testHost{}), WithStrictConversions(true))
	v, err := c.ConvertString("sys.unknown")
	require.NoError(t, err)
	assert.Equal(t, "sys.unknown", v)
}

func TestConvertStringDottedHostPathNoHostReturnsTextUnchanged(t *testing.T) {
	c := New(WithStrictConversions(true))
	v, err := c.ConvertString("sys.hostname")
	require.NoError(t, err)
	assert.Equal(t, "sys.hostname", v)
}

func TestInterpolationOfMappingAndList(t *testing.T) {
	c, err := Load("m: {x: 1}\nl: [1, 2]\ns: `${m} and ${l}`")
	require.NoError(t, err)

	v, err := c.Get("s")
	require.NoError(t, err)
	assert.Equal(t, "{x: 1} and [1, 2]", v)
}
