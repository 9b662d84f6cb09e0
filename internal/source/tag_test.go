package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostTagKnownValues(t *testing.T) {
	assert.Equal(t, int32(-156862045), HostTag("example.com"))
	assert.Equal(t, int32(-833128180), HostTag("sigame.ru"))
}

func TestStableHostTagIgnoresCasePathAndPort(t *testing.T) {
	base, err := StableHostTag("https://example.com/a")
	require.NoError(t, err)

	for _, uri := range []string{
		"https://EXAMPLE.com/b?x=1",
		"http://example.com:8080/",
		"https://Example.Com",
	} {
		tag, err := StableHostTag(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, base, tag, uri)
	}

	other, err := StableHostTag("https://vk.com/a")
	require.NoError(t, err)
	assert.NotEqual(t, base, other)
}

func TestStableHostTagRejectsRelative(t *testing.T) {
	_, err := StableHostTag("/just/a/path")
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = StableHostTag("://bad")
	assert.ErrorIs(t, err, ErrInvalidSource)
}
