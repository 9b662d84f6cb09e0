package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatforms(t *testing.T) {
	cases := map[string]Platforms{
		"":                  AllPlatforms,
		"1":                 Local,
		"3":                 AllPlatforms,
		"local":             Local,
		"gameServer":        GameServer,
		"Local, GameServer": AllPlatforms,
	}
	for in, want := range cases {
		got, err := ParsePlatforms(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"0", "4", "-1", "cloud"} {
		_, err := ParsePlatforms(bad)
		assert.Error(t, err, bad)
	}
}

func TestPlatformsString(t *testing.T) {
	assert.Equal(t, "local", Local.String())
	assert.Equal(t, "local,gameServer", AllPlatforms.String())
	assert.True(t, GameServer.Single())
	assert.False(t, AllPlatforms.Single())
}

func TestPlatformsJSON(t *testing.T) {
	var info struct {
		Platform Platforms `json:"platform"`
	}
	for in, want := range map[string]Platforms{
		`{"platform":"local"}`:             Local,
		`{"platform":"gameServer"}`:        GameServer,
		`{"platform":"local, gameServer"}`: AllPlatforms,
		`{"platform":2}`:                   GameServer,
		`{"platform":1}`:                   Local,
	} {
		info.Platform = 0
		require.NoError(t, json.Unmarshal([]byte(in), &info), in)
		assert.Equal(t, want, info.Platform, in)
	}

	assert.Error(t, json.Unmarshal([]byte(`{"platform":"cloud"}`), &info))
	assert.Error(t, json.Unmarshal([]byte(`{"platform":8}`), &info))

	out, err := json.Marshal(struct {
		Platform Platforms `json:"platform"`
	}{GameServer})
	require.NoError(t, err)
	assert.JSONEq(t, `{"platform":"gameServer"}`, string(out))
}
