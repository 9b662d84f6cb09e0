package game

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationString(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{40 * time.Minute, "00:40:00"},
		{25*time.Hour + 2*time.Second, "1.01:00:02"},
		{time.Second + 500*time.Millisecond, "00:00:01.5000000"},
		{-90 * time.Second, "-00:01:30"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Duration(c.in).String(), "duration %s", c.in)
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"00:40:00", 40 * time.Minute},
		{"1.01:00:02", 25*time.Hour + 2*time.Second},
		{"00:00:01.5", time.Second + 500*time.Millisecond},
		{"00:00:00.0000001", 100 * time.Nanosecond},
		{"-00:01:30", -90 * time.Second},
		{"40m", 40 * time.Minute},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, Duration(c.want), got, c.in)
	}

	for _, bad := range []string{"", "1:2", "00:61:00", "00:00:00.12345678", "x:00:00", "soon"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestDurationJSON(t *testing.T) {
	data, err := json.Marshal(GamesStatistic{GameCount: 2, TotalDuration: Duration(90 * time.Minute)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"gameCount":2,"totalDuration":"01:30:00"}`, string(data))

	var stat GamesStatistic
	require.NoError(t, json.Unmarshal(data, &stat))
	assert.Equal(t, Duration(90*time.Minute), stat.TotalDuration)

	assert.Error(t, json.Unmarshal([]byte(`{"totalDuration":5400}`), &stat))
}

func TestAddSaturating(t *testing.T) {
	assert.Equal(t, 3*time.Second, addSaturating(time.Second, 2*time.Second))
	assert.Equal(t, time.Duration(math.MaxInt64), addSaturating(math.MaxInt64-1, 2))
}
