package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamString(t *testing.T) {
	v, err := paramString(Params{"username": "alice"}, "username")
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	_, err = paramString(Params{}, "username")
	assert.Error(t, err)

	_, err = paramString(Params{"username": ""}, "username")
	assert.Error(t, err)

	_, err = paramString(Params{"username": 42}, "username")
	assert.Error(t, err)
}

func TestParamInt(t *testing.T) {
	assert.Equal(t, 5, paramInt(Params{"limit": 5}, "limit", 10))
	assert.Equal(t, 5, paramInt(Params{"limit": int64(5)}, "limit", 10))
	assert.Equal(t, 5, paramInt(Params{"limit": 5.0}, "limit", 10))
	assert.Equal(t, 10, paramInt(Params{}, "limit", 10))
	assert.Equal(t, 10, paramInt(Params{"limit": "five"}, "limit", 10))
}

func TestParamTime(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	parsed := paramTime(Params{"since": "2024-06-15T10:00:00Z"}, "since", fallback)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), parsed)

	parsed = paramTime(Params{"since": "2024-06-15"}, "since", fallback)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), parsed)

	assert.Equal(t, fallback, paramTime(Params{}, "since", fallback))
	assert.Equal(t, fallback, paramTime(Params{"since": "not a date"}, "since", fallback))
}

func TestTemplatesRegistered(t *testing.T) {
	runner := NewQueryRunner(nil)
	names := runner.Templates()

	for _, expected := range []string{
		"user_feed", "trending_topics", "follower_network", "influence_score",
		"community_health", "content_interactions", "recommendations",
		"content_lifecycle", "network_growth",
	} {
		assert.Contains(t, names, expected)
	}
}
