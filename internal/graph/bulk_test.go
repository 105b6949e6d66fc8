package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"socialgraph/internal/record"
)

func TestNodeProps_User(t *testing.T) {
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	props := nodeProps("internal-1", record.User{
		ID:             "u1",
		Username:       "alice",
		Email:          "alice@example.com",
		JoinDate:       joined,
		IsActive:       true,
		FollowerCount:  2,
		FollowingCount: 1,
		Follows:        []string{"u2"},
	})

	assert.Equal(t, "internal-1", props["id"])
	assert.Equal(t, "u1", props["external_id"])
	assert.Equal(t, "alice", props["username"])
	assert.Equal(t, joined, props["join_date"])
	assert.Equal(t, 2, props["follower_count"])

	// Relationship columns are resolved separately and never stored as
	// node properties.
	_, ok := props["follows"]
	assert.False(t, ok)
}

func TestNodeProps_Trend(t *testing.T) {
	props := nodeProps("internal-2", record.Trend{
		ID:        "t1",
		Name:      "gardening",
		Score:     9.0,
		Followers: []string{"u1"},
	})

	assert.Equal(t, "gardening", props["name"])
	assert.Equal(t, 9.0, props["score"])
	_, ok := props["followers"]
	assert.False(t, ok)
}

func TestNodeProps_InfluenceFactorsAreStored(t *testing.T) {
	props := nodeProps("internal-3", record.Influence{
		ID:         "s1",
		ScoreValue: 72.5,
		Factors:    []string{"reach", "engagement"},
		User:       "u1",
	})

	// factors is a scalar list, not a relationship; it stays on the node.
	assert.Equal(t, []string{"reach", "engagement"}, props["factors"])
	assert.Equal(t, 72.5, props["score_value"])
	_, ok := props["user"]
	assert.False(t, ok)
}
