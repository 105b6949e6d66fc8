package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUserRow() Row {
	return Row{
		"user_id":         "u1",
		"username":        "alice",
		"email":           "alice@example.com",
		"bio":             "hello",
		"joinDate":        "2024-03-01T10:00:00Z",
		"isAdmin":         "false",
		"isActive":        "true",
		"followerCount":   "2",
		"following_count": "1",
		"follows":         "u2, u3",
		"trends":          "",
		"communities":     "c1",
	}
}

func TestParseUser(t *testing.T) {
	rec, err := Parse(EntityUser, validUserRow())
	require.NoError(t, err)

	user, ok := rec.(User)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "u1", user.ExternalID())
	assert.Equal(t, EntityUser, user.Type())
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, 2, user.FollowerCount)
	assert.Equal(t, []string{"u2", "u3"}, user.Follows)
	assert.Empty(t, user.Trends)
	assert.Equal(t, []string{"c1"}, user.Communities)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), user.JoinDate)
}

func TestParseUser_DateOnlyTimestamp(t *testing.T) {
	row := validUserRow()
	row["joinDate"] = "2024-03-01"

	rec, err := Parse(EntityUser, row)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.(User).JoinDate)
}

func TestParseUser_MissingRequiredField(t *testing.T) {
	row := validUserRow()
	row["username"] = ""

	_, err := Parse(EntityUser, row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestParseUser_MalformedInteger(t *testing.T) {
	row := validUserRow()
	row["followerCount"] = "two"

	_, err := Parse(EntityUser, row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "followerCount")
}

func TestParseUser_StrictBoolean(t *testing.T) {
	// Only true/false parse; near-misses fail the whole record.
	for _, value := range []string{"yes", "1", "t", ""} {
		row := validUserRow()
		row["isActive"] = value
		_, err := Parse(EntityUser, row)
		assert.Error(t, err, "value %q should not parse as boolean", value)
	}

	row := validUserRow()
	row["isActive"] = "TRUE"
	_, err := Parse(EntityUser, row)
	assert.NoError(t, err, "boolean parsing is case-insensitive")
}

func TestParseUser_FirstErrorWins(t *testing.T) {
	row := validUserRow()
	row["email"] = ""
	row["followerCount"] = "bad"

	_, err := Parse(EntityUser, row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.NotContains(t, err.Error(), "followerCount")
}

func TestParsePost(t *testing.T) {
	rec, err := Parse(EntityPost, Row{
		"post_id":      "p1",
		"content":      "first post",
		"created_at":   "2024-05-01T08:30:00Z",
		"likes_count":  "12",
		"shares_count": "3",
		"is_archived":  "false",
		"author":       "u1",
		"community":    "c1,c2",
		"lifecycle":    "ct1",
	})
	require.NoError(t, err)

	post := rec.(Post)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "u1", post.Author)
	assert.Equal(t, []string{"c1", "c2"}, post.Communities)
	assert.Equal(t, "ct1", post.Lifecycle)
	assert.Equal(t, 12, post.LikesCount)
}

func TestParseInfluence(t *testing.T) {
	rec, err := Parse(EntityInfluence, Row{
		"score_id":    "s1",
		"score_value": "72.5",
		"computed_at": "2024-06-01",
		"factors":     "reach,engagement",
		"user":        "u1",
	})
	require.NoError(t, err)

	influence := rec.(Influence)
	assert.Equal(t, 72.5, influence.ScoreValue)
	assert.Equal(t, []string{"reach", "engagement"}, influence.Factors)
	assert.Equal(t, "u1", influence.User)
}

func TestParse_UnknownEntityType(t *testing.T) {
	_, err := Parse(EntityType("widget"), Row{})
	assert.Error(t, err)
}

func TestListColumn_TrimsAndDropsEmpties(t *testing.T) {
	row := validUserRow()
	row["follows"] = " u2 , , u3,"

	rec, err := Parse(EntityUser, row)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, rec.(User).Follows)
}
