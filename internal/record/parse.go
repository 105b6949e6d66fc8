package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp layouts for date columns. RFC 3339 first, date-only as
// a fallback for seed files that carry no time component.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

// Parse validates one flat row against the given entity type and returns the
// typed record. Numeric fields must parse fully, boolean fields accept only
// "true"/"false" (case-insensitive), and required fields must be non-empty.
// The first violation fails the whole record.
func Parse(entityType EntityType, row Row) (Record, error) {
	f := &fieldReader{row: row}

	var rec Record
	switch entityType {
	case EntityUser:
		rec = User{
			ID:             f.required("user_id"),
			Username:       f.required("username"),
			Email:          f.required("email"),
			Bio:            f.optional("bio"),
			JoinDate:       f.timestamp("joinDate"),
			IsAdmin:        f.boolean("isAdmin"),
			IsActive:       f.boolean("isActive"),
			FollowerCount:  f.integer("followerCount"),
			FollowingCount: f.integer("following_count"),
			Follows:        f.list("follows"),
			Trends:         f.list("trends"),
			Communities:    f.list("communities"),
		}
	case EntityPost:
		rec = Post{
			ID:          f.required("post_id"),
			Content:     f.required("content"),
			CreatedAt:   f.timestamp("created_at"),
			LikesCount:  f.integer("likes_count"),
			SharesCount: f.integer("shares_count"),
			IsArchived:  f.boolean("is_archived"),
			Author:      f.optional("author"),
			Communities: f.list("community"),
			Lifecycle:   f.optional("lifecycle"),
		}
	case EntityComment:
		rec = Comment{
			ID:             f.required("comment_id"),
			Content:        f.required("content"),
			CreatedAt:      f.timestamp("created_at"),
			LikesCount:     f.integer("likes_count"),
			SentimentScore: f.float("sentiment_score"),
			Author:         f.optional("author"),
			Post:           f.optional("post"),
			LikedBy:        f.list("liked_by"),
		}
	case EntityCommunity:
		rec = Community{
			ID:          f.required("community_id"),
			Name:        f.required("name"),
			Description: f.optional("description"),
			CreatedAt:   f.timestamp("created_at"),
			HealthScore: f.float("health_score"),
			Members:     f.list("members"),
			Admins:      f.list("admins"),
			Posts:       f.list("posts"),
			Patterns:    f.list("patterns"),
		}
	case EntityTrend:
		rec = Trend{
			ID:        f.required("trend_id"),
			Name:      f.required("name"),
			Score:     f.float("score"),
			StartDate: f.timestamp("start_date"),
			Followers: f.list("followers"),
		}
	case EntityHashtag:
		rec = Hashtag{
			ID:            f.required("hashtag_id"),
			Name:          f.required("name"),
			UsageCount:    f.integer("usage_count"),
			TrendingScore: f.float("trending_score"),
			Posts:         f.list("posts"),
			Comments:      f.list("comments"),
		}
	case EntityActivity:
		rec = Activity{
			ID:        f.required("activity_id"),
			Kind:      f.required("type"),
			Timestamp: f.timestamp("timestamp"),
			Duration:  f.float("duration"),
			User:      f.optional("user"),
			Community: f.optional("community"),
		}
	case EntityAnalytics:
		rec = Analytics{
			ID:         f.required("analytics_id"),
			MetricType: f.required("metric_type"),
			Value:      f.float("value"),
			Timestamp:  f.timestamp("timestamp"),
			User:       f.optional("user"),
		}
	case EntityPattern:
		rec = Pattern{
			ID:        f.required("pattern_id"),
			Kind:      f.required("type"),
			Frequency: f.float("frequency"),
			LastSeen:  f.timestamp("last_seen"),
			User:      f.optional("user"),
			Community: f.optional("community"),
		}
	case EntityContent:
		rec = Content{
			ID:                 f.required("content_id"),
			ContentType:        f.required("type"),
			CreatedAt:          f.timestamp("created_at"),
			EngagementRate:     f.float("engagement_rate"),
			LifecycleStage:     f.optional("lifecycle_stage"),
			RelatedPosts:       f.list("related_posts"),
			RelatedComments:    f.list("related_comments"),
			RelatedUsers:       f.list("related_users"),
			RelatedCommunities: f.list("related_communities"),
		}
	case EntityInfluence:
		rec = Influence{
			ID:         f.required("score_id"),
			ScoreValue: f.float("score_value"),
			ComputedAt: f.timestamp("computed_at"),
			Factors:    f.list("factors"),
			User:       f.optional("user"),
		}
	default:
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	if f.err != nil {
		return nil, f.err
	}
	return rec, nil
}

// fieldReader reads typed columns from a row, remembering the first error so
// callers can build the whole struct before checking validity.
type fieldReader struct {
	row Row
	err error
}

func (f *fieldReader) fail(column, format string, args ...interface{}) {
	if f.err == nil {
		f.err = fmt.Errorf("column %q: %s", column, fmt.Sprintf(format, args...))
	}
}

func (f *fieldReader) required(column string) string {
	v := strings.TrimSpace(f.row[column])
	if v == "" {
		f.fail(column, "required field is empty")
	}
	return v
}

func (f *fieldReader) optional(column string) string {
	return strings.TrimSpace(f.row[column])
}

func (f *fieldReader) integer(column string) int {
	v := strings.TrimSpace(f.row[column])
	if v == "" {
		f.fail(column, "required field is empty")
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail(column, "not an integer: %q", v)
		return 0
	}
	return n
}

func (f *fieldReader) float(column string) float64 {
	v := strings.TrimSpace(f.row[column])
	if v == "" {
		f.fail(column, "required field is empty")
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.fail(column, "not a number: %q", v)
		return 0
	}
	return n
}

func (f *fieldReader) boolean(column string) bool {
	v := strings.TrimSpace(f.row[column])
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	default:
		f.fail(column, "not a boolean: %q", v)
		return false
	}
}

func (f *fieldReader) timestamp(column string) time.Time {
	v := strings.TrimSpace(f.row[column])
	if v == "" {
		f.fail(column, "required field is empty")
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	f.fail(column, "not a timestamp: %q", v)
	return time.Time{}
}

// list splits a comma-delimited relationship column into external ids.
// An empty column yields no ids.
func (f *fieldReader) list(column string) []string {
	v := strings.TrimSpace(f.row[column])
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
