package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Recommendation buckets are keyword-classified by content. The thresholds and
// cutoff date are fixed; only the per-bucket limit is a parameter.
const (
	recommendMinLikes = 10
	recommendMinDate  = "2024-01-01T00:00:00Z"
	recommendMaxLimit = 50
)

var recommendationBuckets = []struct {
	name    string
	pattern string
}{
	{"food_and_dining", `(?i).*(food|restaurant|dining|recipe|meal).*`},
	{"art", `(?i).*(art|painting|gallery|exhibit|museum).*`},
	{"general", `(?i).*(news|update|announcement|life).*`},
}

// Lifecycle stage thresholds. Viral and rising candidates additionally
// require a related post above the share or like floor.
const (
	lifecycleViralEngagement = 0.85
	lifecycleViralShares     = 40
	lifecycleRisingLikes     = 150
	lifecycleTrendEngagement = 0.90
	lifecycleDecayEngagement = 0.80
	networkGrowthSampleLimit = 25
	networkGrowthDefaultDays = 30
)

func (q *QueryRunner) recommendations(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	limit := paramInt(p, "limit", 10)
	if limit > recommendMaxLimit {
		limit = recommendMaxLimit
	}

	recs := &Recommendations{
		FoodAndDining: []RecommendedPost{},
		Art:           []RecommendedPost{},
		General:       []RecommendedPost{},
	}

	for _, bucket := range recommendationBuckets {
		result, err := tx.Run(ctx, `
			MATCH (p:Post)
			WHERE p.content =~ $pattern
			  AND coalesce(p.likes_count, 0) >= $minLikes
			  AND p.created_at >= datetime($minDate)
			RETURN p.id AS id, p.content AS content, p.created_at AS created_at,
			       coalesce(p.likes_count, 0) AS likes_count
			ORDER BY likes_count DESC
			LIMIT $limit
		`, map[string]interface{}{
			"pattern":  bucket.pattern,
			"minLikes": recommendMinLikes,
			"minDate":  recommendMinDate,
			"limit":    limit,
		})
		if err != nil {
			return nil, err
		}

		posts := []RecommendedPost{}
		for result.Next(ctx) {
			rec := result.Record()
			posts = append(posts, RecommendedPost{
				ID:         getStringFromRecord(rec, "id"),
				Content:    getStringFromRecord(rec, "content"),
				CreatedAt:  getTimeFromRecord(rec, "created_at"),
				LikesCount: getInt64FromRecord(rec, "likes_count"),
			})
		}
		if err := result.Err(); err != nil {
			return nil, err
		}

		switch bucket.name {
		case "food_and_dining":
			recs.FoodAndDining = posts
		case "art":
			recs.Art = posts
		case "general":
			recs.General = posts
		}
	}
	return recs, nil
}

func (q *QueryRunner) contentLifecycle(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	lifecycle := &ContentLifecycle{
		ViralCandidates: []LifecycleEntry{},
		Rising:          []LifecycleEntry{},
		Trending:        []LifecycleEntry{},
		Decaying:        []LifecycleEntry{},
	}

	var err error
	lifecycle.ViralCandidates, err = q.lifecycleWithPosts(ctx, tx, `
		MATCH (c:Content)-[:RELATED_TO]->(p:Post)
		WHERE c.engagement_rate >= $engagement AND coalesce(p.shares_count, 0) >= $shares
		RETURN c.id AS content_id, c.content_type AS content_type,
		       c.engagement_rate AS engagement_rate, c.lifecycle_stage AS lifecycle_stage,
		       p.id AS post_id, coalesce(p.likes_count, 0) AS post_likes,
		       coalesce(p.shares_count, 0) AS post_shares
		ORDER BY engagement_rate DESC
	`, map[string]interface{}{"engagement": lifecycleViralEngagement, "shares": lifecycleViralShares})
	if err != nil {
		return nil, err
	}

	lifecycle.Rising, err = q.lifecycleWithPosts(ctx, tx, `
		MATCH (c:Content)-[:RELATED_TO]->(p:Post)
		WHERE c.lifecycle_stage = 'rising' AND coalesce(p.likes_count, 0) >= $likes
		RETURN c.id AS content_id, c.content_type AS content_type,
		       c.engagement_rate AS engagement_rate, c.lifecycle_stage AS lifecycle_stage,
		       p.id AS post_id, coalesce(p.likes_count, 0) AS post_likes,
		       coalesce(p.shares_count, 0) AS post_shares
		ORDER BY post_likes DESC
	`, map[string]interface{}{"likes": lifecycleRisingLikes})
	if err != nil {
		return nil, err
	}

	lifecycle.Trending, err = q.lifecycleOnly(ctx, tx, `
		MATCH (c:Content)
		WHERE c.lifecycle_stage = 'trending' AND c.engagement_rate >= $engagement
		RETURN c.id AS content_id, c.content_type AS content_type,
		       c.engagement_rate AS engagement_rate, c.lifecycle_stage AS lifecycle_stage
		ORDER BY engagement_rate DESC
	`, map[string]interface{}{"engagement": lifecycleTrendEngagement})
	if err != nil {
		return nil, err
	}

	lifecycle.Decaying, err = q.lifecycleOnly(ctx, tx, `
		MATCH (c:Content)
		WHERE c.engagement_rate <= $engagement
		RETURN c.id AS content_id, c.content_type AS content_type,
		       c.engagement_rate AS engagement_rate, c.lifecycle_stage AS lifecycle_stage
		ORDER BY engagement_rate ASC
	`, map[string]interface{}{"engagement": lifecycleDecayEngagement})
	if err != nil {
		return nil, err
	}

	return lifecycle, nil
}

func (q *QueryRunner) lifecycleWithPosts(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) ([]LifecycleEntry, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	entries := []LifecycleEntry{}
	for result.Next(ctx) {
		rec := result.Record()
		entries = append(entries, LifecycleEntry{
			ContentID:      getStringFromRecord(rec, "content_id"),
			ContentType:    getStringFromRecord(rec, "content_type"),
			EngagementRate: getFloat64FromRecord(rec, "engagement_rate"),
			LifecycleStage: getStringFromRecord(rec, "lifecycle_stage"),
			PostID:         getStringFromRecord(rec, "post_id"),
			PostLikes:      getInt64FromRecord(rec, "post_likes"),
			PostShares:     getInt64FromRecord(rec, "post_shares"),
		})
	}
	return entries, result.Err()
}

func (q *QueryRunner) lifecycleOnly(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) ([]LifecycleEntry, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	entries := []LifecycleEntry{}
	for result.Next(ctx) {
		rec := result.Record()
		entries = append(entries, LifecycleEntry{
			ContentID:      getStringFromRecord(rec, "content_id"),
			ContentType:    getStringFromRecord(rec, "content_type"),
			EngagementRate: getFloat64FromRecord(rec, "engagement_rate"),
			LifecycleStage: getStringFromRecord(rec, "lifecycle_stage"),
		})
	}
	return entries, result.Err()
}

func (q *QueryRunner) networkGrowth(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	since := paramTime(p, "since", time.Now().AddDate(0, 0, -networkGrowthDefaultDays))

	growth := &NetworkGrowth{Since: since, NewUsernames: []string{}}

	result, err := tx.Run(ctx, `
		MATCH (u:User)
		WHERE u.join_date >= datetime($since)
		RETURN count(u) AS new_users, collect(u.username)[0..$sample] AS usernames
	`, map[string]interface{}{
		"since":  since.UTC().Format(time.RFC3339),
		"sample": networkGrowthSampleLimit,
	})
	if err != nil {
		return nil, err
	}
	if result.Next(ctx) {
		rec := result.Record()
		growth.NewUsers = getInt64FromRecord(rec, "new_users")
		growth.NewUsernames = getStringSliceFromRecord(rec, "usernames")
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	result, err = tx.Run(ctx, `
		MATCH (u:User)
		OPTIONAL MATCH (:User)-[f:FOLLOWS]->(:User)
		RETURN count(DISTINCT u) AS total_users, count(DISTINCT f) AS follow_edges
	`, nil)
	if err != nil {
		return nil, err
	}
	if result.Next(ctx) {
		rec := result.Record()
		growth.TotalUsers = getInt64FromRecord(rec, "total_users")
		growth.FollowEdges = getInt64FromRecord(rec, "follow_edges")
	}
	return growth, result.Err()
}
