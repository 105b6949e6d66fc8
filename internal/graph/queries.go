package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// Params carries the named parameters of one template invocation.
type Params map[string]interface{}

// templateFunc executes one traversal inside an already-open read
// transaction. Templates never write.
type templateFunc func(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error)

// QueryRunner executes fixed, parameterized read-only traversals. Templates
// are stateless and reentrant; each invocation runs in its own read
// transaction against a stable snapshot.
type QueryRunner struct {
	store     *Store
	logger    *zap.Logger
	templates map[string]templateFunc
}

// NewQueryRunner creates a query runner with every built-in template
// registered.
func NewQueryRunner(store *Store) *QueryRunner {
	q := &QueryRunner{
		store:  store,
		logger: logger.Get(),
	}
	q.templates = map[string]templateFunc{
		"user_feed":            q.userFeed,
		"trending_topics":      q.trendingTopics,
		"follower_network":     q.followerNetwork,
		"influence_score":      q.influenceScore,
		"community_health":     q.communityHealth,
		"content_interactions": q.contentInteractions,
		"recommendations":      q.recommendations,
		"content_lifecycle":    q.contentLifecycle,
		"network_growth":       q.networkGrowth,
	}
	return q
}

// Templates returns the registered template names.
func (q *QueryRunner) Templates() []string {
	names := make([]string, 0, len(q.templates))
	for name := range q.templates {
		names = append(names, name)
	}
	return names
}

// RunTemplate executes a template by name. Unknown names and missing root
// entities fail; zero matching children yield an empty result instead.
func (q *QueryRunner) RunTemplate(ctx context.Context, name string, params Params) (interface{}, error) {
	fn, ok := q.templates[name]
	if !ok {
		return nil, apperrors.NewUnknownTemplate(name)
	}

	session := q.store.ReadSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return fn(ctx, tx, params)
	})
	if err != nil {
		return nil, err
	}
	q.logger.Debug("Template executed", zap.String("template", name))
	return result, nil
}

// ============================================================================
// Core templates
// ============================================================================

func (q *QueryRunner) userFeed(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	username, err := paramString(p, "username")
	if err != nil {
		return nil, err
	}
	limit := paramInt(p, "limit", 20)

	user, err := fetchUserSummary(ctx, tx, username)
	if err != nil {
		return nil, err
	}

	feed := &Feed{User: *user, Following: []FeedAuthor{}, CommunityPosts: []CommunityFeed{}}

	result, err := tx.Run(ctx, `
		MATCH (u:User {username: $username})-[:FOLLOWS]->(f:User)
		OPTIONAL MATCH (f)<-[:AUTHORED_BY]-(p:Post)
		OPTIONAL MATCH (p)-[:POSTED_IN]->(c:Community)
		OPTIONAL MATCH (p)<-[:ON_POST]-(cm:Comment)
		WITH f, p, c,
		     collect(CASE WHEN cm IS NULL THEN NULL
		             ELSE {id: cm.id, content: cm.content, created_at: cm.created_at} END) AS comments
		ORDER BY p.created_at DESC
		WITH f, collect(CASE WHEN p IS NULL THEN NULL
		               ELSE {id: p.id, content: p.content, created_at: p.created_at,
		                     likes_count: coalesce(p.likes_count, 0),
		                     community: c.name, comments: comments} END)[0..$limit] AS posts
		RETURN f.username AS username, posts
		ORDER BY username
	`, map[string]interface{}{"username": username, "limit": limit})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		feed.Following = append(feed.Following, FeedAuthor{
			Username: getStringFromRecord(rec, "username"),
			Posts:    decodeFeedPosts(rec, "posts"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	result, err = tx.Run(ctx, `
		MATCH (u:User {username: $username})-[:MEMBER_OF]->(c:Community)
		OPTIONAL MATCH (c)<-[:POSTED_IN]-(p:Post)
		WITH c, p
		ORDER BY p.created_at DESC
		WITH c, collect(CASE WHEN p IS NULL THEN NULL
		               ELSE {id: p.id, content: p.content, created_at: p.created_at,
		                     likes_count: coalesce(p.likes_count, 0), community: c.name} END)[0..$limit] AS posts
		RETURN c.name AS community, posts
		ORDER BY community
	`, map[string]interface{}{"username": username, "limit": limit})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		feed.CommunityPosts = append(feed.CommunityPosts, CommunityFeed{
			Community: getStringFromRecord(rec, "community"),
			Posts:     decodeFeedPosts(rec, "posts"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return feed, nil
}

func (q *QueryRunner) trendingTopics(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	limit := paramInt(p, "limit", 10)

	result, err := tx.Run(ctx, `
		MATCH (t:Trend)
		WHERE t.score > 0
		RETURN t.id AS id, t.name AS name, t.score AS score, t.start_date AS start_date
		ORDER BY t.score DESC
		LIMIT $limit
	`, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}

	topics := []TrendingTopic{}
	for result.Next(ctx) {
		rec := result.Record()
		topics = append(topics, TrendingTopic{
			ID:        getStringFromRecord(rec, "id"),
			Name:      getStringFromRecord(rec, "name"),
			Score:     getFloat64FromRecord(rec, "score"),
			StartDate: getTimeFromRecord(rec, "start_date"),
		})
	}
	return topics, result.Err()
}

func (q *QueryRunner) followerNetwork(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	username, err := paramString(p, "username")
	if err != nil {
		return nil, err
	}

	user, err := fetchUserSummary(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	network := &FollowerNetwork{
		User:        *user,
		Followers:   []NetworkMember{},
		Following:   []NetworkMember{},
		Communities: []CommunityInfo{},
	}

	result, err := tx.Run(ctx, `
		MATCH (u:User {username: $username})<-[:FOLLOWS]-(f:User)
		OPTIONAL MATCH (f)<-[:SCORES]-(i:Influence)
		RETURN f.username AS username,
		       coalesce(max(i.score_value), 0.0) AS influence,
		       coalesce(f.follower_count, 0) AS follower_count
		ORDER BY influence DESC
	`, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		network.Followers = append(network.Followers, NetworkMember{
			Username:       getStringFromRecord(rec, "username"),
			InfluenceScore: getFloat64FromRecord(rec, "influence"),
			FollowerCount:  getInt64FromRecord(rec, "follower_count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	result, err = tx.Run(ctx, `
		MATCH (u:User {username: $username})-[:FOLLOWS]->(f:User)
		RETURN f.username AS username, coalesce(f.follower_count, 0) AS follower_count
		ORDER BY follower_count DESC
	`, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		network.Following = append(network.Following, NetworkMember{
			Username:      getStringFromRecord(rec, "username"),
			FollowerCount: getInt64FromRecord(rec, "follower_count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	result, err = tx.Run(ctx, `
		MATCH (u:User {username: $username})-[:MEMBER_OF]->(c:Community)
		OPTIONAL MATCH (c)<-[:MEMBER_OF]-(m:User)
		RETURN c.name AS name, c.description AS description, count(DISTINCT m) AS member_count
		ORDER BY member_count DESC
	`, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		network.Communities = append(network.Communities, CommunityInfo{
			Name:        getStringFromRecord(rec, "name"),
			Description: getStringFromRecord(rec, "description"),
			MemberCount: getInt64FromRecord(rec, "member_count"),
		})
	}
	return network, result.Err()
}

func (q *QueryRunner) influenceScore(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	username, err := paramString(p, "username")
	if err != nil {
		return nil, err
	}

	if _, err := fetchUserSummary(ctx, tx, username); err != nil {
		return nil, err
	}

	result, err := tx.Run(ctx, `
		MATCH (u:User {username: $username})<-[:SCORES]-(i:Influence)
		RETURN i.score_value AS score_value, i.computed_at AS computed_at, i.factors AS factors
		ORDER BY computed_at DESC
	`, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}

	report := &InfluenceReport{Username: username, Scores: []InfluenceScore{}}
	for result.Next(ctx) {
		rec := result.Record()
		report.Scores = append(report.Scores, InfluenceScore{
			ScoreValue: getFloat64FromRecord(rec, "score_value"),
			ComputedAt: getTimeFromRecord(rec, "computed_at"),
			Factors:    getStringSliceFromRecord(rec, "factors"),
		})
	}
	return report, result.Err()
}

func (q *QueryRunner) communityHealth(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	name, err := paramString(p, "name")
	if err != nil {
		return nil, err
	}

	result, err := tx.Run(ctx, `
		MATCH (c:Community {name: $name})
		OPTIONAL MATCH (c)<-[:MEMBER_OF]-(m:User)
		OPTIONAL MATCH (c)<-[:ADMIN_OF]-(a:User)
		OPTIONAL MATCH (c)<-[:POSTED_IN]-(p:Post)
		RETURN c.name AS name, c.description AS description, c.created_at AS created_at,
		       coalesce(c.health_score, 0.0) AS health_score,
		       count(DISTINCT m) AS member_count,
		       count(DISTINCT a) AS admin_count,
		       count(DISTINCT p) AS post_count
	`, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewNotFound("community", name)
	}
	rec := result.Record()
	return &CommunityHealth{
		Name:        getStringFromRecord(rec, "name"),
		Description: getStringFromRecord(rec, "description"),
		CreatedAt:   getTimeFromRecord(rec, "created_at"),
		HealthScore: getFloat64FromRecord(rec, "health_score"),
		MemberCount: getInt64FromRecord(rec, "member_count"),
		AdminCount:  getInt64FromRecord(rec, "admin_count"),
		PostCount:   getInt64FromRecord(rec, "post_count"),
	}, nil
}

func (q *QueryRunner) contentInteractions(ctx context.Context, tx neo4j.ManagedTransaction, p Params) (interface{}, error) {
	feedAny, err := q.userFeed(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	feed := feedAny.(*Feed)

	trace := &InteractionTrace{
		User:           feed.User,
		Following:      feed.Following,
		CommunityPosts: feed.CommunityPosts,
		TrackedBy:      []MetricSample{},
	}

	result, err := tx.Run(ctx, `
		MATCH (u:User {username: $username})<-[:TRACKS]-(a:Analytics)
		RETURN a.metric_type AS metric_type, a.value AS value, a.timestamp AS timestamp
		ORDER BY timestamp DESC
	`, map[string]interface{}{"username": feed.User.Username})
	if err != nil {
		return nil, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		trace.TrackedBy = append(trace.TrackedBy, MetricSample{
			MetricType: getStringFromRecord(rec, "metric_type"),
			Value:      getFloat64FromRecord(rec, "value"),
			Timestamp:  getTimeFromRecord(rec, "timestamp"),
		})
	}
	return trace, result.Err()
}

// ============================================================================
// Shared decoding
// ============================================================================

// fetchUserSummary resolves the root user of a template or fails with
// NotFoundError.
func fetchUserSummary(ctx context.Context, tx neo4j.ManagedTransaction, username string) (*UserSummary, error) {
	result, err := tx.Run(ctx, `
		MATCH (u:User {username: $username})
		RETURN u.id AS id, u.username AS username, u.email AS email, u.bio AS bio,
		       u.join_date AS join_date, u.is_admin AS is_admin, u.is_active AS is_active,
		       coalesce(u.follower_count, 0) AS follower_count,
		       coalesce(u.following_count, 0) AS following_count
	`, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewNotFound("user", username)
	}
	rec := result.Record()
	return &UserSummary{
		ID:             getStringFromRecord(rec, "id"),
		Username:       getStringFromRecord(rec, "username"),
		Email:          getStringFromRecord(rec, "email"),
		Bio:            getStringFromRecord(rec, "bio"),
		JoinDate:       getTimeFromRecord(rec, "join_date"),
		IsAdmin:        getBoolFromRecord(rec, "is_admin"),
		IsActive:       getBoolFromRecord(rec, "is_active"),
		FollowerCount:  getInt64FromRecord(rec, "follower_count"),
		FollowingCount: getInt64FromRecord(rec, "following_count"),
	}, nil
}

func decodeFeedPosts(rec *neo4j.Record, key string) []FeedPost {
	val, ok := rec.Get(key)
	if !ok || val == nil {
		return []FeedPost{}
	}
	items, ok := val.([]interface{})
	if !ok {
		return []FeedPost{}
	}
	posts := make([]FeedPost, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		post := FeedPost{
			ID:         getStringFromMap(m, "id", ""),
			Content:    getStringFromMap(m, "content", ""),
			CreatedAt:  getTimeFromMap(m, "created_at"),
			LikesCount: getInt64FromMap(m, "likes_count", 0),
			Community:  getStringFromMap(m, "community", ""),
		}
		if comments, ok := m["comments"].([]interface{}); ok {
			for _, c := range comments {
				cm, ok := c.(map[string]interface{})
				if !ok {
					continue
				}
				post.Comments = append(post.Comments, FeedComment{
					ID:        getStringFromMap(cm, "id", ""),
					Content:   getStringFromMap(cm, "content", ""),
					CreatedAt: getTimeFromMap(cm, "created_at"),
				})
			}
		}
		posts = append(posts, post)
	}
	return posts
}

// ============================================================================
// Parameter helpers
// ============================================================================

func paramString(p Params, key string) (string, error) {
	val, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %s must be a non-empty string", key)
	}
	return s, nil
}

func paramInt(p Params, key string, defaultValue int) int {
	val, ok := p[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

func paramTime(p Params, key string, defaultValue time.Time) time.Time {
	val, ok := p[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return defaultValue
}
