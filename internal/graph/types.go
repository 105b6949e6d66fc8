package graph

import "time"

// ============================================================================
// Query result types
// ============================================================================

// UserSummary is the scalar view of a User node.
type UserSummary struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	JoinDate       time.Time `json:"join_date"`
	IsAdmin        bool      `json:"is_admin"`
	IsActive       bool      `json:"is_active"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
}

// FeedComment is a comment attached to a feed post.
type FeedComment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPost is a post in a user's feed, with its community and comments.
type FeedPost struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"created_at"`
	LikesCount int64         `json:"likes_count"`
	Community  string        `json:"community,omitempty"`
	Comments   []FeedComment `json:"comments,omitempty"`
}

// FeedAuthor is a followed user with their recent posts.
type FeedAuthor struct {
	Username string     `json:"username"`
	Posts    []FeedPost `json:"posts"`
}

// CommunityFeed groups feed posts by the community they were posted in.
type CommunityFeed struct {
	Community string     `json:"community"`
	Posts     []FeedPost `json:"posts"`
}

// Feed is the result of the user_feed template. Posts reachable through both
// sources appear in both; the two lists are intentionally not de-duplicated.
type Feed struct {
	User           UserSummary     `json:"user"`
	Following      []FeedAuthor    `json:"following"`
	CommunityPosts []CommunityFeed `json:"community_posts"`
}

// TrendingTopic is one entry of the trending_topics template.
type TrendingTopic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	StartDate time.Time `json:"start_date"`
}

// NetworkMember is a neighbor in the follower network.
type NetworkMember struct {
	Username       string  `json:"username"`
	InfluenceScore float64 `json:"influence_score,omitempty"`
	FollowerCount  int64   `json:"follower_count"`
}

// CommunityInfo is a community a network user belongs to.
type CommunityInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int64  `json:"member_count"`
}

// FollowerNetwork is the result of the follower_network template.
type FollowerNetwork struct {
	User        UserSummary     `json:"user"`
	Followers   []NetworkMember `json:"followers"`
	Following   []NetworkMember `json:"following"`
	Communities []CommunityInfo `json:"communities"`
}

// InfluenceScore is one computed influence entry for a user.
type InfluenceScore struct {
	ScoreValue float64   `json:"score_value"`
	ComputedAt time.Time `json:"computed_at"`
	Factors    []string  `json:"factors"`
}

// InfluenceReport is the result of the influence_score template.
type InfluenceReport struct {
	Username string           `json:"username"`
	Scores   []InfluenceScore `json:"scores"`
}

// CommunityHealth is the result of the community_health template.
type CommunityHealth struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	HealthScore float64   `json:"health_score"`
	MemberCount int64     `json:"member_count"`
	AdminCount  int64     `json:"admin_count"`
	PostCount   int64     `json:"post_count"`
}

// RecommendedPost is one recommendation entry.
type RecommendedPost struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	LikesCount int64     `json:"likes_count"`
}

// Recommendations holds the three disjoint recommendation buckets.
type Recommendations struct {
	FoodAndDining []RecommendedPost `json:"food_and_dining"`
	Art           []RecommendedPost `json:"art"`
	General       []RecommendedPost `json:"general"`
}

// LifecycleEntry is a content node in a lifecycle view, joined with the
// related post where the view's filter needs one.
type LifecycleEntry struct {
	ContentID      string  `json:"content_id"`
	ContentType    string  `json:"content_type"`
	EngagementRate float64 `json:"engagement_rate"`
	LifecycleStage string  `json:"lifecycle_stage,omitempty"`
	PostID         string  `json:"post_id,omitempty"`
	PostLikes      int64   `json:"post_likes,omitempty"`
	PostShares     int64   `json:"post_shares,omitempty"`
}

// ContentLifecycle is the result of the content_lifecycle template.
type ContentLifecycle struct {
	ViralCandidates []LifecycleEntry `json:"viral_candidates"`
	Rising          []LifecycleEntry `json:"rising"`
	Trending        []LifecycleEntry `json:"trending"`
	Decaying        []LifecycleEntry `json:"decaying"`
}

// NetworkGrowth is the result of the network_growth template.
type NetworkGrowth struct {
	Since        time.Time `json:"since"`
	NewUsers     int64     `json:"new_users"`
	TotalUsers   int64     `json:"total_users"`
	FollowEdges  int64     `json:"follow_edges"`
	NewUsernames []string  `json:"new_usernames"`
}

// InteractionTrace is the result of the content_interactions template: posts
// the user can reach plus their analytics trail.
type InteractionTrace struct {
	User           UserSummary     `json:"user"`
	Following      []FeedAuthor    `json:"following"`
	CommunityPosts []CommunityFeed `json:"community_posts"`
	TrackedBy      []MetricSample  `json:"tracked_by"`
}

// MetricSample is one analytics observation attributed to a user.
type MetricSample struct {
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}
