package graph

import "socialgraph/internal/record"

// Node labels.
const (
	LabelUser      = "User"
	LabelPost      = "Post"
	LabelComment   = "Comment"
	LabelCommunity = "Community"
	LabelTrend     = "Trend"
	LabelHashtag   = "Hashtag"
	LabelActivity  = "Activity"
	LabelAnalytics = "Analytics"
	LabelPattern   = "Pattern"
	LabelContent   = "Content"
	LabelInfluence = "Influence"
)

// Relationship types.
const (
	RelFollows      = "FOLLOWS"       // User -> User, reverse traversal required
	RelFollowsTrend = "FOLLOWS_TREND" // User -> Trend, reverse traversal required
	RelMemberOf     = "MEMBER_OF"     // User -> Community, reverse traversal required
	RelAdminOf      = "ADMIN_OF"      // User -> Community
	RelAuthoredBy   = "AUTHORED_BY"   // Post/Comment -> User
	RelPostedIn     = "POSTED_IN"     // Post -> Community
	RelOnPost       = "ON_POST"       // Comment -> Post
	RelLikedBy      = "LIKED_BY"      // Post/Comment -> User
	RelTags         = "TAGS"          // Hashtag -> Post/Comment
	RelHasLifecycle = "HAS_LIFECYCLE" // Post -> Content
	RelPerformedBy  = "PERFORMED_BY"  // Activity -> User
	RelInCommunity  = "IN_COMMUNITY"  // Activity -> Community
	RelTracks       = "TRACKS"        // Analytics -> User
	RelObservedIn   = "OBSERVED_IN"   // Pattern -> User/Community
	RelExhibits     = "EXHIBITS"      // Community -> Pattern
	RelRelatedTo    = "RELATED_TO"    // Content -> Post/Comment/User/Community
	RelScores       = "SCORES"        // Influence -> User
)

// labelFor maps an entity type to its node label.
func labelFor(t record.EntityType) string {
	switch t {
	case record.EntityUser:
		return LabelUser
	case record.EntityPost:
		return LabelPost
	case record.EntityComment:
		return LabelComment
	case record.EntityCommunity:
		return LabelCommunity
	case record.EntityTrend:
		return LabelTrend
	case record.EntityHashtag:
		return LabelHashtag
	case record.EntityActivity:
		return LabelActivity
	case record.EntityAnalytics:
		return LabelAnalytics
	case record.EntityPattern:
		return LabelPattern
	case record.EntityContent:
		return LabelContent
	case record.EntityInfluence:
		return LabelInfluence
	}
	return ""
}

// BuiltinDefinitions returns the schema for every node type in the social
// graph. A bidirectional relation appears exactly once, on its owning side,
// with the Reverse flag; the inverse traversal uses the same stored edge.
func BuiltinDefinitions() []TypeDefinition {
	id := Predicate{Name: "id", Kind: KindString, Unique: true}
	externalID := Predicate{Name: "external_id", Kind: KindString, Index: IndexExact}

	return []TypeDefinition{
		{
			Name: LabelUser,
			Predicates: []Predicate{
				id, externalID,
				{Name: "username", Kind: KindString, Unique: true},
				{Name: "email", Kind: KindString, Unique: true},
				{Name: "bio", Kind: KindString},
				{Name: "join_date", Kind: KindDateTime, Index: IndexRange},
				{Name: "is_admin", Kind: KindBool},
				{Name: "is_active", Kind: KindBool},
				{Name: "follower_count", Kind: KindInt, Index: IndexRange},
				{Name: "following_count", Kind: KindInt, Index: IndexRange},
				{Name: "follows", Kind: KindRef, Target: LabelUser, List: true, Reverse: true},
				{Name: "follows_trend", Kind: KindRef, Target: LabelTrend, List: true, Reverse: true},
				{Name: "member_of", Kind: KindRef, Target: LabelCommunity, List: true, Reverse: true},
				{Name: "admin_of", Kind: KindRef, Target: LabelCommunity, List: true},
			},
		},
		{
			Name: LabelPost,
			Predicates: []Predicate{
				id, externalID,
				{Name: "content", Kind: KindString, Index: IndexFulltext},
				{Name: "created_at", Kind: KindDateTime, Index: IndexRange},
				{Name: "likes_count", Kind: KindInt, Index: IndexRange},
				{Name: "shares_count", Kind: KindInt, Index: IndexRange},
				{Name: "is_archived", Kind: KindBool},
				{Name: "authored_by", Kind: KindRef, Target: LabelUser, Reverse: true},
				{Name: "posted_in", Kind: KindRef, Target: LabelCommunity, List: true, Reverse: true},
				{Name: "liked_by", Kind: KindRef, Target: LabelUser, List: true},
				{Name: "has_lifecycle", Kind: KindRef, Target: LabelContent},
			},
		},
		{
			Name: LabelComment,
			Predicates: []Predicate{
				id, externalID,
				{Name: "content", Kind: KindString, Index: IndexFulltext},
				{Name: "created_at", Kind: KindDateTime, Index: IndexRange},
				{Name: "likes_count", Kind: KindInt, Index: IndexRange},
				{Name: "sentiment_score", Kind: KindFloat},
				{Name: "authored_by", Kind: KindRef, Target: LabelUser, Reverse: true},
				{Name: "on_post", Kind: KindRef, Target: LabelPost, Reverse: true},
				{Name: "liked_by", Kind: KindRef, Target: LabelUser, List: true},
			},
		},
		{
			Name: LabelCommunity,
			Predicates: []Predicate{
				id, externalID,
				{Name: "name", Kind: KindString, Unique: true},
				{Name: "description", Kind: KindString},
				{Name: "created_at", Kind: KindDateTime},
				{Name: "health_score", Kind: KindFloat, Index: IndexRange},
				{Name: "exhibits", Kind: KindRef, Target: LabelPattern, List: true},
			},
		},
		{
			Name: LabelTrend,
			Predicates: []Predicate{
				id, externalID,
				{Name: "name", Kind: KindString, Index: IndexExact},
				{Name: "score", Kind: KindFloat, Index: IndexRange},
				{Name: "start_date", Kind: KindDateTime},
			},
		},
		{
			Name: LabelHashtag,
			Predicates: []Predicate{
				id, externalID,
				{Name: "name", Kind: KindString, Unique: true},
				{Name: "usage_count", Kind: KindInt, Index: IndexRange},
				{Name: "trending_score", Kind: KindFloat, Index: IndexRange},
				{Name: "tags", Kind: KindRef, Target: LabelPost, List: true},
			},
		},
		{
			Name: LabelActivity,
			Predicates: []Predicate{
				id, externalID,
				{Name: "type", Kind: KindString, Index: IndexExact},
				{Name: "timestamp", Kind: KindDateTime, Index: IndexRange},
				{Name: "duration", Kind: KindFloat},
				{Name: "performed_by", Kind: KindRef, Target: LabelUser, Reverse: true},
				{Name: "in_community", Kind: KindRef, Target: LabelCommunity},
			},
		},
		{
			Name: LabelAnalytics,
			Predicates: []Predicate{
				id, externalID,
				{Name: "metric_type", Kind: KindString, Index: IndexExact},
				{Name: "value", Kind: KindFloat},
				{Name: "timestamp", Kind: KindDateTime, Index: IndexRange},
				{Name: "tracks", Kind: KindRef, Target: LabelUser, Reverse: true},
			},
		},
		{
			Name: LabelPattern,
			Predicates: []Predicate{
				id, externalID,
				{Name: "type", Kind: KindString, Index: IndexExact},
				{Name: "frequency", Kind: KindFloat},
				{Name: "last_seen", Kind: KindDateTime},
				{Name: "observed_in", Kind: KindRef, Target: LabelUser, List: true},
			},
		},
		{
			Name: LabelContent,
			Predicates: []Predicate{
				id, externalID,
				{Name: "content_type", Kind: KindString, Index: IndexExact},
				{Name: "created_at", Kind: KindDateTime},
				{Name: "engagement_rate", Kind: KindFloat, Index: IndexRange},
				{Name: "lifecycle_stage", Kind: KindString, Index: IndexExact},
				{Name: "related_to", Kind: KindRef, Target: LabelPost, List: true},
			},
		},
		{
			Name: LabelInfluence,
			Predicates: []Predicate{
				id, externalID,
				{Name: "score_value", Kind: KindFloat, Index: IndexRange},
				{Name: "computed_at", Kind: KindDateTime},
				{Name: "factors", Kind: KindString, List: true},
				{Name: "scores", Kind: KindRef, Target: LabelUser, Reverse: true},
			},
		},
	}
}
