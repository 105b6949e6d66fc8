package record

import "time"

// EntityType identifies one of the node types in the social graph.
type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityPost      EntityType = "post"
	EntityComment   EntityType = "comment"
	EntityCommunity EntityType = "community"
	EntityTrend     EntityType = "trend"
	EntityHashtag   EntityType = "hashtag"
	EntityActivity  EntityType = "activity"
	EntityAnalytics EntityType = "analytics"
	EntityPattern   EntityType = "pattern"
	EntityContent   EntityType = "content"
	EntityInfluence EntityType = "influence"
)

// AllEntityTypes lists every entity type in a load-safe order. Node batches
// carry no inter-dependency, so the order only has to be deterministic.
var AllEntityTypes = []EntityType{
	EntityUser,
	EntityPost,
	EntityComment,
	EntityCommunity,
	EntityTrend,
	EntityHashtag,
	EntityActivity,
	EntityAnalytics,
	EntityPattern,
	EntityContent,
	EntityInfluence,
}

// Row is one flat CSV record keyed by header column name.
type Row map[string]string

// Record is a validated, typed entity record produced at the loader boundary.
type Record interface {
	// ExternalID returns the identifier used in source records, distinct
	// from the internal node identifier assigned at creation.
	ExternalID() string
	// Type returns the entity type of the record.
	Type() EntityType
}

// User is the root identity entity.
type User struct {
	ID             string
	Username       string
	Email          string
	Bio            string
	JoinDate       time.Time
	IsAdmin        bool
	IsActive       bool
	FollowerCount  int
	FollowingCount int

	// Relationship columns (external ids)
	Follows     []string
	Trends      []string
	Communities []string
}

func (u User) ExternalID() string { return u.ID }
func (u User) Type() EntityType   { return EntityUser }

// Post is authored by exactly one User.
type Post struct {
	ID          string
	Content     string
	CreatedAt   time.Time
	LikesCount  int
	SharesCount int
	IsArchived  bool

	Author      string
	Communities []string
	Lifecycle   string
}

func (p Post) ExternalID() string { return p.ID }
func (p Post) Type() EntityType   { return EntityPost }

// Comment is authored by one User and attached to one Post.
type Comment struct {
	ID             string
	Content        string
	CreatedAt      time.Time
	LikesCount     int
	SentimentScore float64

	Author  string
	Post    string
	LikedBy []string
}

func (c Comment) ExternalID() string { return c.ID }
func (c Comment) Type() EntityType   { return EntityComment }

// Community has members, admins and posts.
type Community struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	HealthScore float64

	Members  []string
	Admins   []string
	Posts    []string
	Patterns []string
}

func (c Community) ExternalID() string { return c.ID }
func (c Community) Type() EntityType   { return EntityCommunity }

// Trend has follower Users.
type Trend struct {
	ID        string
	Name      string
	Score     float64
	StartDate time.Time

	Followers []string
}

func (t Trend) ExternalID() string { return t.ID }
func (t Trend) Type() EntityType   { return EntityTrend }

// Hashtag is attached to Posts and Comments.
type Hashtag struct {
	ID            string
	Name          string
	UsageCount    int
	TrendingScore float64

	Posts    []string
	Comments []string
}

func (h Hashtag) ExternalID() string { return h.ID }
func (h Hashtag) Type() EntityType   { return EntityHashtag }

// Activity is attributed to one User, optionally one Community.
type Activity struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Duration  float64

	User      string
	Community string
}

func (a Activity) ExternalID() string { return a.ID }
func (a Activity) Type() EntityType   { return EntityActivity }

// Analytics is attributed to one User.
type Analytics struct {
	ID         string
	MetricType string
	Value      float64
	Timestamp  time.Time

	User string
}

func (a Analytics) ExternalID() string { return a.ID }
func (a Analytics) Type() EntityType   { return EntityAnalytics }

// Pattern is attributed to one User and/or Community.
type Pattern struct {
	ID        string
	Kind      string
	Frequency float64
	LastSeen  time.Time

	User      string
	Community string
}

func (p Pattern) ExternalID() string { return p.ID }
func (p Pattern) Type() EntityType   { return EntityPattern }

// Content links to related Posts, Comments, Users and Communities.
type Content struct {
	ID             string
	ContentType    string
	CreatedAt      time.Time
	EngagementRate float64
	LifecycleStage string

	RelatedPosts       []string
	RelatedComments    []string
	RelatedUsers       []string
	RelatedCommunities []string
}

func (c Content) ExternalID() string { return c.ID }
func (c Content) Type() EntityType   { return EntityContent }

// Influence is a computed score attributed to one User.
type Influence struct {
	ID         string
	ScoreValue float64
	ComputedAt time.Time
	Factors    []string

	User string
}

func (i Influence) ExternalID() string { return i.ID }
func (i Influence) Type() EntityType   { return EntityInfluence }
