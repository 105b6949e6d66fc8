package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"socialgraph/internal/record"
	apperrors "socialgraph/pkg/errors"
)

// Integration tests require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD to override the defaults.

func createTestStore(t *testing.T) *Store {
	t.Helper()

	uri := envOr("NEO4J_URI", "bolt://localhost:7687")
	user := envOr("NEO4J_USER", "neo4j")
	password := envOr("NEO4J_PASSWORD", "password")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		t.Fatalf("Failed to verify connectivity: %v", err)
	}

	t.Cleanup(func() { driver.Close(context.Background()) })
	return NewStore(driver, envOr("NEO4J_DATABASE", ""))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// cleanupPrefix removes every node carrying the test run prefix, plus posts
// authored by prefixed users (mutation-created posts get opaque ids).
func cleanupPrefix(t *testing.T, store *Store, prefix string) {
	t.Helper()
	ctx := context.Background()
	_, err := store.Run(ctx, `
		MATCH (n)
		WHERE n.external_id STARTS WITH $prefix
		   OR n.username STARTS WITH $prefix
		   OR n.name STARTS WITH $prefix
		OPTIONAL MATCH (p:Post)-[:AUTHORED_BY]->(n)
		DETACH DELETE n, p
	`, map[string]interface{}{"prefix": prefix})
	if err != nil {
		t.Logf("cleanup failed: %v", err)
	}
}

func runPrefix() string {
	return fmt.Sprintf("it%d-", time.Now().UnixNano())
}

func TestRegistry_ApplyIdempotence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	registry := NewRegistry(store)

	if err := registry.ApplyAll(ctx); err != nil {
		t.Fatalf("First ApplyAll failed: %v", err)
	}
	// Identical reapply is a no-op.
	if err := registry.ApplyAll(ctx); err != nil {
		t.Fatalf("Second ApplyAll failed: %v", err)
	}

	// A conflicting redefinition of a shared predicate must fail.
	conflicting := TypeDefinition{
		Name: LabelUser,
		Predicates: []Predicate{
			{Name: "id", Kind: KindInt, Unique: true},
		},
	}
	err := registry.Apply(ctx, conflicting)
	if err == nil {
		t.Fatal("Expected schema conflict, got nil")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeSchema) {
		t.Errorf("Expected schema error, got %v", err)
	}
}

func TestBulkLoad_FeedAndTrending(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	pfx := runPrefix()
	defer cleanupPrefix(t, store, pfx)

	dir := t.TempDir()
	writeFile(t, dir, "users.csv", fmt.Sprintf(
		"user_id,username,email,bio,joinDate,isAdmin,isActive,followerCount,following_count,follows,trends,communities\n"+
			"%[1]salice,%[1]salice,%[1]salice@example.com,,2024-01-01,false,true,0,2,\"%[1]sbob,%[1]scarol\",,\n"+
			"%[1]sbob,%[1]sbob,%[1]sbob@example.com,,2024-01-02,false,true,1,0,,,\n"+
			"%[1]scarol,%[1]scarol,%[1]scarol@example.com,,2024-01-03,false,true,1,0,,,\n"+
			"%[1]sdave,%[1]sdave,%[1]sdave@example.com,,2024-01-04,false,true,0,0,,,\n"+
			"%[1]sdave,%[1]sdave-again,%[1]sdave2@example.com,,2024-01-05,false,true,0,0,%[1]salice,,\n", pfx))
	writeFile(t, dir, "post.csv", fmt.Sprintf(
		"post_id,content,created_at,likes_count,shares_count,is_archived,author,community,lifecycle\n"+
			"%[1]sp1,carol says hi,2024-02-01T10:00:00Z,3,0,false,%[1]scarol,,\n", pfx))
	writeFile(t, dir, "trends.csv", fmt.Sprintf(
		"trend_id,name,score,start_date,followers\n"+
			"%[1]st1,%[1]shigh,9.0,2024-02-01,\n"+
			"%[1]st2,%[1]slow,5.0,2024-02-01,\n"+
			"%[1]st3,%[1]szero,0,2024-02-01,\n", pfx))

	report, err := NewBulkLoader(store, 0).LoadDirectory(ctx, dir)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	// Five user rows, one duplicate external id: four nodes, one record error.
	if got := report.Nodes[record.EntityUser]; got != 4 {
		t.Errorf("Expected 4 user nodes, got %d", got)
	}
	if got := len(report.RecordErrors[record.EntityUser]); got != 1 {
		t.Errorf("Expected 1 user record error, got %d", got)
	}
	// alice -> bob, alice -> carol, carol's post authorship. The duplicate
	// dave row's follows reference never links.
	if got := report.Edges[record.EntityUser]; got != 2 {
		t.Errorf("Expected 2 user edges, got %d", got)
	}
	if got := report.Edges[record.EntityPost]; got != 1 {
		t.Errorf("Expected 1 post edge, got %d", got)
	}

	runner := NewQueryRunner(store)

	feedAny, err := runner.RunTemplate(ctx, "user_feed", Params{"username": pfx + "alice"})
	if err != nil {
		t.Fatalf("user_feed failed: %v", err)
	}
	feed := feedAny.(*Feed)
	if len(feed.Following) != 2 {
		t.Fatalf("Expected 2 followed users in feed, got %d", len(feed.Following))
	}
	// bob authored nothing but still appears, with zero posts.
	byName := map[string][]FeedPost{}
	for _, author := range feed.Following {
		byName[author.Username] = author.Posts
	}
	if posts, ok := byName[pfx+"bob"]; !ok {
		t.Error("Expected bob in the feed's following list")
	} else if len(posts) != 0 {
		t.Errorf("Expected no posts for bob, got %d", len(posts))
	}
	if posts := byName[pfx+"carol"]; len(posts) != 1 {
		t.Errorf("Expected 1 post for carol, got %d", len(posts))
	}

	// Trending excludes zero scores and orders descending. The shared
	// database may hold other trends, so check the relative order of ours.
	topicsAny, err := runner.RunTemplate(ctx, "trending_topics", Params{"limit": 1000})
	if err != nil {
		t.Fatalf("trending_topics failed: %v", err)
	}
	var scores []float64
	for _, topic := range topicsAny.([]TrendingTopic) {
		if topic.Name == pfx+"high" || topic.Name == pfx+"low" || topic.Name == pfx+"zero" {
			scores = append(scores, topic.Score)
		}
	}
	if len(scores) != 2 || scores[0] != 9.0 || scores[1] != 5.0 {
		t.Errorf("Expected trending scores [9 5], got %v", scores)
	}
}

func TestBulkLoad_BrokenReferenceSkipsEdge(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	pfx := runPrefix()
	defer cleanupPrefix(t, store, pfx)

	dir := t.TempDir()
	writeFile(t, dir, "users.csv", fmt.Sprintf(
		"user_id,username,email,bio,joinDate,isAdmin,isActive,followerCount,following_count,follows,trends,communities\n"+
			"%[1]sa,%[1]sa,%[1]sa@example.com,,2024-01-01,false,true,0,0,\"%[1]sb,%[1]sghost\",,\n"+
			"%[1]sb,%[1]sb,%[1]sb@example.com,,2024-01-01,false,true,0,0,,,\n", pfx))

	report, err := NewBulkLoader(store, 0).LoadDirectory(ctx, dir)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	if got := report.Edges[record.EntityUser]; got != 1 {
		t.Errorf("Expected 1 edge, got %d", got)
	}
	edgeErrs := report.EdgeErrors[record.EntityUser]
	if len(edgeErrs) != 1 {
		t.Fatalf("Expected 1 edge error, got %d", len(edgeErrs))
	}
	if edgeErrs[0].TargetID != pfx+"ghost" {
		t.Errorf("Expected ghost target in edge error, got %s", edgeErrs[0].TargetID)
	}
}

func TestMutator_FollowLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	pfx := runPrefix()
	defer cleanupPrefix(t, store, pfx)

	mutator := NewMutator(store)

	aliceID, err := mutator.CreateUser(ctx, pfx+"alice", pfx+"alice@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	bobID, err := mutator.CreateUser(ctx, pfx+"bob", pfx+"bob@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Duplicate username is rejected before any write.
	if _, err := mutator.CreateUser(ctx, pfx+"alice", pfx+"other@example.com", ""); err == nil {
		t.Error("Expected duplicate username error")
	} else if !apperrors.IsPrecondition(err) {
		t.Errorf("Expected precondition error, got %v", err)
	}

	if err := mutator.FollowUser(ctx, aliceID, bobID); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}

	// The edge is traversable in both directions and the counters moved.
	result, err := store.Run(ctx, `
		MATCH (a:User {id: $a})-[:FOLLOWS]->(b:User {id: $b})
		MATCH (b)<-[:FOLLOWS]-(a)
		RETURN coalesce(b.follower_count, 0) AS followers, coalesce(a.following_count, 0) AS following
	`, map[string]interface{}{"a": aliceID, "b": bobID})
	if err != nil {
		t.Fatalf("Verification query failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected follow edge to exist, got %d records", len(result.Records))
	}
	if got := getInt64FromRecord(result.Records[0], "followers"); got != 1 {
		t.Errorf("Expected follower_count 1, got %d", got)
	}
	if got := getInt64FromRecord(result.Records[0], "following"); got != 1 {
		t.Errorf("Expected following_count 1, got %d", got)
	}

	// Re-follow and self-follow are precondition violations.
	if err := mutator.FollowUser(ctx, aliceID, bobID); err == nil {
		t.Error("Expected already-following error")
	} else if !apperrors.IsPrecondition(err) {
		t.Errorf("Expected precondition error, got %v", err)
	}
	if err := mutator.FollowUser(ctx, aliceID, aliceID); err == nil {
		t.Error("Expected self-follow error")
	}

	// Follow a missing user.
	if err := mutator.FollowUser(ctx, aliceID, "no-such-id"); err == nil {
		t.Error("Expected not-found error")
	} else if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestMutator_PostLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	pfx := runPrefix()
	defer cleanupPrefix(t, store, pfx)

	mutator := NewMutator(store)

	authorID, err := mutator.CreateUser(ctx, pfx+"author", pfx+"author@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	readerID, err := mutator.CreateUser(ctx, pfx+"reader", pfx+"reader@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	communityID := pfx + "community"
	_, err = store.Run(ctx, `
		CREATE (c:Community {id: $id, external_id: $id, name: $id,
		                     created_at: datetime(), health_score: 0.0})
	`, map[string]interface{}{"id": communityID})
	if err != nil {
		t.Fatalf("Failed to create community: %v", err)
	}

	tag := pfx + "tag"
	postID, err := mutator.CreatePost(ctx, authorID, "first post", []string{tag}, communityID)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	// A brand-new hashtag starts at usage_count 1.
	if got := hashtagUsage(t, store, tag); got != 1 {
		t.Errorf("Expected usage_count 1, got %d", got)
	}

	// Reusing the tag on a second post merges the same node and increments
	// the counter; the leading # is stripped before matching.
	if _, err := mutator.CreatePost(ctx, authorID, "second post", []string{"#" + tag}, ""); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if got := hashtagUsage(t, store, tag); got != 2 {
		t.Errorf("Expected usage_count 2, got %d", got)
	}

	// The post links to its author and its community.
	result, err := store.Run(ctx, `
		MATCH (p:Post {id: $p})-[:AUTHORED_BY]->(:User {id: $a})
		MATCH (p)-[:POSTED_IN]->(:Community {id: $c})
		RETURN p.id
	`, map[string]interface{}{"p": postID, "a": authorID, "c": communityID})
	if err != nil {
		t.Fatalf("Verification query failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected post edges to exist, got %d records", len(result.Records))
	}

	// A missing author is a not-found error.
	if _, err := mutator.CreatePost(ctx, "no-such-id", "content", nil, ""); err == nil {
		t.Error("Expected not-found error")
	} else if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}

	// Like once, then again: the repeat is rejected and the counter holds.
	if err := mutator.LikePost(ctx, readerID, postID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}
	if err := mutator.LikePost(ctx, readerID, postID); err == nil {
		t.Error("Expected already-liked error")
	} else if !apperrors.IsPrecondition(err) {
		t.Errorf("Expected precondition error, got %v", err)
	}
	if got := postLikes(t, store, postID); got != 1 {
		t.Errorf("Expected likes_count 1, got %d", got)
	}
	if err := mutator.LikePost(ctx, readerID, "no-such-id"); err == nil {
		t.Error("Expected not-found error")
	} else if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}

	// Join once, then again: one membership edge, repeat rejected.
	if err := mutator.JoinCommunity(ctx, readerID, communityID); err != nil {
		t.Fatalf("JoinCommunity failed: %v", err)
	}
	if err := mutator.JoinCommunity(ctx, readerID, communityID); err == nil {
		t.Error("Expected already-member error")
	} else if !apperrors.IsPrecondition(err) {
		t.Errorf("Expected precondition error, got %v", err)
	}
	result, err = store.Run(ctx, `
		MATCH (:User {id: $u})-[m:MEMBER_OF]->(:Community {id: $c})
		RETURN count(m) AS memberships
	`, map[string]interface{}{"u": readerID, "c": communityID})
	if err != nil {
		t.Fatalf("Verification query failed: %v", err)
	}
	if got := getInt64FromRecord(result.Records[0], "memberships"); got != 1 {
		t.Errorf("Expected exactly 1 membership edge, got %d", got)
	}
}

func hashtagUsage(t *testing.T, store *Store, name string) int64 {
	t.Helper()
	result, err := store.Run(context.Background(),
		"MATCH (h:Hashtag {name: $name}) RETURN h.usage_count AS usage",
		map[string]interface{}{"name": name})
	if err != nil {
		t.Fatalf("Hashtag query failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 hashtag node, got %d", len(result.Records))
	}
	return getInt64FromRecord(result.Records[0], "usage")
}

func postLikes(t *testing.T, store *Store, postID string) int64 {
	t.Helper()
	result, err := store.Run(context.Background(),
		"MATCH (p:Post {id: $id}) RETURN coalesce(p.likes_count, 0) AS likes",
		map[string]interface{}{"id": postID})
	if err != nil {
		t.Fatalf("Post query failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 post node, got %d", len(result.Records))
	}
	return getInt64FromRecord(result.Records[0], "likes")
}

func TestAdmin_DeleteUsersBelowInfluence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	store := createTestStore(t)
	pfx := runPrefix()
	defer cleanupPrefix(t, store, pfx)

	mutator := NewMutator(store)
	lowID, err := mutator.CreateUser(ctx, pfx+"low", pfx+"low@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	highID, err := mutator.CreateUser(ctx, pfx+"high", pfx+"high@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	unscoredID, err := mutator.CreateUser(ctx, pfx+"unscored", pfx+"unscored@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for id, score := range map[string]float64{lowID: 10.0, highID: 90.0} {
		_, err := store.Run(ctx, `
			MATCH (u:User {id: $userID})
			CREATE (i:Influence {id: randomUUID(), external_id: $ext, score_value: $score, computed_at: datetime()})
			CREATE (i)-[:SCORES]->(u)
		`, map[string]interface{}{"userID": id, "score": score, "ext": pfx + "score"})
		if err != nil {
			t.Fatalf("Failed to create influence score: %v", err)
		}
	}

	deleted, err := NewAdmin(store).DeleteUsersBelowInfluence(ctx, 50.0)
	if err != nil {
		t.Fatalf("DeleteUsersBelowInfluence failed: %v", err)
	}
	if deleted < 1 {
		t.Errorf("Expected at least 1 deleted user, got %d", deleted)
	}

	result, err := store.Run(ctx, `
		MATCH (u:User) WHERE u.id IN $ids RETURN u.id AS id
	`, map[string]interface{}{"ids": []interface{}{lowID, highID, unscoredID}})
	if err != nil {
		t.Fatalf("Verification query failed: %v", err)
	}
	remaining := map[string]bool{}
	for _, rec := range result.Records {
		remaining[getStringFromRecord(rec, "id")] = true
	}
	if remaining[lowID] {
		t.Error("Expected low-influence user to be deleted")
	}
	if !remaining[highID] {
		t.Error("Expected high-influence user to survive")
	}
	if !remaining[unscoredID] {
		t.Error("Expected unscored user to survive")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}
