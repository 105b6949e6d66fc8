package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// Mutator performs incremental graph writes after bulk load. Every operation
// runs its precondition checks and its writes inside one managed write
// transaction, so a violated precondition discards the whole mutation.
type Mutator struct {
	store  *Store
	logger *zap.Logger
}

// NewMutator creates a mutator bound to a store.
func NewMutator(store *Store) *Mutator {
	return &Mutator{
		store:  store,
		logger: logger.Get(),
	}
}

// CreateUser creates a new User node. Fails with DuplicateError when the
// username or email is already taken; the check runs inside the same
// transaction as the create.
func (m *Mutator) CreateUser(ctx context.Context, username, email, bio string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return "", fmt.Errorf("username and email are required")
	}

	session := m.store.WriteSession(ctx)
	defer session.Close(ctx)

	id := uuid.NewString()
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		check, err := tx.Run(ctx, `
			MATCH (u:User)
			WHERE u.username = $username OR u.email = $email
			RETURN u.username AS username, u.email AS email
			LIMIT 1
		`, map[string]interface{}{
			"username": username,
			"email":    email,
		})
		if err != nil {
			return nil, err
		}
		if check.Next(ctx) {
			rec := check.Record()
			if getStringFromRecord(rec, "username") == username {
				return nil, apperrors.NewDuplicate("username", username)
			}
			return nil, apperrors.NewDuplicate("email", email)
		}
		if err := check.Err(); err != nil {
			return nil, err
		}

		query, params, err := gocypher.NewQueryBuilder().
			Merge(gocypher.N("u", LabelUser).WithProperties(map[string]interface{}{
				"id":              id,
				"external_id":     id,
				"username":        username,
				"email":           email,
				"bio":             bio,
				"join_date":       time.Now().UTC(),
				"is_admin":        false,
				"is_active":       true,
				"follower_count":  0,
				"following_count": 0,
			})).
			Return("u").
			Build()
		if err != nil {
			return nil, err
		}
		if _, err := tx.Run(ctx, query, params); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("User created",
		zap.String("user_id", id),
		zap.String("username", username),
	)
	return id, nil
}

// CreatePost creates a Post node authored by the given user. Each hashtag is
// merged by name: a new tag starts with usage_count 1, an existing one is
// incremented. An optional community links the post via POSTED_IN.
func (m *Mutator) CreatePost(ctx context.Context, authorID, content string, hashtags []string, communityID string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("post content is required")
	}

	session := m.store.WriteSession(ctx)
	defer session.Close(ctx)

	id := uuid.NewString()
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireNode(ctx, tx, LabelUser, authorID); err != nil {
			return nil, err
		}
		if communityID != "" {
			if err := requireNode(ctx, tx, LabelCommunity, communityID); err != nil {
				return nil, err
			}
		}

		_, err := tx.Run(ctx, `
			MATCH (a:User {id: $authorID})
			CREATE (p:Post)
			SET p = $props
			CREATE (p)-[:AUTHORED_BY]->(a)
		`, map[string]interface{}{
			"authorID": authorID,
			"props": map[string]interface{}{
				"id":           id,
				"external_id":  id,
				"content":      content,
				"created_at":   time.Now().UTC(),
				"likes_count":  0,
				"shares_count": 0,
				"is_archived":  false,
			},
		})
		if err != nil {
			return nil, err
		}

		for _, tag := range hashtags {
			tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
			if tag == "" {
				continue
			}
			_, err := tx.Run(ctx, `
				MATCH (p:Post {id: $postID})
				MERGE (h:Hashtag {name: $name})
				ON CREATE SET h.id = $hashtagID, h.external_id = $hashtagID,
				              h.usage_count = 1, h.trending_score = 0.0
				ON MATCH SET h.usage_count = h.usage_count + 1
				MERGE (h)-[:TAGS]->(p)
			`, map[string]interface{}{
				"postID":    id,
				"name":      tag,
				"hashtagID": uuid.NewString(),
			})
			if err != nil {
				return nil, err
			}
		}

		if communityID != "" {
			_, err := tx.Run(ctx, `
				MATCH (p:Post {id: $postID})
				MATCH (c:Community {id: $communityID})
				MERGE (p)-[:POSTED_IN]->(c)
			`, map[string]interface{}{
				"postID":      id,
				"communityID": communityID,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("Post created",
		zap.String("post_id", id),
		zap.String("author_id", authorID),
		zap.Int("hashtags", len(hashtags)),
	)
	return id, nil
}

// FollowUser creates a FOLLOWS edge and maintains both follow counters in
// the same transaction. The counter update is a server-side increment, so
// concurrent follows cannot lose updates.
func (m *Mutator) FollowUser(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return apperrors.NewSelfFollow(followerID)
	}

	session := m.store.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireNode(ctx, tx, LabelUser, followerID); err != nil {
			return nil, err
		}
		if err := requireNode(ctx, tx, LabelUser, targetID); err != nil {
			return nil, err
		}

		exists, err := edgeExists(ctx, tx, LabelUser, followerID, RelFollows, LabelUser, targetID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewAlreadyFollowing(followerID, targetID)
		}

		_, err = tx.Run(ctx, `
			MATCH (a:User {id: $followerID})
			MATCH (b:User {id: $targetID})
			CREATE (a)-[:FOLLOWS {created_at: datetime()}]->(b)
			SET b.follower_count = coalesce(b.follower_count, 0) + 1,
			    a.following_count = coalesce(a.following_count, 0) + 1
		`, map[string]interface{}{
			"followerID": followerID,
			"targetID":   targetID,
		})
		return nil, err
	})
	if err != nil {
		return err
	}

	m.logger.Info("Follow created",
		zap.String("follower_id", followerID),
		zap.String("target_id", targetID),
	)
	return nil
}

// JoinCommunity links a user to a community via MEMBER_OF.
func (m *Mutator) JoinCommunity(ctx context.Context, userID, communityID string) error {
	session := m.store.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireNode(ctx, tx, LabelUser, userID); err != nil {
			return nil, err
		}
		if err := requireNode(ctx, tx, LabelCommunity, communityID); err != nil {
			return nil, err
		}

		exists, err := edgeExists(ctx, tx, LabelUser, userID, RelMemberOf, LabelCommunity, communityID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewAlreadyMember(userID, communityID)
		}

		query, params, err := gocypher.NewQueryBuilder().
			Match(gocypher.N("u", LabelUser).WithProperties(map[string]interface{}{"id": userID})).
			Match(gocypher.N("c", LabelCommunity).WithProperties(map[string]interface{}{"id": communityID})).
			Create(
				gocypher.N("u", ""),
				gocypher.R("m", RelMemberOf).To(),
				gocypher.N("c", ""),
			).
			Build()
		if err != nil {
			return nil, err
		}
		_, err = tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		return err
	}

	m.logger.Info("Community joined",
		zap.String("user_id", userID),
		zap.String("community_id", communityID),
	)
	return nil
}

// LikePost creates a LIKED_BY edge from the post to the user and increments
// the post's like counter server-side in the same transaction.
func (m *Mutator) LikePost(ctx context.Context, userID, postID string) error {
	session := m.store.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireNode(ctx, tx, LabelPost, postID); err != nil {
			return nil, err
		}
		if err := requireNode(ctx, tx, LabelUser, userID); err != nil {
			return nil, err
		}

		exists, err := edgeExists(ctx, tx, LabelPost, postID, RelLikedBy, LabelUser, userID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewAlreadyLiked(userID, postID)
		}

		_, err = tx.Run(ctx, `
			MATCH (p:Post {id: $postID})
			MATCH (u:User {id: $userID})
			CREATE (p)-[:LIKED_BY {created_at: datetime()}]->(u)
			SET p.likes_count = coalesce(p.likes_count, 0) + 1
		`, map[string]interface{}{
			"postID": postID,
			"userID": userID,
		})
		return nil, err
	})
	if err != nil {
		return err
	}

	m.logger.Info("Post liked",
		zap.String("user_id", userID),
		zap.String("post_id", postID),
	)
	return nil
}

// requireNode fails with NotFoundError when no node of the label carries the
// internal id.
func requireNode(ctx context.Context, tx neo4j.ManagedTransaction, label, id string) error {
	result, err := tx.Run(ctx,
		"MATCH (n:"+label+" {id: $id}) RETURN n.id LIMIT 1",
		map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return err
		}
		return apperrors.NewNotFound(strings.ToLower(label), id)
	}
	return nil
}

// edgeExists reports whether a directed edge of the given type already links
// the two nodes.
func edgeExists(ctx context.Context, tx neo4j.ManagedTransaction, srcLabel, srcID, relation, dstLabel, dstID string) (bool, error) {
	result, err := tx.Run(ctx,
		"MATCH (a:"+srcLabel+" {id: $src})-[:"+relation+"]->(b:"+dstLabel+" {id: $dst}) RETURN 1 LIMIT 1",
		map[string]interface{}{"src": srcID, "dst": dstID})
	if err != nil {
		return false, err
	}
	if result.Next(ctx) {
		return true, nil
	}
	return false, result.Err()
}
