package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// Admin performs destructive maintenance operations. None of them are
// reachable from the HTTP surface; they are wired to the CLI only.
type Admin struct {
	store  *Store
	logger *zap.Logger
}

func NewAdmin(store *Store) *Admin {
	return &Admin{store: store, logger: logger.Get()}
}

// DropAll deletes every node and relationship in the database. Schema
// constraints and indexes survive; re-applying the registry after a drop is a
// no-op.
func (a *Admin) DropAll(ctx context.Context) error {
	session := a.store.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("drop all", err)
	}
	a.logger.Warn("Dropped all graph data")
	return nil
}

// DeleteUsersBelowInfluence removes users whose best influence score is below
// the cutoff, along with all their edges. Users without any influence score
// are left alone. Returns the number of deleted users.
func (a *Admin) DeleteUsersBelowInfluence(ctx context.Context, cutoff float64) (int64, error) {
	session := a.store.WriteSession(ctx)
	defer session.Close(ctx)

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User)<-[:SCORES]-(i:Influence)
			WITH u, max(i.score_value) AS score
			WHERE score < $cutoff
			WITH collect(u) AS victims
			FOREACH (v IN victims | DETACH DELETE v)
			RETURN size(victims) AS deleted
		`, map[string]interface{}{"cutoff": cutoff})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return int64(0), result.Err()
		}
		return getInt64FromRecord(result.Record(), "deleted"), nil
	})
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("purge low-influence users", err)
	}

	count := deleted.(int64)
	a.logger.Info("Purged low-influence users",
		zap.Float64("cutoff", cutoff),
		zap.Int64("deleted", count))
	return count, nil
}
