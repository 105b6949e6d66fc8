package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"socialgraph/internal/record"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// EdgeError describes one edge reference that could not be resolved through
// the id maps. Edge errors are non-fatal: the single edge is skipped and the
// batch continues.
type EdgeError struct {
	Relation string `json:"relation"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Message  string `json:"message"`
}

// edge is one resolved graph edge, keyed by internal node identifiers.
type edge struct {
	relation string
	srcLabel string
	dstLabel string
	srcID    string
	dstID    string
}

// edgeGroup keys a batch of edges sharing the same relation and labels, so
// they commit through one UNWIND statement.
type edgeGroup struct {
	relation string
	srcLabel string
	dstLabel string
}

// RelationshipBuilder creates typed edges between already-loaded nodes. It
// resolves every cross-entity reference through the id maps produced by the
// BulkLoader and never re-derives identifiers from external keys.
type RelationshipBuilder struct {
	store  *Store
	logger *zap.Logger
}

// NewRelationshipBuilder creates a relationship builder bound to a store.
func NewRelationshipBuilder(store *Store) *RelationshipBuilder {
	return &RelationshipBuilder{
		store:  store,
		logger: logger.Get(),
	}
}

// LinkEntities creates the edges declared by one entity type's relationship
// columns. Unresolvable references skip that single edge with a warning;
// the rest of the batch still commits. All edges of the batch commit inside
// one write transaction; a commit failure aborts only this entity type's
// relationship batch.
func (b *RelationshipBuilder) LinkEntities(ctx context.Context, entityType record.EntityType, rows []record.Row, idMaps map[record.EntityType]IDMap) (int, []EdgeError, error) {
	var edges []edge
	var edgeErrs []EdgeError

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		rec, err := record.Parse(entityType, row)
		if err != nil {
			// Malformed rows already errored during node load and have no
			// id mapping; nothing to link.
			continue
		}
		if seen[rec.ExternalID()] {
			// A repeated external id also errored during node load. Its id
			// would resolve to the first record's node, so it links nothing.
			continue
		}
		seen[rec.ExternalID()] = true
		recEdges, recErrs := b.resolve(rec, idMaps)
		edges = append(edges, recEdges...)
		edgeErrs = append(edgeErrs, recErrs...)
	}

	for _, e := range edgeErrs {
		b.logger.Warn("Skipping unresolvable edge",
			zap.String("relation", e.Relation),
			zap.String("source_id", e.SourceID),
			zap.String("target_id", e.TargetID),
			zap.String("reason", e.Message),
		)
	}

	if len(edges) == 0 {
		return 0, edgeErrs, nil
	}

	groups := groupEdges(edges)

	session := b.store.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for group, pairs := range groups {
			// Relation names and labels come from the schema tables, never
			// from input data.
			query := fmt.Sprintf(
				"UNWIND $pairs AS pair MATCH (a:%s {id: pair.src}) MATCH (b:%s {id: pair.dst}) MERGE (a)-[:%s]->(b)",
				group.srcLabel, group.dstLabel, group.relation)
			if _, err := tx.Run(ctx, query, map[string]interface{}{"pairs": pairs}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return 0, edgeErrs, apperrors.NewLoadBatchError(string(entityType)+" relationships", len(edges), err)
	}

	b.logger.Info("Relationship batch linked",
		zap.String("entity", string(entityType)),
		zap.Int("edges", len(edges)),
		zap.Int("skipped", len(edgeErrs)),
	)
	return len(edges), edgeErrs, nil
}

// groupEdges buckets edges by relation and endpoint labels so each bucket
// commits through one UNWIND statement.
func groupEdges(edges []edge) map[edgeGroup][]map[string]interface{} {
	groups := make(map[edgeGroup][]map[string]interface{})
	for _, e := range edges {
		key := edgeGroup{relation: e.relation, srcLabel: e.srcLabel, dstLabel: e.dstLabel}
		groups[key] = append(groups[key], map[string]interface{}{
			"src": e.srcID,
			"dst": e.dstID,
		})
	}
	return groups
}

// resolve maps one typed record's relationship fields to edges. A reference
// to an external id absent from the relevant id map yields an EdgeError for
// that edge only. Bidirectional relations produce exactly one stored edge;
// the inverse traversal reads the same edge in the opposite direction.
func (b *RelationshipBuilder) resolve(rec record.Record, idMaps map[record.EntityType]IDMap) ([]edge, []EdgeError) {
	res := &resolver{idMaps: idMaps}

	src, ok := idMaps[rec.Type()][rec.ExternalID()]
	if !ok {
		return nil, []EdgeError{{
			Relation: "*",
			SourceID: rec.ExternalID(),
			Message:  "source record has no id mapping",
		}}
	}

	switch r := rec.(type) {
	case record.User:
		res.many(RelFollows, LabelUser, src, record.EntityUser, r.ID, r.Follows)
		res.many(RelFollowsTrend, LabelTrend, src, record.EntityTrend, r.ID, r.Trends)
		res.many(RelMemberOf, LabelCommunity, src, record.EntityCommunity, r.ID, r.Communities)
	case record.Post:
		res.one(RelAuthoredBy, LabelPost, LabelUser, src, record.EntityUser, r.ID, r.Author)
		res.manyFrom(RelPostedIn, LabelPost, LabelCommunity, src, record.EntityCommunity, r.ID, r.Communities)
		res.one(RelHasLifecycle, LabelPost, LabelContent, src, record.EntityContent, r.ID, r.Lifecycle)
	case record.Comment:
		res.one(RelAuthoredBy, LabelComment, LabelUser, src, record.EntityUser, r.ID, r.Author)
		res.one(RelOnPost, LabelComment, LabelPost, src, record.EntityPost, r.ID, r.Post)
		res.manyFrom(RelLikedBy, LabelComment, LabelUser, src, record.EntityUser, r.ID, r.LikedBy)
	case record.Community:
		// Membership edges point User -> Community regardless of which side
		// of the input declared them, so both sides feed one relation.
		res.manyInto(RelMemberOf, LabelUser, LabelCommunity, src, record.EntityUser, r.ID, r.Members)
		res.manyInto(RelAdminOf, LabelUser, LabelCommunity, src, record.EntityUser, r.ID, r.Admins)
		res.manyInto(RelPostedIn, LabelPost, LabelCommunity, src, record.EntityPost, r.ID, r.Posts)
		res.manyFrom(RelExhibits, LabelCommunity, LabelPattern, src, record.EntityPattern, r.ID, r.Patterns)
	case record.Trend:
		res.manyInto(RelFollowsTrend, LabelUser, LabelTrend, src, record.EntityUser, r.ID, r.Followers)
	case record.Hashtag:
		res.manyFrom(RelTags, LabelHashtag, LabelPost, src, record.EntityPost, r.ID, r.Posts)
		res.manyFrom(RelTags, LabelHashtag, LabelComment, src, record.EntityComment, r.ID, r.Comments)
	case record.Activity:
		res.one(RelPerformedBy, LabelActivity, LabelUser, src, record.EntityUser, r.ID, r.User)
		res.one(RelInCommunity, LabelActivity, LabelCommunity, src, record.EntityCommunity, r.ID, r.Community)
	case record.Analytics:
		res.one(RelTracks, LabelAnalytics, LabelUser, src, record.EntityUser, r.ID, r.User)
	case record.Pattern:
		res.one(RelObservedIn, LabelPattern, LabelUser, src, record.EntityUser, r.ID, r.User)
		res.one(RelObservedIn, LabelPattern, LabelCommunity, src, record.EntityCommunity, r.ID, r.Community)
	case record.Content:
		res.manyFrom(RelRelatedTo, LabelContent, LabelPost, src, record.EntityPost, r.ID, r.RelatedPosts)
		res.manyFrom(RelRelatedTo, LabelContent, LabelComment, src, record.EntityComment, r.ID, r.RelatedComments)
		res.manyFrom(RelRelatedTo, LabelContent, LabelUser, src, record.EntityUser, r.ID, r.RelatedUsers)
		res.manyFrom(RelRelatedTo, LabelContent, LabelCommunity, src, record.EntityCommunity, r.ID, r.RelatedCommunities)
	case record.Influence:
		res.one(RelScores, LabelInfluence, LabelUser, src, record.EntityUser, r.ID, r.User)
	}

	return res.edges, res.errs
}

// resolver accumulates edges and per-edge errors while resolving one record.
type resolver struct {
	idMaps map[record.EntityType]IDMap
	edges  []edge
	errs   []EdgeError
}

// one resolves a single-valued reference. An empty reference yields no edge
// and no error.
func (r *resolver) one(relation, srcLabel, dstLabel, srcID string, targetType record.EntityType, srcExt, dstExt string) {
	if dstExt == "" {
		return
	}
	dst, ok := r.idMaps[targetType][dstExt]
	if !ok {
		r.errs = append(r.errs, EdgeError{
			Relation: relation,
			SourceID: srcExt,
			TargetID: dstExt,
			Message:  fmt.Sprintf("no %s id mapping", targetType),
		})
		return
	}
	r.edges = append(r.edges, edge{relation: relation, srcLabel: srcLabel, dstLabel: dstLabel, srcID: srcID, dstID: dst})
}

// many resolves a many-valued reference from a User source.
func (r *resolver) many(relation, dstLabel, srcID string, targetType record.EntityType, srcExt string, dstExts []string) {
	r.manyFrom(relation, LabelUser, dstLabel, srcID, targetType, srcExt, dstExts)
}

// manyFrom resolves a many-valued reference with the record as edge source.
func (r *resolver) manyFrom(relation, srcLabel, dstLabel, srcID string, targetType record.EntityType, srcExt string, dstExts []string) {
	for _, dstExt := range dstExts {
		r.one(relation, srcLabel, dstLabel, srcID, targetType, srcExt, dstExt)
	}
}

// manyInto resolves a many-valued reference with the record as edge TARGET:
// the referenced entities become edge sources pointing at this record.
func (r *resolver) manyInto(relation, srcLabel, dstLabel, dstID string, sourceType record.EntityType, dstExt string, srcExts []string) {
	for _, srcExt := range srcExts {
		srcID, ok := r.idMaps[sourceType][srcExt]
		if !ok {
			r.errs = append(r.errs, EdgeError{
				Relation: relation,
				SourceID: srcExt,
				TargetID: dstExt,
				Message:  fmt.Sprintf("no %s id mapping", sourceType),
			})
			continue
		}
		r.edges = append(r.edges, edge{relation: relation, srcLabel: srcLabel, dstLabel: dstLabel, srcID: srcID, dstID: dstID})
	}
}
