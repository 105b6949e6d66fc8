package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"socialgraph/internal/record"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// IDMap maps external record identifiers to internal node identifiers for
// one load batch. It is the only way cross-entity links are resolved.
type IDMap map[string]string

// RecordError describes one malformed input record. Record errors are
// non-fatal: the record is skipped and the batch continues.
type RecordError struct {
	Line       int    `json:"line"`
	ExternalID string `json:"external_id"`
	Message    string `json:"message"`
}

// defaultBatchSize bounds the rows sent per UNWIND statement. The statements
// of one entity type still share a single transaction.
const defaultBatchSize = 500

// BulkLoader creates nodes from flat records, one transaction per
// entity-type batch.
type BulkLoader struct {
	store     *Store
	logger    *zap.Logger
	batchSize int
}

// NewBulkLoader creates a bulk loader bound to a store. A batchSize of 0
// selects the default.
func NewBulkLoader(store *Store, batchSize int) *BulkLoader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &BulkLoader{
		store:     store,
		logger:    logger.Get(),
		batchSize: batchSize,
	}
}

// LoadEntities validates each row, creates one node per valid row inside a
// single write transaction, and returns the external-to-internal id mapping.
// Malformed rows are skipped, logged and reported; they never enter the
// transaction. A transaction failure aborts the whole batch with a
// LoadBatchError.
func (l *BulkLoader) LoadEntities(ctx context.Context, entityType record.EntityType, rows []record.Row) (IDMap, []RecordError, error) {
	label := labelFor(entityType)
	if label == "" {
		return nil, nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	idMap := make(IDMap, len(rows))
	var recErrs []RecordError
	props := make([]map[string]interface{}, 0, len(rows))
	idColumn := record.IDColumns[entityType]

	for i, row := range rows {
		rec, err := record.Parse(entityType, row)
		if err != nil {
			extID := row[idColumn]
			recErrs = append(recErrs, RecordError{
				Line:       i + 2, // header is line 1
				ExternalID: extID,
				Message:    err.Error(),
			})
			l.logger.Warn("Skipping malformed record",
				zap.String("entity", string(entityType)),
				zap.String("external_id", extID),
				zap.Error(err),
			)
			continue
		}
		if _, dup := idMap[rec.ExternalID()]; dup {
			recErrs = append(recErrs, RecordError{
				Line:       i + 2,
				ExternalID: rec.ExternalID(),
				Message:    "duplicate external id in batch",
			})
			continue
		}
		internalID := uuid.NewString()
		idMap[rec.ExternalID()] = internalID
		props = append(props, nodeProps(internalID, rec))
	}

	if len(props) > 0 {
		session := l.store.WriteSession(ctx)
		defer session.Close(ctx)

		query := fmt.Sprintf("UNWIND $rows AS row CREATE (n:%s) SET n = row", label)
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			for start := 0; start < len(props); start += l.batchSize {
				end := start + l.batchSize
				if end > len(props) {
					end = len(props)
				}
				if _, err := tx.Run(ctx, query, map[string]interface{}{"rows": props[start:end]}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			return nil, recErrs, apperrors.NewLoadBatchError(string(entityType), len(props), err)
		}
	}

	l.logger.Info("Entity batch loaded",
		zap.String("entity", string(entityType)),
		zap.Int("created", len(props)),
		zap.Int("errors", len(recErrs)),
	)
	return idMap, recErrs, nil
}

// LoadReport summarizes a full directory load: nodes created and edges
// linked per entity type, plus the non-fatal record and edge errors.
type LoadReport struct {
	Nodes        map[record.EntityType]int           `json:"nodes"`
	Edges        map[record.EntityType]int           `json:"edges"`
	RecordErrors map[record.EntityType][]RecordError `json:"record_errors,omitempty"`
	EdgeErrors   map[record.EntityType][]EdgeError   `json:"edge_errors,omitempty"`
}

// LoadDirectory loads every entity CSV found in dir and then links all
// relationships. All node batches complete before any relationship batch
// starts, since edges resolve other entity types through the id maps.
func (l *BulkLoader) LoadDirectory(ctx context.Context, dir string) (*LoadReport, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("data directory not found: %s", dir)
	}

	report := &LoadReport{
		Nodes:        make(map[record.EntityType]int),
		Edges:        make(map[record.EntityType]int),
		RecordErrors: make(map[record.EntityType][]RecordError),
		EdgeErrors:   make(map[record.EntityType][]EdgeError),
	}
	idMaps := make(map[record.EntityType]IDMap)
	rowsByType := make(map[record.EntityType][]record.Row)

	// Files are independent until the load stage, so read and parse them
	// concurrently. Node batches still commit in a fixed order below.
	var mu sync.Mutex
	var g errgroup.Group
	for _, entityType := range record.AllEntityTypes {
		entityType := entityType
		path := filepath.Join(dir, record.FileNames[entityType])
		if _, err := os.Stat(path); os.IsNotExist(err) {
			l.logger.Debug("No input file for entity type, skipping",
				zap.String("entity", string(entityType)),
				zap.String("path", path),
			)
			continue
		}
		g.Go(func() error {
			rows, err := record.ReadFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			rowsByType[entityType] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, entityType := range record.AllEntityTypes {
		rows, ok := rowsByType[entityType]
		if !ok {
			continue
		}
		idMap, recErrs, err := l.LoadEntities(ctx, entityType, rows)
		if err != nil {
			return nil, err
		}
		idMaps[entityType] = idMap
		report.Nodes[entityType] = len(idMap)
		if len(recErrs) > 0 {
			report.RecordErrors[entityType] = recErrs
		}
	}

	builder := NewRelationshipBuilder(l.store)
	for _, entityType := range record.AllEntityTypes {
		rows, ok := rowsByType[entityType]
		if !ok {
			continue
		}
		count, edgeErrs, err := builder.LinkEntities(ctx, entityType, rows, idMaps)
		if err != nil {
			return nil, err
		}
		report.Edges[entityType] = count
		if len(edgeErrs) > 0 {
			report.EdgeErrors[entityType] = edgeErrs
		}
	}

	return report, nil
}

// nodeProps flattens a typed record into node properties. The internal id is
// assigned here and never re-derived from external keys.
func nodeProps(internalID string, rec record.Record) map[string]interface{} {
	props := map[string]interface{}{
		"id":          internalID,
		"external_id": rec.ExternalID(),
	}
	switch r := rec.(type) {
	case record.User:
		props["username"] = r.Username
		props["email"] = r.Email
		props["bio"] = r.Bio
		props["join_date"] = r.JoinDate
		props["is_admin"] = r.IsAdmin
		props["is_active"] = r.IsActive
		props["follower_count"] = r.FollowerCount
		props["following_count"] = r.FollowingCount
	case record.Post:
		props["content"] = r.Content
		props["created_at"] = r.CreatedAt
		props["likes_count"] = r.LikesCount
		props["shares_count"] = r.SharesCount
		props["is_archived"] = r.IsArchived
	case record.Comment:
		props["content"] = r.Content
		props["created_at"] = r.CreatedAt
		props["likes_count"] = r.LikesCount
		props["sentiment_score"] = r.SentimentScore
	case record.Community:
		props["name"] = r.Name
		props["description"] = r.Description
		props["created_at"] = r.CreatedAt
		props["health_score"] = r.HealthScore
	case record.Trend:
		props["name"] = r.Name
		props["score"] = r.Score
		props["start_date"] = r.StartDate
	case record.Hashtag:
		props["name"] = r.Name
		props["usage_count"] = r.UsageCount
		props["trending_score"] = r.TrendingScore
	case record.Activity:
		props["type"] = r.Kind
		props["timestamp"] = r.Timestamp
		props["duration"] = r.Duration
	case record.Analytics:
		props["metric_type"] = r.MetricType
		props["value"] = r.Value
		props["timestamp"] = r.Timestamp
	case record.Pattern:
		props["type"] = r.Kind
		props["frequency"] = r.Frequency
		props["last_seen"] = r.LastSeen
	case record.Content:
		props["content_type"] = r.ContentType
		props["created_at"] = r.CreatedAt
		props["engagement_rate"] = r.EngagementRate
		props["lifecycle_stage"] = r.LifecycleStage
	case record.Influence:
		props["score_value"] = r.ScoreValue
		props["computed_at"] = r.ComputedAt
		props["factors"] = r.Factors
	}
	return props
}
