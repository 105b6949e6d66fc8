package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"socialgraph/pkg/config"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// Store is the explicitly constructed handle to the graph database. It owns
// the driver for its whole lifecycle: opened once at process start, closed at
// shutdown, and injected into every component that needs graph access.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// Open creates a Store from configuration and verifies connectivity.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	return NewStore(driver, cfg.Neo4jDatabase), nil
}

// NewStore wraps an existing driver. Used by tests that manage the driver
// themselves.
func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Close closes the underlying driver connection.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// ReadSession opens a session for read-only transactions.
func (s *Store) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

// WriteSession opens a session for write transactions.
func (s *Store) WriteSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// Run executes a single auto-committed Cypher statement and buffers the
// whole result. Suitable for administrative statements and builder-generated
// queries that need no surrounding transaction.
func (s *Store) Run(ctx context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		s.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(query, err)
	}
	return result, nil
}
