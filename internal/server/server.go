package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"socialgraph/internal/graph"
	"socialgraph/pkg/config"
	"socialgraph/pkg/logger"
)

// Server wires the graph services behind an HTTP API.
type Server struct {
	cfg      *config.Config
	registry *graph.Registry
	loader   *graph.BulkLoader
	mutator  *graph.Mutator
	queries  *graph.QueryRunner
	logger   *zap.Logger
}

func New(cfg *config.Config, store *graph.Store) *Server {
	return &Server{
		cfg:      cfg,
		registry: graph.NewRegistry(store),
		loader:   graph.NewBulkLoader(store, cfg.LoadBatchSize),
		mutator:  graph.NewMutator(store),
		queries:  graph.NewQueryRunner(store),
		logger:   logger.Get(),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/schema/apply", s.handleApplySchema)
		api.POST("/load", s.handleLoad)

		api.POST("/users", s.handleCreateUser)
		api.POST("/posts", s.handleCreatePost)
		api.POST("/follow", s.handleFollow)
		api.POST("/communities/join", s.handleJoinCommunity)
		api.POST("/posts/like", s.handleLikePost)

		api.GET("/templates", s.handleListTemplates)
		api.GET("/query/:name", s.handleQuery)
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
