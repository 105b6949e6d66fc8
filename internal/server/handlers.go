package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"socialgraph/internal/graph"
	apperrors "socialgraph/pkg/errors"
)

func (s *Server) handleApplySchema(c *gin.Context) {
	if err := s.registry.ApplyAll(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "applied", "types": s.registry.AppliedTypes()})
}

func (s *Server) handleLoad(c *gin.Context) {
	var req struct {
		Dir string `json:"dir"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = s.cfg.DataDir
	}

	report, err := s.loader.LoadDirectory(c.Request.Context(), dir)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Bio      string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.mutator.CreateUser(c.Request.Context(), req.Username, req.Email, req.Bio)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var req struct {
		AuthorID    string   `json:"author_id" binding:"required"`
		Content     string   `json:"content" binding:"required"`
		Hashtags    []string `json:"hashtags"`
		CommunityID string   `json:"community_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.mutator.CreatePost(c.Request.Context(), req.AuthorID, req.Content, req.Hashtags, req.CommunityID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleFollow(c *gin.Context) {
	var req struct {
		FollowerID string `json:"follower_id" binding:"required"`
		TargetID   string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.mutator.FollowUser(c.Request.Context(), req.FollowerID, req.TargetID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

func (s *Server) handleJoinCommunity(c *gin.Context) {
	var req struct {
		UserID      string `json:"user_id" binding:"required"`
		CommunityID string `json:"community_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.mutator.JoinCommunity(c.Request.Context(), req.UserID, req.CommunityID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "joined"})
}

func (s *Server) handleLikePost(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		PostID string `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.mutator.LikePost(c.Request.Context(), req.UserID, req.PostID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "liked"})
}

func (s *Server) handleListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": s.queries.Templates()})
}

func (s *Server) handleQuery(c *gin.Context) {
	name := c.Param("name")

	params := graph.Params{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	// limit arrives as a query string value; templates expect a number
	if raw, ok := params["limit"].(string); ok {
		if limit, err := strconv.Atoi(raw); err == nil {
			params["limit"] = limit
		}
	}

	result, err := s.queries.RunTemplate(c.Request.Context(), name, params)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondError maps the error taxonomy onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsPrecondition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeSchema) || apperrors.IsErrorType(err, apperrors.ErrorTypeLoad):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
