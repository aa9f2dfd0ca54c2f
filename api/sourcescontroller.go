package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpsync/client"
	"helpsync/config"
	"helpsync/types"
)

// RegisterSourceRoutes registers knowledge source management endpoints.
func RegisterSourceRoutes(r *gin.Engine, s *Server) {
	g := r.Group("/api/sources")
	g.GET("", s.handleListSources)
	g.POST("", s.handleCreateSource)
	g.DELETE("/:id", s.handleDeleteSource)
}

// CreateSourceRequest is the body of POST /api/sources
type CreateSourceRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleListSources(c *gin.Context) {
	if !s.requireSources(c) {
		return
	}
	sources, err := s.sources.ListSources(c.Request.Context())
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if sources == nil {
		sources = []types.KnowledgeSource{}
	}
	c.JSON(http.StatusOK, gin.H{"data": sources})
}

func (s *Server) handleCreateSource(c *gin.Context) {
	if !s.requireSources(c) {
		return
	}
	var req CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := types.KnowledgeSource{ID: req.ID, Name: req.Name}
	if err := s.sources.CreateSource(c.Request.Context(), source); err != nil {
		respondRemoteError(c, err)
		return
	}
	s.stateManager.AddLog("Created knowledge source " + source.ID)
	c.JSON(http.StatusCreated, source)
}

func (s *Server) handleDeleteSource(c *gin.Context) {
	if !s.requireSources(c) {
		return
	}
	id := c.Param("id")
	if err := s.sources.DeleteSource(c.Request.Context(), id); err != nil {
		respondRemoteError(c, err)
		return
	}
	s.stateManager.AddLog("Deleted knowledge source " + id)
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (s *Server) requireSources(c *gin.Context) bool {
	if s.sources == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge source management is not configured"})
		return false
	}
	return true
}

// respondRemoteError maps the client error taxonomy onto HTTP statuses
func respondRemoteError(c *gin.Context, err error) {
	switch {
	case config.IsConfigurationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case client.StatusOf(err) != 0:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": client.StatusOf(err)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
