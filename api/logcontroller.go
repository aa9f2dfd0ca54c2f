package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"helpsync/types"
)

// RegisterLogRoutes registers the call log and report history endpoints.
func RegisterLogRoutes(r *gin.Engine, s *Server) {
	g := r.Group("/api")
	g.GET("/calls", s.handleCalls)
	g.GET("/history", s.handleHistory)
}

func (s *Server) handleCalls(c *gin.Context) {
	entries := []types.CallLogEntry{}
	if s.calls != nil {
		entries = s.calls.Entries()
	}
	c.JSON(http.StatusOK, gin.H{"calls": entries})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"reports": []types.SyncReport{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	reports, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
