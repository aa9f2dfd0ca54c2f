package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"helpsync/types"
	"helpsync/workflow"
)

// RegisterSyncRoutes registers the session and bulk operation endpoints.
func RegisterSyncRoutes(r *gin.Engine, s *Server) {
	g := r.Group("/api")
	g.GET("/status", s.handleStatus)
	g.GET("/comparison", s.handleComparison)
	g.POST("/fetch", s.handleFetch)
	g.POST("/compare", s.handleCompare)
	g.POST("/upload", s.handleUpload)
	g.POST("/delete", s.handleDelete)
	g.POST("/run", s.handleRun)
}

// CompareRequest selects the knowledge source; empty uses the configured default
type CompareRequest struct {
	KnowledgeSourceID string `json:"knowledge_source_id"`
}

// BulkRequest selects a subset of the comparison by id; empty means all
type BulkRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

// ArticleSummary is one row of a comparison listing
type ArticleSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContentLength int    `json:"content_length"`
}

// ComparisonResponse is returned by GET /api/comparison
type ComparisonResponse struct {
	KnowledgeSourceID string            `json:"knowledge_source_id"`
	PagesFetched      int               `json:"pages_fetched"`
	Truncated         bool              `json:"truncated"`
	Existing          []ArticleSummary  `json:"existing"`
	New               []ArticleSummary  `json:"new"`
	Orphaned          []ArticleSummary  `json:"orphaned"`
	Excluded          []ExcludedSummary `json:"excluded"`
}

// ExcludedSummary is one filtered source article with its reasons
type ExcludedSummary struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"`
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.stateManager.Snapshot())
}

func (s *Server) handleComparison(c *gin.Context) {
	result := s.stateManager.Comparison()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": workflow.ErrNoComparison.Error()})
		return
	}

	resp := ComparisonResponse{
		KnowledgeSourceID: result.KnowledgeSourceID,
		PagesFetched:      result.PagesFetched,
		Truncated:         result.Truncated,
		Existing:          make([]ArticleSummary, 0, len(result.Existing)),
		New:               make([]ArticleSummary, 0, len(result.New)),
		Orphaned:          make([]ArticleSummary, 0, len(result.Orphaned)),
		Excluded:          make([]ExcludedSummary, 0),
	}
	for _, pair := range result.Existing {
		resp.Existing = append(resp.Existing, sourceSummary(pair.Source))
	}
	for _, a := range result.New {
		resp.New = append(resp.New, sourceSummary(a))
	}
	for _, a := range result.Orphaned {
		resp.Orphaned = append(resp.Orphaned, ArticleSummary{ID: a.ID.String(), Name: a.Name, ContentLength: len(a.Content)})
	}
	for _, ex := range s.stateManager.Excluded() {
		resp.Excluded = append(resp.Excluded, ExcludedSummary{ID: ex.Article.ID, Name: ex.Article.Name, Reasons: ex.Classification.Reasons})
	}

	c.JSON(http.StatusOK, resp)
}

func sourceSummary(a types.SourceArticle) ArticleSummary {
	return ArticleSummary{ID: a.ID, Name: a.Name, ContentLength: len(a.CleanedBody)}
}

func (s *Server) handleFetch(c *gin.Context) {
	s.start(c, workflow.Request{Action: workflow.ActionFetch})
}

func (s *Server) handleRun(c *gin.Context) {
	s.start(c, workflow.Request{Action: workflow.ActionRun})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.KnowledgeSourceID == "" {
		req.KnowledgeSourceID = c.Query("knowledge_source_id")
	}
	s.start(c, workflow.Request{Action: workflow.ActionCompare, KnowledgeSourceID: req.KnowledgeSourceID})
}

func (s *Server) handleUpload(c *gin.Context) {
	var req BulkRequest
	if !bindOptional(c, &req) {
		return
	}
	s.start(c, workflow.Request{Action: workflow.ActionUpload, IDs: req.IDs})
}

// handleDelete requires an explicit confirmation in the body
func (s *Server) handleDelete(c *gin.Context) {
	var req BulkRequest
	if !bindOptional(c, &req) {
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion requires \"confirm\": true"})
		return
	}
	s.start(c, workflow.Request{Action: workflow.ActionDelete, IDs: req.IDs})
}

// start launches req in the background and answers 202, or 409 while busy
func (s *Server) start(c *gin.Context, req workflow.Request) {
	err := s.workflowRunner.Start(s.ctx, req)

	var busy *workflow.ErrBusy
	switch {
	case errors.As(err, &busy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": busy.State})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "started", "action": req.Action})
	}
}

// bindOptional decodes a JSON body when one is present
func bindOptional(c *gin.Context, v interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
