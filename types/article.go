package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexibleID is an article identifier that may arrive as a JSON string or number.
// Identity comparisons always use its string form.
type FlexibleID string

// UnmarshalJSON accepts "42", 42 and null
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the id as received; it is the matching key
func (id FlexibleID) String() string {
	return string(id)
}

// RawSourceArticle is one element of the help-center list response
type RawSourceArticle struct {
	ID   FlexibleID `json:"id"`
	UUID string     `json:"uuid"`
	Name string     `json:"name"`
	Body string     `json:"body"`
}

// SourceListResponse is the top-level help-center list response
type SourceListResponse struct {
	Articles []RawSourceArticle `json:"articles"`
}

// SourceArticle is the canonical form of a help-center article
type SourceArticle struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid,omitempty"`
	Name        string `json:"name"`
	RawBody     string `json:"body"`
	CleanedBody string `json:"cleaned_body"`
}

// DestinationArticle is an article as listed by the knowledge base
type DestinationArticle struct {
	ID                FlexibleID `json:"id"`
	Name              string     `json:"name"`
	Content           string     `json:"content"`
	KnowledgeSourceID string     `json:"knowledge_source_id"`
	Language          string     `json:"language"`
	URL               string     `json:"url"`
}

// DestinationPayload is one element of a bulk create request
type DestinationPayload struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Content           string  `json:"content"`
	KnowledgeSourceID string  `json:"knowledge_source_id"`
	URL               string  `json:"url"`
	Language          string  `json:"language"`
	ExternalUpdated   *string `json:"external_updated,omitempty"`
}

// KnowledgeSource is a named partition of the knowledge base
type KnowledgeSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassificationResult explains why an article would be excluded from sync
type ClassificationResult struct {
	IsTestArticle bool     `json:"is_test_article"`
	IsEmpty       bool     `json:"is_empty"`
	Reasons       []string `json:"reasons,omitempty"`
}

// Excluded reports whether the article is noise
func (c ClassificationResult) Excluded() bool {
	return c.IsTestArticle || c.IsEmpty
}

// ExcludedArticle pairs a filtered-out article with its classification
type ExcludedArticle struct {
	Article        SourceArticle        `json:"article"`
	Classification ClassificationResult `json:"classification"`
}

// MatchedPair is an article present on both sides
type MatchedPair struct {
	Source      SourceArticle      `json:"source"`
	Destination DestinationArticle `json:"destination"`
}

// ComparisonResult partitions the source and destination collections
type ComparisonResult struct {
	KnowledgeSourceID string               `json:"knowledge_source_id,omitempty"`
	Existing          []MatchedPair        `json:"existing"`
	New               []SourceArticle      `json:"new"`
	Orphaned          []DestinationArticle `json:"orphaned"`
	PagesFetched      int                  `json:"pages_fetched"`
	Truncated         bool                 `json:"truncated"`
}
