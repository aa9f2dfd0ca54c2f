package grabfeed

import (
	"strings"

	"helpsync/types"
)

// Cleaner converts an HTML body into the text stored on canonical articles.
// Implementations must not fail.
type Cleaner interface {
	Clean(html string) string
}

// Normalizer converts raw help-center records into canonical articles
type Normalizer struct {
	cleaner Cleaner
}

// NewNormalizer creates a normalizer; a nil cleaner uses NewHTMLCleaner
func NewNormalizer(cleaner Cleaner) *Normalizer {
	if cleaner == nil {
		cleaner = NewHTMLCleaner()
	}
	return &Normalizer{cleaner: cleaner}
}

// Normalize extracts identity fields and cleans the body, keeping the raw text
func (n *Normalizer) Normalize(raw types.RawSourceArticle) types.SourceArticle {
	return types.SourceArticle{
		ID:          raw.ID.String(),
		UUID:        raw.UUID,
		Name:        strings.TrimSpace(raw.Name),
		RawBody:     raw.Body,
		CleanedBody: n.cleaner.Clean(raw.Body),
	}
}

// NormalizeAll normalizes a batch, preserving order
func (n *Normalizer) NormalizeAll(raws []types.RawSourceArticle) []types.SourceArticle {
	articles := make([]types.SourceArticle, 0, len(raws))
	for _, raw := range raws {
		articles = append(articles, n.Normalize(raw))
	}
	return articles
}
