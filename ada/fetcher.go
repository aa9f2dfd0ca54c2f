package ada

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"helpsync/config"
	"helpsync/types"
)

// Logger is the logging surface used by the fetcher and sync driver
type Logger interface {
	Printf(format string, args ...interface{})
}

// PageLister lists one page of knowledge base articles
type PageLister interface {
	ListArticlesPage(ctx context.Context, knowledgeSourceID string, page int) (*ArticlesPage, error)
}

// ProgressFunc receives (current, total, detail); total is 0 when unknown
type ProgressFunc func(current, total int, detail string)

// FetchResult is the accumulated article list of a paginated fetch
type FetchResult struct {
	Articles []types.DestinationArticle
	Pages    int
	// Truncated is set when MaxPages was reached before an end-of-pagination signal
	Truncated bool
}

// Fetcher walks the list articles endpoint page by page
type Fetcher struct {
	lister   PageLister
	limiter  *rate.Limiter
	maxPages int
	logger   Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithMaxPages sets the runaway guard
func WithMaxPages(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithPageDelay sets the minimum spacing between page requests; 0 disables pacing
func WithPageDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger replaces the default logger
func WithLogger(l Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a fetcher with the default page ceiling and pacing
func NewFetcher(lister PageLister, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		lister:   lister,
		limiter:  rate.NewLimiter(rate.Every(config.PageDelay), 1),
		maxPages: config.MaxPages,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll accumulates pages until an empty page, an explicit last-page
// signal or the page ceiling. Any failed page fails the whole fetch; no
// partial result is returned.
func (f *Fetcher) FetchAll(ctx context.Context, knowledgeSourceID string, onProgress ProgressFunc) (*FetchResult, error) {
	result := &FetchResult{Articles: make([]types.DestinationArticle, 0)}

	for page := 1; ; page++ {
		if page > f.maxPages {
			result.Truncated = true
			f.logger.Printf("⚠️  Stopped after %d pages without an end-of-pagination signal; results are truncated", f.maxPages)
			return result, nil
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		resp, err := f.lister.ListArticlesPage(ctx, knowledgeSourceID, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		result.Pages = page

		if len(resp.Data) == 0 {
			f.logger.Printf("✓ Page %d is empty, fetch complete (%d articles)", page, len(result.Articles))
			return result, nil
		}

		result.Articles = append(result.Articles, resp.Data...)

		total := 0
		if resp.Meta != nil && resp.Meta.Pagination != nil {
			total = resp.Meta.Pagination.TotalPages
		}
		if onProgress != nil {
			onProgress(page, total, fmt.Sprintf("Page %d fetched: %d articles (%d total)", page, len(resp.Data), len(result.Articles)))
		}

		if resp.Meta.LastPage() {
			f.logger.Printf("✓ Page %d is the last page, fetch complete (%d articles)", page, len(result.Articles))
			return result, nil
		}
	}
}
