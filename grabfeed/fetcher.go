package grabfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"helpsync/calllog"
	"helpsync/client"
	"helpsync/types"
)

// Fetcher retrieves the full article list for one user type and locale
type Fetcher struct {
	urlTemplate string
	requester   *client.Requester
}

// NewFetcher creates a fetcher. urlTemplate may contain {user_type} and {locale}.
func NewFetcher(urlTemplate string, timeout time.Duration, sink calllog.Sink) *Fetcher {
	return &Fetcher{
		urlTemplate: urlTemplate,
		requester:   client.NewRequester(timeout, client.WithCallLog(sink)),
	}
}

// ResolveURL fills the template placeholders
func (f *Fetcher) ResolveURL(userType, locale string) string {
	r := strings.NewReplacer(
		"{user_type}", url.PathEscape(userType),
		"{locale}", url.PathEscape(locale),
	)
	return r.Replace(f.urlTemplate)
}

// Fetch performs the single list call; the endpoint is not paginated
func (f *Fetcher) Fetch(ctx context.Context, userType, locale string) ([]types.RawSourceArticle, error) {
	target := f.ResolveURL(userType, locale)
	detail := fmt.Sprintf("Fetch help-center articles for %s/%s", userType, locale)

	resp, err := f.requester.Do(ctx, http.MethodGet, target, nil, detail)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch articles: %w", client.Reject(resp))
	}

	var list types.SourceListResponse
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	return list.Articles, nil
}
