package ada

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"helpsync/calllog"
	"helpsync/client"
	"helpsync/config"
	"helpsync/types"
)

// Client talks to the knowledge base REST API
type Client struct {
	baseURL   string
	requester *client.Requester
}

// NewClient creates a client for baseURL authenticated with apiKey
func NewClient(baseURL, apiKey string, timeout time.Duration, sink calllog.Sink, opts ...client.Option) *Client {
	opts = append([]client.Option{client.WithBearerToken(apiKey), client.WithCallLog(sink)}, opts...)
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		requester: client.NewRequester(timeout, opts...),
	}
}

// NewClientFromSettings validates credentials before building the client
func NewClientFromSettings(s *config.Settings, sink calllog.Sink) (*Client, error) {
	if err := s.ValidateAda(); err != nil {
		return nil, err
	}
	return NewClient(s.Ada.AdaBaseURL(), s.Ada.APIKey, s.Ada.Timeout, sink), nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ArticlesPage is one page of the list articles response
type ArticlesPage struct {
	Data []types.DestinationArticle `json:"data"`
	Meta *PageMeta                  `json:"meta,omitempty"`
}

// PageMeta carries the optional end-of-pagination signals
type PageMeta struct {
	HasNext    *bool       `json:"has_next,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination reports the position in a paged listing
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// LastPage reports whether the metadata explicitly declares no further pages
func (m *PageMeta) LastPage() bool {
	if m == nil {
		return false
	}
	if m.HasNext != nil {
		return !*m.HasNext
	}
	if p := m.Pagination; p != nil && p.TotalPages > 0 {
		return p.CurrentPage >= p.TotalPages
	}
	return false
}

// ListArticlesPage fetches one page. Any status other than 200 is a *client.RemoteRejection.
func (c *Client) ListArticlesPage(ctx context.Context, knowledgeSourceID string, page int) (*ArticlesPage, error) {
	q := url.Values{}
	if knowledgeSourceID != "" {
		q.Set("knowledge_source_id", knowledgeSourceID)
	}
	q.Set("page", fmt.Sprint(page))
	target := fmt.Sprintf("%s/articles/?%s", c.baseURL, q.Encode())

	resp, err := c.requester.Do(ctx, http.MethodGet, target, nil, fmt.Sprintf("Fetch Ada articles page %d", page))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, client.Reject(resp)
	}

	var out ArticlesPage
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateArticles posts payloads to the bulk endpoint and returns the raw
// response; the caller decides which statuses count as success.
func (c *Client) CreateArticles(ctx context.Context, payloads []types.DestinationPayload, detail string) (*client.Response, error) {
	return c.requester.Do(ctx, http.MethodPost, c.baseURL+"/bulk/articles/", payloads, detail)
}

// DeleteArticle deletes one article by path segment and returns the raw response
func (c *Client) DeleteArticle(ctx context.Context, id, detail string) (*client.Response, error) {
	if id == "" {
		return nil, errors.New("delete article: empty id")
	}
	target := fmt.Sprintf("%s/articles/%s", c.baseURL, url.PathEscape(id))
	return c.requester.Do(ctx, http.MethodDelete, target, nil, detail)
}
