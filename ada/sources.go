package ada

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"helpsync/client"
	"helpsync/types"
)

type sourcesResponse struct {
	Data []types.KnowledgeSource `json:"data"`
}

// ListSources returns every knowledge source
func (c *Client) ListSources(ctx context.Context) ([]types.KnowledgeSource, error) {
	resp, err := c.requester.Do(ctx, http.MethodGet, c.baseURL+"/sources", nil, "List knowledge sources")
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge sources: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list knowledge sources: %w", client.Reject(resp))
	}

	// The endpoint answers either {"data": [...]} or a bare array
	var wrapped sourcesResponse
	if err := resp.Decode(&wrapped); err == nil {
		return wrapped.Data, nil
	}
	var bare []types.KnowledgeSource
	if err := resp.Decode(&bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// CreateSource creates a knowledge source
func (c *Client) CreateSource(ctx context.Context, source types.KnowledgeSource) error {
	detail := fmt.Sprintf("Create knowledge source %s", source.ID)
	resp, err := c.requester.Do(ctx, http.MethodPost, c.baseURL+"/sources", source, detail)
	if err != nil {
		return fmt.Errorf("failed to create knowledge source: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to create knowledge source: %w", client.Reject(resp))
	}
	return nil
}

// DeleteSource deletes a knowledge source
func (c *Client) DeleteSource(ctx context.Context, id string) error {
	target := fmt.Sprintf("%s/sources/%s", c.baseURL, url.PathEscape(id))
	resp, err := c.requester.Do(ctx, http.MethodDelete, target, nil, fmt.Sprintf("Delete knowledge source %s", id))
	if err != nil {
		return fmt.Errorf("failed to delete knowledge source: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete knowledge source: %w", client.Reject(resp))
	}
	return nil
}
