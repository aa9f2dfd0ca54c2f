package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"helpsync/client"
	"helpsync/types"
)

// Backend is the part of the helpsync API the dashboard drives
type Backend interface {
	GetStatus(ctx context.Context) (*types.StatusResponse, error)
	Trigger(ctx context.Context, action string, body interface{}) error
}

// APIClient is a thin HTTP client for the helpsync API
type APIClient struct {
	baseURL   string
	requester *client.Requester
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		requester: client.NewRequester(5 * time.Second),
	}
}

// GetStatus fetches the current session status
func (c *APIClient) GetStatus(ctx context.Context) (*types.StatusResponse, error) {
	resp, err := c.requester.Do(ctx, http.MethodGet, c.baseURL+"/api/status", nil, "Poll status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, client.Reject(resp)
	}

	var status types.StatusResponse
	if err := resp.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Trigger starts a background operation: fetch, compare, upload or delete
func (c *APIClient) Trigger(ctx context.Context, action string, body interface{}) error {
	if body == nil {
		body = struct{}{}
	}
	resp, err := c.requester.Do(ctx, http.MethodPost, c.baseURL+"/api/"+action, body, "Trigger "+action)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", action, err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return client.Reject(resp)
	}
	return nil
}
