package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"helpsync/calllog"
	"helpsync/types"
)

// Requester executes JSON requests and records every attempt on the call log
type Requester struct {
	httpClient *http.Client
	headers    map[string]string
	sink       calllog.Sink
	now        func() time.Time
}

// Option configures a Requester
type Option func(*Requester)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requester) { r.httpClient = c }
}

// WithHeader sets a header on every request
func WithHeader(key, value string) Option {
	return func(r *Requester) { r.headers[key] = value }
}

// WithBearerToken sets the Authorization header
func WithBearerToken(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithCallLog routes call records to sink
func WithCallLog(sink calllog.Sink) Option {
	return func(r *Requester) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithClock overrides the timestamp source of call records
func WithClock(now func() time.Time) Option {
	return func(r *Requester) { r.now = now }
}

// NewRequester creates a Requester with the given timeout
func NewRequester(timeout time.Duration, opts ...Option) *Requester {
	r := &Requester{
		httpClient: &http.Client{Timeout: timeout},
		headers:    map[string]string{"Content-Type": "application/json"},
		sink:       calllog.Discard,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do performs one request. Transport failures return *TransportError; any
// status code is returned as a Response so callers apply their own success
// predicate. detail describes the call in the call log.
func (r *Requester) Do(ctx context.Context, method, url string, payload interface{}, detail string) (*Response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := r.now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.record(method, url, 0, start, fmt.Sprintf("%s failed: %v", detail, err))
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		r.record(method, url, resp.StatusCode, start, fmt.Sprintf("%s failed reading body: %v", detail, err))
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	r.record(method, url, resp.StatusCode, start, detail)
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (r *Requester) record(method, url string, status int, start time.Time, detail string) {
	r.sink.Record(types.CallLogEntry{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Success:    status >= 200 && status < 300,
		Timestamp:  start,
		Duration:   r.now().Sub(start),
		Details:    detail,
	})
}
