package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError wraps timeouts and connection failures
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejection is an unexpected status code from a remote API
type RemoteRejection struct {
	StatusCode int
	Body       []byte
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Detail())
}

// Detail returns the best-effort error body: compact JSON, else trimmed text,
// else the status text
func (e *RemoteRejection) Detail() string {
	if parsed := ParsedBody(e.Body); parsed != nil {
		return string(parsed)
	}
	if text := strings.TrimSpace(string(e.Body)); text != "" {
		return text
	}
	return http.StatusText(e.StatusCode)
}

// Reject builds a RemoteRejection from a response
func Reject(resp *Response) *RemoteRejection {
	return &RemoteRejection{StatusCode: resp.StatusCode, Body: resp.Body}
}

// ParsedBody returns body compacted when it is valid JSON, nil otherwise
func ParsedBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil
	}
	return json.RawMessage(buf.Bytes())
}

// IsTransport reports whether err wraps a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusOf returns the status code of a wrapped RemoteRejection, or 0
func StatusOf(err error) int {
	var rr *RemoteRejection
	if errors.As(err, &rr) {
		return rr.StatusCode
	}
	return 0
}
