// Package backend is the typed REST client for the ARVO import endpoint.
//
// The client sends one JSON batch per import and interprets the
// response contract: {"count": n} on success, {"error": "..."} on
// failure. A non-success status or an error body is a hard failure
// surfaced verbatim to the caller. There is deliberately no retry; the
// timeout bounds the single attempt and the caller's context can cancel
// it earlier.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the backend import API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client for the given base URL. apiKey may be empty;
// timeout bounds each submission.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// BatchRequest is the wire shape of one import batch.
type BatchRequest struct {
	Items []map[string]any `json:"items"`
}

// batchResponse covers both response shapes of the import endpoint.
type batchResponse struct {
	Count int    `json:"count"`
	Error string `json:"error"`
}

// SubmitBatch posts items to /import/{schemaKey} and returns the number
// of accepted records.
func (c *Client) SubmitBatch(ctx context.Context, schemaKey string, items []map[string]any) (int, error) {
	body, err := json.Marshal(BatchRequest{Items: items})
	if err != nil {
		return 0, fmt.Errorf("marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/import/%s", c.baseURL, schemaKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()

	// The error body, when present, is the user-facing message
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var parsed batchResponse
	if len(raw) > 0 {
		// A non-JSON body on an error status is still surfaced below
		_ = json.Unmarshal(raw, &parsed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = resp.Status
		}
		return 0, fmt.Errorf("import rejected: %s", msg)
	}

	if parsed.Error != "" {
		return 0, fmt.Errorf("import rejected: %s", parsed.Error)
	}

	return parsed.Count, nil
}
