// Package api is the remote access layer: it issues JSON requests against
// the storefront backend, attaches the bearer token of the active session
// and normalizes error and empty-body responses. It does not retry and it
// does not cache.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a failed remote call: the HTTP status plus the human-readable
// message extracted from the response body, or a generic fallback when the
// body carried none.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// TokenSource yields the bearer token of the active session, or "" when
// nobody is logged in. No Authorization header is sent in that case.
type TokenSource func() string

// Doer is the slice of the client the services depend on. Tests substitute
// a mock.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

// Client issues requests against the backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewClient creates a client for the backend at baseURL. token may be nil
// for a purely anonymous client.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		token:      token,
	}
}

// Do sends method+path with body marshaled as JSON and decodes the
// response into out. A 204 response (or an empty body) leaves out untouched.
// Non-2xx responses come back as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// parseError extracts the backend's message field when the error body is
// JSON, falling back to a generic message with the status code.
func parseError(resp *http.Response) error {
	apiErr := &Error{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("server error %d", resp.StatusCode),
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
