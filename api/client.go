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
	"time"

	"github.com/google/uuid"

	"yoforex-admin/internal/logger"
)

var (
	// ErrUnauthorized means the session is missing or expired (HTTP 401).
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the session lacks an admin role (HTTP 403).
	ErrForbidden = errors.New("access denied")
)

// StatusError carries a non-2xx response that is not an auth failure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Body)
}

// Client talks to the YoForex REST API. The token provider is called per
// request so a re-login mid-session picks up the new token.
type Client struct {
	base  string
	http  *http.Client
	token func() string
}

func New(base string, timeout time.Duration, token func() string) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: timeout},
		token: token,
	}
}

// Get fetches a read endpoint. The path may carry a query string (cache keys
// serialize to exactly this form).
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.roundTrip(ctx, http.MethodGet, path, nil)
}

// Do issues a mutation. The body is JSON-encoded; a nil body sends an empty
// object so POST endpoints always see valid JSON.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if body == nil {
		body = struct{}{}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.roundTrip(ctx, method, path, b)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	if method != http.MethodGet {
		// Request IDs let the backend's audit log correlate admin actions.
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode >= 400:
		logger.Errorf("%s %s -> %d", method, path, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}
