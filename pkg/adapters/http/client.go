// Package http implements the streaming transport: the single
// initiating request against the conversation-scoped endpoint, whose
// response body is the live progress stream.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/quorumlabs/quorum/pkg/domain"
	"github.com/quorumlabs/quorum/pkg/ports"
)

const errorBodyLimit = 8 * 1024

// Client implements ports.Transport against a Quorum-compatible
// backend.
type Client struct {
	base   string
	http   *http.Client
	token  string
	header http.Header
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The default has
// no timeout, because the progress stream stays open for the whole
// workflow run; callers bound sends with a context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets a bearer token for the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// NewClient creates a transport for the given base URL.
func NewClient(base string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OpenStream POSTs the send request and returns the response body as
// the progress stream. A non-2xx response is drained (bounded), closed,
// and returned as a *domain.TransportError; no stream decode is
// attempted on it.
func (c *Client) OpenStream(ctx context.Context, req ports.SendRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/conversations/%s/messages", c.base, url.PathEscape(req.ConversationID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, values := range c.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		resp.Body.Close()
		return nil, &domain.TransportError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp.Body, nil
}
