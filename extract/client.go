package extract

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

// Client is a Service implementation backed by an HTTP extraction API.
// The API contract: POST {base}/v1/extract with the raw image bytes as
// the body and the media type as Content-Type; 200 responds with
// {"addresses": ["...", ...]}, any other status is a failure.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client. Useful for injecting
// transports and timeouts.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client against the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type extractResponse struct {
	Addresses []string `json:"addresses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Extract implements Service.
func (c *Client) Extract(ctx context.Context, payload []byte, mediaType string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, NewError(KindInternal, "build request: %v", err)
	}
	req.Header.Set("Content-Type", mediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewError(KindUnavailable, "%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, NewError(KindUnavailable, "read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var out extractResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, NewError(KindInternal, "decode response: %v", err)
		}
		return out.Addresses, nil

	case resp.StatusCode == http.StatusUnsupportedMediaType,
		resp.StatusCode == http.StatusUnprocessableEntity,
		resp.StatusCode == http.StatusBadRequest:
		return nil, NewError(KindUnreadable, "%s", serviceMessage(body, resp.StatusCode))

	case resp.StatusCode >= 500:
		return nil, NewError(KindInternal, "%s", serviceMessage(body, resp.StatusCode))

	default:
		return nil, NewError(KindUnavailable, "%s", serviceMessage(body, resp.StatusCode))
	}
}

// serviceMessage pulls the error field from a JSON error body, falling
// back to the HTTP status.
func serviceMessage(body []byte, status int) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return fmt.Sprintf("unexpected status %d", status)
}
