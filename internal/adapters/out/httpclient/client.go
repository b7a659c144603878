// Package httpclient is the JSON-over-HTTP plumbing shared by the outbound
// collaborator adapters. Every call is bounded by the client timeout, and
// transport failures, timeouts, 5xx answers and undecodable bodies all come
// back as *errs.UpstreamUnavailableError naming the collaborator.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

// DefaultTimeout applies when a zero timeout is configured.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client calls one collaborator rooted at a base URL.
type Client struct {
	service string
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a client for service. baseURL must not end with a slash; one is trimmed if present.
func New(service, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

// Service is the collaborator name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Response is the outcome of a call that reached the collaborator.
type Response struct {
	StatusCode int
	// Body is kept only for non-2xx answers
	Body string
}

// IsSuccess reports a 2xx status.
func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends body (if non-nil) as JSON and decodes a 2xx answer into out (if
// non-nil). 4xx answers are returned without error so callers can map them.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
	out any,
) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode %s request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, errs.NewUpstreamUnavailableErrorWithCause(c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, errs.NewUpstreamUnavailableErrorWithCause(c.service, err)
	}
	defer resp.Body.Close()

	result := Response{StatusCode: resp.StatusCode}
	if !result.IsSuccess() {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		result.Body = string(raw)
		if resp.StatusCode >= http.StatusInternalServerError {
			return result, errs.NewUpstreamUnavailableErrorWithCause(c.service,
				fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
		}
		return result, nil
	}

	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return result, errs.NewUpstreamUnavailableErrorWithCause(c.service,
				fmt.Errorf("decode %s %s: %w", method, path, err))
		}
	}
	return result, nil
}

// Unexpected wraps a non-2xx answer the caller has no mapping for.
func (c *Client) Unexpected(method, path string, resp Response) error {
	return errs.NewUpstreamUnavailableErrorWithCause(c.service,
		fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, resp.Body))
}
