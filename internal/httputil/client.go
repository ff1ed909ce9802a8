// Package httputil provides an HTTP client that captures the Chrome Logger
// data attached to responses.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// ErrNoLog is returned when a response carries no X-ChromeLogger-Data header.
var ErrNoLog = errors.New("response has no " + chromelogger.HeaderName + " header")

// maxBodyBytes bounds how much of a response body is kept in a Capture.
const maxBodyBytes = 64 << 10

// Client fetches URLs and decodes their console logs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	maxRetries int
	backoff    time.Duration
}

// ClientConfig configures the client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	// Headers are sent with every request.
	Headers http.Header
}

// Capture is one fetched response.
type Capture struct {
	StatusCode int
	TraceID    string
	Body       []byte
	Truncated  bool
	Log        chromelogger.Envelope
}

// NewClient creates a new client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = 2
	}

	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = 200 * time.Millisecond
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		headers:    cfg.Headers.Clone(),
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Fetch performs the request and decodes the console log of the response.
// Error statuses are not errors: their logs are usually the interesting ones.
// Transport failures and 502/503/504 responses are retried. When the response
// has no log, the capture is returned together with ErrNoLog.
func (c *Client) Fetch(ctx context.Context, method, path string) (*Capture, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		capture, err := c.do(ctx, method, path)
		if capture == nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if retryableStatus(capture.StatusCode) && attempt < c.maxRetries {
			lastErr = fmt.Errorf("request failed with status %d", capture.StatusCode)
			continue
		}
		// a capture without a usable log is still returned with the error
		return capture, err
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, path string) (*Capture, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, truncated, err := ReadAllWithLimit(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	capture := &Capture{
		StatusCode: resp.StatusCode,
		TraceID:    resp.Header.Get("X-Trace-ID"),
		Body:       body,
		Truncated:  truncated,
	}
	value := resp.Header.Get(chromelogger.HeaderName)
	if value == "" {
		return capture, ErrNoLog
	}
	capture.Log, err = chromelogger.ParseHeader(value)
	if err != nil {
		return capture, err
	}
	return capture, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ReadAllWithLimit reads at most limit bytes from r and reports whether more
// data was available. The remainder is drained so the connection can be
// reused.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) <= limit {
		return body, false, nil
	}
	_, _ = io.Copy(io.Discard, r)
	return body[:limit], true, nil
}
