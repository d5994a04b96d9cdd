package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpTimeout bounds every fetch request.
const httpTimeout = 10 * time.Second

// DefaultMaxBytes caps response bodies at 5 MiB.
const DefaultMaxBytes int64 = 5 << 20

// Sentinel errors for fetch operations.
var (
	// ErrNotFound is returned when the resource does not exist (404).
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a response body exceeds the size cap.
	ErrTooLarge = errors.New("response too large")
)

// Client performs size-capped GET requests for binary assets.
// It applies a default header set to every request.
type Client struct {
	http     *http.Client
	maxBytes int64
	headers  map[string]string
}

// NewClient creates a Client with the given body size cap and default
// headers. A maxBytes of 0 or less falls back to [DefaultMaxBytes]. Pass
// nil for headers if no default headers are needed.
func NewClient(maxBytes int64, headers map[string]string) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		http:     &http.Client{Timeout: httpTimeout},
		maxBytes: maxBytes,
		headers:  headers,
	}
}

// Fetch performs a GET request and returns the body bytes and the response
// Content-Type. Transient failures come back wrapped in [RetryableError]
// so the call can be rerun through [Retry]. Bodies over the size cap
// return [ErrTooLarge].
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, "", err
	}

	// Read one byte past the cap to distinguish at-cap from over-cap.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, "", &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	if int64(len(data)) > c.maxBytes {
		return nil, "", fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, c.maxBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
