// Package fetch executes map service requests over HTTP
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mapview/internal/debug"
	"mapview/internal/mapreq"
	"mapview/internal/metrics"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; mapview/1.0)"

	maxBodySize = 16 << 20
)

// ErrRequestFailed matches every *RequestFailedError
var ErrRequestFailed = errors.New("request failed")

// RequestFailedError reports a non-success HTTP status
type RequestFailedError struct {
	StatusCode int
	Reason     string
	URL        string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: HTTP %d (%s)", e.StatusCode, e.Reason)
}

// Is lets errors.Is(err, ErrRequestFailed) match
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// ImageStore caches image bytes by key
type ImageStore interface {
	Load(key string) ([]byte, bool)
	Save(key string, data []byte) error
}

// Client executes request descriptors
type Client struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	store     ImageStore
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithImageStore serves repeated image requests from the store
func WithImageStore(store ImageStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// NewClient creates a new client. Zero timeout and empty user agent use the defaults.
func NewClient(timeout time.Duration, userAgent string, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		client:    &http.Client{},
		userAgent: userAgent,
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs a GET for the request and returns the response body
func (c *Client) Do(ctx context.Context, r mapreq.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := r.URL()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRequest(r.Kind.String(), "error", time.Since(start))
		return nil, fmt.Errorf("%s request: %w", r.Kind, err)
	}
	defer resp.Body.Close()

	metrics.ObserveRequest(r.Kind.String(), strconv.Itoa(resp.StatusCode), time.Since(start))
	debug.Log("http request", "kind", r.Kind.String(), "url", url, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{
			StatusCode: resp.StatusCode,
			Reason:     reason(resp),
			URL:        url,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", r.Kind, err)
	}
	return body, nil
}

// FetchImage returns the image bytes for an image request, using the store when set
func (c *Client) FetchImage(ctx context.Context, r mapreq.Request) ([]byte, error) {
	key := r.URL()
	if c.store != nil {
		if data, ok := c.store.Load(key); ok {
			metrics.ImageCacheHits.Inc()
			return data, nil
		}
		metrics.ImageCacheMisses.Inc()
	}

	data, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		// only bodies that parse as an image are cached
		if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			debug.Warn("not caching undecodable image", "url", key, "error", err)
		} else if err := c.store.Save(key, data); err != nil {
			debug.Warn("failed to cache image", "error", err)
		} else {
			debug.Log("cached image", "url", key, "format", format)
		}
	}
	return data, nil
}

// reason extracts the reason phrase from the status line
func reason(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
