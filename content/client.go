// Package content is the HTTP client of the content API that serves posts.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkfeed/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "inkfeed/0.1"

	// maxBodySize caps how much of a response body is decoded
	maxBodySize = 32 << 20
)

type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

type Option func(*Client)

// WithHTTPClient sends requests through hc. A nil hc keeps the default client.
// The client is never modified; see WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of every request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "https://example.com/api". The collection lives at <baseURL>/content.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// FetchPosts retrieves the whole post collection. The response is all or
// nothing: any failure returns a *FetchError and no posts.
func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.getJSON(ctx, "collection", c.baseURL+"/content", &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// FetchPost retrieves a single post by id
func (c *Client) FetchPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.getJSON(ctx, "post", c.baseURL+"/content/"+url.PathEscape(id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target string, v interface{}) error {
	start := time.Now()
	requestID := uuid.New().String()

	fail := func(status int, err error) error {
		fetchTotal.WithLabelValues(endpoint, "failure").Inc()
		log.WithFields(log.Fields{
			"url":        target,
			"status":     status,
			"request_id": requestID,
			"error":      err,
		}).Warn("Content API request failed")
		return &FetchError{URL: target, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(0, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	fetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && endpoint == "post" {
		return fail(resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return fail(resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(v); err != nil {
		return fail(0, fmt.Errorf("decoding response: %w", err))
	}

	fetchTotal.WithLabelValues(endpoint, "success").Inc()
	log.WithFields(log.Fields{
		"url":        target,
		"request_id": requestID,
		"latency":    time.Since(start),
	}).Debug("Content API request")

	return nil
}
