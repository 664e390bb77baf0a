package weverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/ratelimit"
	"wvdl/pkg/retry"
)

// Options configures a Client
type Options struct {
	Endpoints  Endpoints
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
	RetryDelay time.Duration
}

// Client talks to the Weverse web API. Every request, including media
// downloads, holds one slot of the shared gate while it is in flight.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	token      string
	endpoints  Endpoints
	gate       ratelimit.Limiter
	retry      retry.Config
	logger     logger.Logger
}

// NewClient creates a client authenticating API calls with token.
func NewClient(token string, gate ratelimit.Limiter, opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Endpoints.API == "" {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if gate == nil {
		gate = ratelimit.NewGate(20, 0)
	}

	headers := map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		headers:    headers,
		token:      token,
		endpoints:  opts.Endpoints,
		gate:       gate,
		retry: retry.Config{
			MaxAttempts: opts.MaxRetries + 1,
			Backoff:     retry.NewExponentialBackoff(opts.RetryDelay),
			Logger:      log,
		},
		logger: log,
	}
}

// Endpoints returns the URL builder this client uses
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// do sends one request while holding a gate slot. The returned done func
// closes the body and frees the slot.
func (c *Client) do(ctx context.Context, method, url string, body []byte, authenticated bool) (*http.Response, func(), error) {
	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrorTypeRequest, url, "waiting for connection slot", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		release()
		return nil, nil, errs.Wrap(errs.ErrorTypeRequest, url, "building request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		release()
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, nil, errs.Wrap(errs.ErrorTypeRequest, url, "sending request", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	return resp, func() {
		resp.Body.Close()
		release()
	}, nil
}

// checkResponseStatus turns a non-2xx response into a typed error
func (c *Client) checkResponseStatus(resp *http.Response, url string, t errs.ErrorType) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	c.logger.DebugWithFields("unexpected status", map[string]interface{}{
		"url":    url,
		"status": resp.StatusCode,
		"type":   string(t),
	})
	return &errs.Error{
		Type:    t,
		Message: fmt.Sprintf("unexpected response %s", http.StatusText(resp.StatusCode)),
		Code:    resp.StatusCode,
		Target:  url,
	}
}

func (c *Client) decode(resp *http.Response, url string, t errs.ErrorType, target interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeRequest, url, "reading response body", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.DebugWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.Wrap(t, url, "parsing response", err)
	}
	return nil
}

// getJSON performs a retried GET and decodes the body into target.
func (c *Client) getJSON(ctx context.Context, url string, authenticated bool, t errs.ErrorType, target interface{}) error {
	return retry.Do(ctx, c.retry, func() error {
		resp, done, err := c.do(ctx, http.MethodGet, url, nil, authenticated)
		if err != nil {
			return err
		}
		defer done()

		if err := c.checkResponseStatus(resp, url, t); err != nil {
			return err
		}
		return c.decode(resp, url, t, target)
	})
}

// FetchCommunities lists every community. This endpoint is public and is
// called without the session token.
func (c *Client) FetchCommunities(ctx context.Context) ([]Community, error) {
	var out CommunitiesResponse
	if err := c.getJSON(ctx, c.endpoints.CommunitiesURL(), false, errs.ErrorTypeArtistLookup, &out); err != nil {
		return nil, err
	}
	return out.Communities, nil
}

// FetchFeedPage fetches one page of a creator's feed.
func (c *Client) FetchFeedPage(ctx context.Context, artistID int64, feed Feed, pageSize int, from *int64) (*PostsPage, error) {
	url := c.endpoints.FeedURL(artistID, feed, pageSize, from)
	var page PostsPage
	if err := c.getJSON(ctx, url, true, errs.ErrorTypePagination, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPost fetches the full detail of post. With a password the request is
// a single POST carrying {"lockPassword": ...}; any non-2xx answer to it is
// reported as ErrorTypeAuthRequired and never retried. Without one it is a
// retried GET.
func (c *Client) FetchPost(ctx context.Context, post Post, password *string) (Post, error) {
	url := c.endpoints.PostURL(post.Community.ID, post.ID)

	if password == nil {
		var full Post
		if err := c.getJSON(ctx, url, true, errs.ErrorTypeResponse, &full); err != nil {
			return Post{}, err
		}
		return full, nil
	}

	body, err := json.Marshal(map[string]string{"lockPassword": *password})
	if err != nil {
		return Post{}, errs.Wrap(errs.ErrorTypeRequest, url, "encoding password", err)
	}

	resp, done, err := c.do(ctx, http.MethodPost, url, body, true)
	if err != nil {
		return Post{}, err
	}
	defer done()

	if err := c.checkResponseStatus(resp, url, errs.ErrorTypeAuthRequired); err != nil {
		return Post{}, err
	}

	var full Post
	if err := c.decode(resp, url, errs.ErrorTypeResponse, &full); err != nil {
		return Post{}, err
	}
	return full, nil
}

// DownloadFile streams url into a new file at path. Media is served without
// authentication.
func (c *Client) DownloadFile(ctx context.Context, url, path string) error {
	return retry.Do(ctx, c.retry, func() error {
		resp, done, err := c.do(ctx, http.MethodGet, url, nil, false)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeMediaFetch, url, "fetching media", err)
		}
		defer done()

		if err := c.checkResponseStatus(resp, url, errs.ErrorTypeMediaFetch); err != nil {
			return err
		}

		out, err := os.Create(path)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeFileIO, path, "creating file", err)
		}
		_, copyErr := io.Copy(out, resp.Body)
		closeErr := out.Close()
		if copyErr != nil {
			return errs.Wrap(errs.ErrorTypeFileIO, path, "writing file", copyErr)
		}
		if closeErr != nil {
			return errs.Wrap(errs.ErrorTypeFileIO, path, "closing file", closeErr)
		}

		c.logger.DebugWithFields("media saved", map[string]interface{}{
			"url":  url,
			"path": path,
		})
		return nil
	})
}
