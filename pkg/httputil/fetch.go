package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/netview/pkg/buildinfo"
	"github.com/matzehuels/netview/pkg/observability"
)

// DefaultMaxBody limits the size of fetched documents.
const DefaultMaxBody = 256 << 20

// ErrTooLarge is returned when a response exceeds the client's body limit.
var ErrTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int

	// RetryAfter is the wait the server asked for, if any.
	RetryAfter time.Duration
}

// Temporary reports whether repeating the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Client fetches documents over HTTP. Transport failures, 5xx and 429
// responses are retried with exponential backoff.
type Client struct {
	HTTP     *http.Client
	Attempts int
	Delay    time.Duration // first backoff
	MaxDelay time.Duration // cap on any single wait, including Retry-After
	MaxBody  int64
}

// NewClient returns a client with a 30 second timeout and 3 attempts.
func NewClient() *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Attempts: 3,
		Delay:    time.Second,
		MaxDelay: 30 * time.Second,
		MaxBody:  DefaultMaxBody,
	}
}

// result is the outcome of one request.
type result struct {
	body  []byte
	err   error
	retry bool
	hint  time.Duration
}

// Fetch downloads rawURL with a default client.
func Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return NewClient().Fetch(ctx, rawURL)
}

// Fetch downloads rawURL and returns the body.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	for n := 1; ; n++ {
		r := c.get(ctx, u)
		if r.err == nil {
			return r.body, nil
		}
		if !r.retry || n >= c.Attempts || ctx.Err() != nil {
			return nil, r.err
		}
		if err := sleep(ctx, c.backoff(n, r.hint)); err != nil {
			return nil, err
		}
	}
}

func (c *Client) get(ctx context.Context, u *url.URL) result {
	hooks := observability.HTTP()
	const method = http.MethodGet
	hooks.OnRequest(ctx, method, u.Host, u.Path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return result{err: err}
	}
	req.Header.Set("Accept", "application/json, application/gzip, */*")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, u.Path, err)
		return result{err: err, retry: true}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		serr := &StatusError{
			URL:        u.String(),
			Status:     resp.StatusCode,
			RetryAfter: retryAfter(resp.Header, time.Now()),
		}
		return result{err: serr, retry: serr.Temporary(), hint: serr.RetryAfter}
	}

	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return result{err: fmt.Errorf("read body: %w", err), retry: true}
	}
	if int64(len(data)) > limit {
		return result{err: ErrTooLarge}
	}
	return result{body: data}
}
