package httputil

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// retryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. Missing, malformed and past values yield 0.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// backoff returns the wait before attempt n+1 (n starting at 1). The delay
// doubles per attempt, a longer server hint wins and MaxDelay caps both.
func (c *Client) backoff(n int, hint time.Duration) time.Duration {
	d := c.Delay << (n - 1)
	d = max(d, hint)
	if c.MaxDelay > 0 {
		d = min(d, c.MaxDelay)
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
