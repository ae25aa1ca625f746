// Package ergast talks to the Ergast-compatible motorsport statistics API:
// a rate-limited HTTP client plus mapping of its nested JSON payloads into
// flat records.
package ergast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UpstreamError is a terminal upstream failure: a non-retryable HTTP status,
// or the retry budget for rate-limit responses being exhausted.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream request %s: status %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// defaultCooldown paces successful requests when the upstream sends no rate
// headers (~4 req/s).
const defaultCooldown = 250 * time.Millisecond

// Client issues sequential GET requests against the upstream API. Requests
// hit with HTTP 429 are retried after the delay the response headers ask
// for; successful requests are followed by a cool-down so the implied rate
// limit is respected even without a 429. Not meant to be called from more
// than one goroutine at a time – parallel requests would defeat the pacing.
type Client struct {
	http    *retryablehttp.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient returns a client that retries rate-limited requests at most
// maxRetries times before giving up with an UpstreamError.
func NewClient(maxRetries int, logger *zap.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = time.Second
	rc.RetryWaitMax = 60 * time.Second
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.Backoff = rateLimitBackoff
	rc.HTTPClient.Timeout = 30 * time.Second

	return &Client{
		http:    rc,
		limiter: rate.NewLimiter(rate.Every(defaultCooldown), 1),
		logger:  logger.Named("ergast"),
	}
}

// Get fetches url and returns the response body. Any non-2xx status other
// than 429 fails immediately with an UpstreamError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}

	c.cooldown(ctx, resp)
	return body, nil
}

// cooldown sleeps after a successful request: the header-advertised delay
// when present, otherwise the default pacing through the limiter.
func (c *Client) cooldown(ctx context.Context, resp *http.Response) {
	if d, ok := retryDelay(resp); ok {
		c.logger.Debug("upstream requested cool-down", zap.Duration("delay", d))
		sleepCtx(ctx, d)
		return
	}
	_ = c.limiter.Wait(ctx)
}

// checkRetry retries transport errors and HTTP 429 only. All other statuses
// are terminal and handled by the caller.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// rateLimitBackoff waits however long the 429 response asks for, defaulting
// to one second when no usable header is present.
func rateLimitBackoff(_, _ time.Duration, _ int, resp *http.Response) time.Duration {
	if d, ok := retryDelay(resp); ok {
		return d
	}
	return time.Second
}

// retryDelay reads the Retry-After / X-RateLimit-Reset headers, both integer
// seconds.
func retryDelay(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	for _, h := range []string{"Retry-After", "X-RateLimit-Reset"} {
		v := strings.TrimSpace(resp.Header.Get(h))
		if v == "" {
			continue
		}
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			continue
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
