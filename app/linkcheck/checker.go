package linkcheck

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Checker probes URLs for liveness. A dead or unreachable URL is a normal
// outcome encoded in the result, never an error.
type Checker struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// NewChecker creates a new link checker
func NewChecker(httpClient *http.Client, userAgent string, maxRetries int, retryDelay time.Duration) *Checker {
	return &Checker{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Run checks whether a URL is reachable. Success is a 2xx/3xx final status
// after redirects; any HTTP response outside that range is dead. Transport
// errors are retried with exponential backoff up to the retry budget, then
// classified dead. A malformed URL is unknown immediately, without retries.
func (c *Checker) Run(ctx context.Context, rawURL string) Result {
	result := Result{URL: rawURL, CheckedAt: time.Now().UTC()}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.Status = StatusUnknown
		return result
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if err != nil {
			result.Status = StatusUnknown
			return result
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 400 {
				result.Status = StatusAlive
			} else {
				result.Status = StatusDead
			}
			slog.Debug("Link checked", "url", rawURL, "status_code", resp.StatusCode, "status", string(result.Status))
			return result
		}

		if ctx.Err() != nil {
			result.Status = StatusUnknown
			return result
		}

		if attempt >= c.maxRetries {
			slog.Debug("Link check exhausted retries", "url", rawURL, "attempts", attempt+1, "error", err)
			result.Status = StatusDead
			return result
		}

		delay := c.retryDelay << uint(attempt)
		slog.Debug("Link check retry scheduled", "url", rawURL, "attempt", attempt+1, "delay", delay.String(), "error", err)

		select {
		case <-ctx.Done():
			result.Status = StatusUnknown
			return result
		case <-time.After(delay):
		}
	}
}
