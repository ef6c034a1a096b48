package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultSaveURL         = "https://web.archive.org/save/"
	DefaultAvailabilityURL = "https://archive.org/wayback/available"

	// Snapshot timestamps use the archive's 14-digit form, e.g. 20200101000000
	snapshotTimestampLayout = "20060102150405"
)

// Client talks to the archiving service. It is stateless; per-run
// deduplication of archive calls is the orchestrator's responsibility.
type Client struct {
	httpClient      *http.Client
	userAgent       string
	saveURL         string
	availabilityURL string
	maxRetries      int
	retryDelay      time.Duration
}

// NewClient creates a new archiving-service client
func NewClient(httpClient *http.Client, userAgent, saveURL, availabilityURL string, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{
		httpClient:      httpClient,
		userAgent:       userAgent,
		saveURL:         saveURL,
		availabilityURL: availabilityURL,
		maxRetries:      maxRetries,
		retryDelay:      retryDelay,
	}
}

// Lookup checks whether a snapshot of the URL already exists. It is
// read-only and idempotent. A missing snapshot returns (nil, nil).
func (c *Client) Lookup(ctx context.Context, rawURL string) (*Result, error) {
	endpoint := c.availabilityURL + "?url=" + url.QueryEscape(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned HTTP %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var payload availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode availability response: %w", err)
	}

	closest := payload.ArchivedSnapshots.Closest
	if !closest.Available || closest.URL == "" {
		return nil, nil
	}

	slog.Debug("Existing snapshot found", "url", rawURL, "archive_url", closest.URL)

	return &Result{
		URL:             rawURL,
		ArchiveURL:      closest.URL,
		ArchiveDate:     parseSnapshotTimestamp(closest.Timestamp),
		AlreadyArchived: true,
	}, nil
}

// Archive requests a new snapshot of the URL. The service may take time to
// complete the capture, so the client polls the availability API up to a
// bounded ceiling before giving up with a retryable error. Rate limits and
// outages are retried with exponential backoff within the retry budget.
func (c *Client) Archive(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("cannot archive %q: %w", rawURL, ErrInvalidURL)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << uint(attempt-1)
			slog.Debug("Archive retry scheduled", "url", rawURL, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("archive cancelled: %w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := c.requestCapture(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Only rate limits and outages are worth another attempt
		if errors.Is(err, ErrInvalidURL) {
			return nil, err
		}
	}

	return nil, lastErr
}

// requestCapture performs one save call and resolves the resulting snapshot.
func (c *Client) requestCapture(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.saveURL+rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create save request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("save request cancelled: %w: %v", ErrUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("save request failed: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("save returned HTTP %d: %w", resp.StatusCode, ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("save returned HTTP %d: %w", resp.StatusCode, ErrUnavailable)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("save returned HTTP %d: %w", resp.StatusCode, ErrInvalidURL)
	}

	// The snapshot location is announced in a header when the capture
	// completes synchronously
	location := resp.Header.Get("Content-Location")
	if location == "" {
		location = resp.Header.Get("Location")
	}
	if location != "" && strings.Contains(location, "/web/") {
		archiveURL := location
		if strings.HasPrefix(location, "/") {
			archiveURL = resp.Request.URL.Scheme + "://" + resp.Request.URL.Host + location
		}
		slog.Info("URL archived", "url", rawURL, "archive_url", archiveURL)
		return &Result{
			URL:         rawURL,
			ArchiveURL:  archiveURL,
			ArchiveDate: parseSnapshotTimestamp(timestampFromArchiveURL(archiveURL)),
		}, nil
	}

	// The save endpoint sometimes redirects straight to the snapshot
	if final := resp.Request.URL.String(); strings.Contains(final, "/web/") {
		slog.Info("URL archived", "url", rawURL, "archive_url", final)
		return &Result{
			URL:         rawURL,
			ArchiveURL:  final,
			ArchiveDate: parseSnapshotTimestamp(timestampFromArchiveURL(final)),
		}, nil
	}

	// Otherwise the capture is asynchronous; wait for it to materialize
	return c.awaitCapture(ctx, rawURL)
}

// awaitCapture polls the availability API until the pending capture shows
// up. The poll budget reuses the retry settings as its bounded ceiling.
func (c *Client) awaitCapture(ctx context.Context, rawURL string) (*Result, error) {
	for poll := 0; poll <= c.maxRetries; poll++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("capture wait cancelled: %w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(c.retryDelay):
		}

		result, err := c.Lookup(ctx, rawURL)
		if err != nil {
			continue
		}
		if result != nil {
			result.AlreadyArchived = false // this run initiated the capture
			slog.Info("URL archived", "url", rawURL, "archive_url", result.ArchiveURL)
			return result, nil
		}
	}

	return nil, fmt.Errorf("capture of %s did not complete in time: %w", rawURL, ErrUnavailable)
}

// timestampFromArchiveURL extracts the 14-digit timestamp from a snapshot
// URL of the form .../web/20200101000000/http://example.com
func timestampFromArchiveURL(archiveURL string) string {
	_, after, found := strings.Cut(archiveURL, "/web/")
	if !found {
		return ""
	}
	ts, _, _ := strings.Cut(after, "/")
	return ts
}

// parseSnapshotTimestamp converts a snapshot timestamp to a time. An
// unparsable timestamp falls back to the current time so the archive-date
// invariant still holds.
func parseSnapshotTimestamp(ts string) time.Time {
	parsed, err := time.Parse(snapshotTimestampLayout, ts)
	if err != nil {
		return time.Now().UTC()
	}
	return parsed
}
