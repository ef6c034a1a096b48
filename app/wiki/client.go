package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"
)

// Client is the page source and page sink: it fetches recently changed
// page titles, fetches page source, and saves edits through the wiki's
// REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	feedParser *gofeed.Parser
}

// NewClient creates a new wiki client
func NewClient(httpClient *http.Client, baseURL, token, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		userAgent:  userAgent,
		feedParser: gofeed.NewParser(),
	}
}

func (c *Client) restAPI() string {
	return c.baseURL + "/w/rest.php/v1"
}

func (c *Client) actionAPI() string {
	return c.baseURL + "/w/api.php"
}

// pageEndpoint builds the REST endpoint for a page. Titles are stored
// NFC-normalized by the wiki, and `/` is a path delimiter that needs to
// travel as a path argument, so the title is escaped as a single segment.
func (c *Client) pageEndpoint(title string) string {
	return c.restAPI() + "/page/" + url.PathEscape(norm.NFC.String(title))
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
}

// RecentlyChanged returns the titles of main-namespace pages edited by
// humans within the window, in feed order, deduplicated. The wiki exposes
// recent changes as an Atom feed.
func (c *Client) RecentlyChanged(ctx context.Context, windowHours int) ([]string, error) {
	days := (windowHours + 23) / 24
	if days < 1 {
		days = 1
	}

	params := url.Values{}
	params.Set("action", "feedrecentchanges")
	params.Set("feedformat", "atom")
	params.Set("namespace", "0")
	params.Set("hidebots", "1")
	params.Set("days", strconv.Itoa(days))
	params.Set("limit", "500")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.actionAPI()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recent-changes request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent changes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recent changes returned HTTP %d", resp.StatusCode)
	}

	feed, err := c.feedParser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recent-changes feed: %w", err)
	}

	seen := map[string]bool{}
	var titles []string
	for _, item := range feed.Items {
		if item.Title == "" || seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		titles = append(titles, item.Title)
	}

	slog.Info("Recent changes fetched", "window_hours", windowHours, "pages", len(titles))
	return titles, nil
}

// FetchPage fetches the current wikitext of a page along with the latest
// revision id needed to guard a later save.
func (c *Client) FetchPage(ctx context.Context, title string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageEndpoint(title), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create page request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("page %q: %w", title, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch for %q returned HTTP %d", title, resp.StatusCode)
	}

	var payload pagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode page %q: %w", title, err)
	}

	return &Page{
		Title:    title,
		Source:   payload.Source,
		LatestID: payload.Latest.ID,
	}, nil
}

// SavePage saves new wikitext over the fetched revision. A concurrent edit
// since the fetch surfaces as ErrConflict; the caller reports and moves on,
// it is never retried here.
func (c *Client) SavePage(ctx context.Context, page *Page, newText, summary string) (int64, error) {
	var payload editPayload
	payload.Source = newText
	payload.Comment = summary
	payload.Latest.ID = page.LatestID

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode edit payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.pageEndpoint(page.Title), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create edit request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to save page %q: %w", page.Title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return 0, fmt.Errorf("page %q: %w", page.Title, ErrConflict)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("page save for %q returned HTTP %d", page.Title, resp.StatusCode)
	}

	var saved pagePayload
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return 0, fmt.Errorf("failed to decode edit response for %q: %w", page.Title, err)
	}

	slog.Info("Page saved", "title", page.Title, "revision", saved.Latest.ID)
	return saved.Latest.ID, nil
}
