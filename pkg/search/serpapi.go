package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// DefaultQuery is substituted when the caller's query is blank or
// whitespace-only.
const DefaultQuery = "Bitcoin BTC market price trading news today"

// NoResults is the sentinel returned when the provider answers successfully
// but has nothing from the recency window. Distinguishable from both an
// error-marked string and a populated article block.
const NoResults = "No recent articles found. Try adjusting the search query or check if there are any articles from the past 24 hours."

// errorPrefixes mark FormattedSearch results that represent a failed call
// rather than article content.
var errorPrefixes = []string{"SerpAPI Error:", "Error searching:"}

// Article is one normalized news result.
type Article struct {
	Title   string
	Source  string
	Date    string
	Snippet string
	Link    string
}

// Client queries SerpAPI's Google News engine. Results are news-only,
// filtered to the past day, and capped at maxResults.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithMaxResults sets the result cap.
func WithMaxResults(max int) Option {
	return func(c *Client) {
		c.maxResults = max
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a SerpAPI news client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxResults: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serpResponse is the slice of the SerpAPI payload we consume.
type serpResponse struct {
	Error       string `json:"error,omitempty"`
	NewsResults []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Date    string `json:"date"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"news_results,omitempty"`
}

// Search queries Google News for articles from the past 24 hours. A blank
// query falls back to DefaultQuery. A provider-level error payload is
// returned as an error; an empty result set is a nil slice with nil error.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("SERPAPI_API_KEY not configured")
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.maxResults))
	params.Set("tbm", "nws")    // news search
	params.Set("tbs", "qdr:d")  // past day

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Error != "" {
		return nil, fmt.Errorf("SerpAPI Error: %s", payload.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI Error: status %d", resp.StatusCode)
	}

	articles := make([]Article, 0, c.maxResults)
	for _, item := range payload.NewsResults {
		if len(articles) == c.maxResults {
			break
		}
		articles = append(articles, Article{
			Title:   item.Title,
			Source:  item.Source,
			Date:    item.Date,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return articles, nil
}

// FormattedSearch returns the articles as a flat text block and never
// returns an error: provider failures come back as an error-marked string
// and an empty result set as the NoResults sentinel. Downstream stages
// consume whichever string they get as content.
func (c *Client) FormattedSearch(ctx context.Context, query string) string {
	articles, err := c.Search(ctx, query)
	if err != nil {
		if strings.HasPrefix(err.Error(), "SerpAPI Error:") {
			return err.Error()
		}
		return fmt.Sprintf("Error searching: %s", err)
	}
	if len(articles) == 0 {
		return NoResults
	}
	return FormatArticles(articles)
}

// FormatArticles renders articles as the flat block fed to the search stage.
func FormatArticles(articles []Article) string {
	var sb strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&sb, "Title: %s\n", orNA(a.Title))
		fmt.Fprintf(&sb, "Source: %s\n", orNA(a.Source))
		fmt.Fprintf(&sb, "Date: %s\n", orNA(a.Date))
		fmt.Fprintf(&sb, "Snippet: %s\n", orNA(a.Snippet))
		if a.Link != "" {
			fmt.Fprintf(&sb, "Link: %s\n", a.Link)
		}
		sb.WriteString("\n---\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// IsErrorResult reports whether a FormattedSearch result marks a failed
// call rather than article content.
func IsErrorResult(s string) bool {
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
