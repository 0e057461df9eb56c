// Package agent drives a grounding AI agent: an assistant with a web_search
// tool whose calls are executed against a configured search connection. Each
// query runs in a throwaway thread that is deleted, together with the
// assistant, once the answer is read.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SearchResult is one hit returned by the search connection.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Connection is a named web search endpoint. The wire format follows
// SearxNG-compatible JSON APIs: GET <base>/search?q=...&format=json.
type Connection struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewConnection returns a search connection called name against baseURL.
// A nil client gets a 10 second timeout default.
func NewConnection(name, baseURL, apiKey string, client *http.Client, logger zerolog.Logger) *Connection {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Connection{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// Name returns the connection's configured name.
func (c *Connection) Name() string { return c.name }

// Search runs query against the connection and returns up to limit results.
func (c *Connection) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("search connection %q has no endpoint", c.name)
	}
	if limit <= 0 {
		limit = 10
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("search connection %q: %w", c.name, err)
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("count", strconv.Itoa(limit))
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search connection %q: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search connection %q: unexpected status %d", c.name, resp.StatusCode)
	}

	var decoded struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("search connection %q: decode response: %w", c.name, err)
	}

	results := make([]SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Snippet: strings.TrimSpace(r.Content),
		})
		if len(results) >= limit {
			break
		}
	}

	c.logger.Debug().Str("connection", c.name).Str("query", query).Int("results", len(results)).Msg("web search")
	return results, nil
}
