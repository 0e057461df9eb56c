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

	"github.com/rs/zerolog"

	"github.com/savramidis/news-ingestion-api/internal/article"
	"github.com/savramidis/news-ingestion-api/internal/config"
)

var newsRequired = []string{
	"NEWS_API_KEY",
	"BLOB_STORAGE_CONTAINER_NAME",
}

// EverythingParams are the recognized filters of the everything endpoint.
// Zero values are omitted from the request.
type EverythingParams struct {
	Query          string
	SearchIn       string
	Sources        string
	Domains        string
	ExcludeDomains string
	From           string
	To             string
	Language       string
	SortBy         string
	PageSize       int
	Page           int
}

// Everything is the provider's result envelope, returned to API callers
// unchanged.
type Everything struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []NewsArticle `json:"articles"`
}

// NewsArticle is one entry of the everything envelope.
type NewsArticle struct {
	Source      NewsSource `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt string     `json:"publishedAt"`
	Content     string     `json:"content"`
}

// NewsSource identifies the outlet an article came from.
type NewsSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewsClient is a minimal HTTP client for the news-aggregation API.
type NewsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewNewsClient creates a NewsClient for the given base URL. A nil client
// falls back to a default with a 30 second timeout.
func NewNewsClient(baseURL, apiKey string, client *http.Client, logger zerolog.Logger) *NewsClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &NewsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// Everything queries /v2/everything with the given filters.
func (c *NewsClient) Everything(ctx context.Context, params EverythingParams) (*Everything, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("news api base URL is not configured")
	}

	q := url.Values{}
	q.Set("q", params.Query)
	setIfPresent(q, "searchIn", params.SearchIn)
	setIfPresent(q, "sources", params.Sources)
	setIfPresent(q, "domains", params.Domains)
	setIfPresent(q, "excludeDomains", params.ExcludeDomains)
	setIfPresent(q, "from", params.From)
	setIfPresent(q, "to", params.To)
	setIfPresent(q, "language", params.Language)
	setIfPresent(q, "sortBy", params.SortBy)
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}

	endpoint := c.baseURL + "/v2/everything?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build news api request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe struct {
			Status  string `json:"status"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&pe); err == nil && pe.Code != "" {
			return nil, fmt.Errorf("news api: %s: %s", pe.Code, pe.Message)
		}
		return nil, fmt.Errorf("news api returned status %d", resp.StatusCode)
	}

	var envelope Everything
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode news api response: %w", err)
	}

	c.logger.Debug().
		Str("query", params.Query).
		Int("total", envelope.TotalResults).
		Msg("news api query completed")
	return &envelope, nil
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// NewsAPIService queries the news-aggregation API and ingests the text of
// every returned article.
type NewsAPIService struct {
	cfg      *config.Config
	provider NewsProvider
	ingestor Ingestor
	logger   zerolog.Logger
}

// NewNewsAPIService creates a NewsAPIService.
func NewNewsAPIService(cfg *config.Config, provider NewsProvider, ingestor Ingestor, logger zerolog.Logger) *NewsAPIService {
	return &NewsAPIService{cfg: cfg, provider: provider, ingestor: ingestor, logger: logger}
}

// Search runs the query against the provider, stores the text of every
// result URL, and returns the provider's envelope untouched.
func (s *NewsAPIService) Search(ctx context.Context, params EverythingParams) (*Everything, error) {
	if err := s.cfg.Require(newsRequired...); err != nil {
		return nil, err
	}

	news, err := s.provider.Everything(ctx, params)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(news.Articles))
	for _, a := range news.Articles {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	if len(urls) > 0 {
		outcomes := s.ingestor.Process(ctx, urls)
		s.logger.Info().
			Int("results", len(urls)).
			Int("stored", len(article.Stored(outcomes))).
			Msg("ingested news articles")
	}
	return news, nil
}
