// Package search implements the three search providers behind the HTTP API:
// the grounding AI agent, the news-aggregation API and the local Kaggle
// dataset. Each service resolves result URLs and hands them to the article
// pipeline, which extracts the text and persists it to blob storage.
package search

import (
	"context"

	"github.com/savramidis/news-ingestion-api/internal/agent"
	"github.com/savramidis/news-ingestion-api/internal/article"
)

// Grounder produces a grounded answer with citation URLs for a query.
type Grounder interface {
	Search(ctx context.Context, query string) (*agent.Result, error)
}

// NewsProvider queries the news-aggregation API's everything endpoint.
type NewsProvider interface {
	Everything(ctx context.Context, params EverythingParams) (*Everything, error)
}

// Ingestor turns result URLs into stored article text.
type Ingestor interface {
	Process(ctx context.Context, urls []string) []article.Outcome
}
