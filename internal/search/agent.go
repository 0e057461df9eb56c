package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/savramidis/news-ingestion-api/internal/agent"
	"github.com/savramidis/news-ingestion-api/internal/article"
	"github.com/savramidis/news-ingestion-api/internal/config"
)

var agentRequired = []string{
	"AI_FOUNDRY_PROJECT_ENDPOINT",
	"BING_CONNECTION_NAME",
	"BLOB_STORAGE_CONTAINER_NAME",
}

// AgentService answers queries through the grounding agent and ingests the
// articles the answer cites.
type AgentService struct {
	cfg      *config.Config
	agent    Grounder
	ingestor Ingestor
	logger   zerolog.Logger
}

// NewAgentService creates an AgentService.
func NewAgentService(cfg *config.Config, grounder Grounder, ingestor Ingestor, logger zerolog.Logger) *AgentService {
	return &AgentService{cfg: cfg, agent: grounder, ingestor: ingestor, logger: logger}
}

// Search runs the query through the agent, stores the text of every cited
// article, and returns the agent's answer with its citations.
func (s *AgentService) Search(ctx context.Context, query string) (*agent.Result, error) {
	if err := s.cfg.Require(agentRequired...); err != nil {
		return nil, err
	}

	result, err := s.agent.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("agent search: %w", err)
	}

	if len(result.Citations) > 0 {
		outcomes := s.ingestor.Process(ctx, result.Citations)
		s.logger.Info().
			Int("citations", len(result.Citations)).
			Int("stored", len(article.Stored(outcomes))).
			Msg("ingested cited articles")
	}
	return result, nil
}
