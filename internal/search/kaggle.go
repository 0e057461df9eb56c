package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/savramidis/news-ingestion-api/internal/article"
	"github.com/savramidis/news-ingestion-api/internal/config"
)

var kaggleRequired = []string{
	"BLOB_STORAGE_CONTAINER_NAME",
}

// KaggleService ingests the articles referenced by the local Kaggle news
// dataset, a JSON array of objects carrying a "link" field.
type KaggleService struct {
	cfg      *config.Config
	path     string
	ingestor Ingestor
	logger   zerolog.Logger
}

// NewKaggleService creates a KaggleService reading the dataset at path.
func NewKaggleService(cfg *config.Config, path string, ingestor Ingestor, logger zerolog.Logger) *KaggleService {
	return &KaggleService{cfg: cfg, path: path, ingestor: ingestor, logger: logger}
}

// Ingest reads the dataset, extracts every entry's link and stores the
// article text. It returns the articles that made it into storage.
func (s *KaggleService) Ingest(ctx context.Context) ([]*article.Data, error) {
	if err := s.cfg.Require(kaggleRequired...); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("dataset file not found: %s", s.path)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var entries []struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", s.path, err)
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Link != "" {
			urls = append(urls, e.Link)
		}
	}
	s.logger.Info().
		Str("path", s.path).
		Int("entries", len(entries)).
		Int("links", len(urls)).
		Msg("loaded dataset")

	outcomes := s.ingestor.Process(ctx, urls)
	return article.Stored(outcomes), nil
}
