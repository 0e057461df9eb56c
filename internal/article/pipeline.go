package article

import (
	"context"

	"github.com/rs/zerolog"
)

// Pipeline runs the extract-then-store flow over a batch of URLs, one item
// at a time. A failure on any single URL is recorded in its Outcome and the
// batch moves on; already-stored articles are never rolled back.
type Pipeline struct {
	extractor *Extractor
	storage   *StorageManager
	logger    zerolog.Logger
}

// NewPipeline wires an extractor and a storage manager together.
func NewPipeline(extractor *Extractor, storage *StorageManager, logger zerolog.Logger) *Pipeline {
	return &Pipeline{extractor: extractor, storage: storage, logger: logger}
}

// Process extracts and stores every URL sequentially. It never returns an
// error: per-item failures live in the returned outcomes.
func (p *Pipeline) Process(ctx context.Context, urls []string) []Outcome {
	p.logger.Info().Int("urls", len(urls)).Msg("processing articles")

	articles := make([]Outcome, 0, len(urls))
	for _, u := range urls {
		data, err := p.extractor.Extract(ctx, u)
		if err != nil {
			p.logger.Error().Err(err).Str("url", u).Msg("failed to extract article")
			articles = append(articles, Outcome{URL: u, Err: err})
			continue
		}
		articles = append(articles, Outcome{URL: u, Article: data})
	}

	stored := 0
	for i := range articles {
		if articles[i].Err != nil {
			continue
		}
		name, err := p.storage.Store(ctx, articles[i].Article)
		if err != nil {
			p.logger.Error().Err(err).Str("url", articles[i].URL).Msg("failed to store article")
			articles[i].Err = err
			continue
		}
		articles[i].Blob = name
		stored++
	}

	p.logger.Info().Int("stored", stored).Int("failed", len(articles)-stored).Msg("finished processing articles")
	return articles
}
