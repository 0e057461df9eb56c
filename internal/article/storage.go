package article

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/savramidis/news-ingestion-api/internal/blob"
)

// Metadata keys attached to every stored article.
const (
	MetaKeyURL   = "article_url"
	MetaKeyTitle = "article_title"
)

// defaultChunkSize for article uploads. Articles are small, so 1 MiB keeps
// nearly all of them on the single-shot path.
const defaultChunkSize = 1024 * 1024

// StorageManager uploads extracted articles as text blobs.
type StorageManager struct {
	client    *blob.ServiceClient
	chunkSize int64
	logger    zerolog.Logger
}

// NewStorageManager returns a manager writing through client. A chunkSize of
// zero or less means the 1 MiB default.
func NewStorageManager(client *blob.ServiceClient, chunkSize int64, logger zerolog.Logger) *StorageManager {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &StorageManager{client: client, chunkSize: chunkSize, logger: logger}
}

// Store uploads one article under a fresh unique name and returns that name.
// The source URL and an ASCII-reduced title travel as blob metadata.
func (m *StorageManager) Store(ctx context.Context, art *Data) (string, error) {
	name := uniqueArticleName()
	cfg := &blob.UploadConfig{
		ChunkSize: m.chunkSize,
		Overwrite: true,
		Metadata: map[string]string{
			MetaKeyURL:   art.URL,
			MetaKeyTitle: asciiOnly(art.Title),
		},
	}

	if err := m.client.UploadText(ctx, name, art.Text, cfg); err != nil {
		return "", fmt.Errorf("store article %q: %w", art.URL, err)
	}
	m.logger.Info().Str("blob", name).Str("title", art.Title).Msg("uploaded article")
	return name, nil
}

// uniqueArticleName formats a random 128-bit identifier as article_<hex>.txt.
func uniqueArticleName() string {
	id := uuid.New()
	return fmt.Sprintf("article_%s.txt", hex.EncodeToString(id[:]))
}

// asciiOnly drops every rune outside the ASCII range; metadata values travel
// as HTTP headers and cannot carry arbitrary unicode.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return -1
		}
		return r
	}, s)
}
