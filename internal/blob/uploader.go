package blob

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
)

// BlockID returns the base64 identifier for block n. The zero-padded decimal
// keeps lexical order identical to upload order.
func BlockID(n int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("block-%08d", n)))
}

// ChunkedUploader transfers byte payloads to a Backend, picking the upload
// strategy by size: payloads up to the chunk size go up in a single request,
// larger ones are staged block by block and committed as one object, so a
// reader never observes a partially written blob.
type ChunkedUploader struct {
	backend Backend
	logger  zerolog.Logger
}

// NewChunkedUploader returns an uploader writing through backend.
func NewChunkedUploader(backend Backend, logger zerolog.Logger) *ChunkedUploader {
	return &ChunkedUploader{backend: backend, logger: logger}
}

// Upload stores data under name according to cfg. A nil cfg means defaults
// (4 MiB chunks, overwrite allowed). There are no retries: any staging or
// commit failure aborts the staged upload and is returned to the caller.
func (u *ChunkedUploader) Upload(ctx context.Context, name string, data []byte, cfg *UploadConfig) error {
	if cfg == nil {
		cfg = NewUploadConfig()
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	opts := PutOptions{ContentType: cfg.ContentType, Metadata: cfg.Metadata}
	total := int64(len(data))

	if total <= chunkSize {
		if err := u.backend.Put(ctx, name, data, opts); err != nil {
			return fmt.Errorf("upload %q: %w", name, err)
		}
		u.logger.Info().Str("blob", name).Int64("bytes", total).Msg("completed simple upload")
		return nil
	}

	return u.stagedUpload(ctx, name, data, chunkSize, opts, cfg.Progress)
}

func (u *ChunkedUploader) stagedUpload(ctx context.Context, name string, data []byte, chunkSize int64, opts PutOptions, progress ProgressFunc) error {
	total := int64(len(data))
	u.logger.Info().Str("blob", name).Int64("bytes", total).Msg("starting staged upload")

	upload, err := u.backend.NewBlockUpload(ctx, name, opts)
	if err != nil {
		return fmt.Errorf("begin staged upload %q: %w", name, err)
	}

	var blockIDs []string
	for offset := int64(0); offset < total; offset += chunkSize {
		end := offset + chunkSize
		if end > total {
			end = total
		}

		id := BlockID(len(blockIDs))
		if err := upload.Stage(ctx, id, data[offset:end]); err != nil {
			u.abort(ctx, upload, name)
			return fmt.Errorf("stage block %d of %q: %w", len(blockIDs), name, err)
		}
		blockIDs = append(blockIDs, id)

		if progress != nil {
			progress(end, total, fmt.Sprintf("Chunk %d", len(blockIDs)))
		}
		u.logger.Debug().
			Str("blob", name).
			Int("chunk", len(blockIDs)).
			Float64("pct", float64(end)/float64(total)*100).
			Msg("uploaded chunk")
	}

	if err := upload.Commit(ctx, blockIDs); err != nil {
		u.abort(ctx, upload, name)
		return fmt.Errorf("commit %d blocks of %q: %w", len(blockIDs), name, err)
	}

	u.logger.Info().Str("blob", name).Int("chunks", len(blockIDs)).Msg("completed staged upload")
	return nil
}

// abort runs without the caller's cancellation so a timed-out upload still
// gets its staged blocks cleaned up.
func (u *ChunkedUploader) abort(ctx context.Context, upload BlockUpload, name string) {
	if err := upload.Abort(context.WithoutCancel(ctx)); err != nil {
		u.logger.Warn().Err(err).Str("blob", name).Msg("failed to abort staged upload")
	}
}
