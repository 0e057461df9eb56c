package blob

import "time"

// DefaultChunkSize is the upload chunk size used when a config does not set
// one. Note that S3-compatible providers reject multipart parts smaller than
// 5 MiB (except the final part), so deployments that expect staged uploads
// should raise ChunkSize accordingly.
const DefaultChunkSize = 4 * 1024 * 1024

// Metadata describes a stored blob. UserMetadata keys are normalized to
// lowercase so lookups behave the same across backends.
type Metadata struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
	UserMetadata map[string]string
}

// ProgressFunc is called after each transferred chunk with the running byte
// count, the payload total and a short label for the chunk.
type ProgressFunc func(current, total int64, label string)

// UploadConfig controls a single upload operation.
type UploadConfig struct {
	// ChunkSize is the staged-upload block size and the threshold below
	// which payloads go up in a single request.
	ChunkSize int64
	// Overwrite allows replacing an existing blob. When false, uploads to
	// an existing name fail with ErrAlreadyExists before any transfer.
	Overwrite bool
	// ContentType is applied to the stored object. Empty means the caller
	// (or backend) decides.
	ContentType string
	// Metadata is attached to the object as user metadata.
	Metadata map[string]string
	// Progress, when set, receives per-chunk progress during staged uploads.
	Progress ProgressFunc
}

// NewUploadConfig returns the default configuration: 4 MiB chunks and
// overwrite enabled.
func NewUploadConfig() *UploadConfig {
	return &UploadConfig{
		ChunkSize: DefaultChunkSize,
		Overwrite: true,
	}
}

func orUnknown(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	return contentType
}
