package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// controlChars matches the C0 controls other than tab, newline and carriage
// return, plus DEL and the C1 range. They are stripped from text uploads.
var controlChars = regexp.MustCompile(`[\x{0000}-\x{0008}\x{000b}\x{000c}\x{000e}-\x{001f}\x{007f}-\x{009f}]`)

// ServiceClient provides named-blob operations over a single container:
// uploads routed through ChunkedUploader, downloads, listing, deletion and
// metadata reads.
type ServiceClient struct {
	backend   Backend
	container string
	chunkSize int64
	uploader  *ChunkedUploader
	logger    zerolog.Logger
}

// NewServiceClient validates opts, connects the configured driver and makes
// sure the container exists. It fails with ErrInvalidConfig when neither an
// account URL nor a connection string is provided.
func NewServiceClient(ctx context.Context, opts Options, logger zerolog.Logger) (*ServiceClient, error) {
	backend, err := newBackend(ctx, opts)
	if err != nil {
		return nil, err
	}

	client := NewServiceClientWithBackend(backend, opts.Container, logger)
	client.chunkSize = opts.ChunkSize
	if err := client.EnsureContainer(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// NewServiceClientWithBackend wires a client over an already-built backend.
// No container check is performed; callers do that themselves when needed.
func NewServiceClientWithBackend(backend Backend, container string, logger zerolog.Logger) *ServiceClient {
	return &ServiceClient{
		backend:   backend,
		container: container,
		uploader:  NewChunkedUploader(backend, logger),
		logger:    logger,
	}
}

func newBackend(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverMinio:
		return NewMinioBackend(opts)
	case DriverS3:
		return NewS3Backend(ctx, opts)
	case DriverMemory:
		if opts.Container == "" {
			return nil, fmt.Errorf("%w: container name is required", ErrInvalidConfig)
		}
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, opts.Driver)
	}
}

// Container returns the container name the client operates on.
func (c *ServiceClient) Container() string {
	return c.container
}

// EnsureContainer creates the container when missing. Both outcomes count as
// success.
func (c *ServiceClient) EnsureContainer(ctx context.Context) error {
	if err := c.backend.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure container %q: %w", c.container, err)
	}
	return nil
}

// UploadText stores text under name. Control characters are stripped and the
// payload is forced to valid UTF-8 with replacement runes, so the upload
// never fails on encoding. The content type defaults to
// "text/plain; charset=utf-8".
func (c *ServiceClient) UploadText(ctx context.Context, name, text string, cfg *UploadConfig) error {
	cfg = c.effectiveConfig(cfg)
	if cfg.ContentType == "" {
		cfg.ContentType = "text/plain; charset=utf-8"
	}
	return c.uploadBytes(ctx, name, []byte(safeText(text)), cfg)
}

// UploadFile stores the file at path under name, reading it fully into
// memory. A missing file fails with ErrNotFound. The content type is
// detected from the extension when the config does not set one.
func (c *ServiceClient) UploadFile(ctx context.Context, name, path string, cfg *UploadConfig) error {
	cfg = c.effectiveConfig(cfg)
	if cfg.ContentType == "" {
		cfg.ContentType = DetectContentType(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %q: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read file %q: %w", path, err)
	}
	return c.uploadBytes(ctx, name, data, cfg)
}

// UploadBytes stores raw bytes under name.
func (c *ServiceClient) UploadBytes(ctx context.Context, name string, data []byte, cfg *UploadConfig) error {
	return c.uploadBytes(ctx, name, data, c.effectiveConfig(cfg))
}

func (c *ServiceClient) uploadBytes(ctx context.Context, name string, data []byte, cfg *UploadConfig) error {
	if name == "" {
		return ErrEmptyName
	}
	if !cfg.Overwrite {
		exists, err := c.Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("overwrite check for %q: %w", name, err)
		}
		if exists {
			return fmt.Errorf("blob %q: %w", name, ErrAlreadyExists)
		}
	}
	return c.uploader.Upload(ctx, name, data, cfg)
}

// effectiveConfig copies cfg so per-call defaults never mutate the caller's
// struct. A nil cfg yields the client defaults.
func (c *ServiceClient) effectiveConfig(cfg *UploadConfig) *UploadConfig {
	out := NewUploadConfig()
	if cfg != nil {
		*out = *cfg
	}
	if out.ChunkSize <= 0 {
		out.ChunkSize = c.chunkSize
	}
	if out.ChunkSize <= 0 {
		out.ChunkSize = DefaultChunkSize
	}
	return out
}

// DownloadBytes fetches the full content of name.
func (c *ServiceClient) DownloadBytes(ctx context.Context, name string) ([]byte, error) {
	data, err := c.backend.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("download %q: %w", name, err)
	}
	return data, nil
}

// DownloadText fetches name and decodes it using the IANA encoding name
// given; empty means UTF-8. Content that is not valid under the requested
// encoding fails with ErrDecode.
func (c *ServiceClient) DownloadText(ctx context.Context, name, encodingName string) (string, error) {
	data, err := c.DownloadBytes(ctx, name)
	if err != nil {
		return "", err
	}
	return decodeText(data, encodingName)
}

func decodeText(data []byte, encodingName string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(encodingName))
	if normalized == "" || normalized == "utf-8" || normalized == "utf8" {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: content is not valid UTF-8", ErrDecode)
		}
		return string(data), nil
	}

	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return "", fmt.Errorf("%w: unknown encoding %q", ErrDecode, encodingName)
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: content is not valid UTF-8", ErrDecode)
		}
		return string(data), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return string(decoded), nil
}

// List returns the names of blobs starting with prefix.
func (c *ServiceClient) List(ctx context.Context, prefix string) ([]string, error) {
	metas, err := c.backend.List(ctx, prefix, false)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	names := make([]string, len(metas))
	for i, meta := range metas {
		names[i] = meta.Name
	}
	return names, nil
}

// ListWithMetadata returns full metadata snapshots for blobs starting with
// prefix.
func (c *ServiceClient) ListWithMetadata(ctx context.Context, prefix string) ([]Metadata, error) {
	metas, err := c.backend.List(ctx, prefix, true)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return metas, nil
}

// Delete removes name. With mustExist, deleting a missing blob fails with
// ErrNotFound; otherwise it reports false with no error.
func (c *ServiceClient) Delete(ctx context.Context, name string, mustExist bool) (bool, error) {
	err := c.backend.Delete(ctx, name)
	if err == nil {
		c.logger.Info().Str("blob", name).Msg("deleted blob")
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		if mustExist {
			return false, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		c.logger.Debug().Str("blob", name).Msg("blob did not exist")
		return false, nil
	}
	return false, fmt.Errorf("delete %q: %w", name, err)
}

// GetMetadata returns the metadata snapshot of name.
func (c *ServiceClient) GetMetadata(ctx context.Context, name string) (*Metadata, error) {
	meta, err := c.backend.Stat(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	return meta, nil
}

// Exists reports whether name is present. A backend failure is returned as
// an error, distinct from a confirmed absence.
func (c *ServiceClient) Exists(ctx context.Context, name string) (bool, error) {
	_, err := c.backend.Stat(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", name, err)
	}
}

// safeText drops disallowed control characters and replaces invalid UTF-8
// sequences so the result is always storable as plain text.
func safeText(text string) string {
	valid := strings.ToValidUTF8(text, string(utf8.RuneError))
	return controlChars.ReplaceAllString(valid, "")
}
