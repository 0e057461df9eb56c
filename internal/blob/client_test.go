package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *ServiceClient {
	t.Helper()
	return NewServiceClientWithBackend(NewMemoryBackend(), "test-container", zerolog.Nop())
}

func TestNewServiceClient_MemoryDriver(t *testing.T) {
	client, err := NewServiceClient(context.Background(), Options{
		Driver:    DriverMemory,
		Container: "articles",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "articles", client.Container())
}

func TestNewServiceClient_MemoryDriverNeedsContainer(t *testing.T) {
	_, err := NewServiceClient(context.Background(), Options{Driver: DriverMemory}, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewServiceClient_UnknownDriver(t *testing.T) {
	_, err := NewServiceClient(context.Background(), Options{
		Driver:    "ftp",
		Container: "articles",
	}, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "ftp")
}

func TestUploadText_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "note.txt", "hello world", nil))

	text, err := client.DownloadText(ctx, "note.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	meta, err := client.GetMetadata(ctx, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", meta.ContentType)
}

func TestUploadText_StripsControlCharacters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "ctl.txt", "a\x00b\x1fc\ttab\nline\rret", nil))

	text, err := client.DownloadText(ctx, "ctl.txt", "")
	require.NoError(t, err)
	// Tab, newline and carriage return survive; other controls are dropped.
	assert.Equal(t, "abc\ttab\nline\rret", text)
}

func TestUploadText_ReplacesInvalidUTF8(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "bad.txt", "ok\xffend", nil))

	text, err := client.DownloadText(ctx, "bad.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "ok�end", text)
}

func TestUploadText_DoesNotMutateCallerConfig(t *testing.T) {
	client := newTestClient(t)
	cfg := &UploadConfig{Overwrite: true}

	require.NoError(t, client.UploadText(context.Background(), "cfg.txt", "x", cfg))
	assert.Empty(t, cfg.ContentType)
	assert.Zero(t, cfg.ChunkSize)
}

func TestUploadBytes_EmptyName(t *testing.T) {
	client := newTestClient(t)
	err := client.UploadBytes(context.Background(), "", []byte("x"), nil)
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestUpload_OverwriteConflictKeepsOriginal(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "once.txt", "original", nil))

	cfg := NewUploadConfig()
	cfg.Overwrite = false
	err := client.UploadText(ctx, "once.txt", "replacement", cfg)
	require.ErrorIs(t, err, ErrAlreadyExists)

	text, err := client.DownloadText(ctx, "once.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "original", text)
}

func TestUpload_NoOverwriteSucceedsWhenAbsent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	cfg := NewUploadConfig()
	cfg.Overwrite = false
	require.NoError(t, client.UploadText(ctx, "fresh.txt", "first", cfg))

	text, err := client.DownloadText(ctx, "fresh.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	require.NoError(t, client.UploadFile(ctx, "dataset.csv", path, nil))

	data, err := client.DownloadBytes(ctx, "dataset.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b\n1,2\n"), data)

	meta, err := client.GetMetadata(ctx, "dataset.csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", meta.ContentType)
}

func TestUploadFile_Missing(t *testing.T) {
	client := newTestClient(t)
	err := client.UploadFile(context.Background(), "x", filepath.Join(t.TempDir(), "absent.txt"), nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadBytes_Missing(t *testing.T) {
	client := newTestClient(t)
	_, err := client.DownloadBytes(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadText_Encodings(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// "café" in Latin-1: the é is a single 0xE9 byte, invalid as UTF-8.
	latin1 := []byte{'c', 'a', 'f', 0xE9}
	require.NoError(t, client.UploadBytes(ctx, "latin1.txt", latin1, nil))

	_, err := client.DownloadText(ctx, "latin1.txt", "")
	require.ErrorIs(t, err, ErrDecode)

	text, err := client.DownloadText(ctx, "latin1.txt", "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", text)

	_, err = client.DownloadText(ctx, "latin1.txt", "no-such-encoding")
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     string
		wantErr  bool
	}{
		{name: "default utf8", data: []byte("plain"), encoding: "", want: "plain"},
		{name: "explicit utf-8", data: []byte("plain"), encoding: "utf-8", want: "plain"},
		{name: "case and spacing ignored", data: []byte("plain"), encoding: " UTF-8 ", want: "plain"},
		{name: "invalid utf8 rejected", data: []byte{0xff, 0xfe}, encoding: "utf-8", wantErr: true},
		{name: "latin1 decodes every byte", data: []byte{0xE9}, encoding: "latin1", want: "é"},
		{name: "unknown encoding", data: []byte("x"), encoding: "klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText(tt.data, tt.encoding)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDecode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "article_1.txt", "one", nil))
	require.NoError(t, client.UploadText(ctx, "article_2.txt", "two", nil))
	require.NoError(t, client.UploadText(ctx, "misc.txt", "x", nil))

	names, err := client.List(ctx, "article_")
	require.NoError(t, err)
	assert.Equal(t, []string{"article_1.txt", "article_2.txt"}, names)

	all, err := client.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListWithMetadata(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	cfg := NewUploadConfig()
	cfg.Metadata = map[string]string{"Article_URL": "https://example.com/x"}
	require.NoError(t, client.UploadText(ctx, "article_1.txt", "one", cfg))

	metas, err := client.ListWithMetadata(ctx, "article_")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "article_1.txt", metas[0].Name)
	assert.Equal(t, "https://example.com/x", metas[0].UserMetadata["article_url"])
}

func TestDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "gone.txt", "x", nil))

	deleted, err := client.Delete(ctx, "gone.txt", true)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Absent, mustExist=false: no error, reports false.
	deleted, err = client.Delete(ctx, "gone.txt", false)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Absent, mustExist=true: ErrNotFound.
	_, err = client.Delete(ctx, "gone.txt", true)
	require.ErrorIs(t, err, ErrNotFound)
}

type failingStatBackend struct {
	*MemoryBackend
}

func (b *failingStatBackend) Stat(context.Context, string) (*Metadata, error) {
	return nil, errors.New("backend offline")
}

func TestExists(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	exists, err := client.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.UploadText(ctx, "yes.txt", "x", nil))
	exists, err = client.Exists(ctx, "yes.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExists_BackendFailureIsNotAbsence(t *testing.T) {
	backend := &failingStatBackend{MemoryBackend: NewMemoryBackend()}
	client := NewServiceClientWithBackend(backend, "c", zerolog.Nop())

	_, err := client.Exists(context.Background(), "any")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend offline")
}

func TestSafeText(t *testing.T) {
	assert.Equal(t, "ab", safeText("a\x07b"))
	assert.Equal(t, "keep\ttabs\nand\rreturns", safeText("keep\ttabs\nand\rreturns"))
	assert.Equal(t, "x�y", safeText("x\xc3y"))
}
