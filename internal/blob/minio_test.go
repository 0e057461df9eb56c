package blob

import (
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinioBackend_InvalidOptions(t *testing.T) {
	_, err := NewMinioBackend(Options{Container: "c"})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewMinioBackend(Options{AccountURL: "localhost:9000"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMinioMetadata(t *testing.T) {
	now := time.Now().UTC()
	info := minio.ObjectInfo{
		Key:          "article_1.txt",
		Size:         42,
		ETag:         "abc",
		ContentType:  "text/plain",
		LastModified: now,
		UserMetadata: map[string]string{
			// Listing returns raw header names, Stat returns bare keys.
			"X-Amz-Meta-Article_url": "https://example.com",
			"Article_Title":          "Hello",
		},
	}

	meta := minioMetadata(info)
	assert.Equal(t, "article_1.txt", meta.Name)
	assert.Equal(t, int64(42), meta.Size)
	assert.Equal(t, "abc", meta.ETag)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.Equal(t, now, meta.LastModified)
	assert.Equal(t, "https://example.com", meta.UserMetadata["article_url"])
	assert.Equal(t, "Hello", meta.UserMetadata["article_title"])
}

func TestMinioMetadata_Defaults(t *testing.T) {
	meta := minioMetadata(minio.ObjectInfo{Key: "x"})
	assert.Equal(t, "unknown", meta.ContentType)
	assert.Nil(t, meta.UserMetadata)
}

func TestMapMinioErr(t *testing.T) {
	assert.ErrorIs(t, mapMinioErr(minio.ErrorResponse{Code: "NoSuchKey"}), ErrNotFound)
	assert.ErrorIs(t, mapMinioErr(minio.ErrorResponse{Code: "NotFound"}), ErrNotFound)

	other := minio.ErrorResponse{Code: "AccessDenied"}
	assert.Equal(t, error(other), mapMinioErr(other))

	plain := errors.New("conn refused")
	assert.Equal(t, plain, mapMinioErr(plain))
}
