package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioBackend implements Backend for MinIO and any S3-compatible provider
// reachable through the minio client. Staged uploads map onto multipart
// uploads: each block becomes a part numbered by staging order.
type MinioBackend struct {
	core   *minio.Core
	bucket string
}

// NewMinioBackend connects to the endpoint described by opts. Static
// credentials are used when the options carry a key pair; otherwise the
// environment credential chain (AWS variables, MinIO variables, IAM) applies.
func NewMinioBackend(opts Options) (*MinioBackend, error) {
	endpoint, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	var creds *credentials.Credentials
	if endpoint.AccessKey != "" {
		creds = credentials.NewStaticV4(endpoint.AccessKey, endpoint.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.IAM{},
		})
	}

	core, err := minio.NewCore(endpoint.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: endpoint.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioBackend{core: core, bucket: opts.Container}, nil
}

func (b *MinioBackend) EnsureBucket(ctx context.Context) error {
	exists, err := b.core.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", b.bucket, err)
	}
	if exists {
		return nil
	}
	if err := b.core.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return fmt.Errorf("create bucket %q: %w", b.bucket, err)
	}
	return nil
}

func (b *MinioBackend) Put(ctx context.Context, name string, data []byte, opts PutOptions) error {
	_, err := b.core.Client.PutObject(ctx, b.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (b *MinioBackend) NewBlockUpload(ctx context.Context, name string, opts PutOptions) (BlockUpload, error) {
	uploadID, err := b.core.NewMultipartUpload(ctx, b.bucket, name, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return &minioBlockUpload{
		core:     b.core,
		bucket:   b.bucket,
		name:     name,
		uploadID: uploadID,
		parts:    make(map[string]minio.CompletePart),
	}, nil
}

func (b *MinioBackend) Get(ctx context.Context, name string) ([]byte, error) {
	reader, _, _, err := b.core.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return data, nil
}

func (b *MinioBackend) Stat(ctx context.Context, name string) (*Metadata, error) {
	info, err := b.core.Client.StatObject(ctx, b.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	meta := minioMetadata(info)
	return &meta, nil
}

func (b *MinioBackend) List(ctx context.Context, prefix string, withMetadata bool) ([]Metadata, error) {
	objects := b.core.Client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: withMetadata,
	})

	var out []Metadata
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		out = append(out, minioMetadata(obj))
	}
	return out, nil
}

func (b *MinioBackend) Delete(ctx context.Context, name string) error {
	// RemoveObject is a silent no-op for missing keys, so existence is
	// checked first to give callers the not-found signal.
	if _, err := b.Stat(ctx, name); err != nil {
		return err
	}
	if err := b.core.Client.RemoveObject(ctx, b.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioErr(err)
	}
	return nil
}

type minioBlockUpload struct {
	core     *minio.Core
	bucket   string
	name     string
	uploadID string
	staged   int
	parts    map[string]minio.CompletePart
}

func (u *minioBlockUpload) Stage(ctx context.Context, id string, data []byte) error {
	u.staged++
	part, err := u.core.PutObjectPart(ctx, u.bucket, u.name, u.uploadID, u.staged, bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		u.staged--
		return mapMinioErr(err)
	}
	u.parts[id] = minio.CompletePart{PartNumber: part.PartNumber, ETag: part.ETag}
	return nil
}

func (u *minioBlockUpload) Commit(ctx context.Context, ids []string) error {
	parts := make([]minio.CompletePart, 0, len(ids))
	for _, id := range ids {
		part, ok := u.parts[id]
		if !ok {
			return fmt.Errorf("unknown block id %q for %q", id, u.name)
		}
		parts = append(parts, part)
	}
	if _, err := u.core.CompleteMultipartUpload(ctx, u.bucket, u.name, u.uploadID, parts, minio.PutObjectOptions{}); err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (u *minioBlockUpload) Abort(ctx context.Context) error {
	return u.core.AbortMultipartUpload(ctx, u.bucket, u.name, u.uploadID)
}

func minioMetadata(info minio.ObjectInfo) Metadata {
	name := info.Key
	meta := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		// List results carry the raw header names.
		k = strings.TrimPrefix(k, "X-Amz-Meta-")
		meta[strings.ToLower(k)] = v
	}
	if len(meta) == 0 {
		meta = nil
	}
	return Metadata{
		Name:         name,
		Size:         info.Size,
		ContentType:  orUnknown(info.ContentType),
		LastModified: info.LastModified,
		ETag:         info.ETag,
		UserMetadata: meta,
	}
}

func mapMinioErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}
	return err
}
