package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of the S3 client the backend calls.
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// S3Backend implements Backend on the AWS SDK. It works against AWS itself
// and S3-compatible providers (R2, MinIO) via a custom endpoint with
// path-style addressing.
type S3Backend struct {
	client s3API
	bucket string
}

// NewS3Backend builds an S3 client for the endpoint described by opts.
// Static credentials are used when the options carry a key pair; otherwise
// the SDK's default chain applies.
func NewS3Backend(ctx context.Context, opts Options) (*S3Backend, error) {
	endpoint, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion("auto"),
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		config.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
	}
	if endpoint.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(endpoint.AccessKey, endpoint.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint.URL())
		o.UsePathStyle = true
	})
	return &S3Backend{client: client, bucket: opts.Container}, nil
}

func (b *S3Backend) EnsureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("check bucket %q: %w", b.bucket, err)
	}

	_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var taken *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &taken) {
			return nil
		}
		return fmt.Errorf("create bucket %q: %w", b.bucket, err)
	}
	return nil
}

func (b *S3Backend) Put(ctx context.Context, name string, data []byte, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(name),
		Body:     bytes.NewReader(data),
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return mapS3Err(err)
	}
	return nil
}

func (b *S3Backend) NewBlockUpload(ctx context.Context, name string, opts PutOptions) (BlockUpload, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(name),
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	created, err := b.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return nil, mapS3Err(err)
	}
	return &s3BlockUpload{
		client:   b.client,
		bucket:   b.bucket,
		name:     name,
		uploadID: aws.ToString(created.UploadId),
		parts:    make(map[string]types.CompletedPart),
	}, nil
}

func (b *S3Backend) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, mapS3Err(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", name, err)
	}
	return data, nil
}

func (b *S3Backend) Stat(ctx context.Context, name string) (*Metadata, error) {
	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, mapS3Err(err)
	}
	return &Metadata{
		Name:         name,
		Size:         aws.ToInt64(head.ContentLength),
		ContentType:  orUnknown(aws.ToString(head.ContentType)),
		LastModified: aws.ToTime(head.LastModified),
		ETag:         strings.Trim(aws.ToString(head.ETag), `"`),
		UserMetadata: lowercaseKeys(head.Metadata),
	}, nil
}

func (b *S3Backend) List(ctx context.Context, prefix string, withMetadata bool) ([]Metadata, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	var out []Metadata
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			if withMetadata {
				// The list API does not return user metadata.
				meta, err := b.Stat(ctx, name)
				if err != nil {
					return nil, err
				}
				out = append(out, *meta)
				continue
			}
			out = append(out, Metadata{
				Name:         name,
				Size:         aws.ToInt64(obj.Size),
				ContentType:  "unknown",
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
			})
		}
	}
	return out, nil
}

func (b *S3Backend) Delete(ctx context.Context, name string) error {
	// DeleteObject succeeds for missing keys, so existence is checked first
	// to give callers the not-found signal.
	if _, err := b.Stat(ctx, name); err != nil {
		return err
	}
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	}); err != nil {
		return mapS3Err(err)
	}
	return nil
}

type s3BlockUpload struct {
	client   s3API
	bucket   string
	name     string
	uploadID string
	staged   int
	parts    map[string]types.CompletedPart
}

func (u *s3BlockUpload) Stage(ctx context.Context, id string, data []byte) error {
	partNumber := int32(u.staged + 1)
	out, err := u.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(u.bucket),
		Key:        aws.String(u.name),
		UploadId:   aws.String(u.uploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		return mapS3Err(err)
	}
	u.staged++
	u.parts[id] = types.CompletedPart{ETag: out.ETag, PartNumber: aws.Int32(partNumber)}
	return nil
}

func (u *s3BlockUpload) Commit(ctx context.Context, ids []string) error {
	parts := make([]types.CompletedPart, 0, len(ids))
	for _, id := range ids {
		part, ok := u.parts[id]
		if !ok {
			return fmt.Errorf("unknown block id %q for %q", id, u.name)
		}
		parts = append(parts, part)
	}
	_, err := u.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(u.bucket),
		Key:             aws.String(u.name),
		UploadId:        aws.String(u.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return mapS3Err(err)
	}
	return nil
}

func (u *s3BlockUpload) Abort(ctx context.Context) error {
	_, err := u.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(u.bucket),
		Key:      aws.String(u.name),
		UploadId: aws.String(u.uploadID),
	})
	return err
}

func mapS3Err(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}
	return err
}
