package blob

import "context"

// PutOptions carries the object attributes applied at write time.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Backend is the storage driver underneath ServiceClient. Implementations
// exist for MinIO (the default), AWS S3 and an in-memory store.
//
// Implementations wrap provider errors so that errors.Is(err, ErrNotFound)
// holds for missing objects.
type Backend interface {
	// EnsureBucket creates the backing bucket when missing. An existing
	// bucket is not an error.
	EnsureBucket(ctx context.Context) error
	// Put writes data as a single object in one request.
	Put(ctx context.Context, name string, data []byte, opts PutOptions) error
	// NewBlockUpload begins a staged upload that becomes a single object
	// on Commit.
	NewBlockUpload(ctx context.Context, name string, opts PutOptions) (BlockUpload, error)
	// Get returns the full content of an object.
	Get(ctx context.Context, name string) ([]byte, error)
	// Stat returns the object's metadata.
	Stat(ctx context.Context, name string) (*Metadata, error)
	// List returns the objects whose names start with prefix. When
	// withMetadata is false, implementations may leave UserMetadata nil.
	List(ctx context.Context, prefix string, withMetadata bool) ([]Metadata, error)
	// Delete removes an object. Deleting a missing object returns
	// ErrNotFound.
	Delete(ctx context.Context, name string) error
}

// BlockUpload stages the blocks of one object. Nothing is visible to readers
// until Commit assembles the staged blocks; Abort discards them. A BlockUpload
// is used by a single goroutine.
type BlockUpload interface {
	// Stage uploads one block under the given id.
	Stage(ctx context.Context, id string, data []byte) error
	// Commit assembles the object from staged blocks in ids order.
	Commit(ctx context.Context, ids []string) error
	// Abort discards all staged blocks.
	Abort(ctx context.Context) error
}
