package blob

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend keeps objects in process memory. It backs the "memory"
// driver for local development and is the Backend used by tests.
// Safe for concurrent use.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	meta Metadata
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string]memoryObject)}
}

func (m *MemoryBackend) EnsureBucket(context.Context) error { return nil }

func (m *MemoryBackend) Put(_ context.Context, name string, data []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(name, data, opts)
	return nil
}

// store writes the object under the lock held by the caller.
func (m *MemoryBackend) store(name string, data []byte, opts PutOptions) {
	copied := make([]byte, len(data))
	copy(copied, data)

	m.objects[name] = memoryObject{
		data: copied,
		meta: Metadata{
			Name:         name,
			Size:         int64(len(copied)),
			ContentType:  orUnknown(opts.ContentType),
			LastModified: time.Now().UTC(),
			ETag:         fmt.Sprintf("%x", md5.Sum(copied)),
			UserMetadata: lowercaseKeys(opts.Metadata),
		},
	}
}

func (m *MemoryBackend) NewBlockUpload(_ context.Context, name string, opts PutOptions) (BlockUpload, error) {
	return &memoryBlockUpload{
		backend: m,
		name:    name,
		opts:    opts,
		blocks:  make(map[string][]byte),
	}, nil
}

func (m *MemoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(obj.data))
	copy(copied, obj.data)
	return copied, nil
}

func (m *MemoryBackend) Stat(_ context.Context, name string) (*Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, ErrNotFound
	}
	meta := obj.meta
	return &meta, nil
}

func (m *MemoryBackend) List(_ context.Context, prefix string, withMetadata bool) ([]Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Metadata
	for name, obj := range m.objects {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		meta := obj.meta
		if !withMetadata {
			meta.UserMetadata = nil
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[name]; !ok {
		return ErrNotFound
	}
	delete(m.objects, name)
	return nil
}

// memoryBlockUpload assembles the committed object strictly in the order of
// the id list handed to Commit, mirroring the block-list contract of real
// backends.
type memoryBlockUpload struct {
	backend *MemoryBackend
	name    string
	opts    PutOptions
	blocks  map[string][]byte
	aborted bool
}

func (u *memoryBlockUpload) Stage(_ context.Context, id string, data []byte) error {
	if u.aborted {
		return fmt.Errorf("staged upload for %q was aborted", u.name)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	u.blocks[id] = copied
	return nil
}

func (u *memoryBlockUpload) Commit(_ context.Context, ids []string) error {
	if u.aborted {
		return fmt.Errorf("staged upload for %q was aborted", u.name)
	}
	var assembled []byte
	for _, id := range ids {
		block, ok := u.blocks[id]
		if !ok {
			return fmt.Errorf("unknown block id %q for %q", id, u.name)
		}
		assembled = append(assembled, block...)
	}

	u.backend.mu.Lock()
	defer u.backend.mu.Unlock()
	u.backend.store(u.name, assembled, u.opts)
	u.blocks = nil
	return nil
}

func (u *memoryBlockUpload) Abort(context.Context) error {
	u.aborted = true
	u.blocks = nil
	return nil
}

func lowercaseKeys(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[strings.ToLower(k)] = v
	}
	return out
}
