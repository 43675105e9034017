package blob

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/docbay/contentstore/pkg/errdefs"
)

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory)

// WithMemoryClock sets the clock used to stamp object creation times.
func WithMemoryClock(c clock.Clock) MemoryOption {
	return func(b *Memory) { b.clock = c }
}

// NewMemory returns an in-memory Backend. It is safe for concurrent use and
// is the intended test double for code that takes a Backend.
func NewMemory(opts ...MemoryOption) *Memory {
	b := &Memory{
		buckets: xsync.NewMapOf[string, struct{}](),
		objects: xsync.NewMapOf[string, storedObject](),
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Memory is an in-memory Backend backed by concurrent maps.
type Memory struct {
	buckets *xsync.MapOf[string, struct{}]
	objects *xsync.MapOf[string, storedObject]
	clock   clock.Clock
}

var _ Backend = (*Memory)(nil)

type storedObject struct {
	payload []byte
	meta    Metadata
}

// EnsureBucket registers the bucket. LoadOrStore makes concurrent
// first-writers indistinguishable from a single one.
func (b *Memory) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.buckets.LoadOrStore(bucket, struct{}{})
	return nil
}

// WriteObject stores payload under (bucket, key). The bucket must have been
// ensured first.
func (b *Memory) WriteObject(ctx context.Context, bucket, key string, payload []byte, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := b.buckets.Load(bucket); !ok {
		return errdefs.Newf(errdefs.ErrUnavailable, "bucket %q does not exist", bucket)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = b.clock.Now().UTC()
	}
	// Copy so later caller mutations of the payload slice cannot reach the
	// stored object.
	stored := make([]byte, len(payload))
	copy(stored, payload)
	b.objects.Store(b.objectKey(bucket, key), storedObject{payload: stored, meta: meta})
	return nil
}

// ReadObject returns the payload and metadata stored at (bucket, key).
func (b *Memory) ReadObject(ctx context.Context, bucket, key string) ([]byte, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}
	obj, ok := b.objects.Load(b.objectKey(bucket, key))
	if !ok {
		return nil, Metadata{}, errdefs.Newf(errdefs.ErrNotFound, "object %s/%s does not exist", bucket, key)
	}
	payload := make([]byte, len(obj.payload))
	copy(payload, obj.payload)
	return payload, obj.meta, nil
}

// StatObject returns object information without copying the payload.
func (b *Memory) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	obj, ok := b.objects.Load(b.objectKey(bucket, key))
	if !ok {
		return ObjectInfo{}, errdefs.Newf(errdefs.ErrNotFound, "object %s/%s does not exist", bucket, key)
	}
	return ObjectInfo{
		Bucket:   bucket,
		Key:      key,
		Size:     int64(len(obj.payload)),
		Metadata: obj.meta,
	}, nil
}

func (b *Memory) objectKey(bucket, key string) string {
	return bucket + "/" + key
}
