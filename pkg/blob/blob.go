// Package blob defines the backend abstraction a content-addressable store
// writes to and reads from, with filesystem and in-memory implementations.
package blob

import (
	"context"
	"time"

	"github.com/spf13/cast"
)

// Metadata is backend-level metadata attached to a stored object for
// introspection and debugging. It never participates in addressing.
type Metadata struct {
	// ContentType is the logical content type supplied by the caller,
	// e.g. "text/markdown".
	ContentType string `json:"contentType"`
	// Digest is the hex-encoded content digest of the object bytes.
	Digest string `json:"digest"`
	// Extension is the original extension hint used to derive the
	// physical object name.
	Extension string `json:"extension"`
	// CreatedAt is the time the object was first written.
	CreatedAt time.Time `json:"createdAt,omitzero"`
	// Attrs carries free-form caller attributes.
	Attrs map[string]any `json:"attrs,omitempty"`
}

// StringAttr returns the attribute value converted to a string.
func (m Metadata) StringAttr(key string) string {
	return cast.ToString(m.Attrs[key])
}

// IntAttr returns the attribute value converted to an int64. Values decoded
// from JSON sidecars arrive as float64 and are converted transparently.
func (m Metadata) IntAttr(key string) int64 {
	return cast.ToInt64(m.Attrs[key])
}

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	Size     int64    `json:"size"`
	Metadata Metadata `json:"metadata"`
}

// Backend is the durable byte-storage medium behind a content-addressable
// store.
//
// Contract:
//   - EnsureBucket MUST be idempotent and safe to race from concurrent
//     first-writers.
//   - WriteObject MUST be atomic for a single key: a concurrent or later
//     read observes either no object or the complete payload, never a
//     partial write.
//   - Objects are immutable; rewriting an occupied key with identical bytes
//     is always permitted.
//   - ReadObject and StatObject MUST return an error wrapping
//     errdefs.ErrNotFound when no object exists at the key.
//
// There is deliberately no delete operation: retention is owned by an
// external sweep process, never by the store's write/read path.
type Backend interface {
	// EnsureBucket creates the bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error
	// WriteObject stores payload under (bucket, key) with metadata attached.
	WriteObject(ctx context.Context, bucket, key string, payload []byte, meta Metadata) error
	// ReadObject returns the full payload and metadata stored at (bucket, key).
	ReadObject(ctx context.Context, bucket, key string) ([]byte, Metadata, error)
	// StatObject returns object information without reading the payload.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
}
