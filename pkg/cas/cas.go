// Package cas implements a content-addressable store for immutable byte
// payloads. Objects are keyed by the digest of their own content: identical
// bytes always resolve to the same location, so duplicate writes are
// harmless no-ops and concurrent writers need no coordination.
package cas

import (
	"context"
	"strings"

	"github.com/docbay/contentstore/pkg/blob"
	"github.com/docbay/contentstore/pkg/errdefs"
	"github.com/docbay/contentstore/pkg/xlog"
)

// PathPrefix is the fixed logical namespace objects are stored under.
const PathPrefix = "cas"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *xlog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a Store writing through the given backend. The backend is
// injected rather than constructed internally so tests can substitute an
// in-memory or temp-directory implementation. defaultBucket is used by every
// operation unless overridden per call with WithBucket.
func New(backend blob.Backend, defaultBucket string, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "backend is nil")
	}
	if defaultBucket == "" {
		return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "default bucket is empty")
	}
	s := &Store{
		backend: backend,
		bucket:  defaultBucket,
		logger:  xlog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store is a content-addressable store over a blob.Backend. It holds no
// mutable state of its own and is safe for concurrent use.
type Store struct {
	backend blob.Backend
	bucket  string
	logger  *xlog.Logger
}

// PutOption configures a single Put, Get, Stat or Exists call.
type PutOption func(*callOptions)

type callOptions struct {
	bucket string
	attrs  map[string]any
}

// WithBucket overrides the store's default bucket for one call.
func WithBucket(bucket string) PutOption {
	return func(o *callOptions) { o.bucket = bucket }
}

// WithAttrs attaches free-form attributes to the stored object's backend
// metadata. Attributes are for introspection only and never affect
// addressing or dedup.
func WithAttrs(attrs map[string]any) PutOption {
	return func(o *callOptions) { o.attrs = attrs }
}

func (s *Store) makeCallOptions(opts []PutOption) callOptions {
	o := callOptions{bucket: s.bucket}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Put stores payload and returns its Reference. The object key is derived
// from the content digest plus the extension hint: identical bytes with the
// same extension resolve to the same key, so a second Put is a dedup no-op.
// The extension shapes the physical name only; identity is the digest alone,
// which means identical bytes stored under two different extensions occupy
// two physical objects sharing one ContentHash.
//
// A zero-length payload is valid content with its own well-defined digest.
// contentType and extension must be non-empty; neither participates in
// addressing.
func (s *Store) Put(ctx context.Context, payload []byte, contentType, extension string, opts ...PutOption) (Reference, error) {
	o := s.makeCallOptions(opts)
	if err := validatePutInputs(contentType, extension, o.bucket); err != nil {
		return Reference{}, err
	}
	extension = strings.TrimPrefix(extension, ".")

	dgst := Digest(payload)
	ref := Reference{
		Bucket:      o.bucket,
		Path:        PathPrefix,
		Filename:    dgst.Encoded() + "." + extension,
		ContentHash: dgst.Encoded(),
		ContentType: contentType,
		Size:        int64(len(payload)),
	}

	if err := s.backend.EnsureBucket(ctx, o.bucket); err != nil {
		return Reference{}, err
	}

	// Fast path: the location is content-derived, so an occupied key always
	// holds the same bytes and the write can be skipped.
	_, err := s.backend.StatObject(ctx, o.bucket, ref.Key())
	if err == nil {
		s.logger.DebugContext(ctx, "dedup hit, skipping write",
			"bucket", o.bucket, "key", ref.Key(), "size", ref.Size)
		return ref, nil
	}
	if !errdefs.IsNotFound(err) {
		return Reference{}, err
	}

	meta := blob.Metadata{
		ContentType: contentType,
		Digest:      dgst.Encoded(),
		Extension:   extension,
		Attrs:       o.attrs,
	}
	if err := s.backend.WriteObject(ctx, o.bucket, ref.Key(), payload, meta); err != nil {
		return Reference{}, err
	}
	s.logger.DebugContext(ctx, "object written",
		"bucket", o.bucket, "key", ref.Key(), "size", ref.Size)
	return ref, nil
}

// Get returns the exact bytes previously stored for ref. The retrieved
// payload is re-hashed and checked against ref.ContentHash; a mismatch
// fails with errdefs.ErrCorrupted and is never repaired in place.
func (s *Store) Get(ctx context.Context, ref Reference) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	payload, _, err := s.backend.ReadObject(ctx, ref.Bucket, ref.Key())
	if err != nil {
		return nil, err
	}
	if got := Digest(payload); got.Encoded() != ref.ContentHash {
		return nil, errdefs.Newf(errdefs.ErrCorrupted,
			"object %s/%s hashes to %s, reference records %s",
			ref.Bucket, ref.Key(), got.Encoded(), ref.ContentHash)
	}
	if int64(len(payload)) != ref.Size {
		return nil, errdefs.Newf(errdefs.ErrCorrupted,
			"object %s/%s is %d bytes, reference records %d",
			ref.Bucket, ref.Key(), len(payload), ref.Size)
	}
	return payload, nil
}

// Stat returns backend-level information for the object ref points at.
func (s *Store) Stat(ctx context.Context, ref Reference) (blob.ObjectInfo, error) {
	if err := ref.Validate(); err != nil {
		return blob.ObjectInfo{}, err
	}
	return s.backend.StatObject(ctx, ref.Bucket, ref.Key())
}

// Exists reports whether the object ref points at is present.
func (s *Store) Exists(ctx context.Context, ref Reference) (bool, error) {
	_, err := s.Stat(ctx, ref)
	if err == nil {
		return true, nil
	}
	if errdefs.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func validatePutInputs(contentType, extension, bucket string) error {
	switch {
	case contentType == "":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "content type is empty")
	case extension == "" || extension == ".":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "extension hint is empty")
	case strings.ContainsAny(extension, "/\\"):
		return errdefs.Newf(errdefs.ErrInvalidParameter, "extension hint %q contains a path separator", extension)
	case bucket == "":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "bucket is empty")
	}
	return nil
}
