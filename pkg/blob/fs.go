package blob

import (
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"

	"github.com/docbay/contentstore/pkg/errdefs"
)

const (
	bucketDirPerm  = 0o755
	objectFilePerm = 0o644

	// metaFileSuffix is appended to the object key to name the sidecar file
	// holding the object metadata.
	metaFileSuffix = ".meta.json"
)

// FSOption configures an FS backend.
type FSOption func(*FS)

// WithFSClock sets the clock used to stamp object creation times.
func WithFSClock(c clock.Clock) FSOption {
	return func(b *FS) { b.clock = c }
}

// NewFS returns a Backend rooted on the given filesystem. Buckets are
// top-level directories; object metadata is persisted next to each object as
// a sidecar JSON file so introspection survives process restarts.
func NewFS(fsys afero.Fs, opts ...FSOption) *FS {
	b := &FS{fs: fsys, clock: clock.New()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFSAtDir returns a Backend storing objects under the given directory on
// the host filesystem.
func NewFSAtDir(root string) *FS {
	return NewFS(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// FS is a filesystem-backed Backend. Writes are atomic per key: the payload
// goes to a temp file in the target directory first and is renamed onto the
// final key in one step.
type FS struct {
	fs    afero.Fs
	clock clock.Clock
}

var _ Backend = (*FS)(nil)

// EnsureBucket creates the bucket directory if absent. MkdirAll is already
// idempotent so concurrent first-writers cannot fail each other.
func (b *FS) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.fs.MkdirAll(bucket, bucketDirPerm); err != nil {
		return errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	return nil
}

// WriteObject stores payload under (bucket, key) with a metadata sidecar.
func (b *FS) WriteObject(ctx context.Context, bucket, key string, payload []byte, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := b.objectPath(bucket, key)
	dir := filepath.Dir(target)
	if err := b.fs.MkdirAll(dir, bucketDirPerm); err != nil {
		return errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = b.clock.Now().UTC()
	}
	if err := b.writeAtomic(target, payload); err != nil {
		return errdefs.NewE(errdefs.ErrWriteFailed, err)
	}
	metaContent, err := json.Marshal(meta)
	if err != nil {
		return errdefs.NewE(errdefs.ErrWriteFailed, err)
	}
	if err := b.writeAtomic(target+metaFileSuffix, metaContent); err != nil {
		return errdefs.NewE(errdefs.ErrWriteFailed, err)
	}
	return nil
}

// ReadObject returns the payload and metadata stored at (bucket, key). A
// missing sidecar is not an error; the zero Metadata is returned instead.
func (b *FS) ReadObject(ctx context.Context, bucket, key string) ([]byte, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}
	target := b.objectPath(bucket, key)
	payload, err := afero.ReadFile(b.fs, target)
	if err != nil {
		if isNotExist(err) {
			return nil, Metadata{}, errdefs.Newf(errdefs.ErrNotFound, "object %s/%s does not exist", bucket, key)
		}
		return nil, Metadata{}, errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	meta, err := b.readMetadata(target)
	if err != nil {
		return nil, Metadata{}, err
	}
	return payload, meta, nil
}

// StatObject returns object information without reading the payload.
func (b *FS) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	target := b.objectPath(bucket, key)
	fi, err := b.fs.Stat(target)
	if err != nil {
		if isNotExist(err) {
			return ObjectInfo{}, errdefs.Newf(errdefs.ErrNotFound, "object %s/%s does not exist", bucket, key)
		}
		return ObjectInfo{}, errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	meta, err := b.readMetadata(target)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Bucket:   bucket,
		Key:      key,
		Size:     fi.Size(),
		Metadata: meta,
	}, nil
}

func (b *FS) objectPath(bucket, key string) string {
	return filepath.Join(bucket, filepath.FromSlash(key))
}

func (b *FS) readMetadata(target string) (Metadata, error) {
	content, err := afero.ReadFile(b.fs, target+metaFileSuffix)
	if err != nil {
		if isNotExist(err) {
			return Metadata{}, nil
		}
		return Metadata{}, errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	var meta Metadata
	if err := json.Unmarshal(content, &meta); err != nil {
		return Metadata{}, errdefs.NewE(errdefs.ErrUnavailable, err)
	}
	return meta, nil
}

// writeAtomic writes content to a temp file in the target directory and
// renames it onto the final path, so a half-written object is never visible
// under the final key.
func (b *FS) writeAtomic(target string, content []byte) error {
	f, err := afero.TempFile(b.fs, filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := b.fs.Chmod(tmp, objectFilePerm); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := b.fs.Rename(tmp, target); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, iofs.ErrNotExist) || os.IsNotExist(err)
}
