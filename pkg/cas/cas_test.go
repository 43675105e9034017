package cas_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/docbay/contentstore/pkg/blob"
	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/errdefs"
)

const helloDigest = "90f8ec5669cd34183b9b0fdf8b94f5efb4c3672876330f4aa76088c2b4ad17be"

func newTestStore(t *testing.T) *cas.Store {
	t.Helper()
	store, err := cas.New(blob.NewMemory(), "artifacts")
	require.NoError(t, err)
	return store
}

func TestDigestDeterminism(t *testing.T) {
	payload := []byte("deterministic content")
	assert.Equal(t, cas.Digest(payload), cas.Digest(payload))
}

func TestDigestContentUniqueness(t *testing.T) {
	assert.NotEqual(t, cas.Digest([]byte("content a")), cas.Digest([]byte("content b")))
	// a single flipped byte changes the digest
	assert.NotEqual(t, cas.Digest([]byte{0x00}), cas.Digest([]byte{0x01}))
}

func TestDigestEmptyPayload(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		cas.Digest(nil).Encoded())
	assert.Equal(t, cas.Digest(nil), cas.Digest([]byte{}))
}

func TestPutScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("# Hello\n"), "text/markdown", "md")
	require.NoError(t, err)

	assert.Equal(t, "artifacts", ref.Bucket)
	assert.Equal(t, "cas", ref.Path)
	assert.Equal(t, helloDigest+".md", ref.Filename)
	assert.Equal(t, helloDigest, ref.ContentHash)
	assert.Equal(t, "text/markdown", ref.ContentType)
	assert.Equal(t, int64(8), ref.Size)

	got, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("# Hello\n"), got)
}

func TestPutDedupIdempotence(t *testing.T) {
	backend := blob.NewMemory()
	store, err := cas.New(backend, "artifacts")
	require.NoError(t, err)
	ctx := context.Background()
	payload := []byte("stored twice, written once")

	first, err := store.Put(ctx, payload, "text/plain", "txt")
	require.NoError(t, err)
	second, err := store.Put(ctx, payload, "text/plain", "txt")
	require.NoError(t, err)

	assert.Equal(t, first.Filename, second.Filename)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.Size, second.Size)

	// the second put must not touch the stored object
	info, err := backend.StatObject(ctx, "artifacts", first.Key())
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size)
}

func TestPutExtensionSensitivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payload := []byte(`{"same": "bytes"}`)

	asMD, err := store.Put(ctx, payload, "text/markdown", "md")
	require.NoError(t, err)
	asJSON, err := store.Put(ctx, payload, "application/json", "json")
	require.NoError(t, err)

	assert.Equal(t, asMD.ContentHash, asJSON.ContentHash)
	assert.NotEqual(t, asMD.Filename, asJSON.Filename)

	// two physically distinct objects, both retrievable
	for _, ref := range []cas.Reference{asMD, asJSON} {
		got, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestPutEmptyPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte{}, "text/plain", "txt")
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ref.ContentHash)
	assert.Zero(t, ref.Size)

	got, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPutInvalidInputs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testcases := []struct {
		name        string
		contentType string
		extension   string
	}{
		{"empty content type", "", "txt"},
		{"empty extension", "text/plain", ""},
		{"dot extension", "text/plain", "."},
		{"extension with separator", "text/plain", "a/b"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Put(ctx, []byte("x"), tc.contentType, tc.extension)
			assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
		})
	}
}

func TestPutTrimsLeadingDot(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Put(context.Background(), []byte("payload"), "text/plain", ".txt")
	require.NoError(t, err)
	assert.Equal(t, ref.ContentHash+".txt", ref.Filename)
}

func TestPutWithBucketOverride(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("scoped"), "text/plain", "txt", cas.WithBucket("scratch"))
	require.NoError(t, err)
	assert.Equal(t, "scratch", ref.Bucket)

	got, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("scoped"), got)
}

func TestGetMissingObject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// well-formed reference that was never written
	dgst := cas.Digest([]byte("never stored"))
	ref := cas.Reference{
		Bucket:      "artifacts",
		Path:        cas.PathPrefix,
		Filename:    dgst.Encoded() + ".txt",
		ContentHash: dgst.Encoded(),
		ContentType: "text/plain",
		Size:        12,
	}

	_, err := store.Get(ctx, ref)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetMalformedReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testcases := []struct {
		name string
		ref  cas.Reference
	}{
		{"zero value", cas.Reference{}},
		{"bad hash", cas.Reference{Bucket: "b", Path: "cas", Filename: "zz.txt", ContentHash: "zz", Size: 1}},
		{"negative size", cas.Reference{Bucket: "b", Path: "cas", Filename: helloDigest + ".md", ContentHash: helloDigest, Size: -1}},
		{"foreign filename", cas.Reference{Bucket: "b", Path: "cas", Filename: "other.md", ContentHash: helloDigest, Size: 1}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Get(ctx, tc.ref)
			assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
		})
	}
}

func TestGetCorruptedObject(t *testing.T) {
	backend := blob.NewMemory()
	store, err := cas.New(backend, "artifacts")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("original bytes"), "text/plain", "txt")
	require.NoError(t, err)

	// overwrite the stored object behind the store's back
	require.NoError(t, backend.WriteObject(ctx, ref.Bucket, ref.Key(), []byte("tampered bytes"), blob.Metadata{}))

	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, errdefs.ErrCorrupted)
}

func TestStat(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("# Hello\n"), "text/markdown", "md")
	require.NoError(t, err)

	info, err := store.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, helloDigest, info.Metadata.Digest)
	assert.Equal(t, "text/markdown", info.Metadata.ContentType)
	assert.Equal(t, "md", info.Metadata.Extension)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPutWithAttrs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("annotated"), "text/plain", "txt",
		cas.WithAttrs(map[string]any{"package": "left-pad", "revision": 7}))
	require.NoError(t, err)

	info, err := store.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "left-pad", info.Metadata.StringAttr("package"))
	assert.Equal(t, int64(7), info.Metadata.IntAttr("revision"))
}

func TestConcurrentIdenticalPuts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payload := []byte("raced by everyone")

	const writers = 32
	refs := make([]cas.Reference, writers)
	eg, egctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		i := i
		eg.Go(func() error {
			ref, err := store.Put(egctx, payload, "text/plain", "txt")
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for _, ref := range refs {
		assert.Equal(t, refs[0].Filename, ref.Filename)
		assert.Equal(t, refs[0].ContentHash, ref.ContentHash)
	}
	got, err := store.Get(ctx, refs[0])
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRoundTripOnFilesystemBackend(t *testing.T) {
	store, err := cas.New(blob.NewFS(afero.NewMemMapFs()), "artifacts")
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		payload := []byte(fmt.Sprintf("document body %d", i))
		ref, err := store.Put(ctx, payload, "text/plain", "txt")
		require.NoError(t, err)

		got, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestNewInvalidArguments(t *testing.T) {
	_, err := cas.New(nil, "artifacts")
	assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)

	_, err = cas.New(blob.NewMemory(), "")
	assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}
