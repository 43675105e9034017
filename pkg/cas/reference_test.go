package cas_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/errdefs"
)

func TestReferenceKey(t *testing.T) {
	ref := cas.Reference{Path: "cas", Filename: helloDigest + ".md"}
	assert.Equal(t, "cas/"+helloDigest+".md", ref.Key())
}

func TestReferenceSerializedForm(t *testing.T) {
	ref := cas.Reference{
		Bucket:      "artifacts",
		Path:        "cas",
		Filename:    helloDigest + ".md",
		ContentHash: helloDigest,
		ContentType: "text/markdown",
		Size:        8,
	}

	content, err := json.Marshal(ref)
	require.NoError(t, err)

	// the exact field set is the contract consumed by external records
	var fields map[string]any
	require.NoError(t, json.Unmarshal(content, &fields))
	assert.Len(t, fields, 6)
	for _, key := range []string{"bucket", "path", "filename", "contentHash", "contentType", "size"} {
		assert.Contains(t, fields, key)
	}

	parsed, err := cas.ParseReference(content)
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestParseReferenceRejectsMalformed(t *testing.T) {
	testcases := []struct {
		name    string
		content string
	}{
		{"not json", "not json at all"},
		{"empty object", "{}"},
		{"short hash", `{"bucket":"b","path":"cas","filename":"ab.md","contentHash":"ab","contentType":"text/markdown","size":1}`},
		{"filename mismatch", `{"bucket":"b","path":"cas","filename":"` + "0000000000000000000000000000000000000000000000000000000000000000" + `.md","contentHash":"` + helloDigest + `","contentType":"text/markdown","size":1}`},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cas.ParseReference([]byte(tc.content))
			assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
		})
	}
}

func TestReferenceReconstructedFromJSON(t *testing.T) {
	// a rendering layer parses the stored JSON blob and calls Get with the
	// reconstructed value rather than the original in-memory record
	store := newTestStore(t)
	ctx := context.Background()

	original, err := store.Put(ctx, []byte("# Hello\n"), "text/markdown", "md")
	require.NoError(t, err)

	reconstructed, err := cas.ParseReference([]byte(original.String()))
	require.NoError(t, err)

	got, err := store.Get(ctx, reconstructed)
	require.NoError(t, err)
	assert.Equal(t, []byte("# Hello\n"), got)
}

func TestReferenceDigest(t *testing.T) {
	ref := cas.Reference{ContentHash: helloDigest}
	dgst, err := ref.Digest()
	require.NoError(t, err)
	assert.Equal(t, "sha256:"+helloDigest, dgst.String())

	_, err = cas.Reference{ContentHash: "nothex"}.Digest()
	assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}
