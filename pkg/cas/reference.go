package cas

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/docbay/contentstore/pkg/errdefs"
)

// Reference is the record returned by Store.Put and the only thing that
// crosses the store boundary into callers' own persistent records. It is a
// flat JSON-serializable value so callers can embed it as an opaque string
// inside unrelated entities and reconstruct it later for Store.Get.
type Reference struct {
	// Bucket is the backend container holding the object.
	Bucket string `json:"bucket"`
	// Path is the logical path prefix under the bucket.
	Path string `json:"path"`
	// Filename is "<hex digest>.<extension>".
	Filename string `json:"filename"`
	// ContentHash duplicates the hex digest for integrity-check convenience.
	ContentHash string `json:"contentHash"`
	// ContentType is the caller-supplied logical content type.
	ContentType string `json:"contentType"`
	// Size is the payload length in bytes.
	Size int64 `json:"size"`
}

// Key returns the full object key under the bucket.
func (r Reference) Key() string {
	return path.Join(r.Path, r.Filename)
}

// Digest returns the content digest recorded in the reference.
func (r Reference) Digest() (digest.Digest, error) {
	dgst := digest.NewDigestFromEncoded(Algorithm, r.ContentHash)
	if err := dgst.Validate(); err != nil {
		return "", errdefs.Newf(errdefs.ErrInvalidParameter, "invalid content hash %q: %v", r.ContentHash, err)
	}
	return dgst, nil
}

// Validate checks that the reference is structurally sound: all fields
// present, the content hash a valid encoded digest, and the filename derived
// from the content hash.
func (r Reference) Validate() error {
	switch {
	case r.Bucket == "":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "reference bucket is empty")
	case r.Path == "":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "reference path is empty")
	case r.Filename == "":
		return errdefs.Newf(errdefs.ErrInvalidParameter, "reference filename is empty")
	case r.Size < 0:
		return errdefs.Newf(errdefs.ErrInvalidParameter, "reference size %d is negative", r.Size)
	}
	if _, err := r.Digest(); err != nil {
		return err
	}
	if !strings.HasPrefix(r.Filename, r.ContentHash+".") {
		return errdefs.Newf(errdefs.ErrInvalidParameter,
			"reference filename %q is not derived from content hash %q", r.Filename, r.ContentHash)
	}
	return nil
}

// String returns the reference in its serialized contract form.
func (r Reference) String() string {
	content, err := json.Marshal(r)
	if err != nil {
		// Reference is a flat value type, marshaling cannot fail.
		panic(err)
	}
	return string(content)
}

// ParseReference reconstructs a Reference from its serialized contract form,
// validating it before returning.
func ParseReference(content []byte) (Reference, error) {
	var ref Reference
	if err := json.Unmarshal(content, &ref); err != nil {
		return Reference{}, errdefs.NewE(errdefs.ErrInvalidParameter, err)
	}
	if err := ref.Validate(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}
