package cas

import (
	"bytes"
	"context"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/docbay/contentstore/pkg/errdefs"
)

// GetReader returns the stored bytes as a stream that verifies digest and
// size against ref while it is read. The verification failure surfaces from
// Read at EOF, wrapping errdefs.ErrCorrupted.
func (s *Store) GetReader(ctx context.Context, ref Reference) (io.ReadCloser, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	payload, _, err := s.backend.ReadObject(ctx, ref.Bucket, ref.Key())
	if err != nil {
		return nil, err
	}
	return NewVerifyReadCloser(io.NopCloser(bytes.NewReader(payload)), ref)
}

// NewVerifyReadCloser wraps rc with digest and size verification against ref
// on Read().
func NewVerifyReadCloser(rc io.ReadCloser, ref Reference) (io.ReadCloser, error) {
	dgst, err := ref.Digest()
	if err != nil {
		return nil, err
	}
	digester := dgst.Algorithm().Digester()
	return &verifyReader{
		ReadCloser: rc,
		ref:        ref,
		want:       dgst,
		digester:   digester,
		teeReader:  io.TeeReader(rc, digester.Hash()),
	}, nil
}

type verifyReader struct {
	io.ReadCloser
	ref       Reference
	want      digest.Digest
	digester  digest.Digester
	teeReader io.Reader

	n int64
}

// Reference returns the reference the stream is verified against.
func (vr *verifyReader) Reference() Reference {
	return vr.ref
}

func (vr *verifyReader) Read(p []byte) (int, error) {
	n, err := vr.teeReader.Read(p)
	vr.n += int64(n)
	if err == nil {
		if vr.n > vr.ref.Size {
			// Fail early when the object is bigger than the reference
			// records, without waiting for EOF.
			return n, errdefs.Newf(errdefs.ErrCorrupted, "size exceeds content length %d", vr.ref.Size)
		}
		return n, nil
	}
	if err != io.EOF {
		return n, err
	}
	// at EOF, verify size and digest
	if vr.n != vr.ref.Size {
		return n, errdefs.Newf(errdefs.ErrCorrupted, "size mismatch (%d != %d)", vr.n, vr.ref.Size)
	}
	if got := vr.digester.Digest(); got != vr.want {
		return n, errdefs.Newf(errdefs.ErrCorrupted, "digest mismatch (%s != %s)", got, vr.want)
	}
	return n, err
}

func (vr *verifyReader) Close() error {
	return vr.ReadCloser.Close()
}
