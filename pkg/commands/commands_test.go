package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/commands"
)

func newTestApp(out *bytes.Buffer) *cli.Command {
	store := commands.NewStoreOptions()
	return &cli.Command{
		Name:   "contentstore",
		Writer: out,
		Flags:  store.Flags(),
		Commands: []*cli.Command{
			commands.NewPutCommand(store).ToCLI(),
			commands.NewGetCommand(store).ToCLI(),
			commands.NewStatCommand(store).ToCLI(),
			commands.NewDigestCommand().ToCLI(),
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	input := filepath.Join(t.TempDir(), "index.md")
	require.NoError(t, os.WriteFile(input, []byte("# Hello\n"), 0o644))

	out := &bytes.Buffer{}
	err := newTestApp(out).Run(ctx, []string{
		"contentstore", "--root", root, "put", "--content-type", "text/markdown", input,
	})
	require.NoError(t, err)

	ref, err := cas.ParseReference(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", ref.ContentType)
	assert.Equal(t, int64(8), ref.Size)
	assert.True(t, strings.HasSuffix(ref.Filename, ".md"))

	output := filepath.Join(t.TempDir(), "fetched.md")
	err = newTestApp(&bytes.Buffer{}).Run(ctx, []string{
		"contentstore", "--root", root, "get", "-o", output, ref.String(),
	})
	require.NoError(t, err)

	fetched, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("# Hello\n"), fetched)
}

func TestGetReferenceFromFile(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	input := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"ok":true}`), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, newTestApp(out).Run(ctx, []string{
		"contentstore", "--root", root, "put", "--content-type", "application/json", input,
	}))

	refFile := filepath.Join(t.TempDir(), "ref.json")
	require.NoError(t, os.WriteFile(refFile, out.Bytes(), 0o644))

	fetched := &bytes.Buffer{}
	require.NoError(t, newTestApp(fetched).Run(ctx, []string{
		"contentstore", "--root", root, "get", "@" + refFile,
	}))
	assert.Equal(t, `{"ok":true}`, fetched.String())
}

func TestStatCommand(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	input := filepath.Join(t.TempDir(), "page.md")
	require.NoError(t, os.WriteFile(input, []byte("content"), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, newTestApp(out).Run(ctx, []string{
		"contentstore", "--root", root, "put", "--content-type", "text/markdown",
		"--attr", "package=left-pad", input,
	}))
	ref, err := cas.ParseReference(out.Bytes())
	require.NoError(t, err)

	statOut := &bytes.Buffer{}
	require.NoError(t, newTestApp(statOut).Run(ctx, []string{
		"contentstore", "--root", root, "stat", ref.String(),
	}))
	assert.Contains(t, statOut.String(), ref.ContentHash)
	assert.Contains(t, statOut.String(), "left-pad")
}

func TestDigestCommand(t *testing.T) {
	input := filepath.Join(t.TempDir(), "page.md")
	require.NoError(t, os.WriteFile(input, []byte("# Hello\n"), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, newTestApp(out).Run(context.Background(), []string{
		"contentstore", "digest", input,
	}))
	assert.Equal(t,
		"sha256:90f8ec5669cd34183b9b0fdf8b94f5efb4c3672876330f4aa76088c2b4ad17be\n",
		out.String())
}

func TestPutMissingFile(t *testing.T) {
	err := newTestApp(&bytes.Buffer{}).Run(context.Background(), []string{
		"contentstore", "--root", t.TempDir(), "put", "nope.md",
	})
	assert.Error(t, err)
}
