package xlog_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbay/contentstore/pkg/xlog"
)

func newTestConfig(stdout *bytes.Buffer) xlog.Config {
	c := xlog.NewConfig()
	c.AddSource = false
	c.AttrReplacer = xlog.SuppressTimeAttrReplacer()
	c.StdWriter = stdout
	return c
}

func TestLogger_SetLevel(t *testing.T) {
	stdout := &bytes.Buffer{}
	xlog.SetDefault(xlog.New(newTestConfig(stdout)))

	xlog.Debug("log message with attrs", "attr1", "val1", "attr2", "val2")
	xlog.SetLevel(xlog.LevelDebug)
	xlog.Debug("log message with attrs", "attr1", "val1", "attr2", "val2")

	got := stdout.String()
	want := strings.TrimLeft(`
level=DEBUG msg="log message with attrs" attr1=val1 attr2=val2
`, "\n")

	assert.Equal(t, want, got)
}

func TestLogger_FileHandler(t *testing.T) {
	stdout := &bytes.Buffer{}
	tempdir := t.TempDir()

	c := newTestConfig(stdout)
	c.Path = filepath.Join(tempdir, "x.log")

	xlog.SetDefault(xlog.New(c))

	xlog.Info("log message with attrs", "attr1", "val1", "attr2", "val2")
	xlog.Debug("this one is filtered")

	t.Run("stdout", func(t *testing.T) {
		want := strings.TrimLeft(`
level=INFO msg="log message with attrs" attr1=val1 attr2=val2
`, "\n")
		assert.Equal(t, want, stdout.String())
	})

	t.Run("logfile", func(t *testing.T) {
		content, err := os.ReadFile(c.Path)
		require.NoError(t, err)
		want := strings.TrimLeft(`
{"level":"INFO","msg":"log message with attrs","attr1":"val1","attr2":"val2"}
`, "\n")
		assert.Equal(t, want, string(content))
	})
}

func TestLogger_With(t *testing.T) {
	stdout := &bytes.Buffer{}
	logger := xlog.New(newTestConfig(stdout)).With("component", "cas")

	logger.Info("object written")

	assert.Equal(t, "level=INFO msg=\"object written\" component=cas\n", stdout.String())
}

func TestFromContext(t *testing.T) {
	stdout := &bytes.Buffer{}
	xlog.SetDefault(xlog.New(newTestConfig(stdout)))

	ctx := xlog.WithContext(context.Background(), "bucket", "artifacts")
	xlog.C(ctx).Info("bucket ensured")

	assert.Equal(t, "level=INFO msg=\"bucket ensured\" bucket=artifacts\n", stdout.String())
}
