// Package commands defines the cli commands of the application.
package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/blob"
	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/errdefs"
	"github.com/docbay/contentstore/pkg/xlog"
)

// NewStoreOptions returns a *StoreOptions with default values.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Root:   defaultRoot(),
		Bucket: "artifacts",
	}
}

// StoreOptions are the flags shared by every command that opens the store.
type StoreOptions struct {
	Root   string
	Bucket string
	Debug  bool
}

// Flags returns the []cli.Flag related to current options.
func (o *StoreOptions) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "root",
			Usage:       "directory holding the store buckets",
			Sources:     cli.EnvVars("CONTENTSTORE_ROOT"),
			Value:       o.Root,
			Destination: &o.Root,
			Persistent:  true,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "default bucket objects are stored in",
			Sources:     cli.EnvVars("CONTENTSTORE_BUCKET"),
			Value:       o.Bucket,
			Destination: &o.Bucket,
			Persistent:  true,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "enable debug logging",
			Sources:     cli.EnvVars("CONTENTSTORE_DEBUG"),
			Destination: &o.Debug,
			Persistent:  true,
		},
	}
}

// NewStore opens the store over a filesystem backend rooted at the
// configured directory.
func (o *StoreOptions) NewStore() (*cas.Store, error) {
	if o.Debug {
		xlog.SetLevel(xlog.LevelDebug)
	}
	if o.Root == "" {
		return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "store root is empty")
	}
	return cas.New(blob.NewFSAtDir(o.Root), o.Bucket)
}

func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".contentstore"
	}
	return filepath.Join(home, ".contentstore")
}

// parseAttrs converts repeated "key=value" flag values into attributes.
func parseAttrs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "attribute %q is not formatted as key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}
