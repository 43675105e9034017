package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/cmdhelper"
)

// NewPutCommand returns a put command with default values.
func NewPutCommand(store *StoreOptions) *PutCommand {
	return &PutCommand{
		Store:       store,
		ContentType: "application/octet-stream",
	}
}

// PutCommand stores a file and prints the resulting reference.
type PutCommand struct {
	Store *StoreOptions

	ContentType string
	Extension   string
	Attrs       []string
}

// ToCLI transforms to a *cli.Command.
func (c *PutCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:  "put",
		Usage: "Store a file and print its reference",
		UsageText: `contentstore put [OPTIONS] FILE

# Store a generated documentation page
$ contentstore put --content-type text/markdown docs/index.md
`,
		ArgsUsage: "FILE",
		Flags:     c.Flags(),
		Before:    cli.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Flags defines the flags related to the current command.
func (c *PutCommand) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "content-type",
			Aliases:     []string{"t"},
			Usage:       "logical content type recorded with the object",
			Value:       c.ContentType,
			Destination: &c.ContentType,
		},
		&cli.StringFlag{
			Name:        "ext",
			Usage:       "extension hint used in the physical name, derived from FILE when unset",
			Destination: &c.Extension,
		},
		&cli.StringSliceFlag{
			Name:        "attr",
			Usage:       "extra metadata attribute formatted as key=value, repeatable",
			Destination: &c.Attrs,
		},
	}
}

// Run is the main function for the current command.
func (c *PutCommand) Run(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	payload, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	extension := c.Extension
	if extension == "" {
		extension = strings.TrimPrefix(filepath.Ext(file), ".")
	}

	attrs, err := parseAttrs(c.Attrs)
	if err != nil {
		return err
	}

	store, err := c.Store.NewStore()
	if err != nil {
		return err
	}

	opts := []cas.PutOption{}
	if attrs != nil {
		opts = append(opts, cas.WithAttrs(attrs))
	}
	ref, err := store.Put(ctx, payload, c.ContentType, extension, opts...)
	if err != nil {
		return err
	}

	content, err := cmdhelper.PrettifyJSON(ref)
	if err != nil {
		return err
	}
	cmdhelper.Fprintf(cmd.Writer, "%s", string(content))
	return nil
}
