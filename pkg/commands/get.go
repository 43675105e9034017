package commands

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/cmdhelper"
)

// NewGetCommand returns a get command with default values.
func NewGetCommand(store *StoreOptions) *GetCommand {
	return &GetCommand{Store: store}
}

// GetCommand fetches the bytes a reference points at.
type GetCommand struct {
	Store *StoreOptions

	Output string
}

// ToCLI transforms to a *cli.Command.
func (c *GetCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:  "get",
		Usage: "Fetch the bytes a reference points at",
		UsageText: `contentstore get [OPTIONS] REFERENCE

REFERENCE is the JSON form printed by put, or @FILE to read it from a file.

# Fetch by inline reference
$ contentstore get '{"bucket":"artifacts","path":"cas",...}' -o page.md

# Fetch with the reference stored in a file
$ contentstore get @ref.json -o page.md
`,
		ArgsUsage: "REFERENCE",
		Flags:     c.Flags(),
		Before:    cli.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Flags defines the flags related to the current command.
func (c *GetCommand) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write payload to the file instead of stdout",
			Destination: &c.Output,
		},
	}
}

// Run is the main function for the current command.
func (c *GetCommand) Run(ctx context.Context, cmd *cli.Command) error {
	ref, err := resolveReference(cmd.Args().First())
	if err != nil {
		return err
	}

	store, err := c.Store.NewStore()
	if err != nil {
		return err
	}

	rc, err := store.GetReader(ctx, ref)
	if err != nil {
		return err
	}
	defer rc.Close()

	var w io.Writer = cmd.Writer
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = io.Copy(w, rc)
	return err
}

// resolveReference parses the reference argument, loading it from a file
// when prefixed with "@".
func resolveReference(arg string) (cas.Reference, error) {
	content := []byte(arg)
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		loaded, err := os.ReadFile(name)
		if err != nil {
			return cas.Reference{}, err
		}
		content = loaded
	}
	return cas.ParseReference(content)
}
