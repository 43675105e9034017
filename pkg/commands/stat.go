package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cmdhelper"
)

// NewStatCommand returns a stat command with default values.
func NewStatCommand(store *StoreOptions) *StatCommand {
	return &StatCommand{Store: store}
}

// StatCommand prints backend-level information for a reference.
type StatCommand struct {
	Store *StoreOptions
}

// ToCLI transforms to a *cli.Command.
func (c *StatCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:  "stat",
		Usage: "Show object information for a reference",
		UsageText: `contentstore stat REFERENCE

REFERENCE is the JSON form printed by put, or @FILE to read it from a file.
`,
		ArgsUsage: "REFERENCE",
		Before:    cli.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Run is the main function for the current command.
func (c *StatCommand) Run(ctx context.Context, cmd *cli.Command) error {
	ref, err := resolveReference(cmd.Args().First())
	if err != nil {
		return err
	}

	store, err := c.Store.NewStore()
	if err != nil {
		return err
	}

	info, err := store.Stat(ctx, ref)
	if err != nil {
		return err
	}
	content, err := cmdhelper.PrettifyJSON(info)
	if err != nil {
		return err
	}
	cmdhelper.Fprintf(cmd.Writer, "%s", string(content))
	return nil
}
