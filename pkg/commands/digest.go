package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cas"
	"github.com/docbay/contentstore/pkg/cmdhelper"
)

// NewDigestCommand returns a digest command with default values.
func NewDigestCommand() *DigestCommand {
	return &DigestCommand{}
}

// DigestCommand computes the content digest of a file without storing it.
type DigestCommand struct {
}

// ToCLI transforms to a *cli.Command.
func (c *DigestCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Compute the content digest of a file without storing it",
		UsageText: `contentstore digest FILE

# Check whether a payload would dedup against an existing reference
$ contentstore digest docs/index.md
`,
		ArgsUsage: "FILE",
		Before:    cli.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Run is the main function for the current command.
func (c *DigestCommand) Run(_ context.Context, cmd *cli.Command) error {
	payload, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}
	cmdhelper.Fprintf(cmd.Writer, "%s", cas.Digest(payload).String())
	return nil
}
