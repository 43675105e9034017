// Package main is the entry of the application.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/docbay/contentstore/pkg/cmdhelper"
	"github.com/docbay/contentstore/pkg/commands"
)

func main() {
	store := commands.NewStoreOptions()
	app := cli.Command{
		Name:                  "contentstore",
		Usage:                 "contentstore is a content-addressable store for immutable artifacts",
		Suggest:               true,
		EnableShellCompletion: true,
		HideVersion:           true,
		HideHelpCommand:       true,
		Flags:                 store.Flags(),
		Commands: []*cli.Command{
			commands.NewVersionCommand().ToCLI(),
			commands.NewPutCommand(store).ToCLI(),
			commands.NewGetCommand(store).ToCLI(),
			commands.NewStatCommand(store).ToCLI(),
			commands.NewDigestCommand().ToCLI(),
		},
		ExitErrHandler: func(ctx context.Context, c *cli.Command, err error) {
			cli.HandleExitCoder(err)
			cmdhelper.Fprintf(c.ErrWriter, "Error: %+v\n", err)
			os.Exit(1)
		},
	}
	//nolint:errcheck // already checked in root command ExitErrHandler
	_ = app.Run(context.Background(), os.Args)
}
