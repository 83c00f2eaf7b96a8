// Command jasmin-lsp is a Language Server Protocol server for the Jasmin
// assembly-like language.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// version is overwritten at build time via -ldflags.
var version = "dev"

func main() {
	app := &cli.Command{
		Name:  "jasmin-lsp",
		Usage: "Language Server Protocol server for Jasmin",
		Commands: []*cli.Command{
			serveCommand(),
			versionCommand(),
			statusCommand(),
		},
		// No args and no subcommand given: behave like `serve`.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serveAction(ctx, cmd)
		},
		Flags: serveFlags(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
