package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the jasmin-lsp version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Println("jasmin-lsp " + version)
			return nil
		},
	}
}
