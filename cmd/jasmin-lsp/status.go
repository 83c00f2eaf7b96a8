package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jasmin-lang/jasmin-lsp/statusui"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "tail a running server's session log",
		ArgsUsage: "[logfile]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var logPath string
			if cmd.Args().Len() > 0 {
				logPath = cmd.Args().Get(0)
			}
			if logPath == "" {
				return fmt.Errorf("status: no log file given; pass the path given to `serve --logfile`, or the one under $HOME/.jasmin-lsp/")
			}
			return statusui.Run(ctx, logPath, os.Stdout)
		},
	}
}
