package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urfave/cli/v3"

	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/config"
	"github.com/jasmin-lang/jasmin-lsp/logging"
	"github.com/jasmin-lang/jasmin-lsp/lsp"
	"github.com/jasmin-lang/jasmin-lsp/state"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace logging (very verbose)",
		},
		&cli.StringFlag{
			Name:  "logfile",
			Usage: "session log file path (default: $HOME/.jasmin-lsp/jasmin-lsp-<timestamp>.log)",
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the language server over stdio (default command)",
		Flags:  serveFlags(),
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.InfoLevel
	if cmd.Bool("debug") || cmd.Bool("trace") {
		level = zapcore.DebugLevel
	}

	logPath := cmd.String("logfile")
	if logPath == "" {
		logPath = logging.SessionLogPath(time.Now())
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	pool, err := cst.NewParserPool()
	if err != nil {
		return err
	}

	workspaceRoot := ""
	var masterFromConfig string
	if cfgPath, err := config.Find(cwd); err == nil {
		if cfg, err := config.LoadFile(cfgPath); err == nil {
			masterFromConfig = config.ResolveRoot(cfgPath, cfg)
		}
	}

	st := state.New(pool, workspaceRoot)
	// The file-based root is a default; workspace/configuration and the
	// jasmin/setMasterFile notification can still override it once the
	// connection is up, per the "LSP-provided configuration always wins"
	// rule.
	if masterFromConfig != "" {
		st.SetMasterFile(masterFromConfig)
	}

	stream := jsonrpc2.NewStream(&readWriteCloser{os.Stdin, os.Stdout})
	conn := jsonrpc2.NewConn(stream)

	startupLogger, err := zap.NewDevelopment()
	if err != nil {
		startupLogger = zap.NewNop()
	}
	client := protocol.ClientDispatcher(conn, startupLogger)

	logger, closeLogger, err := logging.New(client, level, logPath)
	if err != nil {
		return err
	}
	defer closeLogger()

	logger.Info(logging.SessionStartMarker)
	defer logger.Info(logging.SessionEndMarker)

	srv := lsp.NewServer(st, logger)
	handler := srv.Attach(conn, client)
	conn.Go(ctx, handler)

	<-conn.Done()

	if err := conn.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// readWriteCloser wraps separate stdin/stdout readers/writers into a single
// io.ReadWriteCloser, the shape jsonrpc2.NewStream expects.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
