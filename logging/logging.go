// Package logging builds the dual-sink structured logger every component
// logs through: one sink is the LSP client's window/logMessage
// notification, the other is a session log file on disk. Both are gated by
// a single configurable zap level.
//
// Grounded on the teacher's lsp.NewLSPLogger, which tees an LSP-notification
// zapcore.Core with a stderr core; this version replaces the stderr
// fallback with a file sink (the session log path described in the wire
// protocol) and keeps the async, non-blocking delivery queue so a slow or
// disconnected client never stalls a log call.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the dual-sink logger. logFilePath may be empty, in which case
// the second sink writes to stderr instead of a file.
func New(client protocol.Client, level zapcore.Level, logFilePath string) (*zap.Logger, func(), error) {
	fileCore, closeFile, err := fileSink(level, logFilePath)
	if err != nil {
		return nil, nil, err
	}

	lspCore := newLSPCore(client, level)
	tee := zapcore.NewTee(lspCore, fileCore)

	closer := func() {
		lspCore.stop()
		closeFile()
	}

	return zap.New(tee), closer, nil
}

// sessionEncoderConfig produces the wire protocol's required line shape:
// each entry prefixed with "[LOG HH:MM:SS]".
func sessionEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[LOG " + t.Format("15:04:05") + "]")
	}
	return cfg
}

func fileSink(level zapcore.Level, path string) (zapcore.Core, func(), error) {
	encoder := zapcore.NewConsoleEncoder(sessionEncoderConfig())

	if path == "" {
		return zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: opening log file %s: %w", path, err)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(f), level)
	return core, func() { _ = f.Close() }, nil
}

// lspCore is a zapcore.Core that forwards entries to the LSP client via
// window/logMessage, asynchronously so a blocked or disconnected client
// never backs up a logging call.
type lspCore struct {
	client  protocol.Client
	level   zapcore.Level
	encoder zapcore.Encoder
	fields  []zapcore.Field

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	queue    chan logEntry
	stopOnce sync.Once
}

type logEntry struct {
	kind    protocol.MessageType
	message string
}

func newLSPCore(client protocol.Client, level zapcore.Level) *lspCore {
	ctx, cancel := context.WithCancel(context.Background())
	c := &lspCore{
		client: client,
		level:  level,
		encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey:     "msg",
			NameKey:        "logger",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan logEntry, 100),
	}
	go c.drain()
	return c
}

func (c *lspCore) drain() {
	for {
		select {
		case e := <-c.queue:
			_ = c.client.LogMessage(c.ctx, &protocol.LogMessageParams{Type: e.kind, Message: e.message})
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *lspCore) stop() {
	c.stopOnce.Do(c.cancel)
}

func (c *lspCore) Enabled(level zapcore.Level) bool { return level >= c.level }

func (c *lspCore) With(fields []zapcore.Field) zapcore.Core {
	return &lspCore{
		client:  c.client,
		level:   c.level,
		encoder: c.encoder.Clone(),
		fields:  append(append([]zapcore.Field{}, c.fields...), fields...),
		ctx:     c.ctx,
		cancel:  c.cancel,
		queue:   c.queue,
	}
}

func (c *lspCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *lspCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	c.mu.Lock()
	buf, err := c.encoder.EncodeEntry(entry, append(append([]zapcore.Field{}, c.fields...), fields...))
	c.mu.Unlock()
	if err != nil {
		return err
	}
	message := strings.TrimSpace(buf.String())
	buf.Free()

	select {
	case c.queue <- logEntry{kind: messageType(entry.Level), message: message}:
	default:
		// Queue saturated; drop rather than block the caller.
	}
	return nil
}

func (c *lspCore) Sync() error { return nil }

func messageType(level zapcore.Level) protocol.MessageType {
	switch level {
	case zapcore.DebugLevel:
		return protocol.MessageTypeLog
	case zapcore.WarnLevel:
		return protocol.MessageTypeWarning
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return protocol.MessageTypeError
	default:
		return protocol.MessageTypeInfo
	}
}
