package main

import (
	"context"
	"fmt"
	"os"

	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simplesurance/prflow/internal/cfg"
)

func logEncoderConfig(timeKey string) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()

	ec.LevelKey = "loglevel"
	ec.TimeKey = timeKey
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	return ec
}

// newLogger creates a logger that writes to stderr, stdout is reserved for
// results.
func newLogger(config *cfg.Config, verbose bool) (*zap.Logger, error) {
	level := zapcore.DebugLevel
	if !verbose {
		if err := level.Set(config.LogLevel); err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
	}

	ec := logEncoderConfig(config.LogTimeKey)

	var enc zapcore.Encoder
	switch config.LogFormat {
	case cfg.LogFormatLogfmt:
		enc = zaplogfmt.NewEncoder(ec)
	case cfg.LogFormatConsole:
		enc = zapcore.NewConsoleEncoder(ec)
	case cfg.LogFormatJSON:
		enc = zapcore.NewJSONEncoder(ec)
	default:
		return nil, fmt.Errorf("log_format: unsupported value %q", config.LogFormat)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)), nil
}

// mustInitLogger replaces the global logger, logs are flushed by the exit
// handler.
func mustInitLogger(config *cfg.Config, verbose bool) {
	l, err := newLogger(config, verbose)
	exitOnErr("could not initialize logger", err)

	logger = l.Named("main")
	zap.ReplaceGlobals(l)

	goodbye.Register(func(context.Context, os.Signal) {
		// syncing stderr fails with EINVAL on some platforms
		_ = l.Sync()
	})
}
