// Package logging builds the zap logger shared by every huct subsystem.
// Log lines go to stderr so the report on stdout stays clean.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem; it becomes the zap logger name.
type Category string

const (
	CategoryTracker Category = "tracker" // run orchestration
	CategoryFetch   Category = "fetch"   // API client and fetchers
	CategoryReport  Category = "report"  // report building and rendering
)

// Options configures New.
type Options struct {
	Level    string // debug, info, warn, error; overridden by Quiet/Verbose
	Encoding string // console (default) or json
	Quiet    bool   // errors only
	Verbose  bool   // debug
	RunID    string // attached to every line when set
	Output   io.Writer
}

// ResolveLevel picks the effective level. Quiet wins over Verbose, and both
// win over the configured level.
func ResolveLevel(level string, quiet, verbose bool) (zapcore.Level, error) {
	switch {
	case quiet:
		return zapcore.ErrorLevel, nil
	case verbose:
		return zapcore.DebugLevel, nil
	case level == "":
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level, err := ResolveLevel(opts.Level, opts.Quiet, opts.Verbose)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var enc zapcore.Encoder
	switch opts.Encoding {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log encoding %q", opts.Encoding)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), zap.NewAtomicLevelAt(level))
	logger := zap.New(core)
	if opts.RunID != "" {
		logger = logger.With(zap.String("run_id", opts.RunID))
	}
	return logger, nil
}

// For returns the child logger of a subsystem.
func For(l *zap.Logger, c Category) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.Named(string(c))
}

// NewRunID returns a fresh correlation id for one invocation.
func NewRunID() string {
	return uuid.NewString()
}
