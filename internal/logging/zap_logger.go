package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Log formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ZapLogger adapts a *zap.Logger to moviedb.Logger.
// Messages are formatted with fmt before they reach zap.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger builds a production JSON logger on stderr.
// Verbose messages are emitted at debug level and only when verbose is true.
func NewZapLogger(verbose bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLogger{base: base}, nil
}

// WrapZap adapts an existing zap logger.
func WrapZap(base *zap.Logger) *ZapLogger {
	if base == nil {
		panic("zap logger cannot be nil")
	}
	return &ZapLogger{base: base}
}

// With returns a logger that attaches fields to every entry.
func (l *ZapLogger) With(fields ...zap.Field) *ZapLogger {
	return &ZapLogger{base: l.base.With(fields...)}
}

func message(format string, args []interface{}) string {
	var msg string
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	} else {
		msg = format
	}
	return strings.TrimSpace(msg)
}

// Verbose logs at debug level.
func (l *ZapLogger) Verbose(format string, args ...interface{}) {
	l.base.Debug(message(format, args))
}

// Info logs at info level.
func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.base.Info(message(format, args))
}

// Error logs at error level.
func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.base.Error(message(format, args))
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

// New returns the logger for format. An empty format means FormatText.
func New(format string, verbose bool) (moviedb.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewConsoleLogger(verbose), nil
	case FormatJSON:
		return NewZapLogger(verbose)
	default:
		return nil, fmt.Errorf("log format %q (want %s or %s): %w", format, FormatText, FormatJSON, moviedb.ErrInvalidConfig)
	}
}

var _ moviedb.Logger = (*ZapLogger)(nil)
