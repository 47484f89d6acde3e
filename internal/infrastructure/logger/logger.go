package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and sink of the service logger.
// Output is "stdout", "stderr" or a file path opened for append.
type Config struct {
	Level  string
	Format string // json or console
	Output string
}

// New builds the service logger. A nil cfg logs info and above to
// stdout in console form.
func New(cfg *Config) (*zap.Logger, error) {
	c := Config{Level: "info", Format: "console", Output: "stdout"}
	if cfg != nil {
		c = *cfg
	}
	switch out := strings.ToLower(c.Output); out {
	case "", "stdout":
		c.Output = "stdout"
	case "stderr":
		c.Output = out
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	encoding := "json"
	if c.Format == "console" {
		encoding = "console"
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(c.Level)),
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      []string{c.Output},
		ErrorOutputPaths: []string{"stderr"},
	}

	log, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger for %q: %w", c.Output, err)
	}
	return log, nil
}

// ParseLevel maps a level name to zap, accepting "warning" and falling
// back to info for anything unknown.
func ParseLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
