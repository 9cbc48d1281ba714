package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and the optional rotating log file.
type Options struct {
	Level string
	File  string
}

// EncoderConfig is the production config with capital levels and ISO8601 times.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// ParseLevel maps a LOG_LEVEL value to a zap level. Unknown values mean info.
func ParseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the service logger. It writes JSON to stdout and, when File is
// set, to a rotating file as well. Close the returned io.Closer on shutdown.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	return newWithStdout(opts, zapcore.Lock(os.Stdout))
}

func newWithStdout(opts Options, stdout zapcore.WriteSyncer) (*zap.Logger, io.Closer, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	encoder := zapcore.NewJSONEncoder(EncoderConfig())

	cores := []zapcore.Core{zapcore.NewCore(encoder, stdout, level)}
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:  opts.File,
			MaxSize:   200, // megabytes
			LocalTime: true,
			Compress:  true,
		}
		// Fail early on an unwritable path instead of losing logs silently.
		if _, err := rotator.Write(nil); err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
		closer = rotator
	}

	stackTraceLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.DPanicLevel
	})
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(stackTraceLevel))
	return logger, closer, nil
}
