// Package logging builds the application's zap logger from the logging configuration
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a new logger instance. Output "file" and "both" write through a
// rotating lumberjack file; the returned closer flushes and closes it.
func New(cfg config.LoggingConfig, environment string) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoder := newEncoder(cfg.Format, environment)

	var (
		sinks  []zapcore.WriteSyncer
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	case "file", "both":
		rotating := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		closer = rotating
		sinks = append(sinks, zapcore.AddSync(rotating))
		if strings.EqualFold(cfg.Output, "both") {
			sinks = append(sinks, zapcore.Lock(os.Stdout))
		}
	default:
		return nil, nil, fmt.Errorf("invalid log output %q", cfg.Output)
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	opts := []zap.Option{zap.Fields(zap.String("environment", environment))}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...), closer, nil
}

func newEncoder(format, environment string) zapcore.Encoder {
	var encCfg zapcore.EncoderConfig
	if environment == "production" {
		encCfg = zap.NewProductionEncoderConfig()
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "timestamp"
	encCfg.CallerKey = "caller"
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if strings.EqualFold(format, "text") {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
