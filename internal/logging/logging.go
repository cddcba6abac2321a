// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"fmt"
	"time"

	"github.com/blinklabs-io/hdrcheck/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger = zap.SugaredLogger

var globalLogger *Logger

// Setup builds the global logger from the logging config
func Setup() error {
	cfg := config.GetConfig().Logging
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(
		time.RFC3339,
	)
	switch cfg.Format {
	case "", config.LoggingFormatJSON:
	case config.LoggingFormatConsole:
		loggerConfig.Encoding = "console"
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return fmt.Errorf("unknown logging format: %s", cfg.Format)
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("error configuring logger: %w", err)
		}
		loggerConfig.Level.SetLevel(level)
	}
	l, err := loggerConfig.Build()
	if err != nil {
		return err
	}
	globalLogger = l.Sugar()
	return nil
}

// GetLogger returns the global logger, or a no-op logger if Setup has not
// been called
func GetLogger() *Logger {
	if globalLogger == nil {
		return zap.NewNop().Sugar()
	}
	return globalLogger
}

func GetDesugaredLogger() *zap.Logger {
	return GetLogger().Desugar()
}

// GetNetworkLogger returns a logger that tags every entry with the network name
func GetNetworkLogger(network string) *Logger {
	return GetLogger().With("network", network)
}
