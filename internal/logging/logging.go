// Package logging builds the zap loggers used by the command line tools
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLevel  = "LOG_LEVEL"
	EnvFormat = "LOG_FORMAT"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config builds the zap configuration for level and format. Unknown levels fall
// back to info. The json format uses the production config, anything else the
// development config with colored level names.
func Config(level, format string) zap.Config {
	var cfg zap.Config
	if format == FormatJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg
}

// New builds a logger for level and format
func New(level, format string) (*zap.Logger, error) {
	return Config(level, format).Build()
}

// FromEnv builds a logger from LOG_LEVEL and LOG_FORMAT
func FromEnv() (*zap.Logger, error) {
	return New(os.Getenv(EnvLevel), os.Getenv(EnvFormat))
}
