package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		format       string
		wantLevel    zapcore.Level
		wantEncoding string
	}{
		{"defaults", "", "", zapcore.InfoLevel, "console"},
		{"debug console", "debug", FormatConsole, zapcore.DebugLevel, "console"},
		{"warn json", "warn", FormatJSON, zapcore.WarnLevel, "json"},
		{"invalid level", "loud", FormatJSON, zapcore.InfoLevel, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config(tt.level, tt.format)
			if cfg.Level.Level() != tt.wantLevel {
				t.Errorf("level = %v, want %v", cfg.Level.Level(), tt.wantLevel)
			}
			if cfg.Encoding != tt.wantEncoding {
				t.Errorf("encoding = %q, want %q", cfg.Encoding, tt.wantEncoding)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvFormat, FormatJSON)

	logger, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be disabled at error level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled")
	}
}
