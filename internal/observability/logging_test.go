package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/desivolt/muzdesk/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "upper case warn", level: "WARN", wantDebug: false, wantInfo: false},
		{name: "unknown falls back to info", level: "chatty", wantDebug: false, wantInfo: true},
		{name: "empty falls back to info", level: "", wantDebug: false, wantInfo: true},
	}

	app := config.AppConfig{Name: "muzdesk", Env: "development", Version: "test"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(config.LoggerConfig{Level: tt.level, Format: "json"}, app)
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			defer func() { _ = logger.Sync() }()

			core := logger.Core()
			if got := core.Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := core.Enabled(zapcore.InfoLevel); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNewLogger_ConsoleInProduction(t *testing.T) {
	app := config.AppConfig{Name: "muzdesk", Env: "production", Version: "1.0.0"}
	logger, err := NewLogger(config.LoggerConfig{Level: "info", Format: "console"}, app)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	_ = logger.Sync()
}

func TestEncoderSelection(t *testing.T) {
	tests := []struct {
		format   string
		encoding string
	}{
		{format: "console", encoding: "console"},
		{format: "Console", encoding: "console"},
		{format: "json", encoding: "json"},
		{format: "", encoding: "json"},
		{format: "logfmt", encoding: "json"},
	}
	for _, tt := range tests {
		if got := encoding(tt.format); got != tt.encoding {
			t.Errorf("encoding(%q) = %q, want %q", tt.format, got, tt.encoding)
		}
	}

	if encoderConfig("json").EncodeLevel == nil || encoderConfig("console").EncodeLevel == nil {
		t.Fatal("level encoder must be set for every format")
	}
}

func TestIsProduction(t *testing.T) {
	for env, want := range map[string]bool{
		"production":  true,
		"PROD":        true,
		"development": false,
		"":            false,
	} {
		if got := isProduction(env); got != want {
			t.Errorf("isProduction(%q) = %v, want %v", env, got, want)
		}
	}
}
