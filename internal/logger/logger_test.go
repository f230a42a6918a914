package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	// The zero state must be usable by packages that log without setup.
	Debug("debug", zap.Int("n", 1))
	Info("info")
	Warn("warn")
	Named("loader").Info("named")
	Sync()
}

func TestFileOutput(t *testing.T) {
	for _, jsonOut := range []bool{false, true} {
		name := "console"
		if jsonOut {
			name = "json"
		}
		t.Run(name, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "stage.log")
			err := InitWithOptions(Options{
				Level: "debug",
				JSON:  jsonOut,
				File:  FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 1},
			})
			if err != nil {
				t.Fatalf("InitWithOptions: %v", err)
			}
			t.Cleanup(func() { _ = InitWithOptions(Options{}) })

			Debug("asset staged", zap.String("source", "tile.glb"), zap.Int("models", 3))
			Named("watch").Warn("reload failed")
			Sync()

			data, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("reading log: %v", err)
			}
			out := string(data)
			for _, want := range []string{"asset staged", "tile.glb", "reload failed", "watch"} {
				if !strings.Contains(out, want) {
					t.Errorf("log output missing %q:\n%s", want, out)
				}
			}
			if jsonOut && !strings.Contains(out, `"models":3`) {
				t.Errorf("expected JSON fields:\n%s", out)
			}
		})
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := InitWithOptions(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
