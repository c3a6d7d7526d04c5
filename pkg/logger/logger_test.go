package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobprep_backend/internal/config"

	"go.uber.org/zap"
)

func TestSetModeSwitchesLevel(t *testing.T) {
	SetMode("debug")
	if Level() != zap.DebugLevel {
		t.Fatalf("debug mode: got=%v", Level())
	}
	SetMode("release")
	if Level() != zap.InfoLevel {
		t.Fatalf("release mode: got=%v", Level())
	}
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	Log.Info("noop logger accepts writes", zap.String("k", "v"))
}

func TestInitLoggerWritesJSONFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() {
		Log = prev
		SetMode("release")
	})

	file := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.Log = config.LogConfig{File: file, MaxSizeMB: 1}

	InitLogger(cfg)
	Log.Debug("hidden in release mode")
	Log.Info("cv saved", zap.Uint("cv_id", 3))
	_ = Log.Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"cv saved"`) || !strings.Contains(out, `"cv_id":3`) {
		t.Fatalf("missing entry: %s", out)
	}
	if strings.Contains(out, "hidden in release mode") {
		t.Fatalf("debug entry written in release mode: %s", out)
	}
}
