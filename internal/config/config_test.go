package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "files")
	dir := writeConfig(t, `
server:
  mode: debug
jwt:
  secret: dev-secret
storage:
  type: local
  local_path: `+uploads+`
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWT.ExpireTime != 168*time.Hour {
		t.Fatalf("jwt expiry: got=%v want=%v", cfg.JWT.ExpireTime, 168*time.Hour)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Fatalf("bcrypt cost: got=%d want=12", cfg.Security.BcryptCost)
	}
	if cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Fatalf("upload limit: got=%d", cfg.Upload.MaxBytes)
	}
	if cfg.AI.Provider != "anthropic" || cfg.AI.Model != "claude-3-haiku-20240307" {
		t.Fatalf("ai defaults: got=%+v", cfg.AI)
	}
	if cfg.AI.Timeout() != 120*time.Second {
		t.Fatalf("ai timeout: got=%v", cfg.AI.Timeout())
	}
	if cfg.Cache.CVDraftTTL() != 30*time.Minute {
		t.Fatalf("draft ttl: got=%v", cfg.Cache.CVDraftTTL())
	}
	if cfg.Redis.PoolSize != 20 || cfg.Tracing.SampleRatio != 1 {
		t.Fatalf("redis/tracing defaults: pool=%d ratio=%v", cfg.Redis.PoolSize, cfg.Tracing.SampleRatio)
	}
	if cfg.Log.File != "logs/app.log" || cfg.Log.MaxBackups != 5 {
		t.Fatalf("log defaults: got=%+v", cfg.Log)
	}
	if !strings.HasSuffix(cfg.ConfigFile, "config.yaml") {
		t.Fatalf("config file: got=%q", cfg.ConfigFile)
	}
	if _, err := os.Stat(uploads); err != nil {
		t.Fatalf("upload dir not created: %v", err)
	}
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: short
storage:
  type: minio
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for short release secret")
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
