package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
storage:
  data_dir: /var/lib/tinykind
backup:
  enabled: true
  dir: /var/lib/tinykind-backups
  max_count: 20
  max_age: 720h
  cron: "0 3 * * *"
message:
  max_body_len: 300
  base_url: https://tinykind.app
admin:
  token: hunter2
security:
  rate_limit:
    rps: 2.5
    burst: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
	if cfg.Backup.MaxAge.Duration() != 720*time.Hour {
		t.Fatalf("max_age = %v", cfg.Backup.MaxAge.Duration())
	}
	if cfg.Backup.MaxCount != 20 || !cfg.Backup.Enabled {
		t.Fatalf("backup config mismatch: %+v", cfg.Backup)
	}
	if cfg.Message.MaxBodyLen != 300 {
		t.Fatalf("max_body_len = %d", cfg.Message.MaxBodyLen)
	}
	if cfg.Security.RateLimit.RPS != 2.5 {
		t.Fatalf("rps = %v", cfg.Security.RateLimit.RPS)
	}
}

func TestDuration_PlainSeconds(t *testing.T) {
	path := writeConfig(t, "backup:\n  max_age: 3600\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backup.MaxAge.Duration() != time.Hour {
		t.Fatalf("plain-number max_age = %v, want 1h", cfg.Backup.MaxAge.Duration())
	}
}

func TestRecipientContactRequired_Default(t *testing.T) {
	cfg := &Config{}
	if !cfg.RecipientContactRequired() {
		t.Fatalf("contact requirement must default to true")
	}

	path := writeConfig(t, "message:\n  require_recipient_contact: false\n")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RecipientContactRequired() {
		t.Fatalf("explicit false must win over the default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TINYKIND_ADDR", "0.0.0.0:7070")
	t.Setenv("TINYKIND_DATA_DIR", "/tmp/tk-data")
	t.Setenv("TINYKIND_BACKUP_ENABLED", "yes")
	t.Setenv("TINYKIND_BACKUP_MAX_AGE", "48h")
	t.Setenv("TINYKIND_ADMIN_TOKEN", "envtoken")
	t.Setenv("TINYKIND_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := &Config{}
	if !LoadEnvOverrides(cfg) {
		t.Fatalf("expected env usage to be reported")
	}
	if cfg.Addr() != "0.0.0.0:7070" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
	if cfg.Storage.DataDir != "/tmp/tk-data" {
		t.Fatalf("data dir = %q", cfg.Storage.DataDir)
	}
	if !cfg.Backup.Enabled || cfg.Backup.MaxAge.Duration() != 48*time.Hour {
		t.Fatalf("backup env overrides not applied: %+v", cfg.Backup)
	}
	if cfg.Admin.Token != "envtoken" {
		t.Fatalf("admin token = %q", cfg.Admin.Token)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 2 || cfg.Security.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", cfg.Security.CORS.AllowedOrigins)
	}
}

func TestLoadEffective_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
storage:
  data_dir: /from/config
`)
	t.Setenv("TINYKIND_DATA_DIR", "/from/env")

	// flag-set addr wins over both; env data dir wins over config
	eff, err := LoadEffective(Flags{
		Addr:   ":6060",
		Data:   "./data",
		Config: path,
		Set:    map[string]bool{"addr": true, "config": true},
	})
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if eff.Addr != ":6060" {
		t.Fatalf("addr = %q, want flag value", eff.Addr)
	}
	if eff.DataDir != "/from/env" {
		t.Fatalf("data dir = %q, want env value", eff.DataDir)
	}
	for _, want := range []string{"config", "env", "flags"} {
		if !strings.Contains(eff.Source, want) {
			t.Fatalf("source %q missing %q", eff.Source, want)
		}
	}
}

func TestLoadEffective_MissingFileUsesDefaults(t *testing.T) {
	eff, err := LoadEffective(Flags{
		Addr:   ":8080",
		Data:   "./data",
		Config: filepath.Join(t.TempDir(), "nosuch.yaml"),
		Set:    map[string]bool{},
	})
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if eff.DataDir != "./data" {
		t.Fatalf("data dir = %q", eff.DataDir)
	}
}
