package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alferrante/tinykind/pkg/config"
)

func effFor(t *testing.T) config.Effective {
	t.Helper()
	return config.Effective{Config: &config.Config{}, DataDir: t.TempDir()}
}

func TestValidateConfig_EmptyDataDir(t *testing.T) {
	eff := effFor(t)
	eff.DataDir = ""
	err := validateConfig(eff)
	if err == nil || !strings.Contains(err.Error(), "data directory is empty") {
		t.Fatalf("expected empty-data-dir error, got %v", err)
	}
}

func TestValidateConfig_TLSPairing(t *testing.T) {
	eff := effFor(t)
	eff.Config.Server.TLS.CertFile = "/some/cert.pem"
	if err := validateConfig(eff); err == nil || !strings.Contains(err.Error(), "incomplete TLS") {
		t.Fatalf("expected incomplete-TLS error, got %v", err)
	}

	// both set but unreadable
	eff.Config.Server.TLS.KeyFile = "/some/key.pem"
	if err := validateConfig(eff); err == nil || !strings.Contains(err.Error(), "not accessible") {
		t.Fatalf("expected not-accessible error, got %v", err)
	}

	// both set and readable
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(cert, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(key, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	eff.Config.Server.TLS.CertFile = cert
	eff.Config.Server.TLS.KeyFile = key
	if err := validateConfig(eff); err != nil {
		t.Fatalf("valid TLS pair rejected: %v", err)
	}
}

func TestValidateConfig_BackupDirSeparation(t *testing.T) {
	eff := effFor(t)
	eff.Config.Backup.Dir = eff.DataDir
	if err := validateConfig(eff); err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected backup-dir separation error, got %v", err)
	}

	eff.Config.Backup.Dir = filepath.Join(eff.DataDir, "backups")
	if err := validateConfig(eff); err != nil {
		t.Fatalf("nested backup dir rejected: %v", err)
	}
}

func TestBackupDir_Default(t *testing.T) {
	eff := effFor(t)
	want := filepath.Join(eff.DataDir, "backups")
	if got := backupDir(eff); got != want {
		t.Fatalf("backupDir = %q, want %q", got, want)
	}

	eff.Config.Backup.Dir = "/explicit"
	if got := backupDir(eff); got != "/explicit" {
		t.Fatalf("explicit backup dir ignored, got %q", got)
	}
}
