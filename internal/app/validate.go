package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alferrante/tinykind/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.Effective) error {
	// data dir must be present
	if eff.DataDir == "" {
		return fmt.Errorf("data directory is empty: set --data flag, TINYKIND_DATA_DIR env, or storage.data_dir in config")
	}

	// TLS cert/key presence check if one is set
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	// snapshots must not land in the data dir itself, or the pruner would
	// race the primary document
	if d := eff.Config.Backup.Dir; d != "" {
		if filepath.Clean(d) == filepath.Clean(eff.DataDir) {
			return fmt.Errorf("backup.dir must differ from storage.data_dir")
		}
	}

	return nil
}
