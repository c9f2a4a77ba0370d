package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	Data   string
	Config string
	Set    map[string]bool
}

// Effective is the merged result of flags, config file, and environment.
type Effective struct {
	Config  *Config
	Addr    string
	DataDir string
	Source  string // comma-joined subset of "flags", "config", "env"
}

// ParseCommandFlags parses command-line flags and returns them as a Flags struct.
func ParseCommandFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dataPtr := flag.String("data", "./data", "Data directory for the primary document")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, Data: *dataPtr, Config: *cfgPtr, Set: setFlags}
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the environment variable TINYKIND_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("TINYKIND_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// Load parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadEnvOverrides applies TINYKIND_* environment overrides onto cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("TINYKIND_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("TINYKIND_DATA_DIR"); v != "" {
		envUsed = true
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("TINYKIND_BACKUP_DIR"); v != "" {
		envUsed = true
		cfg.Backup.Dir = v
	}
	if v := os.Getenv("TINYKIND_BACKUP_ENABLED"); v != "" {
		envUsed = true
		cfg.Backup.Enabled = truthy(v)
	}
	if v := os.Getenv("TINYKIND_BACKUP_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Backup.MaxCount = n
		}
	}
	if v := os.Getenv("TINYKIND_BACKUP_MAX_AGE"); v != "" {
		if td, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Backup.MaxAge = Duration(td)
		}
	}
	if v := os.Getenv("TINYKIND_BASE_URL"); v != "" {
		envUsed = true
		cfg.Message.BaseURL = v
	}
	if v := os.Getenv("TINYKIND_MAX_BODY_LEN"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Message.MaxBodyLen = n
		}
	}
	if v := os.Getenv("TINYKIND_ADMIN_TOKEN"); v != "" {
		envUsed = true
		cfg.Admin.Token = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		envUsed = true
		cfg.Notify.ResendAPIKey = v
	}
	if v := os.Getenv("TINYKIND_REACTION_FROM_EMAIL"); v != "" {
		envUsed = true
		cfg.Notify.FromEmail = v
	}
	if v := os.Getenv("TINYKIND_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("TINYKIND_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("TINYKIND_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TINYKIND_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective merges the config file, env overrides, and explicit flags
// into the effective runtime configuration. Flags win over env, env wins
// over file values.
func LoadEffective(flags Flags) (Effective, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])

	var srcs []string
	cfg, err := Load(cfgPath)
	switch {
	case err == nil:
		srcs = append(srcs, "config")
	case os.IsNotExist(err):
		cfg = &Config{}
	default:
		return Effective{}, err
	}

	if LoadEnvOverrides(cfg) {
		srcs = append(srcs, "env")
	}

	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
	}
	dataDir := cfg.Storage.DataDir
	if flags.Set["data"] || dataDir == "" {
		dataDir = flags.Data
	}
	if len(flags.Set) > 0 {
		srcs = append(srcs, "flags")
	}
	if len(srcs) == 0 {
		srcs = append(srcs, "defaults")
	}

	return Effective{Config: cfg, Addr: addr, DataDir: dataDir, Source: strings.Join(srcs, ", ")}, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
