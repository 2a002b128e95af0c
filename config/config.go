package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRPCAddress  = ":8080"
	DefaultDataDir     = "./creatorpay-data"
	DefaultNetworkName = "creatorpay-local"
	DefaultBackend     = "leveldb"
)

type Config struct {
	RPCAddress    string   `toml:"RPCAddress"`
	DataDir       string   `toml:"DataDir"`
	Backend       string   `toml:"Backend"`
	AuditDB       string   `toml:"AuditDB"`
	GenesisFile   string   `toml:"GenesisFile"`
	NetworkName   string   `toml:"NetworkName"`
	Environment   string   `toml:"Environment"`
	PausedModules []string `toml:"PausedModules"`

	RPCReadHeaderTimeout int `toml:"RPCReadHeaderTimeout"`
	RPCReadTimeout       int `toml:"RPCReadTimeout"`
	RPCWriteTimeout      int `toml:"RPCWriteTimeout"`
	RPCIdleTimeout       int `toml:"RPCIdleTimeout"`

	Logging   Logging   `toml:"logging"`
	RateLimit RateLimit `toml:"rate_limit"`
	Auth      Auth      `toml:"auth"`
	Telemetry Telemetry `toml:"telemetry"`
	Webhooks  []Webhook `toml:"webhooks"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration a fresh node starts with.
func Default() *Config {
	return &Config{
		RPCAddress:           DefaultRPCAddress,
		DataDir:              DefaultDataDir,
		Backend:              DefaultBackend,
		NetworkName:          DefaultNetworkName,
		Environment:          "dev",
		PausedModules:        []string{},
		RPCReadHeaderTimeout: 5,
		RPCReadTimeout:       15,
		RPCWriteTimeout:      15,
		RPCIdleTimeout:       60,
		Logging:              Logging{Level: "info", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28},
		RateLimit:            RateLimit{RequestsPerMinute: 600, Burst: 60},
		Auth:                 Auth{HMACSecretEnv: "CREATORPAY_RPC_JWT_SECRET", Issuer: "creatorpay"},
		Telemetry:            Telemetry{Endpoint: "localhost:4318", Insecure: true, SampleRatio: 1},
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.NetworkName) == "" {
		c.NetworkName = DefaultNetworkName
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = DefaultBackend
	}
	if c.PausedModules == nil {
		c.PausedModules = []string{}
	}
}

// StatePath is where the settlement state backend lives.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state")
}

// AuditPath is the audit log database, defaulting to a file under DataDir.
func (c *Config) AuditPath() string {
	if c.AuditDB != "" {
		return c.AuditDB
	}
	return filepath.Join(c.DataDir, "audit.db")
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
