package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Indexer captures the runtime settings for the read-model indexer.
type Indexer struct {
	AuditDB      string        `yaml:"audit_db"`
	DSN          string        `yaml:"dsn"`
	Listen       string        `yaml:"listen"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	LogLevel     string        `yaml:"log_level"`
	Environment  string        `yaml:"environment"`
}

// LoadIndexer reads the YAML indexer configuration from disk.
func LoadIndexer(path string) (Indexer, error) {
	cfg := Indexer{
		Listen:       ":8090",
		PollInterval: 2 * time.Second,
		BatchSize:    500,
		LogLevel:     "info",
		Environment:  "dev",
	}
	if path == "" {
		return cfg, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Indexer{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if strings.TrimSpace(cfg.AuditDB) == "" {
		return cfg, fmt.Errorf("audit_db is required")
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return cfg, fmt.Errorf("dsn is required")
	}
	return cfg, nil
}
