package config

import (
	"os"
	"strings"
	"time"
)

// Logging controls the structured logger and optional file rotation.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// RateLimit bounds RPC traffic per client address. Zero disables limiting.
type RateLimit struct {
	RequestsPerMinute int `toml:"RequestsPerMinute"`
	Burst             int `toml:"Burst"`
}

// Auth enables bearer token checks on request submission.
type Auth struct {
	Enabled       bool   `toml:"Enabled"`
	HMACSecretEnv string `toml:"HMACSecretEnv"`
	Issuer        string `toml:"Issuer"`
	Audience      string `toml:"Audience"`
	ClockSkewSecs int    `toml:"ClockSkewSeconds"`
}

// Secret reads the HMAC key from the configured environment variable.
func (a Auth) Secret() []byte {
	if a.HMACSecretEnv == "" {
		return nil
	}
	return []byte(strings.TrimSpace(os.Getenv(a.HMACSecretEnv)))
}

// ClockSkew is the leeway applied to token expiry checks.
func (a Auth) ClockSkew() time.Duration {
	return time.Duration(a.ClockSkewSecs) * time.Second
}

// Telemetry configures OTLP export of traces and metrics.
type Telemetry struct {
	Traces      bool    `toml:"Traces"`
	Metrics     bool    `toml:"Metrics"`
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// Webhook forwards committed events to an external endpoint.
type Webhook struct {
	URL       string   `toml:"URL"`
	SecretEnv string   `toml:"SecretEnv"`
	Events    []string `toml:"Events"`
}

// Secret reads the signing key from the configured environment variable.
func (w Webhook) Secret() []byte {
	return []byte(strings.TrimSpace(os.Getenv(w.SecretEnv)))
}

func seconds(v int) time.Duration { return time.Duration(v) * time.Second }

// ReadHeaderTimeout and friends convert the RPC timeouts into durations.
func (c *Config) ReadHeaderTimeout() time.Duration { return seconds(c.RPCReadHeaderTimeout) }
func (c *Config) ReadTimeout() time.Duration       { return seconds(c.RPCReadTimeout) }
func (c *Config) WriteTimeout() time.Duration      { return seconds(c.RPCWriteTimeout) }
func (c *Config) IdleTimeout() time.Duration       { return seconds(c.RPCIdleTimeout) }
