package config

import (
	"fmt"
	"strings"
)

// Modules lists the pause switches an operator may flip.
var Modules = []string{"platform", "vaults", "tips", "subscriptions", "withdrawals"}

var backends = map[string]bool{"memory": true, "leveldb": true, "bolt": true}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress required")
	}
	if !backends[c.Backend] {
		return fmt.Errorf("Backend %q must be one of memory, leveldb, bolt", c.Backend)
	}
	if c.Backend != "memory" && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir required for %s backend", c.Backend)
	}
	for _, module := range c.PausedModules {
		if !knownModule(module) {
			return fmt.Errorf("PausedModules: unknown module %q", module)
		}
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("rate_limit: Burst must be positive when limiting is enabled")
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.HMACSecretEnv) == "" {
		return fmt.Errorf("auth: HMACSecretEnv required when auth is enabled")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be within [0,1]")
	}
	for i, hook := range c.Webhooks {
		if strings.TrimSpace(hook.URL) == "" {
			return fmt.Errorf("webhooks[%d]: URL required", i)
		}
		if strings.TrimSpace(hook.SecretEnv) == "" {
			return fmt.Errorf("webhooks[%d]: SecretEnv required", i)
		}
	}
	for name, v := range map[string]int{
		"RPCReadHeaderTimeout": c.RPCReadHeaderTimeout,
		"RPCReadTimeout":       c.RPCReadTimeout,
		"RPCWriteTimeout":      c.RPCWriteTimeout,
		"RPCIdleTimeout":       c.RPCIdleTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func knownModule(name string) bool {
	for _, m := range Modules {
		if m == name {
			return true
		}
	}
	return false
}
