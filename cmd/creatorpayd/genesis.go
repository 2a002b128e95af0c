package main

import (
	"fmt"
	"strings"

	"creatorpay/core/genesis"
	"creatorpay/core/state"
	"creatorpay/storage"
)

type envLookupFunc func(string) (string, bool)

// resolveGenesisPath picks the genesis file from the CLI flag, then the
// environment, then the config file. An empty result means none was given.
func resolveGenesisPath(cliPath, cfgPath string, lookup envLookupFunc) string {
	if trimmed := strings.TrimSpace(cliPath); trimmed != "" {
		return trimmed
	}
	if lookup != nil {
		if value, ok := lookup(genesisPathEnv); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return strings.TrimSpace(cfgPath)
}

// bootstrapState checks the schema version and seeds an empty store from the
// genesis file. A store that already carries state ignores the genesis file.
func bootstrapState(db storage.Database, genesisPath, network string, allowMigrate bool, now int64) (bool, error) {
	if err := state.EnsureStateVersion(db, allowMigrate); err != nil {
		return false, err
	}
	_, initialised, err := state.NewManager(db).StateVersion()
	if err != nil {
		return false, err
	}
	if initialised {
		return false, nil
	}
	if genesisPath == "" {
		return false, fmt.Errorf("state store is empty; supply a genesis file via --genesis, %s, or config GenesisFile", genesisPathEnv)
	}
	spec, err := genesis.LoadSpec(genesisPath)
	if err != nil {
		return false, err
	}
	if spec.Network != network {
		return false, fmt.Errorf("genesis network %q does not match configured network %q", spec.Network, network)
	}
	return genesis.Apply(spec, db, now)
}
