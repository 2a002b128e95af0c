package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorpay/crypto"
	"creatorpay/storage"
)

func TestResolveGenesisPathPrecedence(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key != genesisPathEnv {
			t.Fatalf("unexpected lookup key: %s", key)
		}
		return "env-path", true
	}

	if got := resolveGenesisPath(" cli-path ", "cfg-path", lookup); got != "cli-path" {
		t.Fatalf("cli flag should win, got %q", got)
	}
	if got := resolveGenesisPath("", "cfg-path", lookup); got != "env-path" {
		t.Fatalf("environment should override config, got %q", got)
	}
	blank := func(string) (string, bool) { return " \t", true }
	if got := resolveGenesisPath("", " cfg-path ", blank); got != "cfg-path" {
		t.Fatalf("config should be used last, got %q", got)
	}
	if got := resolveGenesisPath("", "", nil); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func writeGenesis(t *testing.T, network string) string {
	t.Helper()
	var fan [20]byte
	fan[19] = 7
	body := `{"network": "` + network + `", "alloc": {"` + crypto.Format(fan) + `": "1000"}}`
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write genesis: %v", err)
	}
	return path
}

func TestBootstrapStateAppliesGenesisOnce(t *testing.T) {
	db := storage.NewMemDB()
	path := writeGenesis(t, "devnet")

	applied, err := bootstrapState(db, path, "devnet", false, 1_700_000_000)
	if err != nil || !applied {
		t.Fatalf("first bootstrap: applied=%v err=%v", applied, err)
	}
	applied, err = bootstrapState(db, "", "devnet", false, 1_700_000_100)
	if err != nil || applied {
		t.Fatalf("initialised store should skip genesis: applied=%v err=%v", applied, err)
	}
}

func TestBootstrapStateRequiresGenesisForEmptyStore(t *testing.T) {
	_, err := bootstrapState(storage.NewMemDB(), "", "devnet", false, 0)
	if err == nil || !strings.Contains(err.Error(), genesisPathEnv) {
		t.Fatalf("expected missing genesis error, got %v", err)
	}
}

func TestBootstrapStateRejectsForeignNetwork(t *testing.T) {
	path := writeGenesis(t, "mainnet")
	if _, err := bootstrapState(storage.NewMemDB(), path, "devnet", false, 0); err == nil {
		t.Fatalf("expected network mismatch error")
	}
}
