package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"creatorpay/core/state"
	"creatorpay/crypto"
	"creatorpay/storage"
)

func account(b byte) string {
	var raw [20]byte
	raw[19] = b
	return crypto.Format(raw)
}

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write genesis: %v", err)
	}
	return path
}

func TestApplySeedsBalancesAndPlatform(t *testing.T) {
	body := `{
		"network": "devnet",
		"alloc": {"` + account(2) + `": "1000", "` + account(1) + `": "50"},
		"platform": {"authority": "` + account(9) + `", "feeRecipient": "` + account(8) + `", "feeBasisPoints": 200}
	}`
	spec, err := LoadSpec(writeSpec(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	allocs := spec.Allocations()
	if len(allocs) != 2 || allocs[0].Amount != 50 {
		t.Fatalf("allocations not sorted by address: %+v", allocs)
	}

	db := storage.NewMemDB()
	applied, err := Apply(spec, db, 1_700_000_000)
	if err != nil || !applied {
		t.Fatalf("apply: %v applied=%v", err, applied)
	}
	mgr := state.NewManager(db)
	var two [20]byte
	two[19] = 2
	if bal, _ := mgr.Balance(two); bal != 1000 {
		t.Fatalf("unexpected balance %d", bal)
	}
	cfg, ok, err := mgr.PaymentsPlatformGet()
	if err != nil || !ok || cfg.FeeBasisPoints != 200 {
		t.Fatalf("platform not seeded: %+v %v %v", cfg, ok, err)
	}

	again, err := Apply(spec, db, 1_700_000_001)
	if err != nil || again {
		t.Fatalf("second apply should be a no-op: %v applied=%v", err, again)
	}
	if bal, _ := mgr.Balance(two); bal != 1000 {
		t.Fatalf("balance credited twice: %d", bal)
	}
}

func TestLoadSpecRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"missing network": `{"alloc": {}}`,
		"bad address":     `{"network": "devnet", "alloc": {"nope": "1"}}`,
		"bad amount":      `{"network": "devnet", "alloc": {"` + account(1) + `": "-5"}}`,
		"fee too high":    `{"network": "devnet", "platform": {"authority": "` + account(1) + `", "feeRecipient": "` + account(1) + `", "feeBasisPoints": 10001}}`,
		"unknown field":   `{"network": "devnet", "validators": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSpec(writeSpec(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
