package genesis

import (
	"fmt"

	"creatorpay/core/state"
	"creatorpay/crypto"
	"creatorpay/native/bank"
	"creatorpay/native/payments"
	"creatorpay/storage"
)

// Apply seeds db from spec when the store is empty. It returns false without
// touching anything when the store already carries a state version. All
// writes land in one batch.
func Apply(spec *GenesisSpec, db storage.Database, now int64) (bool, error) {
	if spec == nil {
		return false, fmt.Errorf("genesis spec must not be nil")
	}
	if db == nil {
		return false, fmt.Errorf("database must not be nil")
	}
	if spec.balances == nil && len(spec.Alloc) > 0 {
		if err := spec.Validate(); err != nil {
			return false, err
		}
	}
	if _, ok, err := state.NewManager(db).StateVersion(); err != nil {
		return false, err
	} else if ok {
		return false, nil
	}

	overlay := state.NewOverlay(db)
	defer overlay.Discard()
	manager := state.NewManager(overlay)

	for _, alloc := range spec.balances {
		if err := bank.Credit(manager, alloc.Address, alloc.Amount); err != nil {
			return false, fmt.Errorf("genesis: credit %s: %w", crypto.Format(alloc.Address), err)
		}
	}
	if p := spec.Platform; p != nil {
		authority, err := crypto.ParseAccount(p.Authority)
		if err != nil {
			return false, err
		}
		recipient, err := crypto.ParseAccount(p.FeeRecipient)
		if err != nil {
			return false, err
		}
		engine := payments.NewEngine()
		engine.SetState(manager)
		engine.SetNowFunc(func() int64 { return now })
		if _, err := engine.InitializePlatform(authority, recipient, p.FeeBasisPoints); err != nil {
			return false, fmt.Errorf("genesis: platform: %w", err)
		}
	}
	if err := manager.SetStateVersion(state.StateVersion); err != nil {
		return false, err
	}
	if err := overlay.Commit(); err != nil {
		return false, fmt.Errorf("genesis: commit: %w", err)
	}
	return true, nil
}
