package core

import (
	"creatorpay/core/state"
	"creatorpay/native/payments"
)

// Queries read committed state only; staged writes of an in-flight request
// are never visible.

func (sp *StateProcessor) readEngine() (*payments.Engine, *state.Manager) {
	manager := state.NewManager(sp.db)
	engine := payments.NewEngine()
	engine.SetState(manager)
	return engine, manager
}

// Platform returns the platform configuration.
func (sp *StateProcessor) Platform() (*PlatformView, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	engine, _ := sp.readEngine()
	cfg, err := engine.Platform()
	if err != nil {
		return nil, err
	}
	return newPlatformView(cfg), nil
}

// Vault returns the vault stored under key.
func (sp *StateProcessor) Vault(key [32]byte) (*VaultView, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	engine, _ := sp.readEngine()
	vault, err := engine.Vault(key)
	if err != nil {
		return nil, err
	}
	return newVaultView(vault), nil
}

// VaultByCreator returns the vault owned by creator.
func (sp *StateProcessor) VaultByCreator(creator [20]byte) (*VaultView, error) {
	return sp.Vault(payments.VaultKey(creator))
}

// Subscription returns the subscription of subscriber to creator.
func (sp *StateProcessor) Subscription(subscriber, creator [20]byte) (*SubscriptionView, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	engine, _ := sp.readEngine()
	sub, err := engine.Subscription(subscriber, creator)
	if err != nil {
		return nil, err
	}
	return newSubscriptionView(sub), nil
}

// Tip returns tip number index sent by tipper, or nil when absent.
func (sp *StateProcessor) Tip(tipper [20]byte, index uint64) (*TipView, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	engine, _ := sp.readEngine()
	record, ok, err := engine.TipRecord(tipper, index)
	if err != nil || !ok {
		return nil, err
	}
	return newTipView(record), nil
}

// Balance returns the spendable balance of addr.
func (sp *StateProcessor) Balance(addr [20]byte) (uint64, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	_, manager := sp.readEngine()
	return manager.Balance(addr)
}

// Nonce returns the nonce the next request from addr must carry.
func (sp *StateProcessor) Nonce(addr [20]byte) (uint64, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	_, manager := sp.readEngine()
	return manager.Nonce(addr)
}
