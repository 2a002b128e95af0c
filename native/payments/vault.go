package payments

import (
	"creatorpay/core/events"
	"creatorpay/native/common"
)

// InitializeVault opens an empty vault for creator and returns its key.
func (e *Engine) InitializeVault(creator [20]byte) (*CreatorVault, [32]byte, error) {
	key := VaultKey(creator)
	if err := e.ready(); err != nil {
		return nil, key, err
	}
	_, exists, err := e.state.PaymentsVaultGet(key)
	if err != nil {
		return nil, key, err
	}
	if exists {
		return nil, key, ErrVaultExists
	}
	vault := &CreatorVault{Creator: creator}
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, key, err
	}
	e.emit(events.VaultInitialized{Creator: creator, Vault: key, Timestamp: e.now()})
	return vault, key, nil
}

// Withdraw marks amount of the creator's accrued earnings as claimed. Funds
// already reached the creator when they were paid, so no value moves here.
func (e *Engine) Withdraw(signer [20]byte, vaultKey [32]byte, amount uint64) (*CreatorVault, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	vault, err := e.vault(vaultKey)
	if err != nil {
		return nil, err
	}
	if vault.Creator != signer {
		return nil, ErrUnauthorized
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	available, err := vault.Available()
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	if amount > available {
		return nil, ErrWithdrawalExceedsBalance
	}
	withdrawn, err := common.CheckedAdd(vault.Withdrawn, amount)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	vault.Withdrawn = withdrawn
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, err
	}
	e.emit(events.Withdrawal{
		Creator:   vault.Creator,
		Amount:    amount,
		Remaining: available - amount,
		Timestamp: e.now(),
	})
	return vault, nil
}
