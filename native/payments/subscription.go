package payments

import (
	"creatorpay/core/events"
	"creatorpay/native/common"
)

// Subscribe opens a subscription from subscriber to the creator owning
// p.Vault and charges the first period immediately.
func (e *Engine) Subscribe(subscriber [20]byte, p SubscribeParams) (*Subscription, Settlement, error) {
	if err := e.ready(); err != nil {
		return nil, Settlement{}, err
	}
	cfg, err := e.platform()
	if err != nil {
		return nil, Settlement{}, err
	}
	vault, err := e.vault(p.Vault)
	if err != nil {
		return nil, Settlement{}, err
	}
	if p.AmountPerMonth == 0 {
		return nil, Settlement{}, ErrInvalidAmount
	}
	if subscriber == vault.Creator {
		return nil, Settlement{}, ErrCannotSubscribeToSelf
	}
	if p.Creator != vault.Creator {
		return nil, Settlement{}, ErrInvalidCreatorAccount
	}
	// One slot per pair, ever: a cancelled subscription still holds the key.
	_, exists, err := e.state.PaymentsSubscriptionGet(subscriber, vault.Creator)
	if err != nil {
		return nil, Settlement{}, err
	}
	if exists {
		return nil, Settlement{}, ErrAlreadySubscribed
	}
	subscribers, err := common.CheckedAdd(vault.Subscribers, 1)
	if err != nil {
		return nil, Settlement{}, ErrArithmeticOverflow
	}

	settled, err := e.settle(subscriber, cfg, vault, p.AmountPerMonth)
	if err != nil {
		return nil, Settlement{}, err
	}
	vault.Subscribers = subscribers
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, Settlement{}, err
	}
	now := e.now()
	sub := &Subscription{
		Subscriber:     subscriber,
		Creator:        vault.Creator,
		AmountPerMonth: p.AmountPerMonth,
		LastPayment:    now,
		StartedAt:      now,
		IsActive:       true,
	}
	if err := e.state.PaymentsSubscriptionPut(sub); err != nil {
		return nil, Settlement{}, err
	}
	e.emit(events.SubscriptionCreated{
		Subscriber:     subscriber,
		Creator:        vault.Creator,
		AmountPerMonth: p.AmountPerMonth,
		Fee:            settled.Fee,
		Net:            settled.Net,
		Timestamp:      now,
	})
	return sub, settled, nil
}

// ProcessSubscription charges the next period of the signer's subscription.
// It fails with ErrPaymentNotDue until a full RenewalPeriod has elapsed since
// the last charge.
func (e *Engine) ProcessSubscription(subscriber [20]byte, p ProcessParams) (*Subscription, Settlement, error) {
	if err := e.ready(); err != nil {
		return nil, Settlement{}, err
	}
	cfg, err := e.platform()
	if err != nil {
		return nil, Settlement{}, err
	}
	vault, err := e.vault(p.Vault)
	if err != nil {
		return nil, Settlement{}, err
	}
	sub, err := e.ownedSubscription(subscriber, vault)
	if err != nil {
		return nil, Settlement{}, err
	}
	if p.Creator != vault.Creator || sub.Creator != vault.Creator {
		return nil, Settlement{}, ErrInvalidCreatorAccount
	}
	if !sub.IsActive {
		return nil, Settlement{}, ErrSubscriptionNotActive
	}
	now := e.now()
	if !sub.Due(now) {
		return nil, Settlement{}, ErrPaymentNotDue
	}

	settled, err := e.settle(subscriber, cfg, vault, sub.AmountPerMonth)
	if err != nil {
		return nil, Settlement{}, err
	}
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, Settlement{}, err
	}
	renewed := sub.Clone()
	renewed.LastPayment = now
	if err := e.state.PaymentsSubscriptionPut(renewed); err != nil {
		return nil, Settlement{}, err
	}
	e.emit(events.SubscriptionProcessed{
		Subscriber: subscriber,
		Creator:    vault.Creator,
		Amount:     settled.Gross,
		Fee:        settled.Fee,
		Net:        settled.Net,
		Timestamp:  now,
	})
	return renewed, settled, nil
}

// CancelSubscription deactivates the signer's subscription to the vault's
// creator. Cancellation is terminal.
func (e *Engine) CancelSubscription(subscriber [20]byte, vaultKey [32]byte) (*Subscription, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	vault, err := e.vault(vaultKey)
	if err != nil {
		return nil, err
	}
	sub, err := e.ownedSubscription(subscriber, vault)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive {
		return nil, ErrSubscriptionNotActive
	}
	cancelled := sub.Clone()
	cancelled.IsActive = false
	vault.Subscribers = common.SaturatingSub(vault.Subscribers, 1)
	if err := e.state.PaymentsVaultPut(vault); err != nil {
		return nil, err
	}
	if err := e.state.PaymentsSubscriptionPut(cancelled); err != nil {
		return nil, err
	}
	e.emit(events.SubscriptionCancelled{
		Subscriber: subscriber,
		Creator:    vault.Creator,
		Timestamp:  e.now(),
	})
	return cancelled, nil
}

func (e *Engine) ownedSubscription(subscriber [20]byte, vault *CreatorVault) (*Subscription, error) {
	sub, ok, err := e.state.PaymentsSubscriptionGet(subscriber, vault.Creator)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	if sub.Subscriber != subscriber {
		return nil, ErrUnauthorized
	}
	return sub, nil
}
