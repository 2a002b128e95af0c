package state

import (
	"fmt"

	"creatorpay/native/payments"
)

// RLP has no signed integers. Timestamps are zigzag encoded so values before
// the epoch keep their sign: 0, -1, 1, -2 map to 0, 1, 2, 3.

type storedPlatform struct {
	Authority      [20]byte
	FeeBasisPoints uint16
	FeeRecipient   [20]byte
}

type storedVault struct {
	Creator     [20]byte
	TotalEarned uint64
	Withdrawn   uint64
	Subscribers uint64
}

type storedSubscription struct {
	Subscriber     [20]byte
	Creator        [20]byte
	AmountPerMonth uint64
	LastPayment    uint64
	StartedAt      uint64
	IsActive       bool
}

type storedTip struct {
	From      [20]byte
	To        [20]byte
	Amount    uint64
	Post      string
	Index     uint64
	Timestamp uint64
}

func encodeTimestamp(ts int64) uint64 {
	return uint64(ts<<1) ^ uint64(ts>>63)
}

func decodeTimestamp(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func (m *Manager) PaymentsPlatformGet() (*payments.PlatformConfig, bool, error) {
	key := payments.PlatformConfigKey()
	var stored storedPlatform
	ok, err := m.getRaw(key[:], &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &payments.PlatformConfig{
		Authority:      stored.Authority,
		FeeBasisPoints: stored.FeeBasisPoints,
		FeeRecipient:   stored.FeeRecipient,
	}, true, nil
}

func (m *Manager) PaymentsPlatformPut(cfg *payments.PlatformConfig) error {
	if cfg == nil {
		return fmt.Errorf("state: nil platform config")
	}
	key := payments.PlatformConfigKey()
	return m.putRaw(key[:], &storedPlatform{
		Authority:      cfg.Authority,
		FeeBasisPoints: cfg.FeeBasisPoints,
		FeeRecipient:   cfg.FeeRecipient,
	})
}

func (m *Manager) PaymentsVaultGet(key [32]byte) (*payments.CreatorVault, bool, error) {
	var stored storedVault
	ok, err := m.getRaw(key[:], &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &payments.CreatorVault{
		Creator:     stored.Creator,
		TotalEarned: stored.TotalEarned,
		Withdrawn:   stored.Withdrawn,
		Subscribers: stored.Subscribers,
	}, true, nil
}

func (m *Manager) PaymentsVaultPut(vault *payments.CreatorVault) error {
	if vault == nil {
		return fmt.Errorf("state: nil vault")
	}
	if vault.Withdrawn > vault.TotalEarned {
		return fmt.Errorf("state: vault withdrawn %d exceeds earned %d", vault.Withdrawn, vault.TotalEarned)
	}
	key := payments.VaultKey(vault.Creator)
	return m.putRaw(key[:], &storedVault{
		Creator:     vault.Creator,
		TotalEarned: vault.TotalEarned,
		Withdrawn:   vault.Withdrawn,
		Subscribers: vault.Subscribers,
	})
}

func (m *Manager) PaymentsSubscriptionGet(subscriber, creator [20]byte) (*payments.Subscription, bool, error) {
	key := payments.SubscriptionKey(subscriber, creator)
	var stored storedSubscription
	ok, err := m.getRaw(key[:], &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &payments.Subscription{
		Subscriber:     stored.Subscriber,
		Creator:        stored.Creator,
		AmountPerMonth: stored.AmountPerMonth,
		LastPayment:    decodeTimestamp(stored.LastPayment),
		StartedAt:      decodeTimestamp(stored.StartedAt),
		IsActive:       stored.IsActive,
	}, true, nil
}

func (m *Manager) PaymentsSubscriptionPut(sub *payments.Subscription) error {
	if sub == nil {
		return fmt.Errorf("state: nil subscription")
	}
	key := payments.SubscriptionKey(sub.Subscriber, sub.Creator)
	return m.putRaw(key[:], &storedSubscription{
		Subscriber:     sub.Subscriber,
		Creator:        sub.Creator,
		AmountPerMonth: sub.AmountPerMonth,
		LastPayment:    encodeTimestamp(sub.LastPayment),
		StartedAt:      encodeTimestamp(sub.StartedAt),
		IsActive:       sub.IsActive,
	})
}

func (m *Manager) PaymentsTipGet(tipper [20]byte, index uint64) (*payments.TipRecord, bool, error) {
	key := payments.TipRecordKey(tipper, index)
	var stored storedTip
	ok, err := m.getRaw(key[:], &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &payments.TipRecord{
		From:      stored.From,
		To:        stored.To,
		Amount:    stored.Amount,
		Post:      stored.Post,
		Index:     stored.Index,
		Timestamp: decodeTimestamp(stored.Timestamp),
	}, true, nil
}

// PaymentsTipPut writes a tip record once. Tip records are immutable.
func (m *Manager) PaymentsTipPut(tip *payments.TipRecord) error {
	if tip == nil {
		return fmt.Errorf("state: nil tip record")
	}
	key := payments.TipRecordKey(tip.From, tip.Index)
	exists, err := m.getRaw(key[:], nil)
	if err != nil {
		return err
	}
	if exists {
		return payments.ErrTipRecordExists
	}
	return m.putRaw(key[:], &storedTip{
		From:      tip.From,
		To:        tip.To,
		Amount:    tip.Amount,
		Post:      tip.Post,
		Index:     tip.Index,
		Timestamp: encodeTimestamp(tip.Timestamp),
	})
}
