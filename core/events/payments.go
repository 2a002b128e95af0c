package events

import (
	"encoding/hex"
	"strconv"

	"creatorpay/core/types"
	"creatorpay/crypto"
)

const (
	// TypeVaultInitialized is emitted when a creator opens their vault.
	TypeVaultInitialized = "payments.vault.initialized"
	// TypeTipSent is emitted after a tip settles.
	TypeTipSent = "payments.tip.sent"
	// TypeSubscriptionCreated is emitted when a subscription is opened and its
	// first period charged.
	TypeSubscriptionCreated = "payments.subscription.created"
	// TypeSubscriptionProcessed is emitted for each renewal charge.
	TypeSubscriptionProcessed = "payments.subscription.processed"
	// TypeSubscriptionCancelled is emitted when a subscriber cancels.
	TypeSubscriptionCancelled = "payments.subscription.cancelled"
	// TypeWithdrawal is emitted when a creator records a withdrawal.
	TypeWithdrawal = "payments.withdrawal"
	// TypePlatformUpdated is emitted when the platform configuration is set.
	TypePlatformUpdated = "payments.platform.updated"
)

// VaultInitialized announces a new creator vault.
type VaultInitialized struct {
	Creator   [20]byte
	Vault     [32]byte
	Timestamp int64
}

func (VaultInitialized) EventType() string { return TypeVaultInitialized }

func (e VaultInitialized) Event() *types.Event {
	return &types.Event{Type: TypeVaultInitialized, Attributes: map[string]string{
		"creator":   crypto.Format(e.Creator),
		"vault":     VaultRef(e.Vault),
		"timestamp": formatInt(e.Timestamp),
	}}
}

// TipSent records a settled tip. Amount is the gross amount paid by the
// tipper; Net is what the creator vault was credited.
type TipSent struct {
	From      [20]byte
	To        [20]byte
	Amount    uint64
	Fee       uint64
	Net       uint64
	Post      string
	Index     uint64
	Timestamp int64
}

func (TipSent) EventType() string { return TypeTipSent }

func (e TipSent) Event() *types.Event {
	attrs := map[string]string{
		"from":      crypto.Format(e.From),
		"to":        crypto.Format(e.To),
		"amount":    formatAmount(e.Amount),
		"fee":       formatAmount(e.Fee),
		"net":       formatAmount(e.Net),
		"index":     formatAmount(e.Index),
		"timestamp": formatInt(e.Timestamp),
	}
	if e.Post != "" {
		attrs["post"] = e.Post
	}
	return &types.Event{Type: TypeTipSent, Attributes: attrs}
}

// SubscriptionCreated announces a new subscription and its first charge.
type SubscriptionCreated struct {
	Subscriber     [20]byte
	Creator        [20]byte
	AmountPerMonth uint64
	Fee            uint64
	Net            uint64
	Timestamp      int64
}

func (SubscriptionCreated) EventType() string { return TypeSubscriptionCreated }

func (e SubscriptionCreated) Event() *types.Event {
	return &types.Event{Type: TypeSubscriptionCreated, Attributes: map[string]string{
		"subscriber":     crypto.Format(e.Subscriber),
		"creator":        crypto.Format(e.Creator),
		"amountPerMonth": formatAmount(e.AmountPerMonth),
		"fee":            formatAmount(e.Fee),
		"net":            formatAmount(e.Net),
		"timestamp":      formatInt(e.Timestamp),
	}}
}

// SubscriptionProcessed records a renewal charge.
type SubscriptionProcessed struct {
	Subscriber [20]byte
	Creator    [20]byte
	Amount     uint64
	Fee        uint64
	Net        uint64
	Timestamp  int64
}

func (SubscriptionProcessed) EventType() string { return TypeSubscriptionProcessed }

func (e SubscriptionProcessed) Event() *types.Event {
	return &types.Event{Type: TypeSubscriptionProcessed, Attributes: map[string]string{
		"subscriber": crypto.Format(e.Subscriber),
		"creator":    crypto.Format(e.Creator),
		"amount":     formatAmount(e.Amount),
		"fee":        formatAmount(e.Fee),
		"net":        formatAmount(e.Net),
		"timestamp":  formatInt(e.Timestamp),
	}}
}

// SubscriptionCancelled records a cancellation.
type SubscriptionCancelled struct {
	Subscriber [20]byte
	Creator    [20]byte
	Timestamp  int64
}

func (SubscriptionCancelled) EventType() string { return TypeSubscriptionCancelled }

func (e SubscriptionCancelled) Event() *types.Event {
	return &types.Event{Type: TypeSubscriptionCancelled, Attributes: map[string]string{
		"subscriber": crypto.Format(e.Subscriber),
		"creator":    crypto.Format(e.Creator),
		"timestamp":  formatInt(e.Timestamp),
	}}
}

// Withdrawal records a creator withdrawal against accrued earnings.
type Withdrawal struct {
	Creator   [20]byte
	Amount    uint64
	Remaining uint64
	Timestamp int64
}

func (Withdrawal) EventType() string { return TypeWithdrawal }

func (e Withdrawal) Event() *types.Event {
	return &types.Event{Type: TypeWithdrawal, Attributes: map[string]string{
		"creator":   crypto.Format(e.Creator),
		"amount":    formatAmount(e.Amount),
		"remaining": formatAmount(e.Remaining),
		"timestamp": formatInt(e.Timestamp),
	}}
}

// PlatformUpdated announces the platform fee configuration.
type PlatformUpdated struct {
	Authority      [20]byte
	FeeRecipient   [20]byte
	FeeBasisPoints uint16
	Timestamp      int64
}

func (PlatformUpdated) EventType() string { return TypePlatformUpdated }

func (e PlatformUpdated) Event() *types.Event {
	return &types.Event{Type: TypePlatformUpdated, Attributes: map[string]string{
		"authority":      crypto.Format(e.Authority),
		"feeRecipient":   crypto.Format(e.FeeRecipient),
		"feeBasisPoints": strconv.FormatUint(uint64(e.FeeBasisPoints), 10),
		"timestamp":      formatInt(e.Timestamp),
	}}
}

// VaultRef renders a derived vault key the way clients reference it.
func VaultRef(key [32]byte) string {
	return "0x" + hex.EncodeToString(key[:])
}

func formatAmount(v uint64) string { return strconv.FormatUint(v, 10) }

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }
