package core

import (
	"strconv"

	"creatorpay/core/events"
	"creatorpay/crypto"
	"creatorpay/native/payments"
)

// Views render settlement records for RPC clients. Amounts are decimal strings
// so JavaScript clients keep full 64-bit precision.

type PlatformView struct {
	Authority      string `json:"authority"`
	FeeBasisPoints uint16 `json:"feeBasisPoints"`
	FeeRecipient   string `json:"feeRecipient"`
}

type VaultView struct {
	Vault       string `json:"vault"`
	Creator     string `json:"creator"`
	TotalEarned string `json:"totalEarned"`
	Withdrawn   string `json:"withdrawn"`
	Available   string `json:"available"`
	Subscribers uint64 `json:"subscribers"`
}

type SubscriptionView struct {
	Subscriber     string `json:"subscriber"`
	Creator        string `json:"creator"`
	AmountPerMonth string `json:"amountPerMonth"`
	LastPayment    int64  `json:"lastPayment"`
	StartedAt      int64  `json:"startedAt"`
	NextDue        int64  `json:"nextDue"`
	IsActive       bool   `json:"isActive"`
}

type TipView struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Post      string `json:"post,omitempty"`
	Index     string `json:"index"`
	Timestamp int64  `json:"timestamp"`
}

func newPlatformView(cfg *payments.PlatformConfig) *PlatformView {
	if cfg == nil {
		return nil
	}
	return &PlatformView{
		Authority:      crypto.Format(cfg.Authority),
		FeeBasisPoints: cfg.FeeBasisPoints,
		FeeRecipient:   crypto.Format(cfg.FeeRecipient),
	}
}

func newVaultView(v *payments.CreatorVault) *VaultView {
	if v == nil {
		return nil
	}
	available, err := v.Available()
	if err != nil {
		available = 0
	}
	return &VaultView{
		Vault:       events.VaultRef(payments.VaultKey(v.Creator)),
		Creator:     crypto.Format(v.Creator),
		TotalEarned: strconv.FormatUint(v.TotalEarned, 10),
		Withdrawn:   strconv.FormatUint(v.Withdrawn, 10),
		Available:   strconv.FormatUint(available, 10),
		Subscribers: v.Subscribers,
	}
}

func newSubscriptionView(s *payments.Subscription) *SubscriptionView {
	if s == nil {
		return nil
	}
	return &SubscriptionView{
		Subscriber:     crypto.Format(s.Subscriber),
		Creator:        crypto.Format(s.Creator),
		AmountPerMonth: strconv.FormatUint(s.AmountPerMonth, 10),
		LastPayment:    s.LastPayment,
		StartedAt:      s.StartedAt,
		NextDue:        s.LastPayment + payments.RenewalPeriod,
		IsActive:       s.IsActive,
	}
}

func newTipView(t *payments.TipRecord) *TipView {
	if t == nil {
		return nil
	}
	return &TipView{
		From:      crypto.Format(t.From),
		To:        crypto.Format(t.To),
		Amount:    strconv.FormatUint(t.Amount, 10),
		Post:      t.Post,
		Index:     strconv.FormatUint(t.Index, 10),
		Timestamp: t.Timestamp,
	}
}
