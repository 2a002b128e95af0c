package payments

import "creatorpay/native/common"

// RenewalPeriod is the fixed subscription billing period in seconds (30 days).
const RenewalPeriod int64 = 30 * 24 * 60 * 60

// PlatformConfig is the singleton fee policy record.
type PlatformConfig struct {
	Authority      [20]byte
	FeeBasisPoints uint16
	FeeRecipient   [20]byte
}

// CreatorVault tracks what a creator has earned and withdrawn. Withdrawn never
// exceeds TotalEarned.
type CreatorVault struct {
	Creator     [20]byte
	TotalEarned uint64
	Withdrawn   uint64
	Subscribers uint64
}

// Available returns the amount the creator may still withdraw.
func (v *CreatorVault) Available() (uint64, error) {
	return common.CheckedSub(v.TotalEarned, v.Withdrawn)
}

// Credit adds net earnings to the vault.
func (v *CreatorVault) Credit(net uint64) error {
	total, err := common.CheckedAdd(v.TotalEarned, net)
	if err != nil {
		return ErrArithmeticOverflow
	}
	v.TotalEarned = total
	return nil
}

// Clone returns a copy of the vault.
func (v *CreatorVault) Clone() *CreatorVault {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

// Subscription is the recurring relationship between one subscriber and one
// creator. AmountPerMonth is fixed at creation.
type Subscription struct {
	Subscriber     [20]byte
	Creator        [20]byte
	AmountPerMonth uint64
	LastPayment    int64
	StartedAt      int64
	IsActive       bool
}

// Due reports whether a renewal may be charged at now.
func (s *Subscription) Due(now int64) bool {
	return now-s.LastPayment >= RenewalPeriod
}

// Clone returns a copy of the subscription.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// TipRecord is the immutable receipt of one tip. Amount is the net amount
// credited to the creator.
type TipRecord struct {
	From      [20]byte
	To        [20]byte
	Amount    uint64
	Post      string
	Index     uint64
	Timestamp int64
}

// TipParams describes a tip request. Vault is the derived key of the target
// vault and Creator is the destination the caller intends to pay; they must
// agree.
type TipParams struct {
	Vault   [32]byte
	Creator [20]byte
	Amount  uint64
	Post    string
	Index   uint64
}

// SubscribeParams describes a subscription request.
type SubscribeParams struct {
	Vault          [32]byte
	Creator        [20]byte
	AmountPerMonth uint64
}

// ProcessParams describes a renewal request.
type ProcessParams struct {
	Vault   [32]byte
	Creator [20]byte
}

// Settlement summarises one money movement.
type Settlement struct {
	Gross uint64
	Fee   uint64
	Net   uint64
}
