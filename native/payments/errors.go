package payments

import (
	"errors"

	"creatorpay/native/common"
)

// Settlement error kinds. Every failure returned by the engine wraps exactly
// one of these.
var (
	ErrInvalidAmount            = errors.New("payments: amount must be positive")
	ErrCannotTipSelf            = errors.New("payments: cannot tip yourself")
	ErrCannotSubscribeToSelf    = errors.New("payments: cannot subscribe to yourself")
	ErrSubscriptionNotActive    = errors.New("payments: subscription is not active")
	ErrPaymentNotDue            = errors.New("payments: payment is not due yet")
	ErrWithdrawalExceedsBalance = errors.New("payments: withdrawal exceeds available balance")
	ErrInvalidFeeBasisPoints    = errors.New("payments: fee basis points must not exceed 10000")
	ErrInvalidCreatorAccount    = errors.New("payments: creator account does not match vault")
	ErrArithmeticOverflow       = common.ErrArithmeticOverflow
	ErrUnauthorized             = errors.New("payments: unauthorized")
	ErrInsufficientFunds        = errors.New("payments: insufficient funds")
	ErrAlreadySubscribed        = errors.New("payments: already subscribed")
	ErrVaultExists              = errors.New("payments: vault already initialized")
	ErrVaultNotFound            = errors.New("payments: vault not found")
	ErrPlatformExists           = errors.New("payments: platform already initialized")
	ErrPlatformNotInitialized   = errors.New("payments: platform not initialized")
	ErrSubscriptionNotFound     = errors.New("payments: subscription not found")
	ErrTipRecordExists          = errors.New("payments: tip record already exists")

	errNilState = errors.New("payments: state not configured")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrCannotTipSelf, "CannotTipSelf"},
	{ErrCannotSubscribeToSelf, "CannotSubscribeToSelf"},
	{ErrSubscriptionNotActive, "SubscriptionNotActive"},
	{ErrPaymentNotDue, "PaymentNotDue"},
	{ErrWithdrawalExceedsBalance, "WithdrawalExceedsBalance"},
	{ErrInvalidFeeBasisPoints, "InvalidFeeBasisPoints"},
	{ErrInvalidCreatorAccount, "InvalidCreatorAccount"},
	{ErrArithmeticOverflow, "ArithmeticOverflow"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrAlreadySubscribed, "AlreadySubscribed"},
	{ErrVaultExists, "VaultExists"},
	{ErrVaultNotFound, "VaultNotFound"},
	{ErrPlatformExists, "PlatformExists"},
	{ErrPlatformNotInitialized, "PlatformNotInitialized"},
	{ErrSubscriptionNotFound, "SubscriptionNotFound"},
	{ErrTipRecordExists, "TipRecordExists"},
}

// ErrorKind names the settlement error kind wrapped by err, or "" when err is
// not a settlement error.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// ErrorKinds lists every settlement error kind in a stable order.
func ErrorKinds() []string {
	out := make([]string, len(errorKinds))
	for i, k := range errorKinds {
		out[i] = k.kind
	}
	return out
}
