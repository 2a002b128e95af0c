package bank

import (
	"errors"

	"creatorpay/native/common"
)

// ErrInsufficientFunds is returned when the source balance cannot cover a
// transfer.
var ErrInsufficientFunds = errors.New("bank: insufficient funds")

// Ledger is the balance store transfers operate on.
type Ledger interface {
	Balance(addr [20]byte) (uint64, error)
	SetBalance(addr [20]byte, amount uint64) error
}

// Transfer moves amount from one account to another. Both balances are
// validated before either is written.
func Transfer(l Ledger, from, to [20]byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	src, err := l.Balance(from)
	if err != nil {
		return err
	}
	if src < amount {
		return ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	dst, err := l.Balance(to)
	if err != nil {
		return err
	}
	credited, err := common.CheckedAdd(dst, amount)
	if err != nil {
		return err
	}
	if err := l.SetBalance(from, src-amount); err != nil {
		return err
	}
	return l.SetBalance(to, credited)
}

// Credit mints amount into addr. Only genesis funding uses it.
func Credit(l Ledger, to [20]byte, amount uint64) error {
	bal, err := l.Balance(to)
	if err != nil {
		return err
	}
	next, err := common.CheckedAdd(bal, amount)
	if err != nil {
		return err
	}
	return l.SetBalance(to, next)
}
