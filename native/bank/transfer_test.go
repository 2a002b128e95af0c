package bank

import (
	"errors"
	"math"
	"testing"

	"creatorpay/native/common"
)

type mapLedger map[[20]byte]uint64

func (m mapLedger) Balance(addr [20]byte) (uint64, error) { return m[addr], nil }

func (m mapLedger) SetBalance(addr [20]byte, amount uint64) error {
	m[addr] = amount
	return nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func TestTransferConservesValue(t *testing.T) {
	ledger := mapLedger{addr(1): 1_000}
	if err := Transfer(ledger, addr(1), addr(2), 400); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if ledger[addr(1)] != 600 || ledger[addr(2)] != 400 {
		t.Fatalf("unexpected balances %v", ledger)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	ledger := mapLedger{addr(1): 10}
	if err := Transfer(ledger, addr(1), addr(2), 11); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if ledger[addr(1)] != 10 || ledger[addr(2)] != 0 {
		t.Fatalf("balances mutated on failure: %v", ledger)
	}
}

func TestTransferRejectsCreditOverflow(t *testing.T) {
	ledger := mapLedger{addr(1): 5, addr(2): math.MaxUint64}
	if err := Transfer(ledger, addr(1), addr(2), 5); !errors.Is(err, common.ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if ledger[addr(1)] != 5 {
		t.Fatalf("source debited despite failure")
	}
}

func TestTransferToSelfIsNoop(t *testing.T) {
	ledger := mapLedger{addr(1): 7}
	if err := Transfer(ledger, addr(1), addr(1), 7); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if ledger[addr(1)] != 7 {
		t.Fatalf("self transfer changed balance: %d", ledger[addr(1)])
	}
}

func TestCredit(t *testing.T) {
	ledger := mapLedger{}
	if err := Credit(ledger, addr(3), 50); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := Credit(ledger, addr(3), math.MaxUint64); !errors.Is(err, common.ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if ledger[addr(3)] != 50 {
		t.Fatalf("unexpected balance %d", ledger[addr(3)])
	}
}
