package types

import (
	"errors"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestRequestSignAndRecover(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	req, err := NewRequest(RequestTip, "devnet", 7, TipPayload{Vault: "0x01", Creator: "cpay1x", Amount: 10, Index: 3})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := req.Sign(key); err != nil {
		t.Fatalf("sign: %v", err)
	}
	from, err := req.From()
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	want := ethcrypto.PubkeyToAddress(key.PublicKey)
	if from != [20]byte(want) {
		t.Fatalf("recovered %x, want %x", from, want)
	}

	var payload TipPayload
	if err := req.DecodePayload(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Amount != 10 || payload.Index != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRequestTamperChangesSigner(t *testing.T) {
	key, _ := ethcrypto.GenerateKey()
	req, _ := NewRequest(RequestWithdraw, "devnet", 1, WithdrawPayload{Vault: "0x01", Amount: 5})
	if err := req.Sign(key); err != nil {
		t.Fatalf("sign: %v", err)
	}
	tampered := &Request{Type: req.Type, Network: req.Network, Nonce: req.Nonce + 1, Payload: req.Payload, R: req.R, S: req.S, V: req.V}
	from, err := tampered.From()
	if err == nil && from == [20]byte(ethcrypto.PubkeyToAddress(key.PublicKey)) {
		t.Fatalf("tampered request still recovers original signer")
	}
}

func TestRequestFromRequiresSignature(t *testing.T) {
	req := &Request{Type: RequestInitializeVault, Network: "devnet"}
	if _, err := req.From(); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected missing signature, got %v", err)
	}
	req.R, req.S, req.V = big.NewInt(1), big.NewInt(1), big.NewInt(30)
	if _, err := req.From(); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestDecodePayloadRejectsUnknownFields(t *testing.T) {
	req := &Request{Type: RequestWithdraw, Payload: []byte(`{"vault":"0x01","amount":"5","extra":true}`)}
	var payload WithdrawPayload
	if err := req.DecodePayload(&payload); err == nil {
		t.Fatalf("expected unknown field rejection")
	}
}

func TestParseRequestType(t *testing.T) {
	typ, err := ParseRequestType("process_subscription")
	if err != nil || typ != RequestProcessSubscription {
		t.Fatalf("unexpected %v %v", typ, err)
	}
	if _, err := ParseRequestType("mint"); err == nil {
		t.Fatalf("expected error")
	}
}
