package types

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// RequestType identifies the settlement operation a request invokes.
type RequestType byte

const (
	RequestInitializePlatform  RequestType = 0x01
	RequestInitializeVault     RequestType = 0x02
	RequestTip                 RequestType = 0x03
	RequestSubscribe           RequestType = 0x04
	RequestProcessSubscription RequestType = 0x05
	RequestCancelSubscription  RequestType = 0x06
	RequestWithdraw            RequestType = 0x07
)

var requestTypeNames = map[RequestType]string{
	RequestInitializePlatform:  "initialize_platform",
	RequestInitializeVault:     "initialize_vault",
	RequestTip:                 "tip",
	RequestSubscribe:           "subscribe",
	RequestProcessSubscription: "process_subscription",
	RequestCancelSubscription:  "cancel_subscription",
	RequestWithdraw:            "withdraw",
}

func (t RequestType) String() string {
	if name, ok := requestTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// ParseRequestType resolves the snake_case name of a request type.
func ParseRequestType(name string) (RequestType, error) {
	for typ, n := range requestTypeNames {
		if n == name {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("unknown request type %q", name)
}

var (
	ErrMissingSignature = errors.New("request: missing signature")
	ErrInvalidSignature = errors.New("request: invalid signature")
)

// Request is a signed instruction to run one settlement operation. The
// recovered signer is the acting identity; Nonce and Network bind the
// signature to a single use on a single deployment.
type Request struct {
	Type    RequestType     `json:"type"`
	Network string          `json:"network"`
	Nonce   uint64          `json:"nonce"`
	Payload json.RawMessage `json:"payload,omitempty"`

	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
	V *big.Int `json:"v"`

	from []byte
}

// NewRequest marshals payload and returns an unsigned request.
func NewRequest(typ RequestType, network string, nonce uint64, payload interface{}) (*Request, error) {
	req := &Request{Type: typ, Network: network, Nonce: nonce}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Payload = raw
	}
	return req, nil
}

// Hash covers every field except the signature.
func (r *Request) Hash() ([]byte, error) {
	data := struct {
		Type    RequestType
		Network string
		Nonce   uint64
		Payload json.RawMessage
	}{r.Type, r.Network, r.Nonce, r.Payload}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(b)
	return hash[:], nil
}

func (r *Request) Sign(privKey *ecdsa.PrivateKey) error {
	hash, err := r.Hash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(hash, privKey)
	if err != nil {
		return err
	}
	r.R = new(big.Int).SetBytes(sig[:32])
	r.S = new(big.Int).SetBytes(sig[32:64])
	r.V = new(big.Int).SetBytes([]byte{sig[64] + 27})
	r.from = nil
	return nil
}

// From recovers the signer address. The result is cached.
func (r *Request) From() ([20]byte, error) {
	var out [20]byte
	if r.from != nil {
		copy(out[:], r.from)
		return out, nil
	}
	if r.R == nil || r.S == nil || r.V == nil {
		return out, ErrMissingSignature
	}
	if r.R.BitLen() > 256 || r.S.BitLen() > 256 || !r.V.IsUint64() {
		return out, ErrInvalidSignature
	}
	v := r.V.Uint64()
	if v != 27 && v != 28 {
		return out, ErrInvalidSignature
	}
	hash, err := r.Hash()
	if err != nil {
		return out, err
	}
	sig := make([]byte, 65)
	r.R.FillBytes(sig[:32])
	r.S.FillBytes(sig[32:64])
	sig[64] = byte(v - 27)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	r.from = crypto.PubkeyToAddress(*pubKey).Bytes()
	copy(out[:], r.from)
	return out, nil
}

// DecodePayload unmarshals the payload into out, rejecting unknown fields.
func (r *Request) DecodePayload(out interface{}) error {
	if len(r.Payload) == 0 {
		return errors.New("request: payload required")
	}
	dec := json.NewDecoder(bytesReader(r.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("request: decode %s payload: %w", r.Type, err)
	}
	return nil
}
