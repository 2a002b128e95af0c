package types

import "bytes"

// Vault references are the 0x-prefixed hex form of the derived vault key.
// Identities are bech32 account addresses.

type InitializePlatformPayload struct {
	FeeRecipient   string `json:"feeRecipient"`
	FeeBasisPoints uint32 `json:"feeBasisPoints"`
}

type TipPayload struct {
	Vault   string `json:"vault"`
	Creator string `json:"creator"`
	Amount  uint64 `json:"amount,string"`
	Post    string `json:"post,omitempty"`
	Index   uint64 `json:"index,string"`
}

type SubscribePayload struct {
	Vault          string `json:"vault"`
	Creator        string `json:"creator"`
	AmountPerMonth uint64 `json:"amountPerMonth,string"`
}

type ProcessSubscriptionPayload struct {
	Vault   string `json:"vault"`
	Creator string `json:"creator"`
}

type CancelSubscriptionPayload struct {
	Vault string `json:"vault"`
}

type WithdrawPayload struct {
	Vault  string `json:"vault"`
	Amount uint64 `json:"amount,string"`
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
