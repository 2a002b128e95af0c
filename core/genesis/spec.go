package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"creatorpay/crypto"
	"creatorpay/native/fees"
)

// GenesisSpec seeds an empty store: starting balances and, optionally, the
// platform fee configuration.
type GenesisSpec struct {
	Network  string            `json:"network"`
	Alloc    map[string]string `json:"alloc"` // bech32 address -> decimal amount
	Platform *PlatformSpec     `json:"platform,omitempty"`

	balances []Allocation
}

// PlatformSpec bootstraps the platform configuration at genesis.
type PlatformSpec struct {
	Authority      string `json:"authority"`
	FeeRecipient   string `json:"feeRecipient"`
	FeeBasisPoints uint32 `json:"feeBasisPoints"`
}

// Allocation is one parsed genesis balance.
type Allocation struct {
	Address [20]byte
	Amount  uint64
}

// LoadSpec reads and validates a JSON genesis file.
func LoadSpec(path string) (*GenesisSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var spec GenesisSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode genesis: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate parses every address and amount. Allocations are kept sorted by
// address so application order is deterministic.
func (s *GenesisSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("genesis spec must not be nil")
	}
	if strings.TrimSpace(s.Network) == "" {
		return fmt.Errorf("genesis: network required")
	}
	balances := make([]Allocation, 0, len(s.Alloc))
	for addr, amount := range s.Alloc {
		raw, err := crypto.ParseAccount(strings.TrimSpace(addr))
		if err != nil {
			return fmt.Errorf("genesis: alloc %q: %w", addr, err)
		}
		value, err := strconv.ParseUint(strings.TrimSpace(amount), 10, 64)
		if err != nil {
			return fmt.Errorf("genesis: alloc %q amount: %w", addr, err)
		}
		balances = append(balances, Allocation{Address: raw, Amount: value})
	}
	sort.Slice(balances, func(i, j int) bool {
		return bytes.Compare(balances[i].Address[:], balances[j].Address[:]) < 0
	})
	if p := s.Platform; p != nil {
		if _, err := crypto.ParseAccount(p.Authority); err != nil {
			return fmt.Errorf("genesis: platform authority: %w", err)
		}
		if _, err := crypto.ParseAccount(p.FeeRecipient); err != nil {
			return fmt.Errorf("genesis: platform fee recipient: %w", err)
		}
		if p.FeeBasisPoints > fees.MaxBasisPoints {
			return fmt.Errorf("genesis: platform fee basis points %d exceeds %d", p.FeeBasisPoints, fees.MaxBasisPoints)
		}
	}
	s.balances = balances
	return nil
}

// Allocations returns the validated balances in application order.
func (s *GenesisSpec) Allocations() []Allocation {
	out := make([]Allocation, len(s.balances))
	copy(out, s.balances)
	return out
}
