package payments

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	platformTag     = []byte("platform_config")
	vaultTag        = []byte("vault")
	subscriptionTag = []byte("subscription")
	tipTag          = []byte("tip")
)

const vaultRefHexLength = 64

func deriveKey(tag []byte, parts ...[]byte) [32]byte {
	buf := make([]byte, 0, len(tag)+len(parts)*20)
	buf = append(buf, tag...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(buf))
	return out
}

// PlatformConfigKey locates the singleton platform configuration.
func PlatformConfigKey() [32]byte { return deriveKey(platformTag) }

// VaultKey locates the vault owned by creator.
func VaultKey(creator [20]byte) [32]byte { return deriveKey(vaultTag, creator[:]) }

// SubscriptionKey locates the subscription of subscriber to creator. The
// order of the identities matters.
func SubscriptionKey(subscriber, creator [20]byte) [32]byte {
	return deriveKey(subscriptionTag, subscriber[:], creator[:])
}

// TipRecordKey locates tip number index sent by tipper. The index is encoded
// little-endian.
func TipRecordKey(tipper [20]byte, index uint64) [32]byte {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)
	return deriveKey(tipTag, tipper[:], idx[:])
}

// ParseVaultRef decodes the 0x-prefixed hex form of a vault key.
func ParseVaultRef(ref string) ([32]byte, error) {
	var key [32]byte
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return key, fmt.Errorf("payments: vault reference required")
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if len(trimmed) != vaultRefHexLength {
		return key, fmt.Errorf("payments: vault reference must be 32 bytes (got %d hex chars)", len(trimmed))
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return key, fmt.Errorf("payments: decode vault reference: %w", err)
	}
	copy(key[:], decoded)
	return key, nil
}
