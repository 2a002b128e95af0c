package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"creatorpay/storage"
)

// Store is the raw key/value surface a Manager reads and writes. Both a
// storage.Database and an Overlay satisfy it.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
}

// Manager provides typed, RLP-encoded access to settlement records.
type Manager struct {
	store Store
}

// NewManager creates a state manager operating on the provided store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut RLP-encodes value and stores it under the hash of key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.putRaw(kvKey(key), value)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	return m.getRaw(kvKey(key), out)
}

// putRaw stores value under an already-derived key.
func (m *Manager) putRaw(key []byte, value interface{}) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("state: manager unavailable")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.store.Put(key, encoded)
}

func (m *Manager) getRaw(key []byte, out interface{}) (bool, error) {
	if m == nil || m.store == nil {
		return false, fmt.Errorf("state: manager unavailable")
	}
	data, err := m.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key, err)
	}
	return true, nil
}
