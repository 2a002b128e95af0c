package state

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

var (
	balancePrefix = []byte("balance")
	noncePrefix   = []byte("nonce")
)

func balanceKey(addr [20]byte) []byte {
	return ethcrypto.Keccak256(balancePrefix, addr[:])
}

func nonceKey(addr [20]byte) []byte {
	return ethcrypto.Keccak256(noncePrefix, addr[:])
}

// Balance returns the spendable balance of addr. Unknown accounts hold zero.
func (m *Manager) Balance(addr [20]byte) (uint64, error) {
	var bal uint64
	if _, err := m.getRaw(balanceKey(addr), &bal); err != nil {
		return 0, err
	}
	return bal, nil
}

// SetBalance overwrites the balance of addr.
func (m *Manager) SetBalance(addr [20]byte, amount uint64) error {
	return m.putRaw(balanceKey(addr), amount)
}

// Nonce returns the next request nonce expected from addr.
func (m *Manager) Nonce(addr [20]byte) (uint64, error) {
	var nonce uint64
	if _, err := m.getRaw(nonceKey(addr), &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// SetNonce records the next request nonce expected from addr.
func (m *Manager) SetNonce(addr [20]byte, nonce uint64) error {
	return m.putRaw(nonceKey(addr), nonce)
}
