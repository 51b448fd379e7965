package pool

import "dexpool/crypto"

var (
	statePrefix      = []byte("pool/state/")
	vaultOwnerPrefix = []byte("pool/vault/")
)

// StateKey returns the storage key addressing a pool record by its control
// address. The derived address is the lookup key; there is no registry table.
func StateKey(control crypto.Address) []byte {
	buf := make([]byte, len(statePrefix)+crypto.AddressLength)
	copy(buf, statePrefix)
	copy(buf[len(statePrefix):], control[:])
	return buf
}

// VaultOwnerKey returns the storage key binding a vault to the pool that
// exclusively controls it.
func VaultOwnerKey(vault crypto.Address) []byte {
	buf := make([]byte, len(vaultOwnerPrefix)+crypto.AddressLength)
	copy(buf, vaultOwnerPrefix)
	copy(buf[len(vaultOwnerPrefix):], vault[:])
	return buf
}
