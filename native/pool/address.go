package pool

import (
	"bytes"

	"filippo.io/edwards25519"

	"dexpool/crypto"
)

// derivationDomain tags every control-address derivation so pool addresses
// cannot collide with hashes produced elsewhere.
const derivationDomain = "dexpool/pool/v1"

// nonceSearchSpace bounds the derivation search. Each candidate fails the
// off-curve test with probability ~1/2, so exhaustion is never expected in
// practice; it is still surfaced as a fatal error rather than asserted away.
const nonceSearchSpace = 256

// Derivation is the result of resolving a pool identity: the keyless control
// address and the nonce that produced it.
type Derivation struct {
	Address crypto.Address
	Nonce   uint8
}

// CanonicalPair returns the two asset identifiers in byte-lexicographic
// order. Presenting a pair in either order yields the same canonical form,
// which keeps identity derivation order-independent.
func CanonicalPair(a, b crypto.Address) (crypto.Address, crypto.Address) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

// DeriveControlAddress resolves the unique control address for a pool from
// its asset pair and pricing-strategy identity tuple. The derivation
// combines the domain tag, the canonical pair, the strategy tuple and a
// nonce through Keccak-256, counting the nonce down from 255 and accepting
// the first digest that is not a valid ed25519 curve point. An off-curve
// digest admits no corresponding private signing key, so no external party
// can ever act as the pool authority.
func DeriveControlAddress(assetA, assetB, strategyID, strategyStateRef crypto.Address) (Derivation, error) {
	lo, hi := CanonicalPair(assetA, assetB)
	for i := nonceSearchSpace - 1; i >= 0; i-- {
		nonce := uint8(i)
		digest := crypto.Keccak256(
			[]byte(derivationDomain),
			lo[:],
			hi[:],
			strategyID[:],
			strategyStateRef[:],
			[]byte{nonce},
		)
		if onCurve(digest) {
			continue
		}
		addr, err := crypto.AddressFromBytes(digest)
		if err != nil {
			return Derivation{}, err
		}
		return Derivation{Address: addr, Nonce: nonce}, nil
	}
	return Derivation{}, ErrAddressDerivationExhausted
}

// controlAddressAt recomputes the digest for a specific nonce. Used when
// re-checking a stored pool identity without repeating the search.
func controlAddressAt(assetA, assetB, strategyID, strategyStateRef crypto.Address, nonce uint8) (crypto.Address, error) {
	lo, hi := CanonicalPair(assetA, assetB)
	digest := crypto.Keccak256(
		[]byte(derivationDomain),
		lo[:],
		hi[:],
		strategyID[:],
		strategyStateRef[:],
		[]byte{nonce},
	)
	return crypto.AddressFromBytes(digest)
}

// onCurve reports whether b decompresses to a valid ed25519 point, i.e.
// whether some private key could sign for it.
func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
