package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressHRP is the human-readable bech32 prefix shared by every identifier
// the engine handles (assets, vaults, share mints, strategies, pools).
const AddressHRP = "dex"

// AddressLength is the byte width of an Address.
const AddressLength = 32

// Address is a 32-byte opaque identifier. Assets, vaults, mint authorities,
// user accounts, pricing strategies and pool control accounts all share this
// representation; the byte content carries no structure the engine inspects.
type Address [AddressLength]byte

var zeroAddress Address

// AddressFromBytes copies b into an Address, rejecting wrong widths.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("crypto: address must be %d bytes, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// MustAddressFromHex parses a hex-encoded address and panics on malformed
// input. Intended for fixtures and well-known constants only.
func MustAddressFromHex(s string) Address {
	raw, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("crypto: invalid address hex: %v", err))
	}
	a, err := AddressFromBytes(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// DecodeAddress parses the bech32 string form produced by String.
func DecodeAddress(s string) (Address, error) {
	hrp, decoded, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: invalid bech32 string: %w", err)
	}
	if hrp != AddressHRP {
		return Address{}, fmt.Errorf("crypto: unexpected address prefix %q", hrp)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: error converting bits: %w", err)
	}
	return AddressFromBytes(conv)
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(AddressHRP, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == zeroAddress
}

// Keccak256 hashes the concatenation of the provided byte slices. The result
// is always 32 bytes and can be used directly as an Address.
func Keccak256(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}
