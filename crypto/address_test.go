package crypto

import (
	"strings"
	"testing"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i)
	}

	encoded := a.String()
	if !strings.HasPrefix(encoded, AddressHRP+"1") {
		t.Fatalf("encoded address %q lacks the %q prefix", encoded, AddressHRP)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != a {
		t.Fatal("round trip changed the address")
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not-an-address",
		"btc1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq",
	}
	for _, tc := range cases {
		if _, err := DecodeAddress(tc); err == nil {
			t.Fatalf("expected decode failure for %q", tc)
		}
	}
}

func TestAddressFromBytesLength(t *testing.T) {
	if _, err := AddressFromBytes(make([]byte, 31)); err == nil {
		t.Fatal("expected length error for short input")
	}
	if _, err := AddressFromBytes(make([]byte, 32)); err != nil {
		t.Fatalf("unexpected error for 32 bytes: %v", err)
	}
}

func TestKeccak256KnownVector(t *testing.T) {
	// keccak256("") starts with c5d2460186f7.
	digest := Keccak256(nil)
	if len(digest) != 32 {
		t.Fatalf("digest length %d, want 32", len(digest))
	}
	want := [6]byte{0xc5, 0xd2, 0x46, 0x01, 0x86, 0xf7}
	for i, b := range want {
		if digest[i] != b {
			t.Fatalf("digest byte %d = %#x, want %#x", i, digest[i], b)
		}
	}
}

func TestIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Fatal("zero value must report zero")
	}
	zero[31] = 1
	if zero.IsZero() {
		t.Fatal("non-zero value must not report zero")
	}
}
