package pool

import (
	"testing"

	"dexpool/crypto"
)

func TestCanonicalPairOrdersBytes(t *testing.T) {
	a := testAddr(0x01)
	b := testAddr(0x02)

	lo, hi := CanonicalPair(b, a)
	if lo != a || hi != b {
		t.Fatal("expected byte-lexicographic ordering")
	}
	lo, hi = CanonicalPair(a, b)
	if lo != a || hi != b {
		t.Fatal("already-ordered pair must pass through")
	}
}

func TestDeriveControlAddressDeterministic(t *testing.T) {
	assetA := testAddr(0x0a)
	assetB := testAddr(0x0b)
	strategy := testAddr(0x0c)
	stateRef := testAddr(0x0d)

	first, err := DeriveControlAddress(assetA, assetB, strategy, stateRef)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := DeriveControlAddress(assetA, assetB, strategy, stateRef)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if first != second {
		t.Fatal("derivation must be deterministic")
	}
}

func TestDeriveControlAddressOrderIndependent(t *testing.T) {
	assetA := testAddr(0x0a)
	assetB := testAddr(0x0b)
	strategy := testAddr(0x0c)

	forward, err := DeriveControlAddress(assetA, assetB, strategy, crypto.Address{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	reversed, err := DeriveControlAddress(assetB, assetA, strategy, crypto.Address{})
	if err != nil {
		t.Fatalf("derive reversed: %v", err)
	}
	if forward != reversed {
		t.Fatal("pair order must not change the control address")
	}
}

func TestDeriveControlAddressVariesByInputs(t *testing.T) {
	assetA := testAddr(0x0a)
	assetB := testAddr(0x0b)
	strategy := testAddr(0x0c)

	base, err := DeriveControlAddress(assetA, assetB, strategy, crypto.Address{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	otherStrategy, err := DeriveControlAddress(assetA, assetB, testAddr(0x0d), crypto.Address{})
	if err != nil {
		t.Fatalf("derive other strategy: %v", err)
	}
	if base.Address == otherStrategy.Address {
		t.Fatal("strategy id must feed the derivation")
	}
	otherState, err := DeriveControlAddress(assetA, assetB, strategy, testAddr(0x0e))
	if err != nil {
		t.Fatalf("derive other state: %v", err)
	}
	if base.Address == otherState.Address {
		t.Fatal("strategy state must feed the derivation")
	}
	otherPair, err := DeriveControlAddress(assetA, testAddr(0x0f), strategy, crypto.Address{})
	if err != nil {
		t.Fatalf("derive other pair: %v", err)
	}
	if base.Address == otherPair.Address {
		t.Fatal("asset pair must feed the derivation")
	}
}

func TestDerivedAddressIsOffCurve(t *testing.T) {
	derived, err := DeriveControlAddress(testAddr(0x0a), testAddr(0x0b), testAddr(0x0c), crypto.Address{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if onCurve(derived.Address[:]) {
		t.Fatal("derived control address must not decompress to a curve point")
	}
}

func TestControlAddressAtMatchesSearch(t *testing.T) {
	derived, err := DeriveControlAddress(testAddr(0x0a), testAddr(0x0b), testAddr(0x0c), crypto.Address{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	recomputed, err := controlAddressAt(testAddr(0x0a), testAddr(0x0b), testAddr(0x0c), crypto.Address{}, derived.Nonce)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if recomputed != derived.Address {
		t.Fatal("nonce replay must reproduce the searched address")
	}
}
