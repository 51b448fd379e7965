package events

import (
	"testing"

	"dexpool/crypto"
)

func TestRecorderOrdersAndDrains(t *testing.T) {
	r := new(Recorder)
	r.Emit(PoolCreated{Pool: crypto.Address{0x01}})
	r.Emit(Swapped{Pool: crypto.Address{0x01}, AmountIn: 100, AmountOut: 180})
	r.Emit(nil)

	drained := r.Drain()
	if len(drained) != 2 {
		t.Fatalf("drained %d events, want 2", len(drained))
	}
	if drained[0].EventType() != TypePoolCreated || drained[1].EventType() != TypeSwapped {
		t.Fatalf("unexpected order: %s, %s", drained[0].EventType(), drained[1].EventType())
	}
	if len(r.Drain()) != 0 {
		t.Fatal("drain must reset the recorder")
	}
}

func TestSwappedAttributes(t *testing.T) {
	evt := Swapped{
		Pool:      crypto.Address{0x01},
		Trader:    crypto.Address{0x02},
		AmountIn:  100,
		AmountOut: 180,
		ReserveA:  1100,
		ReserveB:  1820,
	}
	attrs := evt.Attributes()
	if attrs["amountIn"] != "100" || attrs["amountOut"] != "180" {
		t.Fatalf("unexpected amount attributes: %v", attrs)
	}
	if attrs["pool"] != evt.Pool.String() {
		t.Fatal("pool attribute must be the bech32 address")
	}
}
