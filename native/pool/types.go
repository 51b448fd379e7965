package pool

import "dexpool/crypto"

// SwapDirection selects which pooled asset is the swap input.
type SwapDirection uint8

const (
	// SwapAToB sells asset A for asset B.
	SwapAToB SwapDirection = iota
	// SwapBToA sells asset B for asset A.
	SwapBToA
)

func (d SwapDirection) String() string {
	switch d {
	case SwapAToB:
		return "a_to_b"
	case SwapBToA:
		return "b_to_a"
	default:
		return "unknown"
	}
}

// State is the single persistent record per pool. It is exclusively written
// by the engine: share supply only moves through liquidity accounting, and
// reserves only through liquidity accounting or swap execution.
type State struct {
	// ControlAddress is the derived, keyless address owning the vaults and
	// the share mint.
	ControlAddress crypto.Address
	// AssetA and AssetB identify the pooled assets in the order supplied at
	// creation. Canonical ordering applies only to identity derivation.
	AssetA crypto.Address
	AssetB crypto.Address
	// VaultA and VaultB hold the pool's reserves of each asset.
	VaultA crypto.Address
	VaultB crypto.Address
	// ShareMint is the issuance authority for pool shares.
	ShareMint crypto.Address
	// ReserveA and ReserveB track the balances held by the vaults.
	ReserveA uint64
	ReserveB uint64
	// ShareSupply is the total outstanding pool-share units.
	ShareSupply uint64
	// StrategyID and StrategyStateRef bind the pricing strategy. Both are
	// opaque to the pool.
	StrategyID       crypto.Address
	StrategyStateRef crypto.Address
	// FeeBps is the swap fee in basis points, fixed at creation.
	FeeBps uint32
	// Nonce is the derivation nonce chosen for the control address.
	Nonce uint8
	// Initialized marks the lifecycle flag. A pool is created once and never
	// destroyed; drained pools stay initialized and can be refilled.
	Initialized bool
}

// Copy returns a deep copy to avoid callers mutating shared pointers.
func (s *State) Copy() *State {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// reserves returns the input and output side for a direction.
func (s *State) reserves(dir SwapDirection) (reserveIn, reserveOut uint64) {
	if dir == SwapAToB {
		return s.ReserveA, s.ReserveB
	}
	return s.ReserveB, s.ReserveA
}
