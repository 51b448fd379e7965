package pricing

import (
	"github.com/holiman/uint256"

	"dexpool/crypto"
)

// ConstantProductID is the well-known identity of the built-in
// constant-product strategy.
var ConstantProductID = strategyID("dexpool/strategy/constant-product/v1")

func strategyID(tag string) crypto.Address {
	id, err := crypto.AddressFromBytes(crypto.Keccak256([]byte(tag)))
	if err != nil {
		panic(err)
	}
	return id
}

// ConstantProduct prices swaps against the invariant reserve_a * reserve_b.
// The output reserve after a swap is computed with ceiling division so the
// invariant product never decreases, matching the reference behavior of
// spl-token-swap style pools. The strategy is stateless; the per-pool
// stateRef is ignored.
type ConstantProduct struct{}

// NewConstantProduct returns the default pricing strategy.
func NewConstantProduct() ConstantProduct { return ConstantProduct{} }

// SwapOut implements Strategy.
//
//	amount_out = reserve_out - ceil(reserve_in * reserve_out / (reserve_in + amount_in_after_fee))
func (ConstantProduct) SwapOut(reserveIn, reserveOut, amountInAfterFee uint64, _ crypto.Address) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrEmptyReserves
	}
	if amountInAfterFee == 0 {
		return 0, nil
	}
	invariant := new(uint256.Int).Mul(
		uint256.NewInt(reserveIn),
		uint256.NewInt(reserveOut),
	)
	denom := new(uint256.Int).Add(
		uint256.NewInt(reserveIn),
		uint256.NewInt(amountInAfterFee),
	)
	newReserveOut := ceilDiv(invariant, denom)
	if !newReserveOut.IsUint64() || newReserveOut.Uint64() > reserveOut {
		// Ceiling rounded past the current reserve; nothing can be paid out.
		return 0, nil
	}
	return reserveOut - newReserveOut.Uint64(), nil
}

// LiquidityShares implements ShareMath with the pool's canonical math: the
// geometric mean on first deposit, ratio-limited acceptance afterwards.
func (ConstantProduct) LiquidityShares(reserveA, reserveB, depositA, depositB, shareSupply uint64) (uint64, uint64, uint64, error) {
	if shareSupply == 0 {
		product := new(uint256.Int).Mul(
			uint256.NewInt(depositA),
			uint256.NewInt(depositB),
		)
		shares := new(uint256.Int).Sqrt(product)
		if !shares.IsUint64() {
			return 0, 0, 0, ErrOverflow
		}
		return depositA, depositB, shares.Uint64(), nil
	}
	if reserveA == 0 || reserveB == 0 {
		return 0, 0, 0, ErrEmptyReserves
	}

	acceptedA, acceptedB := depositA, depositB
	requiredB := mulDiv(depositA, reserveB, reserveA)
	if requiredB.CmpUint64(depositB) <= 0 {
		acceptedB = requiredB.Uint64()
	} else {
		// requiredB > depositB implies requiredA <= depositA.
		requiredA := mulDiv(depositB, reserveA, reserveB)
		acceptedA = requiredA.Uint64()
	}

	sharesA := mulDiv(shareSupply, acceptedA, reserveA)
	sharesB := mulDiv(shareSupply, acceptedB, reserveB)
	shares := sharesA
	if sharesB.Cmp(sharesA) < 0 {
		shares = sharesB
	}
	if !shares.IsUint64() {
		return 0, 0, 0, ErrOverflow
	}
	return acceptedA, acceptedB, shares.Uint64(), nil
}

// WithdrawAmounts implements ShareMath with floor-division proportional
// withdrawal. Fractional dust stays in the pool for remaining holders.
func (ConstantProduct) WithdrawAmounts(reserveA, reserveB, shareSupply, burnShares uint64) (uint64, uint64, error) {
	if burnShares == 0 || burnShares > shareSupply {
		return 0, 0, ErrInvalidBurn
	}
	outA := mulDiv(reserveA, burnShares, shareSupply)
	outB := mulDiv(reserveB, burnShares, shareSupply)
	if !outA.IsUint64() || !outB.IsUint64() {
		return 0, 0, ErrOverflow
	}
	return outA.Uint64(), outB.Uint64(), nil
}

// mulDiv returns floor(a*b/c). The product of two uint64 values always fits
// a 256-bit word, so only the final division needs care; c is never zero at
// call sites.
func mulDiv(a, b, c uint64) *uint256.Int {
	prod := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	return prod.Div(prod, uint256.NewInt(c))
}

// ceilDiv returns ceil(num/den) for a nonzero denominator.
func ceilDiv(num, den *uint256.Int) *uint256.Int {
	q := new(uint256.Int).Div(num, den)
	rem := new(uint256.Int).Mod(num, den)
	if !rem.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
