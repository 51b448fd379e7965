package pool

import (
	"math"

	"github.com/holiman/uint256"

	"dexpool/core/events"
	"dexpool/native/pool/pricing"
)

// AddLiquidityResult reports the accepted deposit and the post-state.
type AddLiquidityResult struct {
	AcceptedA    uint64
	AcceptedB    uint64
	MintedShares uint64
	ReserveA     uint64
	ReserveB     uint64
	ShareSupply  uint64
}

// AddLiquidity deposits up to the desired amounts into a pool. The first
// deposit is accepted verbatim and mints the integer square root of the
// amount product, fixing the initial exchange rate. Later deposits are
// ratio-limited: the accepted amounts match the pool's current ratio and the
// un-accepted remainder is simply never transferred. Share minting floors in
// the pool's favor.
func (e *Engine) AddLiquidity(req AddLiquidityData) (*AddLiquidityResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	record, err := e.loadPool(req.Pool)
	if err != nil {
		return nil, err
	}
	if record.ShareSupply == 0 && (req.AmountA == 0 || req.AmountB == 0) {
		return nil, ErrZeroDeposit
	}

	strategy, err := e.strategyFor(record)
	if err != nil {
		return nil, err
	}

	var acceptedA, acceptedB, shares uint64
	if sm, ok := strategy.(pricing.ShareMath); ok {
		acceptedA, acceptedB, shares, err = sm.LiquidityShares(
			record.ReserveA, record.ReserveB,
			req.AmountA, req.AmountB,
			record.ShareSupply,
		)
		if err != nil {
			return nil, mapPricingErr(err)
		}
		if acceptedA > req.AmountA || acceptedB > req.AmountB {
			return nil, ErrInvalidStrategyResponse
		}
	} else {
		acceptedA, acceptedB, shares, err = liquidityShares(
			record.ReserveA, record.ReserveB,
			req.AmountA, req.AmountB,
			record.ShareSupply,
		)
		if err != nil {
			return nil, err
		}
	}
	if shares == 0 {
		return nil, ErrDustDeposit
	}

	newReserveA, ok := addU64(record.ReserveA, acceptedA)
	if !ok {
		return nil, ErrMathOverflow
	}
	newReserveB, ok := addU64(record.ReserveB, acceptedB)
	if !ok {
		return nil, ErrMathOverflow
	}
	newSupply, ok := addU64(record.ShareSupply, shares)
	if !ok {
		return nil, ErrMathOverflow
	}

	if acceptedA > 0 {
		if err := e.ledger.Transfer(record.AssetA, req.Caller, record.VaultA, acceptedA); err != nil {
			return nil, err
		}
	}
	if acceptedB > 0 {
		if err := e.ledger.Transfer(record.AssetB, req.Caller, record.VaultB, acceptedB); err != nil {
			return nil, err
		}
	}
	if err := e.ledger.Mint(record.ShareMint, req.Caller, shares); err != nil {
		return nil, err
	}

	record.ReserveA = newReserveA
	record.ReserveB = newReserveB
	record.ShareSupply = newSupply
	if err := e.state.PoolPut(record); err != nil {
		return nil, err
	}

	e.emit(events.LiquidityAdded{
		Pool:         record.ControlAddress,
		Provider:     req.Caller,
		AcceptedA:    acceptedA,
		AcceptedB:    acceptedB,
		SharesMinted: shares,
		ReserveA:     record.ReserveA,
		ReserveB:     record.ReserveB,
	})
	return &AddLiquidityResult{
		AcceptedA:    acceptedA,
		AcceptedB:    acceptedB,
		MintedShares: shares,
		ReserveA:     record.ReserveA,
		ReserveB:     record.ReserveB,
		ShareSupply:  record.ShareSupply,
	}, nil
}

// RemoveLiquidityResult reports the withdrawal and the post-state.
type RemoveLiquidityResult struct {
	ReturnA      uint64
	ReturnB      uint64
	BurnedShares uint64
	ReserveA     uint64
	ReserveB     uint64
	ShareSupply  uint64
}

// RemoveLiquidity burns the caller's shares and pays out the proportional
// floor-division amounts. The pool never pays more than the proportional
// share; rounding dust accrues to remaining holders.
func (e *Engine) RemoveLiquidity(req RemoveLiquidityData) (*RemoveLiquidityResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	record, err := e.loadPool(req.Pool)
	if err != nil {
		return nil, err
	}
	if req.AmountShares == 0 {
		return nil, ErrZeroWithdrawal
	}
	if req.AmountShares > record.ShareSupply {
		return nil, ErrInsufficientShares
	}
	balance, err := e.ledger.BalanceOf(record.ShareMint, req.Caller)
	if err != nil {
		return nil, err
	}
	if balance < req.AmountShares {
		return nil, ErrInsufficientShares
	}

	strategy, err := e.strategyFor(record)
	if err != nil {
		return nil, err
	}

	var outA, outB uint64
	if sm, ok := strategy.(pricing.ShareMath); ok {
		outA, outB, err = sm.WithdrawAmounts(
			record.ReserveA, record.ReserveB,
			record.ShareSupply, req.AmountShares,
		)
		if err != nil {
			return nil, mapPricingErr(err)
		}
		if outA > record.ReserveA || outB > record.ReserveB {
			return nil, ErrInvalidStrategyResponse
		}
	} else {
		outA = mulDivFloor(record.ReserveA, req.AmountShares, record.ShareSupply)
		outB = mulDivFloor(record.ReserveB, req.AmountShares, record.ShareSupply)
	}
	if outA == 0 && outB == 0 {
		return nil, ErrZeroWithdrawal
	}

	if err := e.ledger.Burn(record.ShareMint, req.Caller, req.AmountShares); err != nil {
		return nil, err
	}
	if outA > 0 {
		if err := e.ledger.Transfer(record.AssetA, record.VaultA, req.Caller, outA); err != nil {
			return nil, err
		}
	}
	if outB > 0 {
		if err := e.ledger.Transfer(record.AssetB, record.VaultB, req.Caller, outB); err != nil {
			return nil, err
		}
	}

	record.ReserveA -= outA
	record.ReserveB -= outB
	record.ShareSupply -= req.AmountShares
	if err := e.state.PoolPut(record); err != nil {
		return nil, err
	}

	e.emit(events.LiquidityRemoved{
		Pool:         record.ControlAddress,
		Provider:     req.Caller,
		ReturnA:      outA,
		ReturnB:      outB,
		SharesBurned: req.AmountShares,
		ReserveA:     record.ReserveA,
		ReserveB:     record.ReserveB,
	})
	return &RemoveLiquidityResult{
		ReturnA:      outA,
		ReturnB:      outB,
		BurnedShares: req.AmountShares,
		ReserveA:     record.ReserveA,
		ReserveB:     record.ReserveB,
		ShareSupply:  record.ShareSupply,
	}, nil
}

// liquidityShares is the engine's own share math, used when the bound
// strategy does not take over liquidity accounting.
func liquidityShares(reserveA, reserveB, depositA, depositB, shareSupply uint64) (uint64, uint64, uint64, error) {
	if shareSupply == 0 {
		product := new(uint256.Int).Mul(
			uint256.NewInt(depositA),
			uint256.NewInt(depositB),
		)
		shares := new(uint256.Int).Sqrt(product)
		if !shares.IsUint64() {
			return 0, 0, 0, ErrMathOverflow
		}
		return depositA, depositB, shares.Uint64(), nil
	}
	if reserveA == 0 || reserveB == 0 {
		// Supply without reserves means the record was corrupted outside the
		// engine; the joint-zero invariant rules it out otherwise.
		return 0, 0, 0, ErrInsufficientLiquidity
	}

	acceptedA, acceptedB := depositA, depositB
	requiredB := new(uint256.Int).Mul(uint256.NewInt(depositA), uint256.NewInt(reserveB))
	requiredB.Div(requiredB, uint256.NewInt(reserveA))
	if requiredB.CmpUint64(depositB) <= 0 {
		acceptedB = requiredB.Uint64()
	} else {
		acceptedA = mulDivFloor(depositB, reserveA, reserveB)
	}

	sharesA := new(uint256.Int).Mul(uint256.NewInt(shareSupply), uint256.NewInt(acceptedA))
	sharesA.Div(sharesA, uint256.NewInt(reserveA))
	sharesB := new(uint256.Int).Mul(uint256.NewInt(shareSupply), uint256.NewInt(acceptedB))
	sharesB.Div(sharesB, uint256.NewInt(reserveB))
	shares := sharesA
	if sharesB.Cmp(sharesA) < 0 {
		shares = sharesB
	}
	if !shares.IsUint64() {
		return 0, 0, 0, ErrMathOverflow
	}
	return acceptedA, acceptedB, shares.Uint64(), nil
}

// mulDivFloor returns floor(a*b/c) for c > 0, saturating at MaxUint64. Call
// sites guarantee the true quotient fits uint64.
func mulDivFloor(a, b, c uint64) uint64 {
	prod := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	prod.Div(prod, uint256.NewInt(c))
	if !prod.IsUint64() {
		return math.MaxUint64
	}
	return prod.Uint64()
}

func addU64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
