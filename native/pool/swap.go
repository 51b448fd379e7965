package pool

import (
	"dexpool/core/events"
	"dexpool/crypto"
)

// SwapResult reports the executed swap and the post-state.
type SwapResult struct {
	AssetIn   crypto.Address
	AssetOut  crypto.Address
	AmountIn  uint64
	FeePaid   uint64
	AmountOut uint64
	ReserveA  uint64
	ReserveB  uint64
}

// Swap sells amount_in of the direction's input asset for the other asset.
// The fee is floored off the input before the strategy is consulted and
// stays in the pool: the full amount_in lands in the input reserve while the
// strategy prices only the fee-adjusted portion, which is what keeps the
// invariant product non-decreasing.
func (e *Engine) Swap(req SwapData) (*SwapResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	direction := SwapDirection(req.Direction)
	if direction > SwapBToA {
		return nil, ErrInvalidDirection
	}
	if req.AmountIn == 0 {
		return nil, ErrZeroSwapAmount
	}
	record, err := e.loadPool(req.Pool)
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := record.reserves(direction)
	if reserveIn == 0 || reserveOut == 0 {
		return nil, ErrInsufficientLiquidity
	}

	afterFee := applyFee(req.AmountIn, record.FeeBps)
	strategy, err := e.strategyFor(record)
	if err != nil {
		return nil, err
	}
	amountOut, err := strategy.SwapOut(reserveIn, reserveOut, afterFee, record.StrategyStateRef)
	if err != nil {
		return nil, mapPricingErr(err)
	}
	if amountOut >= reserveOut {
		return nil, ErrInsufficientLiquidity
	}
	if amountOut < req.MinAmountOut {
		return nil, ErrSlippageExceeded
	}
	if amountOut == 0 {
		return nil, ErrZeroSwapAmount
	}
	newReserveIn, ok := addU64(reserveIn, req.AmountIn)
	if !ok {
		return nil, ErrMathOverflow
	}

	assetIn, assetOut := record.AssetA, record.AssetB
	vaultIn, vaultOut := record.VaultA, record.VaultB
	if direction == SwapBToA {
		assetIn, assetOut = record.AssetB, record.AssetA
		vaultIn, vaultOut = record.VaultB, record.VaultA
	}

	if err := e.ledger.Transfer(assetIn, req.Caller, vaultIn, req.AmountIn); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(assetOut, vaultOut, req.Caller, amountOut); err != nil {
		return nil, err
	}

	if direction == SwapAToB {
		record.ReserveA = newReserveIn
		record.ReserveB = reserveOut - amountOut
	} else {
		record.ReserveB = newReserveIn
		record.ReserveA = reserveOut - amountOut
	}
	if err := e.state.PoolPut(record); err != nil {
		return nil, err
	}

	e.emit(events.Swapped{
		Pool:      record.ControlAddress,
		Trader:    req.Caller,
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  req.AmountIn,
		AmountOut: amountOut,
		ReserveA:  record.ReserveA,
		ReserveB:  record.ReserveB,
	})
	return &SwapResult{
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  req.AmountIn,
		FeePaid:   req.AmountIn - afterFee,
		AmountOut: amountOut,
		ReserveA:  record.ReserveA,
		ReserveB:  record.ReserveB,
	}, nil
}

// SimulateSwap prices a swap without touching state, balances or events.
// It applies the same fee and strategy math as Swap.
func (e *Engine) SimulateSwap(poolAddr crypto.Address, direction SwapDirection, amountIn uint64) (*SwapResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if direction > SwapBToA {
		return nil, ErrInvalidDirection
	}
	if amountIn == 0 {
		return nil, ErrZeroSwapAmount
	}
	record, err := e.loadPool(poolAddr)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut := record.reserves(direction)
	if reserveIn == 0 || reserveOut == 0 {
		return nil, ErrInsufficientLiquidity
	}
	afterFee := applyFee(amountIn, record.FeeBps)
	strategy, err := e.strategyFor(record)
	if err != nil {
		return nil, err
	}
	amountOut, err := strategy.SwapOut(reserveIn, reserveOut, afterFee, record.StrategyStateRef)
	if err != nil {
		return nil, mapPricingErr(err)
	}
	if amountOut >= reserveOut {
		return nil, ErrInsufficientLiquidity
	}
	assetIn, assetOut := record.AssetA, record.AssetB
	if direction == SwapBToA {
		assetIn, assetOut = record.AssetB, record.AssetA
	}
	return &SwapResult{
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  amountIn,
		FeePaid:   amountIn - afterFee,
		AmountOut: amountOut,
		ReserveA:  record.ReserveA,
		ReserveB:  record.ReserveB,
	}, nil
}

// GetPool returns a copy of an initialized pool record.
func (e *Engine) GetPool(control crypto.Address) (*State, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadPool(control)
	if err != nil {
		return nil, err
	}
	return record.Copy(), nil
}

// applyFee floors the basis-point fee off an input amount.
func applyFee(amountIn uint64, feeBps uint32) uint64 {
	return mulDivFloor(amountIn, uint64(feeDenominator-feeBps), feeDenominator)
}
