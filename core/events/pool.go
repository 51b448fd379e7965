package events

import (
	"strconv"

	"dexpool/crypto"
)

const (
	// TypePoolCreated is emitted when a pool transitions to initialized.
	TypePoolCreated = "pool.created"
	// TypeLiquidityAdded is emitted after a successful deposit.
	TypeLiquidityAdded = "pool.liquidity_added"
	// TypeLiquidityRemoved is emitted after a successful withdrawal.
	TypeLiquidityRemoved = "pool.liquidity_removed"
	// TypeSwapped is emitted after a successful swap.
	TypeSwapped = "pool.swapped"
)

type PoolCreated struct {
	Pool       crypto.Address
	AssetA     crypto.Address
	AssetB     crypto.Address
	StrategyID crypto.Address
}

func (PoolCreated) EventType() string { return TypePoolCreated }

func (e PoolCreated) Attributes() map[string]string {
	return map[string]string{
		"pool":     e.Pool.String(),
		"assetA":   e.AssetA.String(),
		"assetB":   e.AssetB.String(),
		"strategy": e.StrategyID.String(),
	}
}

type LiquidityAdded struct {
	Pool         crypto.Address
	Provider     crypto.Address
	AcceptedA    uint64
	AcceptedB    uint64
	SharesMinted uint64
	ReserveA     uint64
	ReserveB     uint64
}

func (LiquidityAdded) EventType() string { return TypeLiquidityAdded }

func (e LiquidityAdded) Attributes() map[string]string {
	return map[string]string{
		"pool":         e.Pool.String(),
		"provider":     e.Provider.String(),
		"acceptedA":    strconv.FormatUint(e.AcceptedA, 10),
		"acceptedB":    strconv.FormatUint(e.AcceptedB, 10),
		"sharesMinted": strconv.FormatUint(e.SharesMinted, 10),
		"reserveA":     strconv.FormatUint(e.ReserveA, 10),
		"reserveB":     strconv.FormatUint(e.ReserveB, 10),
	}
}

type LiquidityRemoved struct {
	Pool         crypto.Address
	Provider     crypto.Address
	ReturnA      uint64
	ReturnB      uint64
	SharesBurned uint64
	ReserveA     uint64
	ReserveB     uint64
}

func (LiquidityRemoved) EventType() string { return TypeLiquidityRemoved }

func (e LiquidityRemoved) Attributes() map[string]string {
	return map[string]string{
		"pool":         e.Pool.String(),
		"provider":     e.Provider.String(),
		"returnA":      strconv.FormatUint(e.ReturnA, 10),
		"returnB":      strconv.FormatUint(e.ReturnB, 10),
		"sharesBurned": strconv.FormatUint(e.SharesBurned, 10),
		"reserveA":     strconv.FormatUint(e.ReserveA, 10),
		"reserveB":     strconv.FormatUint(e.ReserveB, 10),
	}
}

type Swapped struct {
	Pool      crypto.Address
	Trader    crypto.Address
	AssetIn   crypto.Address
	AssetOut  crypto.Address
	AmountIn  uint64
	AmountOut uint64
	ReserveA  uint64
	ReserveB  uint64
}

func (Swapped) EventType() string { return TypeSwapped }

func (e Swapped) Attributes() map[string]string {
	return map[string]string{
		"pool":      e.Pool.String(),
		"trader":    e.Trader.String(),
		"assetIn":   e.AssetIn.String(),
		"assetOut":  e.AssetOut.String(),
		"amountIn":  strconv.FormatUint(e.AmountIn, 10),
		"amountOut": strconv.FormatUint(e.AmountOut, 10),
		"reserveA":  strconv.FormatUint(e.ReserveA, 10),
		"reserveB":  strconv.FormatUint(e.ReserveB, 10),
	}
}
