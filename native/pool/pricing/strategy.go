// Package pricing defines the strategy protocol the pool engine consults for
// curve math. A strategy is a pure oracle: it receives reserve snapshots and
// amounts, returns numbers, and never touches pool state, vaults or balances.
// New curve types (stable-swap, weighted pools) plug in by registering a new
// implementation under a distinct strategy identity.
package pricing

import (
	"errors"
	"sync"

	"dexpool/crypto"
)

var (
	// ErrEmptyReserves indicates a computation was attempted against a pool
	// side with no liquidity.
	ErrEmptyReserves = errors.New("pricing: empty reserves")
	// ErrOverflow indicates an intermediate value exceeded the numeric domain.
	ErrOverflow = errors.New("pricing: arithmetic overflow")
	// ErrInvalidBurn indicates a withdrawal request outside (0, shareSupply].
	ErrInvalidBurn = errors.New("pricing: invalid burn amount")
)

// Strategy computes swap outputs for a pool. stateRef identifies the
// strategy's private state; implementations that need no per-pool state may
// ignore it.
type Strategy interface {
	// SwapOut returns the output amount for a swap given the input-side and
	// output-side reserves and the fee-adjusted input amount.
	SwapOut(reserveIn, reserveOut, amountInAfterFee uint64, stateRef crypto.Address) (uint64, error)
}

// ShareMath is an optional extension a Strategy may implement to take over
// the pool's liquidity-share accounting. The engine falls back to its own
// proportional math when the bound strategy does not implement it.
type ShareMath interface {
	// LiquidityShares returns the accepted deposit amounts and the number of
	// shares to mint for a desired deposit.
	LiquidityShares(reserveA, reserveB, depositA, depositB, shareSupply uint64) (acceptedA, acceptedB, shares uint64, err error)
	// WithdrawAmounts returns the proportional withdrawal for burning shares.
	WithdrawAmounts(reserveA, reserveB, shareSupply, burnShares uint64) (outA, outB uint64, err error)
}

// Registry maps strategy identities to implementations. The identity is the
// value pools bind at creation; lookups happen on every swap.
type Registry struct {
	mu         sync.RWMutex
	strategies map[crypto.Address]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[crypto.Address]Strategy)}
}

// Register binds a strategy implementation to an identity, replacing any
// previous binding.
func (r *Registry) Register(id crypto.Address, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[id] = s
}

// Lookup resolves a strategy identity.
func (r *Registry) Lookup(id crypto.Address) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}
