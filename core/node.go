// Package core hosts the pool engine: it decodes operation envelopes, scopes
// each one inside a state transaction and commits or rolls back the whole
// unit of work.
package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dexpool/core/events"
	"dexpool/core/state"
	"dexpool/crypto"
	"dexpool/native/pool"
	"dexpool/native/pool/pricing"
	"dexpool/observability"
	"dexpool/storage"
)

// Node executes pool operations one at a time. Operations on the same pool
// must never run concurrently; the node's lock provides that exclusivity so
// the engine itself stays lock-free.
type Node struct {
	mu      sync.Mutex
	sm      *state.Manager
	engine  *pool.Engine
	logger  *slog.Logger
	metrics *observability.PoolMetrics
}

// NodeOption customises node construction.
type NodeOption func(*Node)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) { n.logger = logger }
}

// NewNode wires a node over a database and a strategy registry.
func NewNode(db storage.Database, strategies *pricing.Registry, opts ...NodeOption) *Node {
	n := &Node{
		sm:      state.NewManager(db),
		engine:  pool.NewEngine(strategies),
		logger:  slog.Default(),
		metrics: observability.Pool(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetFeeBps overrides the fee applied to newly created pools.
func (n *Node) SetFeeBps(bps uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SetFeeBps(bps)
}

// Credit funds an account outside operation flow. Genesis and test setup
// only.
func (n *Node) Credit(asset, account crypto.Address, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sm.Credit(asset, account, amount)
}

// ExecutionResult carries the per-operation result and the events the
// operation emitted. Exactly one result field is non-nil.
type ExecutionResult struct {
	Create          *pool.CreateResult
	AddLiquidity    *pool.AddLiquidityResult
	Swap            *pool.SwapResult
	RemoveLiquidity *pool.RemoveLiquidityResult
	Events          []events.Event
}

// Execute runs one operation atomically: every reserve, supply and balance
// change commits together or not at all. Failed operations leave no trace
// and are never retried internally.
func (n *Node) Execute(ix pool.Instruction) (*ExecutionResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	op := opName(ix)
	start := time.Now()

	recorder := new(events.Recorder)
	txn := n.sm.Begin()
	n.engine.SetState(txn)
	n.engine.SetLedger(txn)
	n.engine.SetEmitter(recorder)

	result := new(ExecutionResult)
	var err error
	switch uint8(ix.Op) {
	case pool.OpCreatePool:
		result.Create, err = n.engine.CreatePool(ix.CreatePool)
	case pool.OpAddLiquidity:
		result.AddLiquidity, err = n.engine.AddLiquidity(ix.AddLiquidity)
	case pool.OpSwap:
		result.Swap, err = n.engine.Swap(ix.Swap)
	case pool.OpRemoveLiquidity:
		result.RemoveLiquidity, err = n.engine.RemoveLiquidity(ix.RemoveLiquidity)
	default:
		err = fmt.Errorf("core: unknown operation tag %d", ix.Op)
	}

	if err == nil {
		err = txn.Commit()
	} else {
		txn.Discard()
	}
	n.metrics.Observe(op, err, time.Since(start))

	if err != nil {
		n.logger.Warn("operation rejected", "op", op, "err", err)
		return nil, err
	}
	result.Events = recorder.Drain()
	n.logger.Info("operation applied", "op", op, "elapsed", time.Since(start))
	return result, nil
}

// GetPool returns a copy of an initialized pool record.
func (n *Node) GetPool(control crypto.Address) (*pool.State, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	txn := n.sm.Begin()
	defer txn.Discard()
	n.engine.SetState(txn)
	n.engine.SetLedger(txn)
	return n.engine.GetPool(control)
}

// SimulateSwap prices a swap without mutating anything.
func (n *Node) SimulateSwap(control crypto.Address, direction pool.SwapDirection, amountIn uint64) (*pool.SwapResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	txn := n.sm.Begin()
	defer txn.Discard()
	n.engine.SetState(txn)
	n.engine.SetLedger(txn)
	return n.engine.SimulateSwap(control, direction, amountIn)
}

// BalanceOf reads an account balance. Share balances use the share mint as
// the asset identifier.
func (n *Node) BalanceOf(asset, account crypto.Address) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	txn := n.sm.Begin()
	defer txn.Discard()
	return txn.BalanceOf(asset, account)
}

func opName(ix pool.Instruction) string {
	switch uint8(ix.Op) {
	case pool.OpCreatePool:
		return "create_pool"
	case pool.OpAddLiquidity:
		return "add_liquidity"
	case pool.OpSwap:
		return "swap"
	case pool.OpRemoveLiquidity:
		return "remove_liquidity"
	default:
		return "unknown"
	}
}
