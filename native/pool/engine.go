package pool

import (
	"errors"
	"fmt"

	"dexpool/core/events"
	"dexpool/crypto"
	"dexpool/native/pool/pricing"
)

// DefaultFeeBps is the swap fee newly created pools are bound to, in basis
// points (30 = 0.3%).
const DefaultFeeBps uint32 = 30

// feeDenominator is 100% in basis points.
const feeDenominator = 10_000

// engineState is the subset of state-manager functionality the engine needs.
// One record per pool, addressed by control address, plus a vault ownership
// index enforcing exclusive control.
type engineState interface {
	PoolGet(control crypto.Address) (*State, bool, error)
	PoolPut(*State) error
	VaultOwner(vault crypto.Address) (crypto.Address, bool, error)
	BindVault(vault, control crypto.Address) error
}

// Ledger is the asset-transfer collaborator: the external primitive that
// physically moves balances between vaults and users and mints or burns pool
// shares. Its effects commit or roll back together with the engine's own
// state changes; the hosting transaction provides that atomicity.
type Ledger interface {
	BalanceOf(asset, account crypto.Address) (uint64, error)
	Transfer(asset, from, to crypto.Address, amount uint64) error
	MintSupply(mint crypto.Address) (uint64, error)
	MintAuthority(mint crypto.Address) (crypto.Address, bool, error)
	SetMintAuthority(mint, authority crypto.Address) error
	Mint(mint, to crypto.Address, amount uint64) error
	Burn(mint, from crypto.Address, amount uint64) error
}

// Engine executes pool operations against a state backend and a ledger. It
// performs no internal locking: the host serializes operations per pool and
// wraps each call in an all-or-nothing transaction.
type Engine struct {
	state      engineState
	ledger     Ledger
	strategies *pricing.Registry
	emitter    events.Emitter
	feeBps     uint32
}

// NewEngine constructs an engine bound to a strategy registry.
func NewEngine(strategies *pricing.Registry) *Engine {
	return &Engine{
		strategies: strategies,
		emitter:    events.NoopEmitter{},
		feeBps:     DefaultFeeBps,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the asset-transfer collaborator.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetFeeBps overrides the fee applied to pools created after the call.
func (e *Engine) SetFeeBps(bps uint32) error {
	if bps >= feeDenominator {
		return fmt.Errorf("pool: fee must be below %d bps", feeDenominator)
	}
	e.feeBps = bps
	return nil
}

var (
	errNilState  = errors.New("pool engine: state not configured")
	errNilLedger = errors.New("pool engine: ledger not configured")
)

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

// CreateResult reports the record written by CreatePool.
type CreateResult struct {
	Pool *State
}

// CreatePool validates the claimed control address against the derivation,
// checks the vaults are fresh and the share mint assignable, and writes the
// initialized zero-reserve record. No side effects on failure.
func (e *Engine) CreatePool(req CreatePoolData) (*CreateResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.AssetA == req.AssetB {
		return nil, ErrIdenticalAssets
	}
	if req.VaultA == req.VaultB {
		return nil, ErrInvalidVault
	}

	derived, err := DeriveControlAddress(req.AssetA, req.AssetB, req.StrategyID, req.StrategyState)
	if err != nil {
		return nil, err
	}
	if derived.Address != req.ControlAddress {
		return nil, ErrAddressMismatch
	}
	if _, ok := e.strategies.Lookup(req.StrategyID); !ok {
		return nil, ErrStrategyNotFound
	}

	if existing, ok, err := e.state.PoolGet(derived.Address); err != nil {
		return nil, err
	} else if ok && existing.Initialized {
		return nil, ErrAlreadyInitialized
	}

	if err := e.checkFreshVault(req.VaultA, req.AssetA); err != nil {
		return nil, err
	}
	if err := e.checkFreshVault(req.VaultB, req.AssetB); err != nil {
		return nil, err
	}
	if err := e.checkShareMint(req.ShareMint, derived.Address); err != nil {
		return nil, err
	}

	if err := e.state.BindVault(req.VaultA, derived.Address); err != nil {
		return nil, err
	}
	if err := e.state.BindVault(req.VaultB, derived.Address); err != nil {
		return nil, err
	}
	if err := e.ledger.SetMintAuthority(req.ShareMint, derived.Address); err != nil {
		return nil, err
	}

	record := &State{
		ControlAddress:   derived.Address,
		AssetA:           req.AssetA,
		AssetB:           req.AssetB,
		VaultA:           req.VaultA,
		VaultB:           req.VaultB,
		ShareMint:        req.ShareMint,
		StrategyID:       req.StrategyID,
		StrategyStateRef: req.StrategyState,
		FeeBps:           e.feeBps,
		Nonce:            derived.Nonce,
		Initialized:      true,
	}
	if err := e.state.PoolPut(record); err != nil {
		return nil, err
	}

	e.emit(events.PoolCreated{
		Pool:       record.ControlAddress,
		AssetA:     record.AssetA,
		AssetB:     record.AssetB,
		StrategyID: record.StrategyID,
	})
	return &CreateResult{Pool: record.Copy()}, nil
}

// checkFreshVault requires a zero balance and no prior pool binding.
func (e *Engine) checkFreshVault(vault, asset crypto.Address) error {
	if vault.IsZero() {
		return ErrInvalidVault
	}
	if _, bound, err := e.state.VaultOwner(vault); err != nil {
		return err
	} else if bound {
		return ErrInvalidVault
	}
	balance, err := e.ledger.BalanceOf(asset, vault)
	if err != nil {
		return err
	}
	if balance != 0 {
		return ErrInvalidVault
	}
	return nil
}

// checkShareMint requires zero outstanding supply and an issuance authority
// that is unset or already the pool's control address.
func (e *Engine) checkShareMint(mint, control crypto.Address) error {
	if mint.IsZero() {
		return ErrInvalidVault
	}
	supply, err := e.ledger.MintSupply(mint)
	if err != nil {
		return err
	}
	if supply != 0 {
		return ErrInvalidVault
	}
	authority, set, err := e.ledger.MintAuthority(mint)
	if err != nil {
		return err
	}
	if set && authority != control {
		return ErrInvalidVault
	}
	return nil
}

// loadPool fetches an initialized record and re-checks its identity: the
// stored control address must match the derivation over the stored fields at
// the stored nonce. A mismatch means the record was tampered with outside
// the engine.
func (e *Engine) loadPool(control crypto.Address) (*State, error) {
	record, ok, err := e.state.PoolGet(control)
	if err != nil {
		return nil, err
	}
	if !ok || !record.Initialized {
		return nil, ErrPoolNotFound
	}
	expected, err := controlAddressAt(
		record.AssetA, record.AssetB,
		record.StrategyID, record.StrategyStateRef,
		record.Nonce,
	)
	if err != nil {
		return nil, err
	}
	if expected != control || record.ControlAddress != control {
		return nil, ErrUnauthorized
	}
	return record, nil
}

// strategyFor resolves the strategy bound to a pool record.
func (e *Engine) strategyFor(record *State) (pricing.Strategy, error) {
	strategy, ok := e.strategies.Lookup(record.StrategyID)
	if !ok {
		return nil, ErrStrategyNotFound
	}
	return strategy, nil
}

// mapPricingErr translates strategy errors into the engine's error kinds.
func mapPricingErr(err error) error {
	switch {
	case errors.Is(err, pricing.ErrOverflow):
		return ErrMathOverflow
	case errors.Is(err, pricing.ErrEmptyReserves):
		return ErrInsufficientLiquidity
	case errors.Is(err, pricing.ErrInvalidBurn):
		return ErrInsufficientShares
	default:
		return fmt.Errorf("%w: %v", ErrInvalidStrategyResponse, err)
	}
}
