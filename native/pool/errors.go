package pool

import "errors"

var (
	// ErrAlreadyInitialized indicates a create targeting an existing pool.
	ErrAlreadyInitialized = errors.New("pool: already initialized")
	// ErrAddressMismatch indicates the caller-supplied control address does
	// not match the derivation for the given pair and strategy.
	ErrAddressMismatch = errors.New("pool: control address mismatch")
	// ErrInvalidVault indicates a vault or share mint failed its creation
	// preconditions (non-zero balance, prior owner, live supply).
	ErrInvalidVault = errors.New("pool: invalid vault")
	// ErrIdenticalAssets indicates the two pooled assets are the same.
	ErrIdenticalAssets = errors.New("pool: assets must be different")
	// ErrZeroDeposit indicates a first deposit with a zero side.
	ErrZeroDeposit = errors.New("pool: zero deposit")
	// ErrDustDeposit indicates a deposit too small to mint any shares.
	ErrDustDeposit = errors.New("pool: deposit mints zero shares")
	// ErrMathOverflow indicates an arithmetic overflow during accounting.
	ErrMathOverflow = errors.New("pool: arithmetic overflow")
	// ErrInsufficientShares indicates a burn exceeding the caller's balance
	// or the outstanding supply.
	ErrInsufficientShares = errors.New("pool: insufficient shares")
	// ErrZeroWithdrawal indicates a withdrawal that would return nothing.
	ErrZeroWithdrawal = errors.New("pool: zero withdrawal")
	// ErrZeroSwapAmount indicates a swap with no input, or one whose output
	// computes to zero.
	ErrZeroSwapAmount = errors.New("pool: zero swap amount")
	// ErrInvalidDirection indicates a swap direction outside the enum.
	ErrInvalidDirection = errors.New("pool: invalid swap direction")
	// ErrSlippageExceeded indicates the computed output fell below the
	// caller's minimum.
	ErrSlippageExceeded = errors.New("pool: slippage limit exceeded")
	// ErrInsufficientLiquidity indicates a swap that would drain the output
	// reserve.
	ErrInsufficientLiquidity = errors.New("pool: insufficient liquidity")
	// ErrInvalidStrategyResponse indicates the pricing strategy returned an
	// inconsistent result.
	ErrInvalidStrategyResponse = errors.New("pool: invalid strategy response")
	// ErrAddressDerivationExhausted indicates no keyless control address was
	// found within the bounded nonce search.
	ErrAddressDerivationExhausted = errors.New("pool: address derivation exhausted")
	// ErrUnauthorized indicates a control-account mismatch on a mutating call.
	ErrUnauthorized = errors.New("pool: unauthorized")
	// ErrPoolNotFound indicates no initialized pool at the control address.
	ErrPoolNotFound = errors.New("pool: not found")
	// ErrStrategyNotFound indicates the bound strategy identity is not
	// registered with the engine.
	ErrStrategyNotFound = errors.New("pool: strategy not registered")
)
