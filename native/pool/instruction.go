package pool

import (
	"fmt"

	"github.com/near/borsh-go"

	"dexpool/crypto"
)

// Operations are carried as a Borsh-encoded tagged union: a single tag byte
// selects the variant, followed by the variant's fixed-width fields
// (addresses as 32 raw bytes, amounts as little-endian u64). The schema is a
// closed prototype protocol; client and engine share this definition.
//
// Variant tags: 0 CreatePool, 1 AddLiquidity, 2 Swap, 3 RemoveLiquidity.

// CreatePoolData names every resource a pool is created from. The control
// address is caller-supplied and must match the engine's derivation.
type CreatePoolData struct {
	Caller         crypto.Address
	ControlAddress crypto.Address
	VaultA         crypto.Address
	VaultB         crypto.Address
	ShareMint      crypto.Address
	AssetA         crypto.Address
	AssetB         crypto.Address
	StrategyID     crypto.Address
	StrategyState  crypto.Address
}

// AddLiquidityData carries the desired deposit amounts.
type AddLiquidityData struct {
	Caller  crypto.Address
	Pool    crypto.Address
	AmountA uint64
	AmountB uint64
}

// SwapData carries the direction, input amount and slippage bound.
type SwapData struct {
	Caller       crypto.Address
	Pool         crypto.Address
	Direction    uint8
	AmountIn     uint64
	MinAmountOut uint64
}

// RemoveLiquidityData carries the share amount to burn.
type RemoveLiquidityData struct {
	Caller       crypto.Address
	Pool         crypto.Address
	AmountShares uint64
}

// Instruction is the discriminated operation envelope.
type Instruction struct {
	Op              borsh.Enum `borsh_enum:"true"`
	CreatePool      CreatePoolData
	AddLiquidity    AddLiquidityData
	Swap            SwapData
	RemoveLiquidity RemoveLiquidityData
}

// Operation tags.
const (
	OpCreatePool uint8 = iota
	OpAddLiquidity
	OpSwap
	OpRemoveLiquidity
)

// NewCreatePoolInstruction wraps create data in an instruction envelope.
func NewCreatePoolInstruction(data CreatePoolData) Instruction {
	return Instruction{Op: borsh.Enum(OpCreatePool), CreatePool: data}
}

// NewAddLiquidityInstruction wraps deposit data in an instruction envelope.
func NewAddLiquidityInstruction(data AddLiquidityData) Instruction {
	return Instruction{Op: borsh.Enum(OpAddLiquidity), AddLiquidity: data}
}

// NewSwapInstruction wraps swap data in an instruction envelope.
func NewSwapInstruction(data SwapData) Instruction {
	return Instruction{Op: borsh.Enum(OpSwap), Swap: data}
}

// NewRemoveLiquidityInstruction wraps withdrawal data in an instruction
// envelope.
func NewRemoveLiquidityInstruction(data RemoveLiquidityData) Instruction {
	return Instruction{Op: borsh.Enum(OpRemoveLiquidity), RemoveLiquidity: data}
}

// Encode serializes the instruction to its wire form.
func (ix Instruction) Encode() ([]byte, error) {
	raw, err := borsh.Serialize(ix)
	if err != nil {
		return nil, fmt.Errorf("pool: encode instruction: %w", err)
	}
	return raw, nil
}

// DecodeInstruction parses a wire-form instruction.
func DecodeInstruction(raw []byte) (Instruction, error) {
	var ix Instruction
	if err := borsh.Deserialize(&ix, raw); err != nil {
		return Instruction{}, fmt.Errorf("pool: decode instruction: %w", err)
	}
	if uint8(ix.Op) > OpRemoveLiquidity {
		return Instruction{}, fmt.Errorf("pool: unknown operation tag %d", ix.Op)
	}
	if uint8(ix.Op) == OpSwap && ix.Swap.Direction > uint8(SwapBToA) {
		return Instruction{}, fmt.Errorf("%w: %d", ErrInvalidDirection, ix.Swap.Direction)
	}
	return ix, nil
}
