package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"dexpool/core/events"
	"dexpool/crypto"
	"dexpool/native/pool"
)

// Amounts travel as decimal strings so callers are never exposed to JSON
// number precision loss above 2^53.

type createPoolParams struct {
	Caller         string `json:"caller"`
	ControlAddress string `json:"controlAddress"`
	VaultA         string `json:"vaultA"`
	VaultB         string `json:"vaultB"`
	ShareMint      string `json:"shareMint"`
	AssetA         string `json:"assetA"`
	AssetB         string `json:"assetB"`
	StrategyID     string `json:"strategyId"`
	StrategyState  string `json:"strategyState"`
}

type addLiquidityParams struct {
	Caller  string `json:"caller"`
	Pool    string `json:"pool"`
	AmountA string `json:"amountA"`
	AmountB string `json:"amountB"`
}

type swapParams struct {
	Caller       string `json:"caller"`
	Pool         string `json:"pool"`
	Direction    string `json:"direction"`
	AmountIn     string `json:"amountIn"`
	MinAmountOut string `json:"minAmountOut"`
}

type removeLiquidityParams struct {
	Caller       string `json:"caller"`
	Pool         string `json:"pool"`
	AmountShares string `json:"amountShares"`
}

type poolRefParams struct {
	Pool string `json:"pool"`
}

type simulateSwapParams struct {
	Pool      string `json:"pool"`
	Direction string `json:"direction"`
	AmountIn  string `json:"amountIn"`
}

type deriveAddressParams struct {
	AssetA        string `json:"assetA"`
	AssetB        string `json:"assetB"`
	StrategyID    string `json:"strategyId"`
	StrategyState string `json:"strategyState"`
}

type submitRawParams struct {
	Payload string `json:"payload"`
}

type submitRawResult struct {
	Op              string                 `json:"op"`
	Pool            *poolStateDTO          `json:"pool,omitempty"`
	AddLiquidity    *addLiquidityResult    `json:"addLiquidity,omitempty"`
	Swap            *swapRPCResult         `json:"swap,omitempty"`
	RemoveLiquidity *removeLiquidityResult `json:"removeLiquidity,omitempty"`
	Events          []eventDTO             `json:"events"`
}

type eventDTO struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

type poolStateDTO struct {
	ControlAddress   string `json:"controlAddress"`
	AssetA           string `json:"assetA"`
	AssetB           string `json:"assetB"`
	VaultA           string `json:"vaultA"`
	VaultB           string `json:"vaultB"`
	ShareMint        string `json:"shareMint"`
	ReserveA         string `json:"reserveA"`
	ReserveB         string `json:"reserveB"`
	ShareSupply      string `json:"shareSupply"`
	StrategyID       string `json:"strategyId"`
	StrategyStateRef string `json:"strategyStateRef"`
	FeeBps           uint32 `json:"feeBps"`
	Nonce            uint8  `json:"nonce"`
}

type createPoolResult struct {
	Pool   poolStateDTO `json:"pool"`
	Events []eventDTO   `json:"events"`
}

type addLiquidityResult struct {
	AcceptedA    string     `json:"acceptedA"`
	AcceptedB    string     `json:"acceptedB"`
	MintedShares string     `json:"mintedShares"`
	ReserveA     string     `json:"reserveA"`
	ReserveB     string     `json:"reserveB"`
	ShareSupply  string     `json:"shareSupply"`
	Events       []eventDTO `json:"events"`
}

type swapRPCResult struct {
	AssetIn   string     `json:"assetIn"`
	AssetOut  string     `json:"assetOut"`
	AmountIn  string     `json:"amountIn"`
	FeePaid   string     `json:"feePaid"`
	AmountOut string     `json:"amountOut"`
	ReserveA  string     `json:"reserveA"`
	ReserveB  string     `json:"reserveB"`
	Events    []eventDTO `json:"events,omitempty"`
}

type removeLiquidityResult struct {
	ReturnA      string     `json:"returnA"`
	ReturnB      string     `json:"returnB"`
	BurnedShares string     `json:"burnedShares"`
	ReserveA     string     `json:"reserveA"`
	ReserveB     string     `json:"reserveB"`
	ShareSupply  string     `json:"shareSupply"`
	Events       []eventDTO `json:"events"`
}

type deriveAddressResult struct {
	ControlAddress string `json:"controlAddress"`
	Nonce          uint8  `json:"nonce"`
}

func (s *Server) handleCreate(raw json.RawMessage) (interface{}, *rpcError) {
	var p createPoolParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	data := pool.CreatePoolData{}
	fields := []struct {
		dst  *crypto.Address
		src  string
		name string
	}{
		{&data.Caller, p.Caller, "caller"},
		{&data.ControlAddress, p.ControlAddress, "controlAddress"},
		{&data.VaultA, p.VaultA, "vaultA"},
		{&data.VaultB, p.VaultB, "vaultB"},
		{&data.ShareMint, p.ShareMint, "shareMint"},
		{&data.AssetA, p.AssetA, "assetA"},
		{&data.AssetB, p.AssetB, "assetB"},
		{&data.StrategyID, p.StrategyID, "strategyId"},
	}
	for _, f := range fields {
		addr, err := crypto.DecodeAddress(f.src)
		if err != nil {
			return nil, invalidParams("invalid " + f.name)
		}
		*f.dst = addr
	}
	// The strategy state reference is optional and defaults to the zero
	// address for stateless strategies.
	if p.StrategyState != "" {
		addr, err := crypto.DecodeAddress(p.StrategyState)
		if err != nil {
			return nil, invalidParams("invalid strategyState")
		}
		data.StrategyState = addr
	}

	res, err := s.node.Execute(pool.NewCreatePoolInstruction(data))
	if err != nil {
		return nil, serverError(err)
	}
	return createPoolResult{Pool: statePayload(res.Create.Pool), Events: eventPayload(res.Events)}, nil
}

func (s *Server) handleAddLiquidity(raw json.RawMessage) (interface{}, *rpcError) {
	var p addLiquidityParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	caller, err := crypto.DecodeAddress(p.Caller)
	if err != nil {
		return nil, invalidParams("invalid caller")
	}
	poolAddr, err := crypto.DecodeAddress(p.Pool)
	if err != nil {
		return nil, invalidParams("invalid pool")
	}
	amountA, err := parseAmount(p.AmountA)
	if err != nil {
		return nil, invalidParams("invalid amountA")
	}
	amountB, err := parseAmount(p.AmountB)
	if err != nil {
		return nil, invalidParams("invalid amountB")
	}

	res, execErr := s.node.Execute(pool.NewAddLiquidityInstruction(pool.AddLiquidityData{
		Caller:  caller,
		Pool:    poolAddr,
		AmountA: amountA,
		AmountB: amountB,
	}))
	if execErr != nil {
		return nil, serverError(execErr)
	}
	r := res.AddLiquidity
	return addLiquidityResult{
		AcceptedA:    formatAmount(r.AcceptedA),
		AcceptedB:    formatAmount(r.AcceptedB),
		MintedShares: formatAmount(r.MintedShares),
		ReserveA:     formatAmount(r.ReserveA),
		ReserveB:     formatAmount(r.ReserveB),
		ShareSupply:  formatAmount(r.ShareSupply),
		Events:       eventPayload(res.Events),
	}, nil
}

func (s *Server) handleSwap(raw json.RawMessage) (interface{}, *rpcError) {
	var p swapParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	caller, err := crypto.DecodeAddress(p.Caller)
	if err != nil {
		return nil, invalidParams("invalid caller")
	}
	poolAddr, err := crypto.DecodeAddress(p.Pool)
	if err != nil {
		return nil, invalidParams("invalid pool")
	}
	direction, err := parseDirection(p.Direction)
	if err != nil {
		return nil, invalidParams("invalid direction")
	}
	amountIn, err := parseAmount(p.AmountIn)
	if err != nil {
		return nil, invalidParams("invalid amountIn")
	}
	minOut, err := parseAmount(p.MinAmountOut)
	if err != nil {
		return nil, invalidParams("invalid minAmountOut")
	}

	res, execErr := s.node.Execute(pool.NewSwapInstruction(pool.SwapData{
		Caller:       caller,
		Pool:         poolAddr,
		Direction:    uint8(direction),
		AmountIn:     amountIn,
		MinAmountOut: minOut,
	}))
	if execErr != nil {
		return nil, serverError(execErr)
	}
	out := swapPayload(res.Swap)
	out.Events = eventPayload(res.Events)
	return out, nil
}

func (s *Server) handleRemoveLiquidity(raw json.RawMessage) (interface{}, *rpcError) {
	var p removeLiquidityParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	caller, err := crypto.DecodeAddress(p.Caller)
	if err != nil {
		return nil, invalidParams("invalid caller")
	}
	poolAddr, err := crypto.DecodeAddress(p.Pool)
	if err != nil {
		return nil, invalidParams("invalid pool")
	}
	amount, err := parseAmount(p.AmountShares)
	if err != nil {
		return nil, invalidParams("invalid amountShares")
	}

	res, execErr := s.node.Execute(pool.NewRemoveLiquidityInstruction(pool.RemoveLiquidityData{
		Caller:       caller,
		Pool:         poolAddr,
		AmountShares: amount,
	}))
	if execErr != nil {
		return nil, serverError(execErr)
	}
	r := res.RemoveLiquidity
	return removeLiquidityResult{
		ReturnA:      formatAmount(r.ReturnA),
		ReturnB:      formatAmount(r.ReturnB),
		BurnedShares: formatAmount(r.BurnedShares),
		ReserveA:     formatAmount(r.ReserveA),
		ReserveB:     formatAmount(r.ReserveB),
		ShareSupply:  formatAmount(r.ShareSupply),
		Events:       eventPayload(res.Events),
	}, nil
}

func (s *Server) handleGet(raw json.RawMessage) (interface{}, *rpcError) {
	var p poolRefParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	poolAddr, err := crypto.DecodeAddress(p.Pool)
	if err != nil {
		return nil, invalidParams("invalid pool")
	}
	st, err := s.node.GetPool(poolAddr)
	if err != nil {
		return nil, serverError(err)
	}
	return statePayload(st), nil
}

func (s *Server) handleSimulateSwap(raw json.RawMessage) (interface{}, *rpcError) {
	var p simulateSwapParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	poolAddr, err := crypto.DecodeAddress(p.Pool)
	if err != nil {
		return nil, invalidParams("invalid pool")
	}
	direction, err := parseDirection(p.Direction)
	if err != nil {
		return nil, invalidParams("invalid direction")
	}
	amountIn, err := parseAmount(p.AmountIn)
	if err != nil {
		return nil, invalidParams("invalid amountIn")
	}
	res, simErr := s.node.SimulateSwap(poolAddr, direction, amountIn)
	if simErr != nil {
		return nil, serverError(simErr)
	}
	return swapPayload(res), nil
}

func (s *Server) handleDeriveAddress(raw json.RawMessage) (interface{}, *rpcError) {
	var p deriveAddressParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	assetA, err := crypto.DecodeAddress(p.AssetA)
	if err != nil {
		return nil, invalidParams("invalid assetA")
	}
	assetB, err := crypto.DecodeAddress(p.AssetB)
	if err != nil {
		return nil, invalidParams("invalid assetB")
	}
	strategyID, err := crypto.DecodeAddress(p.StrategyID)
	if err != nil {
		return nil, invalidParams("invalid strategyId")
	}
	var stateRef crypto.Address
	if p.StrategyState != "" {
		stateRef, err = crypto.DecodeAddress(p.StrategyState)
		if err != nil {
			return nil, invalidParams("invalid strategyState")
		}
	}
	derived, derErr := pool.DeriveControlAddress(assetA, assetB, strategyID, stateRef)
	if derErr != nil {
		return nil, serverError(derErr)
	}
	return deriveAddressResult{ControlAddress: derived.Address.String(), Nonce: derived.Nonce}, nil
}

// handleSubmitRaw accepts a hex-encoded wire instruction, the same Borsh
// envelope off-process clients produce, and executes it.
func (s *Server) handleSubmitRaw(raw json.RawMessage) (interface{}, *rpcError) {
	var p submitRawParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams("malformed params")
	}
	payload, err := hex.DecodeString(p.Payload)
	if err != nil {
		return nil, invalidParams("payload must be hex")
	}
	ix, err := pool.DecodeInstruction(payload)
	if err != nil {
		return nil, invalidParams(err.Error())
	}

	res, execErr := s.node.Execute(ix)
	if execErr != nil {
		return nil, serverError(execErr)
	}

	out := submitRawResult{Events: eventPayload(res.Events)}
	switch {
	case res.Create != nil:
		out.Op = "create_pool"
		state := statePayload(res.Create.Pool)
		out.Pool = &state
	case res.AddLiquidity != nil:
		out.Op = "add_liquidity"
		r := res.AddLiquidity
		out.AddLiquidity = &addLiquidityResult{
			AcceptedA:    formatAmount(r.AcceptedA),
			AcceptedB:    formatAmount(r.AcceptedB),
			MintedShares: formatAmount(r.MintedShares),
			ReserveA:     formatAmount(r.ReserveA),
			ReserveB:     formatAmount(r.ReserveB),
			ShareSupply:  formatAmount(r.ShareSupply),
		}
	case res.Swap != nil:
		out.Op = "swap"
		swap := swapPayload(res.Swap)
		out.Swap = &swap
	case res.RemoveLiquidity != nil:
		out.Op = "remove_liquidity"
		r := res.RemoveLiquidity
		out.RemoveLiquidity = &removeLiquidityResult{
			ReturnA:      formatAmount(r.ReturnA),
			ReturnB:      formatAmount(r.ReturnB),
			BurnedShares: formatAmount(r.BurnedShares),
			ReserveA:     formatAmount(r.ReserveA),
			ReserveB:     formatAmount(r.ReserveB),
			ShareSupply:  formatAmount(r.ShareSupply),
		}
	}
	return out, nil
}

func statePayload(st *pool.State) poolStateDTO {
	return poolStateDTO{
		ControlAddress:   st.ControlAddress.String(),
		AssetA:           st.AssetA.String(),
		AssetB:           st.AssetB.String(),
		VaultA:           st.VaultA.String(),
		VaultB:           st.VaultB.String(),
		ShareMint:        st.ShareMint.String(),
		ReserveA:         formatAmount(st.ReserveA),
		ReserveB:         formatAmount(st.ReserveB),
		ShareSupply:      formatAmount(st.ShareSupply),
		StrategyID:       st.StrategyID.String(),
		StrategyStateRef: st.StrategyStateRef.String(),
		FeeBps:           st.FeeBps,
		Nonce:            st.Nonce,
	}
}

func swapPayload(r *pool.SwapResult) swapRPCResult {
	return swapRPCResult{
		AssetIn:   r.AssetIn.String(),
		AssetOut:  r.AssetOut.String(),
		AmountIn:  formatAmount(r.AmountIn),
		FeePaid:   formatAmount(r.FeePaid),
		AmountOut: formatAmount(r.AmountOut),
		ReserveA:  formatAmount(r.ReserveA),
		ReserveB:  formatAmount(r.ReserveB),
	}
}

func eventPayload(evts []events.Event) []eventDTO {
	out := make([]eventDTO, 0, len(evts))
	for _, evt := range evts {
		out = append(out, eventDTO{Type: evt.EventType(), Attributes: evt.Attributes()})
	}
	return out
}

func parseAmount(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseDirection(s string) (pool.SwapDirection, error) {
	switch s {
	case "a_to_b":
		return pool.SwapAToB, nil
	case "b_to_a":
		return pool.SwapBToA, nil
	}
	return 0, strconv.ErrSyntax
}

func invalidParams(msg string) *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: msg}
}

func serverError(err error) *rpcError {
	return &rpcError{Code: codeServerError, Message: err.Error()}
}
