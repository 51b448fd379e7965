package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dexpool/core"
	"dexpool/crypto"
	"dexpool/native/pool"
	"dexpool/native/pool/pricing"
	"dexpool/storage"
)

func rpcAddr(tag byte) crypto.Address {
	var a crypto.Address
	a[0] = tag
	a[31] = tag
	return a
}

func newTestServer(t *testing.T) (*httptest.Server, *core.Node) {
	t.Helper()
	registry := pricing.NewRegistry()
	registry.Register(pricing.ConstantProductID, pricing.ConstantProduct{})
	node := core.NewNode(storage.NewMemDB(), registry)
	server := NewServer(node, nil, 0, 0)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, node
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) rpcResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func resultInto(t *testing.T, resp rpcResponse, dst interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("remarshal result: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func TestRPCLifecycle(t *testing.T) {
	ts, node := newTestServer(t)

	caller := rpcAddr(0x01)
	assetA := rpcAddr(0x0a)
	assetB := rpcAddr(0x0b)

	var derive deriveAddressResult
	resultInto(t, call(t, ts, "pool_deriveAddress", map[string]string{
		"assetA":     assetA.String(),
		"assetB":     assetB.String(),
		"strategyId": pricing.ConstantProductID.String(),
	}), &derive)

	var created createPoolResult
	resultInto(t, call(t, ts, "pool_create", map[string]string{
		"caller":         caller.String(),
		"controlAddress": derive.ControlAddress,
		"vaultA":         rpcAddr(0x1a).String(),
		"vaultB":         rpcAddr(0x1b).String(),
		"shareMint":      rpcAddr(0x2c).String(),
		"assetA":         assetA.String(),
		"assetB":         assetB.String(),
		"strategyId":     pricing.ConstantProductID.String(),
	}), &created)
	if created.Pool.ControlAddress != derive.ControlAddress {
		t.Fatal("created pool address mismatch")
	}
	if len(created.Events) != 1 || created.Events[0].Type != "pool.created" {
		t.Fatalf("unexpected creation events: %+v", created.Events)
	}

	if err := node.Credit(assetA, caller, 1100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := node.Credit(assetB, caller, 2000); err != nil {
		t.Fatalf("credit: %v", err)
	}

	var added addLiquidityResult
	resultInto(t, call(t, ts, "pool_addLiquidity", map[string]string{
		"caller":  caller.String(),
		"pool":    derive.ControlAddress,
		"amountA": "1000",
		"amountB": "2000",
	}), &added)
	if added.MintedShares != "1414" {
		t.Fatalf("minted %s shares, want 1414", added.MintedShares)
	}

	var sim swapRPCResult
	resultInto(t, call(t, ts, "pool_simulateSwap", map[string]string{
		"pool":      derive.ControlAddress,
		"direction": "a_to_b",
		"amountIn":  "100",
	}), &sim)
	if sim.AmountOut != "180" {
		t.Fatalf("simulated out %s, want 180", sim.AmountOut)
	}

	var swapped swapRPCResult
	resultInto(t, call(t, ts, "pool_swap", map[string]string{
		"caller":       caller.String(),
		"pool":         derive.ControlAddress,
		"direction":    "a_to_b",
		"amountIn":     "100",
		"minAmountOut": "180",
	}), &swapped)
	if swapped.AmountOut != "180" || swapped.ReserveB != "1820" {
		t.Fatalf("swap result %+v", swapped)
	}

	var state poolStateDTO
	resultInto(t, call(t, ts, "pool_get", map[string]string{"pool": derive.ControlAddress}), &state)
	if state.ReserveA != "1100" || state.ReserveB != "1820" {
		t.Fatalf("pool state %s/%s, want 1100/1820", state.ReserveA, state.ReserveB)
	}

	var removed removeLiquidityResult
	resultInto(t, call(t, ts, "pool_removeLiquidity", map[string]string{
		"caller":       caller.String(),
		"pool":         derive.ControlAddress,
		"amountShares": "1414",
	}), &removed)
	if removed.ShareSupply != "0" {
		t.Fatalf("share supply %s after full burn, want 0", removed.ShareSupply)
	}
}

func encodeHex(t *testing.T, ix pool.Instruction) string {
	t.Helper()
	raw, err := ix.Encode()
	if err != nil {
		t.Fatalf("encode instruction: %v", err)
	}
	return hex.EncodeToString(raw)
}

func TestRPCSubmitRaw(t *testing.T) {
	ts, node := newTestServer(t)

	caller := rpcAddr(0x01)
	assetA := rpcAddr(0x0a)
	assetB := rpcAddr(0x0b)

	derived, err := pool.DeriveControlAddress(assetA, assetB, pricing.ConstantProductID, crypto.Address{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	var created submitRawResult
	resultInto(t, call(t, ts, "pool_submitRaw", map[string]string{
		"payload": encodeHex(t, pool.NewCreatePoolInstruction(pool.CreatePoolData{
			Caller:         caller,
			ControlAddress: derived.Address,
			VaultA:         rpcAddr(0x1a),
			VaultB:         rpcAddr(0x1b),
			ShareMint:      rpcAddr(0x2c),
			AssetA:         assetA,
			AssetB:         assetB,
			StrategyID:     pricing.ConstantProductID,
		})),
	}), &created)
	if created.Op != "create_pool" || created.Pool == nil {
		t.Fatalf("unexpected create result: %+v", created)
	}

	if err := node.Credit(assetA, caller, 1000); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := node.Credit(assetB, caller, 2000); err != nil {
		t.Fatalf("credit: %v", err)
	}

	var added submitRawResult
	resultInto(t, call(t, ts, "pool_submitRaw", map[string]string{
		"payload": encodeHex(t, pool.NewAddLiquidityInstruction(pool.AddLiquidityData{
			Caller:  caller,
			Pool:    derived.Address,
			AmountA: 1000,
			AmountB: 2000,
		})),
	}), &added)
	if added.Op != "add_liquidity" || added.AddLiquidity == nil {
		t.Fatalf("unexpected add result: %+v", added)
	}
	if added.AddLiquidity.MintedShares != "1414" {
		t.Fatalf("minted %s shares, want 1414", added.AddLiquidity.MintedShares)
	}
}

func TestRPCSubmitRawRejectsBadPayloads(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := call(t, ts, "pool_submitRaw", map[string]string{"payload": "zz"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for non-hex payload, got %+v", resp.Error)
	}

	// A swap carrying a direction byte outside the enum must be rejected at
	// decode time, before it reaches the engine.
	resp = call(t, ts, "pool_submitRaw", map[string]string{
		"payload": encodeHex(t, pool.NewSwapInstruction(pool.SwapData{
			Caller:    rpcAddr(0x01),
			Pool:      rpcAddr(0x02),
			Direction: 7,
			AmountIn:  100,
		})),
	})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for bad direction, got %+v", resp.Error)
	}
}

func TestRPCErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := call(t, ts, "pool_get", map[string]string{"pool": rpcAddr(0x42).String()})
	if resp.Error == nil || resp.Error.Code != codeServerError {
		t.Fatalf("expected server error for unknown pool, got %+v", resp.Error)
	}

	resp = call(t, ts, "pool_get", map[string]string{"pool": "not-an-address"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}

	resp = call(t, ts, "no_such_method", nil)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}

	raw, err := http.Post(ts.URL+"/rpc", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer raw.Body.Close()
	var out rpcResponse
	if err := json.NewDecoder(raw.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error == nil || out.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", out.Error)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	registry := pricing.NewRegistry()
	registry.Register(pricing.ConstantProductID, pricing.ConstantProduct{})
	node := core.NewNode(storage.NewMemDB(), registry)
	server := NewServer(node, nil, 60, 1)

	stale := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	stale.RemoteAddr = "10.0.0.1:1111"
	if !server.allow(stale) {
		t.Fatal("first request must pass")
	}

	// Age the client and the sweep clock past the TTL; the next request from
	// a different client triggers the sweep.
	server.mu.Lock()
	server.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * visitorTTL)
	server.lastSweep = time.Now().Add(-2 * visitorTTL)
	server.mu.Unlock()

	fresh := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	fresh.RemoteAddr = "10.0.0.2:2222"
	if !server.allow(fresh) {
		t.Fatal("fresh client must pass")
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if _, ok := server.visitors["10.0.0.1"]; ok {
		t.Fatal("idle client must be swept")
	}
	if len(server.visitors) != 1 {
		t.Fatalf("visitor map holds %d entries, want 1", len(server.visitors))
	}
}

func TestRPCRateLimit(t *testing.T) {
	registry := pricing.NewRegistry()
	registry.Register(pricing.ConstantProductID, pricing.ConstantProduct{})
	node := core.NewNode(storage.NewMemDB(), registry)
	server := NewServer(node, nil, 60, 1)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	first := call(t, ts, "pool_get", map[string]string{"pool": rpcAddr(0x42).String()})
	if first.Error == nil || first.Error.Code == codeRateLimited {
		t.Fatalf("first call must pass the limiter, got %+v", first.Error)
	}
	second := call(t, ts, "pool_get", map[string]string{"pool": rpcAddr(0x42).String()})
	if second.Error == nil || second.Error.Code != codeRateLimited {
		t.Fatalf("expected rate limit, got %+v", second.Error)
	}
}
