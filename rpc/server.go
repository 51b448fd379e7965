// Package rpc exposes the pool engine over JSON-RPC 2.0.
package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"dexpool/core"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// visitorTTL is how long a client's limiter survives without traffic before
// the next sweep drops it.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Server dispatches JSON-RPC calls to the node.
type Server struct {
	node   *core.Node
	logger *slog.Logger

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	perMin    float64
	burst     int
}

// NewServer constructs a server. A non-positive rate disables limiting.
func NewServer(node *core.Node, logger *slog.Logger, ratePerMinute float64, burst int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		node:     node,
		logger:   logger,
		visitors: make(map[string]*visitor),
		perMin:   ratePerMinute,
		burst:    burst,
	}
}

// Router mounts the RPC endpoint alongside health and metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rpc", s.handleRPC)
	return r
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r) {
		writeResponse(w, rpcResponse{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: codeRateLimited, Message: "rate limit exceeded"}})
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeResponse(w, rpcResponse{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: codeParseError, Message: "unable to read request"}})
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeResponse(w, rpcResponse{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: codeParseError, Message: "invalid JSON"}})
		return
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		writeResponse(w, rpcResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"}})
		return
	}

	result, rpcErr := s.dispatch(req.Method, req.Params)
	resp := rpcResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result, Error: rpcErr}
	if rpcErr != nil {
		resp.Result = nil
		s.logger.Warn("rpc call failed", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
	}
	writeResponse(w, resp)
}

func (s *Server) dispatch(method string, params json.RawMessage) (interface{}, *rpcError) {
	switch method {
	case "pool_create":
		return s.handleCreate(params)
	case "pool_addLiquidity":
		return s.handleAddLiquidity(params)
	case "pool_swap":
		return s.handleSwap(params)
	case "pool_removeLiquidity":
		return s.handleRemoveLiquidity(params)
	case "pool_get":
		return s.handleGet(params)
	case "pool_simulateSwap":
		return s.handleSimulateSwap(params)
	case "pool_deriveAddress":
		return s.handleDeriveAddress(params)
	case "pool_submitRaw":
		return s.handleSubmitRaw(params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func (s *Server) allow(r *http.Request) bool {
	if s.perMin <= 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= visitorTTL {
		s.lastSweep = now
		for addr, v := range s.visitors {
			if now.Sub(v.lastSeen) >= visitorTTL {
				delete(s.visitors, addr)
			}
		}
	}
	v, ok := s.visitors[host]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.perMin/60.0), s.burst)}
		s.visitors[host] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func writeResponse(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
