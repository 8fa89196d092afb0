package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"distancia/core"
	"distancia/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	authTokenEnv    = "DISTANCIA_RPC_TOKEN"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// Server serves the JSON-RPC surface and the token-service callback webhook.
type Server struct {
	node   *core.Node
	logger *slog.Logger

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	authToken string
}

// NewServer builds an RPC server over the node. The bearer token protecting
// mutating methods is read from the DISTANCIA_RPC_TOKEN environment variable.
func NewServer(node *core.Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		node:      node,
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
		authToken: strings.TrimSpace(os.Getenv(authTokenEnv)),
	}
}

// Router assembles the HTTP surface: JSON-RPC on /, the token callback
// webhook, liveness and metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Post("/callbacks/token", s.handleTokenCallback)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	started := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	s.dispatch(sw, r, req)
	outcome := "success"
	if sw.status >= 400 {
		outcome = "error"
	}
	observability.ModuleMetrics().Observe(req.Method, outcome, time.Since(started))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	mutating := true
	switch req.Method {
	case "distancia_getAds", "distancia_getMilestones", "distancia_getAdsWatched",
		"distancia_getAd", "distancia_getDistanciaPrice", "distancia_getTokenContractOwner":
		mutating = false
	}
	if mutating {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		if !s.allowSource(clientSource(r)) {
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "rate limit exceeded", nil)
			return
		}
	}

	switch req.Method {
	case "distancia_uploadAd":
		s.handleUploadAd(w, r, req)
	case "distancia_createMilestone":
		s.handleCreateMilestone(w, r, req)
	case "distancia_adWatched":
		s.handleAdWatched(w, r, req)
	case "distancia_convertDistancia":
		s.handleConvertDistancia(w, r, req)
	case "distancia_clearMilestone":
		s.handleClearMilestone(w, r, req)
	case "distancia_setMinimumAdValue":
		s.handleSetParam(w, req, s.node.SetMinimumAdValue)
	case "distancia_setPercentageAdWatchValue":
		s.handleSetParam(w, req, s.node.SetPercentageAdWatchValue)
	case "distancia_setPercentageCommissionValue":
		s.handleSetParam(w, req, s.node.SetPercentageCommissionValue)
	case "distancia_setPercentageMilestoneCompletionValue":
		s.handleSetParam(w, req, s.node.SetPercentageMilestoneCompletionValue)
	case "distancia_setDistanciaPrice":
		s.handleSetParam(w, req, s.node.SetDistanciaPrice)
	case "distancia_refreshTokenContractOwner":
		s.handleRefreshTokenOwner(w, r, req)
	case "distancia_getAds":
		s.handleGetAds(w, req)
	case "distancia_getAd":
		s.handleGetAd(w, req)
	case "distancia_getMilestones":
		s.handleGetMilestones(w, req)
	case "distancia_getAdsWatched":
		s.handleGetAdsWatched(w, req)
	case "distancia_getDistanciaPrice":
		s.handleGetDistanciaPrice(w, req)
	case "distancia_getTokenContractOwner":
		s.handleGetTokenContractOwner(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method), nil)
	}
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func clientSource(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) allowSource(source string) bool {
	if source == "" {
		source = "unknown"
	}
	s.mu.Lock()
	limiter, ok := s.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 10)
		s.limiters[source] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

// handleTokenCallback is the webhook the external token service posts results
// to. It is the delivery path for the callback leg of every asynchronous
// operation.
func (s *Server) handleTokenCallback(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()
	res, err := decodeTokenResult(reader)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	observability.Token().RecordResult(string(res.Op), res.OK)
	if err := s.node.HandleTokenResult(res); err != nil {
		s.logger.Warn("token callback not applied",
			slog.String("requestId", res.RequestID),
			slog.String("op", string(res.Op)),
			slog.Any("error", err))
		// Unknown request ids are acknowledged so the token service stops
		// retrying a callback we will never apply.
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)
}
