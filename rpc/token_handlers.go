package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"distancia/observability"
	"distancia/token"
)

func decodeTokenResult(r io.Reader) (token.Result, error) {
	var res token.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return token.Result{}, fmt.Errorf("invalid callback payload: %w", err)
	}
	if strings.TrimSpace(res.RequestID) == "" {
		return token.Result{}, fmt.Errorf("callback requestId required")
	}
	switch res.Op {
	case token.OpMint, token.OpBurn, token.OpOwner, token.OpBalance:
	default:
		return token.Result{}, fmt.Errorf("unknown callback op %q", res.Op)
	}
	return res, nil
}

func (s *Server) handleRefreshTokenOwner(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	requestID, err := s.node.RefreshTokenContractOwner(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to query token owner", err.Error())
		return
	}
	observability.Token().RecordRequest(string(token.OpOwner))
	writeResult(w, req.ID, map[string]string{"requestId": requestID})
}

func (s *Server) handleGetTokenContractOwner(w http.ResponseWriter, req *RPCRequest) {
	owner, err := s.node.GetTokenContractOwner()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load token owner", err.Error())
		return
	}
	writeResult(w, req.ID, owner)
}
