package rpc

import (
	"net/http"
	"strings"

	"distancia/observability"
	"distancia/token"
)

func (s *Server) handleConvertDistancia(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params convertParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if strings.TrimSpace(params.Caller) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "caller required", nil)
		return
	}
	amount, err := parseAmount(params.DistanciaAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid distancia amount", err.Error())
		return
	}
	pending, err := s.node.ConvertDistancia(r.Context(), params.Caller, amount, params.MilestoneCleared)
	if err != nil {
		writeEngineError(w, req, "failed to start conversion", err)
		return
	}
	observability.Token().RecordRequest(string(token.OpBurn))
	writeResult(w, req.ID, formatPendingConversion(pending))
}

func (s *Server) handleClearMilestone(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params clearMilestoneParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if strings.TrimSpace(params.Caller) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "caller required", nil)
		return
	}
	pending, err := s.node.ClearMilestone(r.Context(), params.Caller, params.MilestoneKey)
	if err != nil {
		writeEngineError(w, req, "failed to clear milestone", err)
		return
	}
	observability.Token().RecordRequest(string(token.OpBurn))
	writeResult(w, req.ID, formatPendingConversion(pending))
}
