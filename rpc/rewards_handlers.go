package rpc

import (
	"net/http"
	"strings"

	"distancia/observability"
	"distancia/token"
)

func (s *Server) handleAdWatched(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params adWatchedParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if strings.TrimSpace(params.Caller) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "caller required", nil)
		return
	}
	reservation, err := s.node.AdWatched(r.Context(), params.Caller, params.AdKey)
	if err != nil {
		writeEngineError(w, req, "failed to start reward flow", err)
		return
	}
	if reservation == nil {
		// Unknown ad key: deliberately a silent no-op.
		writeResult(w, req.ID, nil)
		return
	}
	observability.Token().RecordRequest(string(token.OpMint))
	writeResult(w, req.ID, formatReservation(reservation))
}

func (s *Server) handleGetAdsWatched(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	ads, err := s.node.GetAdsWatched(params.Account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load watch history", err.Error())
		return
	}
	writeResult(w, req.ID, formatAds(ads))
}
