package rpc

import (
	"net/http"
	"strings"
)

func (s *Server) handleUploadAd(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params uploadAdParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if strings.TrimSpace(params.Caller) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "caller required", nil)
		return
	}
	value, err := parseAmount(params.AttachedValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid attached value", err.Error())
		return
	}
	ad, err := s.node.UploadAd(params.Caller, params.AdKey, params.Metadata, value)
	if err != nil {
		writeEngineError(w, req, "failed to upload ad", err)
		return
	}
	writeResult(w, req.ID, formatAd(ad))
}

func (s *Server) handleGetAds(w http.ResponseWriter, req *RPCRequest) {
	ads, err := s.node.GetAds()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to list ads", err.Error())
		return
	}
	writeResult(w, req.ID, formatAds(ads))
}

func (s *Server) handleGetAd(w http.ResponseWriter, req *RPCRequest) {
	var params keyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	ad, ok, err := s.node.GetAd(params.Key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load ad", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "ad not found", params.Key)
		return
	}
	writeResult(w, req.ID, formatAd(ad))
}
