package rpc

import (
	"math/big"
	"net/http"
)

func (s *Server) handleSetParam(w http.ResponseWriter, req *RPCRequest, set func(string, *big.Int) error) {
	var params setParamParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	value, err := parseAmount(params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid value", err.Error())
		return
	}
	if err := set(params.Caller, value); err != nil {
		writeEngineError(w, req, "failed to update parameter", err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleGetDistanciaPrice(w http.ResponseWriter, req *RPCRequest) {
	price, err := s.node.GetDistanciaPrice()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load price", err.Error())
		return
	}
	writeResult(w, req.ID, formatBig(price))
}
