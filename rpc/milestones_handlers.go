package rpc

import "net/http"

func (s *Server) handleCreateMilestone(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params createMilestoneParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	value, err := parseAmount(params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid milestone value", err.Error())
		return
	}
	m, err := s.node.CreateMilestone(params.Caller, params.MilestoneKey, value)
	if err != nil {
		writeEngineError(w, req, "failed to create milestone", err)
		return
	}
	writeResult(w, req.ID, formatMilestone(m))
}

func (s *Server) handleGetMilestones(w http.ResponseWriter, req *RPCRequest) {
	milestones, err := s.node.GetMilestones()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to list milestones", err.Error())
		return
	}
	out := make([]milestoneResult, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, formatMilestone(m))
	}
	writeResult(w, req.ID, out)
}
