package rpc

import (
	"errors"
	"net/http"
	"strconv"

	"distancia/core/ledger"
	"distancia/core/types"
	"distancia/native/ads"
	"distancia/native/conversion"
	"distancia/native/milestones"
	"distancia/native/params"
	"distancia/native/rewards"
	"distancia/observability"
)

// writeEngineError maps engine sentinel errors onto JSON-RPC error codes so
// every failure carries a distinguishable reason: authorization, validation,
// not-found or server fault.
func writeEngineError(w http.ResponseWriter, req *RPCRequest, message string, err error) {
	status := http.StatusInternalServerError
	code := codeServerError
	switch {
	case errors.Is(err, params.ErrNotAuthorized), errors.Is(err, milestones.ErrNotAuthorized):
		status = http.StatusForbidden
		code = codeUnauthorized
	case errors.Is(err, conversion.ErrMilestoneNotFound):
		status = http.StatusNotFound
		code = codeInvalidParams
	case errors.Is(err, ads.ErrDuplicateKey),
		errors.Is(err, ads.ErrValueTooLow),
		errors.Is(err, ads.ErrEmptyKey),
		errors.Is(err, milestones.ErrDuplicateKey),
		errors.Is(err, milestones.ErrEmptyKey),
		errors.Is(err, milestones.ErrValueRequired),
		errors.Is(err, rewards.ErrSelfRewardForbidden),
		errors.Is(err, rewards.ErrRewardExhausted),
		errors.Is(err, conversion.ErrNonPositiveAmount),
		errors.Is(err, types.ErrZeroPrice),
		errors.Is(err, types.ErrZeroWatchPercentage),
		errors.Is(err, types.ErrPercentageOutOfRange),
		errors.Is(err, ledger.ErrDuplicateKey):
		status = http.StatusBadRequest
		code = codeInvalidParams
	}
	observability.ModuleMetrics().ObserveError(req.Method, strconv.Itoa(code))
	writeError(w, status, req.ID, code, message, err.Error())
}
