package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"distancia/core/types"
)

type uploadAdParams struct {
	Caller        string `json:"caller"`
	AdKey         string `json:"adKey"`
	Metadata      string `json:"metadata"`
	AttachedValue string `json:"attachedValue"`
}

type createMilestoneParams struct {
	Caller       string `json:"caller"`
	MilestoneKey string `json:"milestoneKey"`
	Value        string `json:"value"`
}

type adWatchedParams struct {
	Caller string `json:"caller"`
	AdKey  string `json:"adKey"`
}

type convertParams struct {
	Caller           string `json:"caller"`
	DistanciaAmount  string `json:"distanciaAmount"`
	MilestoneCleared bool   `json:"milestoneCleared"`
}

type clearMilestoneParams struct {
	Caller       string `json:"caller"`
	MilestoneKey string `json:"milestoneKey"`
}

type setParamParams struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
}

type keyParams struct {
	Key string `json:"key"`
}

type accountParams struct {
	Account string `json:"account"`
}

type adResult struct {
	ID              uint64 `json:"id"`
	Key             string `json:"key"`
	Owner           string `json:"owner"`
	Metadata        string `json:"metadata"`
	Value           string `json:"value"`
	WatchValue      string `json:"watchValue"`
	WatchersAllowed uint64 `json:"watchersAllowed"`
	WatchedCount    uint64 `json:"watchedCount"`
}

type milestoneResult struct {
	ID    uint64 `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type pendingMintResult struct {
	RequestID string `json:"requestId"`
	AdID      uint64 `json:"adId"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	ExpiresAt int64  `json:"expiresAt"`
}

type pendingConversionResult struct {
	RequestID       string `json:"requestId"`
	Account         string `json:"account"`
	DistanciaAmount string `json:"distanciaAmount"`
	NearAmount      string `json:"nearAmount"`
	MilestoneKey    string `json:"milestoneKey,omitempty"`
}

func formatAd(ad *types.Ad) adResult {
	return adResult{
		ID:              ad.ID,
		Key:             ad.Key,
		Owner:           ad.Owner,
		Metadata:        ad.Metadata,
		Value:           formatBig(ad.Value),
		WatchValue:      formatBig(ad.WatchValue),
		WatchersAllowed: ad.WatchersAllowed,
		WatchedCount:    ad.WatchedCount,
	}
}

func formatAds(ads []*types.Ad) []adResult {
	out := make([]adResult, 0, len(ads))
	for _, ad := range ads {
		out = append(out, formatAd(ad))
	}
	return out
}

func formatMilestone(m *types.Milestone) milestoneResult {
	return milestoneResult{ID: m.ID, Key: m.Key, Value: formatBig(m.Value)}
}

func formatReservation(r *types.Reservation) pendingMintResult {
	return pendingMintResult{
		RequestID: r.RequestID,
		AdID:      r.AdID,
		Account:   r.Account,
		Amount:    formatBig(r.Amount),
		ExpiresAt: r.ExpiresAt,
	}
}

func formatPendingConversion(c *types.PendingConversion) pendingConversionResult {
	return pendingConversionResult{
		RequestID:       c.RequestID,
		Account:         c.Account,
		DistanciaAmount: formatBig(c.DistanciaAmount),
		NearAmount:      formatBig(c.NearAmount),
		MilestoneKey:    c.MilestoneKey,
	}
}

func formatBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return value, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}
