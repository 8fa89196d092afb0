package types

import "math/big"

// PendingConversion records a burn request whose payout is withheld until the
// external token service confirms the burn. MilestoneKey is empty for plain
// conversions.
type PendingConversion struct {
	RequestID       string   `json:"requestId"`
	Account         string   `json:"account"`
	DistanciaAmount *big.Int `json:"distanciaAmount"`
	NearAmount      *big.Int `json:"nearAmount"`
	MilestoneKey    string   `json:"milestoneKey,omitempty"`
	CreatedAt       int64    `json:"createdAt"`
}

// Clone returns a deep copy.
func (c *PendingConversion) Clone() *PendingConversion {
	if c == nil {
		return nil
	}
	out := *c
	if c.DistanciaAmount != nil {
		out.DistanciaAmount = new(big.Int).Set(c.DistanciaAmount)
	}
	if c.NearAmount != nil {
		out.NearAmount = new(big.Int).Set(c.NearAmount)
	}
	return &out
}
