package types

import "math/big"

// Milestone is a fixed-value conversion target. Clearing one triggers a
// preferential-rate conversion of its value; the record itself is never
// mutated or retired.
type Milestone struct {
	ID    uint64   `json:"id"`
	Key   string   `json:"key"`
	Value *big.Int `json:"value"`
}

// Clone returns a deep copy.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	out := *m
	if m.Value != nil {
		out.Value = new(big.Int).Set(m.Value)
	}
	return &out
}
