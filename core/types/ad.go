package types

import "math/big"

// Ad is a funded advertisement. The deposit attached at upload time fixes the
// per-watch reward and the watcher cap once; neither is ever recomputed.
type Ad struct {
	ID              uint64   `json:"id"`
	Key             string   `json:"key"`
	Owner           string   `json:"owner"`
	Metadata        string   `json:"metadata"`
	Value           *big.Int `json:"value"`
	WatchValue      *big.Int `json:"watchValue"`
	WatchersAllowed uint64   `json:"watchersAllowed"`
	WatchedCount    uint64   `json:"watchedCount"`
}

// Clone returns a deep copy. The ledger hands out copies so callers holding a
// stale Ad across an external call can never mutate stored state directly.
func (a *Ad) Clone() *Ad {
	if a == nil {
		return nil
	}
	out := *a
	if a.Value != nil {
		out.Value = new(big.Int).Set(a.Value)
	}
	if a.WatchValue != nil {
		out.WatchValue = new(big.Int).Set(a.WatchValue)
	}
	return &out
}
