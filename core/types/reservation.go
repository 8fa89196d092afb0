package types

import (
	"math/big"
	"time"
)

// Reservation holds a watch slot on an ad between issuing a mint request and
// receiving its callback. Active reservations count against the watcher cap so
// concurrent in-flight reward flows cannot overrun an ad's budget.
type Reservation struct {
	RequestID string   `json:"requestId"`
	AdID      uint64   `json:"adId"`
	Account   string   `json:"account"`
	Amount    *big.Int `json:"amount"`
	CreatedAt int64    `json:"createdAt"`
	ExpiresAt int64    `json:"expiresAt"`
}

// Expired reports whether the reservation's hold has lapsed at the given time.
// An expired reservation no longer counts against the watcher cap.
func (r *Reservation) Expired(now time.Time) bool {
	if r == nil {
		return true
	}
	return now.Unix() >= r.ExpiresAt
}

// Clone returns a deep copy.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	out := *r
	if r.Amount != nil {
		out.Amount = new(big.Int).Set(r.Amount)
	}
	return &out
}
