// Package rewards orchestrates the watch-and-earn flow. A reward passes
// through Validated -> MintRequested -> (MintConfirmed | MintFailed |
// Expired): validation and the mint request happen synchronously in
// AdWatched, while every ledger mutation is confined to OnMintResult, the
// callback leg of the token-service protocol.
//
// Between the request and the callback any other call may run against the
// ledger. Capacity is therefore reserved at request time: an active
// reservation counts against the watcher cap, so two in-flight flows for the
// same ad can never jointly push the watched count past the cap. Reservations
// carry a TTL so a callback the host drops frees the slot again.
package rewards

import (
	"context"
	"sync"
	"time"

	"distancia/core/events"
	"distancia/core/types"
	"distancia/token"
)

// DefaultReservationTTL bounds how long a mint request may stay unconfirmed
// before its slot is returned to the ad.
const DefaultReservationTTL = 15 * time.Minute

// State is the ledger access the reward engine needs. Values read before the
// mint request are stale by callback time; OnMintResult re-reads everything
// it mutates through this interface.
type State interface {
	AdByKey(key string) (*types.Ad, bool, error)
	AdByID(id uint64) (*types.Ad, bool, error)
	UpdateAd(ad *types.Ad) error
	AppendWatch(account string, adID uint64) error
	WatchList(account string) ([]uint64, error)
	PutReservation(r *types.Reservation) error
	ReservationByID(requestID string) (*types.Reservation, bool, error)
	DeleteReservation(requestID string) error
	Reservations() ([]*types.Reservation, error)
}

// Engine runs the reward state machine.
type Engine struct {
	mu      sync.Mutex
	st      State
	tokens  token.Service
	emitter events.Emitter
	ttl     time.Duration
	now     func() time.Time
}

// NewEngine constructs a reward engine over the supplied state and token
// service.
func NewEngine(st State, tokens token.Service) *Engine {
	return &Engine{
		st:      st,
		tokens:  tokens,
		emitter: events.NoopEmitter{},
		ttl:     DefaultReservationTTL,
		now:     time.Now,
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetReservationTTL overrides the reservation lifetime.
func (e *Engine) SetReservationTTL(ttl time.Duration) {
	if ttl > 0 {
		e.ttl = ttl
	}
}

// SetClock overrides the engine clock, primarily for deterministic testing.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

func (e *Engine) activeReservations(adID uint64, now time.Time) (uint64, error) {
	all, err := e.st.Reservations()
	if err != nil {
		return 0, err
	}
	var count uint64
	for _, r := range all {
		if r.AdID == adID && !r.Expired(now) {
			count++
		}
	}
	return count, nil
}

// AdWatched validates a watch by caller against the ad stored under adKey and
// issues the asynchronous mint request. An unknown key is a silent no-op (a
// deliberate tolerance for stale client-side keys) that returns (nil, nil);
// every other rejection is an error issued before any external call. On
// success the returned reservation records the pending request; no ledger
// entity has been mutated yet.
func (e *Engine) AdWatched(ctx context.Context, caller, adKey string) (*types.Reservation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ad, ok, err := e.st.AdByKey(adKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.emitter.Emit(events.RewardSkipped{AdKey: adKey, Account: caller, Reason: "unknown_key"})
		return nil, nil
	}
	if ad.Owner == caller {
		return nil, ErrSelfRewardForbidden
	}
	now := e.now()
	active, err := e.activeReservations(ad.ID, now)
	if err != nil {
		return nil, err
	}
	if ad.WatchedCount+active >= ad.WatchersAllowed {
		return nil, ErrRewardExhausted
	}

	requestID, err := e.tokens.Mint(ctx, caller, ad.WatchValue)
	if err != nil {
		return nil, err
	}
	r := &types.Reservation{
		RequestID: requestID,
		AdID:      ad.ID,
		Account:   caller,
		Amount:    ad.WatchValue,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.ttl).Unix(),
	}
	if err := e.st.PutReservation(r); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.MintRequested{
		RequestID: r.RequestID,
		AdID:      r.AdID,
		Account:   r.Account,
		Amount:    r.Amount,
		ExpiresAt: r.ExpiresAt,
	})
	return r.Clone(), nil
}

// OnMintResult applies the outcome of a mint request. On success it re-reads
// the ad by id, appends the watch record and increments the watched count; on
// failure it only releases the reservation. Results for unknown request ids
// (already swept, or never ours) are dropped. This is the only path that
// mutates watch state.
func (e *Engine) OnMintResult(res token.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok, err := e.st.ReservationByID(res.RequestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownRequest
	}
	if err := e.st.DeleteReservation(r.RequestID); err != nil {
		return err
	}
	if !res.OK {
		e.emitter.Emit(events.RewardMintFailed{
			RequestID: r.RequestID,
			AdID:      r.AdID,
			Account:   r.Account,
			Reason:    res.Err,
		})
		return nil
	}

	ad, ok, err := e.st.AdByID(r.AdID)
	if err != nil {
		return err
	}
	if !ok {
		// Ads are never deleted; a missing id means the store is corrupt.
		e.emitter.Emit(events.RewardMintFailed{RequestID: r.RequestID, AdID: r.AdID, Account: r.Account, Reason: "ad_missing"})
		return nil
	}
	if ad.WatchedCount >= ad.WatchersAllowed {
		// The reservation expired, its slot was re-admitted and filled, and
		// the callback still arrived. Applying it would overrun the cap, so
		// the mint is recorded as failed instead.
		e.emitter.Emit(events.RewardMintFailed{RequestID: r.RequestID, AdID: r.AdID, Account: r.Account, Reason: "cap_reached"})
		return nil
	}
	if err := e.st.AppendWatch(r.Account, ad.ID); err != nil {
		return err
	}
	ad.WatchedCount++
	if err := e.st.UpdateAd(ad); err != nil {
		return err
	}
	e.emitter.Emit(events.RewardMinted{
		RequestID:    r.RequestID,
		AdID:         ad.ID,
		Account:      r.Account,
		Amount:       r.Amount,
		WatchedCount: ad.WatchedCount,
	})
	return nil
}

// ExpireReservations releases every reservation whose TTL lapsed at or before
// now, returning the number released. A mint result arriving after its
// reservation was swept is ignored by OnMintResult.
func (e *Engine) ExpireReservations(now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.st.Reservations()
	if err != nil {
		return 0, err
	}
	released := 0
	for _, r := range all {
		if !r.Expired(now) {
			continue
		}
		if err := e.st.DeleteReservation(r.RequestID); err != nil {
			return released, err
		}
		e.emitter.Emit(events.ReservationExpired{RequestID: r.RequestID, AdID: r.AdID, Account: r.Account})
		released++
	}
	return released, nil
}

// AdsWatched resolves the account's watch history into full ad records.
func (e *Engine) AdsWatched(account string) ([]*types.Ad, error) {
	ids, err := e.st.WatchList(account)
	if err != nil {
		return nil, err
	}
	ads := make([]*types.Ad, 0, len(ids))
	for _, id := range ids {
		ad, ok, err := e.st.AdByID(id)
		if err != nil {
			return nil, err
		}
		if ok {
			ads = append(ads, ad)
		}
	}
	return ads, nil
}
