// Package ads implements the ad marketplace: upload, lookup and listing of
// funded advertisements.
package ads

import (
	"errors"
	"math/big"
	"strings"

	"distancia/core/events"
	"distancia/core/ledger"
	"distancia/core/types"
	"distancia/native/pricing"
)

// State is the ledger access the marketplace needs.
type State interface {
	AdByKey(key string) (*types.Ad, bool, error)
	InsertAd(ad *types.Ad) (uint64, error)
	ListAds() ([]*types.Ad, error)
	Params() (*types.Params, error)
}

// Engine creates and exposes ads.
type Engine struct {
	st      State
	emitter events.Emitter
}

// NewEngine constructs a marketplace over the supplied state.
func NewEngine(st State) *Engine {
	return &Engine{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// UploadAd creates a new ad funded by the caller's attached deposit. The
// per-watch reward and the watcher cap are fixed here from the current
// parameters and never recomputed, so later parameter changes only affect
// future uploads.
func (e *Engine) UploadAd(caller, key, metadata string, attachedValue *big.Int) (*types.Ad, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	if _, exists, err := e.st.AdByKey(key); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrDuplicateKey
	}
	p, err := e.st.Params()
	if err != nil {
		return nil, err
	}
	if attachedValue == nil || attachedValue.Cmp(p.MinimumAdValue) < 0 {
		return nil, ErrValueTooLow
	}

	amountToPay := pricing.SplitDeposit(attachedValue, p.PercentageCommissionValue)
	watchersAllowed, err := pricing.WatcherCap(p.PercentageAdWatchValue)
	if err != nil {
		return nil, err
	}
	watchValue := pricing.PerWatchReward(amountToPay, p.PercentageAdWatchValue, p.DistanciaPrice, p.PercentageMilestoneCompletionValue)

	ad := &types.Ad{
		Key:             key,
		Owner:           caller,
		Metadata:        metadata,
		Value:           new(big.Int).Set(attachedValue),
		WatchValue:      watchValue,
		WatchersAllowed: watchersAllowed,
		WatchedCount:    0,
	}
	if _, err := e.st.InsertAd(ad); err != nil {
		// The store re-checks the key index; a concurrent upload can win the
		// race between our existence check and the insert.
		if errors.Is(err, ledger.ErrDuplicateKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	e.emitter.Emit(events.AdUploaded{
		ID:              ad.ID,
		Key:             ad.Key,
		Owner:           ad.Owner,
		Value:           ad.Value,
		WatchValue:      ad.WatchValue,
		WatchersAllowed: ad.WatchersAllowed,
	})
	return ad.Clone(), nil
}

// GetAd returns the ad stored under the key, if any.
func (e *Engine) GetAd(key string) (*types.Ad, bool, error) {
	return e.st.AdByKey(strings.TrimSpace(key))
}

// ListAds returns all ads in insertion order.
func (e *Engine) ListAds() ([]*types.Ad, error) {
	return e.st.ListAds()
}
