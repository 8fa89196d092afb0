// Package conversion orchestrates the earn-to-spend flow: burning
// reward-currency through the external token service and paying out base
// currency at the regular or milestone-preferential rate.
//
// The payout is sequenced strictly after the confirmed-burn callback. A
// failed burn therefore never pays out; the computed amount is held in a
// pending-conversion record until the outcome arrives.
package conversion

import (
	"context"
	"math/big"
	"sync"
	"time"

	"distancia/core/events"
	"distancia/core/types"
	"distancia/native/pricing"
	"distancia/token"
)

// State is the ledger access the conversion engine needs.
type State interface {
	MilestoneByKey(key string) (*types.Milestone, bool, error)
	Params() (*types.Params, error)
	PutPendingConversion(c *types.PendingConversion) error
	PendingConversionByID(requestID string) (*types.PendingConversion, bool, error)
	DeletePendingConversion(requestID string) error
}

// Payer is the native-currency transfer primitive. Transfers are
// fire-and-forget; no confirmation path is modeled.
type Payer interface {
	Pay(account string, amount *big.Int) error
}

// Engine runs conversions and milestone clearings.
type Engine struct {
	mu      sync.Mutex
	st      State
	tokens  token.Service
	payer   Payer
	emitter events.Emitter
	now     func() time.Time
}

// NewEngine constructs a conversion engine over the supplied collaborators.
func NewEngine(st State, tokens token.Service, payer Payer) *Engine {
	return &Engine{
		st:      st,
		tokens:  tokens,
		payer:   payer,
		emitter: events.NoopEmitter{},
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

// SetClock overrides the engine clock, primarily for deterministic testing.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// ConvertDistancia burns distanciaAmount from the caller and schedules the
// base-currency payout computed at the current price. The payout amount is
// fixed now (so a later price change cannot alter an in-flight conversion)
// but transferred only once OnBurnResult confirms the burn. A zero payout
// from rounding is not an error; the burn still proceeds.
func (e *Engine) ConvertDistancia(ctx context.Context, caller string, distanciaAmount *big.Int, milestoneCleared bool) (*types.PendingConversion, error) {
	return e.convert(ctx, caller, distanciaAmount, milestoneCleared, "")
}

func (e *Engine) convert(ctx context.Context, caller string, distanciaAmount *big.Int, milestoneCleared bool, milestoneKey string) (*types.PendingConversion, error) {
	if distanciaAmount == nil || distanciaAmount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if e.payer == nil {
		return nil, ErrPayerNotConfigured
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.st.Params()
	if err != nil {
		return nil, err
	}
	nearAmount, err := pricing.ConvertRate(distanciaAmount, p.DistanciaPrice, p.PercentageMilestoneCompletionValue, milestoneCleared)
	if err != nil {
		return nil, err
	}

	requestID, err := e.tokens.Burn(ctx, caller, distanciaAmount)
	if err != nil {
		return nil, err
	}
	pending := &types.PendingConversion{
		RequestID:       requestID,
		Account:         caller,
		DistanciaAmount: new(big.Int).Set(distanciaAmount),
		NearAmount:      nearAmount,
		MilestoneKey:    milestoneKey,
		CreatedAt:       e.now().Unix(),
	}
	if err := e.st.PutPendingConversion(pending); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BurnRequested{
		RequestID:       pending.RequestID,
		Account:         pending.Account,
		DistanciaAmount: pending.DistanciaAmount,
		NearAmount:      pending.NearAmount,
		MilestoneKey:    milestoneKey,
	})
	return pending.Clone(), nil
}

// ClearMilestone converts the milestone's value at the preferential rate.
// The milestone record is not retired; anyone holding the key may clear it
// again.
func (e *Engine) ClearMilestone(ctx context.Context, caller, key string) (*types.PendingConversion, error) {
	m, ok, err := e.st.MilestoneByKey(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMilestoneNotFound
	}
	return e.convert(ctx, caller, m.Value, true, m.Key)
}

// OnBurnResult settles a pending conversion. A confirmed burn releases the
// payout through the Payer; a failed burn drops the record without paying.
// Results for unknown request ids are dropped.
func (e *Engine) OnBurnResult(res token.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending, ok, err := e.st.PendingConversionByID(res.RequestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownRequest
	}
	if err := e.st.DeletePendingConversion(pending.RequestID); err != nil {
		return err
	}
	if !res.OK {
		e.emitter.Emit(events.ConversionFailed{
			RequestID: pending.RequestID,
			Account:   pending.Account,
			Reason:    res.Err,
		})
		return nil
	}
	if pending.NearAmount.Sign() > 0 {
		if err := e.payer.Pay(pending.Account, pending.NearAmount); err != nil {
			return err
		}
	}
	e.emitter.Emit(events.DistanciaConverted{
		RequestID:       pending.RequestID,
		Account:         pending.Account,
		DistanciaAmount: pending.DistanciaAmount,
		NearAmount:      pending.NearAmount,
	})
	return nil
}
